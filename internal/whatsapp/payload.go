package whatsapp

// WebhookPayload is the nested event envelope delivered by the Cloud API.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

type ChangeValue struct {
	Metadata Metadata          `json:"metadata"`
	Messages []IncomingMessage `json:"messages"`
}

type Metadata struct {
	PhoneNumberID      string `json:"phone_number_id"`
	DisplayPhoneNumber string `json:"display_phone_number"`
}

// IncomingMessage is a single inbound message from a patient.
type IncomingMessage struct {
	ID          string       `json:"id"`
	From        string       `json:"from"`
	Timestamp   string       `json:"timestamp"`
	Type        string       `json:"type"`
	Text        *TextBody    `json:"text,omitempty"`
	Interactive *Interactive `json:"interactive,omitempty"`
}

type TextBody struct {
	Body string `json:"body"`
}

type Interactive struct {
	Type        string `json:"type"`
	ButtonReply *Reply `json:"button_reply,omitempty"`
	ListReply   *Reply `json:"list_reply,omitempty"`
}

type Reply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// InputText extracts the text the conversation engine should dispatch on:
// the message body for text messages, or the selected button/list row id
// for interactive replies.
func (m IncomingMessage) InputText() string {
	if m.Text != nil && m.Text.Body != "" {
		return m.Text.Body
	}
	if m.Interactive != nil {
		if m.Interactive.ButtonReply != nil {
			return m.Interactive.ButtonReply.ID
		}
		if m.Interactive.ListReply != nil {
			return m.Interactive.ListReply.ID
		}
	}
	return ""
}
