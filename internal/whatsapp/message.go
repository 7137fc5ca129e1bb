package whatsapp

// Message is the closed set of outbound message shapes the bot can emit.
// The sender renders each variant into the Cloud API wire format.
type Message interface {
	isMessage()
	Recipient() string
}

// TextMessage is a plain text reply.
type TextMessage struct {
	To   string
	Body string
}

// Button is a tappable reply button. WhatsApp allows at most 3 per message.
type Button struct {
	ID    string
	Title string
}

// ButtonMessage is an interactive reply-button message.
type ButtonMessage struct {
	To      string
	Body    string
	Buttons []Button
}

// Row is a single selectable entry in a list section.
type Row struct {
	ID          string
	Title       string
	Description string
}

// Section groups list rows under an optional title.
type Section struct {
	Title string
	Rows  []Row
}

// ListMessage is an interactive list message. WhatsApp allows at most
// 10 rows across all sections.
type ListMessage struct {
	To         string
	Header     string
	Body       string
	Footer     string
	ButtonText string
	Sections   []Section
}

// TemplateMessage references a pre-approved message template.
type TemplateMessage struct {
	To           string
	TemplateName string
	LanguageCode string
	Components   []any
}

func (TextMessage) isMessage()     {}
func (ButtonMessage) isMessage()   {}
func (ListMessage) isMessage()     {}
func (TemplateMessage) isMessage() {}

func (m TextMessage) Recipient() string     { return m.To }
func (m ButtonMessage) Recipient() string   { return m.To }
func (m ListMessage) Recipient() string     { return m.To }
func (m TemplateMessage) Recipient() string { return m.To }
