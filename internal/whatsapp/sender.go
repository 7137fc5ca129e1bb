package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mawidhq/clinic-bot/pkg/logging"
)

// Sender delivers outbound messages through the WhatsApp Cloud API.
type Sender struct {
	baseURL string
	client  *http.Client
	logger  *logging.Logger
}

// NewSender creates a Cloud API sender. baseURL is the Graph API root,
// e.g. "https://graph.facebook.com/v21.0".
func NewSender(baseURL string, logger *logging.Logger) *Sender {
	if logger == nil {
		logger = logging.Default()
	}
	return &Sender{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// Send renders msg into the Cloud API wire format and posts it on behalf of
// the tenant identified by phoneNumberID/accessToken.
func (s *Sender) Send(ctx context.Context, phoneNumberID, accessToken string, msg Message) error {
	payload := renderPayload(msg)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("whatsapp: marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", s.baseURL, phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("whatsapp: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: send message: %w", err)
	}
	defer func() { _, _ = io.Copy(io.Discard, resp.Body); _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("whatsapp: api error: status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

func renderPayload(msg Message) map[string]any {
	switch m := msg.(type) {
	case TextMessage:
		return map[string]any{
			"messaging_product": "whatsapp",
			"recipient_type":    "individual",
			"to":                m.To,
			"type":              "text",
			"text":              map[string]any{"body": m.Body, "preview_url": false},
		}

	case ButtonMessage:
		buttons := make([]map[string]any, 0, len(m.Buttons))
		for _, b := range m.Buttons {
			buttons = append(buttons, map[string]any{
				"type":  "reply",
				"reply": map[string]string{"id": b.ID, "title": b.Title},
			})
		}
		return map[string]any{
			"messaging_product": "whatsapp",
			"recipient_type":    "individual",
			"to":                m.To,
			"type":              "interactive",
			"interactive": map[string]any{
				"type":   "button",
				"body":   map[string]string{"text": m.Body},
				"action": map[string]any{"buttons": buttons},
			},
		}

	case ListMessage:
		sections := make([]map[string]any, 0, len(m.Sections))
		for _, sec := range m.Sections {
			rows := make([]map[string]any, 0, len(sec.Rows))
			for _, r := range sec.Rows {
				row := map[string]any{"id": r.ID, "title": r.Title}
				if r.Description != "" {
					row["description"] = r.Description
				}
				rows = append(rows, row)
			}
			section := map[string]any{"rows": rows}
			if sec.Title != "" {
				section["title"] = sec.Title
			}
			sections = append(sections, section)
		}
		interactive := map[string]any{
			"type":   "list",
			"body":   map[string]string{"text": m.Body},
			"action": map[string]any{"button": m.ButtonText, "sections": sections},
		}
		if m.Header != "" {
			interactive["header"] = map[string]string{"type": "text", "text": m.Header}
		}
		if m.Footer != "" {
			interactive["footer"] = map[string]string{"text": m.Footer}
		}
		return map[string]any{
			"messaging_product": "whatsapp",
			"recipient_type":    "individual",
			"to":                m.To,
			"type":              "interactive",
			"interactive":       interactive,
		}

	case TemplateMessage:
		components := m.Components
		if components == nil {
			components = []any{}
		}
		return map[string]any{
			"messaging_product": "whatsapp",
			"to":                m.To,
			"type":              "template",
			"template": map[string]any{
				"name":       m.TemplateName,
				"language":   map[string]string{"code": m.LanguageCode},
				"components": components,
			},
		}
	}
	return nil
}
