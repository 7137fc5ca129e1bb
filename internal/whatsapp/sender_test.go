package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSenderRendersText(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/PN123/messages", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSender(srv.URL, nil)
	err := s.Send(context.Background(), "PN123", "tok", TextMessage{To: "9665550001", Body: "hello"})
	require.NoError(t, err)

	assert.Equal(t, "whatsapp", got["messaging_product"])
	assert.Equal(t, "text", got["type"])
	text := got["text"].(map[string]any)
	assert.Equal(t, "hello", text["body"])
	assert.Equal(t, false, text["preview_url"])
}

func TestSenderRendersButtons(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	s := NewSender(srv.URL, nil)
	err := s.Send(context.Background(), "PN123", "tok", ButtonMessage{
		To:   "9665550001",
		Body: "pick one",
		Buttons: []Button{
			{ID: "book", Title: "Book"},
			{ID: "cancel", Title: "Cancel"},
		},
	})
	require.NoError(t, err)

	interactive := got["interactive"].(map[string]any)
	assert.Equal(t, "button", interactive["type"])
	buttons := interactive["action"].(map[string]any)["buttons"].([]any)
	require.Len(t, buttons, 2)
	first := buttons[0].(map[string]any)
	assert.Equal(t, "reply", first["type"])
	assert.Equal(t, "book", first["reply"].(map[string]any)["id"])
}

func TestSenderRendersList(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	s := NewSender(srv.URL, nil)
	err := s.Send(context.Background(), "PN123", "tok", ListMessage{
		To:         "9665550001",
		Header:     "Book",
		Body:       "Select a service:",
		ButtonText: "View",
		Sections: []Section{
			{Title: "Services", Rows: []Row{{ID: "svc-1", Title: "Checkup", Description: "150 SAR"}}},
		},
	})
	require.NoError(t, err)

	interactive := got["interactive"].(map[string]any)
	assert.Equal(t, "list", interactive["type"])
	assert.Equal(t, "Book", interactive["header"].(map[string]any)["text"])
	sections := interactive["action"].(map[string]any)["sections"].([]any)
	require.Len(t, sections, 1)
	rows := sections[0].(map[string]any)["rows"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "150 SAR", rows[0].(map[string]any)["description"])
}

func TestSenderSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad recipient"}}`))
	}))
	defer srv.Close()

	s := NewSender(srv.URL, nil)
	err := s.Send(context.Background(), "PN123", "tok", TextMessage{To: "x", Body: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "bad recipient")
}
