package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mawidhq/clinic-bot/internal/observability/metrics"
	"github.com/mawidhq/clinic-bot/pkg/logging"
)

var webhookTracer = otel.Tracer("mawid.internal.whatsapp.webhook")

// Dispatcher routes a normalized inbound message to the conversation engine.
// phoneNumberID identifies the tenant; resolution happens behind this interface.
type Dispatcher interface {
	Dispatch(ctx context.Context, phoneNumberID string, msg IncomingMessage) error
}

// Handler terminates the Cloud API webhook: the GET verification handshake
// and the POST event stream.
type Handler struct {
	verifyToken    string
	appSecret      string
	dispatcher     Dispatcher
	metrics        *metrics.BotMetrics
	logger         *logging.Logger
	processTimeout time.Duration
}

// NewHandler creates a webhook handler.
func NewHandler(verifyToken, appSecret string, dispatcher Dispatcher, m *metrics.BotMetrics, logger *logging.Logger) *Handler {
	if dispatcher == nil {
		panic("whatsapp: dispatcher cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		verifyToken:    verifyToken,
		appSecret:      appSecret,
		dispatcher:     dispatcher,
		metrics:        m,
		logger:         logger,
		processTimeout: 30 * time.Second,
	}
}

// Verify handles GET /webhook/whatsapp, the Meta challenge handshake.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == h.verifyToken {
		_, _ = w.Write([]byte(q.Get("hub.challenge")))
		return
	}
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// Receive handles POST /webhook/whatsapp. The provider requires an ack within
// its delivery window, so the body is acknowledged first and processed in the
// background; processing failures are logged, never surfaced to the provider.
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	_, span := webhookTracer.Start(r.Context(), "whatsapp.webhook.receive")
	defer span.End()

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		span.RecordError(err)
		return
	}

	if h.appSecret != "" {
		if !ValidateSignature(body, r.Header.Get("X-Hub-Signature-256"), h.appSecret) {
			h.logger.Warn("invalid webhook signature")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			span.RecordError(errors.New("invalid webhook signature"))
			return
		}
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Error("failed to parse webhook payload", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		span.RecordError(err)
		return
	}

	// Ack immediately; everything past this point must not affect the response.
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))

	span.SetAttributes(attribute.Int("mawid.webhook.entries", len(payload.Entry)))
	go h.process(payload)
}

func (h *Handler) process(payload WebhookPayload) {
	ctx, cancel := context.WithTimeout(context.Background(), h.processTimeout)
	defer cancel()

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			value := change.Value
			if len(value.Messages) == 0 {
				continue
			}
			for _, msg := range value.Messages {
				if err := h.dispatcher.Dispatch(ctx, value.Metadata.PhoneNumberID, msg); err != nil {
					// Dropped by design: the provider already got its 200.
					h.logger.Error("webhook processing failed",
						"error", err,
						"phone_number_id", value.Metadata.PhoneNumberID,
						"message_id", msg.ID,
					)
					h.metrics.ObserveInbound(msg.Type, "error")
					continue
				}
				h.metrics.ObserveInbound(msg.Type, "ok")
			}
		}
	}
}
