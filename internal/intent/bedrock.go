package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/mawidhq/clinic-bot/internal/clinic"
)

// BedrockConverseAPI is the subset of the Bedrock client used for intent
// classification.
type BedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockExtractor classifies messages with a small LLM via Bedrock Converse.
// Classifier trouble never bubbles up: malformed or missing output degrades
// to IntentUnknown so the conversation falls back to the menu.
type BedrockExtractor struct {
	client  BedrockConverseAPI
	modelID string
	logger  *slog.Logger
}

// NewBedrockExtractor creates a Bedrock-backed extractor.
func NewBedrockExtractor(client BedrockConverseAPI, modelID string, logger *slog.Logger) *BedrockExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &BedrockExtractor{client: client, modelID: modelID, logger: logger}
}

func (e *BedrockExtractor) Extract(ctx context.Context, message string, locale clinic.Locale) (Extraction, error) {
	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(e.modelID),
		System: []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: intentSystemPrompt(locale)},
		},
		Messages: []brtypes.Message{
			{
				Role: brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: message},
				},
			},
		},
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens:   aws.Int32(200),
			Temperature: aws.Float32(0.0),
		},
	}

	resp, err := e.client.Converse(ctx, input)
	if err != nil {
		return Extraction{}, fmt.Errorf("intent: bedrock converse: %w", err)
	}

	text := extractResponseText(resp)
	return parseExtractionJSON(text, e.logger), nil
}

func extractResponseText(resp *bedrockruntime.ConverseOutput) string {
	if resp == nil || resp.Output == nil {
		return ""
	}
	output, ok := resp.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok || len(output.Value.Content) == 0 {
		return ""
	}
	textBlock, ok := output.Value.Content[0].(*brtypes.ContentBlockMemberText)
	if !ok {
		return ""
	}
	return textBlock.Value
}

func parseExtractionJSON(text string, logger *slog.Logger) Extraction {
	unknown := Extraction{Intent: IntentUnknown}

	// The model may wrap JSON in markdown fences; take the outermost object.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		logger.Warn("intent: no JSON in model output")
		return unknown
	}

	var ex Extraction
	if err := json.Unmarshal([]byte(text[start:end+1]), &ex); err != nil {
		logger.Warn("intent: malformed model output", "error", err)
		return unknown
	}
	switch ex.Intent {
	case IntentBookAppointment, IntentViewAppointments, IntentCancelAppointment,
		IntentGreeting, IntentHelp, IntentUnknown:
	default:
		logger.Warn("intent: unrecognized intent label", "intent", string(ex.Intent))
		return unknown
	}
	return ex
}

func intentSystemPrompt(locale clinic.Locale) string {
	language := "English"
	if locale == clinic.LocaleAR {
		language = "Arabic (Gulf dialect)"
	}
	return fmt.Sprintf(`You are an intent classifier for a medical clinic WhatsApp bot.
Extract the user's intent and any relevant entities from their message.
The user communicates in %s.

Respond ONLY with valid JSON matching this schema:
{
  "intent": "BOOK_APPOINTMENT" | "VIEW_APPOINTMENTS" | "CANCEL_APPOINTMENT" | "GREETING" | "HELP" | "UNKNOWN",
  "confidence": 0.0-1.0,
  "entities": {
    "date": "ISO date or null (handle informal dates like 'tomorrow', 'بكره', 'الأسبوع الجاي')",
    "time": "HH:mm or null",
    "doctorName": "string or null",
    "serviceName": "string or null"
  }
}`, language)
}
