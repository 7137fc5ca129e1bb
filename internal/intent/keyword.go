package intent

import (
	"context"
	"strings"

	"github.com/mawidhq/clinic-bot/internal/clinic"
)

// Keyword lists cover the Gulf-Arabic and English phrasings patients actually
// send; matching is substring-based on the lowercased message.
var (
	greetKeywords  = []string{"hi", "hello", "hey", "مرحبا", "أهلا", "هلا", "سلام"}
	bookKeywords   = []string{"book", "حجز", "أحجز", "موعد", "appointment", "reserve"}
	cancelKeywords = []string{"cancel", "إلغاء", "ألغي", "إلغي"}
	viewKeywords   = []string{"view", "show", "مواعيدي", "appointments", "my"}
)

// KeywordExtractor is the zero-dependency fallback classifier. Greetings win
// over other matches so "hi, I want to book" still opens with the welcome menu.
type KeywordExtractor struct{}

// NewKeywordExtractor creates a keyword-based extractor.
func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func (e *KeywordExtractor) Extract(_ context.Context, message string, _ clinic.Locale) (Extraction, error) {
	text := strings.ToLower(message)

	intent := IntentUnknown
	switch {
	case containsAny(text, greetKeywords):
		intent = IntentGreeting
	case containsAny(text, bookKeywords):
		intent = IntentBookAppointment
	case containsAny(text, cancelKeywords):
		intent = IntentCancelAppointment
	case containsAny(text, viewKeywords):
		intent = IntentViewAppointments
	}

	return Extraction{Intent: intent, Confidence: 0.6}, nil
}
