package domain

import (
	"context"
	"time"
)

const (
	ProviderCloud       = "cloud"
	ProviderPublic      = "public"
	ProviderPlaceholder = "placeholder"
	ProviderCache       = "cache"
)

// Translation is the result of translating one utterance.
type Translation struct {
	OriginalText   string   `json:"originalText"`
	TranslatedText string   `json:"translatedText"`
	SourceLanguage Language `json:"sourceLanguage"`
	TargetLanguage Language `json:"targetLanguage"`
	Provider       string   `json:"provider"`
	Fallback       bool     `json:"fallback"`
}

// Translator translates text between the two supported languages.
type Translator interface {
	Translate(ctx context.Context, text string, source, target Language) (*Translation, error)
}

// TranslationCache stores translated text keyed by direction and source text.
// Get returns ("", false, nil) on a miss.
type TranslationCache interface {
	Get(ctx context.Context, source, target Language, text string) (string, bool, error)
	Set(ctx context.Context, source, target Language, text, translated string, ttl time.Duration) error
}

// ValidatePair checks a translation direction.
func ValidatePair(source, target Language) error {
	if !source.IsSpoken() || !target.IsSpoken() || source == target {
		return ErrUnsupportedLanguage
	}
	return nil
}
