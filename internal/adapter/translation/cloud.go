package translation

import (
	"context"
	"fmt"
	"strings"

	gtranslate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	"github.com/pscheid92/lingobridge/internal/domain"
)

// cloudClient is the subset of the Cloud Translation client used here.
type cloudClient interface {
	Translate(ctx context.Context, inputs []string, target language.Tag, opts *gtranslate.Options) ([]gtranslate.Translation, error)
	Close() error
}

// CloudTranslator calls the Google Cloud Translation API (v2).
type CloudTranslator struct {
	client cloudClient
}

// NewCloudTranslator creates a client. An empty credentialsFile falls back to
// application default credentials.
func NewCloudTranslator(ctx context.Context, credentialsFile string) (*CloudTranslator, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := gtranslate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud translation client: %w", err)
	}
	return &CloudTranslator{client: client}, nil
}

func (t *CloudTranslator) Translate(ctx context.Context, text string, source, target domain.Language) (*domain.Translation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyText
	}
	if err := domain.ValidatePair(source, target); err != nil {
		return nil, err
	}

	resp, err := t.client.Translate(ctx, []string{text}, languageTag(target), &gtranslate.Options{
		Source: languageTag(source),
		Format: gtranslate.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("cloud translate %s->%s: %w", source, target, err)
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("cloud translate %s->%s: empty response: %w", source, target, domain.ErrTranslationFailed)
	}

	return &domain.Translation{
		OriginalText:   text,
		TranslatedText: resp[0].Text,
		SourceLanguage: source,
		TargetLanguage: target,
		Provider:       domain.ProviderCloud,
	}, nil
}

// Close releases the underlying client.
func (t *CloudTranslator) Close() error {
	return t.client.Close()
}

func languageTag(l domain.Language) language.Tag {
	switch l {
	case domain.LanguageJapanese:
		return language.Japanese
	case domain.LanguageVietnamese:
		return language.Vietnamese
	default:
		return language.Und
	}
}
