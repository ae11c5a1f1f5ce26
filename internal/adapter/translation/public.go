package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pscheid92/lingobridge/internal/domain"
)

const (
	DefaultPublicURL = "https://translate.googleapis.com/translate_a/single"

	maxPublicResponseBytes = 1 << 20
)

// StatusError is returned for a non-2xx reply from a translation endpoint.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("translation endpoint returned status %d", e.StatusCode)
}

// PublicTranslator calls the unauthenticated public translation endpoint.
type PublicTranslator struct {
	baseURL    string
	httpClient *http.Client
}

func NewPublicTranslator(baseURL string, timeout time.Duration) *PublicTranslator {
	if baseURL == "" {
		baseURL = DefaultPublicURL
	}
	return &PublicTranslator{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (t *PublicTranslator) Translate(ctx context.Context, text string, source, target domain.Language) (*domain.Translation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyText
	}
	if err := domain.ValidatePair(source, target); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source.String())
	q.Set("tl", target.String())
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build public translate request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("public translate request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPublicResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read public translate response: %w", err)
	}

	translated, err := parsePublicResponse(body)
	if err != nil {
		return nil, err
	}

	return &domain.Translation{
		OriginalText:   text,
		TranslatedText: translated,
		SourceLanguage: source,
		TargetLanguage: target,
		Provider:       domain.ProviderPublic,
	}, nil
}

// parsePublicResponse concatenates the translated segments found at data[0][i][0].
func parsePublicResponse(body []byte) (string, error) {
	var data []json.RawMessage
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("malformed public translate response: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("public translate response has no segments: %w", domain.ErrTranslationFailed)
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(data[0], &segments); err != nil {
		return "", fmt.Errorf("malformed public translate segments: %w", err)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(seg[0], &part); err != nil {
			continue
		}
		sb.WriteString(part)
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("public translate response has no text: %w", domain.ErrTranslationFailed)
	}
	return sb.String(), nil
}
