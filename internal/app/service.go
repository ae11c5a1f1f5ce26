package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/lingobridge/internal/adapter/metrics"
	"github.com/pscheid92/lingobridge/internal/domain"
	"github.com/pscheid92/lingobridge/internal/langdetect"
)

// Service is the application layer. It is the only component that combines
// translation, detection and history.
type Service struct {
	translator     domain.Translator
	proxy          domain.Translator
	history        domain.HistoryStore
	historyBackend string
	clock          clockwork.Clock

	translationMetrics *metrics.TranslationMetrics
	storageMetrics     *metrics.StorageMetrics
}

// ServiceDeps bundles the collaborators of a Service.
// Proxy may be nil when no primary provider is configured.
type ServiceDeps struct {
	Translator         domain.Translator
	Proxy              domain.Translator
	History            domain.HistoryStore
	HistoryBackend     string
	Clock              clockwork.Clock
	TranslationMetrics *metrics.TranslationMetrics
	StorageMetrics     *metrics.StorageMetrics
}

func NewService(deps ServiceDeps) *Service {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		translator:         deps.Translator,
		proxy:              deps.Proxy,
		history:            deps.History,
		historyBackend:     deps.HistoryBackend,
		clock:              clock,
		translationMetrics: deps.TranslationMetrics,
		storageMetrics:     deps.StorageMetrics,
	}
}

// Translate renders text into the other supported language and records the
// result in the client's history. A history failure is logged, not returned.
func (s *Service) Translate(ctx context.Context, clientID uuid.UUID, text string, source domain.Language) (*domain.Translation, error) {
	if !source.IsSpoken() {
		return nil, fmt.Errorf("source %q: %w", source, domain.ErrUnsupportedLanguage)
	}

	res, err := s.translator.Translate(ctx, text, source, source.Target())
	if err != nil {
		return nil, err
	}

	entry := domain.HistoryEntry{
		Timestamp:        s.clock.Now().UTC(),
		OriginalLanguage: res.SourceLanguage,
		OriginalText:     res.OriginalText,
		TranslatedText:   res.TranslatedText,
		TargetLanguage:   res.TargetLanguage,
	}
	if err := s.recordHistory(ctx, clientID, entry); err != nil {
		slog.WarnContext(ctx, "Failed to record history", "client_id", clientID.String(), "error", err)
	}

	return res, nil
}

// Proxy forwards a translation request to the primary provider only. Unlike
// Translate it neither falls back nor records history; callers fall back on
// their own.
func (s *Service) Proxy(ctx context.Context, text string, source, target domain.Language) (*domain.Translation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyText
	}
	if err := domain.ValidatePair(source, target); err != nil {
		return nil, err
	}
	if s.proxy == nil {
		return nil, fmt.Errorf("no primary provider configured: %w", domain.ErrTranslationFailed)
	}

	res, err := s.proxy.Translate(ctx, text, source, target)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrTranslationFailed, err)
	}
	return res, nil
}

// Detect classifies text as Japanese or Vietnamese.
func (s *Service) Detect(text string) langdetect.Result {
	res := langdetect.Detect(text)
	s.RecordDetection(res.Language)
	return res
}

// RecordDetection counts one language decision, from the API or a session.
func (s *Service) RecordDetection(lang domain.Language) {
	if s.translationMetrics != nil {
		s.translationMetrics.DetectionsTotal.WithLabelValues(string(lang)).Inc()
	}
}

// History returns up to limit entries for the client, newest first.
func (s *Service) History(ctx context.Context, clientID uuid.UUID, limit int) ([]domain.HistoryEntry, error) {
	entries, err := s.history.List(ctx, clientID, limit)
	s.observeHistory("list", err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrHistoryUnavailable, err)
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return entries, nil
}

// ClearHistory removes every entry for the client.
func (s *Service) ClearHistory(ctx context.Context, clientID uuid.UUID) error {
	err := s.history.Clear(ctx, clientID)
	s.observeHistory("clear", err)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrHistoryUnavailable, err)
	}
	return nil
}

func (s *Service) recordHistory(ctx context.Context, clientID uuid.UUID, entry domain.HistoryEntry) error {
	err := s.history.Add(ctx, clientID, entry)
	s.observeHistory("add", err)
	return err
}

func (s *Service) observeHistory(operation string, err error) {
	if s.storageMetrics == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	s.storageMetrics.HistoryOps.WithLabelValues(s.historyBackend, operation, result).Inc()
}
