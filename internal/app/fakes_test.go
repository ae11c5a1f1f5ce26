package app

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/pscheid92/lingobridge/internal/domain"
)

type stubTranslator struct {
	mu    sync.Mutex
	calls []string
	fn    func(ctx context.Context, text string, source, target domain.Language) (*domain.Translation, error)
}

func (s *stubTranslator) Translate(ctx context.Context, text string, source, target domain.Language) (*domain.Translation, error) {
	s.mu.Lock()
	s.calls = append(s.calls, text)
	s.mu.Unlock()

	if s.fn != nil {
		return s.fn(ctx, text, source, target)
	}
	return &domain.Translation{
		OriginalText:   text,
		TranslatedText: "<" + text + ">",
		SourceLanguage: source,
		TargetLanguage: target,
		Provider:       domain.ProviderCloud,
	}, nil
}

func (s *stubTranslator) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

type failingHistory struct{}

var errStoreDown = errors.New("store down")

func (failingHistory) Add(context.Context, uuid.UUID, domain.HistoryEntry) error { return errStoreDown }

func (failingHistory) List(context.Context, uuid.UUID, int) ([]domain.HistoryEntry, error) {
	return nil, errStoreDown
}

func (failingHistory) Clear(context.Context, uuid.UUID) error { return errStoreDown }

type listenerEvent struct {
	kind string
	lang domain.Language
	text string
}

type recordingListener struct {
	mu     sync.Mutex
	events []listenerEvent
}

func (l *recordingListener) add(e listenerEvent) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *recordingListener) Events() []listenerEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]listenerEvent(nil), l.events...)
}

func (l *recordingListener) OnStatus(domain.Language, domain.PaneState) {}

func (l *recordingListener) OnContent(pane domain.Language, text string, _ bool) {
	l.add(listenerEvent{kind: "content", lang: pane, text: text})
}

func (l *recordingListener) OnTranslation(t *domain.Translation) {
	l.add(listenerEvent{kind: "translation", lang: t.TargetLanguage, text: t.TranslatedText})
}

func (l *recordingListener) OnSpeak(lang domain.Language, text string) {
	l.add(listenerEvent{kind: "speak", lang: lang, text: text})
}

func (l *recordingListener) OnError(string, string) {}

func (l *recordingListener) OnStopped(domain.StopReason) {}
