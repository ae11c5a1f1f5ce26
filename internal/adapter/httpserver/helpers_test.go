package httpserver

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pscheid92/lingobridge/internal/domain"
	"github.com/pscheid92/lingobridge/internal/langdetect"
	"github.com/pscheid92/lingobridge/internal/platform/config"
)

type mockAppService struct {
	mu sync.Mutex

	ProxyFn    func(ctx context.Context, text string, source, target domain.Language) (*domain.Translation, error)
	HistoryErr error
	history    map[uuid.UUID][]domain.HistoryEntry
	cleared    []uuid.UUID
	lastLimit  int
}

func (m *mockAppService) Proxy(ctx context.Context, text string, source, target domain.Language) (*domain.Translation, error) {
	if err := domain.ValidatePair(source, target); err != nil {
		return nil, err
	}
	if m.ProxyFn != nil {
		return m.ProxyFn(ctx, text, source, target)
	}
	return &domain.Translation{
		OriginalText:   text,
		TranslatedText: "[" + string(target) + "] " + text,
		SourceLanguage: source,
		TargetLanguage: target,
		Provider:       domain.ProviderCloud,
	}, nil
}

func (m *mockAppService) Detect(text string) langdetect.Result {
	return langdetect.Detect(text)
}

func (m *mockAppService) History(_ context.Context, clientID uuid.UUID, limit int) ([]domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	if m.HistoryErr != nil {
		return nil, m.HistoryErr
	}
	entries := m.history[clientID]
	if entries == nil {
		return []domain.HistoryEntry{}, nil
	}
	return entries, nil
}

func (m *mockAppService) ClearHistory(_ context.Context, clientID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.HistoryErr != nil {
		return m.HistoryErr
	}
	m.cleared = append(m.cleared, clientID)
	delete(m.history, clientID)
	return nil
}

func (m *mockAppService) seedHistory(clientID uuid.UUID, entries ...domain.HistoryEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.history == nil {
		m.history = map[uuid.UUID][]domain.HistoryEntry{}
	}
	m.history[clientID] = entries
}

type mockSessionHandler struct {
	mu      sync.Mutex
	clients []uuid.UUID
}

func (m *mockSessionHandler) Serve(w http.ResponseWriter, _ *http.Request, clientID uuid.UUID, _ string) error {
	m.mu.Lock()
	m.clients = append(m.clients, clientID)
	m.mu.Unlock()
	w.WriteHeader(http.StatusSwitchingProtocols)
	return nil
}

type testServerOption func(*testServerSetup)

type testServerSetup struct {
	cfg          *config.Config
	sessions     sessionHandler
	healthChecks []HealthCheck
}

func withHealthChecks(checks ...HealthCheck) testServerOption {
	return func(s *testServerSetup) { s.healthChecks = checks }
}

func withConfig(mutate func(*config.Config)) testServerOption {
	return func(s *testServerSetup) { mutate(s.cfg) }
}

func withSessions(h sessionHandler) testServerOption {
	return func(s *testServerSetup) { s.sessions = h }
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:             "test",
		AppURL:             "http://localhost:3000",
		Port:               "0",
		SessionSecret:      "test-session-secret-0123456789",
		APIRateLimit:       1000,
		APIRateBurst:       1000,
		HistoryLimit:       domain.DefaultHistoryLimit,
		ClientCookieMaxAge: time.Hour,
	}
}

func newTestServer(t *testing.T, app *mockAppService, opts ...testServerOption) *Server {
	t.Helper()

	setup := &testServerSetup{cfg: testConfig(), sessions: &mockSessionHandler{}}
	for _, opt := range opts {
		opt(setup)
	}
	return NewServer(setup.cfg, app, setup.sessions, nil, nil, setup.healthChecks)
}
