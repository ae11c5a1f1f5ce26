package httpserver

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/pscheid92/lingobridge/internal/platform/config"
)

// Client identity cookie. The client ID keys the translation history.
const (
	clientSessionName = "lingobridge-client"
	clientKeyID       = "client_id"
	ctxKeyClientID    = "clientID"
)

func newClientStore(cfg *config.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.ClientCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// withClient resolves the caller's client ID from the signed cookie, issuing
// a new one when the cookie is missing or was tampered with.
func (s *Server) withClient(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := s.resolveClient(c)
		if err != nil {
			return fmt.Errorf("resolve client: %w", err)
		}
		c.Set(ctxKeyClientID, id)
		return next(c)
	}
}

func (s *Server) resolveClient(c echo.Context) (uuid.UUID, error) {
	session, err := s.clientStore.Get(c.Request(), clientSessionName)
	if err != nil {
		slog.DebugContext(c.Request().Context(), "Discarding unreadable client cookie", "error", err)
	}

	if raw, ok := session.Values[clientKeyID].(string); ok {
		if id, err := uuid.Parse(raw); err == nil {
			return id, nil
		}
	}

	id := uuid.New()
	session.Values[clientKeyID] = id.String()
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return uuid.Nil, fmt.Errorf("save client cookie: %w", err)
	}
	return id, nil
}

func clientIDFrom(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(ctxKeyClientID).(uuid.UUID)
	return id, ok
}
