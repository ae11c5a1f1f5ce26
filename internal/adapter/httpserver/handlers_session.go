package httpserver

import (
	"fmt"

	"github.com/labstack/echo/v4"

	apperrors "github.com/pscheid92/lingobridge/internal/platform/errors"
)

// handleSession hands the request to the websocket session handler, which
// blocks for the lifetime of the connection.
func (s *Server) handleSession(c echo.Context) error {
	clientID, ok := clientIDFrom(c)
	if !ok {
		return apperrors.InternalError("missing client ID in context", nil)
	}

	if err := s.sessions.Serve(c.Response(), c.Request(), clientID, c.RealIP()); err != nil {
		return fmt.Errorf("session connection: %w", err)
	}
	return nil
}
