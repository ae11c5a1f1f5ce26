package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/lingobridge/internal/domain"
	apperrors "github.com/pscheid92/lingobridge/internal/platform/errors"
)

// Messages shown verbatim by the browser client.
const (
	msgTranslateFieldsRequired = "テキスト、元言語、翻訳先言語が必要です"
	msgTranslateFailed         = "翻訳に失敗しました"
)

const maxHistoryLimit = 500

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	OriginalText   string `json:"originalText"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

type detectRequest struct {
	Text string `json:"text"`
}

type historyResponse struct {
	Entries []domain.HistoryEntry `json:"entries"`
}

func (s *Server) registerAPIRoutes() {
	api := s.echo.Group("/api",
		s.setupCORSMiddleware(),
		newRateLimiter(s.config.APIRateLimit, s.config.APIRateBurst),
	)
	api.POST("/translate", s.handleTranslate)
	api.POST("/detect", s.handleDetect)
	api.GET("/history", s.handleHistory, s.withClient)
	api.DELETE("/history", s.handleClearHistory, s.withClient)
}

func (s *Server) handleTranslate(c echo.Context) error {
	var req translateRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError(msgTranslateFieldsRequired)
	}
	if strings.TrimSpace(req.Text) == "" || req.Source == "" || req.Target == "" {
		return apperrors.ValidationError(msgTranslateFieldsRequired)
	}

	source := domain.ParseLanguage(req.Source)
	target := domain.ParseLanguage(req.Target)

	res, err := s.app.Proxy(c.Request().Context(), req.Text, source, target)
	switch {
	case errors.Is(err, domain.ErrEmptyText):
		return apperrors.ValidationError(msgTranslateFieldsRequired)
	case errors.Is(err, domain.ErrUnsupportedLanguage):
		return apperrors.ValidationError("unsupported language pair").
			WithField("source", req.Source).
			WithField("target", req.Target)
	case err != nil:
		return apperrors.ExternalError(msgTranslateFailed, err).WithDetails(err.Error())
	}

	resp := translateResponse{
		TranslatedText: res.TranslatedText,
		OriginalText:   req.Text,
		SourceLanguage: string(source),
		TargetLanguage: string(target),
	}
	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleDetect(c echo.Context) error {
	var req detectRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return apperrors.ValidationError("text is required")
	}

	if err := c.JSON(http.StatusOK, s.app.Detect(req.Text)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleHistory(c echo.Context) error {
	clientID, ok := clientIDFrom(c)
	if !ok {
		return apperrors.InternalError("missing client ID in context", nil)
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			return apperrors.ValidationError("limit must be between 1 and 500").WithField("limit", raw)
		}
		limit = n
	}

	entries, err := s.app.History(c.Request().Context(), clientID, limit)
	if err != nil {
		return apperrors.UnavailableError("history unavailable", err).WithField("client_id", clientID.String())
	}

	if err := c.JSON(http.StatusOK, historyResponse{Entries: entries}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleClearHistory(c echo.Context) error {
	clientID, ok := clientIDFrom(c)
	if !ok {
		return apperrors.InternalError("missing client ID in context", nil)
	}

	if err := s.app.ClearHistory(c.Request().Context(), clientID); err != nil {
		return apperrors.UnavailableError("history unavailable", err).WithField("client_id", clientID.String())
	}
	return c.NoContent(http.StatusNoContent)
}
