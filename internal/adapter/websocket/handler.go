package websocket

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/lingobridge/internal/adapter/metrics"
	"github.com/pscheid92/lingobridge/internal/app"
	"github.com/pscheid92/lingobridge/internal/domain"
	"github.com/pscheid92/lingobridge/internal/platform/logging"
	"github.com/pscheid92/lingobridge/internal/recognition"
)

// HandlerConfig configures session connections. Clock and CheckOrigin are optional.
type HandlerConfig struct {
	Session     recognition.Config
	AutoSpeak   bool
	CheckOrigin func(r *http.Request) bool
	Clock       clockwork.Clock
}

// Handler upgrades requests to session connections. Each connection gets its
// own recognition session and translation pipeline.
type Handler struct {
	upgrader   websocket.Upgrader
	service    *app.Service
	limits     *ConnectionLimits
	cfg        HandlerConfig
	wsMetrics  *metrics.WebSocketMetrics
	recMetrics *metrics.RecognitionMetrics
}

func NewHandler(service *app.Service, limits *ConnectionLimits, cfg HandlerConfig, wsMetrics *metrics.WebSocketMetrics, recMetrics *metrics.RecognitionMetrics) *Handler {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.CheckOrigin,
		},
		service:    service,
		limits:     limits,
		cfg:        cfg,
		wsMetrics:  wsMetrics,
		recMetrics: recMetrics,
	}
}

// Serve runs one session connection for clientID and blocks until it ends.
// ip is the caller's address as resolved by the HTTP layer.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request, clientID uuid.UUID, ip string) error {
	if ok, reason := h.limits.Acquire(ip); !ok {
		slog.Warn("WebSocket connection refused", "reason", reason, "ip", ip)
		if h.wsMetrics != nil {
			h.wsMetrics.ConnectionsRefused.WithLabelValues(string(reason)).Inc()
		}
		status := http.StatusServiceUnavailable
		if reason != LimitReasonGlobal {
			status = http.StatusTooManyRequests
		}
		http.Error(w, http.StatusText(status), status)
		return nil
	}
	defer h.limits.Release(ip)

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied to the client.
		slog.Debug("WebSocket upgrade failed", "error", err)
		return nil
	}

	sessionID := uuid.NewString()
	logger := logging.WithSession(sessionID, clientID.String())
	conn := newSessionConn(ws, h.wsMetrics, logger)
	defer conn.close()

	h.trackConnection(1)
	defer h.trackConnection(-1)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	pipeline := app.NewPipeline(ctx, h.service, conn, app.PipelineConfig{
		ClientID:  clientID,
		AutoSpeak: h.cfg.AutoSpeak,
		Metrics:   h.recMetrics,
		Logger:    logger,
	})
	defer pipeline.Close()

	session := recognition.NewSession(h.cfg.Session, recognition.Deps{
		Clock:      h.cfg.Clock,
		Recognizer: conn,
		Listener:   conn,
		Sink:       pipeline,
		Observer:   sessionObserver{metrics: h.recMetrics, service: h.service},
		Logger:     logger,
	})
	defer session.Close()

	logger.Info("Session connected")
	err = conn.readLoop(session)
	if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		logger.Info("Session connection lost", "error", err)
	} else {
		logger.Info("Session disconnected")
	}
	return nil
}

func (h *Handler) trackConnection(delta float64) {
	if h.wsMetrics != nil {
		h.wsMetrics.ActiveConnections.Add(delta)
	}
	if h.recMetrics != nil {
		h.recMetrics.ActiveSessions.Add(delta)
	}
}

// sessionObserver feeds session events into the recognition metrics and
// counts auto-mode language decisions alongside the API detections.
type sessionObserver struct {
	metrics *metrics.RecognitionMetrics
	service *app.Service
}

func (o sessionObserver) RecognizerStarted(lang domain.Language, reason string) {
	if o.metrics != nil {
		o.metrics.RecognizerStarted(lang, reason)
	}
}

func (o sessionObserver) LanguageSwitched(from, to domain.Language) {
	if o.metrics != nil {
		o.metrics.LanguageSwitched(from, to)
	}
}

func (o sessionObserver) LanguageDetected(lang domain.Language) {
	o.service.RecordDetection(lang)
}

func (o sessionObserver) SessionStopped(reason domain.StopReason) {
	if o.metrics != nil {
		o.metrics.SessionStopped(reason)
	}
}
