package websocket

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pscheid92/lingobridge/internal/adapter/metrics"
	"github.com/pscheid92/lingobridge/internal/domain"
)

const maxMessageSize = 64 << 10

var errConnClosed = errors.New("connection closed")

// Error codes sent in error frames for protocol problems.
const (
	codeBadFrame            = "bad_frame"
	codeUnknownFrame        = "unknown_frame"
	codeUnsupportedLanguage = "unsupported_language"
)

// sessionControl is the part of a recognition session fed by client frames.
type sessionControl interface {
	Toggle(lang domain.Language) error
	Start(lang domain.Language) error
	Stop() error
	OnStart()
	OnResult(resultIndex int, results []domain.RecognitionResult)
	OnError(code string)
	OnEnd()
}

// sessionConn is one browser connection. It stands in for the browser's
// speech recognizer and is the session's listener: every call becomes a
// server frame.
type sessionConn struct {
	ws      *websocket.Conn
	writer  *clientWriter
	metrics *metrics.WebSocketMetrics
	logger  *slog.Logger
}

var (
	_ domain.Recognizer      = (*sessionConn)(nil)
	_ domain.SessionListener = (*sessionConn)(nil)
)

func newSessionConn(ws *websocket.Conn, m *metrics.WebSocketMetrics, logger *slog.Logger) *sessionConn {
	c := &sessionConn{ws: ws, metrics: m, logger: logger}
	c.writer = newClientWriter(ws, func() {
		logger.Warn("Client send buffer full, disconnecting")
		if m != nil {
			m.SlowClientsEvicted.Inc()
		}
	})
	return c
}

func (c *sessionConn) send(frameType string, payload any) error {
	msg, err := encodeFrame(frameType, payload)
	if err != nil {
		c.logger.Error("Failed to encode frame", "type", frameType, "error", err)
		return err
	}
	if !c.writer.enqueue(msg) {
		return errConnClosed
	}
	if c.metrics != nil {
		c.metrics.FramesSent.Inc()
	}
	return nil
}

func (c *sessionConn) close() {
	c.writer.stop()
}

// --- domain.Recognizer ---

func (c *sessionConn) Start(tag string) error {
	if err := c.send(TypeRecognizerStart, recognizerStartPayload{Lang: tag}); err != nil {
		return fmt.Errorf("start recognizer: %w", err)
	}
	return nil
}

func (c *sessionConn) Stop() error {
	return c.send(TypeRecognizerStop, nil)
}

func (c *sessionConn) Abort() error {
	return c.send(TypeRecognizerAbort, nil)
}

// --- domain.SessionListener ---

func (c *sessionConn) OnStatus(pane domain.Language, state domain.PaneState) {
	label := pane.IdleText()
	if state == domain.PaneListening {
		label = pane.ListeningText()
	}
	_ = c.send(TypeStatus, statusPayload{Pane: pane, State: state, Label: label})
}

func (c *sessionConn) OnContent(pane domain.Language, text string, interim bool) {
	_ = c.send(TypeContent, contentPayload{Pane: pane, Text: text, Interim: interim})
}

func (c *sessionConn) OnTranslation(t *domain.Translation) {
	_ = c.send(TypeTranslation, t)
}

func (c *sessionConn) OnSpeak(lang domain.Language, text string) {
	_ = c.send(TypeSpeak, speakPayload{Lang: lang.RecognitionTag(), Text: text})
}

func (c *sessionConn) OnError(code, message string) {
	_ = c.send(TypeError, errorPayload{Code: code, Message: message})
}

func (c *sessionConn) OnStopped(reason domain.StopReason) {
	_ = c.send(TypeStopped, stoppedPayload{Reason: reason})
}

// readLoop feeds client frames into session until the connection fails.
func (c *sessionConn) readLoop(session sessionControl) error {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			return err
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))

		f, err := decodeFrame(msg)
		if err != nil {
			c.logger.Debug("Dropping malformed frame", "error", err)
			c.OnError(codeBadFrame, err.Error())
			continue
		}
		c.dispatch(session, f)
	}
}

func (c *sessionConn) dispatch(session sessionControl, f Frame) {
	if c.metrics != nil {
		c.metrics.FramesReceived.WithLabelValues(frameLabel(f.Type)).Inc()
	}

	switch f.Type {
	case TypeToggle, TypeStart:
		var p languagePayload
		if err := decodePayload(f, &p); err != nil {
			c.OnError(codeBadFrame, err.Error())
			return
		}
		lang := domain.ParseLanguage(p.Language)
		run := session.Toggle
		if f.Type == TypeStart {
			run = session.Start
		}
		if err := run(lang); err != nil {
			c.reportCommandError(err)
		}

	case TypeStop:
		if err := session.Stop(); err != nil {
			c.reportCommandError(err)
		}

	case TypeRecognitionStart:
		session.OnStart()

	case TypeRecognitionResult:
		var p resultPayload
		if err := decodePayload(f, &p); err != nil {
			c.OnError(codeBadFrame, err.Error())
			return
		}
		session.OnResult(p.ResultIndex, p.Results)

	case TypeRecognitionError:
		var p recognitionErrorPayload
		if err := decodePayload(f, &p); err != nil {
			c.OnError(codeBadFrame, err.Error())
			return
		}
		session.OnError(p.Error)

	case TypeRecognitionEnd:
		session.OnEnd()

	default:
		c.OnError(codeUnknownFrame, fmt.Sprintf("unknown frame type %q", f.Type))
	}
}

func (c *sessionConn) reportCommandError(err error) {
	if errors.Is(err, domain.ErrUnsupportedLanguage) {
		c.OnError(codeUnsupportedLanguage, err.Error())
		return
	}
	c.logger.Warn("Session command failed", "error", err)
}

// frameLabel bounds the metric label set to known frame types.
func frameLabel(frameType string) string {
	switch frameType {
	case TypeToggle, TypeStart, TypeStop, TypeRecognitionStart, TypeRecognitionResult,
		TypeRecognitionError, TypeRecognitionEnd:
		return frameType
	default:
		return "other"
	}
}
