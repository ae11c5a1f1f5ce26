package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/pscheid92/lingobridge/internal/domain"
)

// Frame is the envelope for every message in both directions.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Client to server frame types.
const (
	TypeToggle            = "toggle"
	TypeStart             = "start"
	TypeStop              = "stop"
	TypeRecognitionStart  = "recognition_start"
	TypeRecognitionResult = "recognition_result"
	TypeRecognitionError  = "recognition_error"
	TypeRecognitionEnd    = "recognition_end"
)

// Server to client frame types.
const (
	TypeRecognizerStart = "recognizer_start"
	TypeRecognizerStop  = "recognizer_stop"
	TypeRecognizerAbort = "recognizer_abort"
	TypeStatus          = "status"
	TypeContent         = "content"
	TypeTranslation     = "translation"
	TypeSpeak           = "speak"
	TypeError           = "error"
	TypeStopped         = "stopped"
)

type languagePayload struct {
	Language string `json:"language"`
}

type resultPayload struct {
	ResultIndex int                        `json:"resultIndex"`
	Results     []domain.RecognitionResult `json:"results"`
}

type recognitionErrorPayload struct {
	Error string `json:"error"`
}

type recognizerStartPayload struct {
	Lang string `json:"lang"`
}

type statusPayload struct {
	Pane  domain.Language  `json:"pane"`
	State domain.PaneState `json:"state"`
	Label string           `json:"label"`
}

type contentPayload struct {
	Pane    domain.Language `json:"pane"`
	Text    string          `json:"text"`
	Interim bool            `json:"interim"`
}

type speakPayload struct {
	Lang string `json:"lang"`
	Text string `json:"text"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type stoppedPayload struct {
	Reason domain.StopReason `json:"reason"`
}

// encodeFrame marshals a typed payload into a frame. A nil payload yields a
// frame without data.
func encodeFrame(frameType string, payload any) ([]byte, error) {
	f := Frame{Type: frameType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", frameType, err)
		}
		f.Data = data
	}
	msg, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", frameType, err)
	}
	return msg, nil
}

func decodeFrame(msg []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(msg, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	if f.Type == "" {
		return Frame{}, fmt.Errorf("decode frame: missing type")
	}
	return f, nil
}

func decodePayload(f Frame, v any) error {
	if len(f.Data) == 0 {
		return fmt.Errorf("%s frame: missing data", f.Type)
	}
	if err := json.Unmarshal(f.Data, v); err != nil {
		return fmt.Errorf("%s frame: %w", f.Type, err)
	}
	return nil
}
