package domain

// PaneState is the status label state of one language pane.
type PaneState string

const (
	PaneIdle      PaneState = "idle"
	PaneListening PaneState = "listening"
)

// StopReason says why a listening session ended.
type StopReason string

const (
	StopUser           StopReason = "user"
	StopSilenceTimeout StopReason = "silence_timeout"
	StopFatalError     StopReason = "error"
	StopRetriesSpent   StopReason = "max_retries"
	StopClosed         StopReason = "closed"
)

// Recognition error codes reported by the speech engine.
const (
	RecognitionErrorAborted              = "aborted"
	RecognitionErrorNotAllowed           = "not-allowed"
	RecognitionErrorServiceNotAllowed    = "service-not-allowed"
	RecognitionErrorLanguageNotSupported = "language-not-supported"
	RecognitionErrorNoSpeech             = "no-speech"
	RecognitionErrorNetwork              = "network"
	RecognitionErrorAudioCapture         = "audio-capture"
)

// RecognitionResult is one entry of a recognizer result batch.
type RecognitionResult struct {
	Transcript string `json:"transcript"`
	IsFinal    bool   `json:"isFinal"`
}

// Recognizer drives the speech engine. Calls must not block.
type Recognizer interface {
	Start(tag string) error
	Stop() error
	Abort() error
}

// SessionListener receives everything a session wants rendered or spoken.
// Calls happen on the session goroutine and must not block.
type SessionListener interface {
	OnStatus(pane Language, state PaneState)
	OnContent(pane Language, text string, interim bool)
	OnTranslation(t *Translation)
	OnSpeak(lang Language, text string)
	OnError(code, message string)
	OnStopped(reason StopReason)
}

// Utterance is a finalized transcript fragment ready for translation.
type Utterance struct {
	Seq    uint64
	Text   string
	Source Language
}

// UtteranceSink accepts finalized fragments. Submit must not block.
type UtteranceSink interface {
	Submit(u Utterance)
}
