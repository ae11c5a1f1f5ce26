package recognition

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/lingobridge/internal/domain"
	"github.com/pscheid92/lingobridge/internal/langdetect"
)

const (
	DefaultSilenceTimeout   = 30 * time.Second
	DefaultRetryDelay       = time.Second
	DefaultMaxRetries       = 3
	DefaultSwitchConfidence = 0.6

	cmdBufferSize = 64
)

// Restart reasons reported to the Observer.
const (
	ReasonStart      = "start"
	ReasonContinuous = "continuous"
	ReasonRetry      = "retry"
	ReasonSwitch     = "switch"
)

// Config holds the timing and threshold knobs of a session.
type Config struct {
	SilenceTimeout   time.Duration
	RetryDelay       time.Duration
	MaxRetries       int
	SwitchConfidence float64
}

func DefaultConfig() Config {
	return Config{
		SilenceTimeout:   DefaultSilenceTimeout,
		RetryDelay:       DefaultRetryDelay,
		MaxRetries:       DefaultMaxRetries,
		SwitchConfidence: DefaultSwitchConfidence,
	}
}

// Observer is notified about recognizer lifecycle events, typically for metrics.
type Observer interface {
	RecognizerStarted(lang domain.Language, reason string)
	LanguageSwitched(from, to domain.Language)
	LanguageDetected(lang domain.Language)
	SessionStopped(reason domain.StopReason)
}

type noopObserver struct{}

func (noopObserver) RecognizerStarted(domain.Language, string)        {}
func (noopObserver) LanguageSwitched(domain.Language, domain.Language) {}
func (noopObserver) LanguageDetected(domain.Language)                  {}
func (noopObserver) SessionStopped(domain.StopReason)                  {}

// Deps are the collaborators of a Session. Observer and Logger are optional.
type Deps struct {
	Clock      clockwork.Clock
	Recognizer domain.Recognizer
	Listener   domain.SessionListener
	Sink       domain.UtteranceSink
	Observer   Observer
	Logger     *slog.Logger
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	Mode           domain.Language
	Listening      bool
	Recognizing    bool
	Language       domain.Language
	Detected       domain.Language
	Accumulated    string
	Retries        int
	RestartPending bool
}

// recognizerPhase tracks the speech engine as seen from here. The engine
// rejects a start while it is still running, so a restart has to wait for the
// end callback whenever the phase is not idle.
type recognizerPhase int

const (
	phaseIdle recognizerPhase = iota
	phaseStarting
	phaseActive
	phaseStopping
)

type restartKind int

const (
	restartNone restartKind = iota
	restartOnEnd
	restartAfterDelay
)

// --- Command types ---

type sessionCmd interface{ sessionCmd() }

type cmdToggle struct{ lang domain.Language }

func (cmdToggle) sessionCmd() {}

type cmdStart struct{ lang domain.Language }

func (cmdStart) sessionCmd() {}

type cmdStop struct{}

func (cmdStop) sessionCmd() {}

type cmdRecognizerStarted struct{}

func (cmdRecognizerStarted) sessionCmd() {}

type cmdResult struct {
	resultIndex int
	results     []domain.RecognitionResult
}

func (cmdResult) sessionCmd() {}

type cmdError struct{ code string }

func (cmdError) sessionCmd() {}

type cmdRecognizerEnded struct{}

func (cmdRecognizerEnded) sessionCmd() {}

type cmdSilenceElapsed struct{ gen uint64 }

func (cmdSilenceElapsed) sessionCmd() {}

type cmdRetryDue struct{ gen uint64 }

func (cmdRetryDue) sessionCmd() {}

type cmdSnapshot struct{ replyCh chan Snapshot }

func (cmdSnapshot) sessionCmd() {}

type cmdClose struct{ doneCh chan struct{} }

func (cmdClose) sessionCmd() {}

// --- Session ---

type Session struct {
	cmdCh     chan sessionCmd
	done      chan struct{}
	closeOnce sync.Once

	cfg        Config
	clock      clockwork.Clock
	recognizer domain.Recognizer
	listener   domain.SessionListener
	sink       domain.UtteranceSink
	observer   Observer
	logger     *slog.Logger

	mode            domain.Language
	listening       bool
	recognizing     bool
	phase           recognizerPhase
	language        domain.Language
	detected        domain.Language
	preferred       domain.Language
	accumulated     string
	accumulatedLang domain.Language
	retries         int
	seq             uint64

	pending       restartKind
	pendingReason string

	silenceTimer clockwork.Timer
	silenceGen   uint64
	retryTimer   clockwork.Timer
	retryGen     uint64
}

// NewSession creates a session and starts its actor goroutine. Call Close to release it.
func NewSession(cfg Config, deps Deps) *Session {
	if deps.Observer == nil {
		deps.Observer = noopObserver{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}

	s := &Session{
		cmdCh:      make(chan sessionCmd, cmdBufferSize),
		done:       make(chan struct{}),
		cfg:        cfg,
		clock:      deps.Clock,
		recognizer: deps.Recognizer,
		listener:   deps.Listener,
		sink:       deps.Sink,
		observer:   deps.Observer,
		logger:     deps.Logger,
		mode:       domain.LanguageNone,
		language:   domain.LanguageNone,
		detected:   domain.LanguageNone,
		preferred:  domain.LanguageJapanese,
	}
	go s.run()
	return s
}

// --- Public API ---

// Toggle stops the session when it is already listening in lang, and starts it otherwise.
func (s *Session) Toggle(lang domain.Language) error {
	if err := checkMode(lang); err != nil {
		return err
	}
	return s.send(cmdToggle{lang: lang})
}

// Start begins listening in lang, replacing any current listening.
func (s *Session) Start(lang domain.Language) error {
	if err := checkMode(lang); err != nil {
		return err
	}
	return s.send(cmdStart{lang: lang})
}

// Stop ends listening. Stopping an idle session does nothing.
func (s *Session) Stop() error {
	return s.send(cmdStop{})
}

// OnStart reports that the speech engine has started capturing.
func (s *Session) OnStart() {
	_ = s.send(cmdRecognizerStarted{})
}

// OnResult reports a result batch. Entries before resultIndex were already delivered.
func (s *Session) OnResult(resultIndex int, results []domain.RecognitionResult) {
	_ = s.send(cmdResult{resultIndex: resultIndex, results: results})
}

// OnError reports a speech engine error code.
func (s *Session) OnError(code string) {
	_ = s.send(cmdError{code: code})
}

// OnEnd reports that the speech engine has stopped capturing.
func (s *Session) OnEnd() {
	_ = s.send(cmdRecognizerEnded{})
}

// State returns a snapshot once every previously sent command has been handled.
func (s *Session) State() (Snapshot, error) {
	replyCh := make(chan Snapshot, 1)
	if err := s.send(cmdSnapshot{replyCh: replyCh}); err != nil {
		return Snapshot{}, err
	}
	select {
	case snap := <-replyCh:
		return snap, nil
	case <-s.done:
		return Snapshot{}, domain.ErrSessionClosed
	}
}

// Close stops listening and terminates the actor goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		doneCh := make(chan struct{})
		s.cmdCh <- cmdClose{doneCh: doneCh}
		<-doneCh
	})
}

func (s *Session) send(cmd sessionCmd) error {
	select {
	case <-s.done:
		return domain.ErrSessionClosed
	default:
	}
	select {
	case s.cmdCh <- cmd:
		return nil
	case <-s.done:
		return domain.ErrSessionClosed
	}
}

func checkMode(lang domain.Language) error {
	if lang != domain.LanguageAuto && !lang.IsSpoken() {
		return fmt.Errorf("start listening in %q: %w", lang, domain.ErrUnsupportedLanguage)
	}
	return nil
}

// --- Actor ---

func (s *Session) run() {
	for cmd := range s.cmdCh {
		switch c := cmd.(type) {
		case cmdToggle:
			if s.listening && s.mode == c.lang {
				s.stop(domain.StopUser)
				break
			}
			s.start(c.lang)

		case cmdStart:
			s.start(c.lang)

		case cmdStop:
			s.stop(domain.StopUser)

		case cmdRecognizerStarted:
			s.recognizing = true
			if s.phase == phaseStarting {
				s.phase = phaseActive
			}

		case cmdResult:
			s.handleResult(c.resultIndex, c.results)

		case cmdError:
			s.handleError(c.code)

		case cmdRecognizerEnded:
			s.handleEnd()

		case cmdSilenceElapsed:
			if c.gen == s.silenceGen && s.listening {
				s.logger.Info("No speech within silence timeout, stopping", "timeout", s.cfg.SilenceTimeout)
				s.stop(domain.StopSilenceTimeout)
			}

		case cmdRetryDue:
			if c.gen != s.retryGen || !s.listening || s.pending != restartAfterDelay {
				break
			}
			s.pending = restartNone
			s.launch(ReasonRetry)

		case cmdSnapshot:
			c.replyCh <- s.snapshot()

		case cmdClose:
			if s.listening {
				s.stop(domain.StopClosed)
			}
			s.disarmTimers()
			close(s.done)
			close(c.doneCh)
			return
		}
	}
}

func (s *Session) start(lang domain.Language) {
	if s.listening {
		s.halt()
	}

	s.mode = lang
	s.listening = true
	s.language = lang
	if lang == domain.LanguageAuto {
		s.language = s.preferred
	}

	s.publishStatus()
	s.armSilence()
	s.launch(ReasonStart)
	s.logger.Debug("Listening started", "mode", lang, "language", s.language)
}

func (s *Session) stop(reason domain.StopReason) {
	if !s.listening {
		return
	}
	s.halt()
	s.publishStatus()
	s.listener.OnStopped(reason)
	s.observer.SessionStopped(reason)
	s.logger.Debug("Listening stopped", "reason", reason)
}

// halt resets the transient state and winds the engine down without notifying anyone.
func (s *Session) halt() {
	s.listening = false
	s.disarmTimers()
	s.pending = restartNone

	if s.phase == phaseStarting || s.phase == phaseActive {
		if err := s.recognizer.Stop(); err != nil {
			s.logger.Warn("Failed to stop recognizer", "error", err)
		}
		s.phase = phaseStopping
	}

	s.mode = domain.LanguageNone
	s.detected = domain.LanguageNone
	s.accumulated = ""
	s.accumulatedLang = domain.LanguageNone
	s.retries = 0
}

// launch starts the engine in the current language, or schedules that for
// the next end callback when the engine is still running.
func (s *Session) launch(reason string) {
	switch s.phase {
	case phaseIdle:
		if err := s.recognizer.Start(s.language.RecognitionTag()); err != nil {
			s.logger.Warn("Failed to start recognizer", "language", s.language, "error", err)
			s.stop(domain.StopFatalError)
			return
		}
		s.phase = phaseStarting
		s.pending = restartNone
		s.observer.RecognizerStarted(s.language, reason)

	case phaseStarting, phaseActive:
		if err := s.recognizer.Abort(); err != nil {
			s.logger.Warn("Failed to abort recognizer", "error", err)
		}
		s.phase = phaseStopping
		s.pending = restartOnEnd
		s.pendingReason = reason

	case phaseStopping:
		s.pending = restartOnEnd
		s.pendingReason = reason
	}
}

func (s *Session) handleResult(resultIndex int, results []domain.RecognitionResult) {
	if !s.listening {
		return
	}
	if resultIndex < 0 {
		resultIndex = 0
	}
	if resultIndex > len(results) {
		return
	}

	var final, interim strings.Builder
	for _, r := range results[resultIndex:] {
		if r.IsFinal {
			final.WriteString(r.Transcript)
		} else {
			interim.WriteString(r.Transcript)
		}
	}

	s.retries = 0
	s.armSilence()

	if text := strings.TrimSpace(final.String()); text != "" {
		s.handleFinal(text)
	}

	if text := strings.TrimSpace(interim.String()); text != "" && s.listening {
		pane := s.contentPane()
		s.listener.OnContent(pane, joinTranscript(s.accumulated, text, pane), true)
	}
}

func (s *Session) handleFinal(text string) {
	source := s.language
	switchTo := domain.LanguageNone

	if s.mode == domain.LanguageAuto {
		r := langdetect.DetectWithHint(text, s.language)
		s.observer.LanguageDetected(r.Language)
		source = r.Language
		s.detected = source
		s.preferred = source
		if source != s.language && r.Confidence >= s.cfg.SwitchConfidence {
			switchTo = source
		}
	}

	if s.accumulatedLang != source {
		s.accumulated = ""
	}
	s.accumulated = joinTranscript(s.accumulated, text, source)
	s.accumulatedLang = source

	s.listener.OnContent(source, s.accumulated, false)
	s.seq++
	s.sink.Submit(domain.Utterance{Seq: s.seq, Text: text, Source: source})

	if switchTo != domain.LanguageNone {
		s.logger.Info("Switching recognition language", "from", s.language, "to", switchTo)
		s.observer.LanguageSwitched(s.language, switchTo)
		s.language = switchTo
		s.launch(ReasonSwitch)
	}
}

func (s *Session) handleError(code string) {
	if code == domain.RecognitionErrorAborted &&
		(!s.listening || s.pending != restartNone || s.phase == phaseStopping) {
		return
	}
	if !s.listening {
		return
	}

	if isFatal(code) {
		s.logger.Warn("Fatal recognition error", "code", code)
		s.listener.OnError(code, errorMessage(code))
		s.stop(domain.StopFatalError)
		return
	}

	if s.retries >= s.cfg.MaxRetries {
		s.logger.Warn("Recognition retries exhausted", "code", code, "retries", s.retries)
		s.listener.OnError(code, errorMessage(code))
		s.stop(domain.StopRetriesSpent)
		return
	}

	s.retries++
	delay := s.cfg.RetryDelay * time.Duration(s.retries)
	s.pending = restartAfterDelay
	s.armRetry(delay)
	s.logger.Info("Transient recognition error, retrying", "code", code, "retry", s.retries, "delay", delay)
}

func (s *Session) handleEnd() {
	s.recognizing = false
	s.phase = phaseIdle

	if !s.listening {
		return
	}

	switch s.pending {
	case restartOnEnd:
		reason := s.pendingReason
		s.pending = restartNone
		s.launch(reason)
	case restartAfterDelay:
		// retry timer restarts the engine
	default:
		s.launch(ReasonContinuous)
	}
}

// --- Timers ---

func (s *Session) armSilence() {
	if s.silenceTimer != nil {
		s.silenceTimer.Stop()
	}
	s.silenceGen++
	gen := s.silenceGen
	s.silenceTimer = s.clock.AfterFunc(s.cfg.SilenceTimeout, func() {
		_ = s.send(cmdSilenceElapsed{gen: gen})
	})
}

func (s *Session) armRetry(delay time.Duration) {
	if s.retryTimer != nil {
		s.retryTimer.Stop()
	}
	s.retryGen++
	gen := s.retryGen
	s.retryTimer = s.clock.AfterFunc(delay, func() {
		_ = s.send(cmdRetryDue{gen: gen})
	})
}

func (s *Session) disarmTimers() {
	if s.silenceTimer != nil {
		s.silenceTimer.Stop()
		s.silenceTimer = nil
	}
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
	s.silenceGen++
	s.retryGen++
}

// --- Helpers ---

func (s *Session) publishStatus() {
	for _, pane := range []domain.Language{domain.LanguageJapanese, domain.LanguageVietnamese} {
		state := domain.PaneIdle
		if s.listening && (s.mode == domain.LanguageAuto || s.mode == pane) {
			state = domain.PaneListening
		}
		s.listener.OnStatus(pane, state)
	}
}

func (s *Session) contentPane() domain.Language {
	if s.accumulatedLang.IsSpoken() {
		return s.accumulatedLang
	}
	return s.language
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		Mode:           s.mode,
		Listening:      s.listening,
		Recognizing:    s.recognizing,
		Language:       s.language,
		Detected:       s.detected,
		Accumulated:    s.accumulated,
		Retries:        s.retries,
		RestartPending: s.pending != restartNone,
	}
}

// joinTranscript appends a fragment. Japanese is written without spaces.
func joinTranscript(acc, text string, lang domain.Language) string {
	if acc == "" {
		return text
	}
	if lang == domain.LanguageJapanese {
		return acc + text
	}
	return acc + " " + text
}

func isFatal(code string) bool {
	switch code {
	case domain.RecognitionErrorNotAllowed,
		domain.RecognitionErrorServiceNotAllowed,
		domain.RecognitionErrorLanguageNotSupported:
		return true
	}
	return false
}

func errorMessage(code string) string {
	switch code {
	case domain.RecognitionErrorNotAllowed, domain.RecognitionErrorServiceNotAllowed:
		return "microphone access was denied"
	case domain.RecognitionErrorLanguageNotSupported:
		return "recognition language is not supported"
	case domain.RecognitionErrorNoSpeech:
		return "no speech detected"
	case domain.RecognitionErrorNetwork:
		return "recognition service unreachable"
	case domain.RecognitionErrorAudioCapture:
		return "no microphone available"
	default:
		return "speech recognition failed: " + code
	}
}
