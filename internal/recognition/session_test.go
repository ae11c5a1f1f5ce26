package recognition

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/lingobridge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

type fakeRecognizer struct {
	mu       sync.Mutex
	calls    []string
	startErr error
}

func (f *fakeRecognizer) Start(tag string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "start:"+tag)
	return f.startErr
}

func (f *fakeRecognizer) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "stop")
	return nil
}

func (f *fakeRecognizer) Abort() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "abort")
	return nil
}

func (f *fakeRecognizer) getCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]string, len(f.calls))
	copy(cp, f.calls)
	return cp
}

type recordingListener struct {
	mu      sync.Mutex
	events  []string
	stopped []domain.StopReason
}

func (l *recordingListener) record(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *recordingListener) OnStatus(pane domain.Language, state domain.PaneState) {
	l.record(fmt.Sprintf("status:%s:%s", pane, state))
}

func (l *recordingListener) OnContent(pane domain.Language, text string, interim bool) {
	kind := "final"
	if interim {
		kind = "interim"
	}
	l.record(fmt.Sprintf("content:%s:%s:%s", pane, kind, text))
}

func (l *recordingListener) OnTranslation(t *domain.Translation) {
	l.record("translation:" + t.TranslatedText)
}

func (l *recordingListener) OnSpeak(lang domain.Language, text string) {
	l.record(fmt.Sprintf("speak:%s:%s", lang, text))
}

func (l *recordingListener) OnError(code, message string) {
	l.record("error:" + code)
}

func (l *recordingListener) OnStopped(reason domain.StopReason) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopped = append(l.stopped, reason)
	l.events = append(l.events, "stopped:"+string(reason))
}

func (l *recordingListener) getEvents() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := make([]string, len(l.events))
	copy(cp, l.events)
	return cp
}

func (l *recordingListener) getStopped() []domain.StopReason {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := make([]domain.StopReason, len(l.stopped))
	copy(cp, l.stopped)
	return cp
}

type recordingSink struct {
	mu         sync.Mutex
	utterances []domain.Utterance
}

func (s *recordingSink) Submit(u domain.Utterance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.utterances = append(s.utterances, u)
}

func (s *recordingSink) getUtterances() []domain.Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]domain.Utterance, len(s.utterances))
	copy(cp, s.utterances)
	return cp
}

type recordingObserver struct {
	mu       sync.Mutex
	reasons  []string
	switches int
	detected []domain.Language
}

func (o *recordingObserver) RecognizerStarted(lang domain.Language, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reasons = append(o.reasons, reason)
}

func (o *recordingObserver) LanguageSwitched(from, to domain.Language) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.switches++
}

func (o *recordingObserver) LanguageDetected(lang domain.Language) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.detected = append(o.detected, lang)
}

func (o *recordingObserver) getDetected() []domain.Language {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]domain.Language(nil), o.detected...)
}

func (o *recordingObserver) SessionStopped(domain.StopReason) {}

func (o *recordingObserver) getReasons() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	cp := make([]string, len(o.reasons))
	copy(cp, o.reasons)
	return cp
}

// --- Helpers ---

type harness struct {
	session    *Session
	clock      *clockwork.FakeClock
	recognizer *fakeRecognizer
	listener   *recordingListener
	sink       *recordingSink
	observer   *recordingObserver
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock:      clockwork.NewFakeClock(),
		recognizer: &fakeRecognizer{},
		listener:   &recordingListener{},
		sink:       &recordingSink{},
		observer:   &recordingObserver{},
	}
	h.session = NewSession(DefaultConfig(), Deps{
		Clock:      h.clock,
		Recognizer: h.recognizer,
		Listener:   h.listener,
		Sink:       h.sink,
		Observer:   h.observer,
	})
	t.Cleanup(h.session.Close)
	return h
}

func (h *harness) state(t *testing.T) Snapshot {
	t.Helper()
	snap, err := h.session.State()
	require.NoError(t, err)
	return snap
}

func (h *harness) waitForCalls(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(h.recognizer.getCalls()) >= n
	}, time.Second, 5*time.Millisecond)
}

func final(text string) domain.RecognitionResult {
	return domain.RecognitionResult{Transcript: text, IsFinal: true}
}

func interim(text string) domain.RecognitionResult {
	return domain.RecognitionResult{Transcript: text}
}

// --- Start / Stop / Toggle ---

func TestStart_StartsRecognizerWithLanguageTag(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageJapanese))
	snap := h.state(t)

	assert.True(t, snap.Listening)
	assert.Equal(t, domain.LanguageJapanese, snap.Mode)
	assert.Equal(t, domain.LanguageJapanese, snap.Language)
	assert.Equal(t, []string{"start:ja-JP"}, h.recognizer.getCalls())
	assert.Equal(t, []string{"status:ja:listening", "status:vi:idle"}, h.listener.getEvents())
}

func TestStart_AutoListensOnBothPanesAndDefaultsToJapanese(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageAuto))
	snap := h.state(t)

	assert.Equal(t, domain.LanguageAuto, snap.Mode)
	assert.Equal(t, domain.LanguageJapanese, snap.Language)
	assert.Equal(t, []string{"start:ja-JP"}, h.recognizer.getCalls())
	assert.Equal(t, []string{"status:ja:listening", "status:vi:listening"}, h.listener.getEvents())
}

func TestStart_RejectsUnknownLanguage(t *testing.T) {
	h := newHarness(t)

	err := h.session.Start(domain.LanguageNone)
	assert.ErrorIs(t, err, domain.ErrUnsupportedLanguage)

	snap := h.state(t)
	assert.False(t, snap.Listening)
	assert.Empty(t, h.recognizer.getCalls())
}

func TestStart_RecognizerFailureStopsSession(t *testing.T) {
	h := newHarness(t)
	h.recognizer.startErr = errors.New("connection gone")

	require.NoError(t, h.session.Start(domain.LanguageVietnamese))
	snap := h.state(t)

	assert.False(t, snap.Listening)
	assert.Equal(t, []domain.StopReason{domain.StopFatalError}, h.listener.getStopped())
}

func TestToggle_SameLanguageStops(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Toggle(domain.LanguageJapanese))
	h.session.OnStart()
	require.NoError(t, h.session.Toggle(domain.LanguageJapanese))
	snap := h.state(t)

	assert.False(t, snap.Listening)
	assert.Equal(t, domain.LanguageNone, snap.Mode)
	assert.Equal(t, []string{"start:ja-JP", "stop"}, h.recognizer.getCalls())
	assert.Equal(t, []domain.StopReason{domain.StopUser}, h.listener.getStopped())
}

func TestToggle_OtherLanguageRestartsAfterEnd(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Toggle(domain.LanguageJapanese))
	h.session.OnStart()
	require.NoError(t, h.session.Toggle(domain.LanguageVietnamese))
	snap := h.state(t)

	assert.True(t, snap.Listening)
	assert.Equal(t, domain.LanguageVietnamese, snap.Mode)
	assert.True(t, snap.RestartPending)
	assert.Equal(t, []string{"start:ja-JP", "stop"}, h.recognizer.getCalls())

	h.session.OnEnd()
	snap = h.state(t)

	assert.False(t, snap.RestartPending)
	assert.Equal(t, []string{"start:ja-JP", "stop", "start:vi-VN"}, h.recognizer.getCalls())
	assert.Empty(t, h.listener.getStopped())
}

func TestStop_IdleSessionIsNoop(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Stop())
	h.state(t)

	assert.Empty(t, h.recognizer.getCalls())
	assert.Empty(t, h.listener.getEvents())
}

func TestStop_ResetsTransientState(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageVietnamese))
	h.session.OnStart()
	h.session.OnResult(0, []domain.RecognitionResult{final("xin chào")})
	require.NoError(t, h.session.Stop())
	snap := h.state(t)

	assert.Equal(t, Snapshot{
		Mode:        domain.LanguageNone,
		Recognizing: true,
		Language:    domain.LanguageVietnamese,
		Detected:    domain.LanguageNone,
	}, snap)

	h.session.OnEnd()
	snap = h.state(t)
	assert.False(t, snap.Recognizing)
	assert.Equal(t, []string{"start:vi-VN", "stop"}, h.recognizer.getCalls())
}

// --- Results ---

func TestOnResult_AccumulatesJapaneseWithoutSpaces(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageJapanese))
	h.session.OnStart()
	h.session.OnResult(0, []domain.RecognitionResult{final("こんにちは")})
	h.session.OnResult(1, []domain.RecognitionResult{final("こんにちは"), interim("元気")})
	h.session.OnResult(1, []domain.RecognitionResult{final("こんにちは"), final("元気ですか")})
	snap := h.state(t)

	assert.Equal(t, "こんにちは元気ですか", snap.Accumulated)
	events := h.listener.getEvents()
	assert.Contains(t, events, "content:ja:final:こんにちは")
	assert.Contains(t, events, "content:ja:interim:こんにちは元気")
	assert.Contains(t, events, "content:ja:final:こんにちは元気ですか")

	utterances := h.sink.getUtterances()
	require.Len(t, utterances, 2)
	assert.Equal(t, domain.Utterance{Seq: 1, Text: "こんにちは", Source: domain.LanguageJapanese}, utterances[0])
	assert.Equal(t, domain.Utterance{Seq: 2, Text: "元気ですか", Source: domain.LanguageJapanese}, utterances[1])
}

func TestOnResult_AccumulatesVietnameseWithSpaces(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageVietnamese))
	h.session.OnStart()
	h.session.OnResult(0, []domain.RecognitionResult{final(" xin chào ")})
	h.session.OnResult(1, []domain.RecognitionResult{final("xin chào"), final("bạn khỏe không")})
	snap := h.state(t)

	assert.Equal(t, "xin chào bạn khỏe không", snap.Accumulated)
}

func TestOnResult_InterimOnlyIsNotTranslated(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageJapanese))
	h.session.OnResult(0, []domain.RecognitionResult{interim("こん")})
	snap := h.state(t)

	assert.Empty(t, snap.Accumulated)
	assert.Empty(t, h.sink.getUtterances())
	assert.Contains(t, h.listener.getEvents(), "content:ja:interim:こん")
}

func TestOnResult_IgnoredWhenNotListening(t *testing.T) {
	h := newHarness(t)

	h.session.OnResult(0, []domain.RecognitionResult{final("こんにちは")})
	h.state(t)

	assert.Empty(t, h.sink.getUtterances())
	assert.Empty(t, h.listener.getEvents())
}

func TestOnResult_ResultIndexBeyondBatchIsIgnored(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageJapanese))
	h.session.OnResult(3, []domain.RecognitionResult{final("こんにちは")})
	h.state(t)

	assert.Empty(t, h.sink.getUtterances())
}

// --- Auto mode / language switch ---

func TestAutoMode_SwitchesRecognizerOnConfidentDetection(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageAuto))
	h.session.OnStart()
	h.session.OnResult(0, []domain.RecognitionResult{final("Xin chào, tôi là sinh viên")})
	snap := h.state(t)

	assert.Equal(t, domain.LanguageVietnamese, snap.Language)
	assert.Equal(t, domain.LanguageVietnamese, snap.Detected)
	assert.True(t, snap.RestartPending)
	assert.Equal(t, []string{"start:ja-JP", "abort"}, h.recognizer.getCalls())

	utterances := h.sink.getUtterances()
	require.Len(t, utterances, 1)
	assert.Equal(t, domain.LanguageVietnamese, utterances[0].Source)
	assert.Contains(t, h.listener.getEvents(), "content:vi:final:Xin chào, tôi là sinh viên")

	// The browser reports an abort as an "aborted" error followed by the end callback.
	h.session.OnError(domain.RecognitionErrorAborted)
	h.session.OnEnd()
	snap = h.state(t)

	assert.True(t, snap.Listening)
	assert.Equal(t, 0, snap.Retries)
	assert.Equal(t, []string{"start:ja-JP", "abort", "start:vi-VN"}, h.recognizer.getCalls())
	assert.Equal(t, []string{ReasonStart, ReasonSwitch}, h.observer.getReasons())
	assert.Equal(t, []domain.Language{domain.LanguageVietnamese}, h.observer.getDetected())
	assert.Empty(t, h.listener.getStopped())
}

func TestAutoMode_SwitchRestartsOnlyAfterEndCallback(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageAuto))
	h.session.OnStart()
	h.session.OnResult(0, []domain.RecognitionResult{final("Xin chào, tôi là sinh viên")})
	h.session.OnError(domain.RecognitionErrorAborted)
	h.clock.Advance(5 * time.Second)
	snap := h.state(t)

	assert.True(t, snap.RestartPending)
	assert.Equal(t, []string{"start:ja-JP", "abort"}, h.recognizer.getCalls())

	h.session.OnEnd()
	h.state(t)
	assert.Equal(t, []string{"start:ja-JP", "abort", "start:vi-VN"}, h.recognizer.getCalls())
}

func TestAutoMode_SameLanguageDoesNotSwitch(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageAuto))
	h.session.OnStart()
	h.session.OnResult(0, []domain.RecognitionResult{final("ありがとうございます")})
	snap := h.state(t)

	assert.Equal(t, domain.LanguageJapanese, snap.Detected)
	assert.False(t, snap.RestartPending)
	assert.Equal(t, []string{"start:ja-JP"}, h.recognizer.getCalls())
}

func TestAutoMode_UndecidedFragmentKeepsCurrentLanguage(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageAuto))
	h.session.OnStart()
	h.session.OnResult(0, []domain.RecognitionResult{final("123")})
	snap := h.state(t)

	assert.Equal(t, domain.LanguageJapanese, snap.Detected)
	assert.Equal(t, []string{"start:ja-JP"}, h.recognizer.getCalls())
}

func TestAutoMode_RestartUsesLastDetectedLanguage(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageAuto))
	h.session.OnStart()
	h.session.OnResult(0, []domain.RecognitionResult{final("cảm ơn bạn rất nhiều")})
	h.session.OnEnd()
	require.NoError(t, h.session.Stop())
	require.NoError(t, h.session.Start(domain.LanguageAuto))
	h.session.OnEnd()
	snap := h.state(t)

	assert.Equal(t, domain.LanguageVietnamese, snap.Language)
	assert.Equal(t, []string{"start:ja-JP", "abort", "start:vi-VN", "stop", "start:vi-VN"}, h.recognizer.getCalls())
}

// --- Errors and retries ---

func TestOnError_FatalStops(t *testing.T) {
	for _, code := range []string{
		domain.RecognitionErrorNotAllowed,
		domain.RecognitionErrorServiceNotAllowed,
		domain.RecognitionErrorLanguageNotSupported,
	} {
		t.Run(code, func(t *testing.T) {
			h := newHarness(t)

			require.NoError(t, h.session.Start(domain.LanguageJapanese))
			h.session.OnStart()
			h.session.OnError(code)
			snap := h.state(t)

			assert.False(t, snap.Listening)
			assert.Equal(t, []string{"start:ja-JP", "stop"}, h.recognizer.getCalls())
			assert.Contains(t, h.listener.getEvents(), "error:"+code)
			assert.Equal(t, []domain.StopReason{domain.StopFatalError}, h.listener.getStopped())
		})
	}
}

func TestOnError_TransientRetriesWithLinearBackoff(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageJapanese))
	h.session.OnStart()
	h.session.OnError(domain.RecognitionErrorNetwork)
	h.session.OnEnd()
	snap := h.state(t)

	assert.Equal(t, 1, snap.Retries)
	assert.True(t, snap.RestartPending)
	assert.Equal(t, []string{"start:ja-JP"}, h.recognizer.getCalls())

	h.clock.Advance(999 * time.Millisecond)
	h.state(t)
	assert.Len(t, h.recognizer.getCalls(), 1)

	h.clock.Advance(time.Millisecond)
	h.waitForCalls(t, 2)

	h.session.OnStart()
	h.session.OnError(domain.RecognitionErrorNoSpeech)
	h.session.OnEnd()
	snap = h.state(t)
	assert.Equal(t, 2, snap.Retries)

	h.clock.Advance(time.Second)
	h.state(t)
	assert.Len(t, h.recognizer.getCalls(), 2)

	h.clock.Advance(time.Second)
	h.waitForCalls(t, 3)

	assert.Equal(t, []string{"start:ja-JP", "start:ja-JP", "start:ja-JP"}, h.recognizer.getCalls())
	assert.Equal(t, []string{ReasonStart, ReasonRetry, ReasonRetry}, h.observer.getReasons())
	assert.Empty(t, h.listener.getStopped())
}

func TestOnError_RetryBeforeEndWaitsForEnd(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageJapanese))
	h.session.OnStart()
	h.session.OnError(domain.RecognitionErrorNetwork)
	h.state(t)

	h.clock.Advance(time.Second)
	h.waitForCalls(t, 2)
	assert.Equal(t, []string{"start:ja-JP", "abort"}, h.recognizer.getCalls())

	h.session.OnEnd()
	h.state(t)
	assert.Equal(t, []string{"start:ja-JP", "abort", "start:ja-JP"}, h.recognizer.getCalls())
}

func TestOnError_StopsWhenRetriesExhausted(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageVietnamese))
	for i := 1; i <= DefaultMaxRetries; i++ {
		h.session.OnStart()
		h.session.OnError(domain.RecognitionErrorNoSpeech)
		h.session.OnEnd()
		h.state(t)
		h.clock.Advance(DefaultRetryDelay * time.Duration(i))
		h.waitForCalls(t, i+1)
	}

	h.session.OnStart()
	h.session.OnError(domain.RecognitionErrorNoSpeech)
	snap := h.state(t)

	assert.False(t, snap.Listening)
	assert.Contains(t, h.listener.getEvents(), "error:"+domain.RecognitionErrorNoSpeech)
	assert.Equal(t, []domain.StopReason{domain.StopRetriesSpent}, h.listener.getStopped())
}

func TestOnResult_ResetsRetryCounter(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageJapanese))
	h.session.OnStart()
	h.session.OnError(domain.RecognitionErrorNetwork)
	h.session.OnEnd()
	h.state(t)
	h.clock.Advance(time.Second)
	h.waitForCalls(t, 2)

	h.session.OnStart()
	h.session.OnResult(0, []domain.RecognitionResult{final("はい")})
	snap := h.state(t)

	assert.Equal(t, 0, snap.Retries)
}

func TestOnError_AbortedIgnoredAfterStop(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageJapanese))
	h.session.OnStart()
	require.NoError(t, h.session.Stop())
	h.session.OnError(domain.RecognitionErrorAborted)
	h.session.OnEnd()
	h.state(t)

	assert.NotContains(t, h.listener.getEvents(), "error:"+domain.RecognitionErrorAborted)
	assert.Equal(t, []string{"start:ja-JP", "stop"}, h.recognizer.getCalls())
}

func TestOnError_StaleRetryTimerIgnoredAfterRestart(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageJapanese))
	h.session.OnStart()
	h.session.OnError(domain.RecognitionErrorNetwork)
	h.session.OnEnd()
	require.NoError(t, h.session.Stop())
	require.NoError(t, h.session.Start(domain.LanguageJapanese))
	h.state(t)
	require.Equal(t, []string{"start:ja-JP", "start:ja-JP"}, h.recognizer.getCalls())

	h.clock.Advance(time.Second)
	assert.Never(t, func() bool {
		return len(h.recognizer.getCalls()) > 2
	}, 50*time.Millisecond, 5*time.Millisecond)
}

// --- Continuous mode ---

func TestOnEnd_RestartsWhileListening(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageVietnamese))
	h.session.OnStart()
	h.session.OnEnd()
	snap := h.state(t)

	assert.True(t, snap.Listening)
	assert.False(t, snap.Recognizing)
	assert.Equal(t, []string{"start:vi-VN", "start:vi-VN"}, h.recognizer.getCalls())
	assert.Equal(t, []string{ReasonStart, ReasonContinuous}, h.observer.getReasons())
}

// --- Silence timeout ---

func TestSilenceTimeout_StopsSession(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageJapanese))
	h.session.OnStart()
	h.state(t)

	h.clock.Advance(DefaultSilenceTimeout)
	require.Eventually(t, func() bool {
		return len(h.listener.getStopped()) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []domain.StopReason{domain.StopSilenceTimeout}, h.listener.getStopped())
	assert.Equal(t, []string{"start:ja-JP", "stop"}, h.recognizer.getCalls())
}

func TestSilenceTimeout_ResultRearmsTimer(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageJapanese))
	h.session.OnStart()
	h.state(t)

	h.clock.Advance(20 * time.Second)
	h.session.OnResult(0, []domain.RecognitionResult{interim("えっと")})
	h.state(t)

	h.clock.Advance(20 * time.Second)
	assert.Never(t, func() bool {
		return len(h.listener.getStopped()) > 0
	}, 50*time.Millisecond, 5*time.Millisecond)

	h.clock.Advance(10 * time.Second)
	require.Eventually(t, func() bool {
		return len(h.listener.getStopped()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, domain.StopSilenceTimeout, h.listener.getStopped()[0])
}

// --- Close ---

func TestClose_StopsListeningAndRejectsCommands(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.Start(domain.LanguageJapanese))
	h.session.OnStart()
	h.session.Close()

	assert.Equal(t, []domain.StopReason{domain.StopClosed}, h.listener.getStopped())
	assert.ErrorIs(t, h.session.Start(domain.LanguageJapanese), domain.ErrSessionClosed)
	_, err := h.session.State()
	assert.ErrorIs(t, err, domain.ErrSessionClosed)

	// Close is idempotent; the harness cleanup calls it again.
	h.session.Close()
}
