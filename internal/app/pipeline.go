package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/pscheid92/lingobridge/internal/adapter/metrics"
	"github.com/pscheid92/lingobridge/internal/domain"
	"github.com/pscheid92/lingobridge/internal/platform/correlation"
)

const defaultPipelineQueueSize = 32

// PipelineConfig configures a Pipeline. Metrics and Logger are optional.
type PipelineConfig struct {
	ClientID  uuid.UUID
	AutoSpeak bool
	QueueSize int
	Metrics   *metrics.RecognitionMetrics
	Logger    *slog.Logger
}

// Pipeline translates finalized utterances of one session in order, off the
// session goroutine, and reports results to the session's listener.
type Pipeline struct {
	svc      *Service
	listener domain.SessionListener
	cfg      PipelineConfig
	logger   *slog.Logger

	queue     chan domain.Utterance
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

var _ domain.UtteranceSink = (*Pipeline)(nil)

// NewPipeline starts the pipeline worker. It stops when ctx is cancelled or
// Close is called.
func NewPipeline(ctx context.Context, svc *Service, listener domain.SessionListener, cfg PipelineConfig) *Pipeline {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultPipelineQueueSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Pipeline{
		svc:      svc,
		listener: listener,
		cfg:      cfg,
		logger:   logger,
		queue:    make(chan domain.Utterance, cfg.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

// Submit enqueues an utterance without blocking. When the queue is full the
// utterance is dropped.
func (p *Pipeline) Submit(u domain.Utterance) {
	if p.ctx.Err() != nil {
		return
	}

	select {
	case p.queue <- u:
	default:
		p.logger.Warn("Translation queue full, dropping utterance", "seq", u.Seq, "source", u.Source)
		if p.cfg.Metrics != nil {
			p.cfg.Metrics.UtterancesDropped.Inc()
		}
	}
}

// Close stops the worker and waits for it. Queued utterances are discarded.
func (p *Pipeline) Close() {
	p.closeOnce.Do(p.cancel)
	<-p.done
}

func (p *Pipeline) run() {
	defer close(p.done)

	for {
		select {
		case <-p.ctx.Done():
			return
		case u := <-p.queue:
			p.handle(u)
		}
	}
}

func (p *Pipeline) handle(u domain.Utterance) {
	ctx := correlation.WithID(p.ctx, correlation.NewID())

	res, err := p.svc.Translate(ctx, p.cfg.ClientID, u.Text, u.Source)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.WarnContext(ctx, "Utterance translation failed", "seq", u.Seq, "source", u.Source, "error", err)
		p.listener.OnContent(u.Source.Target(), u.Source.ErrorText(), false)
		return
	}

	p.listener.OnContent(res.TargetLanguage, res.TranslatedText, false)
	p.listener.OnTranslation(res)
	if p.cfg.AutoSpeak && res.Provider != domain.ProviderPlaceholder {
		p.listener.OnSpeak(res.TargetLanguage, res.TranslatedText)
	}
}
