package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/go-cmp/cmp"
	"k8s.io/utils/clock"

	"github.com/rickgao/fndash/internal/catalog"
)

// Source fetches the current catalog. *api.Client implements it.
type Source interface {
	ListFunctions(ctx context.Context) ([]catalog.Function, error)
}

// ChangeHandler receives the catalog each time it changes.
type ChangeHandler interface {
	HandleCatalog(fns []catalog.Function)
}

// ChangeHandlerFunc is a function adapter for ChangeHandler.
type ChangeHandlerFunc func([]catalog.Function)

func (f ChangeHandlerFunc) HandleCatalog(fns []catalog.Function) {
	f(fns)
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Poll interval (default: 30s)
	Timeout  time.Duration // Per-fetch timeout (default: 10s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 30 * time.Second,
		Timeout:  10 * time.Second,
	}
}

// Stats reports poller activity.
type Stats struct {
	Polls   int64
	Errors  int64
	Changes int64
}

// Poller periodically refreshes the function catalog.
type Poller struct {
	cfg     Config
	source  Source
	handler ChangeHandler
	clock   clock.WithTicker
	logger  *slog.Logger

	mu   sync.Mutex
	last []catalog.Function
	seen bool

	polls   atomic.Int64
	errors  atomic.Int64
	changes atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock sets the clock the poll ticker runs on.
func WithClock(c clock.WithTicker) Option {
	return func(p *Poller) {
		p.clock = c
	}
}

// New creates a new Poller.
func New(cfg Config, source Source, handler ChangeHandler, logger *slog.Logger, opts ...Option) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	p := &Poller{
		cfg:     cfg,
		source:  source,
		handler: handler,
		clock:   clock.RealClock{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	// Created here so that a fake clock sees the waiter as soon as Start returns.
	ticker := p.clock.NewTicker(p.cfg.Interval)

	p.wg.Add(1)
	go p.run(ticker)

	p.logger.Info("catalog poller started", "interval", p.cfg.Interval)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("catalog poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Latest returns the last catalog fetched successfully.
func (p *Poller) Latest() []catalog.Function {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Stats returns poller statistics.
func (p *Poller) Stats() Stats {
	return Stats{
		Polls:   p.polls.Load(),
		Errors:  p.errors.Load(),
		Changes: p.changes.Load(),
	}
}

// run is the main polling loop.
func (p *Poller) run(ticker clock.Ticker) {
	defer p.wg.Done()
	defer ticker.Stop()

	// Poll immediately on start.
	p.poll()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C():
			p.poll()
		}
	}
}

// poll fetches the catalog once and reports it if it changed.
func (p *Poller) poll() {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	defer cancel()

	p.polls.Add(1)
	start := p.clock.Now()

	fns, err := p.source.ListFunctions(ctx)
	if err != nil {
		p.errors.Add(1)
		p.logger.Warn("failed to refresh catalog", "error", err)
		return
	}

	p.mu.Lock()
	changed := !p.seen || !cmp.Equal(p.last, fns)
	p.last = fns
	p.seen = true
	p.mu.Unlock()

	p.logger.Debug("poll complete",
		"functions", len(fns),
		"changed", changed,
		"duration", p.clock.Since(start),
	)

	if changed {
		p.changes.Add(1)
		if p.handler != nil {
			p.handler.HandleCatalog(fns)
		}
	}
}
