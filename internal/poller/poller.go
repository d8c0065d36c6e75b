// Package poller drives the fetch, parse and store cycle on a fixed
// interval. The first cycle runs immediately on Start, later cycles on
// each tick. At most one cycle is in flight; ticks that arrive while a
// cycle is still running are skipped. Failures are logged and never
// stop the loop.
package poller

import (
	"context"
	"sync"
	"sync/atomic"

	"codeberg.org/mutker/gpufanbridge/internal/errors"
	"codeberg.org/mutker/gpufanbridge/internal/logger"
	"codeberg.org/mutker/gpufanbridge/internal/telemetry"
	"github.com/jonboulle/clockwork"
)

type Poller struct {
	fetcher telemetry.Fetcher
	parser  telemetry.Decoder
	store   Writer
	cfg     Config
	logger  logger.Logger
	clock   clockwork.Clock

	inFlight atomic.Bool

	lifecycle sync.Mutex
	started   bool
	stopped   bool
	cancel    context.CancelFunc
	stopOnce  sync.Once
	wg        sync.WaitGroup

	mu      sync.Mutex
	stats   Stats
	failing bool
}

type Option func(*Poller)

// WithClock replaces the real clock, mostly for tests
func WithClock(c clockwork.Clock) Option {
	return func(p *Poller) {
		p.clock = c
	}
}

func New(fetcher telemetry.Fetcher, parser telemetry.Decoder, store Writer, cfg Config, log logger.Logger, opts ...Option) (*Poller, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}
	if fetcher == nil || parser == nil || store == nil {
		return nil, errFactory.WithMessage(errors.ErrInvalidArgument, "Poller needs a fetcher, a parser and a store")
	}
	if log == nil {
		log = logger.Nop()
	}

	p := &Poller{
		fetcher: fetcher,
		parser:  parser,
		store:   store,
		cfg:     cfg,
		logger:  log,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Start launches the polling loop. The loop lives until Stop is called
// or ctx is canceled.
func (p *Poller) Start(ctx context.Context) error {
	errFactory := errors.New()

	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	if p.stopped {
		return errFactory.New(ErrStopped)
	}
	if p.started {
		return errFactory.New(ErrAlreadyRunning)
	}
	p.started = true

	ctx, p.cancel = context.WithCancel(ctx)

	p.logger.Info().
		Str("endpoint", p.cfg.Endpoint).
		Dur("interval", p.cfg.Interval).
		Msg("Starting telemetry poller")

	p.wg.Add(1)
	go p.loop(ctx)

	return nil
}

// Stop cancels the timer and any in-flight cycle, then waits for both to
// exit. Only the first call has an effect.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		p.lifecycle.Lock()
		p.stopped = true
		cancel := p.cancel
		p.lifecycle.Unlock()

		if cancel != nil {
			cancel()
		}
		p.wg.Wait()

		p.logger.Info().Msg("Telemetry poller stopped")
	})
}

// PollOnce runs a single synchronous cycle outside the timer. A stopped
// poller refuses, so a torn-down accessory is never written again.
func (p *Poller) PollOnce(ctx context.Context) error {
	p.lifecycle.Lock()
	stopped := p.stopped
	p.lifecycle.Unlock()
	if stopped {
		return errors.New().New(ErrStopped)
	}

	if !p.inFlight.CompareAndSwap(false, true) {
		return errors.New().New(ErrPollInProgress)
	}
	defer p.inFlight.Store(false)

	return p.cycle(ctx)
}

// Busy reports whether a cycle is currently in flight
func (p *Poller) Busy() bool {
	return p.inFlight.Load()
}

// Stats returns a copy of the cycle counters
func (p *Poller) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	p.trigger(ctx)

	ticker := p.clock.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			p.trigger(ctx)
		}
	}
}

func (p *Poller) trigger(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.mu.Lock()
		p.stats.Skipped++
		p.mu.Unlock()
		p.logger.Debug().Msg("Previous poll still running, skipping tick")
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inFlight.Store(false)
		_ = p.cycle(ctx)
	}()
}

func (p *Poller) cycle(ctx context.Context) error {
	p.mu.Lock()
	p.stats.Attempts++
	attempt := p.stats.Attempts
	p.mu.Unlock()

	snap, err := p.poll(ctx)
	if err != nil {
		if ctx.Err() != nil {
			p.logger.Debug().Uint64("attempt", attempt).Msg("Poll aborted")
			return err
		}
		p.recordFailure(attempt, err)
		return err
	}

	p.store.Write(snap)
	p.recordSuccess(attempt, snap)

	return nil
}

func (p *Poller) poll(ctx context.Context) (telemetry.Snapshot, error) {
	raw, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return telemetry.Snapshot{}, err
	}

	return p.parser.Parse(raw)
}

func (p *Poller) recordSuccess(attempt uint64, snap telemetry.Snapshot) {
	p.mu.Lock()
	recovered := p.failing
	p.failing = false
	p.stats.Successes++
	p.stats.LastSuccess = p.clock.Now()
	p.mu.Unlock()

	if recovered {
		p.logger.Info().Str("endpoint", p.cfg.Endpoint).Msg("Telemetry endpoint recovered")
	}

	p.logger.Debug().
		Uint64("attempt", attempt).
		Float64("rotation_speed", snap.RotationSpeed).
		Float64("temperature", snap.TemperatureCelsius).
		Msg("Telemetry updated")
}

func (p *Poller) recordFailure(attempt uint64, err error) {
	code := errors.CodeOf(err)
	now := p.clock.Now()

	p.mu.Lock()
	p.stats.Failures++
	p.stats.LastError = err.Error()
	p.stats.LastErrorCode = code
	p.stats.LastFailure = now
	p.failing = true
	p.mu.Unlock()

	var event *logger.LogEvent
	var appErr errors.Error
	if errors.As(err, &appErr) {
		event = p.logger.ErrorWithCode(appErr)
	} else {
		event = &logger.LogEvent{Event: p.logger.Error().Err(err)}
	}

	event.Str("endpoint", p.cfg.Endpoint).
		Uint64("attempt", attempt).
		Time("failed_at", now).
		Msg("Telemetry poll failed")
}
