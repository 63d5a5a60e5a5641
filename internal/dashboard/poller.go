package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// Refresher runs one refresh. *Controller satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) (ViewModel, error)
}

// Result is one settled refresh.
type Result struct {
	View ViewModel
	Err  error
	// Next is the delay before the following refresh starts.
	Next time.Duration
}

// Poller refreshes on a self-rescheduling timer. A refresh never overlaps
// the next one: the delay starts only after the previous refresh settled.
// Failed or empty refreshes stretch the delay exponentially up to the
// maximum; the next successful one resets it.
type Poller struct {
	refresher   Refresher
	interval    time.Duration
	maxInterval time.Duration
	logger      *zap.Logger
	onResult    func(Result)

	after func(time.Duration) <-chan time.Time
}

// NewPoller creates a poller. onResult is called from the polling
// goroutine after every refresh and may be nil.
func NewPoller(r Refresher, interval, maxInterval time.Duration, logger *zap.Logger, onResult func(Result)) *Poller {
	if maxInterval < interval {
		maxInterval = interval
	}
	return &Poller{
		refresher:   r,
		interval:    interval,
		maxInterval: maxInterval,
		logger:      logger.Named("poller"),
		onResult:    onResult,
		after:       time.After,
	}
}

func (p *Poller) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.interval
	b.MaxInterval = p.maxInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.Reset()
	return b
}

// Run refreshes immediately and then keeps going until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	b := p.newBackOff()
	failures := 0

	for {
		view, err := p.refresher.Refresh(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var next time.Duration
		switch {
		case errors.Is(err, ErrStale), errors.Is(err, ErrNoSelection):
			next = p.interval
		case err != nil || view.Dataset.Empty():
			failures++
			next = b.NextBackOff()
			p.logger.Debug("Backing off after unsuccessful refresh",
				zap.Int("failures", failures),
				zap.Duration("next", next),
				zap.Error(err))
		default:
			if failures > 0 {
				p.logger.Debug("Refresh recovered", zap.Int("failures", failures))
			}
			failures = 0
			b.Reset()
			next = p.interval
		}

		if p.onResult != nil {
			p.onResult(Result{View: view, Err: err, Next: next})
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.after(next):
		}
	}
}
