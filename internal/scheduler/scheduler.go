package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TickFunc runs one refresh cycle.
type TickFunc func(ctx context.Context) error

// Options tune scheduler behaviour.
type Options struct {
	Interval       time.Duration
	StartupDelay   time.Duration
	RunImmediately bool
}

// Scheduler drives fixed-interval execution of the refresh pipeline. Ticks
// run synchronously on the scheduler goroutine, so a refresh slower than
// the interval delays the next tick instead of overlapping it.
type Scheduler struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Scheduler instance.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	if opts.Interval <= 0 {
		panic("scheduler interval must be positive")
	}
	return &Scheduler{opts: opts, logger: logger.With().Str("component", "scheduler").Logger()}
}

// Run blocks, invoking the tick function every interval until ctx is
// cancelled. Tick errors are logged, never fatal.
func (s *Scheduler) Run(ctx context.Context, tick TickFunc) error {
	if s.opts.StartupDelay > 0 {
		timer := time.NewTimer(s.opts.StartupDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if s.opts.RunImmediately {
		s.runTick(ctx, tick)
	}

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runTick(ctx, tick)
		}
	}
}

func (s *Scheduler) runTick(ctx context.Context, tick TickFunc) {
	started := time.Now()
	s.logger.Debug().Msg("executing scheduled tick")
	if err := tick(ctx); err != nil {
		s.logger.Error().Err(err).Dur("elapsed", time.Since(started)).Msg("tick execution failed")
		return
	}
	s.logger.Debug().Dur("elapsed", time.Since(started)).Msg("tick completed")
}
