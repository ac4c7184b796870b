package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrRunnerStopped is returned by Do once the runner loop has exited.
var ErrRunnerStopped = errors.New("session: runner stopped")

type request struct {
	fn   func(*Game) error
	done chan error
}

// Runner owns a Game on a single goroutine. The loop steps the game on a
// fixed tick and executes every Do call between steps, so the game itself
// needs no locking.
type Runner struct {
	game   *Game
	tick   time.Duration
	logger *zap.Logger
	now    func() time.Time

	reqs    chan request
	stopped chan struct{}
}

// NewRunner creates a runner stepping g every tick. Run starts it.
func NewRunner(g *Game, tick time.Duration, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tick <= 0 {
		tick = 50 * time.Millisecond
	}
	return &Runner{
		game:    g,
		tick:    tick,
		logger:  logger,
		now:     time.Now,
		reqs:    make(chan request),
		stopped: make(chan struct{}),
	}
}

// Run drives the game until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.stopped)
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	r.logger.Info("simulation started", zap.Duration("tick", r.tick))
	last := r.now()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("simulation stopped")
			return nil
		case <-ticker.C:
			now := r.now()
			r.step(ctx, now.Sub(last))
			last = now
		case req := <-r.reqs:
			req.done <- r.exec(req.fn)
		}
	}
}

func (r *Runner) step(ctx context.Context, dt time.Duration) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("simulation step panic", zap.Any("panic", rec), zap.Duration("dt", dt))
		}
	}()
	r.game.Step(ctx, dt)
}

func (r *Runner) exec(fn func(*Game) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("command panic", zap.Any("panic", rec))
			err = fmt.Errorf("session: command panic: %v", rec)
		}
	}()
	return fn(r.game)
}

// Do runs fn on the runner goroutine and returns its error. It blocks until
// fn has run, ctx is done or the runner has stopped.
func (r *Runner) Do(ctx context.Context, fn func(*Game) error) error {
	req := request{fn: fn, done: make(chan error, 1)}
	select {
	case r.reqs <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-r.stopped:
		return ErrRunnerStopped
	}
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
