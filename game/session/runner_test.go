package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kasuganosora/idlerpg/game/battle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startRunner(t *testing.T, g *Game) (*Runner, context.CancelFunc, <-chan error) {
	t.Helper()
	r := NewRunner(g, 5*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-r.stopped
	})
	return r, cancel, done
}

func TestRunner_StepsGame(t *testing.T) {
	g, _ := newTestGame(t)
	r, _, _ := startRunner(t, g)

	assert.Eventually(t, func() bool {
		var state battle.State
		_ = r.Do(context.Background(), func(g *Game) error {
			state = g.Encounter().State()
			return nil
		})
		return state == battle.Active
	}, time.Second, 10*time.Millisecond)
}

func TestRunner_DoReturnsError(t *testing.T) {
	g, _ := newTestGame(t)
	r, _, _ := startRunner(t, g)

	boom := errors.New("boom")
	assert.ErrorIs(t, r.Do(context.Background(), func(*Game) error { return boom }), boom)
	assert.ErrorIs(t, r.Do(context.Background(), func(g *Game) error { return g.GiveGold(0) }), ErrInvalidAmount)
}

func TestRunner_RecoversCommandPanic(t *testing.T) {
	g, _ := newTestGame(t)
	r, _, _ := startRunner(t, g)

	err := r.Do(context.Background(), func(*Game) error { panic("bad command") })
	require.Error(t, err)
	assert.NoError(t, r.Do(context.Background(), func(*Game) error { return nil }), "loop survives")
}

func TestRunner_StopsOnCancel(t *testing.T) {
	g, _ := newTestGame(t)
	r, cancel, done := startRunner(t, g)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
	assert.ErrorIs(t, r.Do(context.Background(), func(*Game) error { return nil }), ErrRunnerStopped)
}
