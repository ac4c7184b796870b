package hook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passThrough(_ context.Context, _ string, d any) (any, error) { return d, nil }

func TestTrigger_NoHandlers(t *testing.T) {
	hc := NewHookCenter()
	out, err := hc.Trigger(context.Background(), OnEnemyDefeated, 42)
	require.NoError(t, err)
	assert.Equal(t, 42, out)
	assert.False(t, hc.Has(OnEnemyDefeated))
}

func TestTrigger_DataFlowsInPriorityOrder(t *testing.T) {
	hc := NewHookCenter()
	hc.Register(AfterPlayerDamageCalc, 1, "addTen", func(_ context.Context, _ string, d any) (any, error) {
		return d.(int) + 10, nil
	})
	hc.Register(AfterPlayerDamageCalc, 0, "double", func(_ context.Context, event string, d any) (any, error) {
		assert.Equal(t, AfterPlayerDamageCalc, event)
		return d.(int) * 2, nil
	})
	out, err := hc.Trigger(context.Background(), AfterPlayerDamageCalc, 5)
	require.NoError(t, err)
	assert.Equal(t, 20, out)
	assert.True(t, hc.Has(AfterPlayerDamageCalc))
}

func TestTrigger_ErrInterrupt(t *testing.T) {
	hc := NewHookCenter()
	var secondCalled bool
	hc.Register(OnPlayerDeath, 0, "stopper", func(_ context.Context, _ string, d any) (any, error) {
		return d, ErrInterrupt
	})
	hc.Register(OnPlayerDeath, 1, "late", func(_ context.Context, _ string, d any) (any, error) {
		secondCalled = true
		return d, nil
	})
	_, err := hc.Trigger(context.Background(), OnPlayerDeath, nil)
	assert.True(t, errors.Is(err, ErrInterrupt))
	assert.False(t, secondCalled)
}

func TestTrigger_OtherErrorsContinue(t *testing.T) {
	hc := NewHookCenter()
	var secondCalled bool
	hc.Register(OnAscend, 0, "err", func(_ context.Context, _ string, d any) (any, error) {
		return d, errors.New("boom")
	})
	hc.Register(OnAscend, 1, "second", func(_ context.Context, _ string, d any) (any, error) {
		secondCalled = true
		return d, nil
	})
	_, err := hc.Trigger(context.Background(), OnAscend, nil)
	assert.NoError(t, err)
	assert.True(t, secondCalled)
}

func TestUnregister(t *testing.T) {
	hc := NewHookCenter()
	hc.Register(OnItemDrop, 0, "a", passThrough)
	hc.Register(OnItemDrop, 1, "b", passThrough)
	hc.Register(OnZoneUnlocked, 0, "a", passThrough)

	hc.Unregister(OnItemDrop, "a")
	assert.True(t, hc.Has(OnItemDrop))

	hc.UnregisterAll("a")
	assert.False(t, hc.Has(OnZoneUnlocked))
	hc.Unregister(OnItemDrop, "b")
	assert.False(t, hc.Has(OnItemDrop))
}

func TestRegister_UnknownEvent(t *testing.T) {
	hc := NewHookCenter()
	err := hc.Register("on_lunch", 0, "x", passThrough)
	assert.ErrorIs(t, err, ErrUnknownEvent)
	assert.False(t, hc.Has("on_lunch"))
	assert.Contains(t, Events(), OnAscend)
}

func TestTrigger_EqualPriorityKeepsOrder(t *testing.T) {
	hc := NewHookCenter()
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, hc.Register(OnEnemySpawn, 5, name, func(_ context.Context, _ string, d any) (any, error) {
			order = append(order, name)
			return d, nil
		}))
	}
	_, err := hc.Trigger(context.Background(), OnEnemySpawn, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestTrigger_PanicSkipsHandler(t *testing.T) {
	hc := NewHookCenter()
	require.NoError(t, hc.Register(OnPlayerLevelUp, 0, "bad", func(_ context.Context, _ string, d any) (any, error) {
		panic("broken extension")
	}))
	require.NoError(t, hc.Register(OnPlayerLevelUp, 1, "inc", func(_ context.Context, _ string, d any) (any, error) {
		return d.(int) + 1, nil
	}))
	out, err := hc.Trigger(context.Background(), OnPlayerLevelUp, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, out)
}
