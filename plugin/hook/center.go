// Package hook lets extensions observe and adjust simulation events without
// the core depending on them.
package hook

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	// ErrInterrupt signals that a handler wants to stop further processing.
	ErrInterrupt = errors.New("hook interrupted")
	// ErrUnknownEvent is returned by Register for names that are not hook points.
	ErrUnknownEvent = errors.New("hook: unknown event")
)

// Game hook points. Damage hooks receive a *battle.DamageResult that the
// handler may modify in place; the others receive a value payload.
const (
	AfterPlayerDamageCalc = "after_player_damage_calc"
	AfterEnemyDamageCalc  = "after_enemy_damage_calc"
	OnEnemySpawn          = "on_enemy_spawn"
	OnEnemyDefeated       = "on_enemy_defeated"
	OnItemDrop            = "on_item_drop"
	OnPlayerLevelUp       = "on_player_level_up"
	OnZoneUnlocked        = "on_zone_unlocked"
	OnPlayerDeath         = "on_player_death"
	OnTalentAllocated     = "on_talent_allocated"
	OnAscend              = "on_ascend"
)

var events = []string{
	AfterPlayerDamageCalc, AfterEnemyDamageCalc,
	OnEnemySpawn, OnEnemyDefeated, OnItemDrop,
	OnPlayerLevelUp, OnZoneUnlocked, OnPlayerDeath,
	OnTalentAllocated, OnAscend,
}

// Events lists every hook point in the order a run meets them.
func Events() []string { return slices.Clone(events) }

// HookFn handles one event. It returns the (possibly replaced) payload and
// ErrInterrupt to stop the remaining handlers.
type HookFn func(ctx context.Context, event string, data any) (any, error)

type hookEntry struct {
	priority int
	fn       HookFn
	name     string
}

// HookCenter keeps handlers per hook point. The simulation triggers from a
// single goroutine; registration may happen from any.
type HookCenter struct {
	mu    sync.RWMutex
	hooks map[string][]*hookEntry
}

func NewHookCenter() *HookCenter {
	return &HookCenter{hooks: make(map[string][]*hookEntry)}
}

// Register adds fn for event. Lower priorities run first; equal priorities
// run in registration order. name is the key for Unregister.
func (hc *HookCenter) Register(event string, priority int, name string, fn HookFn) error {
	if !slices.Contains(events, event) {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()
	entries := append(hc.hooks[event], &hookEntry{priority: priority, fn: fn, name: name})
	slices.SortStableFunc(entries, func(a, b *hookEntry) int {
		return cmp.Compare(a.priority, b.priority)
	})
	hc.hooks[event] = entries
	return nil
}

// Unregister removes the handlers registered under name for event.
func (hc *HookCenter) Unregister(event, name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.hooks[event] = slices.DeleteFunc(hc.hooks[event], func(e *hookEntry) bool { return e.name == name })
}

// UnregisterAll removes every handler registered under name.
func (hc *HookCenter) UnregisterAll(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	for event, entries := range hc.hooks {
		hc.hooks[event] = slices.DeleteFunc(entries, func(e *hookEntry) bool { return e.name == name })
	}
}

// Trigger runs the handlers for event in priority order, threading data
// through each. ErrInterrupt stops the chain and is returned; other errors
// and panics skip only the failing handler.
func (hc *HookCenter) Trigger(ctx context.Context, event string, data any) (any, error) {
	hc.mu.RLock()
	entries := slices.Clone(hc.hooks[event])
	hc.mu.RUnlock()

	for _, e := range entries {
		out, err := call(ctx, e, event, data)
		if errors.Is(err, ErrInterrupt) {
			return out, err
		}
		if err == nil {
			data = out
		}
	}
	return data, nil
}

func call(ctx context.Context, e *hookEntry, event string, data any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = data, fmt.Errorf("hook %s/%s panicked: %v", event, e.name, r)
		}
	}()
	return e.fn(ctx, event, data)
}

// Has reports whether any handler is registered for event.
func (hc *HookCenter) Has(event string) bool {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return len(hc.hooks[event]) > 0
}
