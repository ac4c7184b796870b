package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) *LocalCache {
	t.Helper()
	c, err := NewCache(Config{GCInterval: 10 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

// ---- KV ----

func TestKV_SetGet(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "idleRPG_save", `{"player":{}}`, 0))
	v, err := c.Get(ctx, "idleRPG_save")
	require.NoError(t, err)
	assert.Equal(t, `{"player":{}}`, v)

	ok, err := c.Exists(ctx, "idleRPG_save")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestKV_Missing(t *testing.T) {
	c := newCache(t)
	_, err := c.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKV_Overwrite(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", "a", 0))
	require.NoError(t, c.Set(ctx, "k", "b", 0))
	v, _ := c.Get(ctx, "k")
	assert.Equal(t, "b", v)
}

func TestKV_Del(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "a", "1", 0))
	require.NoError(t, c.LPush(ctx, "b", "x"))
	require.NoError(t, c.Del(ctx, "a", "b"))

	ok, _ := c.Exists(ctx, "a")
	assert.False(t, ok)
	ok, _ = c.Exists(ctx, "b")
	assert.False(t, ok)
}

func TestKV_TTLExpires(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "short", "v", 20*time.Millisecond))
	time.Sleep(50 * time.Millisecond)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)
	ok, _ := c.Exists(ctx, "short")
	assert.False(t, ok)
}

func TestGC_SweepsExpired(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "gone", "v", time.Millisecond))
	require.NoError(t, c.Set(ctx, "kept", "v", 0))

	c.sweep(time.Now().Add(time.Second))
	c.mu.RLock()
	defer c.mu.RUnlock()
	assert.NotContains(t, c.kv, "gone")
	assert.Contains(t, c.kv, "kept")
}

// ---- List ----

func TestList_PushOrder(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	require.NoError(t, c.LPush(ctx, "log", "a", "b"))
	require.NoError(t, c.LPush(ctx, "log", "c"))

	got, err := c.LRange(ctx, "log", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, got)
}

func TestList_RangeBounds(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	require.NoError(t, c.LPush(ctx, "l", "1", "2", "3", "4"))

	got, _ := c.LRange(ctx, "l", 1, 2)
	assert.Equal(t, []string{"3", "2"}, got)
	got, _ = c.LRange(ctx, "l", -2, -1)
	assert.Equal(t, []string{"2", "1"}, got)
	got, _ = c.LRange(ctx, "l", 10, 20)
	assert.Empty(t, got)
	got, _ = c.LRange(ctx, "missing", 0, -1)
	assert.Empty(t, got)
}

func TestList_TrimKeepsNewest(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	for _, v := range []string{"1", "2", "3", "4", "5"} {
		require.NoError(t, c.LPush(ctx, "log", v))
	}
	require.NoError(t, c.LTrim(ctx, "log", 0, 2))

	got, _ := c.LRange(ctx, "log", 0, -1)
	assert.Equal(t, []string{"5", "4", "3"}, got)
}

func TestList_PushCapped(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	for _, v := range []string{"1", "2", "3", "4"} {
		require.NoError(t, c.PushCapped(ctx, "log", v, 3))
	}
	got, _ := c.LRange(ctx, "log", 0, -1)
	assert.Equal(t, []string{"4", "3", "2"}, got)
}

func TestList_TrimEmptyRangeDeletes(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	require.NoError(t, c.LPush(ctx, "log", "a"))
	require.NoError(t, c.LTrim(ctx, "log", 5, 10))
	ok, _ := c.Exists(ctx, "log")
	assert.False(t, ok)
}

func TestClose_Idempotent(t *testing.T) {
	c, err := NewCache(Config{})
	require.NoError(t, err)
	c.Close()
	c.Close()
}
