package session

import (
	"context"
	"testing"
	"time"

	"github.com/kasuganosora/idlerpg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- Journal ----

func TestJournal_RingOverwritesOldest(t *testing.T) {
	j := NewJournal(3)
	for i := range 5 {
		j.Append(LogEntry{Category: CategoryCombat, Message: string(rune('a' + i))})
	}
	entries := j.Entries("")
	require.Len(t, entries, 3)
	assert.Equal(t, int64(3), entries[0].Seq)
	assert.Equal(t, "e", entries[2].Message)
	assert.Equal(t, 3, j.Len())
}

func TestJournal_FilterAndSince(t *testing.T) {
	j := NewJournal(0)
	j.Append(LogEntry{Category: CategoryCombat, Message: "hit"})
	j.Append(LogEntry{Category: CategoryLoot, Message: "gold"})
	j.Append(LogEntry{Category: CategoryCombat, Message: "miss"})

	combat := j.Entries(CategoryCombat)
	require.Len(t, combat, 2)
	assert.Equal(t, "miss", combat[1].Message)

	since := j.Since(1)
	require.Len(t, since, 2)
	assert.Equal(t, "gold", since[0].Message)

	j.Clear()
	assert.Empty(t, j.Entries(""))
	assert.Equal(t, int64(4), j.Append(LogEntry{}).Seq, "sequence survives Clear")
}

// ---- EventPublisher ----

func TestEventPublisher_FansOutAndKeepsBacklog(t *testing.T) {
	c, ps := testutil.SetupTestCache(t)
	ctx := context.Background()
	msgs, cancel, err := ps.Subscribe(ctx, EventsChannel)
	require.NoError(t, err)
	defer cancel()

	p := NewEventPublisher(ps, c, 2, testutil.Logger(t))
	g := New(Options{Resources: testRes, Publisher: p})
	require.NoError(t, g.GiveGold(5))

	select {
	case m := <-msgs:
		assert.Contains(t, m.Payload, "Welcome to the Idle RPG!")
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
	p.Stop()

	backlog, err := Backlog(ctx, c, 10)
	require.NoError(t, err)
	require.Len(t, backlog, 2)
	assert.Equal(t, int64(1), backlog[0].Seq)
	assert.Equal(t, "Admin: Gave 5 gold", backlog[1].Message)
}

func TestEventPublisher_BacklogTrimmed(t *testing.T) {
	c, _ := testutil.SetupTestCache(t)
	p := NewEventPublisher(nil, c, 2, nil)
	for i := range 5 {
		p.Publish(LogEntry{Seq: int64(i + 1)})
	}
	p.Stop()

	backlog, err := Backlog(context.Background(), c, 10)
	require.NoError(t, err)
	require.Len(t, backlog, 2)
	assert.Equal(t, int64(4), backlog[0].Seq)
	assert.Equal(t, int64(5), backlog[1].Seq)
}
