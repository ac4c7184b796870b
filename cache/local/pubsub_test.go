package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan *LocalMessage) *LocalMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for message")
		return nil
	}
}

func TestPubSub_Basic(t *testing.T) {
	ps := NewPubSub(16)
	ctx := context.Background()

	ch, cancel, err := ps.Subscribe(ctx, "game_events")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, ps.Publish(ctx, "game_events", "hello"))
	msg := recv(t, ch)
	assert.Equal(t, "game_events", msg.Channel)
	assert.Equal(t, "hello", msg.Payload)
}

func TestPubSub_CancelClosesChannel(t *testing.T) {
	ps := NewPubSub(16)
	ctx := context.Background()

	ch, cancel, err := ps.Subscribe(ctx, "ch")
	require.NoError(t, err)
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Zero(t, ps.Subscribers("ch"))
	assert.NoError(t, ps.Publish(ctx, "ch", "msg"))
}

func TestPubSub_ContextEndsSubscription(t *testing.T) {
	ps := NewPubSub(16)
	ctx, cancel := context.WithCancel(context.Background())

	ch, _, err := ps.Subscribe(ctx, "ch")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("subscription not closed after context cancel")
	}
}

func TestPubSub_Fanout(t *testing.T) {
	ps := NewPubSub(16)
	ctx := context.Background()

	ch1, cancel1, _ := ps.Subscribe(ctx, "broadcast")
	ch2, cancel2, _ := ps.Subscribe(ctx, "broadcast")
	defer cancel1()
	defer cancel2()
	assert.Equal(t, 2, ps.Subscribers("broadcast"))

	require.NoError(t, ps.Publish(ctx, "broadcast", "msg"))
	assert.Equal(t, "msg", recv(t, ch1).Payload)
	assert.Equal(t, "msg", recv(t, ch2).Payload)
}

func TestPubSub_MultipleChannels(t *testing.T) {
	ps := NewPubSub(16)
	ctx := context.Background()

	ch, cancel, _ := ps.Subscribe(ctx, "a", "b")
	defer cancel()

	require.NoError(t, ps.Publish(ctx, "a", "1"))
	require.NoError(t, ps.Publish(ctx, "b", "2"))
	require.NoError(t, ps.Publish(ctx, "c", "3"))

	assert.Equal(t, "a", recv(t, ch).Channel)
	assert.Equal(t, "b", recv(t, ch).Channel)
	select {
	case msg := <-ch:
		t.Fatalf("unexpected message on %s", msg.Channel)
	default:
	}
}

func TestPubSub_FullBufferDrops(t *testing.T) {
	ps := NewPubSub(2)
	ctx := context.Background()

	ch, cancel, _ := ps.Subscribe(ctx, "ch")
	defer cancel()

	for i := 0; i < 5; i++ {
		require.NoError(t, ps.Publish(ctx, "ch", "x"))
	}
	assert.Len(t, ch, 2)
}
