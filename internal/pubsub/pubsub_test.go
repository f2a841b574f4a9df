package pubsub

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan *Message) *Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
		return nil
	}
}

func TestLocalBasic(t *testing.T) {
	ps := NewLocal(16)
	ctx := context.Background()

	ch, cancel, err := ps.Subscribe(ctx, "doc:u1")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, ps.Publish(ctx, "doc:u1", "hello"))
	require.NoError(t, ps.Publish(ctx, "doc:u2", "other"))

	msg := receive(t, ch)
	assert.Equal(t, "doc:u1", msg.Channel)
	assert.Equal(t, "hello", msg.Payload)

	select {
	case msg := <-ch:
		t.Fatalf("unexpected message %+v", msg)
	default:
	}
}

func TestLocalUnsubscribe(t *testing.T) {
	ps := NewLocal(16)
	ctx := context.Background()

	ch, cancel, err := ps.Subscribe(ctx, "ch")
	require.NoError(t, err)

	cancel()
	cancel() // idempotent

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after cancel")
	assert.NoError(t, ps.Publish(ctx, "ch", "msg"))
}

func TestLocalMultipleSubscribers(t *testing.T) {
	ps := NewLocal(16)
	ctx := context.Background()

	ch1, cancel1, _ := ps.Subscribe(ctx, "broadcast")
	ch2, cancel2, _ := ps.Subscribe(ctx, "broadcast")
	defer cancel1()
	defer cancel2()

	require.NoError(t, ps.Publish(ctx, "broadcast", "world"))
	for _, ch := range []<-chan *Message{ch1, ch2} {
		assert.Equal(t, "world", receive(t, ch).Payload)
	}
}

func TestLocalDropsWhenFull(t *testing.T) {
	ps := NewLocal(1)
	ctx := context.Background()

	ch, cancel, _ := ps.Subscribe(ctx, "c")
	defer cancel()

	require.NoError(t, ps.Publish(ctx, "c", "1"))
	require.NoError(t, ps.Publish(ctx, "c", "2"))

	assert.Equal(t, "1", receive(t, ch).Payload)
	assert.Equal(t, uint64(1), ps.Dropped())
}

func TestLocalConcurrentPublishAndCancel(t *testing.T) {
	ps := NewLocal(4)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			_ = ps.Publish(ctx, "c", "x")
		}
	}()
	for i := 0; i < 100; i++ {
		_, cancel, _ := ps.Subscribe(ctx, "c")
		cancel()
	}
	<-done
}

func TestNewDefaultsToLocal(t *testing.T) {
	ps, err := New(context.Background(), Config{})
	require.NoError(t, err)
	assert.IsType(t, &Local{}, ps)
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("MOVEREADY_TEST_REDIS")
	if addr == "" {
		t.Skip("MOVEREADY_TEST_REDIS not set")
	}
	ctx := context.Background()
	ps, err := NewRedis(ctx, Config{RedisAddr: addr})
	require.NoError(t, err)
	defer ps.Close()

	ch, cancel, err := ps.Subscribe(ctx, "doc:test")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, ps.Publish(ctx, "doc:test", "ping"))
	assert.Equal(t, "ping", receive(t, ch).Payload)
}
