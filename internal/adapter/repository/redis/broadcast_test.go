package redis

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/propledger/internal/domain"
)

func TestBroadcasterRelaysBetweenInstances(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	local := NewBroadcaster(client, "instance-a", zerolog.Nop())
	remote := NewBroadcaster(client, "instance-b", zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan domain.MessageEvent, 2)
	done := make(chan error, 1)
	go func() {
		done <- remote.Subscribe(ctx, func(ev domain.MessageEvent) { received <- ev })
	}()

	require.Eventually(t, func() bool {
		return len(mr.PubSubChannels("")) == 1
	}, time.Second, 10*time.Millisecond)

	remote.Publish(domain.MessageEvent{Name: domain.EventMessageStatus, Message: domain.Message{ID: "own"}})
	local.Publish(domain.MessageEvent{
		Name:    domain.EventMessageReceived,
		Message: domain.Message{ID: "in-1", Phone: "919876543210", Body: "hello"},
	})

	select {
	case ev := <-received:
		assert.Equal(t, "in-1", ev.Message.ID)
		assert.Equal(t, domain.EventMessageReceived, ev.Name)
	case <-time.After(time.Second):
		t.Fatal("event was not relayed")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not stop")
	}

	assert.Empty(t, received, "own events must not be delivered back")
}
