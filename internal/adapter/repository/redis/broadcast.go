package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/propledger/internal/domain"
)

// ChatChannel is the pub/sub channel applied chat events are relayed on.
const ChatChannel = "propledger:chat:events"

// envelope tags an event with the instance that published it so the origin can skip its own echo.
type envelope struct {
	Origin string              `json:"origin"`
	Event  domain.MessageEvent `json:"event"`
}

// Broadcaster relays chat events between server instances over Redis pub/sub.
type Broadcaster struct {
	client *redis.Client
	origin string
	logger zerolog.Logger
}

// NewBroadcaster creates a Broadcaster. origin identifies this instance.
func NewBroadcaster(client *redis.Client, origin string, logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{client: client, origin: origin, logger: logger}
}

// Publish implements usecase.EventPublisher. Failures are logged; delivery is best effort.
func (b *Broadcaster) Publish(ev domain.MessageEvent) {
	data, err := json.Marshal(envelope{Origin: b.origin, Event: ev})
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to encode chat event")
		return
	}

	if err := b.client.Publish(context.Background(), ChatChannel, data).Err(); err != nil {
		b.logger.Warn().Err(err).Str("event", ev.Name).Msg("failed to relay chat event")
	}
}

// Subscribe delivers events published by other instances to fn until ctx is done.
func (b *Broadcaster) Subscribe(ctx context.Context, fn func(domain.MessageEvent)) error {
	sub := b.client.Subscribe(ctx, ChatChannel)
	defer sub.Close()

	// wait for the subscription to be confirmed
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.logger.Warn().Err(err).Msg("discarding malformed chat event")
				continue
			}
			if env.Origin == b.origin {
				continue
			}
			fn(env.Event)
		}
	}
}
