package invalidation

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/storefront/internal/application/ports"
)

// DefaultChannel is the pub/sub channel used when INVALIDATION_CHANNEL is not set.
const DefaultChannel = "storefront:vendor-cache:invalidate"

// message is the wire format published on the channel. An empty Key clears the cache.
type message struct {
	Key    string `json:"key"`
	Origin string `json:"origin"`
}

// RedisBroadcaster publishes cache invalidations to every instance subscribed to the
// same channel and applies the ones it receives from peers.
type RedisBroadcaster struct {
	client  *redis.Client
	channel string
	origin  string
	log     zerolog.Logger
}

// NewRedisBroadcaster creates a broadcaster with a random instance origin.
func NewRedisBroadcaster(client *redis.Client, channel string, log zerolog.Logger) *RedisBroadcaster {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBroadcaster{client: client, channel: channel, origin: uuid.NewString(), log: log}
}

// Publish implements ports.InvalidationPublisher.
func (b *RedisBroadcaster) Publish(ctx context.Context, key string) error {
	payload, err := encode(key, b.origin)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Subscribe blocks, calling apply for every invalidation published by another instance,
// until ctx is cancelled.
func (b *RedisBroadcaster) Subscribe(ctx context.Context, apply func(key string)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	b.log.Info().Str("channel", b.channel).Msg("subscribed to vendor cache invalidations")
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			key, fromSelf, err := decode(msg.Payload, b.origin)
			if err != nil {
				b.log.Warn().Err(err).Str("payload", msg.Payload).Msg("invalid invalidation message")
				continue
			}
			if fromSelf {
				continue
			}
			apply(key)
		}
	}
}

func encode(key, origin string) ([]byte, error) {
	return json.Marshal(message{Key: key, Origin: origin})
}

func decode(payload, self string) (key string, fromSelf bool, err error) {
	var m message
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return "", false, err
	}
	return m.Key, m.Origin == self, nil
}

var _ ports.InvalidationPublisher = (*RedisBroadcaster)(nil)
