// Package fanout hands committed deliveries to live sessions, on this
// instance and, through Redis pub/sub, on every other instance.
package fanout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"socialhub/backend/metrics"
	"socialhub/backend/models"
)

// Publisher pushes deliveries to whoever is in their rooms. *ws.Hub is the
// local implementation.
type Publisher interface {
	Publish(ctx context.Context, deliveries ...models.Delivery)
}

type envelope struct {
	Origin       string          `json:"origin"`
	Room         models.Room     `json:"room"`
	Event        string          `json:"event"`
	Payload      json.RawMessage `json:"payload"`
	ExceptClient string          `json:"except_client,omitempty"`
}

// RedisRelay delivers locally, then shares each delivery on a Redis
// channel. Run replays deliveries published by other instances.
type RedisRelay struct {
	local   Publisher
	client  redis.UniversalClient
	channel string
	origin  string
	log     zerolog.Logger
}

func NewRedisRelay(local Publisher, client redis.UniversalClient, channel string, log zerolog.Logger) *RedisRelay {
	origin := uuid.NewString()
	return &RedisRelay{
		local:   local,
		client:  client,
		channel: channel,
		origin:  origin,
		log:     log.With().Str("component", "relay").Str("origin", origin).Logger(),
	}
}

// Publish never fails: the local hub always gets the deliveries and relay
// errors are only logged.
func (r *RedisRelay) Publish(ctx context.Context, deliveries ...models.Delivery) {
	r.local.Publish(ctx, deliveries...)
	for _, d := range deliveries {
		msg, err := r.encode(d)
		if err != nil {
			metrics.RelayErrors.WithLabelValues("encode").Inc()
			r.log.Error().Err(err).Str("event", d.Event).Msg("relay encode")
			continue
		}
		if err := r.client.Publish(ctx, r.channel, msg).Err(); err != nil {
			metrics.RelayErrors.WithLabelValues("publish").Inc()
			r.log.Warn().Err(err).Str("room", string(d.Room)).Msg("relay publish")
		}
	}
}

func (r *RedisRelay) encode(d models.Delivery) ([]byte, error) {
	payload, err := json.Marshal(d.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return json.Marshal(envelope{
		Origin:       r.origin,
		Room:         d.Room,
		Event:        d.Event,
		Payload:      payload,
		ExceptClient: d.ExceptClient,
	})
}

// Run subscribes to the relay channel and replays remote deliveries into
// the local hub until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	r.log.Info().Str("channel", r.channel).Msg("relay subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.handle(ctx, msg.Payload)
		}
	}
}

func (r *RedisRelay) handle(ctx context.Context, raw string) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		metrics.RelayErrors.WithLabelValues("decode").Inc()
		r.log.Warn().Err(err).Msg("relay decode")
		return
	}
	if env.Origin == r.origin {
		return
	}
	r.local.Publish(ctx, models.Delivery{
		Room:         env.Room,
		Event:        env.Event,
		Payload:      env.Payload,
		ExceptClient: env.ExceptClient,
	})
}
