package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"chats/internal/models"
)

type envelope struct {
	ChatID  int             `json:"chat_id"`
	Payload json.RawMessage `json:"payload"`
}

func encodeEnvelope(chatID int, msg *models.Message) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{ChatID: chatID, Payload: payload})
}

func decodeEnvelope(data []byte) (int, []byte, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return 0, nil, err
	}
	if env.ChatID <= 0 || len(env.Payload) == 0 {
		return 0, nil, fmt.Errorf("malformed envelope")
	}
	return env.ChatID, env.Payload, nil
}

// RedisBroker fans messages out through a Redis channel so that every replica
// delivers them to its own hub.
type RedisBroker struct {
	client  *redis.Client
	channel string
	hub     *ChatHub

	minBackoff, maxBackoff time.Duration
}

func NewRedisBroker(client *redis.Client, channel string, hub *ChatHub) *RedisBroker {
	return &RedisBroker{
		client:     client,
		channel:    channel,
		hub:        hub,
		minBackoff: 500 * time.Millisecond,
		maxBackoff: 30 * time.Second,
	}
}

func (b *RedisBroker) Publish(chatID int, msg *models.Message) error {
	data, err := encodeEnvelope(chatID, msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return b.client.Publish(ctx, b.channel, data).Err()
}

// Run relays the channel into the local hub until ctx is done. A failed
// subscription is retried with exponential backoff.
func (b *RedisBroker) Run(ctx context.Context) {
	delay := b.minBackoff
	for {
		subscribed, err := b.relay(ctx)
		if ctx.Err() != nil {
			return
		}
		if subscribed {
			delay = b.minBackoff
		}
		log.Warn().Err(err).Str("channel", b.channel).Dur("retry_in", delay).Msg("redis relay interrupted")

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
		if delay *= 2; delay > b.maxBackoff {
			delay = b.maxBackoff
		}
	}
}

// relay reports whether the subscription was established before it stopped.
func (b *RedisBroker) relay(ctx context.Context) (bool, error) {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return false, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	log.Info().Str("channel", b.channel).Msg("relaying chat messages from redis")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return true, nil
		case m, ok := <-ch:
			if !ok {
				return true, errors.New("subscription closed")
			}
			chatID, payload, err := decodeEnvelope([]byte(m.Payload))
			if err != nil {
				log.Warn().Err(err).Msg("skipping redis message")
				continue
			}
			b.hub.Broadcast(chatID, payload)
		}
	}
}
