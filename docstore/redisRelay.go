package docstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

const DefaultRelayChannel = "docstore:changes"

type relayMessage struct {
	Origin      string   `json:"origin"`
	Collections []string `json:"collections"`
}

// RedisRelay shares change notifications between API instances so that
// subscriptions opened on one instance see writes made on another.
type RedisRelay struct {
	rdb      *redis.Client
	hub      *Hub
	channel  string
	instance string
}

func NewRedisRelay(rdb *redis.Client, hub *Hub, channel string) *RedisRelay {
	if channel == "" {
		channel = DefaultRelayChannel
	}
	return &RedisRelay{
		rdb:      rdb,
		hub:      hub,
		channel:  channel,
		instance: NewID(),
	}
}

func (r *RedisRelay) Broadcast(ctx context.Context, collections []string) error {
	if r == nil || r.rdb == nil || len(collections) == 0 {
		return nil
	}
	payload, err := json.Marshal(relayMessage{Origin: r.instance, Collections: collections})
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, r.channel, payload).Err()
}

// Listen forwards remote changes to the local hub until ctx is done.
func (r *RedisRelay) Listen(ctx context.Context) error {
	if r == nil || r.rdb == nil {
		return errors.New("docstore: redis relay without client")
	}
	ps := r.rdb.Subscribe(ctx, r.channel)
	defer ps.Close()

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var m relayMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				continue
			}
			if m.Origin == r.instance {
				continue
			}
			r.hub.Publish(m.Collections...)
		}
	}
}
