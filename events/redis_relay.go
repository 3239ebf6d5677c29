package events

import (
	"context"
	"encoding/json"
	"time"

	"storefront-service/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const CartChangedChannel = "cart:changed"

// RedisRelay carries cart change notifications between service instances over
// Redis pub/sub. Every instance, including the writer, receives the message
// through its subscription and hands it to its local Broker.
type RedisRelay struct {
	client *redis.Client
	broker *Broker
	log    *zap.Logger
}

func NewRedisRelay(client *redis.Client, broker *Broker, log *zap.Logger) *RedisRelay {
	return &RedisRelay{client: client, broker: broker, log: log}
}

// NotifyCartChanged publishes the change on the shared channel. If Redis is
// unreachable the change is delivered locally only.
func (r *RedisRelay) NotifyCartChanged(ctx context.Context, change models.CartChanged) {
	data, err := json.Marshal(change)
	if err != nil {
		r.broker.Publish(change)
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := r.client.Publish(pubCtx, CartChangedChannel, data).Err(); err != nil {
		r.log.Warn("cart change publish failed, delivering locally", zap.Error(err))
		r.broker.Publish(change)
	}
}

// Run forwards messages from the shared channel to the local broker until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) {
	pubsub := r.client.Subscribe(ctx, CartChangedChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var change models.CartChanged
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				r.log.Warn("invalid cart change message", zap.Error(err))
				continue
			}
			r.broker.Publish(change)
		}
	}
}
