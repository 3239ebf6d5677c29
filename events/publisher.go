package events

import (
	"context"

	"storefront-service/models"
)

const OrderCheckoutEvent = "order.checkout"

// OrderPublisher announces completed checkouts to downstream consumers.
type OrderPublisher interface {
	PublishOrder(ctx context.Context, event models.OrderEvent) error
	Close() error
}

// NopPublisher discards events. It is used when no events backend is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrder(context.Context, models.OrderEvent) error { return nil }
func (NopPublisher) Close() error                                         { return nil }
