package events

import (
	"context"

	"github.com/Skotchmaster/shop_orders/services/order/internal/domain"
)

const Topic = "order_events"

type producer interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// KafkaPublisher writes order events keyed by order id so that all events of
// one order land on the same partition.
type KafkaPublisher struct {
	producer producer
	topic    string
}

func NewKafkaPublisher(p producer) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: Topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev domain.Event) error {
	return p.producer.PublishEvent(ctx, p.topic, ev.OrderID.String(), ev)
}

// LogPublisher is used when no brokers are configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, ev domain.Event) error {
	loggerFrom(ctx).Info("order_event", "type", ev.Type, "order_id", ev.OrderID, "status", ev.Status, "details", ev.Details)
	return nil
}
