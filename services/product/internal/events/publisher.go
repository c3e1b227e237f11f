package events

import (
	"context"
	"time"

	"github.com/Skotchmaster/shop_orders/pkg/logging"
	"github.com/Skotchmaster/shop_orders/services/product/internal/models"
)

const Topic = "product_events"

type Type string

const (
	ProductCreated     Type = "product_created"
	ProductUpdated     Type = "product_updated"
	StockChanged       Type = "product_stock_changed"
	ProductDeactivated Type = "product_deactivated"
	ProductDeleted     Type = "product_deleted"
)

type Event struct {
	Type          Type      `json:"type"`
	ProductID     string    `json:"product_id"`
	StockQuantity int       `json:"stock_quantity"`
	IsActive      bool      `json:"is_active"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func New(t Type, p *models.Product) Event {
	return Event{
		Type:          t,
		ProductID:     p.ID.String(),
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
		OccurredAt:    time.Now().UTC(),
	}
}

type producer interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type KafkaPublisher struct {
	producer producer
}

func NewKafkaPublisher(p producer) *KafkaPublisher {
	return &KafkaPublisher{producer: p}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	return p.producer.PublishEvent(ctx, Topic, ev.ProductID, ev)
}

type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, ev Event) error {
	logging.FromContext(ctx).Info("product_event", "type", ev.Type, "product_id", ev.ProductID, "stock", ev.StockQuantity)
	return nil
}
