package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shop_orders/services/order/internal/domain"
)

type UserRecord struct {
	ID          uuid.UUID
	Username    string
	Email       string
	DisplayName string
}

type ProductRecord struct {
	ID            uuid.UUID
	Name          string
	Price         decimal.Decimal
	StockQuantity int
	Active        bool
}

type UserLookupClient interface {
	GetByID(ctx context.Context, id uuid.UUID) (*UserRecord, error)
	GetByUsername(ctx context.Context, username string) (*UserRecord, error)
}

// ProductAvailabilityClient.DecreaseStock must report a stock shortfall with
// an error matching ErrInsufficientStock.
type ProductAvailabilityClient interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ProductRecord, error)
	DecreaseStock(ctx context.Context, id uuid.UUID, quantity int) error
}

type StockRestorer interface {
	IncreaseStock(ctx context.Context, id uuid.UUID, quantity int) error
}

type OrderStore interface {
	Save(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	FindAll(ctx context.Context) ([]*domain.Order, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error)
	Update(ctx context.Context, id uuid.UUID, fn func(*domain.Order) error) (*domain.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type EventPublisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

type OutcomeRecorder interface {
	ObserveOutcome(operation, outcome string)
}
