package clients

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/shop_orders/services/order/internal/domain"
)

type stubStore struct {
	saved []*domain.Order
}

func (s *stubStore) Save(_ context.Context, o *domain.Order) error {
	o.ID = uuid.New()
	s.saved = append(s.saved, o)
	return nil
}

func (s *stubStore) FindByID(context.Context, uuid.UUID) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

func (s *stubStore) FindAll(context.Context) ([]*domain.Order, error) { return s.saved, nil }

func (s *stubStore) FindByUserID(context.Context, uuid.UUID) ([]*domain.Order, error) {
	return nil, nil
}

func (s *stubStore) FindByStatus(context.Context, domain.Status) ([]*domain.Order, error) {
	return nil, nil
}

func (s *stubStore) Update(context.Context, uuid.UUID, func(*domain.Order) error) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

func (s *stubStore) Delete(context.Context, uuid.UUID) error { return domain.ErrOrderNotFound }
