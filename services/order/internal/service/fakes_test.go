package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shop_orders/services/order/internal/domain"
)

var errTransport = errors.New("connection refused")

type fakeUsers struct {
	byID    map[uuid.UUID]*UserRecord
	err     error
	lookups int
}

func newFakeUsers(users ...*UserRecord) *fakeUsers {
	f := &fakeUsers{byID: map[uuid.UUID]*UserRecord{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*UserRecord, error) {
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("user %s: not found", id)
	}
	return u, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, name string) (*UserRecord, error) {
	f.lookups++
	for _, u := range f.byID {
		if u.Username == name {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %q: not found", name)
}

// fakeProducts keeps stock in memory and records every call in order.
type fakeProducts struct {
	mu       sync.Mutex
	products map[uuid.UUID]*ProductRecord
	getErr   map[uuid.UUID]error
	decErr   map[uuid.UUID]error
	incErr   error
	calls    []string
}

func newFakeProducts(products ...*ProductRecord) *fakeProducts {
	f := &fakeProducts{
		products: map[uuid.UUID]*ProductRecord{},
		getErr:   map[uuid.UUID]error{},
		decErr:   map[uuid.UUID]error{},
	}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProducts) GetByID(_ context.Context, id uuid.UUID) (*ProductRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "get:"+id.String())
	if err := f.getErr[id]; err != nil {
		return nil, err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) DecreaseStock(_ context.Context, id uuid.UUID, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "dec:"+id.String())
	if err := f.decErr[id]; err != nil {
		return err
	}
	p := f.products[id]
	if p.StockQuantity < qty {
		return ErrInsufficientStock
	}
	p.StockQuantity -= qty
	return nil
}

func (f *fakeProducts) IncreaseStock(_ context.Context, id uuid.UUID, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "inc:"+id.String())
	if f.incErr != nil {
		return f.incErr
	}
	f.products[id].StockQuantity += qty
	return nil
}

func (f *fakeProducts) stock(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id].StockQuantity
}

func (f *fakeProducts) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

type memStore struct {
	mu      sync.Mutex
	orders  map[uuid.UUID]*domain.Order
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{orders: map[uuid.UUID]*domain.Order{}}
}

func clone(o *domain.Order) *domain.Order {
	return domain.Restore(o.ID, o.UserID, o.Status, o.CreatedAt, o.UpdatedAt, o.Lines())
}

func (s *memStore) Save(_ context.Context, o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	o.ID = uuid.New()
	s.orders[o.ID] = clone(o)
	return nil
}

func (s *memStore) FindByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return clone(o), nil
}

func (s *memStore) filter(keep func(*domain.Order) bool) []*domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Order
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, clone(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *memStore) FindAll(context.Context) ([]*domain.Order, error) {
	return s.filter(func(*domain.Order) bool { return true }), nil
}

func (s *memStore) FindByUserID(_ context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.filter(func(o *domain.Order) bool { return o.UserID == userID }), nil
}

func (s *memStore) FindByStatus(_ context.Context, st domain.Status) ([]*domain.Order, error) {
	return s.filter(func(o *domain.Order) bool { return o.Status == st }), nil
}

func (s *memStore) Update(_ context.Context, id uuid.UUID, fn func(*domain.Order) error) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	o := clone(cur)
	if err := fn(o); err != nil {
		return nil, err
	}
	s.orders[id] = clone(o)
	return o, nil
}

func (s *memStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(s.orders, id)
	return nil
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

type recordingEvents struct {
	events []domain.Event
	err    error
}

func (r *recordingEvents) Publish(_ context.Context, ev domain.Event) error {
	r.events = append(r.events, ev)
	return r.err
}

type outcomeCounter map[string]int

func (c outcomeCounter) ObserveOutcome(op, outcome string) { c[op+"/"+outcome]++ }

func product(name, price string, stock int) *ProductRecord {
	return &ProductRecord{
		ID:            uuid.New(),
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Active:        true,
	}
}
