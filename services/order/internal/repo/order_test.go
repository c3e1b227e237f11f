package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_orders/services/order/internal/domain"
)

func newOrder(userID uuid.UUID, at time.Time, lines ...domain.Line) *domain.Order {
	o := domain.NewOrder(userID, at)
	for _, l := range lines {
		o.AddLine(l)
	}
	return o
}

func line(name, price string, qty int) domain.Line {
	return domain.Line{
		ProductID:   uuid.New(),
		ProductName: name,
		UnitPrice:   decimal.RequireFromString(price),
		Quantity:    qty,
	}
}

func TestSaveAndFindByID(t *testing.T) {
	r := &GormRepo{DB: InitTestDB(t)}
	ctx := context.Background()

	o := newOrder(uuid.New(), time.Now().UTC(), line("keyboard", "49.90", 2), line("mouse", "19.99", 1), line("cable", "3.50", 4))
	require.NoError(t, r.Save(ctx, o))
	require.NotEqual(t, uuid.Nil, o.ID)

	got, err := r.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, o.UserID, got.UserID)
	require.Equal(t, domain.StatusPending, got.Status)
	require.Equal(t, "133.79", got.Total().StringFixed(2))

	lines := got.Lines()
	require.Len(t, lines, 3)
	require.Equal(t, "keyboard", lines[0].ProductName)
	require.Equal(t, "mouse", lines[1].ProductName)
	require.Equal(t, "cable", lines[2].ProductName)
	require.True(t, decimal.RequireFromString("49.90").Equal(lines[0].UnitPrice))
}

func TestFindByIDNotFound(t *testing.T) {
	r := &GormRepo{DB: InitTestDB(t)}
	_, err := r.FindByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestListQueries(t *testing.T) {
	r := &GormRepo{DB: InitTestDB(t)}
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()
	base := time.Now().UTC().Add(-time.Hour)

	o1 := newOrder(alice, base, line("a", "1.00", 1))
	o2 := newOrder(alice, base.Add(time.Minute), line("b", "2.00", 1))
	o3 := newOrder(bob, base.Add(2*time.Minute), line("c", "3.00", 1))
	for _, o := range []*domain.Order{o1, o2, o3} {
		require.NoError(t, r.Save(ctx, o))
	}
	_, err := r.Update(ctx, o3.ID, func(o *domain.Order) error {
		o.SetStatus(domain.StatusShipped, time.Now().UTC())
		return nil
	})
	require.NoError(t, err)

	all, err := r.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, o3.ID, all[0].ID)

	byAlice, err := r.FindByUserID(ctx, alice)
	require.NoError(t, err)
	require.Len(t, byAlice, 2)
	require.Equal(t, o2.ID, byAlice[0].ID)
	require.Equal(t, o1.ID, byAlice[1].ID)

	shipped, err := r.FindByStatus(ctx, domain.StatusShipped)
	require.NoError(t, err)
	require.Len(t, shipped, 1)
	require.Equal(t, o3.ID, shipped[0].ID)
	require.Len(t, shipped[0].Lines(), 1)

	none, err := r.FindByUserID(ctx, uuid.New())
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestUpdate(t *testing.T) {
	r := &GormRepo{DB: InitTestDB(t)}
	ctx := context.Background()

	o := newOrder(uuid.New(), time.Now().UTC(), line("a", "5.00", 2))
	require.NoError(t, r.Save(ctx, o))

	updated, err := r.Update(ctx, o.ID, func(o *domain.Order) error {
		o.SetStatus(domain.StatusConfirmed, time.Now().UTC())
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusConfirmed, updated.Status)
	require.NotNil(t, updated.UpdatedAt)

	got, err := r.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusConfirmed, got.Status)
	require.NotNil(t, got.UpdatedAt)
	require.Equal(t, "10.00", got.Total().StringFixed(2))
}

func TestUpdateCallbackErrorRollsBack(t *testing.T) {
	r := &GormRepo{DB: InitTestDB(t)}
	ctx := context.Background()

	o := newOrder(uuid.New(), time.Now().UTC(), line("a", "5.00", 1))
	require.NoError(t, r.Save(ctx, o))

	stop := errors.New("stop")
	_, err := r.Update(ctx, o.ID, func(o *domain.Order) error {
		o.SetStatus(domain.StatusCancelled, time.Now().UTC())
		return stop
	})
	require.ErrorIs(t, err, stop)

	got, err := r.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, got.Status)
}

func TestUpdateNotFound(t *testing.T) {
	r := &GormRepo{DB: InitTestDB(t)}
	_, err := r.Update(context.Background(), uuid.New(), func(*domain.Order) error { return nil })
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestDelete(t *testing.T) {
	r := &GormRepo{DB: InitTestDB(t)}
	ctx := context.Background()

	o := newOrder(uuid.New(), time.Now().UTC(), line("a", "5.00", 1))
	require.NoError(t, r.Save(ctx, o))

	require.NoError(t, r.Delete(ctx, o.ID))
	_, err := r.FindByID(ctx, o.ID)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	var lines int64
	require.NoError(t, r.DB.Table("order_lines").Where("order_id = ?", o.ID).Count(&lines).Error)
	require.Zero(t, lines)

	require.ErrorIs(t, r.Delete(ctx, o.ID), domain.ErrOrderNotFound)
}
