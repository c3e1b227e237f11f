package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrOrderNotFound = errors.New("order not found")

// Line is a snapshot of a product taken when the order was placed.
type Line struct {
	ProductID   uuid.UUID
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order owns its lines. The total is derived from them and has no setter.
type Order struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Status    Status
	CreatedAt time.Time
	UpdatedAt *time.Time

	lines []Line
	total decimal.Decimal
}

func NewOrder(userID uuid.UUID, createdAt time.Time) *Order {
	return &Order{
		UserID:    userID,
		Status:    StatusPending,
		CreatedAt: createdAt,
		total:     decimal.Zero,
	}
}

// Restore rebuilds a persisted order. The total is recomputed from lines.
func Restore(id, userID uuid.UUID, status Status, createdAt time.Time, updatedAt *time.Time, lines []Line) *Order {
	o := &Order{
		ID:        id,
		UserID:    userID,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		total:     decimal.Zero,
	}
	for _, l := range lines {
		o.AddLine(l)
	}
	return o
}

func (o *Order) AddLine(l Line) {
	l.UnitPrice = l.UnitPrice.Round(2)
	o.lines = append(o.lines, l)
	o.recalculate()
}

func (o *Order) Lines() []Line {
	out := make([]Line, len(o.lines))
	copy(out, o.lines)
	return out
}

func (o *Order) Total() decimal.Decimal {
	return o.total
}

func (o *Order) recalculate() {
	sum := decimal.Zero
	for _, l := range o.lines {
		sum = sum.Add(l.Subtotal())
	}
	o.total = sum.Round(2)
}

func (o *Order) SetStatus(s Status, at time.Time) {
	o.Status = s
	o.UpdatedAt = &at
}
