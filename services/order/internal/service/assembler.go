package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/shop_orders/services/order/internal/domain"
)

// Assembler turns validated line snapshots into a PENDING order. It does no
// I/O.
type Assembler struct {
	Now func() time.Time
}

func (a Assembler) Build(userID uuid.UUID, lines []domain.Line) *domain.Order {
	at := time.Now().UTC()
	if a.Now != nil {
		at = a.Now()
	}
	o := domain.NewOrder(userID, at)
	for _, l := range lines {
		o.AddLine(l)
	}
	return o
}
