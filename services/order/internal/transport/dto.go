package transport

import (
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/shop_orders/services/order/internal/domain"
	"github.com/Skotchmaster/shop_orders/services/order/internal/service"
)

type CreateOrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// CreateOrderRequest names the user by id or, when user_id is absent, by
// username.
type CreateOrderRequest struct {
	UserID   uuid.UUID         `json:"user_id"`
	Username string            `json:"username"`
	Items    []CreateOrderItem `json:"items"`
}

func (r CreateOrderRequest) Lines() []service.LineRequest {
	out := make([]service.LineRequest, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, service.LineRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

type OrderLineResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitPrice   string    `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	Subtotal    string    `json:"subtotal"`
}

type OrderResponse struct {
	ID          uuid.UUID           `json:"id"`
	UserID      uuid.UUID           `json:"user_id"`
	Status      domain.Status       `json:"status"`
	TotalAmount string              `json:"total_amount"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   *time.Time          `json:"updated_at,omitempty"`
	Items       []OrderLineResponse `json:"items"`
}

func FromDomain(o *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		Status:      o.Status,
		TotalAmount: o.Total().StringFixed(2),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		Items:       make([]OrderLineResponse, 0, len(o.Lines())),
	}
	for _, l := range o.Lines() {
		resp.Items = append(resp.Items, OrderLineResponse{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice.StringFixed(2),
			Quantity:    l.Quantity,
			Subtotal:    l.Subtotal().StringFixed(2),
		})
	}
	return resp
}

func FromDomainList(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromDomain(o))
	}
	return out
}
