package clients

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shop_orders/pkg/rpcclient"
	"github.com/Skotchmaster/shop_orders/services/order/internal/service"
)

type productDTO struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	IsActive      bool            `json:"is_active"`
}

// ProductClient reads products and moves stock on the product service.
type ProductClient struct {
	rpc *rpcclient.Client
}

func NewProductClient(rpc *rpcclient.Client) *ProductClient {
	return &ProductClient{rpc: rpc}
}

func (c *ProductClient) GetByID(ctx context.Context, id uuid.UUID) (*service.ProductRecord, error) {
	var p productDTO
	if err := c.rpc.GetJSON(ctx, "/products/"+id.String(), &p); err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &service.ProductRecord{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		Active:        p.IsActive,
	}, nil
}

// DecreaseStock maps the product service's 409 to service.ErrInsufficientStock.
func (c *ProductClient) DecreaseStock(ctx context.Context, id uuid.UUID, quantity int) error {
	err := c.rpc.Patch(ctx, "/products/"+id.String()+"/decrease-stock", quantityQuery(quantity), nil)
	if errors.Is(err, rpcclient.ErrConflict) {
		return fmt.Errorf("decrease stock %s: %w", id, service.ErrInsufficientStock)
	}
	if err != nil {
		return fmt.Errorf("decrease stock %s: %w", id, err)
	}
	return nil
}

func (c *ProductClient) IncreaseStock(ctx context.Context, id uuid.UUID, quantity int) error {
	if err := c.rpc.Patch(ctx, "/products/"+id.String()+"/increase-stock", quantityQuery(quantity), nil); err != nil {
		return fmt.Errorf("increase stock %s: %w", id, err)
	}
	return nil
}

func quantityQuery(q int) url.Values {
	return url.Values{"quantity": {strconv.Itoa(q)}}
}
