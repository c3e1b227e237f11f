package clients

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/Skotchmaster/shop_orders/pkg/rpcclient"
	"github.com/Skotchmaster/shop_orders/services/order/internal/service"
)

type userDTO struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
}

func (u userDTO) record() *service.UserRecord {
	return &service.UserRecord{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
	}
}

// UserClient reads users from the user service.
type UserClient struct {
	rpc *rpcclient.Client
}

func NewUserClient(rpc *rpcclient.Client) *UserClient {
	return &UserClient{rpc: rpc}
}

func (c *UserClient) GetByID(ctx context.Context, id uuid.UUID) (*service.UserRecord, error) {
	var u userDTO
	if err := c.rpc.GetJSON(ctx, "/users/"+id.String(), &u); err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u.record(), nil
}

func (c *UserClient) GetByUsername(ctx context.Context, username string) (*service.UserRecord, error) {
	var u userDTO
	if err := c.rpc.GetJSON(ctx, "/users/username/"+url.PathEscape(username), &u); err != nil {
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return u.record(), nil
}
