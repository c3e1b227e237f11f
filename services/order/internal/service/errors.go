package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/shop_orders/services/order/internal/domain"
)

var (
	ErrValidation         = errors.New("validation")
	ErrUserNotFound       = errors.New("user not found")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrOrderNotFound      = domain.ErrOrderNotFound
	ErrInvalidTransition  = errors.New("invalid status transition")
)

type ProductUnavailableError struct {
	ProductID uuid.UUID
	Cause     error
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is not available", e.ProductID)
}

func (e *ProductUnavailableError) Is(target error) bool { return target == ErrProductUnavailable }

func (e *ProductUnavailableError) Unwrap() error { return e.Cause }

type InsufficientStockError struct {
	ProductID uuid.UUID
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d", e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

type InvalidTransitionError struct {
	From domain.Status
	To   domain.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }
