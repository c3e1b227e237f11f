package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_orders/pkg/logging"
	"github.com/Skotchmaster/shop_orders/services/product/internal/events"
	"github.com/Skotchmaster/shop_orders/services/product/internal/models"
	"github.com/Skotchmaster/shop_orders/services/product/internal/repo"
	"github.com/Skotchmaster/shop_orders/services/product/internal/transport"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = repo.ErrInsufficientStock
)

// Indexer mirrors products into a search engine.
type Indexer interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type Publisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

type ProductService struct {
	Repo   *repo.GormRepo
	Index  Indexer
	Events Publisher
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	return p, notFound(err)
}

func (s *ProductService) GetProducts(ctx context.Context, f repo.Filter, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.GetProducts(ctx, f, offset, limit)
}

func (s *ProductService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	p := &models.Product{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Price:         req.Price.Round(2),
		Category:      req.Category,
		StockQuantity: req.StockQuantity,
		IsActive:      true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	created, err := s.Repo.CreateProduct(ctx, p)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, events.ProductCreated, created)
	return created, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req transport.UpdateProductRequest) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = req.Price.Round(2)
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.StockQuantity != nil {
		p.StockQuantity = *req.StockQuantity
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, events.ProductUpdated, p)
	return p, nil
}

func (s *ProductService) SetStock(ctx context.Context, id uuid.UUID, quantity int) (*models.Product, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	p, err := s.Repo.SetStock(ctx, id, quantity)
	if err != nil {
		return nil, notFound(err)
	}
	s.afterWrite(ctx, events.StockChanged, p)
	return p, nil
}

// DecreaseStock returns ErrInsufficientStock when fewer than quantity units
// are left; stock is unchanged in that case.
func (s *ProductService) DecreaseStock(ctx context.Context, id uuid.UUID, quantity int) (*models.Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	p, err := s.Repo.DecreaseStock(ctx, id, quantity)
	if err != nil {
		return nil, notFound(err)
	}
	s.afterWrite(ctx, events.StockChanged, p)
	return p, nil
}

func (s *ProductService) IncreaseStock(ctx context.Context, id uuid.UUID, quantity int) (*models.Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	p, err := s.Repo.IncreaseStock(ctx, id, quantity)
	if err != nil {
		return nil, notFound(err)
	}
	s.afterWrite(ctx, events.StockChanged, p)
	return p, nil
}

// DeleteProduct only marks the product inactive; orders keep referring to it.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.Deactivate(ctx, id); err != nil {
		return notFound(err)
	}
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return notFound(err)
	}
	s.afterWrite(ctx, events.ProductDeactivated, p)
	return nil
}

func (s *ProductService) HardDeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return notFound(err)
	}

	l := logger(ctx)
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id.String()); err != nil {
			l.Warn("search_delete_failed", "product_id", id, "error", err)
		}
	}
	if s.Events != nil {
		ev := events.New(events.ProductDeleted, &models.Product{ID: id})
		if err := s.Events.Publish(ctx, ev); err != nil {
			l.Warn("publish_failed", "type", ev.Type, "product_id", id, "error", err)
		}
	}
	return nil
}

// SearchProducts asks the search index first and falls back to a name match
// in the database when no index is configured or it fails.
func (s *ProductService) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, fmt.Errorf("%w: empty query", ErrValidation)
	}

	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			return total, items, nil
		}
		logger(ctx).Warn("search_index_failed", "query", q, "error", err)
	}
	return s.Repo.SearchByName(ctx, q, offset, limit)
}

func (s *ProductService) afterWrite(ctx context.Context, t events.Type, p *models.Product) {
	l := logger(ctx)
	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, p); err != nil {
			l.Warn("search_index_failed", "product_id", p.ID, "error", err)
		}
	}
	if s.Events != nil {
		if err := s.Events.Publish(ctx, events.New(t, p)); err != nil {
			l.Warn("publish_failed", "type", t, "product_id", p.ID, "error", err)
		}
	}
}

func validate(p *models.Product) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	case p.StockQuantity < 0:
		return fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

func logger(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx).With("component", "product.service")
}
