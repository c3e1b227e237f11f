package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pkgdb "github.com/Skotchmaster/shop_orders/pkg/db"
	"github.com/Skotchmaster/shop_orders/services/order/internal/domain"
	"github.com/Skotchmaster/shop_orders/services/order/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *GormRepo) Save(ctx context.Context, o *domain.Order) error {
	row := toModel(o)
	if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	o.ID = row.ID
	o.CreatedAt = row.CreatedAt
	return nil
}

func (r *GormRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var row models.Order
	err := r.DB.WithContext(ctx).Preload("Lines", orderedLines).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return toDomain(row), nil
}

func (r *GormRepo) FindAll(ctx context.Context) ([]*domain.Order, error) {
	return r.list(r.DB.WithContext(ctx))
}

func (r *GormRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return r.list(r.DB.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *GormRepo) FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error) {
	return r.list(r.DB.WithContext(ctx).Where("status = ?", string(status)))
}

func (r *GormRepo) list(q *gorm.DB) ([]*domain.Order, error) {
	var rows []models.Order
	if err := q.Preload("Lines", orderedLines).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	out := make([]*domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomain(row))
	}
	return out, nil
}

// Update loads the order, applies fn and writes back status and updated_at
// in one transaction. On postgres the row is locked for the duration.
func (r *GormRepo) Update(ctx context.Context, id uuid.UUID, fn func(*domain.Order) error) (*domain.Order, error) {
	var out *domain.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if pkgdb.IsPostgres(tx) {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var row models.Order
		if err := q.First(&row, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOrderNotFound
			}
			return err
		}
		if err := tx.Where("order_id = ?", id).Order("position ASC").Find(&row.Lines).Error; err != nil {
			return err
		}

		o := toDomain(row)
		if err := fn(o); err != nil {
			return err
		}

		res := tx.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]any{
			"status":     string(o.Status),
			"updated_at": o.UpdatedAt,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrOrderNotFound
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderLine{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Order{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrOrderNotFound
		}
		return nil
	})
}

func toModel(o *domain.Order) models.Order {
	row := models.Order{
		ID:          o.ID,
		UserID:      o.UserID,
		Status:      string(o.Status),
		TotalAmount: o.Total(),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	for i, l := range o.Lines() {
		row.Lines = append(row.Lines, models.OrderLine{
			Position:    i,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
		})
	}
	return row
}

func toDomain(row models.Order) *domain.Order {
	lines := make([]domain.Line, 0, len(row.Lines))
	for _, l := range row.Lines {
		lines = append(lines, domain.Line{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
		})
	}
	return domain.Restore(row.ID, row.UserID, domain.Status(row.Status), row.CreatedAt, row.UpdatedAt, lines)
}
