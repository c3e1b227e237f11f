package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"                          json:"id"`
	Name          string          `gorm:"size:255;not null"                             json:"name"`
	Description   string          `gorm:"size:1000"                                     json:"description"`
	Price         decimal.Decimal `gorm:"type:numeric(10,2);not null"                   json:"price"`
	Category      string          `gorm:"size:100;index"                                json:"category"`
	StockQuantity int             `gorm:"not null;check:stock_quantity >= 0"            json:"stock_quantity"`
	IsActive      bool            `gorm:"not null;index"                                json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
