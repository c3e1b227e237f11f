package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"                    json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;index;not null"                json:"order_id"`
	Position    int             `gorm:"not null"                                json:"position"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"                      json:"product_id"`
	ProductName string          `gorm:"not null"                                json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(10,2);not null"             json:"unit_price"`
	Quantity    int             `gorm:"not null;check:quantity > 0"             json:"quantity"`
}

type Order struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"                    json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;index;not null"                json:"user_id"`
	Status      string          `gorm:"size:16;index;not null"                  json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(10,2);not null"             json:"total_amount"`
	CreatedAt   time.Time       `gorm:"not null"                                json:"created_at"`
	UpdatedAt   *time.Time      `gorm:"autoUpdateTime:false"                    json:"updated_at"`
	Lines       []OrderLine     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"lines"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (l *OrderLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Order{}, &OrderLine{})
}
