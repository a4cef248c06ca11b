package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const DefaultStock = 10

type Product struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	StoreID     string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_store_product_name" json:"store_id"`
	Name        string          `gorm:"not null;uniqueIndex:idx_store_product_name;index" json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:10" json:"stock"`
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
