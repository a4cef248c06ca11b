package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusSubmitted OrderStatus = "submitted"
)

// DraftKey holds the customer id while the order is a draft and is NULL
// afterwards, so the unique index allows one draft per customer.
type Order struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CustomerID  string          `gorm:"type:varchar(64);index;not null" json:"customer_id"`
	StoreID     string          `gorm:"type:varchar(36);not null" json:"store_id"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Status      OrderStatus     `gorm:"type:varchar(16);index;not null" json:"status"`
	DraftKey    *string         `gorm:"type:varchar(64);uniqueIndex" json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

func (o *Order) BeforeSave(*gorm.DB) error {
	if o.Status == OrderStatusDraft {
		key := o.CustomerID
		o.DraftKey = &key
	} else {
		o.DraftKey = nil
	}
	return nil
}

type OrderItem struct {
	ID        string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID   string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_order_product" json:"order_id"`
	ProductID string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_order_product" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Product   *Product        `json:"product,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
