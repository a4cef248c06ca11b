package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BankLink struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID          string    `gorm:"type:varchar(64);index;not null" json:"user_id"`
	ItemID          string    `gorm:"uniqueIndex;not null" json:"item_id"`
	InstitutionName string    `json:"institution_name"`
	AccessToken     string    `gorm:"not null" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}

func (b *BankLink) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
