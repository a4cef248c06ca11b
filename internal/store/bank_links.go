package store

import (
	"context"

	"github.com/Galaktikon/trust-cart/internal/models"
)

func (r *Repository) CreateBankLink(ctx context.Context, b *models.BankLink) error {
	return translate(r.conn(ctx).Create(b).Error)
}

func (r *Repository) ListBankLinks(ctx context.Context, userID string) ([]models.BankLink, error) {
	var out []models.BankLink
	err := r.conn(ctx).Where("user_id = ?", userID).Order("created_at").Find(&out).Error
	return out, translate(err)
}
