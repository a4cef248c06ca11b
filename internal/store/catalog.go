package store

import (
	"context"

	"github.com/Galaktikon/trust-cart/internal/models"
)

func (r *Repository) FindStoreByMerchant(ctx context.Context, merchantID string) (*models.Store, error) {
	var s models.Store
	if err := r.conn(ctx).Where("merchant_id = ?", merchantID).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *Repository) CreateStore(ctx context.Context, s *models.Store) error {
	return translate(r.conn(ctx).Create(s).Error)
}

func (r *Repository) FindProduct(ctx context.Context, storeID, name string) (*models.Product, error) {
	var p models.Product
	err := r.conn(ctx).
		Where("store_id = ? AND name = ?", storeID, name).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// FindProductsByName searches every store.
func (r *Repository) FindProductsByName(ctx context.Context, name string) ([]models.Product, error) {
	var out []models.Product
	err := r.conn(ctx).
		Where("name = ?", name).
		Order("created_at").
		Find(&out).Error
	return out, translate(err)
}

func (r *Repository) CreateProduct(ctx context.Context, p *models.Product) error {
	return translate(r.conn(ctx).Create(p).Error)
}
