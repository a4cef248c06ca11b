package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Galaktikon/trust-cart/internal/models"
)

// FindDraftOrder returns the customer's draft order, row-locked when called
// inside Tx.
func (r *Repository) FindDraftOrder(ctx context.Context, customerID string) (*models.Order, error) {
	var o models.Order
	err := r.forUpdate(ctx).
		Where("customer_id = ? AND status = ?", customerID, models.OrderStatusDraft).
		First(&o).Error
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *Repository) CreateOrder(ctx context.Context, o *models.Order) error {
	return translate(r.conn(ctx).Create(o).Error)
}

func (r *Repository) UpdateOrderTotal(ctx context.Context, orderID string, total decimal.Decimal) error {
	res := r.conn(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("total_amount", total)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindOrderItem returns the line for (orderID, productID), row-locked when
// called inside Tx.
func (r *Repository) FindOrderItem(ctx context.Context, orderID, productID string) (*models.OrderItem, error) {
	var it models.OrderItem
	err := r.forUpdate(ctx).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		First(&it).Error
	if err != nil {
		return nil, translate(err)
	}
	return &it, nil
}

func (r *Repository) CreateOrderItem(ctx context.Context, it *models.OrderItem) error {
	return translate(r.conn(ctx).Create(it).Error)
}

func (r *Repository) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error {
	res := r.conn(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) ListOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	var out []models.OrderItem
	err := r.conn(ctx).
		Preload("Product").
		Where("order_id = ?", orderID).
		Order("created_at").
		Find(&out).Error
	return out, translate(err)
}
