// Package cart keeps each customer's draft order consistent as items are
// added to it.
//
// A customer has at most one draft order. Adding a product finds or creates
// that draft, finds or creates the product's line, bumps its quantity and adds
// the product's unit price to the order total. The line keeps the price it was
// created with; the total grows by the product's price at the time of each add,
// so the two only agree while the product price stays put.
package cart

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Galaktikon/trust-cart/internal/apperr"
	"github.com/Galaktikon/trust-cart/internal/events"
	"github.com/Galaktikon/trust-cart/internal/models"
	"github.com/Galaktikon/trust-cart/internal/store"
)

// State is the cart after an add: the draft order and the line that changed.
type State struct {
	Order models.Order     `json:"order"`
	Item  models.OrderItem `json:"item"`
}

// Cart is a customer's draft order with its lines. Order is nil when the
// customer has no draft.
type Cart struct {
	Order *models.Order      `json:"order"`
	Items []models.OrderItem `json:"items"`
}

type Reconciler struct {
	repo   *store.Repository
	events events.Publisher
	log    *slog.Logger
}

func NewReconciler(repo *store.Repository, pub events.Publisher, log *slog.Logger) *Reconciler {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Reconciler{repo: repo, events: pub, log: log}
}

// AddItem adds one unit of the named product to the customer's draft order.
// storeID narrows the product lookup to one store; when empty the name must
// be unique across all stores.
func (r *Reconciler) AddItem(ctx context.Context, customerID, productName, storeID string) (State, error) {
	if customerID == "" {
		return State{}, apperr.Validation("user_id is required")
	}
	if productName == "" {
		return State{}, apperr.Validation("title is required")
	}

	product, err := r.resolveProduct(ctx, productName, storeID)
	if err != nil {
		return State{}, err
	}

	var st State
	err = r.repo.Tx(ctx, func(tx *store.Repository) error {
		order, err := findOrCreateDraft(ctx, tx, customerID, product.StoreID)
		if err != nil {
			return err
		}

		item, err := addLine(ctx, tx, order.ID, product)
		if err != nil {
			return err
		}

		order.TotalAmount = order.TotalAmount.Add(product.Price)
		if err := tx.UpdateOrderTotal(ctx, order.ID, order.TotalAmount); err != nil {
			return err
		}

		st = State{Order: *order, Item: *item}
		return nil
	})
	if err != nil {
		r.log.Error("add to cart failed",
			"customer_id", customerID, "product_id", product.ID, "error", err)
		return State{}, apperr.Upstream("failed to update cart", err)
	}

	r.publishItemAdded(ctx, st, product.Price)
	return st, nil
}

// GetCart returns the customer's draft order and its lines.
func (r *Reconciler) GetCart(ctx context.Context, customerID string) (Cart, error) {
	if customerID == "" {
		return Cart{}, apperr.Validation("user_id is required")
	}

	order, err := r.repo.FindDraftOrder(ctx, customerID)
	if errors.Is(err, store.ErrNotFound) {
		return Cart{Items: []models.OrderItem{}}, nil
	}
	if err != nil {
		r.log.Error("load cart failed", "customer_id", customerID, "error", err)
		return Cart{}, apperr.Upstream("failed to load cart", err)
	}

	items, err := r.repo.ListOrderItems(ctx, order.ID)
	if err != nil {
		r.log.Error("load cart items failed", "order_id", order.ID, "error", err)
		return Cart{}, apperr.Upstream("failed to load cart", err)
	}
	return Cart{Order: order, Items: items}, nil
}

func (r *Reconciler) resolveProduct(ctx context.Context, name, storeID string) (*models.Product, error) {
	if storeID != "" {
		p, err := r.repo.FindProduct(ctx, storeID, name)
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		if err != nil {
			r.log.Error("product lookup failed", "store_id", storeID, "name", name, "error", err)
			return nil, apperr.Upstream("failed to load product", err)
		}
		return p, nil
	}

	ps, err := r.repo.FindProductsByName(ctx, name)
	if err != nil {
		r.log.Error("product lookup failed", "name", name, "error", err)
		return nil, apperr.Upstream("failed to load product", err)
	}
	switch len(ps) {
	case 0:
		return nil, apperr.NotFound("product not found")
	case 1:
		return &ps[0], nil
	default:
		return nil, apperr.Validation("product name matches several stores; pass store_id")
	}
}

// findOrCreateDraft reuses the customer's draft whatever store it was opened
// for. A concurrent request that created the draft first wins; its row is
// returned.
func findOrCreateDraft(ctx context.Context, tx *store.Repository, customerID, storeID string) (*models.Order, error) {
	order, err := tx.FindDraftOrder(ctx, customerID)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	order = &models.Order{
		CustomerID:  customerID,
		StoreID:     storeID,
		TotalAmount: decimal.Zero,
		Status:      models.OrderStatusDraft,
	}
	err = tx.Tx(ctx, func(sp *store.Repository) error {
		return sp.CreateOrder(ctx, order)
	})
	if errors.Is(err, store.ErrDuplicate) {
		return tx.FindDraftOrder(ctx, customerID)
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// addLine creates the product's line with quantity 1 and the current price,
// or bumps the quantity of the existing line leaving its price alone.
func addLine(ctx context.Context, tx *store.Repository, orderID string, product *models.Product) (*models.OrderItem, error) {
	item, err := tx.FindOrderItem(ctx, orderID, product.ID)
	if errors.Is(err, store.ErrNotFound) {
		item = &models.OrderItem{
			OrderID:   orderID,
			ProductID: product.ID,
			Quantity:  1,
			Price:     product.Price,
		}
		err = tx.Tx(ctx, func(sp *store.Repository) error {
			return sp.CreateOrderItem(ctx, item)
		})
		if err == nil {
			return item, nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return nil, err
		}
		item, err = tx.FindOrderItem(ctx, orderID, product.ID)
	}
	if err != nil {
		return nil, err
	}

	item.Quantity++
	if err := tx.UpdateItemQuantity(ctx, item.ID, item.Quantity); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *Reconciler) publishItemAdded(ctx context.Context, st State, unitPrice decimal.Decimal) {
	env, err := events.NewEnvelope(events.EventCartItemAdded, st.Order.ID, events.CartItemAddedPayload{
		OrderID:     st.Order.ID,
		CustomerID:  st.Order.CustomerID,
		ProductID:   st.Item.ProductID,
		Quantity:    st.Item.Quantity,
		UnitPrice:   unitPrice,
		TotalAmount: st.Order.TotalAmount,
	})
	if err == nil {
		err = r.events.Publish(ctx, st.Order.ID, env)
	}
	if err != nil {
		r.log.Warn("publish cart event failed", "order_id", st.Order.ID, "error", err)
	}
}
