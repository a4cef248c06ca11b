package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Galaktikon/trust-cart/internal/db"
	"github.com/Galaktikon/trust-cart/internal/models"
	"github.com/Galaktikon/trust-cart/internal/store"
)

func setupRepo(t *testing.T) *store.Repository {
	t.Helper()
	testDB, err := db.OpenSQLite(uuid.NewString())
	require.NoError(t, err)
	return store.New(testDB)
}

func TestNotFoundIsTranslated(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	_, err := repo.FindUser(ctx, "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = repo.FindDraftOrder(ctx, "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, repo.UpdateOrderTotal(ctx, "missing", decimal.NewFromInt(1)), store.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateItemQuantity(ctx, "missing", 2), store.ErrNotFound)
}

func TestOneStorePerMerchant(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateStore(ctx, &models.Store{MerchantID: "m1", Name: "First"}))
	err := repo.CreateStore(ctx, &models.Store{MerchantID: "m1", Name: "Second"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	st, err := repo.FindStoreByMerchant(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "First", st.Name)
}

func TestOneDraftPerCustomer(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	first := models.Order{CustomerID: "u1", StoreID: "s1", Status: models.OrderStatusDraft}
	require.NoError(t, repo.CreateOrder(ctx, &first))

	err := repo.CreateOrder(ctx, &models.Order{CustomerID: "u1", StoreID: "s2", Status: models.OrderStatusDraft})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	// submitted orders carry no draft key
	require.NoError(t, repo.CreateOrder(ctx, &models.Order{CustomerID: "u1", StoreID: "s1", Status: models.OrderStatusSubmitted}))
	require.NoError(t, repo.CreateOrder(ctx, &models.Order{CustomerID: "u1", StoreID: "s1", Status: models.OrderStatusSubmitted}))

	got, err := repo.FindDraftOrder(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestOneLinePerProduct(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateOrderItem(ctx, &models.OrderItem{OrderID: "o1", ProductID: "p1", Quantity: 1, Price: decimal.NewFromInt(2)}))
	err := repo.CreateOrderItem(ctx, &models.OrderItem{OrderID: "o1", ProductID: "p1", Quantity: 1, Price: decimal.NewFromInt(2)})
	assert.ErrorIs(t, err, store.ErrDuplicate)
	require.NoError(t, repo.CreateOrderItem(ctx, &models.OrderItem{OrderID: "o2", ProductID: "p1", Quantity: 1, Price: decimal.NewFromInt(2)}))
}

func TestTxRollsBack(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.Tx(ctx, func(tx *store.Repository) error {
		if err := tx.CreateOrder(ctx, &models.Order{CustomerID: "u1", StoreID: "s1", Status: models.OrderStatusDraft}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.FindDraftOrder(ctx, "u1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestNestedTxKeepsOuterUsable(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateOrder(ctx, &models.Order{CustomerID: "u1", StoreID: "s1", Status: models.OrderStatusDraft}))

	err := repo.Tx(ctx, func(tx *store.Repository) error {
		err := tx.Tx(ctx, func(inner *store.Repository) error {
			return inner.CreateOrder(ctx, &models.Order{CustomerID: "u1", StoreID: "s1", Status: models.OrderStatusDraft})
		})
		require.ErrorIs(t, err, store.ErrDuplicate)

		o, err := tx.FindDraftOrder(ctx, "u1")
		if err != nil {
			return err
		}
		return tx.UpdateOrderTotal(ctx, o.ID, decimal.RequireFromString("3.50"))
	})
	require.NoError(t, err)

	o, err := repo.FindDraftOrder(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("3.50").Equal(o.TotalAmount))
	require.NotNil(t, o.DraftKey)
}

func TestListOrderItemsPreloadsProduct(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	p := models.Product{StoreID: "s1", Name: "Widget", Price: decimal.RequireFromString("9.99"), Stock: models.DefaultStock}
	require.NoError(t, repo.CreateProduct(ctx, &p))
	require.NoError(t, repo.CreateOrderItem(ctx, &models.OrderItem{OrderID: "o1", ProductID: p.ID, Quantity: 2, Price: p.Price}))

	items, err := repo.ListOrderItems(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Widget", items[0].Product.Name)
}

func TestFindProductsByName(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	for _, storeID := range []string{"s1", "s2"} {
		require.NoError(t, repo.CreateProduct(ctx, &models.Product{StoreID: storeID, Name: "Mug", Price: decimal.NewFromInt(5), Stock: models.DefaultStock}))
	}
	err := repo.CreateProduct(ctx, &models.Product{StoreID: "s1", Name: "Mug", Price: decimal.NewFromInt(7), Stock: models.DefaultStock})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	found, err := repo.FindProductsByName(ctx, "Mug")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	p, err := repo.FindProduct(ctx, "s2", "Mug")
	require.NoError(t, err)
	assert.Equal(t, "s2", p.StoreID)
}
