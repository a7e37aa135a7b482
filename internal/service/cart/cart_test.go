package cart

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/atelier-moda/fashion-shop/internal/config"
	"github.com/atelier-moda/fashion-shop/internal/domain"
	"github.com/atelier-moda/fashion-shop/internal/models"
	"github.com/atelier-moda/fashion-shop/internal/repo"
)

func newTestService(t *testing.T) *CartService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))

	return New(repo.New(db))
}

// seedVariant creates an active product with one variant and returns the
// variant.
func seedVariant(t *testing.T, s *CartService, price string, stock int) *models.ProductVariant {
	t.Helper()
	ctx := context.Background()

	product := &models.Product{
		Name:      "Saco " + uuid.NewString()[:8],
		Slug:      "saco-" + uuid.NewString()[:8],
		Category:  models.CategoryClothing,
		BasePrice: decimal.RequireFromString(price),
		Status:    models.ProductActive,
	}
	require.NoError(t, s.Repo.CreateProduct(ctx, product))

	variant := &models.ProductVariant{
		ProductID: product.ID,
		SKU:       "SKU-" + uuid.NewString()[:8],
		Color:     "Beige",
		Size:      "M",
		Stock:     stock,
		IsActive:  true,
	}
	require.NoError(t, s.Repo.CreateVariant(ctx, variant))
	return variant
}

func TestGetCart_CreatesEmptyCartOnFirstUse(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	view, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, userID, view.Cart.UserID)
	assert.Empty(t, view.Cart.Items)
	assert.True(t, view.Subtotal.IsZero())
	assert.True(t, view.Total.IsZero())
	assert.Zero(t, view.ItemCount)
}

func TestAddItem_NewLine(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := seedVariant(t, svc, "100", 5)

	view, err := svc.AddItem(ctx, userID, variant.ID, 2)
	require.NoError(t, err)

	require.Len(t, view.Cart.Items, 1)
	assert.Equal(t, 2, view.Cart.Items[0].Quantity)
	assert.True(t, view.Cart.Items[0].PriceAtAdd.Equal(decimal.NewFromInt(100)))
	assert.True(t, view.Subtotal.Equal(decimal.NewFromInt(200)))
	assert.True(t, view.Total.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, 2, view.TotalQuantity)
}

func TestAddItem_BumpsExistingLine(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := seedVariant(t, svc, "100", 5)

	_, err := svc.AddItem(ctx, userID, variant.ID, 2)
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, userID, variant.ID, 3)
	require.NoError(t, err)

	require.Len(t, view.Cart.Items, 1, "same variant merges into one line")
	assert.Equal(t, 5, view.Cart.Items[0].Quantity)
}

func TestAddItem_RejectsInsufficientStock(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := seedVariant(t, svc, "100", 3)

	_, err := svc.AddItem(ctx, userID, variant.ID, 4)
	require.ErrorIs(t, err, domain.ErrBusinessRule)
	assert.Contains(t, err.Error(), "available: 3")

	// The cart is unchanged after the rejection.
	view, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Cart.Items)
}

func TestAddItem_RejectsWhenMergedQuantityExceedsStock(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := seedVariant(t, svc, "100", 5)

	_, err := svc.AddItem(ctx, userID, variant.ID, 3)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, userID, variant.ID, 3)
	require.ErrorIs(t, err, domain.ErrBusinessRule)

	view, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Cart.Items[0].Quantity)
}

func TestAddItem_RejectsInactiveVariant(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	variant := seedVariant(t, svc, "100", 5)

	variant.IsActive = false
	require.NoError(t, svc.Repo.SaveVariant(ctx, variant))

	_, err := svc.AddItem(ctx, uuid.New(), variant.ID, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddItem_RejectsUnknownVariant(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.AddItem(context.Background(), uuid.New(), uuid.New(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestComputeTotals_UsesLivePricesAndDiscounts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := seedVariant(t, svc, "100", 10)

	_, err := svc.AddItem(ctx, userID, variant.ID, 2)
	require.NoError(t, err)

	// A 20% discount goes live after the item was added; totals must follow
	// the catalog, not the captured price.
	product, err := svc.Repo.GetProduct(ctx, variant.ProductID)
	require.NoError(t, err)
	dt := models.DiscountPercentage
	twenty := decimal.NewFromInt(20)
	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)
	product.HasDiscount = true
	product.DiscountType = &dt
	product.DiscountValue = &twenty
	product.DiscountStartDate = &start
	product.DiscountEndDate = &end
	product.Variants = nil
	require.NoError(t, svc.Repo.SaveProduct(ctx, product))

	view, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.True(t, view.Subtotal.Equal(decimal.NewFromInt(200)), "subtotal %s", view.Subtotal)
	assert.True(t, view.Discount.Equal(decimal.NewFromInt(40)), "discount %s", view.Discount)
	assert.True(t, view.Total.Equal(decimal.NewFromInt(160)), "total %s", view.Total)
}

func TestComputeTotals_ExpiredDiscountIgnored(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := seedVariant(t, svc, "100", 10)

	product, err := svc.Repo.GetProduct(ctx, variant.ProductID)
	require.NoError(t, err)
	dt := models.DiscountFixed
	ten := decimal.NewFromInt(10)
	start := time.Now().Add(-2 * time.Hour)
	end := time.Now().Add(-time.Hour)
	product.HasDiscount = true
	product.DiscountType = &dt
	product.DiscountValue = &ten
	product.DiscountStartDate = &start
	product.DiscountEndDate = &end
	product.Variants = nil
	require.NoError(t, svc.Repo.SaveProduct(ctx, product))

	_, err = svc.AddItem(ctx, userID, variant.ID, 1)
	require.NoError(t, err)

	view, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.True(t, view.Discount.IsZero())
	assert.True(t, view.Total.Equal(decimal.NewFromInt(100)))
}

func TestUpdateItem(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := seedVariant(t, svc, "50", 10)

	view, err := svc.AddItem(ctx, userID, variant.ID, 1)
	require.NoError(t, err)
	itemID := view.Cart.Items[0].ID

	view, err = svc.UpdateItem(ctx, userID, itemID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Cart.Items[0].Quantity)
	assert.True(t, view.Total.Equal(decimal.NewFromInt(200)))

	_, err = svc.UpdateItem(ctx, userID, itemID, 11)
	assert.ErrorIs(t, err, domain.ErrBusinessRule)

	_, err = svc.UpdateItem(ctx, userID, itemID, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateItem_OtherUsersItemIsNotFound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	variant := seedVariant(t, svc, "50", 10)

	view, err := svc.AddItem(ctx, owner, variant.ID, 1)
	require.NoError(t, err)

	_, err = svc.UpdateItem(ctx, uuid.New(), view.Cart.Items[0].ID, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveItemAndClear(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	first := seedVariant(t, svc, "50", 10)
	second := seedVariant(t, svc, "30", 10)

	_, err := svc.AddItem(ctx, userID, first.ID, 1)
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, userID, second.ID, 1)
	require.NoError(t, err)
	require.Len(t, view.Cart.Items, 2)

	view, err = svc.RemoveItem(ctx, userID, view.Cart.Items[0].ID)
	require.NoError(t, err)
	assert.Len(t, view.Cart.Items, 1)

	view, err = svc.Clear(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Cart.Items)
	assert.True(t, view.Total.IsZero())
}
