package order

import (
	"context"
	"fmt"
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
	cartsvc "github.com/atelier-moda/fashion-shop/internal/service/cart"
)

func newTestService(t *testing.T) *OrderService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))

	r := repo.New(db)
	return New(r, cartsvc.New(r))
}

func seedVariant(t *testing.T, s *OrderService, price string, stock int) *models.ProductVariant {
	t.Helper()
	ctx := context.Background()

	product := &models.Product{
		Name:      "Saco " + uuid.NewString()[:8],
		Slug:      "saco-" + uuid.NewString()[:8],
		Category:  models.CategoryClothing,
		BasePrice: decimal.RequireFromString(price),
		Status:    models.ProductActive,
		Images:    models.StringList{"https://img.example/saco.jpg"},
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

func billingInput() CreateOrderInput {
	return CreateOrderInput{
		BillingFirstName: "Ana",
		BillingLastName:  "Gomez",
		BillingCountry:   "AR",
		BillingAddress:   "Av. Siempre Viva 742",
		BillingCity:      "Buenos Aires",
		BillingProvince:  "CABA",
		BillingZipCode:   "1414",
		BillingPhone:     "+54 11 5555-5555",
		BillingEmail:     "ana@example.com",
		PaymentMethod:    models.PaymentBankTransfer,
	}
}

func TestCheckout_HappyPath(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := seedVariant(t, svc, "100", 5)

	_, err := svc.Cart.AddItem(ctx, userID, variant.ID, 3)
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, userID, billingInput())
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("ORD-%d-00001", time.Now().Year()), order.OrderNumber)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(300)), "subtotal %s", order.Subtotal)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(300)))

	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.Equal(t, variant.SKU, item.VariantSKU)
	assert.Equal(t, "Beige", item.VariantColor)
	assert.Equal(t, 3, item.Quantity)
	assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, item.FinalPrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, item.Subtotal.Equal(decimal.NewFromInt(300)))
	assert.NotEmpty(t, item.ProductImage)

	got, err := svc.Repo.GetVariant(ctx, variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)

	product, err := svc.Repo.GetProduct(ctx, variant.ProductID)
	require.NoError(t, err)
	assert.Equal(t, 3, product.TotalSold)

	view, err := svc.Cart.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Cart.Items, "cart is cleared after checkout")
}

func TestCheckout_SnapshotsActiveDiscount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := seedVariant(t, svc, "100", 10)

	product, err := svc.Repo.GetProduct(ctx, variant.ProductID)
	require.NoError(t, err)
	dt := models.DiscountPercentage
	twenty := decimal.NewFromInt(20)
	product.HasDiscount = true
	product.DiscountType = &dt
	product.DiscountValue = &twenty
	product.Variants = nil
	require.NoError(t, svc.Repo.SaveProduct(ctx, product))

	_, err = svc.Cart.AddItem(ctx, userID, variant.ID, 2)
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, userID, billingInput())
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, item.DiscountAmount.Equal(decimal.NewFromInt(20)))
	assert.True(t, item.FinalPrice.Equal(decimal.NewFromInt(80)))
	assert.True(t, item.Subtotal.Equal(decimal.NewFromInt(160)))

	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(200)))
	assert.True(t, order.Discount.Equal(decimal.NewFromInt(40)))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(160)))
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Checkout(context.Background(), uuid.New(), billingInput())
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCheckout_UnknownPaymentMethod(t *testing.T) {
	svc := newTestService(t)

	in := billingInput()
	in.PaymentMethod = "CASH"
	_, err := svc.Checkout(context.Background(), uuid.New(), in)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCheckout_InsufficientStockRollsBack(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := seedVariant(t, svc, "100", 5)

	_, err := svc.Cart.AddItem(ctx, userID, variant.ID, 4)
	require.NoError(t, err)

	// Someone else buys most of the stock before this user checks out.
	variant.Stock = 2
	require.NoError(t, svc.Repo.SaveVariant(ctx, variant))

	_, err = svc.Checkout(ctx, userID, billingInput())
	require.ErrorIs(t, err, domain.ErrBusinessRule)
	assert.Contains(t, err.Error(), "available: 2")

	var count int64
	require.NoError(t, svc.Repo.DB.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count, "no order written")

	got, err := svc.Repo.GetVariant(ctx, variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock, "stock untouched")

	view, err := svc.Cart.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, view.Cart.Items, 1, "cart kept for the user to fix")
}

func TestCheckout_InactiveVariantRejected(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := seedVariant(t, svc, "100", 5)

	_, err := svc.Cart.AddItem(ctx, userID, variant.ID, 1)
	require.NoError(t, err)

	variant.IsActive = false
	require.NoError(t, svc.Repo.SaveVariant(ctx, variant))

	_, err = svc.Checkout(ctx, userID, billingInput())
	assert.ErrorIs(t, err, domain.ErrBusinessRule)
}

func TestCheckout_SequentialOrderNumbers(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	variant := seedVariant(t, svc, "100", 50)
	year := time.Now().Year()

	for i := 1; i <= 3; i++ {
		userID := uuid.New()
		_, err := svc.Cart.AddItem(ctx, userID, variant.ID, 1)
		require.NoError(t, err)

		order, err := svc.Checkout(ctx, userID, billingInput())
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("ORD-%d-%05d", year, i), order.OrderNumber)
	}
}

func TestCheckout_DepletingStockMarksProductOutOfStock(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := seedVariant(t, svc, "100", 2)

	_, err := svc.Cart.AddItem(ctx, userID, variant.ID, 2)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, userID, billingInput())
	require.NoError(t, err)

	got, err := svc.Repo.GetVariant(ctx, variant.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Stock)
	assert.True(t, got.IsOutOfStock)

	product, err := svc.Repo.GetProduct(ctx, variant.ProductID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductOutOfStock, product.Status)
}

func checkoutOrder(t *testing.T, svc *OrderService, userID uuid.UUID, variantID uuid.UUID, qty int) *models.Order {
	t.Helper()
	ctx := context.Background()

	_, err := svc.Cart.AddItem(ctx, userID, variantID, qty)
	require.NoError(t, err)
	order, err := svc.Checkout(ctx, userID, billingInput())
	require.NoError(t, err)
	return order
}

func TestCancel_RestoresStock(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := seedVariant(t, svc, "100", 5)
	order := checkoutOrder(t, svc, userID, variant.ID, 3)

	ident := domain.Identity{UserID: userID, Role: models.RoleUser}
	cancelled, err := svc.Cancel(ctx, order.ID, ident)
	require.NoError(t, err)

	assert.Equal(t, models.OrderCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	got, err := svc.Repo.GetVariant(ctx, variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
}

func TestCancel_RevivesOutOfStockProduct(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := seedVariant(t, svc, "100", 2)
	order := checkoutOrder(t, svc, userID, variant.ID, 2)

	product, err := svc.Repo.GetProduct(ctx, variant.ProductID)
	require.NoError(t, err)
	require.Equal(t, models.ProductOutOfStock, product.Status)

	_, err = svc.Cancel(ctx, order.ID, domain.Identity{UserID: userID, Role: models.RoleUser})
	require.NoError(t, err)

	product, err = svc.Repo.GetProduct(ctx, variant.ProductID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductActive, product.Status)
}

func TestCancel_OnlyPendingOrProcessing(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := seedVariant(t, svc, "100", 5)
	order := checkoutOrder(t, svc, userID, variant.ID, 1)

	delivered := models.OrderDelivered
	_, err := svc.Update(ctx, order.ID, UpdateOrderInput{Status: &delivered})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, order.ID, domain.Identity{UserID: userID, Role: models.RoleUser})
	assert.ErrorIs(t, err, domain.ErrBusinessRule)
}

func TestCancel_TwiceFails(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := seedVariant(t, svc, "100", 5)
	order := checkoutOrder(t, svc, userID, variant.ID, 1)

	ident := domain.Identity{UserID: userID, Role: models.RoleUser}
	first, err := svc.Cancel(ctx, order.ID, ident)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, order.ID, ident)
	assert.ErrorIs(t, err, domain.ErrBusinessRule)

	// Stock restored exactly once.
	got, err := svc.Repo.GetVariant(ctx, variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)

	again, err := svc.Repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, again.CancelledAt)
	assert.Equal(t, first.CancelledAt.Unix(), again.CancelledAt.Unix())
}

func TestCancel_ForbiddenForOtherUser(t *testing.T) {
	svc := newTestService(t)
	userID := uuid.New()
	variant := seedVariant(t, svc, "100", 5)
	order := checkoutOrder(t, svc, userID, variant.ID, 1)

	stranger := domain.Identity{UserID: uuid.New(), Role: models.RoleUser}
	_, err := svc.Cancel(context.Background(), order.ID, stranger)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	admin := domain.Identity{UserID: uuid.New(), Role: models.RoleAdmin}
	_, err = svc.Cancel(context.Background(), order.ID, admin)
	assert.NoError(t, err, "admins may cancel any order")
}

func TestUpdate_DeliveredStampsCompletedAtOnce(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := seedVariant(t, svc, "100", 5)
	order := checkoutOrder(t, svc, userID, variant.ID, 1)

	delivered := models.OrderDelivered
	updated, err := svc.Update(ctx, order.ID, UpdateOrderInput{Status: &delivered})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)
	first := *updated.CompletedAt

	notes := "left at the door"
	updated, err = svc.Update(ctx, order.ID, UpdateOrderInput{AdminNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "left at the door", updated.AdminNotes)
	require.NotNil(t, updated.CompletedAt)
	assert.Equal(t, first.Unix(), updated.CompletedAt.Unix())
}

func TestFindAll_AdminOnly(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.FindAll(context.Background(), repo.OrderFilters{}, domain.Identity{Role: models.RoleUser})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.FindAll(context.Background(), repo.OrderFilters{}, domain.Identity{Role: models.RoleAdmin})
	assert.NoError(t, err)
}

func TestFindOne_OwnershipEnforced(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := seedVariant(t, svc, "100", 5)
	order := checkoutOrder(t, svc, userID, variant.ID, 1)

	_, err := svc.FindOne(ctx, order.ID, domain.Identity{UserID: userID, Role: models.RoleUser})
	assert.NoError(t, err)

	_, err = svc.FindOne(ctx, order.ID, domain.Identity{UserID: uuid.New(), Role: models.RoleUser})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.FindOne(ctx, order.ID, domain.Identity{UserID: uuid.New(), Role: models.RoleAdmin})
	assert.NoError(t, err)
}

func TestFindByUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := seedVariant(t, svc, "100", 10)
	checkoutOrder(t, svc, userID, variant.ID, 1)
	checkoutOrder(t, svc, userID, variant.ID, 1)
	checkoutOrder(t, svc, uuid.New(), variant.ID, 1)

	orders, err := svc.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}
