package catalog

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/atelier-moda/fashion-shop/internal/config"
	"github.com/atelier-moda/fashion-shop/internal/domain"
	"github.com/atelier-moda/fashion-shop/internal/models"
	"github.com/atelier-moda/fashion-shop/internal/repo"
)

func newTestService(t *testing.T) *CatalogService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))

	return New(repo.New(db))
}

func testProductInput(name string) CreateProductInput {
	return CreateProductInput{
		Name:      name,
		Category:  models.CategoryClothing,
		BasePrice: decimal.NewFromInt(100),
		Status:    models.ProductActive,
		Variants: []VariantInput{
			{Color: "Beige", Size: "M", Stock: 5},
		},
	}
}

func TestCreateProduct_GeneratesSlugAndSKU(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, testProductInput("Saco Whole"))
	require.NoError(t, err)

	assert.Equal(t, "saco-whole", product.Slug)
	require.Len(t, product.Variants, 1)
	assert.Equal(t, "SACO-WHOLE-BEIGE-M", product.Variants[0].SKU)
	assert.Equal(t, 5, product.Variants[0].Stock)
	assert.True(t, product.Variants[0].IsActive)
	assert.False(t, product.Variants[0].IsOutOfStock)
}

func TestCreateProduct_SlugCollisionGetsSuffix(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateProduct(ctx, testProductInput("Saco Whole"))
	require.NoError(t, err)
	second, err := svc.CreateProduct(ctx, testProductInput("Saco Whole"))
	require.NoError(t, err)
	third, err := svc.CreateProduct(ctx, testProductInput("Saco Whole"))
	require.NoError(t, err)

	assert.Equal(t, "saco-whole", first.Slug)
	assert.Equal(t, "saco-whole-1", second.Slug)
	assert.Equal(t, "saco-whole-2", third.Slug)
}

func TestCreateProduct_SKUCollisionGetsRandomSuffix(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateProduct(ctx, testProductInput("Saco Whole"))
	require.NoError(t, err)
	second, err := svc.CreateProduct(ctx, testProductInput("Saco Whole"))
	require.NoError(t, err)

	require.Len(t, second.Variants, 1)
	assert.NotEqual(t, first.Variants[0].SKU, second.Variants[0].SKU)
	assert.Contains(t, second.Variants[0].SKU, "SACO-WHOLE-BEIGE-M-")
}

func TestCreateProduct_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, CreateProductInput{BasePrice: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	in := testProductInput("Saco")
	in.BasePrice = decimal.NewFromInt(-1)
	_, err = svc.CreateProduct(ctx, in)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateProduct_DiscountRules(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	in := testProductInput("Saco")
	in.HasDiscount = true
	_, err := svc.CreateProduct(ctx, in)
	assert.ErrorIs(t, err, domain.ErrBusinessRule, "discount enabled without type and value")

	dt := models.DiscountPercentage
	zero := decimal.Zero
	in.DiscountType = &dt
	in.DiscountValue = &zero
	_, err = svc.CreateProduct(ctx, in)
	assert.ErrorIs(t, err, domain.ErrBusinessRule, "discount value must be positive")

	twenty := decimal.NewFromInt(20)
	in.DiscountValue = &twenty
	product, err := svc.CreateProduct(ctx, in)
	require.NoError(t, err)
	assert.True(t, product.HasDiscount)
}

func TestDeleteProduct_SoftDeleteAndRestore(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, testProductInput("Saco Whole"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, product.ID))

	_, err = svc.GetProduct(ctx, product.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The slug stays reserved while the product is deleted.
	clone, err := svc.CreateProduct(ctx, testProductInput("Saco Whole"))
	require.NoError(t, err)
	assert.Equal(t, "saco-whole-1", clone.Slug)

	restored, err := svc.RestoreProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "saco-whole", restored.Slug)

	_, err = svc.GetProduct(ctx, product.ID)
	assert.NoError(t, err)
}

func TestRestoreProduct_NotDeleted(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, testProductInput("Saco"))
	require.NoError(t, err)

	_, err = svc.RestoreProduct(ctx, product.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateProduct_NameChangeRegeneratesSlug(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, testProductInput("Saco Whole"))
	require.NoError(t, err)

	name := "Campera Puffer"
	updated, err := svc.UpdateProduct(ctx, product.ID, UpdateProductInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "campera-puffer", updated.Slug)

	// Unchanged fields survive the patch.
	assert.Equal(t, product.Category, updated.Category)
	assert.True(t, product.BasePrice.Equal(updated.BasePrice))
}

func TestUpdateVariant_StockDrivesProductStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, testProductInput("Saco Whole"))
	require.NoError(t, err)
	variantID := product.Variants[0].ID

	zero := 0
	variant, err := svc.UpdateVariant(ctx, variantID, UpdateVariantInput{Stock: &zero})
	require.NoError(t, err)
	assert.True(t, variant.IsOutOfStock)

	product, err = svc.Repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductOutOfStock, product.Status)

	three := 3
	_, err = svc.UpdateVariant(ctx, variantID, UpdateVariantInput{Stock: &three})
	require.NoError(t, err)

	product, err = svc.Repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductActive, product.Status)
}

func TestDeleteVariant_LastOneMarksProductOutOfStock(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, testProductInput("Saco Whole"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteVariant(ctx, product.Variants[0].ID))

	product, err = svc.Repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductOutOfStock, product.Status)
}

func TestGetProduct_BumpsViewCount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, testProductInput("Saco"))
	require.NoError(t, err)

	got, err := svc.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ViewCount)

	bySlug, err := svc.GetProductBySlug(ctx, "saco")
	require.NoError(t, err)
	assert.Equal(t, 2, bySlug.ViewCount)
}

func TestSearchProducts_RequiresQuery(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.SearchProducts(context.Background(), "", 0, 20)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
