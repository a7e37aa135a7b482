package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelier-moda/fashion-shop/internal/domain"
	"github.com/atelier-moda/fashion-shop/internal/logging"
	"github.com/atelier-moda/fashion-shop/internal/models"
	"github.com/atelier-moda/fashion-shop/internal/repo"
)

type CatalogService struct {
	Repo *repo.GormRepo
}

func New(r *repo.GormRepo) *CatalogService {
	return &CatalogService{Repo: r}
}

type VariantInput struct {
	Color             string
	Size              string
	Stock             int
	LowStockThreshold *int
	FeaturedImage     string
}

type CreateProductInput struct {
	Name              string
	Description       string
	Category          models.ProductCategory
	Subcategory       string
	Brand             string
	BasePrice         decimal.Decimal
	HasDiscount       bool
	DiscountType      *models.DiscountType
	DiscountValue     *decimal.Decimal
	DiscountStartDate *time.Time
	DiscountEndDate   *time.Time
	Images            []string
	StyleTags         []string
	CategoryTags      []string
	Status            models.ProductStatus
	IsFeatured        bool
	IsNew             bool
	Variants          []VariantInput
}

type UpdateProductInput struct {
	Name              *string
	Description       *string
	Category          *models.ProductCategory
	Subcategory       *string
	Brand             *string
	BasePrice         *decimal.Decimal
	HasDiscount       *bool
	DiscountType      *models.DiscountType
	DiscountValue     *decimal.Decimal
	DiscountStartDate *time.Time
	DiscountEndDate   *time.Time
	Images            []string
	StyleTags         []string
	CategoryTags      []string
	Status            *models.ProductStatus
	IsFeatured        *bool
	IsNew             *bool
}

func (s *CatalogService) CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	if in.Name == "" {
		return nil, fmt.Errorf("%w: name required", domain.ErrValidation)
	}
	if in.BasePrice.IsNegative() {
		return nil, fmt.Errorf("%w: base price must be >= 0", domain.ErrValidation)
	}
	if err := validateDiscount(in.HasDiscount, in.DiscountType, in.DiscountValue, in.DiscountStartDate, in.DiscountEndDate); err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, in.Name)
	if err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.ProductDraft
	}

	product := &models.Product{
		Name:              in.Name,
		Slug:              slug,
		Description:       in.Description,
		Category:          in.Category,
		Subcategory:       in.Subcategory,
		Brand:             in.Brand,
		BasePrice:         in.BasePrice,
		HasDiscount:       in.HasDiscount,
		DiscountType:      in.DiscountType,
		DiscountValue:     in.DiscountValue,
		DiscountStartDate: in.DiscountStartDate,
		DiscountEndDate:   in.DiscountEndDate,
		Images:            in.Images,
		StyleTags:         in.StyleTags,
		CategoryTags:      in.CategoryTags,
		Status:            status,
		IsFeatured:        in.IsFeatured,
		IsNew:             in.IsNew,
	}

	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if err := tx.CreateProduct(ctx, product); err != nil {
			return err
		}
		for _, v := range in.Variants {
			if _, err := s.createVariant(ctx, tx, product, v); err != nil {
				return err
			}
		}
		return s.recomputeStockStatus(ctx, tx, product.ID)
	})
	if err != nil {
		l.Error("create_product_failed", "status", 500, "error", err)
		return nil, err
	}

	l.Info("create_product_success", "product_id", product.ID, "slug", product.Slug)
	return s.Repo.GetProduct(ctx, product.ID)
}

func (s *CatalogService) createVariant(ctx context.Context, tx *repo.GormRepo, product *models.Product, in VariantInput) (*models.ProductVariant, error) {
	if in.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must be >= 0", domain.ErrValidation)
	}

	sku, err := s.uniqueSKU(ctx, tx, product.Name, in.Color, in.Size)
	if err != nil {
		return nil, err
	}

	variant := &models.ProductVariant{
		ProductID:     product.ID,
		SKU:           sku,
		Color:         in.Color,
		Size:          in.Size,
		Stock:         in.Stock,
		FeaturedImage: in.FeaturedImage,
		IsActive:      true,
		IsOutOfStock:  in.Stock == 0,
	}
	if in.LowStockThreshold != nil {
		variant.LowStockThreshold = *in.LowStockThreshold
	} else {
		variant.LowStockThreshold = 5
	}

	if err := tx.CreateVariant(ctx, variant); err != nil {
		return nil, err
	}
	return variant, nil
}

// AddVariant creates one more variant for an existing product.
func (s *CatalogService) AddVariant(ctx context.Context, productID uuid.UUID, in VariantInput) (*models.ProductVariant, error) {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	var variant *models.ProductVariant
	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		variant, err = s.createVariant(ctx, tx, product, in)
		if err != nil {
			return err
		}
		return s.recomputeStockStatus(ctx, tx, productID)
	})
	if err != nil {
		return nil, err
	}
	return variant, nil
}

type UpdateVariantInput struct {
	Color             *string
	Size              *string
	Stock             *int
	LowStockThreshold *int
	FeaturedImage     *string
	IsActive          *bool
}

func (s *CatalogService) UpdateVariant(ctx context.Context, variantID uuid.UUID, in UpdateVariantInput) (*models.ProductVariant, error) {
	variant, err := s.Repo.GetVariant(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: variant %s", domain.ErrNotFound, variantID)
		}
		return nil, err
	}

	if in.Color != nil {
		variant.Color = *in.Color
	}
	if in.Size != nil {
		variant.Size = *in.Size
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, fmt.Errorf("%w: stock must be >= 0", domain.ErrValidation)
		}
		variant.Stock = *in.Stock
	}
	if in.LowStockThreshold != nil {
		variant.LowStockThreshold = *in.LowStockThreshold
	}
	if in.FeaturedImage != nil {
		variant.FeaturedImage = *in.FeaturedImage
	}
	if in.IsActive != nil {
		variant.IsActive = *in.IsActive
	}
	variant.IsOutOfStock = variant.Stock == 0

	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if err := tx.SaveVariant(ctx, variant); err != nil {
			return err
		}
		return s.recomputeStockStatus(ctx, tx, variant.ProductID)
	})
	if err != nil {
		return nil, err
	}
	return variant, nil
}

func (s *CatalogService) DeleteVariant(ctx context.Context, variantID uuid.UUID) error {
	variant, err := s.Repo.GetVariant(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: variant %s", domain.ErrNotFound, variantID)
		}
		return err
	}

	return s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if err := tx.DeleteVariant(ctx, variantID); err != nil {
			return err
		}
		return s.recomputeStockStatus(ctx, tx, variant.ProductID)
	})
}

func (s *CatalogService) findProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return product, nil
}

// GetProduct returns the product with its variants and bumps the view counter.
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.IncrementViewCount(ctx, product.ID); err != nil {
		return nil, err
	}
	product.ViewCount++
	return product, nil
}

func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.Repo.GetProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %q", domain.ErrNotFound, slug)
		}
		return nil, err
	}
	if err := s.Repo.IncrementViewCount(ctx, product.ID); err != nil {
		return nil, err
	}
	product.ViewCount++
	return product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilters, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.ListProducts(ctx, f, offset, limit)
}

func (s *CatalogService) SearchProducts(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	if query == "" {
		return 0, nil, fmt.Errorf("%w: query required", domain.ErrValidation)
	}
	return s.Repo.SearchProducts(ctx, query, offset, limit)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in UpdateProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update_product", "product_id", id)

	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil && *in.Name != product.Name {
		slug, err := s.uniqueSlug(ctx, *in.Name)
		if err != nil {
			return nil, err
		}
		product.Name = *in.Name
		product.Slug = slug
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.Subcategory != nil {
		product.Subcategory = *in.Subcategory
	}
	if in.Brand != nil {
		product.Brand = *in.Brand
	}
	if in.BasePrice != nil {
		if in.BasePrice.IsNegative() {
			return nil, fmt.Errorf("%w: base price must be >= 0", domain.ErrValidation)
		}
		product.BasePrice = *in.BasePrice
	}
	if in.HasDiscount != nil {
		product.HasDiscount = *in.HasDiscount
	}
	if in.DiscountType != nil {
		product.DiscountType = in.DiscountType
	}
	if in.DiscountValue != nil {
		product.DiscountValue = in.DiscountValue
	}
	if in.DiscountStartDate != nil {
		product.DiscountStartDate = in.DiscountStartDate
	}
	if in.DiscountEndDate != nil {
		product.DiscountEndDate = in.DiscountEndDate
	}
	if in.Images != nil {
		product.Images = in.Images
	}
	if in.StyleTags != nil {
		product.StyleTags = in.StyleTags
	}
	if in.CategoryTags != nil {
		product.CategoryTags = in.CategoryTags
	}
	if in.Status != nil {
		product.Status = *in.Status
	}
	if in.IsFeatured != nil {
		product.IsFeatured = *in.IsFeatured
	}
	if in.IsNew != nil {
		product.IsNew = *in.IsNew
	}

	if err := validateDiscount(product.HasDiscount, product.DiscountType, product.DiscountValue, product.DiscountStartDate, product.DiscountEndDate); err != nil {
		return nil, err
	}

	product.Variants = nil
	if err := s.Repo.SaveProduct(ctx, product); err != nil {
		l.Error("update_product_failed", "status", 500, "error", err)
		return nil, err
	}

	l.Info("update_product_success")
	return s.Repo.GetProduct(ctx, id)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	err := s.Repo.SoftDeleteProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	return err
}

func (s *CatalogService) RestoreProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if _, err := s.Repo.GetDeletedProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: deleted product %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	if err := s.Repo.RestoreProduct(ctx, id); err != nil {
		return nil, err
	}
	return s.findProduct(ctx, id)
}

// RecomputeStockStatus flips the product to OUT_OF_STOCK when every variant is
// depleted and back to ACTIVE when stock returns. Called after every variant
// stock change.
func (s *CatalogService) RecomputeStockStatus(ctx context.Context, productID uuid.UUID) error {
	return s.recomputeStockStatus(ctx, s.Repo, productID)
}

func (s *CatalogService) recomputeStockStatus(ctx context.Context, tx *repo.GormRepo, productID uuid.UUID) error {
	return RecomputeStockStatus(ctx, tx, productID)
}

// RecomputeStockStatus is the transaction-aware version used by checkout and
// cancellation, which adjust stock inside their own transactions.
func RecomputeStockStatus(ctx context.Context, tx *repo.GormRepo, productID uuid.UUID) error {
	product, err := tx.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	inStock, err := tx.CountInStockVariants(ctx, productID)
	if err != nil {
		return err
	}

	switch {
	case inStock == 0 && product.Status != models.ProductOutOfStock:
		product.Status = models.ProductOutOfStock
	case inStock > 0 && product.Status == models.ProductOutOfStock:
		product.Status = models.ProductActive
	default:
		return nil
	}

	product.Variants = nil
	return tx.SaveProduct(ctx, product)
}

func (s *CatalogService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := Slugify(name)
	if base == "" {
		return "", fmt.Errorf("%w: name produces an empty slug", domain.ErrValidation)
	}

	slug := base
	for counter := 1; ; counter++ {
		exists, err := s.Repo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

func (s *CatalogService) uniqueSKU(ctx context.Context, tx *repo.GormRepo, productName, color, size string) (string, error) {
	sku := BuildSKU(productName, color, size)
	if sku == "" {
		return "", fmt.Errorf("%w: cannot build SKU from empty name", domain.ErrValidation)
	}

	for {
		exists, err := tx.SKUExists(ctx, sku)
		if err != nil {
			return "", err
		}
		if !exists {
			return sku, nil
		}
		sku = BuildSKU(productName, color, size) + "-" + randomSKUSuffix()
	}
}

func validateDiscount(hasDiscount bool, dtype *models.DiscountType, value *decimal.Decimal, start, end *time.Time) error {
	if !hasDiscount {
		return nil
	}
	if dtype == nil || value == nil {
		return fmt.Errorf("%w: discount type and value are required when discount is enabled", domain.ErrBusinessRule)
	}
	if !value.IsPositive() {
		return fmt.Errorf("%w: discount value must be > 0", domain.ErrBusinessRule)
	}
	if *dtype != models.DiscountPercentage && *dtype != models.DiscountFixed {
		return fmt.Errorf("%w: unknown discount type %q", domain.ErrBusinessRule, *dtype)
	}
	if start != nil && end != nil && !start.Before(*end) {
		return fmt.Errorf("%w: discount start date must be before end date", domain.ErrBusinessRule)
	}
	return nil
}
