package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelier-moda/fashion-shop/internal/models"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Preload("Variants").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Preload("Variants").First(&product, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetDeletedProduct looks a product up ignoring the soft-delete filter.
func (r *GormRepo) GetDeletedProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.DB.WithContext(ctx).Unscoped().
		Where("id = ? AND deleted_at IS NOT NULL", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

type ProductFilters struct {
	Category   models.ProductCategory
	Status     models.ProductStatus
	IsFeatured *bool
	IsNew      *bool
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilters, offset, limit int) (int64, []models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})

	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.IsFeatured != nil {
		q = q.Where("is_featured = ?", *f.IsFeatured)
	}
	if f.IsNew != nil {
		q = q.Where("is_new = ?", *f.IsNew)
	}
	if f.MinPrice != nil {
		q = q.Where("base_price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("base_price <= ?", *f.MaxPrice)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	err := q.Preload("Variants").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) SearchProducts(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	pattern := "%" + query + "%"
	q := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(brand) LIKE LOWER(?)",
			pattern, pattern, pattern)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	err := q.Preload("Variants").
		Order("view_count DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.DB.WithContext(ctx).Create(product).Error
}

func (r *GormRepo) SaveProduct(ctx context.Context, product *models.Product) error {
	return r.DB.WithContext(ctx).Save(product).Error
}

func (r *GormRepo) SoftDeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) RestoreProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Unscoped().Model(&models.Product{}).
		Where("id = ?", id).
		Update("deleted_at", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Product{}).Unscoped().
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

// ProductsByIDs loads plain product rows keyed by id, without variants.
func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	var products []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

func (r *GormRepo) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *GormRepo) IncrementTotalSold(ctx context.Context, id uuid.UUID, qty int) error {
	return r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("total_sold", gorm.Expr("total_sold + ?", qty)).Error
}
