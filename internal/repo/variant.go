package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelier-moda/fashion-shop/internal/models"
)

// ErrInsufficientStock is returned when a conditional stock decrement matches
// no row, meaning the remaining stock is lower than the requested quantity.
var ErrInsufficientStock = errors.New("insufficient stock")

func (r *GormRepo) GetVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.DB.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *GormRepo) GetVariantBySKU(ctx context.Context, sku string) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.DB.WithContext(ctx).First(&variant, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *GormRepo) VariantsByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	if err := r.DB.WithContext(ctx).Where("product_id = ?", productID).Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

func (r *GormRepo) CreateVariant(ctx context.Context, variant *models.ProductVariant) error {
	return r.DB.WithContext(ctx).Create(variant).Error
}

func (r *GormRepo) SaveVariant(ctx context.Context, variant *models.ProductVariant) error {
	return r.DB.WithContext(ctx).Save(variant).Error
}

func (r *GormRepo) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&models.ProductVariant{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) SKUExists(ctx context.Context, sku string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("sku = ?", sku).
		Count(&count).Error
	return count > 0, err
}

// DecrementStock atomically subtracts qty from the variant's stock and returns
// ErrInsufficientStock when the remaining stock does not cover the request.
// The out-of-stock flag is derived in the same statement so concurrent
// checkouts cannot leave it stale.
func (r *GormRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.DB.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("id = ? AND stock >= ?", id, qty).
		Updates(map[string]any{
			"stock":           gorm.Expr("stock - ?", qty),
			"is_out_of_stock": gorm.Expr("stock - ? = 0", qty),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// RestoreStock adds qty back to the variant's stock and clears the
// out-of-stock flag.
func (r *GormRepo) RestoreStock(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.DB.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock":           gorm.Expr("stock + ?", qty),
			"is_out_of_stock": false,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountInStockVariants reports how many variants of the product still have
// stock available.
func (r *GormRepo) CountInStockVariants(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("product_id = ? AND stock > 0", productID).
		Count(&count).Error
	return count, err
}
