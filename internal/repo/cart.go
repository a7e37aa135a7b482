package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/atelier-moda/fashion-shop/internal/models"
)

func (r *GormRepo) GetCartByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB.WithContext(ctx).
		Preload("Items.Variant").
		First(&cart, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) CreateCart(ctx context.Context, cart *models.Cart) error {
	return r.DB.WithContext(ctx).Create(cart).Error
}

func (r *GormRepo) GetCartItem(ctx context.Context, cartID, variantID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).
		First(&item, "cart_id = ? AND variant_id = ?", cartID, variantID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) GetCartItemByID(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).
		Preload("Variant").
		First(&item, "id = ? AND cart_id = ?", itemID, cartID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) CreateCartItem(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

func (r *GormRepo) SaveCartItem(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Save(item).Error
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", id).Error
}

func (r *GormRepo) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	return r.DB.WithContext(ctx).Delete(&models.CartItem{}, "cart_id = ?", cartID).Error
}
