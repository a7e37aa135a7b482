package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/atelier-moda/fashion-shop/internal/models"
)

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepo) SaveOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Save(order).Error
}

func (r *GormRepo) CreateOrderItem(ctx context.Context, item *models.OrderItem) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items").
		Preload("User").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

type OrderFilters struct {
	Status        models.OrderStatus
	PaymentStatus models.PaymentStatus
	UserID        uuid.UUID
}

func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilters) ([]models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}
	if f.UserID != uuid.Nil {
		q = q.Where("user_id = ?", f.UserID)
	}

	var orders []models.Order
	err := q.Preload("Items").Preload("User").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// NextOrderNumber allocates the next number for the given year from the
// per-year sequence row. The row is locked for the duration of the enclosing
// transaction, which serializes concurrent checkouts.
func (r *GormRepo) NextOrderNumber(ctx context.Context, year int) (string, error) {
	var seq models.OrderSequence
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&seq, "year = ?", year).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		seq = models.OrderSequence{Year: year, Counter: 1}
		if err := r.DB.WithContext(ctx).Create(&seq).Error; err != nil {
			return "", err
		}
	case err != nil:
		return "", err
	default:
		seq.Counter++
		if err := r.DB.WithContext(ctx).Save(&seq).Error; err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("ORD-%d-%05d", year, seq.Counter), nil
}
