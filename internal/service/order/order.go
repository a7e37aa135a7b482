package order

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
	"github.com/atelier-moda/fashion-shop/internal/pricing"
	"github.com/atelier-moda/fashion-shop/internal/repo"
	cartsvc "github.com/atelier-moda/fashion-shop/internal/service/cart"
	"github.com/atelier-moda/fashion-shop/internal/service/catalog"
)

type OrderService struct {
	Repo *repo.GormRepo
	Cart *cartsvc.CartService
}

func New(r *repo.GormRepo, cart *cartsvc.CartService) *OrderService {
	return &OrderService{Repo: r, Cart: cart}
}

type CreateOrderInput struct {
	BillingFirstName string
	BillingLastName  string
	BillingCompany   string
	BillingCountry   string
	BillingAddress   string
	BillingCity      string
	BillingProvince  string
	BillingZipCode   string
	BillingPhone     string
	BillingEmail     string
	PaymentMethod    models.PaymentMethod
	CustomerNotes    string
}

// Checkout converts the user's cart into an immutable order: allocates the
// order number, snapshots every line, decrements stock, bumps sales counters
// and clears the cart. The whole write sequence runs in one transaction and
// rolls back entirely on any failure.
func (s *OrderService) Checkout(ctx context.Context, userID uuid.UUID, in CreateOrderInput) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.checkout", "user_id", userID)

	switch in.PaymentMethod {
	case models.PaymentBankTransfer, models.PaymentCreditCard, models.PaymentMercadoPago:
	default:
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, in.PaymentMethod)
	}

	view, err := s.Cart.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(view.Cart.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", domain.ErrValidation)
	}

	now := time.Now()

	var order *models.Order
	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		products := make(map[uuid.UUID]*models.Product)

		// Re-validate every line against the live catalog before writing
		// anything.
		for _, item := range view.Cart.Items {
			variant, err := tx.GetVariant(ctx, item.VariantID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: variant %s no longer exists", domain.ErrNotFound, item.VariantID)
				}
				return err
			}

			product, ok := products[variant.ProductID]
			if !ok {
				product, err = tx.GetProduct(ctx, variant.ProductID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("%w: product for variant %s no longer exists", domain.ErrNotFound, item.VariantID)
					}
					return err
				}
				products[variant.ProductID] = product
			}

			if !variant.IsActive {
				return fmt.Errorf("%w: product %q is no longer available", domain.ErrBusinessRule, product.Name)
			}
			if variant.Stock < item.Quantity {
				return fmt.Errorf("%w: insufficient stock for %q, available: %d, requested: %d",
					domain.ErrBusinessRule, product.Name, variant.Stock, item.Quantity)
			}
		}

		number, err := tx.NextOrderNumber(ctx, now.Year())
		if err != nil {
			return err
		}

		order = &models.Order{
			UserID:           userID,
			OrderNumber:      number,
			BillingFirstName: in.BillingFirstName,
			BillingLastName:  in.BillingLastName,
			BillingCompany:   in.BillingCompany,
			BillingCountry:   in.BillingCountry,
			BillingAddress:   in.BillingAddress,
			BillingCity:      in.BillingCity,
			BillingProvince:  in.BillingProvince,
			BillingZipCode:   in.BillingZipCode,
			BillingPhone:     in.BillingPhone,
			BillingEmail:     in.BillingEmail,
			Subtotal:         view.Subtotal,
			Discount:         view.Discount,
			Total:            view.Total,
			PaymentMethod:    in.PaymentMethod,
			PaymentStatus:    models.PaymentPending,
			Status:           models.OrderPending,
			CustomerNotes:    in.CustomerNotes,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		for _, item := range view.Cart.Items {
			variant, err := tx.GetVariant(ctx, item.VariantID)
			if err != nil {
				return err
			}
			product := products[variant.ProductID]

			// Prices are recomputed here rather than reused from the cart
			// totals so each snapshot reflects the catalog at checkout time.
			unitPrice := product.BasePrice
			discountAmount := pricing.UnitDiscount(product, now).Round(2)
			finalPrice := unitPrice.Sub(discountAmount)
			lineSubtotal := finalPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)

			image := ""
			if len(product.Images) > 0 {
				image = product.Images[0]
			}

			orderItem := &models.OrderItem{
				OrderID:        order.ID,
				VariantID:      variant.ID,
				ProductName:    product.Name,
				VariantSKU:     variant.SKU,
				VariantColor:   variant.Color,
				VariantSize:    variant.Size,
				ProductImage:   image,
				Quantity:       item.Quantity,
				UnitPrice:      unitPrice,
				DiscountAmount: discountAmount,
				FinalPrice:     finalPrice,
				Subtotal:       lineSubtotal,
			}
			if err := tx.CreateOrderItem(ctx, orderItem); err != nil {
				return err
			}

			if err := tx.DecrementStock(ctx, variant.ID, item.Quantity); err != nil {
				if errors.Is(err, repo.ErrInsufficientStock) {
					return fmt.Errorf("%w: insufficient stock for %q, available: %d, requested: %d",
						domain.ErrBusinessRule, product.Name, variant.Stock, item.Quantity)
				}
				return err
			}
			if err := tx.IncrementTotalSold(ctx, product.ID, item.Quantity); err != nil {
				return err
			}
		}

		for productID := range products {
			if err := catalog.RecomputeStockStatus(ctx, tx, productID); err != nil {
				return err
			}
		}

		return tx.ClearCart(ctx, view.Cart.ID)
	})
	if err != nil {
		l.Warn("checkout_failed", "status", 400, "error", err)
		return nil, err
	}

	l.Info("checkout_success", "order_id", order.ID, "order_number", order.OrderNumber, "total", order.Total)
	return s.Repo.GetOrder(ctx, order.ID)
}

type UpdateOrderInput struct {
	Status        *models.OrderStatus
	PaymentStatus *models.PaymentStatus
	AdminNotes    *string
}

// Update merges status, payment status and admin notes into the order.
// Reaching DELIVERED stamps completedAt once; CANCELLED stamps cancelledAt
// once. Stock is not touched here, use Cancel for that.
func (s *OrderService) Update(ctx context.Context, id uuid.UUID, in UpdateOrderInput) (*models.Order, error) {
	order, err := s.findOne(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Status != nil {
		order.Status = *in.Status
	}
	if in.PaymentStatus != nil {
		order.PaymentStatus = *in.PaymentStatus
	}
	if in.AdminNotes != nil {
		order.AdminNotes = *in.AdminNotes
	}

	now := time.Now()
	if order.Status == models.OrderDelivered && order.CompletedAt == nil {
		order.CompletedAt = &now
	}
	if order.Status == models.OrderCancelled && order.CancelledAt == nil {
		order.CancelledAt = &now
	}

	order.Items = nil
	order.User = nil
	if err := s.Repo.SaveOrder(ctx, order); err != nil {
		return nil, err
	}
	return s.Repo.GetOrder(ctx, id)
}

// Cancel aborts a pending or processing order and puts every purchased
// quantity back onto its variant's stock.
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID, ident domain.Identity) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.cancel", "order_id", id)

	order, err := s.findOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ident.IsAdmin() && order.UserID != ident.UserID {
		return nil, fmt.Errorf("%w: not your order", domain.ErrForbidden)
	}

	if order.Status != models.OrderPending && order.Status != models.OrderProcessing {
		return nil, fmt.Errorf("%w: only PENDING or PROCESSING orders can be cancelled", domain.ErrBusinessRule)
	}

	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		touched := make(map[uuid.UUID]struct{})

		for _, item := range order.Items {
			variant, err := tx.GetVariant(ctx, item.VariantID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// Variant was removed after purchase; nothing to restore.
					continue
				}
				return err
			}
			if err := tx.RestoreStock(ctx, variant.ID, item.Quantity); err != nil {
				return err
			}
			touched[variant.ProductID] = struct{}{}
		}

		for productID := range touched {
			if err := catalog.RecomputeStockStatus(ctx, tx, productID); err != nil {
				return err
			}
		}

		now := time.Now()
		order.Status = models.OrderCancelled
		if order.CancelledAt == nil {
			order.CancelledAt = &now
		}
		order.Items = nil
		order.User = nil
		return tx.SaveOrder(ctx, order)
	})
	if err != nil {
		l.Error("cancel_failed", "status", 500, "error", err)
		return nil, err
	}

	l.Info("cancel_success", "order_number", order.OrderNumber)
	return s.Repo.GetOrder(ctx, id)
}

// FindAll lists orders with optional equality filters. Admin only.
func (s *OrderService) FindAll(ctx context.Context, f repo.OrderFilters, ident domain.Identity) ([]models.Order, error) {
	if !ident.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}
	return s.Repo.ListOrders(ctx, f)
}

func (s *OrderService) FindByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.Repo.ListOrdersByUser(ctx, userID)
}

// FindOne returns the order; non-admin callers only see their own.
func (s *OrderService) FindOne(ctx context.Context, id uuid.UUID, ident domain.Identity) (*models.Order, error) {
	order, err := s.findOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ident.IsAdmin() && order.UserID != ident.UserID {
		return nil, fmt.Errorf("%w: not your order", domain.ErrForbidden)
	}
	return order, nil
}

func (s *OrderService) findOne(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return order, nil
}
