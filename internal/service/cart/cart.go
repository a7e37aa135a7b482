package cart

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
)

type CartService struct {
	Repo *repo.GormRepo
}

func New(r *repo.GormRepo) *CartService {
	return &CartService{Repo: r}
}

type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"item_count"`
	TotalQuantity int             `json:"total_quantity"`
}

type CartView struct {
	Cart *models.Cart `json:"cart"`
	Totals
}

// GetOrCreate returns the user's cart, creating an empty one on first use.
func (s *CartService) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.Repo.GetCartByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	if err := s.Repo.CreateCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// GetCart returns the cart together with totals computed from live catalog
// prices.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	totals, err := s.ComputeTotals(ctx, cart)
	if err != nil {
		return nil, err
	}
	return &CartView{Cart: cart, Totals: *totals}, nil
}

// ComputeTotals prices every line against the current catalog. Discounts only
// count while their window is active; amounts are rounded to 2 decimals.
func (s *CartService) ComputeTotals(ctx context.Context, cart *models.Cart) (*Totals, error) {
	now := time.Now()

	subtotal := decimal.Zero
	total := decimal.Zero
	quantity := 0

	products, err := s.productsForCart(ctx, cart)
	if err != nil {
		return nil, err
	}

	for _, item := range cart.Items {
		if item.Variant == nil {
			return nil, fmt.Errorf("%w: cart item %s has no variant", domain.ErrNotFound, item.ID)
		}
		product, ok := products[item.Variant.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product for variant %s", domain.ErrNotFound, item.VariantID)
		}

		qty := decimal.NewFromInt(int64(item.Quantity))
		subtotal = subtotal.Add(product.BasePrice.Mul(qty))
		total = total.Add(pricing.UnitPrice(&product, now).Mul(qty))
		quantity += item.Quantity
	}

	subtotal = subtotal.Round(2)
	total = total.Round(2)

	return &Totals{
		Subtotal:      subtotal,
		Discount:      subtotal.Sub(total).Round(2),
		Total:         total,
		ItemCount:     len(cart.Items),
		TotalQuantity: quantity,
	}, nil
}

func (s *CartService) productsForCart(ctx context.Context, cart *models.Cart) (map[uuid.UUID]models.Product, error) {
	if len(cart.Items) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.Variant != nil {
			ids = append(ids, item.Variant.ProductID)
		}
	}
	return s.Repo.ProductsByIDs(ctx, ids)
}

// AddItem puts quantity units of the variant into the user's cart, or bumps
// the existing line. The request is rejected when the variant is missing,
// inactive, or the cart would exceed the available stock.
func (s *CartService) AddItem(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*CartView, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add_item", "variant_id", variantID)

	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be >= 1", domain.ErrValidation)
	}

	variant, err := s.Repo.GetVariant(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: variant not found or unavailable", domain.ErrNotFound)
		}
		return nil, err
	}
	if !variant.IsActive {
		return nil, fmt.Errorf("%w: variant not found or unavailable", domain.ErrNotFound)
	}

	product, err := s.Repo.GetProduct(ctx, variant.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: variant not found or unavailable", domain.ErrNotFound)
		}
		return nil, err
	}

	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.Repo.GetCartItem(ctx, cart.ID, variantID)
	switch {
	case err == nil:
		newQuantity := existing.Quantity + quantity
		if variant.Stock < newQuantity {
			l.Warn("add_item_rejected", "status", 400, "reason", "insufficient stock", "stock", variant.Stock, "requested", newQuantity)
			return nil, fmt.Errorf("%w: insufficient stock, available: %d", domain.ErrBusinessRule, variant.Stock)
		}
		existing.Quantity = newQuantity
		if err := s.Repo.SaveCartItem(ctx, existing); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if variant.Stock < quantity {
			l.Warn("add_item_rejected", "status", 400, "reason", "insufficient stock", "stock", variant.Stock, "requested", quantity)
			return nil, fmt.Errorf("%w: insufficient stock, available: %d", domain.ErrBusinessRule, variant.Stock)
		}
		item := &models.CartItem{
			CartID:     cart.ID,
			VariantID:  variantID,
			Quantity:   quantity,
			PriceAtAdd: product.BasePrice,
		}
		if err := s.Repo.CreateCartItem(ctx, item); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

// UpdateItem sets the quantity of one cart line.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be >= 1", domain.ErrValidation)
	}

	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.Repo.GetCartItemByID(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: item not in cart", domain.ErrNotFound)
		}
		return nil, err
	}

	if item.Variant == nil || item.Variant.Stock < quantity {
		available := 0
		if item.Variant != nil {
			available = item.Variant.Stock
		}
		return nil, fmt.Errorf("%w: insufficient stock, available: %d", domain.ErrBusinessRule, available)
	}

	item.Quantity = quantity
	item.Variant = nil
	if err := s.Repo.SaveCartItem(ctx, item); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// RemoveItem deletes one line from the user's cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartView, error) {
	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.Repo.GetCartItemByID(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: item not in cart", domain.ErrNotFound)
		}
		return nil, err
	}

	if err := s.Repo.DeleteCartItem(ctx, item.ID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// Clear removes every line from the user's cart.
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.ClearCart(ctx, cart.ID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}
