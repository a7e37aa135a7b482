package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/atelier-moda/fashion-shop/internal/models"
)

var oneHundred = decimal.NewFromInt(100)

// DiscountActive reports whether the product's discount applies at the given
// instant. A missing start or end bound is treated as unbounded.
func DiscountActive(p *models.Product, now time.Time) bool {
	if !p.HasDiscount || p.DiscountType == nil || p.DiscountValue == nil {
		return false
	}
	if p.DiscountStartDate != nil && p.DiscountStartDate.After(now) {
		return false
	}
	if p.DiscountEndDate != nil && p.DiscountEndDate.Before(now) {
		return false
	}
	return true
}

// UnitDiscount returns the per-unit discount amount for the product, zero when
// no discount is active. A fixed discount never exceeds the base price.
func UnitDiscount(p *models.Product, now time.Time) decimal.Decimal {
	if !DiscountActive(p, now) {
		return decimal.Zero
	}

	switch *p.DiscountType {
	case models.DiscountPercentage:
		return p.BasePrice.Mul(*p.DiscountValue).Div(oneHundred)
	case models.DiscountFixed:
		if p.DiscountValue.GreaterThan(p.BasePrice) {
			return p.BasePrice
		}
		return *p.DiscountValue
	default:
		return decimal.Zero
	}
}

// UnitPrice returns the effective per-unit price after any active discount.
func UnitPrice(p *models.Product, now time.Time) decimal.Decimal {
	return p.BasePrice.Sub(UnitDiscount(p, now))
}
