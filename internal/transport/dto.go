package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelier-moda/fashion-shop/internal/models"
	"github.com/atelier-moda/fashion-shop/internal/service/catalog"
	"github.com/atelier-moda/fashion-shop/internal/service/order"
)

// Requests carry their own validation; handlers reject a request whose
// Validate returns a non-empty list before touching any service.

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

func (r RegisterRequest) Validate() []string {
	var errs []string
	if r.Email == "" {
		errs = append(errs, "email is required")
	}
	if len(r.Password) < 8 {
		errs = append(errs, "password must be at least 8 characters")
	}
	if len(r.Name) < 2 {
		errs = append(errs, "name must be at least 2 characters")
	}
	return errs
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() []string {
	var errs []string
	if r.Email == "" {
		errs = append(errs, "email is required")
	}
	if r.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

type VariantRequest struct {
	Color             string `json:"color"`
	Size              string `json:"size"`
	Stock             int    `json:"stock"`
	LowStockThreshold *int   `json:"low_stock_threshold"`
	FeaturedImage     string `json:"featured_image"`
}

func (r VariantRequest) Validate() []string {
	var errs []string
	if r.Stock < 0 {
		errs = append(errs, "stock must be >= 0")
	}
	return errs
}

func (r VariantRequest) ToInput() catalog.VariantInput {
	return catalog.VariantInput{
		Color:             r.Color,
		Size:              r.Size,
		Stock:             r.Stock,
		LowStockThreshold: r.LowStockThreshold,
		FeaturedImage:     r.FeaturedImage,
	}
}

type CreateProductRequest struct {
	Name              string                 `json:"name"`
	Description       string                 `json:"description"`
	Category          models.ProductCategory `json:"category"`
	Subcategory       string                 `json:"subcategory"`
	Brand             string                 `json:"brand"`
	BasePrice         decimal.Decimal        `json:"base_price"`
	HasDiscount       bool                   `json:"has_discount"`
	DiscountType      *models.DiscountType   `json:"discount_type"`
	DiscountValue     *decimal.Decimal       `json:"discount_value"`
	DiscountStartDate *time.Time             `json:"discount_start_date"`
	DiscountEndDate   *time.Time             `json:"discount_end_date"`
	Images            []string               `json:"images"`
	StyleTags         []string               `json:"style_tags"`
	CategoryTags      []string               `json:"category_tags"`
	Status            models.ProductStatus   `json:"status"`
	IsFeatured        bool                   `json:"is_featured"`
	IsNew             bool                   `json:"is_new"`
	Variants          []VariantRequest       `json:"variants"`
}

func (r CreateProductRequest) Validate() []string {
	var errs []string
	if r.Name == "" {
		errs = append(errs, "name is required")
	}
	if r.Category == "" {
		errs = append(errs, "category is required")
	}
	if r.BasePrice.IsNegative() {
		errs = append(errs, "base_price must be >= 0")
	}
	if len(r.Variants) == 0 {
		errs = append(errs, "at least one variant is required")
	}
	for _, v := range r.Variants {
		errs = append(errs, v.Validate()...)
	}
	return errs
}

func (r CreateProductRequest) ToInput() catalog.CreateProductInput {
	variants := make([]catalog.VariantInput, len(r.Variants))
	for i, v := range r.Variants {
		variants[i] = v.ToInput()
	}
	return catalog.CreateProductInput{
		Name:              r.Name,
		Description:       r.Description,
		Category:          r.Category,
		Subcategory:       r.Subcategory,
		Brand:             r.Brand,
		BasePrice:         r.BasePrice,
		HasDiscount:       r.HasDiscount,
		DiscountType:      r.DiscountType,
		DiscountValue:     r.DiscountValue,
		DiscountStartDate: r.DiscountStartDate,
		DiscountEndDate:   r.DiscountEndDate,
		Images:            r.Images,
		StyleTags:         r.StyleTags,
		CategoryTags:      r.CategoryTags,
		Status:            r.Status,
		IsFeatured:        r.IsFeatured,
		IsNew:             r.IsNew,
		Variants:          variants,
	}
}

type UpdateProductRequest struct {
	Name              *string                 `json:"name"`
	Description       *string                 `json:"description"`
	Category          *models.ProductCategory `json:"category"`
	Subcategory       *string                 `json:"subcategory"`
	Brand             *string                 `json:"brand"`
	BasePrice         *decimal.Decimal        `json:"base_price"`
	HasDiscount       *bool                   `json:"has_discount"`
	DiscountType      *models.DiscountType    `json:"discount_type"`
	DiscountValue     *decimal.Decimal        `json:"discount_value"`
	DiscountStartDate *time.Time              `json:"discount_start_date"`
	DiscountEndDate   *time.Time              `json:"discount_end_date"`
	Images            []string                `json:"images"`
	StyleTags         []string                `json:"style_tags"`
	CategoryTags      []string                `json:"category_tags"`
	Status            *models.ProductStatus   `json:"status"`
	IsFeatured        *bool                   `json:"is_featured"`
	IsNew             *bool                   `json:"is_new"`
}

func (r UpdateProductRequest) Validate() []string {
	var errs []string
	if r.Name != nil && *r.Name == "" {
		errs = append(errs, "name cannot be empty")
	}
	if r.BasePrice != nil && r.BasePrice.IsNegative() {
		errs = append(errs, "base_price must be >= 0")
	}
	return errs
}

func (r UpdateProductRequest) ToInput() catalog.UpdateProductInput {
	return catalog.UpdateProductInput{
		Name:              r.Name,
		Description:       r.Description,
		Category:          r.Category,
		Subcategory:       r.Subcategory,
		Brand:             r.Brand,
		BasePrice:         r.BasePrice,
		HasDiscount:       r.HasDiscount,
		DiscountType:      r.DiscountType,
		DiscountValue:     r.DiscountValue,
		DiscountStartDate: r.DiscountStartDate,
		DiscountEndDate:   r.DiscountEndDate,
		Images:            r.Images,
		StyleTags:         r.StyleTags,
		CategoryTags:      r.CategoryTags,
		Status:            r.Status,
		IsFeatured:        r.IsFeatured,
		IsNew:             r.IsNew,
	}
}

type UpdateVariantRequest struct {
	Color             *string `json:"color"`
	Size              *string `json:"size"`
	Stock             *int    `json:"stock"`
	LowStockThreshold *int    `json:"low_stock_threshold"`
	FeaturedImage     *string `json:"featured_image"`
	IsActive          *bool   `json:"is_active"`
}

func (r UpdateVariantRequest) Validate() []string {
	var errs []string
	if r.Stock != nil && *r.Stock < 0 {
		errs = append(errs, "stock must be >= 0")
	}
	return errs
}

func (r UpdateVariantRequest) ToInput() catalog.UpdateVariantInput {
	return catalog.UpdateVariantInput{
		Color:             r.Color,
		Size:              r.Size,
		Stock:             r.Stock,
		LowStockThreshold: r.LowStockThreshold,
		FeaturedImage:     r.FeaturedImage,
		IsActive:          r.IsActive,
	}
}

type AddToCartRequest struct {
	VariantID uuid.UUID `json:"variant_id"`
	Quantity  int       `json:"quantity"`
}

func (r AddToCartRequest) Validate() []string {
	var errs []string
	if r.VariantID == uuid.Nil {
		errs = append(errs, "variant_id is required")
	}
	if r.Quantity < 1 {
		errs = append(errs, "quantity must be >= 1")
	}
	return errs
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (r UpdateCartItemRequest) Validate() []string {
	if r.Quantity < 1 {
		return []string{"quantity must be >= 1"}
	}
	return nil
}

type CreateOrderRequest struct {
	BillingFirstName string               `json:"billing_first_name"`
	BillingLastName  string               `json:"billing_last_name"`
	BillingCompany   string               `json:"billing_company"`
	BillingCountry   string               `json:"billing_country"`
	BillingAddress   string               `json:"billing_address"`
	BillingCity      string               `json:"billing_city"`
	BillingProvince  string               `json:"billing_province"`
	BillingZipCode   string               `json:"billing_zip_code"`
	BillingPhone     string               `json:"billing_phone"`
	BillingEmail     string               `json:"billing_email"`
	PaymentMethod    models.PaymentMethod `json:"payment_method"`
	CustomerNotes    string               `json:"customer_notes"`
}

func (r CreateOrderRequest) Validate() []string {
	var errs []string
	if len(r.BillingFirstName) < 2 {
		errs = append(errs, "billing_first_name must be at least 2 characters")
	}
	if len(r.BillingLastName) < 2 {
		errs = append(errs, "billing_last_name must be at least 2 characters")
	}
	if r.BillingCountry == "" {
		errs = append(errs, "billing_country is required")
	}
	if len(r.BillingAddress) < 5 {
		errs = append(errs, "billing_address must be at least 5 characters")
	}
	if r.BillingCity == "" {
		errs = append(errs, "billing_city is required")
	}
	if r.BillingProvince == "" {
		errs = append(errs, "billing_province is required")
	}
	if r.BillingZipCode == "" {
		errs = append(errs, "billing_zip_code is required")
	}
	if r.BillingPhone == "" {
		errs = append(errs, "billing_phone is required")
	}
	if r.BillingEmail == "" {
		errs = append(errs, "billing_email is required")
	}
	if r.PaymentMethod == "" {
		errs = append(errs, "payment_method is required")
	}
	return errs
}

func (r CreateOrderRequest) ToInput() order.CreateOrderInput {
	return order.CreateOrderInput{
		BillingFirstName: r.BillingFirstName,
		BillingLastName:  r.BillingLastName,
		BillingCompany:   r.BillingCompany,
		BillingCountry:   r.BillingCountry,
		BillingAddress:   r.BillingAddress,
		BillingCity:      r.BillingCity,
		BillingProvince:  r.BillingProvince,
		BillingZipCode:   r.BillingZipCode,
		BillingPhone:     r.BillingPhone,
		BillingEmail:     r.BillingEmail,
		PaymentMethod:    r.PaymentMethod,
		CustomerNotes:    r.CustomerNotes,
	}
}

type UpdateOrderRequest struct {
	Status        *models.OrderStatus   `json:"status"`
	PaymentStatus *models.PaymentStatus `json:"payment_status"`
	AdminNotes    *string               `json:"admin_notes"`
}

func (r UpdateOrderRequest) Validate() []string {
	var errs []string
	if r.Status != nil {
		switch *r.Status {
		case models.OrderPending, models.OrderProcessing, models.OrderShipped, models.OrderDelivered, models.OrderCancelled:
		default:
			errs = append(errs, "unknown order status")
		}
	}
	if r.PaymentStatus != nil {
		switch *r.PaymentStatus {
		case models.PaymentPending, models.PaymentCompleted, models.PaymentFailed, models.PaymentRefunded:
		default:
			errs = append(errs, "unknown payment status")
		}
	}
	return errs
}

func (r UpdateOrderRequest) ToInput() order.UpdateOrderInput {
	return order.UpdateOrderInput{
		Status:        r.Status,
		PaymentStatus: r.PaymentStatus,
		AdminNotes:    r.AdminNotes,
	}
}
