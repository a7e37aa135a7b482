package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

type ProductCategory string

const (
	CategoryClothing    ProductCategory = "CLOTHING"
	CategoryBags        ProductCategory = "BAGS"
	CategoryAccessories ProductCategory = "ACCESSORIES"
	CategoryShoes       ProductCategory = "SHOES"
)

type ProductStatus string

const (
	ProductDraft      ProductStatus = "DRAFT"
	ProductActive     ProductStatus = "ACTIVE"
	ProductArchived   ProductStatus = "ARCHIVED"
	ProductOutOfStock ProductStatus = "OUT_OF_STOCK"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

type PaymentMethod string

const (
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMercadoPago  PaymentMethod = "MERCADO_PAGO"
)

type User struct {
	ID           uuid.UUID `gorm:"primaryKey"            json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"  json:"email"`
	PasswordHash string    `gorm:"not null"              json:"-"`
	Name         string    `gorm:"not null"              json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Role         UserRole  `gorm:"not null;default:USER" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (User) TableName() string { return "users" }

type Product struct {
	ID          uuid.UUID       `gorm:"primaryKey"            json:"id"`
	Name        string          `gorm:"not null"              json:"name"`
	Slug        string          `gorm:"uniqueIndex;not null"  json:"slug"`
	Description string          `gorm:"type:text"             json:"description"`
	Category    ProductCategory `gorm:"not null"              json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	Brand       string          `json:"brand,omitempty"`

	BasePrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"base_price"`

	HasDiscount       bool             `gorm:"default:false"      json:"has_discount"`
	DiscountType      *DiscountType    `json:"discount_type,omitempty"`
	DiscountValue     *decimal.Decimal `gorm:"type:decimal(10,2)" json:"discount_value,omitempty"`
	DiscountStartDate *time.Time       `json:"discount_start_date,omitempty"`
	DiscountEndDate   *time.Time       `json:"discount_end_date,omitempty"`

	Images       StringList `gorm:"type:text" json:"images"`
	StyleTags    StringList `gorm:"type:text" json:"style_tags"`
	CategoryTags StringList `gorm:"type:text" json:"category_tags"`

	Status     ProductStatus `gorm:"not null;default:DRAFT" json:"status"`
	IsFeatured bool          `gorm:"default:false"          json:"is_featured"`
	IsNew      bool          `gorm:"default:false"          json:"is_new"`

	TotalSold int `gorm:"default:0" json:"total_sold"`
	ViewCount int `gorm:"default:0" json:"view_count"`

	Variants []ProductVariant `gorm:"constraint:OnDelete:CASCADE" json:"variants,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Product) TableName() string { return "products" }

type ProductVariant struct {
	ID        uuid.UUID `gorm:"primaryKey"           json:"id"`
	ProductID uuid.UUID `gorm:"index;not null"       json:"product_id"`
	SKU       string    `gorm:"uniqueIndex;not null" json:"sku"`
	Color     string    `json:"color,omitempty"`
	Size      string    `json:"size,omitempty"`

	Stock             int `gorm:"default:0;check:stock >= 0" json:"stock"`
	LowStockThreshold int `gorm:"default:5"                  json:"low_stock_threshold"`

	FeaturedImage string `json:"featured_image,omitempty"`

	IsActive     bool `gorm:"default:true"  json:"is_active"`
	IsOutOfStock bool `gorm:"default:false" json:"is_out_of_stock"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (v *ProductVariant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (ProductVariant) TableName() string { return "product_variants" }

type Cart struct {
	ID        uuid.UUID  `gorm:"primaryKey"                  json:"id"`
	UserID    uuid.UUID  `gorm:"uniqueIndex;not null"        json:"user_id"`
	Items     []CartItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (Cart) TableName() string { return "carts" }

type CartItem struct {
	ID        uuid.UUID `gorm:"primaryKey"                            json:"id"`
	CartID    uuid.UUID `gorm:"uniqueIndex:idx_cart_variant;not null" json:"cart_id"`
	VariantID uuid.UUID `gorm:"uniqueIndex:idx_cart_variant;not null" json:"variant_id"`
	Quantity  int       `gorm:"default:1;check:quantity > 0"          json:"quantity"`

	// Price of the product when the item was added, kept to detect later changes.
	PriceAtAdd decimal.Decimal `gorm:"type:decimal(10,2)" json:"price_at_add"`

	Variant *ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (CartItem) TableName() string { return "cart_items" }

type Order struct {
	ID          uuid.UUID `gorm:"primaryKey"           json:"id"`
	UserID      uuid.UUID `gorm:"index;not null"       json:"user_id"`
	OrderNumber string    `gorm:"uniqueIndex;not null" json:"order_number"`

	BillingFirstName string `gorm:"not null" json:"billing_first_name"`
	BillingLastName  string `gorm:"not null" json:"billing_last_name"`
	BillingCompany   string `json:"billing_company,omitempty"`
	BillingCountry   string `gorm:"not null" json:"billing_country"`
	BillingAddress   string `gorm:"not null" json:"billing_address"`
	BillingCity      string `gorm:"not null" json:"billing_city"`
	BillingProvince  string `gorm:"not null" json:"billing_province"`
	BillingZipCode   string `gorm:"not null" json:"billing_zip_code"`
	BillingPhone     string `gorm:"not null" json:"billing_phone"`
	BillingEmail     string `gorm:"not null" json:"billing_email"`

	Subtotal decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Discount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount"`
	Total    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`

	PaymentMethod PaymentMethod `gorm:"not null"                 json:"payment_method"`
	PaymentStatus PaymentStatus `gorm:"not null;default:PENDING" json:"payment_status"`
	Status        OrderStatus   `gorm:"not null;default:PENDING" json:"status"`

	CustomerNotes string `gorm:"type:text" json:"customer_notes,omitempty"`
	AdminNotes    string `gorm:"type:text" json:"admin_notes,omitempty"`

	Items []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	User  *User       `gorm:"foreignKey:UserID"           json:"user,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (Order) TableName() string { return "orders" }

// OrderItem is a snapshot of the purchased line. Product data and prices are
// frozen at checkout and never re-derived from the catalog.
type OrderItem struct {
	ID        uuid.UUID `gorm:"primaryKey"     json:"id"`
	OrderID   uuid.UUID `gorm:"index;not null" json:"order_id"`
	VariantID uuid.UUID `gorm:"not null"       json:"variant_id"`

	ProductName  string `gorm:"not null" json:"product_name"`
	VariantSKU   string `gorm:"not null" json:"variant_sku"`
	VariantColor string `json:"variant_color,omitempty"`
	VariantSize  string `json:"variant_size,omitempty"`
	ProductImage string `json:"product_image,omitempty"`

	Quantity       int             `gorm:"not null"                    json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount_amount"`
	FinalPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"final_price"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`

	CreatedAt time.Time `json:"created_at"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (OrderItem) TableName() string { return "order_items" }

// OrderSequence backs order-number allocation, one row per calendar year.
type OrderSequence struct {
	Year    int `gorm:"primaryKey" json:"year"`
	Counter int `gorm:"not null"   json:"counter"`
}

func (OrderSequence) TableName() string { return "order_sequences" }
