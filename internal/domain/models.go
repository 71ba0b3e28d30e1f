package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Slug        string  `db:"slug" json:"slug"`
	Description *string `db:"description" json:"description"`
	ImageURL    *string `db:"image_url" json:"image_url"`
	IsActive    bool    `db:"is_active" json:"is_active"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
	UpdatedAt   string  `db:"updated_at" json:"updated_at"`
}

type Brand struct {
	ID        string  `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Slug      string  `db:"slug" json:"slug"`
	LogoURL   *string `db:"logo_url" json:"logo_url"`
	IsActive  bool    `db:"is_active" json:"is_active"`
	CreatedAt string  `db:"created_at" json:"created_at"`
	UpdatedAt string  `db:"updated_at" json:"updated_at"`
}

type Product struct {
	ID               string           `db:"id" json:"id"`
	Name             string           `db:"name" json:"name"`
	Slug             string           `db:"slug" json:"slug"`
	Description      string           `db:"description" json:"description"`
	ShortDescription string           `db:"short_description" json:"short_description"`
	Price            decimal.Decimal  `db:"price" json:"price"`
	OriginalPrice    *decimal.Decimal `db:"original_price" json:"original_price"`
	StockQuantity    int              `db:"stock_quantity" json:"stock_quantity"`
	SKU              string           `db:"sku" json:"sku"`
	Images           StringList       `db:"images" json:"images"`
	Specifications   JSONMap          `db:"specifications" json:"specifications"`
	WarrantyInfo     *string          `db:"warranty_info" json:"warranty_info"`
	MetaTitle        *string          `db:"meta_title" json:"meta_title"`
	MetaDescription  *string          `db:"meta_description" json:"meta_description"`
	IsActive         bool             `db:"is_active" json:"is_active"`
	IsFeatured       bool             `db:"is_featured" json:"is_featured"`
	CategoryID       string           `db:"category_id" json:"category_id"`
	BrandID          string           `db:"brand_id" json:"brand_id"`
	CreatedAt        string           `db:"created_at" json:"created_at"`
	UpdatedAt        string           `db:"updated_at" json:"updated_at"`
}

// Ref is the embedded summary of a related row.
type Ref struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
}

// ProductWithRefs is a product joined with its category and brand.
type ProductWithRefs struct {
	Product
	Category Ref `db:"categories" json:"categories"`
	Brand    Ref `db:"brands" json:"brands"`
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty"`
}

type Review struct {
	ID         string  `db:"id" json:"id"`
	ProductID  string  `db:"product_id" json:"product_id"`
	UserID     *string `db:"user_id" json:"user_id"`
	Name       string  `db:"name" json:"name"`
	Email      string  `db:"email" json:"-"`
	Rating     int     `db:"rating" json:"rating"`
	Comment    string  `db:"comment" json:"comment"`
	IsApproved bool    `db:"is_approved" json:"is_approved"`
	CreatedAt  string  `db:"created_at" json:"created_at"`
	UpdatedAt  string  `db:"updated_at" json:"updated_at"`
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

func (a Address) Value() (driver.Value, error) { return jsonValue(a) }
func (a *Address) Scan(src any) error          { return jsonScan(src, a) }

type Order struct {
	ID              string          `db:"id" json:"id"`
	OrderNumber     string          `db:"order_number" json:"order_number"`
	CustomerName    string          `db:"customer_name" json:"customer_name"`
	CustomerEmail   string          `db:"customer_email" json:"customer_email"`
	CustomerPhone   *string         `db:"customer_phone" json:"customer_phone"`
	ShippingAddress Address         `db:"shipping_address" json:"shipping_address"`
	BillingAddress  Address         `db:"billing_address" json:"billing_address"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status          string          `db:"status" json:"status"`
	PaymentStatus   string          `db:"payment_status" json:"payment_status"`
	PaymentMethod   *string         `db:"payment_method" json:"payment_method"`
	Notes           *string         `db:"notes" json:"notes"`
	CreatedAt       string          `db:"created_at" json:"created_at"`
	UpdatedAt       string          `db:"updated_at" json:"updated_at"`
	Items           []OrderItem     `db:"-" json:"items,omitempty"`
}

type OrderItem struct {
	ID         string          `db:"id" json:"id"`
	OrderID    string          `db:"order_id" json:"order_id"`
	ProductID  string          `db:"product_id" json:"product_id"`
	Quantity   int             `db:"quantity" json:"quantity"`
	UnitPrice  decimal.Decimal `db:"unit_price" json:"unit_price"`
	TotalPrice decimal.Decimal `db:"total_price" json:"total_price"`
	CreatedAt  string          `db:"created_at" json:"created_at"`
}

// StringList is a JSON array column.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		s = StringList{}
	}
	return jsonValue([]string(s))
}

func (s *StringList) Scan(src any) error { return jsonScan(src, (*[]string)(s)) }

// JSONMap is a JSON object column.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		m = JSONMap{}
	}
	return jsonValue(map[string]any(m))
}

func (m *JSONMap) Scan(src any) error { return jsonScan(src, (*map[string]any)(m)) }

func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	}
	return fmt.Errorf("unsupported JSON column type %T", src)
}

func init() {
	// Prices go out as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}
