package validate

import (
	"strings"

	"github.com/shopspring/decimal"
)

type ProductInput struct {
	Name             string           `json:"name" validate:"min=1,max=255"`
	Slug             string           `json:"slug" validate:"min=1,max=255,slug"`
	Description      string           `json:"description" validate:"min=10,max=5000"`
	ShortDescription string           `json:"short_description" validate:"min=10,max=500"`
	Price            *decimal.Decimal `json:"price" validate:"required,positive,maxmoney,cents"`
	OriginalPrice    *decimal.Decimal `json:"original_price" validate:"omitempty,positive,maxmoney,cents"`
	StockQuantity    *int             `json:"stock_quantity" validate:"required,min=0,max=999999"`
	SKU              string           `json:"sku" validate:"min=1,max=100,sku"`
	Images           []string         `json:"images" validate:"min=1,max=10,dive,url"`
	Specifications   map[string]any   `json:"specifications"`
	WarrantyInfo     *string          `json:"warranty_info" validate:"omitempty,max=1000"`
	MetaTitle        *string          `json:"meta_title" validate:"omitempty,max=255"`
	MetaDescription  *string          `json:"meta_description" validate:"omitempty,max=500"`
	IsActive         *bool            `json:"is_active"`
	IsFeatured       *bool            `json:"is_featured"`
	CategoryID       string           `json:"category_id" validate:"uuid"`
	BrandID          string           `json:"brand_id" validate:"uuid"`
}

func (p *ProductInput) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Slug = strings.TrimSpace(p.Slug)
	p.Description = strings.TrimSpace(p.Description)
	p.ShortDescription = strings.TrimSpace(p.ShortDescription)
	p.SKU = strings.TrimSpace(p.SKU)
	p.WarrantyInfo = trimPtr(p.WarrantyInfo)
	p.MetaTitle = trimPtr(p.MetaTitle)
	p.MetaDescription = trimPtr(p.MetaDescription)
	if p.Specifications == nil {
		p.Specifications = map[string]any{}
	}
	p.IsActive = boolDefault(p.IsActive, true)
	p.IsFeatured = boolDefault(p.IsFeatured, false)
}

// Sanitized returns a copy with free text passed through HTML and the
// identifiers normalized to their slug and SKU forms.
func (p ProductInput) Sanitized() ProductInput {
	p.Name = HTML(p.Name)
	p.Slug = Slug(p.Slug)
	p.Description = HTML(p.Description)
	p.ShortDescription = HTML(p.ShortDescription)
	p.SKU = SKU(p.SKU)
	p.WarrantyInfo = htmlPtr(p.WarrantyInfo)
	p.MetaTitle = htmlPtr(p.MetaTitle)
	p.MetaDescription = htmlPtr(p.MetaDescription)
	imgs := make([]string, len(p.Images))
	for i, u := range p.Images {
		imgs[i] = HTML(u)
	}
	p.Images = imgs
	return p
}

var productSchema = schema{
	labels: map[string]string{
		"name":        "Product name",
		"images.*":    "Image URL",
		"category_id": "Category ID",
		"brand_id":    "Brand ID",
	},
	messages: map[string]string{
		"images|min":         "At least one image is required",
		"images|max":         "Maximum 10 images allowed",
		"stock_quantity|max": "Stock quantity cannot exceed 999,999",
	},
}

func ValidateProduct(raw []byte) Result[ProductInput] {
	return run[ProductInput](raw, productSchema)
}

type CategoryInput struct {
	Name        string  `json:"name" validate:"min=1,max=255"`
	Slug        string  `json:"slug" validate:"min=1,max=255,slug"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	IsActive    *bool   `json:"is_active"`
}

func (c *CategoryInput) normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Slug = strings.TrimSpace(c.Slug)
	c.Description = trimPtr(c.Description)
	c.IsActive = boolDefault(c.IsActive, true)
}

func (c CategoryInput) Sanitized() CategoryInput {
	c.Name = HTML(c.Name)
	c.Slug = Slug(c.Slug)
	c.Description = htmlPtr(c.Description)
	c.ImageURL = htmlPtr(c.ImageURL)
	return c
}

var categorySchema = schema{labels: map[string]string{"name": "Category name", "image_url": "Image URL"}}

func ValidateCategory(raw []byte) Result[CategoryInput] {
	return run[CategoryInput](raw, categorySchema)
}

type BrandInput struct {
	Name     string  `json:"name" validate:"min=1,max=255"`
	Slug     string  `json:"slug" validate:"min=1,max=255,slug"`
	LogoURL  *string `json:"logo_url" validate:"omitempty,url"`
	IsActive *bool   `json:"is_active"`
}

func (b *BrandInput) normalize() {
	b.Name = strings.TrimSpace(b.Name)
	b.Slug = strings.TrimSpace(b.Slug)
	b.IsActive = boolDefault(b.IsActive, true)
}

func (b BrandInput) Sanitized() BrandInput {
	b.Name = HTML(b.Name)
	b.Slug = Slug(b.Slug)
	b.LogoURL = htmlPtr(b.LogoURL)
	return b
}

var brandSchema = schema{labels: map[string]string{"name": "Brand name", "logo_url": "Logo URL"}}

func ValidateBrand(raw []byte) Result[BrandInput] {
	return run[BrandInput](raw, brandSchema)
}

type Address struct {
	Street  string `json:"street" validate:"min=1,max=255"`
	City    string `json:"city" validate:"min=1,max=100"`
	State   string `json:"state" validate:"min=1,max=100"`
	Zip     string `json:"zip" validate:"min=1,max=20"`
	Country string `json:"country" validate:"min=1,max=100"`
}

func (a *Address) normalize() {
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.Zip = strings.TrimSpace(a.Zip)
	a.Country = strings.TrimSpace(a.Country)
}

func (a Address) sanitized() Address {
	return Address{
		Street:  HTML(a.Street),
		City:    HTML(a.City),
		State:   HTML(a.State),
		Zip:     HTML(a.Zip),
		Country: HTML(a.Country),
	}
}

type OrderInput struct {
	CustomerName    string           `json:"customer_name" validate:"min=1,max=255"`
	CustomerEmail   string           `json:"customer_email" validate:"email,max=255"`
	CustomerPhone   *string          `json:"customer_phone" validate:"omitempty,max=50,phone"`
	ShippingAddress Address          `json:"shipping_address"`
	BillingAddress  Address          `json:"billing_address"`
	TotalAmount     *decimal.Decimal `json:"total_amount" validate:"required,positive,maxmoney,cents"`
	Status          string           `json:"status" validate:"oneof=pending processing shipped delivered cancelled"`
	PaymentStatus   string           `json:"payment_status" validate:"oneof=pending paid failed refunded"`
	PaymentMethod   *string          `json:"payment_method" validate:"omitempty,max=100"`
	Notes           *string          `json:"notes" validate:"omitempty,max=1000"`
}

func (o *OrderInput) normalize() {
	o.CustomerName = strings.TrimSpace(o.CustomerName)
	o.CustomerEmail = strings.TrimSpace(o.CustomerEmail)
	o.CustomerPhone = trimPtr(o.CustomerPhone)
	o.ShippingAddress.normalize()
	o.BillingAddress.normalize()
	o.Notes = trimPtr(o.Notes)
	if o.Status == "" {
		o.Status = "pending"
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = "pending"
	}
}

func (o OrderInput) Sanitized() OrderInput {
	o.CustomerName = HTML(o.CustomerName)
	o.ShippingAddress = o.ShippingAddress.sanitized()
	o.BillingAddress = o.BillingAddress.sanitized()
	o.PaymentMethod = htmlPtr(o.PaymentMethod)
	o.Notes = htmlPtr(o.Notes)
	return o
}

var orderSchema = schema{}

func ValidateOrder(raw []byte) Result[OrderInput] {
	return run[OrderInput](raw, orderSchema)
}

type OrderItemInput struct {
	OrderID    string           `json:"order_id" validate:"uuid"`
	ProductID  string           `json:"product_id" validate:"uuid"`
	Quantity   *int             `json:"quantity" validate:"required,min=1,max=999"`
	UnitPrice  *decimal.Decimal `json:"unit_price" validate:"required,positive,maxmoney,cents"`
	TotalPrice *decimal.Decimal `json:"total_price" validate:"required,positive,maxmoney,cents"`
}

func (*OrderItemInput) normalize() {}

var orderItemSchema = schema{
	labels:   map[string]string{"order_id": "Order ID", "product_id": "Product ID"},
	messages: map[string]string{"quantity|min": "Quantity must be positive"},
}

func ValidateOrderItem(raw []byte) Result[OrderItemInput] {
	return run[OrderItemInput](raw, orderItemSchema)
}

// CheckOrderItem validates an item assembled server-side.
func CheckOrderItem(in OrderItemInput) Result[OrderItemInput] {
	return check[OrderItemInput](in, orderItemSchema)
}

// CheckoutLine is one cart line submitted at checkout. Prices are resolved
// server-side, so only the product and quantity are accepted.
type CheckoutLine struct {
	ProductID string `json:"product_id" validate:"uuid"`
	Quantity  *int   `json:"quantity" validate:"required,min=1,max=999"`
}

type CheckoutInput struct {
	OrderInput
	Items []CheckoutLine `json:"items" validate:"min=1,max=100,dive"`
}

func (c *CheckoutInput) normalize() { c.OrderInput.normalize() }

var checkoutSchema = schema{
	labels: map[string]string{"product_id": "Product ID"},
	messages: map[string]string{
		"items|min":            "At least one item is required",
		"items.*.quantity|min": "Quantity must be positive",
	},
}

func ValidateCheckout(raw []byte) Result[CheckoutInput] {
	return run[CheckoutInput](raw, checkoutSchema)
}

type ReviewInput struct {
	ProductID  string `json:"product_id" validate:"uuid"`
	Name       string `json:"name" validate:"min=1,max=255"`
	Email      string `json:"email" validate:"email,max=255"`
	Rating     *int   `json:"rating" validate:"required,min=1,max=5"`
	Comment    string `json:"comment" validate:"min=10,max=2000"`
	IsApproved *bool  `json:"is_approved"`
}

func (r *ReviewInput) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Comment = strings.TrimSpace(r.Comment)
	r.IsApproved = boolDefault(r.IsApproved, false)
}

func (r ReviewInput) Sanitized() ReviewInput {
	r.Name = HTML(r.Name)
	r.Comment = HTML(r.Comment)
	return r
}

var reviewSchema = schema{labels: map[string]string{"product_id": "Product ID"}}

func ValidateReview(raw []byte) Result[ReviewInput] {
	return run[ReviewInput](raw, reviewSchema)
}

type AdminLoginInput struct {
	Email    string `json:"email" validate:"email,max=255"`
	Password string `json:"password" validate:"min=8,max=128"`
}

func (a *AdminLoginInput) normalize() { a.Email = strings.TrimSpace(a.Email) }

var adminLoginSchema = schema{}

func ValidateAdminLogin(raw []byte) Result[AdminLoginInput] {
	return run[AdminLoginInput](raw, adminLoginSchema)
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func boolDefault(b *bool, def bool) *bool {
	if b != nil {
		return b
	}
	return &def
}

type CartItemInput struct {
	ProductID string `json:"product_id" validate:"uuid"`
}

func (c *CartItemInput) normalize() { c.ProductID = strings.ToLower(strings.TrimSpace(c.ProductID)) }

var cartItemSchema = schema{labels: map[string]string{"product_id": "Product ID"}}

func ValidateCartItem(raw []byte) Result[CartItemInput] {
	return run[CartItemInput](raw, cartItemSchema)
}

// CartQuantityInput sets a line's quantity; zero removes the line.
type CartQuantityInput struct {
	Quantity *int `json:"quantity" validate:"required,min=0,max=999"`
}

func (*CartQuantityInput) normalize() {}

var cartQuantitySchema = schema{messages: map[string]string{"quantity|min": "Quantity cannot be negative"}}

func ValidateCartQuantity(raw []byte) Result[CartQuantityInput] {
	return run[CartQuantityInput](raw, cartQuantitySchema)
}

// CartPanelInput toggles the cart drawer.
type CartPanelInput struct {
	IsOpen *bool `json:"is_open" validate:"required"`
}

func (*CartPanelInput) normalize() {}

func ValidateCartPanel(raw []byte) Result[CartPanelInput] {
	return run[CartPanelInput](raw, schema{})
}
