package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Fixed ids keep the demo catalog stable across restarts and databases.
const (
	SeedCategoryPhones  = "11111111-1111-4111-8111-111111111101"
	SeedCategoryLaptops = "11111111-1111-4111-8111-111111111102"
	SeedCategoryAudio   = "11111111-1111-4111-8111-111111111103"

	SeedBrandVolt   = "22222222-2222-4222-8222-222222222201"
	SeedBrandAurora = "22222222-2222-4222-8222-222222222202"

	SeedProductPhone   = "33333333-3333-4333-8333-333333333301"
	SeedProductLaptop  = "33333333-3333-4333-8333-333333333302"
	SeedProductBuds    = "33333333-3333-4333-8333-333333333303"
	SeedProductSpeaker = "33333333-3333-4333-8333-333333333304"
)

type seedRow map[string]any

var seedCategories = []seedRow{
	{"id": SeedCategoryPhones, "name": "Smartphones", "slug": "smartphones", "description": "Unlocked phones and accessories"},
	{"id": SeedCategoryLaptops, "name": "Laptops", "slug": "laptops", "description": "Ultrabooks and workstations"},
	{"id": SeedCategoryAudio, "name": "Audio", "slug": "audio", "description": "Headphones, earbuds and speakers"},
}

var seedBrands = []seedRow{
	{"id": SeedBrandVolt, "name": "Volt", "slug": "volt", "logo_url": "https://cdn.voltcart.test/brands/volt.svg"},
	{"id": SeedBrandAurora, "name": "Aurora", "slug": "aurora", "logo_url": "https://cdn.voltcart.test/brands/aurora.svg"},
}

var seedProducts = []seedRow{
	{
		"id": SeedProductPhone, "name": "Volt Phone X", "slug": "volt-phone-x",
		"description":       "6.5 inch OLED display, 5000 mAh battery and a triple camera array.",
		"short_description": "Flagship phone with all-day battery.",
		"price":             "699.00", "original_price": "799.00", "stock_quantity": 25, "sku": "VOLT-PX-128",
		"images":         `["https://cdn.voltcart.test/products/volt-phone-x/main.jpg"]`,
		"specifications": `{"storage":"128GB","display":"6.5in OLED"}`,
		"is_featured":    true, "category_id": SeedCategoryPhones, "brand_id": SeedBrandVolt,
	},
	{
		"id": SeedProductLaptop, "name": "Aurora Book 14", "slug": "aurora-book-14",
		"description":       "Fourteen inch ultrabook with a fanless design and 18 hour battery.",
		"short_description": "Silent, light, fast.",
		"price":             "1249.99", "original_price": nil, "stock_quantity": 4, "sku": "AUR-BK14-16",
		"images":         `["https://cdn.voltcart.test/products/aurora-book-14/main.jpg"]`,
		"specifications": `{"ram":"16GB","weight":"1.1kg"}`,
		"is_featured":    true, "category_id": SeedCategoryLaptops, "brand_id": SeedBrandAurora,
	},
	{
		"id": SeedProductBuds, "name": "Volt Buds Pro", "slug": "volt-buds-pro",
		"description":       "Wireless earbuds with active noise cancelling and spatial audio.",
		"short_description": "Noise cancelling earbuds.",
		"price":             "149.99", "original_price": "179.99", "stock_quantity": 60, "sku": "VOLT-BUDS-PRO",
		"images":         `["https://cdn.voltcart.test/products/volt-buds-pro/main.jpg"]`,
		"specifications": `{"battery":"8h","anc":true}`,
		"is_featured":    false, "category_id": SeedCategoryAudio, "brand_id": SeedBrandVolt,
	},
	{
		"id": SeedProductSpeaker, "name": "Aurora Boom Mini", "slug": "aurora-boom-mini",
		"description":       "Pocket sized waterproof speaker with a surprisingly deep bass.",
		"short_description": "Waterproof pocket speaker.",
		"price":             "59.90", "original_price": nil, "stock_quantity": 0, "sku": "AUR-BOOM-MINI",
		"images":         `["https://cdn.voltcart.test/products/aurora-boom-mini/main.jpg"]`,
		"specifications": `{"ip":"IP67"}`,
		"is_featured":    false, "category_id": SeedCategoryAudio, "brand_id": SeedBrandAurora,
	},
}

// seedCatalog inserts the demo categories, brands and products unless they
// already exist.
func seedCatalog(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	insert := func(query string, rows []seedRow) error {
		for _, r := range rows {
			arg := map[string]any{"ts": ts}
			for k, v := range r {
				arg[k] = v
			}
			if _, err := tx.NamedExecContext(ctx, query, arg); err != nil {
				return err
			}
		}
		return nil
	}

	if err := insert(`
		INSERT INTO categories(id, name, slug, description, is_active, created_at, updated_at)
		VALUES(:id, :name, :slug, :description, TRUE, :ts, :ts)
		ON CONFLICT(id) DO NOTHING`, seedCategories); err != nil {
		return err
	}
	if err := insert(`
		INSERT INTO brands(id, name, slug, logo_url, is_active, created_at, updated_at)
		VALUES(:id, :name, :slug, :logo_url, TRUE, :ts, :ts)
		ON CONFLICT(id) DO NOTHING`, seedBrands); err != nil {
		return err
	}
	if err := insert(`
		INSERT INTO products(
			id, name, slug, description, short_description, price, original_price, stock_quantity,
			sku, images, specifications, is_active, is_featured, category_id, brand_id, created_at, updated_at
		)
		VALUES(
			:id, :name, :slug, :description, :short_description, :price, :original_price, :stock_quantity,
			:sku, :images, :specifications, TRUE, :is_featured, :category_id, :brand_id, :ts, :ts
		)
		ON CONFLICT(id) DO NOTHING`, seedProducts); err != nil {
		return err
	}
	return tx.Commit()
}
