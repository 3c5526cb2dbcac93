package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type categorySeed struct {
	Slug, Name, Parent string
}

type productSeed struct {
	Slug         string
	SKU          string
	Name         string
	Description  string
	Price        float64
	SalePrice    *float64
	Stock        int
	Unit         string
	Category     string
	Manufacturer string
	Prescription bool
	Featured     bool
	ImageURL     string
}

func price(v float64) *float64 { return &v }

// Apply inserts demo data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	categories := []categorySeed{
		{Slug: "medicines", Name: "Medicines"},
		{Slug: "pain-relief", Name: "Pain Relief", Parent: "medicines"},
		{Slug: "cold-and-flu", Name: "Cold & Flu", Parent: "medicines"},
		{Slug: "vitamins", Name: "Vitamins & Supplements"},
		{Slug: "personal-care", Name: "Personal Care"},
		{Slug: "medical-devices", Name: "Medical Devices"},
	}
	for _, c := range categories {
		if err := upsertCategory(ctx, pool, c); err != nil {
			return fmt.Errorf("upsert category %s: %w", c.Slug, err)
		}
	}

	manufacturers := []struct{ Slug, Name, Country string }{
		{Slug: "stada", Name: "STADA", Country: "Germany"},
		{Slug: "sanofi", Name: "Sanofi", Country: "France"},
		{Slug: "dhg-pharma", Name: "DHG Pharma", Country: "Vietnam"},
	}
	for _, m := range manufacturers {
		const q = `
INSERT INTO manufacturers (slug, name, country)
VALUES ($1, $2, $3)
ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, country = EXCLUDED.country
`
		if _, err := pool.Exec(ctx, q, m.Slug, m.Name, m.Country); err != nil {
			return fmt.Errorf("upsert manufacturer %s: %w", m.Slug, err)
		}
	}

	products := []productSeed{
		{
			Slug: "paracetamol-500mg", SKU: "MED-PARA-500", Name: "Paracetamol 500mg",
			Description: "Pain and fever relief, box of 100 tablets",
			Price:       45000, SalePrice: price(39000), Stock: 500, Unit: "box",
			Category: "pain-relief", Manufacturer: "dhg-pharma", Featured: true,
			ImageURL: "https://cdn.example.com/products/paracetamol-500.jpg",
		},
		{
			Slug: "ibuprofen-400mg", SKU: "MED-IBU-400", Name: "Ibuprofen 400mg",
			Description: "Anti-inflammatory, box of 30 tablets",
			Price:       62000, Stock: 300, Unit: "box",
			Category: "pain-relief", Manufacturer: "stada",
			ImageURL: "https://cdn.example.com/products/ibuprofen-400.jpg",
		},
		{
			Slug: "amoxicillin-500mg", SKU: "MED-AMOX-500", Name: "Amoxicillin 500mg",
			Description: "Antibiotic, prescription required",
			Price:       85000, Stock: 150, Unit: "box",
			Category: "medicines", Manufacturer: "sanofi", Prescription: true,
			ImageURL: "https://cdn.example.com/products/amoxicillin-500.jpg",
		},
		{
			Slug: "vitamin-c-1000mg", SKU: "VIT-C-1000", Name: "Vitamin C 1000mg",
			Description: "Effervescent tablets, tube of 20",
			Price:       95000, SalePrice: price(79000), Stock: 400, Unit: "tube",
			Category: "vitamins", Manufacturer: "stada", Featured: true,
			ImageURL: "https://cdn.example.com/products/vitamin-c-1000.jpg",
		},
		{
			Slug: "digital-thermometer", SKU: "DEV-THERM-01", Name: "Digital Thermometer",
			Description: "Fast-read digital thermometer",
			Price:       120000, Stock: 80, Unit: "piece",
			Category: "medical-devices", Manufacturer: "stada",
			ImageURL: "https://cdn.example.com/products/thermometer.jpg",
		},
	}
	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Slug, err)
		}
	}

	if err := upsertCustomer(ctx, pool, "admin@pharmacy.local", "admin123!", "Store Admin", true); err != nil {
		return fmt.Errorf("upsert admin: %w", err)
	}
	if err := upsertCustomer(ctx, pool, "customer@example.com", "customer1", "Demo Customer", false); err != nil {
		return fmt.Errorf("upsert customer: %w", err)
	}

	if err := seedVoucher(ctx, pool); err != nil {
		return fmt.Errorf("seed voucher: %w", err)
	}
	if err := seedFlashSale(ctx, pool); err != nil {
		return fmt.Errorf("seed flash sale: %w", err)
	}
	if err := seedBanner(ctx, pool); err != nil {
		return fmt.Errorf("seed banner: %w", err)
	}
	return nil
}

func upsertCategory(ctx context.Context, pool *pgxpool.Pool, c categorySeed) error {
	const q = `
INSERT INTO categories (slug, name, parent_id)
VALUES ($1, $2, (SELECT id FROM categories WHERE slug = NULLIF($3, '')))
ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, parent_id = EXCLUDED.parent_id
`
	_, err := pool.Exec(ctx, q, c.Slug, c.Name, c.Parent)
	return err
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (slug, sku, name, description, price, sale_price, stock_quantity, unit,
                      category_id, manufacturer_id, requires_prescription, is_featured)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
        (SELECT id FROM categories WHERE slug = $9),
        (SELECT id FROM manufacturers WHERE slug = $10), $11, $12)
ON CONFLICT (slug) DO UPDATE SET
    name = EXCLUDED.name, description = EXCLUDED.description, price = EXCLUDED.price,
    sale_price = EXCLUDED.sale_price, stock_quantity = EXCLUDED.stock_quantity
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, p.Slug, p.SKU, p.Name, p.Description, p.Price, p.SalePrice,
		p.Stock, p.Unit, p.Category, p.Manufacturer, p.Prescription, p.Featured).Scan(&id); err != nil {
		return err
	}
	if p.ImageURL == "" {
		return nil
	}
	const imgQ = `
INSERT INTO product_images (product_id, url, is_primary)
SELECT $1, $2, true
WHERE NOT EXISTS (SELECT 1 FROM product_images WHERE product_id = $1)
`
	_, err := pool.Exec(ctx, imgQ, id, p.ImageURL)
	return err
}

func upsertCustomer(ctx context.Context, pool *pgxpool.Pool, email, password, name string, staff bool) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO customers (email, password_hash, full_name, is_staff)
VALUES ($1, $2, $3, $4)
ON CONFLICT (email) DO UPDATE SET full_name = EXCLUDED.full_name, is_staff = EXCLUDED.is_staff
`
	_, err = pool.Exec(ctx, q, email, string(hashed), name, staff)
	return err
}

func seedVoucher(ctx context.Context, pool *pgxpool.Pool) error {
	const q = `
INSERT INTO vouchers (code, description, discount_type, discount_value, min_order_total, max_discount, usage_limit)
VALUES ('WELCOME10', '10% off your first order', 'PERCENT', 10, 100000, 50000, 1000)
ON CONFLICT (code) DO NOTHING
`
	_, err := pool.Exec(ctx, q)
	return err
}

func seedFlashSale(ctx context.Context, pool *pgxpool.Pool) error {
	const sessionQ = `
INSERT INTO flash_sale_sessions (slug, name, starts_at, ends_at)
VALUES ('daily-deals', 'Daily Deals', $1, $2)
ON CONFLICT (slug) DO UPDATE SET starts_at = EXCLUDED.starts_at, ends_at = EXCLUDED.ends_at
RETURNING id::text
`
	now := time.Now()
	var sessionID string
	if err := pool.QueryRow(ctx, sessionQ, now.Add(-time.Hour), now.Add(23*time.Hour)).Scan(&sessionID); err != nil {
		return err
	}

	const itemQ = `
INSERT INTO flash_sale_items (session_id, product_id, sale_price, total_quantity)
SELECT $1, id, 29000, 50 FROM products WHERE slug = 'paracetamol-500mg'
ON CONFLICT (session_id, product_id) DO NOTHING
`
	_, err := pool.Exec(ctx, itemQ, sessionID)
	return err
}

func seedBanner(ctx context.Context, pool *pgxpool.Pool) error {
	const q = `
INSERT INTO banners (title, image_url, link_url, position)
SELECT 'Free shipping over 500k', 'https://cdn.example.com/banners/freeship.jpg', '/products', 0
WHERE NOT EXISTS (SELECT 1 FROM banners)
`
	_, err := pool.Exec(ctx, q)
	return err
}
