package promo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pharmacy-storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const voucherColumns = `
id::text, code, description, discount_type, discount_value, min_order_total,
COALESCE(max_discount, 0), COALESCE(usage_limit, 0), used_count, is_active,
COALESCE(starts_at, 'epoch'::timestamptz), COALESCE(ends_at, 'epoch'::timestamptz)`

func scanVoucher(row pgx.Row) (*domain.Voucher, error) {
	var v domain.Voucher
	err := row.Scan(
		&v.ID, &v.Code, &v.Description, &v.DiscountType, &v.DiscountValue, &v.MinOrderTotal,
		&v.MaxDiscount, &v.UsageLimit, &v.UsedCount, &v.IsActive, &v.StartsAt, &v.EndsAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *postgresRepo) VoucherByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	q := "SELECT " + voucherColumns + " FROM vouchers WHERE upper(code) = upper($1)"
	v, err := scanVoucher(r.pool.QueryRow(ctx, q, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *postgresRepo) VoucherScope(ctx context.Context, voucherID string) (*VoucherScope, error) {
	scope := &VoucherScope{}

	rows, err := r.pool.Query(ctx, `SELECT category_id::text FROM voucher_categories WHERE voucher_id = $1`, voucherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		scope.CategoryIDs = append(scope.CategoryIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx, `SELECT product_id::text FROM voucher_products WHERE voucher_id = $1`, voucherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		scope.ProductIDs = append(scope.ProductIDs, id)
	}
	return scope, rows.Err()
}

func (r *postgresRepo) ListVouchers(ctx context.Context) ([]domain.Voucher, error) {
	q := "SELECT " + voucherColumns + " FROM vouchers ORDER BY created_at DESC"
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	return result, rows.Err()
}

func (r *postgresRepo) CreateVoucher(ctx context.Context, in VoucherInput) (*domain.Voucher, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO vouchers (code, description, discount_type, discount_value, min_order_total,
                      max_discount, usage_limit, is_active, starts_at, ends_at)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, 0), NULLIF($7, 0), $8, NULLIF($9, 'epoch'::timestamptz), NULLIF($10, 'epoch'::timestamptz))
RETURNING id::text
`
	var id string
	err = tx.QueryRow(ctx, q, in.Code, in.Description, in.DiscountType, in.DiscountValue,
		in.MinOrderTotal, in.MaxDiscount, in.UsageLimit, in.IsActive, in.StartsAt, in.EndsAt).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}

	if err := replaceScope(ctx, tx, id, in); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.VoucherByCode(ctx, in.Code)
}

func (r *postgresRepo) UpdateVoucher(ctx context.Context, id string, in VoucherInput) (*domain.Voucher, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
UPDATE vouchers
SET code = $2, description = $3, discount_type = $4, discount_value = $5, min_order_total = $6,
    max_discount = NULLIF($7, 0), usage_limit = NULLIF($8, 0), is_active = $9,
    starts_at = NULLIF($10, 'epoch'::timestamptz), ends_at = NULLIF($11, 'epoch'::timestamptz)
WHERE id = $1
RETURNING id::text
`
	var updated string
	err = tx.QueryRow(ctx, q, id, in.Code, in.Description, in.DiscountType, in.DiscountValue,
		in.MinOrderTotal, in.MaxDiscount, in.UsageLimit, in.IsActive, in.StartsAt, in.EndsAt).Scan(&updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}

	if err := replaceScope(ctx, tx, id, in); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.VoucherByCode(ctx, in.Code)
}

func replaceScope(ctx context.Context, tx pgx.Tx, voucherID string, in VoucherInput) error {
	if _, err := tx.Exec(ctx, `DELETE FROM voucher_categories WHERE voucher_id = $1`, voucherID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM voucher_products WHERE voucher_id = $1`, voucherID); err != nil {
		return err
	}
	for _, categoryID := range in.CategoryIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO voucher_categories (voucher_id, category_id) VALUES ($1, $2)`, voucherID, categoryID); err != nil {
			return err
		}
	}
	for _, productID := range in.ProductIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO voucher_products (voucher_id, product_id) VALUES ($1, $2)`, voucherID, productID); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresRepo) DeleteVoucher(ctx context.Context, id string) error {
	return r.deleteByID(ctx, `DELETE FROM vouchers WHERE id = $1`, id)
}

const sessionColumns = `id::text, slug, name, starts_at, ends_at, is_active`

func scanSession(row pgx.Row) (*domain.FlashSaleSession, error) {
	var s domain.FlashSaleSession
	if err := row.Scan(&s.ID, &s.Slug, &s.Name, &s.StartsAt, &s.EndsAt, &s.IsActive); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) ActiveSession(ctx context.Context, now time.Time) (*domain.FlashSaleSession, error) {
	const q = `
SELECT id::text, slug, name, starts_at, ends_at, is_active
FROM flash_sale_sessions
WHERE is_active AND starts_at <= $1 AND ends_at > $1
ORDER BY starts_at DESC
LIMIT 1
`
	s, err := scanSession(r.pool.QueryRow(ctx, q, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.attachItems(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) ListSessions(ctx context.Context, includeInactive bool) ([]domain.FlashSaleSession, error) {
	q := "SELECT " + sessionColumns + " FROM flash_sale_sessions"
	if !includeInactive {
		q += " WHERE is_active"
	}
	q += " ORDER BY starts_at DESC"

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.FlashSaleSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

func (r *postgresRepo) SessionBySlug(ctx context.Context, slug string) (*domain.FlashSaleSession, error) {
	q := "SELECT " + sessionColumns + " FROM flash_sale_sessions WHERE slug = $1"
	s, err := scanSession(r.pool.QueryRow(ctx, q, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.attachItems(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// attachItems loads the session's items with a compact product projection,
// enough for cards and price display.
func (r *postgresRepo) attachItems(ctx context.Context, s *domain.FlashSaleSession) error {
	const q = `
SELECT i.id::text, i.sale_price, i.total_quantity, i.sold_quantity,
       p.id::text, p.slug, p.name, p.price, p.stock_quantity,
       COALESCE((SELECT url FROM product_images WHERE product_id = p.id ORDER BY is_primary DESC, position LIMIT 1), '')
FROM flash_sale_items i
JOIN products p ON p.id = i.product_id
WHERE i.session_id = $1
ORDER BY i.id
`
	rows, err := r.pool.Query(ctx, q, s.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.FlashSaleItem
		var imageURL string
		if err := rows.Scan(&item.ID, &item.SalePrice, &item.TotalQuantity, &item.SoldQuantity,
			&item.Product.ID, &item.Product.Slug, &item.Product.Name, &item.Product.Price,
			&item.Product.StockQuantity, &imageURL); err != nil {
			return err
		}
		item.RemainingQuantity = item.TotalQuantity - item.SoldQuantity
		if imageURL != "" {
			item.Product.Images = []domain.ProductImage{{URL: imageURL, IsPrimary: true}}
		}
		s.Items = append(s.Items, item)
	}
	return rows.Err()
}

func (r *postgresRepo) ActiveItemForProduct(ctx context.Context, productID string, now time.Time) (*domain.FlashSaleItem, error) {
	const q = `
SELECT i.id::text, i.sale_price, i.total_quantity, i.sold_quantity,
       p.id::text, p.slug, p.name, p.price, p.stock_quantity
FROM flash_sale_items i
JOIN flash_sale_sessions s ON s.id = i.session_id
JOIN products p ON p.id = i.product_id
WHERE i.product_id = $1 AND s.is_active AND s.starts_at <= $2 AND s.ends_at > $2
LIMIT 1
`
	var item domain.FlashSaleItem
	err := r.pool.QueryRow(ctx, q, productID, now).Scan(
		&item.ID, &item.SalePrice, &item.TotalQuantity, &item.SoldQuantity,
		&item.Product.ID, &item.Product.Slug, &item.Product.Name, &item.Product.Price,
		&item.Product.StockQuantity,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	item.RemainingQuantity = item.TotalQuantity - item.SoldQuantity
	return &item, nil
}

func (r *postgresRepo) CreateSession(ctx context.Context, in SessionInput) (*domain.FlashSaleSession, error) {
	const q = `
INSERT INTO flash_sale_sessions (slug, name, starts_at, ends_at, is_active)
VALUES ($1, $2, $3, $4, $5)
RETURNING slug
`
	var slug string
	if err := r.pool.QueryRow(ctx, q, in.Slug, in.Name, in.StartsAt, in.EndsAt, in.IsActive).Scan(&slug); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return r.SessionBySlug(ctx, slug)
}

func (r *postgresRepo) UpdateSession(ctx context.Context, id string, in SessionInput) (*domain.FlashSaleSession, error) {
	const q = `
UPDATE flash_sale_sessions
SET slug = $2, name = $3, starts_at = $4, ends_at = $5, is_active = $6
WHERE id = $1
RETURNING slug
`
	var slug string
	if err := r.pool.QueryRow(ctx, q, id, in.Slug, in.Name, in.StartsAt, in.EndsAt, in.IsActive).Scan(&slug); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return r.SessionBySlug(ctx, slug)
}

func (r *postgresRepo) DeleteSession(ctx context.Context, id string) error {
	return r.deleteByID(ctx, `DELETE FROM flash_sale_sessions WHERE id = $1`, id)
}

func (r *postgresRepo) AddSessionItem(ctx context.Context, sessionID string, in ItemInput) (*domain.FlashSaleSession, error) {
	const q = `
INSERT INTO flash_sale_items (session_id, product_id, sale_price, total_quantity)
VALUES ($1, $2, $3, $4)
ON CONFLICT (session_id, product_id)
DO UPDATE SET sale_price = EXCLUDED.sale_price, total_quantity = EXCLUDED.total_quantity
RETURNING (SELECT slug FROM flash_sale_sessions WHERE id = $1)
`
	var slug string
	if err := r.pool.QueryRow(ctx, q, sessionID, in.ProductID, in.SalePrice, in.TotalQuantity).Scan(&slug); err != nil {
		return nil, err
	}
	return r.SessionBySlug(ctx, slug)
}

func (r *postgresRepo) RemoveSessionItem(ctx context.Context, sessionID, itemID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM flash_sale_items WHERE id = $1 AND session_id = $2`, itemID, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const bannerColumns = `id::text, title, image_url, link_url, position, is_active`

func (r *postgresRepo) ListBanners(ctx context.Context, includeInactive bool) ([]domain.Banner, error) {
	q := "SELECT " + bannerColumns + " FROM banners"
	if !includeInactive {
		q += " WHERE is_active"
	}
	q += " ORDER BY position, created_at"

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Banner
	for rows.Next() {
		var b domain.Banner
		if err := rows.Scan(&b.ID, &b.Title, &b.ImageURL, &b.LinkURL, &b.Position, &b.IsActive); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (r *postgresRepo) CreateBanner(ctx context.Context, in BannerInput) (*domain.Banner, error) {
	const q = `
INSERT INTO banners (title, image_url, link_url, position, is_active)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + bannerColumns
	var b domain.Banner
	err := r.pool.QueryRow(ctx, q, in.Title, in.ImageURL, in.LinkURL, in.Position, in.IsActive).
		Scan(&b.ID, &b.Title, &b.ImageURL, &b.LinkURL, &b.Position, &b.IsActive)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *postgresRepo) UpdateBanner(ctx context.Context, id string, in BannerInput) (*domain.Banner, error) {
	const q = `
UPDATE banners
SET title = $2, image_url = $3, link_url = $4, position = $5, is_active = $6
WHERE id = $1
RETURNING ` + bannerColumns
	var b domain.Banner
	err := r.pool.QueryRow(ctx, q, id, in.Title, in.ImageURL, in.LinkURL, in.Position, in.IsActive).
		Scan(&b.ID, &b.Title, &b.ImageURL, &b.LinkURL, &b.Position, &b.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *postgresRepo) DeleteBanner(ctx context.Context, id string) error {
	return r.deleteByID(ctx, `DELETE FROM banners WHERE id = $1`, id)
}

func (r *postgresRepo) deleteByID(ctx context.Context, q, id string) error {
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
