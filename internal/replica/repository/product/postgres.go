package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pharmacy-storefront/internal/domain"
)

const defaultPageSize = 20

const productColumns = `
p.id::text, p.slug, p.sku, p.name, p.description, p.price, p.sale_price,
p.stock_quantity, p.unit, p.requires_prescription, p.is_featured, p.status,
p.likes_count, p.rating_avg, p.rating_count, p.created_at,
COALESCE(c.id::text, ''), COALESCE(c.name, ''), COALESCE(c.slug, ''),
COALESCE(m.id::text, ''), COALESCE(m.name, ''), COALESCE(m.slug, '')`

const productJoins = `
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
LEFT JOIN manufacturers m ON m.id = p.manufacturer_id`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Slug, &p.SKU, &p.Name, &p.Description, &p.Price, &p.SalePrice,
		&p.StockQuantity, &p.Unit, &p.RequiresPrescription, &p.IsFeatured, &p.Status,
		&p.LikesCount, &p.RatingAvg, &p.RatingCount, &p.CreatedAt,
		&p.Category.ID, &p.Category.Name, &p.Category.Slug,
		&p.Manufacturer.ID, &p.Manufacturer.Name, &p.Manufacturer.Slug,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]domain.Product, int, error) {
	where := []string{"p.status = 'ACTIVE'"}
	args := []any{}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where = append(where, fmt.Sprintf("(p.name ILIKE %s OR p.sku ILIKE %s)", p, p))
	}
	if f.CategorySlug != "" {
		where = append(where, fmt.Sprintf(
			"p.category_id IN (SELECT id FROM categories WHERE slug = %s OR parent_id = (SELECT id FROM categories WHERE slug = %s))",
			arg(f.CategorySlug), arg(f.CategorySlug)))
	}
	if f.ManufacturerSlug != "" {
		where = append(where, fmt.Sprintf("m.slug = %s", arg(f.ManufacturerSlug)))
	}
	if f.Featured != nil {
		where = append(where, fmt.Sprintf("p.is_featured = %s", arg(*f.Featured)))
	}
	if f.OnSale != nil && *f.OnSale {
		where = append(where, "p.sale_price IS NOT NULL AND p.sale_price < p.price")
	}
	if f.Prescription != nil {
		where = append(where, fmt.Sprintf("p.requires_prescription = %s", arg(*f.Prescription)))
	}
	if f.MinPrice != nil {
		where = append(where, fmt.Sprintf("COALESCE(p.sale_price, p.price) >= %s", arg(*f.MinPrice)))
	}
	if f.MaxPrice != nil {
		where = append(where, fmt.Sprintf("COALESCE(p.sale_price, p.price) <= %s", arg(*f.MaxPrice)))
	}

	order := "p.created_at DESC"
	switch f.Sort {
	case "price":
		order = "COALESCE(p.sale_price, p.price) ASC"
	case "-price":
		order = "COALESCE(p.sale_price, p.price) DESC"
	case "name":
		order = "p.name ASC"
	case "-rating":
		order = "p.rating_avg DESC"
	}

	whereClause := "WHERE " + strings.Join(where, " AND ")

	var total int
	countQ := "SELECT count(*) " + productJoins + " " + whereClause
	if err := r.pool.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		r.logger.Printf("product repo: count error=%v", err)
		return nil, 0, err
	}

	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}

	listQ := fmt.Sprintf("SELECT %s %s %s ORDER BY %s LIMIT %d OFFSET %d",
		productColumns, productJoins, whereClause, order, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, listQ, args...)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.attachImages(ctx, result); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	q := "SELECT " + productColumns + " " + productJoins + " WHERE p.slug = $1"
	return r.fetchOne(ctx, q, slug)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := "SELECT " + productColumns + " " + productJoins + " WHERE p.id = $1"
	return r.fetchOne(ctx, q, id)
}

func (r *postgresRepo) fetchOne(ctx context.Context, q string, arg any) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, q, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	one := []domain.Product{*p}
	if err := r.attachImages(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (r *postgresRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := "SELECT " + productColumns + " " + productJoins + " WHERE p.id = ANY($1)"
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func (r *postgresRepo) attachImages(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
	}

	const q = `
SELECT product_id::text, url, alt, is_primary
FROM product_images
WHERE product_id = ANY($1)
ORDER BY position, id
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var productID string
		var img domain.ProductImage
		if err := rows.Scan(&productID, &img.URL, &img.Alt, &img.IsPrimary); err != nil {
			return err
		}
		if i, ok := index[productID]; ok {
			products[i].Images = append(products[i].Images, img)
		}
	}
	return rows.Err()
}

func (r *postgresRepo) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
SELECT name
FROM products
WHERE status = 'ACTIVE' AND name ILIKE $1
ORDER BY name
LIMIT $2
`
	rows, err := r.pool.Query(ctx, q, "%"+prefix+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *postgresRepo) Create(ctx context.Context, in Input) (*domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO products (slug, sku, name, description, price, sale_price, stock_quantity, unit,
                      category_id, manufacturer_id, requires_prescription, is_featured, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, '')::uuid, NULLIF($10, '')::uuid, $11, $12, $13)
RETURNING id::text
`
	var id string
	err = tx.QueryRow(ctx, q,
		in.Slug, in.SKU, in.Name, in.Description, in.Price, in.SalePrice, in.StockQuantity, in.Unit,
		in.CategoryID, in.ManufacturerID, in.RequiresPrescription, in.IsFeatured, statusOf(in),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}

	if err := replaceImages(ctx, tx, id, in.Images); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	r.logger.Printf("product repo: created id=%s slug=%s", id, in.Slug)
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Update(ctx context.Context, id string, in Input) (*domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
UPDATE products
SET slug = $2, sku = $3, name = $4, description = $5, price = $6, sale_price = $7,
    stock_quantity = $8, unit = $9, category_id = NULLIF($10, '')::uuid,
    manufacturer_id = NULLIF($11, '')::uuid, requires_prescription = $12,
    is_featured = $13, status = $14
WHERE id = $1
RETURNING id::text
`
	var updated string
	err = tx.QueryRow(ctx, q, id,
		in.Slug, in.SKU, in.Name, in.Description, in.Price, in.SalePrice,
		in.StockQuantity, in.Unit, in.CategoryID, in.ManufacturerID,
		in.RequiresPrescription, in.IsFeatured, statusOf(in),
	).Scan(&updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}

	if err := replaceImages(ctx, tx, id, in.Images); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ToggleLike(ctx context.Context, customerID, productID string) (bool, int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM product_likes WHERE customer_id = $1 AND product_id = $2`, customerID, productID)
	if err != nil {
		return false, 0, err
	}

	liked := tag.RowsAffected() == 0
	if liked {
		if _, err := tx.Exec(ctx, `INSERT INTO product_likes (customer_id, product_id) VALUES ($1, $2)`, customerID, productID); err != nil {
			return false, 0, err
		}
	}

	var count int
	err = tx.QueryRow(ctx, `
UPDATE products
SET likes_count = (SELECT count(*) FROM product_likes WHERE product_id = $1)
WHERE id = $1
RETURNING likes_count
`, productID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, 0, domain.ErrNotFound
		}
		return false, 0, err
	}
	return liked, count, tx.Commit(ctx)
}

func statusOf(in Input) string {
	if in.IsActive {
		return "ACTIVE"
	}
	return "INACTIVE"
}

func replaceImages(ctx context.Context, tx pgx.Tx, productID string, images []ImageInput) error {
	if images == nil {
		return nil
	}
	if _, err := tx.Exec(ctx, `DELETE FROM product_images WHERE product_id = $1`, productID); err != nil {
		return err
	}
	for i, img := range images {
		pos := img.Position
		if pos == 0 {
			pos = i
		}
		_, err := tx.Exec(ctx, `
INSERT INTO product_images (product_id, url, alt, is_primary, position)
VALUES ($1, $2, $3, $4, $5)
`, productID, img.URL, img.Alt, img.IsPrimary, pos)
		if err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
