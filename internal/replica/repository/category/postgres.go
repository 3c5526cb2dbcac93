package category

import (
	"context"
	"errors"
	"sort"

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

const categoryColumns = `
c.id::text, c.slug, c.name, c.description, COALESCE(c.parent_id::text, ''), c.is_active,
(SELECT count(*) FROM products p WHERE p.category_id = c.id AND p.status = 'ACTIVE')`

func (r *postgresRepo) Tree(ctx context.Context, includeInactive bool) ([]domain.Category, error) {
	q := "SELECT " + categoryColumns + " FROM categories c"
	if !includeInactive {
		q += " WHERE c.is_active"
	}
	q += " ORDER BY c.name"

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flat []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &c.ParentID, &c.IsActive, &c.ProductCount); err != nil {
			return nil, err
		}
		flat = append(flat, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return buildTree(flat), nil
}

// buildTree nests children under parents and rolls child product counts up
// into each parent. Orphans whose parent is missing become roots.
func buildTree(flat []domain.Category) []domain.Category {
	byID := make(map[string]*domain.Category, len(flat))
	for i := range flat {
		byID[flat[i].ID] = &flat[i]
	}

	var roots []*domain.Category
	for i := range flat {
		c := &flat[i]
		if c.ParentID != "" {
			if parent, ok := byID[c.ParentID]; ok {
				parent.Children = append(parent.Children, *c)
				continue
			}
		}
		roots = append(roots, c)
	}

	result := make([]domain.Category, 0, len(roots))
	for _, root := range roots {
		for _, child := range root.Children {
			root.ProductCount += child.ProductCount
		}
		sort.Slice(root.Children, func(i, j int) bool {
			return root.Children[i].Name < root.Children[j].Name
		})
		result = append(result, *root)
	}
	return result
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	q := "SELECT " + categoryColumns + " FROM categories c WHERE c.slug = $1"
	var c domain.Category
	err := r.pool.QueryRow(ctx, q, slug).Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &c.ParentID, &c.IsActive, &c.ProductCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const childQ = "SELECT " + categoryColumns + " FROM categories c WHERE c.parent_id = $1 AND c.is_active ORDER BY c.name"
	rows, err := r.pool.Query(ctx, childQ, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var child domain.Category
		if err := rows.Scan(&child.ID, &child.Slug, &child.Name, &child.Description, &child.ParentID, &child.IsActive, &child.ProductCount); err != nil {
			return nil, err
		}
		c.Children = append(c.Children, child)
	}
	return &c, rows.Err()
}

func (r *postgresRepo) Create(ctx context.Context, in Input) (*domain.Category, error) {
	const q = `
INSERT INTO categories (slug, name, description, parent_id, is_active)
VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5)
RETURNING slug
`
	var slug string
	if err := r.pool.QueryRow(ctx, q, in.Slug, in.Name, in.Description, in.ParentID, in.IsActive).Scan(&slug); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return r.GetBySlug(ctx, slug)
}

func (r *postgresRepo) Update(ctx context.Context, id string, in Input) (*domain.Category, error) {
	const q = `
UPDATE categories
SET slug = $2, name = $3, description = $4, parent_id = NULLIF($5, '')::uuid, is_active = $6
WHERE id = $1
RETURNING slug
`
	var slug string
	if err := r.pool.QueryRow(ctx, q, id, in.Slug, in.Name, in.Description, in.ParentID, in.IsActive).Scan(&slug); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return r.GetBySlug(ctx, slug)
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const manufacturerColumns = `
m.id::text, m.slug, m.name, m.country, m.logo_url,
(SELECT count(*) FROM products p WHERE p.manufacturer_id = m.id AND p.status = 'ACTIVE')`

func (r *postgresRepo) Manufacturers(ctx context.Context) ([]domain.Manufacturer, error) {
	q := "SELECT " + manufacturerColumns + " FROM manufacturers m ORDER BY m.name"
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Manufacturer
	for rows.Next() {
		var m domain.Manufacturer
		if err := rows.Scan(&m.ID, &m.Slug, &m.Name, &m.Country, &m.LogoURL, &m.ProductCount); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (r *postgresRepo) ManufacturerBySlug(ctx context.Context, slug string) (*domain.Manufacturer, error) {
	q := "SELECT " + manufacturerColumns + " FROM manufacturers m WHERE m.slug = $1"
	var m domain.Manufacturer
	err := r.pool.QueryRow(ctx, q, slug).Scan(&m.ID, &m.Slug, &m.Name, &m.Country, &m.LogoURL, &m.ProductCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
