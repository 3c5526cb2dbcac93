package customer

import (
	"context"
	"errors"

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

const customerColumns = `id::text, email, password_hash, full_name, phone, address, is_active, is_staff, created_at`

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.Email, &c.PasswordHash, &c.FullName, &c.Phone, &c.Address, &c.IsActive, &c.IsStaff, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	const q = `
INSERT INTO customers (email, password_hash, full_name, phone, address, is_active, is_staff)
VALUES (lower($1), $2, $3, $4, $5, true, $6)
RETURNING ` + customerColumns
	created, err := scanCustomer(r.pool.QueryRow(ctx, q, c.Email, c.PasswordHash, c.FullName, c.Phone, c.Address, c.IsStaff))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	q := "SELECT " + customerColumns + " FROM customers WHERE email = lower($1)"
	return r.fetchOne(ctx, q, email)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	q := "SELECT " + customerColumns + " FROM customers WHERE id = $1"
	return r.fetchOne(ctx, q, id)
}

func (r *postgresRepo) fetchOne(ctx context.Context, q string, arg any) (*domain.Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, q, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresRepo) List(ctx context.Context, page, pageSize int) ([]domain.Customer, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&total); err != nil {
		return nil, 0, err
	}

	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}

	q := "SELECT " + customerColumns + " FROM customers ORDER BY created_at DESC LIMIT $1 OFFSET $2"
	rows, err := r.pool.Query(ctx, q, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *c)
	}
	return result, total, rows.Err()
}

func (r *postgresRepo) UpdateProfile(ctx context.Context, id, fullName, phone, address string) (*domain.Customer, error) {
	const q = `
UPDATE customers
SET full_name = $2, phone = $3, address = $4
WHERE id = $1
RETURNING ` + customerColumns
	c, err := scanCustomer(r.pool.QueryRow(ctx, q, id, fullName, phone, address))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresRepo) SetActive(ctx context.Context, id string, active bool) (*domain.Customer, error) {
	const q = `
UPDATE customers
SET is_active = $2
WHERE id = $1
RETURNING ` + customerColumns
	c, err := scanCustomer(r.pool.QueryRow(ctx, q, id, active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}
