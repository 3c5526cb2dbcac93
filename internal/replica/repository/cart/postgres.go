package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pharmacy-storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) cartID(ctx context.Context, tx pgx.Tx, customerID string) (string, error) {
	const q = `
INSERT INTO carts (customer_id)
VALUES ($1)
ON CONFLICT (customer_id) DO UPDATE SET updated_at = now()
RETURNING id::text
`
	var id string
	if err := tx.QueryRow(ctx, q, customerID).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (r *postgresRepo) GetByCustomer(ctx context.Context, customerID string) (*domain.Cart, error) {
	return r.withCart(ctx, customerID, nil)
}

func (r *postgresRepo) AddItem(ctx context.Context, customerID, productID string, quantity int) (*domain.Cart, error) {
	return r.withCart(ctx, customerID, func(tx pgx.Tx, cartID string) error {
		var stock int
		err := tx.QueryRow(ctx, `SELECT stock_quantity FROM products WHERE id = $1 AND status = 'ACTIVE'`, productID).Scan(&stock)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}

		var current int
		err = tx.QueryRow(ctx, `SELECT quantity FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID).Scan(&current)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if current+quantity > stock {
			return domain.ErrOutOfStock
		}

		_, err = tx.Exec(ctx, `
INSERT INTO cart_items (cart_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
`, cartID, productID, quantity)
		return err
	})
}

func (r *postgresRepo) UpdateItem(ctx context.Context, customerID, itemID string, quantity int) (*domain.Cart, error) {
	return r.withCart(ctx, customerID, func(tx pgx.Tx, cartID string) error {
		var stock int
		err := tx.QueryRow(ctx, `
SELECT p.stock_quantity
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.id = $1 AND ci.cart_id = $2
`, itemID, cartID).Scan(&stock)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}
		if quantity > stock {
			return domain.ErrOutOfStock
		}

		_, err = tx.Exec(ctx, `UPDATE cart_items SET quantity = $3 WHERE id = $1 AND cart_id = $2`, itemID, cartID, quantity)
		return err
	})
}

func (r *postgresRepo) RemoveItem(ctx context.Context, customerID, itemID string) (*domain.Cart, error) {
	return r.withCart(ctx, customerID, func(tx pgx.Tx, cartID string) error {
		tag, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *postgresRepo) Clear(ctx context.Context, customerID string) (*domain.Cart, error) {
	return r.withCart(ctx, customerID, func(tx pgx.Tx, cartID string) error {
		_, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
		return err
	})
}

// withCart runs mutate (when non-nil) against the customer's cart inside a
// transaction, then reads the cart back with fresh totals.
func (r *postgresRepo) withCart(ctx context.Context, customerID string, mutate func(tx pgx.Tx, cartID string) error) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cartID, err := r.cartID(ctx, tx, customerID)
	if err != nil {
		return nil, err
	}

	if mutate != nil {
		if err := mutate(tx, cartID); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID); err != nil {
			return nil, err
		}
	}

	cart, err := fetchCart(ctx, tx, cartID)
	if err != nil {
		return nil, err
	}
	return cart, tx.Commit(ctx)
}

// fetchCart joins live product data into each line. UnitPrice carries the
// list price while TotalPrice uses the sale price when one is set, so the
// cart total can come in under the sum of unit prices.
func fetchCart(ctx context.Context, tx pgx.Tx, cartID string) (*domain.Cart, error) {
	const itemsQ = `
SELECT ci.id::text, ci.product_id::text, COALESCE(p.category_id::text, ''), p.name, p.slug,
       COALESCE((SELECT url FROM product_images WHERE product_id = p.id ORDER BY is_primary DESC, position LIMIT 1), ''),
       p.price, ci.quantity, COALESCE(p.sale_price, p.price) * ci.quantity
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $1
ORDER BY ci.created_at
`
	rows, err := tx.Query(ctx, itemsQ, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart := &domain.Cart{ID: cartID}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.CategoryID, &item.Name, &item.Slug,
			&item.ImageURL, &item.UnitPrice, &item.Quantity, &item.TotalPrice); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
		cart.TotalPrice += item.TotalPrice
		cart.TotalItems += item.Quantity
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.QueryRow(ctx, `SELECT updated_at FROM carts WHERE id = $1`, cartID).Scan(&cart.UpdatedAt); err != nil {
		return nil, err
	}
	return cart, nil
}
