package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pharmacy-storefront/internal/domain"
)

const defaultPageSize = 20

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

func (r *postgresRepo) Create(ctx context.Context, in CreateInput) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const orderQ = `
INSERT INTO orders (order_number, customer_id, status, subtotal, shipping_fee, discount_amount,
                    total_amount, voucher_code, payment_method, receiver_name, receiver_phone,
                    shipping_address, note)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id::text
`
	o := in.Order
	var orderID string
	err = tx.QueryRow(ctx, orderQ,
		o.OrderNumber, in.CustomerID, domain.OrderPending, o.Subtotal, o.ShippingFee,
		o.DiscountAmount, o.TotalAmount, o.VoucherCode, o.PaymentMethod,
		o.ReceiverName, o.ReceiverPhone, o.ShippingAddr, o.Note,
	).Scan(&orderID)
	if err != nil {
		return nil, err
	}

	for _, item := range o.Items {
		_, err := tx.Exec(ctx, `
INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity, total_price)
VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6)
`, orderID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity, item.TotalPrice)
		if err != nil {
			return nil, err
		}

		tag, err := tx.Exec(ctx, `
UPDATE products
SET stock_quantity = stock_quantity - $2
WHERE id = $1 AND stock_quantity >= $2
`, item.ProductID, item.Quantity)
		if err != nil {
			return nil, err
		}
		if tag.RowsAffected() == 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrOutOfStock, item.ProductName)
		}
	}

	for _, sale := range in.FlashSaleSales {
		tag, err := tx.Exec(ctx, `
UPDATE flash_sale_items
SET sold_quantity = sold_quantity + $2
WHERE id = $1 AND sold_quantity + $2 <= total_quantity
`, sale.ItemID, sale.Quantity)
		if err != nil {
			return nil, err
		}
		if tag.RowsAffected() == 0 {
			return nil, domain.ErrOutOfStock
		}
	}

	if in.VoucherID != "" {
		_, err := tx.Exec(ctx, `UPDATE vouchers SET used_count = used_count + 1 WHERE id = $1`, in.VoucherID)
		if err != nil {
			return nil, err
		}
	}

	if in.CartID != "" {
		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, in.CartID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	r.logger.Printf("order repo: created id=%s number=%s total=%.2f", orderID, o.OrderNumber, o.TotalAmount)
	return r.GetByID(ctx, orderID)
}

const orderColumns = `
id::text, order_number, status, subtotal, shipping_fee, discount_amount, total_amount,
voucher_code, payment_method, receiver_name, receiver_phone, shipping_address, note, created_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.Status, &o.Subtotal, &o.ShippingFee, &o.DiscountAmount,
		&o.TotalAmount, &o.VoucherCode, &o.PaymentMethod, &o.ReceiverName, &o.ReceiverPhone,
		&o.ShippingAddr, &o.Note, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	q := "SELECT " + orderColumns + " FROM orders WHERE id = $1"
	return r.fetchOne(ctx, q, id)
}

func (r *postgresRepo) GetForCustomer(ctx context.Context, customerID, id string) (*domain.Order, error) {
	q := "SELECT " + orderColumns + " FROM orders WHERE id = $2 AND customer_id = $1"
	return r.fetchOne(ctx, q, customerID, id)
}

func (r *postgresRepo) fetchOne(ctx context.Context, q string, args ...any) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	orders := []domain.Order{*o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Order, int, error) {
	where := []string{"true"}
	args := []any{}
	if f.CustomerID != "" {
		args = append(args, f.CustomerID)
		where = append(where, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	whereClause := "WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM orders "+whereClause, args...).Scan(&total); err != nil {
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

	q := fmt.Sprintf("SELECT %s FROM orders %s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		orderColumns, whereClause, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *postgresRepo) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	const q = `
SELECT order_id::text, id::text, COALESCE(product_id::text, ''), product_name, unit_price, quantity, total_price
FROM order_items
WHERE order_id = ANY($1)
ORDER BY id
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var item domain.OrderItem
		if err := rows.Scan(&orderID, &item.ID, &item.ProductID, &item.ProductName, &item.UnitPrice, &item.Quantity, &item.TotalPrice); err != nil {
			return err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return rows.Err()
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}
