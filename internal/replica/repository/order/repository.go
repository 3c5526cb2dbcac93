package order

import (
	"context"

	"pharmacy-storefront/internal/domain"
)

// CreateInput carries a fully priced order. The repository persists it,
// deducts stock, records flash-sale sales, bumps voucher usage, and empties
// the source cart in one transaction.
type CreateInput struct {
	Order          domain.Order
	CustomerID     string
	CartID         string
	VoucherID      string
	FlashSaleSales []FlashSaleSale
}

// FlashSaleSale records quantity sold against a flash-sale item.
type FlashSaleSale struct {
	ItemID   string
	Quantity int
}

type ListFilter struct {
	CustomerID string
	Status     string
	Page       int
	PageSize   int
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// GetForCustomer returns ErrNotFound when the order exists but belongs
	// to someone else.
	GetForCustomer(ctx context.Context, customerID, id string) (*domain.Order, error)
	List(ctx context.Context, f ListFilter) ([]domain.Order, int, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
}
