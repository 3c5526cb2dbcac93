package cart

import (
	"context"

	"pharmacy-storefront/internal/domain"
)

// Repository keys every operation by customer. Quantities are absolute on
// update and additive on add; totals are recomputed from current product
// prices on every read so sale prices apply immediately.
type Repository interface {
	GetByCustomer(ctx context.Context, customerID string) (*domain.Cart, error)
	AddItem(ctx context.Context, customerID, productID string, quantity int) (*domain.Cart, error)
	UpdateItem(ctx context.Context, customerID, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, customerID, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context, customerID string) (*domain.Cart, error)
}
