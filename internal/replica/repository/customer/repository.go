package customer

import (
	"context"

	"pharmacy-storefront/internal/domain"
)

// Repository persists and fetches customer accounts.
type Repository interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context, page, pageSize int) ([]domain.Customer, int, error)
	UpdateProfile(ctx context.Context, id, fullName, phone, address string) (*domain.Customer, error)
	SetActive(ctx context.Context, id string, active bool) (*domain.Customer, error)
}
