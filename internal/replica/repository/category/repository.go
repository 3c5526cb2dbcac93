package category

import (
	"context"

	"pharmacy-storefront/internal/domain"
)

type Input struct {
	Slug        string
	Name        string
	Description string
	ParentID    string
	IsActive    bool
}

type Repository interface {
	// Tree returns root categories with children nested and product counts
	// filled in. Inactive categories are included only when includeInactive
	// is set.
	Tree(ctx context.Context, includeInactive bool) ([]domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	Create(ctx context.Context, in Input) (*domain.Category, error)
	Update(ctx context.Context, id string, in Input) (*domain.Category, error)
	Delete(ctx context.Context, id string) error

	Manufacturers(ctx context.Context) ([]domain.Manufacturer, error)
	ManufacturerBySlug(ctx context.Context, slug string) (*domain.Manufacturer, error)
}
