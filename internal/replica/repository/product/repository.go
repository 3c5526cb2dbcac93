package product

import (
	"context"

	"pharmacy-storefront/internal/domain"
)

// Filter narrows and orders a product listing. Zero values mean "no
// constraint"; Page is 1-based and PageSize falls back to a server default.
type Filter struct {
	Search           string
	CategorySlug     string
	ManufacturerSlug string
	Featured         *bool
	OnSale           *bool
	Prescription     *bool
	MinPrice         *float64
	MaxPrice         *float64
	Sort             string
	Page             int
	PageSize         int
}

type Input struct {
	Slug                 string
	SKU                  string
	Name                 string
	Description          string
	Price                float64
	SalePrice            *float64
	StockQuantity        int
	Unit                 string
	CategoryID           string
	ManufacturerID       string
	RequiresPrescription bool
	IsFeatured           bool
	IsActive             bool
	Images               []ImageInput
}

type ImageInput struct {
	URL       string
	Alt       string
	IsPrimary bool
	Position  int
}

type Repository interface {
	List(ctx context.Context, f Filter) ([]domain.Product, int, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	Suggest(ctx context.Context, prefix string, limit int) ([]string, error)
	Create(ctx context.Context, in Input) (*domain.Product, error)
	Update(ctx context.Context, id string, in Input) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, customerID, productID string) (bool, int, error)
}
