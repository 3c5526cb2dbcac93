package promo

import (
	"context"
	"time"

	"pharmacy-storefront/internal/domain"
)

type VoucherInput struct {
	Code          string
	Description   string
	DiscountType  string
	DiscountValue float64
	MinOrderTotal float64
	MaxDiscount   float64
	UsageLimit    int
	IsActive      bool
	StartsAt      time.Time
	EndsAt        time.Time
	CategoryIDs   []string
	ProductIDs    []string
}

// VoucherScope lists the category and product ids a voucher is restricted
// to. Empty slices mean the voucher applies to the whole catalog.
type VoucherScope struct {
	CategoryIDs []string
	ProductIDs  []string
}

type SessionInput struct {
	Slug     string
	Name     string
	StartsAt time.Time
	EndsAt   time.Time
	IsActive bool
}

type ItemInput struct {
	ProductID     string
	SalePrice     float64
	TotalQuantity int
}

type BannerInput struct {
	Title    string
	ImageURL string
	LinkURL  string
	Position int
	IsActive bool
}

type Repository interface {
	VoucherByCode(ctx context.Context, code string) (*domain.Voucher, error)
	VoucherScope(ctx context.Context, voucherID string) (*VoucherScope, error)
	ListVouchers(ctx context.Context) ([]domain.Voucher, error)
	CreateVoucher(ctx context.Context, in VoucherInput) (*domain.Voucher, error)
	UpdateVoucher(ctx context.Context, id string, in VoucherInput) (*domain.Voucher, error)
	DeleteVoucher(ctx context.Context, id string) error

	// ActiveSession returns the session covering now, or ErrNotFound.
	ActiveSession(ctx context.Context, now time.Time) (*domain.FlashSaleSession, error)
	ListSessions(ctx context.Context, includeInactive bool) ([]domain.FlashSaleSession, error)
	SessionBySlug(ctx context.Context, slug string) (*domain.FlashSaleSession, error)
	// ActiveItemForProduct resolves the flash-sale item for a product within
	// the currently running session, or ErrNotFound.
	ActiveItemForProduct(ctx context.Context, productID string, now time.Time) (*domain.FlashSaleItem, error)
	CreateSession(ctx context.Context, in SessionInput) (*domain.FlashSaleSession, error)
	UpdateSession(ctx context.Context, id string, in SessionInput) (*domain.FlashSaleSession, error)
	DeleteSession(ctx context.Context, id string) error
	AddSessionItem(ctx context.Context, sessionID string, in ItemInput) (*domain.FlashSaleSession, error)
	RemoveSessionItem(ctx context.Context, sessionID, itemID string) error

	ListBanners(ctx context.Context, includeInactive bool) ([]domain.Banner, error)
	CreateBanner(ctx context.Context, in BannerInput) (*domain.Banner, error)
	UpdateBanner(ctx context.Context, id string, in BannerInput) (*domain.Banner, error)
	DeleteBanner(ctx context.Context, id string) error
}
