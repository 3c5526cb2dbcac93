package promo

import (
	"context"
	"errors"
	"math"
	"time"

	"pharmacy-storefront/internal/domain"
	promorepo "pharmacy-storefront/internal/replica/repository/promo"
)

// Service owns voucher verdicts and flash-sale reads. Verdicts are returned
// as data, not errors: a rejected code is a 200 with valid=false so the
// storefront can show the reason inline.
type Service struct {
	repo promorepo.Repository
	now  func() time.Time
}

func New(repo promorepo.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CheckInput is the payload of a voucher calculation request.
type CheckInput struct {
	Code        string
	OrderTotal  float64
	ProductIDs  []string
	CategoryIDs []string
}

// Voucher rejection codes.
const (
	CodeInvalid       = "INVALID_CODE"
	CodeInactive      = "INACTIVE"
	CodeNotStarted    = "NOT_STARTED"
	CodeExpired       = "EXPIRED"
	CodeUsageLimit    = "USAGE_LIMIT_REACHED"
	CodeMinOrder      = "MIN_ORDER_NOT_MET"
	CodeNotApplicable = "NOT_APPLICABLE"
)

// Check evaluates a voucher against an order. Only infrastructure failures
// surface as errors.
func (s *Service) Check(ctx context.Context, in CheckInput) (*domain.VoucherResult, error) {
	reject := func(code, message string) *domain.VoucherResult {
		return &domain.VoucherResult{
			Valid:        false,
			ErrorCode:    code,
			ErrorMessage: message,
			OrderTotal:   in.OrderTotal,
			FinalTotal:   in.OrderTotal,
		}
	}

	v, err := s.repo.VoucherByCode(ctx, in.Code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return reject(CodeInvalid, "Voucher code does not exist"), nil
		}
		return nil, err
	}

	now := s.now()
	switch {
	case !v.IsActive:
		return reject(CodeInactive, "Voucher is no longer active"), nil
	case !v.StartsAt.IsZero() && now.Before(v.StartsAt):
		return reject(CodeNotStarted, "Voucher is not yet valid"), nil
	case !v.EndsAt.IsZero() && now.After(v.EndsAt):
		return reject(CodeExpired, "Voucher has expired"), nil
	case v.UsageLimit > 0 && v.UsedCount >= v.UsageLimit:
		return reject(CodeUsageLimit, "Voucher usage limit reached"), nil
	case in.OrderTotal < v.MinOrderTotal:
		return reject(CodeMinOrder, "Order total is below the voucher minimum"), nil
	}

	scope, err := s.repo.VoucherScope(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	if !scopeMatches(scope, in.ProductIDs, in.CategoryIDs) {
		return reject(CodeNotApplicable, "Voucher does not apply to these products"), nil
	}

	discount := discountFor(v, in.OrderTotal)
	return &domain.VoucherResult{
		Valid:          true,
		DiscountAmount: discount,
		OrderTotal:     in.OrderTotal,
		FinalTotal:     in.OrderTotal - discount,
		Voucher:        v,
	}, nil
}

// scopeMatches reports whether any cart line falls inside the voucher's
// restriction. An unrestricted voucher matches everything.
func scopeMatches(scope *promorepo.VoucherScope, productIDs, categoryIDs []string) bool {
	if len(scope.ProductIDs) == 0 && len(scope.CategoryIDs) == 0 {
		return true
	}
	allowed := make(map[string]bool, len(scope.ProductIDs)+len(scope.CategoryIDs))
	for _, id := range scope.ProductIDs {
		allowed[id] = true
	}
	for _, id := range productIDs {
		if allowed[id] {
			return true
		}
	}
	allowed = make(map[string]bool, len(scope.CategoryIDs))
	for _, id := range scope.CategoryIDs {
		allowed[id] = true
	}
	for _, id := range categoryIDs {
		if allowed[id] {
			return true
		}
	}
	return false
}

func discountFor(v *domain.Voucher, orderTotal float64) float64 {
	var discount float64
	switch v.DiscountType {
	case "PERCENT":
		discount = orderTotal * v.DiscountValue / 100
		if v.MaxDiscount > 0 {
			discount = math.Min(discount, v.MaxDiscount)
		}
	case "FIXED":
		discount = v.DiscountValue
	}
	return math.Min(discount, orderTotal)
}

func (s *Service) ActiveSession(ctx context.Context) (*domain.FlashSaleSession, error) {
	return s.repo.ActiveSession(ctx, s.now())
}

func (s *Service) Sessions(ctx context.Context, includeInactive bool) ([]domain.FlashSaleSession, error) {
	return s.repo.ListSessions(ctx, includeInactive)
}

func (s *Service) SessionBySlug(ctx context.Context, slug string) (*domain.FlashSaleSession, error) {
	return s.repo.SessionBySlug(ctx, slug)
}

// ProductCheck reports whether a product is currently in a flash sale and,
// when it is, the item binding it to the sale price.
func (s *Service) ProductCheck(ctx context.Context, productID string) (*domain.FlashSaleItem, error) {
	item, err := s.repo.ActiveItemForProduct(ctx, productID, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

func (s *Service) Banners(ctx context.Context, includeInactive bool) ([]domain.Banner, error) {
	return s.repo.ListBanners(ctx, includeInactive)
}

// Admin pass-throughs. Validation beyond what the repository enforces lives
// in the HTTP layer's request types.

func (s *Service) Vouchers(ctx context.Context) ([]domain.Voucher, error) {
	return s.repo.ListVouchers(ctx)
}

func (s *Service) CreateVoucher(ctx context.Context, in promorepo.VoucherInput) (*domain.Voucher, error) {
	return s.repo.CreateVoucher(ctx, in)
}

func (s *Service) UpdateVoucher(ctx context.Context, id string, in promorepo.VoucherInput) (*domain.Voucher, error) {
	return s.repo.UpdateVoucher(ctx, id, in)
}

func (s *Service) DeleteVoucher(ctx context.Context, id string) error {
	return s.repo.DeleteVoucher(ctx, id)
}

func (s *Service) CreateSession(ctx context.Context, in promorepo.SessionInput) (*domain.FlashSaleSession, error) {
	return s.repo.CreateSession(ctx, in)
}

func (s *Service) UpdateSession(ctx context.Context, id string, in promorepo.SessionInput) (*domain.FlashSaleSession, error) {
	return s.repo.UpdateSession(ctx, id, in)
}

func (s *Service) DeleteSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

func (s *Service) AddSessionItem(ctx context.Context, sessionID string, in promorepo.ItemInput) (*domain.FlashSaleSession, error) {
	return s.repo.AddSessionItem(ctx, sessionID, in)
}

func (s *Service) RemoveSessionItem(ctx context.Context, sessionID, itemID string) error {
	return s.repo.RemoveSessionItem(ctx, sessionID, itemID)
}

func (s *Service) CreateBanner(ctx context.Context, in promorepo.BannerInput) (*domain.Banner, error) {
	return s.repo.CreateBanner(ctx, in)
}

func (s *Service) UpdateBanner(ctx context.Context, id string, in promorepo.BannerInput) (*domain.Banner, error) {
	return s.repo.UpdateBanner(ctx, id, in)
}

func (s *Service) DeleteBanner(ctx context.Context, id string) error {
	return s.repo.DeleteBanner(ctx, id)
}
