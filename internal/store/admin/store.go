// Package admin is the back-office slice of client state: catalog,
// promotion and account management. Writes never patch local state from the
// request payload; every successful mutation re-fetches the canonical list
// from the server, so the admin UI always shows what the server accepted
// rather than what was submitted.
package admin

import (
	"context"
	"log"
	"net/url"
	"strconv"
	"sync"

	"pharmacy-storefront/internal/domain"
	"pharmacy-storefront/internal/normalize"
	"pharmacy-storefront/internal/notify"
	"pharmacy-storefront/internal/rest"
)

const genericFailure = "The operation failed. Please try again."

type api interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

type Store struct {
	api    api
	notify notify.Notifier
	logger *log.Logger

	mu         sync.Mutex
	loading    bool
	products   normalize.Page[domain.Product]
	categories []domain.Category
	orders     normalize.Page[domain.Order]
	vouchers   normalize.Page[domain.Voucher]
	sessions   normalize.Page[domain.FlashSaleSession]
	banners    normalize.Page[domain.Banner]
	customers  normalize.Page[domain.Customer]
}

func New(client api, notifier notify.Notifier, logger *log.Logger) *Store {
	return &Store{api: client, notify: notifier, logger: logger}
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// ---- products ----

func (s *Store) Products() normalize.Page[domain.Product] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products
}

func (s *Store) LoadProducts(ctx context.Context, page int) bool {
	return s.load(ctx, "/admin/products/", pageQuery(page), func(raw any) {
		s.mu.Lock()
		s.products = normalize.ProductPage(raw)
		s.mu.Unlock()
	})
}

// ProductInput carries the writable product fields. Pointer fields are
// omitted when nil so partial updates only touch what the form changed.
type ProductInput struct {
	Name                 string   `json:"name"`
	SKU                  string   `json:"sku,omitempty"`
	Description          string   `json:"description,omitempty"`
	Price                float64  `json:"price"`
	SalePrice            *float64 `json:"sale_price,omitempty"`
	StockQuantity        int      `json:"stock_quantity"`
	Unit                 string   `json:"unit,omitempty"`
	CategoryID           string   `json:"category_id,omitempty"`
	ManufacturerID       string   `json:"manufacturer_id,omitempty"`
	RequiresPrescription bool     `json:"requires_prescription"`
	IsFeatured           bool     `json:"is_featured"`
	Status               string   `json:"status,omitempty"`
}

func (s *Store) CreateProduct(ctx context.Context, in ProductInput) bool {
	return s.mutate(ctx, "Product created", func(ctx context.Context) error {
		return s.api.Post(ctx, "/admin/products/", in, nil)
	}, s.refetchProducts)
}

func (s *Store) UpdateProduct(ctx context.Context, id string, in ProductInput) bool {
	return s.mutate(ctx, "Product updated", func(ctx context.Context) error {
		return s.api.Patch(ctx, "/admin/products/"+id+"/", in, nil)
	}, s.refetchProducts)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) bool {
	return s.mutate(ctx, "Product deleted", func(ctx context.Context) error {
		return s.api.Delete(ctx, "/admin/products/"+id+"/", nil)
	}, s.refetchProducts)
}

func (s *Store) refetchProducts(ctx context.Context) error {
	var raw any
	if err := s.api.Get(ctx, "/admin/products/", nil, &raw); err != nil {
		return err
	}
	s.mu.Lock()
	s.products = normalize.ProductPage(raw)
	s.mu.Unlock()
	return nil
}

// ---- categories ----

func (s *Store) Categories() []domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories
}

func (s *Store) LoadCategories(ctx context.Context) bool {
	return s.load(ctx, "/categories/tree/", nil, func(raw any) {
		s.mu.Lock()
		s.categories = normalize.CategoryPage(raw).Results
		s.mu.Unlock()
	})
}

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	IsActive    bool   `json:"is_active"`
}

func (s *Store) CreateCategory(ctx context.Context, in CategoryInput) bool {
	return s.mutate(ctx, "Category created", func(ctx context.Context) error {
		return s.api.Post(ctx, "/admin/categories/", in, nil)
	}, s.refetchCategories)
}

func (s *Store) UpdateCategory(ctx context.Context, id string, in CategoryInput) bool {
	return s.mutate(ctx, "Category updated", func(ctx context.Context) error {
		return s.api.Patch(ctx, "/admin/categories/"+id+"/", in, nil)
	}, s.refetchCategories)
}

func (s *Store) DeleteCategory(ctx context.Context, id string) bool {
	return s.mutate(ctx, "Category deleted", func(ctx context.Context) error {
		return s.api.Delete(ctx, "/admin/categories/"+id+"/", nil)
	}, s.refetchCategories)
}

func (s *Store) refetchCategories(ctx context.Context) error {
	var raw any
	if err := s.api.Get(ctx, "/categories/tree/", nil, &raw); err != nil {
		return err
	}
	s.mu.Lock()
	s.categories = normalize.CategoryPage(raw).Results
	s.mu.Unlock()
	return nil
}

// ---- orders ----

func (s *Store) Orders() normalize.Page[domain.Order] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders
}

func (s *Store) LoadOrders(ctx context.Context, page int) bool {
	return s.load(ctx, "/admin/orders/", pageQuery(page), func(raw any) {
		s.mu.Lock()
		s.orders = normalize.OrderPage(raw)
		s.mu.Unlock()
	})
}

// UpdateOrderStatus requests a transition; the server enforces the status
// machine and rejects backward or post-cancellation moves.
func (s *Store) UpdateOrderStatus(ctx context.Context, id, status string) bool {
	return s.mutate(ctx, "Order updated", func(ctx context.Context) error {
		return s.api.Patch(ctx, "/admin/orders/"+id+"/status/", map[string]any{"status": status}, nil)
	}, func(ctx context.Context) error {
		var raw any
		if err := s.api.Get(ctx, "/admin/orders/", nil, &raw); err != nil {
			return err
		}
		s.mu.Lock()
		s.orders = normalize.OrderPage(raw)
		s.mu.Unlock()
		return nil
	})
}

// ---- vouchers ----

func (s *Store) Vouchers() normalize.Page[domain.Voucher] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vouchers
}

func (s *Store) LoadVouchers(ctx context.Context, page int) bool {
	return s.load(ctx, "/admin/vouchers/", pageQuery(page), func(raw any) {
		s.mu.Lock()
		s.vouchers = normalize.VoucherPage(raw)
		s.mu.Unlock()
	})
}

type VoucherInput struct {
	Code          string  `json:"code"`
	Description   string  `json:"description,omitempty"`
	DiscountType  string  `json:"discount_type"`
	DiscountValue float64 `json:"discount_value"`
	MinOrderTotal float64 `json:"min_order_total,omitempty"`
	MaxDiscount   float64 `json:"max_discount,omitempty"`
	UsageLimit    int     `json:"usage_limit,omitempty"`
	IsActive      bool    `json:"is_active"`
	StartsAt      string  `json:"starts_at,omitempty"`
	EndsAt        string  `json:"ends_at,omitempty"`
}

func (s *Store) CreateVoucher(ctx context.Context, in VoucherInput) bool {
	return s.mutate(ctx, "Voucher created", func(ctx context.Context) error {
		return s.api.Post(ctx, "/admin/vouchers/", in, nil)
	}, s.refetchVouchers)
}

func (s *Store) UpdateVoucher(ctx context.Context, id string, in VoucherInput) bool {
	return s.mutate(ctx, "Voucher updated", func(ctx context.Context) error {
		return s.api.Patch(ctx, "/admin/vouchers/"+id+"/", in, nil)
	}, s.refetchVouchers)
}

func (s *Store) DeleteVoucher(ctx context.Context, id string) bool {
	return s.mutate(ctx, "Voucher deleted", func(ctx context.Context) error {
		return s.api.Delete(ctx, "/admin/vouchers/"+id+"/", nil)
	}, s.refetchVouchers)
}

func (s *Store) refetchVouchers(ctx context.Context) error {
	var raw any
	if err := s.api.Get(ctx, "/admin/vouchers/", nil, &raw); err != nil {
		return err
	}
	s.mu.Lock()
	s.vouchers = normalize.VoucherPage(raw)
	s.mu.Unlock()
	return nil
}

// ---- flash sales ----

func (s *Store) FlashSaleSessions() normalize.Page[domain.FlashSaleSession] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions
}

func (s *Store) LoadFlashSaleSessions(ctx context.Context) bool {
	return s.load(ctx, "/admin/flash-sale/sessions/", nil, func(raw any) {
		s.mu.Lock()
		s.sessions = normalize.FlashSaleSessionPage(raw)
		s.mu.Unlock()
	})
}

type FlashSaleSessionInput struct {
	Name     string `json:"name"`
	StartsAt string `json:"starts_at"`
	EndsAt   string `json:"ends_at"`
	IsActive bool   `json:"is_active"`
}

type FlashSaleItemInput struct {
	ProductID     string  `json:"product_id"`
	SalePrice     float64 `json:"sale_price"`
	TotalQuantity int     `json:"total_quantity"`
}

func (s *Store) CreateFlashSaleSession(ctx context.Context, in FlashSaleSessionInput) bool {
	return s.mutate(ctx, "Flash sale created", func(ctx context.Context) error {
		return s.api.Post(ctx, "/admin/flash-sale/sessions/", in, nil)
	}, s.refetchSessions)
}

func (s *Store) UpdateFlashSaleSession(ctx context.Context, id string, in FlashSaleSessionInput) bool {
	return s.mutate(ctx, "Flash sale updated", func(ctx context.Context) error {
		return s.api.Patch(ctx, "/admin/flash-sale/sessions/"+id+"/", in, nil)
	}, s.refetchSessions)
}

func (s *Store) DeleteFlashSaleSession(ctx context.Context, id string) bool {
	return s.mutate(ctx, "Flash sale deleted", func(ctx context.Context) error {
		return s.api.Delete(ctx, "/admin/flash-sale/sessions/"+id+"/", nil)
	}, s.refetchSessions)
}

func (s *Store) AddFlashSaleItem(ctx context.Context, sessionID string, in FlashSaleItemInput) bool {
	return s.mutate(ctx, "Product added to flash sale", func(ctx context.Context) error {
		return s.api.Post(ctx, "/admin/flash-sale/sessions/"+sessionID+"/items/", in, nil)
	}, s.refetchSessions)
}

func (s *Store) RemoveFlashSaleItem(ctx context.Context, sessionID, itemID string) bool {
	return s.mutate(ctx, "Product removed from flash sale", func(ctx context.Context) error {
		return s.api.Delete(ctx, "/admin/flash-sale/sessions/"+sessionID+"/items/"+itemID+"/", nil)
	}, s.refetchSessions)
}

func (s *Store) refetchSessions(ctx context.Context) error {
	var raw any
	if err := s.api.Get(ctx, "/admin/flash-sale/sessions/", nil, &raw); err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions = normalize.FlashSaleSessionPage(raw)
	s.mu.Unlock()
	return nil
}

// ---- banners ----

func (s *Store) Banners() normalize.Page[domain.Banner] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.banners
}

func (s *Store) LoadBanners(ctx context.Context) bool {
	return s.load(ctx, "/admin/banners/", nil, func(raw any) {
		s.mu.Lock()
		s.banners = normalize.BannerPage(raw)
		s.mu.Unlock()
	})
}

type BannerInput struct {
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
	LinkURL  string `json:"link_url,omitempty"`
	Position int    `json:"position"`
	IsActive bool   `json:"is_active"`
}

func (s *Store) CreateBanner(ctx context.Context, in BannerInput) bool {
	return s.mutate(ctx, "Banner created", func(ctx context.Context) error {
		return s.api.Post(ctx, "/admin/banners/", in, nil)
	}, s.refetchBanners)
}

func (s *Store) UpdateBanner(ctx context.Context, id string, in BannerInput) bool {
	return s.mutate(ctx, "Banner updated", func(ctx context.Context) error {
		return s.api.Patch(ctx, "/admin/banners/"+id+"/", in, nil)
	}, s.refetchBanners)
}

func (s *Store) DeleteBanner(ctx context.Context, id string) bool {
	return s.mutate(ctx, "Banner deleted", func(ctx context.Context) error {
		return s.api.Delete(ctx, "/admin/banners/"+id+"/", nil)
	}, s.refetchBanners)
}

func (s *Store) refetchBanners(ctx context.Context) error {
	var raw any
	if err := s.api.Get(ctx, "/admin/banners/", nil, &raw); err != nil {
		return err
	}
	s.mu.Lock()
	s.banners = normalize.BannerPage(raw)
	s.mu.Unlock()
	return nil
}

// ---- customers ----

func (s *Store) Customers() normalize.Page[domain.Customer] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers
}

func (s *Store) LoadCustomers(ctx context.Context, page int) bool {
	return s.load(ctx, "/admin/customers/", pageQuery(page), func(raw any) {
		s.mu.Lock()
		s.customers = normalize.CustomerPage(raw)
		s.mu.Unlock()
	})
}

// SetCustomerActive toggles account access. Deactivation is reversible,
// so no confirmation flow lives at this layer.
func (s *Store) SetCustomerActive(ctx context.Context, id string, active bool) bool {
	msg := "Customer deactivated"
	if active {
		msg = "Customer activated"
	}
	return s.mutate(ctx, msg, func(ctx context.Context) error {
		return s.api.Patch(ctx, "/admin/customers/"+id+"/", map[string]any{"is_active": active}, nil)
	}, func(ctx context.Context) error {
		var raw any
		if err := s.api.Get(ctx, "/admin/customers/", nil, &raw); err != nil {
			return err
		}
		s.mu.Lock()
		s.customers = normalize.CustomerPage(raw)
		s.mu.Unlock()
		return nil
	})
}

// ---- shared plumbing ----

// mutate runs a write then re-fetches the affected list. A failed re-fetch
// does not undo the write; it only means the local list is stale, which the
// next load repairs.
func (s *Store) mutate(ctx context.Context, successMsg string, write, refetch func(context.Context) error) bool {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := write(ctx); err != nil {
		s.notify.Error(rest.ServerMessage(err, genericFailure))
		return false
	}
	if err := refetch(ctx); err != nil && s.logger != nil {
		s.logger.Printf("refetch after mutation: %v", err)
	}
	s.notify.Success(successMsg)
	return true
}

func (s *Store) load(ctx context.Context, path string, query url.Values, install func(raw any)) bool {
	s.setLoading(true)
	defer s.setLoading(false)

	var raw any
	if err := s.api.Get(ctx, path, query, &raw); err != nil {
		s.notify.Error(rest.ServerMessage(err, genericFailure))
		return false
	}
	install(raw)
	return true
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
}

func pageQuery(page int) url.Values {
	if page <= 0 {
		return nil
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	return q
}
