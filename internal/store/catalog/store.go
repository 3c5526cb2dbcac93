// Package catalog is the query side of the client data layer: product
// listings, search, categories, manufacturers and flash-sale reads. All
// responses pass through the normalizer, so callers always see the same
// paginated shape regardless of which variant the server returned.
package catalog

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

const genericFailure = "Could not load products. Please try again."

type api interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

// ListParams are the query parameters accepted by the product listing and
// search endpoints. Zero values are omitted from the request.
type ListParams struct {
	Page         int
	PageSize     int
	Category     string
	Manufacturer string
	MinPrice     float64
	MaxPrice     float64
	Status       string
	Search       string
	Ordering     string
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.Manufacturer != "" {
		q.Set("manufacturer", p.Manufacturer)
	}
	if p.MinPrice > 0 {
		q.Set("min_price", strconv.FormatFloat(p.MinPrice, 'f', -1, 64))
	}
	if p.MaxPrice > 0 {
		q.Set("max_price", strconv.FormatFloat(p.MaxPrice, 'f', -1, 64))
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Ordering != "" {
		q.Set("ordering", p.Ordering)
	}
	return q
}

// Store holds the product listing slice of state and serves the remaining
// catalog reads as pass-through queries.
type Store struct {
	api    api
	notify notify.Notifier
	logger *log.Logger

	mu      sync.Mutex
	page    normalize.Page[domain.Product]
	loading bool
}

func New(client api, notifier notify.Notifier, logger *log.Logger) *Store {
	return &Store{api: client, notify: notifier, logger: logger}
}

// Page returns the last loaded product listing.
func (s *Store) Page() normalize.Page[domain.Product] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Load fetches the product listing into store state. On failure the
// previous listing is kept and the failure is surfaced as a notification.
func (s *Store) Load(ctx context.Context, params ListParams) bool {
	s.setLoading(true)
	defer s.setLoading(false)

	page, err := s.fetchPage(ctx, "/products/", params.values())
	if err != nil {
		s.notify.Error(rest.ServerMessage(err, genericFailure))
		return false
	}
	s.mu.Lock()
	s.page = page
	s.mu.Unlock()
	return true
}

// Products is the stateless variant of Load for callers that manage their
// own slice of results.
func (s *Store) Products(ctx context.Context, params ListParams) (normalize.Page[domain.Product], error) {
	return s.fetchPage(ctx, "/products/", params.values())
}

func (s *Store) ProductBySlug(ctx context.Context, slug string) (domain.Product, error) {
	var raw any
	if err := s.api.Get(ctx, "/products/"+slug+"/", nil, &raw); err != nil {
		return domain.Product{}, err
	}
	return normalize.Product(raw), nil
}

// Featured, OnSale and New tolerate both server list shapes (bare array or
// paginated envelope); normalization absorbs the difference.
func (s *Store) Featured(ctx context.Context) (normalize.Page[domain.Product], error) {
	return s.fetchPage(ctx, "/products/featured/", nil)
}

func (s *Store) OnSale(ctx context.Context) (normalize.Page[domain.Product], error) {
	return s.fetchPage(ctx, "/products/on-sale/", nil)
}

func (s *Store) New(ctx context.Context) (normalize.Page[domain.Product], error) {
	return s.fetchPage(ctx, "/products/new/", nil)
}

// Search merges a free-text query with the shared filter parameter set
// against the dedicated search endpoint.
func (s *Store) Search(ctx context.Context, query string, params ListParams) (normalize.Page[domain.Product], error) {
	q := params.values()
	if query != "" {
		q.Set("q", query)
	}
	return s.fetchPage(ctx, "/search/", q)
}

func (s *Store) Suggest(ctx context.Context, query string) ([]string, error) {
	q := url.Values{}
	q.Set("q", query)
	var raw any
	if err := s.api.Get(ctx, "/search/suggest/", q, &raw); err != nil {
		return nil, err
	}
	return normalize.Suggestions(raw), nil
}

func (s *Store) CategoryTree(ctx context.Context) ([]domain.Category, error) {
	var raw any
	if err := s.api.Get(ctx, "/categories/tree/", nil, &raw); err != nil {
		return nil, err
	}
	return normalize.CategoryPage(raw).Results, nil
}

func (s *Store) CategoryBySlug(ctx context.Context, slug string) (domain.Category, error) {
	var raw any
	if err := s.api.Get(ctx, "/categories/"+slug+"/", nil, &raw); err != nil {
		return domain.Category{}, err
	}
	return normalize.Category(raw), nil
}

func (s *Store) Manufacturers(ctx context.Context) (normalize.Page[domain.Manufacturer], error) {
	var raw any
	if err := s.api.Get(ctx, "/manufacturers/", nil, &raw); err != nil {
		return normalize.Page[domain.Manufacturer]{}, err
	}
	return normalize.ManufacturerPage(raw), nil
}

func (s *Store) ManufacturerBySlug(ctx context.Context, slug string) (domain.Manufacturer, error) {
	var raw any
	if err := s.api.Get(ctx, "/manufacturers/"+slug+"/", nil, &raw); err != nil {
		return domain.Manufacturer{}, err
	}
	return normalize.Manufacturer(raw), nil
}

// FlashSale returns the currently running session, or nil when none is
// active (404 is absence, not an error).
func (s *Store) FlashSale(ctx context.Context) (*domain.FlashSaleSession, error) {
	var raw any
	if err := s.api.Get(ctx, "/flash-sale/", nil, &raw); err != nil {
		if rest.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	session := normalize.FlashSaleSession(raw)
	return &session, nil
}

func (s *Store) FlashSaleSessions(ctx context.Context) (normalize.Page[domain.FlashSaleSession], error) {
	var raw any
	if err := s.api.Get(ctx, "/flash-sale/sessions/", nil, &raw); err != nil {
		return normalize.Page[domain.FlashSaleSession]{}, err
	}
	return normalize.FlashSaleSessionPage(raw), nil
}

func (s *Store) FlashSaleSession(ctx context.Context, slug string) (domain.FlashSaleSession, error) {
	var raw any
	if err := s.api.Get(ctx, "/flash-sale/sessions/"+slug+"/", nil, &raw); err != nil {
		return domain.FlashSaleSession{}, err
	}
	return normalize.FlashSaleSession(raw), nil
}

// FlashSaleCheck reports whether a product is part of the active session
// and at which price.
func (s *Store) FlashSaleCheck(ctx context.Context, productID string) (*domain.FlashSaleItem, error) {
	q := url.Values{}
	q.Set("product_id", productID)
	var raw any
	if err := s.api.Get(ctx, "/flash-sale/check/", q, &raw); err != nil {
		if rest.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return normalize.FlashSaleCheck(raw), nil
}

func (s *Store) fetchPage(ctx context.Context, path string, query url.Values) (normalize.Page[domain.Product], error) {
	var raw any
	if err := s.api.Get(ctx, path, query, &raw); err != nil {
		return normalize.Page[domain.Product]{}, err
	}
	return normalize.ProductPage(raw), nil
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
}
