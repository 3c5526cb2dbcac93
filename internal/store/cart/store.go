// Package cart owns the single active cart slice of client state. Every
// mutation is a server round trip whose response replaces the whole cart;
// the store never merges or patches locally, so client totals can not drift
// from the server-computed ones.
package cart

import (
	"context"
	"log"
	"net/url"
	"sync"

	"pharmacy-storefront/internal/domain"
	"pharmacy-storefront/internal/normalize"
	"pharmacy-storefront/internal/notify"
	"pharmacy-storefront/internal/rest"
)

const genericFailure = "Something went wrong. Please try again."

type api interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// Store is an injectable state container; tests and views each construct
// their own instance rather than sharing a package global.
type Store struct {
	api    api
	notify notify.Notifier
	logger *log.Logger

	mu      sync.Mutex
	cart    *domain.Cart
	loading bool
	nextSeq uint64
	applied uint64
}

func New(client api, notifier notify.Notifier, logger *log.Logger) *Store {
	return &Store{api: client, notify: notifier, logger: logger}
}

// Cart returns the current cart, nil when absent.
func (s *Store) Cart() *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

// Loading reports whether any request is in flight. One flag per store:
// overlapping requests share it and the first completion clears it.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Summary is the display-only breakdown: recomputed subtotal, the discount
// delta against the server total, and the server total itself.
type Summary struct {
	Subtotal float64
	Discount float64
	Total    float64
	Items    int
}

func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return Summary{}
	}
	return Summary{
		Subtotal: s.cart.Subtotal(),
		Discount: s.cart.Discount(),
		Total:    s.cart.TotalPrice,
		Items:    s.cart.TotalItems,
	}
}

// Fetch loads the current cart. Any failure, including "guest has no cart"
// (401/404), resets the state to nil without a notification: cart absence
// is not an error to surface.
func (s *Store) Fetch(ctx context.Context) {
	seq := s.begin()
	defer s.finish()

	var raw any
	if err := s.api.Get(ctx, "/cart/", nil, &raw); err != nil {
		if !rest.IsAuthError(err) && !rest.IsNotFound(err) && s.logger != nil {
			s.logger.Printf("fetch cart: %v", err)
		}
		s.apply(seq, nil)
		return
	}
	cart := normalize.Cart(raw)
	s.apply(seq, &cart)
}

// Add puts a product into the cart. Returns a success flag instead of an
// error; the failure is already surfaced through the notifier.
func (s *Store) Add(ctx context.Context, productID string, quantity int) bool {
	if quantity < 1 {
		quantity = 1
	}
	seq := s.begin()
	defer s.finish()

	var raw any
	err := s.api.Post(ctx, "/cart/add/", map[string]any{
		"product_id": productID,
		"quantity":   quantity,
	}, &raw)
	if err != nil {
		s.notify.Error(rest.ServerMessage(err, genericFailure))
		return false
	}
	cart := normalize.Cart(raw)
	s.apply(seq, &cart)
	s.notify.Success("Added to cart")
	return true
}

// UpdateItem changes a line's quantity. Quantities below 1 are rejected
// locally: no request is issued and the state is left untouched.
func (s *Store) UpdateItem(ctx context.Context, itemID string, quantity int) bool {
	if quantity < 1 {
		return false
	}
	seq := s.begin()
	defer s.finish()

	var raw any
	err := s.api.Patch(ctx, "/cart/items/"+itemID+"/", map[string]any{"quantity": quantity}, &raw)
	if err != nil {
		s.notify.Error(rest.ServerMessage(err, genericFailure))
		return false
	}
	cart := normalize.Cart(raw)
	s.apply(seq, &cart)
	return true
}

func (s *Store) RemoveItem(ctx context.Context, itemID string) bool {
	seq := s.begin()
	defer s.finish()

	var raw any
	if err := s.api.Delete(ctx, "/cart/items/"+itemID+"/", &raw); err != nil {
		s.notify.Error(rest.ServerMessage(err, genericFailure))
		return false
	}
	cart := normalize.Cart(raw)
	s.apply(seq, &cart)
	s.notify.Success("Removed from cart")
	return true
}

func (s *Store) Clear(ctx context.Context) bool {
	seq := s.begin()
	defer s.finish()

	var raw any
	if err := s.api.Post(ctx, "/cart/clear/", nil, &raw); err != nil {
		s.notify.Error(rest.ServerMessage(err, genericFailure))
		return false
	}
	s.apply(seq, nil)
	return true
}

// Reset drops local cart state without a server call. Used after checkout
// when the server has already consumed the cart.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = s.nextSeq
	s.cart = nil
}

// begin hands out a monotonically increasing ticket for the request about
// to be issued and raises the shared loading flag.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	s.loading = true
	return s.nextSeq
}

func (s *Store) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

// apply installs a response only if no newer response has been applied
// already, so a slow early request can not clobber the state written by a
// later one.
func (s *Store) apply(seq uint64, cart *domain.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.applied {
		return
	}
	s.applied = seq
	s.cart = cart
}
