// Package order covers the checkout write path and the order read path.
// Orders are append-only from the client's perspective: once created they
// are only listed, displayed and cancelled, never edited.
package order

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

const genericFailure = "Could not complete the order. Please try again."

type api interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	GetRaw(ctx context.Context, path string) ([]byte, error)
}

// cartResetter is the slice of the cart store checkout needs: dropping
// local cart state after the server consumed the cart.
type cartResetter interface {
	Reset()
}

type Store struct {
	api    api
	cart   cartResetter
	notify notify.Notifier
	logger *log.Logger

	mu      sync.Mutex
	orders  []domain.Order
	loading bool
}

func New(client api, cart cartResetter, notifier notify.Notifier, logger *log.Logger) *Store {
	return &Store{api: client, cart: cart, notify: notifier, logger: logger}
}

func (s *Store) Orders() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// CheckoutInput carries the shipping and payment details for order
// creation. Line items come from the server-side cart, not from here.
type CheckoutInput struct {
	ReceiverName  string
	ReceiverPhone string
	ShippingAddr  string
	PaymentMethod string
	VoucherCode   string
	Note          string
}

// Checkout creates an order from the current cart, then drops local cart
// state. The two steps are sequential with no compensation: if order
// creation succeeds the cart is gone server-side regardless of what the
// client does next.
func (s *Store) Checkout(ctx context.Context, in CheckoutInput) (*domain.Order, bool) {
	s.setLoading(true)
	defer s.setLoading(false)

	body := map[string]any{
		"receiver_name":    in.ReceiverName,
		"receiver_phone":   in.ReceiverPhone,
		"shipping_address": in.ShippingAddr,
		"payment_method":   in.PaymentMethod,
	}
	if in.VoucherCode != "" {
		body["voucher_code"] = in.VoucherCode
	}
	if in.Note != "" {
		body["note"] = in.Note
	}

	var raw any
	if err := s.api.Post(ctx, "/orders/", body, &raw); err != nil {
		s.notify.Error(rest.ServerMessage(err, genericFailure))
		return nil, false
	}
	created := normalize.Order(raw)
	if s.cart != nil {
		s.cart.Reset()
	}
	s.notify.Success("Order " + created.OrderNumber + " placed")
	return &created, true
}

// MyOrders loads the caller's order history into store state. Auth failures
// are absence: an empty list, no notification.
func (s *Store) MyOrders(ctx context.Context) []domain.Order {
	s.setLoading(true)
	defer s.setLoading(false)

	var raw any
	if err := s.api.Get(ctx, "/orders/my-orders/", nil, &raw); err != nil {
		if !rest.IsAuthError(err) {
			s.notify.Error(rest.ServerMessage(err, "Could not load orders."))
		}
		s.mu.Lock()
		s.orders = nil
		s.mu.Unlock()
		return nil
	}
	orders := normalize.OrderPage(raw).Results
	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()
	return orders
}

func (s *Store) Order(ctx context.Context, id string) (domain.Order, error) {
	var raw any
	if err := s.api.Get(ctx, "/orders/"+id+"/", nil, &raw); err != nil {
		return domain.Order{}, err
	}
	return normalize.Order(raw), nil
}

// Invoice fetches the rendered invoice document for an order.
func (s *Store) Invoice(ctx context.Context, id string) ([]byte, error) {
	return s.api.GetRaw(ctx, "/orders/"+id+"/invoice/")
}

// CheckVoucher forwards the code together with the ids extracted from the
// cart lines for server-side validation. The verdict is passed through
// verbatim; no discount math happens here.
func (s *Store) CheckVoucher(ctx context.Context, code string, orderTotal float64, items []domain.CartItem) (domain.VoucherResult, error) {
	productIDs := make([]string, 0, len(items))
	categoryIDs := make([]string, 0, len(items))
	seenCategory := map[string]bool{}
	for _, item := range items {
		if item.ProductID != "" {
			productIDs = append(productIDs, item.ProductID)
		}
		if item.CategoryID != "" && !seenCategory[item.CategoryID] {
			seenCategory[item.CategoryID] = true
			categoryIDs = append(categoryIDs, item.CategoryID)
		}
	}

	var raw any
	err := s.api.Post(ctx, "/vouchers/calculate/", map[string]any{
		"code":         code,
		"order_total":  orderTotal,
		"product_ids":  productIDs,
		"category_ids": categoryIDs,
	}, &raw)
	if err != nil {
		return domain.VoucherResult{}, err
	}
	return normalize.VoucherResult(raw), nil
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
}
