package order

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacy-storefront/internal/domain"
	"pharmacy-storefront/internal/rest"
)

type stubAPI struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	rawBodies map[string][]byte
	lastBody  any
	lastPath  string
}

func newStubAPI() *stubAPI {
	return &stubAPI{responses: map[string]string{}, errs: map[string]error{}, rawBodies: map[string][]byte{}}
}

func (s *stubAPI) Get(_ context.Context, path string, _ url.Values, out any) error {
	return s.respond(path, out)
}

func (s *stubAPI) Post(_ context.Context, path string, body, out any) error {
	s.mu.Lock()
	s.lastBody = body
	s.mu.Unlock()
	return s.respond(path, out)
}

func (s *stubAPI) GetRaw(_ context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPath = path
	if err := s.errs[path]; err != nil {
		return nil, err
	}
	return s.rawBodies[path], nil
}

func (s *stubAPI) respond(path string, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPath = path
	if err := s.errs[path]; err != nil {
		return err
	}
	if body := s.responses[path]; body != "" && out != nil {
		return json.Unmarshal([]byte(body), out)
	}
	return nil
}

type stubCart struct{ resets int }

func (s *stubCart) Reset() { s.resets++ }

type captureNotifier struct {
	successes []string
	errors    []string
}

func (c *captureNotifier) Success(msg string) { c.successes = append(c.successes, msg) }
func (c *captureNotifier) Error(msg string)   { c.errors = append(c.errors, msg) }

func TestCheckoutCreatesOrderAndResetsCart(t *testing.T) {
	api := newStubAPI()
	api.responses["/orders/"] = `{"id": 8, "order_number": "ORD-2025-0008", "status": "PENDING", "total_amount": 470}`
	cart := &stubCart{}
	notifier := &captureNotifier{}
	store := New(api, cart, notifier, nil)

	created, ok := store.Checkout(context.Background(), CheckoutInput{
		ReceiverName:  "Nguyen Van A",
		ReceiverPhone: "0900000000",
		ShippingAddr:  "1 Le Loi, HCMC",
		PaymentMethod: "COD",
	})

	require.True(t, ok)
	require.NotNil(t, created)
	assert.Equal(t, "ORD-2025-0008", created.OrderNumber)
	assert.Equal(t, 1, cart.resets)
	require.Len(t, notifier.successes, 1)

	body, isMap := api.lastBody.(map[string]any)
	require.True(t, isMap)
	assert.Equal(t, "COD", body["payment_method"])
	_, hasVoucher := body["voucher_code"]
	assert.False(t, hasVoucher, "empty voucher code must be omitted")
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	api := newStubAPI()
	api.errs["/orders/"] = &rest.APIError{Status: 400, Message: "Cart is empty"}
	cart := &stubCart{}
	notifier := &captureNotifier{}
	store := New(api, cart, notifier, nil)

	created, ok := store.Checkout(context.Background(), CheckoutInput{PaymentMethod: "COD"})

	assert.False(t, ok)
	assert.Nil(t, created)
	assert.Zero(t, cart.resets)
	require.Len(t, notifier.errors, 1)
	assert.Equal(t, "Cart is empty", notifier.errors[0])
}

func TestMyOrdersAuthFailureIsAbsence(t *testing.T) {
	api := newStubAPI()
	api.errs["/orders/my-orders/"] = &rest.APIError{Status: 401}
	notifier := &captureNotifier{}
	store := New(api, nil, notifier, nil)

	orders := store.MyOrders(context.Background())

	assert.Empty(t, orders)
	assert.Empty(t, notifier.errors)
}

func TestMyOrdersServerFailureNotifies(t *testing.T) {
	api := newStubAPI()
	api.errs["/orders/my-orders/"] = &rest.APIError{Status: 500, Message: "boom"}
	notifier := &captureNotifier{}
	store := New(api, nil, notifier, nil)

	store.MyOrders(context.Background())

	require.Len(t, notifier.errors, 1)
}

func TestMyOrdersNormalizesEnvelope(t *testing.T) {
	api := newStubAPI()
	api.responses["/orders/my-orders/"] = `{"count": 1, "results": [
		{"id": 1, "order_number": "ORD-1", "status": "SHIPPING", "total_amount": "120000.00"}
	]}`
	store := New(api, nil, &captureNotifier{}, nil)

	orders := store.MyOrders(context.Background())

	require.Len(t, orders, 1)
	assert.Equal(t, 120000.0, orders[0].TotalAmount)
	assert.Equal(t, orders, store.Orders())
}

func TestCheckVoucherForwardsIDsAndPassesVerdictThrough(t *testing.T) {
	api := newStubAPI()
	api.responses["/vouchers/calculate/"] = `{"valid": true, "discount_amount": 50, "order_total": 500, "final_total": 450}`
	store := New(api, nil, &captureNotifier{}, nil)

	items := []domain.CartItem{
		{ProductID: "10", CategoryID: "3"},
		{ProductID: "11", CategoryID: "3"},
	}
	res, err := store.CheckVoucher(context.Background(), "SALE10", 500, items)

	require.NoError(t, err)
	assert.True(t, res.Valid)
	// The UI shows the server's final_total, never a recomputation.
	assert.Equal(t, 450.0, res.FinalTotal)
	assert.Equal(t, 50.0, res.DiscountAmount)

	body, isMap := api.lastBody.(map[string]any)
	require.True(t, isMap)
	assert.Equal(t, "SALE10", body["code"])
	assert.Equal(t, 500.0, body["order_total"])
	assert.Equal(t, []string{"10", "11"}, body["product_ids"])
	assert.Equal(t, []string{"3"}, body["category_ids"])
}

func TestCheckVoucherRejectionIsAResultNotAnError(t *testing.T) {
	api := newStubAPI()
	api.responses["/vouchers/calculate/"] = `{"valid": false, "error_code": "MIN_ORDER", "error_message": "Order total too low", "order_total": 100, "final_total": 100}`
	store := New(api, nil, &captureNotifier{}, nil)

	res, err := store.CheckVoucher(context.Background(), "SALE10", 100, nil)

	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "MIN_ORDER", res.ErrorCode)
	assert.Equal(t, "Order total too low", res.ErrorMessage)
}

func TestInvoice(t *testing.T) {
	api := newStubAPI()
	api.rawBodies["/orders/8/invoice/"] = []byte("%PDF-1.7 fake")
	store := New(api, nil, &captureNotifier{}, nil)

	data, err := store.Invoice(context.Background(), "8")

	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7 fake"), data)
}
