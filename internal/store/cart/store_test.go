package cart

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacy-storefront/internal/rest"
)

type stubAPI struct {
	mu        sync.Mutex
	calls     []string
	responses map[string]string
	errs      map[string]error
	gate      map[string]chan struct{}
	entered   map[string]chan struct{}
}

func newStubAPI() *stubAPI {
	return &stubAPI{
		responses: map[string]string{},
		errs:      map[string]error{},
		gate:      map[string]chan struct{}{},
		entered:   map[string]chan struct{}{},
	}
}

func (s *stubAPI) respond(path string, out any) error {
	s.mu.Lock()
	s.calls = append(s.calls, path)
	gate := s.gate[path]
	entered := s.entered[path]
	delete(s.entered, path)
	err := s.errs[path]
	body := s.responses[path]
	s.mu.Unlock()

	if entered != nil {
		close(entered)
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return err
	}
	if out != nil && body != "" {
		return json.Unmarshal([]byte(body), out)
	}
	return nil
}

func (s *stubAPI) Get(_ context.Context, path string, _ url.Values, out any) error {
	return s.respond(path, out)
}
func (s *stubAPI) Post(_ context.Context, path string, _ any, out any) error {
	return s.respond(path, out)
}
func (s *stubAPI) Patch(_ context.Context, path string, _ any, out any) error {
	return s.respond(path, out)
}
func (s *stubAPI) Delete(_ context.Context, path string, out any) error {
	return s.respond(path, out)
}

func (s *stubAPI) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type captureNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (c *captureNotifier) Success(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.successes = append(c.successes, msg)
}

func (c *captureNotifier) Error(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, msg)
}

const serverCart = `{
	"id": 1,
	"items": [
		{"id": 10, "product_id": 5, "name": "Paracetamol", "unit_price": 100, "quantity": 1, "total_price": 100},
		{"id": 11, "product_id": 6, "name": "Vitamin C", "unit_price": 200, "quantity": 2, "total_price": 400}
	],
	"total_price": 450,
	"total_items": 3
}`

func TestAddReplacesCartWholesale(t *testing.T) {
	api := newStubAPI()
	api.responses["/cart/add/"] = serverCart
	notifier := &captureNotifier{}
	store := New(api, notifier, nil)

	ok := store.Add(context.Background(), "5", 1)

	require.True(t, ok)
	cart := store.Cart()
	require.NotNil(t, cart)
	// The state is exactly the server's cart, never a local merge.
	assert.Equal(t, "1", cart.ID)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, 450.0, cart.TotalPrice)
	assert.Equal(t, []string{"Added to cart"}, notifier.successes)
}

func TestAddDefaultsQuantityToOne(t *testing.T) {
	api := newStubAPI()
	api.responses["/cart/add/"] = serverCart
	store := New(api, &captureNotifier{}, nil)

	require.True(t, store.Add(context.Background(), "5", 0))
	assert.Equal(t, 1, api.callCount())
}

func TestAddFailureSurfacesServerMessage(t *testing.T) {
	api := newStubAPI()
	api.errs["/cart/add/"] = &rest.APIError{Status: 400, Message: "Product is out of stock"}
	notifier := &captureNotifier{}
	store := New(api, notifier, nil)

	ok := store.Add(context.Background(), "5", 1)

	assert.False(t, ok)
	assert.Nil(t, store.Cart())
	require.Len(t, notifier.errors, 1)
	assert.Equal(t, "Product is out of stock", notifier.errors[0])
}

func TestAddFailureGenericFallback(t *testing.T) {
	api := newStubAPI()
	api.errs["/cart/add/"] = context.DeadlineExceeded
	notifier := &captureNotifier{}
	store := New(api, notifier, nil)

	store.Add(context.Background(), "5", 1)

	require.Len(t, notifier.errors, 1)
	assert.Equal(t, genericFailure, notifier.errors[0])
}

func TestUpdateItemQuantityGuard(t *testing.T) {
	api := newStubAPI()
	api.responses["/cart/add/"] = serverCart
	notifier := &captureNotifier{}
	store := New(api, notifier, nil)
	store.Add(context.Background(), "5", 1)
	before := store.Cart()
	calls := api.callCount()

	for _, qty := range []int{0, -1, -100} {
		ok := store.UpdateItem(context.Background(), "10", qty)
		assert.False(t, ok, "quantity %d must be rejected", qty)
	}

	// No network call was issued and the state is untouched.
	assert.Equal(t, calls, api.callCount())
	assert.Equal(t, before, store.Cart())
	assert.Empty(t, notifier.errors)
}

func TestFetchFailureResetsSilently(t *testing.T) {
	api := newStubAPI()
	api.responses["/cart/add/"] = serverCart
	notifier := &captureNotifier{}
	store := New(api, notifier, nil)
	store.Add(context.Background(), "5", 1)
	require.NotNil(t, store.Cart())

	api.errs["/cart/"] = &rest.APIError{Status: 401}
	store.Fetch(context.Background())

	assert.Nil(t, store.Cart())
	// Guest-cart-absent is not an error to surface.
	assert.Empty(t, notifier.errors)
}

func TestClearEmptiesState(t *testing.T) {
	api := newStubAPI()
	api.responses["/cart/add/"] = serverCart
	api.responses["/cart/clear/"] = `{"id": 1, "items": [], "total_price": 0, "total_items": 0}`
	store := New(api, &captureNotifier{}, nil)
	store.Add(context.Background(), "5", 1)

	require.True(t, store.Clear(context.Background()))
	assert.Nil(t, store.Cart())
}

func TestSummaryDisplaysDiscountDelta(t *testing.T) {
	api := newStubAPI()
	api.responses["/cart/"] = serverCart
	store := New(api, &captureNotifier{}, nil)
	store.Fetch(context.Background())

	sum := store.Summary()

	// Unit prices 100x1 and 200x2 give subtotal 500; the server total of
	// 450 must surface as a -50 discount line.
	assert.Equal(t, 500.0, sum.Subtotal)
	assert.Equal(t, 50.0, sum.Discount)
	assert.Equal(t, 450.0, sum.Total)
	assert.Equal(t, 3, sum.Items)
}

func TestStaleResponseDiscarded(t *testing.T) {
	api := newStubAPI()
	api.responses["/cart/items/10/"] = `{"id": 1, "items": [{"id": 10, "quantity": 5, "unit_price": 100, "total_price": 500}], "total_price": 500, "total_items": 5}`
	api.responses["/cart/clear/"] = `{"id": 1, "items": [], "total_price": 0, "total_items": 0}`
	release := make(chan struct{})
	entered := make(chan struct{})
	api.gate["/cart/items/10/"] = release
	api.entered["/cart/items/10/"] = entered
	store := New(api, &captureNotifier{}, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		store.UpdateItem(context.Background(), "10", 5)
	}()
	<-entered

	// The clear is issued after the update and completes first.
	require.True(t, store.Clear(context.Background()))
	assert.Nil(t, store.Cart())

	close(release)
	<-done

	// The late update response is older than the applied clear and must be
	// discarded instead of resurrecting the cart.
	assert.Nil(t, store.Cart())
}

func TestResetDropsStateWithoutCall(t *testing.T) {
	api := newStubAPI()
	api.responses["/cart/add/"] = serverCart
	store := New(api, &captureNotifier{}, nil)
	store.Add(context.Background(), "5", 1)
	calls := api.callCount()

	store.Reset()

	assert.Nil(t, store.Cart())
	assert.Equal(t, calls, api.callCount())
}
