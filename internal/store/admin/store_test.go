package admin

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacy-storefront/internal/rest"
)

type call struct {
	method string
	path   string
}

type stubAPI struct {
	calls     []call
	responses map[string]string
	errs      map[string]error
}

func newStubAPI() *stubAPI {
	return &stubAPI{responses: map[string]string{}, errs: map[string]error{}}
}

func (s *stubAPI) record(method, path string, out any) error {
	s.calls = append(s.calls, call{method, path})
	if err := s.errs[method+" "+path]; err != nil {
		return err
	}
	if body := s.responses[path]; body != "" && out != nil {
		return json.Unmarshal([]byte(body), out)
	}
	return nil
}

func (s *stubAPI) Get(_ context.Context, path string, _ url.Values, out any) error {
	return s.record("GET", path, out)
}
func (s *stubAPI) Post(_ context.Context, path string, _, out any) error {
	return s.record("POST", path, out)
}
func (s *stubAPI) Patch(_ context.Context, path string, _, out any) error {
	return s.record("PATCH", path, out)
}
func (s *stubAPI) Put(_ context.Context, path string, _, out any) error {
	return s.record("PUT", path, out)
}
func (s *stubAPI) Delete(_ context.Context, path string, out any) error {
	return s.record("DELETE", path, out)
}

type captureNotifier struct {
	successes []string
	errors    []string
}

func (c *captureNotifier) Success(msg string) { c.successes = append(c.successes, msg) }
func (c *captureNotifier) Error(msg string)   { c.errors = append(c.errors, msg) }

func TestCreateProductRefetchesCanonicalList(t *testing.T) {
	api := newStubAPI()
	api.responses["/admin/products/"] = `{"count": 1, "results": [{"id": 1, "name": "Paracetamol", "price": 45000}]}`
	notifier := &captureNotifier{}
	store := New(api, notifier, nil)

	ok := store.CreateProduct(context.Background(), ProductInput{Name: "Paracetamol", Price: 45000})

	require.True(t, ok)
	// Write first, then a re-fetch of the canonical list; the local state
	// is whatever the server returned, not the submitted input.
	require.Equal(t, []call{{"POST", "/admin/products/"}, {"GET", "/admin/products/"}}, api.calls)
	assert.Equal(t, 1, store.Products().Count)
	assert.Equal(t, []string{"Product created"}, notifier.successes)
}

func TestWriteFailureSkipsRefetch(t *testing.T) {
	api := newStubAPI()
	api.errs["PATCH /admin/orders/7/status/"] = &rest.APIError{Status: 400, Message: "Invalid status transition"}
	notifier := &captureNotifier{}
	store := New(api, notifier, nil)

	ok := store.UpdateOrderStatus(context.Background(), "7", "COMPLETED")

	assert.False(t, ok)
	require.Len(t, api.calls, 1)
	require.Len(t, notifier.errors, 1)
	assert.Equal(t, "Invalid status transition", notifier.errors[0])
}

func TestRefetchFailureDoesNotFailTheWrite(t *testing.T) {
	api := newStubAPI()
	api.errs["GET /admin/vouchers/"] = &rest.APIError{Status: 500}
	notifier := &captureNotifier{}
	store := New(api, notifier, nil)

	ok := store.CreateVoucher(context.Background(), VoucherInput{Code: "SALE10", DiscountType: "percent", DiscountValue: 10})

	// The write landed; a stale list is repaired by the next load.
	assert.True(t, ok)
	assert.Equal(t, []string{"Voucher created"}, notifier.successes)
}

func TestDeleteCategoryRefetchesTree(t *testing.T) {
	api := newStubAPI()
	api.responses["/categories/tree/"] = `[{"id": 1, "name": "Medicine", "is_active": true}]`
	store := New(api, &captureNotifier{}, nil)

	require.True(t, store.DeleteCategory(context.Background(), "2"))
	require.Equal(t, []call{{"DELETE", "/admin/categories/2/"}, {"GET", "/categories/tree/"}}, api.calls)
	require.Len(t, store.Categories(), 1)
}

func TestFlashSaleItemManagement(t *testing.T) {
	api := newStubAPI()
	api.responses["/admin/flash-sale/sessions/"] = `{"count": 1, "results": [
		{"id": 1, "name": "Morning deal", "is_active": true, "items": [
			{"id": 9, "sale_price": 19000, "total_quantity": 50, "remaining_quantity": 50, "sold_quantity": 0, "product": {"id": 2, "name": "Vitamin C"}}
		]}
	]}`
	store := New(api, &captureNotifier{}, nil)

	require.True(t, store.AddFlashSaleItem(context.Background(), "1", FlashSaleItemInput{ProductID: "2", SalePrice: 19000, TotalQuantity: 50}))

	sessions := store.FlashSaleSessions()
	require.Len(t, sessions.Results, 1)
	require.Len(t, sessions.Results[0].Items, 1)
	item := sessions.Results[0].Items[0]
	assert.Equal(t, item.TotalQuantity, item.RemainingQuantity+item.SoldQuantity)
}

func TestSetCustomerActiveMessages(t *testing.T) {
	api := newStubAPI()
	api.responses["/admin/customers/"] = `{"count": 1, "results": [{"id": 3, "email": "a@b.c", "is_active": false}]}`
	notifier := &captureNotifier{}
	store := New(api, notifier, nil)

	require.True(t, store.SetCustomerActive(context.Background(), "3", false))
	require.True(t, store.SetCustomerActive(context.Background(), "3", true))
	assert.Equal(t, []string{"Customer deactivated", "Customer activated"}, notifier.successes)
	assert.False(t, store.Customers().Results[0].IsActive)
}

func TestLoadFailureNotifies(t *testing.T) {
	api := newStubAPI()
	api.errs["GET /admin/banners/"] = &rest.APIError{Status: 500, Message: "boom"}
	notifier := &captureNotifier{}
	store := New(api, notifier, nil)

	assert.False(t, store.LoadBanners(context.Background()))
	require.Len(t, notifier.errors, 1)
	assert.Equal(t, "boom", notifier.errors[0])
}
