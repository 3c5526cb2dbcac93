package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"pharmacy-storefront/internal/domain"
	productrepo "pharmacy-storefront/internal/replica/repository/product"
	promorepo "pharmacy-storefront/internal/replica/repository/promo"
	tokenrepo "pharmacy-storefront/internal/replica/repository/token"
	customersvc "pharmacy-storefront/internal/replica/service/customer"
	ordersvc "pharmacy-storefront/internal/replica/service/order"
	promosvc "pharmacy-storefront/internal/replica/service/promo"
)

// In-memory repositories back the real customer service so handler tests run
// the same auth path as production.

type memCustomers struct {
	byID map[string]*domain.Customer
	seq  int
}

func (m *memCustomers) Create(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	for _, existing := range m.byID {
		if existing.Email == c.Email {
			return nil, domain.ErrAlreadyExists
		}
	}
	m.seq++
	c.ID = fmt.Sprintf("cust-%d", m.seq)
	c.IsActive = true
	m.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (m *memCustomers) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	for _, c := range m.byID {
		if c.Email == strings.ToLower(email) {
			out := *c
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memCustomers) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (m *memCustomers) List(_ context.Context, _, _ int) ([]domain.Customer, int, error) {
	var out []domain.Customer
	for _, c := range m.byID {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *memCustomers) UpdateProfile(_ context.Context, id, fullName, phone, address string) (*domain.Customer, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c.FullName, c.Phone, c.Address = fullName, phone, address
	out := *c
	return &out, nil
}

func (m *memCustomers) SetActive(_ context.Context, id string, active bool) (*domain.Customer, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c.IsActive = active
	out := *c
	return &out, nil
}

type memTokens struct {
	byToken map[string]tokenrepo.Token
}

func (m *memTokens) Create(_ context.Context, t tokenrepo.Token) error {
	if _, exists := m.byToken[t.Token]; exists {
		return domain.ErrAlreadyExists
	}
	m.byToken[t.Token] = t
	return nil
}

func (m *memTokens) Get(_ context.Context, token string) (*tokenrepo.Token, error) {
	t, ok := m.byToken[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (m *memTokens) Delete(_ context.Context, token string) error {
	delete(m.byToken, token)
	return nil
}

func (m *memTokens) DeleteForCustomer(_ context.Context, customerID string) error {
	for k, t := range m.byToken {
		if t.CustomerID == customerID {
			delete(m.byToken, k)
		}
	}
	return nil
}

type stubProducts struct {
	productrepo.Repository

	list       []domain.Product
	total      int
	lastFilter productrepo.Filter
	bySlug     map[string]*domain.Product
}

func (s *stubProducts) List(_ context.Context, f productrepo.Filter) ([]domain.Product, int, error) {
	s.lastFilter = f
	return s.list, s.total, nil
}

func (s *stubProducts) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	p, ok := s.bySlug[slug]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *stubProducts) Suggest(_ context.Context, _ string, _ int) ([]string, error) {
	return []string{"Paracetamol 500mg"}, nil
}

type stubCarts struct {
	cart   *domain.Cart
	addErr error
}

func (s *stubCarts) GetByCustomer(_ context.Context, _ string) (*domain.Cart, error) {
	return s.cart, nil
}

func (s *stubCarts) AddItem(_ context.Context, _, productID string, quantity int) (*domain.Cart, error) {
	if s.addErr != nil {
		return nil, s.addErr
	}
	s.cart.Items = append(s.cart.Items, domain.CartItem{ID: "l1", ProductID: productID, Quantity: quantity})
	s.cart.TotalItems += quantity
	return s.cart, nil
}

func (s *stubCarts) UpdateItem(_ context.Context, _, itemID string, _ int) (*domain.Cart, error) {
	for _, item := range s.cart.Items {
		if item.ID == itemID {
			return s.cart, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubCarts) RemoveItem(_ context.Context, _, _ string) (*domain.Cart, error) {
	return s.cart, nil
}

func (s *stubCarts) Clear(_ context.Context, _ string) (*domain.Cart, error) {
	s.cart.Items = nil
	s.cart.TotalItems = 0
	return s.cart, nil
}

type stubPromoRepo struct {
	promorepo.Repository

	voucher *domain.Voucher
}

func (s *stubPromoRepo) VoucherByCode(_ context.Context, code string) (*domain.Voucher, error) {
	if s.voucher == nil || s.voucher.Code != code {
		return nil, domain.ErrNotFound
	}
	return s.voucher, nil
}

func (s *stubPromoRepo) VoucherScope(_ context.Context, _ string) (*promorepo.VoucherScope, error) {
	return &promorepo.VoucherScope{}, nil
}

func (s *stubPromoRepo) ActiveItemForProduct(_ context.Context, _ string, _ time.Time) (*domain.FlashSaleItem, error) {
	return nil, domain.ErrNotFound
}

func (s *stubPromoRepo) ListBanners(_ context.Context, _ bool) ([]domain.Banner, error) {
	return []domain.Banner{{ID: "b1", Title: "Free shipping"}}, nil
}

type fixture struct {
	router    *gin.Engine
	customers *memCustomers
	products  *stubProducts
	carts     *stubCarts
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	customers := &memCustomers{byID: map[string]*domain.Customer{}}
	tokens := &memTokens{byToken: map[string]tokenrepo.Token{}}
	products := &stubProducts{bySlug: map[string]*domain.Product{}}
	carts := &stubCarts{cart: &domain.Cart{ID: "c1"}}

	customerService := customersvc.New(customers, tokens)
	promoService := promosvc.New(&stubPromoRepo{voucher: &domain.Voucher{
		ID: "v1", Code: "SAVE10", DiscountType: "PERCENT", DiscountValue: 10,
		IsActive: true, UsageLimit: 0, EndsAt: time.Now().Add(24 * time.Hour),
	}})
	orderService := ordersvc.New(carts, nil, promoService, nil)

	logger := log.New(io.Discard, "", 0)
	router := buildRouter(logger, nil, Deps{
		Products:  products,
		Carts:     carts,
		Customers: customerService,
		Orders:    orderService,
		Promos:    promoService,
	}, nil)

	return &fixture{router: router, customers: customers, products: products, carts: carts}
}

func (f *fixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// signup registers an account through the API and returns its bearer token.
func (f *fixture) signup(t *testing.T, email string, staff bool) string {
	t.Helper()
	rec := f.do(http.MethodPost, "/api/auth/register/", "", map[string]string{
		"email": email, "password": "longenough", "full_name": "Test User",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
		Customer    struct {
			ID string `json:"id"`
		} `json:"customer"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("register response: %v", err)
	}
	if staff {
		f.customers.byID[resp.Customer.ID].IsStaff = true
	}
	return resp.AccessToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListProductsEnvelope(t *testing.T) {
	f := newFixture(t)
	f.products.list = []domain.Product{{ID: "p1", Name: "A"}, {ID: "p2", Name: "B"}}
	f.products.total = 5

	rec := f.do(http.MethodGet, "/api/products/?page=1&page_size=2&category=medicines&on_sale=true", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}

	body := decode(t, rec)
	if body["count"].(float64) != 5 {
		t.Fatalf("count = %v", body["count"])
	}
	if body["next"] == nil {
		t.Fatal("expected next page link")
	}
	if body["previous"] != nil {
		t.Fatalf("previous = %v", body["previous"])
	}
	if len(body["results"].([]any)) != 2 {
		t.Fatalf("results = %v", body["results"])
	}

	if f.products.lastFilter.CategorySlug != "medicines" {
		t.Fatalf("category filter = %q", f.products.lastFilter.CategorySlug)
	}
	if f.products.lastFilter.OnSale == nil || !*f.products.lastFilter.OnSale {
		t.Fatal("on_sale filter not parsed")
	}
}

func TestFeaturedProductsBareArray(t *testing.T) {
	f := newFixture(t)
	f.products.list = []domain.Product{{ID: "p1", Name: "A", IsFeatured: true}}

	rec := f.do(http.MethodGet, "/api/products/featured/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "[") {
		t.Fatalf("expected a bare array, got %s", rec.Body.String())
	}
	if f.products.lastFilter.Featured == nil || !*f.products.lastFilter.Featured {
		t.Fatal("featured filter not forced")
	}
}

func TestProductBySlugNotFound(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/products/missing/", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if decode(t, rec)["error_code"] != "NOT_FOUND" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestCartRequiresAuth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/cart/", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if decode(t, rec)["error_code"] != "UNAUTHORIZED" {
		t.Fatalf("body = %s", rec.Body.String())
	}

	rec = f.do(http.MethodGet, "/api/cart/", "not-a-real-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bogus token status = %d", rec.Code)
	}
}

func TestAddCartItem(t *testing.T) {
	f := newFixture(t)
	token := f.signup(t, "shopper@example.com", false)

	rec := f.do(http.MethodPost, "/api/cart/add/", token, map[string]any{"product_id": "p1", "quantity": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	if decode(t, rec)["total_items"].(float64) != 2 {
		t.Fatalf("body = %s", rec.Body.String())
	}

	rec = f.do(http.MethodPost, "/api/cart/add/", token, map[string]any{"quantity": 2})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing product_id status = %d", rec.Code)
	}

	f.carts.addErr = domain.ErrOutOfStock
	rec = f.do(http.MethodPost, "/api/cart/add/", token, map[string]any{"product_id": "p1"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("out of stock status = %d", rec.Code)
	}
	if decode(t, rec)["error_code"] != "OUT_OF_STOCK" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

// The cart mutation paths must match what the storefront cart store calls:
// POST /cart/add/ and POST /cart/clear/, with item edits under /cart/items/.
func TestCartRoutesMatchClientPaths(t *testing.T) {
	f := newFixture(t)
	token := f.signup(t, "shopper@example.com", false)

	rec := f.do(http.MethodPost, "/api/cart/add/", token, map[string]any{"product_id": "p1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d", rec.Code)
	}

	rec = f.do(http.MethodPatch, "/api/cart/items/l1/", token, map[string]any{"quantity": 3})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d body %s", rec.Code, rec.Body.String())
	}

	rec = f.do(http.MethodPost, "/api/cart/clear/", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d", rec.Code)
	}
	if decode(t, rec)["total_items"].(float64) != 0 {
		t.Fatalf("body = %s", rec.Body.String())
	}

	rec = f.do(http.MethodDelete, "/api/cart/items/l1/", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove status = %d", rec.Code)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)
	token := f.signup(t, "shopper@example.com", false)

	rec := f.do(http.MethodPost, "/api/orders/", token, map[string]string{
		"receiver_name": "Alex", "receiver_phone": "0900", "shipping_address": "12 Main St",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	if decode(t, rec)["error_code"] != "EMPTY_CART" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestCalculateVoucher(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/vouchers/calculate/", "", map[string]any{"order_total": 100})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing code status = %d", rec.Code)
	}

	rec = f.do(http.MethodPost, "/api/vouchers/calculate/", "", map[string]any{"code": "NOPE", "order_total": 100})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode(t, rec)
	if body["valid"] != false || body["error_code"] != "INVALID_CODE" {
		t.Fatalf("body = %s", rec.Body.String())
	}

	rec = f.do(http.MethodPost, "/api/vouchers/calculate/", "", map[string]any{"code": "SAVE10", "order_total": 100})
	body = decode(t, rec)
	if body["valid"] != true {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if body["discount_amount"].(float64) != 10 {
		t.Fatalf("discount = %v", body["discount_amount"])
	}
	info, ok := body["voucher_info"].(map[string]any)
	if !ok || info["code"] != "SAVE10" {
		t.Fatalf("voucher_info = %v", body["voucher_info"])
	}
}

func TestAdminRequiresStaff(t *testing.T) {
	f := newFixture(t)
	shopper := f.signup(t, "shopper@example.com", false)
	admin := f.signup(t, "admin@example.com", true)

	rec := f.do(http.MethodGet, "/api/admin/products/", shopper, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-staff status = %d", rec.Code)
	}
	if decode(t, rec)["error_code"] != "FORBIDDEN" {
		t.Fatalf("body = %s", rec.Body.String())
	}

	rec = f.do(http.MethodGet, "/api/admin/products/", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("staff status = %d body %s", rec.Code, rec.Body.String())
	}
}

func TestLoginFlow(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "shopper@example.com", false)

	rec := f.do(http.MethodPost, "/api/auth/login/", "", map[string]string{
		"email": "shopper@example.com", "password": "longenough",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	token := decode(t, rec)["access_token"].(string)

	rec = f.do(http.MethodGet, "/api/auth/profile/", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile status = %d", rec.Code)
	}
	if decode(t, rec)["email"] != "shopper@example.com" {
		t.Fatalf("profile body = %s", rec.Body.String())
	}

	rec = f.do(http.MethodPost, "/api/auth/login/", "", map[string]string{
		"email": "shopper@example.com", "password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d", rec.Code)
	}
	if decode(t, rec)["error_code"] != "INVALID_CREDENTIALS" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	f := newFixture(t)
	token := f.signup(t, "shopper@example.com", false)

	rec := f.do(http.MethodPost, "/api/auth/logout/", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}

	rec = f.do(http.MethodGet, "/api/auth/profile/", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("post-logout status = %d", rec.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "shopper@example.com", false)

	rec := f.do(http.MethodPost, "/api/auth/register/", "", map[string]string{
		"email": "shopper@example.com", "password": "longenough",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	if decode(t, rec)["error_code"] != "EMAIL_TAKEN" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestSuggest(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/search/suggest/?q=para", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	suggestions := decode(t, rec)["suggestions"].([]any)
	if len(suggestions) != 1 || suggestions[0] != "Paracetamol 500mg" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
