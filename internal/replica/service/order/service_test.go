package order

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pharmacy-storefront/internal/domain"
	orderrepo "pharmacy-storefront/internal/replica/repository/order"
	promosvc "pharmacy-storefront/internal/replica/service/promo"
)

type stubCarts struct {
	cart *domain.Cart
	err  error
}

func (s *stubCarts) GetByCustomer(_ context.Context, _ string) (*domain.Cart, error) {
	return s.cart, s.err
}

type stubOrders struct {
	orderrepo.Repository

	lastCreate orderrepo.CreateInput
	createErr  error

	byID      *domain.Order
	byIDErr   error
	newStatus string
}

func (s *stubOrders) Create(_ context.Context, in orderrepo.CreateInput) (*domain.Order, error) {
	s.lastCreate = in
	if s.createErr != nil {
		return nil, s.createErr
	}
	out := in.Order
	out.ID = "o1"
	out.Status = domain.OrderPending
	return &out, nil
}

func (s *stubOrders) GetByID(_ context.Context, _ string) (*domain.Order, error) {
	return s.byID, s.byIDErr
}

func (s *stubOrders) GetForCustomer(_ context.Context, _, _ string) (*domain.Order, error) {
	return s.byID, s.byIDErr
}

func (s *stubOrders) UpdateStatus(_ context.Context, _, status string) (*domain.Order, error) {
	s.newStatus = status
	out := *s.byID
	out.Status = status
	return &out, nil
}

type stubPromos struct {
	verdict  *domain.VoucherResult
	items    map[string]*domain.FlashSaleItem
	lastCode string
}

func (s *stubPromos) Check(_ context.Context, in promosvc.CheckInput) (*domain.VoucherResult, error) {
	s.lastCode = in.Code
	return s.verdict, nil
}

func (s *stubPromos) ProductCheck(_ context.Context, productID string) (*domain.FlashSaleItem, error) {
	return s.items[productID], nil
}

// twoLineCart has list prices summing to 500 while effective line totals sum
// to 450, mirroring a cart with one discounted product.
func twoLineCart() *domain.Cart {
	return &domain.Cart{
		ID: "c1",
		Items: []domain.CartItem{
			{ID: "l1", ProductID: "p1", CategoryID: "cat-1", Name: "Paracetamol", UnitPrice: 100, Quantity: 1, TotalPrice: 50},
			{ID: "l2", ProductID: "p2", CategoryID: "cat-2", Name: "Vitamin C", UnitPrice: 200, Quantity: 2, TotalPrice: 400},
		},
		TotalPrice: 450,
		TotalItems: 3,
	}
}

func checkoutInput() CheckoutInput {
	return CheckoutInput{
		ReceiverName:  "Alex",
		ReceiverPhone: "0900000000",
		ShippingAddr:  "12 Main St",
	}
}

func TestCheckoutTotals(t *testing.T) {
	orders := &stubOrders{}
	svc := New(&stubCarts{cart: twoLineCart()}, orders, &stubPromos{}, nil)

	created, err := svc.Checkout(context.Background(), "cust", checkoutInput())
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if created.Subtotal != 500 {
		t.Fatalf("subtotal = %v, want list-price sum 500", created.Subtotal)
	}
	if created.DiscountAmount != 50 {
		t.Fatalf("discount = %v, want 50", created.DiscountAmount)
	}
	// 450 effective plus the flat shipping fee.
	if created.TotalAmount != 450+flatShippingFee {
		t.Fatalf("total = %v", created.TotalAmount)
	}
	if created.PaymentMethod != "COD" {
		t.Fatalf("payment method default = %q", created.PaymentMethod)
	}
	if !strings.HasPrefix(created.OrderNumber, "ORD-") {
		t.Fatalf("order number = %q", created.OrderNumber)
	}
	if orders.lastCreate.CartID != "c1" {
		t.Fatalf("cart %q should be cleared with the order", orders.lastCreate.CartID)
	}
}

func TestCheckoutFreeShipping(t *testing.T) {
	cart := twoLineCart()
	cart.Items = []domain.CartItem{
		{ID: "l1", ProductID: "p1", Name: "Bulk", UnitPrice: 600000, Quantity: 1, TotalPrice: 600000},
	}
	svc := New(&stubCarts{cart: cart}, &stubOrders{}, &stubPromos{}, nil)

	created, err := svc.Checkout(context.Background(), "cust", checkoutInput())
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if created.ShippingFee != 0 {
		t.Fatalf("shipping fee = %v, want free over threshold", created.ShippingFee)
	}
}

func TestCheckoutAppliesFlashPrice(t *testing.T) {
	orders := &stubOrders{}
	promos := &stubPromos{items: map[string]*domain.FlashSaleItem{
		"p2": {ID: "fs1", SalePrice: 150, RemainingQuantity: 10},
	}}
	svc := New(&stubCarts{cart: twoLineCart()}, orders, promos, nil)

	created, err := svc.Checkout(context.Background(), "cust", checkoutInput())
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	// Line 2 drops from 200 to 150 per unit.
	if created.Items[1].UnitPrice != 150 || created.Items[1].TotalPrice != 300 {
		t.Fatalf("flash line = %+v", created.Items[1])
	}
	if len(orders.lastCreate.FlashSaleSales) != 1 || orders.lastCreate.FlashSaleSales[0].Quantity != 2 {
		t.Fatalf("flash sales = %+v", orders.lastCreate.FlashSaleSales)
	}
}

func TestCheckoutSkipsExhaustedFlashItem(t *testing.T) {
	promos := &stubPromos{items: map[string]*domain.FlashSaleItem{
		"p2": {ID: "fs1", SalePrice: 150, RemainingQuantity: 1},
	}}
	orders := &stubOrders{}
	svc := New(&stubCarts{cart: twoLineCart()}, orders, promos, nil)

	created, err := svc.Checkout(context.Background(), "cust", checkoutInput())
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if created.Items[1].UnitPrice != 200 {
		t.Fatalf("exhausted flash item must not discount: %+v", created.Items[1])
	}
	if len(orders.lastCreate.FlashSaleSales) != 0 {
		t.Fatalf("no sales should be recorded: %+v", orders.lastCreate.FlashSaleSales)
	}
}

func TestCheckoutVoucher(t *testing.T) {
	promos := &stubPromos{verdict: &domain.VoucherResult{
		Valid:          true,
		DiscountAmount: 45,
		Voucher:        &domain.Voucher{ID: "v1", Code: "SAVE10"},
	}}
	orders := &stubOrders{}
	svc := New(&stubCarts{cart: twoLineCart()}, orders, promos, nil)

	in := checkoutInput()
	in.VoucherCode = "save10"
	created, err := svc.Checkout(context.Background(), "cust", in)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if created.VoucherCode != "SAVE10" {
		t.Fatalf("voucher code = %q", created.VoucherCode)
	}
	if created.DiscountAmount != 95 { // 50 sale discount + 45 voucher
		t.Fatalf("discount = %v", created.DiscountAmount)
	}
	if created.TotalAmount != 405+flatShippingFee {
		t.Fatalf("total = %v", created.TotalAmount)
	}
	if orders.lastCreate.VoucherID != "v1" {
		t.Fatalf("voucher id = %q", orders.lastCreate.VoucherID)
	}
}

func TestCheckoutVoucherRejected(t *testing.T) {
	promos := &stubPromos{verdict: &domain.VoucherResult{
		Valid: false, ErrorCode: promosvc.CodeExpired, ErrorMessage: "Voucher has expired",
	}}
	svc := New(&stubCarts{cart: twoLineCart()}, &stubOrders{}, promos, nil)

	in := checkoutInput()
	in.VoucherCode = "OLD"
	_, err := svc.Checkout(context.Background(), "cust", in)
	if !errors.Is(err, ErrVoucherRejected) {
		t.Fatalf("err = %v, want ErrVoucherRejected", err)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc := New(&stubCarts{cart: &domain.Cart{ID: "c1"}}, &stubOrders{}, &stubPromos{}, nil)

	_, err := svc.Checkout(context.Background(), "cust", checkoutInput())
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
}

func TestCheckoutRequiresReceiver(t *testing.T) {
	svc := New(&stubCarts{cart: twoLineCart()}, &stubOrders{}, &stubPromos{}, nil)

	_, err := svc.Checkout(context.Background(), "cust", CheckoutInput{ReceiverName: "Alex"})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestCancelOnlyBeforeShipping(t *testing.T) {
	for _, status := range []string{domain.OrderPending, domain.OrderConfirmed} {
		orders := &stubOrders{byID: &domain.Order{ID: "o1", Status: status}}
		svc := New(&stubCarts{}, orders, &stubPromos{}, nil)
		if _, err := svc.Cancel(context.Background(), "cust", "o1"); err != nil {
			t.Fatalf("Cancel from %s: %v", status, err)
		}
		if orders.newStatus != domain.OrderCancelled {
			t.Fatalf("status = %q", orders.newStatus)
		}
	}

	for _, status := range []string{domain.OrderShipping, domain.OrderCompleted, domain.OrderCancelled} {
		orders := &stubOrders{byID: &domain.Order{ID: "o1", Status: status}}
		svc := New(&stubCarts{}, orders, &stubPromos{}, nil)
		if _, err := svc.Cancel(context.Background(), "cust", "o1"); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("Cancel from %s: err = %v", status, err)
		}
	}
}

func TestSetStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{domain.OrderPending, domain.OrderConfirmed, true},
		{domain.OrderConfirmed, domain.OrderShipping, true},
		{domain.OrderShipping, domain.OrderCompleted, true},
		{domain.OrderPending, domain.OrderCancelled, true},
		{domain.OrderPending, domain.OrderCompleted, false},
		{domain.OrderShipping, domain.OrderCancelled, false},
		{domain.OrderCompleted, domain.OrderPending, false},
		{domain.OrderCancelled, domain.OrderConfirmed, false},
	}

	for _, tc := range cases {
		orders := &stubOrders{byID: &domain.Order{ID: "o1", Status: tc.from}}
		svc := New(&stubCarts{}, orders, &stubPromos{}, nil)
		_, err := svc.SetStatus(context.Background(), "o1", tc.to)
		if tc.ok && err != nil {
			t.Fatalf("%s -> %s: %v", tc.from, tc.to, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s -> %s: err = %v, want ErrInvalidTransition", tc.from, tc.to, err)
		}
	}
}

func TestInvoiceContainsLinesAndTotal(t *testing.T) {
	orders := &stubOrders{byID: &domain.Order{
		ID: "o1", OrderNumber: "ORD-AB12CD34", ReceiverName: "Alex", ReceiverPhone: "0900",
		ShippingAddr: "12 Main St", Subtotal: 500, DiscountAmount: 50, ShippingFee: 20, TotalAmount: 470,
		Items: []domain.OrderItem{{ProductName: "Paracetamol", UnitPrice: 50, Quantity: 1, TotalPrice: 50}},
	}}
	svc := New(&stubCarts{}, orders, &stubPromos{}, nil)

	data, err := svc.Invoice(context.Background(), "cust", "o1")
	if err != nil {
		t.Fatalf("Invoice: %v", err)
	}
	text := string(data)
	for _, want := range []string{"ORD-AB12CD34", "Paracetamol", "470.00"} {
		if !strings.Contains(text, want) {
			t.Fatalf("invoice missing %q:\n%s", want, text)
		}
	}
}
