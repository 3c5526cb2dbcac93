package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"

	"pharmacy-storefront/internal/domain"
	orderrepo "pharmacy-storefront/internal/replica/repository/order"
	promosvc "pharmacy-storefront/internal/replica/service/promo"
)

const (
	freeShippingThreshold = 500000
	flatShippingFee       = 20000
)

var (
	// ErrEmptyCart is returned when checkout finds no cart lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrVoucherRejected is returned when the supplied code fails validation.
	ErrVoucherRejected = errors.New("voucher rejected")
	// ErrInvalidTransition is returned for a disallowed status change.
	ErrInvalidTransition = errors.New("invalid status transition")
)

type carts interface {
	GetByCustomer(ctx context.Context, customerID string) (*domain.Cart, error)
}

type promos interface {
	Check(ctx context.Context, in promosvc.CheckInput) (*domain.VoucherResult, error)
	ProductCheck(ctx context.Context, productID string) (*domain.FlashSaleItem, error)
}

// Service turns carts into orders and walks orders through their status
// machine.
type Service struct {
	carts  carts
	orders orderrepo.Repository
	promos promos
	logger *log.Logger
}

func New(carts carts, orders orderrepo.Repository, promos promos, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{carts: carts, orders: orders, promos: promos, logger: logger}
}

// CheckoutInput is the payload of an order creation request.
type CheckoutInput struct {
	ReceiverName  string
	ReceiverPhone string
	ShippingAddr  string
	PaymentMethod string
	VoucherCode   string
	Note          string
}

// Checkout snapshots the customer's cart into an order. Flash-sale prices
// apply per line when inventory allows, the voucher discount comes from the
// same verdict path the storefront previews with, and the cart is emptied in
// the same transaction that persists the order.
func (s *Service) Checkout(ctx context.Context, customerID string, in CheckoutInput) (*domain.Order, error) {
	if strings.TrimSpace(in.ReceiverName) == "" || strings.TrimSpace(in.ReceiverPhone) == "" || strings.TrimSpace(in.ShippingAddr) == "" {
		return nil, errors.New("receiver name, phone, and shipping address are required")
	}

	cart, err := s.carts.GetByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	var (
		subtotal  float64
		effective float64
		items     []domain.OrderItem
		sales     []orderrepo.FlashSaleSale
	)
	for _, line := range cart.Items {
		unit := line.TotalPrice / float64(line.Quantity)

		flash, err := s.promos.ProductCheck(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if flash != nil && flash.RemainingQuantity >= line.Quantity && flash.SalePrice < unit {
			unit = flash.SalePrice
			sales = append(sales, orderrepo.FlashSaleSale{ItemID: flash.ID, Quantity: line.Quantity})
		}

		lineTotal := unit * float64(line.Quantity)
		subtotal += line.UnitPrice * float64(line.Quantity)
		effective += lineTotal
		items = append(items, domain.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.Name,
			UnitPrice:   unit,
			Quantity:    line.Quantity,
			TotalPrice:  lineTotal,
		})
	}

	discount := subtotal - effective
	voucherID := ""
	voucherCode := ""
	if code := strings.TrimSpace(in.VoucherCode); code != "" {
		verdict, err := s.voucherVerdict(ctx, code, effective, cart.Items)
		if err != nil {
			return nil, err
		}
		discount += verdict.DiscountAmount
		voucherID = verdict.Voucher.ID
		voucherCode = verdict.Voucher.Code
		effective -= verdict.DiscountAmount
	}

	shipping := float64(flatShippingFee)
	if effective >= freeShippingThreshold {
		shipping = 0
	}

	payment := strings.TrimSpace(in.PaymentMethod)
	if payment == "" {
		payment = "COD"
	}

	created, err := s.orders.Create(ctx, orderrepo.CreateInput{
		Order: domain.Order{
			OrderNumber:    newOrderNumber(),
			Items:          items,
			Subtotal:       subtotal,
			ShippingFee:    shipping,
			DiscountAmount: discount,
			TotalAmount:    effective + shipping,
			VoucherCode:    voucherCode,
			PaymentMethod:  payment,
			ReceiverName:   strings.TrimSpace(in.ReceiverName),
			ReceiverPhone:  strings.TrimSpace(in.ReceiverPhone),
			ShippingAddr:   strings.TrimSpace(in.ShippingAddr),
			Note:           strings.TrimSpace(in.Note),
		},
		CustomerID:     customerID,
		CartID:         cart.ID,
		VoucherID:      voucherID,
		FlashSaleSales: sales,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Printf("order service: checkout customer=%s order=%s total=%.2f", customerID, created.OrderNumber, created.TotalAmount)
	return created, nil
}

func (s *Service) voucherVerdict(ctx context.Context, code string, orderTotal float64, lines []domain.CartItem) (*domain.VoucherResult, error) {
	productIDs := make([]string, 0, len(lines))
	categorySeen := make(map[string]bool)
	var categoryIDs []string
	for _, line := range lines {
		productIDs = append(productIDs, line.ProductID)
		if line.CategoryID != "" && !categorySeen[line.CategoryID] {
			categorySeen[line.CategoryID] = true
			categoryIDs = append(categoryIDs, line.CategoryID)
		}
	}

	verdict, err := s.promos.Check(ctx, promosvc.CheckInput{
		Code:        code,
		OrderTotal:  orderTotal,
		ProductIDs:  productIDs,
		CategoryIDs: categoryIDs,
	})
	if err != nil {
		return nil, err
	}
	if !verdict.Valid {
		return nil, fmt.Errorf("%w: %s", ErrVoucherRejected, verdict.ErrorMessage)
	}
	return verdict, nil
}

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

func (s *Service) MyOrders(ctx context.Context, customerID string, page, pageSize int) ([]domain.Order, int, error) {
	return s.orders.List(ctx, orderrepo.ListFilter{CustomerID: customerID, Page: page, PageSize: pageSize})
}

func (s *Service) OrderForCustomer(ctx context.Context, customerID, id string) (*domain.Order, error) {
	return s.orders.GetForCustomer(ctx, customerID, id)
}

// Cancel flips a customer's own order to CANCELLED while it is still
// cancellable.
func (s *Service) Cancel(ctx context.Context, customerID, id string) (*domain.Order, error) {
	o, err := s.orders.GetForCustomer(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanCancel(o.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, domain.OrderCancelled)
	}
	return s.orders.UpdateStatus(ctx, id, domain.OrderCancelled)
}

var transitions = map[string][]string{
	domain.OrderPending:   {domain.OrderConfirmed, domain.OrderCancelled},
	domain.OrderConfirmed: {domain.OrderShipping, domain.OrderCancelled},
	domain.OrderShipping:  {domain.OrderCompleted},
}

// SetStatus applies an admin status change, enforcing the forward-only
// transition table.
func (s *Service) SetStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, next := range transitions[o.Status] {
		if next == status {
			return s.orders.UpdateStatus(ctx, id, status)
		}
	}
	return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, status)
}

func (s *Service) List(ctx context.Context, status string, page, pageSize int) ([]domain.Order, int, error) {
	return s.orders.List(ctx, orderrepo.ListFilter{Status: status, Page: page, PageSize: pageSize})
}

// Invoice renders a plain-text invoice for download.
func (s *Service) Invoice(ctx context.Context, customerID, id string) ([]byte, error) {
	o, err := s.orders.GetForCustomer(ctx, customerID, id)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INVOICE %s\n", o.OrderNumber)
	fmt.Fprintf(&b, "Date: %s\n", o.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Receiver: %s (%s)\n", o.ReceiverName, o.ReceiverPhone)
	fmt.Fprintf(&b, "Address: %s\n\n", o.ShippingAddr)
	for _, item := range o.Items {
		fmt.Fprintf(&b, "%-40s %3d x %12.2f = %12.2f\n", item.ProductName, item.Quantity, item.UnitPrice, item.TotalPrice)
	}
	fmt.Fprintf(&b, "\nSubtotal: %12.2f\n", o.Subtotal)
	if o.DiscountAmount > 0 {
		fmt.Fprintf(&b, "Discount: %12.2f\n", o.DiscountAmount)
	}
	fmt.Fprintf(&b, "Shipping: %12.2f\n", o.ShippingFee)
	fmt.Fprintf(&b, "Total:    %12.2f\n", o.TotalAmount)
	return []byte(b.String()), nil
}
