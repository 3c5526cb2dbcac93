package domain

import "time"

// Order statuses as the server reports them. CANCELLED is absorbing and only
// reachable before shipping starts.
const (
	OrderPending   = "PENDING"
	OrderConfirmed = "CONFIRMED"
	OrderShipping  = "SHIPPING"
	OrderCompleted = "COMPLETED"
	OrderCancelled = "CANCELLED"
)

// Order is immutable once created from a cart snapshot. Line items are
// frozen copies of product name/price at creation time.
type Order struct {
	ID             string      `json:"id"`
	OrderNumber    string      `json:"orderNumber"`
	Status         string      `json:"status"`
	Items          []OrderItem `json:"items"`
	Subtotal       float64     `json:"subtotal"`
	ShippingFee    float64     `json:"shippingFee"`
	DiscountAmount float64     `json:"discountAmount"`
	TotalAmount    float64     `json:"totalAmount"`
	VoucherCode    string      `json:"voucherCode,omitempty"`
	PaymentMethod  string      `json:"paymentMethod"`
	ReceiverName   string      `json:"receiverName"`
	ReceiverPhone  string      `json:"receiverPhone"`
	ShippingAddr   string      `json:"shippingAddress"`
	Note           string      `json:"note,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}

type OrderItem struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
	TotalPrice  float64 `json:"totalPrice"`
}

// StatusDisplay is the presentation tuple for an order status.
type StatusDisplay struct {
	Label string
	Color string
	Icon  string
}

var statusDisplays = map[string]StatusDisplay{
	OrderPending:   {Label: "Pending confirmation", Color: "amber", Icon: "clock"},
	OrderConfirmed: {Label: "Confirmed", Color: "blue", Icon: "check-circle"},
	OrderShipping:  {Label: "Shipping", Color: "indigo", Icon: "truck"},
	OrderCompleted: {Label: "Completed", Color: "green", Icon: "package-check"},
	OrderCancelled: {Label: "Cancelled", Color: "red", Icon: "x-circle"},
}

// StatusInfo maps an order status to its display tuple. Unknown statuses get
// neutral styling so a new server-side status never breaks the order list.
func StatusInfo(status string) StatusDisplay {
	if d, ok := statusDisplays[status]; ok {
		return d
	}
	return StatusDisplay{Label: status, Color: "gray", Icon: "circle"}
}

// CanCancel reports whether the client should offer cancellation for the
// given status. Actual transition validation stays server-side.
func CanCancel(status string) bool {
	return status == OrderPending || status == OrderConfirmed
}
