package domain

import "time"

// Cart is the single active cart for a session or customer. Totals are
// always the server-computed values; the client never sums line items to
// produce the canonical total.
type Cart struct {
	ID         string     `json:"id"`
	Items      []CartItem `json:"items"`
	TotalPrice float64    `json:"totalPrice"`
	TotalItems int        `json:"totalItems"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// CartItem holds a snapshot of the product taken at add time, not a live
// catalog reference. The snapshot price is the price the customer saw, which
// may differ from the current catalog price.
type CartItem struct {
	ID         string  `json:"id"`
	ProductID  string  `json:"productId"`
	CategoryID string  `json:"categoryId,omitempty"`
	Name       string  `json:"name"`
	Slug       string  `json:"slug,omitempty"`
	ImageURL   string  `json:"imageUrl,omitempty"`
	UnitPrice  float64 `json:"unitPrice"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"totalPrice"`
}

// Subtotal recomputes unit price times quantity across all lines. Used only
// to display the delta against the server total (the "discount" line), never
// as the amount charged.
func (c *Cart) Subtotal() float64 {
	if c == nil {
		return 0
	}
	var sum float64
	for _, item := range c.Items {
		sum += item.UnitPrice * float64(item.Quantity)
	}
	return sum
}

// Discount is the displayed difference between the recomputed subtotal and
// the server-computed total. Zero when the server total is not lower.
func (c *Cart) Discount() float64 {
	if c == nil {
		return 0
	}
	if d := c.Subtotal() - c.TotalPrice; d > 0 {
		return d
	}
	return 0
}
