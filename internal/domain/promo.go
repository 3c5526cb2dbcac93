package domain

import "time"

// Voucher is the admin-side representation of a promotion code. Eligibility
// and discount computation are server concerns; the client only lists and
// forwards codes.
type Voucher struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Description   string    `json:"description,omitempty"`
	DiscountType  string    `json:"discountType"`
	DiscountValue float64   `json:"discountValue"`
	MinOrderTotal float64   `json:"minOrderTotal"`
	MaxDiscount   float64   `json:"maxDiscount"`
	UsageLimit    int       `json:"usageLimit"`
	UsedCount     int       `json:"usedCount"`
	IsActive      bool      `json:"isActive"`
	StartsAt      time.Time `json:"startsAt"`
	EndsAt        time.Time `json:"endsAt"`
}

// VoucherResult is the server's verdict on a voucher application, passed
// through to the UI verbatim. FinalTotal is displayed as-is, never
// recomputed client-side.
type VoucherResult struct {
	Valid          bool    `json:"valid"`
	ErrorCode      string  `json:"errorCode,omitempty"`
	ErrorMessage   string  `json:"errorMessage,omitempty"`
	DiscountAmount float64 `json:"discountAmount"`
	OrderTotal     float64 `json:"orderTotal"`
	FinalTotal     float64 `json:"finalTotal"`
	Voucher        *Voucher `json:"voucher,omitempty"`
}

// FlashSaleSession is a time-boxed promotional window binding products to
// discounted prices with finite inventory.
type FlashSaleSession struct {
	ID       string          `json:"id"`
	Slug     string          `json:"slug"`
	Name     string          `json:"name"`
	StartsAt time.Time       `json:"startsAt"`
	EndsAt   time.Time       `json:"endsAt"`
	IsActive bool            `json:"isActive"`
	Items    []FlashSaleItem `json:"items,omitempty"`
}

// FlashSaleItem binds a product to a flash-sale price. Invariant maintained
// by the server: RemainingQuantity + SoldQuantity == TotalQuantity.
type FlashSaleItem struct {
	ID                string   `json:"id"`
	Product           Product  `json:"product"`
	SalePrice         float64  `json:"salePrice"`
	TotalQuantity     int      `json:"totalQuantity"`
	RemainingQuantity int      `json:"remainingQuantity"`
	SoldQuantity      int      `json:"soldQuantity"`
}

type Banner struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
	LinkURL  string `json:"linkUrl,omitempty"`
	Position int    `json:"position"`
	IsActive bool   `json:"isActive"`
}
