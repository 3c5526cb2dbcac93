package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pharmacy-storefront/internal/domain"
)

// Wire types use snake_case field names throughout, matching what the
// storefront normalizer expects from the hosted API.

type wireImage struct {
	ImageURL  string `json:"image_url"`
	AltText   string `json:"alt_text,omitempty"`
	IsPrimary bool   `json:"is_primary"`
}

type wireRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type wireProduct struct {
	ID                   string      `json:"id"`
	Slug                 string      `json:"slug"`
	SKU                  string      `json:"sku,omitempty"`
	Name                 string      `json:"name"`
	Description          string      `json:"description,omitempty"`
	Price                float64     `json:"price"`
	SalePrice            *float64    `json:"sale_price,omitempty"`
	StockQuantity        int         `json:"stock_quantity"`
	Unit                 string      `json:"unit,omitempty"`
	Category             *wireRef    `json:"category,omitempty"`
	Manufacturer         *wireRef    `json:"manufacturer,omitempty"`
	RequiresPrescription bool        `json:"requires_prescription"`
	IsFeatured           bool        `json:"is_featured"`
	Status               string      `json:"status,omitempty"`
	Images               []wireImage `json:"images"`
	IsLiked              bool        `json:"is_liked"`
	LikesCount           int         `json:"likes_count"`
	RatingAvg            float64     `json:"rating_avg"`
	RatingCount          int         `json:"rating_count"`
	CreatedAt            time.Time   `json:"created_at"`
}

func toWireProduct(p domain.Product) wireProduct {
	out := wireProduct{
		ID:                   p.ID,
		Slug:                 p.Slug,
		SKU:                  p.SKU,
		Name:                 p.Name,
		Description:          p.Description,
		Price:                p.Price,
		SalePrice:            p.SalePrice,
		StockQuantity:        p.StockQuantity,
		Unit:                 p.Unit,
		RequiresPrescription: p.RequiresPrescription,
		IsFeatured:           p.IsFeatured,
		Status:               p.Status,
		Images:               []wireImage{},
		IsLiked:              p.IsLiked,
		LikesCount:           p.LikesCount,
		RatingAvg:            p.RatingAvg,
		RatingCount:          p.RatingCount,
		CreatedAt:            p.CreatedAt,
	}
	if p.Category.ID != "" {
		out.Category = &wireRef{ID: p.Category.ID, Name: p.Category.Name, Slug: p.Category.Slug}
	}
	if p.Manufacturer.ID != "" {
		out.Manufacturer = &wireRef{ID: p.Manufacturer.ID, Name: p.Manufacturer.Name, Slug: p.Manufacturer.Slug}
	}
	for _, img := range p.Images {
		out.Images = append(out.Images, wireImage{ImageURL: img.URL, AltText: img.Alt, IsPrimary: img.IsPrimary})
	}
	return out
}

func toWireProducts(products []domain.Product) []wireProduct {
	out := make([]wireProduct, 0, len(products))
	for _, p := range products {
		out = append(out, toWireProduct(p))
	}
	return out
}

type wireCartItem struct {
	ID         string  `json:"id"`
	ProductID  string  `json:"product_id"`
	CategoryID string  `json:"category_id,omitempty"`
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	ImageURL   string  `json:"image_url,omitempty"`
	UnitPrice  float64 `json:"unit_price"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
}

type wireCart struct {
	ID         string         `json:"id"`
	Items      []wireCartItem `json:"items"`
	TotalPrice float64        `json:"total_price"`
	TotalItems int            `json:"total_items"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func toWireCart(c *domain.Cart) wireCart {
	out := wireCart{
		ID:         c.ID,
		Items:      []wireCartItem{},
		TotalPrice: c.TotalPrice,
		TotalItems: c.TotalItems,
		UpdatedAt:  c.UpdatedAt,
	}
	for _, item := range c.Items {
		out.Items = append(out.Items, wireCartItem{
			ID:         item.ID,
			ProductID:  item.ProductID,
			CategoryID: item.CategoryID,
			Name:       item.Name,
			Slug:       item.Slug,
			ImageURL:   item.ImageURL,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
			TotalPrice: item.TotalPrice,
		})
	}
	return out
}

type wireOrderItem struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id,omitempty"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	TotalPrice  float64 `json:"total_price"`
}

type wireOrder struct {
	ID             string          `json:"id"`
	OrderNumber    string          `json:"order_number"`
	Status         string          `json:"status"`
	Items          []wireOrderItem `json:"items"`
	Subtotal       float64         `json:"subtotal"`
	ShippingFee    float64         `json:"shipping_fee"`
	DiscountAmount float64         `json:"discount_amount"`
	TotalAmount    float64         `json:"total_amount"`
	VoucherCode    string          `json:"voucher_code,omitempty"`
	PaymentMethod  string          `json:"payment_method"`
	ReceiverName   string          `json:"receiver_name"`
	ReceiverPhone  string          `json:"receiver_phone"`
	ShippingAddr   string          `json:"shipping_address"`
	Note           string          `json:"note,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func toWireOrder(o *domain.Order) wireOrder {
	out := wireOrder{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		Status:         o.Status,
		Items:          []wireOrderItem{},
		Subtotal:       o.Subtotal,
		ShippingFee:    o.ShippingFee,
		DiscountAmount: o.DiscountAmount,
		TotalAmount:    o.TotalAmount,
		VoucherCode:    o.VoucherCode,
		PaymentMethod:  o.PaymentMethod,
		ReceiverName:   o.ReceiverName,
		ReceiverPhone:  o.ReceiverPhone,
		ShippingAddr:   o.ShippingAddr,
		Note:           o.Note,
		CreatedAt:      o.CreatedAt,
	}
	for _, item := range o.Items {
		out.Items = append(out.Items, wireOrderItem{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			TotalPrice:  item.TotalPrice,
		})
	}
	return out
}

func toWireOrders(orders []domain.Order) []wireOrder {
	out := make([]wireOrder, 0, len(orders))
	for i := range orders {
		out = append(out, toWireOrder(&orders[i]))
	}
	return out
}

type wireCategory struct {
	ID           string         `json:"id"`
	Slug         string         `json:"slug"`
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	ParentID     string         `json:"parent_id,omitempty"`
	IsActive     bool           `json:"is_active"`
	ProductCount int            `json:"product_count"`
	Children     []wireCategory `json:"children,omitempty"`
}

func toWireCategory(c domain.Category) wireCategory {
	out := wireCategory{
		ID:           c.ID,
		Slug:         c.Slug,
		Name:         c.Name,
		Description:  c.Description,
		ParentID:     c.ParentID,
		IsActive:     c.IsActive,
		ProductCount: c.ProductCount,
	}
	for _, child := range c.Children {
		out.Children = append(out.Children, toWireCategory(child))
	}
	return out
}

func toWireCategories(categories []domain.Category) []wireCategory {
	out := make([]wireCategory, 0, len(categories))
	for _, c := range categories {
		out = append(out, toWireCategory(c))
	}
	return out
}

type wireManufacturer struct {
	ID           string `json:"id"`
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Country      string `json:"country,omitempty"`
	LogoURL      string `json:"logo_url,omitempty"`
	ProductCount int    `json:"product_count"`
}

func toWireManufacturers(ms []domain.Manufacturer) []wireManufacturer {
	out := make([]wireManufacturer, 0, len(ms))
	for _, m := range ms {
		out = append(out, wireManufacturer{
			ID: m.ID, Slug: m.Slug, Name: m.Name,
			Country: m.Country, LogoURL: m.LogoURL, ProductCount: m.ProductCount,
		})
	}
	return out
}

type wireVoucher struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Description   string    `json:"description,omitempty"`
	DiscountType  string    `json:"discount_type"`
	DiscountValue float64   `json:"discount_value"`
	MinOrderTotal float64   `json:"min_order_total"`
	MaxDiscount   float64   `json:"max_discount,omitempty"`
	UsageLimit    int       `json:"usage_limit,omitempty"`
	UsedCount     int       `json:"used_count"`
	IsActive      bool      `json:"is_active"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
}

func toWireVoucher(v *domain.Voucher) wireVoucher {
	return wireVoucher{
		ID: v.ID, Code: v.Code, Description: v.Description,
		DiscountType: v.DiscountType, DiscountValue: v.DiscountValue,
		MinOrderTotal: v.MinOrderTotal, MaxDiscount: v.MaxDiscount,
		UsageLimit: v.UsageLimit, UsedCount: v.UsedCount, IsActive: v.IsActive,
		StartsAt: v.StartsAt, EndsAt: v.EndsAt,
	}
}

type wireVoucherResult struct {
	Valid          bool         `json:"valid"`
	ErrorCode      string       `json:"error_code,omitempty"`
	ErrorMessage   string       `json:"error_message,omitempty"`
	DiscountAmount float64      `json:"discount_amount"`
	OrderTotal     float64      `json:"order_total"`
	FinalTotal     float64      `json:"final_total"`
	Voucher        *wireVoucher `json:"voucher_info,omitempty"`
}

func toWireVoucherResult(r *domain.VoucherResult) wireVoucherResult {
	out := wireVoucherResult{
		Valid:          r.Valid,
		ErrorCode:      r.ErrorCode,
		ErrorMessage:   r.ErrorMessage,
		DiscountAmount: r.DiscountAmount,
		OrderTotal:     r.OrderTotal,
		FinalTotal:     r.FinalTotal,
	}
	if r.Voucher != nil {
		v := toWireVoucher(r.Voucher)
		out.Voucher = &v
	}
	return out
}

type wireFlashSaleItem struct {
	ID                string      `json:"id"`
	Product           wireProduct `json:"product"`
	SalePrice         float64     `json:"sale_price"`
	TotalQuantity     int         `json:"total_quantity"`
	RemainingQuantity int         `json:"remaining_quantity"`
	SoldQuantity      int         `json:"sold_quantity"`
}

type wireFlashSaleSession struct {
	ID       string              `json:"id"`
	Slug     string              `json:"slug"`
	Name     string              `json:"name"`
	StartsAt time.Time           `json:"starts_at"`
	EndsAt   time.Time           `json:"ends_at"`
	IsActive bool                `json:"is_active"`
	Items    []wireFlashSaleItem `json:"items"`
}

func toWireSession(s *domain.FlashSaleSession) wireFlashSaleSession {
	out := wireFlashSaleSession{
		ID: s.ID, Slug: s.Slug, Name: s.Name,
		StartsAt: s.StartsAt, EndsAt: s.EndsAt, IsActive: s.IsActive,
		Items: []wireFlashSaleItem{},
	}
	for _, item := range s.Items {
		out.Items = append(out.Items, toWireItem(item))
	}
	return out
}

func toWireItem(item domain.FlashSaleItem) wireFlashSaleItem {
	return wireFlashSaleItem{
		ID:                item.ID,
		Product:           toWireProduct(item.Product),
		SalePrice:         item.SalePrice,
		TotalQuantity:     item.TotalQuantity,
		RemainingQuantity: item.RemainingQuantity,
		SoldQuantity:      item.SoldQuantity,
	}
}

type wireBanner struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
	LinkURL  string `json:"link_url,omitempty"`
	Position int    `json:"position"`
	IsActive bool   `json:"is_active"`
}

func toWireBanners(banners []domain.Banner) []wireBanner {
	out := make([]wireBanner, 0, len(banners))
	for _, b := range banners {
		out = append(out, wireBanner{
			ID: b.ID, Title: b.Title, ImageURL: b.ImageURL,
			LinkURL: b.LinkURL, Position: b.Position, IsActive: b.IsActive,
		})
	}
	return out
}

type wireCustomer struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
}

func toWireCustomer(c *domain.Customer) wireCustomer {
	return wireCustomer{
		ID: c.ID, Email: c.Email, FullName: c.FullName,
		Phone: c.Phone, Address: c.Address,
		IsActive: c.IsActive, IsStaff: c.IsStaff, CreatedAt: c.CreatedAt,
	}
}

func toWireCustomers(cs []domain.Customer) []wireCustomer {
	out := make([]wireCustomer, 0, len(cs))
	for i := range cs {
		out = append(out, toWireCustomer(&cs[i]))
	}
	return out
}

// page wraps results in the standard paginated envelope.
func page(c *gin.Context, count, pageNum, pageSize int, results any) gin.H {
	next := any(nil)
	prev := any(nil)
	if pageNum*pageSize < count {
		next = pageURL(c, pageNum+1)
	}
	if pageNum > 1 {
		prev = pageURL(c, pageNum-1)
	}
	return gin.H{"count": count, "next": next, "previous": prev, "results": results}
}

func pageURL(c *gin.Context, pageNum int) string {
	q := c.Request.URL.Query()
	q.Set("page", fmt.Sprintf("%d", pageNum))
	return c.Request.URL.Path + "?" + q.Encode()
}

func apiError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error_code": code, "error_message": message})
}

func notFound(c *gin.Context, what string) {
	apiError(c, http.StatusNotFound, "NOT_FOUND", what+" not found")
}
