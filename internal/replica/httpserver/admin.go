package httpserver

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pharmacy-storefront/internal/domain"
	categoryrepo "pharmacy-storefront/internal/replica/repository/category"
	productrepo "pharmacy-storefront/internal/replica/repository/product"
	promorepo "pharmacy-storefront/internal/replica/repository/promo"
	ordersvc "pharmacy-storefront/internal/replica/service/order"
)

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// slugify derives a URL slug when the admin payload omits one.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugCleaner.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func (h *handlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		notFound(c, "resource")
	case errors.Is(err, domain.ErrAlreadyExists):
		apiError(c, http.StatusConflict, "ALREADY_EXISTS", "A resource with this identifier already exists")
	default:
		h.serverError(c, err)
	}
}

// ---- products ----

type adminProductRequest struct {
	Slug                 string   `json:"slug"`
	SKU                  string   `json:"sku"`
	Name                 string   `json:"name" binding:"required"`
	Description          string   `json:"description"`
	Price                float64  `json:"price"`
	SalePrice            *float64 `json:"sale_price"`
	StockQuantity        int      `json:"stock_quantity"`
	Unit                 string   `json:"unit"`
	CategoryID           string   `json:"category_id"`
	ManufacturerID       string   `json:"manufacturer_id"`
	RequiresPrescription bool     `json:"requires_prescription"`
	IsFeatured           bool     `json:"is_featured"`
	Status               string   `json:"status"`
	Images               []struct {
		URL       string `json:"image_url"`
		Alt       string `json:"alt_text"`
		IsPrimary bool   `json:"is_primary"`
	} `json:"images"`
}

func (r adminProductRequest) toInput() productrepo.Input {
	in := productrepo.Input{
		Slug:                 r.Slug,
		SKU:                  r.SKU,
		Name:                 r.Name,
		Description:          r.Description,
		Price:                r.Price,
		SalePrice:            r.SalePrice,
		StockQuantity:        r.StockQuantity,
		Unit:                 r.Unit,
		CategoryID:           r.CategoryID,
		ManufacturerID:       r.ManufacturerID,
		RequiresPrescription: r.RequiresPrescription,
		IsFeatured:           r.IsFeatured,
		IsActive:             r.Status != "INACTIVE",
	}
	if in.Slug == "" {
		in.Slug = slugify(r.Name)
	}
	if r.Images != nil {
		in.Images = []productrepo.ImageInput{}
		for i, img := range r.Images {
			in.Images = append(in.Images, productrepo.ImageInput{
				URL: img.URL, Alt: img.Alt, IsPrimary: img.IsPrimary, Position: i,
			})
		}
	}
	return in
}

func (h *handlers) adminListProducts(c *gin.Context) {
	h.serveListing(c, listFilter(c))
}

func (h *handlers) adminCreateProduct(c *gin.Context) {
	var req adminProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", "name is required")
		return
	}
	p, err := h.deps.Products.Create(c.Request.Context(), req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toWireProduct(*p))
}

func (h *handlers) adminUpdateProduct(c *gin.Context) {
	var req adminProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", "name is required")
		return
	}
	p, err := h.deps.Products.Update(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireProduct(*p))
}

func (h *handlers) adminDeleteProduct(c *gin.Context) {
	if err := h.deps.Products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---- categories ----

type adminCategoryRequest struct {
	Slug        string `json:"slug"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ParentID    string `json:"parent_id"`
	IsActive    *bool  `json:"is_active"`
}

func (r adminCategoryRequest) toInput() categoryrepo.Input {
	in := categoryrepo.Input{
		Slug:        r.Slug,
		Name:        r.Name,
		Description: r.Description,
		ParentID:    r.ParentID,
		IsActive:    r.IsActive == nil || *r.IsActive,
	}
	if in.Slug == "" {
		in.Slug = slugify(r.Name)
	}
	return in
}

func (h *handlers) adminCreateCategory(c *gin.Context) {
	var req adminCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", "name is required")
		return
	}
	cat, err := h.deps.Categories.Create(c.Request.Context(), req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toWireCategory(*cat))
}

func (h *handlers) adminUpdateCategory(c *gin.Context) {
	var req adminCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", "name is required")
		return
	}
	cat, err := h.deps.Categories.Update(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireCategory(*cat))
}

func (h *handlers) adminDeleteCategory(c *gin.Context) {
	if err := h.deps.Categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---- orders ----

func (h *handlers) adminListOrders(c *gin.Context) {
	pageNum, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))

	orders, total, err := h.deps.Orders.List(c.Request.Context(), c.Query("status"), pageNum, pageSize)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if pageNum <= 0 {
		pageNum = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	c.JSON(http.StatusOK, page(c, total, pageNum, pageSize, toWireOrders(orders)))
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *handlers) adminOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", "status is required")
		return
	}
	order, err := h.deps.Orders.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			notFound(c, "order")
		case errors.Is(err, ordersvc.ErrInvalidTransition):
			apiError(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
		default:
			h.serverError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, toWireOrder(order))
}

// ---- vouchers ----

type adminVoucherRequest struct {
	Code          string   `json:"code" binding:"required"`
	Description   string   `json:"description"`
	DiscountType  string   `json:"discount_type" binding:"required"`
	DiscountValue float64  `json:"discount_value"`
	MinOrderTotal float64  `json:"min_order_total"`
	MaxDiscount   float64  `json:"max_discount"`
	UsageLimit    int      `json:"usage_limit"`
	IsActive      *bool    `json:"is_active"`
	StartsAt      string   `json:"starts_at"`
	EndsAt        string   `json:"ends_at"`
	CategoryIDs   []string `json:"category_ids"`
	ProductIDs    []string `json:"product_ids"`
}

func (r adminVoucherRequest) toInput() (promorepo.VoucherInput, error) {
	in := promorepo.VoucherInput{
		Code:          strings.ToUpper(strings.TrimSpace(r.Code)),
		Description:   r.Description,
		DiscountType:  r.DiscountType,
		DiscountValue: r.DiscountValue,
		MinOrderTotal: r.MinOrderTotal,
		MaxDiscount:   r.MaxDiscount,
		UsageLimit:    r.UsageLimit,
		IsActive:      r.IsActive == nil || *r.IsActive,
		CategoryIDs:   r.CategoryIDs,
		ProductIDs:    r.ProductIDs,
	}
	if r.DiscountType != "PERCENT" && r.DiscountType != "FIXED" {
		return in, errors.New("discount_type must be PERCENT or FIXED")
	}
	var err error
	if in.StartsAt, err = parseTime(r.StartsAt); err != nil {
		return in, errors.New("starts_at must be RFC 3339")
	}
	if in.EndsAt, err = parseTime(r.EndsAt); err != nil {
		return in, errors.New("ends_at must be RFC 3339")
	}
	return in, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (h *handlers) adminListVouchers(c *gin.Context) {
	vouchers, err := h.deps.Promos.Vouchers(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	out := make([]wireVoucher, 0, len(vouchers))
	for i := range vouchers {
		out = append(out, toWireVoucher(&vouchers[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) adminCreateVoucher(c *gin.Context) {
	var req adminVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", "code and discount_type are required")
		return
	}
	in, err := req.toInput()
	if err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	v, err := h.deps.Promos.CreateVoucher(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toWireVoucher(v))
}

func (h *handlers) adminUpdateVoucher(c *gin.Context) {
	var req adminVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", "code and discount_type are required")
		return
	}
	in, err := req.toInput()
	if err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	v, err := h.deps.Promos.UpdateVoucher(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireVoucher(v))
}

func (h *handlers) adminDeleteVoucher(c *gin.Context) {
	if err := h.deps.Promos.DeleteVoucher(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---- flash sales ----

type adminSessionRequest struct {
	Slug     string `json:"slug"`
	Name     string `json:"name" binding:"required"`
	StartsAt string `json:"starts_at" binding:"required"`
	EndsAt   string `json:"ends_at" binding:"required"`
	IsActive *bool  `json:"is_active"`
}

func (r adminSessionRequest) toInput() (promorepo.SessionInput, error) {
	in := promorepo.SessionInput{
		Slug:     r.Slug,
		Name:     r.Name,
		IsActive: r.IsActive == nil || *r.IsActive,
	}
	if in.Slug == "" {
		in.Slug = slugify(r.Name)
	}
	var err error
	if in.StartsAt, err = time.Parse(time.RFC3339, r.StartsAt); err != nil {
		return in, errors.New("starts_at must be RFC 3339")
	}
	if in.EndsAt, err = time.Parse(time.RFC3339, r.EndsAt); err != nil {
		return in, errors.New("ends_at must be RFC 3339")
	}
	if !in.EndsAt.After(in.StartsAt) {
		return in, errors.New("ends_at must be after starts_at")
	}
	return in, nil
}

func (h *handlers) adminListSessions(c *gin.Context) {
	sessions, err := h.deps.Promos.Sessions(c.Request.Context(), true)
	if err != nil {
		h.serverError(c, err)
		return
	}
	out := make([]wireFlashSaleSession, 0, len(sessions))
	for i := range sessions {
		out = append(out, toWireSession(&sessions[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) adminCreateSession(c *gin.Context) {
	var req adminSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", "name, starts_at, and ends_at are required")
		return
	}
	in, err := req.toInput()
	if err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	s, err := h.deps.Promos.CreateSession(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toWireSession(s))
}

func (h *handlers) adminUpdateSession(c *gin.Context) {
	var req adminSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", "name, starts_at, and ends_at are required")
		return
	}
	in, err := req.toInput()
	if err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	s, err := h.deps.Promos.UpdateSession(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireSession(s))
}

func (h *handlers) adminDeleteSession(c *gin.Context) {
	if err := h.deps.Promos.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type adminSessionItemRequest struct {
	ProductID     string  `json:"product_id" binding:"required"`
	SalePrice     float64 `json:"sale_price" binding:"required"`
	TotalQuantity int     `json:"total_quantity" binding:"required"`
}

func (h *handlers) adminAddSessionItem(c *gin.Context) {
	var req adminSessionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", "product_id, sale_price, and total_quantity are required")
		return
	}
	s, err := h.deps.Promos.AddSessionItem(c.Request.Context(), c.Param("id"), promorepo.ItemInput{
		ProductID:     req.ProductID,
		SalePrice:     req.SalePrice,
		TotalQuantity: req.TotalQuantity,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toWireSession(s))
}

func (h *handlers) adminRemoveSessionItem(c *gin.Context) {
	if err := h.deps.Promos.RemoveSessionItem(c.Request.Context(), c.Param("id"), c.Param("itemId")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---- banners ----

type adminBannerRequest struct {
	Title    string `json:"title" binding:"required"`
	ImageURL string `json:"image_url" binding:"required"`
	LinkURL  string `json:"link_url"`
	Position int    `json:"position"`
	IsActive *bool  `json:"is_active"`
}

func (r adminBannerRequest) toInput() promorepo.BannerInput {
	return promorepo.BannerInput{
		Title:    r.Title,
		ImageURL: r.ImageURL,
		LinkURL:  r.LinkURL,
		Position: r.Position,
		IsActive: r.IsActive == nil || *r.IsActive,
	}
}

func (h *handlers) adminListBanners(c *gin.Context) {
	banners, err := h.deps.Promos.Banners(c.Request.Context(), true)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireBanners(banners))
}

func (h *handlers) adminCreateBanner(c *gin.Context) {
	var req adminBannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", "title and image_url are required")
		return
	}
	b, err := h.deps.Promos.CreateBanner(c.Request.Context(), req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toWireBanners([]domain.Banner{*b})[0])
}

func (h *handlers) adminUpdateBanner(c *gin.Context) {
	var req adminBannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", "title and image_url are required")
		return
	}
	b, err := h.deps.Promos.UpdateBanner(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireBanners([]domain.Banner{*b})[0])
}

func (h *handlers) adminDeleteBanner(c *gin.Context) {
	if err := h.deps.Promos.DeleteBanner(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---- customers ----

func (h *handlers) adminListCustomers(c *gin.Context) {
	pageNum, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))

	customers, total, err := h.deps.Customers.List(c.Request.Context(), pageNum, pageSize)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if pageNum <= 0 {
		pageNum = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	c.JSON(http.StatusOK, page(c, total, pageNum, pageSize, toWireCustomers(customers)))
}

type customerActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func (h *handlers) adminSetCustomerActive(c *gin.Context) {
	var req customerActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", "is_active is required")
		return
	}
	customer, err := h.deps.Customers.SetActive(c.Request.Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireCustomer(customer))
}
