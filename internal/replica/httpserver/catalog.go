package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pharmacy-storefront/internal/domain"
	productrepo "pharmacy-storefront/internal/replica/repository/product"
)

func listFilter(c *gin.Context) productrepo.Filter {
	f := productrepo.Filter{
		Search:           firstQuery(c, "search", "q"),
		CategorySlug:     c.Query("category"),
		ManufacturerSlug: c.Query("manufacturer"),
		Sort:             c.Query("ordering"),
	}
	f.Page, _ = strconv.Atoi(c.Query("page"))
	f.PageSize, _ = strconv.Atoi(c.Query("page_size"))
	if v, err := strconv.ParseFloat(c.Query("min_price"), 64); err == nil {
		f.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(c.Query("max_price"), 64); err == nil {
		f.MaxPrice = &v
	}
	if v, err := strconv.ParseBool(c.Query("featured")); err == nil {
		f.Featured = &v
	}
	if v, err := strconv.ParseBool(c.Query("on_sale")); err == nil {
		f.OnSale = &v
	}
	if v, err := strconv.ParseBool(c.Query("requires_prescription")); err == nil {
		f.Prescription = &v
	}
	return f
}

func firstQuery(c *gin.Context, keys ...string) string {
	for _, key := range keys {
		if v := c.Query(key); v != "" {
			return v
		}
	}
	return ""
}

func (h *handlers) listProducts(c *gin.Context) {
	h.serveListing(c, listFilter(c))
}

func (h *handlers) serveListing(c *gin.Context, f productrepo.Filter) {
	products, total, err := h.deps.Products.List(c.Request.Context(), f)
	if err != nil {
		h.serverError(c, err)
		return
	}
	pageNum := f.Page
	if pageNum <= 0 {
		pageNum = 1
	}
	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	c.JSON(http.StatusOK, page(c, total, pageNum, pageSize, toWireProducts(products)))
}

// featuredProducts responds with a bare array, matching the hosted API's
// shortcut endpoints. The storefront normalizer accepts both shapes.
func (h *handlers) featuredProducts(c *gin.Context) {
	featured := true
	f := listFilter(c)
	f.Featured = &featured
	products, _, err := h.deps.Products.List(c.Request.Context(), f)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireProducts(products))
}

func (h *handlers) onSaleProducts(c *gin.Context) {
	onSale := true
	f := listFilter(c)
	f.OnSale = &onSale
	h.serveListing(c, f)
}

func (h *handlers) newProducts(c *gin.Context) {
	f := listFilter(c)
	f.Sort = ""
	if f.PageSize <= 0 {
		f.PageSize = 12
	}
	h.serveListing(c, f)
}

func (h *handlers) productBySlug(c *gin.Context) {
	p, err := h.deps.Products.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "product")
			return
		}
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireProduct(*p))
}

func (h *handlers) toggleLike(c *gin.Context) {
	p, err := h.deps.Products.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "product")
			return
		}
		h.serverError(c, err)
		return
	}

	liked, count, err := h.deps.Products.ToggleLike(c.Request.Context(), h.currentCustomer(c).ID, p.ID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_liked": liked, "likes_count": count})
}

func (h *handlers) search(c *gin.Context) {
	h.serveListing(c, listFilter(c))
}

func (h *handlers) suggest(c *gin.Context) {
	names, err := h.deps.Products.Suggest(c.Request.Context(), c.Query("q"), 10)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": names})
}

func (h *handlers) categoryTree(c *gin.Context) {
	tree, err := h.deps.Categories.Tree(c.Request.Context(), false)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireCategories(tree))
}

func (h *handlers) categoryBySlug(c *gin.Context) {
	cat, err := h.deps.Categories.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "category")
			return
		}
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireCategory(*cat))
}

func (h *handlers) manufacturers(c *gin.Context) {
	ms, err := h.deps.Categories.Manufacturers(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireManufacturers(ms))
}

func (h *handlers) manufacturerBySlug(c *gin.Context) {
	m, err := h.deps.Categories.ManufacturerBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "manufacturer")
			return
		}
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireManufacturers([]domain.Manufacturer{*m})[0])
}

func (h *handlers) banners(c *gin.Context) {
	banners, err := h.deps.Promos.Banners(c.Request.Context(), false)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireBanners(banners))
}

func (h *handlers) serverError(c *gin.Context, err error) {
	h.logger.Printf("http: %s %s error=%v", c.Request.Method, c.Request.URL.Path, err)
	apiError(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
}
