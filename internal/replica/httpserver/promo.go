package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmacy-storefront/internal/domain"
)

func (h *handlers) activeFlashSale(c *gin.Context) {
	session, err := h.deps.Promos.ActiveSession(c.Request.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "flash sale")
			return
		}
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireSession(session))
}

func (h *handlers) flashSaleSessions(c *gin.Context) {
	sessions, err := h.deps.Promos.Sessions(c.Request.Context(), false)
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

func (h *handlers) flashSaleSessionBySlug(c *gin.Context) {
	session, err := h.deps.Promos.SessionBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "flash sale session")
			return
		}
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireSession(session))
}

func (h *handlers) flashSaleCheck(c *gin.Context) {
	productID := c.Query("product_id")
	if productID == "" {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", "product_id is required")
		return
	}

	item, err := h.deps.Promos.ProductCheck(c.Request.Context(), productID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if item == nil {
		c.JSON(http.StatusOK, gin.H{"in_flash_sale": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"in_flash_sale": true, "item": toWireItem(*item)})
}
