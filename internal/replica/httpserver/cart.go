package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmacy-storefront/internal/domain"
)

func (h *handlers) getCart(c *gin.Context) {
	cart, err := h.deps.Carts.GetByCustomer(c.Request.Context(), h.currentCustomer(c).ID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireCart(cart))
}

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", "product_id is required")
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	cart, err := h.deps.Carts.AddItem(c.Request.Context(), h.currentCustomer(c).ID, req.ProductID, req.Quantity)
	if err != nil {
		h.cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireCart(cart))
}

type updateItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func (h *handlers) updateCartItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity < 1 {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", "quantity must be at least 1")
		return
	}

	cart, err := h.deps.Carts.UpdateItem(c.Request.Context(), h.currentCustomer(c).ID, c.Param("id"), req.Quantity)
	if err != nil {
		h.cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireCart(cart))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	cart, err := h.deps.Carts.RemoveItem(c.Request.Context(), h.currentCustomer(c).ID, c.Param("id"))
	if err != nil {
		h.cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireCart(cart))
}

func (h *handlers) clearCart(c *gin.Context) {
	cart, err := h.deps.Carts.Clear(c.Request.Context(), h.currentCustomer(c).ID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireCart(cart))
}

func (h *handlers) cartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		notFound(c, "cart item")
	case errors.Is(err, domain.ErrOutOfStock):
		apiError(c, http.StatusConflict, "OUT_OF_STOCK", "Requested quantity exceeds available stock")
	default:
		h.serverError(c, err)
	}
}
