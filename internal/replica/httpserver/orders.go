package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pharmacy-storefront/internal/domain"
	ordersvc "pharmacy-storefront/internal/replica/service/order"
	promosvc "pharmacy-storefront/internal/replica/service/promo"
)

type checkoutRequest struct {
	ReceiverName  string `json:"receiver_name"`
	ReceiverPhone string `json:"receiver_phone"`
	ShippingAddr  string `json:"shipping_address"`
	PaymentMethod string `json:"payment_method"`
	VoucherCode   string `json:"voucher_code"`
	Note          string `json:"note"`
}

func (h *handlers) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", "invalid checkout payload")
		return
	}

	order, err := h.deps.Orders.Checkout(c.Request.Context(), h.currentCustomer(c).ID, ordersvc.CheckoutInput{
		ReceiverName:  req.ReceiverName,
		ReceiverPhone: req.ReceiverPhone,
		ShippingAddr:  req.ShippingAddr,
		PaymentMethod: req.PaymentMethod,
		VoucherCode:   req.VoucherCode,
		Note:          req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, ordersvc.ErrEmptyCart):
			apiError(c, http.StatusBadRequest, "EMPTY_CART", "Your cart is empty")
		case errors.Is(err, ordersvc.ErrVoucherRejected):
			apiError(c, http.StatusBadRequest, "VOUCHER_REJECTED", err.Error())
		case errors.Is(err, domain.ErrOutOfStock):
			apiError(c, http.StatusConflict, "OUT_OF_STOCK", err.Error())
		default:
			h.serverError(c, err)
		}
		return
	}
	c.JSON(http.StatusCreated, toWireOrder(order))
}

func (h *handlers) myOrders(c *gin.Context) {
	pageNum, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))

	orders, total, err := h.deps.Orders.MyOrders(c.Request.Context(), h.currentCustomer(c).ID, pageNum, pageSize)
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

func (h *handlers) orderByID(c *gin.Context) {
	order, err := h.deps.Orders.OrderForCustomer(c.Request.Context(), h.currentCustomer(c).ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "order")
			return
		}
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireOrder(order))
}

func (h *handlers) cancelOrder(c *gin.Context) {
	order, err := h.deps.Orders.Cancel(c.Request.Context(), h.currentCustomer(c).ID, c.Param("id"))
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

func (h *handlers) invoice(c *gin.Context) {
	data, err := h.deps.Orders.Invoice(c.Request.Context(), h.currentCustomer(c).ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "order")
			return
		}
		h.serverError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=invoice.txt")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
}

type voucherCheckRequest struct {
	Code        string   `json:"code"`
	OrderTotal  float64  `json:"order_total"`
	ProductIDs  []string `json:"product_ids"`
	CategoryIDs []string `json:"category_ids"`
}

// calculateVoucher always answers 200 with a verdict; only infrastructure
// failures become 5xx.
func (h *handlers) calculateVoucher(c *gin.Context) {
	var req voucherCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", "code is required")
		return
	}

	verdict, err := h.deps.Promos.Check(c.Request.Context(), promosvc.CheckInput{
		Code:        req.Code,
		OrderTotal:  req.OrderTotal,
		ProductIDs:  req.ProductIDs,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireVoucherResult(verdict))
}
