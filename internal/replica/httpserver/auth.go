package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmacy-storefront/internal/domain"
	customersvc "pharmacy-storefront/internal/replica/service/customer"
)

func (h *handlers) register(c *gin.Context) {
	var req customersvc.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", "invalid register payload")
		return
	}

	customer, accessToken, err := h.deps.Customers.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			apiError(c, http.StatusConflict, "EMAIL_TAKEN", "An account with this email already exists")
			return
		}
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"access_token": accessToken,
		"customer":     toWireCustomer(customer),
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", "email and password are required")
		return
	}

	customer, accessToken, err := h.deps.Customers.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, customersvc.ErrInvalidCredentials):
			apiError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
		case errors.Is(err, customersvc.ErrAccountDisabled):
			apiError(c, http.StatusForbidden, "ACCOUNT_DISABLED", "This account has been deactivated")
		default:
			h.serverError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
		"customer":     toWireCustomer(customer),
	})
}

func (h *handlers) logout(c *gin.Context) {
	if token, ok := c.Get("token"); ok {
		h.deps.Customers.Logout(c.Request.Context(), token.(string))
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) profile(c *gin.Context) {
	c.JSON(http.StatusOK, toWireCustomer(h.currentCustomer(c)))
}

type profileUpdateRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func (h *handlers) updateProfile(c *gin.Context) {
	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "BAD_REQUEST", "invalid profile payload")
		return
	}

	customer, err := h.deps.Customers.UpdateProfile(c.Request.Context(), h.currentCustomer(c).ID, req.FullName, req.Phone, req.Address)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireCustomer(customer))
}
