package httpserver

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"pharmacy-storefront/internal/domain"
)

const customerKey = "customer"

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	if len(corsOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     corsOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}

	api := router.Group("/api")
	api.Use(h.identify)

	api.POST("/auth/register/", h.register)
	api.POST("/auth/login/", h.login)
	api.POST("/auth/logout/", h.requireAuth, h.logout)
	api.GET("/auth/profile/", h.requireAuth, h.profile)
	api.PATCH("/auth/profile/", h.requireAuth, h.updateProfile)

	api.GET("/products/", h.listProducts)
	api.GET("/products/featured/", h.featuredProducts)
	api.GET("/products/on-sale/", h.onSaleProducts)
	api.GET("/products/new/", h.newProducts)
	api.GET("/products/:slug/", h.productBySlug)
	api.POST("/products/:slug/like/", h.requireAuth, h.toggleLike)

	api.GET("/search/", h.search)
	api.GET("/search/suggest/", h.suggest)

	api.GET("/categories/tree/", h.categoryTree)
	api.GET("/categories/:slug/", h.categoryBySlug)
	api.GET("/manufacturers/", h.manufacturers)
	api.GET("/manufacturers/:slug/", h.manufacturerBySlug)

	api.GET("/banners/", h.banners)

	api.GET("/flash-sale/", h.activeFlashSale)
	api.GET("/flash-sale/sessions/", h.flashSaleSessions)
	api.GET("/flash-sale/sessions/:slug/", h.flashSaleSessionBySlug)
	api.GET("/flash-sale/check/", h.flashSaleCheck)

	api.GET("/cart/", h.requireAuth, h.getCart)
	api.POST("/cart/add/", h.requireAuth, h.addCartItem)
	api.PATCH("/cart/items/:id/", h.requireAuth, h.updateCartItem)
	api.DELETE("/cart/items/:id/", h.requireAuth, h.removeCartItem)
	api.POST("/cart/clear/", h.requireAuth, h.clearCart)

	api.POST("/orders/", h.requireAuth, h.checkout)
	api.GET("/orders/my-orders/", h.requireAuth, h.myOrders)
	api.GET("/orders/:id/", h.requireAuth, h.orderByID)
	api.POST("/orders/:id/cancel/", h.requireAuth, h.cancelOrder)
	api.GET("/orders/:id/invoice/", h.requireAuth, h.invoice)

	api.POST("/vouchers/calculate/", h.calculateVoucher)

	admin := api.Group("/admin")
	admin.Use(h.requireAuth, h.requireStaff)

	admin.GET("/products/", h.adminListProducts)
	admin.POST("/products/", h.adminCreateProduct)
	admin.PATCH("/products/:id/", h.adminUpdateProduct)
	admin.DELETE("/products/:id/", h.adminDeleteProduct)

	admin.POST("/categories/", h.adminCreateCategory)
	admin.PATCH("/categories/:id/", h.adminUpdateCategory)
	admin.DELETE("/categories/:id/", h.adminDeleteCategory)

	admin.GET("/orders/", h.adminListOrders)
	admin.PATCH("/orders/:id/status/", h.adminOrderStatus)

	admin.GET("/vouchers/", h.adminListVouchers)
	admin.POST("/vouchers/", h.adminCreateVoucher)
	admin.PATCH("/vouchers/:id/", h.adminUpdateVoucher)
	admin.DELETE("/vouchers/:id/", h.adminDeleteVoucher)

	admin.GET("/flash-sale/sessions/", h.adminListSessions)
	admin.POST("/flash-sale/sessions/", h.adminCreateSession)
	admin.PATCH("/flash-sale/sessions/:id/", h.adminUpdateSession)
	admin.DELETE("/flash-sale/sessions/:id/", h.adminDeleteSession)
	admin.POST("/flash-sale/sessions/:id/items/", h.adminAddSessionItem)
	admin.DELETE("/flash-sale/sessions/:id/items/:itemId/", h.adminRemoveSessionItem)

	admin.GET("/banners/", h.adminListBanners)
	admin.POST("/banners/", h.adminCreateBanner)
	admin.PATCH("/banners/:id/", h.adminUpdateBanner)
	admin.DELETE("/banners/:id/", h.adminDeleteBanner)

	admin.GET("/customers/", h.adminListCustomers)
	admin.PATCH("/customers/:id/", h.adminSetCustomerActive)

	return router
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}

// identify resolves the bearer token when one is present. Missing or invalid
// tokens leave the request anonymous; requireAuth decides whether that is
// acceptable.
func (h *handlers) identify(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return
	}
	token := strings.TrimPrefix(header, "Bearer ")
	customer, err := h.deps.Customers.Authenticate(c.Request.Context(), token)
	if err != nil {
		return
	}
	c.Set(customerKey, customer)
	c.Set("token", token)
}

func (h *handlers) requireAuth(c *gin.Context) {
	if _, ok := c.Get(customerKey); !ok {
		apiError(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		c.Abort()
	}
}

func (h *handlers) requireStaff(c *gin.Context) {
	if !h.currentCustomer(c).IsStaff {
		apiError(c, http.StatusForbidden, "FORBIDDEN", "staff access required")
		c.Abort()
	}
}

func (h *handlers) currentCustomer(c *gin.Context) *domain.Customer {
	v, _ := c.Get(customerKey)
	customer, _ := v.(*domain.Customer)
	return customer
}
