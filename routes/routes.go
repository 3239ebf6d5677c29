package routes

import (
	"net/http"
	"time"

	"storefront-service/apperrors"
	"storefront-service/config"
	"storefront-service/controllers"
	"storefront-service/logger"
	"storefront-service/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Controllers groups the HTTP handlers the router exposes.
type Controllers struct {
	Cart     *controllers.CartController
	Catalog  *controllers.CatalogController
	Admin    *controllers.AdminController
	Checkout *controllers.CheckoutController
	Auth     middleware.AdminChecker
}

// NewRouter builds the gin engine with the global middleware chain and every
// storefront route registered.
func NewRouter(cfg config.Config, h Controllers) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(middleware.Session())
	r.Use(apperrors.ErrorMiddleware())

	RegisterRoutes(r, cfg, h)
	return r
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.SessionHeader},
		ExposeHeaders: []string{"Content-Length", middleware.SessionHeader, "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cc.AllowAllOrigins = true
			return cc
		}
	}
	cc.AllowOrigins = origins
	return cc
}

func RegisterRoutes(r *gin.Engine, cfg config.Config, h Controllers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	cart := r.Group("/cart")
	{
		cart.GET("", h.Cart.GetCart)
		cart.GET("/count", h.Cart.Count)
		cart.GET("/events", h.Cart.Events)
		cart.POST("/items", h.Cart.AddItem)
		cart.PATCH("/items/:id", h.Cart.ChangeQty)
		cart.DELETE("/items/:id", h.Cart.RemoveItem)
		cart.DELETE("", h.Cart.ClearCart)
	}

	products := r.Group("/products")
	{
		products.GET("", h.Catalog.ListProducts)
		products.GET("/categories", h.Catalog.Categories)
		products.POST("/reload", h.Catalog.Reload)
	}

	admin := r.Group("/admin")
	{
		admin.POST("/login", middleware.RateLimitMiddleware(cfg.LoginRatePerMin), h.Admin.Login)
		admin.POST("/logout", h.Admin.Logout)
		admin.GET("/status", h.Admin.Status)

		manage := admin.Group("/products", middleware.RequireAdmin(h.Auth))
		manage.POST("", h.Admin.AddProduct)
		manage.DELETE("/local", h.Admin.ClearLocal)
		manage.PUT("/:id", h.Admin.UpdateProduct)
		manage.DELETE("/:id", h.Admin.DeleteProduct)
	}

	checkout := r.Group("/checkout")
	{
		checkout.GET("/payment-methods", h.Checkout.PaymentMethods)
		checkout.POST("/quote", h.Checkout.Quote)
		checkout.POST("", middleware.RateLimitMiddleware(cfg.CheckoutRatePerMin), h.Checkout.Checkout)
	}
}
