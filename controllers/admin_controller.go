package controllers

import (
	"net/http"

	"storefront-service/apperrors"
	"storefront-service/logger"
	"storefront-service/middleware"
	"storefront-service/models"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminController struct {
	auth    *services.AuthService
	catalog *services.CatalogService
	opts    services.CatalogOptions
}

func NewAdminController(auth *services.AuthService, catalog *services.CatalogService, opts services.CatalogOptions) *AdminController {
	return &AdminController{auth: auth, catalog: catalog, opts: opts}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ac *AdminController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Wrap(apperrors.ErrBadRequest, err))
		return
	}

	ctx := c.Request.Context()
	if err := ac.auth.Login(ctx, middleware.SessionID(c), req.Email, req.Password); err != nil {
		logger.Warn(ctx, "admin login failed", zap.Error(err))
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logged_in": true})
}

func (ac *AdminController) Logout(c *gin.Context) {
	if err := ac.auth.Logout(c.Request.Context(), middleware.SessionID(c)); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logged_in": false})
}

// Status reports the session's login state and the admin feature flags.
func (ac *AdminController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"logged_in":      ac.auth.IsLoggedIn(c.Request.Context(), middleware.SessionID(c)),
		"remote_enabled": ac.opts.RemoteEnabled,
		"edit_support":   ac.opts.EditSupport,
	})
}

func (ac *AdminController) AddProduct(c *gin.Context) {
	var payload models.ProductPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		_ = c.Error(apperrors.Wrap(apperrors.ErrBadRequest, err))
		return
	}

	res, err := ac.catalog.AddProduct(c.Request.Context(), middleware.SessionID(c), payload)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (ac *AdminController) UpdateProduct(c *gin.Context) {
	var payload models.ProductPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		_ = c.Error(apperrors.Wrap(apperrors.ErrBadRequest, err))
		return
	}

	res, err := ac.catalog.UpdateProduct(c.Request.Context(), middleware.SessionID(c), models.ProductID(c.Param("id")), payload)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ac *AdminController) DeleteProduct(c *gin.Context) {
	res, err := ac.catalog.DeleteProduct(c.Request.Context(), middleware.SessionID(c), models.ProductID(c.Param("id")))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ClearLocal drops all locally stored products.
func (ac *AdminController) ClearLocal(c *gin.Context) {
	products, err := ac.catalog.ClearLocal(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}
