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

type CheckoutController struct {
	checkout *services.CheckoutService
}

func NewCheckoutController(checkout *services.CheckoutService) *CheckoutController {
	return &CheckoutController{checkout: checkout}
}

type quoteRequest struct {
	DeliveryOption string `json:"delivery_option"`
}

func (cc *CheckoutController) PaymentMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"payment_methods": cc.checkout.PaymentMethods()})
}

// Quote totals the current cart for a delivery option.
func (cc *CheckoutController) Quote(c *gin.Context) {
	var req quoteRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(apperrors.Wrap(apperrors.ErrBadRequest, err))
			return
		}
	}
	c.JSON(http.StatusOK, cc.checkout.Quote(c.Request.Context(), middleware.SessionID(c), req.DeliveryOption))
}

// Checkout places the order and returns the WhatsApp hand-off link.
func (cc *CheckoutController) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Wrap(apperrors.ErrBadRequest, err))
		return
	}

	res, err := cc.checkout.Checkout(c.Request.Context(), middleware.SessionID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	logger.Info(c, "order placed", zap.String("order_id", res.OrderID), zap.Bool("remote_saved", res.RemoteSaved))
	c.JSON(http.StatusCreated, res)
}
