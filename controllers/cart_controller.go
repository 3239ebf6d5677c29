package controllers

import (
	"net/http"
	"time"

	"storefront-service/apperrors"
	"storefront-service/events"
	"storefront-service/middleware"
	"storefront-service/models"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
)

const defaultHeartbeat = 25 * time.Second

type CartController struct {
	carts     *services.CartService
	broker    *events.Broker
	heartbeat time.Duration
}

func NewCartController(carts *services.CartService, broker *events.Broker) *CartController {
	return &CartController{carts: carts, broker: broker, heartbeat: defaultHeartbeat}
}

type addItemRequest struct {
	ProductID models.ProductID `json:"product_id" binding:"required"`
}

type changeQtyRequest struct {
	Delta *int `json:"delta" binding:"required"`
}

// GetCart returns the session's cart. resetcart=1 starts a fresh cart first.
func (cc *CartController) GetCart(c *gin.Context) {
	sessionID := middleware.SessionID(c)

	reset := c.Query("resetcart")
	if reset == "1" || reset == "true" {
		cart, err := cc.carts.Init(c.Request.Context(), sessionID, true)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, cart)
		return
	}

	c.JSON(http.StatusOK, cc.carts.Get(c.Request.Context(), sessionID))
}

func (cc *CartController) Count(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": cc.carts.Count(c.Request.Context(), middleware.SessionID(c))})
}

// AddItem adds one unit of a catalog product.
func (cc *CartController) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Wrap(apperrors.ErrBadRequest, err))
		return
	}

	cart, err := cc.carts.AddByID(c.Request.Context(), middleware.SessionID(c), req.ProductID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// ChangeQty adjusts a line by delta; a line driven to zero is removed.
func (cc *CartController) ChangeQty(c *gin.Context) {
	var req changeQtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Wrap(apperrors.ErrBadRequest, err))
		return
	}

	cart, err := cc.carts.ChangeQty(c.Request.Context(), middleware.SessionID(c), models.ProductID(c.Param("id")), *req.Delta)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	cart, err := cc.carts.RemoveItem(c.Request.Context(), middleware.SessionID(c), models.ProductID(c.Param("id")))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (cc *CartController) ClearCart(c *gin.Context) {
	if err := cc.carts.Clear(c.Request.Context(), middleware.SessionID(c)); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}

// Events streams cart change notifications for the session as server-sent
// events, starting with the current count.
func (cc *CartController) Events(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := middleware.SessionID(c)

	changes, cancel := cc.broker.Subscribe(sessionID)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	cart := cc.carts.Get(ctx, sessionID)
	c.SSEvent("cart", models.CartChanged{SessionID: sessionID, Lines: len(cart.Items), Count: cart.Count})
	c.Writer.Flush()

	ticker := time.NewTicker(cc.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			c.SSEvent("cart", change)
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
		}
		c.Writer.Flush()
	}
}
