package services

import (
	"context"
	"strings"
	"time"

	"storefront-service/apperrors"
	"storefront-service/events"
	"storefront-service/models"
	"storefront-service/sender"

	"go.uber.org/zap"
)

const sideEffectTimeout = 3 * time.Second

type CheckoutOptions struct {
	WhatsAppNumber string
	Currency       string
	OrderIDPrefix  string
	ReloadDelay    time.Duration
}

// CheckoutService assembles the order from the current cart, records it
// remotely when possible and hands it to WhatsApp.
type CheckoutService struct {
	carts     CartStore
	locks     SessionLocker
	orders    OrderAPI
	publisher events.OrderPublisher
	copier    sender.MessageSender
	opts      CheckoutOptions
	log       *zap.Logger
	now       func() time.Time
}

// NewCheckoutService wires the checkout. locks should be the CartService so a
// checkout and a concurrent cart edit cannot interleave. orders and copier may
// be nil to skip remote order persistence and the WhatsApp copy.
func NewCheckoutService(
	carts CartStore,
	locks SessionLocker,
	orders OrderAPI,
	publisher events.OrderPublisher,
	copier sender.MessageSender,
	opts CheckoutOptions,
	log *zap.Logger,
) *CheckoutService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutService{
		carts:     carts,
		locks:     locks,
		orders:    orders,
		publisher: publisher,
		copier:    copier,
		opts:      opts,
		log:       log,
		now:       time.Now,
	}
}

// PaymentMethods lists the payment options in display order.
func (s *CheckoutService) PaymentMethods() []models.PaymentMethod {
	out := make([]models.PaymentMethod, 0, len(models.PaymentMethodOrder))
	for _, key := range models.PaymentMethodOrder {
		out = append(out, models.PaymentMethods[key])
	}
	return out
}

// Quote computes the totals of the session's current cart.
func (s *CheckoutService) Quote(ctx context.Context, sessionID, deliveryOption string) models.Quote {
	return quote(s.carts.ReadCart(ctx, sessionID), deliveryOption)
}

func quote(lines []models.CartLine, deliveryOption string) models.Quote {
	subtotal := Subtotal(lines)
	label, fee := ParseDeliveryOption(deliveryOption)
	return models.Quote{
		Subtotal:         subtotal,
		DeliveryLocation: label,
		DeliveryFee:      fee,
		Total:            subtotal + fee,
	}
}

func normalizeRequest(req models.CheckoutRequest) models.CheckoutRequest {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	return req
}

// Validate checks the customer form without touching the cart.
func (s *CheckoutService) Validate(req models.CheckoutRequest) error {
	req = normalizeRequest(req)
	if err := validate.Struct(req); err != nil {
		return apperrors.Wrap(apperrors.ErrValidation, err)
	}
	if req.PaymentMethod != "" {
		if _, ok := models.PaymentMethods[req.PaymentMethod]; !ok {
			return apperrors.Validationf("unknown payment method %q", req.PaymentMethod)
		}
	}
	return nil
}

// Checkout validates the form, takes the current cart (read and cleared in one
// locked step), records the order remotely (best effort) and builds the
// WhatsApp message. Only validation failures and an empty cart are returned,
// and neither touches the cart.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string, req models.CheckoutRequest) (models.CheckoutResult, error) {
	if err := s.Validate(req); err != nil {
		return models.CheckoutResult{}, err
	}
	req = normalizeRequest(req)

	lines, err := s.takeCart(ctx, sessionID)
	if err != nil {
		return models.CheckoutResult{}, err
	}

	q := quote(lines, req.DeliveryOption)
	location := q.DeliveryLocation
	if location == "" {
		location = "Not selected"
	}
	payment := models.PaymentMethods[req.PaymentMethod]

	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.OrderItem{Title: l.Title, Price: l.Price, Qty: l.Qty, ImageURL: l.Image})
	}

	orderID, saved := s.recordOrder(ctx, models.OrderPayload{
		CustomerName:     req.CustomerName,
		Phone:            req.Phone,
		Address:          req.Address,
		DeliveryLocation: location,
		DeliveryFee:      q.DeliveryFee,
		Subtotal:         q.Subtotal,
		Total:            q.Total,
		PaymentMethod:    payment.Label,
		PaymentInfo:      payment.Info,
		SourceURL:        req.SourceURL,
		Items:            items,
	})

	message := BuildOrderMessage(OrderSummary{
		OrderID:          orderID,
		Currency:         s.opts.Currency,
		Lines:            lines,
		Subtotal:         q.Subtotal,
		DeliveryLocation: location,
		DeliveryFee:      q.DeliveryFee,
		Total:            q.Total,
		CustomerName:     req.CustomerName,
		Phone:            req.Phone,
		Address:          req.Address,
		Payment:          payment,
		SourceURL:        req.SourceURL,
	})

	s.announce(ctx, sessionID, orderID, items, q.Total, message)

	return models.CheckoutResult{
		OrderID:       orderID,
		RemoteSaved:   saved,
		Message:       message,
		WhatsAppURL:   WhatsAppLink(s.opts.WhatsAppNumber, message),
		Subtotal:      q.Subtotal,
		DeliveryFee:   q.DeliveryFee,
		Total:         q.Total,
		ReloadAfterMS: s.opts.ReloadDelay.Milliseconds(),
	}, nil
}

// takeCart reads and clears the cart under the session lock, so an item added
// concurrently either makes it into this order or stays in the cart.
func (s *CheckoutService) takeCart(ctx context.Context, sessionID string) ([]models.CartLine, error) {
	if s.locks != nil {
		defer s.locks.Lock(sessionID)()
	}

	lines := s.carts.ReadCart(ctx, sessionID)
	if len(lines) == 0 {
		return nil, apperrors.ErrEmptyCart
	}
	if _, err := s.carts.WriteCart(ctx, sessionID, nil); err != nil {
		s.log.Error("failed to clear cart after checkout", zap.String("session_id", sessionID), zap.Error(err))
	}
	return lines, nil
}

// recordOrder posts the order and returns the remote id, or the fallback id
// when the remote write fails or returns no id. saved reports a 2xx answer.
func (s *CheckoutService) recordOrder(ctx context.Context, payload models.OrderPayload) (string, bool) {
	fallback := FallbackOrderID(s.opts.OrderIDPrefix, s.now())
	if s.orders == nil {
		return fallback, false
	}

	created, err := s.orders.CreateOrder(ctx, payload)
	if err != nil {
		s.log.Warn("remote order save failed, using fallback id", zap.String("order_id", fallback), zap.Error(err))
		return fallback, false
	}
	if created.ID == "" {
		// saved, but the API did not tell us under which id
		return fallback, true
	}
	return "#" + created.ID.String(), true
}

// announce publishes the order event and sends the WhatsApp copy. Failures are
// logged only; the hand-off to the customer has already happened.
func (s *CheckoutService) announce(ctx context.Context, sessionID, orderID string, items []models.OrderItem, total float64, message string) {
	bg := context.WithoutCancel(ctx)

	pubCtx, cancel := context.WithTimeout(bg, sideEffectTimeout)
	err := s.publisher.PublishOrder(pubCtx, models.OrderEvent{
		Event:     events.OrderCheckoutEvent,
		OrderID:   orderID,
		SessionID: sessionID,
		Items:     items,
		Total:     total,
		Timestamp: s.now().UTC(),
	})
	cancel()
	if err != nil {
		s.log.Warn("order event publish failed", zap.String("order_id", orderID), zap.Error(err))
	}

	if s.copier == nil {
		return
	}
	sendCtx, cancel := context.WithTimeout(bg, sideEffectTimeout)
	defer cancel()
	if res, err := s.copier.SendMessage(sendCtx, message); err != nil {
		s.log.Warn("order copy to WhatsApp failed", zap.String("order_id", orderID), zap.Error(err))
	} else {
		s.log.Info("order copy sent", zap.String("order_id", orderID), zap.String("message_id", res.MessageID))
	}
}
