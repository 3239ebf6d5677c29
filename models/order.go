package models

import "time"

// CheckoutRequest is the customer-entered part of an order.
type CheckoutRequest struct {
	CustomerName   string `json:"customer_name" validate:"required"`
	Phone          string `json:"phone" validate:"required"`
	Address        string `json:"address"`
	DeliveryOption string `json:"delivery_option"` // "label|fee"
	PaymentMethod  string `json:"payment_method"`
	SourceURL      string `json:"source_url"`
}

// OrderItem is one line of the remote order payload.
type OrderItem struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Qty      int     `json:"qty"`
	ImageURL string  `json:"image_url"`
}

// OrderPayload is the body of POST /orders.
type OrderPayload struct {
	CustomerName     string      `json:"customer_name"`
	Phone            string      `json:"phone"`
	Address          string      `json:"address"`
	DeliveryLocation string      `json:"delivery_location"`
	DeliveryFee      float64     `json:"delivery_fee"`
	Subtotal         float64     `json:"subtotal"`
	Total            float64     `json:"total"`
	PaymentMethod    string      `json:"payment_method"`
	PaymentInfo      string      `json:"payment_info"`
	SourceURL        string      `json:"source_url"`
	Items            []OrderItem `json:"items"`
}

// CreatedOrder is the remote acknowledgement of POST /orders.
type CreatedOrder struct {
	ID ProductID `json:"id"`
}

// Quote holds the totals of a cart for a delivery option.
type Quote struct {
	Subtotal         float64 `json:"subtotal"`
	DeliveryLocation string  `json:"delivery_location"`
	DeliveryFee      float64 `json:"delivery_fee"`
	Total            float64 `json:"total"`
}

type CheckoutResult struct {
	OrderID       string  `json:"order_id"`
	RemoteSaved   bool    `json:"remote_saved"`
	Message       string  `json:"message"`
	WhatsAppURL   string  `json:"whatsapp_url"`
	Subtotal      float64 `json:"subtotal"`
	DeliveryFee   float64 `json:"delivery_fee"`
	Total         float64 `json:"total"`
	ReloadAfterMS int64   `json:"reload_after_ms"`
}

// OrderEvent is published after a checkout hands off to WhatsApp.
type OrderEvent struct {
	Event     string      `json:"event"`
	OrderID   string      `json:"order_id"`
	SessionID string      `json:"session_id"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
	Timestamp time.Time   `json:"timestamp"`
}

type PaymentMethod struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Info  string `json:"info"`
}

// PaymentMethods are the manual payment channels offered at checkout.
var PaymentMethods = map[string]PaymentMethod{
	"orange": {
		Key:   "orange",
		Label: "Orange Money",
		Info: "Account Name: LWG Partners Network\n" +
			"Wallet Number: +232 72 146 015\n" +
			"Note: Send payment reference with your name.",
	},
	"africell": {
		Key:   "africell",
		Label: "Africell Money",
		Info: "Account Name: LWG Partners Network\n" +
			"Wallet Number: +232 30 774 701\n" +
			"Note: Send payment reference with your name.",
	},
	"bank": {
		Key:   "bank",
		Label: "Bank Transfer",
		Info: "Bank: UBA\n" +
			"Account Name: LWG Partners Network\n" +
			"Account No: 5409-1003-0001-447\n" +
			"Branch: Freetown\n" +
			"Note: Include Order ID in transfer narration.",
	},
	"cod": {
		Key:   "cod",
		Label: "Cash on Delivery",
		Info:  "Pay the rider on delivery. Please keep the exact amount ready.",
	},
}

// PaymentMethodOrder is the display order of PaymentMethods.
var PaymentMethodOrder = []string{"orange", "africell", "bank", "cod"}
