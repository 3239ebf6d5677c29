package services

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront-service/models"
)

// Subtotal is the sum of price * qty over all lines.
func Subtotal(lines []models.CartLine) float64 {
	total := 0.0
	for _, l := range lines {
		total += l.Price * float64(l.Qty)
	}
	return total
}

// ParseDeliveryOption splits a "label|fee" option. A missing, unparsable or
// negative fee yields 0.
func ParseDeliveryOption(option string) (label string, fee float64) {
	option = strings.TrimSpace(option)
	if option == "" {
		return "", 0
	}
	label, feeRaw, _ := strings.Cut(option, "|")
	label = strings.TrimSpace(label)

	fee, err := strconv.ParseFloat(strings.TrimSpace(feeRaw), 64)
	if err != nil || math.IsNaN(fee) || math.IsInf(fee, 0) || fee < 0 {
		return label, 0
	}
	return label, fee
}

// FallbackOrderID formats PREFIX-YYYYMMDD-HHMMSS from t.
func FallbackOrderID(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%s", prefix, t.Format("20060102-150405"))
}

// OrderSummary is everything the order message shows.
type OrderSummary struct {
	OrderID          string
	Currency         string
	Lines            []models.CartLine
	Subtotal         float64
	DeliveryLocation string
	DeliveryFee      float64
	Total            float64
	CustomerName     string
	Phone            string
	Address          string
	Payment          models.PaymentMethod
	SourceURL        string
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// BuildOrderMessage renders the order as the multi-line text sent to WhatsApp.
// The output depends only on the summary.
func BuildOrderMessage(s OrderSummary) string {
	money := func(v float64) string {
		return fmt.Sprintf("%s %.2f", s.Currency, v)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "NEW ORDER: %s\n", s.OrderID)
	b.WriteString("Items:\n")
	for i, l := range s.Lines {
		fmt.Fprintf(&b, "%d. %s  |  Qty: %d  |  @ %s  |  Line: %s\n",
			i+1, orDash(l.Title), l.Qty, money(l.Price), money(l.Price*float64(l.Qty)))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", money(s.Subtotal))
	fmt.Fprintf(&b, "Delivery (%s): %s\n", orDash(s.DeliveryLocation), money(s.DeliveryFee))
	fmt.Fprintf(&b, "Grand Total: %s\n", money(s.Total))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Customer: %s | %s\n", orDash(s.CustomerName), orDash(s.Phone))
	fmt.Fprintf(&b, "Address: %s\n", orDash(s.Address))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Payment: %s\n", orDash(s.Payment.Label))
	if s.Payment.Info != "" {
		fmt.Fprintf(&b, "Payment Details:\n%s\n", s.Payment.Info)
	}
	if s.SourceURL != "" {
		fmt.Fprintf(&b, "Source: %s\n", s.SourceURL)
	}
	return strings.TrimRight(b.String(), "\n")
}

// WhatsAppLink builds the wa.me deep-link that opens a chat with number and
// message pre-filled.
func WhatsAppLink(number, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	// QueryEscape turns spaces into '+', which wa.me shows literally.
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + digits + "?text=" + text
}
