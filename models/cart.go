package models

// CartLine is one product/quantity pairing in a cart. Title, Price and Image are
// denormalized from the product for display.
type CartLine struct {
	ID    ProductID `json:"id"`
	Qty   int       `json:"qty"`
	Title string    `json:"title,omitempty"`
	Price float64   `json:"price,omitempty"`
	Image string    `json:"image,omitempty"`
}

type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []CartLine `json:"items"`
	Count     int        `json:"count"`
	Subtotal  float64    `json:"subtotal"`
}

// CartChanged is published after every cart write.
type CartChanged struct {
	SessionID string `json:"session_id"`
	Lines     int    `json:"lines"`
	Count     int    `json:"count"`
}

// TotalQty sums the quantities of the given lines.
func TotalQty(lines []CartLine) int {
	total := 0
	for _, l := range lines {
		total += l.Qty
	}
	return total
}
