package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

const DefaultCategory = "General"

// ProductID holds either a numeric id from the remote product service or an
// L-prefixed id from the local store. It decodes both JSON numbers and strings.
type ProductID string

func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ProductID(n.String())
	return nil
}

func (id ProductID) String() string { return string(id) }

type Product struct {
	ID          ProductID `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
}

// ProductPayload is the admin form for creating or editing a product.
type ProductPayload struct {
	Title       string  `json:"title" validate:"required"`
	Category    string  `json:"category"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
}

// Normalize trims the payload and applies the category default.
func (p ProductPayload) Normalize() ProductPayload {
	p.Title = strings.TrimSpace(p.Title)
	p.Category = strings.TrimSpace(p.Category)
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	p.Image = strings.TrimSpace(p.Image)
	p.Description = strings.TrimSpace(p.Description)
	return p
}

// RemoteProduct is the product shape served by the remote product API.
type RemoteProduct struct {
	ID          ProductID  `json:"id"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Price       FlexNumber `json:"price"`
	Stock       FlexNumber `json:"stock"`
	ImageURL    string     `json:"image_url"`
	Description string     `json:"description"`
}

// ToProduct maps the remote shape onto the canonical Product.
func (r RemoteProduct) ToProduct() Product {
	category := r.Category
	if category == "" {
		category = DefaultCategory
	}
	return Product{
		ID:          r.ID,
		Title:       r.Title,
		Category:    category,
		Price:       float64(r.Price),
		Stock:       int(r.Stock),
		Image:       r.ImageURL,
		Description: r.Description,
	}
}

// RemoteProductRequest is the body for POST and PUT /products.
type RemoteProductRequest struct {
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"image_url"`
	Description string  `json:"description"`
}

func NewRemoteProductRequest(p ProductPayload) RemoteProductRequest {
	return RemoteProductRequest{
		Title:       p.Title,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		ImageURL:    p.Image,
		Description: p.Description,
	}
}

// FlexNumber decodes JSON numbers, numeric strings, null and garbage into a
// float64, with anything unparsable becoming 0.
type FlexNumber float64

func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	s := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			*f = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		v = 0
	}
	*f = FlexNumber(v)
	return nil
}
