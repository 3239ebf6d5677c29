package database

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront-service/models"
)

const localProductsKey = "products:local"

// DefaultCatalog seeds the local product store when it is empty.
var DefaultCatalog = []models.Product{
	{
		ID:          "L1",
		Title:       "Men Classic T-Shirt",
		Category:    "Men",
		Price:       350,
		Stock:       20,
		Image:       "https://images.unsplash.com/photo-1520975922203-b2646e2718bf?w=600",
		Description: "Soft cotton tee, navy",
	},
	{
		ID:          "L2",
		Title:       "Women Summer Dress",
		Category:    "Women",
		Price:       520,
		Stock:       15,
		Image:       "https://images.unsplash.com/photo-1515378791036-0648a3ef77b2?w=600",
		Description: "Lightweight and elegant",
	},
	{
		ID:          "L3",
		Title:       "Kids Sneakers",
		Category:    "Kids",
		Price:       450,
		Stock:       25,
		Image:       "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=600",
		Description: "Comfortable everyday sneakers",
	},
	{
		ID:          "L4",
		Title:       "Bluetooth Headphones",
		Category:    "Electronics",
		Price:       980,
		Stock:       12,
		Image:       "https://images.unsplash.com/photo-1518443895914-6ce5f3c1d7d0?w=600",
		Description: "Clear sound, long battery",
	},
}

// ProductRepository is the local fallback product store.
type ProductRepository struct {
	store KVStore
}

func NewProductRepository(store KVStore) *ProductRepository {
	return &ProductRepository{store: store}
}

// List returns the locally stored products; unreadable data reads as empty.
func (r *ProductRepository) List(ctx context.Context) []models.Product {
	raw, found, err := r.store.Get(ctx, localProductsKey)
	if err != nil || !found {
		return []models.Product{}
	}
	var products []models.Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		return []models.Product{}
	}
	return products
}

// Save replaces the local product list.
func (r *ProductRepository) Save(ctx context.Context, products []models.Product) error {
	if products == nil {
		products = []models.Product{}
	}
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode products: %w", err)
	}
	if err := r.store.Set(ctx, localProductsKey, string(data), 0); err != nil {
		return fmt.Errorf("save products: %w", err)
	}
	return nil
}

// SeedIfEmpty stores the default catalog when the local store is empty and
// returns the local products.
func (r *ProductRepository) SeedIfEmpty(ctx context.Context) ([]models.Product, error) {
	products := r.List(ctx)
	if len(products) > 0 {
		return products, nil
	}
	seeded := make([]models.Product, len(DefaultCatalog))
	copy(seeded, DefaultCatalog)
	if err := r.Save(ctx, seeded); err != nil {
		return seeded, err
	}
	return seeded, nil
}

// Prepend adds a product at the front of the local list.
func (r *ProductRepository) Prepend(ctx context.Context, p models.Product) error {
	products := r.List(ctx)
	products = append([]models.Product{p}, products...)
	return r.Save(ctx, products)
}

// Delete removes a product by id. It reports whether a product was removed.
func (r *ProductRepository) Delete(ctx context.Context, id models.ProductID) (bool, error) {
	products := r.List(ctx)
	kept := products[:0]
	removed := false
	for _, p := range products {
		if p.ID == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return false, nil
	}
	return true, r.Save(ctx, kept)
}

// Replace overwrites the product with the same id. It reports whether it was found.
func (r *ProductRepository) Replace(ctx context.Context, p models.Product) (bool, error) {
	products := r.List(ctx)
	for i := range products {
		if products[i].ID == p.ID {
			products[i] = p
			return true, r.Save(ctx, products)
		}
	}
	return false, nil
}

// Clear drops every locally stored product.
func (r *ProductRepository) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, localProductsKey)
}
