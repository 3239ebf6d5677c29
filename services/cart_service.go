package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"storefront-service/apperrors"
	"storefront-service/models"
)

const lockStripes = 64

// ProductLookup resolves a product id against the catalog cache.
type ProductLookup interface {
	Get(id models.ProductID) (models.Product, bool)
}

// CartService applies cart mutations as read-modify-write through the cart
// store. Mutations of one session are serialized within this process.
type CartService struct {
	store   CartStore
	catalog ProductLookup
	locks   [lockStripes]sync.Mutex
}

func NewCartService(store CartStore, catalog ProductLookup) *CartService {
	return &CartService{store: store, catalog: catalog}
}

// Lock takes the session's cart lock and returns its release func. Callers that
// read and then rewrite a cart outside CartService hold it across both steps.
func (s *CartService) Lock(sessionID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	m := &s.locks[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}

func newCart(sessionID string, lines []models.CartLine) models.Cart {
	if lines == nil {
		lines = []models.CartLine{}
	}
	return models.Cart{
		SessionID: sessionID,
		Items:     lines,
		Count:     models.TotalQty(lines),
		Subtotal:  Subtotal(lines),
	}
}

func (s *CartService) Get(ctx context.Context, sessionID string) models.Cart {
	return newCart(sessionID, s.store.ReadCart(ctx, sessionID))
}

// Init applies the cart initialization policy: a missing cart or an explicit
// reset starts empty, anything else is re-normalized.
func (s *CartService) Init(ctx context.Context, sessionID string, reset bool) (models.Cart, error) {
	defer s.Lock(sessionID)()
	lines, err := s.store.InitCart(ctx, sessionID, reset)
	if err != nil {
		return models.Cart{}, err
	}
	return newCart(sessionID, lines), nil
}

// Count is the total quantity across all lines.
func (s *CartService) Count(ctx context.Context, sessionID string) int {
	return models.TotalQty(s.store.ReadCart(ctx, sessionID))
}

// AddToCart increments the line for product by one, creating it with the
// product's display fields when absent.
func (s *CartService) AddToCart(ctx context.Context, sessionID string, product models.Product) (models.Cart, error) {
	if product.ID == "" {
		return models.Cart{}, apperrors.Validationf("product id is required")
	}
	defer s.Lock(sessionID)()

	lines := s.store.ReadCart(ctx, sessionID)
	found := false
	for i := range lines {
		if lines[i].ID == product.ID {
			lines[i].Qty++
			found = true
			break
		}
	}
	if !found {
		lines = append(lines, models.CartLine{
			ID:    product.ID,
			Qty:   1,
			Title: product.Title,
			Price: product.Price,
			Image: product.Image,
		})
	}
	return s.write(ctx, sessionID, lines)
}

// AddByID adds the catalog product with the given id.
func (s *CartService) AddByID(ctx context.Context, sessionID string, id models.ProductID) (models.Cart, error) {
	product, ok := s.catalog.Get(id)
	if !ok {
		return models.Cart{}, apperrors.Wrap(apperrors.ErrNotFound, fmt.Errorf("product %s not found", id))
	}
	return s.AddToCart(ctx, sessionID, product)
}

// ChangeQty adds delta to the line's quantity and drops the line when it
// reaches zero or below. An unknown id leaves the cart unchanged.
func (s *CartService) ChangeQty(ctx context.Context, sessionID string, id models.ProductID, delta int) (models.Cart, error) {
	defer s.Lock(sessionID)()

	lines := s.store.ReadCart(ctx, sessionID)
	idx := -1
	for i := range lines {
		if lines[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return newCart(sessionID, lines), nil
	}

	lines[idx].Qty += delta
	if lines[idx].Qty <= 0 {
		lines = append(lines[:idx], lines[idx+1:]...)
	}
	return s.write(ctx, sessionID, lines)
}

// RemoveItem drops the line regardless of its quantity.
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, id models.ProductID) (models.Cart, error) {
	defer s.Lock(sessionID)()

	lines := s.store.ReadCart(ctx, sessionID)
	kept := lines[:0]
	for _, l := range lines {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	return s.write(ctx, sessionID, kept)
}

func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	defer s.Lock(sessionID)()
	_, err := s.store.WriteCart(ctx, sessionID, nil)
	return err
}

func (s *CartService) write(ctx context.Context, sessionID string, lines []models.CartLine) (models.Cart, error) {
	stored, err := s.store.WriteCart(ctx, sessionID, lines)
	if err != nil {
		return models.Cart{}, err
	}
	return newCart(sessionID, stored), nil
}
