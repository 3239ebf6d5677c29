package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"storefront-service/apperrors"
	"storefront-service/clients"
	"storefront-service/models"

	"go.uber.org/zap"
)

type CatalogOptions struct {
	RemoteEnabled      bool
	EditSupport        bool
	AdminLocalFallback bool
}

// TokenSource yields the admin bearer token of a session, or "" when the
// session is not logged in.
type TokenSource interface {
	Token(ctx context.Context, sessionID string) string
	Logout(ctx context.Context, sessionID string) error
}

// CatalogService owns the in-memory product catalog. It loads from the remote
// product API when enabled and falls back to the local product store.
type CatalogService struct {
	api    ProductAPI
	local  LocalProductStore
	tokens TokenSource
	opts   CatalogOptions
	log    *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	products []models.Product
}

func NewCatalogService(api ProductAPI, local LocalProductStore, tokens TokenSource, opts CatalogOptions, log *zap.Logger) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogService{
		api:      api,
		local:    local,
		tokens:   tokens,
		opts:     opts,
		log:      log,
		now:      time.Now,
		products: []models.Product{},
	}
}

// Load refreshes the cache and returns the loaded products. It never fails:
// remote errors fall back to the local store.
func (s *CatalogService) Load(ctx context.Context) []models.Product {
	products := s.fetch(ctx)

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()

	return cloneProducts(products)
}

func (s *CatalogService) fetch(ctx context.Context) []models.Product {
	if !s.opts.RemoteEnabled || s.api == nil {
		return s.seededLocal(ctx)
	}

	rows, err := s.api.ListProducts(ctx)
	if err != nil {
		s.log.Warn("remote products failed, using local", zap.Error(err))
		return s.seededLocal(ctx)
	}

	// An empty remote catalog must not hide admin-entered items that only exist locally.
	if len(rows) == 0 {
		if local := s.local.List(ctx); len(local) > 0 {
			return local
		}
	}

	products := make([]models.Product, 0, len(rows))
	for _, r := range rows {
		products = append(products, r.ToProduct())
	}
	return products
}

func (s *CatalogService) seededLocal(ctx context.Context) []models.Product {
	products, err := s.local.SeedIfEmpty(ctx)
	if err != nil {
		s.log.Warn("failed to persist seeded catalog", zap.Error(err))
	}
	if products == nil {
		products = []models.Product{}
	}
	return products
}

// Products returns a copy of the cached catalog.
func (s *CatalogService) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.products)
}

// Get looks a product up in the cache.
func (s *CatalogService) Get(id models.ProductID) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// Categories returns the distinct non-empty categories in first-seen order.
func (s *CatalogService) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	categories := []string{}
	for _, p := range s.products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}

// Search matches query case-insensitively against title, category and
// description. A non-empty category must match exactly.
func (s *CatalogService) Search(query, category string) []models.Product {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Product{}
	for _, p := range s.products {
		if category != "" && p.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Category), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func validatePayload(payload models.ProductPayload) (models.ProductPayload, error) {
	payload = payload.Normalize()
	if payload.Title == "" {
		return payload, apperrors.Validationf("title is required")
	}
	if err := validate.Struct(payload); err != nil {
		return payload, apperrors.Wrap(apperrors.ErrValidation, err)
	}
	return payload, nil
}

// remoteToken returns the token to use for a remote mutation, or "" when the
// mutation must go to the local store.
func (s *CatalogService) remoteToken(ctx context.Context, sessionID string) string {
	if !s.opts.RemoteEnabled || s.api == nil || s.tokens == nil {
		return ""
	}
	return s.tokens.Token(ctx, sessionID)
}

// remoteFailed decides whether a failed remote mutation may fall back to the
// local store. An unauthorized answer also logs the session out.
func (s *CatalogService) remoteFailed(ctx context.Context, sessionID, op string, err error) error {
	if clients.IsStatus(err, http.StatusUnauthorized) {
		_ = s.tokens.Logout(ctx, sessionID)
	}
	if !s.opts.AdminLocalFallback {
		return apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("%s: %w", op, err))
	}
	s.log.Warn("remote product mutation failed, using local fallback",
		zap.String("op", op),
		zap.String("session_id", sessionID),
		zap.Error(err),
	)
	return nil
}

// AddProduct saves a product remotely when the session is logged in, and to the
// local store otherwise or when the remote call fails.
func (s *CatalogService) AddProduct(ctx context.Context, sessionID string, payload models.ProductPayload) (MutationResult, error) {
	payload, err := validatePayload(payload)
	if err != nil {
		return MutationResult{}, err
	}

	if token := s.remoteToken(ctx, sessionID); token != "" {
		created, err := s.api.CreateProduct(ctx, token, models.NewRemoteProductRequest(payload))
		if err == nil {
			s.Load(ctx)
			p := created.ToProduct()
			return MutationResult{Source: SourceRemote, Product: &p}, nil
		}
		if ferr := s.remoteFailed(ctx, sessionID, "create product", err); ferr != nil {
			return MutationResult{}, ferr
		}
	}

	p := models.Product{
		ID:          s.nextLocalID(ctx),
		Title:       payload.Title,
		Category:    payload.Category,
		Price:       payload.Price,
		Stock:       payload.Stock,
		Image:       payload.Image,
		Description: payload.Description,
	}
	if err := s.local.Prepend(ctx, p); err != nil {
		return MutationResult{}, fmt.Errorf("save local product: %w", err)
	}
	s.Load(ctx)
	return MutationResult{Source: SourceLocal, Product: &p}, nil
}

// DeleteProduct removes a product remotely when logged in, locally otherwise.
func (s *CatalogService) DeleteProduct(ctx context.Context, sessionID string, id models.ProductID) (MutationResult, error) {
	if token := s.remoteToken(ctx, sessionID); token != "" {
		err := s.api.DeleteProduct(ctx, token, id)
		if err == nil {
			s.Load(ctx)
			return MutationResult{Source: SourceRemote}, nil
		}
		if ferr := s.remoteFailed(ctx, sessionID, "delete product", err); ferr != nil {
			return MutationResult{}, ferr
		}
	}

	removed, err := s.local.Delete(ctx, id)
	if err != nil {
		return MutationResult{}, fmt.Errorf("delete local product: %w", err)
	}
	if !removed {
		return MutationResult{}, apperrors.Wrap(apperrors.ErrNotFound, fmt.Errorf("product %s not found", id))
	}
	s.Load(ctx)
	return MutationResult{Source: SourceLocal}, nil
}

// UpdateProduct edits a product. It is only available with edit support enabled.
func (s *CatalogService) UpdateProduct(ctx context.Context, sessionID string, id models.ProductID, payload models.ProductPayload) (MutationResult, error) {
	if !s.opts.EditSupport {
		return MutationResult{}, apperrors.ErrEditDisabled
	}
	payload, err := validatePayload(payload)
	if err != nil {
		return MutationResult{}, err
	}

	if token := s.remoteToken(ctx, sessionID); token != "" {
		updated, err := s.api.UpdateProduct(ctx, token, id, models.NewRemoteProductRequest(payload))
		if err == nil {
			s.Load(ctx)
			p := updated.ToProduct()
			if p.ID == "" {
				p.ID = id
			}
			return MutationResult{Source: SourceRemote, Product: &p}, nil
		}
		if ferr := s.remoteFailed(ctx, sessionID, "update product", err); ferr != nil {
			return MutationResult{}, ferr
		}
	}

	p := models.Product{
		ID:          id,
		Title:       payload.Title,
		Category:    payload.Category,
		Price:       payload.Price,
		Stock:       payload.Stock,
		Image:       payload.Image,
		Description: payload.Description,
	}
	found, err := s.local.Replace(ctx, p)
	if err != nil {
		return MutationResult{}, fmt.Errorf("update local product: %w", err)
	}
	if !found {
		return MutationResult{}, apperrors.Wrap(apperrors.ErrNotFound, fmt.Errorf("product %s not found", id))
	}
	s.Load(ctx)
	return MutationResult{Source: SourceLocal, Product: &p}, nil
}

// ClearLocal drops every locally stored product and reloads the catalog.
func (s *CatalogService) ClearLocal(ctx context.Context) ([]models.Product, error) {
	if err := s.local.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clear local products: %w", err)
	}
	return s.Load(ctx), nil
}

// nextLocalID returns an L-prefixed millisecond id not already in the local store.
func (s *CatalogService) nextLocalID(ctx context.Context) models.ProductID {
	taken := make(map[models.ProductID]struct{})
	for _, p := range s.local.List(ctx) {
		taken[p.ID] = struct{}{}
	}
	ms := s.now().UnixMilli()
	for {
		id := models.ProductID(fmt.Sprintf("L%d", ms))
		if _, ok := taken[id]; !ok {
			return id
		}
		ms++
	}
}

func cloneProducts(in []models.Product) []models.Product {
	out := make([]models.Product, len(in))
	copy(out, in)
	return out
}
