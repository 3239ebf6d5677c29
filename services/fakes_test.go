package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront-service/database"
	"storefront-service/models"
	"storefront-service/sender"

	"golang.org/x/crypto/bcrypt"
)

// --- Mock remote API ---

type mockAPI struct {
	mu sync.Mutex

	products []models.RemoteProduct
	listErr  error

	createErr error
	deleteErr error
	updateErr error
	created   []models.RemoteProductRequest
	deleted   []models.ProductID
	updated   []models.ProductID

	loginToken string
	loginErr   error

	orderID  models.ProductID
	orderErr error
	orders   []models.OrderPayload
}

func (m *mockAPI) ListProducts(context.Context) ([]models.RemoteProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.RemoteProduct, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *mockAPI) CreateProduct(_ context.Context, _ string, req models.RemoteProductRequest) (models.RemoteProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return models.RemoteProduct{}, m.createErr
	}
	m.created = append(m.created, req)
	p := models.RemoteProduct{
		ID:       "100",
		Title:    req.Title,
		Category: req.Category,
		Price:    models.FlexNumber(req.Price),
		Stock:    models.FlexNumber(req.Stock),
		ImageURL: req.ImageURL,
	}
	m.products = append(m.products, p)
	return p, nil
}

func (m *mockAPI) UpdateProduct(_ context.Context, _ string, id models.ProductID, req models.RemoteProductRequest) (models.RemoteProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return models.RemoteProduct{}, m.updateErr
	}
	m.updated = append(m.updated, id)
	return models.RemoteProduct{ID: id, Title: req.Title}, nil
}

func (m *mockAPI) DeleteProduct(_ context.Context, _ string, id models.ProductID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockAPI) Login(_ context.Context, _, _ string) (string, error) {
	if m.loginErr != nil {
		return "", m.loginErr
	}
	return m.loginToken, nil
}

func (m *mockAPI) CreateOrder(_ context.Context, payload models.OrderPayload) (models.CreatedOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, payload)
	if m.orderErr != nil {
		return models.CreatedOrder{}, m.orderErr
	}
	return models.CreatedOrder{ID: m.orderID}, nil
}

// --- Mock publisher and sender ---

type mockPublisher struct {
	events []models.OrderEvent
	err    error
}

func (m *mockPublisher) PublishOrder(_ context.Context, e models.OrderEvent) error {
	m.events = append(m.events, e)
	return m.err
}

func (m *mockPublisher) Close() error { return nil }

type mockSender struct {
	messages []string
	err      error
}

func (m *mockSender) SendMessage(_ context.Context, msg string) (sender.SendResult, error) {
	m.messages = append(m.messages, msg)
	return sender.SendResult{MessageID: "SM1"}, m.err
}

// --- Helpers ---

var errNetwork = errors.New("dial tcp: connection refused")

const (
	localAdminEmail    = "admin@lwg.sl"
	localAdminPassword = "s3cret"
)

var localAdminHash = func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte(localAdminPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}()

type fixture struct {
	store    *database.MemoryStore
	carts    *database.CartRepository
	local    *database.ProductRepository
	tokens   *database.TokenRepository
	api      *mockAPI
	auth     *AuthService
	catalog  *CatalogService
	cart     *CartService
	checkout *CheckoutService
	pub      *mockPublisher
	copier   *mockSender
}

func newFixture(opts CatalogOptions) *fixture {
	store := database.NewMemoryStore()
	f := &fixture{
		store:  store,
		carts:  database.NewCartRepository(store, time.Hour, nil, nil),
		local:  database.NewProductRepository(store),
		tokens: database.NewTokenRepository(store, time.Hour),
		api:    &mockAPI{},
		pub:    &mockPublisher{},
		copier: &mockSender{},
	}
	f.auth = NewAuthService(f.api, f.tokens, AuthOptions{
		Remote:            opts.RemoteEnabled,
		LocalEmail:        localAdminEmail,
		LocalPasswordHash: localAdminHash,
	}, nil)
	f.catalog = NewCatalogService(f.api, f.local, f.auth, opts, nil)
	f.catalog.now = func() time.Time { return time.UnixMilli(1700000000000) }
	f.cart = NewCartService(f.carts, f.catalog)
	f.checkout = NewCheckoutService(f.carts, f.cart, f.api, f.pub, f.copier, CheckoutOptions{
		WhatsAppNumber: "23272146015",
		Currency:       "NLe",
		OrderIDPrefix:  "LWG",
		ReloadDelay:    1800 * time.Millisecond,
	}, nil)
	f.checkout.now = func() time.Time { return time.Date(2024, 3, 5, 7, 8, 9, 0, time.UTC) }
	return f
}
