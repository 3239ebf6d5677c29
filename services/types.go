package services

import (
	"context"

	"storefront-service/models"

	"github.com/go-playground/validator/v10"
)

// ProductAPI is the remote product service.
type ProductAPI interface {
	ListProducts(ctx context.Context) ([]models.RemoteProduct, error)
	CreateProduct(ctx context.Context, token string, req models.RemoteProductRequest) (models.RemoteProduct, error)
	UpdateProduct(ctx context.Context, token string, id models.ProductID, req models.RemoteProductRequest) (models.RemoteProduct, error)
	DeleteProduct(ctx context.Context, token string, id models.ProductID) error
}

// AuthAPI exchanges admin credentials for a bearer token.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// OrderAPI records orders remotely.
type OrderAPI interface {
	CreateOrder(ctx context.Context, payload models.OrderPayload) (models.CreatedOrder, error)
}

// CartStore is the persistent cart store with normalize-on-write.
type CartStore interface {
	ReadCart(ctx context.Context, sessionID string) []models.CartLine
	WriteCart(ctx context.Context, sessionID string, lines []models.CartLine) ([]models.CartLine, error)
	InitCart(ctx context.Context, sessionID string, reset bool) ([]models.CartLine, error)
}

// SessionLocker serializes cart mutations of one session.
type SessionLocker interface {
	Lock(sessionID string) (unlock func())
}

// LocalProductStore is the local fallback product store.
type LocalProductStore interface {
	List(ctx context.Context) []models.Product
	SeedIfEmpty(ctx context.Context) ([]models.Product, error)
	Prepend(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id models.ProductID) (bool, error)
	Replace(ctx context.Context, p models.Product) (bool, error)
	Clear(ctx context.Context) error
}

// TokenStore holds the admin token of each session.
type TokenStore interface {
	Get(ctx context.Context, sessionID string) string
	Set(ctx context.Context, sessionID, token string) error
	Clear(ctx context.Context, sessionID string) error
}

// MutationSource records which path applied an admin product mutation.
type MutationSource string

const (
	SourceRemote MutationSource = "remote"
	SourceLocal  MutationSource = "local"
)

type MutationResult struct {
	Source  MutationSource  `json:"source"`
	Product *models.Product `json:"product,omitempty"`
}

var validate = validator.New()
