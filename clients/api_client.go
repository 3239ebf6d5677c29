package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"storefront-service/models"
)

// StatusError is returned when the remote API answers with a non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// APIClient calls the remote storefront API (products, auth, orders).
type APIClient struct {
	baseURL string
	client  *http.Client
}

func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (a *APIClient) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// ListProducts fetches GET /products. A null body decodes as an empty list.
func (a *APIClient) ListProducts(ctx context.Context) ([]models.RemoteProduct, error) {
	var rows []models.RemoteProduct
	if err := a.do(ctx, http.MethodGet, "/products", "", nil, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.RemoteProduct{}
	}
	return rows, nil
}

func (a *APIClient) CreateProduct(ctx context.Context, token string, req models.RemoteProductRequest) (models.RemoteProduct, error) {
	var created models.RemoteProduct
	err := a.do(ctx, http.MethodPost, "/products", token, req, &created)
	return created, err
}

func (a *APIClient) UpdateProduct(ctx context.Context, token string, id models.ProductID, req models.RemoteProductRequest) (models.RemoteProduct, error) {
	var updated models.RemoteProduct
	err := a.do(ctx, http.MethodPut, "/products/"+url.PathEscape(id.String()), token, req, &updated)
	return updated, err
}

func (a *APIClient) DeleteProduct(ctx context.Context, token string, id models.ProductID) error {
	return a.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id.String()), token, nil, nil)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges admin credentials for a bearer token.
func (a *APIClient) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	if err := a.do(ctx, http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("POST /auth/login: empty token in response")
	}
	return resp.Token, nil
}

func (a *APIClient) CreateOrder(ctx context.Context, payload models.OrderPayload) (models.CreatedOrder, error) {
	var created models.CreatedOrder
	err := a.do(ctx, http.MethodPost, "/orders", "", payload, &created)
	return created, err
}
