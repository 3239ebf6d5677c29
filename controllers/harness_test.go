package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-service/clients"
	"storefront-service/config"
	"storefront-service/controllers"
	"storefront-service/database"
	"storefront-service/events"
	"storefront-service/routes"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const adminEmail = "admin@lwg.sl"

// adminPassword is accepted both by the fake remote and by the local account.
const adminPassword = "pw"

var adminHash = func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}()

// ---- helpers ----

type harness struct {
	router  *gin.Engine
	store   *database.MemoryStore
	carts   *database.CartRepository
	local   *database.ProductRepository
	broker  *events.Broker
	catalog *services.CatalogService
}

// newHarness wires the full router against an in-memory store and a fake
// remote API served by remote. A nil remote answers 503 to everything.
func newHarness(t *testing.T, remote http.Handler, opts services.CatalogOptions) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if remote == nil {
		remote = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	srv := httptest.NewServer(remote)
	t.Cleanup(srv.Close)

	store := database.NewMemoryStore()
	broker := events.NewBroker()
	h := &harness{
		store:  store,
		carts:  database.NewCartRepository(store, time.Hour, broker, nil),
		local:  database.NewProductRepository(store),
		broker: broker,
	}
	api := clients.NewAPIClient(srv.URL, 2*time.Second)

	auth := services.NewAuthService(api, database.NewTokenRepository(store, time.Hour), services.AuthOptions{
		Remote:            opts.RemoteEnabled,
		LocalEmail:        adminEmail,
		LocalPasswordHash: adminHash,
	}, nil)
	h.catalog = services.NewCatalogService(api, h.local, auth, opts, nil)
	cart := services.NewCartService(h.carts, h.catalog)
	checkout := services.NewCheckoutService(h.carts, cart, api, nil, nil, services.CheckoutOptions{
		WhatsAppNumber: "23272146015",
		Currency:       "NLe",
		OrderIDPrefix:  "LWG",
		ReloadDelay:    1800 * time.Millisecond,
	}, nil)
	h.catalog.Load(context.Background())

	cfg := config.Config{CORSOrigins: []string{"http://localhost:3000"}, CheckoutRatePerMin: 1000, LoginRatePerMin: 1000}
	h.router = routes.NewRouter(cfg, routes.Controllers{
		Cart:     controllers.NewCartController(cart, broker),
		Catalog:  controllers.NewCatalogController(h.catalog),
		Admin:    controllers.NewAdminController(auth, h.catalog, opts),
		Checkout: controllers.NewCheckoutController(checkout),
		Auth:     auth,
	})
	return h
}

// login signs session in as admin and fails the test otherwise.
func (h *harness) login(t *testing.T, session string) {
	t.Helper()
	w := h.do(t, http.MethodPost, "/admin/login", session, map[string]string{"email": adminEmail, "password": adminPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func (h *harness) do(t *testing.T, method, path, session string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set("X-Session-ID", session)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}
