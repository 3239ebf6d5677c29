package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/clients"
	"storefront-service/config"
	"storefront-service/controllers"
	"storefront-service/database"
	"storefront-service/events"
	"storefront-service/logger"
	"storefront-service/routes"
	"storefront-service/sender"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const adminTokenTTL = 24 * time.Hour

func main() {
	cfg := config.Load()

	log := logger.Initialize(cfg.AppEnv)
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// --- 1. Storage and change notifications ---

	broker := events.NewBroker()
	var (
		store       database.KVStore
		notifier    database.CartNotifier = broker
		redisClient *redis.Client
	)
	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		redisClient = client
		store = database.NewRedisStore(client)

		relay := events.NewRedisRelay(client, broker, log)
		notifier = relay
		go relay.Run(ctx)
		log.Info("Using Redis store", zap.String("channel", events.CartChangedChannel))
	} else {
		store = database.NewMemoryStore()
		log.Warn("REDIS_URL not set, carts are kept in memory")
	}

	cartRepo := database.NewCartRepository(store, cfg.CartTTL, notifier, log)
	productRepo := database.NewProductRepository(store)
	tokenRepo := database.NewTokenRepository(store, adminTokenTTL)

	// --- 2. Remote API ---

	api := clients.NewAPIClient(cfg.APIBase, cfg.APITimeout)
	var (
		productAPI services.ProductAPI
		orderAPI   services.OrderAPI = api
	)
	if cfg.UseAPIProducts {
		productAPI = api
	}

	// --- 3. Order side effects ---

	publisher := newOrderPublisher(ctx, cfg, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("Failed to close order publisher", zap.Error(err))
		}
	}()

	var copier sender.MessageSender
	if cfg.TwilioAccountSID != "" {
		s, err := sender.NewTwilioWhatsAppSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.WhatsAppNumber)
		if err != nil {
			log.Warn("Twilio order copy disabled", zap.Error(err))
		} else {
			copier = s
		}
	}

	// --- 4. Services and controllers ---

	catalogOpts := services.CatalogOptions{
		RemoteEnabled:      cfg.UseAPIProducts,
		EditSupport:        cfg.EditSupport,
		AdminLocalFallback: cfg.AdminLocalFallback,
	}
	authService := services.NewAuthService(api, tokenRepo, services.AuthOptions{
		Remote:            cfg.UseAPIProducts,
		LocalEmail:        cfg.AdminEmail,
		LocalPasswordHash: cfg.AdminPasswordHash,
	}, log)
	if !cfg.UseAPIProducts && (cfg.AdminEmail == "" || cfg.AdminPasswordHash == "") {
		log.Warn("ADMIN_EMAIL or ADMIN_PASSWORD_HASH not set, admin product editing is unavailable")
	}
	catalogService := services.NewCatalogService(productAPI, productRepo, authService, catalogOpts, log)
	cartService := services.NewCartService(cartRepo, catalogService)
	checkoutService := services.NewCheckoutService(cartRepo, cartService, orderAPI, publisher, copier, services.CheckoutOptions{
		WhatsAppNumber: cfg.WhatsAppNumber,
		Currency:       cfg.CurrencyLabel,
		OrderIDPrefix:  cfg.OrderIDPrefix,
		ReloadDelay:    cfg.ReloadDelay,
	}, log)

	products := catalogService.Load(ctx)
	log.Info("Catalog loaded", zap.Int("products", len(products)), zap.Bool("remote", cfg.UseAPIProducts))

	r := routes.NewRouter(cfg, routes.Controllers{
		Cart:     controllers.NewCartController(cartService, broker),
		Catalog:  controllers.NewCatalogController(catalogService),
		Admin:    controllers.NewAdminController(authService, catalogService, catalogOpts),
		Checkout: controllers.NewCheckoutController(checkoutService),
		Auth:     authService,
	})

	// --- 5. HTTP server and graceful shutdown ---

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info("Storefront service starting", zap.String("port", cfg.Port), zap.String("api_base", cfg.APIBase))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down storefront service...")

	// ends the Redis relay and any open event streams
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis", zap.Error(err))
		}
	}
	log.Info("Storefront service stopped gracefully")
}

// newOrderPublisher selects the order event backend. A misconfigured backend
// degrades to no publishing rather than blocking startup.
func newOrderPublisher(ctx context.Context, cfg config.Config, log *zap.Logger) events.OrderPublisher {
	switch cfg.EventsBackend {
	case "sns":
		p, err := events.NewSNSPublisherFromConfig(ctx, cfg.OrderEventsTopicArn, log)
		if err != nil {
			log.Warn("SNS order events disabled", zap.Error(err))
			return events.NopPublisher{}
		}
		log.Info("Publishing order events to SNS", zap.String("topic_arn", cfg.OrderEventsTopicArn))
		return p
	case "kafka":
		if cfg.KafkaBrokers == "" {
			log.Warn("Kafka order events disabled: KAFKA_BROKERS not set")
			return events.NopPublisher{}
		}
		log.Info("Publishing order events to Kafka", zap.String("topic", cfg.KafkaTopic))
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	default:
		return events.NopPublisher{}
	}
}
