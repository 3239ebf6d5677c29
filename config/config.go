package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	localAPIBase    = "http://localhost:5000/api"
	deployedAPIBase = "https://lwg-api-ackk.onrender.com/api"
)

type Config struct {
	Port   string
	AppEnv string

	// Remote product service
	APIBase            string
	UseAPIProducts     bool
	EditSupport        bool
	AdminLocalFallback bool
	APITimeout         time.Duration

	// Local admin account, used when remote products are disabled
	AdminEmail        string
	AdminPasswordHash string // bcrypt

	RedisURL string
	CartTTL  time.Duration

	// Checkout
	WhatsAppNumber string
	CurrencyLabel  string
	OrderIDPrefix  string
	ReloadDelay    time.Duration

	// Order events
	EventsBackend       string
	OrderEventsTopicArn string
	KafkaBrokers        string
	KafkaTopic          string

	// Optional WhatsApp copy of each order via Twilio
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	CORSOrigins        []string
	CheckoutRatePerMin int
	LoginRatePerMin    int
}

func Load() Config {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "development")

	return Config{
		Port:   getEnv("PORT", "8087"),
		AppEnv: env,

		APIBase:            strings.TrimRight(getEnv("API_BASE", detectAPIBase(env)), "/"),
		UseAPIProducts:     getEnvBool("USE_API_PRODUCTS", true),
		EditSupport:        getEnvBool("EDIT_SUPPORT", false),
		AdminLocalFallback: getEnvBool("ADMIN_LOCAL_FALLBACK", true),
		APITimeout:         getEnvDuration("API_TIMEOUT", 10*time.Second),

		AdminEmail:        getEnv("ADMIN_EMAIL", ""),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),

		RedisURL: getEnv("REDIS_URL", ""),
		CartTTL:  getEnvDuration("CART_TTL", time.Hour*24*7), // default 7 days

		WhatsAppNumber: getEnv("WHATSAPP_NUMBER", "23272146015"),
		CurrencyLabel:  getEnv("CURRENCY_LABEL", "NLe"),
		OrderIDPrefix:  getEnv("ORDER_ID_PREFIX", "LWG"),
		ReloadDelay:    getEnvDuration("RELOAD_DELAY", 1800*time.Millisecond),

		EventsBackend:       strings.ToLower(getEnv("EVENTS_BACKEND", "none")),
		OrderEventsTopicArn: getEnv("ORDER_EVENTS_TOPIC_ARN", ""),
		KafkaBrokers:        getEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "order.checkout"),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),

		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:5500")),
		CheckoutRatePerMin: getEnvInt("CHECKOUT_RATE_PER_MIN", 20),
		LoginRatePerMin:    getEnvInt("LOGIN_RATE_PER_MIN", 10),
	}
}

// IsProduction reports whether the service runs with production logging and defaults.
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// detectAPIBase picks the local API when developing and the deployed one otherwise.
func detectAPIBase(env string) string {
	switch env {
	case "development", "local", "test":
		return localAPIBase
	default:
		return deployedAPIBase
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
