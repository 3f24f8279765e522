package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/payment"
	pkgcfg "github.com/Skotchmaster/storefront/pkg/config"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

type Config struct {
	ServiceName string
	Env         string
	LogLevel    string

	ServerPort    int
	PublicBaseURL string

	DatabaseURL string
	DBTimeout   time.Duration

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte
	AccessTTL        time.Duration
	RefreshTTL       time.Duration

	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string
	GatewayTimeout      time.Duration

	KafkaBrokers     []string
	KafkaTopicPrefix string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	MongoURI string
	MongoDB  string

	CSRFEnabled bool
}

// Load reads the environment once; the result is passed explicitly to every component.
func Load() (Config, error) {
	cfg := Config{
		ServiceName: pkgcfg.EnvDefault("SERVICE_NAME", "storefront"),
		Env:         strings.ToLower(pkgcfg.EnvDefault("APP_ENV", EnvProd)),
		LogLevel:    os.Getenv("LOG_LEVEL"),

		ServerPort:    pkgcfg.EnvIntDefault("SERVER_PORT", 8080),
		PublicBaseURL: strings.TrimRight(pkgcfg.EnvDefault("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBTimeout:   pkgcfg.EnvDurationDefault("DB_TIMEOUT", 5*time.Second),

		JWTAccessSecret:  []byte(os.Getenv("JWT_SECRET")),
		JWTRefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),
		AccessTTL:        pkgcfg.EnvDurationDefault("ACCESS_TTL", 15*time.Minute),
		RefreshTTL:       pkgcfg.EnvDurationDefault("REFRESH_TTL", 7*24*time.Hour),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:            strings.ToLower(pkgcfg.EnvDefault("CURRENCY", "usd")),
		GatewayTimeout:      pkgcfg.EnvDurationDefault("GATEWAY_TIMEOUT", 10*time.Second),

		KafkaBrokers:     pkgcfg.CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicPrefix: os.Getenv("KAFKA_TOPIC_PREFIX"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    pkgcfg.EnvDefault("ES_INDEX", "products"),

		MongoURI: os.Getenv("MONGO_URI"),
		MongoDB:  pkgcfg.EnvDefault("MONGO_DB", "storefront"),

		CSRFEnabled: pkgcfg.EnvBoolDefault("CSRF_ENABLED", false),
	}

	return cfg, cfg.Validate()
}

// Validate requires the payment keys outside dev; in dev a missing key disables card checkout.
func (c Config) Validate() error {
	errs := []error{
		pkgcfg.NonEmpty(c.DatabaseURL, "DATABASE_URL"),
		pkgcfg.NonEmptyBytes(c.JWTAccessSecret, "JWT_SECRET"),
		pkgcfg.NonEmptyBytes(c.JWTRefreshSecret, "JWT_REFRESH_SECRET"),
	}
	if _, err := payment.Exponent(c.Currency); err != nil {
		errs = append(errs, fmt.Errorf("CURRENCY: %w", err))
	}
	if !c.IsDev() {
		errs = append(errs,
			pkgcfg.NonEmpty(c.StripeSecretKey, "STRIPE_SECRET_KEY"),
			pkgcfg.NonEmpty(c.StripeWebhookSecret, "STRIPE_WEBHOOK_SECRET"),
		)
	}
	return errors.Join(errs...)
}

func (c Config) IsDev() bool {
	return c.Env == EnvDev
}

func (c Config) PaymentsEnabled() bool {
	return c.StripeSecretKey != "" && c.StripeWebhookSecret != ""
}
