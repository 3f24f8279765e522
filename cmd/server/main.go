package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/eventlog"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.Env)
	slog.SetDefault(logger)
	if err != nil {
		logger.Error("config_error", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server_error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	initCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := pkgdb.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db init: %w", err)
	}
	defer func() { _ = pkgdb.Close(db) }()

	if err := db.WithContext(initCtx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	var publisher service.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		prod := events.NewProducer(cfg.KafkaBrokers)
		defer func() { _ = prod.Close() }()
		publisher = prod
		logger.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}

	var index service.ProductIndex
	if cfg.ESURL != "" {
		es, err := search.NewClient(initCtx, cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			logger.Warn("elasticsearch_unavailable", "error", err)
		} else {
			index = search.NewProductIndex(es, cfg.ESIndex)
		}
	}

	var paymentLog service.PaymentLog
	if cfg.MongoURI != "" {
		ml, err := eventlog.Connect(initCtx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Warn("mongo_unavailable", "error", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = ml.Close(ctx)
			}()
			paymentLog = ml
		}
	}

	var gateway payment.Gateway
	if cfg.PaymentsEnabled() {
		gateway = payment.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	} else {
		logger.Warn("card_payments_disabled")
	}

	r := &repo.GormRepo{DB: db}

	authSvc := &service.AuthService{
		Repo:          r,
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}
	catalogSvc := &service.CatalogService{
		Repo:        r,
		Events:      publisher,
		Index:       index,
		TopicPrefix: cfg.KafkaTopicPrefix,
	}
	orderSvc := &service.OrderService{
		Repo:           r,
		Gateway:        gateway,
		Events:         publisher,
		PaymentLog:     paymentLog,
		DBTimeout:      cfg.DBTimeout,
		GatewayTimeout: cfg.GatewayTimeout,
		Currency:       cfg.Currency,
		SuccessURL:     cfg.PublicBaseURL + httpserver.APIPrefix + "/orders/mine",
		CancelURL:      cfg.PublicBaseURL + httpserver.APIPrefix + "/cart",
		TopicPrefix:    cfg.KafkaTopicPrefix,
	}

	deps := &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc},
		UserHandler:    &httpserver.UserHTTP{Svc: &service.UserService{Repo: r}},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalogSvc},
		CartHandler:    &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, DBTimeout: cfg.DBTimeout}},
		CouponHandler:  &httpserver.CouponHTTP{Svc: &service.CouponService{Repo: r}},
		ReviewHandler:  &httpserver.ReviewHTTP{Svc: &service.ReviewService{Repo: r}},
		ProfileHandler: &httpserver.ProfileHTTP{
			Wishlist:  &service.WishlistService{Repo: r},
			Addresses: &service.AddressService{Repo: r},
		},
		OrderHandler: &httpserver.OrderHTTP{Svc: orderSvc},
		Auth: middleware.NewAutoRefreshMiddleware(
			cfg.JWTAccessSecret,
			authSvc.CheckSubject,
			middleware.RefresherFunc(authSvc.RefreshPair),
		),
		Ready: func(ctx context.Context) error { return ping(ctx, db) },
	}
	if cfg.CSRFEnabled {
		c := csrf.DefaultConfig()
		c.Secure = !cfg.IsDev()
		deps.CSRF = &c
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpserver.NewValidator()
	e.HTTPErrorHandler = httpserver.ErrorHandler(cfg.IsDev())

	e.Use(httpserver.Common(logger, cfg.PublicBaseURL)...)

	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case sig := <-stop:
		logger.Info("server_stopping", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server_stopped")
	return nil
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
