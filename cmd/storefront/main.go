package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/appnity-softwares/digitalEcom-sub000/internal/apiclient"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/cart"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/catalog"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/checkout"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/domain"
	h "github.com/appnity-softwares/digitalEcom-sub000/internal/http"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/kv"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/liststore"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/pricing"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/publisher"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/repository"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/wishlist"
)

type Config struct {
	HTTPPort           string
	RedisAddr          string
	APIBaseURL         string
	CheckoutDBPath     string
	CheckoutMigrations string
	CatalogDBPath      string
	CatalogMigrations  string
	KafkaBrokers       []string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		APIBaseURL:         getEnv("API_BASE_URL", "http://localhost:9000/api"),
		CheckoutDBPath:     getEnv("CHECKOUT_DB_PATH", "storefront.db"),
		CheckoutMigrations: getEnv("CHECKOUT_MIGRATIONS_PATH", "internal/repository/migrations"),
		CatalogDBPath:      getEnv("CATALOG_DB_PATH", "catalog.db"),
		CatalogMigrations:  getEnv("CATALOG_MIGRATIONS_PATH", "internal/catalog/migrations"),
		KafkaBrokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		RequestTimeout:     30 * time.Second,
		ShutdownTimeout:    10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("redis unreachable", zap.Error(err))
	}
	defer redisClient.Close()

	store := kv.NewRedisStore(redisClient, "storefront")

	repo, err := repository.NewRepository(cfg.CheckoutDBPath)
	if err != nil {
		logger.Fatal("open checkout database", zap.Error(err))
	}
	defer repo.Close()
	if err := repo.RunMigrations(cfg.CheckoutMigrations); err != nil {
		logger.Fatal("checkout migrations", zap.Error(err))
	}

	catalogRepo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		logger.Fatal("open catalog database", zap.Error(err))
	}
	defer catalogRepo.Close()
	if err := catalogRepo.RunMigrations(cfg.CatalogMigrations); err != nil {
		logger.Fatal("catalog migrations", zap.Error(err))
	}

	// One base client; every call path rebinds it to the calling session so
	// order, payment and coupon requests carry that caller's bearer token.
	base := apiclient.New(cfg.APIBaseURL, domain.Guest, logger)

	cartMgr := cart.NewManager(ctx, liststore.New[domain.CartItem](store, "cart", logger), logger)
	engine := pricing.NewEngine(cartMgr, func(session domain.Session) pricing.CouponValidator {
		return base.WithSession(session)
	})
	wl := wishlist.NewSynchronizer(ctx, liststore.New[domain.WishlistItem](store, "wishlist", logger), logger)
	svc := checkout.NewService(repo, cartMgr, engine, func(session domain.Session) checkout.OrderAPI {
		return base.WithSession(session)
	}, logger)

	newRemote := func(session domain.Session) wishlist.Remote {
		return base.WithSession(session)
	}

	router := h.NewRouter(
		h.NewCartHandler(cartMgr, engine, logger),
		h.NewWishlistHandler(wl, newRemote, logger),
		h.NewCheckoutHandler(svc, logger),
		h.NewCatalogHandler(catalogRepo, logger),
		cfg.RequestTimeout,
	)

	pollerCtx, stopPoller := context.WithCancel(ctx)
	defer stopPoller()
	poller := publisher.NewOutboxPoller(repo, logger, cfg.KafkaBrokers...)
	go poller.Run(pollerCtx)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("storefront starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	stopPoller()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
