package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/growthshop/pkg/logger"
	"github.com/fjod/growthshop/storefront/internal/catalog"
	"github.com/fjod/growthshop/storefront/internal/checkout"
	"github.com/fjod/growthshop/storefront/internal/config"
	h "github.com/fjod/growthshop/storefront/internal/http"
	"github.com/fjod/growthshop/storefront/internal/notifier"
	"github.com/fjod/growthshop/storefront/internal/session"
	"github.com/fjod/growthshop/storefront/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New("storefront", cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("storefront stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return err
	}
	log.Info("catalog loaded", zap.Int("offerings", len(cat.All())), zap.String("file", cfg.CatalogFile))

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	requiredFields, err := checkout.ParseRequiredFields(cfg.RequiredFields)
	if err != nil {
		return err
	}

	var n checkout.Notifier
	if cfg.NotifierURL == "" {
		log.Warn("NOTIFIER_URL not set, orders are simulated and nobody is notified")
		n = notifier.NewSimulated(log)
	} else {
		n = notifier.NewClient(cfg.NotifierURL, cfg.NotifierTimeout, log)
		log.Info("notifier configured", zap.String("url", cfg.NotifierURL))
	}

	sessions := session.NewManager(store, cat, n,
		session.WithLogger(log),
		session.WithIdleTTL(cfg.SessionIdleTTL),
		session.WithCheckoutOptions(
			checkout.WithSubmitTimeout(cfg.NotifierTimeout),
			checkout.WithRequiredFields(requiredFields),
			checkout.WithManualContact(cfg.SupportWhatsAppURL, cfg.CurrencySymbol),
		),
	)
	defer func() { _ = sessions.Close() }()

	handler := h.NewHandler(sessions, cat, cfg.RequestTimeout, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(handler.Router(), "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("storefront starting", zap.String("port", cfg.HTTPPort), zap.String("store", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server exited")
	return nil
}

// openStore connects the configured session state backend.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		log.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))
		return storage.NewRedisStore(client, cfg.StateTTL), func() { _ = client.Close() }, nil

	case config.BackendMongo:
		store, err := storage.OpenMongoStore(ctx, storage.MongoOptions{
			URI:         cfg.MongoURI,
			Database:    cfg.MongoDBName,
			MaxPoolSize: cfg.MongoMaxPool,
			MinPoolSize: cfg.MongoMinPool,
			Timeout:     cfg.MongoTimeout,
		}, cfg.StateTTL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("connected to mongodb", zap.String("db", cfg.MongoDBName), zap.Uint64("max_pool", cfg.MongoMaxPool))
		return store, func() { _ = store.Close(context.Background()) }, nil

	default:
		store := storage.NewMemoryStore(cfg.StateTTL)
		log.Warn("using in-memory session state, carts are lost on restart")
		return store, func() { _ = store.Close() }, nil
	}
}
