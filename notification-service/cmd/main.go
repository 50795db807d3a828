package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fjod/growthshop/notification-service/internal/config"
	"github.com/fjod/growthshop/notification-service/internal/dispatch"
	"github.com/fjod/growthshop/notification-service/internal/order"
	"github.com/fjod/growthshop/notification-service/internal/relay"
	"github.com/fjod/growthshop/pkg/logger"
	"github.com/fjod/growthshop/pkg/ratelimit"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New("notification-service", cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("notification-service stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	var wg sync.WaitGroup

	mail := dispatch.NewMailChannels(cfg.MailChannelsURL, cfg.MailTimeout, log)

	var d dispatch.Dispatcher
	switch cfg.DispatchBackend {
	case config.BackendMailChannels:
		d = mail
	case config.BackendKafka:
		publisher := dispatch.NewKafkaPublisher(cfg.KafkaTopic, log, cfg.Brokers()...)
		defer func() { _ = publisher.Close() }()
		d = publisher
		if !cfg.RelayEnabled {
			log.Warn("publishing to kafka without a local relay, run one elsewhere", zap.String("topic", cfg.KafkaTopic))
		}
	default:
		log.Warn("DISPATCH_BACKEND=log, notifications are only written to the log")
		d = dispatch.NewLogDispatcher(log)
	}

	// Start relay
	relayCtx, relayCancel := context.WithCancel(context.Background())
	defer relayCancel()
	if cfg.RelayEnabled {
		consumer := relay.NewConsumer(mail, log, cfg.KafkaTopic, cfg.KafkaGroupID, cfg.Brokers()...)
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumer.Run(relayCtx)
		}()
		defer consumer.Close()
		log.Info("relay started", zap.String("topic", cfg.KafkaTopic), zap.String("group", cfg.KafkaGroupID))
	}

	handler := order.NewHandler(d, order.Branding{
		Brand:        cfg.BrandName,
		Currency:     cfg.CurrencySymbol,
		SupportPhone: cfg.SupportPhone,
		From:         dispatch.Address{Email: cfg.MailFrom, Name: cfg.MailFromName},
		Operator:     dispatch.Address{Email: cfg.AdminEmail, Name: cfg.AdminName},
	}, cfg.RequestTimeout, log)
	if cfg.RateLimitRPS > 0 {
		limiter := ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst)
		defer func() { _ = limiter.Close() }()
		handler.SetLimiter(limiter)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(handler.Router(), "notification-service"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("notification-service starting", zap.String("port", cfg.HTTPPort), zap.String("dispatch", cfg.DispatchBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		relayCancel()
		wg.Wait()
		return err
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)

	relayCancel()
	wg.Wait()
	log.Info("server exited")
	return err
}
