// Package main запускает HTTP-сервер магазина luxedropship.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/luxedropship/internal/config"
	"github.com/mmeshcher/luxedropship/internal/handler"
	"github.com/mmeshcher/luxedropship/internal/middleware"
	"github.com/mmeshcher/luxedropship/internal/notify"
	"github.com/mmeshcher/luxedropship/internal/payment"
	"github.com/mmeshcher/luxedropship/internal/productfetch"
	"github.com/mmeshcher/luxedropship/internal/recordstore"
	"github.com/mmeshcher/luxedropship/internal/repository"
	"github.com/mmeshcher/luxedropship/internal/seed"
	"github.com/mmeshcher/luxedropship/internal/service"
	"github.com/mmeshcher/luxedropship/internal/session"
	"github.com/mmeshcher/luxedropship/internal/storage"
)

type backend interface {
	storage.KV
	Close() error
}

func openStorage(cfg *config.Config) (backend, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return storage.NewMemory(), nil
	case config.StoragePostgres:
		return storage.NewPostgres(cfg.DatabaseURI)
	case config.StorageRedis:
		return storage.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return storage.OpenFile(cfg.StoragePath)
	}
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	kv, err := openStorage(cfg)
	if err != nil {
		sugar.Fatalw("storage initialization error", "storage", cfg.Storage, "error", err.Error())
	}
	defer kv.Close()

	store := recordstore.New(kv, logger)

	deps := service.Deps{
		Profiles:  kv,
		Users:     repository.NewUsers(store, nil),
		Products:  repository.NewProducts(store, nil),
		Coupons:   repository.NewCoupons(store, nil),
		Orders:    repository.NewOrders(repository.NewPrimaryOrders(store, nil), repository.NewLedgerOrders(store, nil)),
		Imports:   repository.NewImports(store, nil),
		Publisher: notify.New(cfg.AMQPURL, logger),
		Hasher:    session.NewHasher(cfg.PasswordHashing),
		Logger:    logger,
	}
	if cfg.ProductFetchURL != "" {
		deps.Fetcher = productfetch.NewClient(cfg.ProductFetchURL)
	}
	if cfg.PaymentAPIURL != "" {
		deps.Payments = payment.NewClient(cfg.PaymentAPIURL, cfg.PaymentAPIKey)
	}

	svc := service.NewService(deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	data, err := seed.Default()
	if err != nil {
		sugar.Fatalw("seed data error", "error", err.Error())
	}
	if err := svc.Bootstrap(ctx, data); err != nil {
		sugar.Fatalw("bootstrap error", "error", err.Error())
	}

	profiles := middleware.NewProfileMiddleware(cfg.CookieSecret)
	h := handler.NewHandler(svc, logger, profiles)

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: h.SetupRouter(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting luxedropship server", "addr", cfg.RunAddress, "storage", cfg.Storage)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка сервера)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
