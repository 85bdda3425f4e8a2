package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/antonminaichev/foodflow/internal/donation"
	"github.com/antonminaichev/foodflow/internal/feedback"
	"github.com/antonminaichev/foodflow/internal/logger"
	"github.com/antonminaichev/foodflow/internal/notification"
	"github.com/antonminaichev/foodflow/internal/order"
	"github.com/antonminaichev/foodflow/internal/router"
	"github.com/antonminaichev/foodflow/internal/storage"
	"github.com/antonminaichev/foodflow/internal/storage/memory"
	"github.com/antonminaichev/foodflow/internal/storage/postgres"
	"github.com/antonminaichev/foodflow/internal/user"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openStorage(ctx context.Context, dsn string) (storage.Storage, error) {
	if dsn == "" {
		logger.Log.Warn("DATABASE_URI is empty, using in-memory storage")
		return memory.New(), nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pg, err := postgres.NewPostgresStorage(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return pg, nil
}

func run() error {
	cfg, err := NewConfig(os.Args[1:])
	if err != nil {
		return err
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return err
	}
	defer logger.Log.Sync()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg.DatabaseConnection)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Log.Warn("failed to close storage", zap.Error(err))
		}
	}()

	var publisher notification.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := notification.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		publisher = kp
		logger.Log.Info("publishing notifications to kafka",
			zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}
	sink := notification.NewSink(store, publisher, logger.Log.Named("notification"))

	notifier := donation.NewProximityNotifier(store, sink, cfg.NotifyRadiusKm, cfg.NotifyWorkers, logger.Log.Named("notifier"))

	handlers := router.Handlers{
		User:         user.NewHandler(user.NewService(store, []byte(cfg.JWTSecret), cfg.JWTTTL)),
		Donation:     donation.NewHandler(donation.NewService(store, store, store, notifier, loc, logger.Log.Named("donation"))),
		Order:        order.NewHandler(order.NewService(store, store, store, logger.Log.Named("order"))),
		Notification: notification.NewHandler(notification.NewService(store, sink)),
		Feedback:     feedback.NewHandler(feedback.NewService(store)),
	}
	r := router.NewRouter(handlers, []byte(cfg.JWTSecret), store, store)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return donation.SweeperLoop(gctx, store, cfg.ExpirySweepInterval, logger.Log.Named("sweeper"))
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Log.Info("server stopped gracefully")
	return nil
}
