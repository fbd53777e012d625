package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/auth"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/cart"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/commons"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/config"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/delivery"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/infrastructure/logger"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/infrastructure/mysql"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/infrastructure/realtime"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/infrastructure/remote"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/infrastructure/sqlite"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/menu"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/server"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/session"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/state/repository"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openStateDB(ctx, cfg)
	if err != nil {
		zapLogger.Fatal("opening state database", zap.Error(err))
	}
	defer db.Close()

	slots := repository.NewSQLSlotRepository(db, cfg.State.Driver)
	if err := slots.EnsureSchema(ctx); err != nil {
		zapLogger.Fatal("preparing state schema", zap.Error(err))
	}
	zapLogger.Info("state database ready", zap.String("driver", cfg.State.Driver))

	tokens := auth.NewTokenStore(slots, zapLogger)

	// A 401 tears down the whole session; the session is built after the
	// modules that share this client.
	var sess *session.Session
	client := remote.NewClient(cfg.API.BaseURL, cfg.API.Timeout, tokens, zapLogger,
		remote.WithUnauthorizedHandler(func(ctx context.Context) {
			if sess != nil {
				sess.HandleUnauthorized(ctx)
			}
		}),
	)

	menuModule := menu.NewModule(client, zapLogger)
	if n, err := menuModule.Service.Warm(ctx); err != nil {
		zapLogger.Warn("menu warm-up failed, cart prices start at 0", zap.Error(err))
	} else {
		zapLogger.Info("menu loaded", zap.Int("items", n))
	}

	cartModule := cart.NewModule(client, slots, menuModule.Service, cfg.Cart, zapLogger)
	deliveryModule := delivery.NewModule(client, slots, zapLogger)

	sess = session.New(tokens, cartModule.Cache, cartModule.Synchronizer, deliveryModule.Checker, zapLogger)
	if err := sess.Init(ctx); err != nil {
		zapLogger.Warn("some client state could not be restored", zap.Error(err))
	}

	subscriber := startRealtime(ctx, cfg.Realtime, cartModule, deliveryModule, tokens, zapLogger)

	router := server.NewRouter(server.Controllers{
		Cart:     cartModule.Controller,
		Delivery: deliveryModule.Controller,
		Menu:     menuModule.Controller,
		Session:  session.NewController(sess, zapLogger),
	}, zapLogger)

	srv := server.New(cfg.Server, cfg.API.Timeout, router, zapLogger)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if subscriber != nil {
		if err := subscriber.Close(); err != nil {
			zapLogger.Warn("closing realtime channel", zap.Error(err))
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
	}
	cartModule.Synchronizer.Wait()

	zapLogger.Info("gateway stopped gracefully")
}

// loadConfig reads a YAML file when STOREFRONT_CONFIG_FILE is set and the
// environment otherwise.
func loadConfig() (*config.Config, error) {
	if path := os.Getenv("STOREFRONT_CONFIG_FILE"); path != "" {
		return commons.LoadConfig(path)
	}
	return config.Load()
}

func openStateDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	switch cfg.State.Driver {
	case repository.DriverSQLite:
		return sqlite.NewConnection(ctx, cfg.State.DSN)
	case repository.DriverMySQL:
		return mysql.NewConnection(ctx, cfg.Database)
	default:
		return nil, fmt.Errorf("unknown state driver %q", cfg.State.Driver)
	}
}

// startRealtime subscribes to server-side change notifications. Without a
// NATS URL the gateway relies on staleness and focus refetches alone.
func startRealtime(ctx context.Context, cfg config.RealtimeConfig, cartModule *cart.Module, deliveryModule *delivery.Module, tokens *auth.TokenStore, logger *zap.Logger) *realtime.Subscriber {
	if cfg.NATSURL == "" {
		logger.Info("realtime channel disabled")
		return nil
	}

	dispatcher := realtime.NewDispatcher(logger)
	dispatcher.Handle(cfg.CartSubject, realtime.CartUpdated(cartModule.Synchronizer, tokens.Subject))
	dispatcher.Handle(cfg.AreasSubject, realtime.AreasUpdated(deliveryModule.Checker))

	subscriber, err := realtime.NewSubscriber(cfg.NATSURL, logger)
	if err != nil {
		logger.Warn("realtime channel unavailable", zap.Error(err))
		return nil
	}
	if err := subscriber.Subscribe(ctx, dispatcher); err != nil {
		logger.Warn("realtime subscription failed", zap.Error(err))
		_ = subscriber.Close()
		return nil
	}
	return subscriber
}
