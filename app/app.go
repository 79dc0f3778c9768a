// Package app wires configuration, storage, the store session, the order
// lifecycle driver and the HTTP API into one runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-storefront/config"
	"food-storefront/handlers"
	"food-storefront/kv"
	"food-storefront/lifecycle"
	"food-storefront/middleware"
	"food-storefront/persistence"
	"food-storefront/routes"
	"food-storefront/store"
)

type App struct {
	cfg    config.Config
	log    *zap.Logger
	kv     kv.Store
	store  *store.Store
	driver *lifecycle.Driver
	engine *gin.Engine
}

// New loads persisted state and starts the store and lifecycle driver. The
// caller must Close the app.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	backend, err := kv.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("unable to open storage: %w", err)
	}

	bridge := persistence.NewBridge(backend,
		persistence.WithLogger(log.Named("persistence")),
		persistence.WithBcryptCost(cfg.Auth.BcryptCost),
		persistence.WithDemoUser(cfg.Store.SeedDemoUser),
	)
	initial, err := bridge.Load(ctx)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("unable to load state: %w", err)
	}

	st := store.New(initial,
		store.WithLogger(log.Named("store")),
		store.WithPricing(cfg.Pricing),
		store.WithAdminLimit(cfg.Store.AdminLimit),
		store.WithBcryptCost(cfg.Auth.BcryptCost),
		store.WithDeliveryWindow(cfg.Store.DeliveryWindow),
		store.WithObserver(bridge),
	)
	driver := lifecycle.New(st,
		lifecycle.WithSchedule(cfg.Lifecycle),
		lifecycle.WithLogger(log.Named("lifecycle")),
	)
	st.Observe(driver)
	driver.Resume(initial.Orders)

	gin.SetMode(cfg.Server.GinMode)
	engine := gin.New()
	engine.Use(middleware.RequestLogger(log.Named("http")), gin.Recovery(), middleware.CORS())
	auth := middleware.NewAuth(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, st)
	routes.SetupRoutes(engine, handlers.New(st, auth, driver, log.Named("handlers")), auth)

	return &App{cfg: cfg, log: log, kv: backend, store: st, driver: driver, engine: engine}, nil
}

func (a *App) Handler() http.Handler { return a.engine }

func (a *App) Store() *store.Store { return a.store }

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:         ":" + a.cfg.Server.Port,
		Handler:      a.engine,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("storefront is running", zap.String("addr", "http://localhost"+server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server stopped unexpectedly: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// Close stops pending order timers, then the store, then storage.
func (a *App) Close() error {
	a.driver.Stop()
	a.store.Close()
	return a.kv.Close()
}

// Seed writes the catalog and admin accounts to the configured storage.
func Seed(ctx context.Context, cfg config.Config, log *zap.Logger, force bool) ([]string, error) {
	var written []string
	err := withBridge(ctx, cfg, log, func(b *persistence.Bridge) (err error) {
		written, err = b.Seed(ctx, force)
		return err
	})
	return written, err
}

// Reset deletes everything the storefront stored. The next start seeds again.
func Reset(ctx context.Context, cfg config.Config, log *zap.Logger) ([]string, error) {
	var deleted []string
	err := withBridge(ctx, cfg, log, func(b *persistence.Bridge) (err error) {
		deleted, err = b.Reset(ctx)
		return err
	})
	return deleted, err
}

func withBridge(ctx context.Context, cfg config.Config, log *zap.Logger, fn func(*persistence.Bridge) error) error {
	backend, err := kv.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("unable to open storage: %w", err)
	}
	defer backend.Close()

	return fn(persistence.NewBridge(backend,
		persistence.WithLogger(log),
		persistence.WithBcryptCost(cfg.Auth.BcryptCost),
	))
}
