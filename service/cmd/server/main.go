// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/klondike/engine"
	"github.com/jason-s-yu/klondike/service/internal/auth"
	"github.com/jason-s-yu/klondike/service/internal/cache"
	"github.com/jason-s-yu/klondike/service/internal/config"
	"github.com/jason-s-yu/klondike/service/internal/database"
	"github.com/jason-s-yu/klondike/service/internal/game"
	"github.com/jason-s-yu/klondike/service/internal/handlers"
	"github.com/jason-s-yu/klondike/service/internal/logging"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// prefStore is what both cache backends provide.
type prefStore interface {
	game.PreferenceStore
	game.ActionPublisher
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed loading configuration")
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.WithError(err).Fatal("failed configuring logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	var results database.Store
	store, err := database.Open(ctx, cfg.DatabaseURL)
	switch {
	case errors.Is(err, database.ErrNoDatabase):
		log.Warn("KLONDIKE_DATABASE_URL not set, game results will not be stored")
	case err != nil:
		return fmt.Errorf("open database: %w", err)
	default:
		results = store
		defer store.Close()
	}

	prefs, err := openPreferences(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer prefs.Close()

	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn("KLONDIKE_JWT_SECRET not set, guest tokens will not survive a restart")
	}
	issuer, err := auth.NewIssuer(secret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}

	rules := engine.DefaultRules()
	rules.DrawCount = cfg.DrawCount
	h := &handlers.Handler{
		Issuer:         issuer,
		Prefs:          prefs,
		Actions:        prefs,
		Results:        results,
		Rules:          rules,
		HistoryLimit:   cfg.HistoryLimit,
		TickInterval:   cfg.TickInterval,
		OriginPatterns: cfg.AllowedOrigins,
		Logger:         log,
	}

	// Request contexts derive from ctx so open websockets end on shutdown.
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handlers.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Addr).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	h.Wait()
	log.Info("server stopped cleanly")
	return nil
}

// openPreferences connects to Redis, or falls back to process memory when no
// URL is configured.
func openPreferences(ctx context.Context, cfg config.Config, log *logrus.Logger) (prefStore, error) {
	if cfg.RedisURL == "" {
		log.Warn("KLONDIKE_REDIS_URL not set, preferences are kept in memory")
		return cache.NewMemoryStore(), nil
	}
	rs, err := cache.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	log.Info("connected to redis")
	return rs, nil
}
