package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"github.com/maxviazov/movedex/internal/config"
	"github.com/maxviazov/movedex/internal/handler"
	"github.com/maxviazov/movedex/internal/logger"
	"github.com/maxviazov/movedex/internal/migrations"
	"github.com/maxviazov/movedex/internal/pokeapi"
	"github.com/maxviazov/movedex/internal/repository"
	"github.com/maxviazov/movedex/internal/repository/memory"
	"github.com/maxviazov/movedex/internal/repository/postgres"
	"github.com/maxviazov/movedex/internal/repository/sqlite"
	"github.com/maxviazov/movedex/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", os.Getenv("MOVEDEX_CONFIG"), "path to a YAML config file; APP_* env vars override it")
	flag.Parse()

	// Load application config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config loading failed: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("logger initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("service stopped with error")
	}
	appLogger.Info().Msg("service stopped")
}

func run(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) error {
	store, err := openBackend(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer store.close()

	client, err := pokeapi.New(cfg.PokeAPI.BaseURL, appLogger,
		pokeapi.WithTimeout(cfg.PokeAPI.Timeout),
		pokeapi.WithUserAgent(cfg.PokeAPI.UserAgent),
		pokeapi.WithMaxConcurrency(cfg.PokeAPI.MaxConcurrency),
	)
	if err != nil {
		return fmt.Errorf("pokeapi client: %w", err)
	}

	moves := service.NewMoveService(store.cache, store.tx, client, cfg.Cache.TTL, appLogger)
	cacheSvc := service.NewCacheService(store.cache, appLogger)
	stopJanitor := service.StartJanitor(ctx, cacheSvc, cfg.Cache.PurgeInterval, appLogger)
	defer stopJanitor()

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestLogger(appLogger))
	handler.Register(r, handler.Deps{
		Ready:      store.ready,
		Moves:      moves,
		Cache:      cacheSvc,
		RateLimit:  cfg.HTTP.RateLimit,
		RateWindow: cfg.HTTP.RateWindow,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info().
			Str("addr", srv.Addr).
			Str("cache_driver", cfg.Cache.Driver).
			Str("upstream", client.BaseURL()).
			Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	appLogger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// backend bundles the cache implementation chosen by cache.driver.
type backend struct {
	cache repository.ResourceCache
	tx    repository.TxManager
	ready repository.Pinger
	close func()
}

func openBackend(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) (*backend, error) {
	switch cfg.Cache.Driver {
	case "postgres":
		repo, err := repository.New(ctx, &cfg.Postgres, &appLogger)
		if err != nil {
			return nil, fmt.Errorf("postgres connection failed: %w", err)
		}
		db := stdlib.OpenDBFromPool(repo.Pool())
		if err := migrations.Up(ctx, db, "postgres", appLogger); err != nil {
			_ = db.Close()
			repo.Close()
			return nil, err
		}
		pool := repo.Pool()
		return &backend{
			cache: postgres.NewResourceCache(pool),
			tx:    postgres.NewTxManager(pool),
			ready: postgres.NewPinger(pool),
			close: func() { closeAll(db, repo.Close) },
		}, nil
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.Cache.SQLitePath, appLogger)
		if err != nil {
			return nil, err
		}
		return &backend{
			cache: sqlite.NewResourceCache(db),
			tx:    sqlite.NewTxManager(db),
			ready: sqlite.NewPinger(db),
			close: func() { closeAll(db, nil) },
		}, nil
	default:
		return &backend{
			cache: memory.NewResourceCache(),
			tx:    repository.NoopTxManager(),
			ready: memory.NewPinger(),
			close: func() {},
		}, nil
	}
}

func closeAll(db *sql.DB, then func()) {
	_ = db.Close()
	if then != nil {
		then()
	}
}
