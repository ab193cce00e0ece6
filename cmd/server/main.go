package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/grafana/pyroscope-go"
	_ "go.uber.org/automaxprocs"
	"golang.org/x/sync/errgroup"

	"note-shelf/cmd/server/handlers"
	mongo "note-shelf/internal/clients/mongo"
	"note-shelf/internal/clients/postgres"
	rediscache "note-shelf/internal/clients/redis"
	"note-shelf/internal/config"
	"note-shelf/internal/logger"
	"note-shelf/internal/services/notes"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootstrapLog := log.New(os.Stderr, "bootstrap: ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		bootstrapLog.Printf("config load failed: %v", err)
		os.Exit(1)
	}

	logg, err := logger.Init(cfg)
	if err != nil {
		bootstrapLog.Printf("logger init failed: %v", err)
		os.Exit(1)
	}

	if cfg.PyroscopeServerAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "note-shelf",
			ServerAddress:   cfg.PyroscopeServerAddr,
		})
		if err != nil {
			logg.Warn("pyroscope disabled", "error", err)
		} else {
			defer func() { _ = profiler.Stop() }()
		}
	}

	st, closeStores, err := openStores(ctx, cfg, logg)
	if err != nil {
		logg.Error("store init", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	app, err := setupRouter(cfg, st)
	if err != nil {
		logg.Error("router init", "error", err)
		os.Exit(1)
	}

	logg.Info("starting NoteShelf", "port", cfg.AppPort, "store", cfg.StoreDriver)

	if err := serve(ctx, app, fmt.Sprintf(":%d", cfg.AppPort), closeStores); err != nil {
		logg.Error("fatal", "error", err)
		os.Exit(1)
	}
	logg.Info("graceful shutdown complete")
}

const shutdownTimeout = 25 * time.Second

// serve runs app on addr until ctx ends, then drains it and releases the
// stores. Listen returns nil once Shutdown has drained the server.
func serve(ctx context.Context, app *fiber.App, addr string, closeStores func(context.Context) error) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.Listen(addr)
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		return closeStores(shutdownCtx)
	})

	return g.Wait()
}

// openStores connects the configured note store and the optional category
// cache. The returned func releases them.
func openStores(ctx context.Context, cfg config.Config, logg *slog.Logger) (stores, func(context.Context) error, error) {
	var (
		st      = stores{cache: notes.NopCache{}, pingers: map[string]handlers.Pinger{}}
		closers []func(context.Context) error
	)
	closeAll := func(ctx context.Context) error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i](ctx))
		}
		return errors.Join(errs...)
	}

	switch cfg.StoreDriver {
	case config.StorePostgres:
		if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
			return stores{}, nil, err
		}
		pool, err := postgres.Open(ctx, cfg.PostgresDSN, logg)
		if err != nil {
			return stores{}, nil, err
		}
		closers = append(closers, func(context.Context) error { pool.Close(); return nil })

		st.users = postgres.NewUsersRepo(pool)
		st.tokens = postgres.NewRefreshTokensRepo(pool)
		st.notes = postgres.NewNotesRepo(pool)
		st.pingers["store"] = pool.Ping

	default:
		_, db, err := mongo.Init(ctx, cfg, logg)
		if err != nil {
			return stores{}, nil, err
		}
		closers = append(closers, mongo.Shutdown)

		if st.users, err = mongo.NewUsersRepo(ctx, db); err != nil {
			_ = closeAll(ctx)
			return stores{}, nil, err
		}
		if st.tokens, err = mongo.NewRefreshTokensRepo(ctx, db); err != nil {
			_ = closeAll(ctx)
			return stores{}, nil, err
		}
		if st.notes, err = mongo.NewNotesRepo(ctx, db); err != nil {
			_ = closeAll(ctx)
			return stores{}, nil, err
		}
		st.pingers["store"] = mongo.Ping
	}

	if cfg.RedisURL != "" {
		ttl := time.Duration(cfg.CategoryCacheTTLSec) * time.Second
		cache, err := rediscache.New(ctx, cfg.RedisURL, ttl)
		if err != nil {
			// counts fall back to the store
			logg.Warn("category cache disabled", "error", err)
		} else {
			closers = append(closers, func(context.Context) error { return cache.Close() })
			st.cache = cache
			st.pingers["cache"] = cache.Ping
		}
	}

	return st, closeAll, nil
}
