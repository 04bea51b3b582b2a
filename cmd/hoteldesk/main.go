package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"hoteldesk/internal/config"
	"hoteldesk/internal/http/handlers"
	applog "hoteldesk/internal/log"
	"hoteldesk/internal/repos"
	"hoteldesk/internal/sessions"
)

func main() {
	if err := run(); err != nil {
		applog.Error(nil, "server.exit", err, nil)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Optional file logging
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			applog.Security(nil, "log.file.open.fail", map[string]any{"path": cfg.LogFile, "err": err.Error()})
		} else {
			defer f.Close()
			out = io.MultiWriter(os.Stdout, f)
		}
	}
	applog.Init(out, cfg.LogLevel)

	if cfg.EphemeralSecret {
		applog.Security(nil, "config.session_secret.ephemeral", map[string]any{
			"hint": "set SESSION_SECRET; sessions will not survive a restart",
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repos.OpenDB(ctx, repos.Options{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DBDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.SeedDemo {
		seeded, err := repos.SeedDemoHotels(ctx, db)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		applog.Info(nil, "db.seed", map[string]any{"seeded": seeded})
	}

	store, closeStore, err := sessionStore(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer closeStore()

	deps := handlers.NewDeps(db, cfg, store)
	app, err := handlers.NewApp(cfg, deps)
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() {
		applog.Info(nil, "server.start", map[string]any{
			"addr": cfg.Addr(), "db": cfg.DBDriver, "sessions": cfg.SessionStore,
		})
		errc <- app.Listen(cfg.Addr())
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	applog.Info(nil, "server.shutdown", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func sessionStore(ctx context.Context, cfg config.Config, db *sqlx.DB) (sessions.Store, func(), error) {
	if cfg.SessionStore == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		return sessions.NewRedisStore(rdb), func() { _ = rdb.Close() }, nil
	}

	repo := repos.NewSessionRepo(db)
	purged, err := repo.Purge(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("purge sessions: %w", err)
	}
	applog.Info(nil, "session.purge", map[string]any{"removed": purged})
	return repo, func() {}, nil
}
