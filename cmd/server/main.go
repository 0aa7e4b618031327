package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/property-reservation/internal/booking"
	"github.com/iliyamo/property-reservation/internal/config"
	"github.com/iliyamo/property-reservation/internal/database"
	"github.com/iliyamo/property-reservation/internal/handler"
	"github.com/iliyamo/property-reservation/internal/memstore"
	"github.com/iliyamo/property-reservation/internal/middleware"
	"github.com/iliyamo/property-reservation/internal/queue"
	"github.com/iliyamo/property-reservation/internal/repository"
	"github.com/iliyamo/property-reservation/internal/router"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := config.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store  booking.Store
		users  handler.UserStore
		tokens handler.TokenStore
		health handler.Health
	)
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return err
		}
		defer db.Close()
		if cfg.DBAutoMigrate {
			if err := database.EnsureSchema(ctx, db); err != nil {
				return err
			}
			log.Info("schema applied")
		}
		store, users, tokens = mysqlStores(db)
		health.DB = db
	default:
		mem := memstore.New()
		if cfg.SeedFile != "" {
			f, err := os.Open(cfg.SeedFile)
			if err != nil {
				return err
			}
			err = mem.LoadSeed(f)
			f.Close()
			if err != nil {
				return err
			}
		}
		store, users, tokens = mem, memstore.NewUsers(), memstore.NewTokens()
		log.Warn("using in-memory store; data is lost on exit")
	}

	opts := []booking.Option{
		booking.WithLogger(log.With("component", "booking")),
		booking.WithConfirmationAttempts(cfg.ConfirmationMaxAttempts),
	}
	if cfg.EventsEnabled {
		opts = append(opts, booking.WithNotifier(queue.NewPublisher(cfg.AMQPURL, cfg.EventsQueue)))
	}
	svc, err := booking.NewService(store, opts...)
	if err != nil {
		return err
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; rate limiting and caching disabled")
	} else {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()

	auth := handler.NewAuthHandler(cfg, users, tokens)
	if err := auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}
	reservations := handler.NewReservationHandler(svc, middleware.CachePurger(cacheCfg, rdb, log), log)

	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = handler.JSONSerializer{}
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))

	router.RegisterRoutes(e, health)
	v1 := e.Group("/v1", middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))
	router.RegisterAuth(v1, auth, cfg.JWTSecret)
	router.RegisterReservations(v1, reservations, cfg.JWTSecret, middleware.NewRedisCache(cacheCfg, rdb))

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", "addr", addr, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func mysqlStores(db *sql.DB) (booking.Store, handler.UserStore, handler.TokenStore) {
	return repository.NewStore(db), repository.NewUserRepo(db), repository.NewTokenRepo(db)
}
