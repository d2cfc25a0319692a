package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Tomlord1122/portfolio-backend/internal/cache"
	"github.com/Tomlord1122/portfolio-backend/internal/config"
	"github.com/Tomlord1122/portfolio-backend/internal/database"
	"github.com/Tomlord1122/portfolio-backend/internal/graphql"
	"github.com/Tomlord1122/portfolio-backend/internal/identity"
	"github.com/Tomlord1122/portfolio-backend/internal/logger"
	"github.com/Tomlord1122/portfolio-backend/internal/ratelimit"
	"github.com/Tomlord1122/portfolio-backend/internal/repository"
	"github.com/Tomlord1122/portfolio-backend/internal/server"
	"github.com/Tomlord1122/portfolio-backend/internal/service"
)

func gracefulShutdown(log *slog.Logger, apiServer *http.Server, closers []io.Closer, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The server has 5 seconds to finish the requests it is currently handling
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Error("server forced to shutdown", slog.Any("error", err))
	}

	// Close in reverse order of construction; the database pool goes last.
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			log.Error("close dependency", slog.Any("error", err))
		}
	}

	log.Info("server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

// newRedis returns nil when no address is configured or the server does not answer.
func newRedis(ctx context.Context, cfg config.Redis, log *slog.Logger) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unavailable, using in-memory rate limiter and cache", slog.String("addr", cfg.Addr), slog.Any("error", err))
		_ = client.Close()
		return nil
	}
	log.Info("redis connected", slog.String("addr", cfg.Addr))
	return client
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "path to a YAML config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)
	log := logger.New(cfg.Env)

	ctx := context.Background()

	// 1. Database
	dbService, err := database.New(cfg.DB, log)
	if err != nil {
		log.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	closers := []io.Closer{dbService}

	if cfg.DB.RunMigrations {
		migrator, err := database.NewMigrator(dbService.GetDB(), log)
		if err != nil {
			log.Error("failed to configure migrations", slog.Any("error", err))
			os.Exit(1)
		}
		if err := migrator.Up(ctx); err != nil {
			log.Error("migrations failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// 2. Rate limiter and list cache, shared through Redis when available
	var (
		limiter   ratelimit.Limiter
		listCache cache.ListCache
	)
	if rdb := newRedis(ctx, cfg.Redis, log); rdb != nil {
		closers = append(closers, rdb)
		limiter = ratelimit.NewRedis(rdb, log)
		listCache = cache.NewRedis(rdb, cache.DefaultTTL, log)
	} else {
		limiter = ratelimit.NewMemory()
		listCache = cache.NewMemory(cache.DefaultTTL)
	}
	closers = append(closers, limiter)

	// 3. Repositories
	gormDB := dbService.GetDB()
	todoRepo := repository.NewGormTodoRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)

	// 4. Identity and services
	provider := identity.NewProvider(userRepo, cfg.Auth.Secret, cfg.Auth.TokenTTL)
	todoService := service.NewTodoService(todoRepo, limiter, listCache, log)
	userService := service.NewUserService(userRepo, provider, limiter, log)

	graphqlHandler, err := graphql.NewHandler(todoService, userService, log)
	if err != nil {
		log.Error("failed to build graphql schema", slog.Any("error", err))
		os.Exit(1)
	}

	// 5. HTTP server
	apiServer := server.NewServer(cfg.HTTPServer, cfg.Env, server.Deps{
		Todos:    todoService,
		Users:    userService,
		Resolver: provider,
		DB:       dbService,
		GraphQL:  graphqlHandler,
		Log:      log,
	})

	done := make(chan bool, 1)
	go gracefulShutdown(log, apiServer, closers, done)

	log.Info("starting server", slog.String("addr", apiServer.Addr), slog.String("env", cfg.Env))
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http server error", slog.Any("error", err))
		os.Exit(1)
	}

	<-done
	log.Info("graceful shutdown complete")
}
