package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Tomlord1122/portfolio-backend/internal/config"
	"github.com/Tomlord1122/portfolio-backend/internal/domain"
	"github.com/Tomlord1122/portfolio-backend/internal/service"
)

// Resolver turns a request into the caller's identity.
type Resolver interface {
	Resolve(r *http.Request) domain.Identity
}

// HealthChecker reports database status for /health.
type HealthChecker interface {
	Health() map[string]string
}

// Deps are the collaborators the HTTP layer delegates to.
type Deps struct {
	Todos    service.TodoService
	Users    service.UserService
	Resolver Resolver
	DB       HealthChecker
	GraphQL  http.Handler
	Log      *slog.Logger
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	cfg      config.HTTPServer
	todos    service.TodoService
	users    service.UserService
	resolver Resolver
	db       HealthChecker
	graphql  http.Handler
	log      *slog.Logger
	metrics  *metrics

	secureCookies bool
}

// New creates a Server with its metrics registry.
func New(cfg config.HTTPServer, env string, deps Deps) *Server {
	return &Server{
		cfg:           cfg,
		todos:         deps.Todos,
		users:         deps.Users,
		resolver:      deps.Resolver,
		db:            deps.DB,
		graphql:       deps.GraphQL,
		log:           deps.Log,
		metrics:       newMetrics(),
		secureCookies: env == config.EnvProd,
	}
}

// NewServer wraps the routes in an http.Server configured from cfg.
func NewServer(cfg config.HTTPServer, env string, deps Deps) *http.Server {
	appServer := New(cfg, env, deps)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  cfg.IdleTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(deps.Log.Handler(), slog.LevelError),
	}
}
