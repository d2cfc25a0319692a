package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RegisterRoutes builds the router with its middleware stack.
func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(s.identify)

	r.Get("/health", s.healthHandler)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/todos", func(r chi.Router) {
			r.Get("/", s.listTodosHandler)
			r.Post("/", s.createTodoHandler)
			r.Get("/stats", s.statsHandler)
			r.Get("/{id}", s.getTodoHandler)
			r.Put("/{id}", s.updateTodoHandler)
			r.Delete("/{id}", s.deleteTodoHandler)
		})
		r.Get("/users", s.listUsersHandler)
	})

	r.Post("/api/web-vitals", s.webVitalsHandler)

	if s.graphql != nil {
		r.Method(http.MethodGet, "/api/graphql", s.graphql)
		r.Method(http.MethodPost, "/api/graphql", s.graphql)
	}

	// form posts from the web UI
	r.Post("/todos/create", s.createTodoForm)
	r.Post("/todos/{id}/edit", s.updateTodoForm)
	r.Post("/todos/{id}/delete", s.deleteTodoForm)
	r.Post("/login", s.loginForm)
	r.Post("/register", s.registerForm)
	r.Post("/logout", s.logoutForm)

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.db.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}
