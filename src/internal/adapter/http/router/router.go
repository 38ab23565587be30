package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouteRegistrar interface {
	RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler)
}

type Options struct {
	AuthMiddleware func(http.Handler) http.Handler
	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler
}

func New(opts Options, registrars ...RouteRegistrar) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}
	registerSwaggerRoutes(r)

	for _, registrar := range registrars {
		if registrar != nil {
			registrar.RegisterRoutes(r, opts.AuthMiddleware)
		}
	}

	return r
}
