package router

import (
	"inventory-rest-api/internal/handler"
	"inventory-rest-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler          *handler.Handler
	InventoryHandler *handler.InventoryHandler
	AdminHandler     *handler.AdminHandler
	ActivityHandler  *handler.ActivityHandler
	DocsHandler      *handler.DocsHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	// RequestID runs first so a recovered panic is logged under the request id.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	// HTML forms and API docs
	if cfg.DocsHandler != nil {
		r.Get("/RegisterForm.html", cfg.DocsHandler.RegisterForm)
		r.Get("/SearchForm.html", cfg.DocsHandler.SearchForm)
		r.Get("/docs", cfg.DocsHandler.Docs)
		r.Get("/docs/openapi.json", cfg.DocsHandler.OpenAPI)
	}

	// Inventory endpoints
	if cfg.InventoryHandler != nil {
		r.Post("/register", cfg.InventoryHandler.Register)
		r.Post("/search", cfg.InventoryHandler.Search)
		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", cfg.InventoryHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.InventoryHandler.Get)
				r.Put("/", cfg.InventoryHandler.Update)
				r.Delete("/", cfg.InventoryHandler.Delete)
				r.Get("/photo", cfg.InventoryHandler.GetPhoto)
				r.Put("/photo", cfg.InventoryHandler.ReplacePhoto)
			})
		})
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check endpoints
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		// Admin endpoints
		r.Route("/admin", func(r chi.Router) {
			if cfg.AdminHandler != nil {
				r.Get("/stats", cfg.AdminHandler.GetStats)
			}
			if cfg.ActivityHandler != nil {
				r.Get("/activity", cfg.ActivityHandler.List)
			}
		})
	})

	return r
}
