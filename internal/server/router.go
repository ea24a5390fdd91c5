package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pxtester/showcase/internal/api"
	"github.com/pxtester/showcase/internal/api/handlers"
	"github.com/pxtester/showcase/internal/api/middleware"
	"github.com/pxtester/showcase/internal/domain"
	"github.com/pxtester/showcase/internal/service"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	Logger          zerolog.Logger
	Sessions        middleware.SessionLookup
	AllowedOrigins  []string
	SearchHandler   *handlers.SearchHandler
	SiteHandler     *handlers.SiteHandler
	AdminHandler    *handlers.AdminHandler
	CategoryHandler *handlers.CategoryHandler
	ImageHandler    *handlers.ImageHandler
	AuthHandler     *handlers.AuthHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const (
		maxBodyBytes   int64 = 5 << 20
		maxUploadBytes       = service.MaxImageBytes + 1<<20
	)

	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog(cfg.Logger))
	r.Use(middleware.BodyLimit(maxBodyBytes, maxUploadBytes))
	r.Use(middleware.LoadSession(cfg.Sessions, cfg.Logger))

	r.Get("/screenshots/{key}", cfg.ImageHandler.Screenshot)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/search", cfg.SearchHandler.Search)
		r.Get("/categories", cfg.CategoryHandler.List)

		r.Route("/sites", func(r chi.Router) {
			r.Get("/", cfg.SiteHandler.List)
			r.Get("/{id}", cfg.SiteHandler.Get)
			r.Post("/{id}/like", cfg.SiteHandler.Like)
			r.Get("/{id}/similar", cfg.SearchHandler.Similar)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleUser))
				r.Post("/", cfg.SiteHandler.Create)
				r.Get("/my", cfg.SiteHandler.Mine)
				r.Put("/{id}", cfg.SiteHandler.Update)
				r.Delete("/{id}", cfg.SiteHandler.Delete)
			})
		})

		r.With(middleware.RequireRole(domain.RoleSuperAdmin)).Post("/categories", cfg.CategoryHandler.Create)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleAdmin))
			r.Get("/pending", cfg.AdminHandler.Pending)
			r.Post("/sites/{id}/approve", cfg.AdminHandler.Approve)
			r.Post("/sites/{id}/reject", cfg.AdminHandler.Reject)
		})

		r.With(middleware.RequireRole(domain.RoleAdmin)).Post("/upload/image", cfg.ImageHandler.Upload)

		r.Route("/auth", func(r chi.Router) {
			r.Get("/me", cfg.AuthHandler.Me)
			r.Post("/logout", cfg.AuthHandler.Logout)
		})
	})

	return r
}
