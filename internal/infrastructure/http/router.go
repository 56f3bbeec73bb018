package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/storefront/internal/infrastructure/http/handlers"
	"github.com/amirhosseinghanipour/storefront/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	HealthHandler   *handlers.HealthHandler
	VendorsHandler  *handlers.VendorsHandler
	AdminHandler    *handlers.AdminHandler
	Tenant          *middleware.TenantResolver
	RequireAdmin    func(http.Handler) http.Handler // X-Storefront-Admin-Secret for /admin/*
	Log             zerolog.Logger
	Secure          func(http.Handler) http.Handler
	CORS            func(http.Handler) http.Handler
	IPRateLimit     func(http.Handler) http.Handler
	VendorRateLimit func(http.Handler) http.Handler // after Tenant
	Metrics         bool                            // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	}
	r.Use(chimid.AllowContentType("application/json"))

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	if cfg.VendorsHandler != nil {
		r.Route("/v1", func(r chi.Router) {
			if cfg.IPRateLimit != nil {
				r.Use(cfg.IPRateLimit)
			}
			r.Get("/vendors", cfg.VendorsHandler.List)
			r.Get("/vendors/{slug}", cfg.VendorsHandler.BySlug)
			r.Get("/domains/{domain}/availability", cfg.VendorsHandler.DomainAvailability)
			// Host-scoped routes
			r.Group(func(r chi.Router) {
				r.Use(cfg.Tenant.Handler)
				if cfg.VendorRateLimit != nil {
					r.Use(cfg.VendorRateLimit)
				}
				r.Get("/tenant", cfg.VendorsHandler.Tenant)
			})
		})
	}

	if cfg.AdminHandler != nil && cfg.RequireAdmin != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Use(cfg.RequireAdmin)
			r.Post("/cache/invalidate", cfg.AdminHandler.InvalidateCache)
			r.Post("/cache/warm", cfg.AdminHandler.WarmCache)
			r.Get("/tenant-table", cfg.AdminHandler.TenantTable)
		})
	}

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimid.GetReqID(r.Context())
			log.Info().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("host", r.Host).
				Str("path", r.URL.Path).
				Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}
