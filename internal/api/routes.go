package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/floorpulse/floorpulse/internal/api/handlers"
	"github.com/floorpulse/floorpulse/internal/config"
	"github.com/floorpulse/floorpulse/internal/market"
	"github.com/floorpulse/floorpulse/internal/middleware"
	"github.com/floorpulse/floorpulse/internal/respcache"
)

// NewRouter builds the HTTP API. The returned rate limiter must be
// stopped on shutdown; it is nil when rate limiting is disabled.
func NewRouter(svc *market.Service, rc respcache.Cache) (*mux.Router, *middleware.RateLimiter) {
	cfg := config.Load()
	r := mux.NewRouter()

	r.HandleFunc("/healthz", handlers.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(middleware.RequestID)
	apiRouter.Use(middleware.RecoverWithSentry)

	var limiter *middleware.RateLimiter
	if cfg.EnableRateLimit {
		limiter = middleware.NewRateLimiter(
			cfg.RateLimitGlobal, cfg.RateLimitGlobalBurst,
			cfg.RateLimitPerIP, cfg.RateLimitPerIPBurst,
		)
		apiRouter.Use(limiter.Limit)
	}
	apiRouter.Use(middleware.Compress)

	// Rendered GET responses are cached briefly. Admin endpoints stay
	// uncached so stats and clears take effect immediately.
	cached := middleware.ResponseCache(rc, cfg.ResponseCacheTTL)

	apiRouter.Handle("/projects", cached(handlers.GetProjects(svc))).Methods("GET")
	apiRouter.Handle("/projects/{slug}", cached(handlers.GetProject(svc))).Methods("GET")
	apiRouter.Handle("/search", cached(handlers.SearchCollections(svc))).Methods("GET")
	apiRouter.Handle("/rankings", cached(handlers.GetRankings(svc))).Methods("GET")
	apiRouter.Handle("/top-sales", cached(handlers.GetTopSales(svc))).Methods("GET")

	cacheAdmin := handlers.NewCacheAdminHandler(svc)
	apiRouter.HandleFunc("/cache/stats", cacheAdmin.GetStats).Methods("GET")
	apiRouter.Handle("/cache/clear", adminOnly(cfg, http.HandlerFunc(cacheAdmin.Clear))).Methods("POST")

	return r, limiter
}

// adminOnly guards an endpoint with the configured bearer token.
func adminOnly(cfg *config.Config, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cfg.AdminAPIToken == "" {
			http.Error(w, "admin token not configured", http.StatusServiceUnavailable)
			return
		}
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix || auth[len(prefix):] != cfg.AdminAPIToken {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
