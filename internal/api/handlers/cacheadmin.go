package handlers

import (
	"net/http"
	"strings"

	"github.com/floorpulse/floorpulse/internal/apierr"
	"github.com/floorpulse/floorpulse/internal/cache"
	"github.com/floorpulse/floorpulse/internal/logger"
	"github.com/floorpulse/floorpulse/internal/market"
	"github.com/floorpulse/floorpulse/internal/metrics"
	"github.com/floorpulse/floorpulse/internal/utils"
)

// CacheAdmin abstracts the cache management surface of the market
// service.
type CacheAdmin interface {
	CacheStats() cache.Stats
	ClearCache()
	ClearCacheByType(cacheType string) int
}

// CacheAdminHandler handles cache administration endpoints.
type CacheAdminHandler struct {
	svc CacheAdmin
}

// NewCacheAdminHandler creates a new cache admin handler.
func NewCacheAdminHandler(svc CacheAdmin) *CacheAdminHandler {
	return &CacheAdminHandler{svc: svc}
}

// GetStats returns current cache statistics.
// GET /api/cache/stats
func (h *CacheAdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	metrics.APIRequestsTotal.WithLabelValues("/api/cache/stats", "GET", "200").Inc()
	writeJSON(r.Context(), w, h.svc.CacheStats())
}

// Clear empties the cache, or one prefix when ?type= is given.
// POST /api/cache/clear
func (h *CacheAdminHandler) Clear(w http.ResponseWriter, r *http.Request) {
	cacheType := strings.TrimSpace(r.URL.Query().Get("type"))

	if cacheType == "" {
		h.svc.ClearCache()
		logger.InfoContext(r.Context(), "Cache cleared", "scope", "all")
		metrics.APIRequestsTotal.WithLabelValues("/api/cache/clear", "POST", "200").Inc()
		writeJSON(r.Context(), w, map[string]string{
			"status":  "ok",
			"message": "Cache cleared",
		})
		return
	}

	if !utils.ContainsString(market.CacheTypes, cacheType) {
		metrics.APIRequestsTotal.WithLabelValues("/api/cache/clear", "POST", "400").Inc()
		apierr.WriteError(w, apierr.CacheUnknownType(cacheType))
		return
	}

	removed := h.svc.ClearCacheByType(cacheType)
	logger.InfoContext(r.Context(), "Cache cleared", "scope", cacheType, "removed", removed)
	metrics.APIRequestsTotal.WithLabelValues("/api/cache/clear", "POST", "200").Inc()
	writeJSON(r.Context(), w, map[string]interface{}{
		"status":  "ok",
		"type":    cacheType,
		"removed": removed,
	})
}
