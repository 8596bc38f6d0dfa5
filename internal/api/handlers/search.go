package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/floorpulse/floorpulse/internal/apierr"
	"github.com/floorpulse/floorpulse/internal/market"
	"github.com/floorpulse/floorpulse/internal/metrics"
	"github.com/floorpulse/floorpulse/internal/nftpf"
	"github.com/floorpulse/floorpulse/internal/tracing"
)

// CollectionSearcher abstracts collection search for testability.
type CollectionSearcher interface {
	Search(ctx context.Context, query string, filters *market.SearchFilters) ([]nftpf.Project, bool)
}

// SearchCollections handles GET /api/search?q=...&category=...&min_price=...
func SearchCollections(svc CollectionSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.StartSpan(r.Context(), "handlers.SearchCollections")
		defer span.End()

		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			metrics.APIRequestsTotal.WithLabelValues("/api/search", "GET", "400").Inc()
			apierr.WriteError(w, apierr.SearchInvalidQuery("q parameter is required"))
			return
		}

		filters := parseFilters(r)
		span.SetAttributes(attribute.String("search_query", query))

		results, ok := svc.Search(ctx, query, filters)
		if !ok {
			metrics.APIRequestsTotal.WithLabelValues("/api/search", "GET", "503").Inc()
			apierr.WriteError(w, apierr.MarketUnavailable("Market data temporarily unavailable - please retry later"))
			return
		}

		metrics.APIRequestsTotal.WithLabelValues("/api/search", "GET", "200").Inc()
		span.SetAttributes(attribute.Int("results_count", len(results)))

		writeJSON(ctx, w, map[string]interface{}{
			"query":   query,
			"count":   len(results),
			"results": results,
		})
	}
}

// parseFilters builds search filters from query parameters. Absent
// parameters leave their filter zero-valued, which Search treats as
// unset.
func parseFilters(r *http.Request) *market.SearchFilters {
	q := r.URL.Query()

	filters := &market.SearchFilters{
		Category:    strings.TrimSpace(q.Get("category")),
		Trending:    q.Get("trending") == "true",
		BlueChip:    q.Get("blue_chip") == "true",
		NewProjects: q.Get("new") == "true",
	}

	if v, err := strconv.ParseFloat(q.Get("min_price"), 64); err == nil {
		filters.MinPrice = v
	}
	if v, err := strconv.ParseFloat(q.Get("max_price"), 64); err == nil {
		filters.MaxPrice = v
	}
	if v, err := strconv.ParseFloat(q.Get("min_volume"), 64); err == nil {
		filters.MinVolume = v
	}
	if v, err := strconv.ParseFloat(q.Get("max_volume"), 64); err == nil {
		filters.MaxVolume = v
	}

	return filters
}
