package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/floorpulse/floorpulse/internal/apierr"
	"github.com/floorpulse/floorpulse/internal/logger"
	"github.com/floorpulse/floorpulse/internal/metrics"
	"github.com/floorpulse/floorpulse/internal/nftpf"
	"github.com/floorpulse/floorpulse/internal/tracing"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 250
)

// ProjectLister abstracts the project listing for testability.
type ProjectLister interface {
	Projects(ctx context.Context, offset, limit int) (*nftpf.ProjectsResponse, bool)
}

// GetProjects handles GET /api/projects?offset=&limit=.
func GetProjects(svc ProjectLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.StartSpan(r.Context(), "handlers.GetProjects")
		defer span.End()

		offset, limit := parsePage(r)
		span.SetAttributes(
			attribute.Int("offset", offset),
			attribute.Int("limit", limit),
		)

		listing, ok := svc.Projects(ctx, offset, limit)
		if !ok {
			metrics.APIRequestsTotal.WithLabelValues("/api/projects", "GET", "503").Inc()
			apierr.WriteError(w, apierr.MarketUnavailable("Market data temporarily unavailable - please retry later"))
			return
		}

		metrics.APIRequestsTotal.WithLabelValues("/api/projects", "GET", "200").Inc()
		span.SetAttributes(attribute.Int("results_count", len(listing.Projects)))

		writeJSON(ctx, w, map[string]interface{}{
			"projects": listing.Projects,
			"total":    listing.Total,
			"offset":   offset,
			"limit":    limit,
		})
	}
}

// parsePage extracts offset and limit query parameters with sane bounds.
func parsePage(r *http.Request) (offset, limit int) {
	limit = defaultPageLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
			if limit > maxPageLimit {
				limit = maxPageLimit
			}
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = n
		}
	}
	return offset, limit
}

func writeJSON(ctx context.Context, w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.ErrorContext(ctx, "Failed to encode response", "error", err)
	}
}
