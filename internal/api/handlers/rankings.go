package handlers

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/floorpulse/floorpulse/internal/apierr"
	"github.com/floorpulse/floorpulse/internal/metrics"
	"github.com/floorpulse/floorpulse/internal/nftpf"
	"github.com/floorpulse/floorpulse/internal/tracing"
)

// Ranker abstracts volume rankings for testability.
type Ranker interface {
	Rankings(ctx context.Context, offset, limit int) ([]nftpf.Project, bool)
}

// GetRankings handles GET /api/rankings?offset=&limit=.
func GetRankings(svc Ranker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.StartSpan(r.Context(), "handlers.GetRankings")
		defer span.End()

		offset, limit := parsePage(r)
		span.SetAttributes(
			attribute.Int("offset", offset),
			attribute.Int("limit", limit),
		)

		rankings, ok := svc.Rankings(ctx, offset, limit)
		if !ok {
			metrics.APIRequestsTotal.WithLabelValues("/api/rankings", "GET", "503").Inc()
			apierr.WriteError(w, apierr.MarketUnavailable("Market data temporarily unavailable - please retry later"))
			return
		}

		metrics.APIRequestsTotal.WithLabelValues("/api/rankings", "GET", "200").Inc()
		writeJSON(ctx, w, map[string]interface{}{
			"rankings": rankings,
			"count":    len(rankings),
			"offset":   offset,
			"limit":    limit,
		})
	}
}
