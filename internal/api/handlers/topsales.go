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

// SalesLister abstracts the top-sales feed for testability.
type SalesLister interface {
	TopSales(ctx context.Context) ([]nftpf.Sale, bool)
}

// GetTopSales handles GET /api/top-sales.
func GetTopSales(svc SalesLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.StartSpan(r.Context(), "handlers.GetTopSales")
		defer span.End()

		sales, ok := svc.TopSales(ctx)
		if !ok {
			metrics.APIRequestsTotal.WithLabelValues("/api/top-sales", "GET", "503").Inc()
			apierr.WriteError(w, apierr.MarketUnavailable("Market data temporarily unavailable - please retry later"))
			return
		}

		metrics.APIRequestsTotal.WithLabelValues("/api/top-sales", "GET", "200").Inc()
		span.SetAttributes(attribute.Int("results_count", len(sales)))

		writeJSON(ctx, w, map[string]interface{}{
			"sales": sales,
			"count": len(sales),
		})
	}
}
