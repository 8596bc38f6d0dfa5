package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"

	"github.com/floorpulse/floorpulse/internal/apierr"
	"github.com/floorpulse/floorpulse/internal/metrics"
	"github.com/floorpulse/floorpulse/internal/nftpf"
	"github.com/floorpulse/floorpulse/internal/tracing"
)

// ProjectGetter abstracts single-project lookup for testability.
type ProjectGetter interface {
	ProjectBySlug(ctx context.Context, slug string) (*nftpf.Project, bool)
}

// GetProject handles GET /api/projects/{slug}.
func GetProject(svc ProjectGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.StartSpan(r.Context(), "handlers.GetProject")
		defer span.End()

		slug := strings.TrimSpace(mux.Vars(r)["slug"])
		if slug == "" {
			metrics.APIRequestsTotal.WithLabelValues("/api/projects/{slug}", "GET", "400").Inc()
			apierr.WriteError(w, apierr.ValidationInvalidValue("slug is required"))
			return
		}
		span.SetAttributes(attribute.String("slug", slug))

		project, ok := svc.ProjectBySlug(ctx, slug)
		if !ok {
			metrics.APIRequestsTotal.WithLabelValues("/api/projects/{slug}", "GET", "503").Inc()
			apierr.WriteError(w, apierr.MarketUnavailable("Market data temporarily unavailable - please retry later"))
			return
		}

		metrics.APIRequestsTotal.WithLabelValues("/api/projects/{slug}", "GET", "200").Inc()
		writeJSON(ctx, w, project)
	}
}
