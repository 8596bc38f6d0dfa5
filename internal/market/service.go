package market

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/floorpulse/floorpulse/internal/cache"
	"github.com/floorpulse/floorpulse/internal/config"
	"github.com/floorpulse/floorpulse/internal/logger"
	"github.com/floorpulse/floorpulse/internal/metrics"
	"github.com/floorpulse/floorpulse/internal/nftpf"
	"github.com/floorpulse/floorpulse/internal/tracing"
	"github.com/floorpulse/floorpulse/internal/utils"
)

// Source abstracts the upstream market-data API for testability.
type Source interface {
	Projects(ctx context.Context, offset, limit int) (*nftpf.ProjectsResponse, error)
	ProjectBySlug(ctx context.Context, slug string) (*nftpf.Project, error)
	TopSales(ctx context.Context) ([]nftpf.Sale, error)
}

// Cache key prefixes, one per fetch operation.
const (
	prefixProjects = "projects"
	prefixProject  = "project"
	prefixSearch   = "search"
	prefixTopSales = "top_sales"
	prefixRankings = "rankings"
)

// searchFetchLimit is how much of the listing search and rankings pull in;
// both derive from the projects listing rather than a dedicated endpoint.
const searchFetchLimit = 1000

// TTLConfig holds the per-operation cache TTLs. Operations whose data moves
// faster get shorter TTLs.
type TTLConfig struct {
	Projects time.Duration
	Project  time.Duration
	Search   time.Duration
	TopSales time.Duration
	Rankings time.Duration
}

// TTLFromConfig extracts the per-operation TTLs from the process config.
func TTLFromConfig(cfg *config.Config) TTLConfig {
	return TTLConfig{
		Projects: cfg.TTLProjects,
		Project:  cfg.TTLProject,
		Search:   cfg.TTLSearch,
		TopSales: cfg.TTLTopSales,
		Rankings: cfg.TTLRankings,
	}
}

// Service is the cache-first facade over the upstream market-data API.
// Every fetch operation checks the store before calling upstream; a failed
// upstream call is logged and surfaced as "no data" without touching any
// previously cached value.
type Service struct {
	store  *cache.Store
	source Source
	ttl    TTLConfig
}

// NewService creates a cached market-data service.
func NewService(store *cache.Store, source Source, ttl TTLConfig) *Service {
	return &Service{store: store, source: source, ttl: ttl}
}

// Projects returns a page of the projects listing, cache-first.
// The second return value is false when no data is available.
func (s *Service) Projects(ctx context.Context, offset, limit int) (*nftpf.ProjectsResponse, bool) {
	ctx, span := tracing.StartSpan(ctx, "market.Projects")
	defer span.End()
	span.SetAttributes(attribute.Int("offset", offset), attribute.Int("limit", limit))

	key := cache.Key(prefixProjects, map[string]any{"offset": offset, "limit": limit})
	if resp, ok := getTyped[*nftpf.ProjectsResponse](s.store, key); ok {
		logger.DebugContext(ctx, "cache hit for projects", "offset", offset, "limit", limit)
		return resp, true
	}

	logger.DebugContext(ctx, "cache miss for projects", "offset", offset, "limit", limit)
	resp, err := s.source.Projects(ctx, offset, limit)
	if err != nil {
		metrics.UpstreamFetchErrors.WithLabelValues(prefixProjects).Inc()
		logger.ErrorContext(ctx, "failed to fetch projects", "offset", offset, "limit", limit, "error", err)
		return nil, false
	}

	s.store.Set(key, resp, s.ttl.Projects)
	return resp, true
}

// ProjectBySlug returns a single project by slug, cache-first.
func (s *Service) ProjectBySlug(ctx context.Context, slug string) (*nftpf.Project, bool) {
	ctx, span := tracing.StartSpan(ctx, "market.ProjectBySlug")
	defer span.End()
	span.SetAttributes(attribute.String("slug", slug))

	key := cache.Key(prefixProject, map[string]any{"slug": slug})
	if project, ok := getTyped[*nftpf.Project](s.store, key); ok {
		logger.DebugContext(ctx, "cache hit for project", "slug", slug)
		return project, true
	}

	logger.DebugContext(ctx, "cache miss for project", "slug", slug)
	project, err := s.source.ProjectBySlug(ctx, slug)
	if err != nil {
		metrics.UpstreamFetchErrors.WithLabelValues(prefixProject).Inc()
		logger.ErrorContext(ctx, "failed to fetch project", "slug", slug, "error", err)
		return nil, false
	}

	s.store.Set(key, project, s.ttl.Project)
	return project, true
}

// TopSales returns the recent top sales, cache-first.
func (s *Service) TopSales(ctx context.Context) ([]nftpf.Sale, bool) {
	ctx, span := tracing.StartSpan(ctx, "market.TopSales")
	defer span.End()

	key := cache.Key(prefixTopSales, nil)
	if sales, ok := getTyped[[]nftpf.Sale](s.store, key); ok {
		logger.DebugContext(ctx, "cache hit for top sales")
		return sales, true
	}

	logger.DebugContext(ctx, "cache miss for top sales")
	sales, err := s.source.TopSales(ctx)
	if err != nil {
		metrics.UpstreamFetchErrors.WithLabelValues(prefixTopSales).Inc()
		logger.ErrorContext(ctx, "failed to fetch top sales", "error", err)
		return nil, false
	}

	s.store.Set(key, sales, s.ttl.TopSales)
	return sales, true
}

// Rankings returns projects ranked by 24h volume, derived from the cached
// projects listing and paginated.
func (s *Service) Rankings(ctx context.Context, offset, limit int) ([]nftpf.Project, bool) {
	ctx, span := tracing.StartSpan(ctx, "market.Rankings")
	defer span.End()
	span.SetAttributes(attribute.Int("offset", offset), attribute.Int("limit", limit))

	key := cache.Key(prefixRankings, map[string]any{"offset": offset, "limit": limit})
	if rankings, ok := getTyped[[]nftpf.Project](s.store, key); ok {
		logger.DebugContext(ctx, "cache hit for rankings", "offset", offset, "limit", limit)
		return rankings, true
	}

	logger.DebugContext(ctx, "cache miss for rankings", "offset", offset, "limit", limit)
	listing, ok := s.Projects(ctx, 0, searchFetchLimit)
	if !ok {
		return nil, false
	}

	rankings := rankByVolume(listing.Projects, offset, limit)
	s.store.Set(key, rankings, s.ttl.Rankings)
	return rankings, true
}

// WarmCache proactively issues the most common fetch operations so the
// first users after startup hit a warm cache. Failures are logged and do
// not abort the remaining warming steps.
func (s *Service) WarmCache(ctx context.Context) {
	logger.Info("starting cache warming")

	if _, ok := s.Projects(ctx, 0, 100); !ok {
		logger.Warn("cache warming: projects fetch failed")
	}
	if _, ok := s.Rankings(ctx, 0, 20); !ok {
		logger.Warn("cache warming: rankings fetch failed")
	}
	if _, ok := s.TopSales(ctx); !ok {
		logger.Warn("cache warming: top sales fetch failed")
	}

	logger.Info("cache warming completed")
}

// CacheStats returns statistics from the underlying store.
func (s *Service) CacheStats() cache.Stats {
	return s.store.Stats()
}

// Stats satisfies metrics.StatsSource.
func (s *Service) Stats() cache.Stats {
	return s.CacheStats()
}

// ClearCache removes all cached entries.
func (s *Service) ClearCache() {
	s.store.Clear()
	logger.Info("all cache data cleared")
}

// CacheTypes lists the key prefixes accepted by ClearCacheByType.
var CacheTypes = []string{prefixProjects, prefixProject, prefixSearch, prefixTopSales, prefixRankings}

// ClearCacheByType removes only entries belonging to one fetch operation,
// identified by its key prefix. Unknown types are a logged no-op.
func (s *Service) ClearCacheByType(cacheType string) int {
	if !utils.ContainsString(CacheTypes, cacheType) {
		logger.Warn("unknown cache type", "type", cacheType)
		return 0
	}
	removed := s.store.DeletePrefix(cacheType + ":")
	logger.Info("cleared cache entries by type", "type", cacheType, "removed", removed)
	return removed
}

// getTyped reads a key from the store and asserts its type. A value of the
// wrong type is treated as absent and dropped.
func getTyped[T any](store *cache.Store, key string) (T, bool) {
	var zero T
	v, ok := store.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		store.Delete(key)
		return zero, false
	}
	return typed, true
}

// normalizeQuery lowercases and trims a search query for matching and
// shared cache keys.
func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
