package market

import (
	"context"
	"math"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/floorpulse/floorpulse/internal/cache"
	"github.com/floorpulse/floorpulse/internal/logger"
	"github.com/floorpulse/floorpulse/internal/nftpf"
	"github.com/floorpulse/floorpulse/internal/tracing"
)

// trendingLimit caps the result set when the trending filter is applied.
const trendingLimit = 50

// SearchFilters narrows search results. Zero values mean "no constraint".
type SearchFilters struct {
	Category    string
	MinPrice    float64
	MaxPrice    float64
	MinVolume   float64
	MaxVolume   float64
	Trending    bool
	BlueChip    bool
	NewProjects bool
}

// params serializes the set filters for cache-key construction. Only
// non-zero fields participate so an absent filter and a nil filter set
// share a key.
func (f *SearchFilters) params() map[string]any {
	params := map[string]any{}
	if f == nil {
		return params
	}
	if f.Category != "" {
		params["category"] = strings.ToLower(f.Category)
	}
	if f.MinPrice > 0 {
		params["min_price"] = f.MinPrice
	}
	if f.MaxPrice > 0 {
		params["max_price"] = f.MaxPrice
	}
	if f.MinVolume > 0 {
		params["min_volume"] = f.MinVolume
	}
	if f.MaxVolume > 0 {
		params["max_volume"] = f.MaxVolume
	}
	if f.Trending {
		params["trending"] = true
	}
	if f.BlueChip {
		params["blue_chip"] = true
	}
	if f.NewProjects {
		params["new_projects"] = true
	}
	return params
}

// Search matches collections by name or slug against the cached projects
// listing, applies the filter set, and caches the result under its own key.
// Results are shared across users; the key carries no user identity.
func (s *Service) Search(ctx context.Context, query string, filters *SearchFilters) ([]nftpf.Project, bool) {
	ctx, span := tracing.StartSpan(ctx, "market.Search")
	defer span.End()

	term := normalizeQuery(query)
	span.SetAttributes(attribute.String("query", term))

	key := cache.Key(prefixSearch, map[string]any{
		"collection_name": term,
		"filters":         filters.params(),
	})
	if results, ok := getTyped[[]nftpf.Project](s.store, key); ok {
		logger.DebugContext(ctx, "cache hit for search", "query", term)
		return results, true
	}

	logger.DebugContext(ctx, "cache miss for search", "query", term)
	listing, ok := s.Projects(ctx, 0, searchFetchLimit)
	if !ok {
		return nil, false
	}

	matches := make([]nftpf.Project, 0)
	for _, p := range listing.Projects {
		name := strings.ToLower(p.Name)
		slug := strings.ToLower(p.Slug)
		if term == name || term == slug ||
			strings.Contains(name, term) || strings.Contains(slug, term) {
			matches = append(matches, p)
		}
	}

	matches = applyFilters(matches, filters)
	span.SetAttributes(attribute.Int("results_count", len(matches)))

	s.store.Set(key, matches, s.ttl.Search)
	return matches, true
}

// applyFilters narrows projects per the filter set, in the same order the
// filters are documented: category, price range, volume range, trending,
// blue chip, new projects.
func applyFilters(projects []nftpf.Project, f *SearchFilters) []nftpf.Project {
	if f == nil {
		return projects
	}

	filtered := projects

	if f.Category != "" {
		category := strings.ToLower(f.Category)
		filtered = keep(filtered, func(p nftpf.Project) bool {
			return strings.ToLower(p.Category) == category
		})
	}

	if f.MinPrice > 0 || f.MaxPrice > 0 {
		min, max := f.MinPrice, f.MaxPrice
		if max <= 0 {
			max = math.Inf(1)
		}
		filtered = keep(filtered, func(p nftpf.Project) bool {
			return p.FloorPriceETH >= min && p.FloorPriceETH <= max
		})
	}

	if f.MinVolume > 0 || f.MaxVolume > 0 {
		min, max := f.MinVolume, f.MaxVolume
		if max <= 0 {
			max = math.Inf(1)
		}
		filtered = keep(filtered, func(p nftpf.Project) bool {
			return p.Volume24h >= min && p.Volume24h <= max
		})
	}

	if f.Trending {
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Volume24h > filtered[j].Volume24h
		})
		if len(filtered) > trendingLimit {
			filtered = filtered[:trendingLimit]
		}
	}

	if f.BlueChip {
		filtered = keep(filtered, func(p nftpf.Project) bool {
			return p.FloorPriceETH > 1.0 && p.Volume24h > 100
		})
	}

	if f.NewProjects {
		// The API carries no creation date; a low floor is the proxy for
		// newer collections.
		filtered = keep(filtered, func(p nftpf.Project) bool {
			return p.FloorPriceETH < 1.0
		})
	}

	return filtered
}

func keep(projects []nftpf.Project, pred func(nftpf.Project) bool) []nftpf.Project {
	out := make([]nftpf.Project, 0, len(projects))
	for _, p := range projects {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

// rankByVolume sorts projects by 24h volume descending and returns the
// requested page.
func rankByVolume(projects []nftpf.Project, offset, limit int) []nftpf.Project {
	ranked := make([]nftpf.Project, len(projects))
	copy(ranked, projects)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Volume24h > ranked[j].Volume24h
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(ranked) {
		return []nftpf.Project{}
	}
	end := offset + limit
	if limit <= 0 || end > len(ranked) {
		end = len(ranked)
	}
	return ranked[offset:end]
}
