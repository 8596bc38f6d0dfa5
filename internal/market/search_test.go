package market

import (
	"context"
	"testing"

	"github.com/floorpulse/floorpulse/internal/nftpf"
)

func TestSearch_MatchesNameAndSlug(t *testing.T) {
	source := &fakeSource{listing: sampleListing()}
	svc := newTestService(source)
	ctx := context.Background()

	results, ok := svc.Search(ctx, "CryptoPunks", nil)
	if !ok || len(results) != 1 || results[0].Slug != "cryptopunks" {
		t.Fatalf("expected cryptopunks by name, got %+v", results)
	}

	results, ok = svc.Search(ctx, "art-blocks", nil)
	if !ok || len(results) != 1 || results[0].Name != "Art Blocks" {
		t.Fatalf("expected art blocks by slug, got %+v", results)
	}

	// Substring matches count too.
	results, ok = svc.Search(ctx, "punk", nil)
	if !ok || len(results) != 1 {
		t.Fatalf("expected substring match, got %+v", results)
	}
}

func TestSearch_NoMatchIsEmptyNotAbsent(t *testing.T) {
	source := &fakeSource{listing: sampleListing()}
	svc := newTestService(source)

	results, ok := svc.Search(context.Background(), "nonexistent", nil)
	if !ok {
		t.Fatal("a successful search with no matches is still data")
	}
	if len(results) != 0 {
		t.Errorf("expected no matches, got %+v", results)
	}
}

func TestSearch_SecondCallIsCached(t *testing.T) {
	source := &fakeSource{listing: sampleListing()}
	svc := newTestService(source)
	ctx := context.Background()

	svc.Search(ctx, "azuki", &SearchFilters{Category: "pfp"})
	svc.Search(ctx, "azuki", &SearchFilters{Category: "pfp"})

	if source.projectsCalls != 1 {
		t.Errorf("expected 1 upstream call for repeated search, got %d", source.projectsCalls)
	}
}

func TestSearch_NilAndEmptyFiltersShareAKey(t *testing.T) {
	source := &fakeSource{listing: sampleListing()}
	svc := newTestService(source)
	ctx := context.Background()

	svc.Search(ctx, "azuki", nil)
	svc.Search(ctx, "azuki", &SearchFilters{})

	// Both land on the same cache entry; only the first miss pulls the
	// listing upstream.
	stats := svc.CacheStats()
	if stats.Hits == 0 {
		t.Error("expected the second search to be a cache hit")
	}
	if source.projectsCalls != 1 {
		t.Errorf("expected 1 upstream call, got %d", source.projectsCalls)
	}
}

func TestSearch_UpstreamFailure(t *testing.T) {
	source := &fakeSource{projectsErr: errTest}
	svc := newTestService(source)

	if _, ok := svc.Search(context.Background(), "azuki", nil); ok {
		t.Error("expected absent result when the listing is unavailable")
	}
}

var errTest = context.DeadlineExceeded

func TestApplyFilters_Category(t *testing.T) {
	got := applyFilters(sampleListing().Projects, &SearchFilters{Category: "ART"})
	if len(got) != 1 || got[0].Slug != "art-blocks" {
		t.Errorf("expected only art projects, got %+v", got)
	}
}

func TestApplyFilters_PriceRange(t *testing.T) {
	got := applyFilters(sampleListing().Projects, &SearchFilters{MinPrice: 1.0, MaxPrice: 10.0})
	if len(got) != 1 || got[0].Slug != "azuki" {
		t.Errorf("expected projects in [1,10] ETH, got %+v", got)
	}

	// Only a lower bound: everything at or above it.
	got = applyFilters(sampleListing().Projects, &SearchFilters{MinPrice: 1.0})
	if len(got) != 2 {
		t.Errorf("expected 2 projects above 1 ETH, got %+v", got)
	}
}

func TestApplyFilters_VolumeRange(t *testing.T) {
	got := applyFilters(sampleListing().Projects, &SearchFilters{MinVolume: 1000})
	if len(got) != 1 || got[0].Slug != "azuki" {
		t.Errorf("expected high-volume projects, got %+v", got)
	}
}

func TestApplyFilters_BlueChip(t *testing.T) {
	got := applyFilters(sampleListing().Projects, &SearchFilters{BlueChip: true})
	if len(got) != 2 {
		t.Errorf("expected floor > 1 and volume > 100, got %+v", got)
	}
	for _, p := range got {
		if p.FloorPriceETH <= 1.0 || p.Volume24h <= 100 {
			t.Errorf("non blue-chip project passed the filter: %+v", p)
		}
	}
}

func TestApplyFilters_NewProjects(t *testing.T) {
	got := applyFilters(sampleListing().Projects, &SearchFilters{NewProjects: true})
	if len(got) != 1 || got[0].Slug != "art-blocks" {
		t.Errorf("expected sub-1-ETH projects, got %+v", got)
	}
}

func TestApplyFilters_TrendingSortsByVolume(t *testing.T) {
	got := applyFilters(sampleListing().Projects, &SearchFilters{Trending: true})
	if len(got) != 3 {
		t.Fatalf("expected all 3 projects, got %d", len(got))
	}
	if got[0].Slug != "azuki" {
		t.Errorf("expected highest-volume project first, got %s", got[0].Slug)
	}
}

func TestRankByVolume_Pagination(t *testing.T) {
	projects := sampleListing().Projects

	page := rankByVolume(projects, 1, 1)
	if len(page) != 1 || page[0].Slug != "cryptopunks" {
		t.Errorf("expected second-ranked project, got %+v", page)
	}

	if got := rankByVolume(projects, 0, 0); len(got) != 3 {
		t.Errorf("expected limit 0 to return everything, got %d", len(got))
	}

	if got := rankByVolume([]nftpf.Project{}, 0, 10); len(got) != 0 {
		t.Errorf("expected empty input to stay empty, got %d", len(got))
	}

	if got := rankByVolume(projects, -3, 2); len(got) != 2 || got[0].Slug != "azuki" {
		t.Errorf("expected negative offset to clamp to start, got %+v", got)
	}
}
