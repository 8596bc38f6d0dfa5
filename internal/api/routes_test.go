package api

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/floorpulse/floorpulse/internal/cache"
	"github.com/floorpulse/floorpulse/internal/config"
	"github.com/floorpulse/floorpulse/internal/market"
	"github.com/floorpulse/floorpulse/internal/nftpf"
	"github.com/floorpulse/floorpulse/internal/respcache"
)

type fakeSource struct{}

func (fakeSource) Projects(ctx context.Context, offset, limit int) (*nftpf.ProjectsResponse, error) {
	return &nftpf.ProjectsResponse{
		Projects: []nftpf.Project{
			{Slug: "cryptopunks", Name: "CryptoPunks", FloorPriceETH: 45.0, Volume24h: 900},
			{Slug: "azuki", Name: "Azuki", FloorPriceETH: 6.2, Volume24h: 1500},
		},
		Total: 2,
	}, nil
}

func (fakeSource) ProjectBySlug(ctx context.Context, slug string) (*nftpf.Project, error) {
	return &nftpf.Project{Slug: slug, Name: "CryptoPunks"}, nil
}

func (fakeSource) TopSales(ctx context.Context) ([]nftpf.Sale, error) {
	return []nftpf.Sale{{Slug: "azuki", PriceETH: 12.5}}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	os.Setenv("ENABLE_RATE_LIMIT", "false")
	os.Setenv("ADMIN_API_TOKEN", "test-admin-token-123")
	config.ResetForTest()
	t.Cleanup(config.ResetForTest)

	store := cache.New(100, 5*time.Minute)
	svc := market.NewService(store, fakeSource{}, market.TTLConfig{
		Projects: time.Minute, Project: time.Minute, Search: time.Minute,
		TopSales: time.Minute, Rankings: time.Minute,
	})

	router, limiter := NewRouter(svc, respcache.NewMockCache())
	if limiter != nil {
		t.Cleanup(limiter.Stop)
	}
	return router
}

func TestRoutes_Registered(t *testing.T) {
	router := newTestRouter(t)

	paths := []string{
		"/healthz",
		"/metrics",
		"/api/projects",
		"/api/projects/cryptopunks",
		"/api/search?q=azuki",
		"/api/rankings",
		"/api/top-sales",
		"/api/cache/stats",
	}

	for _, path := range paths {
		req := httptest.NewRequest("GET", path, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, rr.Code)
		}
	}
}

func TestRoutes_CompressedResponse(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/projects", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if enc := rr.Header().Get("Content-Encoding"); enc != "gzip" {
		t.Fatalf("expected gzip encoding, got %q", enc)
	}

	gr, err := gzip.NewReader(rr.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	defer gr.Close()
	body, err := io.ReadAll(gr)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	var payload struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if payload.Total != 2 {
		t.Errorf("expected total 2, got %d", payload.Total)
	}
}

func TestRoutes_RequestIDHeader(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/projects", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header on API responses")
	}
}

func TestCacheClear_AdminAuth(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"valid token", "Bearer test-admin-token-123", http.StatusOK},
		{"invalid token", "Bearer wrong-token", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"malformed bearer", "Bearertest-admin-token-123", http.StatusUnauthorized},
		{"wrong scheme", "Basic dGVzdDp0ZXN0", http.StatusUnauthorized},
	}

	router := newTestRouter(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/cache/clear", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
		})
	}
}

func TestCacheClear_TokenNotConfigured(t *testing.T) {
	os.Setenv("ENABLE_RATE_LIMIT", "false")
	os.Setenv("ADMIN_API_TOKEN", "")
	config.ResetForTest()
	t.Cleanup(config.ResetForTest)

	store := cache.New(100, 5*time.Minute)
	svc := market.NewService(store, fakeSource{}, market.TTLConfig{
		Projects: time.Minute, Project: time.Minute, Search: time.Minute,
		TopSales: time.Minute, Rankings: time.Minute,
	})
	router, _ := NewRouter(svc, respcache.NewMockCache())

	req := httptest.NewRequest("POST", "/api/cache/clear", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when admin token unset, got %d", rr.Code)
	}
}
