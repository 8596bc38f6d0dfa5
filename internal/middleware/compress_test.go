package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
)

func TestCompress_Gzip(t *testing.T) {
	payload := strings.Repeat(`{"slug":"cryptopunks","floor_price_eth":45.5}`, 100)

	handler := Compress(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))

	req := httptest.NewRequest("GET", "/api/projects", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("expected Content-Encoding: gzip, got %q", got)
	}
	if rr.Body.Len() >= len(payload) {
		t.Errorf("compressed body (%d bytes) not smaller than payload (%d bytes)", rr.Body.Len(), len(payload))
	}

	gr, err := gzip.NewReader(rr.Body)
	if err != nil {
		t.Fatalf("failed to create gzip reader: %v", err)
	}
	defer gr.Close()
	body, err := io.ReadAll(gr)
	if err != nil {
		t.Fatalf("failed to read gzipped body: %v", err)
	}
	if string(body) != payload {
		t.Error("decompressed body doesn't match original payload")
	}
}

func TestCompress_Brotli(t *testing.T) {
	payload := strings.Repeat(`{"slug":"azuki","floor_price_eth":6.2}`, 100)

	handler := Compress(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))

	req := httptest.NewRequest("GET", "/api/projects", nil)
	req.Header.Set("Accept-Encoding", "br, gzip")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Content-Encoding"); got != "br" {
		t.Fatalf("expected Content-Encoding: br, got %q", got)
	}

	body, err := io.ReadAll(brotli.NewReader(rr.Body))
	if err != nil {
		t.Fatalf("failed to read brotli body: %v", err)
	}
	if string(body) != payload {
		t.Error("decompressed body doesn't match original payload")
	}
}

func TestCompress_NoAcceptEncoding(t *testing.T) {
	payload := `{"slug":"art-blocks"}`

	handler := Compress(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))

	req := httptest.NewRequest("GET", "/api/projects", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Content-Encoding"); got != "" {
		t.Fatalf("expected no Content-Encoding, got %q", got)
	}
	if rr.Body.String() != payload {
		t.Error("body should pass through unmodified")
	}
}

func TestCompress_PreservesStatusCode(t *testing.T) {
	handler := Compress(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"MARKET_NOT_FOUND"}}`))
	}))

	req := httptest.NewRequest("GET", "/api/projects/nope", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}
