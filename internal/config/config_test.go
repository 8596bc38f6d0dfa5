package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// ensure defaults kick in with empty env
	for _, key := range []string{
		"NFTPF_API_HOST", "FLOORPULSE_USER_AGENT", "HTTP_MAX_RETRIES",
		"CACHE_MAX_SIZE", "CACHE_DEFAULT_TTL_MIN", "CACHE_TTL_PROJECT_MIN",
		"LISTEN_ADDR", "DATA_DIR", "DIGEST_DEFAULT_HOUR_UTC",
	} {
		os.Unsetenv(key)
	}
	ResetForTest()
	defer ResetForTest()

	cfg := Load()
	if cfg.NFTPFHost != "nftpf-api-v0.p.rapidapi.com" {
		t.Fatalf("unexpected default host: %s", cfg.NFTPFHost)
	}
	if cfg.UserAgent == "" {
		t.Fatalf("expected default UA, got empty")
	}
	if cfg.HTTPMaxRetries != 3 {
		t.Fatalf("expected default retries=3, got %d", cfg.HTTPMaxRetries)
	}
	if cfg.CacheMaxSize != 1000 || cfg.CacheDefaultTTL != 5*time.Minute {
		t.Fatalf("unexpected cache defaults: size=%d ttl=%v", cfg.CacheMaxSize, cfg.CacheDefaultTTL)
	}
	if cfg.TTLProjects != 5*time.Minute || cfg.TTLProject != 10*time.Minute ||
		cfg.TTLSearch != 3*time.Minute || cfg.TTLTopSales != 2*time.Minute {
		t.Fatalf("unexpected TTL defaults: %+v", cfg)
	}
	if cfg.ListenAddr != ":8000" {
		t.Fatalf("expected default listen addr :8000, got %s", cfg.ListenAddr)
	}
	if cfg.DataDir != "data" || cfg.DigestDefaultHour != 9 {
		t.Fatalf("unexpected digest defaults: dir=%s hour=%d", cfg.DataDir, cfg.DigestDefaultHour)
	}
}

func TestLoadOverrides(t *testing.T) {
	os.Setenv("CACHE_MAX_SIZE", "50")
	os.Setenv("CACHE_DEFAULT_TTL_MIN", "1")
	os.Setenv("NFTPF_API_HOST", "example.test")
	defer func() {
		os.Unsetenv("CACHE_MAX_SIZE")
		os.Unsetenv("CACHE_DEFAULT_TTL_MIN")
		os.Unsetenv("NFTPF_API_HOST")
		ResetForTest()
	}()
	ResetForTest()

	cfg := Load()
	if cfg.CacheMaxSize != 50 {
		t.Fatalf("expected CacheMaxSize=50, got %d", cfg.CacheMaxSize)
	}
	if cfg.CacheDefaultTTL != time.Minute {
		t.Fatalf("expected 1m TTL, got %v", cfg.CacheDefaultTTL)
	}
	if cfg.NFTPFHost != "example.test" {
		t.Fatalf("expected overridden host, got %s", cfg.NFTPFHost)
	}
}

func TestLoadIsCached(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	first := Load()
	os.Setenv("CACHE_MAX_SIZE", "123")
	defer os.Unsetenv("CACHE_MAX_SIZE")

	if second := Load(); second != first {
		t.Fatal("Load should return the cached config")
	}
}
