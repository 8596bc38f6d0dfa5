package config

import (
	"os"
	"strings"
	"time"

	"github.com/floorpulse/floorpulse/internal/utils"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	// Upstream market-data API (NFT Price Floor via RapidAPI)
	NFTPFHost    string
	NFTPFKey     string
	UserAgent    string
	HTTPMaxRetries int
	HTTPRetryBase  time.Duration
	HTTPTimeout    time.Duration
	LogHTTPRetries bool
	// Upstream pacing: the API is metered, keep well under the plan limit
	UpstreamRPS       float64
	UpstreamBurstSize int
	// Cache store
	CacheMaxSize       int
	CacheDefaultTTL    time.Duration
	CacheSweepInterval time.Duration
	// Per-operation cache TTLs
	TTLProjects time.Duration
	TTLProject  time.Duration
	TTLSearch   time.Duration
	TTLTopSales time.Duration
	TTLRankings time.Duration
	// HTTP API
	ListenAddr        string
	AdminAPIToken     string
	EnableRateLimit   bool
	RateLimitGlobal      float64
	RateLimitGlobalBurst int
	RateLimitPerIP       float64
	RateLimitPerIPBurst  int
	ResponseCacheTTL    time.Duration
	ResponseCacheSizeMB int64
	// Digest delivery
	TelegramBotToken  string
	DigestDefaultHour int
	DataDir           string
	// Observability
	LogLevel          string
	OTELEnabled       bool
	OTELEndpoint      string
	OTELSampleRate    float64
	SentryDSN         string
	SentryEnvironment string
	SentryRelease     string
	SentrySampleRate  float64
}

var cached *Config

// Load reads env vars once and caches them.
func Load() *Config {
	if cached != nil {
		return cached
	}
	host := strings.TrimSpace(os.Getenv("NFTPF_API_HOST"))
	if host == "" {
		host = "nftpf-api-v0.p.rapidapi.com"
	}
	ua := strings.TrimSpace(os.Getenv("FLOORPULSE_USER_AGENT"))
	if ua == "" {
		ua = "floorpulse/0.1"
	}
	cached = &Config{
		NFTPFHost:      host,
		NFTPFKey:       strings.TrimSpace(os.Getenv("NFTPF_API_KEY")),
		UserAgent:      ua,
		HTTPMaxRetries: utils.GetEnvAsInt("HTTP_MAX_RETRIES", 3),
		HTTPRetryBase:  time.Duration(utils.GetEnvAsInt("HTTP_RETRY_BASE_MS", 300)) * time.Millisecond,
		HTTPTimeout:    time.Duration(utils.GetEnvAsInt("HTTP_TIMEOUT_MS", 15000)) * time.Millisecond,
		LogHTTPRetries: utils.GetEnvAsBool("LOG_HTTP_RETRIES", false),
		// RapidAPI free tier allows ~1000 requests/day, keep pacing modest
		UpstreamRPS:       utils.GetEnvAsFloat("UPSTREAM_RPS", 2.0),
		UpstreamBurstSize: utils.GetEnvAsInt("UPSTREAM_BURST_SIZE", 2),
		CacheMaxSize:       utils.GetEnvAsInt("CACHE_MAX_SIZE", 1000),
		CacheDefaultTTL:    utils.GetEnvAsMinutes("CACHE_DEFAULT_TTL_MIN", 5),
		CacheSweepInterval: utils.GetEnvAsMinutes("CACHE_SWEEP_INTERVAL_MIN", 5),
		TTLProjects: utils.GetEnvAsMinutes("CACHE_TTL_PROJECTS_MIN", 5),
		TTLProject:  utils.GetEnvAsMinutes("CACHE_TTL_PROJECT_MIN", 10),
		TTLSearch:   utils.GetEnvAsMinutes("CACHE_TTL_SEARCH_MIN", 3),
		TTLTopSales: utils.GetEnvAsMinutes("CACHE_TTL_TOP_SALES_MIN", 2),
		TTLRankings: utils.GetEnvAsMinutes("CACHE_TTL_RANKINGS_MIN", 5),
		ListenAddr:    strings.TrimSpace(os.Getenv("LISTEN_ADDR")),
		AdminAPIToken: strings.TrimSpace(os.Getenv("ADMIN_API_TOKEN")),
		EnableRateLimit:      utils.GetEnvAsBool("ENABLE_RATE_LIMIT", true),
		RateLimitGlobal:      utils.GetEnvAsFloat("RATE_LIMIT_GLOBAL", 100.0),
		RateLimitGlobalBurst: utils.GetEnvAsInt("RATE_LIMIT_GLOBAL_BURST", 200),
		RateLimitPerIP:       utils.GetEnvAsFloat("RATE_LIMIT_PER_IP", 10.0),
		RateLimitPerIPBurst:  utils.GetEnvAsInt("RATE_LIMIT_PER_IP_BURST", 20),
		ResponseCacheTTL:    time.Duration(utils.GetEnvAsInt("RESPONSE_CACHE_TTL_SEC", 30)) * time.Second,
		ResponseCacheSizeMB: int64(utils.GetEnvAsInt("RESPONSE_CACHE_SIZE_MB", 16)),
		TelegramBotToken:  strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		DigestDefaultHour: utils.GetEnvAsInt("DIGEST_DEFAULT_HOUR_UTC", 9),
		DataDir:           strings.TrimSpace(os.Getenv("DATA_DIR")),
		LogLevel:          strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))),
		OTELEnabled:       utils.GetEnvAsBool("OTEL_ENABLED", false),
		OTELEndpoint:      strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OTELSampleRate:    utils.GetEnvAsFloat("OTEL_TRACE_SAMPLE_RATE", 0.1),
		SentryDSN:         strings.TrimSpace(os.Getenv("SENTRY_DSN")),
		SentryEnvironment: strings.TrimSpace(os.Getenv("SENTRY_ENVIRONMENT")),
		SentryRelease:     strings.TrimSpace(os.Getenv("SENTRY_RELEASE")),
		SentrySampleRate:  utils.GetEnvAsFloat("SENTRY_SAMPLE_RATE", 1.0),
	}
	if cached.ListenAddr == "" {
		cached.ListenAddr = ":8000"
	}
	if cached.DataDir == "" {
		cached.DataDir = "data"
	}
	if cached.LogLevel == "" {
		cached.LogLevel = "info"
	}
	if cached.SentryEnvironment == "" {
		if env := os.Getenv("ENV"); env != "" {
			cached.SentryEnvironment = env
		} else {
			cached.SentryEnvironment = "development"
		}
	}
	return cached
}

// ResetForTest clears cached config; for use in tests only.
func ResetForTest() { cached = nil }
