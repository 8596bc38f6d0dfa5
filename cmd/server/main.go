package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/floorpulse/floorpulse/internal/api"
	"github.com/floorpulse/floorpulse/internal/cache"
	"github.com/floorpulse/floorpulse/internal/config"
	"github.com/floorpulse/floorpulse/internal/digest"
	"github.com/floorpulse/floorpulse/internal/errorreporting"
	"github.com/floorpulse/floorpulse/internal/logger"
	"github.com/floorpulse/floorpulse/internal/market"
	"github.com/floorpulse/floorpulse/internal/metrics"
	"github.com/floorpulse/floorpulse/internal/nftpf"
	"github.com/floorpulse/floorpulse/internal/respcache"
	"github.com/floorpulse/floorpulse/internal/secrets"
	"github.com/floorpulse/floorpulse/internal/storage"
	"github.com/floorpulse/floorpulse/internal/tracing"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (falling back to system env)")
	}

	cfg := config.Load()
	logger.Init(cfg.LogLevel)
	logger.Info("Initializing server", "log_level", cfg.LogLevel, "listen_addr", cfg.ListenAddr)

	if err := secrets.ValidateRequired(map[string]string{
		"NFTPF_API_KEY": cfg.NFTPFKey,
	}); err != nil {
		logger.Error("Startup validation failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Upstream credentials loaded", "api_key", secrets.Mask(cfg.NFTPFKey))

	if err := errorreporting.Init(cfg); err != nil {
		logger.Warn("Failed to initialize error reporting", "error", err)
	} else if errorreporting.IsSentryEnabled() {
		logger.Info("Error reporting initialized", "environment", cfg.SentryEnvironment)
		defer errorreporting.Flush(2 * time.Second)
	}

	shutdownTracing, err := tracing.Init("floorpulse-server", cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracing", "error", err)
	} else if cfg.OTELEnabled {
		logger.Info("Tracing initialized", "endpoint", cfg.OTELEndpoint, "sample_rate", cfg.OTELSampleRate)
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				logger.Error("Failed to shutdown tracer", "error", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := cache.New(cfg.CacheMaxSize, cfg.CacheDefaultTTL, cache.WithSweepInterval(cfg.CacheSweepInterval))
	store.StartSweeper(ctx)
	defer store.Shutdown()

	client := nftpf.NewClient(cfg)
	svc := market.NewService(store, client, market.TTLFromConfig(cfg))
	go svc.WarmCache(ctx)

	collector := metrics.NewCollector(svc, 15*time.Second)
	go collector.Start(ctx)
	defer collector.Stop()

	respCache, err := respcache.NewLRU(cfg.ResponseCacheSizeMB, 10_000, cfg.ResponseCacheTTL)
	if err != nil {
		logger.Error("Failed to create response cache", "error", err)
		os.Exit(1)
	}
	defer respCache.Close()

	router, limiter := api.NewRouter(svc, respCache)
	if limiter != nil {
		defer limiter.Stop()
	}

	if cfg.TelegramBotToken != "" {
		settings, err := storage.Open(cfg.DataDir, cfg.DigestDefaultHour)
		if err != nil {
			logger.Error("Failed to open settings storage", "error", err)
			os.Exit(1)
		}

		notifier, err := digest.NewTelegramNotifier(cfg.TelegramBotToken)
		if err != nil {
			logger.Warn("Digest delivery disabled", "error", err)
		} else {
			scheduler := digest.NewScheduler(settings, svc, notifier)
			scheduler.Start(ctx)
			defer scheduler.Stop()
		}
	} else {
		logger.Info("TELEGRAM_BOT_TOKEN not set, digest delivery disabled")
	}

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
