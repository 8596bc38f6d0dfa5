// Command digest delivers the daily digest once to every subscribed
// chat (or a single chat with -chat) and exits. Useful for cron-driven
// deployments and for previewing digest output.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/floorpulse/floorpulse/internal/cache"
	"github.com/floorpulse/floorpulse/internal/config"
	"github.com/floorpulse/floorpulse/internal/digest"
	"github.com/floorpulse/floorpulse/internal/logger"
	"github.com/floorpulse/floorpulse/internal/market"
	"github.com/floorpulse/floorpulse/internal/nftpf"
	"github.com/floorpulse/floorpulse/internal/secrets"
	"github.com/floorpulse/floorpulse/internal/storage"
)

func main() {
	chatID := flag.Int64("chat", 0, "deliver only to this chat ID")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (falling back to system env)")
	}

	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	if err := secrets.ValidateRequired(map[string]string{
		"NFTPF_API_KEY":      cfg.NFTPFKey,
		"TELEGRAM_BOT_TOKEN": cfg.TelegramBotToken,
	}); err != nil {
		logger.Error("Startup validation failed", "error", err)
		os.Exit(1)
	}

	settings, err := storage.Open(cfg.DataDir, cfg.DigestDefaultHour)
	if err != nil {
		logger.Error("Failed to open settings storage", "error", err)
		os.Exit(1)
	}

	notifier, err := digest.NewTelegramNotifier(cfg.TelegramBotToken)
	if err != nil {
		logger.Error("Failed to create Telegram notifier", "error", err)
		os.Exit(1)
	}

	store := cache.New(cfg.CacheMaxSize, cfg.CacheDefaultTTL)
	svc := market.NewService(store, nftpf.NewClient(cfg), market.TTLFromConfig(cfg))
	scheduler := digest.NewScheduler(settings, svc, notifier)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *chatID != 0 {
		if err := scheduler.DeliverNow(ctx, *chatID); err != nil {
			logger.Error("Digest delivery failed", "chat_id", *chatID, "error", err)
			os.Exit(1)
		}
		logger.Info("Digest delivered", "chat_id", *chatID)
		return
	}

	users := settings.EnabledDigestUsers()
	if len(users) == 0 {
		logger.Info("No chats subscribed to the digest")
		return
	}

	failures := 0
	for _, user := range users {
		if err := scheduler.DeliverNow(ctx, user.ChatID); err != nil {
			logger.Error("Digest delivery failed", "chat_id", user.ChatID, "error", err)
			failures++
		}
	}

	logger.Info("Digest run complete", "delivered", len(users)-failures, "failed", failures)
	if failures > 0 {
		os.Exit(1)
	}
}
