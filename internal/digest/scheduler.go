// Package digest delivers daily market summaries to subscribed chats.
// A minute-resolution loop checks each subscriber's delivery hour or
// schedule expression and sends at most one digest per chat per day.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/floorpulse/floorpulse/internal/logger"
	"github.com/floorpulse/floorpulse/internal/metrics"
	"github.com/floorpulse/floorpulse/internal/nftpf"
	"github.com/floorpulse/floorpulse/internal/storage"
)

const digestProjectCount = 10

// SettingsSource lists the chats subscribed to the digest.
type SettingsSource interface {
	EnabledDigestUsers() []storage.DigestUser
}

// MarketSource provides the project listing the digest is built from.
type MarketSource interface {
	Projects(ctx context.Context, offset, limit int) (*nftpf.ProjectsResponse, bool)
}

// Notifier sends a digest message to a chat.
type Notifier interface {
	Send(chatID int64, text string) error
}

// Scheduler runs the digest delivery loop.
type Scheduler struct {
	settings SettingsSource
	market   MarketSource
	notifier Notifier
	log      *slog.Logger

	mu        sync.Mutex
	delivered map[string]struct{}
	nextRuns  map[int64]time.Time

	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
	now      func() time.Time
}

// NewScheduler creates a digest scheduler ticking once per minute.
func NewScheduler(settings SettingsSource, market MarketSource, notifier Notifier) *Scheduler {
	return &Scheduler{
		settings:  settings,
		market:    market,
		notifier:  notifier,
		log:       logger.WithComponent("digest"),
		delivered: make(map[string]struct{}),
		nextRuns:  make(map[int64]time.Time),
		interval:  time.Minute,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		now:       time.Now,
	}
}

// Start launches the delivery loop. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		defer close(s.done)
		s.log.Info("Digest scheduler started", "interval", s.interval)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop halts the delivery loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
	s.log.Info("Digest scheduler stopped")
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.now().UTC()

	// New day, everyone becomes deliverable again.
	if now.Hour() == 0 && now.Minute() == 0 {
		s.mu.Lock()
		s.delivered = make(map[string]struct{})
		s.mu.Unlock()
		s.log.Info("Reset daily digest delivery tracking")
	}

	for _, user := range s.settings.EnabledDigestUsers() {
		if s.due(user, now) {
			s.deliver(ctx, user.ChatID, now)
		}
	}
}

// due decides whether a chat should receive a digest at the given
// minute. Chats with a schedule expression follow it; everyone else
// gets the digest at their configured hour, once per day.
func (s *Scheduler) due(user storage.DigestUser, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expr := user.Settings.Schedule; expr != "" {
		next, ok := s.nextRuns[user.ChatID]
		if !ok {
			next, err := NextRun(expr, now)
			if err != nil {
				s.log.Warn("Invalid digest schedule", "chat_id", user.ChatID, "schedule", expr, "error", err)
				return false
			}
			s.nextRuns[user.ChatID] = next
			return false
		}
		if now.Before(next) {
			return false
		}
		if next, err := NextRun(expr, now); err == nil {
			s.nextRuns[user.ChatID] = next
		}
		return true
	}

	if now.Minute() != 0 || now.Hour() != user.Settings.Hour {
		return false
	}

	key := deliveryKey(user.ChatID, now)
	if _, done := s.delivered[key]; done {
		return false
	}
	s.delivered[key] = struct{}{}
	return true
}

func deliveryKey(chatID int64, now time.Time) string {
	return fmt.Sprintf("%d_%s", chatID, now.Format("2006-01-02"))
}

func (s *Scheduler) deliver(ctx context.Context, chatID int64, now time.Time) {
	text, ok := s.BuildDigest(ctx, now)
	if !ok {
		s.log.Warn("Failed to build digest content", "chat_id", chatID)
		metrics.DigestDeliveries.WithLabelValues("failed").Inc()
		return
	}

	if err := s.notifier.Send(chatID, text); err != nil {
		s.log.Error("Failed to deliver digest", "chat_id", chatID, "error", err)
		metrics.DigestDeliveries.WithLabelValues("failed").Inc()
		return
	}

	s.log.Info("Daily digest delivered", "chat_id", chatID)
	metrics.DigestDeliveries.WithLabelValues("success").Inc()
}

// DeliverNow builds and sends a digest to a single chat immediately,
// outside the schedule.
func (s *Scheduler) DeliverNow(ctx context.Context, chatID int64) error {
	text, ok := s.BuildDigest(ctx, s.now().UTC())
	if !ok {
		metrics.DigestDeliveries.WithLabelValues("failed").Inc()
		return fmt.Errorf("digest content unavailable")
	}

	if err := s.notifier.Send(chatID, text); err != nil {
		metrics.DigestDeliveries.WithLabelValues("failed").Inc()
		return fmt.Errorf("send digest to chat %d: %w", chatID, err)
	}

	metrics.DigestDeliveries.WithLabelValues("success").Inc()
	return nil
}
