package metrics

import (
	"context"
	"time"

	"github.com/floorpulse/floorpulse/internal/cache"
)

// StatsSource provides cache statistics for the collector to export.
type StatsSource interface {
	Stats() cache.Stats
}

// Collector periodically bridges cache store statistics into Prometheus gauges.
type Collector struct {
	source   StatsSource
	interval time.Duration
	stop     chan struct{}
}

// NewCollector creates a new metrics collector.
func NewCollector(source StatsSource, interval time.Duration) *Collector {
	return &Collector{
		source:   source,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start begins the metrics collection loop.
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Collect initial metrics
	c.collect()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the metrics collector.
func (c *Collector) Stop() {
	close(c.stop)
}

func (c *Collector) collect() {
	stats := c.source.Stats()
	CacheEntries.Set(float64(stats.Size))
	CacheHitRate.Set(stats.HitRate)
	CacheHits.Set(float64(stats.Hits))
	CacheMisses.Set(float64(stats.Misses))
	CacheEvictions.Set(float64(stats.Evictions))
	CacheExpiredRemovals.Set(float64(stats.ExpiredRemovals))
}
