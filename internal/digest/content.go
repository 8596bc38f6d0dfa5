package digest

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// BuildDigest renders the daily digest message in Telegram Markdown.
// It returns false when no market data is available.
func (s *Scheduler) BuildDigest(ctx context.Context, now time.Time) (string, bool) {
	listing, ok := s.market.Projects(ctx, 0, digestProjectCount)
	if !ok || listing == nil || len(listing.Projects) == 0 {
		return "", false
	}
	projects := listing.Projects

	var b strings.Builder
	fmt.Fprintf(&b, "📰 *Daily NFT Digest*\n")
	fmt.Fprintf(&b, "📅 %s\n\n", now.Format("January 2, 2006"))

	b.WriteString("🏆 *Top Collections by Volume:*\n\n")

	top := projects
	if len(top) > 5 {
		top = top[:5]
	}

	var totalVolume float64
	for i, p := range top {
		totalVolume += p.Volume24h
		fmt.Fprintf(&b, "%d. *%s*\n", i+1, p.Name)
		fmt.Fprintf(&b, "   💰 Floor: %.3f ETH\n", p.FloorPriceETH)
		fmt.Fprintf(&b, "   📊 24h Volume: %.1f ETH\n\n", p.Volume24h)
	}

	b.WriteString("📊 *Market Summary:*\n")
	fmt.Fprintf(&b, "💎 Total Volume (Top %d): %.1f ETH\n", len(top), totalVolume)
	fmt.Fprintf(&b, "📈 Collections Tracked: %d\n", len(projects))

	if len(projects) > 5 {
		b.WriteString("\n🔍 *Notable Mentions:*\n")
		mentions := projects[5:]
		if len(mentions) > 3 {
			mentions = mentions[:3]
		}
		for _, p := range mentions {
			fmt.Fprintf(&b, "• %s: %.3f ETH\n", p.Name, p.FloorPriceETH)
		}
	}

	return b.String(), true
}
