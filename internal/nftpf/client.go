package nftpf

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/floorpulse/floorpulse/internal/circuitbreaker"
	"github.com/floorpulse/floorpulse/internal/config"
	"github.com/floorpulse/floorpulse/internal/httpx"
	"github.com/floorpulse/floorpulse/internal/metrics"
)

// Client talks to the NFT Price Floor API hosted on RapidAPI. The API is
// metered, so every request goes through a client-side rate limiter, the
// shared retry wrapper, and a circuit breaker.
type Client struct {
	http      *http.Client
	baseURL   string
	host      string
	key       string
	userAgent string
	limiter   *rate.Limiter
	breaker   *circuitbreaker.CircuitBreaker
}

// NewClient builds a Client from the process configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		http:      &http.Client{Timeout: cfg.HTTPTimeout},
		baseURL:   "https://" + cfg.NFTPFHost,
		host:      cfg.NFTPFHost,
		key:       cfg.NFTPFKey,
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(rate.Limit(cfg.UpstreamRPS), cfg.UpstreamBurstSize),
		breaker: circuitbreaker.New(circuitbreaker.Config{
			Name:             "nftpf",
			FailureThreshold: 5,
			Timeout:          30 * time.Second,
		}),
	}
}

// Projects fetches a page of the projects listing.
func (c *Client) Projects(ctx context.Context, offset, limit int) (*ProjectsResponse, error) {
	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))

	var out ProjectsResponse
	if err := c.get(ctx, "/projects-v2", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProjectBySlug fetches a single project by its slug.
func (c *Client) ProjectBySlug(ctx context.Context, slug string) (*Project, error) {
	var out Project
	if err := c.get(ctx, "/projects/"+url.PathEscape(slug), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TopSales fetches the recent top sales across all collections.
func (c *Client) TopSales(ctx context.Context) ([]Sale, error) {
	var out []Sale
	if err := c.get(ctx, "/projects/top-sales", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// get performs a rate-limited, retried GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	return c.breaker.Call(func() error {
		build := func() (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("x-rapidapi-key", c.key)
			req.Header.Set("x-rapidapi-host", c.host)
			req.Header.Set("User-Agent", c.userAgent)
			return req, nil
		}
		pre := func(ctx context.Context, attempt int) error {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			metrics.UpstreamRateLimitWaits.Inc()
			return nil
		}

		resp, err := httpx.DoWithRetryFactory(c.http, build, pre)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &StatusError{Code: resp.StatusCode, URL: u}
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &DecodeError{URL: u, Err: err}
		}
		return nil
	})
}
