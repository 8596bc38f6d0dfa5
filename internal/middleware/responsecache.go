package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/floorpulse/floorpulse/internal/respcache"
)

// cacheRecorder buffers a response so it can be stored after serving.
type cacheRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (cr *cacheRecorder) WriteHeader(status int) {
	cr.status = status
	cr.ResponseWriter.WriteHeader(status)
}

func (cr *cacheRecorder) Write(b []byte) (int, error) {
	if cr.status == 0 {
		cr.status = http.StatusOK
	}
	cr.body.Write(b)
	return cr.ResponseWriter.Write(b)
}

// ResponseCache serves repeated GET requests from a short-TTL byte
// cache keyed by request path and query. Only 200 responses are
// stored. Bodies are cached uncompressed and the hit path leaves
// Content-Length unset, so the middleware composes inside Compress:
// the outer writer re-encodes cached bodies per request.
func ResponseCache(c respcache.Cache, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key := r.URL.Path
			if r.URL.RawQuery != "" {
				key += "?" + r.URL.RawQuery
			}

			if body, found := c.Get(key); found {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(body)
				return
			}

			rec := &cacheRecorder{ResponseWriter: w}
			w.Header().Set("X-Cache", "MISS")
			next.ServeHTTP(rec, r)

			if rec.status == http.StatusOK && rec.body.Len() > 0 {
				c.Set(key, rec.body.Bytes(), ttl)
			}
		})
	}
}
