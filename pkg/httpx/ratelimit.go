package httpx

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/tenancy/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimit is a token bucket of Requests per Window with Burst headroom.
type RateLimit struct {
	Requests int
	Window   time.Duration
	Burst    int
}

// KeyExtractor groups requests into buckets. An empty key bypasses the limiter.
type KeyExtractor func(*http.Request) string

// IPKey uses the first X-Forwarded-For hop, then X-Real-IP, then RemoteAddr.
func IPKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// UserKey uses the authenticated user id, falling back to the client IP.
func UserKey(r *http.Request) string {
	if c, ok := ClaimsFromContext(r.Context()); ok && c.Subject != "" {
		return "user:" + c.Subject
	}
	return "ip:" + IPKey(r)
}

type limiterSet struct {
	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	rate        rate.Limit
	burst       int
	lastCleanup time.Time
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Buckets that have refilled completely are idle and can go.
	if time.Since(s.lastCleanup) > 5*time.Minute {
		for k, l := range s.limiters {
			if l.Tokens() >= float64(s.burst) {
				delete(s.limiters, k)
			}
		}
		s.lastCleanup = time.Now()
	}

	l, ok := s.limiters[key]
	if !ok {
		l = rate.NewLimiter(s.rate, s.burst)
		s.limiters[key] = l
	}
	return l
}

// RateLimiter rejects requests over cfg with 429 and a Retry-After header.
func RateLimiter(cfg RateLimit, key KeyExtractor) Middleware {
	set := &limiterSet{
		limiters:    make(map[string]*rate.Limiter),
		rate:        rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		burst:       cfg.Burst,
		lastCleanup: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			limiter := set.get(k)
			if limiter.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			res := limiter.Reserve()
			retryAfter := max(int(res.Delay().Seconds()), 1)
			res.Cancel()

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", k,
				"path", r.URL.Path,
				"retry_after", retryAfter,
			)

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests")
		})
	}
}
