package auth

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const maxTrackedClients = 5000

// LoginRateLimiter throttles the code-exchange route per client address,
// mostly to stop broken redirect loops from hammering the identity provider.
// A fixed-window counter is enough here; the route runs a handful of times
// per user session.
type LoginRateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string]*loginBucket
}

type loginBucket struct {
	windowStart time.Time
	count       int
}

func NewLoginRateLimiter(limit int, window time.Duration) *LoginRateLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}

	return &LoginRateLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*loginBucket),
	}
}

func (l *LoginRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		retryAfter, ok := l.take(clientIP(r), time.Now().UTC())
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter/time.Second)))
			writeError(w, http.StatusTooManyRequests, "too many login attempts")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *LoginRateLimiter) take(ip string, now time.Time) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket := l.buckets[ip]
	if bucket == nil || now.Sub(bucket.windowStart) >= l.window {
		l.evictExpired(now)
		bucket = &loginBucket{windowStart: now}
		l.buckets[ip] = bucket
	}

	if bucket.count >= l.limit {
		retryAfter := bucket.windowStart.Add(l.window).Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return retryAfter, false
	}

	bucket.count++
	return 0, true
}

// evictExpired is called with the mutex held. It keeps the bucket map from
// growing without bound under a churn of distinct client addresses.
func (l *LoginRateLimiter) evictExpired(now time.Time) {
	if len(l.buckets) < maxTrackedClients {
		return
	}
	for ip, bucket := range l.buckets {
		if now.Sub(bucket.windowStart) >= l.window {
			delete(l.buckets, ip)
		}
	}
}

func clientIP(r *http.Request) string {
	forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if forwarded != "" {
		if first, _, found := strings.Cut(forwarded, ","); found || first != "" {
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}

	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
