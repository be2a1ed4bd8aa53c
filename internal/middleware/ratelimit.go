package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"crowdfund/internal/infra"
)

// Limiter decides whether one more request for key fits the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type bucket struct {
	count int
	until time.Time
}

// MemoryLimiter is a per-process fixed window limiter.
type MemoryLimiter struct {
	mu      sync.Mutex
	limit   int
	per     time.Duration
	now     func() time.Time
	buckets map[string]*bucket
}

func NewMemoryLimiter(limit int, per time.Duration) *MemoryLimiter {
	return &MemoryLimiter{limit: limit, per: per, now: time.Now, buckets: make(map[string]*bucket)}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	b, ok := m.buckets[key]
	if !ok || now.After(b.until) {
		b = &bucket{until: now.Add(m.per)}
		m.buckets[key] = b
	}
	if b.count >= m.limit {
		return false, nil
	}
	b.count++
	return true, nil
}

// RedisLimiter shares a fixed window across API replicas.
type RedisLimiter struct {
	client redis.Cmdable
	limit  int
	per    time.Duration
	prefix string
}

func NewRedisLimiter(client redis.Cmdable, limit int, per time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, per: per, prefix: "crowdfund:ratelimit:"}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key
	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("ratelimit: incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, k, l.per).Err(); err != nil {
			return false, fmt.Errorf("ratelimit: expire: %w", err)
		}
	}
	return n <= int64(l.limit), nil
}

// RateLimit keeps a per-process window of limit requests per client IP.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	return RateLimitWith(NewMemoryLimiter(limit, per), nil)
}

// RateLimitWith enforces l per client IP. Limiter errors let the request through.
func RateLimitWith(l Limiter, logger *infra.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIPForRateLimit(r)
			ok, err := l.Allow(r.Context(), ip)
			if err != nil {
				logger.Warn().Err(err).Str("ip", ip).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"Too many requests"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}
