package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Safwa9amar/safwanPos-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// windowEntry tracks request counts per client IP within a fixed window.
type windowEntry struct {
	count     int
	windowEnd time.Time
}

// RateLimiter is a fixed-window per-IP limiter. One instance per protected group.
type RateLimiter struct {
	name    string
	limit   int
	window  time.Duration
	mu      sync.Mutex
	entries map[string]*windowEntry
}

func NewRateLimiter(name string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{name: name, limit: limit, window: window, entries: make(map[string]*windowEntry)}
}

// allow records one hit for ip and reports whether it is within the limit.
func (l *RateLimiter) allow(ip string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[ip]
	if !ok || now.After(e.windowEnd) {
		e = &windowEntry{windowEnd: now.Add(l.window)}
		l.entries[ip] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

// Middleware rejects requests over the limit with 429.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP(), time.Now())
		if !ok {
			retry := int(time.Until(windowEnd).Seconds()) + 1
			c.Header("Retry-After", fmt.Sprint(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests, try again shortly"))
			return
		}
		c.Next()
	}
}

// StartPurge removes expired entries every interval until ctx is cancelled,
// so IPs that never return do not accumulate.
func (l *RateLimiter) StartPurge(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if purged := l.purge(now); purged > 0 {
					log.Debug().Str("limiter", l.name).Int("purged", purged).Msg("rate limiter entries purged")
				}
			}
		}
	}()
}

func (l *RateLimiter) purge(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	purged := 0
	for ip, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, ip)
			purged++
		}
	}
	return purged
}
