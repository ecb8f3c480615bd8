package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/JoaquinAb/web-alquiler/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ── Login rate limiter ────────────────────────────────────────────────────────
// Counted in Redis so the limit holds across instances. A Redis outage lets
// the request through: a broken limiter must not lock operators out.

const loginKeyPrefix = "rate_limit:login:"

// LoginRateLimiter allows limit login attempts per IP within window.
// With a nil client it falls back to a per-process counter.
func LoginRateLimiter(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	if rdb == nil {
		return RateLimiter(limit, window)
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := loginKeyPrefix + c.ClientIP()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Warn().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("rate limiter: redis no disponible")
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			ttl, _ := rdb.TTL(ctx, key).Result()
			if ttl > 0 {
				c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())+1))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiados intentos de login. Intente en 1 minuto."))
			return
		}
		c.Next()
	}
}

// ── General API rate limiter ──────────────────────────────────────────────────

// rateEntry tracks request counts per IP for one fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

type limiterLocal struct {
	mu      sync.Mutex
	entries map[string]*rateEntry
}

// RateLimiter returns a per-process fixed-window rate limiter keyed by IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	l := &limiterLocal{entries: make(map[string]*rateEntry)}
	go l.purgar(purgeInterval)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		l.mu.Lock()
		entry, exists := l.entries[ip]
		if !exists {
			entry = &rateEntry{}
			l.entries[ip] = entry
		}
		l.mu.Unlock()

		entry.mu.Lock()
		now := time.Now()
		if now.After(entry.windowEnd) {
			entry.count = 0
			entry.windowEnd = now.Add(window)
		}
		entry.count++
		excedido := entry.count > limit
		retry := entry.windowEnd.Sub(now)
		entry.mu.Unlock()

		if excedido {
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Removes expired entries so IPs that never return do not accumulate.

const purgeInterval = 5 * time.Minute

func (l *limiterLocal) purgar(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		l.mu.Lock()
		purged := 0
		for ip, entry := range l.entries {
			entry.mu.Lock()
			if now.After(entry.windowEnd) {
				delete(l.entries, ip)
				purged++
			}
			entry.mu.Unlock()
		}
		remaining := len(l.entries)
		l.mu.Unlock()

		if purged > 0 {
			log.Debug().Int("purged", purged).Int("remaining", remaining).Msg("rate limiter purgado")
		}
	}
}
