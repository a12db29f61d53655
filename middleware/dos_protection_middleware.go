package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/freva-org/freva-nextgen-sub000/config"
)

// rateLimiter holds a per-client token bucket plus its current block state.
type rateLimiter struct {
	limiter   *rate.Limiter
	blockedAt time.Time
	mu        sync.Mutex
}

// DOSProtectionMiddleware rate-limits requests per client IP and blocks
// offenders for a cooldown window before letting them back in. Whitelisted
// paths (the metrics endpoint, streaming NDJSON/Zarr chunk routes) are
// skipped entirely since they're either internal or already bound by their
// own cache TTLs.
func DOSProtectionMiddleware(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	limiters := make(map[string]*rateLimiter)
	var mu sync.RWMutex
	ratePerSecond := rate.Limit(float64(cfg.RateLimit) / cfg.WindowSize.Seconds())

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if isWhitelistedPath(path, cfg.WhitelistedPaths) {
				return next(c)
			}

			clientIP := clientIP(c)
			if !allow(clientIP, cfg, ratePerSecond, limiters, &mu) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}

			return next(c)
		}
	}
}

func allow(clientIP string, cfg config.RateLimitConfig, ratePerSecond rate.Limit, limiters map[string]*rateLimiter, mu *sync.RWMutex) bool {
	mu.RLock()
	l, exists := limiters[clientIP]
	mu.RUnlock()

	if !exists {
		mu.Lock()
		if l, exists = limiters[clientIP]; !exists {
			l = &rateLimiter{limiter: rate.NewLimiter(ratePerSecond, cfg.BurstLimit)}
			limiters[clientIP] = l
		}
		mu.Unlock()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.blockedAt.IsZero() {
		if time.Since(l.blockedAt) < cfg.BlockDuration {
			return false
		}
		l.blockedAt = time.Time{}
	}

	if !l.limiter.Allow() {
		l.blockedAt = time.Now()
		return false
	}

	return true
}

func clientIP(c echo.Context) string {
	if ip := c.Request().Header.Get("X-Real-IP"); ip != "" && net.ParseIP(ip) != nil {
		return ip
	}
	if xff := c.Request().Header.Get("X-Forwarded-For"); xff != "" {
		for _, ip := range strings.Split(xff, ",") {
			ip = strings.TrimSpace(ip)
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}
	if ip, _, err := net.SplitHostPort(c.Request().RemoteAddr); err == nil {
		return ip
	}
	return "unknown"
}

func isWhitelistedPath(path string, whitelisted []string) bool {
	if strings.Contains(path, "/zarr/") || strings.Contains(path, "/data-search/") {
		return true
	}
	for _, p := range whitelisted {
		if path == p || strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
