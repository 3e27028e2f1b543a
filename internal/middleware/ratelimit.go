package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/octobees/dealmatch/internal/config"
)

// idleLimiterTTL is how long an unused per-client bucket is kept.
const idleLimiterTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token bucket per authenticated user (or client IP) to the routes it wraps.
func RateLimiter(cfg config.RateLimitConfig, scope string) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}

	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}

	var mu sync.Mutex
	clients := make(map[string]*clientLimiter)
	lastSweep := time.Now()

	allow := func(key string) bool {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		if now.Sub(lastSweep) > idleLimiterTTL {
			for k, cl := range clients {
				if now.Sub(cl.lastSeen) > idleLimiterTTL {
					delete(clients, k)
				}
			}
			lastSweep = now
		}

		cl, ok := clients[key]
		if !ok {
			cl = &clientLimiter{limiter: rate.NewLimiter(rate.Every(perRequest), cfg.Requests)}
			clients[key] = cl
		}
		cl.lastSeen = now
		return cl.limiter.Allow()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := UserIDFromContext(c)
			if key == "" {
				key = "ip:" + c.RealIP()
			}
			if !allow(key) {
				return c.JSON(http.StatusTooManyRequests, map[string]any{"status": "error", "message": scope + " rate limit exceeded"})
			}
			return next(c)
		}
	}
}
