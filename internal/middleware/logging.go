package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/dealmatch/internal/metrics"
)

// Logging writes one structured line per HTTP request and records request metrics.
func Logging(log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}
			logged := err
			if logged == nil {
				logged, _ = c.Get(ContextKeyError).(error)
			}

			req := c.Request()
			status := c.Response().Status
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.HTTPRequests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
			metrics.HTTPDuration.WithLabelValues(req.Method, route).Observe(latency.Seconds())

			fields := []zap.Field{
				zap.String("request_id", RequestIDFromContext(c)),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", status),
				zap.Duration("latency", latency),
			}
			if uid := UserIDFromContext(c); uid != "" {
				fields = append(fields, zap.String("user_id", uid))
			}
			switch {
			case status >= 500:
				log.Error("request", append(fields, zap.Error(logged))...)
			case logged != nil:
				log.Warn("request", append(fields, zap.Error(logged))...)
			default:
				log.Info("request", fields...)
			}

			return err
		}
	}
}
