package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/octobees/dealmatch/internal/config"
	"github.com/octobees/dealmatch/internal/entity"
)

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/healthz")
	c.Set(ContextKeyRequestID, "rid-123")
	c.Set(ContextKeyUserID, "user-9")

	err := Logging(log)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	entries := logs.FilterField(zap.String("request_id", "rid-123")).All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry with request id, got %d", len(entries))
	}
	if entries[0].ContextMap()["user_id"] != "user-9" {
		t.Fatalf("expected user id in log entry, got %v", entries[0].ContextMap())
	}

	// errors are rendered, logged and propagated
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.Set(ContextKeyRequestID, "rid-456")
	expected := errors.New("boom")
	err = Logging(log)(func(c echo.Context) error {
		return expected
	})(c)
	if !errors.Is(err, expected) {
		t.Fatalf("expected error to bubble up")
	}
	failed := logs.FilterField(zap.String("request_id", "rid-456")).All()
	if len(failed) != 1 || failed[0].Level != zapcore.ErrorLevel {
		t.Fatalf("expected an error level entry for the failed request, got %+v", failed)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 to be rendered, got %d", rec.Code)
	}
}

func TestLoggingMiddlewareReportsRecordedCause(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	tests := map[string]struct {
		status    int
		wantLevel zapcore.Level
	}{
		"server error": {status: http.StatusInternalServerError, wantLevel: zapcore.ErrorLevel},
		"client error": {status: http.StatusBadRequest, wantLevel: zapcore.WarnLevel},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/deals", nil), rec)
			c.Set(ContextKeyRequestID, name)

			cause := errors.New("connection reset by peer")
			err := Logging(log)(func(c echo.Context) error {
				RecordError(c, cause)
				return c.JSON(tt.status, map[string]string{"status": "error"})
			})(c)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			entries := logs.FilterField(zap.String("request_id", name)).All()
			if len(entries) != 1 || entries[0].Level != tt.wantLevel {
				t.Fatalf("expected one %s entry, got %+v", tt.wantLevel, entries)
			}
			if entries[0].ContextMap()["error"] != cause.Error() {
				t.Fatalf("expected the recorded cause in the entry, got %v", entries[0].ContextMap())
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	cfg := config.RateLimitConfig{Requests: 1, Interval: time.Minute}
	mw := RateLimiter(cfg, "ai")

	e := echo.New()
	nextCalls := 0
	next := func(c echo.Context) error {
		nextCalls++
		return c.NoContent(http.StatusOK)
	}

	call := func(userID string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/ai/generate-nda", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if userID != "" {
			c.Set(ContextKeyUserID, userID)
		}
		_ = mw(next)(c)
		return rec.Code
	}

	if code := call("user-1"); code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	if code := call("user-1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected second request rejected, got %d", code)
	}
	if code := call("user-2"); code != http.StatusOK {
		t.Fatalf("buckets are per user, got %d", code)
	}
	if code := call(""); code != http.StatusOK {
		t.Fatalf("anonymous callers get an ip bucket, got %d", code)
	}

	// zero config should behave as passthrough
	mw = RateLimiter(config.RateLimitConfig{}, "ai")
	for i := 0; i < 3; i++ {
		if code := call("user-1"); code != http.StatusOK {
			t.Fatalf("expected passthrough when limiter disabled, got %d", code)
		}
	}
	if nextCalls != 6 {
		t.Fatalf("expected 6 handler calls, got %d", nextCalls)
	}
}

func TestRequireUserType(t *testing.T) {
	e := echo.New()
	mw := RequireUserType(entity.UserTypeSeller)

	t.Run("not onboarded", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		_ = mw(func(c echo.Context) error { return nil })(c)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("other side", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(ContextKeyUserType, "buyer")

		_ = mw(func(c echo.Context) error { return nil })(c)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(ContextKeyUserType, "seller")

		called := false
		if err := mw(func(c echo.Context) error {
			called = true
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !called {
			t.Fatalf("expected handler to run")
		}
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	handler := RequestID()

	t.Run("reuse incoming header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "incoming")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler(func(c echo.Context) error {
			if RequestIDFromContext(c) != "incoming" {
				t.Fatalf("expected request id to be stored")
			}
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if rec.Header().Get("X-Request-ID") != "incoming" {
			t.Fatalf("expected response header to propagate request id")
		}
	})

	t.Run("generate when missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler(func(c echo.Context) error {
			if RequestIDFromContext(c) == "" {
				t.Fatalf("expected generated request id")
			}
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if rec.Header().Get("X-Request-ID") == "" {
			t.Fatalf("expected response header set")
		}
	})
}

func TestRequestIDMiddlewareRejectsJunk(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "has spaces\tand tabs")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := RequestID()(func(c echo.Context) error { return nil })(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Header().Get("X-Request-ID"); got == "" || got == "has spaces\tand tabs" {
		t.Fatalf("expected a generated request id, got %q", got)
	}
}
