package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/dealmatch/internal/dto"
	"github.com/octobees/dealmatch/internal/middleware"
	"github.com/octobees/dealmatch/internal/repository"
	"github.com/octobees/dealmatch/internal/service"
)

func TestSuccess(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Success(c, 0, "hello", map[string]string{"foo": "bar"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var payload APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Status != "success" || payload.Message != "hello" {
		t.Fatalf("unexpected response: %+v", payload)
	}
}

func TestError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Error(c, 0, "boom"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected default status 500, got %d", rec.Code)
	}

	var payload APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Status != "error" || payload.Message != "boom" {
		t.Fatalf("unexpected response: %+v", payload)
	}
}

func TestRespondError(t *testing.T) {
	tests := map[string]struct {
		err        error
		wantStatus int
		wantMsg    string
	}{
		"not found":            {err: fmt.Errorf("deal 1: %w", repository.ErrNotFound), wantStatus: http.StatusNotFound, wantMsg: "not found"},
		"business required":    {err: service.ErrBusinessProfileRequired, wantStatus: http.StatusNotFound, wantMsg: "business profile required"},
		"buyer required":       {err: service.ErrBuyerProfileRequired, wantStatus: http.StatusNotFound, wantMsg: "buyer profile required"},
		"validation":           {err: &service.ValidationError{Fields: map[string]string{"email": "invalid"}}, wantStatus: http.StatusBadRequest, wantMsg: "invalid payload"},
		"invalid action":       {err: service.ErrInvalidAction, wantStatus: http.StatusBadRequest},
		"invalid progress":     {err: service.ErrInvalidProgress, wantStatus: http.StatusBadRequest},
		"bad credentials":      {err: service.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized, wantMsg: "invalid credentials"},
		"not participant":      {err: service.ErrNotParticipant, wantStatus: http.StatusForbidden},
		"closed match":         {err: service.ErrMatchClosed, wantStatus: http.StatusConflict},
		"illegal transition":   {err: fmt.Errorf("%w: a -> b", service.ErrInvalidStageTransition), wantStatus: http.StatusConflict},
		"too large":            {err: service.ErrDocumentTooLarge, wantStatus: http.StatusRequestEntityTooLarge},
		"unexpected":           {err: errors.New("connection reset"), wantStatus: http.StatusInternalServerError, wantMsg: "failed to load deal"},
		"schema rejected body": {err: &requestError{message: "invalid payload", fields: []string{"stage: required"}}, wantStatus: http.StatusBadRequest, wantMsg: "invalid payload"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			if err := respondError(c, tc.err, "load deal"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
			var payload APIResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if payload.Status != "error" {
				t.Fatalf("expected error status, got %q", payload.Status)
			}
			if tc.wantMsg != "" && payload.Message != tc.wantMsg {
				t.Fatalf("expected message %q, got %q", tc.wantMsg, payload.Message)
			}
			recorded, _ := c.Get(middleware.ContextKeyError).(error)
			if wantRecorded := tc.wantStatus == http.StatusInternalServerError; (recorded != nil) != wantRecorded {
				t.Fatalf("recorded cause %v, want recorded=%v", recorded, wantRecorded)
			}
			if recorded != nil && !errors.Is(recorded, tc.err) {
				t.Fatalf("recorded cause should wrap %v, got %v", tc.err, recorded)
			}
		})
	}
}

func TestDecodeBody(t *testing.T) {
	tests := map[string]struct {
		body    string
		wantErr bool
	}{
		"valid":            {body: `{"action":"accept"}`},
		"malformed":        {body: `{"action":`, wantErr: true},
		"schema violation": {body: `{"action":"maybe"}`, wantErr: true},
		"missing field":    {body: `{}`, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(tc.body))
			c := e.NewContext(req, httptest.NewRecorder())

			var dst dto.MatchActionRequest
			err := decodeBody(c, dto.MatchActionSchema, &dst)
			if tc.wantErr {
				var reqErr *requestError
				if !errors.As(err, &reqErr) {
					t.Fatalf("expected request error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if dst.Action != "accept" {
				t.Fatalf("expected action to be decoded, got %+v", dst)
			}
		})
	}
}
