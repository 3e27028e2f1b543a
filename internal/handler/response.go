package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/dealmatch/internal/middleware"
	"github.com/octobees/dealmatch/internal/repository"
	"github.com/octobees/dealmatch/internal/schema"
	"github.com/octobees/dealmatch/internal/service"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// APIResponse describes the standard envelope returned by the API.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Success sends a successful response using the shared envelope format.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	payload := APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	}
	return c.JSON(status, payload)
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, message string) error {
	return ErrorWithData(c, status, message, nil)
}

// ErrorWithData sends an error response carrying details such as field violations.
func ErrorWithData(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	payload := APIResponse{
		Status:  "error",
		Message: message,
		Data:    data,
	}
	return c.JSON(status, payload)
}

// requestError is a client error detected while decoding a request.
type requestError struct {
	message string
	fields  any
}

func (e *requestError) Error() string { return e.message }

// decodeBody validates the JSON body against s and unmarshals it into dst.
func decodeBody(c echo.Context, s *schema.Schema, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxJSONBody+1))
	if err != nil {
		return &requestError{message: "unable to read request body"}
	}
	if len(raw) > maxJSONBody {
		return &requestError{message: "request body too large"}
	}
	if s != nil {
		if err := s.Validate(raw); err != nil {
			var vErr *schema.ValidationError
			if errors.As(err, &vErr) {
				return &requestError{message: "invalid payload", fields: vErr.Fields}
			}
			return &requestError{message: "invalid payload"}
		}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &requestError{message: "invalid payload"}
	}
	return nil
}

// respondError maps service and repository errors onto the response envelope.
// action completes the generic "failed to ..." message for unexpected errors.
func respondError(c echo.Context, err error, action string) error {
	var reqErr *requestError
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &reqErr):
		return ErrorWithData(c, http.StatusBadRequest, reqErr.message, reqErr.fields)
	case errors.As(err, &vErr):
		return ErrorWithData(c, http.StatusBadRequest, "invalid payload", vErr.Fields)
	case errors.Is(err, service.ErrBusinessProfileRequired):
		return Error(c, http.StatusNotFound, "business profile required")
	case errors.Is(err, service.ErrBuyerProfileRequired):
		return Error(c, http.StatusNotFound, "buyer profile required")
	case errors.Is(err, repository.ErrNotFound):
		return Error(c, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrInvalidAction),
		errors.Is(err, service.ErrInvalidUserType),
		errors.Is(err, service.ErrInvalidStage),
		errors.Is(err, service.ErrInvalidProgress):
		return Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return Error(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrNotParticipant):
		return Error(c, http.StatusForbidden, "not a participant")
	case errors.Is(err, service.ErrMatchClosed), errors.Is(err, service.ErrInvalidStageTransition):
		return Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrDocumentTooLarge):
		return Error(c, http.StatusRequestEntityTooLarge, "document too large")
	default:
		middleware.RecordError(c, fmt.Errorf("%s: %w", action, err))
		return Error(c, http.StatusInternalServerError, "failed to "+action)
	}
}

func currentUserID(c echo.Context) string {
	return middleware.UserIDFromContext(c)
}
