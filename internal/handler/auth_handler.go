package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/dealmatch/internal/dto"
	"github.com/octobees/dealmatch/internal/service"
)

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /api/auth/register requests.
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := decodeBody(c, dto.RegisterSchema, &req); err != nil {
		return respondError(c, err, "register user")
	}

	resp, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, "register user")
	}

	return Success(c, http.StatusCreated, "registration successful", resp)
}

// Login handles POST /api/auth/login requests.
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := decodeBody(c, dto.LoginSchema, &req); err != nil {
		return respondError(c, err, "authenticate")
	}

	resp, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err, "authenticate")
	}

	return Success(c, http.StatusOK, "login successful", resp)
}

// CurrentUser handles GET /api/auth/user requests.
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	user, err := h.authService.CurrentUser(c.Request().Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err, "load user")
	}
	return Success(c, http.StatusOK, "", user)
}
