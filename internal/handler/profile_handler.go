package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/dealmatch/internal/dto"
	"github.com/octobees/dealmatch/internal/service"
)

// ProfileHandler exposes onboarding and the seller/buyer profile endpoints.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// CompleteOnboarding handles POST /api/onboarding/complete requests.
func (h *ProfileHandler) CompleteOnboarding(c echo.Context) error {
	var req dto.OnboardingRequest
	if err := decodeBody(c, dto.OnboardingSchema, &req); err != nil {
		return respondError(c, err, "complete onboarding")
	}

	result, err := h.profiles.CompleteOnboarding(c.Request().Context(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err, "complete onboarding")
	}
	return Success(c, http.StatusOK, "onboarding completed", result)
}

// GetBusiness handles GET /api/business/profile requests.
func (h *ProfileHandler) GetBusiness(c echo.Context) error {
	business, err := h.profiles.GetBusinessProfile(c.Request().Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err, "load business profile")
	}
	return Success(c, http.StatusOK, "", business)
}

// UpdateBusiness handles PUT /api/business/profile requests.
func (h *ProfileHandler) UpdateBusiness(c echo.Context) error {
	var req dto.BusinessInput
	if err := decodeBody(c, dto.BusinessSchema, &req); err != nil {
		return respondError(c, err, "update business profile")
	}

	business, err := h.profiles.UpdateBusinessProfile(c.Request().Context(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err, "update business profile")
	}
	return Success(c, http.StatusOK, "business profile updated", business)
}

// GetBuyer handles GET /api/buyer/profile requests.
func (h *ProfileHandler) GetBuyer(c echo.Context) error {
	profile, err := h.profiles.GetBuyerProfile(c.Request().Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err, "load buyer profile")
	}
	return Success(c, http.StatusOK, "", profile)
}

// UpdateBuyer handles PUT /api/buyer/profile requests.
func (h *ProfileHandler) UpdateBuyer(c echo.Context) error {
	var req dto.BuyerInput
	if err := decodeBody(c, dto.BuyerSchema, &req); err != nil {
		return respondError(c, err, "update buyer profile")
	}

	profile, err := h.profiles.UpdateBuyerProfile(c.Request().Context(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err, "update buyer profile")
	}
	return Success(c, http.StatusOK, "buyer profile updated", profile)
}
