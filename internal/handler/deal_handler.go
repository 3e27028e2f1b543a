package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/dealmatch/internal/dto"
	"github.com/octobees/dealmatch/internal/service"
)

// DealHandler exposes the deal pipeline to its two participants.
type DealHandler struct {
	deals *service.DealService
}

// NewDealHandler constructs a DealHandler.
func NewDealHandler(deals *service.DealService) *DealHandler {
	return &DealHandler{deals: deals}
}

// List handles GET /api/deals requests.
func (h *DealHandler) List(c echo.Context) error {
	deals, err := h.deals.List(c.Request().Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err, "list deals")
	}
	return Success(c, http.StatusOK, "", deals)
}

// Get handles GET /api/deals/:id requests.
func (h *DealHandler) Get(c echo.Context) error {
	deal, err := h.deals.Get(c.Request().Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		return respondError(c, err, "load deal")
	}
	return Success(c, http.StatusOK, "", deal)
}

// UpdateStage handles PUT /api/deals/:id/stage requests.
func (h *DealHandler) UpdateStage(c echo.Context) error {
	var req dto.UpdateStageRequest
	if err := decodeBody(c, dto.UpdateStageSchema, &req); err != nil {
		return respondError(c, err, "update deal stage")
	}

	deal, err := h.deals.UpdateStage(c.Request().Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		return respondError(c, err, "update deal stage")
	}
	return Success(c, http.StatusOK, "deal stage updated", deal)
}

// Update handles PATCH /api/deals/:id requests.
func (h *DealHandler) Update(c echo.Context) error {
	var req dto.UpdateDealRequest
	if err := decodeBody(c, dto.UpdateDealSchema, &req); err != nil {
		return respondError(c, err, "update deal")
	}

	deal, err := h.deals.UpdateDetails(c.Request().Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		return respondError(c, err, "update deal")
	}
	return Success(c, http.StatusOK, "deal updated", deal)
}

// Timeline handles GET /api/deals/:id/timeline requests.
func (h *DealHandler) Timeline(c echo.Context) error {
	timeline, err := h.deals.Timeline(c.Request().Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		return respondError(c, err, "load deal timeline")
	}
	return Success(c, http.StatusOK, "", timeline)
}
