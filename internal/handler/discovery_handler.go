package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/dealmatch/internal/service"
)

// DiscoveryHandler serves the scored candidate feeds.
type DiscoveryHandler struct {
	discovery *service.DiscoveryService
}

// NewDiscoveryHandler constructs a DiscoveryHandler.
func NewDiscoveryHandler(discovery *service.DiscoveryService) *DiscoveryHandler {
	return &DiscoveryHandler{discovery: discovery}
}

// Buyers handles GET /api/discover/buyers requests.
func (h *DiscoveryHandler) Buyers(c echo.Context) error {
	buyers, err := h.discovery.DiscoverBuyers(c.Request().Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err, "discover buyers")
	}
	return Success(c, http.StatusOK, "", buyers)
}

// Businesses handles GET /api/discover/businesses requests.
func (h *DiscoveryHandler) Businesses(c echo.Context) error {
	businesses, err := h.discovery.DiscoverBusinesses(c.Request().Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err, "discover businesses")
	}
	return Success(c, http.StatusOK, "", businesses)
}
