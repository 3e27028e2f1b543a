package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/dealmatch/internal/dto"
	"github.com/octobees/dealmatch/internal/service"
)

// MatchHandler exposes the two-sided match workflow.
type MatchHandler struct {
	matches *service.MatchService
}

// NewMatchHandler constructs a MatchHandler.
func NewMatchHandler(matches *service.MatchService) *MatchHandler {
	return &MatchHandler{matches: matches}
}

// Create handles POST /api/matches/create requests.
func (h *MatchHandler) Create(c echo.Context) error {
	var req dto.CreateMatchRequest
	if err := decodeBody(c, dto.CreateMatchSchema, &req); err != nil {
		return respondError(c, err, "create match")
	}

	result, err := h.matches.Create(c.Request().Context(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err, "create match")
	}

	message := "match recorded"
	if result.Deal != nil {
		message = "mutual match, deal created"
	}
	return Success(c, http.StatusOK, message, result)
}

// List handles GET /api/matches requests.
func (h *MatchHandler) List(c echo.Context) error {
	matches, err := h.matches.List(c.Request().Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err, "list matches")
	}
	return Success(c, http.StatusOK, "", matches)
}

// Act handles PUT /api/matches/:id requests.
func (h *MatchHandler) Act(c echo.Context) error {
	var req dto.MatchActionRequest
	if err := decodeBody(c, dto.MatchActionSchema, &req); err != nil {
		return respondError(c, err, "update match")
	}

	result, err := h.matches.Act(c.Request().Context(), currentUserID(c), c.Param("id"), req.Action)
	if err != nil {
		return respondError(c, err, "update match")
	}

	message := "match updated"
	if result.Deal != nil {
		message = "mutual match, deal created"
	}
	return Success(c, http.StatusOK, message, result)
}
