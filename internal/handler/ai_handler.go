package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/dealmatch/internal/dto"
	"github.com/octobees/dealmatch/internal/service"
)

// AIHandler exposes the advisor tools and the insight audit trail.
type AIHandler struct {
	insights *service.InsightService
	deals    *service.DealService
}

// NewAIHandler constructs an AIHandler.
func NewAIHandler(insights *service.InsightService, deals *service.DealService) *AIHandler {
	return &AIHandler{insights: insights, deals: deals}
}

// GenerateNDA handles POST /api/ai/generate-nda requests.
func (h *AIHandler) GenerateNDA(c echo.Context) error {
	var req dto.GenerateNDARequest
	if err := decodeBody(c, dto.GenerateNDASchema, &req); err != nil {
		return respondError(c, err, "generate NDA")
	}

	nda, err := h.insights.DraftNDA(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, "generate NDA")
	}
	return Success(c, http.StatusOK, "", dto.NDAResponse{NDA: nda})
}

// DealRecommendations handles GET /api/ai/deal-recommendations/:dealId requests.
func (h *AIHandler) DealRecommendations(c echo.Context) error {
	steps, err := h.deals.Recommendations(c.Request().Context(), currentUserID(c), c.Param("dealId"))
	if err != nil {
		return respondError(c, err, "generate recommendations")
	}
	return Success(c, http.StatusOK, "", dto.RecommendationsResponse{Recommendations: steps})
}

// Insights handles GET /api/insights/:entityType/:entityId requests.
func (h *AIHandler) Insights(c echo.Context) error {
	insights, err := h.insights.List(c.Request().Context(), currentUserID(c), c.Param("entityType"), c.Param("entityId"))
	if err != nil {
		return respondError(c, err, "list insights")
	}
	return Success(c, http.StatusOK, "", insights)
}
