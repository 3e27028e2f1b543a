package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/octobees/dealmatch/internal/auth"
	"github.com/octobees/dealmatch/internal/config"
	"github.com/octobees/dealmatch/internal/entity"
	"github.com/octobees/dealmatch/internal/handler"
	middlewarepkg "github.com/octobees/dealmatch/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth      *handler.AuthHandler
	Profiles  *handler.ProfileHandler
	Discovery *handler.DiscoveryHandler
	Matches   *handler.MatchHandler
	Deals     *handler.DealHandler
	Documents *handler.DocumentHandler
	Messages  *handler.MessageHandler
	AI        *handler.AIHandler
	WS        *handler.WSHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if handlers.WS != nil {
		e.GET("/ws", handlers.WS.Connect)
	}

	api := e.Group("/api")
	api.POST("/auth/register", handlers.Auth.Register)
	api.POST("/auth/login", handlers.Auth.Login)

	secured := api.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	aiLimit := middlewarepkg.RateLimiter(cfg.RateLimitAI, "ai")

	secured.GET("/auth/user", handlers.Auth.CurrentUser)
	secured.POST("/onboarding/complete", handlers.Profiles.CompleteOnboarding)
	secured.GET("/business/profile", handlers.Profiles.GetBusiness)
	secured.PUT("/business/profile", handlers.Profiles.UpdateBusiness)
	secured.GET("/buyer/profile", handlers.Profiles.GetBuyer)
	secured.PUT("/buyer/profile", handlers.Profiles.UpdateBuyer)

	secured.GET("/discover/buyers", handlers.Discovery.Buyers, middlewarepkg.RequireUserType(entity.UserTypeSeller))
	secured.GET("/discover/businesses", handlers.Discovery.Businesses, middlewarepkg.RequireUserType(entity.UserTypeBuyer))

	secured.POST("/matches/create", handlers.Matches.Create)
	secured.GET("/matches", handlers.Matches.List)
	secured.PUT("/matches/:id", handlers.Matches.Act)

	secured.GET("/deals", handlers.Deals.List)
	secured.GET("/deals/:id", handlers.Deals.Get)
	secured.PATCH("/deals/:id", handlers.Deals.Update)
	secured.PUT("/deals/:id/stage", handlers.Deals.UpdateStage)
	secured.GET("/deals/:id/timeline", handlers.Deals.Timeline)

	secured.POST("/documents/upload", handlers.Documents.Upload, aiLimit)
	secured.GET("/documents/:dealId", handlers.Documents.ListByDeal)

	secured.GET("/messages", handlers.Messages.List)
	secured.GET("/messages/:dealId", handlers.Messages.Thread)
	secured.POST("/messages", handlers.Messages.Send)

	secured.POST("/ai/generate-nda", handlers.AI.GenerateNDA, aiLimit)
	secured.GET("/ai/deal-recommendations/:dealId", handlers.AI.DealRecommendations, aiLimit)
	secured.GET("/insights/:entityType/:entityId", handlers.AI.Insights)
}
