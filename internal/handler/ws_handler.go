package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"nhooyr.io/websocket"

	"github.com/octobees/dealmatch/internal/auth"
	"github.com/octobees/dealmatch/internal/middleware"
	"github.com/octobees/dealmatch/internal/realtime"
	"github.com/octobees/dealmatch/internal/service"
)

const maxTopics = 16

// WSHandler upgrades /ws connections and hands them to the realtime hub.
type WSHandler struct {
	hub                *realtime.Hub
	jwt                *auth.JWTManager
	deals              *service.DealService
	insecureSkipVerify bool
}

// NewWSHandler constructs a WSHandler. insecureSkipVerify disables the origin check.
func NewWSHandler(hub *realtime.Hub, jwtManager *auth.JWTManager, deals *service.DealService, insecureSkipVerify bool) *WSHandler {
	return &WSHandler{hub: hub, jwt: jwtManager, deals: deals, insecureSkipVerify: insecureSkipVerify}
}

// Connect handles GET /ws requests.
// Clients name topics with repeated ?topic= parameters. A valid ?token= adds the user topic
// and is required for deal topics, which are limited to the deal's participants.
func (h *WSHandler) Connect(c echo.Context) error {
	ctx := c.Request().Context()

	var userID string
	if raw := c.QueryParam("token"); raw != "" {
		claims, err := h.jwt.ParseToken(raw)
		if err != nil {
			return Error(c, http.StatusUnauthorized, "invalid token")
		}
		userID = claims.Subject
	}

	requested := c.QueryParams()["topic"]
	if len(requested) > maxTopics {
		return Error(c, http.StatusBadRequest, "too many topics")
	}

	topics := make([]string, 0, len(requested)+2)
	seen := make(map[string]struct{}, len(requested))
	for _, topic := range requested {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		if _, dup := seen[topic]; dup {
			continue
		}
		switch {
		case strings.HasPrefix(topic, "user:"):
			return Error(c, http.StatusForbidden, "user topics are joined with a token")
		case strings.HasPrefix(topic, "deal:"):
			if userID == "" {
				return Error(c, http.StatusUnauthorized, "deal topics require a token")
			}
			if _, err := h.deals.Get(ctx, userID, strings.TrimPrefix(topic, "deal:")); err != nil {
				return respondError(c, err, "subscribe to deal")
			}
		}
		seen[topic] = struct{}{}
		topics = append(topics, topic)
	}
	if len(topics) == 0 {
		topics = append(topics, realtime.TopicBroadcast)
	}
	if userID != "" {
		topics = append(topics, realtime.UserTopic(userID))
	}

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		InsecureSkipVerify: h.insecureSkipVerify,
	})
	if err != nil {
		middleware.RecordError(c, fmt.Errorf("websocket upgrade: %w", err))
		return nil
	}

	h.hub.Serve(ctx, conn, topics)
	return nil
}
