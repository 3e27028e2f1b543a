package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/dealmatch/internal/dto"
	"github.com/octobees/dealmatch/internal/service"
)

// MessageHandler exposes deal messaging.
type MessageHandler struct {
	messages *service.MessageService
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// List handles GET /api/messages requests.
func (h *MessageHandler) List(c echo.Context) error {
	messages, err := h.messages.ListForUser(c.Request().Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err, "list messages")
	}
	return Success(c, http.StatusOK, "", messages)
}

// Thread handles GET /api/messages/:dealId requests.
func (h *MessageHandler) Thread(c echo.Context) error {
	messages, err := h.messages.Thread(c.Request().Context(), currentUserID(c), c.Param("dealId"))
	if err != nil {
		return respondError(c, err, "list messages")
	}
	return Success(c, http.StatusOK, "", messages)
}

// Send handles POST /api/messages requests.
func (h *MessageHandler) Send(c echo.Context) error {
	var req dto.SendMessageRequest
	if err := decodeBody(c, dto.SendMessageSchema, &req); err != nil {
		return respondError(c, err, "send message")
	}

	msg, err := h.messages.Send(c.Request().Context(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err, "send message")
	}
	return Success(c, http.StatusCreated, "message sent", msg)
}
