package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/octobees/dealmatch/internal/dto"
	"github.com/octobees/dealmatch/internal/entity"
	"github.com/octobees/dealmatch/internal/realtime"
	"github.com/octobees/dealmatch/internal/repository"
)

// MessageService manages the per-deal message threads.
type MessageService struct {
	store  repository.Store
	events Publisher
	log    *zap.Logger
}

// NewMessageService constructs a MessageService.
func NewMessageService(store repository.Store, events Publisher, log *zap.Logger) *MessageService {
	if log == nil {
		log = zap.NewNop()
	}
	if events == nil {
		events = nopPublisher{}
	}
	return &MessageService{store: store, events: events, log: log}
}

// ListForUser returns every message the user sent or received.
func (s *MessageService) ListForUser(ctx context.Context, userID string) ([]entity.Message, error) {
	return s.store.ListMessagesForUser(ctx, userID)
}

// Thread returns a deal's messages oldest first, then marks those addressed to the user as read.
// The returned messages reflect the state before marking.
func (s *MessageService) Thread(ctx context.Context, userID, dealID string) ([]entity.Message, error) {
	if _, err := s.participantDeal(ctx, userID, dealID); err != nil {
		return nil, err
	}
	messages, err := s.store.ListMessagesByDealID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.MarkMessagesRead(ctx, dealID, userID); err != nil {
		return nil, fmt.Errorf("mark messages read: %w", err)
	}
	return messages, nil
}

// Send appends a message to a deal thread and publishes it to the deal topic.
func (s *MessageService) Send(ctx context.Context, userID string, req dto.SendMessageRequest) (*entity.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, invalidField("content", "must not be empty")
	}
	msgType := entity.MessageType(req.MessageType)
	switch msgType {
	case "":
		msgType = entity.MessageText
	case entity.MessageText, entity.MessageDocument, entity.MessageSystem:
	default:
		return nil, invalidField("messageType", "unknown message type")
	}

	deal, err := s.participantDeal(ctx, userID, req.DealID)
	if err != nil {
		return nil, err
	}
	receiver := deal.Counterparty(userID)
	if req.ReceiverID != "" && req.ReceiverID != receiver {
		return nil, invalidField("receiverId", "must be the other deal participant")
	}

	msg, err := s.store.CreateMessage(ctx, entity.Message{
		DealID:      deal.ID,
		SenderID:    userID,
		ReceiverID:  receiver,
		Content:     content,
		MessageType: msgType,
	})
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	s.events.Publish(ctx, realtime.DealTopic(deal.ID), EventMessageCreated, msg)
	return msg, nil
}

func (s *MessageService) participantDeal(ctx context.Context, userID, dealID string) (*entity.Deal, error) {
	deal, err := s.store.GetDealByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if !deal.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return deal, nil
}
