package service

import (
	"context"
	"errors"
	"testing"

	"github.com/octobees/dealmatch/internal/dto"
	"github.com/octobees/dealmatch/internal/entity"
	"github.com/octobees/dealmatch/internal/realtime"
)

func TestMessageService_SendAndThread(t *testing.T) {
	ctx := context.Background()
	m := newMarketplace(t)
	deal := m.deal(t)
	events := &recordingPublisher{}
	svc := NewMessageService(m.store, events, nil)

	msg, err := svc.Send(ctx, m.seller.ID, dto.SendMessageRequest{DealID: deal.ID, Content: " Hello there "})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.ReceiverID != m.buyer.ID || msg.Content != "Hello there" || msg.MessageType != entity.MessageText || msg.IsRead {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if topics := events.topics(EventMessageCreated); len(topics) != 1 || topics[0] != realtime.DealTopic(deal.ID) {
		t.Fatalf("unexpected message events: %v", topics)
	}

	if _, err := svc.Send(ctx, m.buyer.ID, dto.SendMessageRequest{DealID: deal.ID, ReceiverID: m.seller.ID, Content: "Hi"}); err != nil {
		t.Fatalf("reply: %v", err)
	}

	thread, err := svc.Thread(ctx, m.buyer.ID, deal.ID)
	if err != nil {
		t.Fatalf("thread: %v", err)
	}
	if len(thread) != 2 || thread[0].ID != msg.ID {
		t.Fatalf("expected oldest first thread of 2, got %+v", thread)
	}
	if thread[0].IsRead {
		t.Fatalf("thread returns the state before marking read")
	}

	mine, err := svc.ListForUser(ctx, m.buyer.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, got := range mine {
		if got.ReceiverID == m.buyer.ID && !got.IsRead {
			t.Fatalf("message to buyer should be read after viewing the thread: %+v", got)
		}
		if got.ReceiverID == m.seller.ID && got.IsRead {
			t.Fatalf("message to seller must stay unread: %+v", got)
		}
	}
}

func TestMessageService_Errors(t *testing.T) {
	ctx := context.Background()
	m := newMarketplace(t)
	deal := m.deal(t)
	outsider := mustUser(t, m.store, "outsider@example.com", "")
	svc := NewMessageService(m.store, nil, nil)

	tests := map[string]struct {
		userID      string
		req         dto.SendMessageRequest
		expectError error
	}{
		"blank content": {
			userID:      m.seller.ID,
			req:         dto.SendMessageRequest{DealID: deal.ID, Content: "  "},
			expectError: ErrValidation,
		},
		"wrong receiver": {
			userID:      m.seller.ID,
			req:         dto.SendMessageRequest{DealID: deal.ID, ReceiverID: outsider.ID, Content: "hi"},
			expectError: ErrValidation,
		},
		"unknown type": {
			userID:      m.seller.ID,
			req:         dto.SendMessageRequest{DealID: deal.ID, Content: "hi", MessageType: "sms"},
			expectError: ErrValidation,
		},
		"outsider": {
			userID:      outsider.ID,
			req:         dto.SendMessageRequest{DealID: deal.ID, Content: "hi"},
			expectError: ErrNotParticipant,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Send(ctx, tt.userID, tt.req); !errors.Is(err, tt.expectError) {
				t.Fatalf("expected %v, got %v", tt.expectError, err)
			}
		})
	}

	if _, err := svc.Thread(ctx, outsider.ID, deal.ID); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
}
