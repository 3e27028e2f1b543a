package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/octobees/dealmatch/internal/dto"
	"github.com/octobees/dealmatch/internal/entity"
	"github.com/octobees/dealmatch/internal/repository"
)

func TestInsightService_List(t *testing.T) {
	ctx := context.Background()
	m := newMarketplace(t)
	svc := NewInsightService(m.store, newStubAdvisor())

	confidence := 0.7
	if _, err := m.store.CreateInsight(ctx, entity.AIInsight{
		EntityType:  entity.InsightEntityBusiness,
		EntityID:    m.business.ID,
		InsightType: entity.InsightRiskAssessment,
		Insights:    []byte(`{"summary":"EBITDA 1.2M"}`),
		Confidence:  &confidence,
	}); err != nil {
		t.Fatalf("create insight: %v", err)
	}

	got, err := svc.List(ctx, m.seller.ID, "business", m.business.ID)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected one insight, got %d (%v)", len(got), err)
	}
	if _, err := svc.List(ctx, m.seller.ID, "planet", m.business.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown entity type, got %v", err)
	}
}

func TestInsightService_ListAccess(t *testing.T) {
	ctx := context.Background()
	m := newMarketplace(t)
	svc := NewInsightService(m.store, newStubAdvisor())
	outsider := mustUser(t, m.store, "outsider@example.com", entity.UserTypeBuyer)
	pairKey := m.business.ID + "-" + m.profile.ID

	before := map[string]struct {
		userID      string
		entityType  string
		entityID    string
		expectError error
	}{
		"owner reads business":      {userID: m.seller.ID, entityType: "business", entityID: m.business.ID},
		"buyer without deal":        {userID: m.buyer.ID, entityType: "business", entityID: m.business.ID, expectError: ErrNotParticipant},
		"outsider reads business":   {userID: outsider.ID, entityType: "business", entityID: m.business.ID, expectError: ErrNotParticipant},
		"buyer reads own profile":   {userID: m.buyer.ID, entityType: "buyer", entityID: m.profile.ID},
		"outsider reads profile":    {userID: outsider.ID, entityType: "buyer", entityID: m.profile.ID, expectError: ErrNotParticipant},
		"seller reads pair score":   {userID: m.seller.ID, entityType: "match", entityID: pairKey},
		"buyer reads pair score":    {userID: m.buyer.ID, entityType: "match", entityID: pairKey},
		"outsider reads pair score": {userID: outsider.ID, entityType: "match", entityID: pairKey, expectError: ErrNotParticipant},
		"unknown deal":              {userID: m.seller.ID, entityType: "deal", entityID: "missing", expectError: repository.ErrNotFound},
	}
	for name, tt := range before {
		t.Run(name, func(t *testing.T) {
			_, err := svc.List(ctx, tt.userID, tt.entityType, tt.entityID)
			if !errors.Is(err, tt.expectError) {
				t.Fatalf("expected %v, got %v", tt.expectError, err)
			}
		})
	}

	deal := m.deal(t)
	after := map[string]struct {
		userID      string
		entityType  string
		entityID    string
		expectError error
	}{
		"buyer reads business through deal": {userID: m.buyer.ID, entityType: "business", entityID: m.business.ID},
		"participant reads deal":            {userID: m.buyer.ID, entityType: "deal", entityID: deal.ID},
		"outsider reads deal":               {userID: outsider.ID, entityType: "deal", entityID: deal.ID, expectError: ErrNotParticipant},
		"participant reads match":           {userID: m.seller.ID, entityType: "match", entityID: deal.MatchID},
		"outsider reads match":              {userID: outsider.ID, entityType: "match", entityID: deal.MatchID, expectError: ErrNotParticipant},
	}
	for name, tt := range after {
		t.Run(name, func(t *testing.T) {
			_, err := svc.List(ctx, tt.userID, tt.entityType, tt.entityID)
			if !errors.Is(err, tt.expectError) {
				t.Fatalf("expected %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestInsightService_ListDocumentKeyedAnalysis(t *testing.T) {
	ctx := context.Background()
	m := newMarketplace(t)
	svc := NewInsightService(m.store, newStubAdvisor())
	outsider := mustUser(t, m.store, "outsider@example.com", entity.UserTypeBuyer)

	doc, err := m.store.CreateDocument(ctx, entity.Document{UploaderID: m.buyer.ID, FileName: "notes.txt", RiskFlags: []string{}})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	if _, err := svc.List(ctx, m.buyer.ID, "business", doc.ID); err != nil {
		t.Fatalf("uploader should read the analysis: %v", err)
	}
	if _, err := svc.List(ctx, outsider.ID, "business", doc.ID); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
}

func TestInsightService_DraftNDA(t *testing.T) {
	svc := NewInsightService(nil, newStubAdvisor())

	nda, err := svc.DraftNDA(context.Background(), dto.GenerateNDARequest{BusinessType: "bakery", TransactionStructure: "asset purchase"})
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if !strings.Contains(nda, "NON-DISCLOSURE AGREEMENT") {
		t.Fatalf("expected the template NDA, got %q", nda)
	}

	if _, err := svc.DraftNDA(context.Background(), dto.GenerateNDARequest{BusinessType: "bakery"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
