package service

import (
	"context"
	"sync"
	"testing"

	"github.com/octobees/dealmatch/internal/ai"
	"github.com/octobees/dealmatch/internal/entity"
	"github.com/octobees/dealmatch/internal/repository"
)

type published struct {
	topic     string
	eventType string
	data      any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, topic, eventType string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{topic: topic, eventType: eventType, data: data})
}

func (p *recordingPublisher) topics(eventType string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, ev := range p.events {
		if ev.eventType == eventType {
			out = append(out, ev.topic)
		}
	}
	return out
}

type countingNotifier struct {
	mu           sync.Mutex
	created      int
	stageChanged int
	recipients   []entity.User
}

func (n *countingNotifier) DealCreated(_ context.Context, _ entity.Deal, recipients []entity.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created++
	n.recipients = recipients
	return nil
}

func (n *countingNotifier) DealStageChanged(_ context.Context, _ entity.Deal, recipients []entity.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stageChanged++
	n.recipients = recipients
	return nil
}

// stubAdvisor answers like a degraded advisor unless a func field overrides the call.
type stubAdvisor struct {
	score    func(business entity.Business, buyer entity.BuyerProfile) (ai.Compatibility, error)
	analyze  func(content string) (ai.DocumentAnalysis, error)
	fallback *ai.Advisor
}

func newStubAdvisor() *stubAdvisor {
	return &stubAdvisor{fallback: ai.NewAdvisor(nil)}
}

func (a *stubAdvisor) ScoreCompatibility(ctx context.Context, business entity.Business, buyer entity.BuyerProfile) (ai.Compatibility, error) {
	if a.score != nil {
		return a.score(business, buyer)
	}
	return a.fallback.ScoreCompatibility(ctx, business, buyer)
}

func (a *stubAdvisor) AnalyzeDocument(ctx context.Context, content string, docType entity.DocumentType, business *entity.Business) (ai.DocumentAnalysis, error) {
	if a.analyze != nil {
		return a.analyze(content)
	}
	return a.fallback.AnalyzeDocument(ctx, content, docType, business)
}

func (a *stubAdvisor) RecommendNextSteps(ctx context.Context, deal entity.Deal) ([]string, error) {
	return a.fallback.RecommendNextSteps(ctx, deal)
}

func (a *stubAdvisor) DraftNDA(ctx context.Context, businessType, structure string) (string, error) {
	return a.fallback.DraftNDA(ctx, businessType, structure)
}

type marketplace struct {
	store    *repository.MemoryStore
	seller   *entity.User
	buyer    *entity.User
	business *entity.Business
	profile  *entity.BuyerProfile
}

func newMarketplace(t *testing.T) *marketplace {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()

	seller := mustUser(t, store, "seller@example.com", entity.UserTypeSeller)
	buyer := mustUser(t, store, "buyer@example.com", entity.UserTypeBuyer)

	price := 2500000.0
	business, err := store.CreateBusiness(ctx, entity.Business{
		OwnerID:     seller.ID,
		Name:        "Acme Analytics",
		Industry:    "technology",
		AskingPrice: &price,
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("create business: %v", err)
	}
	profile, err := store.CreateBuyerProfile(ctx, entity.BuyerProfile{
		UserID:               buyer.ID,
		BudgetRange:          "1m-5m",
		PreferredIndustries:  []string{"technology"},
		AcquisitionStructure: []string{},
		IsActive:             true,
	})
	if err != nil {
		t.Fatalf("create buyer profile: %v", err)
	}

	return &marketplace{store: store, seller: seller, buyer: buyer, business: business, profile: profile}
}

func mustUser(t *testing.T, store repository.UsersRepository, email string, userType entity.UserType) *entity.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), entity.User{
		Email:               email,
		PasswordHash:        "x",
		UserType:            userType,
		OnboardingCompleted: userType != "",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func (m *marketplace) deal(t *testing.T) *entity.Deal {
	t.Helper()
	ctx := context.Background()
	match, err := m.store.CreateMatch(ctx, entity.Match{
		BusinessID:   m.business.ID,
		BuyerID:      m.profile.ID,
		SellerID:     m.seller.ID,
		BuyerUserID:  m.buyer.ID,
		Status:       entity.MatchAccepted,
		SellerAction: entity.ActionAccept,
		BuyerAction:  entity.ActionAccept,
	})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	deal, err := m.store.CreateDeal(ctx, entity.Deal{
		MatchID:       match.ID,
		SellerID:      m.seller.ID,
		BuyerUserID:   m.buyer.ID,
		CurrentStage:  entity.StageInitialDiscussion,
		StageProgress: 10,
		IsActive:      true,
	})
	if err != nil {
		t.Fatalf("create deal: %v", err)
	}
	return deal
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func buyerIndustries(industries []string) repository.BuyerProfilePatch {
	return repository.BuyerProfilePatch{PreferredIndustries: industries}
}
