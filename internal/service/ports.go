package service

import (
	"context"

	"github.com/octobees/dealmatch/internal/ai"
	"github.com/octobees/dealmatch/internal/entity"
)

// Advisor is the AI capability the services depend on. *ai.Advisor satisfies it.
type Advisor interface {
	ScoreCompatibility(ctx context.Context, business entity.Business, buyer entity.BuyerProfile) (ai.Compatibility, error)
	AnalyzeDocument(ctx context.Context, content string, docType entity.DocumentType, business *entity.Business) (ai.DocumentAnalysis, error)
	RecommendNextSteps(ctx context.Context, deal entity.Deal) ([]string, error)
	DraftNDA(ctx context.Context, businessType, structure string) (string, error)
}

// Publisher fans events out to realtime subscribers. *realtime.Hub satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic, eventType string, data any)
}

// TokenIssuer signs access tokens for a user.
type TokenIssuer interface {
	IssueToken(user entity.User) (string, error)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, string, any) {}
