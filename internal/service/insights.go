package service

import (
	"context"
	"errors"
	"strings"

	"github.com/octobees/dealmatch/internal/dto"
	"github.com/octobees/dealmatch/internal/entity"
	"github.com/octobees/dealmatch/internal/repository"
)

var insightEntityTypes = map[string]struct{}{
	entity.InsightEntityBusiness: {},
	entity.InsightEntityBuyer:    {},
	entity.InsightEntityMatch:    {},
	entity.InsightEntityDeal:     {},
}

// InsightService exposes the AI audit trail and the standalone AI drafting tools.
type InsightService struct {
	store   repository.Store
	advisor Advisor
}

// NewInsightService constructs an InsightService.
func NewInsightService(store repository.Store, advisor Advisor) *InsightService {
	return &InsightService{store: store, advisor: advisor}
}

// List returns the insights recorded for an entity, newest first. Only the
// entity's owner or the participants of a deal around it may read them.
func (s *InsightService) List(ctx context.Context, userID, entityType, entityID string) ([]entity.AIInsight, error) {
	if _, ok := insightEntityTypes[entityType]; !ok {
		return nil, invalidField("entityType", "unknown entity type")
	}
	if strings.TrimSpace(entityID) == "" {
		return nil, invalidField("entityId", "must not be empty")
	}
	allowed, err := s.canRead(ctx, userID, entityType, entityID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotParticipant
	}
	return s.store.ListInsightsByEntity(ctx, entityType, entityID)
}

func (s *InsightService) canRead(ctx context.Context, userID, entityType, entityID string) (bool, error) {
	switch entityType {
	case entity.InsightEntityDeal:
		deal, err := s.store.GetDealByID(ctx, entityID)
		if err != nil {
			return false, err
		}
		return deal.HasParticipant(userID), nil
	case entity.InsightEntityBuyer:
		profile, err := s.store.GetBuyerProfileByID(ctx, entityID)
		if err != nil {
			return false, err
		}
		return profile.UserID == userID, nil
	case entity.InsightEntityMatch:
		return s.canReadMatch(ctx, userID, entityID)
	default:
		return s.canReadBusiness(ctx, userID, entityID)
	}
}

// canReadMatch accepts a match id or the business-buyer pair key compatibility
// scores are recorded under.
func (s *InsightService) canReadMatch(ctx context.Context, userID, entityID string) (bool, error) {
	match, err := s.store.GetMatchByID(ctx, entityID)
	if err == nil {
		return userID == match.SellerID || userID == match.BuyerUserID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	if business, err := s.store.GetBusinessByOwnerID(ctx, userID); err == nil && strings.HasPrefix(entityID, business.ID+"-") {
		return true, nil
	}
	if profile, err := s.store.GetBuyerProfileByUserID(ctx, userID); err == nil && strings.HasSuffix(entityID, "-"+profile.ID) {
		return true, nil
	}
	return false, nil
}

// canReadBusiness covers listings and documents uploaded without one, whose
// analyses are keyed by the document id.
func (s *InsightService) canReadBusiness(ctx context.Context, userID, entityID string) (bool, error) {
	business, err := s.store.GetBusinessByID(ctx, entityID)
	if errors.Is(err, repository.ErrNotFound) {
		doc, docErr := s.store.GetDocumentByID(ctx, entityID)
		if docErr != nil {
			return false, err
		}
		if doc.UploaderID == userID {
			return true, nil
		}
		if doc.DealID == nil {
			return false, nil
		}
		deal, err := s.store.GetDealByID(ctx, *doc.DealID)
		if err != nil {
			return false, err
		}
		return deal.HasParticipant(userID), nil
	}
	if err != nil {
		return false, err
	}
	if business.OwnerID == userID {
		return true, nil
	}

	deals, err := s.store.ListDealsForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, deal := range deals {
		match, err := s.store.GetMatchByID(ctx, deal.MatchID)
		if err != nil {
			continue
		}
		if match.BusinessID == business.ID {
			return true, nil
		}
	}
	return false, nil
}

// DraftNDA produces an NDA for the given business type and transaction structure.
func (s *InsightService) DraftNDA(ctx context.Context, req dto.GenerateNDARequest) (string, error) {
	businessType := strings.TrimSpace(req.BusinessType)
	structure := strings.TrimSpace(req.TransactionStructure)
	if businessType == "" {
		return "", invalidField("businessType", "is required")
	}
	if structure == "" {
		return "", invalidField("transactionStructure", "is required")
	}
	return s.advisor.DraftNDA(ctx, businessType, structure)
}
