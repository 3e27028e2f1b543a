package service

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/octobees/dealmatch/internal/ai"
	"github.com/octobees/dealmatch/internal/entity"
	"github.com/octobees/dealmatch/internal/repository"
)

const scoringConcurrency = 8

// ScoredBuyer is a buyer profile annotated with its fit for the caller's business.
type ScoredBuyer struct {
	entity.BuyerProfile
	CompatibilityScore int               `json:"compatibilityScore"`
	AIInsights         *ai.Compatibility `json:"aiInsights"`
}

// ScoredBusiness is a business annotated with its fit for the caller's buyer profile.
type ScoredBusiness struct {
	entity.Business
	CompatibilityScore int               `json:"compatibilityScore"`
	AIInsights         *ai.Compatibility `json:"aiInsights"`
}

// DiscoveryService builds the ranked candidate feeds for both sides.
type DiscoveryService struct {
	store   repository.Store
	advisor Advisor
	log     *zap.Logger
}

// NewDiscoveryService constructs a DiscoveryService.
func NewDiscoveryService(store repository.Store, advisor Advisor, log *zap.Logger) *DiscoveryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DiscoveryService{store: store, advisor: advisor, log: log}
}

// DiscoverBuyers ranks every active buyer profile against the caller's business.
func (s *DiscoveryService) DiscoverBuyers(ctx context.Context, userID string) ([]ScoredBuyer, error) {
	business, err := s.store.GetBusinessByOwnerID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBusinessProfileRequired
		}
		return nil, err
	}

	buyers, err := s.store.ListActiveBuyerProfiles(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]ScoredBuyer, 0, len(buyers))
	for _, buyer := range buyers {
		if buyer.UserID == userID {
			continue
		}
		results = append(results, ScoredBuyer{BuyerProfile: buyer})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scoringConcurrency)
	for i := range results {
		g.Go(func() error {
			results[i].CompatibilityScore, results[i].AIInsights = s.score(gctx, *business, results[i].BuyerProfile)
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CompatibilityScore > results[j].CompatibilityScore
	})
	return results, nil
}

// DiscoverBusinesses ranks the active businesses in the caller's preferred industries.
func (s *DiscoveryService) DiscoverBusinesses(ctx context.Context, userID string) ([]ScoredBusiness, error) {
	profile, err := s.store.GetBuyerProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBuyerProfileRequired
		}
		return nil, err
	}

	seen := make(map[string]struct{})
	var results []ScoredBusiness
	for _, industry := range profile.PreferredIndustries {
		businesses, err := s.store.ListBusinessesByIndustry(ctx, industry)
		if err != nil {
			return nil, err
		}
		for _, business := range businesses {
			if _, dup := seen[business.ID]; dup || business.OwnerID == userID {
				continue
			}
			seen[business.ID] = struct{}{}
			results = append(results, ScoredBusiness{Business: business})
		}
	}
	if results == nil {
		return []ScoredBusiness{}, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scoringConcurrency)
	for i := range results {
		g.Go(func() error {
			results[i].CompatibilityScore, results[i].AIInsights = s.score(gctx, results[i].Business, *profile)
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CompatibilityScore > results[j].CompatibilityScore
	})
	return results, nil
}

// score never fails the feed: a candidate that cannot be scored ranks last with no insights.
func (s *DiscoveryService) score(ctx context.Context, business entity.Business, buyer entity.BuyerProfile) (int, *ai.Compatibility) {
	result, err := s.advisor.ScoreCompatibility(ctx, business, buyer)
	if err != nil {
		s.log.Warn("compatibility scoring failed",
			zap.String("business_id", business.ID),
			zap.String("buyer_id", buyer.ID),
			zap.Error(err),
		)
		return 0, nil
	}
	return result.CompatibilityScore, &result
}
