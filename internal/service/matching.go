package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/octobees/dealmatch/internal/dto"
	"github.com/octobees/dealmatch/internal/entity"
	"github.com/octobees/dealmatch/internal/metrics"
	"github.com/octobees/dealmatch/internal/notify"
	"github.com/octobees/dealmatch/internal/realtime"
	"github.com/octobees/dealmatch/internal/repository"
	"github.com/octobees/dealmatch/internal/service/workflow"
)

const (
	sideSeller = "seller"
	sideBuyer  = "buyer"
)

// Realtime event types published by the services.
const (
	EventDealCreated      = "deal.created"
	EventDealStageUpdated = "deal.stage_updated"
	EventMessageCreated   = "message.created"
	EventDocumentUploaded = "document.uploaded"
)

// MatchResult is the match after an action, plus the deal when both sides accepted.
type MatchResult struct {
	Match *entity.Match `json:"match"`
	Deal  *entity.Deal  `json:"deal,omitempty"`
}

// MatchService records match decisions and promotes mutual acceptance to a deal.
type MatchService struct {
	store    repository.Store
	advisor  Advisor
	notifier notify.Notifier
	events   Publisher
	log      *zap.Logger
}

// NewMatchService constructs a MatchService. Nil notifier and publisher are allowed.
func NewMatchService(store repository.Store, advisor Advisor, notifier notify.Notifier, events Publisher, log *zap.Logger) *MatchService {
	if log == nil {
		log = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(log)
	}
	if events == nil {
		events = nopPublisher{}
	}
	return &MatchService{store: store, advisor: advisor, notifier: notifier, events: events, log: log}
}

// Create records the caller's action on a business/buyer pair, creating the match on first contact.
func (s *MatchService) Create(ctx context.Context, userID string, req dto.CreateMatchRequest) (*MatchResult, error) {
	action, err := parseAction(req.Action)
	if err != nil {
		return nil, err
	}

	business, err := s.store.GetBusinessByID(ctx, req.BusinessID)
	if err != nil {
		return nil, err
	}
	buyer, err := s.store.GetBuyerProfileByID(ctx, req.BuyerID)
	if err != nil {
		return nil, err
	}

	var side string
	switch userID {
	case business.OwnerID:
		side = sideSeller
	case buyer.UserID:
		side = sideBuyer
	default:
		return nil, ErrNotParticipant
	}

	existing, err := s.store.GetMatchByPair(ctx, business.ID, buyer.ID)
	if err == nil {
		return s.apply(ctx, *existing, side, action)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	match := entity.Match{
		BusinessID:   business.ID,
		BuyerID:      buyer.ID,
		SellerID:     business.OwnerID,
		BuyerUserID:  buyer.UserID,
		SellerAction: entity.ActionPending,
		BuyerAction:  entity.ActionPending,
	}
	if side == sideSeller {
		match.SellerAction = action
	} else {
		match.BuyerAction = action
	}
	match.Status = workflow.ResolveMatchStatus(match.SellerAction, match.BuyerAction)

	if compat, err := s.advisor.ScoreCompatibility(ctx, *business, *buyer); err != nil {
		s.log.Warn("score new match", zap.String("business_id", business.ID), zap.String("buyer_id", buyer.ID), zap.Error(err))
	} else {
		score := float64(compat.CompatibilityScore)
		match.AICompatibilityScore = &score
	}

	created, err := s.store.CreateMatch(ctx, match)
	if errors.Is(err, repository.ErrDuplicate) {
		// Lost a race with the other side creating the same pair.
		existing, err := s.store.GetMatchByPair(ctx, business.ID, buyer.ID)
		if err != nil {
			return nil, err
		}
		return s.apply(ctx, *existing, side, action)
	}
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	metrics.MatchActions.WithLabelValues(side, string(action)).Inc()

	return s.promote(ctx, created)
}

// Act records the caller's action on an existing match.
func (s *MatchService) Act(ctx context.Context, userID, matchID string, rawAction string) (*MatchResult, error) {
	action, err := parseAction(rawAction)
	if err != nil {
		return nil, err
	}
	match, err := s.store.GetMatchByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	var side string
	switch userID {
	case match.SellerID:
		side = sideSeller
	case match.BuyerUserID:
		side = sideBuyer
	default:
		return nil, ErrNotParticipant
	}
	return s.apply(ctx, *match, side, action)
}

// List returns the caller's matches: by business owner for sellers, by buyer profile otherwise.
func (s *MatchService) List(ctx context.Context, userID string) ([]entity.Match, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.UserType == entity.UserTypeSeller {
		return s.store.ListMatchesForSeller(ctx, user.ID)
	}
	profile, err := s.store.GetBuyerProfileByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []entity.Match{}, nil
		}
		return nil, err
	}
	return s.store.ListMatchesForBuyer(ctx, profile.ID)
}

func (s *MatchService) apply(ctx context.Context, match entity.Match, side string, action entity.MatchAction) (*MatchResult, error) {
	if workflow.MutuallyAccepted(match) {
		return s.reaccept(ctx, match.ID, action)
	}

	var patch repository.MatchPatch
	if side == sideSeller {
		patch.SellerAction = &action
	} else {
		patch.BuyerAction = &action
	}
	updated, err := s.store.UpdateMatch(ctx, match.ID, patch)
	if errors.Is(err, repository.ErrMatchClosed) {
		// The other side completed the acceptance after our read.
		return s.reaccept(ctx, match.ID, action)
	}
	if err != nil {
		return nil, fmt.Errorf("update match: %w", err)
	}
	metrics.MatchActions.WithLabelValues(side, string(action)).Inc()

	return s.promote(ctx, updated)
}

// reaccept handles an action on a match both sides already accepted: a
// repeated accept returns the existing deal, anything else is refused.
func (s *MatchService) reaccept(ctx context.Context, matchID string, action entity.MatchAction) (*MatchResult, error) {
	if action != entity.ActionAccept {
		return nil, ErrMatchClosed
	}
	current, err := s.store.GetMatchByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return s.promote(ctx, current)
}

// promote creates the deal for a mutually accepted match exactly once.
func (s *MatchService) promote(ctx context.Context, match *entity.Match) (*MatchResult, error) {
	result := &MatchResult{Match: match}
	if !workflow.MutuallyAccepted(*match) {
		return result, nil
	}

	existing, err := s.store.GetDealByMatchID(ctx, match.ID)
	if err == nil {
		result.Deal = existing
		return result, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	deal := entity.Deal{
		MatchID:       match.ID,
		SellerID:      match.SellerID,
		BuyerUserID:   match.BuyerUserID,
		CurrentStage:  workflow.InitialStage,
		StageProgress: workflow.InitialProgress,
		NextMilestone: workflow.NextMilestone(workflow.InitialStage),
		IsActive:      true,
	}
	if business, err := s.store.GetBusinessByID(ctx, match.BusinessID); err == nil {
		deal.EstimatedValue = business.AskingPrice
	}

	created, err := s.store.CreateDeal(ctx, deal)
	if errors.Is(err, repository.ErrDuplicate) {
		created, err = s.store.GetDealByMatchID(ctx, match.ID)
		if err != nil {
			return nil, err
		}
		result.Deal = created
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create deal: %w", err)
	}
	metrics.DealsCreated.Inc()
	s.log.Info("deal created", zap.String("deal_id", created.ID), zap.String("match_id", match.ID))

	s.announceDeal(ctx, *created)
	result.Deal = created
	return result, nil
}

func (s *MatchService) announceDeal(ctx context.Context, deal entity.Deal) {
	recipients := participants(ctx, s.store, deal, s.log)
	if err := s.notifier.DealCreated(ctx, deal, recipients); err != nil {
		s.log.Error("notify deal created", zap.String("deal_id", deal.ID), zap.Error(err))
	}
	for _, userID := range []string{deal.SellerID, deal.BuyerUserID} {
		s.events.Publish(ctx, realtime.UserTopic(userID), EventDealCreated, deal)
	}
}

func parseAction(raw string) (entity.MatchAction, error) {
	action := entity.MatchAction(raw)
	if action != entity.ActionAccept && action != entity.ActionReject {
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, raw)
	}
	return action, nil
}

// participants loads both parties of a deal, skipping any that cannot be read.
func participants(ctx context.Context, users repository.UsersRepository, deal entity.Deal, log *zap.Logger) []entity.User {
	out := make([]entity.User, 0, 2)
	for _, id := range []string{deal.SellerID, deal.BuyerUserID} {
		user, err := users.GetUserByID(ctx, id)
		if err != nil {
			log.Warn("load deal participant", zap.String("deal_id", deal.ID), zap.String("user_id", id), zap.Error(err))
			continue
		}
		out = append(out, *user)
	}
	return out
}
