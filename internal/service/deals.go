package service

import (
	"context"
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

// DealTimeline is a deal with every ordered stage classified against its current stage.
type DealTimeline struct {
	Deal   *entity.Deal             `json:"deal"`
	Stages []workflow.TimelineEntry `json:"stages"`
}

// DealService reads and advances deals on behalf of their participants.
type DealService struct {
	store    repository.Store
	advisor  Advisor
	notifier notify.Notifier
	events   Publisher
	log      *zap.Logger
}

// NewDealService constructs a DealService.
func NewDealService(store repository.Store, advisor Advisor, notifier notify.Notifier, events Publisher, log *zap.Logger) *DealService {
	if log == nil {
		log = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(log)
	}
	if events == nil {
		events = nopPublisher{}
	}
	return &DealService{store: store, advisor: advisor, notifier: notifier, events: events, log: log}
}

// List returns every deal the user participates in, most recently updated first.
func (s *DealService) List(ctx context.Context, userID string) ([]entity.Deal, error) {
	return s.store.ListDealsForUser(ctx, userID)
}

// Get returns a deal the user participates in.
func (s *DealService) Get(ctx context.Context, userID, dealID string) (*entity.Deal, error) {
	deal, err := s.store.GetDealByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if !deal.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return deal, nil
}

// UpdateStage moves a deal along the workflow. Progress-only updates keep the stage.
func (s *DealService) UpdateStage(ctx context.Context, userID, dealID string, req dto.UpdateStageRequest) (*entity.Deal, error) {
	stage := entity.DealStage(req.Stage)
	if !workflow.IsValid(stage) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStage, req.Stage)
	}
	if req.Progress != nil && (*req.Progress < 0 || *req.Progress > 100) {
		return nil, ErrInvalidProgress
	}

	current, err := s.Get(ctx, userID, dealID)
	if err != nil {
		return nil, err
	}
	if err := workflow.ValidateTransition(current.CurrentStage, stage); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateDealStage(ctx, dealID, stage, req.Progress)
	if err != nil {
		return nil, fmt.Errorf("update deal stage: %w", err)
	}

	if stage != current.CurrentStage {
		milestone := workflow.NextMilestone(stage)
		patch := repository.DealPatch{NextMilestone: &milestone}
		if workflow.IsTerminal(stage) {
			inactive := false
			patch.IsActive = &inactive
		}
		if refreshed, err := s.store.UpdateDeal(ctx, dealID, patch); err != nil {
			s.log.Warn("refresh deal milestone", zap.String("deal_id", dealID), zap.Error(err))
		} else {
			updated = refreshed
		}
		metrics.StageTransitions.WithLabelValues(string(stage)).Inc()
		if err := s.notifier.DealStageChanged(ctx, *updated, participants(ctx, s.store, *updated, s.log)); err != nil {
			s.log.Error("notify stage change", zap.String("deal_id", dealID), zap.Error(err))
		}
	}

	s.events.Publish(ctx, realtime.DealTopic(dealID), EventDealStageUpdated, updated)
	return updated, nil
}

// UpdateDetails edits notes, estimated value and milestone due date.
func (s *DealService) UpdateDetails(ctx context.Context, userID, dealID string, req dto.UpdateDealRequest) (*entity.Deal, error) {
	if req.EstimatedValue != nil && *req.EstimatedValue < 0 {
		return nil, invalidField("estimatedValue", "must not be negative")
	}
	if _, err := s.Get(ctx, userID, dealID); err != nil {
		return nil, err
	}
	return s.store.UpdateDeal(ctx, dealID, repository.DealPatch{
		Notes:            req.Notes,
		EstimatedValue:   req.EstimatedValue,
		MilestoneDueDate: req.MilestoneDueDate,
	})
}

// Timeline classifies every ordered stage of a deal.
func (s *DealService) Timeline(ctx context.Context, userID, dealID string) (*DealTimeline, error) {
	deal, err := s.Get(ctx, userID, dealID)
	if err != nil {
		return nil, err
	}
	return &DealTimeline{Deal: deal, Stages: workflow.Timeline(deal.CurrentStage)}, nil
}

// Recommendations asks the advisor for next steps at the deal's current stage.
func (s *DealService) Recommendations(ctx context.Context, userID, dealID string) ([]string, error) {
	deal, err := s.Get(ctx, userID, dealID)
	if err != nil {
		return nil, err
	}
	return s.advisor.RecommendNextSteps(ctx, *deal)
}
