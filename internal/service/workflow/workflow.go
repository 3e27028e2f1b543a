// Package workflow holds the pure rules of the acquisition workflow: stage ordering,
// stage status classification and match resolution.
package workflow

import (
	"errors"
	"fmt"

	"github.com/octobees/dealmatch/internal/entity"
)

// Display statuses of a stage relative to a deal's current stage.
const (
	StatusCompleted = "completed"
	StatusCurrent   = "current"
	StatusUpcoming  = "upcoming"
)

// Initial values for a freshly created deal.
const (
	InitialStage    = entity.StageInitialDiscussion
	InitialProgress = 10
)

// ErrInvalidStage is returned for stages outside the enumerated set.
var ErrInvalidStage = errors.New("invalid deal stage")

// ErrInvalidTransition is returned when a stage change skips, regresses or leaves a terminal stage.
var ErrInvalidTransition = errors.New("invalid stage transition")

// StageInfo describes one ordered stage.
type StageInfo struct {
	Stage    entity.DealStage `json:"stage"`
	Label    string           `json:"label"`
	Progress int              `json:"progress"`
}

var orderedStages = []StageInfo{
	{Stage: entity.StageInitialDiscussion, Label: "Initial Discussion", Progress: 20},
	{Stage: entity.StageNDASigned, Label: "NDA & Preliminary Info", Progress: 40},
	{Stage: entity.StageFinancialReview, Label: "Financial Review", Progress: 60},
	{Stage: entity.StageDueDiligence, Label: "Due Diligence", Progress: 80},
	{Stage: entity.StageNegotiation, Label: "Final Negotiation", Progress: 90},
	{Stage: entity.StageClosing, Label: "Closing", Progress: 100},
}

// OrderedStages returns the six non-terminal stages in workflow order.
func OrderedStages() []entity.DealStage {
	out := make([]entity.DealStage, len(orderedStages))
	for i, s := range orderedStages {
		out[i] = s.Stage
	}
	return out
}

// Stages returns a copy of the ordered stage descriptors.
func Stages() []StageInfo {
	out := make([]StageInfo, len(orderedStages))
	copy(out, orderedStages)
	return out
}

// IsTerminal reports whether s is an absorbing stage.
func IsTerminal(s entity.DealStage) bool {
	return s == entity.StageCompleted || s == entity.StageCancelled
}

// IsValid reports whether s belongs to the enumerated stage set.
func IsValid(s entity.DealStage) bool {
	return IsTerminal(s) || indexOf(OrderedStages(), s) >= 0
}

// Info returns the descriptor of an ordered stage.
func Info(s entity.DealStage) (StageInfo, bool) {
	for _, info := range orderedStages {
		if info.Stage == s {
			return info, true
		}
	}
	return StageInfo{}, false
}

// Next returns the stage following s, if any.
func Next(s entity.DealStage) (entity.DealStage, bool) {
	idx := indexOf(OrderedStages(), s)
	if idx < 0 || idx+1 >= len(orderedStages) {
		return "", false
	}
	return orderedStages[idx+1].Stage, true
}

// NextMilestone is the label shown as the upcoming milestone for a deal at stage s.
func NextMilestone(s entity.DealStage) string {
	switch s {
	case entity.StageCompleted:
		return "Deal completed"
	case entity.StageCancelled:
		return ""
	}
	next, ok := Next(s)
	if !ok {
		return "Complete the transaction"
	}
	info, _ := Info(next)
	return info.Label
}

// StageStatus classifies candidate against current by ordinal position in ordered.
// A candidate missing from ordered is always upcoming.
func StageStatus(ordered []entity.DealStage, current, candidate entity.DealStage) string {
	currentIdx := indexOf(ordered, current)
	candidateIdx := indexOf(ordered, candidate)
	switch {
	case candidateIdx < 0:
		return StatusUpcoming
	case candidateIdx < currentIdx:
		return StatusCompleted
	case candidateIdx == currentIdx:
		return StatusCurrent
	default:
		return StatusUpcoming
	}
}

// TimelineEntry is a stage annotated with its status for a given deal.
type TimelineEntry struct {
	StageInfo
	Status string `json:"status"`
}

// Timeline annotates every ordered stage with its status relative to current.
// A completed deal shows every stage as completed.
func Timeline(current entity.DealStage) []TimelineEntry {
	ordered := OrderedStages()
	out := make([]TimelineEntry, 0, len(orderedStages))
	for _, info := range orderedStages {
		status := StageStatus(ordered, current, info.Stage)
		if current == entity.StageCompleted {
			status = StatusCompleted
		}
		out = append(out, TimelineEntry{StageInfo: info, Status: status})
	}
	return out
}

// ValidateTransition checks a requested move from one stage to another.
// Allowed: staying on the same stage, moving to the immediate successor, and moving to
// completed or cancelled from any non-terminal stage.
func ValidateTransition(from, to entity.DealStage) error {
	if !IsValid(to) {
		return fmt.Errorf("%w: %q", ErrInvalidStage, to)
	}
	if IsTerminal(from) {
		if from == to {
			return nil
		}
		return fmt.Errorf("%w: deal is %s", ErrInvalidTransition, from)
	}
	if from == to || IsTerminal(to) {
		return nil
	}
	if next, ok := Next(from); ok && next == to {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// ResolveMatchStatus derives a match status from both sides' actions.
func ResolveMatchStatus(seller, buyer entity.MatchAction) entity.MatchStatus {
	return entity.ResolveMatchStatus(seller, buyer)
}

// MutuallyAccepted reports whether both sides accepted.
func MutuallyAccepted(m entity.Match) bool {
	return m.SellerAction == entity.ActionAccept && m.BuyerAction == entity.ActionAccept
}

func indexOf(ordered []entity.DealStage, s entity.DealStage) int {
	for i, candidate := range ordered {
		if candidate == s {
			return i
		}
	}
	return -1
}
