package entity

import "time"

// DealStage is a step of the acquisition workflow.
type DealStage string

const (
	StageInitialDiscussion DealStage = "initial_discussion"
	StageNDASigned         DealStage = "nda_signed"
	StageFinancialReview   DealStage = "financial_review"
	StageDueDiligence      DealStage = "due_diligence"
	StageNegotiation       DealStage = "negotiation"
	StageClosing           DealStage = "closing"
	StageCompleted         DealStage = "completed"
	StageCancelled         DealStage = "cancelled"
)

// Deal tracks a mutually accepted match through the acquisition stages.
type Deal struct {
	ID               string     `json:"id"`
	MatchID          string     `json:"matchId"`
	SellerID         string     `json:"sellerId"`
	BuyerUserID      string     `json:"buyerUserId"`
	CurrentStage     DealStage  `json:"currentStage"`
	StageProgress    int        `json:"stageProgress"`
	EstimatedValue   *float64   `json:"estimatedValue,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	NextMilestone    string     `json:"nextMilestone,omitempty"`
	MilestoneDueDate *time.Time `json:"milestoneDueDate,omitempty"`
	IsActive         bool       `json:"isActive"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// HasParticipant reports whether userID is the seller or the buyer of the deal.
func (d Deal) HasParticipant(userID string) bool {
	return userID != "" && (d.SellerID == userID || d.BuyerUserID == userID)
}

// Counterparty returns the other participant of the deal.
func (d Deal) Counterparty(userID string) string {
	if d.SellerID == userID {
		return d.BuyerUserID
	}
	return d.SellerID
}
