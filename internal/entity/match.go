package entity

import "time"

// MatchAction is the decision one side of a match has recorded.
type MatchAction string

const (
	ActionPending MatchAction = "pending"
	ActionAccept  MatchAction = "accept"
	ActionReject  MatchAction = "reject"
)

// Valid reports whether a is a known action.
func (a MatchAction) Valid() bool {
	switch a {
	case ActionPending, ActionAccept, ActionReject:
		return true
	}
	return false
}

// MatchStatus is derived from both sides' actions.
type MatchStatus string

const (
	MatchPending  MatchStatus = "pending"
	MatchAccepted MatchStatus = "accepted"
	MatchRejected MatchStatus = "rejected"
	// MatchExpired is reserved; nothing transitions into it yet.
	MatchExpired MatchStatus = "expired"
)

// Match pairs one business with one buyer profile.
type Match struct {
	ID                   string      `json:"id"`
	BusinessID           string      `json:"businessId"`
	BuyerID              string      `json:"buyerId"`
	SellerID             string      `json:"sellerId"`
	BuyerUserID          string      `json:"buyerUserId"`
	Status               MatchStatus `json:"status"`
	AICompatibilityScore *float64    `json:"aiCompatibilityScore,omitempty"`
	SellerAction         MatchAction `json:"sellerAction"`
	BuyerAction          MatchAction `json:"buyerAction"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
}

// ResolveMatchStatus derives a match status from both sides' actions.
func ResolveMatchStatus(seller, buyer MatchAction) MatchStatus {
	switch {
	case seller == ActionAccept && buyer == ActionAccept:
		return MatchAccepted
	case seller == ActionReject || buyer == ActionReject:
		return MatchRejected
	default:
		return MatchPending
	}
}
