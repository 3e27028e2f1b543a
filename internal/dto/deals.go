package dto

import "time"

// CreateMatchRequest records the caller's decision on a business/buyer pair.
type CreateMatchRequest struct {
	BusinessID string `json:"businessId"`
	BuyerID    string `json:"buyerId"`
	Action     string `json:"action"`
}

// MatchActionRequest records the caller's decision on an existing match.
type MatchActionRequest struct {
	Action string `json:"action"`
}

// UpdateStageRequest moves a deal to a stage, optionally setting its progress.
type UpdateStageRequest struct {
	Stage    string `json:"stage"`
	Progress *int   `json:"progress,omitempty"`
}

// UpdateDealRequest edits the free-form deal details.
type UpdateDealRequest struct {
	Notes            *string    `json:"notes,omitempty"`
	EstimatedValue   *float64   `json:"estimatedValue,omitempty"`
	MilestoneDueDate *time.Time `json:"milestoneDueDate,omitempty"`
}

// SendMessageRequest appends a message to a deal thread.
// ReceiverID defaults to the other participant.
type SendMessageRequest struct {
	DealID      string `json:"dealId"`
	ReceiverID  string `json:"receiverId,omitempty"`
	Content     string `json:"content"`
	MessageType string `json:"messageType,omitempty"`
}

// GenerateNDARequest asks for an NDA draft.
type GenerateNDARequest struct {
	BusinessType         string `json:"businessType"`
	TransactionStructure string `json:"transactionStructure"`
}

// NDAResponse wraps a drafted NDA.
type NDAResponse struct {
	NDA string `json:"nda"`
}

// RecommendationsResponse wraps stage guidance for a deal.
type RecommendationsResponse struct {
	Recommendations []string `json:"recommendations"`
}

// UploadResponse is returned after a document upload.
type UploadResponse struct {
	Document any    `json:"document"`
	Message  string `json:"message"`
}
