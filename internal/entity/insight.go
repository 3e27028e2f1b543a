package entity

import (
	"encoding/json"
	"time"
)

// Insight entity kinds.
const (
	InsightEntityBusiness = "business"
	InsightEntityBuyer    = "buyer"
	InsightEntityMatch    = "match"
	InsightEntityDeal     = "deal"
)

// Insight types.
const (
	InsightValuation      = "valuation"
	InsightRiskAssessment = "risk_assessment"
	InsightMarketAnalysis = "market_analysis"
	InsightRecommendation = "recommendation"
	InsightCompatibility  = "compatibility"
)

// AIInsight is an append-only record of an AI output about an entity.
type AIInsight struct {
	ID          string          `json:"id"`
	EntityType  string          `json:"entityType"`
	EntityID    string          `json:"entityId"`
	InsightType string          `json:"insightType"`
	Insights    json.RawMessage `json:"insights"`
	Confidence  *float64        `json:"confidence,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}
