package entity

import "time"

// BuyerProfile describes what an acquirer is looking for.
type BuyerProfile struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"userId"`
	BudgetRange          string    `json:"budgetRange"`
	PreferredIndustries  []string  `json:"preferredIndustries"`
	Experience           string    `json:"experience,omitempty"`
	InvestmentFocus      string    `json:"investmentFocus,omitempty"`
	Timeline             string    `json:"timeline,omitempty"`
	Location             string    `json:"location,omitempty"`
	AcquisitionStructure []string  `json:"acquisitionStructure"`
	HasFinancing         bool      `json:"hasFinancing"`
	IsActive             bool      `json:"isActive"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}
