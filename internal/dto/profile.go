package dto

// BusinessInput carries business fields for onboarding and profile updates.
// Nil fields are left unchanged on update.
type BusinessInput struct {
	Name            *string  `json:"name,omitempty"`
	Industry        *string  `json:"industry,omitempty"`
	Description     *string  `json:"description,omitempty"`
	AnnualRevenue   *string  `json:"annualRevenue,omitempty"`
	YearsInBusiness *int     `json:"yearsInBusiness,omitempty"`
	Employees       *int     `json:"employees,omitempty"`
	Location        *string  `json:"location,omitempty"`
	SellingReason   *string  `json:"sellingReason,omitempty"`
	Timeline        *string  `json:"timeline,omitempty"`
	AskingPrice     *float64 `json:"askingPrice,omitempty"`
	ContactPhone    *string  `json:"contactPhone,omitempty"`
	IsActive        *bool    `json:"isActive,omitempty"`
}

// BuyerInput carries buyer profile fields for onboarding and profile updates.
type BuyerInput struct {
	BudgetRange          *string  `json:"budgetRange,omitempty"`
	PreferredIndustries  []string `json:"preferredIndustries,omitempty"`
	Experience           *string  `json:"experience,omitempty"`
	InvestmentFocus      *string  `json:"investmentFocus,omitempty"`
	Timeline             *string  `json:"timeline,omitempty"`
	Location             *string  `json:"location,omitempty"`
	AcquisitionStructure []string `json:"acquisitionStructure,omitempty"`
	HasFinancing         *bool    `json:"hasFinancing,omitempty"`
	IsActive             *bool    `json:"isActive,omitempty"`
}

// OnboardingRequest picks a side of the marketplace and optionally seeds its profile.
type OnboardingRequest struct {
	UserType     string         `json:"userType"`
	FirstName    *string        `json:"firstName,omitempty"`
	LastName     *string        `json:"lastName,omitempty"`
	BusinessData *BusinessInput `json:"businessData,omitempty"`
	BuyerData    *BuyerInput    `json:"buyerData,omitempty"`
}
