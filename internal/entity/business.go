package entity

import "time"

// Business is a company listed for sale by its owner.
type Business struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"ownerId"`
	Name            string    `json:"name"`
	Industry        string    `json:"industry"`
	Description     string    `json:"description,omitempty"`
	AnnualRevenue   string    `json:"annualRevenue,omitempty"`
	YearsInBusiness *int      `json:"yearsInBusiness,omitempty"`
	Employees       *int      `json:"employees,omitempty"`
	Location        string    `json:"location,omitempty"`
	SellingReason   string    `json:"sellingReason,omitempty"`
	Timeline        string    `json:"timeline,omitempty"`
	AskingPrice     *float64  `json:"askingPrice,omitempty"`
	ContactPhone    string    `json:"contactPhone,omitempty"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
