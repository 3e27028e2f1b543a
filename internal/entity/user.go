package entity

import "time"

// UserType distinguishes the two sides of the marketplace.
type UserType string

const (
	UserTypeSeller UserType = "seller"
	UserTypeBuyer  UserType = "buyer"
)

// Valid reports whether t is one of the known account types.
func (t UserType) Valid() bool {
	return t == UserTypeSeller || t == UserTypeBuyer
}

// User is an authenticated marketplace account.
type User struct {
	ID                  string    `json:"id"`
	Email               string    `json:"email"`
	PasswordHash        string    `json:"-"`
	FirstName           string    `json:"firstName,omitempty"`
	LastName            string    `json:"lastName,omitempty"`
	UserType            UserType  `json:"userType,omitempty"`
	OnboardingCompleted bool      `json:"onboardingCompleted"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}
