package dto

import "github.com/octobees/dealmatch/internal/entity"

// LoginRequest captures credential input.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest captures self-service registration payloads.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// AuthResponse contains the issued access token and the account it belongs to.
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	User        *entity.User `json:"user"`
}
