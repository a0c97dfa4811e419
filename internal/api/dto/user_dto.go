package dto

import "time"

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public account shape.
type UserResponse struct {
	ID                       string `json:"id"`
	Name                     string `json:"name"`
	Email                    string `json:"email"`
	Phone                    string `json:"phone"`
	Role                     string `json:"role"`
	EmailVerified            bool   `json:"email_verified"`
	PhoneVerified            bool   `json:"phone_verified"`
	IDStatus                 string `json:"id_status"`
	FullyVerified            bool   `json:"fully_verified"`
	Inactive                 bool   `json:"inactive"`
	AllowReactivationRequest bool   `json:"allow_reactivation_request"`
}
