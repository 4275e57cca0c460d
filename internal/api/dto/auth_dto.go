package dto

import "time"

// RegisterRequest payload for new users.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MessageResponse is the envelope for register and errors.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LoginResponse carries the bearer token.
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

// IdentityResponse echoes a verified token.
type IdentityResponse struct {
	Success bool        `json:"success"`
	Data    IdentityDTO `json:"data"`
}

// IdentityDTO is the public view of a token's claims.
type IdentityDTO struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LivenessResponse is served at the root path.
type LivenessResponse struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
