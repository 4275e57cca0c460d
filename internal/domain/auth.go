package domain

import "time"

// Identity is what a verified bearer token asserts about its holder.
type Identity struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}
