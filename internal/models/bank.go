package models

import "time"

// Bank data providers.
const (
	ProviderPlaid = "plaid"
	ProviderTink  = "tink"
)

// BankConnection represents a linked bank data source. Persisted in the
// bank_connections table. The access token is only used server-side; the
// bank service clears it before a connection leaves the API boundary.
type BankConnection struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Provider    string    `json:"provider"` // "plaid", "tink"
	ItemID      string    `json:"item_id,omitempty"`
	AccessToken string    `json:"access_token,omitempty"`
	Institution string    `json:"institution,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BankAccount is a provider-neutral view of a linked account.
type BankAccount struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Mask     string   `json:"mask,omitempty"`
	Type     string   `json:"type,omitempty"`
	Balance  *float64 `json:"balance,omitempty"`
	Currency string   `json:"currency,omitempty"`
	Provider string   `json:"provider"`
}

// ProviderStatus reports whether a bank provider is connected for a user.
type ProviderStatus struct {
	Provider  string `json:"provider"`
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

// Auth request/response DTOs, consumed by the auth handler.

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest represents the signup request
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}
