package models

import "time"

// Cancellation request statuses. Transitions are driven by the concierge
// operators through the PATCH endpoint, not by automation.
const (
	CancellationPending    = "pending"
	CancellationInProgress = "in_progress"
	CancellationCompleted  = "completed"
	CancellationFailed     = "failed"
)

// Cancellation request urgency levels.
const (
	UrgencyLow    = "low"
	UrgencyNormal = "normal"
	UrgencyHigh   = "high"
	UrgencyUrgent = "urgent"
)

// CancellationRequest represents a cancel-for-me concierge request.
// Persisted in the cancellation_requests table.
type CancellationRequest struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"user_id"`
	SubscriptionName    string     `json:"subscription_name"`
	SubscriptionDetails string     `json:"subscription_details,omitempty"`
	Status              string     `json:"status"`
	Urgency             string     `json:"urgency"`
	Notes               *string    `json:"notes,omitempty"`
	AssignedTo          *string    `json:"assigned_to,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// CreateCancellationRequest represents the request to open a concierge
// cancellation.
type CreateCancellationRequest struct {
	SubscriptionName    string `json:"subscription_name" binding:"required"`
	SubscriptionDetails string `json:"subscription_details"`
	Urgency             string `json:"urgency" binding:"omitempty,oneof=low normal high urgent"`
	Notes               string `json:"notes"`
}

// UpdateCancellationRequest represents a status/assignment update from the
// operator tooling. Nullable fields distinguish "clear" from "leave as is".
type UpdateCancellationRequest struct {
	Status     *string        `json:"status" binding:"omitempty,oneof=pending in_progress completed failed"`
	Urgency    *string        `json:"urgency" binding:"omitempty,oneof=low normal high urgent"`
	Notes      NullableString `json:"notes"`
	AssignedTo NullableString `json:"assigned_to"`
}
