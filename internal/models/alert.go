package models

import "time"

// Alert types.
const (
	AlertSpendingLimit        = "spending_limit"
	AlertNewSubscription      = "new_subscription"
	AlertPriceIncrease        = "price_increase"
	AlertCancellationReminder = "cancellation_reminder"
)

// Alert represents a user-configured alert rule. Persisted in the alerts
// table.
type Alert struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Condition AlertCondition `json:"condition"`
	Enabled   bool           `json:"enabled"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// AlertCondition holds the rule parameters; which fields apply depends on
// the alert type.
type AlertCondition struct {
	Threshold  *float64 `json:"threshold,omitempty"`  // dollar amount or percent
	Period     *string  `json:"period,omitempty"`     // "monthly", "weekly"
	Comparison *string  `json:"comparison,omitempty"` // "above", "below"
}

// CreateAlertRequest represents the request to create an alert
type CreateAlertRequest struct {
	Name      string         `json:"name" binding:"required"`
	Type      string         `json:"type" binding:"required,oneof=spending_limit new_subscription price_increase cancellation_reminder"`
	Condition AlertCondition `json:"condition"`
	Enabled   *bool          `json:"enabled"`
}

// UpdateAlertRequest represents the request to update an alert
type UpdateAlertRequest struct {
	Name      *string         `json:"name"`
	Type      *string         `json:"type"`
	Condition *AlertCondition `json:"condition"`
	Enabled   *bool           `json:"enabled"`
}

// TriggeredAlert records an alert rule firing against the current
// subscription set.
type TriggeredAlert struct {
	Alert   Alert   `json:"alert"`
	Message string  `json:"message"`
	Value   float64 `json:"value,omitempty"` // the observed value that tripped the rule
	FiredAt string  `json:"fired_at"`
}
