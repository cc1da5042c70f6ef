package models

import "time"

// User represents a user in the system
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile represents a user's KillSub profile, including their plan tier and
// billing identifiers. Persisted in the profiles table.
type Profile struct {
	ID                   string     `json:"id"` // same as auth user id
	Email                string     `json:"email"`
	PlanID               string     `json:"plan_id"` // "free", "pro", "business"
	StripeCustomerID     *string    `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID *string    `json:"stripe_subscription_id,omitempty"`
	OnboardedAt          *time.Time `json:"onboarded_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Cadence values for a subscription's billing frequency.
const (
	CadenceWeekly  = "Weekly"
	CadenceDaily   = "Daily"
	CadenceMonthly = "Monthly"
)

// Subscription represents a recurring charge detected from a user's
// transaction history. Subscriptions are derived on demand, not persisted.
type Subscription struct {
	Name          string   `json:"name"`
	Cadence       string   `json:"cadence,omitempty"` // "Weekly", "Daily", "Monthly"
	LastAmount    float64  `json:"lastAmount,omitempty"`
	FirstDate     string   `json:"firstDate,omitempty"` // oldest charge in the detection window
	LastDate      string   `json:"lastDate,omitempty"`
	Count         int      `json:"count,omitempty"`
	Confidence    float64  `json:"confidence,omitempty"` // 0..1
	Reasons       []string `json:"reasons,omitempty"`
	CancelURL     string   `json:"cancel_url,omitempty"`
	ProviderEmoji string   `json:"provider_emoji,omitempty"`
}

// Transaction represents a normalized bank transaction from any provider.
type Transaction struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id,omitempty"`
	Name         string    `json:"name"`
	MerchantName string    `json:"merchant_name,omitempty"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency,omitempty"`
	Date         time.Time `json:"date"`
	Pending      bool      `json:"pending,omitempty"`
}

// Insight types.
const (
	InsightSavingsOpportunity = "savings_opportunity"
	InsightSpendingTrend      = "spending_trend"
	InsightDuplicateService   = "duplicate_service"
	InsightPriceOptimization  = "price_optimization"
	InsightUsagePattern       = "usage_pattern"
)

// Insight impact ratings.
const (
	ImpactHigh   = "high"
	ImpactMedium = "medium"
	ImpactLow    = "low"
)

// Insight is a generated, human-readable recommendation. Created fresh on
// every generation call and never persisted.
type Insight struct {
	ID               string   `json:"id"`
	Type             string   `json:"type"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Impact           string   `json:"impact"` // "high", "medium", "low"
	PotentialSavings float64  `json:"potential_savings,omitempty"`
	ConfidenceScore  int      `json:"confidence_score"` // 0..100
	ActionItems      []string `json:"action_items"`
	Category         string   `json:"category,omitempty"`
}
