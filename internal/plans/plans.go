// Package plans holds the static plan/entitlement table. It is the single
// source of truth for feature gating and numeric limits, consumed by the
// gate middleware, the billing service, and the public /plans endpoint.
package plans

import "github.com/shopspring/decimal"

// Plan tier ids.
const (
	Free     = "free"
	Pro      = "pro"
	Business = "business"
)

// Feature names used in allow-lists and gate checks.
const (
	FeatureBasicInsights     = "basic_insights"
	FeatureAdvancedInsights  = "advanced_insights"
	FeatureAdvancedAnalytics = "advanced_analytics"
	FeatureCustomAlerts      = "custom_alerts"
	FeatureExport            = "export"
	FeatureCancelService     = "cancel_service"
)

// Unlimited marks a numeric limit with no cap.
const Unlimited = -1

// Limits holds the numeric caps for a plan tier.
type Limits struct {
	BankAccounts          int `json:"bank_accounts"`
	Subscriptions         int `json:"subscriptions"`
	CancellationsPerMonth int `json:"cancellations_per_month"`
}

// Plan is an immutable plan tier definition.
type Plan struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	MonthlyPrice  decimal.Decimal `json:"monthly_price"`
	StripePriceID string          `json:"-"` // set from env at startup, not serialized
	Features      []string        `json:"features"`
	Limits        Limits          `json:"limits"`
}

// table is ordered cheapest first so RequiredPlanFor can report the lowest
// tier that unlocks a feature.
var table = []Plan{
	{
		ID:           Free,
		Name:         "Free",
		MonthlyPrice: decimal.Zero,
		Features: []string{
			FeatureBasicInsights,
		},
		Limits: Limits{
			BankAccounts:          1,
			Subscriptions:         10,
			CancellationsPerMonth: 0,
		},
	},
	{
		ID:           Pro,
		Name:         "Pro",
		MonthlyPrice: decimal.NewFromFloat(4.99),
		Features: []string{
			FeatureBasicInsights,
			FeatureAdvancedInsights,
			FeatureCustomAlerts,
			FeatureExport,
		},
		Limits: Limits{
			BankAccounts:          3,
			Subscriptions:         Unlimited,
			CancellationsPerMonth: 0,
		},
	},
	{
		ID:           Business,
		Name:         "Business",
		MonthlyPrice: decimal.NewFromFloat(12.99),
		Features: []string{
			FeatureBasicInsights,
			FeatureAdvancedInsights,
			FeatureAdvancedAnalytics,
			FeatureCustomAlerts,
			FeatureExport,
			FeatureCancelService,
		},
		Limits: Limits{
			BankAccounts:          Unlimited,
			Subscriptions:         Unlimited,
			CancellationsPerMonth: 5,
		},
	},
}

// All returns the plan table, cheapest tier first.
func All() []Plan {
	out := make([]Plan, len(table))
	copy(out, table)
	return out
}

// Get returns the plan with the given id. Unknown ids fall back to the free
// tier so a corrupt profile row can never unlock paid features.
func Get(planID string) Plan {
	for _, p := range table {
		if p.ID == planID {
			return p
		}
	}
	return table[0]
}

// IsFeatureAllowed reports whether the given plan includes a feature.
func IsFeatureAllowed(planID, feature string) bool {
	for _, f := range Get(planID).Features {
		if f == feature {
			return true
		}
	}
	return false
}

// RequiredPlanFor returns the id of the cheapest plan that includes the
// feature, or empty string if no plan does.
func RequiredPlanFor(feature string) string {
	for _, p := range table {
		for _, f := range p.Features {
			if f == feature {
				return p.ID
			}
		}
	}
	return ""
}

// PriceCents returns the plan's monthly price in cents, the unit Stripe
// expects.
func PriceCents(planID string) int64 {
	return Get(planID).MonthlyPrice.Mul(decimal.NewFromInt(100)).IntPart()
}
