package models

// Analytics is the full analytics payload returned to business-tier users.
// Recomputed per request. Trend series carry synthetic variation, so the
// payload is flagged as simulated rather than hiding the randomness.
type Analytics struct {
	Simulated             bool                  `json:"simulated"`
	TimeRange             string                `json:"time_range"` // "3m", "6m", "1y", "2y"
	SpendingTrends        SpendingTrends        `json:"spending_trends"`
	SubscriptionLifecycle SubscriptionLifecycle `json:"subscription_lifecycle"`
	UsagePatterns         UsagePatterns         `json:"usage_patterns"`
	Forecasting           Forecasting           `json:"forecasting"`
}

// SpendingTrends groups the monthly series and category breakdown.
type SpendingTrends struct {
	Monthly    []MonthlyTrend      `json:"monthly"`
	Categories []CategoryBreakdown `json:"categories"`
}

// MonthlyTrend is one month of the spending trend series.
type MonthlyTrend struct {
	Month         string  `json:"month"` // "Jan 2026"
	Amount        float64 `json:"amount"`
	ChangePercent float64 `json:"change_percent"` // month-over-month
}

// CategoryBreakdown is one category's share of total monthly spend.
type CategoryBreakdown struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Percent  float64 `json:"percent"`
	Count    int     `json:"count"`
}

// SubscriptionLifecycle summarizes the subscription set.
type SubscriptionLifecycle struct {
	Active        int     `json:"active"`
	AverageAmount float64 `json:"average_amount"`
	PriceChanges  int     `json:"price_changes"` // simulated
}

// UsagePatterns covers billing-frequency distribution and seasonal averages.
type UsagePatterns struct {
	BillingFrequency map[string]int    `json:"billing_frequency"` // cadence -> count
	Seasonal         []SeasonalAverage `json:"seasonal"`
}

// SeasonalAverage is the seasonally-adjusted average monthly spend.
type SeasonalAverage struct {
	Season  string  `json:"season"`
	Average float64 `json:"average"`
}

// Forecasting holds projections and savings opportunities.
type Forecasting struct {
	NextMonth        float64              `json:"next_month"`
	AnnualProjection float64              `json:"annual_projection"`
	Opportunities    []SavingsOpportunity `json:"opportunities"`
}

// SavingsOpportunity is a single heuristic savings suggestion.
type SavingsOpportunity struct {
	Type             string  `json:"type"` // "expensive", "duplicate_category", "weekly_billing"
	Description      string  `json:"description"`
	PotentialSavings float64 `json:"potential_savings"`
}
