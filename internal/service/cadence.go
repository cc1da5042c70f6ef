package service

import "github.com/killsub/backend/internal/models"

// Cadence multipliers for converting a charge to its monthly equivalent.
const (
	weeklyToMonthly = 4.33
	dailyToMonthly  = 30.0
)

// MonthlyAmount returns the monthly-equivalent cost of a subscription.
// Weekly charges scale by 4.33, daily by 30; anything else (including
// Monthly and missing cadence) passes through unchanged. A missing amount
// is treated as 0.
func MonthlyAmount(sub models.Subscription) float64 {
	switch sub.Cadence {
	case models.CadenceWeekly:
		return sub.LastAmount * weeklyToMonthly
	case models.CadenceDaily:
		return sub.LastAmount * dailyToMonthly
	default:
		return sub.LastAmount
	}
}

// TotalMonthlySpend sums the monthly-equivalent cost across subscriptions.
func TotalMonthlySpend(subs []models.Subscription) float64 {
	total := 0.0
	for _, sub := range subs {
		total += MonthlyAmount(sub)
	}
	return total
}
