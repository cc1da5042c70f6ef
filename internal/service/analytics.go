package service

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/killsub/backend/internal/models"
)

// Analytics constants. The trend series carries synthetic variation for
// demo parity with the product's charts; the payload is marked simulated
// and the RNG is injected so tests can pin a seed.
const (
	trendJitter          = 0.15 // ±15% per month
	forecastGrowth       = 1.02 // next-month forecast
	annualGrowthFactor   = 1.05 // applied on top of ×12
	maxSimulatedChanges  = 3    // simulated price-change count upper bound
	expensiveOppRate     = 0.30
	duplicateOppRate     = 0.50
	weeklyOppRate        = 0.15
)

// Seasonal multipliers applied to the average monthly spend.
var seasons = []struct {
	name       string
	multiplier float64
}{
	{"Spring", 0.95},
	{"Summer", 1.10},
	{"Fall", 1.05},
	{"Winter", 1.15},
}

// TimeRangeMonths maps an API time range to a month count. Unknown ranges
// default to 6 months.
func TimeRangeMonths(timeRange string) int {
	switch timeRange {
	case "3m":
		return 3
	case "1y":
		return 12
	case "2y":
		return 24
	default:
		return 6
	}
}

type analyticsService struct {
	rng *rand.Rand
	now func() time.Time
}

// NewAnalyticsService creates a new analytics service. The RNG drives the
// simulated trend variation; pass a seeded source for reproducible output.
func NewAnalyticsService(rng *rand.Rand) AnalyticsService {
	return &analyticsService{rng: rng, now: time.Now}
}

func (s *analyticsService) BuildAnalytics(subs []models.Subscription, txs []models.Transaction, timeRange string) *models.Analytics {
	months := TimeRangeMonths(timeRange)
	total := TotalMonthlySpend(subs)

	return &models.Analytics{
		Simulated: true,
		TimeRange: timeRange,
		SpendingTrends: models.SpendingTrends{
			Monthly:    s.monthlyTrends(total, months),
			Categories: s.categoryBreakdown(subs, total),
		},
		SubscriptionLifecycle: s.lifecycle(subs, total),
		UsagePatterns: models.UsagePatterns{
			BillingFrequency: billingFrequency(subs),
			Seasonal:         seasonalAverages(total),
		},
		Forecasting: models.Forecasting{
			NextMonth:        total * forecastGrowth,
			AnnualProjection: total * 12 * annualGrowthFactor,
			Opportunities:    savingsOpportunities(subs),
		},
	}
}

// monthlyTrends builds the historical trend series, newest month last, with
// ±15% random variation per month and month-over-month percent change.
func (s *analyticsService) monthlyTrends(total float64, months int) []models.MonthlyTrend {
	trends := make([]models.MonthlyTrend, 0, months)
	now := s.now()

	prev := 0.0
	for i := months - 1; i >= 0; i-- {
		month := now.AddDate(0, -i, 0)
		variation := 1 + (s.rng.Float64()*2-1)*trendJitter
		amount := total * variation

		change := 0.0
		if prev > 0 {
			change = (amount - prev) / prev * 100
		}

		trends = append(trends, models.MonthlyTrend{
			Month:         month.Format("Jan 2006"),
			Amount:        amount,
			ChangePercent: change,
		})
		prev = amount
	}
	return trends
}

// categoryBreakdown computes each category's share of total monthly spend.
func (s *analyticsService) categoryBreakdown(subs []models.Subscription, total float64) []models.CategoryBreakdown {
	buckets := GroupByCategory(subs)

	categories := make([]string, 0, len(buckets))
	for category := range buckets {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	breakdown := make([]models.CategoryBreakdown, 0, len(categories))
	for _, category := range categories {
		members := buckets[category]
		amount := TotalMonthlySpend(members)

		percent := 0.0
		if total > 0 {
			percent = amount / total * 100
		}

		breakdown = append(breakdown, models.CategoryBreakdown{
			Category: category,
			Amount:   amount,
			Percent:  percent,
			Count:    len(members),
		})
	}
	return breakdown
}

func (s *analyticsService) lifecycle(subs []models.Subscription, total float64) models.SubscriptionLifecycle {
	average := 0.0
	if len(subs) > 0 {
		average = total / float64(len(subs))
	}
	return models.SubscriptionLifecycle{
		Active:        len(subs),
		AverageAmount: average,
		PriceChanges:  s.rng.Intn(maxSimulatedChanges + 1),
	}
}

// billingFrequency counts subscriptions by cadence. Missing cadence counts
// as Monthly, matching the normalizer's default.
func billingFrequency(subs []models.Subscription) map[string]int {
	freq := make(map[string]int)
	for _, sub := range subs {
		cadence := sub.Cadence
		if cadence == "" {
			cadence = models.CadenceMonthly
		}
		freq[cadence]++
	}
	return freq
}

func seasonalAverages(total float64) []models.SeasonalAverage {
	averages := make([]models.SeasonalAverage, 0, len(seasons))
	for _, season := range seasons {
		averages = append(averages, models.SeasonalAverage{
			Season:  season.name,
			Average: total * season.multiplier,
		})
	}
	return averages
}

// savingsOpportunities applies three independent heuristics: expensive
// subscriptions, duplicate categories (keep the cheapest, save half of the
// rest), and weekly billing.
func savingsOpportunities(subs []models.Subscription) []models.SavingsOpportunity {
	opportunities := []models.SavingsOpportunity{}

	for _, sub := range subs {
		amount := MonthlyAmount(sub)
		if amount > expensiveThreshold {
			opportunities = append(opportunities, models.SavingsOpportunity{
				Type:             "expensive",
				Description:      fmt.Sprintf("Downgrade or renegotiate %s ($%.2f/month)", sub.Name, amount),
				PotentialSavings: amount * expensiveOppRate,
			})
		}
	}

	buckets := GroupByCategory(subs)
	categories := make([]string, 0, len(buckets))
	for category, members := range buckets {
		if len(members) > 1 {
			categories = append(categories, category)
		}
	}
	sort.Strings(categories)

	for _, category := range categories {
		members := buckets[category]
		cheapest := MonthlyAmount(members[0])
		total := 0.0
		for _, sub := range members {
			amount := MonthlyAmount(sub)
			total += amount
			if amount < cheapest {
				cheapest = amount
			}
		}
		// Keep the cheapest service, save half of what the rest cost.
		opportunities = append(opportunities, models.SavingsOpportunity{
			Type:             "duplicate_category",
			Description:      fmt.Sprintf("Consolidate %d %s services down to one", len(members), category),
			PotentialSavings: (total - cheapest) * duplicateOppRate,
		})
	}

	weeklyTotal := 0.0
	for _, sub := range subs {
		if sub.Cadence == models.CadenceWeekly {
			weeklyTotal += MonthlyAmount(sub)
		}
	}
	if weeklyTotal > 0 {
		opportunities = append(opportunities, models.SavingsOpportunity{
			Type:             "weekly_billing",
			Description:      "Switch weekly-billed services to monthly plans",
			PotentialSavings: weeklyTotal * weeklyOppRate,
		})
	}

	return opportunities
}
