package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/killsub/backend/internal/models"
)

// maxInsights caps the generated list. Truncation happens in rule order;
// the client sorts by impact for display.
const maxInsights = 8

// Rule thresholds and scoring constants.
const (
	expensiveThreshold      = 20.0 // monthly-equivalent that makes a subscription "expensive"
	expensiveHighThreshold  = 50.0
	duplicateHighThreshold  = 30.0 // category total that raises duplicate impact to high
	totalSpendThreshold     = 100.0
	totalSpendHighThreshold = 200.0
	lowConfidenceFloor      = 0.7

	expensiveSavingsRate = 0.5
	duplicateSavingsRate = 0.6
	totalSavingsRate     = 0.3
	weeklySavingsRate    = 0.15
)

// GenerateInsights applies the fixed rule sequence to a subscription set and
// returns at most maxInsights insights, in rule-application order.
func GenerateInsights(subs []models.Subscription) []models.Insight {
	insights := []models.Insight{}

	insights = append(insights, expensiveSubscriptionRule(subs)...)
	insights = append(insights, duplicateServiceRule(subs)...)
	insights = append(insights, highTotalSpendRule(subs)...)
	insights = append(insights, lowConfidenceRule(subs)...)
	insights = append(insights, weeklyBillingRule(subs)...)

	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights
}

// expensiveSubscriptionRule flags the single most expensive subscription
// when its monthly-equivalent cost exceeds $20.
func expensiveSubscriptionRule(subs []models.Subscription) []models.Insight {
	var most *models.Subscription
	mostAmount := 0.0
	for i := range subs {
		amount := MonthlyAmount(subs[i])
		if amount > mostAmount {
			most = &subs[i]
			mostAmount = amount
		}
	}
	if most == nil || mostAmount <= expensiveThreshold {
		return nil
	}

	impact := models.ImpactMedium
	if mostAmount > expensiveHighThreshold {
		impact = models.ImpactHigh
	}

	return []models.Insight{{
		ID:               uuid.New().String(),
		Type:             models.InsightSavingsOpportunity,
		Title:            fmt.Sprintf("Review your %s subscription", most.Name),
		Description:      fmt.Sprintf("%s costs $%.2f per month, your most expensive subscription. Check for a cheaper tier or an annual discount.", most.Name, mostAmount),
		Impact:           impact,
		PotentialSavings: mostAmount * expensiveSavingsRate,
		ConfidenceScore:  85,
		ActionItems: []string{
			fmt.Sprintf("Check %s for a cheaper plan tier", most.Name),
			"Look for annual billing discounts",
			"Consider whether you still use it enough",
		},
		Category: Categorize(most.Name),
	}}
}

// duplicateServiceRule emits one insight per category bucket holding more
// than one subscription.
func duplicateServiceRule(subs []models.Subscription) []models.Insight {
	buckets := GroupByCategory(subs)

	// Map iteration order is random; sort bucket names so output is stable.
	categories := make([]string, 0, len(buckets))
	for category, members := range buckets {
		if len(members) > 1 {
			categories = append(categories, category)
		}
	}
	sort.Strings(categories)

	var insights []models.Insight
	for _, category := range categories {
		members := buckets[category]
		total := TotalMonthlySpend(members)

		impact := models.ImpactMedium
		if total > duplicateHighThreshold {
			impact = models.ImpactHigh
		}

		names := make([]string, len(members))
		for i, sub := range members {
			names[i] = sub.Name
		}

		insights = append(insights, models.Insight{
			ID:               uuid.New().String(),
			Type:             models.InsightDuplicateService,
			Title:            fmt.Sprintf("Multiple %s subscriptions", category),
			Description:      fmt.Sprintf("You pay for %d %s services totaling $%.2f per month. Keeping just one could cut most of that.", len(members), category, total),
			Impact:           impact,
			PotentialSavings: total * duplicateSavingsRate,
			ConfidenceScore:  75,
			ActionItems: []string{
				fmt.Sprintf("Compare what you actually use across: %s", strings.Join(names, ", ")),
				"Cancel the overlapping services",
			},
			Category: category,
		})
	}
	return insights
}

// highTotalSpendRule flags total monthly spend above $100.
func highTotalSpendRule(subs []models.Subscription) []models.Insight {
	total := TotalMonthlySpend(subs)
	if total <= totalSpendThreshold {
		return nil
	}

	impact := models.ImpactMedium
	if total > totalSpendHighThreshold {
		impact = models.ImpactHigh
	}

	return []models.Insight{{
		ID:               uuid.New().String(),
		Type:             models.InsightSpendingTrend,
		Title:            "High total subscription spend",
		Description:      fmt.Sprintf("Your subscriptions add up to $%.2f per month ($%.2f per year). A review pass usually trims a third.", total, total*12),
		Impact:           impact,
		PotentialSavings: total * totalSavingsRate,
		ConfidenceScore:  90,
		ActionItems: []string{
			"Rank subscriptions by how often you use them",
			"Cancel the bottom of the list",
			"Set a monthly subscription budget",
		},
	}}
}

// lowConfidenceRule surfaces detections the scanner was unsure about.
func lowConfidenceRule(subs []models.Subscription) []models.Insight {
	count := 0
	for _, sub := range subs {
		if sub.Confidence > 0 && sub.Confidence < lowConfidenceFloor {
			count++
		}
	}
	if count == 0 {
		return nil
	}

	return []models.Insight{{
		ID:              uuid.New().String(),
		Type:            models.InsightUsagePattern,
		Title:           "Some detections need review",
		Description:     fmt.Sprintf("%d detected subscriptions have low confidence. Confirm or dismiss them so your totals stay accurate.", count),
		Impact:          models.ImpactLow,
		ConfidenceScore: 60,
		ActionItems: []string{
			"Review low-confidence detections",
			"Dismiss any one-off charges",
		},
	}}
}

// weeklyBillingRule suggests switching weekly-billed services to monthly or
// annual plans.
func weeklyBillingRule(subs []models.Subscription) []models.Insight {
	weeklyTotal := 0.0
	count := 0
	for _, sub := range subs {
		if sub.Cadence == models.CadenceWeekly {
			weeklyTotal += MonthlyAmount(sub)
			count++
		}
	}
	if count == 0 {
		return nil
	}

	return []models.Insight{{
		ID:               uuid.New().String(),
		Type:             models.InsightPriceOptimization,
		Title:            "Weekly billing costs more",
		Description:      fmt.Sprintf("%d of your subscriptions bill weekly, adding up to $%.2f per month. Monthly or annual plans for the same services are usually cheaper.", count, weeklyTotal),
		Impact:           models.ImpactMedium,
		PotentialSavings: weeklyTotal * weeklySavingsRate,
		ConfidenceScore:  70,
		ActionItems: []string{
			"Check each weekly service for a monthly plan",
			"Switch where the math works out",
		},
	}}
}
