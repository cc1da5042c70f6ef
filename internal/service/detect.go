package service

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/killsub/backend/internal/models"
)

// Detection tuning. A merchant needs at least two charges to be considered
// recurring, and detections below the floor are dropped entirely.
const (
	minOccurrences      = 2
	minDetectConfidence = 0.35
	amountTolerance     = 0.10 // relative amount drift still counted as "same charge"
)

// reasonAmountIncreased flags a detection whose latest charge jumped above
// the prior charges. The price-increase alert rule keys on this string.
const reasonAmountIncreased = "amount increased"

// Cadence windows in days. Intervals outside every window are irregular and
// reduce confidence instead of assigning a cadence.
var cadenceWindows = []struct {
	cadence string
	min     float64
	max     float64
}{
	{models.CadenceDaily, 0.5, 2},
	{models.CadenceWeekly, 5, 9},
	{models.CadenceMonthly, 25, 35},
}

// trailing reference numbers, store ids and dates that vary per charge
var merchantNoise = regexp.MustCompile(`[#*\d]+$|\s+\d{2}[./-]\d{2}(?:[./-]\d{2,4})?$`)

type detectService struct{}

// NewDetectService creates a new subscription detection service.
func NewDetectService() DetectService {
	return &detectService{}
}

// DetectSubscriptions scans a transaction history for recurring charges and
// returns them as subscriptions, highest confidence first.
func (s *detectService) DetectSubscriptions(txs []models.Transaction) []models.Subscription {
	groups := groupByMerchant(txs)

	subs := []models.Subscription{}
	for _, group := range groups {
		if sub, ok := analyzeGroup(group); ok {
			subs = append(subs, sub)
		}
	}

	sort.Slice(subs, func(i, j int) bool {
		if subs[i].Confidence != subs[j].Confidence {
			return subs[i].Confidence > subs[j].Confidence
		}
		return subs[i].Name < subs[j].Name
	})
	return subs
}

// merchantGroup is one merchant's outgoing charges, oldest first.
type merchantGroup struct {
	name string
	txs  []models.Transaction
}

func groupByMerchant(txs []models.Transaction) []merchantGroup {
	byKey := make(map[string][]models.Transaction)
	displayName := make(map[string]string)

	for _, tx := range txs {
		// Positive amounts are outflows (Plaid convention); inflows and
		// pending charges are never subscriptions.
		if tx.Amount <= 0 || tx.Pending {
			continue
		}

		name := tx.MerchantName
		if name == "" {
			name = tx.Name
		}
		key := normalizeMerchant(name)
		if key == "" {
			continue
		}

		byKey[key] = append(byKey[key], tx)
		if _, ok := displayName[key]; !ok {
			displayName[key] = strings.TrimSpace(name)
		}
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	groups := make([]merchantGroup, 0, len(keys))
	for _, key := range keys {
		group := byKey[key]
		sort.Slice(group, func(i, j int) bool { return group[i].Date.Before(group[j].Date) })
		groups = append(groups, merchantGroup{name: displayName[key], txs: group})
	}
	return groups
}

// normalizeMerchant collapses charge descriptors that vary per transaction
// ("SPOTIFY *1234", "SPOTIFY *5678") into one merchant key.
func normalizeMerchant(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	lower = merchantNoise.ReplaceAllString(lower, "")
	return strings.TrimSpace(lower)
}

// analyzeGroup decides whether a merchant's charges look recurring.
func analyzeGroup(group merchantGroup) (models.Subscription, bool) {
	if len(group.txs) < minOccurrences {
		return models.Subscription{}, false
	}

	intervals := make([]float64, 0, len(group.txs)-1)
	for i := 1; i < len(group.txs); i++ {
		days := group.txs[i].Date.Sub(group.txs[i-1].Date).Hours() / 24
		intervals = append(intervals, days)
	}

	cadence, regularity := classifyCadence(intervals)
	amountScore := amountConsistency(group.txs)

	// Confidence blends interval regularity, amount consistency and sample
	// size, weighted toward regularity since that is what makes a charge a
	// subscription.
	countScore := math.Min(float64(len(group.txs))/6.0, 1.0)
	confidence := 0.5*regularity + 0.3*amountScore + 0.2*countScore

	if confidence < minDetectConfidence || cadence == "" {
		return models.Subscription{}, false
	}

	first := group.txs[0]
	last := group.txs[len(group.txs)-1]

	reasons := []string{
		fmt.Sprintf("%d charges from %s", len(group.txs), group.name),
		fmt.Sprintf("%s billing pattern", strings.ToLower(cadence)),
	}
	if amountScore > 0.8 {
		reasons = append(reasons, fmt.Sprintf("consistent amount around $%.2f", last.Amount))
	}
	if priorMean := meanAmount(group.txs[:len(group.txs)-1]); priorMean > 0 && last.Amount > priorMean*(1+amountTolerance) {
		reasons = append(reasons, reasonAmountIncreased)
	}

	return models.Subscription{
		Name:       group.name,
		Cadence:    cadence,
		LastAmount: last.Amount,
		FirstDate:  first.Date.Format("2006-01-02"),
		LastDate:   last.Date.Format("2006-01-02"),
		Count:      len(group.txs),
		Confidence: math.Round(confidence*100) / 100,
		Reasons:    reasons,
	}, true
}

// classifyCadence picks the cadence window containing the median interval
// and scores how many intervals fall inside it.
func classifyCadence(intervals []float64) (string, float64) {
	if len(intervals) == 0 {
		return "", 0
	}

	sorted := make([]float64, len(intervals))
	copy(sorted, intervals)
	sort.Float64s(sorted)
	median := sorted[len(sorted)/2]

	for _, window := range cadenceWindows {
		if median < window.min || median > window.max {
			continue
		}
		inside := 0
		for _, interval := range intervals {
			if interval >= window.min && interval <= window.max {
				inside++
			}
		}
		return window.cadence, float64(inside) / float64(len(intervals))
	}
	return "", 0
}

// amountConsistency scores how stable the charge amount is, 1.0 meaning
// every charge is within tolerance of the mean.
func amountConsistency(txs []models.Transaction) float64 {
	mean := meanAmount(txs)
	if mean == 0 {
		return 0
	}

	within := 0
	for _, tx := range txs {
		if math.Abs(tx.Amount-mean)/mean <= amountTolerance {
			within++
		}
	}
	return float64(within) / float64(len(txs))
}

func meanAmount(txs []models.Transaction) float64 {
	if len(txs) == 0 {
		return 0
	}
	total := 0.0
	for _, tx := range txs {
		total += tx.Amount
	}
	return total / float64(len(txs))
}
