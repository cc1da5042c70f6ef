package service

import (
	"testing"
	"time"

	"github.com/killsub/backend/internal/models"
)

func day(yyyy int, mm time.Month, dd int) time.Time {
	return time.Date(yyyy, mm, dd, 0, 0, 0, 0, time.UTC)
}

// monthlyCharges builds n charges spaced 30 days apart.
func monthlyCharges(name string, amount float64, n int) []models.Transaction {
	txs := make([]models.Transaction, 0, n)
	start := day(2026, time.January, 5)
	for i := 0; i < n; i++ {
		txs = append(txs, models.Transaction{
			Name:   name,
			Amount: amount,
			Date:   start.AddDate(0, 0, 30*i),
		})
	}
	return txs
}

func TestDetectSubscriptionsMonthly(t *testing.T) {
	svc := NewDetectService()

	subs := svc.DetectSubscriptions(monthlyCharges("Netflix", 15.99, 6))

	if len(subs) != 1 {
		t.Fatalf("got %d subscriptions, want 1", len(subs))
	}
	sub := subs[0]
	if sub.Name != "Netflix" {
		t.Errorf("name = %q, want Netflix", sub.Name)
	}
	if sub.Cadence != models.CadenceMonthly {
		t.Errorf("cadence = %q, want Monthly", sub.Cadence)
	}
	if sub.LastAmount != 15.99 {
		t.Errorf("last amount = %v, want 15.99", sub.LastAmount)
	}
	if sub.Count != 6 {
		t.Errorf("count = %d, want 6", sub.Count)
	}
	// Perfect regularity, consistent amount, six samples
	if sub.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", sub.Confidence)
	}
	if len(sub.Reasons) == 0 {
		t.Error("expected detection reasons")
	}
}

func TestDetectSubscriptionsWeekly(t *testing.T) {
	svc := NewDetectService()

	start := day(2026, time.March, 2)
	var txs []models.Transaction
	for i := 0; i < 5; i++ {
		txs = append(txs, models.Transaction{
			Name:   "Spotify",
			Amount: 2.99,
			Date:   start.AddDate(0, 0, 7*i),
		})
	}

	subs := svc.DetectSubscriptions(txs)

	if len(subs) != 1 {
		t.Fatalf("got %d subscriptions, want 1", len(subs))
	}
	if subs[0].Cadence != models.CadenceWeekly {
		t.Errorf("cadence = %q, want Weekly", subs[0].Cadence)
	}
}

func TestDetectSubscriptionsMergesChargeDescriptors(t *testing.T) {
	svc := NewDetectService()

	start := day(2026, time.January, 10)
	txs := []models.Transaction{
		{Name: "SPOTIFY *1001", Amount: 10.99, Date: start},
		{Name: "SPOTIFY *2002", Amount: 10.99, Date: start.AddDate(0, 0, 30)},
		{Name: "SPOTIFY *3003", Amount: 10.99, Date: start.AddDate(0, 0, 60)},
	}

	subs := svc.DetectSubscriptions(txs)

	if len(subs) != 1 {
		t.Fatalf("descriptor variants did not merge: got %d subscriptions", len(subs))
	}
	if subs[0].Count != 3 {
		t.Errorf("count = %d, want 3", subs[0].Count)
	}
}

func TestDetectSubscriptionsIgnoresNoise(t *testing.T) {
	svc := NewDetectService()

	txs := []models.Transaction{
		// single charge, not recurring
		{Name: "Corner Bakery", Amount: 8.50, Date: day(2026, time.February, 1)},
		// inflow
		{Name: "Payroll", Amount: -2500, Date: day(2026, time.February, 1)},
		// pending
		{Name: "Netflix", Amount: 15.99, Date: day(2026, time.February, 1), Pending: true},
		{Name: "Netflix", Amount: 15.99, Date: day(2026, time.March, 3), Pending: true},
	}

	subs := svc.DetectSubscriptions(txs)

	if len(subs) != 0 {
		t.Errorf("got %d subscriptions from noise, want 0: %+v", len(subs), subs)
	}
}

func TestDetectSubscriptionsIrregularIntervals(t *testing.T) {
	svc := NewDetectService()

	// Charges at wildly varying gaps never land in a cadence window
	txs := []models.Transaction{
		{Name: "Hardware Store", Amount: 45, Date: day(2026, time.January, 2)},
		{Name: "Hardware Store", Amount: 120, Date: day(2026, time.January, 19)},
		{Name: "Hardware Store", Amount: 12, Date: day(2026, time.April, 7)},
	}

	subs := svc.DetectSubscriptions(txs)

	if len(subs) != 0 {
		t.Errorf("irregular merchant detected as subscription: %+v", subs)
	}
}

func TestDetectSubscriptionsSortedByConfidence(t *testing.T) {
	svc := NewDetectService()

	txs := monthlyCharges("Netflix", 15.99, 6)
	// Hulu has fewer samples, so lower confidence
	txs = append(txs, monthlyCharges("Hulu", 7.99, 3)...)

	subs := svc.DetectSubscriptions(txs)

	if len(subs) != 2 {
		t.Fatalf("got %d subscriptions, want 2", len(subs))
	}
	if subs[0].Name != "Netflix" || subs[1].Name != "Hulu" {
		t.Errorf("order = %q, %q; want Netflix first (higher confidence)", subs[0].Name, subs[1].Name)
	}
	if subs[0].Confidence < subs[1].Confidence {
		t.Error("subscriptions not sorted by confidence descending")
	}
}

func TestDetectSubscriptionsPrefersMerchantName(t *testing.T) {
	svc := NewDetectService()

	start := day(2026, time.January, 10)
	txs := []models.Transaction{
		{Name: "POS DEBIT 0142", MerchantName: "Audible", Amount: 14.95, Date: start},
		{Name: "POS DEBIT 9977", MerchantName: "Audible", Amount: 14.95, Date: start.AddDate(0, 0, 30)},
		{Name: "POS DEBIT 3310", MerchantName: "Audible", Amount: 14.95, Date: start.AddDate(0, 0, 60)},
	}

	subs := svc.DetectSubscriptions(txs)

	if len(subs) != 1 {
		t.Fatalf("got %d subscriptions, want 1", len(subs))
	}
	if subs[0].Name != "Audible" {
		t.Errorf("name = %q, want Audible", subs[0].Name)
	}
}

func TestDetectSubscriptionsFirstDate(t *testing.T) {
	svc := NewDetectService()

	subs := svc.DetectSubscriptions(monthlyCharges("Netflix", 15.99, 3))

	if len(subs) != 1 {
		t.Fatalf("got %d subscriptions, want 1", len(subs))
	}
	if subs[0].FirstDate != "2026-01-05" {
		t.Errorf("first date = %q, want 2026-01-05", subs[0].FirstDate)
	}
	if subs[0].LastDate != "2026-03-06" {
		t.Errorf("last date = %q, want 2026-03-06", subs[0].LastDate)
	}
}

func TestDetectSubscriptionsAmountIncreasedReason(t *testing.T) {
	svc := NewDetectService()

	txs := monthlyCharges("JumpyFlix", 9.99, 3)
	txs[2].Amount = 15.99

	subs := svc.DetectSubscriptions(txs)
	if len(subs) != 1 {
		t.Fatalf("got %d subscriptions, want 1", len(subs))
	}

	found := false
	for _, reason := range subs[0].Reasons {
		if reason == reasonAmountIncreased {
			found = true
		}
	}
	if !found {
		t.Errorf("reasons = %v, want %q included", subs[0].Reasons, reasonAmountIncreased)
	}

	// A stable amount never carries the flag.
	stable := svc.DetectSubscriptions(monthlyCharges("Netflix", 15.99, 3))
	for _, reason := range stable[0].Reasons {
		if reason == reasonAmountIncreased {
			t.Errorf("stable amount flagged as increased: %v", stable[0].Reasons)
		}
	}
}

func TestNormalizeMerchant(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SPOTIFY *1234", "spotify"},
		{"Netflix", "netflix"},
		{"  Hulu  ", "hulu"},
		{"AMAZON PRIME 12/05", "amazon prime"},
		{"STORE #42", "store"},
	}

	for _, tt := range tests {
		if got := normalizeMerchant(tt.in); got != tt.want {
			t.Errorf("normalizeMerchant(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
