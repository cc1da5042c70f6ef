package plans

import "testing"

func TestGetFallsBackToFree(t *testing.T) {
	tests := []struct {
		planID string
		want   string
	}{
		{Free, Free},
		{Pro, Pro},
		{Business, Business},
		{"enterprise", Free},
		{"", Free},
	}

	for _, tt := range tests {
		if got := Get(tt.planID).ID; got != tt.want {
			t.Errorf("Get(%q).ID = %q, want %q", tt.planID, got, tt.want)
		}
	}
}

func TestIsFeatureAllowed(t *testing.T) {
	tests := []struct {
		planID  string
		feature string
		want    bool
	}{
		{Free, FeatureBasicInsights, true},
		{Free, FeatureAdvancedInsights, false},
		{Free, FeatureExport, false},
		{Free, FeatureCancelService, false},
		{Pro, FeatureAdvancedInsights, true},
		{Pro, FeatureCustomAlerts, true},
		{Pro, FeatureExport, true},
		{Pro, FeatureAdvancedAnalytics, false},
		{Pro, FeatureCancelService, false},
		{Business, FeatureAdvancedAnalytics, true},
		{Business, FeatureCancelService, true},
		{"unknown", FeatureBasicInsights, true},
		{"unknown", FeatureExport, false},
	}

	for _, tt := range tests {
		if got := IsFeatureAllowed(tt.planID, tt.feature); got != tt.want {
			t.Errorf("IsFeatureAllowed(%q, %q) = %v, want %v", tt.planID, tt.feature, got, tt.want)
		}
	}
}

func TestRequiredPlanFor(t *testing.T) {
	tests := []struct {
		feature string
		want    string
	}{
		{FeatureBasicInsights, Free},
		{FeatureAdvancedInsights, Pro},
		{FeatureCustomAlerts, Pro},
		{FeatureExport, Pro},
		{FeatureAdvancedAnalytics, Business},
		{FeatureCancelService, Business},
		{"teleportation", ""},
	}

	for _, tt := range tests {
		if got := RequiredPlanFor(tt.feature); got != tt.want {
			t.Errorf("RequiredPlanFor(%q) = %q, want %q", tt.feature, got, tt.want)
		}
	}
}

func TestLimits(t *testing.T) {
	tests := []struct {
		planID string
		want   Limits
	}{
		{Free, Limits{BankAccounts: 1, Subscriptions: 10, CancellationsPerMonth: 0}},
		{Pro, Limits{BankAccounts: 3, Subscriptions: Unlimited, CancellationsPerMonth: 0}},
		{Business, Limits{BankAccounts: Unlimited, Subscriptions: Unlimited, CancellationsPerMonth: 5}},
	}

	for _, tt := range tests {
		if got := Get(tt.planID).Limits; got != tt.want {
			t.Errorf("Get(%q).Limits = %+v, want %+v", tt.planID, got, tt.want)
		}
	}
}

func TestPriceCents(t *testing.T) {
	tests := []struct {
		planID string
		want   int64
	}{
		{Free, 0},
		{Pro, 499},
		{Business, 1299},
	}

	for _, tt := range tests {
		if got := PriceCents(tt.planID); got != tt.want {
			t.Errorf("PriceCents(%q) = %d, want %d", tt.planID, got, tt.want)
		}
	}
}

func TestAllOrderedCheapestFirst(t *testing.T) {
	all := All()
	if len(all) != 3 {
		t.Fatalf("got %d plans, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].MonthlyPrice.LessThan(all[i-1].MonthlyPrice) {
			t.Errorf("plan %s priced below %s", all[i].ID, all[i-1].ID)
		}
	}

	// All returns a copy, not the live table.
	all[0].ID = "mutated"
	if Get(Free).ID != Free {
		t.Error("mutating All() result leaked into the plan table")
	}
}
