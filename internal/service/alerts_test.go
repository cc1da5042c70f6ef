package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/killsub/backend/internal/models"
)

// mockAlertRepository is an in-memory AlertRepository for testing
type mockAlertRepository struct {
	alerts map[string]*models.Alert
}

func newMockAlertRepository() *mockAlertRepository {
	return &mockAlertRepository{alerts: make(map[string]*models.Alert)}
}

func (m *mockAlertRepository) ListByUserID(ctx context.Context, userID string) ([]models.Alert, error) {
	var result []models.Alert
	for _, alert := range m.alerts {
		if alert.UserID == userID {
			result = append(result, *alert)
		}
	}
	return result, nil
}

func (m *mockAlertRepository) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	if alert, ok := m.alerts[id]; ok {
		return alert, nil
	}
	return nil, fmt.Errorf("alert not found")
}

func (m *mockAlertRepository) Create(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	alert.CreatedAt = time.Now()
	alert.UpdatedAt = time.Now()
	m.alerts[alert.ID] = alert
	return alert, nil
}

func (m *mockAlertRepository) Update(ctx context.Context, id string, data map[string]interface{}) (*models.Alert, error) {
	alert, ok := m.alerts[id]
	if !ok {
		return nil, fmt.Errorf("alert not found")
	}
	if name, ok := data["name"].(string); ok {
		alert.Name = name
	}
	if enabled, ok := data["enabled"].(bool); ok {
		alert.Enabled = enabled
	}
	if condition, ok := data["condition"].(models.AlertCondition); ok {
		alert.Condition = condition
	}
	alert.UpdatedAt = time.Now()
	return alert, nil
}

func (m *mockAlertRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.alerts[id]; !ok {
		return fmt.Errorf("alert not found")
	}
	delete(m.alerts, id)
	return nil
}

// recordingNotifier captures delivered notifications
type recordingNotifier struct {
	delivered []models.TriggeredAlert
}

func (n *recordingNotifier) Notify(ctx context.Context, userID string, alert models.TriggeredAlert) error {
	n.delivered = append(n.delivered, alert)
	return nil
}

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestCreateAlertDefaultsEnabled(t *testing.T) {
	svc := NewAlertService(newMockAlertRepository(), &recordingNotifier{})

	alert, err := svc.CreateAlert(context.Background(), "u1", &models.CreateAlertRequest{
		Name: "Spend cap",
		Type: models.AlertSpendingLimit,
		Condition: models.AlertCondition{
			Threshold: floatPtr(100),
		},
	})
	if err != nil {
		t.Fatalf("CreateAlert() error: %v", err)
	}
	if !alert.Enabled {
		t.Error("new alert should default to enabled")
	}

	disabled, err := svc.CreateAlert(context.Background(), "u1", &models.CreateAlertRequest{
		Name:    "Muted",
		Type:    models.AlertNewSubscription,
		Enabled: boolPtr(false),
	})
	if err != nil {
		t.Fatalf("CreateAlert() error: %v", err)
	}
	if disabled.Enabled {
		t.Error("explicit enabled=false was ignored")
	}
}

func TestUpdateAlertOwnership(t *testing.T) {
	repo := newMockAlertRepository()
	svc := NewAlertService(repo, &recordingNotifier{})

	alert, _ := svc.CreateAlert(context.Background(), "owner", &models.CreateAlertRequest{
		Name: "Spend cap",
		Type: models.AlertSpendingLimit,
	})

	name := "hijacked"
	_, err := svc.UpdateAlert(context.Background(), "intruder", alert.ID, &models.UpdateAlertRequest{Name: &name})
	if err == nil {
		t.Error("expected error updating another user's alert")
	}

	if err := svc.DeleteAlert(context.Background(), "intruder", alert.ID); err == nil {
		t.Error("expected error deleting another user's alert")
	}
	if _, ok := repo.alerts[alert.ID]; !ok {
		t.Error("alert was deleted despite ownership check")
	}
}

func TestEvaluateSpendingLimit(t *testing.T) {
	repo := newMockAlertRepository()
	notifier := &recordingNotifier{}
	svc := NewAlertService(repo, notifier)

	_, _ = svc.CreateAlert(context.Background(), "u1", &models.CreateAlertRequest{
		Name:      "Spend cap",
		Type:      models.AlertSpendingLimit,
		Condition: models.AlertCondition{Threshold: floatPtr(50)},
	})

	subs := []models.Subscription{
		{Name: "Netflix", Cadence: models.CadenceMonthly, LastAmount: 40},
		{Name: "Hulu", Cadence: models.CadenceMonthly, LastAmount: 20},
	}

	fired, err := svc.Evaluate(context.Background(), "u1", subs)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(fired) != 1 {
		t.Fatalf("got %d triggered alerts, want 1", len(fired))
	}
	if fired[0].Value != 60 {
		t.Errorf("triggered value = %v, want 60", fired[0].Value)
	}
	if len(notifier.delivered) != 1 {
		t.Errorf("notifier received %d alerts, want 1", len(notifier.delivered))
	}
}

func TestEvaluateSpendingLimitUnderThreshold(t *testing.T) {
	svc := NewAlertService(newMockAlertRepository(), &recordingNotifier{})

	_, _ = svc.CreateAlert(context.Background(), "u1", &models.CreateAlertRequest{
		Name:      "Spend cap",
		Type:      models.AlertSpendingLimit,
		Condition: models.AlertCondition{Threshold: floatPtr(100)},
	})

	fired, err := svc.Evaluate(context.Background(), "u1", []models.Subscription{
		{Name: "Netflix", Cadence: models.CadenceMonthly, LastAmount: 15},
	})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(fired) != 0 {
		t.Errorf("got %d triggered alerts, want 0", len(fired))
	}
}

func TestEvaluateSkipsDisabledAlerts(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewAlertService(newMockAlertRepository(), notifier)

	_, _ = svc.CreateAlert(context.Background(), "u1", &models.CreateAlertRequest{
		Name:      "Muted cap",
		Type:      models.AlertSpendingLimit,
		Condition: models.AlertCondition{Threshold: floatPtr(1)},
		Enabled:   boolPtr(false),
	})

	fired, err := svc.Evaluate(context.Background(), "u1", []models.Subscription{
		{Name: "Netflix", Cadence: models.CadenceMonthly, LastAmount: 100},
	})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(fired) != 0 || len(notifier.delivered) != 0 {
		t.Error("disabled alert fired")
	}
}

func TestEvaluateNewSubscription(t *testing.T) {
	svc := NewAlertService(newMockAlertRepository(), &recordingNotifier{})

	_, _ = svc.CreateAlert(context.Background(), "u1", &models.CreateAlertRequest{
		Name: "New sub watch",
		Type: models.AlertNewSubscription,
	})

	subs := []models.Subscription{
		// Established subscription, not new
		{Name: "Netflix", Cadence: models.CadenceMonthly, LastAmount: 15, Count: 6,
			FirstDate: time.Now().AddDate(0, 0, -170).Format("2006-01-02"),
			LastDate:  time.Now().AddDate(0, 0, -2).Format("2006-01-02")},
		// First charge landed two weeks ago
		{Name: "Mystery Box", Cadence: models.CadenceWeekly, LastAmount: 9.99, Count: 2,
			FirstDate: time.Now().AddDate(0, 0, -14).Format("2006-01-02"),
			LastDate:  time.Now().AddDate(0, 0, -7).Format("2006-01-02")},
	}

	fired, err := svc.Evaluate(context.Background(), "u1", subs)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(fired) != 1 {
		t.Fatalf("got %d triggered alerts, want 1", len(fired))
	}
	if fired[0].Value != 9.99 {
		t.Errorf("triggered value = %v, want 9.99", fired[0].Value)
	}
}

func TestEvaluatePriceIncrease(t *testing.T) {
	svc := NewAlertService(newMockAlertRepository(), &recordingNotifier{})

	_, _ = svc.CreateAlert(context.Background(), "u1", &models.CreateAlertRequest{
		Name: "Price watch",
		Type: models.AlertPriceIncrease,
	})

	subs := []models.Subscription{
		{Name: "Netflix", Cadence: models.CadenceMonthly, LastAmount: 15,
			Reasons: []string{"6 charges at regular intervals"}},
	}
	fired, err := svc.Evaluate(context.Background(), "u1", subs)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(fired) != 0 {
		t.Errorf("got %d triggered alerts without a price jump, want 0", len(fired))
	}

	subs[0].Reasons = append(subs[0].Reasons, "amount increased")
	subs[0].LastAmount = 19.99
	fired, err = svc.Evaluate(context.Background(), "u1", subs)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(fired) != 1 {
		t.Fatalf("got %d triggered alerts, want 1", len(fired))
	}
	if fired[0].Value != 19.99 {
		t.Errorf("triggered value = %v, want 19.99", fired[0].Value)
	}
}

func TestEvaluateCancellationReminder(t *testing.T) {
	svc := NewAlertService(newMockAlertRepository(), &recordingNotifier{})

	_, _ = svc.CreateAlert(context.Background(), "u1", &models.CreateAlertRequest{
		Name:      "Renewal warning",
		Type:      models.AlertCancellationReminder,
		Condition: models.AlertCondition{Threshold: floatPtr(7)},
	})

	// Last charged 25 days ago on a monthly cadence: renews in ~5 days
	subs := []models.Subscription{
		{Name: "Netflix", Cadence: models.CadenceMonthly, LastAmount: 15,
			LastDate: time.Now().AddDate(0, 0, -25).Format("2006-01-02")},
	}

	fired, err := svc.Evaluate(context.Background(), "u1", subs)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(fired) != 1 {
		t.Fatalf("got %d triggered alerts, want 1", len(fired))
	}
}

func TestEvaluateNewSubscriptionFromDetection(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewAlertService(newMockAlertRepository(), notifier)

	_, _ = svc.CreateAlert(context.Background(), "u1", &models.CreateAlertRequest{
		Name: "New sub watch",
		Type: models.AlertNewSubscription,
	})

	charge := func(id string, daysAgo int, amount float64) models.Transaction {
		return models.Transaction{ID: id, Name: "FRESHSTREAM.COM", Amount: amount,
			Date: time.Now().AddDate(0, 0, -daysAgo)}
	}
	subs := NewDetectService().DetectSubscriptions([]models.Transaction{
		charge("t1", 8, 7.99),
		charge("t2", 1, 7.99),
	})
	if len(subs) != 1 {
		t.Fatalf("detected %d subscriptions, want 1", len(subs))
	}

	fired, err := svc.Evaluate(context.Background(), "u1", subs)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(fired) != 1 {
		t.Fatalf("got %d triggered alerts, want 1", len(fired))
	}
	if len(notifier.delivered) != 1 {
		t.Errorf("notifier received %d alerts, want 1", len(notifier.delivered))
	}
}

func TestEvaluatePriceIncreaseFromDetection(t *testing.T) {
	svc := NewAlertService(newMockAlertRepository(), &recordingNotifier{})

	_, _ = svc.CreateAlert(context.Background(), "u1", &models.CreateAlertRequest{
		Name: "Price watch",
		Type: models.AlertPriceIncrease,
	})

	charge := func(id string, daysAgo int, amount float64) models.Transaction {
		return models.Transaction{ID: id, Name: "JUMPYFLIX", Amount: amount,
			Date: time.Now().AddDate(0, 0, -daysAgo)}
	}
	subs := NewDetectService().DetectSubscriptions([]models.Transaction{
		charge("t1", 61, 9.99),
		charge("t2", 31, 9.99),
		charge("t3", 1, 15.99),
	})
	if len(subs) != 1 {
		t.Fatalf("detected %d subscriptions, want 1", len(subs))
	}

	fired, err := svc.Evaluate(context.Background(), "u1", subs)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(fired) != 1 {
		t.Fatalf("got %d triggered alerts, want 1", len(fired))
	}
	if fired[0].Value != 15.99 {
		t.Errorf("triggered value = %v, want 15.99", fired[0].Value)
	}
}

func TestNextChargeDate(t *testing.T) {
	tests := []struct {
		name   string
		sub    models.Subscription
		want   string
		wantOK bool
	}{
		{"monthly", models.Subscription{Cadence: models.CadenceMonthly, LastDate: "2026-01-15"}, "2026-02-15", true},
		{"weekly", models.Subscription{Cadence: models.CadenceWeekly, LastDate: "2026-01-15"}, "2026-01-22", true},
		{"daily", models.Subscription{Cadence: models.CadenceDaily, LastDate: "2026-01-15"}, "2026-01-16", true},
		{"unknown cadence", models.Subscription{Cadence: "Quarterly", LastDate: "2026-01-15"}, "", false},
		{"bad date", models.Subscription{Cadence: models.CadenceMonthly, LastDate: "not-a-date"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := nextChargeDate(tt.sub)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && next.Format("2006-01-02") != tt.want {
				t.Errorf("next = %s, want %s", next.Format("2006-01-02"), tt.want)
			}
		})
	}
}
