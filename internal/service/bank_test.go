package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/killsub/backend/internal/models"
)

// stubConnRepo answers provider lookups from a canned map. A missing entry
// means not connected; a non-nil error simulates a storage failure.
type stubConnRepo struct {
	connections map[string]*models.BankConnection
	errs        map[string]error
}

func (r *stubConnRepo) ListByUserID(ctx context.Context, userID string) ([]models.BankConnection, error) {
	var result []models.BankConnection
	for _, conn := range r.connections {
		if conn.UserID == userID {
			result = append(result, *conn)
		}
	}
	return result, nil
}

func (r *stubConnRepo) GetByUserAndProvider(ctx context.Context, userID, provider string) (*models.BankConnection, error) {
	if err, ok := r.errs[provider]; ok {
		return nil, err
	}
	conn, ok := r.connections[provider]
	if !ok || conn.UserID != userID {
		return nil, fmt.Errorf("bank connection not found")
	}
	return conn, nil
}

func (r *stubConnRepo) Upsert(ctx context.Context, conn *models.BankConnection) (*models.BankConnection, error) {
	return conn, nil
}

func (r *stubConnRepo) Delete(ctx context.Context, id string) error { return nil }

func statusFor(t *testing.T, statuses []models.ProviderStatus, provider string) models.ProviderStatus {
	t.Helper()
	for _, s := range statuses {
		if s.Provider == provider {
			return s
		}
	}
	t.Fatalf("no status entry for provider %s", provider)
	return models.ProviderStatus{}
}

func TestProviderStatus(t *testing.T) {
	repo := &stubConnRepo{
		connections: map[string]*models.BankConnection{
			models.ProviderPlaid: {ID: "c1", UserID: "u1", Provider: models.ProviderPlaid},
		},
	}
	svc := NewBankService(nil, nil, repo, "", "")

	statuses := svc.ProviderStatus(context.Background(), "u1")
	if len(statuses) != 2 {
		t.Fatalf("got %d statuses, want 2", len(statuses))
	}

	plaid := statusFor(t, statuses, models.ProviderPlaid)
	if !plaid.Connected {
		t.Error("plaid should be connected")
	}
	if plaid.Error != "" {
		t.Errorf("plaid error = %q, want empty", plaid.Error)
	}

	tink := statusFor(t, statuses, models.ProviderTink)
	if tink.Connected {
		t.Error("tink should not be connected")
	}
	if tink.Error != "" {
		t.Errorf("a missing connection is not a failure, got error %q", tink.Error)
	}
}

func TestProviderStatusLookupFailure(t *testing.T) {
	repo := &stubConnRepo{
		errs: map[string]error{
			models.ProviderPlaid: fmt.Errorf("supabase request failed: status 500"),
		},
	}
	svc := NewBankService(nil, nil, repo, "", "")

	statuses := svc.ProviderStatus(context.Background(), "u1")

	plaid := statusFor(t, statuses, models.ProviderPlaid)
	if plaid.Connected {
		t.Error("plaid should not report connected on a lookup failure")
	}
	if plaid.Error == "" {
		t.Error("lookup failure should surface in the status error")
	}

	tink := statusFor(t, statuses, models.ProviderTink)
	if tink.Connected || tink.Error != "" {
		t.Errorf("tink status = %+v, want disconnected with no error", tink)
	}
}
