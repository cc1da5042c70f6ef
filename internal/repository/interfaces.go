package repository

import (
	"context"

	"github.com/killsub/backend/internal/models"
)

// ProfileRepository defines the interface for profile data access
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	UpdatePlan(ctx context.Context, id, planID string) error
	SetStripeIDs(ctx context.Context, id string, customerID, subscriptionID *string) error
	ListWithConnections(ctx context.Context) ([]models.Profile, error)
}

// AlertRepository defines the interface for alert rule data access
type AlertRepository interface {
	ListByUserID(ctx context.Context, userID string) ([]models.Alert, error)
	GetByID(ctx context.Context, id string) (*models.Alert, error)
	Create(ctx context.Context, alert *models.Alert) (*models.Alert, error)
	Update(ctx context.Context, id string, data map[string]interface{}) (*models.Alert, error)
	Delete(ctx context.Context, id string) error
}

// CancellationRepository defines the interface for cancellation request data access
type CancellationRepository interface {
	ListByUserID(ctx context.Context, userID string) ([]models.CancellationRequest, error)
	GetByID(ctx context.Context, id string) (*models.CancellationRequest, error)
	Create(ctx context.Context, req *models.CancellationRequest) (*models.CancellationRequest, error)
	Update(ctx context.Context, id string, data map[string]interface{}) (*models.CancellationRequest, error)
	CountSince(ctx context.Context, userID string, sinceISO string) (int, error)
}

// BankConnectionRepository defines the interface for bank connection data access
type BankConnectionRepository interface {
	ListByUserID(ctx context.Context, userID string) ([]models.BankConnection, error)
	GetByUserAndProvider(ctx context.Context, userID, provider string) (*models.BankConnection, error)
	Upsert(ctx context.Context, conn *models.BankConnection) (*models.BankConnection, error)
	Delete(ctx context.Context, id string) error
}
