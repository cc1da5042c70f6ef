package service

import (
	"context"

	"github.com/killsub/backend/internal/models"
)

// DetectService defines the interface for subscription detection
type DetectService interface {
	DetectSubscriptions(txs []models.Transaction) []models.Subscription
}

// AnalyticsService defines the interface for advanced analytics generation
type AnalyticsService interface {
	BuildAnalytics(subs []models.Subscription, txs []models.Transaction, timeRange string) *models.Analytics
}

// AlertService defines the interface for alert rule business logic
type AlertService interface {
	ListAlerts(ctx context.Context, userID string) ([]models.Alert, error)
	CreateAlert(ctx context.Context, userID string, req *models.CreateAlertRequest) (*models.Alert, error)
	UpdateAlert(ctx context.Context, userID, alertID string, req *models.UpdateAlertRequest) (*models.Alert, error)
	DeleteAlert(ctx context.Context, userID, alertID string) error
	Evaluate(ctx context.Context, userID string, subs []models.Subscription) ([]models.TriggeredAlert, error)
}

// CancellationService defines the interface for cancel-for-me requests
type CancellationService interface {
	ListRequests(ctx context.Context, userID string) ([]models.CancellationRequest, error)
	GetRequest(ctx context.Context, userID, requestID string) (*models.CancellationRequest, error)
	CreateRequest(ctx context.Context, userID, planID string, req *models.CreateCancellationRequest) (*models.CancellationRequest, error)
	UpdateRequest(ctx context.Context, userID, requestID string, req *models.UpdateCancellationRequest) (*models.CancellationRequest, error)
}

// BillingService defines the interface for Stripe billing operations
type BillingService interface {
	CreateCheckout(ctx context.Context, userID, planID string) (string, error)
	CreatePortal(ctx context.Context, userID string) (string, error)
	CancelPlan(ctx context.Context, userID string) error
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error)
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
}

// BankService defines the interface for bank provider integrations
type BankService interface {
	CreatePlaidLinkToken(ctx context.Context, userID string) (string, error)
	ExchangePlaidToken(ctx context.Context, userID, publicToken string) (*models.BankConnection, error)
	GetAccounts(ctx context.Context, userID string) ([]models.BankAccount, error)
	GetTransactions(ctx context.Context, userID string, startDate, endDate string) ([]models.Transaction, error)
	BuildTinkConnectURL(ctx context.Context, userID string) (string, error)
	CompleteTinkCallback(ctx context.Context, userID, code string) (*models.BankConnection, error)
	ProviderStatus(ctx context.Context, userID string) []models.ProviderStatus
}

// ExportService defines the interface for data export
type ExportService interface {
	SubscriptionsCSV(ctx context.Context, subs []models.Subscription) ([]byte, error)
}
