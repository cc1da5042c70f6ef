package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/killsub/backend/internal/models"
	"github.com/killsub/backend/pkg/supabase"
)

type bankConnectionRepository struct {
	client *supabase.Client
}

// NewBankConnectionRepository creates a new bank connection repository
func NewBankConnectionRepository(client *supabase.Client) BankConnectionRepository {
	return &bankConnectionRepository{client: client}
}

func (r *bankConnectionRepository) ListByUserID(ctx context.Context, userID string) ([]models.BankConnection, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"order":   "created_at.desc",
	}

	body, err := r.client.Query("bank_connections", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank connections: %w", err)
	}

	var connections []models.BankConnection
	if err := json.Unmarshal(body, &connections); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return connections, nil
}

func (r *bankConnectionRepository) GetByUserAndProvider(ctx context.Context, userID, provider string) (*models.BankConnection, error) {
	query := map[string]interface{}{
		"user_id":  fmt.Sprintf("eq.%s", userID),
		"provider": fmt.Sprintf("eq.%s", provider),
	}

	body, err := r.client.Query("bank_connections", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get bank connection: %w", err)
	}

	var connections []models.BankConnection
	if err := json.Unmarshal(body, &connections); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(connections) == 0 {
		return nil, fmt.Errorf("bank connection not found")
	}

	return &connections[0], nil
}

// Upsert creates or replaces a user's connection for a provider. Relinking
// the same provider overwrites the stored token instead of stacking rows.
func (r *bankConnectionRepository) Upsert(ctx context.Context, conn *models.BankConnection) (*models.BankConnection, error) {
	data := map[string]interface{}{
		"user_id":      conn.UserID,
		"provider":     conn.Provider,
		"item_id":      conn.ItemID,
		"access_token": conn.AccessToken,
		"institution":  conn.Institution,
	}

	body, err := r.client.Upsert("bank_connections", data, "user_id,provider")
	if err != nil {
		return nil, fmt.Errorf("failed to upsert bank connection: %w", err)
	}

	var connections []models.BankConnection
	if err := json.Unmarshal(body, &connections); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(connections) == 0 {
		return nil, fmt.Errorf("no bank connection returned")
	}

	return &connections[0], nil
}

func (r *bankConnectionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Delete("bank_connections", id); err != nil {
		return fmt.Errorf("failed to delete bank connection: %w", err)
	}
	return nil
}
