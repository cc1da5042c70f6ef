package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/killsub/backend/internal/models"
	"github.com/killsub/backend/pkg/supabase"
)

type alertRepository struct {
	client *supabase.Client
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(client *supabase.Client) AlertRepository {
	return &alertRepository{client: client}
}

func (r *alertRepository) ListByUserID(ctx context.Context, userID string) ([]models.Alert, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"order":   "created_at.desc",
	}

	body, err := r.client.Query("alerts", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	var alerts []models.Alert
	if err := json.Unmarshal(body, &alerts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return alerts, nil
}

func (r *alertRepository) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	query := map[string]interface{}{
		"id": fmt.Sprintf("eq.%s", id),
	}

	body, err := r.client.Query("alerts", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}

	var alerts []models.Alert
	if err := json.Unmarshal(body, &alerts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(alerts) == 0 {
		return nil, fmt.Errorf("alert not found")
	}

	return &alerts[0], nil
}

func (r *alertRepository) Create(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	data := map[string]interface{}{
		"user_id":   alert.UserID,
		"name":      alert.Name,
		"type":      alert.Type,
		"condition": alert.Condition,
		"enabled":   alert.Enabled,
	}

	if alert.ID != "" {
		data["id"] = alert.ID
	}

	body, err := r.client.Insert("alerts", data)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	var alerts []models.Alert
	if err := json.Unmarshal(body, &alerts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(alerts) == 0 {
		return nil, fmt.Errorf("no alert returned")
	}

	return &alerts[0], nil
}

func (r *alertRepository) Update(ctx context.Context, id string, data map[string]interface{}) (*models.Alert, error) {
	body, err := r.client.Update("alerts", id, data)
	if err != nil {
		return nil, fmt.Errorf("failed to update alert: %w", err)
	}

	var alerts []models.Alert
	if err := json.Unmarshal(body, &alerts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(alerts) == 0 {
		return nil, fmt.Errorf("alert not found")
	}

	return &alerts[0], nil
}

func (r *alertRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Delete("alerts", id); err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	return nil
}
