package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/killsub/backend/internal/models"
	"github.com/killsub/backend/pkg/supabase"
)

type cancellationRepository struct {
	client *supabase.Client
}

// NewCancellationRepository creates a new cancellation request repository
func NewCancellationRepository(client *supabase.Client) CancellationRepository {
	return &cancellationRepository{client: client}
}

func (r *cancellationRepository) ListByUserID(ctx context.Context, userID string) ([]models.CancellationRequest, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"order":   "created_at.desc",
	}

	body, err := r.client.Query("cancellation_requests", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list cancellation requests: %w", err)
	}

	var requests []models.CancellationRequest
	if err := json.Unmarshal(body, &requests); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return requests, nil
}

func (r *cancellationRepository) GetByID(ctx context.Context, id string) (*models.CancellationRequest, error) {
	query := map[string]interface{}{
		"id": fmt.Sprintf("eq.%s", id),
	}

	body, err := r.client.Query("cancellation_requests", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get cancellation request: %w", err)
	}

	var requests []models.CancellationRequest
	if err := json.Unmarshal(body, &requests); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(requests) == 0 {
		return nil, fmt.Errorf("cancellation request not found")
	}

	return &requests[0], nil
}

func (r *cancellationRepository) Create(ctx context.Context, req *models.CancellationRequest) (*models.CancellationRequest, error) {
	data := map[string]interface{}{
		"user_id":              req.UserID,
		"subscription_name":    req.SubscriptionName,
		"subscription_details": req.SubscriptionDetails,
		"status":               req.Status,
		"urgency":              req.Urgency,
	}

	if req.ID != "" {
		data["id"] = req.ID
	}
	if req.Notes != nil {
		data["notes"] = *req.Notes
	}

	body, err := r.client.Insert("cancellation_requests", data)
	if err != nil {
		return nil, fmt.Errorf("failed to create cancellation request: %w", err)
	}

	var requests []models.CancellationRequest
	if err := json.Unmarshal(body, &requests); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(requests) == 0 {
		return nil, fmt.Errorf("no cancellation request returned")
	}

	return &requests[0], nil
}

func (r *cancellationRepository) Update(ctx context.Context, id string, data map[string]interface{}) (*models.CancellationRequest, error) {
	body, err := r.client.Update("cancellation_requests", id, data)
	if err != nil {
		return nil, fmt.Errorf("failed to update cancellation request: %w", err)
	}

	var requests []models.CancellationRequest
	if err := json.Unmarshal(body, &requests); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(requests) == 0 {
		return nil, fmt.Errorf("cancellation request not found")
	}

	return &requests[0], nil
}

// CountSince counts a user's requests created at or after the given
// ISO 8601 timestamp, for monthly quota enforcement.
func (r *cancellationRepository) CountSince(ctx context.Context, userID string, sinceISO string) (int, error) {
	query := map[string]interface{}{
		"user_id":    fmt.Sprintf("eq.%s", userID),
		"created_at": fmt.Sprintf("gte.%s", sinceISO),
		"select":     "id",
	}

	body, err := r.client.Query("cancellation_requests", query)
	if err != nil {
		return 0, fmt.Errorf("failed to count cancellation requests: %w", err)
	}

	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return len(rows), nil
}
