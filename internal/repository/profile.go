package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/killsub/backend/internal/models"
	"github.com/killsub/backend/pkg/supabase"
)

type profileRepository struct {
	client *supabase.Client
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(client *supabase.Client) ProfileRepository {
	return &profileRepository{client: client}
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := map[string]interface{}{
		"id": fmt.Sprintf("eq.%s", id),
	}

	body, err := r.client.Query("profiles", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var profiles []models.Profile
	if err := json.Unmarshal(body, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(profiles) == 0 {
		return nil, fmt.Errorf("profile not found")
	}

	return &profiles[0], nil
}

func (r *profileRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*models.Profile, error) {
	query := map[string]interface{}{
		"stripe_customer_id": fmt.Sprintf("eq.%s", customerID),
	}

	body, err := r.client.Query("profiles", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var profiles []models.Profile
	if err := json.Unmarshal(body, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(profiles) == 0 {
		return nil, fmt.Errorf("profile not found")
	}

	return &profiles[0], nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	data := map[string]interface{}{
		"id":      profile.ID,
		"email":   profile.Email,
		"plan_id": profile.PlanID,
	}

	body, err := r.client.Insert("profiles", data)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	var profiles []models.Profile
	if err := json.Unmarshal(body, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(profiles) == 0 {
		return nil, fmt.Errorf("no profile returned")
	}

	return &profiles[0], nil
}

func (r *profileRepository) UpdatePlan(ctx context.Context, id, planID string) error {
	data := map[string]interface{}{
		"plan_id": planID,
	}

	if _, err := r.client.Update("profiles", id, data); err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	return nil
}

func (r *profileRepository) SetStripeIDs(ctx context.Context, id string, customerID, subscriptionID *string) error {
	data := map[string]interface{}{}
	if customerID != nil {
		data["stripe_customer_id"] = *customerID
	}
	if subscriptionID != nil {
		data["stripe_subscription_id"] = *subscriptionID
	}
	if len(data) == 0 {
		return nil
	}

	if _, err := r.client.Update("profiles", id, data); err != nil {
		return fmt.Errorf("failed to update stripe ids: %w", err)
	}
	return nil
}

// ListWithConnections returns profiles that have at least one bank
// connection, used by the alert evaluation job. PostgREST inner-join
// filtering via the embedded resource keeps this a single query.
func (r *profileRepository) ListWithConnections(ctx context.Context) ([]models.Profile, error) {
	query := map[string]interface{}{
		"select": "*,bank_connections!inner(id)",
	}

	body, err := r.client.Query("profiles", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	var profiles []models.Profile
	if err := json.Unmarshal(body, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return profiles, nil
}
