package service

import (
	"context"
	"fmt"
	"time"

	"github.com/killsub/backend/internal/models"
	"github.com/killsub/backend/internal/plans"
	"github.com/killsub/backend/internal/repository"
)

// ErrQuotaExceeded is returned when a user has used up their plan's monthly
// cancellation concierge quota.
var ErrQuotaExceeded = fmt.Errorf("monthly cancellation request limit reached")

// validTransitions encodes the request status machine. Operators move
// requests forward; completed and failed are terminal.
var validTransitions = map[string][]string{
	models.CancellationPending:    {models.CancellationInProgress, models.CancellationCompleted, models.CancellationFailed},
	models.CancellationInProgress: {models.CancellationCompleted, models.CancellationFailed},
}

type cancellationService struct {
	repo repository.CancellationRepository
	now  func() time.Time
}

// NewCancellationService creates a new cancellation service
func NewCancellationService(repo repository.CancellationRepository) CancellationService {
	return &cancellationService{repo: repo, now: time.Now}
}

func (s *cancellationService) ListRequests(ctx context.Context, userID string) ([]models.CancellationRequest, error) {
	requests, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cancellation requests: %w", err)
	}
	return requests, nil
}

func (s *cancellationService) GetRequest(ctx context.Context, userID, requestID string) (*models.CancellationRequest, error) {
	request, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.UserID != userID {
		return nil, fmt.Errorf("cancellation request not found")
	}
	return request, nil
}

func (s *cancellationService) CreateRequest(ctx context.Context, userID, planID string, req *models.CreateCancellationRequest) (*models.CancellationRequest, error) {
	limit := plans.Get(planID).Limits.CancellationsPerMonth
	if limit != plans.Unlimited {
		monthStart := time.Date(s.now().Year(), s.now().Month(), 1, 0, 0, 0, 0, time.UTC)
		used, err := s.repo.CountSince(ctx, userID, monthStart.Format(time.RFC3339))
		if err != nil {
			return nil, fmt.Errorf("failed to check quota: %w", err)
		}
		if used >= limit {
			return nil, ErrQuotaExceeded
		}
	}

	urgency := req.Urgency
	if urgency == "" {
		urgency = models.UrgencyNormal
	}

	request := &models.CancellationRequest{
		UserID:              userID,
		SubscriptionName:    req.SubscriptionName,
		SubscriptionDetails: req.SubscriptionDetails,
		Status:              models.CancellationPending,
		Urgency:             urgency,
	}
	if req.Notes != "" {
		request.Notes = &req.Notes
	}

	created, err := s.repo.Create(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("failed to create cancellation request: %w", err)
	}
	return created, nil
}

func (s *cancellationService) UpdateRequest(ctx context.Context, userID, requestID string, req *models.UpdateCancellationRequest) (*models.CancellationRequest, error) {
	existing, err := s.GetRequest(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{}

	if req.Status != nil && *req.Status != existing.Status {
		if !transitionAllowed(existing.Status, *req.Status) {
			return nil, fmt.Errorf("cannot move request from %s to %s", existing.Status, *req.Status)
		}
		data["status"] = *req.Status
		if *req.Status == models.CancellationCompleted {
			data["completed_at"] = s.now().Format(time.RFC3339)
		}
	}
	if req.Urgency != nil {
		data["urgency"] = *req.Urgency
	}
	if req.Notes.Set {
		if req.Notes.Valid {
			data["notes"] = req.Notes.Value
		} else {
			data["notes"] = nil
		}
	}
	if req.AssignedTo.Set {
		if req.AssignedTo.Valid {
			data["assigned_to"] = req.AssignedTo.Value
		} else {
			data["assigned_to"] = nil
		}
	}

	if len(data) == 0 {
		return existing, nil
	}

	updated, err := s.repo.Update(ctx, requestID, data)
	if err != nil {
		return nil, fmt.Errorf("failed to update cancellation request: %w", err)
	}
	return updated, nil
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
