package service

import (
	"context"
	"fmt"
	"time"

	"github.com/killsub/backend/internal/logger"
	"github.com/killsub/backend/internal/models"
	"github.com/killsub/backend/internal/notification"
	"github.com/killsub/backend/internal/repository"
)

// Default alert condition values used when a rule omits them. The
// new-subscription window must be wide enough for the second charge a
// detection needs to have landed even on a monthly cadence.
const (
	defaultPriceIncreasePercent = 10.0
	defaultReminderDays         = 7.0
	defaultNewSubWindowDays     = 45.0
)

type alertService struct {
	alertRepo repository.AlertRepository
	notifier  notification.Notifier
	now       func() time.Time
}

// NewAlertService creates a new alert service
func NewAlertService(alertRepo repository.AlertRepository, notifier notification.Notifier) AlertService {
	return &alertService{
		alertRepo: alertRepo,
		notifier:  notifier,
		now:       time.Now,
	}
}

func (s *alertService) ListAlerts(ctx context.Context, userID string) ([]models.Alert, error) {
	alerts, err := s.alertRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

func (s *alertService) CreateAlert(ctx context.Context, userID string, req *models.CreateAlertRequest) (*models.Alert, error) {
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	alert := &models.Alert{
		UserID:    userID,
		Name:      req.Name,
		Type:      req.Type,
		Condition: req.Condition,
		Enabled:   enabled,
	}

	created, err := s.alertRepo.Create(ctx, alert)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}
	return created, nil
}

func (s *alertService) UpdateAlert(ctx context.Context, userID, alertID string, req *models.UpdateAlertRequest) (*models.Alert, error) {
	existing, err := s.alertRepo.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, fmt.Errorf("alert not found")
	}

	data := map[string]interface{}{}
	if req.Name != nil {
		data["name"] = *req.Name
	}
	if req.Type != nil {
		data["type"] = *req.Type
	}
	if req.Condition != nil {
		data["condition"] = *req.Condition
	}
	if req.Enabled != nil {
		data["enabled"] = *req.Enabled
	}
	if len(data) == 0 {
		return existing, nil
	}

	updated, err := s.alertRepo.Update(ctx, alertID, data)
	if err != nil {
		return nil, fmt.Errorf("failed to update alert: %w", err)
	}
	return updated, nil
}

func (s *alertService) DeleteAlert(ctx context.Context, userID, alertID string) error {
	existing, err := s.alertRepo.GetByID(ctx, alertID)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return fmt.Errorf("alert not found")
	}
	return s.alertRepo.Delete(ctx, alertID)
}

// Evaluate runs the user's enabled alert rules against the current
// subscription set and notifies for each rule that fires.
func (s *alertService) Evaluate(ctx context.Context, userID string, subs []models.Subscription) ([]models.TriggeredAlert, error) {
	alerts, err := s.alertRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	var fired []models.TriggeredAlert
	for _, alert := range alerts {
		if !alert.Enabled {
			continue
		}

		result, ok := s.evaluateRule(alert, subs)
		if !ok {
			continue
		}

		fired = append(fired, result)
		if err := s.notifier.Notify(ctx, userID, result); err != nil {
			logger.Ctx(ctx).Warn("failed to deliver alert notification",
				logger.Err(err),
				logger.String("alert_id", alert.ID),
			)
		}
	}

	return fired, nil
}

func (s *alertService) evaluateRule(alert models.Alert, subs []models.Subscription) (models.TriggeredAlert, bool) {
	now := s.now()

	switch alert.Type {
	case models.AlertSpendingLimit:
		if alert.Condition.Threshold == nil {
			return models.TriggeredAlert{}, false
		}
		total := TotalMonthlySpend(subs)
		if total <= *alert.Condition.Threshold {
			return models.TriggeredAlert{}, false
		}
		return models.TriggeredAlert{
			Alert:   alert,
			Message: fmt.Sprintf("Monthly subscription spend $%.2f is over your $%.2f limit", total, *alert.Condition.Threshold),
			Value:   total,
			FiredAt: now.Format(time.RFC3339),
		}, true

	case models.AlertNewSubscription:
		// A detection whose oldest charge falls inside the window counts
		// as new.
		days := defaultNewSubWindowDays
		if alert.Condition.Threshold != nil {
			days = *alert.Condition.Threshold
		}
		cutoff := now.AddDate(0, 0, -int(days))
		for _, sub := range subs {
			firstDate, err := time.Parse("2006-01-02", sub.FirstDate)
			if err != nil || firstDate.Before(cutoff) {
				continue
			}
			return models.TriggeredAlert{
				Alert:   alert,
				Message: fmt.Sprintf("New subscription detected: %s ($%.2f)", sub.Name, sub.LastAmount),
				Value:   sub.LastAmount,
				FiredAt: now.Format(time.RFC3339),
			}, true
		}
		return models.TriggeredAlert{}, false

	case models.AlertPriceIncrease:
		threshold := defaultPriceIncreasePercent
		if alert.Condition.Threshold != nil {
			threshold = *alert.Condition.Threshold
		}
		// Detection carries only the latest amount, so a price jump shows
		// up as a reason flag from the scanner rather than history here.
		for _, sub := range subs {
			for _, reason := range sub.Reasons {
				if reason == reasonAmountIncreased {
					return models.TriggeredAlert{
						Alert:   alert,
						Message: fmt.Sprintf("%s charged more than its usual amount (threshold %.0f%%)", sub.Name, threshold),
						Value:   sub.LastAmount,
						FiredAt: now.Format(time.RFC3339),
					}, true
				}
			}
		}
		return models.TriggeredAlert{}, false

	case models.AlertCancellationReminder:
		days := defaultReminderDays
		if alert.Condition.Threshold != nil {
			days = *alert.Condition.Threshold
		}
		// Remind ahead of the next expected charge of the most expensive
		// subscription, the one worth reviewing before it renews.
		for _, sub := range subs {
			next, ok := nextChargeDate(sub)
			if !ok {
				continue
			}
			until := next.Sub(now).Hours() / 24
			if until >= 0 && until <= days {
				return models.TriggeredAlert{
					Alert:   alert,
					Message: fmt.Sprintf("%s renews on %s, cancel before then if you no longer need it", sub.Name, next.Format("Jan 2")),
					Value:   sub.LastAmount,
					FiredAt: now.Format(time.RFC3339),
				}, true
			}
		}
		return models.TriggeredAlert{}, false
	}

	return models.TriggeredAlert{}, false
}

// nextChargeDate projects the next billing date from the last charge and
// the cadence.
func nextChargeDate(sub models.Subscription) (time.Time, bool) {
	last, err := time.Parse("2006-01-02", sub.LastDate)
	if err != nil {
		return time.Time{}, false
	}

	switch sub.Cadence {
	case models.CadenceDaily:
		return last.AddDate(0, 0, 1), true
	case models.CadenceWeekly:
		return last.AddDate(0, 0, 7), true
	case models.CadenceMonthly:
		return last.AddDate(0, 1, 0), true
	default:
		return time.Time{}, false
	}
}
