package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/killsub/backend/internal/logger"
	"github.com/killsub/backend/internal/plans"
	"github.com/killsub/backend/internal/repository"
	"github.com/killsub/backend/pkg/stripe"
)

// PlanPrices maps a plan id to its Stripe price id, loaded from the
// environment at startup so test-mode and live-mode prices can differ.
type PlanPrices map[string]string

type billingService struct {
	stripe      *stripe.Client
	profileRepo repository.ProfileRepository
	prices      PlanPrices
	baseURL     string
}

// NewBillingService creates a new billing service
func NewBillingService(client *stripe.Client, profileRepo repository.ProfileRepository, prices PlanPrices, baseURL string) BillingService {
	return &billingService{
		stripe:      client,
		profileRepo: profileRepo,
		prices:      prices,
		baseURL:     baseURL,
	}
}

// CreateCheckout starts a Stripe checkout for upgrading to planID and
// returns the hosted payment URL.
func (s *billingService) CreateCheckout(ctx context.Context, userID, planID string) (string, error) {
	priceID, ok := s.prices[planID]
	if !ok || planID == plans.Free {
		return "", fmt.Errorf("plan %q cannot be purchased", planID)
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load profile: %w", err)
	}

	customerID := ""
	if profile.StripeCustomerID != nil {
		customerID = *profile.StripeCustomerID
	}
	if customerID == "" {
		customer, err := s.stripe.CreateCustomer(profile.Email, userID)
		if err != nil {
			return "", fmt.Errorf("failed to create stripe customer: %w", err)
		}
		customerID = customer.ID
		if err := s.profileRepo.SetStripeIDs(ctx, userID, &customerID, nil); err != nil {
			return "", fmt.Errorf("failed to store stripe customer: %w", err)
		}
	}

	session, err := s.stripe.CreateCheckoutSession(
		customerID,
		priceID,
		s.baseURL+"/dashboard?checkout=success",
		s.baseURL+"/pricing?checkout=cancelled",
		map[string]string{"plan_id": planID},
	)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	return session.URL, nil
}

// CreatePortal returns a billing portal URL for managing the subscription.
func (s *billingService) CreatePortal(ctx context.Context, userID string) (string, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load profile: %w", err)
	}
	if profile.StripeCustomerID == nil {
		return "", fmt.Errorf("no billing account for user")
	}

	session, err := s.stripe.CreatePortalSession(*profile.StripeCustomerID, s.baseURL+"/settings")
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}
	return session.URL, nil
}

// CancelPlan schedules the user's paid subscription to end at period close.
// The plan stays active until the subscription.deleted webhook arrives.
func (s *billingService) CancelPlan(ctx context.Context, userID string) error {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if profile.StripeSubscriptionID == nil {
		return fmt.Errorf("no active paid subscription")
	}

	if _, err := s.stripe.CancelSubscription(*profile.StripeSubscriptionID); err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}
	return nil
}

// HandleWebhook verifies and applies a Stripe webhook event.
func (s *billingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.stripe.ConstructEvent(payload, signature)
	if err != nil {
		return fmt.Errorf("webhook verification failed: %w", err)
	}

	log := logger.Ctx(ctx).With(logger.String("event_type", event.Type), logger.String("event_id", event.ID))

	switch event.Type {
	case "checkout.session.completed":
		var session struct {
			Customer     string            `json:"customer"`
			Subscription string            `json:"subscription"`
			Metadata     map[string]string `json:"metadata"`
		}
		if err := json.Unmarshal(event.Data.Object, &session); err != nil {
			return fmt.Errorf("failed to decode checkout session: %w", err)
		}
		return s.applyPlan(ctx, session.Customer, session.Subscription, session.Metadata["plan_id"])

	case "customer.subscription.updated":
		var sub struct {
			ID       string `json:"id"`
			Customer string `json:"customer"`
			Status   string `json:"status"`
			Items    struct {
				Data []struct {
					Price struct {
						ID string `json:"id"`
					} `json:"price"`
				} `json:"data"`
			} `json:"items"`
		}
		if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
			return fmt.Errorf("failed to decode subscription: %w", err)
		}
		if sub.Status != "active" && sub.Status != "trialing" {
			log.Info("ignoring subscription update", logger.String("status", sub.Status))
			return nil
		}
		planID := ""
		if len(sub.Items.Data) > 0 {
			planID = s.planForPrice(sub.Items.Data[0].Price.ID)
		}
		return s.applyPlan(ctx, sub.Customer, sub.ID, planID)

	case "customer.subscription.deleted":
		var sub struct {
			Customer string `json:"customer"`
		}
		if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
			return fmt.Errorf("failed to decode subscription: %w", err)
		}
		profile, err := s.profileRepo.GetByStripeCustomerID(ctx, sub.Customer)
		if err != nil {
			return fmt.Errorf("failed to find profile for customer: %w", err)
		}
		log.Info("downgrading user to free plan", logger.String("user_id", profile.ID))
		return s.profileRepo.UpdatePlan(ctx, profile.ID, plans.Free)

	default:
		log.Debug("ignoring webhook event")
		return nil
	}
}

// applyPlan stores the Stripe subscription id on the customer's profile and
// moves them onto planID.
func (s *billingService) applyPlan(ctx context.Context, customerID, subscriptionID, planID string) error {
	profile, err := s.profileRepo.GetByStripeCustomerID(ctx, customerID)
	if err != nil {
		return fmt.Errorf("failed to find profile for customer: %w", err)
	}

	if subscriptionID != "" {
		if err := s.profileRepo.SetStripeIDs(ctx, profile.ID, nil, &subscriptionID); err != nil {
			return fmt.Errorf("failed to store subscription id: %w", err)
		}
	}

	if planID == "" {
		logger.Ctx(ctx).Warn("could not resolve plan for subscription",
			logger.String("subscription_id", subscriptionID))
		return nil
	}
	return s.profileRepo.UpdatePlan(ctx, profile.ID, planID)
}

// planForPrice reverse-maps a Stripe price id to a plan id.
func (s *billingService) planForPrice(priceID string) string {
	for planID, price := range s.prices {
		if price == priceID {
			return planID
		}
	}
	return ""
}
