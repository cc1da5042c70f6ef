package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/killsub/backend/internal/logger"
	"github.com/killsub/backend/internal/models"
	"github.com/killsub/backend/internal/plans"
	"github.com/killsub/backend/internal/repository"
	"github.com/killsub/backend/pkg/supabase"
)

type authService struct {
	client      *supabase.Client
	profileRepo repository.ProfileRepository
}

// NewAuthService creates a new auth service
func NewAuthService(client *supabase.Client, profileRepo repository.ProfileRepository) AuthService {
	return &authService{
		client:      client,
		profileRepo: profileRepo,
	}
}

// gotrueResponse is the shape GoTrue returns from token and signup calls.
type gotrueResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	body, err := s.client.AuthRequest("token?grant_type=password", map[string]string{
		"email":    req.Email,
		"password": req.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	var resp gotrueResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &models.AuthResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User: models.User{
			ID:    resp.User.ID,
			Email: resp.User.Email,
		},
	}, nil
}

func (s *authService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	body, err := s.client.AuthRequest("signup", map[string]string{
		"email":    req.Email,
		"password": req.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("signup failed: %w", err)
	}

	var resp gotrueResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	// New users start on the free tier. Profile creation is best-effort;
	// GetProfile backfills it on first authenticated request if this races.
	if resp.User.ID != "" {
		_, err := s.profileRepo.Create(ctx, &models.Profile{
			ID:     resp.User.ID,
			Email:  resp.User.Email,
			PlanID: plans.Free,
		})
		if err != nil && !isDuplicate(err) {
			logger.Ctx(ctx).Warn("failed to create profile at signup", logger.Err(err))
		}
	}

	return &models.AuthResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User: models.User{
			ID:    resp.User.ID,
			Email: resp.User.Email,
		},
	}, nil
}

// GetProfile returns the user's profile, creating a free-tier profile if
// none exists yet.
func (s *authService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err == nil {
		return profile, nil
	}

	created, createErr := s.profileRepo.Create(ctx, &models.Profile{
		ID:     userID,
		PlanID: plans.Free,
	})
	if createErr != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return created, nil
}

func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate")
}
