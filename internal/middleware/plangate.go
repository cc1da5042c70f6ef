package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/killsub/backend/internal/apierror"
	"github.com/killsub/backend/internal/logger"
	"github.com/killsub/backend/internal/plans"
	"github.com/killsub/backend/internal/repository"
)

// RequireFeature gates a route on the caller's plan. It loads the user's
// profile, resolves the plan's entitlements and rejects with a 403 problem
// response when the feature is not included. Unknown or missing profiles
// fall back to the free plan rather than failing the request outright.
func RequireFeature(profiles repository.ProfileRepository, feature string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == "" {
			requestID := apierror.GetRequestID(c)
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
			c.Abort()
			return
		}

		planID := plans.Free
		profile, err := profiles.GetByID(c.Request.Context(), userID)
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("plan gate: profile lookup failed, assuming free plan",
				logger.String("user_id", userID),
				logger.Err(err),
			)
		} else if profile != nil {
			planID = profile.PlanID
		}

		if !plans.IsFeatureAllowed(planID, feature) {
			requestID := apierror.GetRequestID(c)
			required := plans.RequiredPlanFor(feature)
			apierror.WriteProblem(c, apierror.NewPlanRestrictedError(requestID, feature, required))
			c.Abort()
			return
		}

		c.Set("plan_id", planID)
		c.Next()
	}
}

// PlanID returns the plan resolved by RequireFeature, defaulting to free.
func PlanID(c *gin.Context) string {
	if v, ok := c.Get("plan_id"); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return plans.Free
}
