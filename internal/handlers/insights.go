package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killsub/backend/internal/apierror"
	"github.com/killsub/backend/internal/models"
	"github.com/killsub/backend/internal/service"
)

// InsightsHandler handles insight generation HTTP requests
type InsightsHandler struct{}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler() *InsightsHandler {
	return &InsightsHandler{}
}

type insightsRequest struct {
	Subscriptions json.RawMessage `json:"subscriptions"`
}

// Generate handles POST /api/v1/insights
// The subscriptions field must be a JSON array; anything else is a 400.
func (h *InsightsHandler) Generate(c *gin.Context) {
	var req insightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Invalid JSON format"))
		return
	}

	var subs []models.Subscription
	if len(req.Subscriptions) == 0 || string(req.Subscriptions) == "null" || json.Unmarshal(req.Subscriptions, &subs) != nil {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, "subscriptions must be an array", "The subscriptions field must be an array"))
		return
	}

	insights := service.GenerateInsights(subs)

	c.JSON(http.StatusOK, gin.H{"insights": insights})
}
