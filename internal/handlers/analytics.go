package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killsub/backend/internal/apierror"
	"github.com/killsub/backend/internal/models"
	"github.com/killsub/backend/internal/service"
)

// AnalyticsHandler handles advanced analytics HTTP requests
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

type analyticsRequest struct {
	Subscriptions []models.Subscription `json:"subscriptions"`
	Transactions  []models.Transaction  `json:"transactions"`
	TimeRange     string                `json:"time_range"`
}

// Build handles POST /api/v1/analytics
// Plan gating happens in middleware; this handler only computes.
func (h *AnalyticsHandler) Build(c *gin.Context) {
	var req analyticsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Invalid JSON format"))
		return
	}

	analytics := h.analyticsService.BuildAnalytics(req.Subscriptions, req.Transactions, req.TimeRange)

	c.JSON(http.StatusOK, gin.H{"analytics": analytics})
}
