package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killsub/backend/internal/apierror"
	"github.com/killsub/backend/internal/models"
	"github.com/killsub/backend/internal/service"
)

// SubscriptionsHandler handles subscription detection HTTP requests
type SubscriptionsHandler struct {
	detectService service.DetectService
}

// NewSubscriptionsHandler creates a new subscriptions handler
func NewSubscriptionsHandler(detectService service.DetectService) *SubscriptionsHandler {
	return &SubscriptionsHandler{
		detectService: detectService,
	}
}

type detectRequest struct {
	Transactions []models.Transaction `json:"transactions"`
}

// Detect handles POST /api/v1/subscriptions/detect
// Runs recurring-charge detection over the supplied transaction history.
func (h *SubscriptionsHandler) Detect(c *gin.Context) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Request body must contain a transactions array"))
		return
	}

	subs := h.detectService.DetectSubscriptions(req.Transactions)

	c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
}
