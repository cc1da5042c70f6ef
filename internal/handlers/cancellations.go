package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/killsub/backend/internal/apierror"
	"github.com/killsub/backend/internal/logger"
	"github.com/killsub/backend/internal/middleware"
	"github.com/killsub/backend/internal/models"
	"github.com/killsub/backend/internal/service"
)

// CancellationsHandler handles cancellation concierge HTTP requests
type CancellationsHandler struct {
	cancellationService service.CancellationService
}

// NewCancellationsHandler creates a new cancellations handler
func NewCancellationsHandler(cancellationService service.CancellationService) *CancellationsHandler {
	return &CancellationsHandler{
		cancellationService: cancellationService,
	}
}

// List handles GET /api/v1/cancellation-requests
func (h *CancellationsHandler) List(c *gin.Context) {
	userID := c.GetString("user_id")

	requests, err := h.cancellationService.ListRequests(c.Request.Context(), userID)
	if err != nil {
		logger.Ctx(c.Request.Context()).Error("failed to list cancellation requests", logger.Err(err))
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"cancellation_requests": requests})
}

// Get handles GET /api/v1/cancellation-requests/:id
func (h *CancellationsHandler) Get(c *gin.Context) {
	userID := c.GetString("user_id")
	id := c.Param("id")

	request, err := h.cancellationService.GetRequest(c.Request.Context(), userID, id)
	if err != nil {
		requestID := apierror.GetRequestID(c)
		if strings.Contains(err.Error(), "not found") {
			apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, "cancellation request", id))
			return
		}
		logger.Ctx(c.Request.Context()).Error("failed to get cancellation request", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, request)
}

// Create handles POST /api/v1/cancellation-requests
// The plan gate middleware has already verified the feature; the service
// still enforces the per-month quota.
func (h *CancellationsHandler) Create(c *gin.Context) {
	userID := c.GetString("user_id")
	planID := middleware.PlanID(c)

	var req models.CreateCancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "A subscription name is required"))
		return
	}

	request, err := h.cancellationService.CreateRequest(c.Request.Context(), userID, planID, &req)
	if err != nil {
		requestID := apierror.GetRequestID(c)
		if errors.Is(err, service.ErrQuotaExceeded) {
			apierror.WriteProblem(c, apierror.NewQuotaExceededError(requestID, "You have used all cancellation requests included in your plan this month"))
			return
		}
		logger.Ctx(c.Request.Context()).Error("failed to create cancellation request", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusCreated, request)
}

// Update handles PATCH /api/v1/cancellation-requests/:id
func (h *CancellationsHandler) Update(c *gin.Context) {
	userID := c.GetString("user_id")
	id := c.Param("id")

	var req models.UpdateCancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Invalid JSON format"))
		return
	}

	request, err := h.cancellationService.UpdateRequest(c.Request.Context(), userID, id, &req)
	if err != nil {
		requestID := apierror.GetRequestID(c)
		switch {
		case strings.Contains(err.Error(), "not found"):
			apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, "cancellation request", id))
		case strings.Contains(err.Error(), "cannot move request"):
			apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "That status change is not allowed"))
		default:
			logger.Ctx(c.Request.Context()).Error("failed to update cancellation request", logger.Err(err))
			apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		}
		return
	}

	c.JSON(http.StatusOK, request)
}
