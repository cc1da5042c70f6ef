package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/killsub/backend/internal/apierror"
	"github.com/killsub/backend/internal/logger"
	"github.com/killsub/backend/internal/models"
	"github.com/killsub/backend/internal/service"
)

// AlertsHandler handles alert rule HTTP requests
type AlertsHandler struct {
	alertService service.AlertService
}

// NewAlertsHandler creates a new alerts handler
func NewAlertsHandler(alertService service.AlertService) *AlertsHandler {
	return &AlertsHandler{
		alertService: alertService,
	}
}

// List handles GET /api/v1/alerts
func (h *AlertsHandler) List(c *gin.Context) {
	userID := c.GetString("user_id")

	alerts, err := h.alertService.ListAlerts(c.Request.Context(), userID)
	if err != nil {
		logger.Ctx(c.Request.Context()).Error("failed to list alerts", logger.Err(err))
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// Create handles POST /api/v1/alerts
func (h *AlertsHandler) Create(c *gin.Context) {
	userID := c.GetString("user_id")

	var req models.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Alert name and a valid type are required"))
		return
	}

	alert, err := h.alertService.CreateAlert(c.Request.Context(), userID, &req)
	if err != nil {
		logger.Ctx(c.Request.Context()).Error("failed to create alert", logger.Err(err))
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusCreated, alert)
}

// Update handles PUT /api/v1/alerts/:id
func (h *AlertsHandler) Update(c *gin.Context) {
	userID := c.GetString("user_id")
	alertID := c.Param("id")

	var req models.UpdateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Invalid JSON format"))
		return
	}

	alert, err := h.alertService.UpdateAlert(c.Request.Context(), userID, alertID, &req)
	if err != nil {
		requestID := apierror.GetRequestID(c)
		if strings.Contains(err.Error(), "not found") {
			apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, "alert", alertID))
			return
		}
		logger.Ctx(c.Request.Context()).Error("failed to update alert", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, alert)
}

// Delete handles DELETE /api/v1/alerts/:id
func (h *AlertsHandler) Delete(c *gin.Context) {
	userID := c.GetString("user_id")
	alertID := c.Param("id")

	if err := h.alertService.DeleteAlert(c.Request.Context(), userID, alertID); err != nil {
		requestID := apierror.GetRequestID(c)
		if strings.Contains(err.Error(), "not found") {
			apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, "alert", alertID))
			return
		}
		logger.Ctx(c.Request.Context()).Error("failed to delete alert", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.Status(http.StatusNoContent)
}
