package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killsub/backend/internal/apierror"
	"github.com/killsub/backend/internal/logger"
	"github.com/killsub/backend/internal/plans"
	"github.com/killsub/backend/internal/service"
	"github.com/killsub/backend/pkg/stripe"
)

// maxWebhookBody bounds the Stripe webhook payload we are willing to read.
const maxWebhookBody = 64 * 1024

// BillingHandler handles Stripe billing HTTP requests
type BillingHandler struct {
	billingService service.BillingService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService service.BillingService) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
	}
}

type checkoutRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

// Checkout handles POST /api/v1/billing/checkout
func (h *BillingHandler) Checkout(c *gin.Context) {
	userID := c.GetString("user_id")

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "A plan_id is required"))
		return
	}
	if req.PlanID != plans.Pro && req.PlanID != plans.Business {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, "unknown plan: "+req.PlanID, "Choose the pro or business plan"))
		return
	}

	url, err := h.billingService.CreateCheckout(c.Request.Context(), userID, req.PlanID)
	if err != nil {
		logger.Ctx(c.Request.Context()).Error("failed to create checkout session", logger.Err(err))
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Portal handles POST /api/v1/billing/portal
func (h *BillingHandler) Portal(c *gin.Context) {
	userID := c.GetString("user_id")

	url, err := h.billingService.CreatePortal(c.Request.Context(), userID)
	if err != nil {
		logger.Ctx(c.Request.Context()).Error("failed to create portal session", logger.Err(err))
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Cancel handles POST /api/v1/billing/cancel
// Schedules the Stripe subscription to end at the period boundary; the
// actual downgrade to free happens when the deletion webhook arrives.
func (h *BillingHandler) Cancel(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := h.billingService.CancelPlan(c.Request.Context(), userID); err != nil {
		logger.Ctx(c.Request.Context()).Error("failed to cancel plan", logger.Err(err))
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancellation_scheduled"})
}

// Webhook handles POST /api/v1/billing/webhook
// Stripe retries on non-2xx, so signature failures return 400 and
// processing failures return 500 to trigger a retry.
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, "unreadable body", "Could not read webhook payload"))
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.billingService.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		log := logger.Ctx(c.Request.Context())
		requestID := apierror.GetRequestID(c)
		if errors.Is(err, stripe.ErrInvalidSignature) {
			log.Warn("webhook signature verification failed", logger.Err(err))
			apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, "invalid signature", "Webhook signature verification failed"))
			return
		}
		log.Error("webhook processing failed", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
