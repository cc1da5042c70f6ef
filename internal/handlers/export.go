package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killsub/backend/internal/apierror"
	"github.com/killsub/backend/internal/logger"
	"github.com/killsub/backend/internal/service"
)

// ExportHandler handles data export HTTP requests
type ExportHandler struct {
	bankService   service.BankService
	detectService service.DetectService
	exportService service.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(bankService service.BankService, detectService service.DetectService, exportService service.ExportService) *ExportHandler {
	return &ExportHandler{
		bankService:   bankService,
		detectService: detectService,
		exportService: exportService,
	}
}

// SubscriptionsCSV handles GET /api/v1/export/subscriptions.csv
// Pulls recent transactions from every connected provider, runs detection
// and streams the result as a CSV download.
func (h *ExportHandler) SubscriptionsCSV(c *gin.Context) {
	userID := c.GetString("user_id")

	endDate := time.Now().UTC().Format("2006-01-02")
	startDate := time.Now().UTC().AddDate(0, 0, -defaultLookbackDays).Format("2006-01-02")

	txs, err := h.bankService.GetTransactions(c.Request.Context(), userID, startDate, endDate)
	if err != nil {
		logger.Ctx(c.Request.Context()).Error("failed to fetch transactions for export", logger.Err(err))
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	subs := h.detectService.DetectSubscriptions(txs)

	csv, err := h.exportService.SubscriptionsCSV(c.Request.Context(), subs)
	if err != nil {
		logger.Ctx(c.Request.Context()).Error("failed to build csv export", logger.Err(err))
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="subscriptions.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", csv)
}
