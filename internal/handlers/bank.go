package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killsub/backend/internal/apierror"
	"github.com/killsub/backend/internal/logger"
	"github.com/killsub/backend/internal/service"
)

// defaultLookbackDays is how far back we fetch transactions when the
// client does not pass an explicit range. Detection needs a few billing
// cycles to establish cadence.
const defaultLookbackDays = 180

// BankHandler handles bank provider HTTP requests
type BankHandler struct {
	bankService service.BankService
}

// NewBankHandler creates a new bank handler
func NewBankHandler(bankService service.BankService) *BankHandler {
	return &BankHandler{
		bankService: bankService,
	}
}

// CreatePlaidLinkToken handles POST /api/v1/bank/plaid/link-token
func (h *BankHandler) CreatePlaidLinkToken(c *gin.Context) {
	userID := c.GetString("user_id")

	token, err := h.bankService.CreatePlaidLinkToken(c.Request.Context(), userID)
	if err != nil {
		logger.Ctx(c.Request.Context()).Error("failed to create link token", logger.Err(err))
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"link_token": token})
}

type plaidExchangeRequest struct {
	PublicToken string `json:"public_token" binding:"required"`
}

// ExchangePlaidToken handles POST /api/v1/bank/plaid/exchange
func (h *BankHandler) ExchangePlaidToken(c *gin.Context) {
	userID := c.GetString("user_id")

	var req plaidExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "A public_token is required"))
		return
	}

	conn, err := h.bankService.ExchangePlaidToken(c.Request.Context(), userID, req.PublicToken)
	if err != nil {
		logger.Ctx(c.Request.Context()).Error("failed to exchange public token", logger.Err(err))
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusCreated, conn)
}

// GetAccounts handles GET /api/v1/bank/plaid/accounts
// Accounts from every connected provider are returned, not just Plaid;
// the route name is kept for client compatibility.
func (h *BankHandler) GetAccounts(c *gin.Context) {
	userID := c.GetString("user_id")

	accounts, err := h.bankService.GetAccounts(c.Request.Context(), userID)
	if err != nil {
		logger.Ctx(c.Request.Context()).Error("failed to fetch accounts", logger.Err(err))
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

// GetTransactions handles GET /api/v1/bank/plaid/transactions and
// GET /api/v1/bank/tink/transactions
func (h *BankHandler) GetTransactions(c *gin.Context) {
	userID := c.GetString("user_id")

	endDate := c.DefaultQuery("end_date", time.Now().UTC().Format("2006-01-02"))
	startDate := c.Query("start_date")
	if startDate == "" {
		startDate = time.Now().UTC().AddDate(0, 0, -defaultLookbackDays).Format("2006-01-02")
	}
	for _, d := range []string{startDate, endDate} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			requestID := apierror.GetRequestID(c)
			apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Dates must be in YYYY-MM-DD format"))
			return
		}
	}

	txs, err := h.bankService.GetTransactions(c.Request.Context(), userID, startDate, endDate)
	if err != nil {
		logger.Ctx(c.Request.Context()).Error("failed to fetch transactions", logger.Err(err))
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// TinkConnect handles POST /api/v1/bank/tink/connect
func (h *BankHandler) TinkConnect(c *gin.Context) {
	userID := c.GetString("user_id")

	url, err := h.bankService.BuildTinkConnectURL(c.Request.Context(), userID)
	if err != nil {
		logger.Ctx(c.Request.Context()).Error("failed to build connect url", logger.Err(err))
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

type tinkCallbackRequest struct {
	Code string `json:"code" binding:"required"`
}

// TinkCallback handles POST /api/v1/bank/tink/callback
func (h *BankHandler) TinkCallback(c *gin.Context) {
	userID := c.GetString("user_id")

	var req tinkCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "An authorization code is required"))
		return
	}

	conn, err := h.bankService.CompleteTinkCallback(c.Request.Context(), userID, req.Code)
	if err != nil {
		logger.Ctx(c.Request.Context()).Error("failed to complete tink callback", logger.Err(err))
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusCreated, conn)
}

// Status handles GET /api/v1/bank/status
func (h *BankHandler) Status(c *gin.Context) {
	userID := c.GetString("user_id")

	statuses := h.bankService.ProviderStatus(c.Request.Context(), userID)

	c.JSON(http.StatusOK, gin.H{"providers": statuses})
}
