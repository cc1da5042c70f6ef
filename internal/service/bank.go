package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/killsub/backend/internal/models"
	"github.com/killsub/backend/internal/repository"
	"github.com/killsub/backend/pkg/plaid"
	"github.com/killsub/backend/pkg/tink"
)

const clientName = "KillSub"

type bankService struct {
	plaid      *plaid.Client
	tink       *tink.Client
	connRepo   repository.BankConnectionRepository
	tinkMarket string
	baseURL    string
}

// NewBankService creates a new bank service. Either provider client may be
// nil when that integration is not configured.
func NewBankService(plaidClient *plaid.Client, tinkClient *tink.Client, connRepo repository.BankConnectionRepository, tinkMarket, baseURL string) BankService {
	return &bankService{
		plaid:      plaidClient,
		tink:       tinkClient,
		connRepo:   connRepo,
		tinkMarket: tinkMarket,
		baseURL:    baseURL,
	}
}

func (s *bankService) CreatePlaidLinkToken(ctx context.Context, userID string) (string, error) {
	if s.plaid == nil {
		return "", fmt.Errorf("plaid is not configured")
	}
	token, err := s.plaid.CreateLinkToken(userID, clientName)
	if err != nil {
		return "", fmt.Errorf("failed to create link token: %w", err)
	}
	return token, nil
}

func (s *bankService) ExchangePlaidToken(ctx context.Context, userID, publicToken string) (*models.BankConnection, error) {
	if s.plaid == nil {
		return nil, fmt.Errorf("plaid is not configured")
	}

	accessToken, itemID, err := s.plaid.ExchangePublicToken(publicToken)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange public token: %w", err)
	}

	conn, err := s.connRepo.Upsert(ctx, &models.BankConnection{
		UserID:      userID,
		Provider:    models.ProviderPlaid,
		ItemID:      itemID,
		AccessToken: accessToken,
	})
	if err != nil {
		return nil, err
	}

	conn.AccessToken = ""
	return conn, nil
}

func (s *bankService) BuildTinkConnectURL(ctx context.Context, userID string) (string, error) {
	if s.tink == nil {
		return "", fmt.Errorf("tink is not configured")
	}
	// The user id rides in the OAuth state parameter and comes back on the
	// callback, binding the consent flow to the session that started it.
	return s.tink.BuildConnectURL(s.baseURL+"/bank/callback", s.tinkMarket, userID), nil
}

func (s *bankService) CompleteTinkCallback(ctx context.Context, userID, code string) (*models.BankConnection, error) {
	if s.tink == nil {
		return nil, fmt.Errorf("tink is not configured")
	}

	token, err := s.tink.ExchangeCode(code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	conn, err := s.connRepo.Upsert(ctx, &models.BankConnection{
		UserID:      userID,
		Provider:    models.ProviderTink,
		AccessToken: token.AccessToken,
	})
	if err != nil {
		return nil, err
	}

	conn.AccessToken = ""
	return conn, nil
}

// GetAccounts returns accounts from every connected provider.
func (s *bankService) GetAccounts(ctx context.Context, userID string) ([]models.BankAccount, error) {
	connections, err := s.connRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	accounts := []models.BankAccount{}
	for _, conn := range connections {
		switch conn.Provider {
		case models.ProviderPlaid:
			if s.plaid == nil {
				continue
			}
			plaidAccounts, err := s.plaid.GetAccounts(conn.AccessToken)
			if err != nil {
				return nil, fmt.Errorf("failed to get plaid accounts: %w", err)
			}
			for _, a := range plaidAccounts {
				accounts = append(accounts, models.BankAccount{
					ID:       a.AccountID,
					Name:     a.Name,
					Mask:     a.Mask,
					Type:     a.Subtype,
					Balance:  a.Balances.Current,
					Currency: a.Balances.Currency,
					Provider: models.ProviderPlaid,
				})
			}
		case models.ProviderTink:
			if s.tink == nil {
				continue
			}
			tinkAccounts, err := s.tink.GetAccounts(conn.AccessToken)
			if err != nil {
				return nil, fmt.Errorf("failed to get tink accounts: %w", err)
			}
			for _, a := range tinkAccounts {
				balance := scaledAmount(a.Balances.Booked.Amount.Value.UnscaledValue, a.Balances.Booked.Amount.Value.Scale)
				accounts = append(accounts, models.BankAccount{
					ID:       a.ID,
					Name:     a.Name,
					Type:     a.Type,
					Balance:  &balance,
					Currency: a.Balances.Booked.Amount.CurrencyCode,
					Provider: models.ProviderTink,
				})
			}
		}
	}

	return accounts, nil
}

// GetTransactions returns transactions from every connected provider,
// normalized so positive amounts are outflows. Dates are YYYY-MM-DD.
func (s *bankService) GetTransactions(ctx context.Context, userID string, startDate, endDate string) ([]models.Transaction, error) {
	connections, err := s.connRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	txs := []models.Transaction{}
	for _, conn := range connections {
		switch conn.Provider {
		case models.ProviderPlaid:
			if s.plaid == nil {
				continue
			}
			plaidTxs, err := s.plaid.GetTransactions(conn.AccessToken, startDate, endDate)
			if err != nil {
				return nil, fmt.Errorf("failed to get plaid transactions: %w", err)
			}
			for _, t := range plaidTxs {
				date, err := time.Parse("2006-01-02", t.Date)
				if err != nil {
					continue
				}
				txs = append(txs, models.Transaction{
					ID:           t.TransactionID,
					AccountID:    t.AccountID,
					Name:         t.Name,
					MerchantName: t.MerchantName,
					Amount:       t.Amount, // Plaid: positive = outflow
					Currency:     t.Currency,
					Date:         date,
					Pending:      t.Pending,
				})
			}
		case models.ProviderTink:
			if s.tink == nil {
				continue
			}
			tinkTxs, err := s.tink.GetTransactions(conn.AccessToken)
			if err != nil {
				return nil, fmt.Errorf("failed to get tink transactions: %w", err)
			}
			for _, t := range tinkTxs {
				date, err := time.Parse("2006-01-02", t.Dates.Booked)
				if err != nil {
					continue
				}
				name := t.Descriptions.Display
				if name == "" {
					name = t.Descriptions.Original
				}
				// Tink signs outflows negative; flip to the Plaid
				// convention used everywhere downstream.
				amount := -scaledAmount(t.Amount.Value.UnscaledValue, t.Amount.Value.Scale)
				txs = append(txs, models.Transaction{
					ID:        t.ID,
					AccountID: t.AccountID,
					Name:      name,
					Amount:    amount,
					Currency:  t.Amount.CurrencyCode,
					Date:      date,
					Pending:   t.Status != "BOOKED",
				})
			}
		}
	}

	return txs, nil
}

// ProviderStatus checks both providers concurrently, mirroring the
// dashboard's parallel connection probes.
func (s *bankService) ProviderStatus(ctx context.Context, userID string) []models.ProviderStatus {
	providers := []string{models.ProviderPlaid, models.ProviderTink}
	statuses := make([]models.ProviderStatus, len(providers))

	var wg sync.WaitGroup
	for i, provider := range providers {
		wg.Add(1)
		go func(i int, provider string) {
			defer wg.Done()
			status := models.ProviderStatus{Provider: provider}
			_, err := s.connRepo.GetByUserAndProvider(ctx, userID, provider)
			switch {
			case err == nil:
				status.Connected = true
			case !strings.Contains(err.Error(), "not found"):
				status.Error = err.Error()
			}
			statuses[i] = status
		}(i, provider)
	}
	wg.Wait()

	return statuses
}

// scaledAmount converts Tink's unscaled/scale pair into a float amount.
func scaledAmount(unscaled, scale string) float64 {
	value, err := strconv.ParseFloat(unscaled, 64)
	if err != nil {
		return 0
	}
	exp, err := strconv.Atoi(scale)
	if err != nil {
		return value
	}
	return value / math.Pow(10, float64(exp))
}
