// Package plaid provides a thin client for the Plaid API endpoints KillSub
// uses to link bank accounts and pull transaction history.
package plaid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Environment hosts.
const (
	EnvSandbox    = "sandbox"
	EnvProduction = "production"
)

// Client represents a Plaid API client.
type Client struct {
	ClientID   string
	Secret     string
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new Plaid client for the given environment.
func NewClient(clientID, secret, environment string) *Client {
	host := "https://sandbox.plaid.com"
	if environment == EnvProduction {
		host = "https://production.plaid.com"
	}
	return &Client{
		ClientID:   clientID,
		Secret:     secret,
		BaseURL:    host,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// post sends a JSON request with client credentials injected and decodes the
// response into out.
func (c *Client) post(path string, payload map[string]interface{}, out interface{}) error {
	payload["client_id"] = c.ClientID
	payload["secret"] = c.Secret

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			ErrorCode    string `json:"error_code"`
			ErrorMessage string `json:"error_message"`
		}
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.ErrorCode != "" {
			return fmt.Errorf("plaid error (%s): %s", apiErr.ErrorCode, apiErr.ErrorMessage)
		}
		return fmt.Errorf("plaid error (status %d): %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode plaid response: %w", err)
		}
	}

	return nil
}

// CreateLinkToken creates a Link token used by the frontend to open Plaid
// Link for the given user.
func (c *Client) CreateLinkToken(userID, clientName string) (string, error) {
	payload := map[string]interface{}{
		"user":          map[string]interface{}{"client_user_id": userID},
		"client_name":   clientName,
		"products":      []string{"transactions"},
		"country_codes": []string{"US", "SE", "NO", "DK", "FI"},
		"language":      "en",
	}

	var resp struct {
		LinkToken string `json:"link_token"`
	}
	if err := c.post("/link/token/create", payload, &resp); err != nil {
		return "", err
	}
	return resp.LinkToken, nil
}

// ExchangePublicToken exchanges a Link public token for a persistent access
// token and item id.
func (c *Client) ExchangePublicToken(publicToken string) (accessToken, itemID string, err error) {
	payload := map[string]interface{}{
		"public_token": publicToken,
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		ItemID      string `json:"item_id"`
	}
	if err := c.post("/item/public_token/exchange", payload, &resp); err != nil {
		return "", "", err
	}
	return resp.AccessToken, resp.ItemID, nil
}

// Account represents a linked bank account.
type Account struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Mask      string `json:"mask"`
	Type      string `json:"type"`
	Subtype   string `json:"subtype"`
	Balances  struct {
		Available *float64 `json:"available"`
		Current   *float64 `json:"current"`
		Currency  string   `json:"iso_currency_code"`
	} `json:"balances"`
}

// GetAccounts returns the accounts for a linked item.
func (c *Client) GetAccounts(accessToken string) ([]Account, error) {
	payload := map[string]interface{}{
		"access_token": accessToken,
	}

	var resp struct {
		Accounts []Account `json:"accounts"`
	}
	if err := c.post("/accounts/get", payload, &resp); err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

// Transaction represents a bank transaction.
type Transaction struct {
	TransactionID string   `json:"transaction_id"`
	AccountID     string   `json:"account_id"`
	Name          string   `json:"name"`
	MerchantName  string   `json:"merchant_name"`
	Amount        float64  `json:"amount"`
	Currency      string   `json:"iso_currency_code"`
	Date          string   `json:"date"`
	Pending       bool     `json:"pending"`
	Category      []string `json:"category"`
}

// GetTransactions pages through all transactions for an item in the given
// date range (dates formatted YYYY-MM-DD).
func (c *Client) GetTransactions(accessToken, startDate, endDate string) ([]Transaction, error) {
	const pageSize = 500

	var all []Transaction
	offset := 0

	for {
		payload := map[string]interface{}{
			"access_token": accessToken,
			"start_date":   startDate,
			"end_date":     endDate,
			"options": map[string]interface{}{
				"count":  pageSize,
				"offset": offset,
			},
		}

		var resp struct {
			Transactions      []Transaction `json:"transactions"`
			TotalTransactions int           `json:"total_transactions"`
		}
		if err := c.post("/transactions/get", payload, &resp); err != nil {
			return nil, err
		}

		all = append(all, resp.Transactions...)
		offset = len(all)
		if offset >= resp.TotalTransactions || len(resp.Transactions) == 0 {
			break
		}
	}

	return all, nil
}
