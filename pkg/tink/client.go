// Package tink provides a thin client for the Tink open-banking API, used to
// connect Nordic bank accounts (BankID flows) and pull transactions.
package tink

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const apiBase = "https://api.tink.com"

// Client represents a Tink API client.
type Client struct {
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client
}

// NewClient creates a new Tink client.
func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// BuildConnectURL returns the Tink Link URL the frontend redirects the user
// to for the BankID consent flow.
func (c *Client) BuildConnectURL(redirectURI, market, state string) string {
	q := url.Values{}
	q.Set("client_id", c.ClientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("market", market)
	q.Set("scope", "accounts:read,transactions:read")
	q.Set("state", state)
	return "https://link.tink.com/1.0/transactions/connect-accounts?" + q.Encode()
}

// ExchangeCode exchanges the OAuth authorization code returned by Tink Link
// for an access token.
func (c *Client) ExchangeCode(code string) (*Token, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", c.ClientID)
	form.Set("client_secret", c.ClientSecret)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequest(http.MethodPost, apiBase+"/api/v1/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token Token
	if err := c.doJSON(req, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Token represents a Tink OAuth access token.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// Account represents a connected bank account.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Balances struct {
		Booked struct {
			Amount struct {
				Value struct {
					UnscaledValue string `json:"unscaledValue"`
					Scale         string `json:"scale"`
				} `json:"value"`
				CurrencyCode string `json:"currencyCode"`
			} `json:"amount"`
		} `json:"booked"`
	} `json:"balances"`
}

// GetAccounts lists the accounts available to the access token.
func (c *Client) GetAccounts(accessToken string) ([]Account, error) {
	req, err := http.NewRequest(http.MethodGet, apiBase+"/data/v2/accounts", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var resp struct {
		Accounts []Account `json:"accounts"`
	}
	if err := c.doJSON(req, &resp); err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

// Transaction represents a booked bank transaction.
type Transaction struct {
	ID        string `json:"id"`
	AccountID string `json:"accountId"`
	Amount    struct {
		Value struct {
			UnscaledValue string `json:"unscaledValue"`
			Scale         string `json:"scale"`
		} `json:"value"`
		CurrencyCode string `json:"currencyCode"`
	} `json:"amount"`
	Descriptions struct {
		Original string `json:"original"`
		Display  string `json:"display"`
	} `json:"descriptions"`
	Dates struct {
		Booked string `json:"booked"`
	} `json:"dates"`
	Status string `json:"status"`
}

// GetTransactions pages through all booked transactions available to the
// access token.
func (c *Client) GetTransactions(accessToken string) ([]Transaction, error) {
	var all []Transaction
	pageToken := ""

	for {
		u := apiBase + "/data/v2/transactions"
		if pageToken != "" {
			u += "?pageToken=" + url.QueryEscape(pageToken)
		}

		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)

		var resp struct {
			Transactions  []Transaction `json:"transactions"`
			NextPageToken string        `json:"nextPageToken"`
		}
		if err := c.doJSON(req, &resp); err != nil {
			return nil, err
		}

		all = append(all, resp.Transactions...)
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return all, nil
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
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
		return fmt.Errorf("tink error (status %d): %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode tink response: %w", err)
		}
	}

	return nil
}
