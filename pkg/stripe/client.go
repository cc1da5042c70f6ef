// Package stripe provides a thin client for the parts of the Stripe API
// KillSub uses: checkout sessions, the billing portal, subscription
// cancellation, and webhook signature verification. Stripe owns the billing
// state machine; this client only drives it.
package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const apiBase = "https://api.stripe.com/v1"

// Client represents a Stripe API client.
type Client struct {
	SecretKey     string
	WebhookSecret string
	HTTPClient    *http.Client
}

// NewClient creates a new Stripe client.
func NewClient(secretKey, webhookSecret string) *Client {
	return &Client{
		SecretKey:     secretKey,
		WebhookSecret: webhookSecret,
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// post sends a form-encoded request to a Stripe endpoint and decodes the
// JSON response into out.
func (c *Client) post(path string, form url.Values, out interface{}) error {
	req, err := http.NewRequest(http.MethodPost, apiBase+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

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
			Error struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("stripe error (%s): %s", apiErr.Error.Type, apiErr.Error.Message)
		}
		return fmt.Errorf("stripe error (status %d): %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode stripe response: %w", err)
		}
	}

	return nil
}

// Customer represents a Stripe customer.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CreateCustomer creates a Stripe customer for the given user.
func (c *Client) CreateCustomer(email, userID string) (*Customer, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("metadata[user_id]", userID)

	var customer Customer
	if err := c.post("/customers", form, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// CheckoutSession represents a Stripe Checkout session.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateCheckoutSession creates a subscription-mode checkout session for a
// price, returning the hosted payment page URL. Metadata entries are echoed
// back on the completed-session webhook.
func (c *Client) CreateCheckoutSession(customerID, priceID, successURL, cancelURL string, metadata map[string]string) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("mode", "subscription")
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	for key, value := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	var session CheckoutSession
	if err := c.post("/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// PortalSession represents a Stripe billing portal session.
type PortalSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreatePortalSession creates a billing portal session so the customer can
// manage their payment method and plan.
func (c *Client) CreatePortalSession(customerID, returnURL string) (*PortalSession, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("return_url", returnURL)

	var session PortalSession
	if err := c.post("/billing_portal/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Subscription represents a Stripe subscription.
type Subscription struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
}

// CancelSubscription schedules a subscription to cancel at the end of the
// current billing period.
func (c *Client) CancelSubscription(subscriptionID string) (*Subscription, error) {
	form := url.Values{}
	form.Set("cancel_at_period_end", "true")

	var sub Subscription
	if err := c.post("/subscriptions/"+subscriptionID, form, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Event represents a Stripe webhook event.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// webhookTolerance bounds how old a signed webhook payload may be.
const webhookTolerance = 5 * time.Minute

// ErrInvalidSignature is returned when a webhook payload fails
// Stripe-Signature verification, including replayed or malformed headers.
var ErrInvalidSignature = errors.New("webhook signature verification failed")

// ConstructEvent verifies the Stripe-Signature header against the raw
// webhook payload and returns the decoded event.
func (c *Client) ConstructEvent(payload []byte, sigHeader string) (*Event, error) {
	timestamp, signatures, err := parseSigHeader(sigHeader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if time.Since(time.Unix(timestamp, 0)) > webhookTolerance {
		return nil, fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(c.WebhookSecret))
	fmt.Fprintf(mac, "%d.%s", timestamp, payload)
	expected := mac.Sum(nil)

	valid := false
	for _, sig := range signatures {
		decoded, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			valid = true
			break
		}
	}
	if !valid {
		return nil, ErrInvalidSignature
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to decode webhook event: %w", err)
	}

	return &event, nil
}

// parseSigHeader parses "t=<ts>,v1=<sig>[,v1=<sig>...]".
func parseSigHeader(header string) (int64, []string, error) {
	var timestamp int64
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("invalid webhook timestamp: %w", err)
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return 0, nil, fmt.Errorf("malformed Stripe-Signature header")
	}

	return timestamp, signatures, nil
}
