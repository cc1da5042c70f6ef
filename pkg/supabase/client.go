// Package supabase provides a thin client for the Supabase PostgREST and
// GoTrue APIs. All persistence and auth in KillSub is delegated to Supabase;
// this client is the only code that talks to it.
package supabase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client represents a Supabase client authenticated with the service key.
type Client struct {
	URL        string
	ServiceKey string
	HTTPClient *http.Client
}

// NewClient creates a new Supabase client.
func NewClient(url, serviceKey string) *Client {
	return &Client{
		URL:        url,
		ServiceKey: serviceKey,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// request describes a single PostgREST call.
type request struct {
	method string
	table  string
	query  map[string]interface{}
	body   interface{}
	prefer string
	// userToken, when set, is sent as the bearer token so Postgres
	// row-level security applies to the calling user instead of the
	// service role.
	userToken string
}

func (c *Client) do(r request) ([]byte, error) {
	url := fmt.Sprintf("%s/rest/v1/%s", c.URL, r.table)

	var reqBody io.Reader
	if r.body != nil {
		jsonData, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(r.method, url, reqBody)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	for key, value := range r.query {
		q.Add(key, fmt.Sprintf("%v", value))
	}
	req.URL.RawQuery = q.Encode()

	req.Header.Set("apikey", c.ServiceKey)
	if r.userToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", r.userToken))
	} else {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.ServiceKey))
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.prefer != "" {
		req.Header.Set("Prefer", r.prefer)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("supabase error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// Query executes a filtered select on a Supabase table.
func (c *Client) Query(table string, query map[string]interface{}) ([]byte, error) {
	return c.QueryWithToken(table, query, "")
}

// QueryWithToken executes a query with an optional user JWT token for RLS.
func (c *Client) QueryWithToken(table string, query map[string]interface{}, userToken string) ([]byte, error) {
	return c.do(request{method: http.MethodGet, table: table, query: query, userToken: userToken})
}

// Insert inserts one record (or a batch) into a Supabase table and returns
// the created representation.
func (c *Client) Insert(table string, data interface{}) ([]byte, error) {
	return c.InsertWithToken(table, data, "")
}

// InsertWithToken inserts a record with an optional user JWT token for RLS.
func (c *Client) InsertWithToken(table string, data interface{}, userToken string) ([]byte, error) {
	return c.do(request{
		method:    http.MethodPost,
		table:     table,
		body:      data,
		prefer:    "return=representation",
		userToken: userToken,
	})
}

// Update patches the record with the given id.
func (c *Client) Update(table string, id string, data interface{}) ([]byte, error) {
	return c.UpdateWithToken(table, id, data, "")
}

// UpdateWithToken patches a record with an optional user JWT token for RLS.
func (c *Client) UpdateWithToken(table string, id string, data interface{}, userToken string) ([]byte, error) {
	return c.do(request{
		method:    http.MethodPatch,
		table:     table,
		query:     map[string]interface{}{"id": fmt.Sprintf("eq.%s", id)},
		body:      data,
		prefer:    "return=representation",
		userToken: userToken,
	})
}

// UpdateWhere patches all records matching a query.
func (c *Client) UpdateWhere(table string, query map[string]interface{}, data interface{}) ([]byte, error) {
	return c.do(request{
		method: http.MethodPatch,
		table:  table,
		query:  query,
		body:   data,
		prefer: "return=representation",
	})
}

// Upsert inserts or updates a record. onConflict names the columns used for
// conflict detection (e.g. "user_id,provider").
func (c *Client) Upsert(table string, data interface{}, onConflict string) ([]byte, error) {
	return c.do(request{
		method: http.MethodPost,
		table:  table,
		query:  map[string]interface{}{"on_conflict": onConflict},
		body:   data,
		prefer: "return=representation,resolution=merge-duplicates",
	})
}

// Delete deletes the record with the given id.
func (c *Client) Delete(table string, id string) error {
	return c.DeleteWithToken(table, id, "")
}

// DeleteWithToken deletes a record with an optional user JWT token for RLS.
func (c *Client) DeleteWithToken(table string, id string, userToken string) error {
	_, err := c.do(request{
		method:    http.MethodDelete,
		table:     table,
		query:     map[string]interface{}{"id": fmt.Sprintf("eq.%s", id)},
		userToken: userToken,
	})
	return err
}

// DeleteWhere deletes all records matching a query.
func (c *Client) DeleteWhere(table string, query map[string]interface{}) error {
	_, err := c.do(request{method: http.MethodDelete, table: table, query: query})
	return err
}

// User represents an authenticated Supabase user.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// VerifyToken verifies a JWT access token against the GoTrue user endpoint
// and returns the user it belongs to.
func (c *Client) VerifyToken(token string) (*User, error) {
	url := fmt.Sprintf("%s/auth/v1/user", c.URL)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("apikey", c.ServiceKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("token verification failed (status %d): %s", resp.StatusCode, string(body))
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	return &user, nil
}

// AuthRequest posts a JSON body to a GoTrue auth endpoint (login, signup)
// and returns the raw response body.
func (c *Client) AuthRequest(path string, payload interface{}) ([]byte, error) {
	url := fmt.Sprintf("%s/auth/v1/%s", c.URL, path)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("apikey", c.ServiceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("auth request failed (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}
