// Package remote is the HTTP client for the per-user document API served by
// fintrack-api.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fintrack/internal/cloudsync"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Auth supplies the identity used against the remote API.
type Auth interface {
	AuthHeaders() map[string]string
	UserID() string
}

// StaticAuth is an Auth with a fixed user and optional bearer token.
type StaticAuth struct {
	User  string
	Token string
}

func (a StaticAuth) UserID() string { return a.User }

func (a StaticAuth) AuthHeaders() map[string]string {
	if a.Token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + a.Token}
}

// StatusError is returned for unexpected HTTP responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote API error: %d - %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL    string
	auth       Auth
	httpClient *http.Client
	now        func() time.Time
}

var _ cloudsync.RemoteStore = (*Client)(nil)

// NewClient returns a client for the API at baseURL. A zero timeout means
// no client-side limit beyond the caller's context.
func NewClient(baseURL string, auth Auth, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		auth:       auth,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

func (c *Client) documentURL(userID string) string {
	return c.baseURL + "/users/" + url.PathEscape(userID) + "/data"
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.auth != nil {
		for k, v := range c.auth.AuthHeaders() {
			req.Header.Set(k, v)
		}
	}
	return req, nil
}

// Fetch returns the stored document of userID, or cloudsync.ErrNotFound.
func (c *Client) Fetch(ctx context.Context, userID string) (core.FinanceState, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.documentURL(userID), nil)
	if err != nil {
		return core.FinanceState{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.FinanceState{}, fmt.Errorf("failed to fetch document: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return core.FinanceState{}, cloudsync.ErrNotFound
	default:
		return core.FinanceState{}, statusError(resp)
	}

	var doc core.UserDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return core.FinanceState{}, fmt.Errorf("failed to decode document: %w", err)
	}
	slog.DebugContext(ctx, "Fetched remote document",
		log.FieldComponent, log.ComponentRemote,
		log.FieldUserID, userID,
		log.FieldUpdatedAt, doc.UpdatedAt)
	return doc.FinanceState, nil
}

// Save replaces the document of userID with state, stamped with the current
// time.
func (c *Client) Save(ctx context.Context, userID string, state core.FinanceState) error {
	doc := core.UserDocument{FinanceState: state, UpdatedAt: c.now().UTC()}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPut, c.documentURL(userID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
