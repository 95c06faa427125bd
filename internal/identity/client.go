// Package identity wraps the remote identity provider's admin API. All
// account and token operations go through the Client, which translates
// provider error codes into the package's sentinel errors so that callers
// never see wire-level details.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Provider error codes as they appear on the wire.
const (
	codeEmailExists     = "EMAIL_EXISTS"
	codeAccountNotFound = "ACCOUNT_NOT_FOUND"
	codeInvalidToken    = "INVALID_TOKEN"
	codeExpiredToken    = "EXPIRED_TOKEN"
	codeRevokedToken    = "REVOKED_TOKEN"
)

// Client interfaces with the identity provider's admin API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a client from loaded credentials.
func NewClient(creds *Credentials) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: strings.TrimRight(creds.Endpoint, "/"),
		apiKey:  creds.APIKey,
	}
}

// Account is the provider's own record of an identity.
type Account struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	DisplayName   string `json:"display_name,omitempty"`
	Disabled      bool   `json:"disabled"`
	EmailVerified bool   `json:"email_verified"`
}

// Token holds the decoded claims of a verified bearer token.
type Token struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	IssuedAt      int64  `json:"issued_at"`
	ExpiresAt     int64  `json:"expires_at"`
}

// AccountUpdate describes a partial account update. Nil fields are left
// unchanged by the provider.
type AccountUpdate struct {
	DisplayName *string `json:"display_name,omitempty"`
	Password    *string `json:"password,omitempty"`
	Disabled    *bool   `json:"disabled,omitempty"`
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// VerifyToken checks an opaque bearer token with the provider and returns
// its decoded claims.
func (c *Client) VerifyToken(ctx context.Context, token string) (*Token, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	var decoded Token
	err := c.do(ctx, http.MethodPost, "/v1/tokens/verify", map[string]string{"token": token}, &decoded)
	if err != nil {
		return nil, err
	}
	return &decoded, nil
}

// CreateAccount registers a new account with the provider.
func (c *Client) CreateAccount(ctx context.Context, email, password, displayName string) (*Account, error) {
	payload := map[string]any{
		"email":          email,
		"password":       password,
		"email_verified": false,
	}
	if displayName != "" {
		payload["display_name"] = displayName
	}

	var account Account
	if err := c.do(ctx, http.MethodPost, "/v1/accounts", payload, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccountByEmail looks up the provider's record for an email address.
func (c *Client) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	var account Account
	path := "/v1/accounts?email=" + url.QueryEscape(email)
	if err := c.do(ctx, http.MethodGet, path, nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateAccount applies a partial update to an account.
func (c *Client) UpdateAccount(ctx context.Context, uid string, update AccountUpdate) (*Account, error) {
	var account Account
	path := "/v1/accounts/" + url.PathEscape(uid)
	if err := c.do(ctx, http.MethodPatch, path, update, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// DisableAccount marks an account as disabled so it can no longer sign in.
func (c *Client) DisableAccount(ctx context.Context, uid string) (*Account, error) {
	disabled := true
	return c.UpdateAccount(ctx, uid, AccountUpdate{Disabled: &disabled})
}

// DeleteAccount removes the provider's record of an account.
func (c *Client) DeleteAccount(ctx context.Context, uid string) error {
	path := "/v1/accounts/" + url.PathEscape(uid)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// SendPasswordResetEmail asks the provider to send a password reset email.
// Delivery is entirely the provider's concern.
func (c *Client) SendPasswordResetEmail(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/v1/password-resets", map[string]string{"email": email}, nil)
}

// do performs one API request and decodes the response into out (when out
// is non-nil and the response has a body).
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeError maps a provider error response onto the sentinel taxonomy.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)

	var parsed errorBody
	_ = json.Unmarshal(data, &parsed)

	switch parsed.Error.Code {
	case codeEmailExists:
		return ErrAlreadyExists
	case codeAccountNotFound:
		return ErrNotFound
	case codeInvalidToken:
		return ErrInvalidToken
	case codeExpiredToken:
		return ErrExpiredToken
	case codeRevokedToken:
		return ErrRevokedToken
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	return &UpstreamError{StatusCode: resp.StatusCode, Code: parsed.Error.Code}
}
