// Package api is the typed HTTP client for the Wake Up Now backend
// contract. Business rules live on the server; this client only shapes
// requests, decodes responses and maps status codes onto sentinel errors
// the views can branch on.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wakeupnow/wakeup/internal/session"
)

var (
	// ErrUnknownUser is returned when login hits an email with no account (HTTP 404).
	// The view should redirect to registration with the email pre-filled.
	ErrUnknownUser = errors.New("no account for this email")
	// ErrInvalidCredentials is returned on HTTP 401 from login
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailExists is returned on HTTP 409 from registration
	ErrEmailExists = errors.New("an account with this email already exists")
	// ErrValidation is returned on HTTP 422 from registration
	ErrValidation = errors.New("registration rejected by server validation")
	// ErrUnauthorized is returned on HTTP 401 from any authenticated resource
	// call. A stale token is indistinguishable from "never logged in", so the
	// caller must clear the local session and return to login.
	ErrUnauthorized = errors.New("session expired or invalid")
)

// Client represents an HTTP client for the Wake Up Now API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client for the given base URL (scheme + host)
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a successful authentication response
type LoginResponse struct {
	Token string       `json:"token"`
	User  session.User `json:"user"`
}

// Login authenticates the user with email and password
func (c *Client) Login(email, password string) (*LoginResponse, error) {
	resp, err := c.postJSON("/api/auth/login", LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrUnknownUser
	case http.StatusUnauthorized:
		return nil, ErrInvalidCredentials
	default:
		return nil, c.statusError("login failed", resp)
	}

	var loginResp LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &loginResp, nil
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	CPF      string `json:"cpf"`
	Password string `json:"password"`
}

// Register creates a new account and returns an authenticated session
func (c *Client) Register(req RegisterRequest) (*LoginResponse, error) {
	resp, err := c.postJSON("/api/auth/register", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusConflict:
		return nil, ErrEmailExists
	case http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%w: %s", ErrValidation, c.errorMessage(resp))
	default:
		return nil, c.statusError("registration failed", resp)
	}

	var loginResp LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &loginResp, nil
}

// SocialUserData carries profile fields handed back by an identity provider
// for an account that does not exist yet
type SocialUserData struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SocialAuthResponse represents the response of the Google/Apple endpoints.
// Either Token+User are set (existing account) or IsNewUser is true and
// UserData carries the prefill fields for registration.
type SocialAuthResponse struct {
	Token     string         `json:"token"`
	User      session.User   `json:"user"`
	IsNewUser bool           `json:"isNewUser"`
	UserData  SocialUserData `json:"userData"`
}

// GoogleSignInRequest represents the Google credential exchange body
type GoogleSignInRequest struct {
	Credential string `json:"credential"`
}

// GoogleSignIn validates a Google identity credential with the backend
func (c *Client) GoogleSignIn(credential string) (*SocialAuthResponse, error) {
	resp, err := c.postJSON("/api/auth/google", GoogleSignInRequest{Credential: credential})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError("google sign-in failed", resp)
	}

	var authResp SocialAuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &authResp, nil
}

// AppleSignInRequest represents the Apple credential exchange body.
// Name and email are only present on the very first authorization.
type AppleSignInRequest struct {
	IdentityToken string `json:"identityToken"`
	AuthCode      string `json:"authCode"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
}

// AppleSignIn validates an Apple identity token with the backend
func (c *Client) AppleSignIn(req AppleSignInRequest) (*SocialAuthResponse, error) {
	resp, err := c.postJSON("/api/auth/apple", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError("apple sign-in failed", resp)
	}

	var authResp SocialAuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &authResp, nil
}

// Logout tells the backend to discard the session. Best effort: the local
// session is cleared by the caller no matter what this returns.
func (c *Client) Logout(token string) error {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/auth/logout", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.statusError("logout failed", resp)
	}
	return nil
}

// postJSON sends a JSON POST without authentication
func (c *Client) postJSON(path string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// authedRequest builds a request carrying the bearer token
func (c *Client) authedRequest(method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

// errorMessage extracts the server's error message from a response body
func (c *Client) errorMessage(resp *http.Response) string {
	body, _ := io.ReadAll(resp.Body)
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return string(body)
}

// statusError formats an unexpected status into an error
func (c *Client) statusError(action string, resp *http.Response) error {
	return fmt.Errorf("%s (status %d): %s", action, resp.StatusCode, c.errorMessage(resp))
}
