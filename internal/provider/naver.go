package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultTokenURL   = "https://nid.naver.com/oauth2.0/token"
	defaultProfileURL = "https://openapi.naver.com/v1/nid/me"
)

// APIError is the raw error payload the token endpoint returns when a code
// exchange is rejected. It is passed through to the caller as-is.
type APIError struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("code exchange rejected: %s (%s)", e.Code, e.Description)
}

// ProfileError is a profile response whose message field is not "success".
type ProfileError struct {
	ResultCode string `json:"resultcode"`
	Message    string `json:"message"`
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("profile fetch failed: %s (%s)", e.Message, e.ResultCode)
}

type Profile struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Client talks to the Naver OAuth endpoints: authorization-code exchange and
// profile lookup.
type Client struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	authState    string
	tokenURL     string
	profileURL   string
}

func NewClient(clientID, clientSecret, authState string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		clientID:     clientID,
		clientSecret: clientSecret,
		authState:    authState,
		tokenURL:     defaultTokenURL,
		profileURL:   defaultProfileURL,
	}
}

// WithBaseURLs overrides the provider endpoints. Used in tests.
func (c *Client) WithBaseURLs(tokenURL, profileURL string) *Client {
	c.tokenURL = tokenURL
	c.profileURL = profileURL
	return c
}

// ExchangeCode trades an authorization code for the provider's access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	query := url.Values{}
	query.Set("grant_type", "authorization_code")
	query.Set("client_id", c.clientID)
	query.Set("client_secret", c.clientSecret)
	query.Set("code", code)
	query.Set("state", c.authState)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tokenURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request provider token: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		AccessToken string `json:"access_token"`
		Code        string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	if payload.Code != "" || payload.AccessToken == "" {
		return "", &APIError{Code: payload.Code, Description: payload.Description}
	}

	return payload.AccessToken, nil
}

// FetchProfile resolves the provider access token into an external profile.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.profileURL, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("request provider profile: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		ResultCode string  `json:"resultcode"`
		Message    string  `json:"message"`
		Response   Profile `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Profile{}, fmt.Errorf("decode profile response: %w", err)
	}

	if payload.Message != "success" {
		return Profile{}, &ProfileError{ResultCode: payload.ResultCode, Message: payload.Message}
	}
	if payload.Response.ID == "" {
		return Profile{}, &ProfileError{ResultCode: payload.ResultCode, Message: "profile id missing"}
	}

	return payload.Response, nil
}
