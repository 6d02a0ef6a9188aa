// Package googleauth exchanges an opaque OAuth bearer token for the user's
// identity. The token itself is never parsed or validated locally; identity
// comes from the provider's userinfo endpoint.
package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrInvalidCredential means the provider rejected the supplied token.
var ErrInvalidCredential = errors.New("invalid credential")

// UserInfo is the identity the provider reports for a bearer token.
type UserInfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type Client struct {
	httpClient  *http.Client
	userinfoURL string
}

// NewClient creates a client against the production userinfo endpoint.
func NewClient() *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		userinfoURL: "https://www.googleapis.com/oauth2/v3/userinfo",
	}
}

// FetchUserInfo resolves the identity behind the given access token.
func (c *Client) FetchUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("empty access token: %w", ErrInvalidCredential)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userinfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("userinfo status %d: %w", resp.StatusCode, ErrInvalidCredential)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("userinfo missing email: %w", ErrInvalidCredential)
	}
	return &info, nil
}
