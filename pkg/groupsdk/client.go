package groupsdk

import (
	"net/http"
	"strings"
	"time"
)

// Client calls the groups service on behalf of one user. Token is the bearer
// access token issued by the identity service; it may be empty for the public
// invite lookup and health endpoints.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

// NewClient creates a client with a 10 second request timeout.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Token: token,
	}
}

// WithToken returns a copy of c that authenticates as a different user and
// shares the underlying HTTP client.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.Token = token
	return &clone
}
