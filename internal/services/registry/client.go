package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rosterid/internal/services"
)

// Identity is one authoritative identity-store record.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Lookuper defines the registry operation the resolver depends on. Lookup
// returns nil when the store has no exact normalized-name match.
type Lookuper interface {
	Lookup(ctx context.Context, normalizedName string) (*Identity, error)
}

// Client provides read-only access to the identity store over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ Lookuper = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates an identity store client. The timeout should be short; a slow
// registry must never block resolution.
func New(baseURL, apiKey string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("registry base url required")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Lookup queries the identity store for an exact normalized-name match.
// A 404 means "not found" and returns (nil, nil); any other failure is an
// ErrExternalService-tagged error for the caller to degrade on.
func (c *Client) Lookup(ctx context.Context, normalizedName string) (*Identity, error) {
	normalizedName = strings.TrimSpace(normalizedName)
	if normalizedName == "" {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/identities?name=%s", c.baseURL, url.QueryEscape(normalizedName))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "registry", "lookup", "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "registry", "lookup", "identity store unreachable", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, services.Wrap(services.ErrExternalService, "registry", "lookup",
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, services.Wrap(services.ErrExternalService, "registry", "lookup", "decode response", err)
	}
	if strings.TrimSpace(identity.ID) == "" {
		return nil, nil
	}
	return &identity, nil
}
