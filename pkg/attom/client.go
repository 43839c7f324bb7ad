// Package attom is a thin client for the ATTOM property-data API.
package attom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client fetches property data for an address. The response payload is
// schema-less from this system's perspective and stored verbatim.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New creates an ATTOM client. Both the base URL and API key are required.
func New(baseURL, apiKey string) (*Client, error) {
	if baseURL == "" || apiKey == "" {
		return nil, fmt.Errorf("attom: base URL and API key are required")
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// FetchByAddress queries the API with the raw (non-normalized) address.
// Any non-2xx response is an error.
func (c *Client) FetchByAddress(ctx context.Context, rawAddress string) (json.RawMessage, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("attom: invalid base URL: %w", err)
	}
	q := endpoint.Query()
	q.Set("address", rawAddress)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("attom: failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("attom: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("attom: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := body
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return nil, fmt.Errorf("attom: API error (%d): %s", resp.StatusCode, snippet)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("attom: response is not valid JSON")
	}

	return json.RawMessage(body), nil
}
