// Package stripe is a minimal client for the Stripe checkout sessions API.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	sessionsURL = "https://api.stripe.com/v1/checkout/sessions"
	apiVersion  = "2024-09-30"
)

type Client struct {
	secretKey string
	client    *http.Client

	// overridable for tests
	baseURL string
}

// CheckoutSession is the subset of the Stripe session object this
// service consumes.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutParams describe a subscription checkout for one price.
type CheckoutParams struct {
	PriceID           string
	ClientReferenceID string
	SuccessURL        string
	CancelURL         string
	Metadata          map[string]string
}

// New creates a Stripe client from a secret key.
func New(secretKey string) (*Client, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("stripe: secret key is required")
	}
	return &Client{
		secretKey: secretKey,
		client:    &http.Client{Timeout: 30 * time.Second},
		baseURL:   sessionsURL,
	}, nil
}

// CreateCheckoutSession creates a hosted subscription checkout session.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("client_reference_id", params.ClientReferenceID)
	form.Set("line_items[0][price]", params.PriceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	for k, v := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Stripe-Version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("stripe: API %d: %s", resp.StatusCode, string(b))
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("stripe: failed to decode session: %w", err)
	}

	return &session, nil
}
