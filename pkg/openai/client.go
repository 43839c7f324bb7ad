// Package openai is a minimal client for the OpenAI chat completions API,
// covering only the JSON-mode completion call this service needs.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const completionsURL = "https://api.openai.com/v1/chat/completions"

type Client struct {
	apiKey string
	model  string
	client *http.Client

	// overridable for tests
	baseURL string
}

type request struct {
	Model          string          `json:"model"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Messages       []message       `json:"messages"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// New creates an OpenAI client for the given model.
func New(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: completionsURL,
	}, nil
}

// CompleteJSON sends a system+user prompt pair with JSON-object response
// format and returns the raw completion content. The content is expected
// to be a JSON document; parsing is left to the caller.
func (c *Client) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	body, _ := json.Marshal(request{
		Model:          c.model,
		Temperature:    0.5,
		ResponseFormat: &responseFormat{Type: "json_object"},
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("openai: API %d: %s", resp.StatusCode, string(b))
	}

	var cr response
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("openai: failed to decode response: %w", err)
	}
	// A completion without content falls back to an empty document, so
	// downstream field defaults apply instead of failing the request
	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return "{}", nil
	}
	return cr.Choices[0].Message.Content, nil
}
