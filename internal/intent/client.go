// Package intent classifies ticket text into intent labels via an external
// model service. Callers degrade gracefully when the service is down, so the
// client reports errors instead of retrying.
package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrClassificationFailed indicates the classifier service call failed.
	ErrClassificationFailed = errors.New("intent classification failed")
)

// Config holds configuration for the classifier client.
type Config struct {
	// BaseURL is the base URL of the classifier service.
	BaseURL string

	// Timeout bounds each classification call.
	Timeout time.Duration
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	return nil
}

// Client calls the intent classifier service over HTTP.
type Client struct {
	config Config
	client *http.Client
}

// NewClient creates a classifier client with the given configuration.
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		config: config,
		client: &http.Client{Timeout: timeout},
	}, nil
}

type classifyRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

type classifyResponse struct {
	Intents []string `json:"intents"`
}

// Classify returns the intent labels for a ticket. An empty result is valid;
// the caller supplies its own fallback.
func (c *Client) Classify(ctx context.Context, subject, description string) ([]string, error) {
	body, err := json.Marshal(classifyRequest{Subject: subject, Description: description})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/classify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrClassificationFailed, resp.StatusCode, string(respBody))
	}

	var out classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return out.Intents, nil
}
