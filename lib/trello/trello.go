// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

// Package trello is a minimal Trello REST client covering board
// polling: listing a board's lists and a list's cards. The API token
// lives in a secret.Buffer and is appended as a query parameter per
// call; the key identifies the application and is a plain string.
package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pmaojo/agent-swarm-dev/lib/netutil"
	"github.com/pmaojo/agent-swarm-dev/lib/secret"
)

// DefaultBaseURL is the production Trello REST endpoint.
const DefaultBaseURL = "https://api.trello.com/1"

// List is a column on a board.
type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Card is a card in a list. Fields the daemon does not read are
// omitted.
type Card struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// APIError is a non-2xx response from the Trello API. Trello error
// bodies are free-form text, not structured JSON.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("trello: %d: %s", e.StatusCode, e.Body)
}

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// Key is the Trello API key. The key identifies the application
	// and is not sensitive on its own.
	Key string
	// Token is the Trello API token. The client reads but never
	// closes it — the caller retains ownership.
	Token *secret.Buffer
	// BaseURL overrides the REST endpoint (for tests). If empty,
	// DefaultBaseURL is used.
	BaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client talks to the Trello REST API with one key/token pair. Safe
// for concurrent use.
type Client struct {
	baseURL    string
	key        string
	token      *secret.Buffer
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Trello client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Key == "" || config.Token == nil {
		return nil, fmt.Errorf("trello: Key and Token are required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("trello: invalid BaseURL %q: %w", baseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		key:        config.Key,
		token:      config.Token,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Lists returns the lists on a board.
func (c *Client) Lists(ctx context.Context, boardID string) ([]List, error) {
	var lists []List
	if err := c.get(ctx, "/boards/"+url.PathEscape(boardID)+"/lists", &lists); err != nil {
		return nil, fmt.Errorf("trello: fetching lists for board %s: %w", boardID, err)
	}
	return lists, nil
}

// Cards returns the cards in a list.
func (c *Client) Cards(ctx context.Context, listID string) ([]Card, error) {
	var cards []Card
	if err := c.get(ctx, "/lists/"+url.PathEscape(listID)+"/cards", &cards); err != nil {
		return nil, fmt.Errorf("trello: fetching cards for list %s: %w", listID, err)
	}
	return cards, nil
}

// get performs an authenticated GET and decodes the JSON response
// into out. On 4xx/5xx, returns an *APIError with the response text.
func (c *Client) get(ctx context.Context, path string, out any) error {
	// Credentials go in query parameters. Build per call so the full
	// URL is never retained.
	query := url.Values{}
	query.Set("key", c.key)
	query.Set("token", c.token.String())
	requestURL := c.baseURL + path + "?" + query.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return &APIError{
			StatusCode: response.StatusCode,
			Body:       strings.TrimSpace(string(responseBody)),
		}
	}

	if err := json.Unmarshal(responseBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
