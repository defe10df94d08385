// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

// Package telegram is a minimal Telegram Bot API client covering the
// two calls the daemon needs: long-polling for updates and sending
// messages. The bot token is held in a secret.Buffer and spliced into
// the request path per call, never stored as a plain string.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pmaojo/agent-swarm-dev/lib/netutil"
	"github.com/pmaojo/agent-swarm-dev/lib/secret"
)

// DefaultBaseURL is the production Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// Update is one item from getUpdates.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an incoming chat message. Fields the daemon does not
// read are omitted.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// User is the sender of a message.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// Name returns the best human-readable identifier for the user:
// @username when set, otherwise the first name.
func (u *User) Name() string {
	if u == nil {
		return "unknown"
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return u.FirstName
}

// APIError is a structured error response from the Bot API.
type APIError struct {
	// Code is the Bot API error code (e.g., 401, 429).
	Code int `json:"error_code"`
	// Description is the human-readable error from the API.
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %d: %s", e.Code, e.Description)
}

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// Token is the bot token. The client reads but never closes it —
	// the caller retains ownership.
	Token *secret.Buffer
	// BaseURL overrides the Bot API endpoint (for tests). If empty,
	// DefaultBaseURL is used.
	BaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient
	// is used. Long polls need a client timeout longer than the poll
	// timeout, or zero.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client talks to the Telegram Bot API for one bot. Safe for
// concurrent use.
type Client struct {
	baseURL    string
	token      *secret.Buffer
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Bot API client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Token == nil {
		return nil, fmt.Errorf("telegram: Token is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("telegram: invalid BaseURL %q: %w", baseURL, err)
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
		token:      config.Token,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// GetUpdates long-polls for updates with update_id >= offset. The
// timeout is the server-side hold; zero makes the call return
// immediately. Returns the (possibly empty) batch of updates.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	query := url.Values{}
	query.Set("offset", strconv.FormatInt(offset, 10))
	query.Set("timeout", strconv.Itoa(int(timeout/time.Second)))

	result, err := c.call(ctx, "getUpdates", query, nil)
	if err != nil {
		return nil, fmt.Errorf("telegram: getUpdates failed: %w", err)
	}

	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("telegram: failed to parse updates: %w", err)
	}
	return updates, nil
}

// SendMessage sends a plain-text message to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	body := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if _, err := c.call(ctx, "sendMessage", nil, body); err != nil {
		return fmt.Errorf("telegram: sendMessage failed: %w", err)
	}
	return nil
}

// call performs one Bot API method call and returns the result
// payload. The Bot API wraps every response in an {ok, result} /
// {ok, error_code, description} envelope; on ok=false this returns
// an *APIError.
func (c *Client) call(ctx context.Context, method string, query url.Values, requestBody any) (json.RawMessage, error) {
	// The token lives in the URL path. Build per call so the full URL
	// is never retained.
	requestURL := c.baseURL + "/bot" + c.token.String() + "/" + method
	if query != nil {
		requestURL += "?" + query.Encode()
	}

	var request *http.Request
	var err error
	if requestBody != nil {
		encoded, marshalErr := json.Marshal(requestBody)
		if marshalErr != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", marshalErr)
		}
		request, err = http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(encoded))
		if err == nil {
			request.Header.Set("Content-Type", "application/json")
		}
	} else {
		request, err = http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", method, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var envelope struct {
		OK          bool            `json:"ok"`
		Result      json.RawMessage `json:"result"`
		ErrorCode   int             `json:"error_code"`
		Description string          `json:"description"`
	}
	if err := json.Unmarshal(responseBody, &envelope); err != nil {
		return nil, fmt.Errorf("unexpected %d response from %s: %s",
			response.StatusCode, method, string(responseBody))
	}
	if !envelope.OK {
		return nil, &APIError{Code: envelope.ErrorCode, Description: envelope.Description}
	}
	return envelope.Result, nil
}
