// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

// Package synapse is the client for the Synapse semantic engine, the
// fact store every swarmd component reads and writes. Facts are
// subject/predicate/object triples in a named namespace; queries are
// SPARQL-shaped text returning variable bindings.
package synapse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pmaojo/agent-swarm-dev/lib/netutil"
)

// Triple is a single fact. Object is either a quoted literal (see
// Literal) or a bare URI.
type Triple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// Condition guards a conditional ingest: the write applies only if
// the store currently holds a triple (Subject, Predicate, Equals).
type Condition struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Equals    string `json:"equals"`
}

// Row is one query result: variable name to value. Keys carry no `?`
// sigil and values carry no literal quoting or URI brackets — the
// client normalizes both on receipt.
type Row map[string]string

// Param binds a named placeholder in query text. A placeholder is
// written `$name` in the query; the engine substitutes the value as a
// term, so literal values must be Literal-wrapped by the caller.
type Param struct {
	Name  string
	Value string
}

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the base URL of the Synapse engine (e.g., "http://127.0.0.1:50051").
	BaseURL string
	// Namespace is the fact namespace all operations target. If empty,
	// "default" is used.
	Namespace string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client talks to one Synapse engine in one namespace. Safe for
// concurrent use.
type Client struct {
	baseURL    string
	namespace  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Synapse client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("synapse: BaseURL is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("synapse: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	namespace := config.Namespace
	if namespace == "" {
		namespace = "default"
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
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		namespace:  namespace,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

type ingestRequest struct {
	Namespace string     `json:"namespace"`
	Triples   []Triple   `json:"triples"`
	When      *Condition `json:"when,omitempty"`
}

type ingestResponse struct {
	Applied bool `json:"applied"`
}

type queryRequest struct {
	Namespace string            `json:"namespace"`
	Query     string            `json:"query"`
	Params    map[string]string `json:"params,omitempty"`
}

type queryResponse struct {
	Rows []map[string]any `json:"rows"`
}

// Ingest writes triples to the store. Writes are upserts keyed on
// (subject, predicate): re-ingesting replaces the object.
func (c *Client) Ingest(ctx context.Context, triples ...Triple) error {
	if len(triples) == 0 {
		return nil
	}

	body := ingestRequest{Namespace: c.namespace, Triples: triples}
	if _, err := c.doRequest(ctx, http.MethodPost, "/v1/triples", body); err != nil {
		return fmt.Errorf("synapse: ingest failed: %w", err)
	}
	return nil
}

// IngestWhen writes triples only if the store currently satisfies the
// condition. The store evaluates the condition and applies the write
// as one atomic step. Returns whether the write was applied; a false
// return with nil error means the condition did not hold.
func (c *Client) IngestWhen(ctx context.Context, cond Condition, triples ...Triple) (bool, error) {
	body := ingestRequest{Namespace: c.namespace, Triples: triples, When: &cond}
	responseBody, err := c.doRequest(ctx, http.MethodPost, "/v1/triples", body)
	if err != nil {
		return false, fmt.Errorf("synapse: conditional ingest failed: %w", err)
	}

	var response ingestResponse
	if err := json.Unmarshal(responseBody, &response); err != nil {
		return false, fmt.Errorf("synapse: failed to parse ingest response: %w", err)
	}
	return response.Applied, nil
}

// Query runs a query and returns its rows, normalized (see Row).
// Placeholders `$name` in the query text are bound server-side from
// params, so values never need splicing into query text.
func (c *Client) Query(ctx context.Context, query string, params ...Param) ([]Row, error) {
	body := queryRequest{Namespace: c.namespace, Query: query}
	if len(params) > 0 {
		body.Params = make(map[string]string, len(params))
		for _, param := range params {
			body.Params[param.Name] = param.Value
		}
	}
	responseBody, err := c.doRequest(ctx, http.MethodPost, "/v1/query", body)
	if err != nil {
		return nil, fmt.Errorf("synapse: query failed: %w", err)
	}

	// Decode with UseNumber so numeric bindings (counts, sums) keep
	// their decimal form instead of going through float64.
	var response queryResponse
	decoder := json.NewDecoder(bytes.NewReader(responseBody))
	decoder.UseNumber()
	if err := decoder.Decode(&response); err != nil {
		return nil, fmt.Errorf("synapse: failed to parse query response: %w", err)
	}

	rows := make([]Row, 0, len(response.Rows))
	for _, raw := range response.Rows {
		rows = append(rows, normalizeRow(raw))
	}
	return rows, nil
}

// normalizeRow strips the `?` binding sigil from keys and surface
// syntax from values. The engine is inconsistent about the sigil
// across query forms, so consumers never see it.
func normalizeRow(raw map[string]any) Row {
	row := make(Row, len(raw))
	for key, value := range raw {
		name := strings.TrimPrefix(key, "?")
		switch v := value.(type) {
		case string:
			row[name] = CleanValue(v)
		case json.Number:
			row[name] = v.String()
		case bool:
			row[name] = fmt.Sprintf("%t", v)
		case nil:
			row[name] = ""
		default:
			row[name] = fmt.Sprintf("%v", v)
		}
	}
	return row
}

// doRequest performs an HTTP request to the engine and returns the
// response body. On 2xx, returns the body. On 4xx/5xx, returns an
// *APIError.
func (c *Client) doRequest(ctx context.Context, method, path string, requestBody any) ([]byte, error) {
	encoded, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	var apiErr APIError
	if jsonErr := json.Unmarshal(responseBody, &apiErr); jsonErr != nil || apiErr.Message == "" {
		return nil, fmt.Errorf("unexpected %d response from %s %s: %s",
			response.StatusCode, method, path, string(responseBody))
	}
	apiErr.StatusCode = response.StatusCode

	return nil, &apiErr
}
