// Copyright 2026 The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import "fmt"

// APIError is a structured error response from the engine. Callers
// can use errors.As to extract the status code:
//
//	var apiErr *synapse.APIError
//	if errors.As(err, &apiErr) {
//	    if apiErr.StatusCode == http.StatusBadRequest { ... }
//	}
type APIError struct {
	// Message is the human-readable error description from the engine.
	Message string `json:"error"`
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("synapse: %d: %s", e.StatusCode, e.Message)
}
