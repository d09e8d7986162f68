// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rag provides the HTTP client for the RAG backend API.
//
// This file implements the bearer-token source with single-flight refresh.
// When several requests hit a 401 at the same time, exactly one refresh call
// goes to the backend; the other callers subscribe to its result instead of
// issuing their own.
package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const (
	refreshPath = "/api/v1/auth/refresh"

	// refreshTimeout bounds a single refresh round-trip independently of
	// the caller's context.
	refreshTimeout = 15 * time.Second
)

// =============================================================================
// TOKEN SOURCE
// =============================================================================

// TokenSource holds the access/refresh token pair and performs single-flight
// refreshes. Safe for concurrent use.
type TokenSource struct {
	mu      sync.Mutex
	tokens  TokenPair
	baseURL string
	client  *http.Client

	// inflight is non-nil while a refresh is running; waiters receive the
	// refresh outcome when it closes.
	inflight chan struct{}
	lastErr  error
}

// NewTokenSource creates a token source for the given backend.
func NewTokenSource(baseURL string, tokens TokenPair) *TokenSource {
	return &TokenSource{
		tokens:  tokens,
		baseURL: baseURL,
		client:  &http.Client{Timeout: refreshTimeout},
	}
}

// AccessToken returns the current access token ("" if none).
func (ts *TokenSource) AccessToken() string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.tokens.AccessToken
}

// SetTokens replaces the stored token pair (e.g. after login).
func (ts *TokenSource) SetTokens(tokens TokenPair) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.tokens = tokens
}

// Clear drops both tokens.
func (ts *TokenSource) Clear() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.tokens = TokenPair{}
}

// Refresh exchanges the refresh token for a new pair. If a refresh is
// already in flight, the caller blocks on its outcome instead of starting
// another one.
func (ts *TokenSource) Refresh(ctx context.Context) error {
	ts.mu.Lock()

	if ts.inflight != nil {
		// Subscribe to the in-flight refresh.
		done := ts.inflight
		ts.mu.Unlock()
		select {
		case <-done:
			ts.mu.Lock()
			err := ts.lastErr
			ts.mu.Unlock()
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if ts.tokens.RefreshToken == "" {
		ts.mu.Unlock()
		return ErrAuthFailed
	}

	done := make(chan struct{})
	ts.inflight = done
	refreshToken := ts.tokens.RefreshToken
	ts.mu.Unlock()

	tokens, err := ts.doRefresh(ctx, refreshToken)

	ts.mu.Lock()
	if err == nil {
		ts.tokens = tokens
	} else {
		// A failed refresh invalidates the pair; the user must log in again.
		ts.tokens = TokenPair{}
	}
	ts.lastErr = err
	ts.inflight = nil
	close(done)
	ts.mu.Unlock()

	return err
}

// doRefresh performs the actual refresh round-trip.
func (ts *TokenSource) doRefresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	payload, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return TokenPair{}, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal refresh request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.baseURL+refreshPath, bytes.NewReader(payload))
	if err != nil {
		return TokenPair{}, &ClientError{Type: ErrTypeConnection, Message: "failed to create refresh request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.client.Do(req)
	if err != nil {
		return TokenPair{}, &ClientError{Type: ErrTypeConnection, Message: "refresh request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return TokenPair{}, statusError(resp)
	}

	var result refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return TokenPair{}, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode refresh response", Cause: err}
	}
	if result.Tokens.AccessToken == "" {
		return TokenPair{}, &ClientError{Type: ErrTypeInvalidResponse, Message: "refresh response missing access token"}
	}

	return result.Tokens, nil
}
