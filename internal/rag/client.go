// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rag provides the HTTP client for the RAG backend API.
package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Configuration constants for the backend API.
const (
	// DefaultTimeout is the default timeout for blocking requests.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for
	// transient errors on the blocking path.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize caps blocking response bodies to prevent memory
	// exhaustion from a misbehaving backend.
	MaxResponseSize = 10 * 1024 * 1024

	// queryPath and streamPath are the RAG query endpoints.
	queryPath  = "/api/v1/rag/query"
	streamPath = "/api/v1/rag/query/stream"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotConfigured
	ErrTypeAuth
	ErrTypeBadRequest
	ErrTypeRateLimited
	ErrTypeTimeout
	ErrTypeConnection
	ErrTypeServer
	ErrTypeInvalidResponse
)

// ClientError represents an error from the RAG client.
type ClientError struct {
	Type    ErrorType
	Status  int
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the error is worth retrying. HTTP 400-class
// failures (bad input, auth) are not; timeouts, connection failures and
// server errors are.
func (e *ClientError) Retryable() bool {
	switch e.Type {
	case ErrTypeBadRequest, ErrTypeAuth, ErrTypeNotConfigured:
		return false
	case ErrTypeRateLimited:
		return true
	default:
		return e.Status == 0 || e.Status >= 500
	}
}

// Sentinel errors for easy checking.
var (
	ErrNotConfigured = &ClientError{Type: ErrTypeNotConfigured, Message: "backend URL not configured"}
	ErrAuthFailed    = &ClientError{Type: ErrTypeAuth, Status: http.StatusUnauthorized, Message: "authentication failed"}
	ErrRateLimited   = &ClientError{Type: ErrTypeRateLimited, Status: http.StatusTooManyRequests, Message: "rate limited"}
	ErrTimeout       = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// IsRetryable reports whether err is a retryable client error. Plain
// transport errors (no ClientError in the chain) count as retryable.
func IsRetryable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Retryable()
	}
	return true
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the RAG client.
type ClientConfig struct {
	// BaseURL is the backend base URL, e.g. http://localhost:8000.
	BaseURL string

	// Timeout for blocking requests (default: 30s).
	Timeout time.Duration

	// MaxRetries for transient failures on the blocking path (default: 3).
	MaxRetries int

	// QueriesPerSecond limits outgoing query rate (default: 4, burst 2).
	QueriesPerSecond float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:          "http://localhost:8000",
		Timeout:          DefaultTimeout,
		MaxRetries:       DefaultMaxRetries,
		QueriesPerSecond: 4,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the RAG backend.
//
// The Client is safe for concurrent use. Streaming requests share a pooled
// transport without a client timeout; lifetime is controlled by the caller's
// context.
//
// Example:
//
//	client := rag.NewClient(cfg, tokens)
//	err := client.StreamQuery(ctx, req, func(chunk rag.StreamChunk) { ... })
type Client struct {
	config       *ClientConfig
	httpClient   *http.Client
	streamClient *http.Client
	tokens       *TokenSource
	limiter      *rate.Limiter
}

// NewClient creates a new RAG client. tokens may be nil for an
// unauthenticated backend.
func NewClient(config *ClientConfig, tokens *TokenSource) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8000"
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.QueriesPerSecond == 0 {
		config.QueriesPerSecond = 4
	}

	// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		// No timeout for streaming - controlled via context.
		streamClient: &http.Client{Transport: transport},
		tokens:       tokens,
		limiter:      rate.NewLimiter(rate.Limit(config.QueriesPerSecond), 2),
	}
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// =============================================================================
// BLOCKING QUERY
// =============================================================================

// Query sends a blocking RAG query and returns the complete answer.
// Transient failures are retried with exponential backoff up to
// MaxRetries; 400-class responses fail immediately.
func (c *Client) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	if c.config.BaseURL == "" {
		return nil, ErrNotConfigured
	}
	req.Stream = false

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("rag: query attempt %d/%d failed, retrying: %v",
				attempt, c.config.MaxRetries, lastErr)
			if err := sleepBackoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		resp, err := c.doQuery(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, err
		}
		if !IsRetryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

// doQuery performs a single query attempt, refreshing the access token once
// on a 401 response.
func (c *Client) doQuery(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	resp, err := c.post(ctx, c.httpClient, queryPath, req, false)
	if err != nil {
		return nil, err
	}

	// One refresh-and-retry on auth failure. Concurrent callers share the
	// single in-flight refresh via TokenSource.
	if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
		drainAndClose(resp.Body)
		if err := c.tokens.Refresh(ctx); err != nil {
			return nil, ErrAuthFailed
		}
		resp, err = c.post(ctx, c.httpClient, queryPath, req, false)
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var result QueryResponse
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	if err := json.NewDecoder(limited).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	return &result, nil
}

// =============================================================================
// STREAMING QUERY
// =============================================================================

// StreamCallback is called for each chunk received during streaming.
// Chunks are delivered synchronously, in arrival order.
type StreamCallback func(chunk StreamChunk)

// StreamQuery sends a streaming RAG query and invokes callback for each
// chunk. It returns when the stream ends, the context is cancelled, or a
// transport error occurs. Cancellation returns ctx.Err() without further
// callbacks; the response body is released on every exit path.
func (c *Client) StreamQuery(ctx context.Context, req QueryRequest, callback StreamCallback) error {
	if c.config.BaseURL == "" {
		return ErrNotConfigured
	}
	req.Stream = true

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := c.post(ctx, c.streamClient, streamPath, req, true)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
		drainAndClose(resp.Body)
		if err := c.tokens.Refresh(ctx); err != nil {
			return ErrAuthFailed
		}
		resp, err = c.post(ctx, c.streamClient, streamPath, req, true)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	reader := NewStreamReader(resp.Body)
	return reader.Process(ctx, callback)
}

// =============================================================================
// REQUEST HELPERS
// =============================================================================

// post issues an authenticated POST with a JSON body.
func (c *Client) post(ctx context.Context, hc *http.Client, path string, body any, stream bool) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if stream {
		req.Header.Set("Accept", "application/x-ndjson")
	}
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &ClientError{Type: ErrTypeConnection, Message: "request failed", Cause: err}
	}
	return resp, nil
}

// statusError converts a non-200 response into a typed ClientError,
// pulling the backend's detail message when present. The caller owns body
// closure.
func statusError(resp *http.Response) *ClientError {
	message := "request failed: " + resp.Status
	var apiErr apiErrorResponse
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	if err := json.NewDecoder(limited).Decode(&apiErr); err == nil && apiErr.Detail != "" {
		message = apiErr.Detail
	}

	errType := ErrTypeUnknown
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		errType = ErrTypeAuth
	case resp.StatusCode == http.StatusTooManyRequests:
		errType = ErrTypeRateLimited
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		errType = ErrTypeBadRequest
	case resp.StatusCode >= 500:
		errType = ErrTypeServer
	}

	return &ClientError{Type: errType, Status: resp.StatusCode, Message: message}
}

// sleepBackoff waits for the exponential backoff delay of the given attempt,
// or returns early if the context is cancelled.
func sleepBackoff(ctx context.Context, attempt int) error {
	delay := retryBaseDelay << (attempt - 1)
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// drainAndClose fully reads and closes a response body so the underlying
// connection can be reused.
func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, io.LimitReader(r, MaxResponseSize))
	r.Close()
}
