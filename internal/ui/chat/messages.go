// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines all Bubble Tea message types used by the chat interface.
// The store runs requests on its own goroutines and the UI polls it on a
// render tick, so the message set here is small: ticks, turn completion,
// config reloads, and clipboard results.
//
// All message types follow Bubble Tea conventions and are immutable.
package chat

import (
	"strings"
	"time"

	"github.com/jeranaias/ragchat-tui/internal/config"
)

// =============================================================================
// RENDER TICK MESSAGES
// =============================================================================

// StreamTickMsg is sent at ~30fps while a request is in flight. Each tick
// re-reads the store snapshot and re-renders if anything changed.
// PERFORMANCE: batching renders on a tick prevents excessive redraws
// (1000+ fps during fast token streams) which causes flicker and high CPU.
type StreamTickMsg struct {
	Time time.Time
}

// =============================================================================
// TURN MESSAGES
// =============================================================================

// TurnDoneMsg signals that a send or retry finished. The store already
// holds the final message; Err is only set for validation failures and
// request errors that never produced a turn.
type TurnDoneMsg struct {
	Err error
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg delivers a config reloaded by the file watcher.
type ConfigReloadedMsg struct {
	Config *config.Config
	Error  error
}

// =============================================================================
// COPY MESSAGES
// =============================================================================

// CopyCompleteMsg confirms a clipboard copy operation.
type CopyCompleteMsg struct {
	Success bool
	Error   error
}

// =============================================================================
// ERROR SUGGESTIONS
// =============================================================================

// detectErrorSuggestion analyzes an error message and returns a short
// actionable hint for the toast, or "" when nothing matches.
func detectErrorSuggestion(errMsg string) string {
	errLower := strings.ToLower(errMsg)

	// Network/Connection errors
	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "dial tcp") ||
		strings.Contains(errLower, "no such host") {
		return "Check that the RAG server is running and the server URL is correct"
	}

	// Auth
	if strings.Contains(errLower, "unauthorized") ||
		strings.Contains(errLower, "401") ||
		strings.Contains(errLower, "forbidden") {
		return "Verify the API token in your config file"
	}

	// Rate limit
	if strings.Contains(errLower, "rate limit") ||
		strings.Contains(errLower, "too many requests") ||
		strings.Contains(errLower, "429") {
		return "Wait a moment and retry"
	}

	// Timeout
	if strings.Contains(errLower, "timeout") || strings.Contains(errLower, "timed out") {
		return "The server may be under load; retry or lower max results"
	}

	// Input validation
	if strings.Contains(errLower, "invalid input") {
		return "Questions must be 1 to 1000 characters"
	}

	return ""
}
