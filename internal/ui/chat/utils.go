// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"strings"
	"time"

	"github.com/atotto/clipboard"
)

// =============================================================================
// FORMATTING UTILITIES
// =============================================================================

// formatTimestamp formats a timestamp for display in chat messages.
// It uses smart formatting based on how recent the timestamp is:
//   - Today: just time (e.g., "15:04")
//   - This week: day and time (e.g., "Mon 15:04")
//   - Older: date and time (e.g., "Jan 2 15:04")
func formatTimestamp(t time.Time) string {
	now := time.Now()

	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}

	if now.Sub(t) < 7*24*time.Hour {
		return t.Format("Mon 15:04")
	}

	return t.Format("Jan 2 15:04")
}

// formatBool formats a boolean as an enabled/disabled string.
func formatBool(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

// formatInt formats an integer as a string without external dependencies.
// This is used throughout the chat package for number formatting.
func formatInt(n int) string {
	if n == 0 {
		return "0"
	}
	if n == -9223372036854775808 { // math.MinInt64
		return "-9223372036854775808"
	}

	negative := n < 0
	if negative {
		n = -n
	}

	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}

	if negative {
		return "-" + string(digits)
	}
	return string(digits)
}

// =============================================================================
// CLIPBOARD UTILITIES
// =============================================================================

// copyToClipboard copies the given text to the system clipboard.
// Returns an error if the clipboard is not available or the operation fails.
func copyToClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// =============================================================================
// TEXT UTILITIES
// =============================================================================

// wrapText wraps text to a maximum width, handling Unicode correctly.
// It preserves existing line breaks and intelligently breaks long lines at spaces.
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}

	var result strings.Builder
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}

		// Convert to runes to handle Unicode characters correctly
		runes := []rune(line)

		for len(runes) > maxWidth {
			// Find a good break point (look for space)
			breakPoint := maxWidth
			for j := maxWidth; j > 0; j-- {
				if runes[j] == ' ' {
					breakPoint = j
					break
				}
			}

			result.WriteString(string(runes[:breakPoint]))
			result.WriteString("\n")
			runes = []rune(strings.TrimLeft(string(runes[breakPoint:]), " "))
		}
		result.WriteString(string(runes))
	}

	return result.String()
}
