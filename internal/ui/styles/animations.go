// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the ragchat TUI.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// PROGRESS BAR
// =============================================================================

// Progress bar characters (ASCII for terminal compatibility)
var (
	ProgressFull    = "#"
	ProgressEmpty   = "-"
	ProgressPartial = []string{".", ":", "+", "#", "#", "#", "#"}
)

// RenderProgressBar creates a progress bar string.
// width: total width of the bar in characters
// percent: 0-100 percentage complete
func RenderProgressBar(width int, percent float64) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filledWidth := float64(width) * percent / 100
	fullBlocks := int(filledWidth)
	partialIndex := int((filledWidth - float64(fullBlocks)) * float64(len(ProgressPartial)))

	// PERFORMANCE: strings.Builder avoids quadratic allocations
	var sb strings.Builder
	sb.Grow(width)

	for i := 0; i < fullBlocks && i < width; i++ {
		sb.WriteString(ProgressFull)
	}

	if fullBlocks < width && partialIndex > 0 {
		sb.WriteString(ProgressPartial[partialIndex-1])
		fullBlocks++
	}

	for i := fullBlocks; i < width; i++ {
		sb.WriteString(ProgressEmpty)
	}

	return sb.String()
}

// RenderRelevanceBar renders a colored relevance bar for a 0..1 score.
// Used by citation cards to show how strongly a source matched. The bar
// color follows the same bands as confidence badges.
func RenderRelevanceBar(width int, score float64) string {
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	bar := RenderProgressBar(width, score*100)
	return lipgloss.NewStyle().Foreground(ConfidenceColor(score)).Render(bar)
}
