// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the ragchat TUI.

This package defines the complete color palette and style catalog used
throughout the application. All colors use Lip Gloss AdaptiveColor for
automatic light/dark terminal detection.

# Color System (colors.go)

## Primary Accent Colors

  - Purple - Primary accent for assistant messages and selections
  - Cyan - Brand color for info, citation markers, and user highlights
  - Emerald - Success states and high-confidence answers
  - Amber - Warnings and medium-confidence answers
  - Rose - Errors and low-confidence answers

## Citation Colors

Dedicated tokens for the citation sync experience:

	CitationMarkerFg       - Inline [N] markers in answers
	CitationMarkerActiveBg - Marker matching the selected source card
	CitationCardPulseBg    - Card briefly emphasized after a marker click
	SnippetHighlightBg     - Cited passage inside the source text

## Confidence Bands

ConfidenceColor maps a 0..1 score to a band color:
high (>= 80%) emerald, medium (60-79%) amber, low (< 60%) rose.

# Theme System (theme.go)

The Theme struct provides runtime color adaptation and responsive layout:

	theme := styles.NewTheme()
	if theme.IsDark {
		// Dark terminal detected
	}
	theme.SetSize(width, height)
	if theme.GetLayoutMode() == styles.LayoutWide {
		// Room for the citation side panel
	}

# Usage Example

	import "github.com/jeranaias/ragchat-tui/internal/ui/styles"

	headerStyle := lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextPrimary)

	badge := theme.ConfidenceBadge(answer.ConfidenceScore)
*/
package styles
