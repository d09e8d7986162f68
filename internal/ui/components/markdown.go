// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownCache holds the glamour renderer, rebuilt when the wrap width
// changes. PERFORMANCE: renderer construction parses the full style tree,
// so one instance is shared across bubbles at the same width.
var markdownCache struct {
	mu       sync.Mutex
	width    int
	renderer *glamour.TermRenderer
}

// renderMarkdown renders markdown content for terminal display at the given
// wrap width. Returns the original content unchanged when rendering fails.
func renderMarkdown(content string, width int) string {
	if width < 20 {
		width = 20
	}

	markdownCache.mu.Lock()
	if markdownCache.renderer == nil || markdownCache.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			markdownCache.mu.Unlock()
			return content
		}
		markdownCache.renderer = r
		markdownCache.width = width
	}
	renderer := markdownCache.renderer
	markdownCache.mu.Unlock()

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(rendered, "\n")
}
