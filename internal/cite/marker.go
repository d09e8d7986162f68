// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cite derives and synchronizes citation views over answer text.
package cite

import (
	"regexp"
	"strconv"

	"github.com/jeranaias/ragchat-tui/internal/rag"
)

// markerPattern matches [3] and [Document 3] reference tokens.
var markerPattern = regexp.MustCompile(`\[(?:Document\s+)?(\d+)\]`)

// =============================================================================
// MARKER TOKENS
// =============================================================================

// MarkerToken is one piece of parsed answer text: either a literal segment
// or a reference to a citation by its 1-based index.
type MarkerToken struct {
	// Text is the original substring this token covers. Concatenating
	// every token's Text in order reproduces the input exactly.
	Text string

	// IsMarker is true for a resolved citation reference.
	IsMarker bool

	// CitationIndex and Citation are set only when IsMarker is true.
	CitationIndex int
	Citation      rag.Citation
}

// ParseMarkers splits text into literal segments and citation markers.
// A bracket reference whose index falls outside the citation list degrades
// to a literal segment; malformed or stale references never fail.
func ParseMarkers(text string, citations []rag.Citation) []MarkerToken {
	if text == "" {
		return nil
	}

	matches := markerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []MarkerToken{{Text: text}}
	}

	var tokens []MarkerToken
	prev := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start > prev {
			tokens = append(tokens, MarkerToken{Text: text[prev:start]})
		}

		raw := text[start:end]
		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err == nil && n >= 1 && n <= len(citations) {
			tokens = append(tokens, MarkerToken{
				Text:          raw,
				IsMarker:      true,
				CitationIndex: n,
				Citation:      citations[n-1],
			})
		} else {
			// Out-of-range index: keep the raw bracket text.
			tokens = append(tokens, MarkerToken{Text: raw})
		}

		prev = end
	}

	if prev < len(text) {
		tokens = append(tokens, MarkerToken{Text: text[prev:]})
	}

	return tokens
}

// MarkerIndices returns the distinct citation indices referenced by marker
// tokens, in first-appearance order.
func MarkerIndices(tokens []MarkerToken) []int {
	var indices []int
	seen := map[int]bool{}
	for _, tok := range tokens {
		if tok.IsMarker && !seen[tok.CitationIndex] {
			seen[tok.CitationIndex] = true
			indices = append(indices, tok.CitationIndex)
		}
	}
	return indices
}
