// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cite derives and synchronizes citation views over answer text.
package cite

import (
	"sort"
	"strings"

	"github.com/jeranaias/ragchat-tui/internal/rag"
)

const (
	// keyPhrasePrefixLen bounds how much of a snippet feeds the key phrase.
	keyPhrasePrefixLen = 50

	// keyPhraseMinWordLen filters out short filler words.
	keyPhraseMinWordLen = 3

	// keyPhraseWindow is the number of consecutive words searched at once.
	keyPhraseWindow = 3
)

// =============================================================================
// HIGHLIGHT RANGE
// =============================================================================

// HighlightRange is a half-open byte span [Start, End) of answer text
// associated with one or more citations. CitationIndices is sorted ascending
// and holds the 1-based display indices of every citation whose candidate
// range was merged into this one.
type HighlightRange struct {
	Start           int
	End             int
	CitationIndices []int
}

// Primary returns the lowest associated citation index.
func (r HighlightRange) Primary() int {
	if len(r.CitationIndices) == 0 {
		return 0
	}
	return r.CitationIndices[0]
}

// Contains reports whether the byte offset falls inside the range.
func (r HighlightRange) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// =============================================================================
// LOCATOR
// =============================================================================

// Locator maps citations onto spans of answer text. The concrete
// implementation is heuristic; swap it out for an exact matcher without
// touching callers.
type Locator interface {
	Locate(text string, citations []rag.Citation) []HighlightRange
}

// PhraseLocator is the default heuristic Locator: short key phrases from
// each citation's snippet plus a document-title substring search, first
// match wins, overlapping spans merged.
type PhraseLocator struct{}

// Locate computes the sorted, non-overlapping highlight set for the given
// text and citations. It is a pure function of its inputs and never fails;
// a citation with no match simply contributes nothing.
//
// Matching is done on a lower-cased copy, so offsets are exact for ASCII
// text and best-effort where lower-casing changes byte lengths.
func (PhraseLocator) Locate(text string, citations []rag.Citation) []HighlightRange {
	if text == "" || len(citations) == 0 {
		return nil
	}

	lowerText := strings.ToLower(text)

	var candidates []HighlightRange
	for i, c := range citations {
		index := i + 1

		if r, ok := findKeyPhrase(lowerText, c.ContentSnippet); ok {
			r.CitationIndices = []int{index}
			candidates = append(candidates, r)
		}
		if r, ok := findTitle(lowerText, c.DocumentTitle); ok {
			r.CitationIndices = []int{index}
			candidates = append(candidates, r)
		}
	}

	return mergeRanges(candidates)
}

// findKeyPhrase derives a key phrase from the snippet and searches for its
// first 3-word window present in the text.
func findKeyPhrase(lowerText, snippet string) (HighlightRange, bool) {
	words := keyPhraseWords(snippet)
	if len(words) < keyPhraseWindow {
		return HighlightRange{}, false
	}

	for i := 0; i+keyPhraseWindow <= len(words); i++ {
		phrase := strings.Join(words[i:i+keyPhraseWindow], " ")
		if start := strings.Index(lowerText, phrase); start >= 0 {
			// First match wins; no attempt to find a better one.
			return HighlightRange{Start: start, End: start + len(phrase)}, true
		}
	}

	return HighlightRange{}, false
}

// findTitle searches for the document title as a case-insensitive substring.
func findTitle(lowerText, title string) (HighlightRange, bool) {
	title = strings.ToLower(strings.TrimSpace(title))
	if title == "" {
		return HighlightRange{}, false
	}
	start := strings.Index(lowerText, title)
	if start < 0 {
		return HighlightRange{}, false
	}
	return HighlightRange{Start: start, End: start + len(title)}, true
}

// keyPhraseWords lower-cases the snippet prefix, strips punctuation, and
// keeps only words longer than keyPhraseMinWordLen.
func keyPhraseWords(snippet string) []string {
	prefix := snippet
	if len(prefix) > keyPhrasePrefixLen {
		prefix = prefix[:keyPhrasePrefixLen]
	}
	prefix = strings.ToLower(prefix)

	var b strings.Builder
	b.Grow(len(prefix))
	for _, r := range prefix {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r > 127:
			// Non-ASCII letters pass through untouched.
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	var words []string
	for _, w := range strings.Fields(b.String()) {
		if len(w) > keyPhraseMinWordLen {
			words = append(words, w)
		}
	}
	return words
}

// mergeRanges sorts candidates by start and folds overlapping spans into
// one, unioning their citation index sets.
func mergeRanges(candidates []HighlightRange) []HighlightRange {
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Start != candidates[j].Start {
			return candidates[i].Start < candidates[j].Start
		}
		return candidates[i].End < candidates[j].End
	})

	merged := []HighlightRange{candidates[0]}
	for _, next := range candidates[1:] {
		cur := &merged[len(merged)-1]
		if next.Start <= cur.End {
			if next.End > cur.End {
				cur.End = next.End
			}
			cur.CitationIndices = unionIndices(cur.CitationIndices, next.CitationIndices)
		} else {
			merged = append(merged, next)
		}
	}

	return merged
}

// unionIndices merges two sorted index sets without duplicates.
func unionIndices(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	out = append(out, a...)
	for _, n := range b {
		found := false
		for _, m := range out {
			if m == n {
				found = true
				break
			}
		}
		if !found {
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}
