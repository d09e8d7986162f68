// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cite derives and synchronizes citation views over answer text.
package cite

import (
	"sort"
	"strings"

	"github.com/jeranaias/ragchat-tui/internal/rag"
)

// =============================================================================
// FILTER CRITERIA
// =============================================================================

// SortOrder selects how the citation list is ordered for display.
type SortOrder string

const (
	SortRelevanceDesc SortOrder = "relevance-desc"
	SortRelevanceAsc  SortOrder = "relevance-asc"
	SortTitleAsc      SortOrder = "title-asc"
	SortTitleDesc     SortOrder = "title-desc"
)

// LevelFilter restricts the list to one relevance band.
type LevelFilter string

const (
	LevelAll    LevelFilter = "all"
	LevelHigh   LevelFilter = "high"   // score >= 80%
	LevelMedium LevelFilter = "medium" // 60-79%
	LevelLow    LevelFilter = "low"    // < 60%
)

// FilterCriteria combines sorting and filtering for the citation list.
type FilterCriteria struct {
	SortBy SortOrder

	// MinRelevance is a percentage in [0, 100].
	MinRelevance int

	Level LevelFilter
}

// DefaultCriteria shows everything, most relevant first.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{SortBy: SortRelevanceDesc, Level: LevelAll}
}

// =============================================================================
// RANKED VIEW
// =============================================================================

// RankedCitation pairs a citation with its original 1-based display index.
// Filtering and sorting reorder cards only; inline markers stay numbered
// against the unfiltered list for the lifetime of the message.
type RankedCitation struct {
	rag.Citation

	// Index is the position in the original unfiltered list, 1-based.
	Index int
}

// RelevanceBand returns the level band a score percentage falls into.
func RelevanceBand(percent int) LevelFilter {
	switch {
	case percent >= 80:
		return LevelHigh
	case percent >= 60:
		return LevelMedium
	default:
		return LevelLow
	}
}

// ApplyFilter produces a filtered, sorted display copy of the citation
// list. The input slice is never mutated; repeated calls with different
// criteria are independent.
func ApplyFilter(citations []rag.Citation, criteria FilterCriteria) []RankedCitation {
	out := make([]RankedCitation, 0, len(citations))
	for i, c := range citations {
		percent := c.RelevancePercent()
		if percent < criteria.MinRelevance {
			continue
		}
		if criteria.Level != "" && criteria.Level != LevelAll && RelevanceBand(percent) != criteria.Level {
			continue
		}
		out = append(out, RankedCitation{Citation: c, Index: i + 1})
	}

	less := lessFunc(criteria.SortBy)
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}

	return out
}

// lessFunc returns the comparison for a sort order, nil for original order.
func lessFunc(order SortOrder) func(a, b RankedCitation) bool {
	switch order {
	case SortRelevanceDesc:
		return func(a, b RankedCitation) bool { return a.RelevanceScore > b.RelevanceScore }
	case SortRelevanceAsc:
		return func(a, b RankedCitation) bool { return a.RelevanceScore < b.RelevanceScore }
	case SortTitleAsc:
		return func(a, b RankedCitation) bool {
			return strings.ToLower(a.DocumentTitle) < strings.ToLower(b.DocumentTitle)
		}
	case SortTitleDesc:
		return func(a, b RankedCitation) bool {
			return strings.ToLower(a.DocumentTitle) > strings.ToLower(b.DocumentTitle)
		}
	default:
		return nil
	}
}
