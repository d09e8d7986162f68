// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cite

import (
	"testing"

	"github.com/jeranaias/ragchat-tui/internal/rag"
)

func filterFixture() []rag.Citation {
	return []rag.Citation{
		{DocumentID: "d1", DocumentTitle: "Beta Guide", RelevanceScore: 0.95},
		{DocumentID: "d2", DocumentTitle: "Alpha Manual", RelevanceScore: 0.65},
		{DocumentID: "d3", DocumentTitle: "Gamma Notes", RelevanceScore: 0.40},
		{DocumentID: "d4", DocumentTitle: "Delta Spec", RelevanceScore: 0.82},
	}
}

func ids(ranked []RankedCitation) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.DocumentID
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApplyFilter_Sorting(t *testing.T) {
	tests := []struct {
		name  string
		order SortOrder
		want  []string
	}{
		{"relevance descending", SortRelevanceDesc, []string{"d1", "d4", "d2", "d3"}},
		{"relevance ascending", SortRelevanceAsc, []string{"d3", "d2", "d4", "d1"}},
		{"title ascending", SortTitleAsc, []string{"d2", "d1", "d4", "d3"}},
		{"title descending", SortTitleDesc, []string{"d3", "d4", "d1", "d2"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ApplyFilter(filterFixture(), FilterCriteria{SortBy: tc.order, Level: LevelAll})
			if !equalStrings(ids(got), tc.want) {
				t.Errorf("order = %v, want %v", ids(got), tc.want)
			}
		})
	}
}

func TestApplyFilter_LevelBands(t *testing.T) {
	tests := []struct {
		level LevelFilter
		want  []string
	}{
		{LevelHigh, []string{"d1", "d4"}},   // >= 80%
		{LevelMedium, []string{"d2"}},       // 60-79%
		{LevelLow, []string{"d3"}},          // < 60%
		{LevelAll, []string{"d1", "d4", "d2", "d3"}},
	}

	for _, tc := range tests {
		t.Run(string(tc.level), func(t *testing.T) {
			got := ApplyFilter(filterFixture(), FilterCriteria{SortBy: SortRelevanceDesc, Level: tc.level})
			if !equalStrings(ids(got), tc.want) {
				t.Errorf("filtered = %v, want %v", ids(got), tc.want)
			}
		})
	}
}

func TestApplyFilter_MinRelevance(t *testing.T) {
	got := ApplyFilter(filterFixture(), FilterCriteria{SortBy: SortRelevanceDesc, Level: LevelAll, MinRelevance: 70})
	if !equalStrings(ids(got), []string{"d1", "d4"}) {
		t.Errorf("filtered = %v, want [d1 d4]", ids(got))
	}
}

func TestApplyFilter_PreservesOriginalIndex(t *testing.T) {
	got := ApplyFilter(filterFixture(), FilterCriteria{SortBy: SortRelevanceAsc, Level: LevelAll})

	// d3 was third in the original list; its display index must survive
	// reordering so inline [3] markers keep pointing at it.
	if got[0].DocumentID != "d3" || got[0].Index != 3 {
		t.Errorf("first ranked = %s index %d, want d3 index 3", got[0].DocumentID, got[0].Index)
	}
	if got[3].DocumentID != "d1" || got[3].Index != 1 {
		t.Errorf("last ranked = %s index %d, want d1 index 1", got[3].DocumentID, got[3].Index)
	}
}

func TestApplyFilter_Pure(t *testing.T) {
	base := filterFixture()
	before := make([]rag.Citation, len(base))
	copy(before, base)

	first := ApplyFilter(base, FilterCriteria{SortBy: SortTitleAsc, Level: LevelAll})
	second := ApplyFilter(base, FilterCriteria{SortBy: SortRelevanceDesc, Level: LevelHigh})

	for i := range base {
		if base[i] != before[i] {
			t.Fatalf("ApplyFilter mutated the input at %d: %+v", i, base[i])
		}
	}
	if len(first) == len(second) {
		t.Error("independent criteria produced identical result sizes; fixture should distinguish them")
	}
}

func TestRelevanceBand(t *testing.T) {
	tests := []struct {
		percent int
		want    LevelFilter
	}{
		{100, LevelHigh},
		{80, LevelHigh},
		{79, LevelMedium},
		{60, LevelMedium},
		{59, LevelLow},
		{0, LevelLow},
	}

	for _, tc := range tests {
		if got := RelevanceBand(tc.percent); got != tc.want {
			t.Errorf("RelevanceBand(%d) = %q, want %q", tc.percent, got, tc.want)
		}
	}
}
