// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the ragchat TUI.
package styles

import (
	"strings"
	"testing"
)

// =============================================================================
// PROGRESS BAR TESTS
// =============================================================================

func TestProgressBarCharacters(t *testing.T) {
	if ProgressFull == "" {
		t.Error("ProgressFull should be defined")
	}
	if ProgressEmpty == "" {
		t.Error("ProgressEmpty should be defined")
	}
	if len(ProgressPartial) == 0 {
		t.Error("ProgressPartial should have characters")
	}
}

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		width   int
		percent float64
	}{
		{10, 0.0},
		{10, 25.0},
		{10, 50.0},
		{10, 75.0},
		{10, 100.0},
		{20, 33.333},
		{30, 66.666},
	}

	for _, tc := range tests {
		result := RenderProgressBar(tc.width, tc.percent)
		runeCount := len([]rune(result))
		if runeCount < tc.width-1 || runeCount > tc.width+1 {
			t.Errorf("RenderProgressBar(%d, %.1f) length = %d, expected ~%d",
				tc.width, tc.percent, runeCount, tc.width)
		}
	}
}

func TestRenderProgressBarEdgeCases(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		percent float64
	}{
		{"Zero width", 0, 50.0},
		{"Negative percent", 10, -10.0},
		{"Over 100 percent", 10, 150.0},
		{"Small width", 1, 50.0},
		{"Large width", 100, 50.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Should not panic
			result := RenderProgressBar(tc.width, tc.percent)
			_ = result
		})
	}
}

func TestRenderProgressBarBounds(t *testing.T) {
	// Negative percents are clamped to 0
	result := RenderProgressBar(10, -50.0)
	if !strings.Contains(result, ProgressEmpty) {
		t.Error("RenderProgressBar with negative percent should show empty bar")
	}

	// >100% is clamped to 100
	result = RenderProgressBar(10, 200.0)
	if !strings.Contains(result, ProgressFull) {
		t.Error("RenderProgressBar with >100% should show full bar")
	}
}

func TestRenderRelevanceBar(t *testing.T) {
	tests := []struct {
		name  string
		score float64
	}{
		{"high", 0.95},
		{"medium", 0.65},
		{"low", 0.30},
		{"clamped negative", -0.5},
		{"clamped over one", 1.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := RenderRelevanceBar(12, tc.score)
			if result == "" {
				t.Error("RenderRelevanceBar should produce output")
			}
		})
	}
}
