// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the ragchat TUI.
package styles

import (
	"strings"
	"testing"
)

// =============================================================================
// COLOR DEFINITION TESTS
// =============================================================================

func TestPrimaryColors(t *testing.T) {
	colors := []struct {
		name  string
		color interface{}
	}{
		{"Purple", Purple},
		{"PurpleDeep", PurpleDeep},
		{"Cyan", Cyan},
		{"CyanDeep", CyanDeep},
		{"Emerald", Emerald},
		{"EmeraldDeep", EmeraldDeep},
	}

	for _, c := range colors {
		if c.color == nil {
			t.Errorf("%s color should be defined", c.name)
		}
	}
}

func TestSemanticColors(t *testing.T) {
	colors := []struct {
		name  string
		color interface{}
	}{
		{"Rose", Rose},
		{"RoseDeep", RoseDeep},
		{"Amber", Amber},
		{"AmberDeep", AmberDeep},
	}

	for _, c := range colors {
		if c.color == nil {
			t.Errorf("%s color should be defined", c.name)
		}
	}
}

func TestCitationColors(t *testing.T) {
	colors := []struct {
		name  string
		color interface{}
	}{
		{"CitationMarkerFg", CitationMarkerFg},
		{"CitationMarkerActiveBg", CitationMarkerActiveBg},
		{"CitationMarkerFlashBg", CitationMarkerFlashBg},
		{"CitationCardBorder", CitationCardBorder},
		{"CitationCardActiveBorder", CitationCardActiveBorder},
		{"CitationCardPulseBg", CitationCardPulseBg},
		{"CitationCardHoverBg", CitationCardHoverBg},
		{"SnippetHighlightBg", SnippetHighlightBg},
		{"SnippetHighlightFg", SnippetHighlightFg},
	}

	for _, c := range colors {
		if c.color == nil {
			t.Errorf("%s color should be defined", c.name)
		}
	}
}

func TestMessageBubbleColors(t *testing.T) {
	colors := []struct {
		name  string
		color interface{}
	}{
		{"UserBubbleBg", UserBubbleBg},
		{"UserBubbleFg", UserBubbleFg},
		{"UserBubbleBorder", UserBubbleBorder},
		{"AssistantBubbleBg", AssistantBubbleBg},
		{"AssistantBubbleFg", AssistantBubbleFg},
		{"AssistantBubbleBorder", AssistantBubbleBorder},
		{"SystemBubbleBg", SystemBubbleBg},
		{"SystemBubbleFg", SystemBubbleFg},
		{"SystemBubbleBorder", SystemBubbleBorder},
	}

	for _, c := range colors {
		if c.color == nil {
			t.Errorf("%s color should be defined", c.name)
		}
	}
}

// =============================================================================
// CONFIDENCE BAND TESTS
// =============================================================================

func TestConfidenceColorBands(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected interface{}
	}{
		{"high at threshold", 0.80, ConfidenceHigh},
		{"high above", 0.95, ConfidenceHigh},
		{"medium at threshold", 0.60, ConfidenceMedium},
		{"medium mid band", 0.70, ConfidenceMedium},
		{"low", 0.55, ConfidenceLow},
		{"zero", 0.0, ConfidenceLow},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ConfidenceColor(tc.score)
			if got != tc.expected {
				t.Errorf("ConfidenceColor(%v) = %v, want %v", tc.score, got, tc.expected)
			}
		})
	}
}

// =============================================================================
// STATUS INDICATORS TESTS
// =============================================================================

func TestStatusIndicators(t *testing.T) {
	indicators := []string{
		StatusIndicators.Success,
		StatusIndicators.Error,
		StatusIndicators.Warning,
		StatusIndicators.Info,
		StatusIndicators.Pending,
		StatusIndicators.Active,
	}

	seen := make(map[string]bool)
	for _, ind := range indicators {
		if ind == "" {
			t.Error("status indicator should be defined")
		}
		if seen[ind] {
			t.Errorf("Duplicate status indicator: %q", ind)
		}
		seen[ind] = true
	}
}

// =============================================================================
// RENDER FUNCTION TESTS
// =============================================================================

func TestRenderSuccess(t *testing.T) {
	msg := "Operation completed"
	result := RenderSuccess(msg)

	if !strings.Contains(result, msg) {
		t.Errorf("RenderSuccess() = %q, should contain %q", result, msg)
	}
	if !strings.Contains(result, StatusIndicators.Success) {
		t.Error("RenderSuccess() should contain success indicator")
	}
}

func TestRenderError(t *testing.T) {
	msg := "Operation failed"
	result := RenderError(msg)

	if !strings.Contains(result, msg) {
		t.Errorf("RenderError() = %q, should contain %q", result, msg)
	}
	if !strings.Contains(result, StatusIndicators.Error) {
		t.Error("RenderError() should contain error indicator")
	}
}

func TestRenderWarning(t *testing.T) {
	msg := "Potential issue detected"
	result := RenderWarning(msg)

	if !strings.Contains(result, msg) {
		t.Errorf("RenderWarning() = %q, should contain %q", result, msg)
	}
	if !strings.Contains(result, StatusIndicators.Warning) {
		t.Error("RenderWarning() should contain warning indicator")
	}
}

func TestRenderInfo(t *testing.T) {
	msg := "Information available"
	result := RenderInfo(msg)

	if !strings.Contains(result, msg) {
		t.Errorf("RenderInfo() = %q, should contain %q", result, msg)
	}
	if !strings.Contains(result, StatusIndicators.Info) {
		t.Error("RenderInfo() should contain info indicator")
	}
}

func TestRenderFunctionsEmptyString(t *testing.T) {
	statusFuncs := []struct {
		name   string
		result string
	}{
		{"RenderSuccess", RenderSuccess("")},
		{"RenderError", RenderError("")},
		{"RenderWarning", RenderWarning("")},
		{"RenderInfo", RenderInfo("")},
	}

	for _, f := range statusFuncs {
		// Should still contain the indicator even with empty message
		if f.result == "" {
			t.Errorf("%s(\"\") should return non-empty (at least the indicator)", f.name)
		}
	}
}

func TestRenderFunctionsSpecialCharacters(t *testing.T) {
	messages := []string{
		"Message with Unicode: 你好",
		"Message with symbols: @#$%^&*()",
	}

	for _, msg := range messages {
		if result := RenderSuccess(msg); len(result) == 0 {
			t.Errorf("RenderSuccess() should produce output for %q", msg)
		}
		if result := RenderError(msg); len(result) == 0 {
			t.Errorf("RenderError() should produce output for %q", msg)
		}
	}
}
