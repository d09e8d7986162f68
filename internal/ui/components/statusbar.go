// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the ragchat TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat-tui/internal/rag"
	"github.com/jeranaias/ragchat-tui/internal/store"
	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
	"github.com/jeranaias/ragchat-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT - Bottom status bar
// =============================================================================

// Status represents the current request lifecycle state for display.
type Status int

const (
	StatusReady Status = iota
	StatusSending
	StatusStreaming
	StatusThinking
	StatusFinalizing
	StatusError
)

// StatusFromState maps the store's request state to a display status.
func StatusFromState(s store.State) Status {
	switch s {
	case store.StateSending:
		return StatusSending
	case store.StateStreaming:
		return StatusStreaming
	case store.StateAwaitingResponse:
		return StatusThinking
	case store.StateFinalizing:
		return StatusFinalizing
	default:
		return StatusReady
	}
}

// String returns the display string for the status
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusSending:
		return "Sending..."
	case StatusStreaming:
		return "Streaming..."
	case StatusThinking:
		return "Thinking..."
	case StatusFinalizing:
		return "Finalizing..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns an icon for the status
// ACCESSIBILITY: Uses distinct shapes alongside colors for colorblind users
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusStreaming:
		return "~"
	case StatusSending, StatusThinking, StatusFinalizing:
		return styles.StatusIndicators.Pending
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "?"
	}
}

// StatusBar represents the bottom status bar.
type StatusBar struct {
	SearchType    rag.SearchType // Current retrieval mode
	ServerURL     string         // Backend endpoint
	Status        Status         // Current request status
	Width         int            // Available width
	ShowShortcuts bool           // Show keyboard shortcuts

	// Last completed answer
	Confidence    float64 // 0..1, negative when no answer yet
	CitationCount int     // Sources attached to the last answer

	StreamingEnabled bool // Whether answers arrive token by token

	theme *styles.Theme
}

// NewStatusBar creates a new StatusBar component
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		SearchType:       rag.SearchHybrid,
		Status:           StatusReady,
		Width:            80,
		ShowShortcuts:    true,
		Confidence:       -1,
		StreamingEnabled: true,
		theme:            theme,
	}
}

// SetWidth updates the status bar width
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetStatus updates the current status
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
}

// SetSearchType updates the retrieval mode display.
func (s *StatusBar) SetSearchType(t rag.SearchType) {
	s.SearchType = t
}

// SetAnswerInfo updates the confidence and source count for the most
// recent completed answer. Pass confidence < 0 to clear the badge.
func (s *StatusBar) SetAnswerInfo(confidence float64, citations int) {
	s.Confidence = confidence
	s.CitationCount = citations
}

// View renders the status bar
func (s *StatusBar) View() string {
	// Choose layout based on width
	if s.Width < 60 {
		return s.viewNarrow()
	}
	if s.Width < 100 {
		return s.viewMedium()
	}
	return s.viewWide()
}

// viewNarrow renders a compact status bar for narrow terminals
// Format: [H] 82% [OK]
func (s *StatusBar) viewNarrow() string {
	modeStyle := s.getModeStyle()
	modeChar := "?"
	if name := s.modeName(); name != "" {
		modeChar = string([]rune(name)[0])
	}
	modeSection := "[" + modeStyle.Render(modeChar) + "]"

	parts := []string{modeSection}

	if s.Confidence >= 0 {
		confStyle := lipgloss.NewStyle().Foreground(styles.ConfidenceColor(s.Confidence)).Bold(true)
		parts = append(parts, confStyle.Render(util.PercentString(s.Confidence)))
	}

	statusStyle := s.getStatusStyle()
	parts = append(parts, statusStyle.Render(s.Status.Icon()))

	result := strings.Join(parts, " ")

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Width(s.Width).
		Render(result)
}

// viewMedium renders a medium-width status bar
// Format: Hybrid | 82% (5 src) | stream | Ready
func (s *StatusBar) viewMedium() string {
	separator := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Render(" | ")

	parts := []string{}

	// Retrieval mode
	// ACCESSIBILITY: Uses high contrast colors for colorblind users
	modeStyle := s.getModeStyle()
	parts = append(parts, modeStyle.Render(s.modeName()))

	// Confidence + source count for the last answer
	if s.Confidence >= 0 {
		parts = append(parts, s.renderAnswerInfo())
	}

	// Streaming indicator
	if s.StreamingEnabled {
		streamStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
		parts = append(parts, streamStyle.Render("stream"))
	}

	// Status
	statusStyle := s.getStatusStyle()
	parts = append(parts, statusStyle.Render(s.Status.String()))

	result := strings.Join(parts, separator)

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Padding(0, 1).
		Width(s.Width).
		Render(result)
}

// viewWide renders a full-featured status bar for wide terminals
// Format: Hybrid | localhost:8000 | stream        82% (5 sources)        Ready  shortcuts
func (s *StatusBar) viewWide() string {
	leftSep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	// Left section: mode, server, streaming flag
	leftParts := []string{}

	modeStyle := s.getModeStyle()
	leftParts = append(leftParts, modeStyle.Render(s.modeName()))

	if s.ServerURL != "" {
		serverStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
		leftParts = append(leftParts, serverStyle.Render(util.TruncateRunes(s.ServerURL, 40)))
	}

	streamLabel := "stream: off"
	if s.StreamingEnabled {
		streamLabel = "stream: on"
	}
	leftParts = append(leftParts, lipgloss.NewStyle().Foreground(styles.TextMuted).Render(streamLabel))

	leftSection := strings.Join(leftParts, leftSep)

	// Center section: last answer confidence and sources
	centerSection := ""
	if s.Confidence >= 0 {
		centerSection = s.renderAnswerInfoWide()
	}

	// Right section: Status and shortcuts
	rightParts := []string{}

	statusStyle := s.getStatusStyle()
	rightParts = append(rightParts, statusStyle.Render(s.Status.String()))

	if s.ShowShortcuts {
		rightParts = append(rightParts, s.renderShortcuts())
	}

	rightSection := strings.Join(rightParts, " ")

	// Calculate spacing
	leftWidth := lipgloss.Width(leftSection)
	centerWidth := lipgloss.Width(centerSection)
	rightWidth := lipgloss.Width(rightSection)
	totalContent := leftWidth + centerWidth + rightWidth

	spacing := s.Width - totalContent - 4 // Account for padding
	if spacing < 4 {
		spacing = 4
	}

	leftSpace := strings.Repeat(" ", spacing/2)
	rightSpace := strings.Repeat(" ", spacing-spacing/2)

	result := leftSection + leftSpace + centerSection + rightSpace + rightSection

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(styles.Overlay).
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Padding(0, 1).
		Width(s.Width).
		Render(result)
}

// ==========================================================================
// HELPER RENDER METHODS
// ==========================================================================

// renderAnswerInfo renders "82% (5 src)" colored by confidence band.
func (s *StatusBar) renderAnswerInfo() string {
	confStyle := lipgloss.NewStyle().
		Foreground(styles.ConfidenceColor(s.Confidence)).
		Bold(true)
	srcStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)

	out := confStyle.Render(util.PercentString(s.Confidence))
	if s.CitationCount > 0 {
		out += " " + srcStyle.Render("("+util.IntToString(s.CitationCount)+" src)")
	}
	return out
}

// renderAnswerInfoWide renders the confidence line with a small bar.
func (s *StatusBar) renderAnswerInfoWide() string {
	label := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Render("Confidence: ")

	bar := styles.RenderRelevanceBar(10, s.Confidence)

	confStyle := lipgloss.NewStyle().
		Foreground(styles.ConfidenceColor(s.Confidence)).
		Bold(true)
	percent := confStyle.Render(util.PercentString(s.Confidence))

	out := label + bar + " " + percent
	if s.CitationCount > 0 {
		srcStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
		noun := "sources"
		if s.CitationCount == 1 {
			noun = "source"
		}
		out += " " + srcStyle.Render("("+util.IntToString(s.CitationCount)+" "+noun+")")
	}
	return out
}

// renderShortcuts renders keyboard shortcut hints
func (s *StatusBar) renderShortcuts() string {
	keyStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted)

	shortcuts := []string{
		keyStyle.Render("^T") + descStyle.Render("mode"),
		keyStyle.Render("tab") + descStyle.Render("sources"),
		keyStyle.Render("^C") + descStyle.Render("stop"),
	}

	return strings.Join(shortcuts, " ")
}

// modeName returns the display name for the current retrieval mode.
func (s *StatusBar) modeName() string {
	switch s.SearchType {
	case rag.SearchKeyword:
		return "Keyword"
	case rag.SearchVector:
		return "Semantic"
	case rag.SearchHybrid:
		return "Hybrid"
	default:
		return string(s.SearchType)
	}
}

// getModeStyle returns the style for the current retrieval mode
// ACCESSIBILITY: Uses high contrast colors for colorblind users
func (s *StatusBar) getModeStyle() lipgloss.Style {
	switch s.SearchType {
	case rag.SearchKeyword:
		return lipgloss.NewStyle().
			Foreground(styles.Amber).
			Bold(true)
	case rag.SearchVector:
		return lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)
	case rag.SearchHybrid:
		return lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true)
	default:
		return lipgloss.NewStyle().
			Foreground(styles.TextMuted)
	}
}

// getStatusStyle returns the style for the current status
// ACCESSIBILITY: Uses high contrast colors with bold for colorblind users
func (s *StatusBar) getStatusStyle() lipgloss.Style {
	switch s.Status {
	case StatusReady:
		return lipgloss.NewStyle().Foreground(styles.SuccessHighContrast).Bold(true)
	case StatusStreaming, StatusThinking:
		return lipgloss.NewStyle().Foreground(styles.InfoHighContrast).Bold(true)
	case StatusSending, StatusFinalizing:
		return lipgloss.NewStyle().Foreground(styles.WarningHighContrast).Bold(true)
	case StatusError:
		return lipgloss.NewStyle().Foreground(styles.ErrorHighContrast).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(styles.TextMuted)
	}
}
