// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the ragchat TUI.
package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat-tui/internal/store"
	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
	"github.com/jeranaias/ragchat-tui/internal/util"
)

// =============================================================================
// SPINNER MODEL
// =============================================================================

// Spinner is a loading spinner shown while a request is in flight.
type Spinner struct {
	// Core spinner from bubbles
	spinner spinner.Model

	// Configuration
	message   string
	detail    string
	startTime time.Time

	// State
	isActive  bool
	showTimer bool
}

// NewSpinner creates a new spinner with ASCII-compatible frames.
func NewSpinner() Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	return Spinner{
		spinner:   s,
		message:   "Working",
		showTimer: true,
	}
}

// SetMessage sets the text displayed next to the spinner.
func (s *Spinner) SetMessage(msg string) {
	s.message = msg
}

// SetDetail sets additional detail text below the spinner.
func (s *Spinner) SetDetail(detail string) {
	s.detail = detail
}

// SetShowTimer enables or disables the elapsed time display.
func (s *Spinner) SetShowTimer(show bool) {
	s.showTimer = show
}

// =============================================================================
// STATE MANAGEMENT
// =============================================================================

// Start activates the spinner and records the start time.
func (s *Spinner) Start() tea.Cmd {
	s.isActive = true
	s.startTime = time.Now()
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.isActive = false
}

// IsActive returns whether the spinner is currently running.
func (s *Spinner) IsActive() bool {
	return s.isActive
}

// GetElapsed returns the duration since the spinner started.
func (s *Spinner) GetElapsed() time.Duration {
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the spinner.
func (s Spinner) Init() tea.Cmd {
	return nil
}

// Update handles messages for the spinner.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !s.isActive {
		return s, nil
	}

	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner.
func (s Spinner) View() string {
	if !s.isActive {
		return ""
	}

	// Spinner character
	spinnerView := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Render(s.spinner.View())

	// Message text
	messageView := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(s.message)

	// Animated dots
	dotsView := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Render("...")

	result := spinnerView + " " + messageView + dotsView

	// Add timer if enabled
	if s.showTimer && !s.startTime.IsZero() {
		elapsed := time.Since(s.startTime)
		timerView := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render(" (" + formatElapsed(elapsed) + ")")
		result += timerView
	}

	// Add detail if present
	if s.detail != "" {
		detailView := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			PaddingLeft(2).
			Render(s.detail)
		result += "\n" + detailView
	}

	return result
}

// =============================================================================
// REQUEST PHASE INDICATOR
// =============================================================================

// PhaseIndicator is a spinner whose label tracks the request lifecycle:
// searching documents, waiting for the answer, finalizing citations.
type PhaseIndicator struct {
	spinner   Spinner
	startTime time.Time
}

// NewPhaseIndicator creates a new phase indicator.
func NewPhaseIndicator() PhaseIndicator {
	return PhaseIndicator{
		spinner: NewSpinner(),
	}
}

// Start begins the animation.
func (p *PhaseIndicator) Start() tea.Cmd {
	p.startTime = time.Now()
	p.spinner.SetMessage(phaseMessage(store.StateSending))
	return p.spinner.Start()
}

// Stop ends the animation.
func (p *PhaseIndicator) Stop() {
	p.spinner.Stop()
}

// SetPhase updates the label from the current request state.
func (p *PhaseIndicator) SetPhase(state store.State) {
	p.spinner.SetMessage(phaseMessage(state))
}

// IsActive returns whether the indicator is running.
func (p *PhaseIndicator) IsActive() bool {
	return p.spinner.IsActive()
}

// GetElapsed returns time since the request started.
func (p *PhaseIndicator) GetElapsed() time.Duration {
	if p.startTime.IsZero() {
		return 0
	}
	return time.Since(p.startTime)
}

// Update handles messages.
func (p PhaseIndicator) Update(msg tea.Msg) (PhaseIndicator, tea.Cmd) {
	var cmd tea.Cmd
	p.spinner, cmd = p.spinner.Update(msg)
	return p, cmd
}

// View renders the indicator.
func (p PhaseIndicator) View() string {
	return p.spinner.View()
}

// phaseMessage maps a request state to the spinner label.
func phaseMessage(state store.State) string {
	switch state {
	case store.StateSending:
		return "Searching documents"
	case store.StateAwaitingResponse:
		return "Thinking"
	case store.StateFinalizing:
		return "Finalizing sources"
	default:
		return "Working"
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// formatElapsed formats a duration for display.
func formatElapsed(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 60 {
		return util.IntToString(seconds) + "s"
	}
	minutes := seconds / 60
	secs := seconds % 60
	return util.IntToString(minutes) + "m " + util.IntToString(secs) + "s"
}
