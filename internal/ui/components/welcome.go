// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the ragchat TUI.
package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN MODEL
// =============================================================================

// Welcome is the screen shown before the first question is asked.
type Welcome struct {
	// Display info
	version    string
	serverURL  string
	searchMode string

	// Dimensions
	width  int
	height int

	// Theme
	theme *styles.Theme
}

// NewWelcome creates a new welcome screen.
func NewWelcome(theme *styles.Theme) Welcome {
	return Welcome{
		version:    "dev",
		searchMode: "Hybrid",
		theme:      theme,
	}
}

// SetVersion sets the version string.
func (w *Welcome) SetVersion(version string) {
	w.version = version
}

// SetServerURL sets the backend endpoint shown in the info block.
func (w *Welcome) SetServerURL(url string) {
	w.serverURL = url
}

// SetSearchMode sets the retrieval mode display name.
func (w *Welcome) SetSearchMode(mode string) {
	w.searchMode = mode
}

// SetSize updates the dimensions.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the welcome screen.
func (w Welcome) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (w Welcome) Update(msg tea.Msg) (Welcome, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
	}
	return w, nil
}

// View renders the welcome screen.
// Responsive: adapts to terminal size, minimum 80x24 supported.
func (w Welcome) View() string {
	width := w.width
	if width == 0 {
		width = 80
	}
	height := w.height
	if height == 0 {
		height = 24
	}

	// Calculate box width - responsive to terminal width
	boxWidth := 62
	if width < 70 {
		boxWidth = width - 8
	}
	if boxWidth < 40 {
		boxWidth = 40
	}
	if boxWidth > width-4 {
		boxWidth = width - 4
	}

	horizontalPadding := 4
	verticalPadding := 1
	if width < 70 {
		horizontalPadding = 2
	}

	boxOverhead := 2 + 2*verticalPadding
	availableContentLines := height - boxOverhead

	var content string
	if availableContentLines >= 16 {
		content = w.renderLogo()
		content += "\n\n" + w.renderVersion()
		content += "\n\n" + w.renderSystemInfo()
		content += "\n\n" + w.renderQuickStart()
	} else if availableContentLines >= 12 {
		content = w.renderLogo()
		content += "\n" + w.renderVersion()
		content += "\n" + w.renderSystemInfo()
		content += "\n" + w.renderQuickStartCompact()
	} else {
		content = w.renderLogoCompact()
		content += "\n" + w.renderSystemInfo()
		content += "\n" + w.renderQuickStartCompact()
	}

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(styles.Purple).
		Padding(verticalPadding, horizontalPadding).
		Width(boxWidth).
		Align(lipgloss.Center).
		Render(content)

	boxHeight := lipgloss.Height(box)

	// Align top when the box would overflow so the logo is never cut off.
	if boxHeight >= height {
		return lipgloss.Place(
			width, height,
			lipgloss.Center, lipgloss.Top,
			box,
		)
	}
	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		box,
	)
}

// =============================================================================
// RENDER HELPERS
// =============================================================================

// renderLogo renders the ASCII art logo.
// Responsive: uses compact logo for narrow terminals.
func (w Welcome) renderLogo() string {
	logoStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	if w.width >= 60 {
		// Pure ASCII characters for maximum terminal compatibility
		logo := `                      _           _
  _ __ __ _  __ _  __| |__   __ _| |_
 | '__/ _' |/ _' |/ _| '_ \ / _' | __|
 | | | (_| | (_| | (_| | | | (_| | |_
 |_|  \__,_|\__, |\___|_| |_|\__,_|\__|
            |___/                     `
		return logoStyle.Render(logo)
	}

	return w.renderLogoCompact()
}

// renderLogoCompact renders a compact text-based logo.
func (w Welcome) renderLogoCompact() string {
	logoStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	if w.width >= 40 {
		return logoStyle.Render(`+--------------------+
|      ragchat       |
+--------------------+`)
	}

	return logoStyle.Render("ragchat - Document Q&A")
}

// renderVersion renders the version subtitle.
func (w Welcome) renderVersion() string {
	return lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true).
		Render("Document Q&A v" + w.version)
}

// renderSystemInfo renders server and retrieval mode info.
func (w Welcome) renderSystemInfo() string {
	labelStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(8)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	server := w.serverURL
	if server == "" {
		server = "not configured"
	}

	lines := []string{
		labelStyle.Render("Server:") + " " + valueStyle.Render(server),
		labelStyle.Render("Mode:  ") + " " + valueStyle.Render(w.searchMode),
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderQuickStart renders the quick start tips.
func (w Welcome) renderQuickStart() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Bold(true)

	bulletStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	tipStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary)

	tips := []string{
		bulletStyle.Render("-") + tipStyle.Render(" Type a question and press Enter"),
		bulletStyle.Render("-") + tipStyle.Render(" Tab focuses the sources panel"),
		bulletStyle.Render("-") + tipStyle.Render(" Ctrl+T cycles the search mode"),
		bulletStyle.Render("-") + tipStyle.Render(" Ctrl+C stops a running answer"),
	}

	title := titleStyle.Render("Quick Start:")

	return title + "\n" + lipgloss.JoinVertical(lipgloss.Left, tips...)
}

// renderQuickStartCompact renders a condensed quick start for small terminals.
func (w Welcome) renderQuickStartCompact() string {
	tipStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary)

	return tipStyle.Render("Type a question, Ctrl+C to stop")
}
