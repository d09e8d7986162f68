// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file contains all rendering logic for the chat interface, including:
//   - Main view rendering (renderChat)
//   - Header, input area, and status bar
//   - The side-by-side sources panel in the wide layout
//   - Toast and help overlays
//
// Formatting and text utilities live in utils.go.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/ui/components"
	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
)

// View renders the chat interface.
func (m Model) View() string {
	return m.renderChat()
}

// =============================================================================
// MAIN RENDER
// =============================================================================

// renderChat renders the complete chat view.
// Layout: header (1 line) + content (viewport, plus sources panel in the
// wide layout) + input (3 lines) + status (1 line).
// Total height must equal m.height exactly to prevent overflow/underflow.
//
// COUPLING WARNING: The viewport height is pre-calculated in handleResize()
// (model.go) using conservative constant estimates. This function measures
// actual heights with lipgloss.Height() and has a fallback if there's a
// mismatch. If you change the height of any component here, also update the
// constants in model.go.
func (m Model) renderChat() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// If help overlay is active, render it instead of normal UI.
	if m.showHelp {
		return m.renderHelpOverlay()
	}

	// Build fixed-height components first to calculate available space.
	header := m.renderHeader()
	input := m.renderInput()
	status := m.statusBar.View()

	headerH := lipgloss.Height(header)
	inputH := lipgloss.Height(input)
	statusH := lipgloss.Height(status)

	availableHeight := m.height - headerH - inputH - statusH
	if availableHeight < 1 {
		availableHeight = 1
	}

	content := m.renderContent(availableHeight)

	// Verify content height matches available space to catch sizing bugs.
	if lipgloss.Height(content) != availableHeight {
		content = lipgloss.NewStyle().
			Height(availableHeight).
			MaxHeight(availableHeight).
			Width(m.width).
			Render(content)
	}

	baseView := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		input,
		status,
	)

	// Render non-blocking toasts as a bottom-right overlay
	// (lazygit-inspired); they never block interaction.
	if m.toasts.HasToasts() {
		toastOverlay := components.RenderToastStack(m.toasts.Toasts(), m.width, m.height)
		return m.overlayToasts(baseView, toastOverlay)
	}

	return baseView
}

// renderContent renders the conversation viewport, joined with the sources
// panel in the wide layout.
func (m Model) renderContent(height int) string {
	messages := m.viewport.View()

	if !m.panelVisible() {
		return messages
	}

	panel := lipgloss.NewStyle().
		Width(panelWidth).
		Height(height).
		MaxHeight(height).
		Render(m.panel.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, messages, panel)
}

// overlayToasts renders toasts on top of the base view.
// Toasts are positioned in the bottom-right corner without blocking interaction.
func (m Model) overlayToasts(baseView, toastView string) string {
	baseLines := strings.Split(baseView, "\n")
	toastLines := strings.Split(toastView, "\n")

	// Start overlaying above the status bar.
	startRow := m.height - len(toastLines) - 2
	if startRow < 0 {
		startRow = 0
	}

	result := make([]string, len(baseLines))
	for i, baseLine := range baseLines {
		toastLineIdx := i - startRow
		if toastLineIdx >= 0 && toastLineIdx < len(toastLines) {
			toastLine := toastLines[toastLineIdx]
			if lipgloss.Width(toastLine) > 0 {
				baseWidth := lipgloss.Width(baseLine)
				toastLineWidth := lipgloss.Width(toastLine)

				// Pad base line to full width if needed.
				if baseWidth < m.width-toastLineWidth-1 {
					baseLine = baseLine + strings.Repeat(" ", m.width-toastLineWidth-1-baseWidth)
				}

				// Truncate base line to make room for the toast.
				if baseWidth > m.width-toastLineWidth-1 {
					cutPoint := m.width - toastLineWidth - 1
					if cutPoint > 0 {
						baseLine = truncateToWidth(baseLine, cutPoint)
					}
				}

				result[i] = baseLine + toastLine
			} else {
				result[i] = baseLine
			}
		} else {
			result[i] = baseLine
		}
	}

	return strings.Join(result, "\n")
}

// truncateToWidth truncates a string to fit within a given visible width.
func truncateToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}

	currentWidth := 0
	var result strings.Builder

	for _, r := range s {
		runeWidth := lipgloss.Width(string(r))
		if currentWidth+runeWidth > width {
			break
		}
		result.WriteRune(r)
		currentWidth += runeWidth
	}

	return result.String()
}

// =============================================================================
// HEADER
// =============================================================================

// renderHeader renders the title bar with app name, search mode, and a
// connection status indicator. Always 1 line high.
func (m Model) renderHeader() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.Purple).
		Render("ragchat")

	modeInfo := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Render(" | " + model.GetSearchModeInfo(m.store.Settings().SearchType).Name + " search")

	var statusIcon string
	switch {
	case m.storeBusy():
		statusIcon = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Render(" " + styles.StatusIndicators.Active)
	case m.store.LastError() != nil:
		statusIcon = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Render(" " + styles.StatusIndicators.Error)
	default:
		statusIcon = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Render(" " + styles.StatusIndicators.Success)
	}

	var focusHint string
	if m.focusPanel {
		focusHint = lipgloss.NewStyle().
			Foreground(styles.Amber).
			Render("  [sources]")
	}

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Width(width).
		Padding(0, 1).
		Render(title + modeInfo + statusIcon + focusHint)
}

// =============================================================================
// MESSAGES
// =============================================================================

// renderMessages renders the conversation body for the viewport.
// Shows the welcome screen when the conversation is empty.
func (m *Model) renderMessages() string {
	messages := m.store.Messages()
	streaming := m.store.StreamingMessage()

	if len(messages) == 0 && streaming == nil {
		return m.welcome.View()
	}

	body := m.messageList.View()

	// Phase indicator sits below the last message while a request runs
	// but no tokens have arrived yet.
	if m.storeBusy() && (streaming == nil || strings.TrimSpace(streaming.GetDisplayContent()) == "") {
		body += "\n\n" + lipgloss.NewStyle().
			MarginLeft(2).
			Render(m.phase.View())
	}

	return body
}

// =============================================================================
// INPUT AREA
// =============================================================================

// renderInput renders the input area with a focus ring indicator.
// The top border dims when the sources panel has focus, following
// lazygit's focus styling pattern.
func (m Model) renderInput() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	var borderColor lipgloss.AdaptiveColor
	if m.focusPanel {
		borderColor = styles.Overlay
	} else {
		borderColor = styles.Purple
	}

	borderChar := "─"
	borderLine := lipgloss.NewStyle().
		Foreground(borderColor).
		Render(strings.Repeat(borderChar, width))

	// Status note while a request runs.
	var statusIndicator string
	switch m.store.State().String() {
	case "streaming":
		statusIndicator = lipgloss.NewStyle().
			Foreground(styles.Amber).
			Render(" (streaming...)")
	case "sending", "awaiting response", "finalizing":
		statusIndicator = lipgloss.NewStyle().
			Foreground(styles.Amber).
			Render(" (working...)")
	}

	inputLineWidth := width - 4
	if inputLineWidth < 10 {
		inputLineWidth = 10
	}

	inputLine := lipgloss.NewStyle().
		Width(inputLineWidth).
		Render("  " + m.input.View() + statusIndicator)

	charCount := m.renderCharCount()

	result := lipgloss.JoinVertical(
		lipgloss.Left,
		borderLine,
		inputLine,
		charCount,
	)

	// Force exact height to prevent layout shift when typing.
	return lipgloss.NewStyle().
		Height(inputAreaHeight).
		MaxHeight(inputAreaHeight).
		Width(width).
		Render(result)
}

// renderCharCount renders the character count indicator.
func (m Model) renderCharCount() string {
	count := len([]rune(m.input.Value()))
	max := m.input.CharLimit
	if max <= 0 {
		max = 1
	}

	var style lipgloss.Style
	percent := float64(count) / float64(max) * 100

	if percent >= 90 {
		style = lipgloss.NewStyle().Foreground(styles.Rose)
	} else if percent >= 75 {
		style = lipgloss.NewStyle().Foreground(styles.Amber)
	} else {
		style = lipgloss.NewStyle().Foreground(styles.TextMuted)
	}

	countStr := formatInt(count) + " / " + formatInt(max)

	width := m.width
	if width <= 0 {
		width = 80
	}
	charCountWidth := width - 4
	if charCountWidth < 10 {
		charCountWidth = 10
	}

	return lipgloss.NewStyle().
		Width(charCountWidth).
		Align(lipgloss.Right).
		Padding(0, 2).
		Render(style.Render(countStr))
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

// renderHelpOverlay renders context-sensitive keyboard shortcuts.
// Following lazygit's pattern, only shows keybindings that work in the
// current context. Displayed when the user presses C-h.
func (m Model) renderHelpOverlay() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}

	// Show keys for the context that was active when help opened.
	var activeContext HelpContext
	switch {
	case m.focusPanel:
		activeContext = ContextPanel
	case m.storeBusy():
		activeContext = ContextStreaming
	case m.toasts.HasToasts():
		activeContext = ContextError
	default:
		activeContext = ContextInput
	}

	groupedItems := GetHelpItemsByCategory(activeContext)
	categoryOrder := GetCategoryOrder()

	var sb strings.Builder

	contextName := GetContextDisplayName(activeContext)
	sb.WriteString("Keys available now (" + contextName + ")\n")
	sb.WriteString(strings.Repeat("─", 35) + "\n\n")

	hasContent := false
	for _, category := range categoryOrder {
		items, exists := groupedItems[category]
		if !exists || len(items) == 0 {
			continue
		}

		hasContent = true
		categoryStyle := lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)
		sb.WriteString(categoryStyle.Render(string(category)) + "\n")

		for _, item := range items {
			keyStyle := lipgloss.NewStyle().Foreground(styles.Amber)
			descStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
			sb.WriteString("  " + keyStyle.Render(padKey(item.Key)) + "  " + descStyle.Render(item.Desc) + "\n")
		}
		sb.WriteString("\n")
	}

	if !hasContent {
		sb.WriteString("  No specific keybindings for this mode.\n\n")
	}

	sb.WriteString(strings.Repeat("─", 35) + "\n")
	stateStyle := lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)

	var modeInfo string
	switch activeContext {
	case ContextInput:
		modeInfo = "Input mode - type your question"
	case ContextPanel:
		modeInfo = "Sources panel - navigate with j/k"
	case ContextStreaming:
		modeInfo = "Streaming - C-c to cancel"
	case ContextError:
		modeInfo = "Error - C-r to retry, x to dismiss"
	default:
		modeInfo = "Press C-h to toggle help"
	}
	sb.WriteString(stateStyle.Render(modeInfo) + "\n")

	sb.WriteString("\n")
	closeStyle := lipgloss.NewStyle().Foreground(styles.Overlay)
	sb.WriteString(closeStyle.Render("Press C-h or Esc to close"))

	content := sb.String()

	contentWidth := 55
	if contentWidth > width-4 {
		contentWidth = width - 4
	}

	contentLines := strings.Count(content, "\n") + 1
	contentHeight := contentLines + 2
	if contentHeight > height-4 {
		contentHeight = height - 4
	}

	helpBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Foreground(styles.TextPrimary).
		Background(styles.Surface).
		Padding(1, 2).
		Width(contentWidth).
		MaxHeight(contentHeight).
		Render(content)

	marginLeft := (width - lipgloss.Width(helpBox)) / 2
	if marginLeft < 0 {
		marginLeft = 0
	}
	marginTop := (height - lipgloss.Height(helpBox)) / 2
	if marginTop < 0 {
		marginTop = 0
	}

	return lipgloss.NewStyle().
		MarginLeft(marginLeft).
		MarginTop(marginTop).
		Render(helpBox)
}

// padKey left-aligns a key label in a fixed column.
func padKey(key string) string {
	const col = 14
	if len(key) >= col {
		return key
	}
	return key + strings.Repeat(" ", col-len(key))
}
