// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the ragchat TUI.
package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat-tui/internal/cite"
	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
	"github.com/jeranaias/ragchat-tui/internal/util"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders a single chat message as a styled bubble.
// Assistant bubbles style inline citation markers like [1] and highlight
// the marker that matches the selected source card.
type MessageBubble struct {
	Message       *model.Message
	Width         int
	IsLatest      bool
	ShowTimestamp bool
	ShowStats     bool
	Streaming     bool
	Markdown      bool
	theme         *styles.Theme
	sync          *cite.SyncManager
}

// NewMessageBubble creates a new MessageBubble.
func NewMessageBubble(msg *model.Message, theme *styles.Theme) *MessageBubble {
	if msg == nil {
		msg = model.NewSystemMessage("")
	}
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		ShowStats:     true,
		Streaming:     msg.IsStreaming,
		theme:         theme,
	}
}

// SetWidth sets the bubble width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// SetIsLatest marks this as the latest message.
func (b *MessageBubble) SetIsLatest(latest bool) {
	b.IsLatest = latest
}

// SetSyncManager attaches the citation selection state so this bubble can
// emphasize the active marker.
func (b *MessageBubble) SetSyncManager(sync *cite.SyncManager) {
	b.sync = sync
}

// View renders the message bubble.
func (b *MessageBubble) View() string {
	if b.Message.IsError {
		return b.renderErrorBubble()
	}
	switch b.Message.Role {
	case model.RoleUser:
		return b.renderUserBubble()
	case model.RoleAssistant:
		return b.renderAssistantBubble()
	case model.RoleSystem:
		return b.renderSystemBubble()
	default:
		return b.renderGenericBubble()
	}
}

// ==========================================================================
// USER BUBBLE - Blue tones, right-aligned feel
// ==========================================================================

func (b *MessageBubble) renderUserBubble() string {
	content := b.Message.GetDisplayContent()
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrappedContent := wordWrap(content, maxContentWidth)
	contentWidth := minInt(maxLineWidth(wrappedContent)+4, b.Width-8)

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.UserBubbleFg).
		Background(styles.UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.UserBubbleBorder).
		Padding(0, 2).
		Width(contentWidth)

	bubble := bubbleStyle.Render(wrappedContent)

	roleStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	header := roleStyle.Render("you")

	if ts := b.renderTimestamp(); ts != "" {
		header = header + " " + ts
	}

	leftMargin := b.Width - contentWidth - 4
	if leftMargin < 0 {
		leftMargin = 0
	}
	marginStyle := lipgloss.NewStyle().MarginLeft(leftMargin)

	return lipgloss.JoinVertical(
		lipgloss.Right,
		marginStyle.Render(header),
		marginStyle.Render(bubble),
	)
}

// ==========================================================================
// ASSISTANT BUBBLE - Purple tones, citation markers styled inline
// ==========================================================================

func (b *MessageBubble) renderAssistantBubble() string {
	content := b.Message.GetDisplayContent()

	if b.Streaming {
		content = content + b.renderStreamingCursor()
	}
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrappedContent := wordWrap(content, maxContentWidth)
	contentWidth := minInt(maxLineWidth(wrappedContent)+4, b.Width-8)

	if b.Markdown && !b.Streaming && len(b.Message.Citations) == 0 {
		// Uncited answers get the markdown renderer. Cited answers keep
		// the plain path so inline [N] markers stay highlightable.
		wrappedContent = renderMarkdown(content, maxContentWidth)
		contentWidth = minInt(lipgloss.Width(wrappedContent)+4, b.Width-8)
	} else if len(b.Message.Citations) > 0 {
		// Style citation markers after wrapping so ANSI sequences never
		// skew the wrap-width calculation. Markers contain no spaces so
		// wrapping cannot split one across lines.
		wrappedContent = b.renderMarkedContent(wrappedContent)
	}

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.AssistantBubbleFg).
		Background(styles.AssistantBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.AssistantBubbleBorder).
		Padding(0, 2).
		Width(contentWidth).
		MarginRight(4)

	bubble := bubbleStyle.Render(wrappedContent)

	roleStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	header := roleStyle.Render("assistant")

	if badge := b.renderConfidenceBadge(); badge != "" {
		header = header + " " + badge
	}
	if ts := b.renderTimestamp(); ts != "" {
		header = header + " " + ts
	}

	result := lipgloss.JoinVertical(lipgloss.Left, header, bubble)

	if b.ShowStats && !b.Streaming {
		if statsLine := b.renderStats(); statsLine != "" {
			result = lipgloss.JoinVertical(lipgloss.Left, result, statsLine)
		}
	}

	return result
}

// renderMarkedContent styles inline [N] markers and the located answer span
// of the selected citation. The marker matching the selected source card gets
// the active background; a marker that was just clicked from its card gets
// the brighter flash background. Literal text covered by the selected
// citation's highlight range gets the snippet highlight.
func (b *MessageBubble) renderMarkedContent(content string) string {
	tokens := cite.ParseMarkers(content, b.Message.Citations)
	ranges := b.highlightRanges(content)

	var sb strings.Builder
	sb.Grow(len(content))
	offset := 0
	for _, tok := range tokens {
		if !tok.IsMarker {
			sb.WriteString(b.renderHighlightedSegment(tok.Text, offset, ranges))
			offset += len(tok.Text)
			continue
		}
		style := b.theme.CitationMarker
		if b.sync != nil {
			if b.sync.IsMarkerFlashing(tok.CitationIndex) {
				style = b.theme.CitationMarkerFlash
			} else if b.sync.ActiveIndex() == tok.CitationIndex {
				style = b.theme.CitationMarkerActive
			}
		}
		sb.WriteString(style.Render(tok.Text))
		offset += len(tok.Text)
	}
	return sb.String()
}

// highlightRanges locates the answer spans backing the selected citation.
// Hover takes precedence over the active selection; with no selection there
// is nothing to emphasize. Offsets index the wrapped display text, which is
// the string the segments are sliced from.
func (b *MessageBubble) highlightRanges(content string) []cite.HighlightRange {
	if b.sync == nil {
		return nil
	}
	selected := b.sync.HoveredIndex()
	if selected == 0 {
		selected = b.sync.ActiveIndex()
	}
	if selected == 0 {
		return nil
	}

	located := cite.PhraseLocator{}.Locate(content, b.Message.Citations)
	var matched []cite.HighlightRange
	for _, r := range located {
		for _, idx := range r.CitationIndices {
			if idx == selected {
				matched = append(matched, r)
				break
			}
		}
	}
	return matched
}

// renderHighlightedSegment styles the parts of one literal segment that fall
// inside a highlight range. offset is the segment's byte position in the
// full display text; ranges are sorted and non-overlapping.
func (b *MessageBubble) renderHighlightedSegment(text string, offset int, ranges []cite.HighlightRange) string {
	if len(ranges) == 0 {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))
	pos := 0
	for _, r := range ranges {
		start := r.Start - offset
		stop := r.End - offset
		if stop <= pos || start >= len(text) {
			continue
		}
		if start < pos {
			start = pos
		}
		if stop > len(text) {
			stop = len(text)
		}
		sb.WriteString(text[pos:start])
		sb.WriteString(b.renderHighlightLines(text[start:stop]))
		pos = stop
	}
	sb.WriteString(text[pos:])
	return sb.String()
}

// renderHighlightLines styles a highlighted span line by line so the
// background never bleeds across the wrap newlines.
func (b *MessageBubble) renderHighlightLines(span string) string {
	lines := strings.Split(span, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = b.theme.SnippetHighlight.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// ==========================================================================
// SYSTEM BUBBLE - Amber tones, centered
// ==========================================================================

func (b *MessageBubble) renderSystemBubble() string {
	content := b.Message.GetDisplayContent()
	if content == "" {
		content = "System message"
	}

	maxContentWidth := b.Width - 20
	if maxContentWidth < 30 {
		maxContentWidth = 30
	}
	wrappedContent := wordWrap(content, maxContentWidth)
	contentWidth := minInt(maxLineWidth(wrappedContent)+4, b.Width-16)

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.SystemBubbleFg).
		Background(styles.SystemBubbleBg).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(styles.SystemBubbleBorder).
		Padding(0, 2).
		Width(contentWidth).
		Align(lipgloss.Center)

	bubble := bubbleStyle.Render(wrappedContent)

	centerStyle := lipgloss.NewStyle().
		Width(b.Width).
		Align(lipgloss.Center)

	labelStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	header := labelStyle.Render("system")

	if ts := b.renderTimestamp(); ts != "" {
		header = header + " " + ts
	}

	return lipgloss.JoinVertical(
		lipgloss.Center,
		centerStyle.Render(header),
		centerStyle.Render(bubble),
	)
}

// ==========================================================================
// ERROR BUBBLE - Rose left border, retry hint when recoverable
// ==========================================================================

func (b *MessageBubble) renderErrorBubble() string {
	content := b.Message.ErrorText
	if content == "" {
		content = b.Message.GetDisplayContent()
	}

	maxContentWidth := b.Width - 10
	if maxContentWidth < 30 {
		maxContentWidth = 30
	}
	wrappedContent := wordWrap(content, maxContentWidth)

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.ErrorHighContrast).
		BorderLeft(true).
		PaddingLeft(2)

	iconStyle := lipgloss.NewStyle().
		Foreground(styles.ErrorHighContrast).
		Bold(true)

	header := iconStyle.Render(styles.StatusIndicators.Error) + " " +
		lipgloss.NewStyle().Foreground(styles.Rose).Bold(true).Render("Error")

	if ts := b.renderTimestamp(); ts != "" {
		header = header + " " + ts
	}

	result := lipgloss.JoinVertical(lipgloss.Left, header, bubbleStyle.Render(wrappedContent))

	if b.Message.Retryable {
		hintStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			PaddingLeft(2)
		result = lipgloss.JoinVertical(lipgloss.Left, result,
			hintStyle.Render("press ctrl+r to retry"))
	}

	return result
}

// ==========================================================================
// GENERIC BUBBLE - Fallback for unknown roles
// ==========================================================================

func (b *MessageBubble) renderGenericBubble() string {
	content := b.Message.GetDisplayContent()
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 10
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrappedContent := wordWrap(content, maxContentWidth)

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(0, 2)

	return bubbleStyle.Render(wrappedContent)
}

// ==========================================================================
// HELPER METHODS
// ==========================================================================

// renderTimestamp renders a dimmed timestamp, or "" when disabled.
func (b *MessageBubble) renderTimestamp() string {
	if !b.ShowTimestamp {
		return ""
	}
	ts := b.Message.Timestamp
	if ts.IsZero() {
		return ""
	}

	timestampStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)

	now := time.Now()
	var formatted string
	if ts.Year() == now.Year() && ts.YearDay() == now.YearDay() {
		formatted = ts.Format("15:04")
	} else {
		formatted = ts.Format("Jan 2 15:04")
	}
	return timestampStyle.Render(formatted)
}

// renderConfidenceBadge renders the answer confidence as a colored
// percentage, or "" when no confidence was reported.
func (b *MessageBubble) renderConfidenceBadge() string {
	score := b.Message.ConfidenceScore
	if score <= 0 {
		return ""
	}
	return b.theme.ConfidenceBadge(score).Render(util.PercentString(score))
}

// renderStats renders the message statistics line.
func (b *MessageBubble) renderStats() string {
	stats := b.Message.FormatStats()
	if stats == "" {
		return ""
	}
	statsStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		PaddingLeft(2)
	return statsStyle.Render(stats)
}

// renderStreamingCursor renders the streaming cursor animation.
func (b *MessageBubble) renderStreamingCursor() string {
	cursorStyle := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Blink(true)
	return cursorStyle.Render("_")
}

// =============================================================================
// MESSAGE LIST COMPONENT
// =============================================================================

// MessageList renders a conversation as a vertical stack of bubbles.
type MessageList struct {
	Messages       []*model.Message
	Width          int
	ShowTimestamps bool
	ShowStats      bool
	Markdown       bool
	theme          *styles.Theme
	sync           *cite.SyncManager
}

// NewMessageList creates a new MessageList.
func NewMessageList(theme *styles.Theme) *MessageList {
	return &MessageList{
		Messages:       []*model.Message{},
		Width:          80,
		ShowTimestamps: true,
		ShowStats:      true,
		theme:          theme,
	}
}

// SetMessages sets the messages to display.
func (ml *MessageList) SetMessages(messages []*model.Message) {
	ml.Messages = messages
}

// SetWidth sets the list width.
func (ml *MessageList) SetWidth(width int) {
	ml.Width = width
}

// SetSyncManager attaches citation selection state for marker emphasis.
func (ml *MessageList) SetSyncManager(sync *cite.SyncManager) {
	ml.sync = sync
}

// View renders all messages.
func (ml *MessageList) View() string {
	if len(ml.Messages) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Width(ml.Width).
			Align(lipgloss.Center).
			Padding(2, 0)
		return emptyStyle.Render("No messages yet. Ask a question to search your documents.")
	}

	bubbles := make([]string, 0, len(ml.Messages))
	for i, msg := range ml.Messages {
		bubble := NewMessageBubble(msg, ml.theme)
		bubble.SetWidth(ml.Width)
		bubble.ShowTimestamp = ml.ShowTimestamps
		bubble.ShowStats = ml.ShowStats
		bubble.Markdown = ml.Markdown
		bubble.SetIsLatest(i == len(ml.Messages)-1)
		bubble.SetSyncManager(ml.sync)
		bubbles = append(bubbles, bubble.View())
	}

	return strings.Join(bubbles, "\n")
}

// ==========================================================================
// UTILITY FUNCTIONS
// ==========================================================================

// wordWrap wraps text to fit within the specified width.
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lines := strings.Split(text, "\n")

	for lineIdx, line := range lines {
		if lineIdx > 0 {
			result.WriteString("\n")
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		currentLine := words[0]
		for _, word := range words[1:] {
			if util.RuneLen(currentLine)+1+util.RuneLen(word) <= width {
				currentLine += " " + word
			} else {
				result.WriteString(currentLine)
				result.WriteString("\n")
				currentLine = word
			}
		}
		result.WriteString(currentLine)
	}

	return result.String()
}

// maxLineWidth returns the width of the longest line in runes.
func maxLineWidth(text string) int {
	maxWidth := 0
	for _, line := range strings.Split(text, "\n") {
		if w := util.RuneLen(line); w > maxWidth {
			maxWidth = w
		}
	}
	return maxWidth
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
