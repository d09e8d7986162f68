// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/store"
)

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// sendMessageCmd runs a full turn against the store. SendMessage blocks
// until the turn finishes (tokens stream into the store as they arrive,
// picked up by the render tick), so the returned TurnDoneMsg marks turn
// completion.
func sendMessageCmd(st *store.Store, text string) tea.Cmd {
	return func() tea.Msg {
		err := st.SendMessage(context.Background(), text)
		return TurnDoneMsg{Err: err}
	}
}

// retryCmd replays the most recent user question.
func retryCmd(st *store.Store) tea.Cmd {
	return func() tea.Msg {
		err := st.RetryLastMessage(context.Background())
		return TurnDoneMsg{Err: err}
	}
}

// copyLastAnswerCmd copies the most recent completed answer to the system
// clipboard, with its source list appended so the citation markers stay
// meaningful outside the app.
func copyLastAnswerCmd(st *store.Store) tea.Cmd {
	return func() tea.Msg {
		last := st.Conversation().GetLastAssistantMessage()
		if last == nil || strings.TrimSpace(last.GetDisplayContent()) == "" {
			return CopyCompleteMsg{Success: false, Error: errors.New("no answer to copy")}
		}

		if err := copyToClipboard(formatAnswerForClipboard(last)); err != nil {
			return CopyCompleteMsg{Success: false, Error: err}
		}
		return CopyCompleteMsg{Success: true}
	}
}

// formatAnswerForClipboard renders an answer as plain text with a
// numbered source list.
func formatAnswerForClipboard(msg *model.Message) string {
	var sb strings.Builder
	sb.WriteString(msg.GetDisplayContent())
	sb.WriteString("\n\nAnswered ")
	sb.WriteString(formatTimestamp(msg.Timestamp))

	if len(msg.Citations) > 0 {
		sb.WriteString("\n\nSources:\n")
		for i, c := range msg.Citations {
			sb.WriteString("[")
			sb.WriteString(formatInt(i + 1))
			sb.WriteString("] ")
			sb.WriteString(c.DocumentTitle)
			sb.WriteString(" (")
			sb.WriteString(formatInt(c.RelevancePercent()))
			sb.WriteString("% relevant)")
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
