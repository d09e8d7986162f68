// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines keyboard bindings and shortcuts for the chat interface,
// along with help text generation for user reference.
package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
// Each binding supports multiple keys and includes help text for documentation.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	Submit key.Binding
	Cancel key.Binding
	Help   key.Binding
	Quit   key.Binding
	Clear  key.Binding
	Retry  key.Binding
	Copy   key.Binding

	// Retrieval and citation controls
	CycleMode   key.Binding
	FocusPanel  key.Binding
	NextSource  key.Binding
	PrevSource  key.Binding
	ClearSource key.Binding
	CycleSort   key.Binding
	CycleFilter key.Binding
	Stream      key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat interface.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn/C-d", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("Home", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("End", "go to bottom"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send question"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "cancel request"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+h"),
			key.WithHelp("C-h", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q"),
			key.WithHelp("C-q", "quit"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "clear conversation"),
		),
		Retry: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "retry last question"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("C-y", "copy last answer"),
		),
		CycleMode: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "cycle search mode"),
		),
		FocusPanel: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "focus sources"),
		),
		NextSource: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j", "next source"),
		),
		PrevSource: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k", "previous source"),
		),
		ClearSource: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "clear selection"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle sort order"),
		),
		CycleFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle relevance filter"),
		),
		Stream: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "toggle streaming"),
		),
	}
}

// =============================================================================
// KEY BINDING HELPERS
// =============================================================================

// ShortHelp returns a slice of key bindings to show in the short help view.
// These are the most commonly used shortcuts.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.FocusPanel, k.Cancel, k.Help, k.Quit}
}

// FullHelp returns a slice of key bindings to show in the full help view.
// This is organized into groups for better readability.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Navigation
		{k.Up, k.Down, k.PageUp, k.PageDown},
		// Actions
		{k.Submit, k.Cancel, k.Retry, k.Copy, k.Clear},
		// Sources
		{k.FocusPanel, k.NextSource, k.PrevSource, k.ClearSource, k.CycleSort, k.CycleFilter},
		// Modes
		{k.CycleMode, k.Stream, k.Help, k.Quit},
	}
}

// =============================================================================
// HELP TEXT DATA
// =============================================================================

// HelpContext represents the UI context for filtering help items.
// Follows lazygit's pattern of context-aware keybinding display.
type HelpContext string

const (
	// ContextInput is the default state - the input box has focus
	ContextInput HelpContext = "input"
	// ContextPanel is when the sources panel has focus
	ContextPanel HelpContext = "panel"
	// ContextStreaming is when receiving a streaming answer
	ContextStreaming HelpContext = "streaming"
	// ContextError is when an error toast is displayed
	ContextError HelpContext = "error"
)

// HelpCategory represents action type grouping for help display.
type HelpCategory string

const (
	CategoryNavigation HelpCategory = "Navigation"
	CategoryActions    HelpCategory = "Actions"
	CategorySources    HelpCategory = "Sources"
	CategoryModes      HelpCategory = "Modes"
)

// HelpItem represents a single help entry with key, description, and context.
type HelpItem struct {
	Key      string        // Key binding(s) displayed (e.g., "j/k", "C-c")
	Desc     string        // Human-readable description
	Contexts []HelpContext // Contexts where this binding is active
	Category HelpCategory  // Action type grouping for display
}

// GetHelpItems returns all help items for display in the help overlay.
func GetHelpItems() []HelpItem {
	all := []HelpContext{ContextInput, ContextPanel, ContextStreaming, ContextError}
	inputOnly := []HelpContext{ContextInput}
	panelOnly := []HelpContext{ContextPanel}
	streamingOnly := []HelpContext{ContextStreaming}
	errorOnly := []HelpContext{ContextError}
	inputAndPanel := []HelpContext{ContextInput, ContextPanel}

	return []HelpItem{
		// Navigation
		{"up/down", "Scroll conversation", inputAndPanel, CategoryNavigation},
		{"PgUp/C-u", "Page up", inputAndPanel, CategoryNavigation},
		{"PgDn/C-d", "Page down", inputAndPanel, CategoryNavigation},
		{"Home/End", "Jump to top/bottom", inputAndPanel, CategoryNavigation},

		// Actions
		{"Enter", "Send question", inputOnly, CategoryActions},
		{"C-c", "Cancel running answer", streamingOnly, CategoryActions},
		{"C-r", "Retry last question", []HelpContext{ContextInput, ContextError}, CategoryActions},
		{"C-y", "Copy last answer", inputAndPanel, CategoryActions},
		{"C-l", "Clear conversation", inputOnly, CategoryActions},

		// Sources
		{"Tab", "Focus sources panel", all, CategorySources},
		{"j/k", "Next/previous source", panelOnly, CategorySources},
		{"Enter", "Flash marker in answer", panelOnly, CategorySources},
		{"Esc", "Clear source selection", panelOnly, CategorySources},
		{"s", "Cycle sort order", panelOnly, CategorySources},
		{"f", "Cycle relevance filter", panelOnly, CategorySources},

		// Modes
		{"C-t", "Cycle search mode", inputOnly, CategoryModes},
		{"C-s", "Toggle streaming", inputOnly, CategoryModes},
		{"C-h", "Toggle help", all, CategoryModes},
		{"C-q", "Quit", all, CategoryActions},

		// Error specific
		{"x", "Dismiss toast", errorOnly, CategoryActions},
	}
}

// GetHelpItemsForContext returns help items filtered for the given context.
// Only currently-active keybindings are shown.
func GetHelpItemsForContext(ctx HelpContext) []HelpItem {
	all := GetHelpItems()
	var filtered []HelpItem

	for _, item := range all {
		for _, itemCtx := range item.Contexts {
			if itemCtx == ctx {
				filtered = append(filtered, item)
				break
			}
		}
	}

	return filtered
}

// GetHelpItemsByCategory returns help items grouped by category for the given context.
func GetHelpItemsByCategory(ctx HelpContext) map[HelpCategory][]HelpItem {
	items := GetHelpItemsForContext(ctx)
	grouped := make(map[HelpCategory][]HelpItem)

	for _, item := range items {
		grouped[item.Category] = append(grouped[item.Category], item)
	}

	return grouped
}

// GetCategoryOrder returns the preferred display order for categories.
func GetCategoryOrder() []HelpCategory {
	return []HelpCategory{
		CategoryNavigation,
		CategoryActions,
		CategorySources,
		CategoryModes,
	}
}

// GetContextDisplayName returns a human-readable name for a context.
func GetContextDisplayName(ctx HelpContext) string {
	switch ctx {
	case ContextInput:
		return "Input"
	case ContextPanel:
		return "Sources"
	case ContextStreaming:
		return "Streaming"
	case ContextError:
		return "Error"
	default:
		return string(ctx)
	}
}
