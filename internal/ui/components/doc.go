// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the ragchat TUI.

This package contains a collection of styled, interactive components built on
top of the Bubble Tea and Lip Gloss libraries. Each component is designed to
be visually consistent with the ragchat design language.

# Core Components

## Display Components

MessageBubble (message.go) - Styled chat bubbles with inline citation markers.
MessageList (message.go) - A conversation rendered as a stack of bubbles.
CitationPanel (citations.go) - The source card list, synchronized with the
inline markers in the answer text.
StatusBar (statusbar.go) - Bottom status bar with retrieval mode, answer
confidence, and shortcuts.
Welcome (welcome.go) - First-run welcome screen.

## Progress and Feedback

Spinner (spinner.go) - Animated spinner with elapsed time display.
PhaseIndicator (spinner.go) - Spinner whose label follows the request
lifecycle (searching, thinking, finalizing).
Toast / ToastManager (error_toast.go) - Non-blocking bottom-right
notifications that auto-dismiss.

# Theme Integration

All components accept a *styles.Theme for consistent styling:

	theme := styles.NewTheme()
	bar := components.NewStatusBar(theme)
	bar.SetWidth(80)
	view := bar.View()

# Citation Synchronization

The CitationPanel owns a cite.SyncManager and implements its Surface
interface. MessageBubble shares that manager via SetSyncManager, so marker
clicks in the answer text highlight the matching card and card clicks flash
the matching marker.
*/
package components
