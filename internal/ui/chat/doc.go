// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the main chat view component for the ragchat TUI.

The chat package implements a terminal question-and-answer interface over a
RAG backend using the Bubble Tea framework. Answers stream in token by token
with inline citation markers that stay synchronized with a sources panel.

# Key Components

## Model (model.go)

The Model struct is the central Bubble Tea model. It does not own
conversation state itself; the store (internal/store) runs each turn on its
own goroutine and the model polls it:
  - store.OnChange marks the render throttle dirty
  - a ~30fps tick re-reads the store snapshot when something changed
  - turn completion arrives as a TurnDoneMsg from the send command

## View Rendering (view.go)

Rendering logic for the complete interface:
  - Header with search mode and connection status
  - Conversation viewport with message bubbles and citation markers
  - Sources panel, side by side in the wide layout
  - Input area with character count and focus ring
  - Status bar with mode, confidence, and source count
  - Toast and help overlays

## Commands (update.go)

tea.Cmd creators for the blocking operations: sending a question,
retrying the last one, and copying the last answer to the clipboard.

## Render Throttling (streaming.go)

RenderThrottle coalesces store change notifications into at most ~30
renders per second so fast token streams stay flicker free.

# Usage

Create a chat model wired to a store and run it as a Bubble Tea program:

	client := rag.NewClient(&rag.ClientConfig{BaseURL: cfg.Server.BaseURL}, nil)
	st := store.New(client, store.DefaultSettings())
	m := chat.New(st, cfg, version)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
*/
package chat
