// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the application
// for representing chat conversations, messages, and retrieval modes.
//
// # Key Types
//
//   - Conversation: Container for a chat session with messages and metadata
//   - Message: Single message with role, content, citations, and timing
//   - Statistics: Per-answer timing (TTFT, total duration)
//   - SearchModeInfo: Display metadata for a retrieval strategy
//
// # Usage
//
// Create a new conversation and stream an answer into it:
//
//	conv := model.NewConversation()
//	conv.AddUserMessage("What is hybrid search?")
//	msg := model.NewAssistantMessage()
//	msg.AppendToken("Hybrid search combines...")
//	msg.FinalizeStream(stats)
//	conv.AddMessage(msg)
package model
