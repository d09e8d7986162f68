// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"fmt"

	"github.com/jeranaias/ragchat-tui/internal/rag"
)

// =============================================================================
// SEARCH MODE INFO
// =============================================================================

// SearchModeInfo describes a retrieval strategy for display in the
// settings panel.
type SearchModeInfo struct {
	// Type is the wire value sent to the backend.
	Type rag.SearchType `json:"type"`

	// Name is the human-readable display name.
	Name string `json:"name"`

	// Description is a brief explanation of when the mode works best.
	Description string `json:"description"`
}

// SearchModes is the registry of retrieval strategies, in display order.
var SearchModes = []SearchModeInfo{
	{
		Type:        rag.SearchKeyword,
		Name:        "Keyword",
		Description: "Exact term matching; best for names, codes, and quoted phrases",
	},
	{
		Type:        rag.SearchVector,
		Name:        "Semantic",
		Description: "Embedding similarity; best for conceptual questions",
	},
	{
		Type:        rag.SearchHybrid,
		Name:        "Hybrid",
		Description: "Combines keyword and semantic ranking; the default",
	},
}

// GetSearchModeInfo returns the info for a search type, falling back to a
// generic entry for unknown values.
func GetSearchModeInfo(t rag.SearchType) SearchModeInfo {
	for _, mode := range SearchModes {
		if mode.Type == t {
			return mode
		}
	}
	return SearchModeInfo{
		Type:        t,
		Name:        string(t),
		Description: fmt.Sprintf("Unknown search mode %q", t),
	}
}

// NextSearchMode returns the mode after t in display order, wrapping
// around. Used by the settings panel to cycle modes with a single key.
func NextSearchMode(t rag.SearchType) rag.SearchType {
	for i, mode := range SearchModes {
		if mode.Type == t {
			return SearchModes[(i+1)%len(SearchModes)].Type
		}
	}
	return SearchModes[0].Type
}
