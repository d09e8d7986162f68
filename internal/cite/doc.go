// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cite derives and synchronizes citation views over answer text.
//
// Three pure derivations plus one stateful coordinator:
//
//   - PhraseLocator maps citations onto highlighted spans of the answer by
//     heuristic phrase and title search, merging overlaps.
//   - ParseMarkers splits answer text into literal segments and inline [N]
//     citation markers, degrading out-of-range references to literal text.
//   - ApplyFilter produces a filtered, sorted display copy of the citation
//     list without renumbering inline markers.
//   - SyncManager tracks the active and hovered citation, drives keyboard
//     navigation, and issues scroll/flash intents to a Surface implemented
//     by the rendering layer.
//
// The derivation functions never fail; bad input degrades to empty or
// literal output so rendering is never blocked on malformed citations.
package cite
