// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cite derives and synchronizes citation views over answer text.
package cite

import (
	"strconv"
	"time"
)

// PulseDuration is how long a clicked card or marker stays visually
// highlighted before the flag auto-clears.
const PulseDuration = time.Second

// =============================================================================
// RENDER SURFACE
// =============================================================================

// Surface is the rendering layer's imperative hook set. The sync manager
// issues scroll and flash intents through it and never touches presentation
// directly.
type Surface interface {
	ScrollIntoView(targetID string)
	FlashTransient(targetID string, duration time.Duration)
}

// CardTargetID names the Nth citation card for Surface intents.
func CardTargetID(n int) string {
	return "citation-card-" + strconv.Itoa(n)
}

// MarkerTargetID names the Nth inline marker for Surface intents.
func MarkerTargetID(n int) string {
	return "citation-marker-" + strconv.Itoa(n)
}

// =============================================================================
// SYNC MANAGER
// =============================================================================

// SyncManager owns the active/hover citation selection for one rendered
// answer and drives bidirectional marker/card navigation. Indices are
// 1-based; zero means no selection.
//
// The manager holds no transport or network state; its only side effects
// are intents sent to the Surface.
type SyncManager struct {
	surface Surface
	count   int

	active  int
	hovered int

	// Pulse state auto-clears by expiry, independent of later events.
	pulseIndex int
	pulseUntil time.Time
	flashIndex int
	flashUntil time.Time

	now func() time.Time
}

// NewSyncManager creates a manager issuing intents to the given surface.
// surface may be nil when no rendering layer is attached (e.g. tests).
func NewSyncManager(surface Surface) *SyncManager {
	return &SyncManager{surface: surface, now: time.Now}
}

// SetCitationCount sets the number of citations in the current answer and
// drops any selection pointing past the new count.
func (m *SyncManager) SetCitationCount(count int) {
	m.count = count
	if m.active > count {
		m.active = 0
	}
	if m.hovered > count {
		m.hovered = 0
	}
}

// Reset clears all selection and pulse state. Called when the message list
// is cleared or a new turn starts.
func (m *SyncManager) Reset() {
	m.count = 0
	m.active = 0
	m.hovered = 0
	m.pulseIndex = 0
	m.flashIndex = 0
	m.pulseUntil = time.Time{}
	m.flashUntil = time.Time{}
}

// ActiveIndex returns the active citation index, 0 if none.
func (m *SyncManager) ActiveIndex() int {
	return m.active
}

// HoveredIndex returns the hovered citation index, 0 if none.
func (m *SyncManager) HoveredIndex() int {
	return m.hovered
}

// CitationCount returns the citation count last set.
func (m *SyncManager) CitationCount() int {
	return m.count
}

// =============================================================================
// ACTIVATION
// =============================================================================

// ClickMarker activates citation n from its inline marker: the matching
// card scrolls into view and pulses for PulseDuration.
func (m *SyncManager) ClickMarker(n int) {
	if n < 1 || n > m.count {
		return
	}
	m.active = n
	m.pulseIndex = n
	m.pulseUntil = m.now().Add(PulseDuration)
	if m.surface != nil {
		m.surface.ScrollIntoView(CardTargetID(n))
		m.surface.FlashTransient(CardTargetID(n), PulseDuration)
	}
}

// ClickCard activates citation n from its card: the matching inline marker
// scrolls into view and flashes for PulseDuration.
func (m *SyncManager) ClickCard(n int) {
	if n < 1 || n > m.count {
		return
	}
	m.active = n
	m.flashIndex = n
	m.flashUntil = m.now().Add(PulseDuration)
	if m.surface != nil {
		m.surface.ScrollIntoView(MarkerTargetID(n))
		m.surface.FlashTransient(MarkerTargetID(n), PulseDuration)
	}
}

// HoverCard sets the hovered citation. Passing 0 clears the hover. Hover
// never affects the active selection.
func (m *SyncManager) HoverCard(n int) {
	if n < 0 || n > m.count {
		return
	}
	m.hovered = n
}

// IsCardPulsing reports whether card n is inside its post-click pulse
// window. The flag clears by expiry regardless of further interaction.
func (m *SyncManager) IsCardPulsing(n int) bool {
	return m.pulseIndex == n && m.now().Before(m.pulseUntil)
}

// IsMarkerFlashing reports whether marker n is inside its post-click flash
// window.
func (m *SyncManager) IsMarkerFlashing(n int) bool {
	return m.flashIndex == n && m.now().Before(m.flashUntil)
}

// =============================================================================
// KEYBOARD NAVIGATION
// =============================================================================

// Next moves the active selection down: 1 when nothing is selected, else
// one past the current index, clamped at the end. No-op without citations.
func (m *SyncManager) Next() {
	if m.count == 0 {
		return
	}
	if m.active == 0 {
		m.active = 1
		return
	}
	if m.active < m.count {
		m.active++
	}
}

// Prev moves the active selection up: the last citation when nothing is
// selected, else one before the current index, clamped at 1. No-op without
// citations.
func (m *SyncManager) Prev() {
	if m.count == 0 {
		return
	}
	if m.active == 0 {
		m.active = m.count
		return
	}
	if m.active > 1 {
		m.active--
	}
}

// ClearSelection clears both the active and hovered selection (Escape).
func (m *SyncManager) ClearSelection() {
	if m.count == 0 {
		return
	}
	m.active = 0
	m.hovered = 0
}
