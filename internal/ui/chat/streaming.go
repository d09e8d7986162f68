// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements the render throttle for streaming answers. The store
// appends tokens on its own goroutine and marks the throttle dirty; the tea
// loop checks the throttle on each tick and only re-renders when something
// changed and the frame budget allows it.
package chat

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// RENDER THROTTLE
// =============================================================================

// RenderThrottle coalesces store change notifications into capped-rate
// renders. A render happens when:
// 1. The store changed since the last render, AND
// 2. Enough time has passed since the last render (e.g., 33ms for 30fps)
//
// This prevents excessive rendering (>1000fps during fast token streams)
// which causes flicker and high CPU usage, while maintaining smooth visual
// updates.
//
// Thread-safety: all operations are protected by a mutex since MarkDirty is
// called from store goroutines while TakeRender runs in the tea loop.
type RenderThrottle struct {
	mu         sync.Mutex
	dirty      bool
	changes    int
	lastRender time.Time

	// Configuration
	maxFPS     int           // Max frames per second (default: 30)
	minFlushMs time.Duration // Min time between renders (1000/maxFPS)
}

// NewRenderThrottle creates a throttle with default settings.
// Default configuration:
// - Max FPS: 30 (smooth but not wasteful)
// - Min render interval: ~33ms (1000ms / 30fps)
func NewRenderThrottle() *RenderThrottle {
	const defaultMaxFPS = 30

	return &RenderThrottle{
		maxFPS:     defaultMaxFPS,
		minFlushMs: time.Duration(1000/defaultMaxFPS) * time.Millisecond,
		lastRender: time.Now(),
	}
}

// NewRenderThrottleWithFPS creates a throttle with a custom frame rate.
func NewRenderThrottleWithFPS(maxFPS int) *RenderThrottle {
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = 30
	}

	return &RenderThrottle{
		maxFPS:     maxFPS,
		minFlushMs: time.Duration(1000/maxFPS) * time.Millisecond,
		lastRender: time.Now(),
	}
}

// MarkDirty records that the store changed since the last render.
// Called from the store's change callback on request goroutines.
func (rt *RenderThrottle) MarkDirty() {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.dirty = true
	rt.changes++
}

// TakeRender reports whether the view should re-render now and, if so,
// consumes the dirty flag. Called from the tea loop on each tick.
func (rt *RenderThrottle) TakeRender() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if !rt.dirty {
		return false
	}
	if time.Since(rt.lastRender) < rt.minFlushMs {
		return false
	}

	rt.dirty = false
	rt.lastRender = time.Now()
	return true
}

// ForceRender consumes the dirty flag regardless of the frame budget.
// Use this when a stream completes so the final text is never delayed.
func (rt *RenderThrottle) ForceRender() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if !rt.dirty {
		return false
	}

	rt.dirty = false
	rt.lastRender = time.Now()
	return true
}

// IsDirty reports whether a change is pending without consuming it.
func (rt *RenderThrottle) IsDirty() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.dirty
}

// Changes returns the number of change notifications seen so far.
// Useful for debugging and metrics.
func (rt *RenderThrottle) Changes() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.changes
}

// Reset clears pending state. Use when cancelling a stream or clearing
// the conversation.
func (rt *RenderThrottle) Reset() {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.dirty = false
	rt.changes = 0
	rt.lastRender = time.Now()
}

// GetConfig returns the current throttle configuration.
func (rt *RenderThrottle) GetConfig() (maxFPS int, minFlushMs time.Duration) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.maxFPS, rt.minFlushMs
}

// SetMaxFPS updates the maximum frame rate.
func (rt *RenderThrottle) SetMaxFPS(fps int) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if fps > 0 && fps <= 60 {
		rt.maxFPS = fps
		rt.minFlushMs = time.Duration(1000/fps) * time.Millisecond
	}
}

// =============================================================================
// STREAMING TICK COMMAND
// =============================================================================

// streamTickCmd creates a tea.Cmd that sends StreamTickMsg at 30fps.
// The tick loop runs only while a request is in flight or a citation
// pulse is active; the model stops scheduling ticks when idle.
func streamTickCmd() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}
