// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/ragchat-tui/internal/rag"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// Streaming state (not persisted)
	// PERFORMANCE: strings.Builder avoids quadratic allocations during streaming
	IsStreaming   bool            `json:"-"`
	streamContent strings.Builder `json:"-"`

	// Retrieval results (assistant messages)
	Citations       []rag.Citation      `json:"citations,omitempty"`
	ConfidenceScore float64             `json:"confidence_score,omitempty"`
	ConfidenceLevel rag.ConfidenceLevel `json:"confidence_level,omitempty"`

	// Terminal state
	IsError   bool   `json:"is_error,omitempty"`
	ErrorText string `json:"error_text,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`

	// Performance metrics (assistant messages)
	ProcessingTime time.Duration `json:"processing_time_ns,omitempty"`
	TTFT           time.Duration `json:"ttft_ns,omitempty"`
	TokenUsage     *rag.TokenUsage `json:"token_usage,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates a new streaming assistant message.
func NewAssistantMessage() *Message {
	return &Message{
		ID:          generateID(),
		Role:        RoleAssistant,
		Timestamp:   time.Now(),
		IsStreaming: true,
	}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) *Message {
	return NewMessage(RoleSystem, content)
}

// NewErrorMessage creates a terminal assistant message carrying an error.
func NewErrorMessage(errText string, retryable bool) *Message {
	msg := NewMessage(RoleAssistant, errText)
	msg.IsError = true
	msg.ErrorText = errText
	msg.Retryable = retryable
	return msg
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// AppendToken appends a token to a streaming message.
func (m *Message) AppendToken(token string) {
	if m.IsStreaming {
		m.streamContent.WriteString(token)
	}
}

// AddCitation attaches a retrieved source to the message.
func (m *Message) AddCitation(c rag.Citation) {
	m.Citations = append(m.Citations, c)
}

// FinalizeStream completes streaming and records statistics.
func (m *Message) FinalizeStream(stats *Statistics) {
	if !m.IsStreaming {
		return
	}

	m.Content = m.streamContent.String()
	m.streamContent.Reset()
	m.IsStreaming = false

	if stats != nil {
		m.TTFT = stats.TTFT
		m.ProcessingTime = stats.TotalDuration
	}
}

// Snapshot returns an independent copy of the message. The copy carries the
// same display content and a copied citations slice, so a reader can hold it
// while the original keeps streaming. Callers must synchronize access to the
// original for the duration of the call.
func (m *Message) Snapshot() *Message {
	snap := &Message{
		ID:              m.ID,
		Role:            m.Role,
		Timestamp:       m.Timestamp,
		Content:         m.Content,
		IsStreaming:     m.IsStreaming,
		ConfidenceScore: m.ConfidenceScore,
		ConfidenceLevel: m.ConfidenceLevel,
		IsError:         m.IsError,
		ErrorText:       m.ErrorText,
		Retryable:       m.Retryable,
		ProcessingTime:  m.ProcessingTime,
		TTFT:            m.TTFT,
		TokenUsage:      m.TokenUsage,
	}
	if len(m.Citations) > 0 {
		snap.Citations = make([]rag.Citation, len(m.Citations))
		copy(snap.Citations, m.Citations)
	}
	if m.IsStreaming {
		snap.streamContent.WriteString(m.streamContent.String())
	}
	return snap
}

// GetDisplayContent returns the content to display (streaming or final).
func (m *Message) GetDisplayContent() string {
	if m.IsStreaming {
		return m.streamContent.String()
	}
	return m.Content
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	content := m.GetDisplayContent()
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0 && m.streamContent.Len() == 0
}

// HasCitations returns true if any sources were attached.
func (m *Message) HasCitations() bool {
	return len(m.Citations) > 0
}

// FormatStats returns a formatted statistics line for display.
func (m *Message) FormatStats() string {
	if m.Role != RoleAssistant || m.ProcessingTime == 0 {
		return ""
	}

	// Format: "1.2s | 3 sources | 82% confidence | TTFT 234ms"
	parts := []string{formatDuration(m.ProcessingTime.Seconds())}
	if len(m.Citations) > 0 {
		parts = append(parts, formatInt(len(m.Citations))+" sources")
	}
	if m.ConfidenceScore > 0 {
		parts = append(parts, formatInt(int(m.ConfidenceScore*100))+"% confidence")
	}
	if m.TTFT > 0 {
		parts = append(parts, "TTFT "+formatInt(int(m.TTFT.Milliseconds()))+"ms")
	}
	return strings.Join(parts, " | ")
}

// =============================================================================
// STATISTICS TYPE
// =============================================================================

// Statistics holds timing information for a single answer.
type Statistics struct {
	StartTime      time.Time
	FirstTokenTime time.Time
	EndTime        time.Time

	// Derived metrics (computed on Finalize)
	TTFT          time.Duration
	TotalDuration time.Duration
}

// NewStatistics creates a new Statistics with the start time set.
func NewStatistics() *Statistics {
	return &Statistics{
		StartTime: time.Now(),
	}
}

// RecordFirstToken records when the first token was received.
func (s *Statistics) RecordFirstToken() {
	if s.FirstTokenTime.IsZero() {
		s.FirstTokenTime = time.Now()
		s.TTFT = s.FirstTokenTime.Sub(s.StartTime)
	}
}

// Finalize computes the final statistics.
func (s *Statistics) Finalize() {
	s.EndTime = time.Now()
	s.TotalDuration = s.EndTime.Sub(s.StartTime)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	return "msg_" + uuid.NewString()
}

// formatInt formats a non-negative integer without using fmt.
func formatInt(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + formatInt(-n)
	}

	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// formatFloat64 formats a float with one decimal place. Truncates rather
// than rounds; intended for display only.
func formatFloat64(f float64) string {
	if f != f { // NaN
		return "NaN"
	}

	whole := int(f)
	absF := f
	if absF < 0 {
		absF = -absF
	}
	absWhole := whole
	if absWhole < 0 {
		absWhole = -absWhole
	}
	frac := int((absF - float64(absWhole)) * 10)

	return formatInt(whole) + "." + formatInt(frac)
}

// formatDuration formats seconds as a short duration string.
func formatDuration(seconds float64) string {
	if seconds < 1 {
		return formatInt(int(seconds*1000)) + "ms"
	}
	return formatFloat64(seconds) + "s"
}
