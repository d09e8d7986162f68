// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store orchestrates the send/stream/cancel lifecycle of chat turns.
package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/ragchat-tui/internal/assemble"
	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/rag"
)

// MaxQueryLength is the longest accepted input, in characters.
const MaxQueryLength = 1000

// =============================================================================
// STATES & ERRORS
// =============================================================================

// State is the lifecycle position of the current turn.
type State int

const (
	StateIdle State = iota
	StateSending
	StateStreaming
	StateAwaitingResponse
	StateFinalizing
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateAwaitingResponse:
		return "awaiting response"
	case StateFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// ValidationError rejects input before any network call. Non-retryable by
// definition; the user must edit the input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.Reason
}

// =============================================================================
// SETTINGS
// =============================================================================

// Settings are the per-conversation query options.
type Settings struct {
	SearchType       rag.SearchType
	MaxResults       int
	Temperature      float64
	IncludeCitations bool
	Streaming        bool
}

// DefaultSettings returns the settings used until the user changes them.
func DefaultSettings() Settings {
	return Settings{
		SearchType:       rag.SearchHybrid,
		MaxResults:       5,
		Temperature:      0.7,
		IncludeCitations: true,
		Streaming:        true,
	}
}

// SettingsPatch is a partial settings update; nil fields are left alone.
type SettingsPatch struct {
	SearchType       *rag.SearchType
	MaxResults       *int
	Temperature      *float64
	IncludeCitations *bool
	Streaming        *bool
}

// =============================================================================
// QUERIER
// =============================================================================

// Querier is the transport surface the store depends on.
type Querier interface {
	Query(ctx context.Context, req rag.QueryRequest) (*rag.QueryResponse, error)
	StreamQuery(ctx context.Context, req rag.QueryRequest, callback rag.StreamCallback) error
}

// =============================================================================
// STORE
// =============================================================================

// Store owns the message history and runs at most one turn at a time.
// Starting a new turn cancels the previous one; a superseded turn's late
// result is dropped by a turn-ID check before it can touch newer state.
//
// SendMessage blocks for the duration of the turn; run it from a goroutine
// or a tea.Cmd. All exported methods are safe for concurrent use.
type Store struct {
	client   Querier
	conv     *model.Conversation
	settings Settings

	state     State
	turnID    uint64
	cancel    context.CancelFunc
	streaming *model.Message
	lastErr   error

	// onChange is invoked (without the lock held) after every visible
	// state mutation so the UI can redraw.
	onChange func()

	mu sync.Mutex
}

// New creates a store over the given transport.
func New(client Querier, settings Settings) *Store {
	return &Store{
		client:   client,
		conv:     model.NewConversation(),
		settings: settings,
	}
}

// OnChange registers the redraw callback. Must be called before the first
// turn starts.
func (s *Store) OnChange(fn func()) {
	s.onChange = fn
}

func (s *Store) lock()   { s.mu.Lock() }
func (s *Store) unlock() { s.mu.Unlock() }

func (s *Store) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

// =============================================================================
// READ MODEL
// =============================================================================

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.lock()
	defer s.unlock()
	return s.state
}

// Messages returns the finalized history as a copied slice. Callers may
// append to the result without aliasing the conversation's backing array.
func (s *Store) Messages() []*model.Message {
	s.lock()
	defer s.unlock()
	history := s.conv.GetHistory()
	out := make([]*model.Message, len(history))
	copy(out, history)
	return out
}

// Conversation returns the underlying conversation.
func (s *Store) Conversation() *model.Conversation {
	s.lock()
	defer s.unlock()
	return s.conv
}

// StreamingMessage returns a point-in-time copy of the in-progress assistant
// message, or nil when no turn is streaming. The turn goroutine keeps
// appending to the live message under the store lock, so the live pointer
// must never escape to the render goroutine.
func (s *Store) StreamingMessage() *model.Message {
	s.lock()
	defer s.unlock()
	if s.streaming == nil {
		return nil
	}
	return s.streaming.Snapshot()
}

// LastError returns the most recent turn failure, nil after a clean turn.
func (s *Store) LastError() error {
	s.lock()
	defer s.unlock()
	return s.lastErr
}

// Settings returns a copy of the current settings.
func (s *Store) Settings() Settings {
	s.lock()
	defer s.unlock()
	return s.settings
}

// =============================================================================
// COMMANDS
// =============================================================================

// ValidateInput checks text against the input rules without sending.
func ValidateInput(text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Reason: "message is empty"}
	}
	if len([]rune(text)) > MaxQueryLength {
		return &ValidationError{Reason: "message exceeds 1000 characters"}
	}
	return nil
}

// SendMessage validates text, appends the user message, and runs one full
// turn to completion. A prior in-flight turn is cancelled first. Returns a
// ValidationError without touching the network for bad input; transport and
// stream failures are recorded as a visible assistant message and SendMessage
// returns nil for them.
func (s *Store) SendMessage(ctx context.Context, text string) error {
	if err := ValidateInput(text); err != nil {
		return err
	}

	s.lock()

	// At most one turn in flight.
	if s.cancel != nil {
		s.cancel()
	}

	turnCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.turnID++
	turnID := s.turnID

	s.conv.AddUserMessage(text)
	s.streaming = nil
	s.lastErr = nil
	s.state = StateSending

	settings := s.settings
	s.unlock()
	s.notify()

	if settings.Streaming {
		s.runStreamingTurn(turnCtx, turnID, text, settings)
	} else {
		s.runBlockingTurn(turnCtx, turnID, text, settings)
	}
	return nil
}

// CancelRequest cancels the in-flight turn, if any. Cancelling an already
// finished turn has no effect.
func (s *Store) CancelRequest() {
	s.lock()
	cancel := s.cancel
	s.unlock()
	if cancel != nil {
		cancel()
	}
}

// ClearMessages resets history, the transient streaming message, and the
// last error. Settings are untouched.
func (s *Store) ClearMessages() {
	s.lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.turnID++ // orphan any in-flight turn
	s.conv.ClearHistory()
	s.streaming = nil
	s.lastErr = nil
	s.state = StateIdle
	s.unlock()
	s.notify()
}

// RetryLastMessage removes the assistant response(s) after the most recent
// user message and replays that message. No-op when there is no user
// message to retry.
func (s *Store) RetryLastMessage(ctx context.Context) error {
	s.lock()
	last := s.conv.GetLastUserMessage()
	if last == nil {
		s.unlock()
		return nil
	}
	text := last.Content
	s.conv.TruncateFrom(last.ID)
	s.unlock()
	s.notify()

	return s.SendMessage(ctx, text)
}

// UpdateSettings applies a partial settings update.
func (s *Store) UpdateSettings(patch SettingsPatch) {
	s.lock()
	if patch.SearchType != nil {
		s.settings.SearchType = *patch.SearchType
	}
	if patch.MaxResults != nil {
		s.settings.MaxResults = *patch.MaxResults
	}
	if patch.Temperature != nil {
		s.settings.Temperature = *patch.Temperature
	}
	if patch.IncludeCitations != nil {
		s.settings.IncludeCitations = *patch.IncludeCitations
	}
	if patch.Streaming != nil {
		s.settings.Streaming = *patch.Streaming
	}
	s.unlock()
	s.notify()
}

// =============================================================================
// TURN EXECUTION
// =============================================================================

func (s *Store) request(text string, settings Settings, stream bool) rag.QueryRequest {
	return rag.QueryRequest{
		Query:            text,
		SearchType:       settings.SearchType,
		MaxResults:       settings.MaxResults,
		Temperature:      settings.Temperature,
		IncludeCitations: settings.IncludeCitations,
		Stream:           stream,
	}
}

// runStreamingTurn pumps transport chunks into the assembler and applies
// the outcome, guarding against supersession by turn ID.
func (s *Store) runStreamingTurn(ctx context.Context, turnID uint64, text string, settings Settings) {
	s.setTurnState(turnID, StateStreaming)

	msg := model.NewAssistantMessage()
	s.lock()
	if s.turnID == turnID {
		s.streaming = msg
	}
	s.unlock()
	s.notify()

	stats := model.NewStatistics()

	chunks := make(chan rag.StreamChunk, 32)
	transportErr := make(chan error, 1)
	go func() {
		err := s.client.StreamQuery(ctx, s.request(text, settings, true), func(c rag.StreamChunk) {
			select {
			case chunks <- c:
			case <-ctx.Done():
			}
		})
		close(chunks)
		transportErr <- err
	}()

	final, err := assemble.New().Run(ctx, chunks, func(snap assemble.Snapshot) {
		stats.RecordFirstToken()
		s.applySnapshot(turnID, msg, snap)
	})

	if err != nil && !errors.Is(err, assemble.ErrCancelled) {
		// A transport failure explains an empty or truncated stream;
		// prefer it over the assembler's generic error.
		select {
		case terr := <-transportErr:
			if terr != nil {
				err = terr
			}
		default:
		}
	}

	stats.Finalize()
	s.finishTurn(turnID, final, stats, err)
}

// runBlockingTurn issues a single blocking query and adapts the response
// into the same final shape streaming produces.
func (s *Store) runBlockingTurn(ctx context.Context, turnID uint64, text string, settings Settings) {
	s.setTurnState(turnID, StateAwaitingResponse)

	stats := model.NewStatistics()
	resp, err := s.client.Query(ctx, s.request(text, settings, false))
	stats.Finalize()

	var final *assemble.FinalAnswer
	if err == nil {
		final = assemble.FromResponse(resp)
	}
	if ctx.Err() != nil {
		err = assemble.ErrCancelled
		final = nil
	}
	s.finishTurn(turnID, final, stats, err)
}

// setTurnState transitions state only if the turn is still current.
func (s *Store) setTurnState(turnID uint64, state State) {
	s.lock()
	if s.turnID == turnID {
		s.state = state
	}
	s.unlock()
	s.notify()
}

// applySnapshot folds an assembler snapshot into the transient streaming
// message. Stale turns are dropped.
func (s *Store) applySnapshot(turnID uint64, msg *model.Message, snap assemble.Snapshot) {
	s.lock()
	if s.turnID != turnID || s.streaming != msg {
		s.unlock()
		return
	}
	msg.Citations = snap.Citations
	replaceStreamContent(msg, snap.FullText)
	s.unlock()
	s.notify()
}

// replaceStreamContent resets the streaming accumulator to the snapshot
// text. Snapshots are cumulative, so this never loses fragments.
func replaceStreamContent(msg *model.Message, fullText string) {
	current := msg.GetDisplayContent()
	if strings.HasPrefix(fullText, current) {
		msg.AppendToken(fullText[len(current):])
		return
	}
	// Defensive: should not happen with an append-only assembler.
	msg.AppendToken(fullText)
}

// finishTurn applies a turn outcome. The turn-ID guard makes a late result
// from a superseded turn a no-op.
func (s *Store) finishTurn(turnID uint64, final *assemble.FinalAnswer, stats *model.Statistics, err error) {
	s.lock()
	if s.turnID != turnID {
		s.unlock()
		return
	}

	s.state = StateFinalizing
	// Release the turn context so the StreamQuery reader goroutine and the
	// response body are not left behind on abandoned-stream failures.
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.streaming = nil

	switch {
	case err == nil && final != nil:
		msg := model.NewAssistantMessage()
		msg.AppendToken(final.FullText)
		msg.FinalizeStream(stats)
		msg.Citations = final.Citations
		msg.ConfidenceScore = final.Metadata.ConfidenceScore
		msg.ConfidenceLevel = final.Metadata.ConfidenceLevel
		if final.Metadata.ProcessingTimeMs > 0 {
			msg.ProcessingTime = time.Duration(final.Metadata.ProcessingTimeMs) * time.Millisecond
		}
		msg.TokenUsage = final.Metadata.TokenUsage
		s.conv.AddMessage(msg)

	case errors.Is(err, assemble.ErrCancelled) || errors.Is(err, context.Canceled):
		// User-initiated cancel: no message, no error.

	default:
		s.lastErr = err
		s.conv.AddMessage(model.NewErrorMessage(userFacingError(err), isRetryable(err)))
	}

	s.state = StateIdle
	s.unlock()
	s.notify()
}

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

// isRetryable classifies a turn failure: 400-class responses are the
// user's input problem, everything else is worth retrying.
func isRetryable(err error) bool {
	var streamErr *assemble.StreamError
	if errors.As(err, &streamErr) {
		return streamErr.Retryable
	}
	var clientErr *rag.ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Retryable()
	}
	return true
}

// userFacingError renders a failure as chat-bubble text.
func userFacingError(err error) string {
	var clientErr *rag.ClientError
	if errors.As(err, &clientErr) {
		return "Sorry, the request failed: " + clientErr.Message
	}
	var streamErr *assemble.StreamError
	if errors.As(err, &streamErr) {
		return "Sorry, the answer stream failed: " + streamErr.Message
	}
	if err != nil {
		return "Sorry, something went wrong: " + err.Error()
	}
	return "Sorry, something went wrong."
}
