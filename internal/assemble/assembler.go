// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assemble builds a complete answer from a stream of typed chunks.
package assemble

import (
	"context"
	"errors"
	"strings"

	"github.com/jeranaias/ragchat-tui/internal/rag"
)

// ErrCancelled is the distinguished outcome for a user-initiated cancel.
// It is not a failure; callers must not surface it as an error.
var ErrCancelled = errors.New("assembly cancelled")

// =============================================================================
// RESULT TYPES
// =============================================================================

// Metadata is the answer-level metadata accumulated from metadata chunks,
// merged key by key with later values overwriting earlier ones.
type Metadata struct {
	ConfidenceScore  float64
	ConfidenceLevel  rag.ConfidenceLevel
	ProcessingTimeMs int64
	ModelName        string
	TokenUsage       *rag.TokenUsage
}

// merge applies one metadata chunk on top of the accumulated state.
func (m *Metadata) merge(chunk *rag.ChunkMeta) {
	if chunk == nil {
		return
	}
	if chunk.ConfidenceScore != nil {
		m.ConfidenceScore = *chunk.ConfidenceScore
	}
	if chunk.ConfidenceLevel != nil {
		m.ConfidenceLevel = *chunk.ConfidenceLevel
	}
	if chunk.ProcessingTimeMs != nil {
		m.ProcessingTimeMs = *chunk.ProcessingTimeMs
	}
	if chunk.ModelName != nil {
		m.ModelName = *chunk.ModelName
	}
	if chunk.TokenUsage != nil {
		usage := *chunk.TokenUsage
		m.TokenUsage = &usage
	}
}

// Snapshot is a stable copy of the in-progress answer handed to the update
// callback. Renderers may hold it across further appends without seeing
// later mutations.
type Snapshot struct {
	FullText   string
	Citations  []rag.Citation
	IsComplete bool
}

// FinalAnswer is the completed answer produced by assembly or by a blocking
// query. Both paths produce the identical shape so downstream code is
// agnostic to which mode ran.
type FinalAnswer struct {
	FullText  string
	Citations []rag.Citation
	Metadata  Metadata
}

// StreamError reports a failure delivered in-band by an error chunk.
type StreamError struct {
	Message   string
	Retryable bool
}

func (e *StreamError) Error() string {
	return "stream error: " + e.Message
}

// UpdateFunc receives a snapshot after every text chunk.
type UpdateFunc func(Snapshot)

// =============================================================================
// ASSEMBLER
// =============================================================================

// Assembler accumulates one answer from an ordered chunk sequence. Text is
// append-only, citations are append-only, metadata is last-write-wins.
// An Assembler is single-use; create a new one per turn.
type Assembler struct {
	// PERFORMANCE: strings.Builder avoids quadratic allocations on append
	text      strings.Builder
	citations []rag.Citation
	meta      Metadata
}

// New creates an empty assembler.
func New() *Assembler {
	return &Assembler{}
}

// Run consumes chunks from the channel until a done chunk, an error chunk,
// channel close, or context cancellation. onUpdate is invoked with a stable
// snapshot after every text chunk; it is never invoked after cancellation.
//
// Outcomes:
//   - done chunk, or channel close after content arrived: (*FinalAnswer, nil)
//   - error chunk: (nil, *StreamError)
//   - context cancelled: (nil, ErrCancelled), partial state discarded
//   - channel close with nothing received: (nil, *StreamError)
func (a *Assembler) Run(ctx context.Context, chunks <-chan rag.StreamChunk, onUpdate UpdateFunc) (*FinalAnswer, error) {
	for {
		select {
		case <-ctx.Done():
			a.discard()
			return nil, ErrCancelled

		case chunk, ok := <-chunks:
			if !ok {
				// Stream ended without an explicit done chunk. Finalize
				// if anything arrived; a completely empty stream is a
				// transport-level failure.
				if a.text.Len() > 0 || len(a.citations) > 0 {
					return a.finalize(), nil
				}
				return nil, &StreamError{Message: "stream ended without content", Retryable: true}
			}

			// A cancel racing a delivered chunk still wins; never apply
			// chunks after the signal fires.
			if ctx.Err() != nil {
				a.discard()
				return nil, ErrCancelled
			}

			final, err := a.apply(chunk, onUpdate)
			if err != nil {
				return nil, err
			}
			if final != nil {
				return final, nil
			}
		}
	}
}

// apply processes one chunk. Returns a FinalAnswer on done, an error on an
// error chunk, and (nil, nil) otherwise.
func (a *Assembler) apply(chunk rag.StreamChunk, onUpdate UpdateFunc) (*FinalAnswer, error) {
	switch chunk.Type {
	case rag.ChunkText:
		a.text.WriteString(chunk.Content)
		if onUpdate != nil {
			onUpdate(a.snapshot())
		}

	case rag.ChunkCitation:
		if chunk.Citation != nil {
			a.citations = append(a.citations, *chunk.Citation)
		}

	case rag.ChunkMetadata:
		a.meta.merge(chunk.Metadata)

	case rag.ChunkError:
		msg := chunk.Error
		if msg == "" {
			msg = "the backend reported an unspecified error"
		}
		return nil, &StreamError{Message: msg, Retryable: true}

	case rag.ChunkDone:
		return a.finalize(), nil
	}

	return nil, nil
}

// snapshot returns a stable copy of the current accumulated state.
func (a *Assembler) snapshot() Snapshot {
	citations := make([]rag.Citation, len(a.citations))
	copy(citations, a.citations)
	return Snapshot{
		FullText:   a.text.String(),
		Citations:  citations,
		IsComplete: false,
	}
}

// finalize returns the completed answer.
func (a *Assembler) finalize() *FinalAnswer {
	return &FinalAnswer{
		FullText:  a.text.String(),
		Citations: a.citations,
		Metadata:  a.meta,
	}
}

// discard drops partial state after cancellation.
func (a *Assembler) discard() {
	a.text.Reset()
	a.citations = nil
	a.meta = Metadata{}
}

// =============================================================================
// NON-STREAMING MODE
// =============================================================================

// FromResponse converts a blocking query response into the same FinalAnswer
// shape assembly produces.
func FromResponse(resp *rag.QueryResponse) *FinalAnswer {
	usage := resp.TokenUsage
	return &FinalAnswer{
		FullText:  resp.Answer,
		Citations: resp.Citations,
		Metadata: Metadata{
			ConfidenceScore:  resp.ConfidenceScore,
			ConfidenceLevel:  resp.ConfidenceLevel,
			ProcessingTimeMs: resp.ProcessingTimeMs,
			ModelName:        resp.ModelName,
			TokenUsage:       &usage,
		},
	}
}
