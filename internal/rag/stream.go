// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rag provides the HTTP client for the RAG backend API.
package rag

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
)

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader handles line-by-line parsing of streaming query responses.
// The backend emits newline-delimited chunks: a line starting with '{'
// parses as a JSON StreamChunk, any other non-empty line degrades to a
// plain text chunk so a misconfigured proxy never breaks rendering.
type StreamReader struct {
	reader     *bufio.Reader
	stats      *StreamStats
	chunkCount int
}

// NewStreamReader creates a new stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		reader: bufio.NewReader(r),
		stats:  NewStreamStats(),
	}
}

// Process reads the stream and calls the callback for each chunk.
// Blocks until the stream is complete or the context is cancelled.
// Returns ctx.Err() on cancellation; the caller owns body closure.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	defer s.stats.Finish()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			chunk, err := s.readChunk()
			if err != nil {
				if err == io.EOF {
					return nil
				}
				// Context cancellation surfaces as a read error on the
				// closed body; report it as cancellation.
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return &ClientError{Type: ErrTypeConnection, Message: "stream read failed", Cause: err}
			}

			if chunk != nil {
				if chunk.Type == ChunkText {
					s.stats.RecordFirstChunk()
				}
				s.chunkCount++
				callback(*chunk)
				if chunk.Type == ChunkDone {
					return nil
				}
			}
		}
	}
}

// readChunk reads and parses a single line from the stream. Returns
// (nil, nil) for blank lines.
func (s *StreamReader) readChunk() (*StreamChunk, error) {
	line, err := s.reader.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(bytes.TrimSpace(line)) == 0 {
			return nil, io.EOF
		}
		if len(bytes.TrimSpace(line)) == 0 {
			return nil, err
		}
		// Process the final unterminated line before reporting EOF.
	}

	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, nil
	}

	if line[0] == '{' {
		var chunk StreamChunk
		if err := json.Unmarshal(line, &chunk); err == nil && chunk.Type != "" {
			return &chunk, nil
		}
	}

	// Plain-text fallback: the whole line is answer content.
	return &StreamChunk{Type: ChunkText, Content: string(line)}, nil
}

// ChunkCount returns the number of chunks delivered so far.
func (s *StreamReader) ChunkCount() int {
	return s.chunkCount
}

// Stats returns the timing statistics collected while reading.
func (s *StreamReader) Stats() *StreamStats {
	return s.stats
}
