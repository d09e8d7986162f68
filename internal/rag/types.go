// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rag provides the HTTP client for the RAG backend API.
package rag

import "time"

// =============================================================================
// SEARCH TYPES
// =============================================================================

// SearchType selects the retrieval strategy used by the backend.
type SearchType string

const (
	SearchKeyword SearchType = "keyword"
	SearchVector  SearchType = "vector"
	SearchHybrid  SearchType = "hybrid"
)

// =============================================================================
// CITATION TYPE
// =============================================================================

// Citation references a retrieved document chunk that supports part of an
// answer. Citations are immutable once received; their position in the
// response list defines the 1-based display index used by inline [N] markers.
type Citation struct {
	DocumentID     string `json:"document_id"`
	DocumentTitle  string `json:"document_title"`
	ChunkID        string `json:"chunk_id,omitempty"`
	ChunkIndex     int    `json:"chunk_index,omitempty"`
	ContentSnippet string `json:"content_snippet"`

	// RelevanceScore is in [0, 1].
	RelevanceScore float64 `json:"relevance_score"`
}

// RelevancePercent returns the relevance score as a rounded percentage.
func (c Citation) RelevancePercent() int {
	return int(c.RelevanceScore*100 + 0.5)
}

// =============================================================================
// CONFIDENCE LEVEL
// =============================================================================

// ConfidenceLevel categorizes the backend's confidence in an answer.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// =============================================================================
// REQUEST / RESPONSE TYPES
// =============================================================================

// QueryRequest is the body for both the blocking and streaming query
// endpoints. Field names follow the backend's snake_case wire format.
type QueryRequest struct {
	Query            string     `json:"query"`
	SearchType       SearchType `json:"search_type"`
	MaxResults       int        `json:"max_results"`
	Temperature      float64    `json:"temperature"`
	IncludeCitations bool       `json:"include_citations"`
	Stream           bool       `json:"stream"`
}

// TokenUsage reports prompt/completion token counts for a query.
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

// QueryResponse is the complete answer returned by the blocking endpoint.
type QueryResponse struct {
	AnswerID           string          `json:"answer_id"`
	QueryID            string          `json:"query_id"`
	Answer             string          `json:"answer"`
	Citations          []Citation      `json:"citations"`
	ConfidenceScore    float64         `json:"confidence_score"`
	ConfidenceLevel    ConfidenceLevel `json:"confidence_level"`
	SearchResultsCount int             `json:"search_results_count"`
	ProcessingTimeMs   int64           `json:"processing_time_ms"`
	ModelName          string          `json:"model_name"`
	TokenUsage         TokenUsage      `json:"token_usage"`
}

// =============================================================================
// STREAM CHUNK
// =============================================================================

// ChunkType tags a StreamChunk variant.
type ChunkType string

const (
	ChunkText     ChunkType = "text"
	ChunkCitation ChunkType = "citation"
	ChunkMetadata ChunkType = "metadata"
	ChunkError    ChunkType = "error"
	ChunkDone     ChunkType = "done"
)

// ChunkMeta carries answer-level metadata delivered mid-stream. Later chunks
// overwrite earlier values key by key (shallow merge).
type ChunkMeta struct {
	ConfidenceScore  *float64         `json:"confidence_score,omitempty"`
	ConfidenceLevel  *ConfidenceLevel `json:"confidence_level,omitempty"`
	ProcessingTimeMs *int64           `json:"processing_time_ms,omitempty"`
	ModelName        *string          `json:"model_name,omitempty"`
	TokenUsage       *TokenUsage      `json:"token_usage,omitempty"`
}

// StreamChunk is one event from the streaming query endpoint. Exactly one
// payload field is meaningful, selected by Type.
type StreamChunk struct {
	Type     ChunkType  `json:"type"`
	Content  string     `json:"content,omitempty"`
	Citation *Citation  `json:"citation,omitempty"`
	Metadata *ChunkMeta `json:"metadata,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// =============================================================================
// AUTH TYPES
// =============================================================================

// TokenPair is the access/refresh token pair issued by the auth endpoints.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// refreshRequest is the body for POST /api/v1/auth/refresh.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// refreshResponse wraps the token pair in the backend's envelope.
type refreshResponse struct {
	Tokens TokenPair `json:"tokens"`
}

// =============================================================================
// ERROR ENVELOPE
// =============================================================================

// apiErrorResponse is the backend's error body shape.
type apiErrorResponse struct {
	Detail string `json:"detail"`
}

// StreamStats holds timing collected while consuming a stream.
type StreamStats struct {
	StartTime      time.Time
	FirstChunkTime time.Time
	EndTime        time.Time

	// TTFT is the time from request start to first text chunk.
	TTFT time.Duration
}

// NewStreamStats creates StreamStats with the start time set.
func NewStreamStats() *StreamStats {
	return &StreamStats{StartTime: time.Now()}
}

// RecordFirstChunk marks the arrival of the first text chunk.
func (s *StreamStats) RecordFirstChunk() {
	if s.FirstChunkTime.IsZero() {
		s.FirstChunkTime = time.Now()
		s.TTFT = s.FirstChunkTime.Sub(s.StartTime)
	}
}

// Finish marks the end of stream consumption.
func (s *StreamStats) Finish() {
	s.EndTime = time.Now()
}
