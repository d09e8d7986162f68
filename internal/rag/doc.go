// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rag provides the HTTP client for the RAG backend API.
//
// The client supports two query modes:
//
//   - Query: a blocking request that returns a complete QueryResponse,
//     with retry and exponential backoff for transient failures.
//   - StreamQuery: a streaming request delivering newline-delimited
//     StreamChunk events through a synchronous callback, cancelled
//     cooperatively through the caller's context.
//
// Authentication is bearer-token based. TokenSource stores the token pair
// and performs single-flight refreshes: concurrent requests that hit a 401
// share one refresh round-trip instead of each issuing their own.
package rag
