// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package rag

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTokenSource_Refresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != refreshPath {
			t.Errorf("path = %s, want %s", r.URL.Path, refreshPath)
		}
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.RefreshToken != "r1" {
			t.Errorf("refresh token = %q, want r1", req.RefreshToken)
		}
		json.NewEncoder(w).Encode(refreshResponse{Tokens: TokenPair{AccessToken: "a2", RefreshToken: "r2"}})
	}))
	defer srv.Close()

	ts := NewTokenSource(srv.URL, TokenPair{AccessToken: "a1", RefreshToken: "r1"})
	if err := ts.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got := ts.AccessToken(); got != "a2" {
		t.Errorf("AccessToken() = %q, want a2", got)
	}
}

func TestTokenSource_SingleFlight(t *testing.T) {
	var backendCalls int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&backendCalls, 1)
		<-release
		json.NewEncoder(w).Encode(refreshResponse{Tokens: TokenPair{AccessToken: "fresh", RefreshToken: "r2"}})
	}))
	defer srv.Close()

	ts := NewTokenSource(srv.URL, TokenPair{AccessToken: "stale", RefreshToken: "r1"})

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = ts.Refresh(context.Background())
		}(i)
	}

	// Let the goroutines pile up on the in-flight refresh, then release it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d: Refresh() error = %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&backendCalls); got != 1 {
		t.Errorf("backend refresh calls = %d, want 1", got)
	}
	if got := ts.AccessToken(); got != "fresh" {
		t.Errorf("AccessToken() = %q, want fresh", got)
	}
}

func TestTokenSource_FailedRefreshClearsTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	ts := NewTokenSource(srv.URL, TokenPair{AccessToken: "a1", RefreshToken: "expired"})
	err := ts.Refresh(context.Background())
	if err == nil {
		t.Fatal("Refresh() expected error for rejected refresh token")
	}
	var clientErr *ClientError
	if !errors.As(err, &clientErr) || clientErr.Type != ErrTypeAuth {
		t.Errorf("error = %v, want auth ClientError", err)
	}
	if ts.AccessToken() != "" {
		t.Error("tokens should be cleared after failed refresh")
	}
}

func TestTokenSource_NoRefreshToken(t *testing.T) {
	ts := NewTokenSource("http://unused", TokenPair{})
	err := ts.Refresh(context.Background())
	if err != ErrAuthFailed {
		t.Errorf("Refresh() error = %v, want ErrAuthFailed", err)
	}
}
