// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"
)

func TestNewErrorToast(t *testing.T) {
	toast := NewErrorToast("Test error message")

	if toast.Message != "Test error message" {
		t.Errorf("Expected message 'Test error message', got '%s'", toast.Message)
	}
	if toast.Kind != ToastKindError {
		t.Errorf("Expected ToastKindError, got %d", toast.Kind)
	}
	if toast.Duration != ErrorToastDuration {
		t.Errorf("Expected duration %v, got %v", ErrorToastDuration, toast.Duration)
	}
	if toast.ShowRetry {
		t.Error("Plain error toast should not show a retry hint")
	}
}

func TestNewRetryableErrorToast(t *testing.T) {
	toast := NewRetryableErrorToast("Server unreachable")

	if toast.Kind != ToastKindError {
		t.Errorf("Expected ToastKindError, got %d", toast.Kind)
	}
	if !toast.ShowRetry {
		t.Error("Retryable toast should carry a retry hint")
	}
}

func TestNewStatusToast(t *testing.T) {
	toast := NewStatusToast("Saved")

	if toast.Kind != ToastKindStatus {
		t.Errorf("Expected ToastKindStatus, got %d", toast.Kind)
	}
	if toast.Duration != DefaultToastDuration {
		t.Errorf("Expected duration %v, got %v", DefaultToastDuration, toast.Duration)
	}
}

func TestToastIsExpired(t *testing.T) {
	toast := NewStatusToast("Test")
	toast.Duration = 10 * time.Millisecond
	toast.CreatedAt = time.Now().Add(-20 * time.Millisecond)

	if !toast.IsExpired() {
		t.Error("Toast should be expired")
	}

	freshToast := NewStatusToast("Fresh")
	if freshToast.IsExpired() {
		t.Error("Fresh toast should not be expired")
	}
}

func TestToastManagerAddDismiss(t *testing.T) {
	manager := NewToastManager()

	if manager.HasToasts() {
		t.Error("New manager should have no toasts")
	}

	id1 := manager.Add(NewErrorToast("Error 1"))
	manager.Add(NewWarningToast("Warning 1"))

	if !manager.HasToasts() {
		t.Error("Manager should have toasts after adding")
	}

	toasts := manager.Toasts()
	if len(toasts) != 2 {
		t.Fatalf("Expected 2 toasts, got %d", len(toasts))
	}

	// Newest first
	if toasts[0].Message != "Warning 1" {
		t.Errorf("Expected newest toast first, got %q", toasts[0].Message)
	}

	manager.Dismiss(id1)
	toasts = manager.Toasts()
	if len(toasts) != 1 {
		t.Fatalf("Expected 1 toast after dismiss, got %d", len(toasts))
	}
	if toasts[0].Message != "Warning 1" {
		t.Errorf("Dismissed the wrong toast, remaining %q", toasts[0].Message)
	}
}

func TestToastManagerDismissNewest(t *testing.T) {
	manager := NewToastManager()
	manager.Add(NewStatusToast("first"))
	manager.Add(NewStatusToast("second"))

	manager.DismissNewest()

	toasts := manager.Toasts()
	if len(toasts) != 1 {
		t.Fatalf("Expected 1 toast, got %d", len(toasts))
	}
	if toasts[0].Message != "first" {
		t.Errorf("Expected 'first' to remain, got %q", toasts[0].Message)
	}

	// DismissNewest on empty manager must not panic
	manager.DismissNewest()
	manager.DismissNewest()
}

func TestToastManagerMaxToasts(t *testing.T) {
	manager := NewToastManager()

	for i := 0; i < 10; i++ {
		manager.Add(NewStatusToast("toast"))
	}

	if got := len(manager.Toasts()); got != 5 {
		t.Errorf("Expected stack trimmed to 5, got %d", got)
	}
}

func TestToastManagerTick(t *testing.T) {
	manager := NewToastManager()

	expired := NewStatusToast("old")
	expired.Duration = time.Millisecond
	expired.CreatedAt = time.Now().Add(-time.Second)
	manager.Add(expired)
	manager.Add(NewStatusToast("fresh"))

	remaining := manager.Tick()
	if len(remaining) != 1 {
		t.Fatalf("Expected 1 toast after tick, got %d", len(remaining))
	}
	if remaining[0].Message != "fresh" {
		t.Errorf("Expected 'fresh' to survive, got %q", remaining[0].Message)
	}
}

func TestToastManagerClear(t *testing.T) {
	manager := NewToastManager()
	manager.Add(NewErrorToast("x"))
	manager.Add(NewErrorToast("y"))

	manager.Clear()

	if manager.HasToasts() {
		t.Error("Clear should remove all toasts")
	}
}

func TestRenderToast(t *testing.T) {
	toast := NewErrorToast("Connection refused")
	out := RenderToast(toast, 80)

	if !strings.Contains(out, "Connection refused") {
		t.Error("Rendered toast should contain the message")
	}
	if !strings.Contains(out, "dismiss") {
		t.Error("Rendered toast should contain the dismiss hint")
	}
	if strings.Contains(out, "retry") {
		t.Error("Non-retryable toast should not show a retry hint")
	}
}

func TestRenderToastRetryHint(t *testing.T) {
	toast := NewRetryableErrorToast("Request timed out")
	out := RenderToast(toast, 80)

	if !strings.Contains(out, "retry") {
		t.Error("Retryable toast should show a retry hint")
	}
}

func TestRenderToastStack(t *testing.T) {
	if out := RenderToastStack(nil, 80, 24); out != "" {
		t.Error("Empty stack should render nothing")
	}

	toasts := []Toast{
		NewErrorToast("first"),
		NewStatusToast("second"),
	}
	out := RenderToastStack(toasts, 80, 24)
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Error("Stack should contain all toast messages")
	}
}
