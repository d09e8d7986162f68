// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/rag"
	"github.com/jeranaias/ragchat-tui/internal/store"
)

// quietQuerier is a transport fake that answers instantly.
type quietQuerier struct{}

func (quietQuerier) Query(_ context.Context, _ rag.QueryRequest) (*rag.QueryResponse, error) {
	return &rag.QueryResponse{Answer: "test answer"}, nil
}

func (quietQuerier) StreamQuery(_ context.Context, _ rag.QueryRequest, cb rag.StreamCallback) error {
	cb(rag.StreamChunk{Type: rag.ChunkText, Content: "test answer"})
	cb(rag.StreamChunk{Type: rag.ChunkDone})
	return nil
}

func newTestModel() Model {
	st := store.New(quietQuerier{}, store.DefaultSettings())
	return New(st, nil, "test")
}

// citedQuerier answers with inline markers and matching citations.
type citedQuerier struct{}

func (citedQuerier) Query(_ context.Context, _ rag.QueryRequest) (*rag.QueryResponse, error) {
	return &rag.QueryResponse{Answer: "see [1] and [2]"}, nil
}

func (citedQuerier) StreamQuery(_ context.Context, _ rag.QueryRequest, cb rag.StreamCallback) error {
	cb(rag.StreamChunk{Type: rag.ChunkText, Content: "see [1] and [2]"})
	cb(rag.StreamChunk{Type: rag.ChunkCitation, Citation: &rag.Citation{DocumentID: "d1", DocumentTitle: "Guide", RelevanceScore: 0.9}})
	cb(rag.StreamChunk{Type: rag.ChunkCitation, Citation: &rag.Citation{DocumentID: "d2", DocumentTitle: "Handbook", RelevanceScore: 0.7}})
	cb(rag.StreamChunk{Type: rag.ChunkDone})
	return nil
}

// newAnsweredModel returns a wide-layout model with one cited answer loaded
// into the panel.
func newAnsweredModel(t *testing.T) Model {
	t.Helper()
	st := store.New(citedQuerier{}, store.DefaultSettings())
	m := New(st, nil, "test")
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	m = updated.(Model)
	if err := st.SendMessage(context.Background(), "q"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	m.refreshFromStore()
	return m
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

func TestNew_InitialState(t *testing.T) {
	m := newTestModel()

	if !m.input.Focused() {
		t.Error("input should start focused")
	}
	if m.focusPanel {
		t.Error("sources panel should not start focused")
	}
	if m.showHelp {
		t.Error("help overlay should start hidden")
	}
	if m.storeBusy() {
		t.Error("store should start idle")
	}
}

func TestInit_ReturnsCommands(t *testing.T) {
	m := newTestModel()
	if m.Init() == nil {
		t.Error("Init should return startup commands")
	}
}

// =============================================================================
// RESIZE
// =============================================================================

func TestHandleResize_WideLayout(t *testing.T) {
	m := newTestModel()

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	m = updated.(Model)

	if !m.panelVisible() {
		t.Fatal("panel should get its own column at width 140")
	}

	wantViewportWidth := 140 - panelWidth
	if m.viewport.Width != wantViewportWidth {
		t.Errorf("viewport width = %d, want %d", m.viewport.Width, wantViewportWidth)
	}

	wantHeight := 40 - headerHeight - inputAreaHeight - statusBarHeight
	if m.viewport.Height != wantHeight {
		t.Errorf("viewport height = %d, want %d", m.viewport.Height, wantHeight)
	}
}

func TestHandleResize_NarrowLayout(t *testing.T) {
	m := newTestModel()

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 50, Height: 24})
	m = updated.(Model)

	if m.panelVisible() {
		t.Error("panel should not get a column at width 50")
	}
	if m.viewport.Width != 50 {
		t.Errorf("viewport width = %d, want full width 50", m.viewport.Width)
	}
}

// =============================================================================
// SUBMIT
// =============================================================================

func TestSubmit_EmptyInput(t *testing.T) {
	m := newTestModel()

	updated, cmd := m.submit("   ")
	m = updated.(Model)

	if cmd != nil {
		t.Error("submitting whitespace should not produce a command")
	}
	if m.toasts.HasToasts() {
		t.Error("submitting whitespace should not raise a toast")
	}
}

func TestSubmit_TooLong(t *testing.T) {
	m := newTestModel()

	updated, cmd := m.submit(strings.Repeat("a", store.MaxQueryLength+1))
	m = updated.(Model)

	if cmd != nil {
		t.Error("over-length input should not be sent")
	}
	if !m.toasts.HasToasts() {
		t.Error("over-length input should raise a validation toast")
	}
}

func TestSubmit_ValidInput(t *testing.T) {
	m := newTestModel()
	m.input.SetValue("what is the leave policy?")

	updated, cmd := m.submit(m.input.Value())
	m = updated.(Model)

	if cmd == nil {
		t.Fatal("valid input should produce the send command batch")
	}
	if m.input.Value() != "" {
		t.Error("input should be cleared on submit")
	}
	if !m.ticking {
		t.Error("submit should start the render tick")
	}
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func TestHandleKey_QuitAlwaysWorks(t *testing.T) {
	m := newTestModel()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	if cmd == nil {
		t.Fatal("ctrl+q should produce a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+q should quit")
	}
}

func TestHandleKey_CtrlCQuitsWhenIdle(t *testing.T) {
	m := newTestModel()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c while idle should produce a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c while idle should quit")
	}
}

func TestHandleKey_TabTogglesPanelFocus(t *testing.T) {
	m := newTestModel()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)

	if !m.focusPanel {
		t.Fatal("tab should focus the sources panel")
	}
	if m.input.Focused() {
		t.Error("input should blur when the panel gains focus")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)

	if m.focusPanel {
		t.Error("second tab should return focus to the input")
	}
	if !m.input.Focused() {
		t.Error("input should refocus when the panel loses focus")
	}
}

func TestHandleKey_HelpOverlay(t *testing.T) {
	m := newTestModel()
	m.width = 80
	m.height = 24

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlH})
	m = updated.(Model)

	if !m.showHelp {
		t.Fatal("ctrl+h should open the help overlay")
	}
	if !strings.Contains(m.View(), "Keys available now") {
		t.Error("help overlay should list available keys")
	}

	// Typing while help is open is swallowed.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'z'}})
	m = updated.(Model)
	if m.input.Value() != "" {
		t.Error("keys should not reach the input while help is open")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if m.showHelp {
		t.Error("esc should close the help overlay")
	}
}

func TestHandleKey_TypingReachesInput(t *testing.T) {
	m := newTestModel()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h', 'i'}})
	m = updated.(Model)

	if m.input.Value() != "hi" {
		t.Errorf("input value = %q, want %q", m.input.Value(), "hi")
	}
}

// =============================================================================
// MOUSE HANDLING
// =============================================================================

// Panel geometry in the 140x40 wide layout: the panel column starts at
// x=96 and the first card occupies rows 3-8 (header row, then the panel's
// header and filter lines).
const (
	testPanelX     = 100
	testFirstCardY = 3
)

func TestHandleMouse_ClickCardActivates(t *testing.T) {
	m := newAnsweredModel(t)

	updated, _ := m.Update(tea.MouseMsg{Type: tea.MouseLeft, X: testPanelX, Y: testFirstCardY})
	m = updated.(Model)

	sync := m.panel.Sync()
	if got := sync.ActiveIndex(); got != 1 {
		t.Errorf("ActiveIndex after card click = %d, want 1", got)
	}
	if !sync.IsMarkerFlashing(1) {
		t.Error("card click should flash the matching inline marker")
	}
}

func TestHandleMouse_MotionHoversAndClears(t *testing.T) {
	m := newAnsweredModel(t)
	sync := m.panel.Sync()

	updated, _ := m.Update(tea.MouseMsg{Type: tea.MouseMotion, X: testPanelX, Y: testFirstCardY})
	m = updated.(Model)
	if got := sync.HoveredIndex(); got != 1 {
		t.Fatalf("HoveredIndex over first card = %d, want 1", got)
	}

	// Moving off the cards clears the hover.
	updated, _ = m.Update(tea.MouseMsg{Type: tea.MouseMotion, X: 10, Y: testFirstCardY})
	m = updated.(Model)
	if got := sync.HoveredIndex(); got != 0 {
		t.Errorf("HoveredIndex off the panel = %d, want 0", got)
	}
}

func TestHandleMouse_ClickOutsidePanelIsIgnored(t *testing.T) {
	m := newAnsweredModel(t)

	updated, _ := m.Update(tea.MouseMsg{Type: tea.MouseLeft, X: 10, Y: testFirstCardY})
	m = updated.(Model)

	if got := m.panel.Sync().ActiveIndex(); got != 0 {
		t.Errorf("ActiveIndex after transcript click = %d, want 0", got)
	}
}

func TestHandleMouse_WheelScrollsTranscript(t *testing.T) {
	m := newAnsweredModel(t)
	m.viewport.SetContent(strings.Repeat("line\n", 100))
	m.viewport.GotoBottom()
	before := m.viewport.YOffset

	updated, _ := m.Update(tea.MouseMsg{Type: tea.MouseWheelUp, X: 10, Y: 5})
	m = updated.(Model)

	if m.viewport.YOffset >= before {
		t.Errorf("YOffset = %d after wheel up, want below %d", m.viewport.YOffset, before)
	}
}

func TestHandlePanelKey_DigitJumpsToMarker(t *testing.T) {
	m := newAnsweredModel(t)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	if !m.focusPanel {
		t.Fatal("tab should focus the panel")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	m = updated.(Model)

	sync := m.panel.Sync()
	if got := sync.ActiveIndex(); got != 2 {
		t.Fatalf("ActiveIndex after pressing 2 = %d, want 2", got)
	}
	if !sync.IsCardPulsing(2) {
		t.Error("digit jump should pulse the matching card")
	}

	// A digit with no matching inline marker is ignored.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'9'}})
	m = updated.(Model)
	if got := m.panel.Sync().ActiveIndex(); got != 2 {
		t.Errorf("ActiveIndex after pressing 9 = %d, want unchanged 2", got)
	}
}

// =============================================================================
// SETTINGS ACTIONS
// =============================================================================

func TestCycleSearchMode(t *testing.T) {
	m := newTestModel()
	before := m.store.Settings().SearchType
	want := model.NextSearchMode(before)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	m = updated.(Model)

	if got := m.store.Settings().SearchType; got != want {
		t.Errorf("search mode = %q, want %q", got, want)
	}
	if !m.toasts.HasToasts() {
		t.Error("mode change should raise a status toast")
	}
}

func TestToggleStreaming(t *testing.T) {
	m := newTestModel()
	before := m.store.Settings().Streaming

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = updated.(Model)

	if m.store.Settings().Streaming == before {
		t.Error("ctrl+s should flip the streaming setting")
	}
	if m.statusBar.StreamingEnabled == before {
		t.Error("status bar should track the streaming setting")
	}
}

// =============================================================================
// TURN COMPLETION
// =============================================================================

func TestHandleTurnDone_CleanTurn(t *testing.T) {
	m := newTestModel()
	m.wasBusy = true

	updated, _ := m.Update(TurnDoneMsg{})
	m = updated.(Model)

	if m.wasBusy {
		t.Error("turn completion should clear the busy flag")
	}
	if m.toasts.HasToasts() {
		t.Error("a clean turn should not raise a toast")
	}
}

func TestHandleTurnDone_ErrorRaisesRetryableToast(t *testing.T) {
	m := newTestModel()

	updated, _ := m.Update(TurnDoneMsg{Err: errors.New("dial tcp: connection refused")})
	m = updated.(Model)

	toasts := m.toasts.Toasts()
	if len(toasts) != 1 {
		t.Fatalf("expected 1 toast, got %d", len(toasts))
	}
	if !toasts[0].ShowRetry {
		t.Error("transport error toast should offer retry")
	}
	if !strings.Contains(toasts[0].Message, "RAG server") {
		t.Errorf("toast should carry the connection hint, got %q", toasts[0].Message)
	}
}

// =============================================================================
// ERROR SUGGESTIONS
// =============================================================================

func TestDetectErrorSuggestion(t *testing.T) {
	tests := []struct {
		name   string
		errMsg string
		want   string // substring of the suggestion, "" means no suggestion
	}{
		{"connection refused", "dial tcp 127.0.0.1:8000: connection refused", "server is running"},
		{"unauthorized", "server returned 401 Unauthorized", "API token"},
		{"rate limited", "429 Too Many Requests", "retry"},
		{"timeout", "context deadline exceeded: request timed out", "under load"},
		{"validation", "invalid input: empty question", "1 to 1000"},
		{"unknown", "something exploded", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := detectErrorSuggestion(tc.errMsg)
			if tc.want == "" {
				if got != "" {
					t.Errorf("expected no suggestion, got %q", got)
				}
				return
			}
			if !strings.Contains(got, tc.want) {
				t.Errorf("suggestion %q should contain %q", got, tc.want)
			}
		})
	}
}

// =============================================================================
// SNAPSHOT HELPERS
// =============================================================================

func TestLastAssistantMessage(t *testing.T) {
	user := model.NewUserMessage("question")
	first := model.NewAssistantMessage()
	second := model.NewAssistantMessage()

	got := lastAssistantMessage([]*model.Message{user, first, second})
	if got != second {
		t.Error("should return the most recent assistant message")
	}

	if lastAssistantMessage([]*model.Message{user}) != nil {
		t.Error("should return nil without an assistant message")
	}
	if lastAssistantMessage(nil) != nil {
		t.Error("should return nil for an empty history")
	}
}

func TestFormatAnswerForClipboard(t *testing.T) {
	msg := model.NewAssistantMessage()
	msg.AppendToken("The policy allows 20 days. [1]")
	msg.AddCitation(rag.Citation{DocumentTitle: "Leave Policy", RelevanceScore: 0.9})
	msg.FinalizeStream(nil)

	got := formatAnswerForClipboard(msg)

	if !strings.Contains(got, "The policy allows 20 days.") {
		t.Error("clipboard text should contain the answer")
	}
	if !strings.Contains(got, "Sources:") {
		t.Error("clipboard text should contain a source list")
	}
	if !strings.Contains(got, "[1] Leave Policy") {
		t.Error("clipboard text should number sources to match markers")
	}
}

// =============================================================================
// VIEW
// =============================================================================

func TestView_ShowsWelcomeWhenEmpty(t *testing.T) {
	m := newTestModel()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(Model)

	view := m.View()
	if view == "" {
		t.Fatal("view should render")
	}
	if !strings.Contains(m.renderMessages(), "Document Q&A") {
		t.Error("empty conversation should show the welcome screen")
	}
}

func TestView_ZeroSizeShowsLoading(t *testing.T) {
	m := newTestModel()
	m.width = 0
	m.height = 0

	if m.View() != "Loading..." {
		t.Error("zero-size view should show the loading placeholder")
	}
}
