// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ragchat-tui/internal/cite"
	"github.com/jeranaias/ragchat-tui/internal/config"
	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/store"
	"github.com/jeranaias/ragchat-tui/internal/ui/components"
	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
)

// =============================================================================
// LAYOUT CONSTANTS
// =============================================================================

// Fixed component heights used to size the messages viewport.
// COUPLING WARNING: renderChat() (view.go) measures actual heights with
// lipgloss.Height() and falls back if these estimates drift. If you change
// the height of a component there, update the matching constant here.
const (
	headerHeight    = 1
	inputAreaHeight = 3
	statusBarHeight = 1

	// Sources panel width in the wide two-column layout.
	panelWidth = 44
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat interface.
//
// The store runs each turn on its own goroutine and the UI polls it:
// store.OnChange marks the render throttle dirty, and a ~30fps tick
// re-reads the store snapshot whenever the throttle says something
// changed. No store state is mutated from View().
type Model struct {
	// Backend
	store *store.Store
	cfg   *config.Config

	// Render pacing
	throttle *RenderThrottle
	ticking  bool

	// Components
	viewport    viewport.Model
	input       textinput.Model
	messageList *components.MessageList
	panel       *components.CitationPanel
	statusBar   *components.StatusBar
	welcome     components.Welcome
	toasts      *components.ToastManager
	phase       components.PhaseIndicator

	// UI state
	theme      *styles.Theme
	keys       KeyMap
	width      int
	height     int
	focusPanel bool
	showHelp   bool

	// Marker and card pulses fade on the render tick; this keeps the
	// tick alive briefly after the request itself has finished.
	pulseUntil time.Time

	// wasBusy tracks the busy state seen on the previous tick so the
	// idle transition can stop the phase indicator exactly once.
	wasBusy bool

	version string
}

// New creates a new chat model wired to the given store.
func New(st *store.Store, cfg *config.Config, version string) Model {
	theme := styles.NewTheme()

	input := textinput.New()
	input.Placeholder = "Ask a question about your documents..."
	input.Prompt = "> "
	input.CharLimit = store.MaxQueryLength
	input.Width = 72
	input.Focus()

	vp := viewport.New(80, 20)

	panel := components.NewCitationPanel(theme)

	messageList := components.NewMessageList(theme)
	messageList.SetSyncManager(panel.Sync())
	if cfg != nil {
		messageList.Markdown = cfg.UI.Markdown
		messageList.ShowTimestamps = cfg.UI.ShowTimestamps
	}

	settings := st.Settings()
	statusBar := components.NewStatusBar(theme)
	statusBar.SetSearchType(settings.SearchType)
	statusBar.StreamingEnabled = settings.Streaming
	if cfg != nil {
		statusBar.ServerURL = cfg.Server.BaseURL
	}

	welcome := components.NewWelcome(theme)
	welcome.SetVersion(version)
	welcome.SetSearchMode(model.GetSearchModeInfo(settings.SearchType).Name)
	if cfg != nil {
		welcome.SetServerURL(cfg.Server.BaseURL)
	}

	throttle := NewRenderThrottle()
	st.OnChange(throttle.MarkDirty)

	return Model{
		store:       st,
		cfg:         cfg,
		throttle:    throttle,
		viewport:    vp,
		input:       input,
		messageList: messageList,
		panel:       panel,
		statusBar:   statusBar,
		welcome:     welcome,
		toasts:      components.NewToastManager(),
		phase:       components.NewPhaseIndicator(),
		theme:       theme,
		keys:        DefaultKeyMap(),
		width:       80,
		height:      24,
		version:     version,
	}
}

// Init initializes the chat model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, components.ToastTickCmd())
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case StreamTickMsg:
		return m.handleStreamTick()

	case TurnDoneMsg:
		return m.handleTurnDone(msg)

	case ConfigReloadedMsg:
		return m.handleConfigReload(msg)

	case CopyCompleteMsg:
		if msg.Success {
			m.toasts.Add(components.NewSuccessToast("Answer copied to clipboard"))
		} else {
			errText := "Clipboard unavailable"
			if msg.Error != nil {
				errText = "Copy failed: " + msg.Error.Error()
			}
			m.toasts.Add(components.NewErrorToast(errText))
		}
		return m, nil

	case components.ToastTickMsg:
		m.toasts.Tick()
		return m, components.ToastTickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.phase, cmd = m.phase.Update(msg)
		return m, cmd
	}

	// Everything else (cursor blink etc.) goes to the input.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// RESIZE
// =============================================================================

// handleResize recomputes component dimensions for a new terminal size.
// The sources panel only gets its own column in the wide layout; below
// that the conversation takes the full width.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	contentHeight := m.height - headerHeight - inputAreaHeight - statusBarHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	contentWidth := m.width
	if m.panelVisible() {
		contentWidth = m.width - panelWidth
	}
	if contentWidth < 20 {
		contentWidth = 20
	}

	m.viewport.Width = contentWidth
	m.viewport.Height = contentHeight

	// Account for the prompt (2) and padding (4) in the input line.
	inputWidth := m.width - 6
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.messageList.SetWidth(contentWidth - 2)
	m.panel.SetSize(panelWidth, contentHeight)
	m.statusBar.SetWidth(m.width)
	m.welcome.SetSize(contentWidth, contentHeight)

	m.updateViewport()
	return m, nil
}

// panelVisible reports whether the sources panel gets its own column.
func (m Model) panelVisible() bool {
	return m.theme.GetLayoutMode() == styles.LayoutWide
}

// =============================================================================
// KEY HANDLING
// =============================================================================

// handleKey processes keyboard input.
//
// Priority order matters:
//  1. Quit always works, even mid-stream.
//  2. The help overlay swallows everything until dismissed.
//  3. Panel focus keys (j/k/s/f/esc) only apply when the panel has focus,
//     so they never steal characters from the input box.
//  4. Global shortcuts (retry, copy, clear, mode cycling).
//  5. Viewport navigation and text entry.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit works from any state.
	if key.Matches(msg, m.keys.Quit) {
		m.store.CancelRequest()
		return m, tea.Quit
	}

	// Help overlay: help/esc/q closes it, everything else is ignored.
	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Help), msg.String() == "esc", msg.String() == "q":
			m.showHelp = false
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Help) {
		m.showHelp = true
		return m, nil
	}

	// Ctrl+C cancels an in-flight request; when idle it quits, matching
	// terminal convention.
	if key.Matches(msg, m.keys.Cancel) {
		if m.storeBusy() {
			m.store.CancelRequest()
			m.toasts.Add(components.NewWarningToast("Request cancelled"))
			return m, nil
		}
		return m, tea.Quit
	}

	if key.Matches(msg, m.keys.FocusPanel) {
		return m.toggleFocus()
	}

	if m.focusPanel {
		return m.handlePanelKey(msg)
	}

	// Global shortcuts available while typing.
	switch {
	case key.Matches(msg, m.keys.Retry):
		return m.retry()

	case key.Matches(msg, m.keys.Copy):
		return m, copyLastAnswerCmd(m.store)

	case key.Matches(msg, m.keys.Clear):
		return m.clearConversation()

	case key.Matches(msg, m.keys.CycleMode):
		return m.cycleSearchMode()

	case key.Matches(msg, m.keys.Stream):
		return m.toggleStreaming()

	case key.Matches(msg, m.keys.Submit):
		return m.submit(m.input.Value())
	}

	// Viewport navigation. The single-line input ignores vertical
	// movement, so these are safe while the input has focus.
	switch msg.String() {
	case "up":
		m.viewport.LineUp(1)
		return m, nil
	case "down":
		m.viewport.LineDown(1)
		return m, nil
	case "pgup", "ctrl+u":
		m.viewport.HalfViewUp()
		return m, nil
	case "pgdown", "ctrl+d":
		m.viewport.HalfViewDown()
		return m, nil
	case "home":
		m.viewport.GotoTop()
		return m, nil
	case "end":
		m.viewport.GotoBottom()
		return m, nil
	case "esc":
		if m.toasts.HasToasts() {
			m.toasts.DismissNewest()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handlePanelKey processes keys while the sources panel has focus.
func (m Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sync := m.panel.Sync()

	switch {
	case key.Matches(msg, m.keys.NextSource):
		sync.Next()
		m.markPulse()

	case key.Matches(msg, m.keys.PrevSource):
		sync.Prev()
		m.markPulse()

	case key.Matches(msg, m.keys.ClearSource):
		if sync.ActiveIndex() > 0 || sync.HoveredIndex() > 0 {
			sync.ClearSelection()
		} else if m.toasts.HasToasts() {
			m.toasts.DismissNewest()
		} else {
			return m.toggleFocus()
		}

	case key.Matches(msg, m.keys.CycleSort):
		m.panel.CycleSortOrder()

	case key.Matches(msg, m.keys.CycleFilter):
		m.panel.CycleLevelFilter()

	case key.Matches(msg, m.keys.Submit):
		// Activating a card flashes its marker in the answer.
		if idx := sync.ActiveIndex(); idx > 0 {
			sync.ClickCard(idx)
			m.markPulse()
		}

	case msg.String() == "x":
		m.toasts.DismissNewest()
		return m, nil

	case isMarkerDigit(msg.String()):
		// Jump straight to citation n, as if its inline marker were
		// clicked. Digits without a matching marker in the answer are
		// ignored.
		n := int(msg.String()[0] - '0')
		if m.answerHasMarker(n) {
			sync.ClickMarker(n)
			m.markPulse()
		}

	default:
		return m, nil
	}

	m.updateViewport()
	return m.ensureTicking()
}

// isMarkerDigit reports whether the key string is a single digit 1-9.
func isMarkerDigit(s string) bool {
	return len(s) == 1 && s[0] >= '1' && s[0] <= '9'
}

// answerHasMarker reports whether the latest answer's text references
// citation n inline.
func (m *Model) answerHasMarker(n int) bool {
	last := lastAssistantMessage(m.messageList.Messages)
	if last == nil {
		return false
	}
	tokens := cite.ParseMarkers(last.GetDisplayContent(), last.Citations)
	for _, idx := range cite.MarkerIndices(tokens) {
		if idx == n {
			return true
		}
	}
	return false
}

// =============================================================================
// MOUSE HANDLING
// =============================================================================

// handleMouse routes wheel events to the transcript viewport and click and
// hover motion to the source cards. Card rows resolve through the panel's
// hit test; everything else falls through untouched.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.MouseWheelUp:
		m.viewport.LineUp(3)
		return m, nil
	case tea.MouseWheelDown:
		m.viewport.LineDown(3)
		return m, nil
	case tea.MouseLeft, tea.MouseMotion:
	default:
		return m, nil
	}

	sync := m.panel.Sync()
	idx := 0
	if m.panelVisible() && msg.X >= m.width-panelWidth && msg.Y >= headerHeight {
		idx = m.panel.CardAt(msg.Y - headerHeight)
	}

	if msg.Type == tea.MouseMotion {
		// Hover follows the pointer and clears when it leaves the cards.
		if idx != sync.HoveredIndex() {
			sync.HoverCard(idx)
			m.updateViewport()
			return m.ensureTicking()
		}
		return m, nil
	}

	if idx == 0 {
		return m, nil
	}
	sync.ClickCard(idx)
	m.markPulse()
	m.updateViewport()
	return m.ensureTicking()
}

// toggleFocus moves focus between the input box and the sources panel.
func (m Model) toggleFocus() (tea.Model, tea.Cmd) {
	m.focusPanel = !m.focusPanel
	m.panel.SetFocused(m.focusPanel)
	if m.focusPanel {
		m.input.Blur()
		return m, nil
	}
	m.input.Focus()
	return m, textinput.Blink
}

// =============================================================================
// ACTIONS
// =============================================================================

// submit validates and sends a question.
func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	text = strings.TrimSpace(text)
	if text == "" {
		return m, nil
	}

	if m.storeBusy() {
		m.toasts.Add(components.NewWarningToast("Still answering; press C-c to cancel first"))
		return m, nil
	}

	if err := store.ValidateInput(text); err != nil {
		m.toasts.Add(components.NewErrorToast(err.Error()))
		return m, nil
	}

	m.input.Reset()
	m.wasBusy = true
	spinCmd := m.phase.Start()
	m.refreshFromStore()

	cmds := []tea.Cmd{sendMessageCmd(m.store, text), spinCmd}
	if !m.ticking {
		m.ticking = true
		cmds = append(cmds, streamTickCmd())
	}
	return m, tea.Batch(cmds...)
}

// retry replays the last question, discarding the failed answer.
func (m Model) retry() (tea.Model, tea.Cmd) {
	if m.storeBusy() {
		return m, nil
	}
	if m.store.Conversation().GetLastUserMessage() == nil {
		return m, nil
	}

	m.toasts.Clear()
	m.wasBusy = true
	spinCmd := m.phase.Start()

	cmds := []tea.Cmd{retryCmd(m.store), spinCmd}
	if !m.ticking {
		m.ticking = true
		cmds = append(cmds, streamTickCmd())
	}
	return m, tea.Batch(cmds...)
}

// clearConversation resets history and the sources panel.
func (m Model) clearConversation() (tea.Model, tea.Cmd) {
	m.store.ClearMessages()
	m.panel.SetCitations(nil)
	m.statusBar.SetAnswerInfo(-1, 0)
	m.phase.Stop()
	m.refreshFromStore()
	m.updateViewport()
	m.viewport.GotoTop()
	m.toasts.Add(components.NewStatusToast("Conversation cleared"))
	return m, nil
}

// cycleSearchMode advances keyword -> semantic -> hybrid.
func (m Model) cycleSearchMode() (tea.Model, tea.Cmd) {
	next := model.NextSearchMode(m.store.Settings().SearchType)
	m.store.UpdateSettings(store.SettingsPatch{SearchType: &next})

	info := model.GetSearchModeInfo(next)
	m.statusBar.SetSearchType(next)
	m.welcome.SetSearchMode(info.Name)
	m.toasts.Add(components.NewStatusToast("Search mode: " + info.Name))
	return m, nil
}

// toggleStreaming flips between token streaming and blocking answers.
func (m Model) toggleStreaming() (tea.Model, tea.Cmd) {
	enabled := !m.store.Settings().Streaming
	m.store.UpdateSettings(store.SettingsPatch{Streaming: &enabled})
	m.statusBar.StreamingEnabled = enabled
	m.toasts.Add(components.NewStatusToast("Streaming " + formatBool(enabled)))
	return m, nil
}

// =============================================================================
// TICK HANDLING
// =============================================================================

// handleStreamTick runs the ~30fps poll loop while a request is in flight
// or a citation pulse is fading. Renders only happen when the throttle
// reports a change, so idle ticks are nearly free.
func (m Model) handleStreamTick() (tea.Model, tea.Cmd) {
	busy := m.storeBusy()
	m.phase.SetPhase(m.store.State())

	if m.throttle.TakeRender() {
		m.refreshFromStore()
		m.updateViewport()
		// Follow the stream while tokens arrive.
		if busy {
			m.viewport.GotoBottom()
		}
	}

	if !busy && m.wasBusy {
		// Turn just finished on the store side: flush residual state.
		m.wasBusy = false
		m.phase.Stop()
		m.throttle.ForceRender()
		m.refreshFromStore()
		m.updateViewport()
		m.viewport.GotoBottom()
	}

	pulsing := time.Now().Before(m.pulseUntil)
	if busy || pulsing {
		m.ticking = true
		return m, streamTickCmd()
	}

	m.ticking = false
	return m, nil
}

// handleTurnDone handles the completion of a send or retry command.
// Transport errors surface via store.LastError; the Err field only
// carries validation failures that never produced a turn.
func (m Model) handleTurnDone(msg TurnDoneMsg) (tea.Model, tea.Cmd) {
	m.wasBusy = false
	m.phase.Stop()
	m.throttle.ForceRender()
	m.refreshFromStore()
	m.updateViewport()
	m.viewport.GotoBottom()

	err := msg.Err
	if err == nil {
		err = m.store.LastError()
	}
	if err != nil {
		text := err.Error()
		if hint := detectErrorSuggestion(text); hint != "" {
			text = text + " (" + hint + ")"
		}
		m.toasts.Add(components.NewRetryableErrorToast(text))
	}
	return m, nil
}

// handleConfigReload applies a config picked up by the file watcher.
func (m Model) handleConfigReload(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Error != nil {
		m.toasts.Add(components.NewWarningToast("Config reload failed: " + msg.Error.Error()))
		return m, nil
	}
	if msg.Config == nil {
		return m, nil
	}

	m.cfg = msg.Config
	searchType := msg.Config.SearchType()
	maxResults := msg.Config.Chat.MaxResults
	temperature := msg.Config.Chat.Temperature
	streaming := msg.Config.Chat.Streaming
	m.store.UpdateSettings(store.SettingsPatch{
		SearchType:  &searchType,
		MaxResults:  &maxResults,
		Temperature: &temperature,
		Streaming:   &streaming,
	})

	m.statusBar.SetSearchType(searchType)
	m.statusBar.StreamingEnabled = streaming
	m.statusBar.ServerURL = msg.Config.Server.BaseURL
	m.welcome.SetServerURL(msg.Config.Server.BaseURL)
	m.welcome.SetSearchMode(model.GetSearchModeInfo(searchType).Name)
	m.messageList.Markdown = msg.Config.UI.Markdown
	m.messageList.ShowTimestamps = msg.Config.UI.ShowTimestamps

	m.toasts.Add(components.NewSuccessToast("Configuration reloaded"))
	return m, nil
}

// =============================================================================
// STORE SNAPSHOT
// =============================================================================

// storeBusy reports whether a turn is in flight.
func (m Model) storeBusy() bool {
	return m.store.State() != store.StateIdle
}

// refreshFromStore re-reads the store snapshot into the view components.
func (m *Model) refreshFromStore() {
	messages := m.store.Messages()
	// The in-progress assistant message lives outside finalized history
	// until the turn completes.
	if streaming := m.store.StreamingMessage(); streaming != nil {
		messages = append(messages, streaming)
	}
	m.messageList.SetMessages(messages)

	// The panel tracks the most recent assistant answer with sources.
	if last := lastAssistantMessage(messages); last != nil {
		m.panel.SetCitations(last.Citations)
		if !last.IsStreaming {
			m.statusBar.SetAnswerInfo(last.ConfidenceScore, len(last.Citations))
		}
	} else {
		m.panel.SetCitations(nil)
		m.statusBar.SetAnswerInfo(-1, 0)
	}

	state := m.store.State()
	if state == store.StateIdle && m.store.LastError() != nil {
		m.statusBar.SetStatus(components.StatusError)
	} else {
		m.statusBar.SetStatus(components.StatusFromState(state))
	}
}

// lastAssistantMessage returns the most recent assistant message,
// streaming or final, or nil.
func lastAssistantMessage(messages []*model.Message) *model.Message {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == model.RoleAssistant {
			return messages[i]
		}
	}
	return nil
}

// updateViewport refreshes the viewport content from the message list.
func (m *Model) updateViewport() {
	m.viewport.SetContent(m.renderMessages())
}

// markPulse records that a pulse animation started, keeping the render
// tick alive until it fades.
func (m *Model) markPulse() {
	m.pulseUntil = time.Now().Add(cite.PulseDuration + 100*time.Millisecond)
}

// ensureTicking schedules a render tick if one is not already pending.
func (m Model) ensureTicking() (tea.Model, tea.Cmd) {
	if m.ticking {
		return m, nil
	}
	m.ticking = true
	return m, streamTickCmd()
}
