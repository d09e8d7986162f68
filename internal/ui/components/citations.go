// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the ragchat TUI.
package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat-tui/internal/cite"
	"github.com/jeranaias/ragchat-tui/internal/rag"
	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
	"github.com/jeranaias/ragchat-tui/internal/util"
)

// approxCardHeight is the rendered height of one card including its border.
const approxCardHeight = 6

// cardListTop is the panel row where the first card starts; the header and
// filter line sit above it.
const cardListTop = 2

// =============================================================================
// CITATION PANEL
// =============================================================================

// CitationPanel renders the source cards for the most recent answer and
// keeps them in sync with the inline markers through a cite.SyncManager.
//
// The panel implements cite.Surface: clicking a marker produces a scroll
// intent here, and visual pulse/flash state is queried back from the
// manager at render time.
type CitationPanel struct {
	Width  int
	Height int

	theme     *styles.Theme
	sync      *cite.SyncManager
	citations []rag.Citation
	criteria  cite.FilterCriteria

	// offset is the first visible card position in the filtered order.
	offset int

	// pendingScroll is the target recorded by ScrollIntoView, consumed
	// on the next render.
	pendingScroll string

	focused bool
}

// NewCitationPanel creates an empty citation panel. The returned panel is
// registered as the sync manager's surface.
func NewCitationPanel(theme *styles.Theme) *CitationPanel {
	p := &CitationPanel{
		Width:    40,
		Height:   20,
		theme:    theme,
		criteria: cite.DefaultCriteria(),
	}
	p.sync = cite.NewSyncManager(p)
	return p
}

// Sync returns the citation sync manager owned by this panel.
func (p *CitationPanel) Sync() *cite.SyncManager {
	return p.sync
}

// SetSize updates the panel dimensions.
func (p *CitationPanel) SetSize(width, height int) {
	p.Width = width
	p.Height = height
}

// SetFocused toggles keyboard focus styling for the panel.
func (p *CitationPanel) SetFocused(focused bool) {
	p.focused = focused
}

// Focused reports whether the panel has keyboard focus.
func (p *CitationPanel) Focused() bool {
	return p.focused
}

// SetCitations replaces the displayed citations. Selection state carries
// over only while it stays within range of the new list.
func (p *CitationPanel) SetCitations(citations []rag.Citation) {
	p.citations = citations
	p.offset = 0
	p.sync.SetCitationCount(len(citations))
}

// Citations returns the unfiltered citation list.
func (p *CitationPanel) Citations() []rag.Citation {
	return p.citations
}

// Criteria returns the active filter criteria.
func (p *CitationPanel) Criteria() cite.FilterCriteria {
	return p.criteria
}

// CycleSortOrder advances to the next sort order.
func (p *CitationPanel) CycleSortOrder() {
	switch p.criteria.SortBy {
	case cite.SortRelevanceDesc:
		p.criteria.SortBy = cite.SortRelevanceAsc
	case cite.SortRelevanceAsc:
		p.criteria.SortBy = cite.SortTitleAsc
	case cite.SortTitleAsc:
		p.criteria.SortBy = cite.SortTitleDesc
	default:
		p.criteria.SortBy = cite.SortRelevanceDesc
	}
	p.offset = 0
}

// CycleLevelFilter advances to the next relevance band filter.
func (p *CitationPanel) CycleLevelFilter() {
	switch p.criteria.Level {
	case cite.LevelAll:
		p.criteria.Level = cite.LevelHigh
	case cite.LevelHigh:
		p.criteria.Level = cite.LevelMedium
	case cite.LevelMedium:
		p.criteria.Level = cite.LevelLow
	default:
		p.criteria.Level = cite.LevelAll
	}
	p.offset = 0
}

// Ranked returns the citations in display order after filter and sort.
func (p *CitationPanel) Ranked() []cite.RankedCitation {
	return cite.ApplyFilter(p.citations, p.criteria)
}

// =============================================================================
// cite.Surface IMPLEMENTATION
// =============================================================================

// ScrollIntoView records a scroll intent so the next render brings the
// target card into the visible window.
func (p *CitationPanel) ScrollIntoView(targetID string) {
	p.pendingScroll = targetID
}

// FlashTransient is part of cite.Surface. The transient emphasis itself is
// tracked by the sync manager and queried during rendering, so no state is
// needed here.
func (p *CitationPanel) FlashTransient(targetID string, duration time.Duration) {
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the panel: a header, the filter line, and the visible
// window of source cards.
func (p *CitationPanel) View() string {
	ranked := p.Ranked()

	var sb strings.Builder
	sb.WriteString(p.renderHeader(len(ranked)))
	sb.WriteString("\n")
	sb.WriteString(p.renderFilterLine())
	sb.WriteString("\n")

	if len(ranked) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			PaddingTop(1)
		if len(p.citations) == 0 {
			sb.WriteString(emptyStyle.Render("No sources for this answer."))
		} else {
			sb.WriteString(emptyStyle.Render("No sources match the filter."))
		}
		return p.theme.CitationPanel.Render(sb.String())
	}

	p.consumeScrollIntent(ranked)

	visible := p.visibleCardCount()
	end := p.offset + visible
	if end > len(ranked) {
		end = len(ranked)
	}

	cards := make([]string, 0, end-p.offset)
	for _, rc := range ranked[p.offset:end] {
		cards = append(cards, p.renderCard(rc))
	}
	sb.WriteString(strings.Join(cards, "\n"))

	if end < len(ranked) {
		moreStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
		sb.WriteString("\n")
		sb.WriteString(moreStyle.Render("... " + util.IntToString(len(ranked)-end) + " more"))
	}

	return p.theme.CitationPanel.Render(sb.String())
}

func (p *CitationPanel) renderHeader(count int) string {
	title := p.theme.CitationTitle.Render("Sources")
	countStr := p.theme.CitationMeta.Render("(" + util.IntToString(count) + ")")
	header := title + " " + countStr
	if p.focused {
		header = header + " " + p.theme.CitationMeta.Render("j/k to move, esc to clear")
	}
	return header
}

func (p *CitationPanel) renderFilterLine() string {
	parts := []string{"sort: " + string(p.criteria.SortBy)}
	if p.criteria.Level != cite.LevelAll {
		parts = append(parts, "band: "+string(p.criteria.Level))
	}
	if p.criteria.MinRelevance > 0 {
		parts = append(parts, "min: "+util.IntToString(p.criteria.MinRelevance)+"%")
	}
	return p.theme.CitationMeta.Render(strings.Join(parts, "  "))
}

// renderCard renders one source card. Display position may differ from the
// citation's marker number when a sort or filter is active, so the card
// always shows the original [N] marker number.
func (p *CitationPanel) renderCard(rc cite.RankedCitation) string {
	cardWidth := p.Width - 4
	if cardWidth < 20 {
		cardWidth = 20
	}

	marker := p.theme.CitationMarker.Render("[" + util.IntToString(rc.Index) + "]")
	title := p.theme.CitationTitle.Render(
		util.TruncateRunes(rc.DocumentTitle, cardWidth-6))

	percent := rc.RelevancePercent()
	bar := styles.RenderRelevanceBar(10, rc.RelevanceScore)
	band := string(cite.RelevanceBand(percent))
	meta := bar + " " + p.theme.CitationMeta.Render(
		util.IntToString(percent)+"% "+band)

	snippet := p.theme.CitationSnippet.Render(
		util.TruncateRunes(strings.ReplaceAll(rc.ContentSnippet, "\n", " "), cardWidth*2))

	content := marker + " " + title + "\n" + meta + "\n" + wordWrap(snippet, cardWidth)

	style := p.theme.CitationCard
	switch {
	case p.sync.IsCardPulsing(rc.Index):
		style = p.theme.CitationCardPulse
	case p.sync.ActiveIndex() == rc.Index:
		style = p.theme.CitationCardActive
	case p.sync.HoveredIndex() == rc.Index:
		style = p.theme.CitationCardHover
	}

	return style.Width(cardWidth).Render(content)
}

// CardAt maps a row inside the panel's rendered area to the marker index of
// the card covering it, or 0 when the row hits no card. Rows count from the
// panel's top edge; the geometry mirrors visibleCardCount.
func (p *CitationPanel) CardAt(y int) int {
	ranked := p.Ranked()
	if len(ranked) == 0 || y < cardListTop {
		return 0
	}
	pos := p.offset + (y-cardListTop)/approxCardHeight
	if pos >= p.offset+p.visibleCardCount() || pos >= len(ranked) {
		return 0
	}
	return ranked[pos].Index
}

// visibleCardCount returns how many cards fit in the panel height.
func (p *CitationPanel) visibleCardCount() int {
	n := (p.Height - 3) / approxCardHeight
	if n < 1 {
		n = 1
	}
	return n
}

// consumeScrollIntent applies a pending ScrollIntoView target by moving
// the visible window so the target card is shown.
func (p *CitationPanel) consumeScrollIntent(ranked []cite.RankedCitation) {
	target := p.pendingScroll
	p.pendingScroll = ""

	targetIndex := -1
	if target != "" {
		for pos, rc := range ranked {
			if cite.CardTargetID(rc.Index) == target {
				targetIndex = pos
				break
			}
		}
	}
	if targetIndex < 0 {
		// Keep the active card visible during keyboard navigation.
		active := p.sync.ActiveIndex()
		if active == 0 {
			return
		}
		for pos, rc := range ranked {
			if rc.Index == active {
				targetIndex = pos
				break
			}
		}
		if targetIndex < 0 {
			return
		}
	}

	visible := p.visibleCardCount()
	if targetIndex < p.offset {
		p.offset = targetIndex
	} else if targetIndex >= p.offset+visible {
		p.offset = targetIndex - visible + 1
	}
}
