package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mfreitag/ontoview/internal/annot"
	"github.com/mfreitag/ontoview/internal/evidence"
	"github.com/mfreitag/ontoview/internal/otel"
)

// Table renders annotation rows with the two filter selectors and the
// visible-count badge. With no rows loaded it shows an empty state and
// every filter operation is a harmless no-op.
type Table struct {
	gene    string
	rows    []annot.Row
	filters annot.Filters
	visible int

	cursor int
	offset int
	height int

	loaded  bool
	loadErr error

	fetchTop   func() tea.Msg
	topPending bool
	topGenes   string
	topFailed  bool
	spin       spinner.Model

	events *otel.Logger
}

// NewTable builds an empty table. fetchTop loads the server's top genes
// for the `t` action (nil disables it). events may be nil.
func NewTable(fetchTop func() tea.Msg, events *otel.Logger) Table {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Table{
		filters:  annot.DefaultFilters(),
		height:   20,
		fetchTop: fetchTop,
		spin:     sp,
		events:   events,
	}
}

// SetHeight sets the number of visible row lines.
func (t *Table) SetHeight(h int) {
	if h > 0 {
		t.height = h
	}
}

// VisibleCount returns the current visible-row count (the badge number).
func (t Table) VisibleCount() int { return t.visible }

// Filters returns the active filter state.
func (t Table) Filters() annot.Filters { return t.filters }

// Badge returns the badge text for the current filter state.
func (t Table) Badge() string { return annot.Badge(t.visible) }

// Update handles filter keys, scrolling, row loads and top-genes results.
func (t Table) Update(msg tea.Msg) (Table, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "a":
			t.filters.Aspect = cycle(annot.Aspects, t.filters.Aspect)
			t.refilter()
		case "e":
			t.filters.Evidence = cycle(annot.EvidenceTypes, t.filters.Evidence)
			t.refilter()
		case "0":
			t.filters.Reset()
			t.refilter()
			if t.events != nil {
				t.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindTableReset, Comp: "table"})
			}
		case "j", "down":
			t.move(1)
		case "k", "up":
			t.move(-1)
		case "t":
			return t.requestTopGenes()
		}
		return t, nil

	case RowsLoaded:
		t.loaded = true
		t.loadErr = msg.Err
		t.gene = msg.Gene
		t.rows = msg.Rows
		t.cursor, t.offset = 0, 0
		t.refilter()
		if t.events != nil {
			t.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindTableLoad, Comp: "table", Query: msg.Gene, Count: len(msg.Rows)})
		}
		return t, nil

	case TopGenesMsg:
		if !t.topPending {
			return t, nil
		}
		t.topPending = false
		if msg.Err != nil {
			t.topFailed = true
			return t, nil
		}
		t.topFailed = false
		t.topGenes = msg.Symbols
		return t, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		t.spin, cmd = t.spin.Update(msg)
		return t, cmd
	}

	return t, nil
}

func (t *Table) refilter() {
	t.visible = annot.Apply(t.rows, t.filters)
	t.clampCursor()
	if t.events != nil {
		t.events.Emit(otel.Event{
			Level: otel.LevelDebug,
			Kind:  otel.KindTableFilter,
			Comp:  "table",
			Count: t.visible,
			Extra: map[string]any{"aspect": t.filters.Aspect, "evidence": t.filters.Evidence},
		})
	}
}

// visibleRows returns the rows passing the current filters, in input order.
func (t Table) visibleRows() []annot.Row {
	out := make([]annot.Row, 0, t.visible)
	for _, r := range t.rows {
		if r.Visible {
			out = append(out, r)
		}
	}
	return out
}

func (t *Table) move(delta int) {
	t.cursor += delta
	t.clampCursor()
}

func (t *Table) clampCursor() {
	if t.cursor >= t.visible {
		t.cursor = t.visible - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+t.height {
		t.offset = t.cursor - t.height + 1
	}
}

func (t Table) requestTopGenes() (Table, tea.Cmd) {
	if t.fetchTop == nil || t.topPending {
		return t, nil
	}
	t.topPending = true
	t.topFailed = false
	fetch := t.fetchTop
	return t, tea.Batch(t.spin.Tick, func() tea.Msg { return fetch() })
}

// cycle returns the element after cur in values, wrapping around. Unknown
// cur restarts at the first element.
func cycle(values []string, cur string) string {
	for i, v := range values {
		if v == cur {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

// View renders the table, badge, selector state and top-genes line.
func (t Table) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Annotations"))
	if t.gene != "" {
		b.WriteString(LabelStyle.Render(" for ") + t.gene)
	}
	b.WriteString("\n")

	if t.loadErr != nil {
		b.WriteString(ErrorStyle.Render("failed to load annotations: "+t.loadErr.Error()) + "\n")
		return b.String()
	}
	if !t.loaded || len(t.rows) == 0 {
		b.WriteString(EmptyStyle.Render("no annotations loaded") + "\n")
		return b.String()
	}

	b.WriteString(StatusBarText.Render(fmt.Sprintf("aspect: %s · evidence: %s  ", t.filters.Aspect, t.filters.Evidence)))
	b.WriteString(BadgeStyle.Render(t.Badge()) + "\n\n")

	rows := t.visibleRows()
	end := t.offset + t.height
	if end > len(rows) {
		end = len(rows)
	}
	for i := t.offset; i < end; i++ {
		r := rows[i]
		line := fmt.Sprintf("%-12s %-38s %-3s %-5s %s",
			r.TermID, truncateRunes(r.TermName, 38), r.Aspect, r.Evidence,
			evidence.Describe(r.Evidence))
		if i == t.cursor {
			b.WriteString(SelectedRow.Render(line) + "\n")
		} else {
			b.WriteString(NormalRow.Render(line) + "\n")
		}
	}

	switch {
	case t.topPending:
		b.WriteString("\n" + t.spin.View() + " loading top genes")
	case t.topFailed:
		b.WriteString("\n" + ErrorStyle.Render("Error"))
	case t.topGenes != "":
		b.WriteString("\n" + LabelStyle.Render("top genes: ") + t.topGenes)
	}

	b.WriteString("\n" + StatusBarText.Render("a aspect · e evidence · 0 reset · j/k scroll · t top genes"))
	return b.String()
}
