// Package suggest implements the debounced autocomplete dispatcher.
//
// A Model wraps a text input and a dropdown of server suggestions. Input
// bursts are collapsed by a debounce tick carrying an input generation;
// ticks from superseded generations are discarded when they arrive.
// Completed lookups carry a request generation and are likewise discarded
// unless they match the latest issued request, so a slow stale response can
// never overwrite newer results. Instances share no timers, generations or
// sinks: two dispatchers on the same screen are fully independent.
package suggest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mfreitag/ontoview/internal/otel"
)

// DefaultDelay is the debounce interval between the last keystroke and the
// lookup it triggers.
const DefaultDelay = 250 * time.Millisecond

// Suggestion is one selectable dropdown entry.
type Suggestion struct {
	ID     string // GO id for terms; symbol for genes
	Label  string // canonical display string placed into the input on selection
	Detail string // namespace letter or gene name, shown dimmed
}

// LookupFunc performs the network lookup for a query.
type LookupFunc func(ctx context.Context, query string) ([]Suggestion, error)

// DebounceMsg is the deferred tick scheduled after an input change.
// Carries the input generation it was scheduled under.
type DebounceMsg struct {
	Name string
	Gen  int
}

// ResultsMsg delivers a completed lookup.
type ResultsMsg struct {
	Name        string
	Gen         int
	Suggestions []Suggestion
	Err         error
}

// SelectedMsg notifies the parent that the user picked a suggestion.
type SelectedMsg struct {
	Name       string
	Suggestion Suggestion
}

var (
	dropdownStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#30363d")).
			Padding(0, 1)
	entryStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#c9d1d9"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#1f3a5f")).Bold(true)
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e"))
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f85149"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681")).Italic(true)
)

// Model is one autocomplete instance.
type Model struct {
	name   string
	lookup LookupFunc
	minLen int
	delay  time.Duration
	events *otel.Logger

	Input      textinput.Model
	identifier string
	lastValue  string

	inputGen int // bumped on every input change; stale debounce ticks carry older values
	reqGen   int // bumped on every issued lookup; stale responses carry older values
	cancel   context.CancelFunc

	results []Suggestion
	cursor  int
	open    bool
	pending bool
	failed  bool
}

// New creates a dispatcher. events may be nil.
func New(name string, lookup LookupFunc, minLen int, placeholder string, events *otel.Logger) Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = 120
	input.Width = 44

	return Model{
		name:   name,
		lookup: lookup,
		minLen: minLen,
		delay:  DefaultDelay,
		events: events,
		Input:  input,
	}
}

// SetDelay overrides the debounce delay (config, tests).
func (m *Model) SetDelay(d time.Duration) {
	if d > 0 {
		m.delay = d
	}
}

// Name returns the instance name used to route messages.
func (m Model) Name() string { return m.name }

// Value returns the raw query text.
func (m Model) Value() string { return m.Input.Value() }

// SetValue replaces the query text without triggering a lookup.
func (m *Model) SetValue(v string) {
	m.Input.SetValue(v)
	m.lastValue = v
}

// Identifier returns the confirmed identifier, or "" if the user has
// edited the query since the last selection.
func (m Model) Identifier() string { return m.identifier }

// IdentifierOrValue returns the confirmed identifier, falling back to the
// raw query text when no suggestion was selected.
func (m Model) IdentifierOrValue() string {
	if m.identifier != "" {
		return m.identifier
	}
	return m.Input.Value()
}

// Focused reports whether the underlying input has focus.
func (m Model) Focused() bool { return m.Input.Focused() }

// Focus gives the input focus.
func (m *Model) Focus() tea.Cmd {
	return m.Input.Focus()
}

// Blur removes focus and closes the dropdown. This is the terminal analog
// of a click outside the widget; it touches only this instance.
func (m *Model) Blur() {
	m.Input.Blur()
	m.closeDropdown()
}

// Open reports whether the dropdown is showing.
func (m Model) Open() bool { return m.open }

func (m *Model) closeDropdown() {
	m.open = false
	m.results = nil
	m.cursor = 0
	m.failed = false
	m.pending = false
}

// Update handles key, debounce and result messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case DebounceMsg:
		if msg.Name != m.name || msg.Gen != m.inputGen {
			// superseded tick: a newer keystroke arrived before it fired
			return m, nil
		}
		return m.fire()

	case ResultsMsg:
		if msg.Name != m.name {
			return m, nil
		}
		if msg.Gen != m.reqGen {
			m.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSuggestStale, Comp: "suggest", Instance: m.name, Gen: msg.Gen})
			return m, nil
		}
		m.pending = false
		if !m.Input.Focused() {
			// blurred while the lookup was in flight; the dropdown stays closed
			return m, nil
		}
		if msg.Err != nil {
			m.failed = true
			m.results = nil
			m.open = true
			m.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindSuggestError, Comp: "suggest", Instance: m.name, Gen: msg.Gen, Err: msg.Err.Error()})
			return m, nil
		}
		m.failed = false
		m.results = msg.Suggestions
		m.cursor = 0
		m.open = true
		m.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSuggestComplete, Comp: "suggest", Instance: m.name, Gen: msg.Gen, Count: len(msg.Suggestions)})
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if !m.Input.Focused() {
		return m, nil
	}

	if m.open {
		switch msg.String() {
		case "down":
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
			return m, nil
		case "up":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "enter":
			return m.choose()
		case "esc":
			m.closeDropdown()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)

	if v := m.Input.Value(); v != m.lastValue {
		m.lastValue = v
		debounce := m.onChanged(v)
		return m, tea.Batch(cmd, debounce)
	}
	return m, cmd
}

// onChanged implements the per-keystroke protocol: bump the input
// generation (cancelling any scheduled tick), clear the identifier so an
// edited query must be re-confirmed, and either clear the dropdown (short
// query) or schedule a debounced lookup.
func (m *Model) onChanged(value string) tea.Cmd {
	m.inputGen++
	m.identifier = ""
	m.failed = false

	if len(strings.TrimSpace(value)) < m.minLen {
		m.closeDropdown()
		m.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSuggestShort, Comp: "suggest", Instance: m.name, Query: value})
		return nil
	}

	name, gen := m.name, m.inputGen
	m.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSuggestInput, Comp: "suggest", Instance: m.name, Gen: gen})
	return tea.Tick(m.delay, func(time.Time) tea.Msg {
		return DebounceMsg{Name: name, Gen: gen}
	})
}

// fire issues exactly one lookup for the current query text, cancelling
// the previous in-flight request.
func (m Model) fire() (Model, tea.Cmd) {
	if !m.Input.Focused() {
		// blurred during the debounce window: nothing to show the results in
		return m, nil
	}
	if len(strings.TrimSpace(m.Input.Value())) < m.minLen {
		return m, nil
	}
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	m.reqGen++
	m.pending = true

	name, gen := m.name, m.reqGen
	query := m.Input.Value()
	lookup := m.lookup

	m.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSuggestLookup, Comp: "suggest", Instance: m.name, Gen: gen, Query: query})

	return m, func() tea.Msg {
		suggestions, err := lookup(ctx, query)
		return ResultsMsg{Name: name, Gen: gen, Suggestions: suggestions, Err: err}
	}
}

// choose applies the highlighted suggestion: canonical label into the
// input, identifier into the sink, dropdown cleared.
func (m Model) choose() (Model, tea.Cmd) {
	if m.cursor < 0 || m.cursor >= len(m.results) {
		m.closeDropdown()
		return m, nil
	}
	s := m.results[m.cursor]

	m.Input.SetValue(s.Label)
	m.Input.CursorEnd()
	m.lastValue = s.Label
	m.identifier = s.ID
	m.closeDropdown()

	m.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSuggestSelect, Comp: "suggest", Instance: m.name, Query: s.ID})

	name := m.name
	return m, func() tea.Msg {
		return SelectedMsg{Name: name, Suggestion: s}
	}
}

func (m Model) emit(e otel.Event) {
	if m.events != nil {
		m.events.Emit(e)
	}
}

// View renders the input and, when open, the dropdown beneath it.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.Input.View())

	if m.pending {
		b.WriteString("\n" + mutedStyle.Render("searching..."))
		return b.String()
	}
	if !m.open {
		return b.String()
	}

	var lines []string
	switch {
	case m.failed:
		lines = append(lines, failedStyle.Render("search failed"))
	case len(m.results) == 0:
		lines = append(lines, mutedStyle.Render("no results"))
	default:
		for i, s := range m.results {
			label := s.Label
			if s.Detail != "" {
				label = fmt.Sprintf("%s %s", label, detailStyle.Render("("+s.Detail+")"))
			}
			if i == m.cursor {
				lines = append(lines, selectedStyle.Render("▶ "+s.Label)+" "+detailStyle.Render(s.Detail))
			} else {
				lines = append(lines, entryStyle.Render("  "+label))
			}
		}
	}

	b.WriteString("\n" + dropdownStyle.Render(strings.Join(lines, "\n")))
	return b.String()
}

// TermSuggestion builds the canonical display entry for a term result.
func TermSuggestion(id, name, namespace string) Suggestion {
	return Suggestion{
		ID:     id,
		Label:  fmt.Sprintf("%s — %s", id, name),
		Detail: namespace,
	}
}

// GeneSuggestion builds the canonical display entry for a gene result.
// Genes have no separate identifier sink; the symbol is both.
func GeneSuggestion(symbol, name string) Suggestion {
	return Suggestion{
		ID:     symbol,
		Label:  symbol,
		Detail: name,
	}
}
