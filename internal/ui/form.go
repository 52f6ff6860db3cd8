package ui

import (
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mfreitag/ontoview/internal/otel"
	"github.com/mfreitag/ontoview/internal/suggest"
)

// FormMode selects which input group of the similarity form is active.
// Exactly one mode is active at a time.
type FormMode int

const (
	ModeTerm FormMode = iota
	ModeGene
	ModeMatrix
)

func (m FormMode) String() string {
	switch m {
	case ModeTerm:
		return "term"
	case ModeGene:
		return "gene"
	case ModeMatrix:
		return "matrix"
	}
	return "unknown"
}

// ParseMode maps a stored mode name to a FormMode. Unknown names report
// ok=false so callers can keep their current mode unchanged.
func ParseMode(s string) (FormMode, bool) {
	switch s {
	case "term":
		return ModeTerm, true
	case "gene":
		return ModeGene, true
	case "matrix":
		return ModeMatrix, true
	}
	return ModeTerm, false
}

// Strategies are the similarity strategies the server accepts.
var Strategies = []string{"jaccard", "wupalmer", "resnik"}

// Form is the similarity form: three mutually exclusive input groups, a
// strategy selector, and a submit action. Term mode carries two term
// autocomplete fields with identifier sinks; gene mode two gene
// autocomplete fields; matrix mode a comma-separated gene list that can
// be filled from the server's top genes.
type Form struct {
	mode     FormMode
	strategy int

	termA    suggest.Model
	termB    suggest.Model
	geneA    suggest.Model
	geneB    suggest.Model
	geneList textinput.Model

	focus int // index into the active group's field order

	fetchTop   func() tea.Msg
	topPending bool
	topFailed  bool
	spin       spinner.Model

	errMsg string
	events *otel.Logger
}

// NewForm builds the similarity form. termLookup and geneLookup feed the
// autocomplete fields; fetchTop loads the server's top genes for matrix
// mode (nil disables the action). events may be nil.
func NewForm(termLookup, geneLookup suggest.LookupFunc, fetchTop func() tea.Msg, events *otel.Logger) Form {
	geneList := textinput.New()
	geneList.Placeholder = "TP53, BRCA1, EGFR"
	geneList.CharLimit = 500
	geneList.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	f := Form{
		termA:    suggest.New("form.term_a", termLookup, 3, "first GO term", events),
		termB:    suggest.New("form.term_b", termLookup, 3, "second GO term", events),
		geneA:    suggest.New("form.gene_a", geneLookup, 2, "first gene", events),
		geneB:    suggest.New("form.gene_b", geneLookup, 2, "second gene", events),
		geneList: geneList,
		fetchTop: fetchTop,
		spin:     sp,
		events:   events,
	}
	f.applyMode()
	return f
}

// Mode returns the active mode.
func (f Form) Mode() FormMode { return f.mode }

// Strategy returns the selected strategy name.
func (f Form) Strategy() string { return Strategies[f.strategy] }

// SetMode switches the active input group. Switching is reversible:
// inactive groups keep their text but lose focus and required status.
func (f *Form) SetMode(m FormMode) tea.Cmd {
	if m == f.mode {
		return nil
	}
	f.mode = m
	f.focus = 0
	f.errMsg = ""
	if f.events != nil {
		f.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFormMode, Comp: "form", Msg: m.String()})
	}
	return f.applyMode()
}

// SetModeName switches by stored name; unknown names are a silent no-op.
func (f *Form) SetModeName(s string) tea.Cmd {
	m, ok := ParseMode(s)
	if !ok {
		return nil
	}
	return f.SetMode(m)
}

// applyMode blurs every field outside the active group and focuses the
// first field inside it.
func (f *Form) applyMode() tea.Cmd {
	f.termA.Blur()
	f.termB.Blur()
	f.geneA.Blur()
	f.geneB.Blur()
	f.geneList.Blur()

	switch f.mode {
	case ModeTerm:
		return f.termA.Focus()
	case ModeGene:
		return f.geneA.Focus()
	case ModeMatrix:
		return f.geneList.Focus()
	}
	return nil
}

// RequiredFields returns the field names that must be non-empty before
// submission, in display order. The set depends only on the mode.
func (f Form) RequiredFields() []string {
	switch f.mode {
	case ModeTerm:
		return []string{"term_a", "term_b"}
	case ModeGene:
		return []string{"gene_a", "gene_b"}
	case ModeMatrix:
		return []string{"gene_list"}
	}
	return nil
}

// fieldCount returns the number of focusable fields in the active group.
func (f Form) fieldCount() int {
	if f.mode == ModeMatrix {
		return 1
	}
	return 2
}

// cycleFocus moves focus within the active group.
func (f *Form) cycleFocus(delta int) tea.Cmd {
	n := f.fieldCount()
	f.focus = (f.focus + delta + n) % n

	f.termA.Blur()
	f.termB.Blur()
	f.geneA.Blur()
	f.geneB.Blur()
	f.geneList.Blur()

	switch f.mode {
	case ModeTerm:
		if f.focus == 0 {
			return f.termA.Focus()
		}
		return f.termB.Focus()
	case ModeGene:
		if f.focus == 0 {
			return f.geneA.Focus()
		}
		return f.geneB.Focus()
	case ModeMatrix:
		return f.geneList.Focus()
	}
	return nil
}

// Init starts the spinner.
func (f Form) Init() tea.Cmd {
	return f.spin.Tick
}

// Update handles keys, dispatcher traffic and top-genes results.
func (f Form) Update(msg tea.Msg) (Form, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+t":
			return f, f.SetMode(ModeTerm)
		case "ctrl+g":
			return f, f.SetMode(ModeGene)
		case "ctrl+x":
			return f, f.SetMode(ModeMatrix)
		case "ctrl+p":
			f.strategy = (f.strategy + 1) % len(Strategies)
			return f, nil
		case "tab":
			return f, f.cycleFocus(1)
		case "shift+tab":
			return f, f.cycleFocus(-1)
		case "ctrl+s":
			return f.submit()
		case "ctrl+r":
			return f.requestTopGenes()
		}
		return f.routeKey(msg)

	case suggest.DebounceMsg, suggest.ResultsMsg:
		return f.routeAll(msg)

	case TopGenesMsg:
		if !f.topPending {
			return f, nil
		}
		f.topPending = false
		if msg.Err != nil {
			// control re-enabled, failure shown until the next action
			f.topFailed = true
			if f.events != nil {
				f.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindTopGenes, Comp: "form", Err: msg.Err.Error()})
			}
			return f, nil
		}
		f.topFailed = false
		f.geneList.SetValue(msg.Symbols)
		f.geneList.CursorEnd()
		return f, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		f.spin, cmd = f.spin.Update(msg)
		return f, cmd
	}

	return f, nil
}

// routeKey delivers a key to the focused field of the active group.
func (f Form) routeKey(msg tea.KeyMsg) (Form, tea.Cmd) {
	var cmd tea.Cmd
	switch f.mode {
	case ModeTerm:
		if f.focus == 0 {
			f.termA, cmd = f.termA.Update(msg)
		} else {
			f.termB, cmd = f.termB.Update(msg)
		}
	case ModeGene:
		if f.focus == 0 {
			f.geneA, cmd = f.geneA.Update(msg)
		} else {
			f.geneB, cmd = f.geneB.Update(msg)
		}
	case ModeMatrix:
		f.geneList, cmd = f.geneList.Update(msg)
	}
	return f, cmd
}

// routeAll delivers dispatcher traffic to every field; each instance
// filters by its own name.
func (f Form) routeAll(msg tea.Msg) (Form, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	f.termA, cmd = f.termA.Update(msg)
	cmds = append(cmds, cmd)
	f.termB, cmd = f.termB.Update(msg)
	cmds = append(cmds, cmd)
	f.geneA, cmd = f.geneA.Update(msg)
	cmds = append(cmds, cmd)
	f.geneB, cmd = f.geneB.Update(msg)
	cmds = append(cmds, cmd)
	return f, tea.Batch(cmds...)
}

func (f Form) requestTopGenes() (Form, tea.Cmd) {
	if f.mode != ModeMatrix || f.fetchTop == nil || f.topPending {
		return f, nil
	}
	f.topPending = true
	f.topFailed = false
	fetch := f.fetchTop
	return f, tea.Batch(f.spin.Tick, func() tea.Msg { return fetch() })
}

// submit validates the active group and builds the server query string.
// In term mode, an empty identifier sink falls back to the raw query text
// so the server always receives a non-empty candidate.
func (f Form) submit() (Form, tea.Cmd) {
	values := url.Values{}
	values.Set("mode", f.mode.String())
	values.Set("strategy", f.Strategy())

	switch f.mode {
	case ModeTerm:
		if strings.TrimSpace(f.termA.Value()) == "" || strings.TrimSpace(f.termB.Value()) == "" {
			f.errMsg = "both GO terms are required"
			return f, nil
		}
		values.Set("term_a_query", f.termA.Value())
		values.Set("term_b_query", f.termB.Value())
		values.Set("term_a_id", f.termA.IdentifierOrValue())
		values.Set("term_b_id", f.termB.IdentifierOrValue())

	case ModeGene:
		if strings.TrimSpace(f.geneA.Value()) == "" || strings.TrimSpace(f.geneB.Value()) == "" {
			f.errMsg = "both genes are required"
			return f, nil
		}
		values.Set("gene_a_query", f.geneA.IdentifierOrValue())
		values.Set("gene_b_query", f.geneB.IdentifierOrValue())

	case ModeMatrix:
		if strings.TrimSpace(f.geneList.Value()) == "" {
			f.errMsg = "a gene list is required"
			return f, nil
		}
		values.Set("gene_list_query", f.geneList.Value())
	}

	f.errMsg = ""
	if f.events != nil {
		f.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFormSubmit, Comp: "form", Msg: f.mode.String()})
	}
	encoded := values.Encode()
	return f, func() tea.Msg {
		return SubmitMsg{Path: "/similarity", Query: encoded}
	}
}

// View renders the mode tabs, the active input group and the status line.
func (f Form) View() string {
	var b strings.Builder

	for _, m := range []FormMode{ModeTerm, ModeGene, ModeMatrix} {
		if m == f.mode {
			b.WriteString(TabActive.Render(m.String()))
		} else {
			b.WriteString(TabInactive.Render(m.String()))
		}
	}
	b.WriteString("  " + LabelStyle.Render("strategy: ")+f.Strategy())
	b.WriteString("\n\n")

	req := RequiredMark.Render("*")
	switch f.mode {
	case ModeTerm:
		b.WriteString(LabelStyle.Render("term A ") + req + "\n" + f.termA.View() + "\n")
		b.WriteString(LabelStyle.Render("term B ") + req + "\n" + f.termB.View() + "\n")
	case ModeGene:
		b.WriteString(LabelStyle.Render("gene A ") + req + "\n" + f.geneA.View() + "\n")
		b.WriteString(LabelStyle.Render("gene B ") + req + "\n" + f.geneB.View() + "\n")
	case ModeMatrix:
		b.WriteString(LabelStyle.Render("gene list ") + req + "\n" + f.geneList.View() + "\n")
		switch {
		case f.topPending:
			b.WriteString(f.spin.View() + " loading top genes\n")
		case f.topFailed:
			b.WriteString(ErrorStyle.Render("Error") + "\n")
		default:
			b.WriteString(StatusBarText.Render("ctrl+r fills the list with the top annotated genes") + "\n")
		}
	}

	if f.errMsg != "" {
		b.WriteString("\n" + ErrorStyle.Render(f.errMsg))
	}

	b.WriteString("\n" + StatusBarText.Render(
		"ctrl+t/ctrl+g/ctrl+x mode · tab next field · ctrl+p strategy · ctrl+s submit"))
	return b.String()
}
