package ui

import (
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mfreitag/ontoview/internal/config"
	"github.com/mfreitag/ontoview/internal/history"
	"github.com/mfreitag/ontoview/internal/otel"
	"github.com/mfreitag/ontoview/internal/suggest"
)

// view identifiers
const (
	viewSearch = iota
	viewTable
	viewForm
)

// Deps carries everything the app needs from the outside. All network and
// storage access is injected so tests can drive the model synchronously.
type Deps struct {
	TermLookup suggest.LookupFunc
	GeneLookup suggest.LookupFunc
	FetchTop   func() tea.Msg
	LoadRows   func(gene string) tea.Msg

	// history hooks; nil disables the recents panel
	Record func(kind history.Kind, id, label string) error
	Recent func(kind history.Kind, limit int) ([]history.Entry, error)

	Events *otel.Logger
	Ring   *otel.RingBuffer // recent events for the debug overlay; nil disables it
	Config *config.Config
}

// App is the root model: a search view with the two standalone
// autocomplete fields, the annotation table view, and the similarity form.
type App struct {
	term  suggest.Model
	gene  suggest.Model
	table Table
	form  Form

	deps       Deps
	maxRecents int

	termRecents []history.Entry
	geneRecents []history.Entry

	view        int
	searchFocus int // 0 = term field, 1 = gene field

	lastSubmit string
	width      int
	height     int
	showDebug  bool
	quitting   bool
}

// NewApp wires the root model from its dependencies.
func NewApp(deps Deps) App {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	term := suggest.New("term", deps.TermLookup, cfg.Suggest.TermMinLen, "search GO terms", deps.Events)
	gene := suggest.New("gene", deps.GeneLookup, cfg.Suggest.GeneMinLen, "search genes", deps.Events)
	term.SetDelay(cfg.Debounce())
	gene.SetDelay(cfg.Debounce())

	form := NewForm(deps.TermLookup, deps.GeneLookup, deps.FetchTop, deps.Events)
	// unknown stored mode names leave the default untouched
	form.SetModeName(cfg.UI.InitialMode)

	// focus set here so it survives Init's value receiver
	term.Focus()

	return App{
		term:       term,
		gene:       gene,
		table:      NewTable(deps.FetchTop, deps.Events),
		form:       form,
		deps:       deps,
		maxRecents: cfg.Suggest.MaxRecents,
		showDebug:  cfg.UI.ShowDebug,
	}
}

// Init starts the spinners and loads the recents panel.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.form.Init(),
		a.loadRecents(history.KindTerm),
		a.loadRecents(history.KindGene),
	)
}

func (a App) loadRecents(kind history.Kind) tea.Cmd {
	if a.deps.Recent == nil {
		return nil
	}
	recent := a.deps.Recent
	limit := a.maxRecents
	return func() tea.Msg {
		entries, err := recent(kind, limit)
		return RecentsLoaded{Kind: kind, Entries: entries, Err: err}
	}
}

// Update is the single message pump.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		if msg.Height > 12 {
			a.table.SetHeight(msg.Height - 10)
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case suggest.DebounceMsg, suggest.ResultsMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		a.term, cmd = a.term.Update(msg)
		cmds = append(cmds, cmd)
		a.gene, cmd = a.gene.Update(msg)
		cmds = append(cmds, cmd)
		a.form, cmd = a.form.Update(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	case suggest.SelectedMsg:
		return a.handleSelection(msg)

	case SelectionRecorded:
		if msg.Err != nil {
			if a.deps.Events != nil {
				a.deps.Events.Error(otel.KindHistoryError, "history", msg.Err)
			}
			return a, nil
		}
		return a, a.loadRecents(msg.Kind)

	case RecentsLoaded:
		if msg.Err != nil {
			if a.deps.Events != nil {
				a.deps.Events.Error(otel.KindHistoryError, "history", msg.Err)
			}
			return a, nil
		}
		if msg.Kind == history.KindGene {
			a.geneRecents = msg.Entries
		} else {
			a.termRecents = msg.Entries
		}
		return a, nil

	case SubmitMsg:
		a.lastSubmit = msg.Path + "?" + msg.Query
		return a, a.recordSubmission(msg)

	default:
		// spinner ticks, row loads and top-genes results belong to the panes
		var cmds []tea.Cmd
		var cmd tea.Cmd
		a.table, cmd = a.table.Update(msg)
		cmds = append(cmds, cmd)
		a.form, cmd = a.form.Update(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)
	}
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		a.quitting = true
		return a, tea.Quit
	case "f1":
		return a.switchView(viewSearch)
	case "f2":
		return a.switchView(viewTable)
	case "f3":
		return a.switchView(viewForm)
	case "ctrl+d":
		a.showDebug = !a.showDebug
		return a, nil
	}

	var cmd tea.Cmd
	switch a.view {
	case viewSearch:
		if s := msg.String(); s == "tab" || s == "shift+tab" {
			return a.toggleSearchFocus()
		}
		if a.searchFocus == 0 {
			a.term, cmd = a.term.Update(msg)
		} else {
			a.gene, cmd = a.gene.Update(msg)
		}
	case viewTable:
		a.table, cmd = a.table.Update(msg)
	case viewForm:
		a.form, cmd = a.form.Update(msg)
	}
	return a, cmd
}

// switchView blurs the search fields when leaving the search view, which
// closes their dropdowns without touching each other's state.
func (a App) switchView(v int) (tea.Model, tea.Cmd) {
	if v == a.view {
		return a, nil
	}
	a.term.Blur()
	a.gene.Blur()
	a.view = v

	if v == viewSearch {
		if a.searchFocus == 0 {
			return a, a.term.Focus()
		}
		return a, a.gene.Focus()
	}
	return a, nil
}

func (a App) toggleSearchFocus() (tea.Model, tea.Cmd) {
	if a.searchFocus == 0 {
		a.term.Blur()
		a.searchFocus = 1
		return a, a.gene.Focus()
	}
	a.gene.Blur()
	a.searchFocus = 0
	return a, a.term.Focus()
}

// handleSelection records the pick to history and, for gene selections,
// loads that gene's annotations into the table.
func (a App) handleSelection(msg suggest.SelectedMsg) (tea.Model, tea.Cmd) {
	kind := history.KindTerm
	if strings.Contains(msg.Name, "gene") {
		kind = history.KindGene
	}

	var cmds []tea.Cmd
	if a.deps.Record != nil {
		record := a.deps.Record
		s := msg.Suggestion
		cmds = append(cmds, func() tea.Msg {
			return SelectionRecorded{Kind: kind, Err: record(kind, s.ID, s.Label)}
		})
	}

	if kind == history.KindGene && a.deps.LoadRows != nil {
		load := a.deps.LoadRows
		symbol := msg.Suggestion.ID
		cmds = append(cmds, func() tea.Msg { return load(symbol) })
	}

	return a, tea.Batch(cmds...)
}

// recordSubmission writes the identifiers of a submitted lookup to
// history, so submitted free text surfaces in the recents panel alongside
// picked suggestions.
func (a App) recordSubmission(msg SubmitMsg) tea.Cmd {
	if a.deps.Record == nil {
		return nil
	}
	values, err := url.ParseQuery(msg.Query)
	if err != nil {
		return nil
	}

	type rec struct {
		kind      history.Kind
		id, label string
	}
	var recs []rec
	switch values.Get("mode") {
	case "term":
		recs = append(recs,
			rec{history.KindTerm, values.Get("term_a_id"), values.Get("term_a_query")},
			rec{history.KindTerm, values.Get("term_b_id"), values.Get("term_b_query")})
	case "gene":
		recs = append(recs,
			rec{history.KindGene, values.Get("gene_a_query"), values.Get("gene_a_query")},
			rec{history.KindGene, values.Get("gene_b_query"), values.Get("gene_b_query")})
	case "matrix":
		for _, sym := range strings.Split(values.Get("gene_list_query"), ",") {
			sym = strings.TrimSpace(sym)
			if sym != "" {
				recs = append(recs, rec{history.KindGene, sym, sym})
			}
		}
	}

	record := a.deps.Record
	var cmds []tea.Cmd
	for _, r := range recs {
		if r.id == "" {
			continue
		}
		r := r
		cmds = append(cmds, func() tea.Msg {
			return SelectionRecorded{Kind: r.kind, Err: record(r.kind, r.id, r.label)}
		})
	}
	return tea.Batch(cmds...)
}

// View renders the tab bar, the active pane and the status bar.
func (a App) View() string {
	if a.quitting {
		return ""
	}

	var b strings.Builder

	tabs := []struct {
		id   int
		name string
	}{
		{viewSearch, "F1 search"},
		{viewTable, "F2 annotations"},
		{viewForm, "F3 similarity"},
	}
	for _, tab := range tabs {
		if tab.id == a.view {
			b.WriteString(TabActive.Render(tab.name))
		} else {
			b.WriteString(TabInactive.Render(tab.name))
		}
	}
	b.WriteString("\n\n")

	switch a.view {
	case viewSearch:
		b.WriteString(a.viewSearchPane())
	case viewTable:
		b.WriteString(a.table.View())
	case viewForm:
		b.WriteString(a.form.View())
	}

	if a.lastSubmit != "" {
		b.WriteString("\n" + LabelStyle.Render("last request: ") + a.lastSubmit)
	}
	b.WriteString("\n" + StatusBar.Render(
		StatusBarKey.Render("ctrl+c")+StatusBarText.Render(" quit · ")+
			StatusBarKey.Render("f1/f2/f3")+StatusBarText.Render(" views · ")+
			StatusBarKey.Render("ctrl+d")+StatusBarText.Render(" debug")))

	if a.showDebug && a.deps.Ring != nil {
		width, height := a.width, a.height
		if width == 0 {
			width = 80
		}
		if height == 0 {
			height = 24
		}
		b.WriteString("\n" + debugOverlay(a.deps.Ring, width, height))
	}
	return b.String()
}

func (a App) viewSearchPane() string {
	var b strings.Builder

	b.WriteString(LabelStyle.Render("GO term") + "\n" + a.term.View() + "\n\n")
	b.WriteString(LabelStyle.Render("Gene") + "\n" + a.gene.View() + "\n")

	if len(a.termRecents) > 0 {
		b.WriteString(RecentHeader.Render("Recent terms") + "\n")
		for _, e := range a.termRecents {
			b.WriteString(RecentItem.Render(e.Label) + "\n")
		}
	}
	if len(a.geneRecents) > 0 {
		b.WriteString(RecentHeader.Render("Recent genes") + "\n")
		for _, e := range a.geneRecents {
			b.WriteString(RecentItem.Render(e.Label) + "\n")
		}
	}
	return b.String()
}
