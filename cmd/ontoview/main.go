package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/mfreitag/ontoview/internal/api"
	"github.com/mfreitag/ontoview/internal/config"
	"github.com/mfreitag/ontoview/internal/history"
	"github.com/mfreitag/ontoview/internal/logging"
	"github.com/mfreitag/ontoview/internal/otel"
	"github.com/mfreitag/ontoview/internal/suggest"
	"github.com/mfreitag/ontoview/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ontoview: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := logging.Init(); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logging.Close()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// first run: materialize the defaults so users have a file to edit
	if _, err := os.Stat(config.ConfigPath()); os.IsNotExist(err) {
		if err := cfg.Save(); err != nil {
			logging.Warn("could not write default config", "err", err)
		}
	}

	events, err := openEventLog()
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer events.Close()
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	events.SetRingBuffer(ring)
	events.Info(otel.KindStartup, "main", cfg.Server.BaseURL)

	client := api.NewClient(cfg.Server.BaseURL, cfg.Timeout())

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.HistoryDBPath())
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()
	}

	// warm the history store before the UI needs it
	if store != nil {
		var g errgroup.Group
		retention := time.Duration(cfg.History.RetentionDays) * 24 * time.Hour
		g.Go(func() error {
			_, err := store.Prune(retention)
			return err
		})
		for _, kind := range []history.Kind{history.KindTerm, history.KindGene} {
			kind := kind
			g.Go(func() error {
				_, err := store.Recent(kind, cfg.Suggest.MaxRecents)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			logging.Warn("history warmup failed", "err", err)
		}
	}

	deps := ui.Deps{
		TermLookup: func(ctx context.Context, query string) ([]suggest.Suggestion, error) {
			terms, err := client.SearchTerms(ctx, query)
			if err != nil {
				events.Error(otel.KindAPIError, "api", err)
				return nil, err
			}
			out := make([]suggest.Suggestion, 0, len(terms))
			for _, t := range terms {
				out = append(out, suggest.TermSuggestion(t.ID, t.Name, t.Namespace))
			}
			return out, nil
		},
		GeneLookup: func(ctx context.Context, query string) ([]suggest.Suggestion, error) {
			genes, err := client.SearchGenes(ctx, query)
			if err != nil {
				events.Error(otel.KindAPIError, "api", err)
				return nil, err
			}
			out := make([]suggest.Suggestion, 0, len(genes))
			for _, g := range genes {
				out = append(out, suggest.GeneSuggestion(g.Symbol, g.Name))
			}
			return out, nil
		},
		FetchTop: func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
			defer cancel()
			symbols, err := client.TopGenes(ctx)
			return ui.TopGenesMsg{Symbols: symbols, Err: err}
		},
		LoadRows: func(gene string) tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
			defer cancel()
			rows, err := client.Annotations(ctx, gene)
			return ui.RowsLoaded{Gene: gene, Rows: rows, Err: err}
		},
		Events: events,
		Ring:   ring,
		Config: cfg,
	}

	if store != nil {
		deps.Record = store.Record
		deps.Recent = store.Recent
	}

	app := ui.NewApp(deps)
	program := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		events.Error(otel.KindError, "main", err)
		return fmt.Errorf("run program: %w", err)
	}

	events.Info(otel.KindShutdown, "main", "")
	return nil
}

// openEventLog creates the JSONL event writer under ~/.ontoview/events.
func openEventLog() (*otel.Logger, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(home, ".ontoview", "events")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("events-%s.jsonl", time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return otel.NewLogger(f), nil
}
