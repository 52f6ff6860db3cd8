// Package ui provides the Bubble Tea TUI for ontoview.
package ui

import (
	"github.com/mfreitag/ontoview/internal/annot"
	"github.com/mfreitag/ontoview/internal/history"
)

// RowsLoaded is sent when annotation rows arrive for the table view.
type RowsLoaded struct {
	Gene string
	Rows []annot.Row
	Err  error
}

// TopGenesMsg is sent when the top-genes fetch finishes. Both the table
// view and the form's matrix mode can request it; each reacts only while
// its own request is pending.
type TopGenesMsg struct {
	Symbols string
	Err     error
}

// RecentsLoaded is sent when the selection history has been read.
type RecentsLoaded struct {
	Kind    history.Kind
	Entries []history.Entry
	Err     error
}

// SelectionRecorded is sent after a selection was written to history.
type SelectionRecorded struct {
	Kind history.Kind
	Err  error
}

// SubmitMsg carries a built similarity request for the server.
type SubmitMsg struct {
	Path  string
	Query string // encoded query string
}
