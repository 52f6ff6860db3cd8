// Package otel provides structured observability for ontoview.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain
// goroutine. An optional RingBuffer keeps recent events in memory for the
// debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an observability event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Suggestion dispatcher events
	KindSuggestInput    EventKind = "suggest.input"
	KindSuggestShort    EventKind = "suggest.short"
	KindSuggestLookup   EventKind = "suggest.lookup"
	KindSuggestStale    EventKind = "suggest.stale"
	KindSuggestComplete EventKind = "suggest.complete"
	KindSuggestError    EventKind = "suggest.error"
	KindSuggestSelect   EventKind = "suggest.select"

	// Table / filter events
	KindTableFilter EventKind = "table.filter"
	KindTableReset  EventKind = "table.reset"
	KindTableLoad   EventKind = "table.load"

	// Form events
	KindFormMode   EventKind = "form.mode"
	KindFormSubmit EventKind = "form.submit"

	// API events
	KindAPIError EventKind = "api.error"
	KindTopGenes EventKind = "api.top_genes"

	// History events
	KindHistoryError EventKind = "history.error"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"
)

// Event is the universal observability record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // component: "suggest", "table", "form", "api", "main"
	SessionID string         `json:"session_id,omitempty"` // random hex, same for entire app run
	Instance  string         `json:"instance,omitempty"`   // dispatcher instance name
	Gen       int            `json:"gen,omitempty"`        // request generation
	Query     string         `json:"query,omitempty"`
	Count     int            `json:"count,omitempty"`
	Dur       time.Duration  `json:"-"`                // not serialized directly
	DurMs     float64        `json:"dur_ms,omitempty"` // computed from Dur at marshal time
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`   // free text
	Extra     map[string]any `json:"extra,omitempty"` // escape hatch for unusual fields
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
