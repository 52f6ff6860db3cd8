package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mfreitag/ontoview/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders the debug panel showing event stats and recent events.
// Pure function with no side effects. Returns empty string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Last(20)

	// --- Stats section (keyed lookups, not map iteration) ---
	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Event Stats"))
	lines = append(lines, fmt.Sprintf("  Lookups:    %d fired, %d complete, %d stale, %d errors",
		stats[otel.KindSuggestLookup], stats[otel.KindSuggestComplete],
		stats[otel.KindSuggestStale], stats[otel.KindSuggestError]))
	lines = append(lines, fmt.Sprintf("  Table:      %d filters, %d resets, %d loads",
		stats[otel.KindTableFilter], stats[otel.KindTableReset], stats[otel.KindTableLoad]))
	lines = append(lines, fmt.Sprintf("  Form:       %d mode changes, %d submits",
		stats[otel.KindFormMode], stats[otel.KindFormSubmit]))
	lines = append(lines, fmt.Sprintf("  Failures:   %d api, %d history",
		stats[otel.KindAPIError], stats[otel.KindHistoryError]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	// --- Recent events section ---
	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range recent {
		age := time.Since(e.Time)
		ageStr := formatAge(age)

		line := fmt.Sprintf("  %6s  %-18s", ageStr, string(e.Kind))
		if e.Instance != "" {
			line += fmt.Sprintf("  [%s]", e.Instance)
		}
		if e.Query != "" {
			line += "  " + truncateRunes(e.Query, 30)
		}
		if e.Msg != "" {
			line += "  " + truncateRunes(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		lines = append(lines, line)
	}

	// Truncate to fit terminal height (subtract chrome added by DebugPanel border/padding)
	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 76
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	content := strings.Join(lines, "\n")
	return DebugPanel.Width(panelWidth).Render(content)
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

// truncateRunes shortens s to at most n runes, replacing the tail with an
// ellipsis. Cuts on runes so multibyte characters never get split.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
