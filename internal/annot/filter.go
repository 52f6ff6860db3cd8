// Package annot holds the annotation row model and the row filter engine.
package annot

import (
	"fmt"

	"github.com/mfreitag/ontoview/internal/evidence"
)

// Row is a single gene-to-term annotation as rendered in the table.
// The filter engine toggles only the Visible flag; everything else is
// owned by whoever loaded the rows.
type Row struct {
	TermID     string
	TermName   string
	GeneSymbol string
	Aspect     string // "P", "F" or "C"
	Evidence   string // GAF evidence code
	Count      int
	Visible    bool
}

// AspectAll and EvidenceAll are the selector values that match every row.
const (
	AspectAll   = "all"
	EvidenceAll = "all"
)

// Evidence selector values beyond "all".
const (
	EvidenceExperimental  = "EXP"
	EvidenceComputational = "COMP"
	EvidenceElectronic    = "IEA"
	EvidenceOther         = "OTHER"
)

// Aspects lists the selector cycle for the aspect filter.
var Aspects = []string{AspectAll, "P", "F", "C"}

// EvidenceTypes lists the selector cycle for the evidence filter.
var EvidenceTypes = []string{EvidenceAll, EvidenceExperimental, EvidenceComputational, EvidenceElectronic, EvidenceOther}

// Filters holds the two independent selector values.
type Filters struct {
	Aspect   string
	Evidence string
}

// DefaultFilters returns both selectors set to "all".
func DefaultFilters() Filters {
	return Filters{Aspect: AspectAll, Evidence: EvidenceAll}
}

// Reset restores both selectors to "all".
func (f *Filters) Reset() {
	f.Aspect = AspectAll
	f.Evidence = EvidenceAll
}

// Match reports whether a row passes both predicates.
func (f Filters) Match(r Row) bool {
	return f.aspectMatch(r) && f.evidenceMatch(r)
}

func (f Filters) aspectMatch(r Row) bool {
	return f.Aspect == AspectAll || r.Aspect == f.Aspect
}

func (f Filters) evidenceMatch(r Row) bool {
	switch f.Evidence {
	case EvidenceAll:
		return true
	case EvidenceExperimental:
		return evidence.Classify(r.Evidence) == evidence.Experimental
	case EvidenceComputational:
		return evidence.Classify(r.Evidence) == evidence.Computational
	case EvidenceElectronic:
		return evidence.Classify(r.Evidence) == evidence.Electronic
	case EvidenceOther:
		return evidence.Classify(r.Evidence) == evidence.Other
	default:
		return false
	}
}

// Apply toggles each row's Visible flag per the current selectors and
// returns the number of visible rows.
func Apply(rows []Row, f Filters) int {
	visible := 0
	for i := range rows {
		rows[i].Visible = f.Match(rows[i])
		if rows[i].Visible {
			visible++
		}
	}
	return visible
}

// Badge formats the visible-row count for display.
func Badge(visible int) string {
	return fmt.Sprintf("Showing %d terms", visible)
}
