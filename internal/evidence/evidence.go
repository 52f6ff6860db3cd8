// Package evidence classifies GO evidence codes into broad categories.
//
// The categories form a total, disjoint partition: every code maps to
// exactly one category, and codes outside the three known families fall
// into Other.
package evidence

// Category is the broad family an evidence code belongs to.
type Category int

const (
	Experimental Category = iota
	Computational
	Electronic
	Other
)

// String returns the display name of the category.
func (c Category) String() string {
	switch c {
	case Experimental:
		return "Experimental"
	case Computational:
		return "Computational"
	case Electronic:
		return "Electronic"
	default:
		return "Other"
	}
}

// experimentalCodes covers direct and high-throughput assays.
var experimentalCodes = map[string]struct{}{
	"EXP": {}, "IDA": {}, "IPI": {}, "IMP": {}, "IGI": {}, "IEP": {},
	"HTP": {}, "HDA": {}, "HMP": {}, "HGI": {}, "HEP": {},
}

// computationalCodes covers curated computational analysis.
var computationalCodes = map[string]struct{}{
	"ISS": {}, "ISO": {}, "ISA": {}, "ISM": {}, "IGC": {}, "RCA": {},
}

// Classify maps an evidence code to its category. Unknown codes,
// including author statements and curator inferences, classify as Other.
func Classify(code string) Category {
	if _, ok := experimentalCodes[code]; ok {
		return Experimental
	}
	if _, ok := computationalCodes[code]; ok {
		return Computational
	}
	if code == "IEA" {
		return Electronic
	}
	return Other
}

// descriptions mirrors the GAF evidence code vocabulary.
var descriptions = map[string]string{
	"EXP": "Experiment",
	"IDA": "Direct Assay",
	"IPI": "Physical Interaction",
	"IMP": "Mutant Phenotype",
	"IGI": "Genetic Interaction",
	"IEP": "Expression Pattern",

	"HTP": "High Throughput Experiment",
	"HDA": "High Throughput Direct Assay",
	"HMP": "High Throughput Mutant Phenotype",
	"HGI": "High Throughput Genetic Interaction",
	"HEP": "High Throughput Expression Pattern",

	"IBA": "Biological aspect of Ancestor",
	"IBD": "Biological aspect of Descendant",
	"IKR": "Key Residues",
	"IRD": "Rapid Divergence",

	"IEA": "Electronic Annotation",

	"ISS": "Sequence or structural Similarity",
	"ISO": "Sequence Orthology",
	"ISA": "Sequence Alignment",
	"ISM": "Sequence Model",
	"IGC": "Genomic Context",
	"RCA": "Reviewed Computational Analysis",

	"TAS": "Traceable Author Statement",
	"NAS": "Non-traceable Author Statement",
	"IC":  "Inferred by Curator",
	"ND":  "No biological Data available",
}

// Describe returns the human-readable description of an evidence code.
// Unknown codes are returned unchanged.
func Describe(code string) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	return code
}
