package evidence

import "testing"

func TestClassifyExperimental(t *testing.T) {
	codes := []string{"EXP", "IDA", "IPI", "IMP", "IGI", "IEP", "HTP", "HDA", "HMP", "HGI", "HEP"}
	for _, code := range codes {
		if got := Classify(code); got != Experimental {
			t.Errorf("Classify(%q) = %v, want Experimental", code, got)
		}
	}
}

func TestClassifyComputational(t *testing.T) {
	codes := []string{"ISS", "ISO", "ISA", "ISM", "IGC", "RCA"}
	for _, code := range codes {
		if got := Classify(code); got != Computational {
			t.Errorf("Classify(%q) = %v, want Computational", code, got)
		}
	}
}

func TestClassifyElectronic(t *testing.T) {
	if got := Classify("IEA"); got != Electronic {
		t.Errorf("Classify(IEA) = %v, want Electronic", got)
	}
}

func TestClassifyUnknownIsOther(t *testing.T) {
	for _, code := range []string{"ZZZ", "", "TAS", "NAS", "IC", "ND", "iea"} {
		if got := Classify(code); got != Other {
			t.Errorf("Classify(%q) = %v, want Other", code, got)
		}
	}
}

// The partition must be total and disjoint: each known code belongs to
// exactly one of the three named families.
func TestPartitionDisjoint(t *testing.T) {
	all := map[string]Category{}

	for code := range experimentalCodes {
		all[code] = Experimental
	}
	for code := range computationalCodes {
		if prev, dup := all[code]; dup {
			t.Fatalf("code %q in both %v and Computational", code, prev)
		}
		all[code] = Computational
	}
	if prev, dup := all["IEA"]; dup {
		t.Fatalf("code IEA in both %v and Electronic", prev)
	}
	all["IEA"] = Electronic

	for code, want := range all {
		if got := Classify(code); got != want {
			t.Errorf("Classify(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestCategoryString(t *testing.T) {
	cases := map[Category]string{
		Experimental:  "Experimental",
		Computational: "Computational",
		Electronic:    "Electronic",
		Other:         "Other",
	}
	for c, want := range cases {
		if c.String() != want {
			t.Errorf("%d.String() = %q, want %q", c, c.String(), want)
		}
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe("IDA"); got != "Direct Assay" {
		t.Errorf("Describe(IDA) = %q", got)
	}
	if got := Describe("IEA"); got != "Electronic Annotation" {
		t.Errorf("Describe(IEA) = %q", got)
	}
	if got := Describe("ZZZ"); got != "ZZZ" {
		t.Errorf("Describe(ZZZ) = %q, want the code itself", got)
	}
}
