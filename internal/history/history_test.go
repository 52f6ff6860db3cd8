package history

import (
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)

	if err := s.Record(KindTerm, "GO:0008150", "GO:0008150 — biological_process"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Record(KindTerm, "GO:0016301", "GO:0016301 — kinase activity"); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := s.Recent(KindTerm, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// most recent first
	if entries[0].ID != "GO:0016301" {
		t.Errorf("entries[0].ID = %q, want GO:0016301", entries[0].ID)
	}
}

func TestRecordRepeatBumpsUses(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 3; i++ {
		if err := s.Record(KindGene, "TP53", "TP53"); err != nil {
			t.Fatalf("record #%d: %v", i, err)
		}
	}

	entries, err := s.Recent(KindGene, 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1 (upsert, not duplicate rows)", len(entries))
	}
	if entries[0].Uses != 3 {
		t.Errorf("Uses = %d, want 3", entries[0].Uses)
	}
}

func TestRecentSeparatesKinds(t *testing.T) {
	s := openTestStore(t)

	if err := s.Record(KindTerm, "GO:0008150", "biological_process"); err != nil {
		t.Fatalf("record term: %v", err)
	}
	if err := s.Record(KindGene, "TP53", "TP53"); err != nil {
		t.Fatalf("record gene: %v", err)
	}

	terms, err := s.Recent(KindTerm, 10)
	if err != nil {
		t.Fatalf("recent terms: %v", err)
	}
	if len(terms) != 1 || terms[0].ID != "GO:0008150" {
		t.Errorf("term recents = %+v", terms)
	}

	genes, err := s.Recent(KindGene, 10)
	if err != nil {
		t.Fatalf("recent genes: %v", err)
	}
	if len(genes) != 1 || genes[0].ID != "TP53" {
		t.Errorf("gene recents = %+v", genes)
	}
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)

	for _, id := range []string{"A", "B", "C", "D", "E"} {
		if err := s.Record(KindGene, id, id); err != nil {
			t.Fatalf("record %s: %v", id, err)
		}
	}

	entries, err := s.Recent(KindGene, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("got %d entries, want 3", len(entries))
	}
}

func TestRecordEmptyIDRejected(t *testing.T) {
	s := openTestStore(t)

	if err := s.Record(KindTerm, "", "label"); err == nil {
		t.Error("empty id should be rejected")
	}
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)

	if err := s.Record(KindTerm, "GO:0008150", "biological_process"); err != nil {
		t.Fatalf("record: %v", err)
	}

	// nothing is older than an hour
	n, err := s.Prune(time.Hour)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 0 {
		t.Errorf("pruned %d, want 0", n)
	}

	// everything is older than a negative-window cutoff in the future
	n, err = s.Prune(-time.Hour)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d, want 1", n)
	}
}
