package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, 5*time.Second), srv
}

func TestSearchTermsEscapesQuery(t *testing.T) {
	var gotQuery string
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`{"results":[{"id":"GO:0008150","name":"Biological process","namespace":"P"}]}`))
	}))
	defer srv.Close()

	terms, err := c.SearchTerms(context.Background(), "cell cycle & division")
	if err != nil {
		t.Fatalf("SearchTerms: %v", err)
	}

	if gotQuery != "cell cycle & division" {
		t.Errorf("server saw q=%q, escaping lost the raw value", gotQuery)
	}
	if len(terms) != 1 || terms[0].ID != "GO:0008150" {
		t.Errorf("terms = %+v", terms)
	}
}

func TestSearchTermsPreservesServerOrder(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[
			{"id":"GO:3","name":"c","namespace":"P"},
			{"id":"GO:1","name":"a","namespace":"F"},
			{"id":"GO:2","name":"b","namespace":"C"}]}`))
	}))
	defer srv.Close()

	terms, err := c.SearchTerms(context.Background(), "abc")
	if err != nil {
		t.Fatalf("SearchTerms: %v", err)
	}

	want := []string{"GO:3", "GO:1", "GO:2"}
	for i, id := range want {
		if terms[i].ID != id {
			t.Fatalf("order changed: got %+v", terms)
		}
	}
}

func TestSearchGenes(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search-genes" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"results":[{"symbol":"TP53","name":"Cellular tumor antigen p53"}]}`))
	}))
	defer srv.Close()

	genes, err := c.SearchGenes(context.Background(), "tp")
	if err != nil {
		t.Fatalf("SearchGenes: %v", err)
	}
	if len(genes) != 1 || genes[0].Symbol != "TP53" {
		t.Errorf("genes = %+v", genes)
	}
}

func TestTopGenes(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"genes":"TP53, BRCA1, EGFR"}`))
	}))
	defer srv.Close()

	genes, err := c.TopGenes(context.Background())
	if err != nil {
		t.Fatalf("TopGenes: %v", err)
	}
	if genes != "TP53, BRCA1, EGFR" {
		t.Errorf("genes = %q", genes)
	}
}

func TestTopGenesServerError(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := c.TopGenes(context.Background()); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestAnnotations(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("gene"); got != "TP53" {
			t.Errorf("gene = %q", got)
		}
		w.Write([]byte(`{"rows":[
			{"go_id":"GO:0008150","name":"Biological process","symbol":"TP53","aspect":"P","evidence":"IDA","count":3}]}`))
	}))
	defer srv.Close()

	rows, err := c.Annotations(context.Background(), "TP53")
	if err != nil {
		t.Fatalf("Annotations: %v", err)
	}
	if len(rows) != 1 || rows[0].TermID != "GO:0008150" || rows[0].Evidence != "IDA" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestAnnotationsNotFoundIsEmpty(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	rows, err := c.Annotations(context.Background(), "NOPE")
	if err != nil {
		t.Fatalf("404 should not be an error, got %v", err)
	}
	if rows != nil {
		t.Errorf("rows = %+v, want nil", rows)
	}
}

func TestGetMalformedJSON(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":`))
	}))
	defer srv.Close()

	if _, err := c.SearchTerms(context.Background(), "abc"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestGetContextCancelled(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.SearchTerms(ctx, "abc"); err == nil {
		t.Fatal("expected cancellation error")
	}
}
