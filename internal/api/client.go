// Package api is the typed HTTP client for the annotation server.
//
// Every call returns an explicit (value, error) pair; callers own both
// branches. Requests are rate limited so a fast typist cannot flood the
// server even if the UI-side debounce is misconfigured.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mfreitag/ontoview/internal/annot"
)

// Term is a GO term suggestion as returned by /api/search-terms.
type Term struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Namespace string `json:"namespace"` // single letter: P, F or C
}

// Gene is a gene suggestion as returned by /api/search-genes.
type Gene struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Client talks to the annotation server.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Client for the given base URL.
// A zero timeout falls back to 10 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 4),
	}
}

// SearchTerms queries /api/search-terms for the given text.
// The server returns at most 15 results in relevance order; that order is
// preserved.
func (c *Client) SearchTerms(ctx context.Context, query string) ([]Term, error) {
	var body struct {
		Results []Term `json:"results"`
	}
	if err := c.get(ctx, "/api/search-terms", url.Values{"q": {query}}, &body); err != nil {
		return nil, fmt.Errorf("search terms: %w", err)
	}
	return body.Results, nil
}

// SearchGenes queries /api/search-genes for the given text.
func (c *Client) SearchGenes(ctx context.Context, query string) ([]Gene, error) {
	var body struct {
		Results []Gene `json:"results"`
	}
	if err := c.get(ctx, "/api/search-genes", url.Values{"q": {query}}, &body); err != nil {
		return nil, fmt.Errorf("search genes: %w", err)
	}
	return body.Results, nil
}

// TopGenes returns the server's most-annotated gene symbols as a
// comma-separated string.
func (c *Client) TopGenes(ctx context.Context) (string, error) {
	var body struct {
		Genes string `json:"genes"`
	}
	if err := c.get(ctx, "/api/top-genes", nil, &body); err != nil {
		return "", fmt.Errorf("top genes: %w", err)
	}
	return body.Genes, nil
}

// Annotations fetches the annotation rows for a gene. A 404 means the
// server has no table for this gene; that maps to an empty row set, not
// an error, so pages without a table degrade quietly.
func (c *Client) Annotations(ctx context.Context, gene string) ([]annot.Row, error) {
	var body struct {
		Rows []struct {
			GoID     string `json:"go_id"`
			Name     string `json:"name"`
			Symbol   string `json:"symbol"`
			Aspect   string `json:"aspect"`
			Evidence string `json:"evidence"`
			Count    int    `json:"count"`
		} `json:"rows"`
	}
	err := c.get(ctx, "/api/annotations", url.Values{"gene": {gene}}, &body)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("annotations: %w", err)
	}

	rows := make([]annot.Row, 0, len(body.Rows))
	for _, r := range body.Rows {
		rows = append(rows, annot.Row{
			TermID:     r.GoID,
			TermName:   r.Name,
			GeneSymbol: r.Symbol,
			Aspect:     r.Aspect,
			Evidence:   r.Evidence,
			Count:      r.Count,
		})
	}
	return rows, nil
}

// StatusError reports a non-200 response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.Code, e.Body)
}

// get performs a GET with escaped query values and decodes the JSON body.
func (c *Client) get(ctx context.Context, path string, values url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	u := c.baseURL + path
	if len(values) > 0 {
		u += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ontoview/0.1 (terminal client)")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
