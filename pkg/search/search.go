// Package search finds diagram nodes by label or property text and keeps a
// result cursor for stepping through matches.
//
// Matching is case-insensitive substring search over every node, hidden or
// not, in graph order. It only ever writes presentation flags
// (Highlighted, Dimmed, Focused); structural and visibility fields are left
// alone.
//
// Typing is debounced with a [Debouncer]: only the most recently scheduled
// term is ever searched.
package search

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/jsondiagram/pkg/graph"
	"github.com/matzehuels/jsondiagram/pkg/observability"
)

// Result is one matching node.
type Result struct {
	NodeID            string           `json:"id"`
	LabelMatched      bool             `json:"labelMatch"`
	MatchedProperties []graph.Property `json:"propMatches,omitempty"`
}

// Match tests n against term, ignoring case. A property matches when its
// key or its value contains the term. Empty terms match nothing.
func Match(n *graph.Node, term string) (Result, bool) {
	if n == nil || term == "" {
		return Result{}, false
	}
	needle := strings.ToLower(term)
	r := Result{
		NodeID:       n.ID,
		LabelMatched: strings.Contains(strings.ToLower(n.Label), needle),
	}
	for _, p := range n.Properties {
		if strings.Contains(strings.ToLower(p.Key), needle) ||
			strings.Contains(strings.ToLower(p.Value), needle) {
			r.MatchedProperties = append(r.MatchedProperties, p)
		}
	}
	return r, r.LabelMatched || len(r.MatchedProperties) > 0
}

// Engine holds the search state of one graph. It is not safe for concurrent use.
type Engine struct {
	g       *graph.Graph
	term    string
	results []Result
	cursor  int
}

// NewEngine creates an idle engine over g.
func NewEngine(g *graph.Graph) *Engine {
	return &Engine{g: g}
}

// Reset points the engine at a rebuilt graph and forgets the previous search.
func (e *Engine) Reset(g *graph.Graph) {
	e.g = g
	e.term = ""
	e.results = nil
	e.cursor = 0
}

// Search runs term against every node and resets the cursor to the first
// result. Matches are highlighted and all other nodes dimmed. A term that is
// empty or only whitespace clears the search instead.
func (e *Engine) Search(ctx context.Context, term string) []Result {
	if strings.TrimSpace(term) == "" || e.g == nil {
		e.Clear()
		return nil
	}

	start := time.Now()
	e.term = term
	e.results = e.results[:0]
	e.cursor = 0

	nodes := e.g.Nodes()
	for _, n := range nodes {
		n.Focused = false
		r, ok := Match(n, term)
		n.Highlighted = ok
		n.Dimmed = !ok
		if ok {
			e.results = append(e.results, r)
		}
	}

	observability.Search().OnSearch(ctx, len(nodes), len(e.results), time.Since(start))
	return e.Results()
}

// Rerun repeats the active search, e.g. after the graph was rebuilt.
func (e *Engine) Rerun(ctx context.Context) []Result {
	if !e.Active() {
		return nil
	}
	return e.Search(ctx, e.term)
}

// Clear drops the term and results and resets search-derived presentation
// on every node. Collapse and selection state are untouched.
func (e *Engine) Clear() {
	e.term = ""
	e.results = nil
	e.cursor = 0
	if e.g == nil {
		return
	}
	for _, n := range e.g.Nodes() {
		n.Highlighted = false
		n.Dimmed = false
		n.Focused = false
	}
}

// Next advances the cursor with wraparound and returns the new current
// result. It reports false when there are no results.
func (e *Engine) Next() (Result, bool) {
	n := len(e.results)
	if n == 0 {
		return Result{}, false
	}
	e.cursor = (e.cursor + 1) % n
	return e.results[e.cursor], true
}

// Prev moves the cursor back with wraparound.
func (e *Engine) Prev() (Result, bool) {
	n := len(e.results)
	if n == 0 {
		return Result{}, false
	}
	e.cursor = (e.cursor - 1 + n) % n
	return e.results[e.cursor], true
}

// Current returns the result under the cursor.
func (e *Engine) Current() (Result, bool) {
	if len(e.results) == 0 {
		return Result{}, false
	}
	return e.results[e.cursor], true
}

// Results returns a copy of the current results in graph order.
func (e *Engine) Results() []Result {
	out := make([]Result, len(e.results))
	copy(out, e.results)
	return out
}

// Cursor returns the index of the current result.
func (e *Engine) Cursor() int { return e.cursor }

// Term returns the active search term, or "".
func (e *Engine) Term() string { return e.term }

// Active reports whether a search term is in effect.
func (e *Engine) Active() bool { return e.term != "" }
