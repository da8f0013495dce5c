package diagram

import (
	"github.com/matzehuels/jsondiagram/pkg/graph"
	"github.com/matzehuels/jsondiagram/pkg/layout"
	"github.com/matzehuels/jsondiagram/pkg/search"
)

// SearchState is the search part of a [Scene].
type SearchState struct {
	Term    string          `json:"term"`
	Results []search.Result `json:"results"`
	Cursor  int             `json:"cursor"`
	Pending bool            `json:"pending"`
}

// Problem is an editor validation error shown next to the text.
type Problem struct {
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// Scene is a snapshot of everything a renderer draws. Hidden nodes and
// edges are included with their hidden flag set.
type Scene struct {
	Version   uint64           `json:"version"`
	Direction layout.Direction `json:"direction"`
	Density   layout.Density   `json:"density"`
	Level     int              `json:"level"`
	MaxDepth  int              `json:"maxDepth"`
	Locked    bool             `json:"locked"`
	Selected  string           `json:"selected,omitempty"`
	Focused   string           `json:"focused,omitempty"`
	Search    SearchState      `json:"search"`
	Problem   *Problem         `json:"problem,omitempty"`
	Nodes     []graph.Node     `json:"nodes"`
	Edges     []graph.Edge     `json:"edges"`
}

// Scene copies the current state. The snapshot stays valid after further
// mutations of the view.
func (v *View) Scene() Scene {
	s := Scene{
		Version:   v.version,
		Direction: v.direction,
		Density:   v.density,
		Level:     v.vis.Level(),
		MaxDepth:  v.vis.MaxDepth(),
		Locked:    v.ctrl.Locked(),
		Selected:  v.ctrl.Selected(),
		Focused:   v.focused,
		Search: SearchState{
			Term:    v.search.Term(),
			Results: v.search.Results(),
			Cursor:  v.search.Cursor(),
			Pending: v.debounce.Pending(),
		},
		Nodes: make([]graph.Node, 0, v.g.NodeCount()),
		Edges: make([]graph.Edge, 0, v.g.EdgeCount()),
	}
	if msg, line := v.editor.Problem(); msg != "" {
		s.Problem = &Problem{Message: msg, Line: line}
	}
	for _, n := range v.g.Nodes() {
		s.Nodes = append(s.Nodes, *n)
	}
	for _, e := range v.g.Edges() {
		s.Edges = append(s.Edges, *e)
	}
	return s
}

// VisibleNodes returns the nodes of s that are not hidden.
func (s Scene) VisibleNodes() []graph.Node {
	var out []graph.Node
	for _, n := range s.Nodes {
		if !n.Hidden {
			out = append(out, n)
		}
	}
	return out
}

// VisibleEdges returns the edges of s that are not hidden.
func (s Scene) VisibleEdges() []graph.Edge {
	var out []graph.Edge
	for _, e := range s.Edges {
		if !e.Hidden {
			out = append(out, e)
		}
	}
	return out
}
