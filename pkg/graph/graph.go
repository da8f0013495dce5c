package graph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the source
	// node does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the target
	// node does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrMultipleParents is returned by [Graph.AddEdge] when the target
	// already has a parent. Containment is a tree.
	ErrMultipleParents = errors.New("node already has a parent")

	// ErrSelfLoop is returned by [Graph.AddEdge] for an edge from a node to itself.
	ErrSelfLoop = errors.New("edge connects a node to itself")

	// ErrNoSingleRoot is returned by [Graph.Validate] when a non-empty graph
	// does not have exactly one node without a parent.
	ErrNoSingleRoot = errors.New("graph must have exactly one root")

	// ErrUnreachableNode is returned by [Graph.Validate] when a node cannot
	// be reached from the root, which means the edges contain a cycle.
	ErrUnreachableNode = errors.New("node unreachable from root")
)

// Graph is the node/edge set of one diagram together with a parent/children
// index built once at construction.
//
// Nodes and edges keep insertion order, which for built graphs is pre-order
// document order. Returned node and edge pointers refer to the graph's own
// values, so callers mutate presentation state in place.
//
// The zero value is not usable - use [New]. Graph is not safe for concurrent use.
type Graph struct {
	nodes    []*Node
	edges    []*Edge
	byID     map[string]*Node
	edgeByID map[string]*Edge
	children map[string][]string
	parent   map[string]string
	incident map[string][]*Edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		byID:     make(map[string]*Node),
		edgeByID: make(map[string]*Edge),
		children: make(map[string][]string),
		parent:   make(map[string]string),
		incident: make(map[string][]*Edge),
	}
}

// AddNode adds a copy of n and returns the stored node.
func (g *Graph) AddNode(n Node) (*Node, error) {
	if n.ID == "" {
		return nil, ErrInvalidNodeID
	}
	if _, exists := g.byID[n.ID]; exists {
		return nil, ErrDuplicateNodeID
	}
	node := &n
	g.nodes = append(g.nodes, node)
	g.byID[node.ID] = node
	return node, nil
}

// AddEdge adds a parent→child edge between two existing nodes. The edge ID
// is derived from its endpoints when empty.
func (g *Graph) AddEdge(e Edge) (*Edge, error) {
	if _, ok := g.byID[e.Source]; !ok {
		return nil, ErrUnknownSourceNode
	}
	if _, ok := g.byID[e.Target]; !ok {
		return nil, ErrUnknownTargetNode
	}
	if e.Source == e.Target {
		return nil, ErrSelfLoop
	}
	if _, has := g.parent[e.Target]; has {
		return nil, ErrMultipleParents
	}
	if e.ID == "" {
		e.ID = EdgeID(e.Source, e.Target)
	}
	edge := &e
	g.edges = append(g.edges, edge)
	g.edgeByID[edge.ID] = edge
	g.children[e.Source] = append(g.children[e.Source], e.Target)
	g.parent[e.Target] = e.Source
	g.incident[e.Source] = append(g.incident[e.Source], edge)
	g.incident[e.Target] = append(g.incident[e.Target], edge)
	return edge, nil
}

// Nodes returns all nodes in insertion order. The slice is shared; do not
// modify it, but the nodes themselves may be mutated.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Edges returns all edges in insertion order. The slice is shared; do not
// modify it, but the edges themselves may be mutated.
func (g *Graph) Edges() []*Edge { return g.edges }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the node with the given ID and true, or nil and false.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Edge returns the edge with the given ID and true, or nil and false.
func (g *Graph) Edge(id string) (*Edge, bool) {
	e, ok := g.edgeByID[id]
	return e, ok
}

// Children returns the IDs of the direct children of id in document order.
func (g *Graph) Children(id string) []string { return g.children[id] }

// Parent returns the parent of id, or "" and false for the root or an
// unknown node.
func (g *Graph) Parent(id string) (string, bool) {
	p, ok := g.parent[id]
	return p, ok
}

// IncidentEdges returns every edge with id as source or target.
func (g *Graph) IncidentEdges(id string) []*Edge { return g.incident[id] }

// Neighbors returns the nodes one hop from id: its parent (if any) followed
// by its children.
func (g *Graph) Neighbors(id string) []string {
	var out []string
	if p, ok := g.parent[id]; ok {
		out = append(out, p)
	}
	return append(out, g.children[id]...)
}

// Root returns the node without a parent, or nil for an empty graph.
// For graphs that fail [Graph.Validate] the first parentless node is returned.
func (g *Graph) Root() *Node {
	for _, n := range g.nodes {
		if _, has := g.parent[n.ID]; !has {
			return n
		}
	}
	return nil
}

// Descendants returns the transitive descendants of id (excluding id) in
// pre-order. Each node is visited at most once.
func (g *Graph) Descendants(id string) []string {
	if _, ok := g.byID[id]; !ok {
		return nil
	}
	var out []string
	visited := map[string]bool{id: true}
	stack := slices.Clone(g.children[id])
	slices.Reverse(stack)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		out = append(out, cur)
		kids := g.children[cur]
		for i := len(kids) - 1; i >= 0; i-- {
			if !visited[kids[i]] {
				stack = append(stack, kids[i])
			}
		}
	}
	return out
}

// Ancestors returns the chain of parents of id, nearest first.
func (g *Graph) Ancestors(id string) []string {
	var out []string
	seen := map[string]bool{id: true}
	for p, ok := g.parent[id]; ok && !seen[p]; p, ok = g.parent[p] {
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// MaxDepth returns the largest node depth, or 0 for an empty graph.
func (g *Graph) MaxDepth() int {
	maxDepth := 0
	for _, n := range g.nodes {
		maxDepth = max(maxDepth, n.Depth)
	}
	return maxDepth
}

// Validate checks the containment-tree invariant: a non-empty graph has
// exactly one root and every other node is reachable from it through
// exactly one incoming edge. Referential integrity and single parents are
// enforced by [Graph.AddEdge], so only the root and reachability remain.
func (g *Graph) Validate() error {
	if len(g.nodes) == 0 {
		return nil
	}
	roots := 0
	for _, n := range g.nodes {
		if _, has := g.parent[n.ID]; !has {
			roots++
		}
	}
	if roots != 1 {
		return ErrNoSingleRoot
	}
	if reached := len(g.Descendants(g.Root().ID)) + 1; reached != len(g.nodes) {
		return ErrUnreachableNode
	}
	return nil
}

// NodeIDs extracts the ID from each node in a slice.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

// Sanitize splits edges into those whose endpoints both appear in nodes and
// the dangling rest. Order is preserved.
func Sanitize(nodes []*Node, edges []*Edge) (kept, dropped []*Edge) {
	present := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if n != nil {
			present[n.ID] = struct{}{}
		}
	}
	kept = make([]*Edge, 0, len(edges))
	for _, e := range edges {
		if e == nil {
			continue
		}
		_, okS := present[e.Source]
		_, okT := present[e.Target]
		if okS && okT {
			kept = append(kept, e)
		} else {
			dropped = append(dropped, e)
		}
	}
	return kept, dropped
}
