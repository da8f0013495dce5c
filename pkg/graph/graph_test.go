package graph

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// fixture builds:
//
//	node-0
//	├── node-1
//	│   └── node-2
//	└── node-3
func fixture(t *testing.T) *Graph {
	t.Helper()
	g := New()
	for i, n := range []Node{
		{ID: "node-0", Kind: KindObject, Label: "Object", Depth: 1},
		{ID: "node-1", Kind: KindArray, Label: "items", Depth: 2, Length: 1},
		{ID: "node-2", Kind: KindObject, Label: "0", Depth: 3},
		{ID: "node-3", Kind: KindObject, Label: "meta", Depth: 2},
	} {
		if _, err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%d): %v", i, err)
		}
	}
	for _, e := range []Edge{
		NewEdge("node-0", "node-1"),
		NewEdge("node-1", "node-2"),
		NewEdge("node-0", "node-3"),
	} {
		if _, err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%s): %v", e.ID, err)
		}
	}
	return g
}

func TestAddNodeErrors(t *testing.T) {
	g := New()
	if _, err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("empty id: err = %v, want %v", err, ErrInvalidNodeID)
	}
	if _, err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if _, err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate: err = %v, want %v", err, ErrDuplicateNodeID)
	}
}

func TestAddEdgeErrors(t *testing.T) {
	tests := []struct {
		name string
		edge Edge
		want error
	}{
		{"UnknownSource", NewEdge("x", "node-1"), ErrUnknownSourceNode},
		{"UnknownTarget", NewEdge("node-0", "x"), ErrUnknownTargetNode},
		{"SelfLoop", NewEdge("node-3", "node-3"), ErrSelfLoop},
		{"SecondParent", NewEdge("node-3", "node-2"), ErrMultipleParents},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := fixture(t)
			if _, err := g.AddEdge(tt.edge); !errors.Is(err, tt.want) {
				t.Errorf("AddEdge() err = %v, want %v", err, tt.want)
			}
			if g.EdgeCount() != 3 {
				t.Errorf("EdgeCount = %d, want 3", g.EdgeCount())
			}
		})
	}
}

func TestEdgeID(t *testing.T) {
	if got := EdgeID("node-0", "node-1"); got != "edge-node-0-node-1" {
		t.Errorf("EdgeID = %q, want edge-node-0-node-1", got)
	}
	g := fixture(t)
	if _, ok := g.Edge("edge-node-1-node-2"); !ok {
		t.Error("edge-node-1-node-2 not indexed")
	}
}

func TestAdjacency(t *testing.T) {
	g := fixture(t)

	if got := g.Children("node-0"); !slices.Equal(got, []string{"node-1", "node-3"}) {
		t.Errorf("Children(node-0) = %v", got)
	}
	if p, ok := g.Parent("node-2"); !ok || p != "node-1" {
		t.Errorf("Parent(node-2) = %q, %v", p, ok)
	}
	if _, ok := g.Parent("node-0"); ok {
		t.Error("root must not have a parent")
	}
	if got := g.Neighbors("node-1"); !slices.Equal(got, []string{"node-0", "node-2"}) {
		t.Errorf("Neighbors(node-1) = %v", got)
	}
	if got := len(g.IncidentEdges("node-1")); got != 2 {
		t.Errorf("IncidentEdges(node-1) = %d, want 2", got)
	}
	if got := g.Ancestors("node-2"); !slices.Equal(got, []string{"node-1", "node-0"}) {
		t.Errorf("Ancestors(node-2) = %v", got)
	}
	if got := g.Root().ID; got != "node-0" {
		t.Errorf("Root = %s, want node-0", got)
	}
	if got := g.MaxDepth(); got != 3 {
		t.Errorf("MaxDepth = %d, want 3", got)
	}
}

func TestDescendants(t *testing.T) {
	g := fixture(t)

	tests := []struct {
		id   string
		want []string
	}{
		{"node-0", []string{"node-1", "node-2", "node-3"}},
		{"node-1", []string{"node-2"}},
		{"node-2", nil},
		{"missing", nil},
	}
	for _, tt := range tests {
		if got := g.Descendants(tt.id); !slices.Equal(got, tt.want) {
			t.Errorf("Descendants(%s) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := New().Validate(); err != nil {
		t.Errorf("empty graph: %v", err)
	}
	if err := fixture(t).Validate(); err != nil {
		t.Errorf("fixture: %v", err)
	}

	forest := fixture(t)
	forest.AddNode(Node{ID: "orphan"})
	if err := forest.Validate(); !errors.Is(err, ErrNoSingleRoot) {
		t.Errorf("forest: err = %v, want %v", err, ErrNoSingleRoot)
	}

	cyclic := fixture(t)
	cyclic.AddNode(Node{ID: "a"})
	cyclic.AddNode(Node{ID: "b"})
	cyclic.AddEdge(NewEdge("a", "b"))
	cyclic.AddEdge(NewEdge("b", "a"))
	if err := cyclic.Validate(); !errors.Is(err, ErrUnreachableNode) {
		t.Errorf("cycle: err = %v, want %v", err, ErrUnreachableNode)
	}
}

func TestSanitize(t *testing.T) {
	g := fixture(t)
	stale := &Edge{ID: EdgeID("node-3", "node-9"), Source: "node-3", Target: "node-9"}
	edges := append(slices.Clone(g.Edges()), stale, nil)

	kept, dropped := Sanitize(g.Nodes(), edges)
	if len(kept) != 3 {
		t.Errorf("kept = %d, want 3", len(kept))
	}
	if len(dropped) != 1 || dropped[0] != stale {
		t.Errorf("dropped = %v, want [%s]", dropped, stale.ID)
	}
}

func TestGraphRoundTrip(t *testing.T) {
	g := fixture(t)
	n, _ := g.Node("node-0")
	n.Properties = []Property{{Key: "name", Value: "Apple"}}
	n.Collapsed = true

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	for _, want := range []string{`"childrenCount"`, `"manuallyToggled"`, `"source": "node-0"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("output missing %s", want)
		}
	}

	back, err := ReadGraph(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	if back.NodeCount() != 4 || back.EdgeCount() != 3 {
		t.Errorf("round trip = %d nodes %d edges, want 4/3", back.NodeCount(), back.EdgeCount())
	}
	root, _ := back.Node("node-0")
	if !root.Collapsed || root.Properties[0].Value != "Apple" {
		t.Errorf("root = %+v", root)
	}
}

func TestWriteGraphFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteGraphFile(fixture(t), path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "{\n  \"nodes\"") {
		t.Errorf("unexpected file content: %.40s", data)
	}
}

func TestEmptyGraphSerializesArrays(t *testing.T) {
	data, err := MarshalGraph(New())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"nodes": []`) || !strings.Contains(string(data), `"edges": []`) {
		t.Errorf("empty graph = %s", data)
	}
}

func TestClearPresentation(t *testing.T) {
	n := Node{Highlighted: true, Dimmed: true, Focused: true, Linked: true, Dragging: true, Draggable: true}
	n.ClearPresentation()
	if n.Highlighted || n.Dimmed || n.Focused || n.Linked || n.Dragging {
		t.Errorf("flags not cleared: %+v", n)
	}
	if !n.Draggable {
		t.Error("Draggable must survive ClearPresentation")
	}
}
