package layout

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/jsondiagram/pkg/cache"
	"github.com/matzehuels/jsondiagram/pkg/graph"
)

func TestToDOT(t *testing.T) {
	req := Request{
		Direction: TopToBottom,
		Spacing:   Spacing{NodeSep: 36, RankSep: 72},
		Boxes:     []Box{{ID: "node-0", Width: 144, Height: 72}, {ID: "node-\"1\"", Width: 72, Height: 36}},
		Links:     []Link{{Source: "node-0", Target: "node-\"1\""}, {Source: "node-0", Target: "gone"}},
	}
	dot, names := ToDOT(req)

	for _, want := range []string{
		"rankdir=TB",
		"nodesep=0.5000",
		"ranksep=1.0000",
		"fixedsize=true",
		"n0 [width=2.0000, height=1.0000];",
		"n1 [width=1.0000, height=0.5000];",
		"n0 -> n1;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Count(dot, "->") != 1 {
		t.Errorf("links to unknown boxes must be skipped:\n%s", dot)
	}
	if names["n1"] != "node-\"1\"" {
		t.Errorf("names[n1] = %q", names["n1"])
	}
}

func TestParsePlain(t *testing.T) {
	out := strings.Join([]string{
		`graph 1 4.5 2`,
		`node n0 0.5 1 1 0.5 "" solid box black lightgrey`,
		`node n1 3 1.5 1 0.5 "a \"quoted\" label" solid box black lightgrey`,
		`node n9 3 1.5 1 0.5 "" solid box black lightgrey`,
		`edge n0 n1 4 1 1 2 1 2 1.5 3 1.5 solid black`,
		`stop`,
	}, "\n")
	names := map[string]string{"n0": "node-0", "n1": "node-1"}

	p, err := parsePlain([]byte(out), names, 20)
	if err != nil {
		t.Fatalf("parsePlain: %v", err)
	}
	if got, want := p["node-0"], (graph.Point{X: 56, Y: 92}); got != want {
		t.Errorf("node-0 = %v, want %v", got, want)
	}
	if got, want := p["node-1"], (graph.Point{X: 236, Y: 56}); got != want {
		t.Errorf("node-1 = %v, want %v", got, want)
	}
	if len(p) != 2 {
		t.Errorf("unknown names must be ignored: %v", p)
	}
}

func TestParsePlainErrors(t *testing.T) {
	for _, out := range []string{
		"",
		"node n0 1 1 1 1\n",
		"graph 1 x\n",
		"graph 1 2 nope\n",
	} {
		if _, err := parsePlain([]byte(out), map[string]string{"n0": "a"}, 0); err == nil {
			t.Errorf("parsePlain(%q) should fail", out)
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{`node n0 1 2`, []string{"node", "n0", "1", "2"}},
		{`node n0 "" solid`, []string{"node", "n0", "", "solid"}},
		{`node "a b" "c \"d\""  x`, []string{"node", "a b", `c "d"`, "x"}},
		{"  ", nil},
	}
	for _, tt := range tests {
		if got := tokenize(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("tokenize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGraphvizEngine(t *testing.T) {
	if testing.Short() {
		t.Skip("runs Graphviz")
	}
	req := Request{
		Direction: LeftToRight,
		Spacing:   ComputeSpacing(3, LeftToRight, Medium),
		Margin:    Margin,
		Boxes: []Box{
			{ID: "node-0", Width: 225, Height: 65},
			{ID: "node-1", Width: 225, Height: 85},
			{ID: "node-2", Width: 225, Height: 87},
		},
		Links: []Link{{Source: "node-0", Target: "node-1"}, {Source: "node-1", Target: "node-2"}},
	}

	p, err := NewGraphvizEngine().Place(context.Background(), req)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if len(p) != 3 {
		t.Fatalf("placed %d boxes, want 3", len(p))
	}
	// Left to right: every child sits right of its parent.
	if !(p["node-0"].X < p["node-1"].X && p["node-1"].X < p["node-2"].X) {
		t.Errorf("ranks not ordered left to right: %v", p)
	}
	if p["node-0"].X < Margin {
		t.Errorf("margin not applied: %v", p["node-0"])
	}
}

func TestCachedEngine(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	inner := &gridEngine{}
	eng := NewCachedEngine(inner, c, nil, time.Hour, quiet)

	req := Request{Direction: LeftToRight, Boxes: []Box{{ID: "a", Width: 10, Height: 10}}}
	first, err := eng.Place(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := eng.Place(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Errorf("inner engine called %d times, want 1", inner.calls)
	}
	if first["a"] != second["a"] {
		t.Errorf("cached placement %v differs from %v", second["a"], first["a"])
	}

	req.Direction = TopToBottom
	if _, err := eng.Place(ctx, req); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("different request must miss: calls = %d", inner.calls)
	}
	if eng.Name() != "grid" {
		t.Errorf("Name = %q, want grid", eng.Name())
	}
}

func TestCachedEngineWithNullCache(t *testing.T) {
	inner := &gridEngine{}
	eng := NewCachedEngine(inner, cache.NewNullCache(), nil, 0, quiet)
	req := Request{Boxes: []Box{{ID: "a", Width: 1, Height: 1}}}
	eng.Place(context.Background(), req)
	eng.Place(context.Background(), req)
	if inner.calls != 2 {
		t.Errorf("calls = %d, want 2", inner.calls)
	}
}
