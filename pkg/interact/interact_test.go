package interact

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/jsondiagram/pkg/document"
	"github.com/matzehuels/jsondiagram/pkg/graph"
	"github.com/matzehuels/jsondiagram/pkg/tree"
)

// sample builds:
//
//	node-0 root
//	  node-1 a
//	    node-2 b
//	  node-3 c
const sample = `{"a": {"b": {"x": 1}}, "c": {"y": 2}}`

func setup(t *testing.T) (*graph.Graph, *Controller) {
	t.Helper()
	v, err := document.Parse([]byte(sample))
	require.NoError(t, err)
	g := tree.Build(v)
	return g, New(g, log.New(io.Discard))
}

func linked(g *graph.Graph) []string {
	var out []string
	for _, n := range g.Nodes() {
		if n.Linked {
			out = append(out, n.ID)
		}
	}
	return out
}

func highlightedEdges(g *graph.Graph) []string {
	var out []string
	for _, e := range g.Edges() {
		if e.Highlighted {
			out = append(out, e.ID)
		}
	}
	return out
}

func TestClickNodeHighlightsOneHop(t *testing.T) {
	g, c := setup(t)

	require.True(t, c.ClickNode("node-1"))
	assert.Equal(t, "node-1", c.Selected())
	assert.Equal(t, []string{"node-0", "node-1", "node-2"}, linked(g))
	assert.ElementsMatch(t, []string{
		graph.EdgeID("node-0", "node-1"),
		graph.EdgeID("node-1", "node-2"),
	}, highlightedEdges(g))
}

func TestClickNodeToggles(t *testing.T) {
	g, c := setup(t)

	c.ClickNode("node-1")
	c.ClickNode("node-1")
	assert.Empty(t, c.Selected())
	assert.Empty(t, linked(g))
	assert.Empty(t, highlightedEdges(g))
}

func TestClickOtherNodeMovesSelection(t *testing.T) {
	g, c := setup(t)

	c.ClickNode("node-2")
	c.ClickNode("node-3")
	assert.Equal(t, "node-3", c.Selected())
	assert.Equal(t, []string{"node-0", "node-3"}, linked(g))
	assert.Equal(t, []string{graph.EdgeID("node-0", "node-3")}, highlightedEdges(g))
}

func TestClickPaneClears(t *testing.T) {
	g, c := setup(t)

	c.ClickNode("node-0")
	c.ClickPane()
	assert.Empty(t, c.Selected())
	assert.Empty(t, linked(g))
	assert.Empty(t, highlightedEdges(g))
}

func TestClickUnknownNodeIsNoop(t *testing.T) {
	g, c := setup(t)

	c.ClickNode("node-1")
	assert.False(t, c.ClickNode("node-42"))
	assert.Equal(t, "node-1", c.Selected())
	assert.NotEmpty(t, linked(g))
}

func TestDragLifecycle(t *testing.T) {
	g, c := setup(t)
	n, _ := g.Node("node-1")

	require.True(t, c.DragStart("node-1"))
	assert.True(t, n.Dragging)
	for _, e := range g.IncidentEdges("node-1") {
		assert.True(t, e.Dragging, e.ID)
	}

	// First move asks for a frame; moves before the frame runs are dropped.
	assert.True(t, c.Drag("node-1", graph.Point{X: 10, Y: 10}))
	assert.False(t, c.Drag("node-1", graph.Point{X: 20, Y: 20}))
	assert.False(t, c.Drag("node-1", graph.Point{X: 30, Y: 30}))
	assert.True(t, c.FramePending())

	assert.True(t, c.Frame())
	assert.False(t, c.FramePending())
	assert.Equal(t, graph.Point{X: 10, Y: 10}, n.Position)
	assert.False(t, c.Frame(), "no frame without a new move")

	assert.True(t, c.Drag("node-1", graph.Point{X: 40, Y: 40}))

	require.True(t, c.DragStop("node-1", graph.Point{X: 50, Y: 60}))
	assert.Equal(t, graph.Point{X: 50, Y: 60}, n.Position)
	assert.Empty(t, c.Dragging())
	assert.False(t, c.FramePending())
	for _, node := range g.Nodes() {
		assert.False(t, node.Dragging, node.ID)
	}
	for _, e := range g.Edges() {
		assert.False(t, e.Dragging, e.ID)
	}
}

func TestDragIgnoresOtherNodes(t *testing.T) {
	_, c := setup(t)

	assert.False(t, c.Drag("node-1", graph.Point{}))
	require.True(t, c.DragStart("node-1"))
	assert.False(t, c.Drag("node-2", graph.Point{}))
	assert.False(t, c.DragStop("node-2", graph.Point{}))
	assert.False(t, c.DragStart("node-99"))
}

func TestLock(t *testing.T) {
	g, c := setup(t)
	for _, n := range g.Nodes() {
		assert.True(t, n.Draggable)
	}

	assert.True(t, c.ToggleLock())
	for _, n := range g.Nodes() {
		assert.False(t, n.Draggable, n.ID)
	}
	assert.False(t, c.DragStart("node-1"))

	c.SetLocked(false)
	assert.False(t, c.Locked())
	for _, n := range g.Nodes() {
		assert.True(t, n.Draggable, n.ID)
	}
}

func TestLockEndsDrag(t *testing.T) {
	g, c := setup(t)
	require.True(t, c.DragStart("node-2"))

	c.SetLocked(true)
	assert.Empty(t, c.Dragging())
	for _, e := range g.Edges() {
		assert.False(t, e.Dragging)
	}
}

func TestResetKeepsLock(t *testing.T) {
	_, c := setup(t)
	c.SetLocked(true)
	c.ClickNode("node-1")

	v, err := document.Parse([]byte(`[{"a":1}]`))
	require.NoError(t, err)
	g2 := tree.Build(v)
	c.Reset(g2)

	assert.Empty(t, c.Selected())
	for _, n := range g2.Nodes() {
		assert.False(t, n.Draggable)
	}
}
