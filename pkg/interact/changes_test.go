package interact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/jsondiagram/pkg/graph"
)

func pos(x, y float64) *graph.Point { return &graph.Point{X: x, Y: y} }

func TestApplyNodeChangesRejectsStructural(t *testing.T) {
	g, c := setup(t)

	applied := c.ApplyNodeChanges([]NodeChange{
		{Type: ChangeAdd, ID: "node-9"},
		{Type: ChangeRemove, ID: "node-1"},
	})
	assert.Empty(t, applied)
	assert.Equal(t, 4, g.NodeCount())
}

func TestApplyNodeChangesIdle(t *testing.T) {
	g, c := setup(t)
	yes := true

	applied := c.ApplyNodeChanges([]NodeChange{
		{Type: ChangePosition, ID: "node-1", Position: pos(5, 6)},
		{Type: ChangeDimensions, ID: "node-1", Dimensions: &graph.Size{Width: 300, Height: 90}},
		{Type: ChangeSelect, ID: "node-2", Selected: &yes},
		{Type: ChangePosition, ID: "node-77", Position: pos(1, 1)},
		{Type: ChangePosition, ID: "node-2"},
		{Type: "unknown", ID: "node-2"},
	})
	require.Len(t, applied, 3)

	n, _ := g.Node("node-1")
	assert.Equal(t, graph.Point{X: 5, Y: 6}, n.Position)
	assert.Equal(t, graph.Size{Width: 300, Height: 90}, n.Size)
}

func TestApplyNodeChangesDuringDrag(t *testing.T) {
	g, c := setup(t)
	require.True(t, c.DragStart("node-1"))
	n, _ := g.Node("node-1")
	before := n.Size

	applied := c.ApplyNodeChanges([]NodeChange{
		{Type: ChangeDimensions, ID: "node-1", Dimensions: &graph.Size{Width: 1, Height: 1}},
		{Type: ChangePosition, ID: "node-1", Position: pos(7, 8)},
		{Type: ChangeSelect, ID: "node-1"},
	})
	require.Len(t, applied, 1)
	assert.Equal(t, ChangePosition, applied[0].Type)
	assert.Equal(t, graph.Point{X: 7, Y: 8}, n.Position)
	assert.Equal(t, before, n.Size)
}

func TestApplyNodeChangesLocked(t *testing.T) {
	g, c := setup(t)
	c.SetLocked(true)

	applied := c.ApplyNodeChanges([]NodeChange{
		{Type: ChangePosition, ID: "node-1", Position: pos(7, 8)},
	})
	assert.Empty(t, applied)
	n, _ := g.Node("node-1")
	assert.Equal(t, graph.Point{}, n.Position)
}
