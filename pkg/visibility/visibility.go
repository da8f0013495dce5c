// Package visibility manages collapse state and the hidden flags it induces.
//
// A node is hidden exactly when one of its ancestors is collapsed. An edge
// is hidden when either endpoint is hidden or its source is collapsed.
// Every operation re-establishes both rules for the nodes it affects, so
// expanding a node restores precisely the visibility its subtree had before
// it was collapsed, including nested collapsed nodes.
//
// Manually toggled nodes are protected from [Manager.SetLevelThreshold]:
// an explicit user choice wins over the bulk level policy.
package visibility

import (
	"github.com/matzehuels/jsondiagram/pkg/graph"
)

// NoLevelLimit is the level threshold that collapses nothing.
const NoLevelLimit = 999

// Manager owns collapse state for one graph. It is not safe for concurrent use.
type Manager struct {
	g     *graph.Graph
	level int
}

// New creates a manager for g with no level limit. Hidden flags are
// recomputed from the current collapse state.
func New(g *graph.Graph) *Manager {
	m := &Manager{g: g, level: NoLevelLimit}
	m.Refresh()
	return m
}

// Level returns the current level threshold.
func (m *Manager) Level() int { return m.level }

// MaxDepth returns the deepest node level, the upper bound for level controls.
func (m *Manager) MaxDepth() int { return m.g.MaxDepth() }

// Toggle flips the collapsed state of id and marks it manually toggled.
// Descendants and their edges are re-evaluated; edges whose visibility is
// recomputed lose transient styling. Unknown ids are ignored.
// Toggle reports whether the node exists.
func (m *Manager) Toggle(id string) bool {
	n, ok := m.g.Node(id)
	if !ok {
		return false
	}
	n.Collapsed = !n.Collapsed
	n.ManuallyToggled = true
	m.refreshBelow(id)
	return true
}

// SetCollapsed sets the collapsed state of id without marking it manually
// toggled. Unknown ids are ignored.
func (m *Manager) SetCollapsed(id string, collapsed bool) bool {
	n, ok := m.g.Node(id)
	if !ok {
		return false
	}
	if n.Collapsed != collapsed {
		n.Collapsed = collapsed
		m.refreshBelow(id)
	}
	return true
}

// CollapseAll collapses every node that has children and marks those nodes
// manually toggled.
func (m *Manager) CollapseAll() {
	for _, n := range m.g.Nodes() {
		if n.ChildrenCount > 0 {
			n.Collapsed = true
			n.ManuallyToggled = true
		}
	}
	m.Refresh()
}

// ExpandAll expands every node and clears every manual toggle.
func (m *Manager) ExpandAll() {
	for _, n := range m.g.Nodes() {
		n.Collapsed = false
		n.ManuallyToggled = false
	}
	m.Refresh()
}

// SetLevelThreshold collapses every node deeper than level and expands the
// rest, skipping manually toggled nodes. The root has depth 1, so level 1
// shows the root and its direct children with those children collapsed.
func (m *Manager) SetLevelThreshold(level int) {
	if level < 1 {
		level = 1
	}
	m.level = level
	for _, n := range m.g.Nodes() {
		if n.ManuallyToggled {
			continue
		}
		n.Collapsed = n.Depth > level
	}
	m.Refresh()
}

// Refresh recomputes every hidden flag from the collapse state.
func (m *Manager) Refresh() {
	for _, n := range m.g.Nodes() {
		if _, has := m.g.Parent(n.ID); !has {
			n.Hidden = false
			m.refreshBelow(n.ID)
		}
	}
}

// refreshBelow recomputes hidden flags for the descendants of id and for
// every edge inside that subtree. Descendants come in pre-order, so each
// parent is settled before its children.
func (m *Manager) refreshBelow(id string) {
	desc := m.g.Descendants(id)
	for _, d := range desc {
		child, _ := m.g.Node(d)
		pid, _ := m.g.Parent(d)
		parent, _ := m.g.Node(pid)
		child.Hidden = parent.Hidden || parent.Collapsed
	}
	m.refreshEdges(id)
	for _, d := range desc {
		m.refreshEdges(d)
	}
}

// refreshEdges re-evaluates the edges leaving id.
func (m *Manager) refreshEdges(id string) {
	for _, e := range m.g.IncidentEdges(id) {
		if e.Source != id {
			continue
		}
		src, okS := m.g.Node(e.Source)
		dst, okT := m.g.Node(e.Target)
		hidden := !okS || !okT || src.Hidden || dst.Hidden || src.Collapsed
		if hidden != e.Hidden {
			e.ResetStyle()
		}
		e.Hidden = hidden
	}
}

// HiddenNodes returns the IDs of all hidden nodes in graph order.
func (m *Manager) HiddenNodes() []string {
	var out []string
	for _, n := range m.g.Nodes() {
		if n.Hidden {
			out = append(out, n.ID)
		}
	}
	return out
}

// VisibleCount returns the number of nodes that are not hidden.
func (m *Manager) VisibleCount() int {
	count := 0
	for _, n := range m.g.Nodes() {
		if !n.Hidden {
			count++
		}
	}
	return count
}
