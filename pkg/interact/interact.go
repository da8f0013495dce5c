// Package interact handles pointer interaction with a diagram: single
// selection with one-hop highlighting, dragging with frame coalescing, the
// global node lock, and filtering of node changes reported by a renderer.
//
// The controller owns no timers. When [Controller.Drag] asks for a frame the
// host schedules one (a ticker, an animation frame) and calls
// [Controller.Frame]; at most one frame is outstanding at any time and drag
// events that arrive in between are dropped.
package interact

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/jsondiagram/pkg/graph"
)

// Controller is the interaction state of one diagram. It is not safe for
// concurrent use.
type Controller struct {
	g      *graph.Graph
	logger *log.Logger

	selected string
	locked   bool

	dragging     string
	framePending bool
	pendingPos   graph.Point
}

// New creates a controller for g with nodes unlocked.
func New(g *graph.Graph, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	c := &Controller{g: g, logger: logger}
	c.applyLock()
	return c
}

// Reset switches to a rebuilt graph. Selection and any drag in progress are
// forgotten; the lock carries over.
func (c *Controller) Reset(g *graph.Graph) {
	c.g = g
	c.selected = ""
	c.dragging = ""
	c.framePending = false
	c.applyLock()
}

// =============================================================================
// Selection
// =============================================================================

// Selected returns the selected node id, or "".
func (c *Controller) Selected() string { return c.selected }

// ClickNode toggles the selection of id. Selecting a node marks it and its
// one-hop neighbours as linked and highlights its incident edges; clicking
// the selected node again deselects it. Unknown ids are ignored and ClickNode
// reports false.
func (c *Controller) ClickNode(id string) bool {
	if _, ok := c.g.Node(id); !ok {
		c.logger.Debug("click on unknown node ignored", "node", id)
		return false
	}
	if c.selected == id {
		c.ClearSelection()
		return true
	}
	c.clearLinks()
	c.selected = id
	c.markLinks()
	return true
}

// ClickPane clears the selection.
func (c *Controller) ClickPane() { c.ClearSelection() }

// ClearSelection removes the selection and every highlight it caused.
func (c *Controller) ClearSelection() {
	c.selected = ""
	c.clearLinks()
}

func (c *Controller) markLinks() {
	n, ok := c.g.Node(c.selected)
	if !ok {
		c.selected = ""
		return
	}
	n.Linked = true
	for _, id := range c.g.Neighbors(c.selected) {
		if nb, ok := c.g.Node(id); ok {
			nb.Linked = true
		}
	}
	for _, e := range c.g.IncidentEdges(c.selected) {
		e.Highlighted = true
	}
}

func (c *Controller) clearLinks() {
	for _, n := range c.g.Nodes() {
		n.Linked = false
	}
	for _, e := range c.g.Edges() {
		e.Highlighted = false
	}
}

// =============================================================================
// Lock
// =============================================================================

// Locked reports whether nodes reject drag input.
func (c *Controller) Locked() bool { return c.locked }

// SetLocked sets the global node lock and updates every node's Draggable
// flag in one pass. Locking ends a drag in progress.
func (c *Controller) SetLocked(locked bool) {
	c.locked = locked
	if locked && c.dragging != "" {
		c.endDrag()
	}
	c.applyLock()
}

// ToggleLock flips the lock and returns the new state.
func (c *Controller) ToggleLock() bool {
	c.SetLocked(!c.locked)
	return c.locked
}

func (c *Controller) applyLock() {
	if c.g == nil {
		return
	}
	for _, n := range c.g.Nodes() {
		n.Draggable = !c.locked
	}
}

// =============================================================================
// Drag
// =============================================================================

// Dragging returns the id of the node being dragged, or "".
func (c *Controller) Dragging() string { return c.dragging }

// FramePending reports whether a frame has been requested and not yet run.
func (c *Controller) FramePending() bool { return c.framePending }

// DragStart begins dragging id. It reports false when nodes are locked or
// the node is unknown.
func (c *Controller) DragStart(id string) bool {
	n, ok := c.g.Node(id)
	if !ok || c.locked || !n.Draggable {
		return false
	}
	if c.dragging != "" && c.dragging != id {
		c.endDrag()
	}
	c.dragging = id
	c.framePending = false
	n.Dragging = true
	for _, e := range c.g.IncidentEdges(id) {
		e.Dragging = true
	}
	return true
}

// Drag records a pointer move of the dragged node. It returns true when the
// host must schedule a call to [Controller.Frame]. While a frame is pending
// further moves are dropped.
func (c *Controller) Drag(id string, pos graph.Point) bool {
	if id != c.dragging || c.dragging == "" {
		return false
	}
	if c.framePending {
		return false
	}
	c.framePending = true
	c.pendingPos = pos
	return true
}

// Frame applies the move accepted by the last [Controller.Drag] and clears
// the pending flag. It reports whether anything changed.
func (c *Controller) Frame() bool {
	if !c.framePending {
		return false
	}
	c.framePending = false
	n, ok := c.g.Node(c.dragging)
	if !ok {
		return false
	}
	n.Position = c.pendingPos
	for _, e := range c.g.IncidentEdges(c.dragging) {
		e.Dragging = true
	}
	return true
}

// DragStop drops the dragged node at pos and clears all transient drag
// styling in one batch.
func (c *Controller) DragStop(id string, pos graph.Point) bool {
	if id != c.dragging || c.dragging == "" {
		return false
	}
	if n, ok := c.g.Node(id); ok {
		n.Position = pos
	}
	c.endDrag()
	return true
}

func (c *Controller) endDrag() {
	c.dragging = ""
	c.framePending = false
	for _, n := range c.g.Nodes() {
		n.Dragging = false
	}
	for _, e := range c.g.Edges() {
		e.Dragging = false
	}
}
