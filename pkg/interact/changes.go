package interact

import (
	"github.com/matzehuels/jsondiagram/pkg/graph"
)

// ChangeType names a node change reported by a rendering surface.
type ChangeType string

const (
	ChangePosition   ChangeType = "position"
	ChangeDimensions ChangeType = "dimensions"
	ChangeSelect     ChangeType = "select"
	ChangeRemove     ChangeType = "remove"
	ChangeAdd        ChangeType = "add"
)

// NodeChange is one renderer-side change to a node.
type NodeChange struct {
	Type       ChangeType   `json:"type"`
	ID         string       `json:"id"`
	Position   *graph.Point `json:"position,omitempty"`
	Dimensions *graph.Size  `json:"dimensions,omitempty"`
	Selected   *bool        `json:"selected,omitempty"`
}

// ApplyNodeChanges applies the acceptable changes and returns them.
//
// Adds and removes are always rejected because nodes are derived from the
// document. While a node is dragged only position changes pass. Position
// changes are also rejected while nodes are locked. Select changes are
// accepted but carry no state; selection follows [Controller.ClickNode].
// Changes for unknown nodes are dropped.
func (c *Controller) ApplyNodeChanges(changes []NodeChange) []NodeChange {
	var applied []NodeChange
	for _, ch := range changes {
		if !c.accepts(ch) {
			continue
		}
		n, ok := c.g.Node(ch.ID)
		if !ok {
			continue
		}
		switch ch.Type {
		case ChangePosition:
			if ch.Position == nil {
				continue
			}
			n.Position = *ch.Position
		case ChangeDimensions:
			if ch.Dimensions == nil {
				continue
			}
			n.Size = *ch.Dimensions
		}
		applied = append(applied, ch)
	}
	if dropped := len(changes) - len(applied); dropped > 0 {
		c.logger.Debug("node changes filtered", "received", len(changes), "dropped", dropped)
	}
	return applied
}

func (c *Controller) accepts(ch NodeChange) bool {
	switch ch.Type {
	case ChangeAdd, ChangeRemove:
		return false
	case ChangePosition:
		return !c.locked
	case ChangeDimensions, ChangeSelect:
		return c.dragging == ""
	default:
		return false
	}
}
