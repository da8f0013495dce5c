package graph

// =============================================================================
// Node Kinds
// =============================================================================

// Kind distinguishes the two JSON container types that become nodes.
type Kind string

const (
	KindObject Kind = "object"
	KindArray  Kind = "array"
)

// DefaultLabel returns the label used for a node that has no key of its own
// (the root, or an unnamed entry).
func (k Kind) DefaultLabel() string {
	if k == KindArray {
		return "Array"
	}
	return "Object"
}

// =============================================================================
// Geometry
// =============================================================================

// Point is a position in diagram space (top-left corner of a node).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a rendered footprint in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// =============================================================================
// Node
// =============================================================================

// Property is one scalar member of an Object node. Value is the display
// text: strings unquoted, numbers as written, null as "null".
type Property struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Node is one JSON object or array in the diagram.
//
// Structural fields (ID, Kind, Label, Properties, Length, ChildrenCount,
// Depth) are fixed at construction. Collapsed, ManuallyToggled and Hidden
// belong to the visibility manager; Position and Size to the layout engine.
// The remaining flags are presentation state.
type Node struct {
	ID            string     `json:"id"`
	Kind          Kind       `json:"kind"`
	Label         string     `json:"label"`
	Properties    []Property `json:"properties,omitempty"`
	Length        int        `json:"length,omitempty"` // arrays only
	ChildrenCount int        `json:"childrenCount"`
	Depth         int        `json:"depth"` // root = 1

	Collapsed       bool `json:"collapsed"`
	ManuallyToggled bool `json:"manuallyToggled"`
	Hidden          bool `json:"hidden"`

	Position Point `json:"position"`
	Size     Size  `json:"size"`

	Highlighted bool `json:"highlighted,omitempty"` // search match
	Dimmed      bool `json:"dimmed,omitempty"`      // search active, not a match
	Focused     bool `json:"focused,omitempty"`
	Linked      bool `json:"linked,omitempty"` // selected or one hop from the selection
	Dragging    bool `json:"dragging,omitempty"`
	Draggable   bool `json:"draggable"`
}

// IsArray reports whether the node was built from a JSON array.
func (n *Node) IsArray() bool { return n.Kind == KindArray }

// IsObject reports whether the node was built from a JSON object.
func (n *Node) IsObject() bool { return n.Kind == KindObject }

// ClearPresentation resets every presentation flag except Draggable.
func (n *Node) ClearPresentation() {
	n.Highlighted = false
	n.Dimmed = false
	n.Focused = false
	n.Linked = false
	n.Dragging = false
}

// =============================================================================
// Edge
// =============================================================================

// Edge is a parent→child containment relation.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`

	Hidden      bool `json:"hidden"`
	Highlighted bool `json:"highlighted,omitempty"` // incident to the selection
	Dragging    bool `json:"dragging,omitempty"`    // an endpoint is being dragged
}

// EdgeID returns the deterministic edge id for a source/target pair.
func EdgeID(source, target string) string {
	return "edge-" + source + "-" + target
}

// NewEdge returns an edge from source to target with its id filled in.
func NewEdge(source, target string) Edge {
	return Edge{ID: EdgeID(source, target), Source: source, Target: target}
}

// ResetStyle clears transient edge styling.
func (e *Edge) ResetStyle() {
	e.Highlighted = false
	e.Dragging = false
}
