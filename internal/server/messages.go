package server

import (
	"encoding/json"

	"github.com/matzehuels/jsondiagram/pkg/diagram"
	"github.com/matzehuels/jsondiagram/pkg/graph"
	"github.com/matzehuels/jsondiagram/pkg/interact"
)

// Inbound message types. Each maps to one diagram.View operation.
const (
	MsgEdit        = "edit"
	MsgLoad        = "load"
	MsgExport      = "export"
	MsgToggle      = "toggle"
	MsgCollapseAll = "collapseAll"
	MsgExpandAll   = "expandAll"
	MsgLevel       = "level"
	MsgDirection   = "direction"
	MsgDensity     = "density"
	MsgRelayout    = "relayout"
	MsgSearch      = "search"
	MsgSearchNext  = "searchNext"
	MsgSearchPrev  = "searchPrev"
	MsgSearchClear = "searchClear"
	MsgFocus       = "focus"
	MsgNodeClick   = "nodeClick"
	MsgPaneClick   = "paneClick"
	MsgDragStart   = "dragStart"
	MsgDrag        = "drag"
	MsgDragStop    = "dragStop"
	MsgNodesChange = "nodesChange"
	MsgLock        = "lock"
)

// Outbound message types.
const (
	OutScene   = "scene"
	OutFitView = "fitView"
	OutError   = "error"
	OutExport  = "export"
)

// Inbound is a client event. Only the fields relevant to Type are set.
type Inbound struct {
	Type      string                `json:"type"`
	ID        string                `json:"id,omitempty"`
	Text      string                `json:"text,omitempty"`
	Data      json.RawMessage       `json:"data,omitempty"`
	Term      string                `json:"term,omitempty"`
	Level     int                   `json:"level,omitempty"`
	Direction string                `json:"direction,omitempty"`
	Density   string                `json:"density,omitempty"`
	Position  *graph.Point          `json:"position,omitempty"`
	Changes   []interact.NodeChange `json:"changes,omitempty"`
	Locked    *bool                 `json:"locked,omitempty"`
}

// Outbound is a server message.
type Outbound struct {
	Type     string                   `json:"type"`
	Scene    *diagram.Scene           `json:"scene,omitempty"`
	Viewport *diagram.ViewportRequest `json:"viewport,omitempty"`
	Error    *ErrorBody               `json:"error,omitempty"`
	Export   *ExportBody              `json:"export,omitempty"`
}

// ExportBody carries the exported document.
type ExportBody struct {
	Name string `json:"name"`
	Text string `json:"text"`
}
