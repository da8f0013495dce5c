package layout

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jsondiagram/pkg/graph"
	"github.com/matzehuels/jsondiagram/pkg/observability"
)

// =============================================================================
// Engine Contract
// =============================================================================

// Box is a node footprint handed to an [Engine].
type Box struct {
	ID     string  `json:"id"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Link is a parent→child relation handed to an [Engine].
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Request is everything an engine needs to place a diagram.
type Request struct {
	Direction Direction `json:"direction"`
	Spacing   Spacing   `json:"spacing"`
	Margin    float64   `json:"margin"`
	Boxes     []Box     `json:"boxes"`
	Links     []Link    `json:"links"`
}

// Placement maps box IDs to the center of the placed box, in pixels.
// Boxes the engine could not place are absent.
type Placement map[string]graph.Point

// Engine is a hierarchical layout algorithm.
type Engine interface {
	// Name identifies the engine in cache keys and logs.
	Name() string

	// Place assigns a center point to each box.
	Place(ctx context.Context, req Request) (Placement, error)
}

// =============================================================================
// Layout
// =============================================================================

// Options configures [Layout].
type Options struct {
	Direction Direction
	Density   Density
	Engine    Engine      // nil uses a GraphvizEngine
	Logger    *log.Logger // nil uses log.Default()
}

// Result describes one layout run.
type Result struct {
	Nodes     []*graph.Node // the positioned nodes
	Edges     []*graph.Edge // edges with both endpoints present
	Dropped   []*graph.Edge // edges removed by sanitization
	Fallbacks []string      // nodes that kept a fallback size or position
	Err       error         // engine failure; positions were left untouched
}

// Layout sizes and positions nodes in place.
//
// Edges referencing missing nodes are dropped before anything else happens.
// Each node's size is re-estimated for the density; a node whose size cannot
// be estimated gets a 180×50 fallback. The engine's center points are
// translated to top-left corners using the node's own size, so repeated
// calls on unchanged content are idempotent. A node the engine did not
// place keeps its previous position, and when the engine fails entirely all
// positions are kept and the failure is reported in Result.Err.
//
// Layout never touches collapse, hidden, or presentation state.
func Layout(ctx context.Context, nodes []*graph.Node, edges []*graph.Edge, opts Options) Result {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	engine := opts.Engine
	if engine == nil {
		engine = NewGraphvizEngine()
	}
	dir := opts.Direction
	if dir == "" {
		dir = DefaultDirection
	}

	safe := make([]*graph.Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil && n.ID != "" {
			safe = append(safe, n)
		}
	}
	kept, dropped := graph.Sanitize(safe, edges)
	for _, e := range dropped {
		logger.Debug("dropping dangling edge", "edge", e.ID, "source", e.Source, "target", e.Target)
	}

	res := Result{Nodes: safe, Edges: kept, Dropped: dropped}
	if len(safe) == 0 {
		return res
	}

	req := Request{
		Direction: dir,
		Spacing:   ComputeSpacing(len(safe), dir, opts.Density),
		Margin:    Margin,
		Boxes:     make([]Box, len(safe)),
		Links:     make([]Link, len(kept)),
	}
	fallback := make(map[string]bool)
	for i, n := range safe {
		size, err := estimate(n, opts.Density)
		if err != nil {
			logger.Warn("size estimation failed, using fallback", "node", n.ID, "error", err)
			observability.Layout().OnLayoutFallback(ctx, n.ID, "size")
			fallback[n.ID] = true
			n.Size = graph.Size{Width: FallbackWidth, Height: FallbackHeight}
			req.Boxes[i] = Box{ID: n.ID, Width: FallbackWidth, Height: FallbackHeight}
			continue
		}
		n.Size = size
		req.Boxes[i] = Box{ID: n.ID, Width: size.Width + SafetyMargin, Height: size.Height + SafetyMargin}
	}
	for i, e := range kept {
		req.Links[i] = Link{Source: e.Source, Target: e.Target}
	}

	observability.Layout().OnLayoutStart(ctx, engine.Name(), len(safe))
	start := time.Now()
	placement, err := engine.Place(ctx, req)
	observability.Layout().OnLayoutComplete(ctx, engine.Name(), time.Since(start), err)
	if err != nil {
		logger.Warn("layout failed, keeping previous positions", "engine", engine.Name(), "error", err)
		res.Err = err
		return res
	}

	for _, n := range safe {
		c, ok := placement[n.ID]
		if !ok || !finite(c.X) || !finite(c.Y) {
			logger.Warn("no position computed, keeping previous", "node", n.ID)
			observability.Layout().OnLayoutFallback(ctx, n.ID, "position")
			fallback[n.ID] = true
			continue
		}
		n.Position = graph.Point{
			X: c.X - n.Size.Width/2,
			Y: c.Y - n.Size.Height/2,
		}
	}

	for _, n := range safe {
		if fallback[n.ID] {
			res.Fallbacks = append(res.Fallbacks, n.ID)
		}
	}
	logger.Debug("layout complete", "engine", engine.Name(), "nodes", len(safe), "edges", len(kept),
		"fallbacks", len(res.Fallbacks), "took", time.Since(start))
	return res
}

// estimate wraps EstimateSize so that a panic or a non-finite result is
// reported as an error for that node alone.
func estimate(n *graph.Node, d Density) (size graph.Size, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("estimate size: %v", r)
		}
	}()
	size = EstimateSize(n, d)
	if !finite(size.Width) || !finite(size.Height) || size.Width <= 0 || size.Height <= 0 {
		return graph.Size{}, fmt.Errorf("estimate size: invalid %vx%v", size.Width, size.Height)
	}
	return size, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
