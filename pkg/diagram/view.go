package diagram

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jsondiagram/pkg/document"
	"github.com/matzehuels/jsondiagram/pkg/graph"
	"github.com/matzehuels/jsondiagram/pkg/interact"
	"github.com/matzehuels/jsondiagram/pkg/layout"
	"github.com/matzehuels/jsondiagram/pkg/search"
	"github.com/matzehuels/jsondiagram/pkg/tree"
	"github.com/matzehuels/jsondiagram/pkg/visibility"
)

// Viewport parameters requested from the renderer.
const (
	FitPadding   = 0.05
	FocusPadding = 0.5
	MaxZoom      = 1.5
)

// Options configures a [View].
type Options struct {
	Direction   layout.Direction
	Density     layout.Density
	Engine      layout.Engine // nil uses a GraphvizEngine
	SearchDelay time.Duration // 0 uses search.DefaultDelay
	Logger      *log.Logger
}

// ViewportRequest asks the renderer to fit the viewport around NodeIDs, or
// around every visible node when NodeIDs is empty.
type ViewportRequest struct {
	Version uint64   `json:"version"`
	NodeIDs []string `json:"nodeIds,omitempty"`
	Padding float64  `json:"padding"`
	MaxZoom float64  `json:"maxZoom"`
}

// View is an interactive diagram of one JSON document.
type View struct {
	logger *log.Logger
	engine layout.Engine

	direction layout.Direction
	density   layout.Density

	version uint64
	editor  *document.Editor
	g       *graph.Graph

	vis      *visibility.Manager
	search   *search.Engine
	debounce *search.Debouncer
	ctrl     *interact.Controller

	focused  string
	viewport []ViewportRequest
	layout   layout.Result
}

// New creates an empty view.
func New(opts Options) *View {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	engine := opts.Engine
	if engine == nil {
		engine = layout.NewGraphvizEngine()
	}
	if opts.Direction == "" {
		opts.Direction = layout.DefaultDirection
	}
	if opts.Density == "" {
		opts.Density = layout.DefaultDensity
	}

	g := graph.New()
	v := &View{
		logger:    logger,
		engine:    engine,
		direction: opts.Direction,
		density:   opts.Density,
		g:         g,
		vis:       visibility.New(g),
		search:    search.NewEngine(g),
		debounce:  search.NewDebouncer(opts.SearchDelay),
		ctrl:      interact.New(g, logger),
	}
	v.editor = document.NewEditor(nil)
	return v
}

// Version returns the current structural version.
func (v *View) Version() uint64 { return v.version }

// Graph returns the live graph. Callers must not keep it across a rebuild.
func (v *View) Graph() *graph.Graph { return v.g }

// Guard wraps fn so that it only runs while version is still current.
func (v *View) Guard(version uint64, fn func()) func() {
	return func() {
		if v.version != version {
			v.logger.Debug("stale callback skipped", "version", version, "current", v.version)
			return
		}
		fn()
	}
}

// =============================================================================
// Document
// =============================================================================

// Load replaces the diagram with one built from doc. Collapse state, the
// level threshold, search and selection are reset; the node lock is kept.
// The new graph is laid out and a fit of the whole diagram is requested.
func (v *View) Load(ctx context.Context, doc *document.Value) layout.Result {
	if err := v.editor.Load(doc); err != nil {
		v.logger.Warn("could not format document", "error", err)
	}
	return v.rebuild(ctx, doc)
}

// Edit replaces the editor text. Valid text rebuilds the diagram; invalid
// text is kept in the editor, the diagram stays as it is, and the error is
// returned (see [View.Problem]).
func (v *View) Edit(ctx context.Context, text string) error {
	if err := v.editor.SetText(text); err != nil {
		return err
	}
	v.rebuild(ctx, v.editor.Value())
	return nil
}

// Import reads a document from r and loads it. On failure the current
// diagram is left untouched.
func (v *View) Import(ctx context.Context, r io.Reader) error {
	doc, err := document.Import(r)
	if err != nil {
		return err
	}
	v.Load(ctx, doc)
	return nil
}

// Export writes the current document as 2-space indented JSON.
func (v *View) Export(w io.Writer) error {
	doc := v.editor.Value()
	if doc == nil {
		doc = document.Object()
	}
	return document.Export(w, doc)
}

// Document returns the last accepted document, or nil.
func (v *View) Document() *document.Value { return v.editor.Value() }

// Text returns the editor text, valid or not.
func (v *View) Text() string { return v.editor.Text() }

// Problem describes the current editor error, if any.
func (v *View) Problem() (message string, line int) { return v.editor.Problem() }

func (v *View) rebuild(ctx context.Context, doc *document.Value) layout.Result {
	v.version++
	v.g = tree.Build(doc)
	v.vis = visibility.New(v.g)
	v.search.Reset(v.g)
	v.debounce.Cancel()
	v.ctrl.Reset(v.g)
	v.focused = ""

	v.logger.Debug("diagram rebuilt", "version", v.version, "nodes", v.g.NodeCount(), "edges", v.g.EdgeCount())
	return v.Relayout(ctx)
}

// =============================================================================
// Layout
// =============================================================================

// Direction returns the rank direction.
func (v *View) Direction() layout.Direction { return v.direction }

// Density returns the density mode.
func (v *View) Density() layout.Density { return v.density }

// Relayout positions every node, hidden or not, and requests a fit of the
// visible diagram. Collapse and presentation state are preserved.
func (v *View) Relayout(ctx context.Context) layout.Result {
	v.layout = layout.Layout(ctx, v.g.Nodes(), v.g.Edges(), layout.Options{
		Direction: v.direction,
		Density:   v.density,
		Engine:    v.engine,
		Logger:    v.logger,
	})
	v.requestViewport(nil, FitPadding)
	return v.layout
}

// LastLayout returns the result of the most recent layout run.
func (v *View) LastLayout() layout.Result { return v.layout }

// SetDirection changes the rank direction and lays the diagram out again.
func (v *View) SetDirection(ctx context.Context, d layout.Direction) layout.Result {
	v.direction = d
	return v.Relayout(ctx)
}

// SetDensity changes the density mode and lays the diagram out again.
func (v *View) SetDensity(ctx context.Context, d layout.Density) layout.Result {
	v.density = d
	return v.Relayout(ctx)
}

// =============================================================================
// Visibility
// =============================================================================

// Toggle collapses or expands id. Unknown ids are ignored.
func (v *View) Toggle(id string) bool { return v.vis.Toggle(id) }

// CollapseAll collapses every node with children.
func (v *View) CollapseAll() { v.vis.CollapseAll() }

// ExpandAll expands every node.
func (v *View) ExpandAll() { v.vis.ExpandAll() }

// SetLevelThreshold collapses nodes deeper than level that were not
// toggled by hand.
func (v *View) SetLevelThreshold(level int) { v.vis.SetLevelThreshold(level) }

// Level returns the level threshold.
func (v *View) Level() int { return v.vis.Level() }

// MaxDepth returns the depth of the deepest node.
func (v *View) MaxDepth() int { return v.vis.MaxDepth() }

// =============================================================================
// Search
// =============================================================================

// Search schedules a debounced search for term. The host arms a timer for
// the ticket's Delay and then calls [View.FireSearch].
func (v *View) Search(ctx context.Context, term string) search.Ticket {
	return v.debounce.Schedule(ctx, term)
}

// FireSearch runs the search behind t unless a later term superseded it.
func (v *View) FireSearch(ctx context.Context, t search.Ticket) ([]search.Result, bool) {
	term, ok := v.debounce.Take(t)
	if !ok {
		return nil, false
	}
	return v.SearchNow(ctx, term), true
}

// SearchNow runs a search immediately and focuses the first match. An empty
// term clears the search.
func (v *View) SearchNow(ctx context.Context, term string) []search.Result {
	v.debounce.Cancel()
	v.focused = ""
	results := v.search.Search(ctx, term)
	if len(results) > 0 {
		v.Focus(results[0].NodeID)
	}
	return results
}

// NextResult moves to the next match with wraparound and focuses it.
func (v *View) NextResult() (search.Result, bool) {
	r, ok := v.search.Next()
	if ok {
		v.Focus(r.NodeID)
	}
	return r, ok
}

// PrevResult moves to the previous match with wraparound and focuses it.
func (v *View) PrevResult() (search.Result, bool) {
	r, ok := v.search.Prev()
	if ok {
		v.Focus(r.NodeID)
	}
	return r, ok
}

// ClearSearch drops the search term, any pending search and all
// search-derived styling.
func (v *View) ClearSearch() {
	v.debounce.Cancel()
	v.search.Clear()
	v.focused = ""
}

// Focus marks id as the focus target and asks the renderer to centre on it.
// Search state is not changed. Unknown ids are ignored.
func (v *View) Focus(id string) bool {
	n, ok := v.g.Node(id)
	if !ok {
		return false
	}
	if prev, ok := v.g.Node(v.focused); ok {
		prev.Focused = false
	}
	n.Focused = true
	v.focused = id
	v.requestViewport([]string{id}, FocusPadding)
	return true
}

// Focused returns the focused node id, or "".
func (v *View) Focused() string { return v.focused }

// =============================================================================
// Interaction
// =============================================================================

// ClickNode toggles the selection of id.
func (v *View) ClickNode(id string) bool { return v.ctrl.ClickNode(id) }

// ClickPane clears the selection.
func (v *View) ClickPane() { v.ctrl.ClickPane() }

// DragStart begins dragging id.
func (v *View) DragStart(id string) bool { return v.ctrl.DragStart(id) }

// Drag records a pointer move and reports whether a frame must be scheduled.
func (v *View) Drag(id string, pos graph.Point) bool { return v.ctrl.Drag(id, pos) }

// Frame applies the pending drag move.
func (v *View) Frame() bool { return v.ctrl.Frame() }

// DragStop drops the dragged node at pos.
func (v *View) DragStop(id string, pos graph.Point) bool { return v.ctrl.DragStop(id, pos) }

// ApplyNodeChanges applies renderer-side node changes that are acceptable
// in the current interaction state.
func (v *View) ApplyNodeChanges(changes []interact.NodeChange) []interact.NodeChange {
	return v.ctrl.ApplyNodeChanges(changes)
}

// SetLocked sets the global node lock.
func (v *View) SetLocked(locked bool) { v.ctrl.SetLocked(locked) }

// ToggleLock flips the global node lock.
func (v *View) ToggleLock() bool { return v.ctrl.ToggleLock() }

// =============================================================================
// Rendering boundary
// =============================================================================

func (v *View) requestViewport(ids []string, padding float64) {
	v.viewport = append(v.viewport, ViewportRequest{
		Version: v.version,
		NodeIDs: ids,
		Padding: padding,
		MaxZoom: MaxZoom,
	})
}

// TakeViewportRequests drains the queued viewport requests. Requests queued
// under an older version are discarded.
func (v *View) TakeViewportRequests() []ViewportRequest {
	var out []ViewportRequest
	for _, r := range v.viewport {
		if r.Version != v.version {
			v.logger.Debug("stale viewport request dropped", "version", r.Version, "current", v.version)
			continue
		}
		out = append(out, r)
	}
	v.viewport = nil
	return out
}
