// Package pkg provides the core libraries for jsondiagram.
//
// # Overview
//
// jsondiagram turns a JSON document into an interactive node/edge diagram:
// every object and array becomes a node, scalar members of objects become
// node properties, and containment becomes parent→child edges. The diagram
// can be collapsed, limited to a depth, searched and explored.
//
// # Architecture
//
// The typical data flow:
//
//	editor text / file
//	         ↓
//	    [document] (ordered parse, duplicate-key check, import/export)
//	         ↓
//	    [tree] (document → graph, pre-order ids)
//	         ↓
//	    [graph] (nodes, edges, tree navigation)
//	         ↓
//	    [layout] (size estimation + Graphviz placement, cached)
//	         ↓
//	    [visibility] / [search] / [interact] (state on the graph)
//	         ↓
//	    [diagram] (one View per open diagram, scenes for renderers)
//
// # Quick Start
//
//	doc, err := document.ImportFile("store.json")
//	if err != nil {
//	    return err
//	}
//	view := diagram.New(diagram.Options{Direction: layout.LeftToRight})
//	view.Load(ctx, doc)
//	view.SetLevelThreshold(2)
//	view.SearchNow(ctx, "price")
//	scene := view.Scene()
//
// # Main Packages
//
// [document] - Ordered JSON values, the editor boundary (validation with
// line numbers), import, export and file watching.
//
// [tree] - Builds the diagram graph from a document.
//
// [graph] - Nodes, edges, parent/child indexes and JSON serialization.
//
// [layout] - Density-aware size estimation, the [layout.Engine] contract,
// the Graphviz engine and a cache-backed engine wrapper.
//
// [visibility] - Collapse state, the level threshold and the derived hidden
// flags of nodes and edges.
//
// [search] - Case-insensitive matching over labels and properties, result
// navigation and debouncing.
//
// [interact] - Selection, node locking, dragging and renderer change sets.
//
// [diagram] - Combines the above into a single-writer View.
//
// ## Infrastructure
//
// [cache] - File, Redis and null caches for layout placements.
//
// [errors] - Coded errors with optional line numbers.
//
// [observability] - Hooks for layout, cache, search and session events.
//
// [buildinfo] - Version information set at build time.
package pkg
