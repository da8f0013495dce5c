// Package layout sizes diagram nodes and positions them with a hierarchical
// layout algorithm.
//
// # Overview
//
// [Layout] is the single entry point. It
//
//  1. drops edges whose endpoints are missing ([graph.Sanitize]),
//  2. estimates every node's footprint ([EstimateSize]),
//  3. derives node and rank separation ([ComputeSpacing]),
//  4. asks an [Engine] for box centers, and
//  5. converts centers to top-left positions.
//
// Failures never abort a layout. A node whose size cannot be estimated uses
// a 180×50 fallback, a node the engine did not place keeps its previous
// position, and an engine failure leaves every position untouched.
//
// # Engines
//
// The algorithm itself is a black box behind the narrow [Engine] interface:
// boxes and links in, centers out. [GraphvizEngine] runs Graphviz dot
// through goccy/go-graphviz; [CachedEngine] memoises any engine in a
// [cache.Cache].
//
//	engine := layout.NewCachedEngine(layout.NewGraphvizEngine(), c, nil, layout.DefaultCacheTTL, logger)
//	res := layout.Layout(ctx, g.Nodes(), g.Edges(), layout.Options{
//	    Direction: layout.LeftToRight,
//	    Density:   layout.Medium,
//	    Engine:    engine,
//	})
//
// # Density
//
// Density scales both node footprints (0.8, 1.0, 1.2) and separations
// (20, 30, 40 pixels). Separations shrink further for graphs over 20 and
// over 100 nodes.
//
// [graph.Sanitize]: github.com/matzehuels/jsondiagram/pkg/graph.Sanitize
// [cache.Cache]: github.com/matzehuels/jsondiagram/pkg/cache.Cache
package layout
