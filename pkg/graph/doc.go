// Package graph provides the node/edge model of a JSON diagram.
//
// # Overview
//
// Every JSON object or array becomes a [Node]; every containment relation a
// directed [Edge] from parent to child. Scalars never become nodes: object
// members with scalar values are kept as [Property] entries on their node,
// scalar array elements are only counted in [Node.Length].
//
// The node set always forms a tree. [Graph.AddEdge] refuses edges with
// unknown endpoints and second parents, and [Graph.Validate] checks that
// exactly one root exists and every node is reachable from it.
//
// # Identity
//
// Node IDs are assigned by the tree builder in pre-order ("node-0" is the
// root). Edge IDs are derived from their endpoints with [EdgeID], so the same
// document always yields the same IDs.
//
// # Adjacency
//
// The parent and children index is built as edges are added, so
// [Graph.Children], [Graph.Descendants] and [Graph.IncidentEdges] never scan
// the full edge list.
//
// # Serialization
//
// [Document] is the {nodes, edges} pair handed to rendering surfaces:
//
//	data, _ := graph.MarshalGraph(g)       // Graph → []byte
//	g2, _ := graph.ReadGraph(bytes.NewReader(data))
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. The diagram view owns its
// graph and mutates it from a single event loop.
package graph
