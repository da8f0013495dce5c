// Package tree converts a JSON document into a diagram graph.
//
// Objects and arrays become nodes, containment becomes parent→child edges.
// Node IDs are assigned in pre-order ("node-0" is the root), so building
// the same document twice yields identical graphs.
//
// Scalar members of an object become properties of that object's node.
// Scalar array elements are not represented as nodes; an array of scalars
// renders as a single Array node showing only its length.
package tree

import (
	"strconv"

	"github.com/matzehuels/jsondiagram/pkg/document"
	"github.com/matzehuels/jsondiagram/pkg/graph"
)

// Build converts v into a graph. A scalar or nil root yields an empty graph.
//
// Build never fails: IDs are generated and every edge connects a freshly
// added parent to a freshly added child.
func Build(v *document.Value) *graph.Graph {
	g := graph.New()
	if !v.IsContainer() {
		return g
	}
	b := &builder{g: g}
	b.visit(v, "", "", 1)

	for _, n := range g.Nodes() {
		n.ChildrenCount = len(g.Children(n.ID))
	}
	return g
}

type builder struct {
	g    *graph.Graph
	next int
}

func (b *builder) id() string {
	id := "node-" + strconv.Itoa(b.next)
	b.next++
	return id
}

// visit emits the node for container v and recurses into nested containers.
// An empty key falls back to the kind's default label.
func (b *builder) visit(v *document.Value, label, parent string, depth int) {
	kind := graph.KindObject
	if v.Kind == document.KindArray {
		kind = graph.KindArray
	}
	if label == "" {
		label = kind.DefaultLabel()
	}

	n := graph.Node{
		ID:    b.id(),
		Kind:  kind,
		Label: label,
		Depth: depth,
	}

	type child struct {
		label string
		value *document.Value
	}
	var nested []child

	switch kind {
	case graph.KindArray:
		n.Length = len(v.Elements)
		for i, e := range v.Elements {
			if e.IsContainer() {
				nested = append(nested, child{strconv.Itoa(i), e})
			}
		}
	case graph.KindObject:
		for _, m := range v.Members {
			if m.Value.IsContainer() {
				nested = append(nested, child{m.Key, m.Value})
				continue
			}
			n.Properties = append(n.Properties, graph.Property{Key: m.Key, Value: m.Value.Text()})
		}
	}

	node, _ := b.g.AddNode(n)
	if parent != "" {
		b.g.AddEdge(graph.NewEdge(parent, node.ID))
	}
	for _, c := range nested {
		b.visit(c.value, c.label, node.ID, depth+1)
	}
}
