package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Serialization API
// =============================================================================

// Document is the wire form of a graph: the {nodes, edges} pair handed to a
// rendering surface.
type Document struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// ToDocument returns the wire form of g. The slices are shared with g.
func ToDocument(g *Graph) Document {
	d := Document{Nodes: g.Nodes(), Edges: g.Edges()}
	if d.Nodes == nil {
		d.Nodes = []*Node{}
	}
	if d.Edges == nil {
		d.Edges = []*Edge{}
	}
	return d
}

// FromDocument rebuilds a graph from its wire form.
// Returns an error if nodes or edges violate the graph constraints.
func FromDocument(d Document) (*Graph, error) {
	g := New()
	for _, n := range d.Nodes {
		if n == nil {
			continue
		}
		if _, err := g.AddNode(*n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", n.ID, err)
		}
	}
	for _, e := range d.Edges {
		if e == nil {
			continue
		}
		if _, err := g.AddEdge(*e); err != nil {
			return nil, fmt.Errorf("add edge %s→%s: %w", e.Source, e.Target, err)
		}
	}
	return g, nil
}

// MarshalGraph converts a graph to indented JSON bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a graph as indented JSON to an io.Writer.
func WriteGraph(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToDocument(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteGraphFile writes a graph to a JSON file.
func WriteGraphFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteGraph(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadGraph decodes a JSON graph from an io.Reader.
func ReadGraph(r io.Reader) (*Graph, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return FromDocument(d)
}
