package layout

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/jsondiagram/pkg/graph"
)

// pointsPerInch converts between Graphviz inches and pixels.
const pointsPerInch = 72.0

// plainFormat is Graphviz's line-oriented text output: one "graph", "node"
// and "edge" record per line, coordinates in inches with the origin at the
// bottom-left corner.
const plainFormat graphviz.Format = "plain"

// GraphvizEngine places boxes with the Graphviz dot algorithm.
type GraphvizEngine struct{}

// NewGraphvizEngine creates a Graphviz-backed engine.
func NewGraphvizEngine() *GraphvizEngine {
	return &GraphvizEngine{}
}

// Name returns "graphviz".
func (e *GraphvizEngine) Name() string { return "graphviz" }

// Place runs dot on the request and returns box centers in pixels.
// Boxes are fixed-size, so the computed placement honours the requested
// widths and heights exactly.
func (e *GraphvizEngine) Place(ctx context.Context, req Request) (Placement, error) {
	if len(req.Boxes) == 0 {
		return Placement{}, nil
	}
	dot, names := ToDOT(req)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, plainFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return parsePlain(buf.Bytes(), names, req.Margin)
}

// ToDOT writes req as a DOT digraph. Boxes are named n0, n1, … in request
// order so that arbitrary IDs never need escaping; the returned map resolves
// those names back to box IDs.
func ToDOT(req Request) (string, map[string]string) {
	names := make(map[string]string, len(req.Boxes))
	byID := make(map[string]string, len(req.Boxes))

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  graph [rankdir=%s, nodesep=%s, ranksep=%s, ordering=out, splines=false];\n",
		rankdir(req.Direction), inches(req.Spacing.NodeSep), inches(req.Spacing.RankSep))
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("\n")

	for i, b := range req.Boxes {
		name := "n" + strconv.Itoa(i)
		names[name] = b.ID
		byID[b.ID] = name
		fmt.Fprintf(&buf, "  %s [width=%s, height=%s];\n", name, inches(b.Width), inches(b.Height))
	}

	buf.WriteString("\n")
	for _, l := range req.Links {
		src, okS := byID[l.Source]
		dst, okD := byID[l.Target]
		if !okS || !okD {
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s;\n", src, dst)
	}

	buf.WriteString("}\n")
	return buf.String(), names
}

func rankdir(d Direction) string {
	if d == TopToBottom {
		return "TB"
	}
	return "LR"
}

func inches(px float64) string {
	return strconv.FormatFloat(px/pointsPerInch, 'f', 4, 64)
}

// parsePlain reads node centers from Graphviz plain output. Y is flipped so
// the origin is the top-left corner, and everything is shifted by margin.
func parsePlain(out []byte, names map[string]string, margin float64) (Placement, error) {
	placement := make(Placement, len(names))
	height := -1.0

	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		fields := tokenize(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "graph":
			if len(fields) < 4 {
				return nil, fmt.Errorf("plain output: short graph record %q", sc.Text())
			}
			h, err := strconv.ParseFloat(fields[3], 64)
			if err != nil {
				return nil, fmt.Errorf("plain output: graph height: %w", err)
			}
			height = h
		case "node":
			if height < 0 {
				return nil, fmt.Errorf("plain output: node before graph record")
			}
			if len(fields) < 4 {
				continue
			}
			id, ok := names[fields[1]]
			if !ok {
				continue
			}
			x, errX := strconv.ParseFloat(fields[2], 64)
			y, errY := strconv.ParseFloat(fields[3], 64)
			if errX != nil || errY != nil {
				continue
			}
			placement[id] = graph.Point{
				X: x*pointsPerInch + margin,
				Y: (height-y)*pointsPerInch + margin,
			}
		case "stop":
			return placement, sc.Err()
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("plain output: %w", err)
	}
	if height < 0 {
		return nil, fmt.Errorf("plain output: missing graph record")
	}
	return placement, nil
}

// tokenize splits a plain-format line on blanks, keeping double-quoted
// strings (with backslash escapes) as single tokens without their quotes.
func tokenize(line string) []string {
	var (
		out     []string
		cur     strings.Builder
		inQuote bool
		escaped bool
		started bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t'):
			if started {
				out = append(out, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		out = append(out, cur.String())
	}
	return out
}

// Ensure GraphvizEngine implements Engine.
var _ Engine = (*GraphvizEngine)(nil)
