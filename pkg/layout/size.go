package layout

import (
	"unicode/utf8"

	"github.com/matzehuels/jsondiagram/pkg/graph"
)

// Footprint constants in pixels at multiplier 1.0.
const (
	baseWidth  = 220.0
	baseHeight = 60.0
	minWidth   = 180.0
	minHeight  = 40.0

	propertyHeight = 22.0 // per visible property row

	longPropertyThreshold = 25    // characters of key+value
	longPropertyStep      = 4.0   // pixels per extra character
	longPropertyCap       = 100.0 // maximum extra width

	arrayBodyHeight = 20.0
	longLabelLength = 10
	longLabelStep   = 8.0
	longLabelCap    = 80.0
)

// EstimateSize returns the rendered footprint of n under density d.
//
// Objects grow one row per property (none while collapsed) and widen when
// their longest key+value exceeds 25 characters. Arrays grow by one body row
// while expanded and non-empty and widen for labels longer than 10
// characters. All increments scale with the density multiplier and the
// result never falls below 180×40 scaled. A nil node gets the base size.
func EstimateSize(n *graph.Node, d Density) graph.Size {
	m := d.Multiplier()
	w := baseWidth * m
	h := baseHeight * m

	if n != nil {
		switch n.Kind {
		case graph.KindObject:
			if !n.Collapsed {
				h += float64(len(n.Properties)) * propertyHeight * m
			}
			longest := 0
			for _, p := range n.Properties {
				longest = max(longest, utf8.RuneCountInString(p.Key)+utf8.RuneCountInString(p.Value))
			}
			if longest > longPropertyThreshold {
				w += min(float64(longest-longPropertyThreshold)*longPropertyStep, longPropertyCap) * m
			}
		case graph.KindArray:
			if !n.Collapsed && n.Length > 0 {
				h += arrayBodyHeight * m
			}
			if l := utf8.RuneCountInString(n.Label); l > longLabelLength {
				w += min(float64(l-longLabelLength)*longLabelStep, longLabelCap) * m
			}
		}
	}

	return graph.Size{
		Width:  max(w, minWidth*m),
		Height: max(h, minHeight*m),
	}
}
