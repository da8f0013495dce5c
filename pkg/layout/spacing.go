package layout

// Layout-wide constants in pixels.
const (
	// Margin surrounds the whole drawing.
	Margin = 20.0

	// SafetyMargin is added to each box handed to the engine so that
	// neighbouring nodes never touch.
	SafetyMargin = 5.0

	// FallbackWidth and FallbackHeight replace a node size that could not
	// be estimated.
	FallbackWidth  = 180.0
	FallbackHeight = 50.0
)

// Spacing holds the separations passed to the layout algorithm.
type Spacing struct {
	NodeSep float64 `json:"nodeSep"` // between nodes of one rank
	RankSep float64 `json:"rankSep"` // between ranks
}

// ComputeSpacing derives separations from density, direction and graph size:
// small graphs (<20 nodes) get full spacing, large ones (>100) 60%, the rest
// 80%. Spacing along the rank direction is reduced by a further 20%.
func ComputeSpacing(nodeCount int, dir Direction, d Density) Spacing {
	base := d.baseSeparation()

	factor := 0.8
	switch {
	case nodeCount < 20:
		factor = 1.0
	case nodeCount > 100:
		factor = 0.6
	}

	nodeDir, rankDir := 0.8, 0.8
	if dir == LeftToRight {
		nodeDir = 1.0
	}
	if dir == TopToBottom {
		rankDir = 1.0
	}

	return Spacing{
		NodeSep: base * nodeDir * factor,
		RankSep: base * rankDir * factor,
	}
}
