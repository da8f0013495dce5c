package layout

import (
	"strings"

	derrors "github.com/matzehuels/jsondiagram/pkg/errors"
)

// =============================================================================
// Direction
// =============================================================================

// Direction is the rank direction of the hierarchical layout.
type Direction string

const (
	LeftToRight Direction = "LR"
	TopToBottom Direction = "TB"
)

// DefaultDirection is used when no direction is configured.
const DefaultDirection = LeftToRight

// ParseDirection accepts "LR" or "TB" in any case.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToUpper(strings.TrimSpace(s))) {
	case LeftToRight:
		return LeftToRight, nil
	case TopToBottom:
		return TopToBottom, nil
	}
	return "", derrors.New(derrors.ErrCodeInvalidDirection, "unknown direction %q (want LR or TB)", s)
}

// Toggle returns the other direction.
func (d Direction) Toggle() Direction {
	if d == TopToBottom {
		return LeftToRight
	}
	return TopToBottom
}

// =============================================================================
// Density
// =============================================================================

// Density controls node sizing and spacing.
type Density string

const (
	Compact  Density = "compact"
	Medium   Density = "medium"
	Expanded Density = "expanded"
)

// DefaultDensity is used when no density is configured.
const DefaultDensity = Medium

// Densities lists all density modes from tightest to loosest.
var Densities = []Density{Compact, Medium, Expanded}

// ParseDensity accepts a density name in any case.
func ParseDensity(s string) (Density, error) {
	switch Density(strings.ToLower(strings.TrimSpace(s))) {
	case Compact:
		return Compact, nil
	case Medium:
		return Medium, nil
	case Expanded:
		return Expanded, nil
	}
	return "", derrors.New(derrors.ErrCodeInvalidDensity, "unknown density %q (want compact, medium or expanded)", s)
}

// Multiplier returns the size scale of the mode. Unknown modes scale like Medium.
func (d Density) Multiplier() float64 {
	switch d {
	case Compact:
		return 0.8
	case Expanded:
		return 1.2
	default:
		return 1.0
	}
}

// baseSeparation returns the unscaled node/rank separation in pixels.
func (d Density) baseSeparation() float64 {
	switch d {
	case Compact:
		return 20
	case Expanded:
		return 40
	default:
		return 30
	}
}

// Next cycles compact → medium → expanded → compact.
func (d Density) Next() Density {
	switch d {
	case Compact:
		return Medium
	case Medium:
		return Expanded
	default:
		return Compact
	}
}
