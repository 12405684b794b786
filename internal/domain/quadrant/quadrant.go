// Package quadrant classifies points of the (Re, Rx) plane into four regions.
package quadrant

import (
	"math"

	"github.com/rpggio/rerx/internal/domain/score"
)

// Bound is the upper edge of both axes.
const Bound = score.UpperBound

// Midpoint splits each axis.
const Midpoint = Bound / 2

// Label names a region.
type Label string

const (
	Degenerative    Label = "Degenerative"
	LatentPotential Label = "Latent Potential"
	Unsustainable   Label = "Unsustainable"
	Thriving        Label = "Thriving"
)

// Description returns what a region means.
func (l Label) Description() string {
	switch l {
	case Degenerative:
		return "Low potential, low realized outcome"
	case LatentPotential:
		return "High potential, low realized outcome"
	case Unsustainable:
		return "Low potential, high realized outcome: outcomes are outpacing structural capacity"
	case Thriving:
		return "High potential, high realized outcome"
	default:
		return ""
	}
}

// Point is a location in score space; X is reLog and Y is rxScaled.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// InDomain reports whether both coordinates lie in [0, Bound].
func (p Point) InDomain() bool {
	return inAxis(p.X) && inAxis(p.Y)
}

// Clamp returns the point with each coordinate forced into [0, Bound].
// NaN coordinates become 0.
func (p Point) Clamp() Point {
	return Point{X: clampAxis(p.X), Y: clampAxis(p.Y)}
}

// Region is one rectangle of the partition. High marks the upper half of an
// axis, which excludes the midline.
type Region struct {
	Label Label `json:"label"`
	HighX bool  `json:"highX"`
	HighY bool  `json:"highY"`
}

// Contains reports whether p falls in the region. Points on the midline belong
// to the lower/left side.
func (r Region) Contains(p Point) bool {
	if !p.InDomain() {
		return false
	}
	return (p.X > Midpoint) == r.HighX && (p.Y > Midpoint) == r.HighY
}

// Regions returns the four regions.
func Regions() []Region {
	return []Region{
		{Label: Degenerative},
		{Label: LatentPotential, HighX: true},
		{Label: Unsustainable, HighY: true},
		{Label: Thriving, HighX: true, HighY: true},
	}
}

// Classify returns the region containing p. Callers clamp first; points
// outside [0, Bound]² report ok=false.
func Classify(p Point) (Label, bool) {
	if !p.InDomain() {
		return "", false
	}
	switch {
	case p.X <= Midpoint && p.Y <= Midpoint:
		return Degenerative, true
	case p.Y <= Midpoint:
		return LatentPotential, true
	case p.X <= Midpoint:
		return Unsustainable, true
	default:
		return Thriving, true
	}
}

func inAxis(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= Bound
}

func clampAxis(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > Bound {
		return Bound
	}
	return v
}
