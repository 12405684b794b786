// Package forecast projects the next (Re, Rx) point from snapshot history by
// extending the displacement between the two most recent snapshots. It is a
// deterministic extrapolation, not a fitted model.
package forecast

import (
	"math"

	"github.com/rpggio/rerx/internal/domain/quadrant"
	"github.com/rpggio/rerx/internal/domain/snapshot"
)

// MinSnapshots is the history length required to produce a forecast.
const MinSnapshots = 2

// Vector is a displacement in score space.
type Vector struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// IsZero reports whether the vector has no length.
func (v Vector) IsZero() bool {
	return v.DX == 0 && v.DY == 0
}

// Forecast is derived on every read and never stored.
type Forecast struct {
	Point             quadrant.Point `json:"point"`
	LastObservedPoint quadrant.Point `json:"lastObservedPoint"`
	VectorEndpoint    quadrant.Point `json:"vectorEndpoint"`
	Vector            Vector         `json:"vector"`
	Quadrant          quadrant.Label `json:"quadrant"`
	LastQuadrant      quadrant.Label `json:"lastQuadrant"`
}

// Compute returns nil when fewer than MinSnapshots have a timestamp.
func Compute(snaps []snapshot.Snapshot) *Forecast {
	valid := make([]snapshot.Snapshot, 0, len(snaps))
	for _, s := range snaps {
		if !s.Timestamp.IsZero() {
			valid = append(valid, s)
		}
	}
	if len(valid) < MinSnapshots {
		return nil
	}

	ordered := snapshot.SortByTimestamp(valid)
	prev := observed(ordered[len(ordered)-2])
	last := observed(ordered[len(ordered)-1])

	v := Vector{DX: last.X - prev.X, DY: last.Y - prev.Y}
	point := quadrant.Point{X: last.X + v.DX, Y: last.Y + v.DY}.Clamp()

	f := &Forecast{
		Point:             point,
		LastObservedPoint: last,
		VectorEndpoint:    extend(point, v),
		Vector:            v,
	}
	f.Quadrant, _ = quadrant.Classify(f.Point)
	f.LastQuadrant, _ = quadrant.Classify(last.Clamp())
	return f
}

// observed reads the plotted coordinates, replacing non-finite values so the
// vector arithmetic stays finite.
func observed(s snapshot.Snapshot) quadrant.Point {
	return quadrant.Point{X: finite(s.ReLog), Y: finite(s.RxScaled)}
}

// extend walks from p along v to the boundary of [0, Bound]². The largest t
// is the tightest per-axis limit.
func extend(p quadrant.Point, v Vector) quadrant.Point {
	if v.IsZero() {
		return p
	}
	t := math.Inf(1)
	t = math.Min(t, axisLimit(p.X, v.DX))
	t = math.Min(t, axisLimit(p.Y, v.DY))
	if math.IsInf(t, 1) || t <= 0 {
		return p
	}
	return quadrant.Point{X: p.X + t*v.DX, Y: p.Y + t*v.DY}.Clamp()
}

func axisLimit(pos, delta float64) float64 {
	switch {
	case delta > 0:
		return (quadrant.Bound - pos) / delta
	case delta < 0:
		return -pos / delta
	default:
		return math.Inf(1)
	}
}

func finite(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case math.IsInf(v, 1):
		return quadrant.Bound
	case math.IsInf(v, -1):
		return 0
	default:
		return v
	}
}
