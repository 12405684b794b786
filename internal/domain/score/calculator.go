// Package score computes the structural potential (Re) and realized outcome
// (Rx) scores. Everything here is pure.
package score

import "math"

// Re is the structural potential score.
type Re struct {
	ReRaw float64 `json:"reRaw"`
	ReLog float64 `json:"reLog"`
}

// Rx is the realized outcome score.
type Rx struct {
	Rx       float64 `json:"rx"`
	RxScaled float64 `json:"rxScaled"`
}

// Scores combines both axes.
type Scores struct {
	Re
	Rx
}

// ComputeRe returns (L·I·F·E)/(X+Fg+Ω) and its log-compressed form.
// A zero denominator yields +Inf for both values.
func ComputeRe(m MetricSet) Re {
	numerator := m.L * m.I * m.F * m.E
	denominator := m.X + m.Fg + m.Omega
	if denominator == 0 {
		return Re{ReRaw: math.Inf(1), ReLog: math.Inf(1)}
	}
	raw := numerator / denominator
	return Re{ReRaw: raw, ReLog: math.Log10(raw + 1)}
}

// ComputeRx averages indicator values. NaN values contribute zero to the sum
// but still count toward the divisor. An empty list scores zero.
func ComputeRx(indicators []Indicator) Rx {
	if len(indicators) == 0 {
		return Rx{}
	}
	var sum float64
	for _, ind := range indicators {
		if math.IsNaN(ind.Value) {
			continue
		}
		sum += ind.Value
	}
	mean := sum / float64(len(indicators))
	return Rx{Rx: mean, RxScaled: mean * RxScale}
}

// Compute returns both scores.
func Compute(m MetricSet, indicators []Indicator) Scores {
	return Scores{Re: ComputeRe(m), Rx: ComputeRx(indicators)}
}
