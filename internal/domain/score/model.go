package score

import "math"

const (
	// MinValue is the lowest score any factor or indicator may hold.
	MinValue = 0.01
	// MaxValue is the highest score any factor or indicator may hold.
	MaxValue = 10.0
	// RxScale maps the indicator mean onto the plotting space.
	RxScale = 0.552
	// UpperBound is the upper edge of both plotting axes. An all-max metric
	// set lands at log10(10^4/0.03 + 1) which is just over this value.
	UpperBound = MaxValue * RxScale

	defaultMetricValue = 5.0
)

// Factor names one of the seven Re factors.
type Factor string

const (
	FactorL     Factor = "L"
	FactorI     Factor = "I"
	FactorF     Factor = "F"
	FactorE     Factor = "E"
	FactorX     Factor = "X"
	FactorFg    Factor = "Fg"
	FactorOmega Factor = "Omega"
)

// Factors returns every factor in display order.
func Factors() []Factor {
	return []Factor{FactorL, FactorI, FactorF, FactorE, FactorX, FactorFg, FactorOmega}
}

// RegenerativeFactors returns the numerator factors.
func RegenerativeFactors() []Factor {
	return []Factor{FactorL, FactorI, FactorF, FactorE}
}

// PressureFactors returns the denominator factors.
func PressureFactors() []Factor {
	return []Factor{FactorX, FactorFg, FactorOmega}
}

// ParseFactor resolves a factor name. "Ω" is accepted for Omega.
func ParseFactor(name string) (Factor, bool) {
	if name == "Ω" {
		return FactorOmega, true
	}
	for _, f := range Factors() {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// MetricSet holds the seven factor scores.
type MetricSet struct {
	L     float64 `json:"L"`
	I     float64 `json:"I"`
	F     float64 `json:"F"`
	E     float64 `json:"E"`
	X     float64 `json:"X"`
	Fg    float64 `json:"Fg"`
	Omega float64 `json:"Omega"`
}

// DefaultMetrics returns a metric set with every factor at the midpoint.
func DefaultMetrics() MetricSet {
	return MetricSet{
		L:     defaultMetricValue,
		I:     defaultMetricValue,
		F:     defaultMetricValue,
		E:     defaultMetricValue,
		X:     defaultMetricValue,
		Fg:    defaultMetricValue,
		Omega: defaultMetricValue,
	}
}

// Get returns the value of a factor. Unknown factors read as zero.
func (m MetricSet) Get(f Factor) float64 {
	switch f {
	case FactorL:
		return m.L
	case FactorI:
		return m.I
	case FactorF:
		return m.F
	case FactorE:
		return m.E
	case FactorX:
		return m.X
	case FactorFg:
		return m.Fg
	case FactorOmega:
		return m.Omega
	default:
		return 0
	}
}

// With returns a copy with one factor set to the clamped value.
func (m MetricSet) With(f Factor, value float64) MetricSet {
	v := Clamp(value)
	switch f {
	case FactorL:
		m.L = v
	case FactorI:
		m.I = v
	case FactorF:
		m.F = v
	case FactorE:
		m.E = v
	case FactorX:
		m.X = v
	case FactorFg:
		m.Fg = v
	case FactorOmega:
		m.Omega = v
	}
	return m
}

// Clamp returns a copy with every factor inside [MinValue, MaxValue].
func (m MetricSet) Clamp() MetricSet {
	out := m
	for _, f := range Factors() {
		out = out.With(f, m.Get(f))
	}
	return out
}

// WithDefaults replaces missing (zero) factors with the midpoint, then clamps.
// Used when rehydrating snapshots written by older versions.
func (m MetricSet) WithDefaults() MetricSet {
	out := m
	for _, f := range Factors() {
		if v := m.Get(f); v == 0 || math.IsNaN(v) {
			out = out.With(f, defaultMetricValue)
		}
	}
	return out.Clamp()
}

// Clamp bounds a single score to [MinValue, MaxValue]. NaN becomes MinValue.
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v < MinValue {
		return MinValue
	}
	if v > MaxValue {
		return MaxValue
	}
	return v
}

// Definition describes a factor for display.
type Definition struct {
	Factor      Factor `json:"factor"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Definitions returns the display definitions of every factor.
func Definitions() []Definition {
	return []Definition{
		{FactorL, "L", "Localized Identity", "The system's rootedness in its specific context, culture, and place."},
		{FactorI, "I", "Interconnection", "The degree of integration and relationship across different parts of the system."},
		{FactorF, "F", "Feedback & Reciprocity", "The quality and responsiveness of feedback loops and mutual exchange."},
		{FactorE, "E", "Evolutionary Capacity", "The ability to learn, adapt, and transform under stress."},
		{FactorX, "X", "Extractive Pressure", "The extent of non-reciprocal resource depletion (labor, land, energy)."},
		{FactorFg, "Fg", "Fragmentation", "Systemic incoherence, disconnection, or breakdown in shared meaning."},
		{FactorOmega, "Ω", "Overdetermination", "The degree of structural rigidity or institutional lock-in that prevents adaptation."},
	}
}
