// Package snapshot defines the frozen, timestamped capture of metrics,
// indicators and the scores computed from them.
package snapshot

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rpggio/rerx/internal/domain/quadrant"
	"github.com/rpggio/rerx/internal/domain/score"
)

// DateLayout is the accepted layout of FormState.Date.
const DateLayout = "2006-01-02"

// Snapshot is immutable by convention; use WithForm to derive an edited copy.
type Snapshot struct {
	ID              string                  `json:"id"`
	Label           string                  `json:"label"`
	Timestamp       time.Time               `json:"timestamp"`
	Metrics         score.MetricSet         `json:"metrics"`
	MetricComments  map[score.Factor]string `json:"metricComments,omitempty"`
	Indicators      []score.Indicator       `json:"rxIndicators"`
	// NextIndicatorID is never lowered, so a removed indicator's id is not
	// handed out again.
	NextIndicatorID int                     `json:"nextIndicatorId,omitempty"`
	ReRaw           float64                 `json:"reRaw"`
	ReLog           float64                 `json:"reLog"`
	Rx              float64                 `json:"rx"`
	RxScaled        float64                 `json:"rxScaled"`
	X               float64                 `json:"x"`
	Y               float64                 `json:"y"`
}

// FormState is the editable input a snapshot is built from. Indicators
// without an id are new and get one assigned.
type FormState struct {
	Label          string                  `json:"label,omitempty" validate:"max=200"`
	Date           string                  `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Metrics        score.MetricSet         `json:"metrics"`
	MetricComments map[score.Factor]string `json:"metricComments,omitempty"`
	Indicators     []score.Indicator       `json:"indicators,omitempty" validate:"dive"`
}

// New builds a snapshot from a form. The timestamp is the form's date at noon
// UTC when set, otherwise now.
func New(id string, form FormState, now time.Time) (Snapshot, error) {
	ts := now.UTC()
	if form.Date != "" {
		parsed, err := parseDate(form.Date)
		if err != nil {
			return Snapshot{}, err
		}
		ts = parsed
	}

	var explicit []score.Indicator
	for _, ind := range form.Indicators {
		if ind.ID != 0 {
			explicit = append(explicit, ind)
		}
	}
	set := score.NewIndicatorSet(explicit)
	indicators := make([]score.Indicator, 0, len(form.Indicators))
	for _, ind := range form.Indicators {
		if ind.ID == 0 {
			ind = set.Add(ind.Name, ind.Value, ind.Comment)
		}
		indicators = append(indicators, ind)
	}

	s := Snapshot{ID: id, Timestamp: ts, NextIndicatorID: set.NextID}
	return s.apply(form, indicators), nil
}

// WithForm returns a copy carrying the form's fields and recomputed scores.
// The id is preserved; the timestamp changes only when the form sets a date.
//
// Form indicators with an id edit the existing indicator of that id, those
// without one are appended with a fresh id, and existing indicators missing
// from the form are removed. Kept indicators stay in their stored order.
func (s Snapshot) WithForm(form FormState) (Snapshot, error) {
	out := s
	if form.Date != "" {
		parsed, err := parseDate(form.Date)
		if err != nil {
			return Snapshot{}, err
		}
		out.Timestamp = parsed
	}

	set := s.indicatorSet()
	kept := make(map[int]struct{}, len(form.Indicators))
	for _, ind := range form.Indicators {
		if ind.ID != 0 {
			kept[ind.ID] = struct{}{}
		}
	}
	for _, ind := range s.Indicators {
		if _, ok := kept[ind.ID]; !ok {
			_ = set.Remove(ind.ID)
		}
	}
	for _, ind := range form.Indicators {
		if ind.ID == 0 {
			set.Add(ind.Name, ind.Value, ind.Comment)
			continue
		}
		if _, err := set.Update(ind.ID, ind.Name, ind.Value, ind.Comment); err != nil {
			return Snapshot{}, fmt.Errorf("indicator %d: %w", ind.ID, err)
		}
	}

	out.NextIndicatorID = set.NextID
	return out.apply(form, set.List()), nil
}

func (s Snapshot) indicatorSet() *score.IndicatorSet {
	set := score.NewIndicatorSet(s.Indicators)
	if s.NextIndicatorID > set.NextID {
		set.NextID = s.NextIndicatorID
	}
	return set
}

func (s Snapshot) apply(form FormState, indicators []score.Indicator) Snapshot {
	s.Metrics = form.Metrics.Clamp()
	s.MetricComments = copyComments(form.MetricComments)
	s.Indicators = normalizeIndicators(indicators)
	s.Label = strings.TrimSpace(form.Label)
	if s.Label == "" {
		s.Label = DefaultLabel(s.Timestamp)
	}
	return s.rescore()
}

func (s Snapshot) rescore() Snapshot {
	scores := score.Compute(s.Metrics, s.Indicators)
	s.ReRaw = scores.ReRaw
	s.ReLog = scores.ReLog
	s.Rx = scores.Rx.Rx
	s.RxScaled = scores.RxScaled
	s.X = s.ReLog
	s.Y = s.RxScaled
	return s
}

// Point returns the plotted coordinates.
func (s Snapshot) Point() quadrant.Point {
	return quadrant.Point{X: s.X, Y: s.Y}
}

// Quadrant classifies the snapshot's clamped point.
func (s Snapshot) Quadrant() quadrant.Label {
	label, _ := quadrant.Classify(s.Point().Clamp())
	return label
}

// Normalize applies best-effort defaults to a snapshot read from storage.
// Stored scores are kept as written.
func (s Snapshot) Normalize() Snapshot {
	s.Metrics = s.Metrics.WithDefaults()
	s.Indicators = normalizeIndicators(s.Indicators)
	s.NextIndicatorID = s.indicatorSet().NextID
	if s.Label == "" && !s.Timestamp.IsZero() {
		s.Label = DefaultLabel(s.Timestamp)
	}
	if s.X == 0 && s.Y == 0 {
		s.X, s.Y = s.ReLog, s.RxScaled
	}
	return s
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	s.MetricComments = copyComments(s.MetricComments)
	s.Indicators = append([]score.Indicator(nil), s.Indicators...)
	return s
}

// DefaultLabel derives a label from a timestamp.
func DefaultLabel(ts time.Time) string {
	return "Snapshot " + ts.UTC().Format("02/01/2006")
}

// SortByTimestamp returns a copy ordered by ascending timestamp. Equal
// timestamps keep insertion order.
func SortByTimestamp(snaps []Snapshot) []Snapshot {
	out := append([]Snapshot(nil), snaps...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

func parseDate(value string) (time.Time, error) {
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC), nil
}

func normalizeIndicators(in []score.Indicator) []score.Indicator {
	out := make([]score.Indicator, 0, len(in))
	for _, ind := range in {
		out = append(out, ind.Normalize())
	}
	return out
}

func copyComments(in map[score.Factor]string) map[score.Factor]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[score.Factor]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
