package score

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIndicatorNotFound indicates the indicator id is not in the set.
var ErrIndicatorNotFound = errors.New("indicator not found")

// Indicator is a user-defined realized-outcome measure.
type Indicator struct {
	ID      int     `json:"id"`
	Name    string  `json:"name" validate:"max=200"`
	Value   float64 `json:"value"`
	Comment string  `json:"comment,omitempty"`
}

// Normalize clamps the value and fills in a missing name.
func (ind Indicator) Normalize() Indicator {
	ind.Value = Clamp(ind.Value)
	if strings.TrimSpace(ind.Name) == "" {
		ind.Name = fmt.Sprintf("Indicator %d", ind.ID)
	}
	return ind
}

// IndicatorSet is an ordered indicator list with a monotonic id counter.
// Removing an indicator never frees its id.
type IndicatorSet struct {
	Items  []Indicator `json:"items"`
	NextID int         `json:"nextId"`
}

// NewIndicatorSet seeds a set from existing indicators.
func NewIndicatorSet(items []Indicator) *IndicatorSet {
	set := &IndicatorSet{NextID: 1}
	for _, ind := range items {
		if ind.ID >= set.NextID {
			set.NextID = ind.ID + 1
		}
	}
	set.Items = append([]Indicator(nil), items...)
	return set
}

// Add appends an indicator and returns it with its assigned id.
func (s *IndicatorSet) Add(name string, value float64, comment string) Indicator {
	if s.NextID < 1 {
		s.NextID = 1
	}
	ind := Indicator{ID: s.NextID, Name: name, Value: Clamp(value), Comment: comment}
	s.NextID++
	s.Items = append(s.Items, ind)
	return ind
}

// Update replaces the name, value and comment of one indicator.
func (s *IndicatorSet) Update(id int, name string, value float64, comment string) (Indicator, error) {
	for i := range s.Items {
		if s.Items[i].ID != id {
			continue
		}
		s.Items[i].Name = name
		s.Items[i].Value = Clamp(value)
		s.Items[i].Comment = comment
		return s.Items[i], nil
	}
	return Indicator{}, ErrIndicatorNotFound
}

// Remove drops an indicator by id.
func (s *IndicatorSet) Remove(id int) error {
	for i := range s.Items {
		if s.Items[i].ID == id {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			return nil
		}
	}
	return ErrIndicatorNotFound
}

// List returns a copy of the indicators in order.
func (s *IndicatorSet) List() []Indicator {
	return append([]Indicator(nil), s.Items...)
}
