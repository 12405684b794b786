package project

import (
	"fmt"
	"math"
	"time"
	"unicode/utf16"

	"github.com/rpggio/rerx/internal/domain/quadrant"
	"github.com/rpggio/rerx/internal/domain/snapshot"
)

// Project is a named container owning an ordered snapshot history
type Project struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	TimePoints []snapshot.Snapshot `json:"timePoints"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
	Active     bool                `json:"active,omitempty"`
}

// Clone returns a deep copy
func (p Project) Clone() Project {
	out := p
	out.TimePoints = make([]snapshot.Snapshot, len(p.TimePoints))
	for i, s := range p.TimePoints {
		out.TimePoints[i] = s.Clone()
	}
	return out
}

func (p *Project) snapshotIndex(id string) int {
	for i := range p.TimePoints {
		if p.TimePoints[i].ID == id {
			return i
		}
	}
	return -1
}

// Latest returns the most recent snapshot by timestamp
func (p Project) Latest() (snapshot.Snapshot, bool) {
	if len(p.TimePoints) == 0 {
		return snapshot.Snapshot{}, false
	}
	ordered := snapshot.SortByTimestamp(p.TimePoints)
	return ordered[len(ordered)-1], true
}

// ProjectSummary is a lightweight representation for listing
type ProjectSummary struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Color          string          `json:"color"`
	Active         bool            `json:"active"`
	SnapshotCount  int             `json:"snapshot_count"`
	Latest         *quadrant.Point `json:"latest,omitempty"`
	LatestQuadrant quadrant.Label  `json:"latest_quadrant,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Summary builds the listing view of a project
func (p Project) Summary() ProjectSummary {
	sum := ProjectSummary{
		ID:            p.ID,
		Name:          p.Name,
		Color:         Color(p.ID),
		Active:        p.Active,
		SnapshotCount: len(p.TimePoints),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if latest, ok := p.Latest(); ok {
		pt := latest.Point()
		sum.Latest = &pt
		sum.LatestQuadrant = latest.Quadrant()
	}
	return sum
}

// HistoryPoint is one entry of a project's temporal evolution
type HistoryPoint struct {
	SnapshotID string         `json:"snapshot_id"`
	Label      string         `json:"label"`
	Timestamp  time.Time      `json:"timestamp"`
	ReLog      float64        `json:"reLog"`
	RxScaled   float64        `json:"rxScaled"`
	Quadrant   quadrant.Label `json:"quadrant"`
}

// Color derives a stable pastel HSL colour from a project id. The hue
// follows JavaScript number semantics: the running hash is a float64 that is
// truncated to int32 only for the shift.
func Color(id string) string {
	var hash float64
	for _, unit := range utf16.Encode([]rune(id)) {
		shifted := float64(toInt32(hash) << 5)
		hash = float64(unit) + (shifted - hash)
	}
	hue := int(math.Abs(math.Mod(hash, 360)))
	return fmt.Sprintf("hsl(%d, 70%%, 70%%)", hue)
}

func toInt32(v float64) int32 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int32(uint32(int64(math.Mod(math.Trunc(v), 1<<32))))
}
