package mcp

import (
	"time"

	"github.com/rpggio/rerx/internal/domain/activity"
	"github.com/rpggio/rerx/internal/domain/forecast"
	"github.com/rpggio/rerx/internal/domain/project"
	"github.com/rpggio/rerx/internal/domain/quadrant"
	"github.com/rpggio/rerx/internal/domain/snapshot"
)

// ToolDefinition describes an MCP tool and its input schema.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// IndicatorParams is one realized-outcome indicator as sent by clients.
type IndicatorParams struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Comment string  `json:"comment,omitempty"`
}

type ComputeScoresParams struct {
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	Indicators []float64          `json:"indicators,omitempty"`
}

type ClassifyPointParams struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ListProjectsParams struct {
	Query string `json:"query,omitempty"`
}

type GetProjectParams struct {
	ID string `json:"id,omitempty"`
}

type CreateProjectParams struct {
	Name string `json:"name"`
}

type RenameProjectParams struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ProjectIDParams struct {
	ID string `json:"id"`
}

// SnapshotFormParams carries the editable fields of a snapshot.
type SnapshotFormParams struct {
	ProjectID      string             `json:"project_id,omitempty"`
	Label          string             `json:"label,omitempty"`
	Date           string             `json:"date,omitempty"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
	MetricComments map[string]string  `json:"metric_comments,omitempty"`
	Indicators     []IndicatorParams  `json:"indicators,omitempty"`
}

type UpdateSnapshotParams struct {
	SnapshotFormParams
	SnapshotID string `json:"snapshot_id"`
}

type DeleteSnapshotParams struct {
	ProjectID  string `json:"project_id,omitempty"`
	SnapshotID string `json:"snapshot_id"`
}

type ProjectScopeParams struct {
	ProjectID string `json:"project_id,omitempty"`
}

type ListActivityParams struct {
	ProjectID  string  `json:"project_id,omitempty"`
	SnapshotID *string `json:"snapshot_id,omitempty"`
	Type       string  `json:"type,omitempty"`
	Limit      int     `json:"limit,omitempty"`
	Offset     int     `json:"offset,omitempty"`
}

type ScoresResponse struct {
	ReRaw    float64        `json:"reRaw"`
	ReLog    float64        `json:"reLog"`
	Rx       float64        `json:"rx"`
	RxScaled float64        `json:"rxScaled"`
	Point    quadrant.Point `json:"point"`
	Quadrant quadrant.Label `json:"quadrant"`
}

type ClassifyResponse struct {
	InDomain    bool           `json:"in_domain"`
	Quadrant    quadrant.Label `json:"quadrant,omitempty"`
	Description string         `json:"description,omitempty"`
}

type ProjectListResponse struct {
	Projects []project.ProjectSummary `json:"projects"`
}

type ProjectResponse struct {
	Project *project.Project `json:"project"`
}

type SnapshotResponse struct {
	ProjectID string             `json:"project_id"`
	Snapshot  *snapshot.Snapshot `json:"snapshot"`
	Quadrant  quadrant.Label     `json:"quadrant"`
}

type DeletedResponse struct {
	Deleted string `json:"deleted"`
}

type HistoryResponse struct {
	ProjectID string                 `json:"project_id"`
	History   []project.HistoryPoint `json:"history"`
}

type ForecastResponse struct {
	ProjectID string             `json:"project_id"`
	Forecast  *forecast.Forecast `json:"forecast"`
	Note      string             `json:"note,omitempty"`
}

type ActivityEntryResponse struct {
	Timestamp  time.Time             `json:"timestamp"`
	Type       activity.ActivityType `json:"type"`
	ProjectID  string                `json:"project_id"`
	SnapshotID *string               `json:"snapshot_id,omitempty"`
	Summary    string                `json:"summary"`
	Details    string                `json:"details,omitempty"`
}
