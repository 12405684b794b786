package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/rpggio/rerx/internal/domain/activity"
	"github.com/rpggio/rerx/internal/domain/forecast"
	"github.com/rpggio/rerx/internal/domain/project"
	"github.com/rpggio/rerx/internal/domain/quadrant"
	"github.com/rpggio/rerx/internal/domain/score"
	"github.com/rpggio/rerx/internal/domain/snapshot"
)

// ProjectService defines project and snapshot operations needed by MCP.
type ProjectService interface {
	List(query string) []project.ProjectSummary
	Get(id string) (*project.Project, error)
	Active() (*project.Project, error)
	CreateProject(ctx context.Context, name string) (*project.Project, error)
	RenameProject(ctx context.Context, id, name string) (*project.Project, error)
	DeleteProject(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string) (*project.Project, error)
	SaveSnapshot(ctx context.Context, projectID string, form snapshot.FormState) (*snapshot.Snapshot, error)
	UpdateSnapshot(ctx context.Context, projectID, snapshotID string, form snapshot.FormState) (*snapshot.Snapshot, error)
	DeleteSnapshot(ctx context.Context, projectID, snapshotID string) error
	History(projectID string) ([]project.HistoryPoint, error)
	Forecast(projectID string) (*forecast.Forecast, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Handler dispatches MCP commands.
type Handler struct {
	projects ProjectService
	activity ActivityService
}

// NewHandler creates a new MCP handler. activitySvc may be nil.
func NewHandler(projects ProjectService, activitySvc ActivityService) *Handler {
	return &Handler{
		projects: projects,
		activity: activitySvc,
	}
}

// Handle dispatches MCP requests to domain services.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "compute_scores":
		var req ComputeScoresParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		metrics, err := metricsFromParams(req.Metrics)
		if err != nil {
			return nil, err
		}
		indicators := make([]score.Indicator, 0, len(req.Indicators))
		for i, v := range req.Indicators {
			indicators = append(indicators, score.Indicator{ID: i + 1, Value: v}.Normalize())
		}
		s := score.Compute(metrics, indicators)
		pt := quadrant.Point{X: s.ReLog, Y: s.RxScaled}
		label, _ := quadrant.Classify(pt.Clamp())
		return ScoresResponse{
			ReRaw:    s.ReRaw,
			ReLog:    s.ReLog,
			Rx:       s.Rx.Rx,
			RxScaled: s.RxScaled,
			Point:    pt,
			Quadrant: label,
		}, nil
	case "classify_point":
		var req ClassifyPointParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		label, ok := quadrant.Classify(quadrant.Point{X: req.X, Y: req.Y})
		if !ok {
			return ClassifyResponse{InDomain: false}, nil
		}
		return ClassifyResponse{InDomain: true, Quadrant: label, Description: label.Description()}, nil
	case "list_projects":
		var req ListProjectsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return ProjectListResponse{Projects: h.projects.List(req.Query)}, nil
	case "get_project":
		var req GetProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.projectOrActive(req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return ProjectResponse{Project: proj}, nil
	case "create_project":
		var req CreateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.projects.CreateProject(ctx, req.Name)
		if err != nil {
			return nil, withResult(err, ProjectResponse{Project: proj})
		}
		return ProjectResponse{Project: proj}, nil
	case "rename_project":
		var req RenameProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.projects.RenameProject(ctx, req.ID, req.Name)
		if err != nil {
			return nil, withResult(err, ProjectResponse{Project: proj})
		}
		return ProjectResponse{Project: proj}, nil
	case "delete_project":
		var req ProjectIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.projects.DeleteProject(ctx, req.ID); err != nil {
			return nil, withResult(err, DeletedResponse{Deleted: req.ID})
		}
		return DeletedResponse{Deleted: req.ID}, nil
	case "set_active_project":
		var req ProjectIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.projects.SetActive(ctx, req.ID)
		if err != nil {
			return nil, withResult(err, ProjectResponse{Project: proj})
		}
		return ProjectResponse{Project: proj}, nil
	case "save_snapshot":
		var req SnapshotFormParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		projectID, err := h.projectIDOrActive(req.ProjectID)
		if err != nil {
			return nil, mapError(err)
		}
		form, err := formFromParams(req)
		if err != nil {
			return nil, err
		}
		snap, err := h.projects.SaveSnapshot(ctx, projectID, form)
		resp := snapshotResponse(projectID, snap)
		if err != nil {
			return nil, withResult(err, resp)
		}
		return resp, nil
	case "update_snapshot":
		var req UpdateSnapshotParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		projectID, err := h.projectIDOrActive(req.ProjectID)
		if err != nil {
			return nil, mapError(err)
		}
		form, err := formFromParams(req.SnapshotFormParams)
		if err != nil {
			return nil, err
		}
		snap, err := h.projects.UpdateSnapshot(ctx, projectID, req.SnapshotID, form)
		resp := snapshotResponse(projectID, snap)
		if err != nil {
			return nil, withResult(err, resp)
		}
		return resp, nil
	case "delete_snapshot":
		var req DeleteSnapshotParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		projectID, err := h.projectIDOrActive(req.ProjectID)
		if err != nil {
			return nil, mapError(err)
		}
		if err := h.projects.DeleteSnapshot(ctx, projectID, req.SnapshotID); err != nil {
			return nil, withResult(err, DeletedResponse{Deleted: req.SnapshotID})
		}
		return DeletedResponse{Deleted: req.SnapshotID}, nil
	case "get_history":
		var req ProjectScopeParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		projectID, err := h.projectIDOrActive(req.ProjectID)
		if err != nil {
			return nil, mapError(err)
		}
		history, err := h.projects.History(projectID)
		if err != nil {
			return nil, mapError(err)
		}
		return HistoryResponse{ProjectID: projectID, History: history}, nil
	case "get_forecast":
		var req ProjectScopeParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		projectID, err := h.projectIDOrActive(req.ProjectID)
		if err != nil {
			return nil, mapError(err)
		}
		f, err := h.projects.Forecast(projectID)
		if err != nil {
			return nil, mapError(err)
		}
		resp := ForecastResponse{ProjectID: projectID, Forecast: f}
		if f == nil {
			resp.Note = fmt.Sprintf("at least %d snapshots are needed for a forecast", forecast.MinSnapshots)
		}
		return resp, nil
	case "list_activity":
		if h.activity == nil {
			return []ActivityEntryResponse{}, nil
		}
		var req ListActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		opts := activity.ListActivityOptions{
			ProjectID:  req.ProjectID,
			SnapshotID: req.SnapshotID,
			Limit:      req.Limit,
			Offset:     req.Offset,
		}
		if req.Type != "" {
			t := activity.ActivityType(req.Type)
			opts.ActivityType = &t
		}
		entries, err := h.activity.GetRecentActivity(ctx, opts)
		if err != nil {
			return nil, mapError(err)
		}
		resp := make([]ActivityEntryResponse, 0, len(entries))
		for _, entry := range entries {
			resp = append(resp, ActivityEntryResponse{
				Timestamp:  entry.CreatedAt,
				Type:       entry.ActivityType,
				ProjectID:  entry.ProjectID,
				SnapshotID: entry.SnapshotID,
				Summary:    entry.Summary,
				Details:    entry.Details,
			})
		}
		return resp, nil
	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return &APIError{Code: "VALIDATION", Message: fmt.Sprintf("invalid arguments: %v", err)}
	}
	return nil
}

func (h *Handler) projectOrActive(id string) (*project.Project, error) {
	if id == "" {
		return h.projects.Active()
	}
	return h.projects.Get(id)
}

func (h *Handler) projectIDOrActive(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	proj, err := h.projects.Active()
	if err != nil {
		return "", err
	}
	return proj.ID, nil
}

// metricsFromParams starts from the default metric set; unknown factor names
// are rejected.
func metricsFromParams(in map[string]float64) (score.MetricSet, error) {
	m := score.DefaultMetrics()
	for name, v := range in {
		f, ok := score.ParseFactor(name)
		if !ok {
			return m, &APIError{Code: "VALIDATION", Message: fmt.Sprintf("unknown factor %q", name)}
		}
		if math.IsInf(v, 0) {
			return m, &APIError{Code: "VALIDATION", Message: fmt.Sprintf("factor %s must be finite", name)}
		}
		m = m.With(f, v)
	}
	return m, nil
}

func formFromParams(req SnapshotFormParams) (snapshot.FormState, error) {
	metrics, err := metricsFromParams(req.Metrics)
	if err != nil {
		return snapshot.FormState{}, err
	}
	form := snapshot.FormState{
		Label:   req.Label,
		Date:    req.Date,
		Metrics: metrics,
	}
	if len(req.MetricComments) > 0 {
		form.MetricComments = make(map[score.Factor]string, len(req.MetricComments))
		for name, comment := range req.MetricComments {
			f, ok := score.ParseFactor(name)
			if !ok {
				return snapshot.FormState{}, &APIError{Code: "VALIDATION", Message: fmt.Sprintf("unknown factor %q", name)}
			}
			form.MetricComments[f] = comment
		}
	}
	form.Indicators = make([]score.Indicator, 0, len(req.Indicators))
	for _, ind := range req.Indicators {
		form.Indicators = append(form.Indicators, score.Indicator{ID: ind.ID, Name: ind.Name, Value: ind.Value, Comment: ind.Comment})
	}
	return form, nil
}

func snapshotResponse(projectID string, snap *snapshot.Snapshot) SnapshotResponse {
	resp := SnapshotResponse{ProjectID: projectID, Snapshot: snap}
	if snap != nil {
		resp.Quadrant = snap.Quadrant()
	}
	return resp
}
