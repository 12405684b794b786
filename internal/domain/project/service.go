package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rpggio/rerx/internal/domain/activity"
	"github.com/rpggio/rerx/internal/domain/forecast"
	"github.com/rpggio/rerx/internal/domain/score"
	"github.com/rpggio/rerx/internal/domain/snapshot"
	"github.com/rpggio/rerx/internal/repository"
)

const (
	// StorageKey is the key the serialized project list is stored under.
	StorageKey = "regenerativeRatioProjects"

	// DefaultProjectName names the project seeded into an empty store.
	DefaultProjectName = "My Project"

	maxNameLength = 120
)

var formValidate = validator.New()

// Service owns the project list and is the only writer of it. Every mutation
// is applied to a copy, swapped in, then persisted in full.
type Service struct {
	mu         sync.Mutex
	store      Store
	activities ActivityLog
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
	key        string

	projects []Project
	// writesBlocked is set when the store could not be read at open, so
	// the blob may hold projects that are not in memory.
	writesBlocked bool
}

type loadOutcome int

const (
	loadOK loadOutcome = iota
	loadMissing
	loadCorrupt
	loadUnavailable
)

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides project and snapshot id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Service) { s.key = key }
}

// NewService creates a new project service. activities and logger may be nil.
func NewService(store Store, activities ActivityLog, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		store:      store,
		activities: activities,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
		key:        StorageKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open rehydrates state from the store, seeding a default project when the
// store is empty and making sure one project is active. A persistence error
// from seeding leaves the seeded state usable in memory.
//
// When the store cannot be read, the seed is kept in memory only and writes
// are refused with ErrWritesBlocked until a later read finds no stored
// projects.
func (s *Service) Open(ctx context.Context) error {
	projects, outcome := s.load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	seeded := false
	if len(projects) == 0 {
		now := s.now().UTC()
		projects = []Project{{
			ID:         s.newID(),
			Name:       DefaultProjectName,
			TimePoints: []snapshot.Snapshot{},
			CreatedAt:  now,
			UpdatedAt:  now,
		}}
		seeded = true
	}
	ensureActive(projects)
	s.projects = projects
	s.writesBlocked = outcome == loadUnavailable

	if s.writesBlocked {
		s.logger.Warn("store unreadable, keeping seeded project in memory", "project_id", projects[0].ID)
		return ErrWritesBlocked
	}
	if seeded {
		s.logger.Info("seeded default project", "project_id", projects[0].ID)
		return s.persistLocked(ctx)
	}
	return nil
}

// LoadAll reads the project list from the store. A missing, corrupt or
// unreadable value yields an empty list; failures are logged, never returned.
func (s *Service) LoadAll(ctx context.Context) []Project {
	projects, _ := s.load(ctx)
	return projects
}

func (s *Service) load(ctx context.Context) ([]Project, loadOutcome) {
	data, err := s.store.Load(ctx, s.key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			loadFallbacksTotal.WithLabelValues("missing").Inc()
			s.logger.Debug("no stored projects", "key", s.key)
			return []Project{}, loadMissing
		}
		loadFallbacksTotal.WithLabelValues("unavailable").Inc()
		s.logger.Warn("loading projects failed", "key", s.key, "error", err)
		return []Project{}, loadUnavailable
	}

	var projects []Project
	if err := json.Unmarshal(data, &projects); err != nil {
		loadFallbacksTotal.WithLabelValues("corrupt").Inc()
		s.logger.Warn("stored projects are corrupt", "key", s.key, "error", err)
		return []Project{}, loadCorrupt
	}

	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		out = append(out, s.normalize(p))
	}
	return out, loadOK
}

// Persist writes the full project list to the store.
func (s *Service) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx)
}

func (s *Service) persistLocked(ctx context.Context) error {
	if s.writesBlocked {
		if err := s.unblockLocked(ctx); err != nil {
			return err
		}
	}

	start := time.Now()
	defer func() { persistDuration.Observe(time.Since(start).Seconds()) }()

	data, err := json.Marshal(s.projects)
	if err != nil {
		return fmt.Errorf("%w: encoding projects: %w", ErrPersistence, err)
	}
	if err := s.store.Save(ctx, s.key, data); err != nil {
		s.logger.Error("persisting projects failed", "key", s.key, "error", err)
		return fmt.Errorf("%w: saving projects: %w", ErrPersistence, err)
	}
	return nil
}

// unblockLocked lifts the write block once a read shows there is nothing
// stored that a write would overwrite.
func (s *Service) unblockLocked(ctx context.Context) error {
	stored, outcome := s.load(ctx)
	if outcome == loadUnavailable || (outcome == loadOK && len(stored) > 0) {
		return ErrWritesBlocked
	}
	s.writesBlocked = false
	s.logger.Info("store readable again, writes resumed", "key", s.key)
	return nil
}

// List returns project summaries, newest first, optionally filtered by a
// case-insensitive name substring.
func (s *Service) List(query string) []ProjectSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]ProjectSummary, 0, len(s.projects))
	for _, p := range s.projects {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		out = append(out, p.Summary())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Projects returns a copy of every project in persisted order.
func (s *Service) Projects() []Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneProjects(s.projects)
}

// Get fetches a project by ID.
func (s *Service) Get(id string) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.projects, id)
	if i < 0 {
		return nil, ErrProjectNotFound
	}
	p := s.projects[i].Clone()
	return &p, nil
}

// Active returns the active project.
func (s *Service) Active() (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.projects {
		if p.Active {
			out := p.Clone()
			return &out, nil
		}
	}
	return nil, ErrProjectNotFound
}

// CreateProject creates an empty project and makes it active.
func (s *Service) CreateProject(ctx context.Context, name string) (*Project, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	var created Project
	err = s.mutate(ctx, "create_project", func(projects []Project) ([]Project, *activity.ActivityEntry, error) {
		now := s.now().UTC()
		created = Project{
			ID:         s.newID(),
			Name:       name,
			TimePoints: []snapshot.Snapshot{},
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		projects = append(projects, created)
		activate(projects, created.ID)
		created.Active = true
		return projects, &activity.ActivityEntry{
			ProjectID:    created.ID,
			ActivityType: activity.TypeProjectCreated,
			Summary:      fmt.Sprintf("created project %q", name),
		}, nil
	})
	if created.ID == "" {
		return nil, err
	}
	out := created.Clone()
	return &out, err
}

// RenameProject changes a project's name.
func (s *Service) RenameProject(ctx context.Context, id, name string) (*Project, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	var renamed *Project
	err = s.mutate(ctx, "rename_project", func(projects []Project) ([]Project, *activity.ActivityEntry, error) {
		i := indexOf(projects, id)
		if i < 0 {
			return nil, nil, ErrProjectNotFound
		}
		old := projects[i].Name
		projects[i].Name = name
		projects[i].UpdatedAt = s.now().UTC()
		p := projects[i].Clone()
		renamed = &p
		return projects, &activity.ActivityEntry{
			ProjectID:    id,
			ActivityType: activity.TypeProjectRenamed,
			Summary:      fmt.Sprintf("renamed project %q to %q", old, name),
		}, nil
	})
	return renamed, err
}

// DeleteProject removes a project and its snapshots. The last project cannot
// be deleted. When the active project goes, the first remaining one becomes
// active.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_project", func(projects []Project) ([]Project, *activity.ActivityEntry, error) {
		i := indexOf(projects, id)
		if i < 0 {
			return nil, nil, ErrProjectNotFound
		}
		if len(projects) <= 1 {
			return nil, nil, ErrLastProject
		}
		removed := projects[i]
		projects = append(projects[:i], projects[i+1:]...)
		if removed.Active {
			projects[0].Active = true
		}
		return projects, &activity.ActivityEntry{
			ProjectID:    id,
			ActivityType: activity.TypeProjectDeleted,
			Summary:      fmt.Sprintf("deleted project %q with %d snapshots", removed.Name, len(removed.TimePoints)),
		}, nil
	})
}

// SetActive marks a project as the active one.
func (s *Service) SetActive(ctx context.Context, id string) (*Project, error) {
	var active *Project
	err := s.mutate(ctx, "set_active", func(projects []Project) ([]Project, *activity.ActivityEntry, error) {
		i := indexOf(projects, id)
		if i < 0 {
			return nil, nil, ErrProjectNotFound
		}
		activate(projects, id)
		p := projects[i].Clone()
		active = &p
		return projects, &activity.ActivityEntry{
			ProjectID:    id,
			ActivityType: activity.TypeProjectActivated,
			Summary:      fmt.Sprintf("activated project %q", p.Name),
		}, nil
	})
	return active, err
}

// SaveSnapshot freezes a form into a new snapshot appended to the project.
// Scores are computed now and are not recomputed later except by
// UpdateSnapshot.
func (s *Service) SaveSnapshot(ctx context.Context, projectID string, form snapshot.FormState) (*snapshot.Snapshot, error) {
	if err := validateForm(form); err != nil {
		return nil, err
	}

	var saved *snapshot.Snapshot
	err := s.mutate(ctx, "save_snapshot", func(projects []Project) ([]Project, *activity.ActivityEntry, error) {
		i := indexOf(projects, projectID)
		if i < 0 {
			return nil, nil, ErrProjectNotFound
		}
		now := s.now()
		snap, err := snapshot.New(s.newID(), form, now)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		projects[i].TimePoints = append(projects[i].TimePoints, snap)
		projects[i].UpdatedAt = now.UTC()
		out := snap.Clone()
		saved = &out
		return projects, snapshotEntry(activity.TypeSnapshotSaved, projectID, snap, "saved"), nil
	})
	return saved, err
}

// UpdateSnapshot replaces a snapshot's editable fields and recomputes its
// scores. The snapshot id is preserved.
func (s *Service) UpdateSnapshot(ctx context.Context, projectID, snapshotID string, form snapshot.FormState) (*snapshot.Snapshot, error) {
	if err := validateForm(form); err != nil {
		return nil, err
	}

	var updated *snapshot.Snapshot
	err := s.mutate(ctx, "update_snapshot", func(projects []Project) ([]Project, *activity.ActivityEntry, error) {
		i := indexOf(projects, projectID)
		if i < 0 {
			return nil, nil, ErrProjectNotFound
		}
		j := projects[i].snapshotIndex(snapshotID)
		if j < 0 {
			return nil, nil, ErrSnapshotNotFound
		}
		snap, err := projects[i].TimePoints[j].WithForm(form)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		projects[i].TimePoints[j] = snap
		projects[i].UpdatedAt = s.now().UTC()
		out := snap.Clone()
		updated = &out
		return projects, snapshotEntry(activity.TypeSnapshotUpdated, projectID, snap, "updated"), nil
	})
	return updated, err
}

// DeleteSnapshot removes a snapshot. A stale id is reported as
// ErrSnapshotNotFound and changes nothing.
func (s *Service) DeleteSnapshot(ctx context.Context, projectID, snapshotID string) error {
	err := s.mutate(ctx, "delete_snapshot", func(projects []Project) ([]Project, *activity.ActivityEntry, error) {
		i := indexOf(projects, projectID)
		if i < 0 {
			return nil, nil, ErrProjectNotFound
		}
		j := projects[i].snapshotIndex(snapshotID)
		if j < 0 {
			return nil, nil, ErrSnapshotNotFound
		}
		snap := projects[i].TimePoints[j]
		projects[i].TimePoints = append(projects[i].TimePoints[:j], projects[i].TimePoints[j+1:]...)
		projects[i].UpdatedAt = s.now().UTC()
		return projects, snapshotEntry(activity.TypeSnapshotDeleted, projectID, snap, "deleted"), nil
	})
	if errors.Is(err, ErrNotFound) {
		s.logger.Warn("delete of unknown snapshot ignored", "project_id", projectID, "snapshot_id", snapshotID)
	}
	return err
}

// History returns a project's snapshots ordered by timestamp.
func (s *Service) History(projectID string) ([]HistoryPoint, error) {
	p, err := s.Get(projectID)
	if err != nil {
		return nil, err
	}
	ordered := snapshot.SortByTimestamp(p.TimePoints)
	out := make([]HistoryPoint, 0, len(ordered))
	for _, snap := range ordered {
		out = append(out, HistoryPoint{
			SnapshotID: snap.ID,
			Label:      snap.Label,
			Timestamp:  snap.Timestamp,
			ReLog:      snap.ReLog,
			RxScaled:   snap.RxScaled,
			Quadrant:   snap.Quadrant(),
		})
	}
	return out, nil
}

// Forecast projects the next point of a project's history. A nil forecast
// with a nil error means there is not enough history.
func (s *Service) Forecast(projectID string) (*forecast.Forecast, error) {
	p, err := s.Get(projectID)
	if err != nil {
		return nil, err
	}
	return forecast.Compute(p.TimePoints), nil
}

// mutate applies fn to a copy of the project list. Rejections leave state
// untouched. Accepted changes are swapped in before persisting, so a
// persistence failure keeps them in memory and returns ErrPersistence.
func (s *Service) mutate(ctx context.Context, op string, fn func([]Project) ([]Project, *activity.ActivityEntry, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, entry, err := fn(cloneProjects(s.projects))
	if err != nil {
		mutationsTotal.WithLabelValues(op, outcomeRejected).Inc()
		return err
	}
	s.projects = next
	s.logActivity(ctx, entry)

	if err := s.persistLocked(ctx); err != nil {
		mutationsTotal.WithLabelValues(op, outcomeUnpersisted).Inc()
		s.logActivity(ctx, &activity.ActivityEntry{
			ProjectID:    entryProject(entry),
			ActivityType: activity.TypePersistFailed,
			Summary:      fmt.Sprintf("%s not persisted", op),
		})
		return err
	}
	mutationsTotal.WithLabelValues(op, outcomeOK).Inc()
	return nil
}

func (s *Service) logActivity(ctx context.Context, entry *activity.ActivityEntry) {
	if s.activities == nil || entry == nil {
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	if err := s.activities.Log(ctx, entry); err != nil {
		s.logger.Warn("logging activity failed", "type", entry.ActivityType, "error", err)
	}
}

func (s *Service) normalize(p Project) Project {
	if strings.TrimSpace(p.ID) == "" {
		p.ID = s.newID()
	}
	if strings.TrimSpace(p.Name) == "" {
		p.Name = "Untitled Project"
	}
	if p.TimePoints == nil {
		p.TimePoints = []snapshot.Snapshot{}
	}
	for i := range p.TimePoints {
		p.TimePoints[i] = p.TimePoints[i].Normalize()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	return p
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: project name is required", ErrValidation)
	}
	if err := formValidate.Var(name, fmt.Sprintf("max=%d", maxNameLength)); err != nil {
		return "", fmt.Errorf("%w: project name: %w", ErrValidation, err)
	}
	return name, nil
}

func validateForm(form snapshot.FormState) error {
	if err := formValidate.Struct(form); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	seen := make(map[int]struct{}, len(form.Indicators))
	for _, ind := range form.Indicators {
		if ind.ID == 0 {
			continue
		}
		if _, dup := seen[ind.ID]; dup {
			return fmt.Errorf("%w: duplicate indicator id %d", ErrValidation, ind.ID)
		}
		seen[ind.ID] = struct{}{}
	}
	for f := range form.MetricComments {
		if _, ok := score.ParseFactor(string(f)); !ok {
			return fmt.Errorf("%w: unknown factor %q", ErrValidation, f)
		}
	}
	return nil
}

func snapshotEntry(typ activity.ActivityType, projectID string, snap snapshot.Snapshot, verb string) *activity.ActivityEntry {
	id := snap.ID
	details, _ := json.Marshal(map[string]float64{"reLog": snap.ReLog, "rxScaled": snap.RxScaled})
	return &activity.ActivityEntry{
		ProjectID:    projectID,
		SnapshotID:   &id,
		ActivityType: typ,
		Summary:      fmt.Sprintf("%s snapshot %q", verb, snap.Label),
		Details:      string(details),
	}
}

func entryProject(entry *activity.ActivityEntry) string {
	if entry == nil {
		return ""
	}
	return entry.ProjectID
}

// ensureActive leaves exactly one active project, defaulting to the first.
func ensureActive(projects []Project) {
	if len(projects) == 0 {
		return
	}
	for _, p := range projects {
		if p.Active {
			activate(projects, p.ID)
			return
		}
	}
	projects[0].Active = true
}

func activate(projects []Project, id string) {
	found := false
	for i := range projects {
		projects[i].Active = !found && projects[i].ID == id
		if projects[i].Active {
			found = true
		}
	}
}

func indexOf(projects []Project, id string) int {
	for i := range projects {
		if projects[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneProjects(in []Project) []Project {
	out := make([]Project, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
