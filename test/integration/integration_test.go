package integration_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rpggio/rerx/internal/app"
	"github.com/rpggio/rerx/internal/badger"
	"github.com/rpggio/rerx/internal/config"
	"github.com/rpggio/rerx/internal/domain/activity"
	"github.com/rpggio/rerx/internal/domain/project"
	"github.com/rpggio/rerx/internal/domain/quadrant"
	"github.com/rpggio/rerx/internal/domain/score"
	"github.com/rpggio/rerx/internal/domain/snapshot"
	"github.com/rpggio/rerx/internal/sqlite"
	"github.com/stretchr/testify/require"
)

func storeConfigs(t *testing.T) map[string]config.StoreConfig {
	t.Helper()
	dir := t.TempDir()
	return map[string]config.StoreConfig{
		config.BackendSQLite: {Backend: config.BackendSQLite, DBPath: filepath.Join(dir, "sqlite.db")},
		config.BackendBadger: {Backend: config.BackendBadger, DBPath: filepath.Join(dir, "activity.db"), BadgerPath: filepath.Join(dir, "badger")},
	}
}

func form(date string, metrics score.MetricSet, values ...float64) snapshot.FormState {
	set := score.NewIndicatorSet(nil)
	for _, v := range values {
		set.Add("", v, "")
	}
	return snapshot.FormState{Date: date, Metrics: metrics, Indicators: set.List()}
}

func TestIntegration_RestartRoundTrip(t *testing.T) {
	for name, cfg := range storeConfigs(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			a, err := app.Open(ctx, cfg, nil)
			require.NoError(t, err)

			farm, err := a.Projects.CreateProject(ctx, "Farm")
			require.NoError(t, err)
			low := score.DefaultMetrics().With(score.FactorX, 9).With(score.FactorFg, 9)
			high := score.DefaultMetrics().With(score.FactorL, 10).With(score.FactorE, 10).With(score.FactorOmega, 0.5)

			first, err := a.Projects.SaveSnapshot(ctx, farm.ID, form("2026-01-10", low, 2, 3))
			require.NoError(t, err)
			require.Equal(t, quadrant.Degenerative, first.Quadrant())
			_, err = a.Projects.SaveSnapshot(ctx, farm.ID, form("2026-06-10", high, 8, 9))
			require.NoError(t, err)

			before := a.Projects.Projects()
			fcBefore, err := a.Projects.Forecast(farm.ID)
			require.NoError(t, err)
			require.NotNil(t, fcBefore)
			require.NoError(t, a.Close())

			a, err = app.Open(ctx, cfg, nil)
			require.NoError(t, err)
			defer a.Close()

			require.Equal(t, before, a.Projects.Projects())
			active, err := a.Projects.Active()
			require.NoError(t, err)
			require.Equal(t, farm.ID, active.ID)

			fcAfter, err := a.Projects.Forecast(farm.ID)
			require.NoError(t, err)
			require.Equal(t, fcBefore, fcAfter)

			entries, err := a.Activity.GetRecentActivity(ctx, activity.ListActivityOptions{ProjectID: farm.ID})
			require.NoError(t, err)
			require.Len(t, entries, 3)
			require.Equal(t, activity.TypeSnapshotSaved, entries[0].ActivityType)
			require.Equal(t, activity.TypeProjectCreated, entries[2].ActivityType)
		})
	}
}

func TestIntegration_BackendsAgree(t *testing.T) {
	ctx := context.Background()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })

	bs, err := badger.Open(badger.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = bs.Close() })

	clock := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	stores := []project.Store{sqlite.NewBlobRepository(db), bs}
	var results [][]project.Project
	for _, store := range stores {
		n := 0
		opts := []project.Option{
			project.WithClock(func() time.Time { return clock }),
			project.WithIDGenerator(func() string {
				n++
				return fmt.Sprintf("id-%d", n)
			}),
		}
		svc := project.NewService(store, nil, nil, opts...)
		require.NoError(t, svc.Open(ctx))
		active, err := svc.Active()
		require.NoError(t, err)
		_, err = svc.SaveSnapshot(ctx, active.ID, form("2026-02-01", score.DefaultMetrics(), 5))
		require.NoError(t, err)

		reloaded := project.NewService(store, nil, nil)
		require.NoError(t, reloaded.Open(ctx))
		require.Equal(t, svc.Projects(), reloaded.Projects())
		results = append(results, reloaded.Projects())
	}
	require.Equal(t, results[0], results[1])
}

func TestIntegration_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	cfg := storeConfigs(t)[config.BackendSQLite]

	a, err := app.Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer a.Close()
	active, err := a.Projects.Active()
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			_, err := a.Projects.SaveSnapshot(ctx, active.ID, form("", score.DefaultMetrics(), v))
			errs <- err
		}(float64(i%10 + 1))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored := project.NewService(sqlite.NewBlobRepository(mustOpen(t, cfg.DBPath)), nil, nil)
	require.NoError(t, stored.Open(ctx))
	p, err := stored.Get(active.ID)
	require.NoError(t, err)
	require.Len(t, p.TimePoints, 20)
}

func mustOpen(t *testing.T, path string) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
