package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/rpggio/rerx/internal/app"
	"github.com/rpggio/rerx/internal/config"
	"github.com/rpggio/rerx/internal/domain/snapshot"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func useTempStore(t *testing.T) config.StoreConfig {
	t.Helper()
	cfg := config.StoreConfig{Backend: config.BackendSQLite, DBPath: filepath.Join(t.TempDir(), "rerx.db")}
	prev := openApp
	openApp = func(ctx context.Context) (*app.App, error) { return app.Open(ctx, cfg, nil) }
	t.Cleanup(func() { openApp = prev })
	return cfg
}

func TestScoreCmd(t *testing.T) {
	out, err := run(t, "score", "--indicator", "6", "--indicator", "8")
	require.NoError(t, err)
	require.Contains(t, out, "reRaw:    41.667")
	require.Contains(t, out, "reLog:    1.630")
	require.Contains(t, out, "rxScaled: 3.864")
	require.Contains(t, out, "quadrant: Unsustainable")

	out, err = run(t, "score", "--metric", "Ω=0.01,X=0.01,Fg=0.01", "--metric", "L=10,I=10,F=10,E=10", "--indicator", "10")
	require.NoError(t, err)
	require.Contains(t, out, "quadrant: Thriving")
}

func TestScoreCmd_BadMetric(t *testing.T) {
	_, err := run(t, "score", "--metric", "Z=1")
	require.ErrorContains(t, err, "unknown factor")

	_, err = run(t, "score", "--metric", "L=high")
	require.ErrorContains(t, err, "factor L")
}

func TestReportAndExport(t *testing.T) {
	cfg := useTempStore(t)
	ctx := context.Background()

	a, err := app.Open(ctx, cfg, nil)
	require.NoError(t, err)
	active, err := a.Projects.Active()
	require.NoError(t, err)
	_, err = a.Projects.SaveSnapshot(ctx, active.ID, snapshot.FormState{Date: "2026-01-01"})
	require.NoError(t, err)
	_, err = a.Projects.SaveSnapshot(ctx, active.ID, snapshot.FormState{Date: "2026-02-01"})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	out, err := run(t, "report")
	require.NoError(t, err)
	require.Contains(t, out, "PROJECT")
	require.Contains(t, out, "My Project")
	require.Contains(t, out, "Degenerative")

	path := filepath.Join(t.TempDir(), "out.xlsx")
	out, err = run(t, "export", "--out", path)
	require.NoError(t, err)
	require.Contains(t, out, path)

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows("My Project")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Contains(t, rows[1][0], "2026-01-01")
}
