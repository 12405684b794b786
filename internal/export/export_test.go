package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rpggio/rerx/internal/domain/project"
	"github.com/rpggio/rerx/internal/domain/score"
	"github.com/rpggio/rerx/internal/domain/snapshot"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func snap(t *testing.T, id, date string) snapshot.Snapshot {
	t.Helper()
	s, err := snapshot.New(id, snapshot.FormState{
		Label:      id,
		Date:       date,
		Metrics:    score.DefaultMetrics(),
		Indicators: []score.Indicator{{ID: 1, Name: "Soil", Value: 6}},
	}, time.Now())
	require.NoError(t, err)
	return s
}

func TestWriteWorkbook(t *testing.T) {
	projects := []project.Project{
		{ID: "a", Name: "Farm", TimePoints: []snapshot.Snapshot{snap(t, "late", "2026-02-01"), snap(t, "early", "2026-01-01")}},
		{ID: "b", Name: "farm"},
		{ID: "c", Name: "a/b:c"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, projects))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"Farm", "farm (2)", "a_b_c"}, f.GetSheetList())

	rows, err := f.GetRows("Farm")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, Columns(), rows[0])
	require.Equal(t, "early", rows[1][1])
	require.Equal(t, "late", rows[2][1])
	require.Equal(t, "Soil=6", rows[1][len(rows[1])-1])

	rows, err = f.GetRows("farm (2)")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestSheetName_Truncates(t *testing.T) {
	used := map[string]int{}
	long := strings.Repeat("x", 40)

	first := sheetName(long, used)
	second := sheetName(long, used)
	require.Len(t, first, maxSheetName)
	require.Len(t, second, maxSheetName)
	require.NotEqual(t, first, second)
	require.Equal(t, "Project", sheetName("  ", used))
}
