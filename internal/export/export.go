// Package export writes project histories to an xlsx workbook.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/rpggio/rerx/internal/domain/project"
	"github.com/rpggio/rerx/internal/domain/score"
	"github.com/rpggio/rerx/internal/domain/snapshot"
	"github.com/xuri/excelize/v2"
)

// maxSheetName is the Excel limit on sheet name length.
const maxSheetName = 31

// Columns returns the header row of every project sheet.
func Columns() []string {
	cols := []string{"Timestamp", "Label"}
	for _, f := range score.Factors() {
		cols = append(cols, string(f))
	}
	return append(cols, "reRaw", "reLog", "rx", "rxScaled", "Quadrant", "Indicators")
}

// WriteWorkbook writes one sheet per project, snapshots ordered by timestamp.
func WriteWorkbook(w io.Writer, projects []project.Project) error {
	f := excelize.NewFile()
	defer f.Close()

	used := map[string]int{}
	for i, p := range projects {
		name := sheetName(p.Name, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
		if err := writeProject(f, name, p); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeProject(f *excelize.File, sheet string, p project.Project) error {
	header := make([]interface{}, 0, len(Columns()))
	for _, c := range Columns() {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, s := range snapshot.SortByTimestamp(p.TimePoints) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := snapshotRow(s)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write snapshot %s: %w", s.ID, err)
		}
	}
	return nil
}

func snapshotRow(s snapshot.Snapshot) []interface{} {
	row := []interface{}{s.Timestamp.UTC().Format("2006-01-02 15:04"), s.Label}
	for _, f := range score.Factors() {
		row = append(row, s.Metrics.Get(f))
	}
	names := make([]string, 0, len(s.Indicators))
	for _, ind := range s.Indicators {
		names = append(names, fmt.Sprintf("%s=%g", ind.Name, ind.Value))
	}
	return append(row, s.ReRaw, s.ReLog, s.Rx, s.RxScaled, string(s.Quadrant()), strings.Join(names, "; "))
}

// sheetName makes a project name usable as a unique sheet name.
func sheetName(name string, used map[string]int) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if clean == "" {
		clean = "Project"
	}
	clean = truncate(clean, maxSheetName)

	key := strings.ToLower(clean)
	n := used[key]
	used[key] = n + 1
	if n == 0 {
		return clean
	}
	suffix := fmt.Sprintf(" (%d)", n+1)
	out := truncate(clean, maxSheetName-len(suffix)) + suffix
	used[strings.ToLower(out)]++
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
