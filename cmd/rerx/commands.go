package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rpggio/rerx/internal/app"
	"github.com/rpggio/rerx/internal/config"
	"github.com/rpggio/rerx/internal/domain/quadrant"
	"github.com/rpggio/rerx/internal/domain/score"
	"github.com/rpggio/rerx/internal/export"
	"github.com/spf13/cobra"
)

// openApp is replaced in tests.
var openApp = func(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return app.Open(ctx, cfg.Store, logger)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rerx",
		Short:         "Score, classify and forecast regenerative health",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newScoreCmd(), newReportCmd(), newExportCmd())
	return root
}

func newScoreCmd() *cobra.Command {
	var (
		metrics    map[string]string
		indicators []float64
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute Re and Rx for a set of factor scores and indicators",
		Example: `  rerx score --metric L=8 --metric Omega=2 --indicator 6 --indicator 8`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := parseMetrics(metrics)
			if err != nil {
				return err
			}
			inds := make([]score.Indicator, 0, len(indicators))
			for i, v := range indicators {
				inds = append(inds, score.Indicator{ID: i + 1, Value: v}.Normalize())
			}
			s := score.Compute(m, inds)
			label, _ := quadrant.Classify(quadrant.Point{X: s.ReLog, Y: s.RxScaled}.Clamp())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "reRaw:    %s\n", formatScore(s.ReRaw))
			fmt.Fprintf(out, "reLog:    %s\n", formatScore(s.ReLog))
			fmt.Fprintf(out, "rx:       %s\n", formatScore(s.Rx.Rx))
			fmt.Fprintf(out, "rxScaled: %s\n", formatScore(s.RxScaled))
			fmt.Fprintf(out, "quadrant: %s\n", label)
			return nil
		},
	}
	cmd.Flags().StringToStringVar(&metrics, "metric", nil, "factor score as NAME=VALUE (L, I, F, E, X, Fg, Omega); unset factors default to 5")
	cmd.Flags().Float64SliceVar(&indicators, "indicator", nil, "indicator value; repeat for each indicator")
	return cmd
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "List projects with their latest quadrant and forecast",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PROJECT\tSNAPSHOTS\tLATEST\tFORECAST\tACTIVE")
			for _, sum := range a.Projects.List("") {
				latest, next := "-", "-"
				if sum.LatestQuadrant != "" {
					latest = string(sum.LatestQuadrant)
				}
				if f, err := a.Projects.Forecast(sum.ID); err == nil && f != nil {
					next = string(f.Quadrant)
				}
				active := ""
				if sum.Active {
					active = "*"
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", sum.Name, sum.SnapshotCount, latest, next, active)
			}
			return tw.Flush()
		},
	}
}

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every project's snapshots to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := export.WriteWorkbook(f, a.Projects.Projects()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "rerx-export.xlsx", "output file")
	return cmd
}

func parseMetrics(in map[string]string) (score.MetricSet, error) {
	m := score.DefaultMetrics()
	for name, raw := range in {
		f, ok := score.ParseFactor(name)
		if !ok {
			return m, fmt.Errorf("unknown factor %q", name)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return m, fmt.Errorf("factor %s: %w", name, err)
		}
		m = m.With(f, v)
	}
	return m, nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
