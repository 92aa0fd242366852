package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"superstore-dashboard/internal/charts"
	"superstore-dashboard/internal/format"
	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/services"
)

func newSummaryCmd(sel *selection) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the KPI tiles for the selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := sel.filter()
			if err != nil {
				return err
			}
			analytics, err := sel.load(cmd)
			if err != nil {
				return err
			}
			summary, err := analytics.KPIs(f)
			if err != nil {
				return userError(err)
			}
			return writeSummary(cmd.OutOrStdout(), summary)
		},
	}
}

func writeSummary(out io.Writer, s models.KPISummary) error {
	fmt.Fprintf(out, "Period: %s (%d days)\n", s.CurrentPeriod, s.CurrentPeriod.Days())
	if s.PreviousPeriod != nil {
		fmt.Fprintf(out, "Compared with: %s\n", s.PreviousPeriod)
	}
	if s.Empty {
		fmt.Fprintln(out, services.NoDataWarning)
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	current := s.Current.Measures()
	for _, kpi := range models.AllKPIs {
		line := kpi.String() + "\t" + format.Value(kpi, kpi.Value(current))
		if d, ok := s.Deltas[kpi]; ok {
			line += "\t" + format.Delta(kpi, d)
		}
		fmt.Fprintln(tw, line)
	}
	return tw.Flush()
}

func newTopCmd(sel *selection) *cobra.Command {
	var (
		dimension string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Rank regions, states, categories or products by the KPI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dim, err := services.ParseDimension(dimension)
			if err != nil {
				return err
			}
			kpi, err := sel.metric()
			if err != nil {
				return err
			}
			if limit < 0 {
				return fmt.Errorf("invalid --limit %d: must not be negative", limit)
			}
			f, err := sel.filter()
			if err != nil {
				return err
			}
			analytics, err := sel.load(cmd)
			if err != nil {
				return err
			}
			rows, err := analytics.Breakdown(f, dim, kpi, limit)
			if err != nil {
				return userError(err)
			}
			return writeRanking(cmd.OutOrStdout(), dim, kpi, rows)
		},
	}

	cmd.Flags().StringVar(&dimension, "dimension", "states", "Grouping: regions, states, categories, sub-categories or products")
	cmd.Flags().IntVar(&limit, "limit", 10, "Rows to print, 0 for all")
	return cmd
}

func writeRanking(out io.Writer, dim services.Dimension, kpi models.KPI, rows []models.GroupRow) error {
	if len(rows) == 0 {
		fmt.Fprintln(out, services.NoDataWarning)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "#\t%s\t%s\t\n", dim.Label(), kpi)
	for i, row := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t\n", i+1, row.Key, format.Value(kpi, kpi.Value(row.Measures())))
	}
	return tw.Flush()
}

func newOptionsCmd(sel *selection) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the selector values offered for the current filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := sel.filter()
			if err != nil {
				return err
			}
			analytics, err := sel.load(cmd)
			if err != nil {
				return err
			}
			corrected, opts := analytics.Reconcile(f)
			out := cmd.OutOrStdout()
			if corrected.Categorical() != f.Categorical() {
				fmt.Fprintf(cmd.ErrOrStderr(), "some selections are not available and were reset to %s\n", models.AllOption)
			}
			fmt.Fprintf(out, "Regions: %s\n", strings.Join(opts.Regions, ", "))
			fmt.Fprintf(out, "States: %s\n", strings.Join(opts.States, ", "))
			fmt.Fprintf(out, "Categories: %s\n", strings.Join(opts.Categories, ", "))
			fmt.Fprintf(out, "Sub-Categories: %s\n", strings.Join(opts.SubCategories, ", "))
			if !opts.MinDate.IsZero() {
				fmt.Fprintf(out, "Dates: %s to %s\n", opts.MinDate.Format(models.DateLayout), opts.MaxDate.Format(models.DateLayout))
			}
			return nil
		},
	}
}

func newChartCmd(sel *selection) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Write every dashboard chart for the selection as SVG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kpi, err := sel.metric()
			if err != nil {
				return err
			}
			f, err := sel.filter()
			if err != nil {
				return err
			}
			analytics, err := sel.load(cmd)
			if err != nil {
				return err
			}
			snap, err := analytics.Snapshot(cmd.Context(), f, kpi)
			if err != nil {
				return userError(err)
			}
			if snap.Warning != "" {
				fmt.Fprintln(cmd.OutOrStdout(), snap.Warning)
				return nil
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			for _, kind := range charts.Kinds {
				path := filepath.Join(outDir, string(kind)+".svg")
				if err := writeChart(path, kind, snap); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "charts", "Output directory")
	return cmd
}

func writeChart(path string, kind charts.Kind, snap *models.Snapshot) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := charts.Render(file, kind, snap); err != nil {
		file.Close()
		return fmt.Errorf("render %s: %w", kind, err)
	}
	return file.Close()
}
