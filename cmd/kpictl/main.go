// Command kpictl answers dashboard queries against a SuperStore workbook from
// the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"superstore-dashboard/internal/config"
	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/observability"
	"superstore-dashboard/internal/services"
)

const defaultDataset = "Sample - Superstore.xlsx"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// selection carries the persistent filter flags shared by every subcommand.
type selection struct {
	file        string
	region      string
	state       string
	category    string
	subCategory string
	from        string
	to          string
	compare     bool
	kpi         string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	sel := &selection{}

	cmd := &cobra.Command{
		Use:   "kpictl",
		Short: "Query SuperStore sales KPIs",
		Long: `Query SuperStore sales KPIs with the same filters as the web dashboard.

Examples:
  # KPI tiles for the West region with a trailing comparison
  kpictl summary --region West --compare

  # Top 5 products by profit in January 2017
  kpictl top --dimension products --limit 5 --kpi profit --from 2017-01-01 --to 2017-01-31

  # Cascading selector values for a state
  kpictl options --region East --state "New York"

  # Write every dashboard chart as SVG
  kpictl chart --out ./charts`,
		SilenceUsage: true,
	}

	file := os.Getenv("DATASET_FILE")
	if file == "" {
		file = defaultDataset
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&sel.file, "file", file, "Dataset workbook (.xlsx) or CSV export")
	flags.StringVar(&sel.region, "region", models.AllOption, "Region filter")
	flags.StringVar(&sel.state, "state", models.AllOption, "State filter")
	flags.StringVar(&sel.category, "category", models.AllOption, "Category filter")
	flags.StringVar(&sel.subCategory, "sub-category", models.AllOption, "Sub-category filter")
	flags.StringVar(&sel.from, "from", "", "First order date (YYYY-MM-DD), defaults to the earliest")
	flags.StringVar(&sel.to, "to", "", "Last order date (YYYY-MM-DD), defaults to the latest")
	flags.BoolVar(&sel.compare, "compare", false, "Compare with the preceding period of equal length")
	flags.StringVar(&sel.kpi, "kpi", "sales", "Ranking KPI: sales, quantity, profit or margin_rate")
	flags.StringVar(&sel.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newSummaryCmd(sel),
		newTopCmd(sel),
		newOptionsCmd(sel),
		newChartCmd(sel),
	)
	return cmd
}

func (s *selection) filter() (models.Filter, error) {
	from, err := parseDate("from", s.from)
	if err != nil {
		return models.Filter{}, err
	}
	to, err := parseDate("to", s.to)
	if err != nil {
		return models.Filter{}, err
	}
	return models.Filter{
		Region:      s.region,
		State:       s.state,
		Category:    s.category,
		SubCategory: s.subCategory,
		From:        from,
		To:          to,
		Compare:     s.compare,
	}, nil
}

func (s *selection) metric() (models.KPI, error) {
	return models.ParseKPI(strings.ReplaceAll(s.kpi, "_", " "))
}

// load reads the dataset, logging to stderr.
func (s *selection) load(cmd *cobra.Command) (*services.Analytics, error) {
	logger := observability.NewLogger(config.LoggerConfig{Level: s.logLevel, Format: "text"}, cmd.ErrOrStderr())
	analytics := services.NewAnalytics(services.WithLogger(logger))

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	if err := analytics.Load(ctx, s.file); err != nil {
		return nil, err
	}
	logger.Debug("dataset ready", slog.Int("records", analytics.Len()))
	return analytics, nil
}

func parseDate(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: want YYYY-MM-DD", name, value)
	}
	return t, nil
}

// userError rewrites domain errors into the messages the dashboard shows.
func userError(err error) error {
	if errors.Is(err, services.ErrInvalidRange) {
		return errors.New(services.InvalidRangeMessage)
	}
	return err
}
