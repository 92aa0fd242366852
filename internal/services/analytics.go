package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"superstore-dashboard/internal/models"
)

const (
	TopStatesLimit   = 10
	TopProductsLimit = 10

	NoDataWarning = "No data available for the selected filters and date range."
)

var tracer = otel.Tracer("superstore-dashboard/services")

// LoadObserver receives the outcome of a dataset read.
type LoadObserver interface {
	ObserveLoad(records int, duration time.Duration)
}

type Option func(*Analytics)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Analytics) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithCacheDir enables the gob cache of parsed rows under dir.
func WithCacheDir(dir string) Option {
	return func(a *Analytics) {
		a.cacheDir = dir
	}
}

func WithLoadObserver(observer LoadObserver) Option {
	return func(a *Analytics) {
		a.observer = observer
	}
}

// Analytics holds the read-only transaction set for the session and answers
// every dashboard query by filtering and aggregating it.
type Analytics struct {
	mu           sync.RWMutex
	transactions []models.Transaction
	source       string
	loadedAt     time.Time
	skipped      int

	cacheDir string
	observer LoadObserver
	logger   *slog.Logger
}

func NewAnalytics(opts ...Option) *Analytics {
	a := &Analytics{
		transactions: []models.Transaction{},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetData installs an in-memory dataset. The slice must not be modified
// afterwards.
func (a *Analytics) SetData(data []models.Transaction) {
	a.install("memory", data, 0)
}

func (a *Analytics) install(source string, data []models.Transaction, skipped int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.transactions = data
	a.source = source
	a.skipped = skipped
	a.loadedAt = time.Now()
}

func (a *Analytics) data() []models.Transaction {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.transactions
}

// Select returns the transactions matching the categorical filter inside the
// resolved date range.
func (a *Analytics) Select(f models.Filter) ([]models.Transaction, models.Period, error) {
	return selectFrom(a.data(), f)
}

func (a *Analytics) KPIs(f models.Filter) (models.KPISummary, error) {
	data := a.data()
	current, period, err := selectFrom(data, f)
	if err != nil {
		return models.KPISummary{}, err
	}
	return summarize(data, f, current, period), nil
}

func (a *Analytics) TimeSeries(f models.Filter, g Granularity) ([]models.TimePoint, error) {
	current, _, err := a.Select(f)
	if err != nil {
		return nil, err
	}
	return timeSeries(current, g), nil
}

func (a *Analytics) Breakdown(f models.Filter, d Dimension, kpi models.KPI, limit int) ([]models.GroupRow, error) {
	current, _, err := a.Select(f)
	if err != nil {
		return nil, err
	}
	return rankRows(groupBy(current, d), kpi, limit), nil
}

func (a *Analytics) Sunburst(f models.Filter) ([]models.SunburstNode, error) {
	current, _, err := a.Select(f)
	if err != nil {
		return nil, err
	}
	return sunburst(current), nil
}

// Snapshot computes every dashboard section for one filter state. Sections
// are independent reads of the same selection and run concurrently.
func (a *Analytics) Snapshot(ctx context.Context, f models.Filter, kpi models.KPI) (*models.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "analytics.Snapshot",
		trace.WithAttributes(attribute.String("kpi", kpi.String())))
	defer span.End()

	data := a.data()
	current, period, err := selectFrom(data, f)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	snap := &models.Snapshot{
		KPI:        kpi,
		Summary:    summarize(data, f, current, period),
		TimeSeries: []models.TimePoint{},
		Regions:    []models.GroupRow{},
		States:     []models.GroupRow{},
		Categories: []models.GroupRow{},
		Products:   []models.GroupRow{},
		Sunburst:   []models.SunburstNode{},
	}
	span.SetAttributes(attribute.Int("selection.records", len(current)))

	if len(current) == 0 {
		snap.Warning = NoDataWarning
		return snap, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	section := func(fn func()) func() error {
		return func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		}
	}

	g.Go(section(func() { snap.TimeSeries = timeSeries(current, GranularityDay) }))
	g.Go(section(func() { snap.Regions = rankRows(groupBy(current, DimensionRegion), kpi, 0) }))
	g.Go(section(func() { snap.States = rankRows(groupBy(current, DimensionState), kpi, TopStatesLimit) }))
	g.Go(section(func() { snap.Categories = rankRows(groupBy(current, DimensionCategory), kpi, 0) }))
	g.Go(section(func() { snap.Products = rankRows(groupBy(current, DimensionProduct), kpi, TopProductsLimit) }))
	g.Go(section(func() { snap.Sunburst = sunburst(current) }))

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Utility method for monitoring
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	data := a.transactions
	stats := map[string]any{
		"record_count": len(data),
		"skipped_rows": a.skipped,
		"source":       a.source,
		"last_loaded":  a.loadedAt,
	}
	a.mu.RUnlock()

	opts := options(data, models.Filter{})
	stats["regions"] = len(opts.Regions)
	stats["states"] = len(opts.States)
	stats["categories"] = len(opts.Categories)
	stats["sub_categories"] = len(opts.SubCategories)
	stats["products"] = len(groupBy(data, DimensionProduct))
	if len(data) > 0 {
		stats["min_date"] = opts.MinDate.Format(models.DateLayout)
		stats["max_date"] = opts.MaxDate.Format(models.DateLayout)
	}
	return stats
}

func (a *Analytics) Len() int {
	return len(a.data())
}
