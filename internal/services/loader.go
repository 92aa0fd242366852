package services

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"superstore-dashboard/internal/models"
)

const (
	batchSize      = 2000
	maxWorkers     = 10
	cacheVersion   = "v2"
	preferredSheet = "Orders"
)

var (
	ErrNoValidRecords    = errors.New("no valid records found")
	ErrMissingColumns    = errors.New("missing required columns")
	ErrUnsupportedFormat = errors.New("unsupported dataset format")

	errBlankRegion = errors.New("blank region")
)

var requiredColumns = []string{
	"region",
	"state",
	"category",
	"sub-category",
	"product name",
	"order date",
	"sales",
	"quantity",
	"profit",
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"2006/01/02",
}

type cachedDataset struct {
	Transactions []models.Transaction
	Skipped      int
	LastModified time.Time
}

// Load reads the dataset at path once and installs it. A gob cache of the rows
// in the cache directory is reused while it is newer than the source file.
func (a *Analytics) Load(ctx context.Context, path string) error {
	ctx, span := tracer.Start(ctx, "analytics.Load",
		trace.WithAttributes(attribute.String("dataset.path", path)))
	defer span.End()

	start := time.Now()
	if a.cacheDir != "" {
		if cached, err := a.loadFromCache(path); err == nil {
			fileInfo, err := os.Stat(path)
			if err == nil && fileInfo.ModTime().Before(cached.LastModified) {
				a.install(path, cached.Transactions, cached.Skipped)
				a.observeLoad(len(cached.Transactions), time.Since(start))
				span.SetAttributes(attribute.Bool("dataset.cache_hit", true))
				a.logger.Info("loaded from cache", "records", len(cached.Transactions))
				return nil
			}
		}
	}

	a.logger.Info("reading dataset", "path", path)

	transactions, skipped, err := readDataset(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("load dataset: %w", err)
	}
	a.install(path, transactions, skipped)

	if a.cacheDir != "" {
		if err := a.saveToCache(path); err != nil {
			a.logger.Warn("failed to save cache", "error", err)
		}
	}

	duration := time.Since(start)
	a.observeLoad(len(transactions), duration)
	if skipped > 0 {
		a.logger.Warn("skipped unparseable rows", "skipped", skipped)
	}
	span.SetAttributes(attribute.Int("dataset.records", len(transactions)))
	a.logger.Info("dataset loaded",
		"records", len(transactions),
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(len(transactions))/duration.Seconds()))

	return nil
}

func (a *Analytics) observeLoad(records int, duration time.Duration) {
	if a.observer != nil {
		a.observer.ObserveLoad(records, duration)
	}
}

func readDataset(ctx context.Context, path string) ([]models.Transaction, int, error) {
	var (
		rows     [][]string
		date1904 bool
		err      error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, date1904, err = readWorkbook(path)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("empty file")
	}

	cols, err := mapColumns(rows[0])
	if err != nil {
		return nil, 0, err
	}

	transactions, skipped, err := parseRows(ctx, rows[1:], cols, date1904)
	if err != nil {
		return nil, 0, err
	}
	if len(transactions) == 0 {
		return nil, skipped, ErrNoValidRecords
	}
	return transactions, skipped, nil
}

// readWorkbook returns the raw rows of the orders sheet: the sheet named
// "Orders" when present, otherwise the first sheet whose header carries every
// required column.
func readWorkbook(path string) ([][]string, bool, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	sheets := f.GetSheetList()
	candidates := make([]string, 0, len(sheets))
	for _, name := range sheets {
		if strings.EqualFold(strings.TrimSpace(name), preferredSheet) {
			candidates = append([]string{name}, candidates...)
			continue
		}
		candidates = append(candidates, name)
	}

	for _, name := range candidates {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil || len(rows) == 0 {
			continue
		}
		if _, err := mapColumns(rows[0]); err == nil {
			return rows, date1904, nil
		}
	}

	return nil, false, fmt.Errorf("%w: no sheet has an orders header", ErrMissingColumns)
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReaderSize(file, 1024*1024))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

type columnMap map[string]int

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.ReplaceAll(h, "_", " "))
	h = strings.Join(strings.Fields(h), " ")
	switch h {
	case "sub category", "subcategory":
		return "sub-category"
	case "product":
		return "product name"
	}
	return h
}

func mapColumns(header []string) (columnMap, error) {
	cols := make(columnMap, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, seen := cols[key]; !seen {
			cols[key] = i
		}
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return cols, nil
}

func (c columnMap) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

type parsedRow struct {
	tx    models.Transaction
	valid bool
}

// parseRows converts raw rows in fixed-size batches on a bounded worker group.
// Row order is preserved; invalid rows are counted and dropped.
func parseRows(ctx context.Context, rows [][]string, cols columnMap, date1904 bool) ([]models.Transaction, int, error) {
	results := make([]parsedRow, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				tx, err := parseTransaction(rows[i], cols, date1904)
				results[i] = parsedRow{tx: tx, valid: err == nil}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	transactions := make([]models.Transaction, 0, len(rows))
	skipped := 0
	for _, r := range results {
		if !r.valid {
			skipped++
			continue
		}
		transactions = append(transactions, r.tx)
	}
	return transactions, skipped, nil
}

func parseTransaction(row []string, cols columnMap, date1904 bool) (models.Transaction, error) {
	region := cols.get(row, "region")
	if region == "" {
		return models.Transaction{}, errBlankRegion
	}

	orderDate, err := parseOrderDate(cols.get(row, "order date"), date1904)
	if err != nil {
		return models.Transaction{}, err
	}

	sales, err := parseNumber(cols.get(row, "sales"))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("sales: %w", err)
	}

	quantity, err := parseNumber(cols.get(row, "quantity"))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("quantity: %w", err)
	}

	profit, err := parseNumber(cols.get(row, "profit"))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("profit: %w", err)
	}

	return models.Transaction{
		OrderID:     cols.get(row, "order id"),
		OrderDate:   orderDate,
		Region:      region,
		State:       cols.get(row, "state"),
		Category:    cols.get(row, "category"),
		SubCategory: cols.get(row, "sub-category"),
		ProductName: cols.get(row, "product name"),
		Sales:       sales,
		Quantity:    int(math.Round(quantity)),
		Profit:      profit,
	}, nil
}

// parseOrderDate accepts Excel serial numbers and the common textual layouts.
// The result is truncated to the calendar day in UTC.
func parseOrderDate(raw string, date1904 bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty order date")
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			return time.Time{}, fmt.Errorf("order date %q: %w", raw, err)
		}
		return truncateDay(t), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return truncateDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized order date %q", raw)
}

func parseNumber(raw string) (float64, error) {
	raw = strings.NewReplacer("$", "", ",", "").Replace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseFloat(raw, 64)
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Cache management
func (a *Analytics) cacheFilename(path string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_").Replace(path)
	return filepath.Join(a.cacheDir, fmt.Sprintf("%s_%s.gob", name, cacheVersion))
}

func (a *Analytics) saveToCache(path string) error {
	if err := os.MkdirAll(a.cacheDir, 0755); err != nil {
		return err
	}

	file, err := os.Create(a.cacheFilename(path))
	if err != nil {
		return err
	}
	defer file.Close()

	a.mu.RLock()
	defer a.mu.RUnlock()

	return gob.NewEncoder(file).Encode(cachedDataset{
		Transactions: a.transactions,
		Skipped:      a.skipped,
		LastModified: a.loadedAt,
	})
}

func (a *Analytics) loadFromCache(path string) (*cachedDataset, error) {
	file, err := os.Open(a.cacheFilename(path))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var data cachedDataset
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, err
	}
	if len(data.Transactions) == 0 {
		return nil, ErrNoValidRecords
	}
	return &data, nil
}
