package charts

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"superstore-dashboard/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("timeseries.svg")
	require.NoError(t, err)
	assert.Equal(t, KindTimeSeries, k)

	k, err = ParseKind("Products")
	require.NoError(t, err)
	assert.Equal(t, KindProducts, k)

	_, err = ParseKind("pie.svg")
	assert.ErrorIs(t, err, ErrUnknownChart)
}

func TestKindTitle(t *testing.T) {
	assert.Equal(t, "Sales Over Time", KindTimeSeries.Title(models.KPISales))
	assert.Equal(t, "Profit by Region", KindRegions.Title(models.KPIProfit))
	assert.Equal(t, "Top 10 States by Quantity", KindStates.Title(models.KPIQuantity))
	assert.Equal(t, "Top 10 Products by Margin Rate", KindProducts.Title(models.KPIMarginRate))
	assert.Equal(t, "Sales by Category and Sub-Category", KindSunburst.Title(models.KPIProfit))
}

func TestTimeSeriesSVG(t *testing.T) {
	points := []models.TimePoint{
		{Date: day("2024-01-01"), Sales: 100, Quantity: 2, Profit: 10},
		{Date: day("2024-01-02"), Sales: 250, Quantity: 5, Profit: -20},
		{Date: day("2024-01-04"), Sales: 80, Quantity: 1, Profit: 8},
	}

	var buf bytes.Buffer
	require.NoError(t, TimeSeries(&buf, "Sales Over Time", points, models.KPISales))
	assert.True(t, strings.Contains(buf.String(), "<svg"))
	assert.Contains(t, buf.String(), "Sales Over Time")
}

func TestTimeSeriesSinglePoint(t *testing.T) {
	points := []models.TimePoint{{Date: day("2024-01-01"), Sales: 100, Quantity: 2, Profit: 10}}

	var buf bytes.Buffer
	require.NoError(t, TimeSeries(&buf, "Quantity Over Time", points, models.KPIQuantity))
	assert.Contains(t, buf.String(), "<svg")
}

func TestBarsSVG(t *testing.T) {
	rows := []models.GroupRow{
		{Key: "West", Sales: 500, Quantity: 10, Profit: 50, MarginRate: 0.1},
		{Key: "East", Sales: 300, Quantity: 6, Profit: -30, MarginRate: -0.1},
	}

	var buf bytes.Buffer
	require.NoError(t, Bars(&buf, "Profit by Region", rows, models.KPIProfit))
	assert.Contains(t, buf.String(), "<svg")
	assert.Contains(t, buf.String(), "West")
}

func TestBarsAllZero(t *testing.T) {
	rows := []models.GroupRow{{Key: "Central"}}

	var buf bytes.Buffer
	require.NoError(t, Bars(&buf, "Sales by Region", rows, models.KPISales))
	assert.Contains(t, buf.String(), "<svg")
}

func TestRingSVG(t *testing.T) {
	nodes := []models.SunburstNode{
		{Category: "Furniture", SubCategory: "Chairs", Sales: 200, Profit: -10},
		{Category: "Technology", SubCategory: "Phones", Sales: 400, Profit: 80},
		{Category: "Technology", SubCategory: "Accessories", Sales: 40, Profit: 8},
	}

	var buf bytes.Buffer
	require.NoError(t, Ring(&buf, "Sales by Category and Sub-Category", nodes))
	assert.Contains(t, buf.String(), "<svg")
	assert.Contains(t, buf.String(), "Technology / Phones")
}

func TestEmptyInput(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, TimeSeries(&buf, "x", nil, models.KPISales), ErrNoData)
	assert.ErrorIs(t, Bars(&buf, "x", nil, models.KPISales), ErrNoData)
	assert.ErrorIs(t, Ring(&buf, "x", nil), ErrNoData)
	assert.ErrorIs(t, Ring(&buf, "x", []models.SunburstNode{{Category: "Furniture", SubCategory: "Chairs"}}), ErrNoData)
}

func TestRenderSnapshot(t *testing.T) {
	snap := &models.Snapshot{
		KPI:        models.KPISales,
		TimeSeries: []models.TimePoint{{Date: day("2024-01-01"), Sales: 1}, {Date: day("2024-01-02"), Sales: 2}},
		Regions:    []models.GroupRow{{Key: "West", Sales: 3}},
		States:     []models.GroupRow{{Key: "California", Sales: 3}},
		Products:   []models.GroupRow{{Key: "A very long product name that needs truncating", Sales: 3}},
		Categories: []models.GroupRow{{Key: "Technology", Sales: 3}},
		Sunburst:   []models.SunburstNode{{Category: "Technology", SubCategory: "Phones", Sales: 3}},
	}

	for _, kind := range Kinds {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, kind, snap), kind)
		assert.Contains(t, buf.String(), "<svg", kind)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short"))
	long := truncate("A very long product name that needs truncating")
	assert.Equal(t, maxLabelRunes, len([]rune(long)))
	assert.True(t, strings.HasSuffix(long, "…"))
}
