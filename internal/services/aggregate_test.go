package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"superstore-dashboard/internal/models"
)

func TestParseDimension(t *testing.T) {
	tests := map[string]Dimension{
		"region":       DimensionRegion,
		"States":       DimensionState,
		" category ":   DimensionCategory,
		"sub_category": DimensionSubCategory,
		"sub-category": DimensionSubCategory,
		"products":     DimensionProduct,
	}
	for in, want := range tests {
		got, err := ParseDimension(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDimension("country")
	assert.ErrorIs(t, err, ErrUnknownDimension)
}

func TestParseGranularity(t *testing.T) {
	tests := map[string]Granularity{
		"":        GranularityDay,
		"daily":   GranularityDay,
		"Week":    GranularityWeek,
		"monthly": GranularityMonth,
	}
	for in, want := range tests {
		got, err := ParseGranularity(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseGranularity("hourly")
	assert.ErrorIs(t, err, ErrUnknownGranularity)
}

func TestGranularityBucket(t *testing.T) {
	// 2024-01-10 is a Wednesday.
	assert.Equal(t, day(2024, 1, 10), GranularityDay.bucket(day(2024, 1, 10)))
	assert.Equal(t, day(2024, 1, 8), GranularityWeek.bucket(day(2024, 1, 10)))
	assert.Equal(t, day(2024, 1, 8), GranularityWeek.bucket(day(2024, 1, 8)))
	assert.Equal(t, day(2024, 1, 8), GranularityWeek.bucket(day(2024, 1, 14)))
	assert.Equal(t, day(2024, 1, 1), GranularityMonth.bucket(day(2024, 1, 31)))
}

func TestRankRows(t *testing.T) {
	rows := []models.GroupRow{
		{Key: "b", Sales: 10, Quantity: 3, Profit: 1},
		{Key: "a", Sales: 10, Quantity: 1, Profit: 5},
		{Key: "c", Sales: 30, Quantity: 2, Profit: -3},
	}

	got := rankRows(append([]models.GroupRow(nil), rows...), models.KPISales, 0)
	assert.Equal(t, []string{"c", "a", "b"}, keys(got))

	got = rankRows(append([]models.GroupRow(nil), rows...), models.KPIQuantity, 2)
	assert.Equal(t, []string{"b", "c"}, keys(got))

	got = rankRows(append([]models.GroupRow(nil), rows...), models.KPIMarginRate, 1)
	assert.Equal(t, []string{"a"}, keys(got))

	assert.Empty(t, rankRows(nil, models.KPISales, 10))
}

func TestGroupBy(t *testing.T) {
	rows := groupBy(testTransactions(), DimensionSubCategory)
	byKey := make(map[string]models.GroupRow, len(rows))
	for _, r := range rows {
		byKey[r.Key] = r
	}

	require.Len(t, byKey, 4)
	phones := byKey["Phones"]
	assert.InDelta(t, 400.0, phones.Sales, 1e-9)
	assert.Equal(t, 5, phones.Quantity)
	assert.InDelta(t, 80.0, phones.Profit, 1e-9)
	assert.InDelta(t, 0.2, phones.MarginRate, 1e-9)
}

func TestTimeSeriesWeekly(t *testing.T) {
	points := timeSeries(testTransactions(), GranularityWeek)
	require.Len(t, points, 4)
	assert.Equal(t, day(2023, 12, 25), points[0].Date)
	assert.Equal(t, day(2024, 1, 1), points[1].Date)
	assert.Equal(t, day(2024, 1, 8), points[2].Date)
	assert.InDelta(t, 240.0, points[2].Sales, 1e-9)
	assert.Equal(t, day(2024, 1, 15), points[3].Date)
}

func keys(rows []models.GroupRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Key
	}
	return out
}
