package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"superstore-dashboard/internal/models"
)

func TestResolvePeriod(t *testing.T) {
	bounds := models.Period{From: day(2024, 1, 1), To: day(2024, 1, 31)}

	tests := []struct {
		name    string
		filter  models.Filter
		want    models.Period
		wantErr error
	}{
		{
			name:   "defaults to bounds",
			filter: models.Filter{},
			want:   bounds,
		},
		{
			name:   "open end",
			filter: models.Filter{From: day(2024, 1, 10)},
			want:   models.Period{From: day(2024, 1, 10), To: day(2024, 1, 31)},
		},
		{
			name:   "time of day is dropped",
			filter: models.Filter{From: time.Date(2024, 1, 3, 17, 30, 0, 0, time.UTC), To: day(2024, 1, 4)},
			want:   models.Period{From: day(2024, 1, 3), To: day(2024, 1, 4)},
		},
		{
			name:   "single day",
			filter: models.Filter{From: day(2024, 1, 4), To: day(2024, 1, 4)},
			want:   models.Period{From: day(2024, 1, 4), To: day(2024, 1, 4)},
		},
		{
			name:    "from after to",
			filter:  models.Filter{From: day(2024, 1, 5), To: day(2024, 1, 4)},
			wantErr: ErrInvalidRange,
		},
		{
			name:   "clamped to bounds",
			filter: models.Filter{From: day(1000, 1, 1), To: day(2099, 12, 31)},
			want:   bounds,
		},
		{
			name:   "clamped at one end",
			filter: models.Filter{From: day(2023, 6, 1), To: day(2024, 1, 15)},
			want:   models.Period{From: day(2024, 1, 1), To: day(2024, 1, 15)},
		},
		{
			name:   "outside bounds kept",
			filter: models.Filter{From: day(2030, 1, 1), To: day(2030, 1, 31)},
			want:   models.Period{From: day(2030, 1, 1), To: day(2030, 1, 31)},
		},
		{
			name:    "from after to outside bounds",
			filter:  models.Filter{From: day(2030, 1, 1), To: day(1999, 1, 1)},
			wantErr: ErrInvalidRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolvePeriod(tt.filter, bounds)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPreviousPeriod(t *testing.T) {
	tests := []struct {
		name    string
		current models.Period
		want    models.Period
	}{
		{
			name:    "single day",
			current: models.Period{From: day(2024, 3, 1), To: day(2024, 3, 1)},
			want:    models.Period{From: day(2024, 2, 29), To: day(2024, 2, 29)},
		},
		{
			name:    "one week",
			current: models.Period{From: day(2024, 1, 8), To: day(2024, 1, 14)},
			want:    models.Period{From: day(2024, 1, 1), To: day(2024, 1, 7)},
		},
		{
			name:    "crosses year",
			current: models.Period{From: day(2024, 1, 1), To: day(2024, 1, 31)},
			want:    models.Period{From: day(2023, 12, 1), To: day(2023, 12, 31)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PreviousPeriod(tt.current)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.current.Days(), got.Days())
		})
	}
}

func TestPreviousPeriodLongRange(t *testing.T) {
	current := models.Period{From: day(1000, 1, 1), To: day(2020, 12, 31)}
	assert.Equal(t, 372913, current.Days())

	prev := PreviousPeriod(current)
	assert.Equal(t, day(999, 12, 31), prev.To)
	assert.Equal(t, current.Days(), prev.Days())
	assert.Equal(t, current.From.AddDate(0, 0, -current.Days()), prev.From)
}

func TestKPIsCompareClampsToData(t *testing.T) {
	a := newTestAnalytics()

	s, err := a.KPIs(models.Filter{From: day(1000, 1, 1), To: day(2999, 12, 31), Compare: true})
	require.NoError(t, err)
	assert.Equal(t, models.Period{From: day(2023, 12, 28), To: day(2024, 1, 20)}, s.CurrentPeriod)
	require.NotNil(t, s.PreviousPeriod)
	assert.Equal(t, models.Period{From: day(2023, 12, 4), To: day(2023, 12, 27)}, *s.PreviousPeriod)
	assert.Equal(t, s.CurrentPeriod.Days(), s.PreviousPeriod.Days())
}

func TestNewDelta(t *testing.T) {
	d := NewDelta(120, 100)
	assert.InDelta(t, 20.0, d.Absolute, 1e-9)
	require.NotNil(t, d.Percent)
	assert.InDelta(t, 20.0, *d.Percent, 1e-9)

	// Relative to |prev| so improving on a loss reads as growth.
	d = NewDelta(-50, -100)
	assert.InDelta(t, 50.0, d.Absolute, 1e-9)
	require.NotNil(t, d.Percent)
	assert.InDelta(t, 50.0, *d.Percent, 1e-9)

	d = NewDelta(75, 0)
	assert.InDelta(t, 75.0, d.Absolute, 1e-9)
	assert.Nil(t, d.Percent)

	d = NewDelta(0, 0)
	assert.Zero(t, d.Absolute)
	assert.Nil(t, d.Percent)
}

func TestMarginRateZeroSales(t *testing.T) {
	m := models.Measures{Profit: -5}
	assert.Zero(t, m.MarginRate())

	m = sum([]models.Transaction{
		{Sales: 200, Profit: 50},
		{Sales: 300, Profit: -25},
	})
	assert.InDelta(t, 25.0/500.0, m.MarginRate(), 1e-9)
}
