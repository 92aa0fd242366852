package format

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"superstore-dashboard/internal/models"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{5.5, "$5.50"},
		{999.999, "$1,000.00"},
		{1234.567, "$1,234.57"},
		{2297200.8603, "$2,297,200.86"},
		{-1234.5, "-$1,234.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Currency(tt.in), "Currency(%v)", tt.in)
	}
}

func TestCount(t *testing.T) {
	assert.Equal(t, "0", Count(0))
	assert.Equal(t, "999", Count(999))
	assert.Equal(t, "37,873", Count(37873))
	assert.Equal(t, "1,234,567", Count(1234567))
	assert.Equal(t, "-1,000", Count(-1000))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "12.50%", Percent(0.125))
	assert.Equal(t, "0.00%", Percent(0))
	assert.Equal(t, "-3.25%", Percent(-0.0325))
}

func TestValue(t *testing.T) {
	assert.Equal(t, "$10.00", Value(models.KPISales, 10))
	assert.Equal(t, "1,200", Value(models.KPIQuantity, 1200))
	assert.Equal(t, "25.00%", Value(models.KPIMarginRate, 0.25))
	assert.Equal(t, "-1,234.6", Number(-1234.56, 1))
}

func TestDelta(t *testing.T) {
	pct := 25.0
	assert.Equal(t, "+$20.00 (+25.00%)", Delta(models.KPISales, models.Delta{Absolute: 20, Percent: &pct}))

	neg := -50.0
	assert.Equal(t, "-5 (-50.00%)", Delta(models.KPIQuantity, models.Delta{Absolute: -5, Percent: &neg}))

	assert.Equal(t, "+$100.00", Delta(models.KPIProfit, models.Delta{Absolute: 100}))
	assert.Equal(t, "+1.50 pp", Delta(models.KPIMarginRate, models.Delta{Absolute: 0.015}))
}

func TestTrend(t *testing.T) {
	assert.Equal(t, "up", Trend(models.Delta{Absolute: 1}))
	assert.Equal(t, "down", Trend(models.Delta{Absolute: -1}))
	assert.Equal(t, "flat", Trend(models.Delta{}))
}
