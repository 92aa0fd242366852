// Package format renders KPI values the way the dashboard tiles and the
// kpictl reports show them.
package format

import (
	"strings"

	"github.com/shopspring/decimal"

	"superstore-dashboard/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Currency formats v as dollars with two decimals and thousands separators,
// e.g. "$1,234.57" or "-$12.00".
func Currency(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = group(strings.TrimPrefix(s, "-"))
	if neg && s != "0.00" {
		return "-$" + s
	}
	return "$" + s
}

func Count(n int) string {
	s := decimal.NewFromInt(int64(n)).String()
	if strings.HasPrefix(s, "-") {
		return "-" + group(s[1:])
	}
	return group(s)
}

// Number formats v with the given number of decimal places and separators.
func Number(v float64, places int32) string {
	s := decimal.NewFromFloat(v).StringFixed(places)
	if strings.HasPrefix(s, "-") {
		return "-" + group(s[1:])
	}
	return group(s)
}

// Percent formats a ratio as a percentage, so 0.125 becomes "12.50%".
func Percent(rate float64) string {
	return Number(decimal.NewFromFloat(rate).Mul(hundred).InexactFloat64(), 2) + "%"
}

// Value formats v as the tile for kpi shows it.
func Value(kpi models.KPI, v float64) string {
	switch kpi {
	case models.KPISales, models.KPIProfit:
		return Currency(v)
	case models.KPIQuantity:
		return Count(int(v))
	case models.KPIMarginRate:
		return Percent(v)
	default:
		return Number(v, 2)
	}
}

// Delta renders a period-over-period change, e.g. "+$120.00 (+4.35%)". Margin
// rate changes are shown in percentage points. The relative part is dropped
// when there is no previous value to compare against.
func Delta(kpi models.KPI, d models.Delta) string {
	var abs string
	if kpi == models.KPIMarginRate {
		abs = signed(d.Absolute, Number(d.Absolute*100, 2)) + " pp"
	} else {
		abs = signed(d.Absolute, Value(kpi, d.Absolute))
	}
	if d.Percent == nil {
		return abs
	}
	return abs + " (" + SignedPercent(*d.Percent) + ")"
}

// SignedPercent formats an already scaled percentage with an explicit sign.
func SignedPercent(pct float64) string {
	return signed(pct, Number(pct, 2)+"%")
}

// Trend classifies a delta for styling: "up", "down" or "flat".
func Trend(d models.Delta) string {
	switch {
	case d.Absolute > 0:
		return "up"
	case d.Absolute < 0:
		return "down"
	default:
		return "flat"
	}
}

func signed(v float64, s string) string {
	if v > 0 && !strings.HasPrefix(s, "+") {
		return "+" + s
	}
	return s
}

// group inserts thousands separators into an unsigned decimal string.
func group(s string) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
