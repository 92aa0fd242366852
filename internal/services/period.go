package services

import (
	"errors"
	"math"

	"superstore-dashboard/internal/models"
)

// ErrInvalidRange is returned when the requested From date is after To.
var ErrInvalidRange = errors.New("from date is after to date")

// InvalidRangeMessage is the user-facing form of ErrInvalidRange.
const InvalidRangeMessage = "From Date must be earlier than To Date."

// resolvePeriod fills a missing From/To from the selection bounds, checks
// ordering and clamps the range to the bounds. Both ends are inclusive
// calendar days. A range lying wholly outside the bounds is kept as given and
// selects nothing.
func resolvePeriod(f models.Filter, bounds models.Period) (models.Period, error) {
	from := f.From
	if from.IsZero() {
		from = bounds.From
	}
	to := f.To
	if to.IsZero() {
		to = bounds.To
	}

	from, to = truncateDay(from), truncateDay(to)
	if from.After(to) {
		return models.Period{}, ErrInvalidRange
	}
	return clampPeriod(models.Period{From: from, To: to}, bounds), nil
}

func clampPeriod(p, bounds models.Period) models.Period {
	if bounds.From.IsZero() || bounds.To.IsZero() {
		return p
	}
	clamped := p
	if clamped.From.Before(bounds.From) {
		clamped.From = bounds.From
	}
	if clamped.To.After(bounds.To) {
		clamped.To = bounds.To
	}
	if clamped.From.After(clamped.To) {
		return p
	}
	return clamped
}

// PreviousPeriod is the window of the same day count ending the day before p
// starts.
func PreviousPeriod(p models.Period) models.Period {
	n := p.Days()
	return models.Period{
		From: p.From.AddDate(0, 0, -n),
		To:   p.From.AddDate(0, 0, -1),
	}
}

func summarize(data []models.Transaction, f models.Filter, current []models.Transaction, period models.Period) models.KPISummary {
	cur := sum(current)
	summary := models.KPISummary{
		Current:       models.TotalsOf(cur),
		CurrentPeriod: period,
		Empty:         len(current) == 0,
	}

	if !f.Compare {
		return summary
	}

	prevPeriod := PreviousPeriod(period)
	prev := sum(selectRange(data, f, prevPeriod))
	prevTotals := models.TotalsOf(prev)

	summary.Previous = &prevTotals
	summary.PreviousPeriod = &prevPeriod
	summary.Deltas = deltas(cur, prev)
	return summary
}

func deltas(cur, prev models.Measures) map[models.KPI]models.Delta {
	out := make(map[models.KPI]models.Delta, len(models.AllKPIs))
	for _, k := range models.AllKPIs {
		out[k] = NewDelta(k.Value(cur), k.Value(prev))
	}
	return out
}

// NewDelta compares two KPI values. Percent is relative to |prev| and left
// unset when prev is 0.
func NewDelta(cur, prev float64) models.Delta {
	d := models.Delta{Absolute: cur - prev}
	if prev != 0 {
		pct := (cur - prev) / math.Abs(prev) * 100.0
		d.Percent = &pct
	}
	return d
}

func sum(txs []models.Transaction) models.Measures {
	var m models.Measures
	for _, tx := range txs {
		m.Add(tx)
	}
	return m
}
