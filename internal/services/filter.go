package services

import (
	"slices"
	"strings"
	"time"

	"superstore-dashboard/internal/models"
)

// Options returns the cascading selector values for f. Each level lists the
// distinct values left after applying every level above it, so states depend
// on the region, categories on region and state, and so on. The date bounds
// come from the fully filtered set, or from the whole dataset when that set is
// empty.
func (a *Analytics) Options(f models.Filter) models.FilterOptions {
	return options(a.data(), f)
}

func options(data []models.Transaction, f models.Filter) models.FilterOptions {
	regions := make(map[string]struct{})
	states := make(map[string]struct{})
	categories := make(map[string]struct{})
	subCategories := make(map[string]struct{})

	var all, matched dateRange
	for _, tx := range data {
		all.extend(tx.OrderDate)

		addValue(regions, tx.Region)
		if !matchValue(f.Region, tx.Region) {
			continue
		}
		addValue(states, tx.State)
		if !matchValue(f.State, tx.State) {
			continue
		}
		addValue(categories, tx.Category)
		if !matchValue(f.Category, tx.Category) {
			continue
		}
		addValue(subCategories, tx.SubCategory)
		if !matchValue(f.SubCategory, tx.SubCategory) {
			continue
		}
		matched.extend(tx.OrderDate)
	}

	bounds := matched
	if !matched.set {
		bounds = all
	}

	return models.FilterOptions{
		Regions:       sortedKeys(regions),
		States:        sortedKeys(states),
		Categories:    sortedKeys(categories),
		SubCategories: sortedKeys(subCategories),
		MinDate:       bounds.min,
		MaxDate:       bounds.max,
	}
}

// Reconcile drops categorical selections that the cascade no longer offers,
// so a state that is not in the newly selected region falls back to All, and
// returns the options for the corrected filter.
func (a *Analytics) Reconcile(f models.Filter) (models.Filter, models.FilterOptions) {
	data := a.data()
	opts := options(data, f)
	if !offered(opts.Regions, f.Region) {
		f.Region = models.AllOption
		opts = options(data, f)
	}
	if !offered(opts.States, f.State) {
		f.State = models.AllOption
		opts = options(data, f)
	}
	if !offered(opts.Categories, f.Category) {
		f.Category = models.AllOption
		opts = options(data, f)
	}
	if !offered(opts.SubCategories, f.SubCategory) {
		f.SubCategory = models.AllOption
		opts = options(data, f)
	}
	return f, opts
}

func offered(values []string, selected string) bool {
	if models.IsAll(selected) {
		return true
	}
	_, found := slices.BinarySearch(values, strings.TrimSpace(selected))
	return found
}

// dateBounds is the min/max order date of the categorical selection, falling
// back to the whole dataset.
func dateBounds(data []models.Transaction, f models.Filter) models.Period {
	var all, matched dateRange
	for _, tx := range data {
		all.extend(tx.OrderDate)
		if matchCategorical(tx, f) {
			matched.extend(tx.OrderDate)
		}
	}
	if matched.set {
		return models.Period{From: matched.min, To: matched.max}
	}
	return models.Period{From: all.min, To: all.max}
}

func selectFrom(data []models.Transaction, f models.Filter) ([]models.Transaction, models.Period, error) {
	period, err := resolvePeriod(f, dateBounds(data, f))
	if err != nil {
		return nil, models.Period{}, err
	}
	return selectRange(data, f, period), period, nil
}

func selectRange(data []models.Transaction, f models.Filter, p models.Period) []models.Transaction {
	out := make([]models.Transaction, 0)
	for _, tx := range data {
		if matchCategorical(tx, f) && p.Contains(tx.OrderDate) {
			out = append(out, tx)
		}
	}
	return out
}

func matchCategorical(tx models.Transaction, f models.Filter) bool {
	return matchValue(f.Region, tx.Region) &&
		matchValue(f.State, tx.State) &&
		matchValue(f.Category, tx.Category) &&
		matchValue(f.SubCategory, tx.SubCategory)
}

func matchValue(selected, value string) bool {
	return models.IsAll(selected) || strings.TrimSpace(selected) == value
}

func addValue(set map[string]struct{}, v string) {
	if v != "" {
		set[v] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

type dateRange struct {
	min, max time.Time
	set      bool
}

func (r *dateRange) extend(t time.Time) {
	if t.IsZero() {
		return
	}
	if !r.set || t.Before(r.min) {
		r.min = t
	}
	if !r.set || t.After(r.max) {
		r.max = t
	}
	r.set = true
}
