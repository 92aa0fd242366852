package services

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"superstore-dashboard/internal/models"
)

var (
	ErrUnknownDimension   = errors.New("unknown dimension")
	ErrUnknownGranularity = errors.New("unknown granularity")
)

type Dimension string

const (
	DimensionRegion      Dimension = "region"
	DimensionState       Dimension = "state"
	DimensionCategory    Dimension = "category"
	DimensionSubCategory Dimension = "sub-category"
	DimensionProduct     Dimension = "product"
)

func ParseDimension(s string) (Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "region", "regions":
		return DimensionRegion, nil
	case "state", "states":
		return DimensionState, nil
	case "category", "categories":
		return DimensionCategory, nil
	case "sub-category", "sub_category", "subcategory", "sub-categories":
		return DimensionSubCategory, nil
	case "product", "products", "product-name", "product_name":
		return DimensionProduct, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDimension, s)
}

func (d Dimension) Label() string {
	switch d {
	case DimensionRegion:
		return "Region"
	case DimensionState:
		return "State"
	case DimensionCategory:
		return "Category"
	case DimensionSubCategory:
		return "Sub-Category"
	default:
		return "Product"
	}
}

func (d Dimension) key(tx models.Transaction) string {
	switch d {
	case DimensionRegion:
		return tx.Region
	case DimensionState:
		return tx.State
	case DimensionCategory:
		return tx.Category
	case DimensionSubCategory:
		return tx.SubCategory
	default:
		return tx.ProductName
	}
}

type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "day", "daily":
		return GranularityDay, nil
	case "week", "weekly":
		return GranularityWeek, nil
	case "month", "monthly":
		return GranularityMonth, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
}

// bucket maps a date to the start of its period. Weeks start on Monday.
func (g Granularity) bucket(t time.Time) time.Time {
	t = truncateDay(t).UTC()
	switch g {
	case GranularityWeek:
		offset := (int(t.Weekday()) + 6) % 7
		return t.AddDate(0, 0, -offset)
	case GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return t
	}
}

func groupBy(txs []models.Transaction, d Dimension) []models.GroupRow {
	groups := make(map[string]*models.Measures)
	for _, tx := range txs {
		k := d.key(tx)
		m, ok := groups[k]
		if !ok {
			m = &models.Measures{}
			groups[k] = m
		}
		m.Add(tx)
	}

	rows := make([]models.GroupRow, 0, len(groups))
	for k, m := range groups {
		rows = append(rows, models.GroupRow{
			Key:        k,
			Sales:      m.Sales,
			Quantity:   m.Quantity,
			Profit:     m.Profit,
			MarginRate: m.MarginRate(),
		})
	}
	return rows
}

// rankRows orders rows by kpi descending, breaking ties by key, and keeps the
// first limit rows when limit is positive.
func rankRows(rows []models.GroupRow, kpi models.KPI, limit int) []models.GroupRow {
	slices.SortFunc(rows, func(a, b models.GroupRow) int {
		if c := cmp.Compare(kpi.Value(b.Measures()), kpi.Value(a.Measures())); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

func timeSeries(txs []models.Transaction, g Granularity) []models.TimePoint {
	buckets := make(map[time.Time]*models.Measures)
	for _, tx := range txs {
		k := g.bucket(tx.OrderDate)
		m, ok := buckets[k]
		if !ok {
			m = &models.Measures{}
			buckets[k] = m
		}
		m.Add(tx)
	}

	points := make([]models.TimePoint, 0, len(buckets))
	for date, m := range buckets {
		points = append(points, models.TimePoint{
			Date:       date,
			Sales:      m.Sales,
			Quantity:   m.Quantity,
			Profit:     m.Profit,
			MarginRate: m.MarginRate(),
		})
	}
	slices.SortFunc(points, func(a, b models.TimePoint) int {
		return a.Date.Compare(b.Date)
	})
	return points
}

func sunburst(txs []models.Transaction) []models.SunburstNode {
	type leaf struct{ category, subCategory string }

	groups := make(map[leaf]*models.Measures)
	for _, tx := range txs {
		k := leaf{tx.Category, tx.SubCategory}
		m, ok := groups[k]
		if !ok {
			m = &models.Measures{}
			groups[k] = m
		}
		m.Add(tx)
	}

	nodes := make([]models.SunburstNode, 0, len(groups))
	for k, m := range groups {
		nodes = append(nodes, models.SunburstNode{
			Category:    k.category,
			SubCategory: k.subCategory,
			Sales:       m.Sales,
			Quantity:    m.Quantity,
			Profit:      m.Profit,
			MarginRate:  m.MarginRate(),
		})
	}
	slices.SortFunc(nodes, func(a, b models.SunburstNode) int {
		if c := cmp.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Sales, a.Sales); c != 0 {
			return c
		}
		return cmp.Compare(a.SubCategory, b.SubCategory)
	})
	return nodes
}
