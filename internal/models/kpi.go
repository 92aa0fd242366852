package models

import (
	"errors"
	"fmt"
	"strings"
)

type KPI string

const (
	KPISales      KPI = "Sales"
	KPIQuantity   KPI = "Quantity"
	KPIProfit     KPI = "Profit"
	KPIMarginRate KPI = "Margin Rate"
)

var ErrUnknownKPI = errors.New("unknown KPI")

// AllKPIs is the display order of the KPI selector.
var AllKPIs = []KPI{KPISales, KPIQuantity, KPIProfit, KPIMarginRate}

func ParseKPI(s string) (KPI, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sales":
		return KPISales, nil
	case "quantity", "qty":
		return KPIQuantity, nil
	case "profit":
		return KPIProfit, nil
	case "margin rate", "margin", "margin_rate", "margin-rate", "marginrate":
		return KPIMarginRate, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKPI, s)
}

func (k KPI) Value(m Measures) float64 {
	switch k {
	case KPIQuantity:
		return float64(m.Quantity)
	case KPIProfit:
		return m.Profit
	case KPIMarginRate:
		return m.MarginRate()
	default:
		return m.Sales
	}
}

// Slug is the URL- and signal-friendly form of the KPI.
func (k KPI) Slug() string {
	switch k {
	case KPIMarginRate:
		return "margin_rate"
	default:
		return strings.ToLower(string(k))
	}
}

func (k KPI) String() string {
	return string(k)
}
