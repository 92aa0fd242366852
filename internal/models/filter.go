package models

import (
	"strings"
	"time"
)

// AllOption is the selector value that disables a categorical filter.
const AllOption = "All"

const DateLayout = "2006-01-02"

type Filter struct {
	Region      string
	State       string
	Category    string
	SubCategory string
	From        time.Time
	To          time.Time
	Compare     bool
}

// IsAll reports whether a categorical selection means "no constraint".
func IsAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, AllOption)
}

// Categorical returns the filter without its date range.
func (f Filter) Categorical() Filter {
	return Filter{
		Region:      f.Region,
		State:       f.State,
		Category:    f.Category,
		SubCategory: f.SubCategory,
	}
}

type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Days is the inclusive calendar-day length of the period.
func (p Period) Days() int {
	return int((p.To.Unix()-p.From.Unix())/86400) + 1
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.From) && !t.After(p.To)
}

func (p Period) String() string {
	return p.From.Format(DateLayout) + " to " + p.To.Format(DateLayout)
}

type Delta struct {
	Absolute float64  `json:"absolute"`
	Percent  *float64 `json:"percent,omitempty"`
}

type KPITotals struct {
	Sales      float64 `json:"sales"`
	Quantity   int     `json:"quantity"`
	Profit     float64 `json:"profit"`
	MarginRate float64 `json:"margin_rate"`
}

func TotalsOf(m Measures) KPITotals {
	return KPITotals{
		Sales:      m.Sales,
		Quantity:   m.Quantity,
		Profit:     m.Profit,
		MarginRate: m.MarginRate(),
	}
}

func (t KPITotals) Measures() Measures {
	return Measures{Sales: t.Sales, Quantity: t.Quantity, Profit: t.Profit}
}

type KPISummary struct {
	Current        KPITotals     `json:"current"`
	CurrentPeriod  Period        `json:"current_period"`
	Previous       *KPITotals    `json:"previous,omitempty"`
	PreviousPeriod *Period       `json:"previous_period,omitempty"`
	Deltas         map[KPI]Delta `json:"deltas,omitempty"`
	Empty          bool          `json:"empty"`
}

type FilterOptions struct {
	Regions       []string  `json:"regions"`
	States        []string  `json:"states"`
	Categories    []string  `json:"categories"`
	SubCategories []string  `json:"sub_categories"`
	MinDate       time.Time `json:"min_date"`
	MaxDate       time.Time `json:"max_date"`
}

// Snapshot holds every section the dashboard renders for one filter state.
type Snapshot struct {
	KPI        KPI            `json:"kpi"`
	Summary    KPISummary     `json:"summary"`
	TimeSeries []TimePoint    `json:"time_series"`
	Regions    []GroupRow     `json:"regions"`
	States     []GroupRow     `json:"states"`
	Categories []GroupRow     `json:"categories"`
	Products   []GroupRow     `json:"products"`
	Sunburst   []SunburstNode `json:"sunburst"`
	Warning    string         `json:"warning,omitempty"`
}
