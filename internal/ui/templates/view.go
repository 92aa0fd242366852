package templates

import (
	"net/url"
	"strconv"

	"superstore-dashboard/internal/charts"
	"superstore-dashboard/internal/format"
	"superstore-dashboard/internal/models"
)

// FilterState is the sidebar selection as the browser holds it.
type FilterState struct {
	Region      string
	State       string
	Category    string
	SubCategory string
	From        string
	To          string
	Compare     bool
	KPI         string
}

// Query encodes the state as the query string the data endpoints accept.
func (s FilterState) Query() string {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" && !models.IsAll(val) {
			v.Set(key, val)
		}
	}
	set("region", s.Region)
	set("state", s.State)
	set("category", s.Category)
	set("sub_category", s.SubCategory)
	if s.From != "" {
		v.Set("from", s.From)
	}
	if s.To != "" {
		v.Set("to", s.To)
	}
	if s.Compare {
		v.Set("compare", strconv.FormatBool(true))
	}
	if s.KPI != "" {
		v.Set("kpi", s.KPI)
	}
	return v.Encode()
}

type Select struct {
	ID      string
	Label   string
	Signal  string
	Options []string
	Value   string
}

type Tile struct {
	Title string
	Value string
	Delta string
	Trend string
}

type ChartSlot struct {
	ID    string
	Title string
	Src   string
}

type SunburstGroup struct {
	Category string
	Sales    string
	Leaves   []SunburstLeaf
}

type SunburstLeaf struct {
	SubCategory string
	Value       string
	Share       string
}

// DashboardView is everything the page and its fragments render.
type DashboardView struct {
	Filters        FilterState
	Selects        []Select
	MinDate        string
	MaxDate        string
	KPIs           []string
	Tiles          []Tile
	Period         string
	PreviousPeriod string
	Charts         []ChartSlot
	Sunburst       []SunburstGroup
	Warning        string
	Error          string
}

// NewDashboardView assembles the view for one filter state. snap may be nil
// when the filter itself was rejected; errMsg is then shown in its place.
func NewDashboardView(state FilterState, opts models.FilterOptions, snap *models.Snapshot, errMsg string) DashboardView {
	view := DashboardView{
		Filters: state,
		Selects: []Select{
			{ID: "region", Label: "Region", Signal: "region", Options: withAll(opts.Regions), Value: orAll(state.Region)},
			{ID: "state", Label: "State", Signal: "state", Options: withAll(opts.States), Value: orAll(state.State)},
			{ID: "category", Label: "Category", Signal: "category", Options: withAll(opts.Categories), Value: orAll(state.Category)},
			{ID: "sub-category", Label: "Sub-Category", Signal: "subCategory", Options: withAll(opts.SubCategories), Value: orAll(state.SubCategory)},
		},
		KPIs:  kpiNames(),
		Error: errMsg,
	}
	if !opts.MinDate.IsZero() {
		view.MinDate = opts.MinDate.Format(models.DateLayout)
		view.MaxDate = opts.MaxDate.Format(models.DateLayout)
	}
	if view.Filters.From == "" {
		view.Filters.From = view.MinDate
	}
	if view.Filters.To == "" {
		view.Filters.To = view.MaxDate
	}

	if snap == nil {
		view.Tiles = NewTiles(models.KPISummary{})
		return view
	}

	view.Filters.KPI = snap.KPI.String()
	view.Tiles = NewTiles(snap.Summary)
	view.Period = snap.Summary.CurrentPeriod.String()
	if p := snap.Summary.PreviousPeriod; p != nil {
		view.PreviousPeriod = p.String()
	}
	view.Warning = snap.Warning
	if snap.Warning != "" {
		return view
	}

	query := view.Filters.Query()
	for _, kind := range charts.Kinds {
		view.Charts = append(view.Charts, ChartSlot{
			ID:    "chart-" + string(kind),
			Title: kind.Title(snap.KPI),
			Src:   "/charts/" + string(kind) + ".svg?" + query,
		})
	}
	view.Sunburst = NewSunburst(snap.Sunburst, snap.KPI)
	return view
}

// NewTiles renders the four KPI tiles, with deltas when the summary carries a
// comparison.
func NewTiles(s models.KPISummary) []Tile {
	cur := models.Measures{Sales: s.Current.Sales, Quantity: s.Current.Quantity, Profit: s.Current.Profit}
	tiles := make([]Tile, 0, len(models.AllKPIs))
	for _, kpi := range models.AllKPIs {
		tile := Tile{Title: tileTitle(kpi), Value: format.Value(kpi, kpi.Value(cur))}
		if d, ok := s.Deltas[kpi]; ok {
			tile.Delta = format.Delta(kpi, d)
			tile.Trend = format.Trend(d)
		}
		tiles = append(tiles, tile)
	}
	return tiles
}

// NewSunburst groups the leaves under their category, keeping input order.
func NewSunburst(nodes []models.SunburstNode, kpi models.KPI) []SunburstGroup {
	var groups []SunburstGroup
	totals := make(map[string]float64)
	for _, n := range nodes {
		totals[n.Category] += n.Sales
	}

	index := make(map[string]int)
	for _, n := range nodes {
		i, ok := index[n.Category]
		if !ok {
			i = len(groups)
			index[n.Category] = i
			groups = append(groups, SunburstGroup{
				Category: n.Category,
				Sales:    format.Currency(totals[n.Category]),
			})
		}
		share := 0.0
		if t := totals[n.Category]; t != 0 {
			share = n.Sales / t
		}
		m := models.Measures{Sales: n.Sales, Quantity: n.Quantity, Profit: n.Profit}
		groups[i].Leaves = append(groups[i].Leaves, SunburstLeaf{
			SubCategory: n.SubCategory,
			Value:       format.Value(kpi, kpi.Value(m)),
			Share:       format.Percent(share),
		})
	}
	return groups
}

func tileTitle(kpi models.KPI) string {
	if kpi == models.KPIQuantity {
		return "Quantity Sold"
	}
	return kpi.String()
}

func kpiNames() []string {
	names := make([]string, 0, len(models.AllKPIs))
	for _, k := range models.AllKPIs {
		names = append(names, k.String())
	}
	return names
}

func withAll(values []string) []string {
	return append([]string{models.AllOption}, values...)
}

func orAll(v string) string {
	if models.IsAll(v) {
		return models.AllOption
	}
	return v
}
