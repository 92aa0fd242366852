// Package templates renders the dashboard page and the fragments the SSE
// endpoints patch into it.
package templates

import (
	"context"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"
)

const (
	PageTitle = "SuperStore KPI Dashboard"

	datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"
)

var page = template.Must(template.New("page").Parse(`
{{define "filters"}}<aside id="filters" class="sidebar">
<h2>Filters</h2>
{{range .Selects}}<label for="{{.ID}}">{{.Label}}</label>
<select id="{{.ID}}" data-bind="{{.Signal}}" data-on-change="@get('/sse/options')">
{{$v := .Value}}{{range .Options}}<option value="{{.}}"{{if eq . $v}} selected{{end}}>{{.}}</option>
{{end}}</select>
{{end}}<label for="from">From Date</label>
<input id="from" type="date" data-bind="from" value="{{.Filters.From}}" min="{{.MinDate}}" max="{{.MaxDate}}" data-on-change="@get('/sse/dashboard')">
<label for="to">To Date</label>
<input id="to" type="date" data-bind="to" value="{{.Filters.To}}" min="{{.MinDate}}" max="{{.MaxDate}}" data-on-change="@get('/sse/dashboard')">
<label class="checkbox"><input id="compare" type="checkbox" data-bind="compare"{{if .Filters.Compare}} checked{{end}} data-on-change="@get('/sse/dashboard')"> Compare with previous period</label>
</aside>{{end}}

{{define "tiles"}}<section id="kpi-tiles" class="kpi-row">
{{range .Tiles}}<div class="kpi-box">
<div class="kpi-title">{{.Title}}</div>
<div class="kpi-value">{{.Value}}</div>
{{if .Delta}}<div class="kpi-delta {{.Trend}}">{{.Delta}}</div>{{end}}
</div>
{{end}}{{if .Period}}<p class="period">{{.Period}}{{if .PreviousPeriod}} vs {{.PreviousPeriod}}{{end}}</p>{{end}}
</section>{{end}}

{{define "charts"}}<section id="charts">
{{if .Error}}<div class="alert error">{{.Error}}</div>
{{else if .Warning}}<div class="alert warning">{{.Warning}}</div>
{{else}}{{range .Charts}}<figure id="{{.ID}}" class="chart">
<img src="{{.Src}}" alt="{{.Title}}" width="960" height="400">
<figcaption>{{.Title}}</figcaption>
</figure>
{{end}}<div id="sunburst" class="sunburst">
<h3>Sub-Category Detail</h3>
{{range .Sunburst}}<details open>
<summary>{{.Category}} <span>{{.Sales}}</span></summary>
<ul>{{range .Leaves}}<li><span class="leaf">{{.SubCategory}}</span> <span>{{.Value}}</span> <span class="share">{{.Share}}</span></li>{{end}}</ul>
</details>
{{end}}</div>
{{end}}</section>{{end}}

{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<script type="module" src="{{.Script}}"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; display: flex; }
.sidebar { width: 260px; padding: 16px; background: #f5f7fa; min-height: 100vh; }
.sidebar label, .sidebar select, .sidebar input { display: block; width: 100%; margin-bottom: 8px; }
main { flex: 1; padding: 16px; }
.kpi-row { display: flex; gap: 16px; flex-wrap: wrap; }
.kpi-box { border: 1px solid #ddd; border-radius: 8px; padding: 12px 16px; min-width: 180px; }
.kpi-title { font-weight: 600; font-size: 16px; color: #555; }
.kpi-value { font-weight: 700; font-size: 24px; color: #1E90FF; }
.kpi-delta.up { color: #2e7d32; } .kpi-delta.down { color: #c62828; } .kpi-delta.flat { color: #777; }
.alert.warning { background: #fff8e1; padding: 12px; } .alert.error { background: #ffebee; padding: 12px; }
</style>
</head>
<body data-signals='{{.Signals}}'>
{{template "filters" .View}}
<main>
<h1>{{.Title}}</h1>
{{template "tiles" .View}}
<h2>Visualize KPI Across Time, Region, State, &amp; Top Products</h2>
<div id="kpi-select" class="radio">
{{$sel := .View.Filters.KPI}}{{range .View.KPIs}}<label><input type="radio" name="kpi" value="{{.}}" data-bind="kpi"{{if eq . $sel}} checked{{end}} data-on-change="@get('/sse/dashboard')"> {{.}}</label>
{{end}}</div>
{{template "charts" .View}}
</main>
</body>
</html>{{end}}
`))

type pageData struct {
	Title   string
	Script  string
	Signals string
	View    DashboardView
}

// Dashboard is the full page.
func Dashboard(view DashboardView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		signals, err := SignalsJSON(view.Filters)
		if err != nil {
			return err
		}
		return page.ExecuteTemplate(w, "page", pageData{
			Title:   PageTitle,
			Script:  datastarScript,
			Signals: string(signals),
			View:    view,
		})
	})
}

func Filters(view DashboardView) templ.Component {
	return fragment("filters", view)
}

func Tiles(view DashboardView) templ.Component {
	return fragment("tiles", view)
}

// Charts is the chart area, or the warning that replaces it.
func Charts(view DashboardView) templ.Component {
	return fragment("charts", view)
}

func fragment(name string, view DashboardView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return page.ExecuteTemplate(w, name, view)
	})
}

// RenderString renders c into a string for an SSE patch.
func RenderString(ctx context.Context, c templ.Component) (string, error) {
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
