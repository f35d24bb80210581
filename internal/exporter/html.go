package exporter

import (
	"fmt"
	"html/template"
	"io"
	"time"
)

var reportFuncs = template.FuncMap{
	"money": DisplayMoney,
	"count": func(i int) string { return displayInt(i) },
	"units": func(i int64) string { return displayInt(i) },
	"pct":   func(f float64) string { return formatPct(f) + "%" },
	"stamp": func(t time.Time) string { return t.Format("2006-01-02 15:04:05 MST") },
	"inc":   func(i int) int { return i + 1 },
}

var reportTemplate = template.Must(template.New("report").Funcs(reportFuncs).Parse(reportHTML))

// WriteHTML renders the report as a standalone HTML document.
func WriteHTML(w io.Writer, report Report) error {
	if err := reportTemplate.Execute(w, report); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

const reportHTML = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: right; }
th:first-child, td:first-child { text-align: left; }
.kpis { display: flex; gap: 1em; flex-wrap: wrap; margin-bottom: 1.5em; }
.kpi { border: 1px solid #ccc; padding: 0.6em 1em; min-width: 9em; }
.kpi span { display: block; font-size: 0.8em; color: #666; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Periodo: {{.Period}} &middot; Filas: {{count .Rows}}{{if .Filter}} &middot; Filtro: {{.Filter}}{{end}}</p>
<p>Generado: {{stamp .GeneratedAt}}</p>
{{with .Dashboard}}
<div class="kpis">
<div class="kpi"><span>Ventas</span>$ {{money .KPIs.Revenue}}</div>
<div class="kpi"><span>Pedidos</span>{{count .KPIs.Orders}}</div>
<div class="kpi"><span>Unidades</span>{{units .KPIs.Units}}</div>
<div class="kpi"><span>Ticket promedio</span>$ {{money .KPIs.TicketAverage}}</div>
<div class="kpi"><span>Ciudades</span>{{count .KPIs.Cities}}</div>
<div class="kpi"><span>Estados</span>{{count .KPIs.States}}</div>
<div class="kpi"><span>Crecimiento</span>{{pct .Trends.GrowthPct}}</div>
</div>

<h2>Ventas por mes</h2>
<table>
<tr><th>Mes</th><th>Ventas</th><th>Pedidos</th><th>Unidades</th><th>Variación</th></tr>
{{range .Months}}<tr><td>{{.MonthName}} {{.YearMonth}}</td><td>{{money .Revenue}}</td><td>{{count .Orders}}</td><td>{{units .Units}}</td><td>{{pct .ChangePct}}</td></tr>
{{else}}<tr><td colspan="5">Sin datos</td></tr>
{{end}}</table>

<h2>Productos principales</h2>
<table>
<tr><th>#</th><th>Producto</th><th>Unidades</th><th>Ventas</th></tr>
{{range $i, $g := .TopProducts}}<tr><td>{{inc $i}}</td><td>{{$g.Key}}</td><td>{{units $g.Units}}</td><td>{{money $g.Revenue}}</td></tr>
{{else}}<tr><td colspan="4">Sin datos</td></tr>
{{end}}</table>

<h2>Ciudades principales</h2>
<table>
<tr><th>#</th><th>Ciudad</th><th>Ventas</th><th>Pedidos</th></tr>
{{range $i, $g := .TopCities}}<tr><td>{{inc $i}}</td><td>{{$g.Key}}</td><td>{{money $g.Revenue}}</td><td>{{count $g.Orders}}</td></tr>
{{else}}<tr><td colspan="4">Sin datos</td></tr>
{{end}}</table>

<h2>Eventos especiales</h2>
<table>
<tr><th>Evento</th><th>Ventas</th><th>Venta media</th><th>Pedidos</th><th>Variación vs. normal</th></tr>
{{range .Events.Rows}}<tr><td>{{.Name}}</td><td>{{money .Revenue}}</td><td>{{money .MeanRevenue}}</td><td>{{count .Orders}}</td><td>{{pct .VariationPct}}</td></tr>
{{else}}<tr><td colspan="5">Sin eventos</td></tr>
{{end}}</table>
{{end}}
</body>
</html>
`
