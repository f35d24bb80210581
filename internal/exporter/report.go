package exporter

import (
	"strconv"
	"time"

	"salespulse/internal/analytics"
	"salespulse/internal/sales"
)

// Report is the document model shared by every export format
type Report struct {
	Title       string
	Filter      string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Rows        int
	GeneratedAt time.Time
	Dashboard   analytics.Dashboard
}

// NewReport builds a report for records. The period is the date span of
// records and is left zero when records is empty.
func NewReport(title string, records []sales.Record, dashboard analytics.Dashboard, now time.Time) Report {
	r := Report{
		Title:       title,
		Rows:        len(records),
		GeneratedAt: now,
		Dashboard:   dashboard,
	}
	for i := range records {
		d := records[i].Date
		if r.PeriodStart.IsZero() || d.Before(r.PeriodStart) {
			r.PeriodStart = d
		}
		if d.After(r.PeriodEnd) {
			r.PeriodEnd = d
		}
	}
	return r
}

// Period formats the covered date span
func (r Report) Period() string {
	if r.PeriodStart.IsZero() {
		return "-"
	}
	return r.PeriodStart.Format(sales.DateLayout) + " / " + r.PeriodEnd.Format(sales.DateLayout)
}

// Table is a named grid of pre-formatted cells
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// Sheet names, also used as table names
const (
	SheetSummary  = "Resumen"
	SheetMonths   = "Meses"
	SheetProducts = "Productos"
	SheetCities   = "Ciudades"
	SheetEvents   = "Eventos"
)

// Tables returns the report tables in document order.
func (r Report) Tables() []Table {
	return []Table{
		r.summaryTable(),
		r.monthsTable(),
		groupTable(SheetProducts, "Producto", r.Dashboard.TopProducts),
		groupTable(SheetCities, "Ciudad", r.Dashboard.TopCities),
		r.eventsTable(),
	}
}

func (r Report) summaryTable() Table {
	k := r.Dashboard.KPIs
	return Table{
		Name:    SheetSummary,
		Headers: []string{"Indicador", "Valor"},
		Rows: [][]string{
			{"Título", r.Title},
			{"Filtro", r.Filter},
			{"Periodo", r.Period()},
			{"Filas", formatInt(int64(r.Rows))},
			{"Generado", r.GeneratedAt.Format(time.RFC3339)},
			{"Ventas", formatMoney(k.Revenue)},
			{"Pedidos", formatInt(int64(k.Orders))},
			{"Unidades", formatInt(k.Units)},
			{"Ticket promedio", formatMoney(k.TicketAverage)},
			{"Ciudades", formatInt(int64(k.Cities))},
			{"Estados", formatInt(int64(k.States))},
			{"Categorías", formatInt(int64(k.Categories))},
			{"Participación %", formatPct(k.RevenueShare)},
		},
	}
}

func (r Report) monthsTable() Table {
	t := Table{
		Name:    SheetMonths,
		Headers: []string{"Año-Mes", "Mes", "Ventas", "Pedidos", "Unidades", "Variación %"},
		Rows:    make([][]string, 0, len(r.Dashboard.Months)),
	}
	for _, m := range r.Dashboard.Months {
		t.Rows = append(t.Rows, []string{
			m.YearMonth,
			m.MonthName,
			formatMoney(m.Revenue),
			formatInt(int64(m.Orders)),
			formatInt(m.Units),
			formatPct(m.ChangePct),
		})
	}
	return t
}

func groupTable(name, keyHeader string, groups []analytics.Group) Table {
	t := Table{
		Name:    name,
		Headers: []string{"#", keyHeader, "Ventas", "Pedidos", "Unidades"},
		Rows:    make([][]string, 0, len(groups)),
	}
	for i, g := range groups {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1),
			g.Key,
			formatMoney(g.Revenue),
			formatInt(int64(g.Orders)),
			formatInt(g.Units),
		})
	}
	return t
}

func (r Report) eventsTable() Table {
	rows := r.Dashboard.Events.Rows
	t := Table{
		Name:    SheetEvents,
		Headers: []string{"Evento", "Ventas", "Venta media", "Pedidos", "Unidades", "Variación %"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, e := range rows {
		t.Rows = append(t.Rows, []string{
			e.Name,
			formatMoney(e.Revenue),
			formatMoney(e.MeanRevenue),
			formatInt(int64(e.Orders)),
			formatInt(e.Units),
			formatPct(e.VariationPct),
		})
	}
	return t
}
