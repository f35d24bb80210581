package analytics

import (
	"salespulse/internal/sales"
)

// EventRow summarizes the sales of one special event
type EventRow struct {
	Name         string      `json:"name"`
	Revenue      sales.Money `json:"revenue"`
	MeanRevenue  sales.Money `json:"mean_revenue"`
	Orders       int         `json:"orders"`
	Units        int64       `json:"units"`
	Records      int         `json:"records"`
	// VariationPct compares MeanRevenue with the mean revenue of records on
	// normal days; 0 when there are no normal-day records.
	VariationPct float64     `json:"variation_pct"`
}

// EventSummary is the special-event table plus its normal-day baseline
type EventSummary struct {
	Rows              []EventRow  `json:"rows"`
	NormalMeanRevenue sales.Money `json:"normal_mean_revenue"`
	NormalRecords     int         `json:"normal_records"`
}

// Events aggregates records by special event. Normal days are excluded from
// Rows and used as the baseline. Rows are sorted by revenue, descending.
func Events(records []sales.Record) EventSummary {
	summary := EventSummary{Rows: []EventRow{}}
	var events []Group
	for _, g := range GroupBy(records, ByEvent) {
		if g.Key == sales.NormalDay {
			summary.NormalMeanRevenue = g.MeanRevenue
			summary.NormalRecords = g.Records
			continue
		}
		events = append(events, g)
	}

	for _, g := range TopN(events, MetricRevenue, 0) {
		row := EventRow{
			Name:        g.Key,
			Revenue:     g.Revenue,
			MeanRevenue: g.MeanRevenue,
			Orders:      g.Orders,
			Units:       g.Units,
			Records:     g.Records,
		}
		if summary.NormalMeanRevenue.Sign() > 0 {
			row.VariationPct = (g.MeanRevenue.Ratio(summary.NormalMeanRevenue) - 1) * 100
		}
		summary.Rows = append(summary.Rows, row)
	}
	return summary
}
