package analytics

import (
	"sort"

	"salespulse/internal/sales"
)

// MonthRow is one row of the month-over-month comparison table
type MonthRow struct {
	YearMonth string      `json:"year_month"`
	Month     int         `json:"month"`
	MonthName string      `json:"month_name"`
	Revenue   sales.Money `json:"revenue"`
	Orders    int         `json:"orders"`
	Units     int64       `json:"units"`
	// ChangePct is the revenue change against the previous row; 0 for the
	// first row or when the previous revenue is zero.
	ChangePct float64     `json:"change_pct"`
}

// Monthly aggregates records per calendar month in chronological order.
func Monthly(records []sales.Record) []MonthRow {
	groups := GroupBy(records, ByYearMonth)
	first := make(map[string]*sales.Record, len(groups))
	for i := range records {
		if _, ok := first[records[i].YearMonth]; !ok {
			first[records[i].YearMonth] = &records[i]
		}
	}

	rows := make([]MonthRow, len(groups))
	for i, g := range groups {
		r := first[g.Key]
		rows[i] = MonthRow{
			YearMonth: g.Key,
			Month:     r.Month,
			MonthName: r.MonthName,
			Revenue:   g.Revenue,
			Orders:    g.Orders,
			Units:     g.Units,
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].YearMonth < rows[j].YearMonth })

	for i := 1; i < len(rows); i++ {
		rows[i].ChangePct = percentChange(rows[i-1].Revenue, rows[i].Revenue)
	}
	return rows
}

// Growth is the revenue change from the first to the last month in percent.
// It is 0 with fewer than two months or a zero first month.
func Growth(rows []MonthRow) float64 {
	if len(rows) < 2 {
		return 0
	}
	return percentChange(rows[0].Revenue, rows[len(rows)-1].Revenue)
}

func percentChange(from, to sales.Money) float64 {
	if from.Sign() <= 0 {
		return 0
	}
	return to.Sub(from).Ratio(from) * 100
}
