package analytics

import (
	"strconv"

	"salespulse/internal/sales"
)

// Heatmap counts records per weekday (rows, Monday first) and hour (columns)
type Heatmap struct {
	Weekdays []string   `json:"weekdays"`
	Hours    []int      `json:"hours"`
	Counts   [7][24]int `json:"counts"`
}

// HourWeekdayHeatmap builds the 7x24 record-count grid
func HourWeekdayHeatmap(records []sales.Record) Heatmap {
	h := Heatmap{
		Weekdays: append([]string(nil), sales.WeekdayNames[:]...),
		Hours:    make([]int, 24),
	}
	for i := range h.Hours {
		h.Hours[i] = i
	}
	for i := range records {
		r := &records[i]
		h.Counts[r.Weekday][r.Hour]++
	}
	return h
}

// WeekdayRow is the activity of one weekday
type WeekdayRow struct {
	Index   int         `json:"index"`
	Name    string      `json:"name"`
	Orders  int         `json:"orders"`
	Revenue sales.Money `json:"revenue"`
	Weekend bool        `json:"weekend"`
}

// WeekdayOrders returns distinct orders per weekday, Monday to Sunday.
// All seven days are present.
func WeekdayOrders(records []sales.Record) []WeekdayRow {
	var orders [7]map[string]struct{}
	rows := make([]WeekdayRow, 7)
	for i := range rows {
		rows[i] = WeekdayRow{Index: i, Name: sales.WeekdayName(i), Weekend: i >= 5}
		orders[i] = make(map[string]struct{})
	}
	for i := range records {
		r := &records[i]
		orders[r.Weekday][r.OrderID] = struct{}{}
		rows[r.Weekday].Revenue = rows[r.Weekday].Revenue.Add(r.Revenue)
	}
	for i := range rows {
		rows[i].Orders = len(orders[i])
	}
	return rows
}

// HourPoint is the activity of one hour of the day
type HourPoint struct {
	Hour    int         `json:"hour"`
	Revenue sales.Money `json:"revenue"`
	Orders  int         `json:"orders"`
}

// HourlyRevenue returns revenue and distinct orders for hours 0..23
func HourlyRevenue(records []sales.Record) []HourPoint {
	var orders [24]map[string]struct{}
	points := make([]HourPoint, 24)
	for i := range points {
		points[i].Hour = i
		orders[i] = make(map[string]struct{})
	}
	for i := range records {
		r := &records[i]
		points[r.Hour].Revenue = points[r.Hour].Revenue.Add(r.Revenue)
		orders[r.Hour][r.OrderID] = struct{}{}
	}
	for i := range points {
		points[i].Orders = len(orders[i])
	}
	return points
}

// PeakHour is the hour with the most distinct orders. Ties go to the hour
// seen first in records; ok is false when records is empty.
func PeakHour(records []sales.Record) (int, bool) {
	g, ok := Top(GroupBy(records, ByHour), MetricOrders)
	if !ok {
		return 0, false
	}
	hour, err := strconv.Atoi(g.Key)
	if err != nil {
		return 0, false
	}
	return hour, true
}

// BestWeekday is the weekday name with the most distinct orders, or "".
func BestWeekday(records []sales.Record) string {
	return TopKey(GroupBy(records, ByWeekday), MetricOrders)
}

// HourMonthPivot is revenue per hour (rows) and month (columns)
type HourMonthPivot struct {
	Months  []string          `json:"months"`
	Revenue [24][]sales.Money `json:"revenue"`
}

// HourByMonth builds the hour x month revenue pivot; months are chronological.
func HourByMonth(records []sales.Record) HourMonthPivot {
	rows := Monthly(records)
	p := HourMonthPivot{Months: make([]string, len(rows))}
	col := make(map[string]int, len(rows))
	for i, m := range rows {
		p.Months[i] = m.YearMonth
		col[m.YearMonth] = i
	}
	for h := range p.Revenue {
		p.Revenue[h] = make([]sales.Money, len(rows))
	}
	for i := range records {
		r := &records[i]
		c := col[r.YearMonth]
		p.Revenue[r.Hour][c] = p.Revenue[r.Hour][c].Add(r.Revenue)
	}
	return p
}
