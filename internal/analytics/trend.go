package analytics

import (
	"sort"

	"salespulse/internal/sales"
)

// DefaultMovingAverageWindow is the window of the daily trend moving average
const DefaultMovingAverageWindow = 7

// DailyPoint is the revenue of one calendar day
type DailyPoint struct {
	Date          string       `json:"date"`
	Revenue       sales.Money  `json:"revenue"`
	Orders        int          `json:"orders"`
	// MovingAverage is the mean revenue over the window ending on this day.
	// Nil until a full window is available, and for series no longer than
	// the window.
	MovingAverage *sales.Money `json:"moving_average"`
}

// DailyTrend returns daily revenue sorted by date.
func DailyTrend(records []sales.Record, window int) []DailyPoint {
	if window <= 0 {
		window = DefaultMovingAverageWindow
	}
	groups := GroupBy(records, ByDate)
	points := make([]DailyPoint, len(groups))
	for i, g := range groups {
		points[i] = DailyPoint{Date: g.Key, Revenue: g.Revenue, Orders: g.Orders}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	if len(points) > window {
		var sum sales.Money
		for i := range points {
			sum = sum.Add(points[i].Revenue)
			if i >= window {
				sum = sum.Sub(points[i-window].Revenue)
			}
			if i >= window-1 {
				avg := sum.DivInt(int64(window))
				points[i].MovingAverage = &avg
			}
		}
	}
	return points
}
