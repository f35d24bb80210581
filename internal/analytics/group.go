package analytics

import (
	"sort"
	"strconv"
	"strings"

	"salespulse/internal/sales"
)

// KeyFunc extracts a grouping key from a record
type KeyFunc func(r *sales.Record) string

// Common grouping keys
var (
	ByProduct   KeyFunc = func(r *sales.Record) string { return r.Product }
	ByCity      KeyFunc = func(r *sales.Record) string { return r.City }
	ByState     KeyFunc = func(r *sales.Record) string { return r.StateName }
	ByCategory  KeyFunc = func(r *sales.Record) string { return r.Category }
	ByPriceTier KeyFunc = func(r *sales.Record) string { return r.PriceTier }
	ByYearMonth KeyFunc = func(r *sales.Record) string { return r.YearMonth }
	ByWeekday   KeyFunc = func(r *sales.Record) string { return r.WeekdayName }
	ByEvent     KeyFunc = func(r *sales.Record) string { return r.SpecialEvent }
	ByBatch     KeyFunc = func(r *sales.Record) string { return r.Batch }
	ByDate      KeyFunc = func(r *sales.Record) string { return r.Date.Format(sales.DateLayout) }
	ByHour      KeyFunc = func(r *sales.Record) string { return strconv.Itoa(r.Hour) }
)

// Group holds the aggregates of one group key
type Group struct {
	Key         string      `json:"key"`
	Keys        []string    `json:"keys,omitempty"`
	Revenue     sales.Money `json:"revenue"`
	Orders      int         `json:"orders"`
	Units       int64       `json:"units"`
	Records     int         `json:"records"`
	MeanRevenue sales.Money `json:"mean_revenue"`
	MaxRevenue  sales.Money `json:"max_revenue"`
}

// keySep joins composite keys in Group.Key
const keySep = " | "

type accumulator struct {
	group  Group
	orders map[string]struct{}
}

func (a *accumulator) add(r *sales.Record) {
	g := &a.group
	g.Revenue = g.Revenue.Add(r.Revenue)
	g.Units += r.Quantity
	if g.Records == 0 || r.Revenue.Cmp(g.MaxRevenue) > 0 {
		g.MaxRevenue = r.Revenue
	}
	g.Records++
	a.orders[r.OrderID] = struct{}{}
}

func (a *accumulator) result() Group {
	g := a.group
	g.Orders = len(a.orders)
	g.MeanRevenue = g.Revenue.DivInt(int64(g.Records))
	return g
}

// GroupBy aggregates records by one or more keys. Groups are returned in the
// order their first record appears.
func GroupBy(records []sales.Record, keys ...KeyFunc) []Group {
	index := make(map[string]int)
	var accs []*accumulator

	parts := make([]string, len(keys))
	for i := range records {
		r := &records[i]
		for k, fn := range keys {
			parts[k] = fn(r)
		}
		key := strings.Join(parts, keySep)

		pos, ok := index[key]
		if !ok {
			pos = len(accs)
			index[key] = pos
			acc := &accumulator{group: Group{Key: key}, orders: make(map[string]struct{})}
			if len(keys) > 1 {
				acc.group.Keys = append([]string(nil), parts...)
			}
			accs = append(accs, acc)
		}
		accs[pos].add(r)
	}

	out := make([]Group, len(accs))
	for i, a := range accs {
		out[i] = a.result()
	}
	return out
}

// Metric selects the aggregate used for ranking
type Metric int

// Ranking metrics
const (
	MetricRevenue Metric = iota
	MetricOrders
	MetricUnits
	MetricRecords
	MetricMeanRevenue
)

func (m Metric) String() string {
	switch m {
	case MetricRevenue:
		return "revenue"
	case MetricOrders:
		return "orders"
	case MetricUnits:
		return "units"
	case MetricRecords:
		return "records"
	case MetricMeanRevenue:
		return "mean_revenue"
	default:
		return "unknown"
	}
}

// ParseMetric maps a metric name back to a Metric
func ParseMetric(s string) (Metric, bool) {
	for m := MetricRevenue; m <= MetricMeanRevenue; m++ {
		if m.String() == s {
			return m, true
		}
	}
	return MetricRevenue, false
}

func cmpInt[T int | int64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Compare orders a and b by metric
func Compare(a, b Group, metric Metric) int {
	switch metric {
	case MetricOrders:
		return cmpInt(a.Orders, b.Orders)
	case MetricUnits:
		return cmpInt(a.Units, b.Units)
	case MetricRecords:
		return cmpInt(a.Records, b.Records)
	case MetricMeanRevenue:
		return a.MeanRevenue.Cmp(b.MeanRevenue)
	default:
		return a.Revenue.Cmp(b.Revenue)
	}
}

// Top returns the group with the largest metric. Ties keep the earlier group.
// ok is false for an empty slice.
func Top(groups []Group, metric Metric) (Group, bool) {
	if len(groups) == 0 {
		return Group{}, false
	}
	best := groups[0]
	for _, g := range groups[1:] {
		if Compare(g, best, metric) > 0 {
			best = g
		}
	}
	return best, true
}

// TopN returns up to n groups in descending metric order; ties keep input
// order. n <= 0 returns every group. The input is not reordered.
func TopN(groups []Group, metric Metric, n int) []Group {
	out := append(make([]Group, 0, len(groups)), groups...)
	sort.SliceStable(out, func(i, j int) bool {
		return Compare(out[i], out[j], metric) > 0
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TopKey is the key of Top, or "" when groups is empty
func TopKey(groups []Group, metric Metric) string {
	g, ok := Top(groups, metric)
	if !ok {
		return ""
	}
	return g.Key
}
