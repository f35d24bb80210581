package analytics

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/sales"
	"salespulse/internal/shared/testutil"
)

func keys(groups []Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}

func money(s string) sales.Money { return sales.MustMoney(s) }

func TestSummarize(t *testing.T) {
	k := Summarize(testutil.SampleRecords(t))

	assert.Equal(t, "3215.85", k.Revenue.String())
	assert.Equal(t, 7, k.Orders)
	assert.Equal(t, int64(11), k.Units)
	assert.Equal(t, 8, k.Records)
	assert.Equal(t, "459.41", k.TicketAverage.StringFixed(2))
	assert.Equal(t, 5, k.Cities)
	assert.Equal(t, 4, k.States)
	assert.Equal(t, 7, k.Categories)

	assert.InDelta(t, 50.0, k.WithShare(money("6431.70")).RevenueShare, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	k := Summarize(nil)
	assert.True(t, k.Revenue.IsZero())
	assert.True(t, k.TicketAverage.IsZero(), "ticket average on empty subset is exactly 0")
	assert.Zero(t, k.Orders)
	assert.Zero(t, k.WithShare(sales.Money{}).RevenueShare)
}

func TestAggregateIdentity(t *testing.T) {
	records := testutil.SampleRecords(t)
	var direct sales.Money
	for _, r := range records {
		direct = direct.Add(r.UnitPrice.MulInt(r.Quantity))
	}
	assert.Equal(t, 0, Summarize(records).Revenue.Cmp(direct))

	var grouped sales.Money
	for _, g := range GroupBy(records, ByCategory) {
		grouped = grouped.Add(g.Revenue)
	}
	assert.Equal(t, 0, grouped.Cmp(direct))
}

func TestGroupBy(t *testing.T) {
	records := testutil.SampleRecords(t)

	groups := GroupBy(records, ByCity)
	assert.Equal(t, []string{"San Francisco", "Boston", "Los Angeles", "Dallas", sales.Unknown}, keys(groups),
		"groups keep first-encountered order")

	sf := groups[0]
	assert.Equal(t, "873.90", sf.Revenue.String())
	assert.Equal(t, 2, sf.Orders)
	assert.Equal(t, int64(4), sf.Units)
	assert.Equal(t, 3, sf.Records)
	assert.Equal(t, "291.30", sf.MeanRevenue.StringFixed(2))
	assert.Equal(t, "700", sf.MaxRevenue.String())
	assert.Nil(t, sf.Keys)
}

func TestGroupBy_CompositeKeys(t *testing.T) {
	records := testutil.SampleRecords(t)

	groups := GroupBy(records, ByState, ByCategory)
	require.NotEmpty(t, groups)
	assert.Equal(t, "California | Cables", groups[0].Key)
	assert.Equal(t, []string{"California", "Cables"}, groups[0].Keys)
	assert.Len(t, groups, 8)
}

func TestGroupBy_Empty(t *testing.T) {
	groups := GroupBy(nil, ByProduct)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
	assert.Empty(t, TopN(groups, MetricUnits, 10))
	_, ok := Top(groups, MetricRevenue)
	assert.False(t, ok)
	assert.Equal(t, "", TopKey(groups, MetricRevenue))
}

func TestTopAndTopN(t *testing.T) {
	records := testutil.SampleRecords(t)
	products := GroupBy(records, ByProduct)

	top, ok := Top(products, MetricUnits)
	require.True(t, ok)
	assert.Equal(t, "Wired Headphones", top.Key)

	ranked := TopN(products, MetricUnits, 3)
	assert.Equal(t, []string{"Wired Headphones", "USB-C Charging Cable", "AA Batteries (4-pack)"}, keys(ranked),
		"equal unit counts keep first-encountered order")

	all := TopN(products, MetricUnits, 0)
	assert.Len(t, all, len(products))
	assert.Equal(t, "USB-C Charging Cable", products[0].Key, "input order is untouched")
}

func TestTop_TieKeepsFirstEncountered(t *testing.T) {
	groups := []Group{
		{Key: "b", Revenue: money("10"), Orders: 2},
		{Key: "a", Revenue: money("10"), Orders: 2},
		{Key: "c", Revenue: money("5"), Orders: 3},
	}
	assert.Equal(t, "b", TopKey(groups, MetricRevenue))
	assert.Equal(t, "c", TopKey(groups, MetricOrders))
	assert.Equal(t, []string{"b", "a", "c"}, keys(TopN(groups, MetricRevenue, 5)))
}

func TestParseMetric(t *testing.T) {
	for _, m := range []Metric{MetricRevenue, MetricOrders, MetricUnits, MetricRecords, MetricMeanRevenue} {
		parsed, ok := ParseMetric(m.String())
		assert.True(t, ok)
		assert.Equal(t, m, parsed)
	}
	_, ok := ParseMetric("profit")
	assert.False(t, ok)
}

func TestMonthly(t *testing.T) {
	rows := Monthly(testutil.SampleRecords(t))
	require.Len(t, rows, 3)

	assert.Equal(t, "2019-01", rows[0].YearMonth)
	assert.Equal(t, "Enero", rows[0].MonthName)
	assert.Equal(t, "729.88", rows[0].Revenue.String())
	assert.Equal(t, 2, rows[0].Orders)
	assert.Equal(t, int64(5), rows[0].Units)
	assert.Zero(t, rows[0].ChangePct)

	assert.InDelta(t, (1711.99/729.88-1)*100, rows[1].ChangePct, 1e-6)
	assert.InDelta(t, (773.98/1711.99-1)*100, rows[2].ChangePct, 1e-6)
	assert.InDelta(t, (773.98/729.88-1)*100, Growth(rows), 1e-6)
}

func TestMonthly_Chronological(t *testing.T) {
	records := []sales.Record{
		testutil.NewRecord(t, "1", "iPhone", "1", "700", "01/05/20 10:00", testutil.AddrSF),
		testutil.NewRecord(t, "2", "iPhone", "1", "700", "12/05/19 10:00", testutil.AddrSF),
	}
	rows := Monthly(records)
	require.Len(t, rows, 2)
	assert.Equal(t, "2019-12", rows[0].YearMonth)
	assert.Equal(t, "2020-01", rows[1].YearMonth)
}

func TestGrowth_Guards(t *testing.T) {
	assert.Zero(t, Growth(nil))
	assert.Zero(t, Growth([]MonthRow{{Revenue: money("10")}}))
	assert.Zero(t, Growth([]MonthRow{{Revenue: sales.Money{}}, {Revenue: money("10")}}))
}

func TestDailyTrend(t *testing.T) {
	points := DailyTrend(testutil.SampleRecords(t), 7)
	require.Len(t, points, 7)
	assert.Equal(t, "2019-01-01", points[0].Date)
	assert.Equal(t, "723.90", points[0].Revenue.String())
	for _, p := range points {
		assert.Nil(t, p.MovingAverage, "seven days or fewer get no moving average")
	}
}

func TestDailyTrend_MovingAverage(t *testing.T) {
	var records []sales.Record
	for day := 1; day <= 9; day++ {
		records = append(records, testutil.NewRecord(t, fmt.Sprint(day), "Cable", "1",
			fmt.Sprint(day*10), fmt.Sprintf("04/%02d/19 10:00", day), testutil.AddrSF))
	}
	points := DailyTrend(records, 7)
	require.Len(t, points, 9)
	for i := 0; i < 6; i++ {
		assert.Nil(t, points[i].MovingAverage)
	}
	require.NotNil(t, points[6].MovingAverage)
	assert.Equal(t, 0, points[6].MovingAverage.Cmp(money("40")))
	assert.Equal(t, 0, points[8].MovingAverage.Cmp(money("60")))
}

func TestHeatmapAndWeekdays(t *testing.T) {
	records := testutil.SampleRecords(t)

	h := HourWeekdayHeatmap(records)
	assert.Equal(t, "Lunes", h.Weekdays[0])
	assert.Len(t, h.Hours, 24)
	assert.Equal(t, 2, h.Counts[1][9])
	assert.Equal(t, 1, h.Counts[0][21])
	assert.Equal(t, 1, h.Counts[6][20])

	days := WeekdayOrders(records)
	require.Len(t, days, 7)
	assert.Equal(t, "Lunes", days[0].Name)
	assert.Equal(t, 2, days[0].Orders)
	assert.Equal(t, "29.96", days[0].Revenue.String())
	assert.True(t, days[5].Weekend)
	assert.Equal(t, "Lunes", BestWeekday(records))

	hour, ok := PeakHour(records)
	require.True(t, ok)
	assert.Equal(t, 13, hour, "hours 13 and 20 tie; 13 appears first")

	_, ok = PeakHour(nil)
	assert.False(t, ok)
}

func TestHourlyAndPivot(t *testing.T) {
	records := testutil.SampleRecords(t)

	hourly := HourlyRevenue(records)
	require.Len(t, hourly, 24)
	assert.Equal(t, "723.90", hourly[9].Revenue.String())
	assert.Equal(t, 1, hourly[9].Orders)
	assert.True(t, hourly[0].Revenue.IsZero())

	p := HourByMonth(records)
	assert.Equal(t, []string{"2019-01", "2019-02", "2019-03"}, p.Months)
	assert.Equal(t, "723.90", p.Revenue[9][0].String())
	assert.Equal(t, "1711.99", p.Revenue[13][1].String())
	assert.Equal(t, "173.98", p.Revenue[20][2].String())
}

func TestEvents(t *testing.T) {
	summary := Events(testutil.SampleRecords(t))

	require.Len(t, summary.Rows, 3)
	assert.Equal(t, "San Valentín", summary.Rows[0].Name)
	assert.Equal(t, "Año Nuevo", summary.Rows[1].Name)
	assert.Equal(t, "Día de San Patricio", summary.Rows[2].Name)

	newYear := summary.Rows[1]
	assert.Equal(t, "723.90", newYear.Revenue.String())
	assert.Equal(t, "361.95", newYear.MeanRevenue.StringFixed(2))
	assert.Equal(t, 1, newYear.Orders)
	assert.Equal(t, int64(3), newYear.Units)

	assert.Equal(t, 4, summary.NormalRecords)
	assert.Equal(t, "160.49", summary.NormalMeanRevenue.StringFixed(2))
	assert.InDelta(t, (1700/160.4875-1)*100, summary.Rows[0].VariationPct, 1e-6)
}

func TestEvents_NoNormalBaseline(t *testing.T) {
	records := []sales.Record{
		testutil.NewRecord(t, "1", "Cable", "1", "10", "12/25/19 10:00", testutil.AddrSF),
	}
	summary := Events(records)
	require.Len(t, summary.Rows, 1)
	assert.Zero(t, summary.Rows[0].VariationPct)
	assert.NotNil(t, Events(nil).Rows)
}

func TestAffinity(t *testing.T) {
	records := []sales.Record{
		testutil.NewRecord(t, "1", "iPhone", "1", "700", "05/01/19 10:00", testutil.AddrSF),
		testutil.NewRecord(t, "1", "Lightning Charging Cable", "1", "14.95", "05/01/19 10:00", testutil.AddrSF),
		testutil.NewRecord(t, "1", "Lightning Charging Cable", "1", "14.95", "05/01/19 10:00", testutil.AddrSF),
		testutil.NewRecord(t, "2", "iPhone", "1", "700", "05/02/19 10:00", testutil.AddrSF),
		testutil.NewRecord(t, "2", "Lightning Charging Cable", "2", "14.95", "05/02/19 10:00", testutil.AddrSF),
		testutil.NewRecord(t, "2", "Wired Headphones", "1", "11.99", "05/02/19 10:00", testutil.AddrSF),
		testutil.NewRecord(t, "3", "Google Phone", "1", "600", "05/03/19 10:00", testutil.AddrSF),
	}

	pairs := Affinity(records, 10, 0)
	require.Len(t, pairs, 3)
	assert.Equal(t, Pair{A: "Lightning Charging Cable", B: "iPhone", Orders: 2, Support: 100}, pairs[0],
		"repeated line items count once per order")
	assert.Equal(t, Pair{A: "Wired Headphones", B: "iPhone", Orders: 1, Support: 50}, pairs[1])
	assert.Equal(t, "Lightning Charging Cable", pairs[2].A)
	assert.Equal(t, "Wired Headphones", pairs[2].B)

	assert.Len(t, Affinity(records, 1, 0), 1)
	assert.Empty(t, Affinity(records, 10, 2)[1:], "orders above the basket cap are skipped")
	assert.NotNil(t, Affinity(nil, 10, 0))
}

func TestBuildDashboard(t *testing.T) {
	d := BuildDashboard(testutil.SampleRecords(t), Config{})

	assert.Equal(t, 7, d.KPIs.Orders)
	assert.Equal(t, Summary{
		TopProduct:  "Wired Headphones",
		TopCity:     "Los Angeles",
		TopState:    "California",
		TopCategory: sales.CategoryComputers,
	}, d.Summary)
	assert.Equal(t, "Wired Headphones", d.Trends.TopProduct)
	require.NotNil(t, d.Trends.PeakHour)
	assert.Equal(t, 13, *d.Trends.PeakHour)
	assert.Equal(t, "Lunes", d.Trends.BestWeekday)
	assert.Equal(t, []string{"Los Angeles", "San Francisco", "Boston", sales.Unknown, "Dallas"}, keys(d.TopCities))
	assert.Equal(t, []string{"Económico", "Premium", "Alta Gama", "Lujo"}, keys(d.PriceTiers))
	assert.Equal(t, sales.CategoryComputers, d.Categories[0].Key)
	assert.Len(t, d.Months, 3)
	assert.Len(t, d.Affinity, 1)

	_, err := json.Marshal(d)
	require.NoError(t, err)
}

func TestBuildDashboard_BatchesKeepFileOrder(t *testing.T) {
	records := testutil.SampleRecords(t)
	for i := range records {
		records[i].Batch = records[i].MonthName
	}

	d := BuildDashboard(records, DefaultConfig())

	require.Equal(t, []string{"Enero", "Febrero", "Marzo"}, keys(d.Batches))
	assert.Equal(t, "1711.99", d.Batches[1].Revenue.String())
	assert.Equal(t, 3, d.Batches[2].Orders)
}

func TestBuildDashboard_Empty(t *testing.T) {
	d := BuildDashboard([]sales.Record{}, DefaultConfig())

	assert.True(t, d.KPIs.Revenue.IsZero())
	assert.True(t, d.KPIs.TicketAverage.IsZero())
	assert.Empty(t, d.TopProducts)
	assert.NotNil(t, d.TopProducts)
	assert.Empty(t, d.Months)
	assert.Nil(t, d.Trends.PeakHour)
	assert.Zero(t, d.Trends.GrowthPct)
	assert.Equal(t, Summary{}, d.Summary)
	assert.Len(t, d.Weekdays, 7)
	assert.Empty(t, d.Batches)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"top_products":[]`)
}
