package analytics

import (
	"salespulse/internal/sales"
)

// Config tunes BuildDashboard
type Config struct {
	TopN                int `yaml:"top_n" envconfig:"TOP_N"`
	AffinityTopN        int `yaml:"affinity_top_n" envconfig:"AFFINITY_TOP_N"`
	MaxBasket           int `yaml:"max_basket" envconfig:"MAX_BASKET"`
	MovingAverageWindow int `yaml:"moving_average_window" envconfig:"MOVING_AVERAGE_WINDOW"`
}

// DefaultConfig returns the dashboard defaults
func DefaultConfig() Config {
	return Config{
		TopN:                10,
		AffinityTopN:        10,
		MaxBasket:           DefaultMaxBasket,
		MovingAverageWindow: DefaultMovingAverageWindow,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TopN <= 0 {
		c.TopN = d.TopN
	}
	if c.AffinityTopN <= 0 {
		c.AffinityTopN = d.AffinityTopN
	}
	if c.MaxBasket <= 0 {
		c.MaxBasket = d.MaxBasket
	}
	if c.MovingAverageWindow <= 0 {
		c.MovingAverageWindow = d.MovingAverageWindow
	}
	return c
}

// Trends are the trend cards of the dashboard
type Trends struct {
	GrowthPct   float64 `json:"growth_pct"`
	PeakHour    *int    `json:"peak_hour"`
	BestWeekday string  `json:"best_weekday"`
	TopProduct  string  `json:"top_product"`
}

// Summary is the executive summary: leaders of each dimension
type Summary struct {
	TopProduct  string `json:"top_product"`
	TopCity     string `json:"top_city"`
	TopState    string `json:"top_state"`
	TopCategory string `json:"top_category"`
}

// Dashboard is the full aggregate battery for one record subset
type Dashboard struct {
	KPIs        KPIs           `json:"kpis"`
	Trends      Trends         `json:"trends"`
	Summary     Summary        `json:"summary"`
	Months      []MonthRow     `json:"months"`
	Daily       []DailyPoint   `json:"daily"`
	Heatmap     Heatmap        `json:"heatmap"`
	Weekdays    []WeekdayRow   `json:"weekdays"`
	Hourly      []HourPoint    `json:"hourly"`
	HourByMonth HourMonthPivot `json:"hour_by_month"`
	TopProducts []Group        `json:"top_products"`
	TopCities   []Group        `json:"top_cities"`
	Categories  []Group        `json:"categories"`
	States      []Group        `json:"states"`
	PriceTiers  []Group        `json:"price_tiers"`
	Batches     []Group        `json:"batches"`
	Events      EventSummary   `json:"events"`
	Affinity    []Pair         `json:"affinity"`
}

// BuildDashboard computes every dashboard table for records.
func BuildDashboard(records []sales.Record, cfg Config) Dashboard {
	cfg = cfg.withDefaults()

	products := GroupBy(records, ByProduct)
	cities := GroupBy(records, ByCity)
	states := GroupBy(records, ByState)
	categories := GroupBy(records, ByCategory)
	months := Monthly(records)

	d := Dashboard{
		KPIs:        Summarize(records),
		Months:      months,
		Daily:       DailyTrend(records, cfg.MovingAverageWindow),
		Heatmap:     HourWeekdayHeatmap(records),
		Weekdays:    WeekdayOrders(records),
		Hourly:      HourlyRevenue(records),
		HourByMonth: HourByMonth(records),
		TopProducts: TopN(products, MetricUnits, cfg.TopN),
		TopCities:   TopN(cities, MetricRevenue, cfg.TopN),
		Categories:  TopN(categories, MetricRevenue, 0),
		States:      TopN(states, MetricRevenue, 0),
		PriceTiers:  tierGroups(records),
		Batches:     GroupBy(records, ByBatch),
		Events:      Events(records),
		Affinity:    Affinity(records, cfg.AffinityTopN, cfg.MaxBasket),
		Summary: Summary{
			TopProduct:  TopKey(products, MetricUnits),
			TopCity:     TopKey(cities, MetricRevenue),
			TopState:    TopKey(states, MetricRevenue),
			TopCategory: TopKey(categories, MetricRevenue),
		},
	}

	d.Trends = Trends{
		GrowthPct:   Growth(months),
		BestWeekday: BestWeekday(records),
		TopProduct:  d.Summary.TopProduct,
	}
	if hour, ok := PeakHour(records); ok {
		d.Trends.PeakHour = &hour
	}
	return d
}

// tierGroups aggregates by price tier in tier order rather than
// first-seen order.
func tierGroups(records []sales.Record) []Group {
	byKey := make(map[string]Group)
	for _, g := range GroupBy(records, ByPriceTier) {
		byKey[g.Key] = g
	}
	out := make([]Group, 0, len(byKey))
	for _, label := range sales.TierLabels() {
		if g, ok := byKey[label]; ok {
			out = append(out, g)
		}
	}
	return out
}
