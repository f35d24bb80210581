package filter

import (
	"sort"

	"salespulse/internal/sales"
)

// Options are the values a client can pick from for each filter
type Options struct {
	States     []string `json:"states"`
	Cities     []string `json:"cities"`
	Months     []string `json:"months"`
	Weekdays   []string `json:"weekdays"`
	Quarters   []int    `json:"quarters"`
	Categories []string `json:"categories"`
	PriceTiers []string `json:"price_tiers"`
	MinDate    string   `json:"min_date,omitempty"`
	MaxDate    string   `json:"max_date,omitempty"`
}

// BuildOptions lists filter values present in records. Cities are restricted
// to state unless state is unconstrained.
func BuildOptions(records []sales.Record, state string) Options {
	state = normalize(state)
	states := map[string]struct{}{}
	cities := map[string]struct{}{}
	categories := map[string]struct{}{}

	opts := Options{
		Months:     append([]string(nil), sales.MonthNames[:]...),
		Weekdays:   append([]string(nil), sales.WeekdayNames[:]...),
		Quarters:   []int{1, 2, 3, 4},
		PriceTiers: sales.TierLabels(),
	}

	for i := range records {
		r := &records[i]
		states[r.StateName] = struct{}{}
		categories[r.Category] = struct{}{}
		if state == "" || r.StateName == state {
			cities[r.City] = struct{}{}
		}
		if d := r.Date.Format(sales.DateLayout); opts.MinDate == "" || d < opts.MinDate {
			opts.MinDate = d
		}
		if d := r.Date.Format(sales.DateLayout); d > opts.MaxDate {
			opts.MaxDate = d
		}
	}

	opts.States = sortedKeys(states)
	opts.Cities = sortedKeys(cities)
	opts.Categories = sortedKeys(categories)
	return opts
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
