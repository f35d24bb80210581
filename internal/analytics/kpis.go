package analytics

import "salespulse/internal/sales"

// KPIs are the headline figures of a record subset
type KPIs struct {
	Revenue       sales.Money `json:"revenue"`
	Orders        int         `json:"orders"`
	Units         int64       `json:"units"`
	Records       int         `json:"records"`
	TicketAverage sales.Money `json:"ticket_average"`
	Cities        int         `json:"cities"`
	States        int         `json:"states"`
	Categories    int         `json:"categories"`
	// RevenueShare is the subset revenue as a percentage of a base total,
	// filled in by WithShare.
	RevenueShare  float64     `json:"revenue_share"`
}

// Summarize computes KPIs. TicketAverage is 0 when there are no orders.
func Summarize(records []sales.Record) KPIs {
	orders := make(map[string]struct{})
	cities := make(map[string]struct{})
	states := make(map[string]struct{})
	categories := make(map[string]struct{})

	var k KPIs
	for i := range records {
		r := &records[i]
		k.Revenue = k.Revenue.Add(r.Revenue)
		k.Units += r.Quantity
		orders[r.OrderID] = struct{}{}
		cities[r.City] = struct{}{}
		states[r.StateName] = struct{}{}
		categories[r.Category] = struct{}{}
	}
	k.Records = len(records)
	k.Orders = len(orders)
	k.Cities = len(cities)
	k.States = len(states)
	k.Categories = len(categories)
	k.TicketAverage = k.Revenue.DivInt(int64(k.Orders))
	return k
}

// WithShare sets RevenueShare relative to base revenue
func (k KPIs) WithShare(base sales.Money) KPIs {
	k.RevenueShare = k.Revenue.Ratio(base) * 100
	return k
}
