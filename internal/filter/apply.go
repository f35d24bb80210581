package filter

import (
	"fmt"
	"time"

	"salespulse/internal/sales"
)

// Predicate reports whether a record passes one filter dimension
type Predicate func(r *sales.Record) bool

// Compile converts r into its predicates. Unconstrained dimensions produce no
// predicate, so an empty request compiles to an empty list.
func Compile(r Request) ([]Predicate, error) {
	r = r.Normalize()
	var preds []Predicate

	if v := r.State; v != "" {
		preds = append(preds, func(rec *sales.Record) bool { return rec.StateName == v })
	}
	if v := r.City; v != "" {
		preds = append(preds, func(rec *sales.Record) bool { return rec.City == v })
	}
	if v := r.Month; v != "" {
		preds = append(preds, func(rec *sales.Record) bool { return rec.MonthName == v })
	}
	if v := r.Weekday; v != "" {
		preds = append(preds, func(rec *sales.Record) bool { return rec.WeekdayName == v })
	}
	if v := r.Quarter; v != 0 {
		preds = append(preds, func(rec *sales.Record) bool { return rec.Quarter == v })
	}
	if v := r.Category; v != "" {
		preds = append(preds, func(rec *sales.Record) bool { return rec.Category == v })
	}
	if v := r.PriceTier; v != "" {
		preds = append(preds, func(rec *sales.Record) bool { return rec.PriceTier == v })
	}
	if r.Start != "" {
		start, err := time.Parse(sales.DateLayout, r.Start)
		if err != nil {
			return nil, fmt.Errorf("parse start date: %w", err)
		}
		preds = append(preds, func(rec *sales.Record) bool { return !rec.Date.Before(start) })
	}
	if r.End != "" {
		end, err := time.Parse(sales.DateLayout, r.End)
		if err != nil {
			return nil, fmt.Errorf("parse end date: %w", err)
		}
		preds = append(preds, func(rec *sales.Record) bool { return !rec.Date.After(end) })
	}
	return preds, nil
}

// Match reports whether rec passes every predicate
func Match(rec *sales.Record, preds []Predicate) bool {
	for _, p := range preds {
		if !p(rec) {
			return false
		}
	}
	return true
}

// Apply returns the records matching r as a new, never nil, slice.
func Apply(records []sales.Record, r Request) ([]sales.Record, error) {
	preds, err := Compile(r)
	if err != nil {
		return nil, err
	}
	out := make([]sales.Record, 0, len(records))
	for i := range records {
		if Match(&records[i], preds) {
			out = append(out, records[i])
		}
	}
	return out, nil
}
