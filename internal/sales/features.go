package sales

import (
	"fmt"
	"time"
)

// Features are the fields derived from a Sale. They are computed once and
// never changed afterwards.
type Features struct {
	Revenue      Money     `json:"revenue"`
	Date         time.Time `json:"date"`
	Year         int       `json:"year"`
	Month        int       `json:"month"`
	Day          int       `json:"day"`
	Hour         int       `json:"hour"`
	Minute       int       `json:"minute"`
	Weekday      int       `json:"weekday"`
	ISOWeek      int       `json:"iso_week"`
	Quarter      int       `json:"quarter"`
	DayOfYear    int       `json:"day_of_year"`
	YearMonth    string    `json:"year_month"`
	MonthName    string    `json:"month_name"`
	WeekdayName  string    `json:"weekday_name"`
	IsWeekend    bool      `json:"is_weekend"`
	City         string    `json:"city"`
	StateCode    string    `json:"state_code"`
	StateName    string    `json:"state_name"`
	Category     string    `json:"category"`
	PriceTier    string    `json:"price_tier"`
	SpecialEvent string    `json:"special_event"`
}

// Record is a validated sale together with its derived features
type Record struct {
	Sale
	Features
}

// Deriver computes Features. The zero value is not usable; use NewDeriver
// or DefaultDeriver.
type Deriver struct {
	categories CategoryRules
	events     *EventCalendar
}

// NewDeriver builds a Deriver from explicit category rules and events.
func NewDeriver(categories CategoryRules, events []Event) *Deriver {
	if len(categories) == 0 {
		categories = DefaultCategoryRules
	}
	return &Deriver{
		categories: categories,
		events:     NewEventCalendar(events),
	}
}

var defaultDeriver = NewDeriver(DefaultCategoryRules, DefaultEvents)

// DefaultDeriver returns the Deriver with DefaultCategoryRules and DefaultEvents
func DefaultDeriver() *Deriver {
	return defaultDeriver
}

// Derive enriches s using the default tables
func Derive(s Sale) Record {
	return defaultDeriver.Derive(s)
}

// Categories returns the rules used for category assignment
func (d *Deriver) Categories() CategoryRules {
	return d.categories
}

// Events returns the event calendar used for tagging
func (d *Deriver) Events() *EventCalendar {
	return d.events
}

// Derive is pure: the same Sale always yields the same Record.
func (d *Deriver) Derive(s Sale) Record {
	t := s.OrderedAt
	date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	_, isoWeek := t.ISOWeek()
	weekday := WeekdayIndex(t.Weekday())
	month := int(t.Month())
	city, code := ParseAddress(s.ShipAddress)

	return Record{
		Sale: s,
		Features: Features{
			Revenue:      s.UnitPrice.MulInt(s.Quantity),
			Date:         date,
			Year:         t.Year(),
			Month:        month,
			Day:          t.Day(),
			Hour:         t.Hour(),
			Minute:       t.Minute(),
			Weekday:      weekday,
			ISOWeek:      isoWeek,
			Quarter:      (month-1)/3 + 1,
			DayOfYear:    t.YearDay(),
			YearMonth:    fmt.Sprintf("%04d-%02d", t.Year(), month),
			MonthName:    MonthName(month),
			WeekdayName:  WeekdayName(weekday),
			IsWeekend:    weekday >= 5,
			City:         city,
			StateCode:    code,
			StateName:    StateName(code),
			Category:     d.categories.Assign(s.Product),
			PriceTier:    TierFor(s.UnitPrice),
			SpecialEvent: d.events.Tag(date),
		},
	}
}
