package sales

import "time"

// NormalDay is the event tag of dates that match no special event.
const NormalDay = "Normal"

// DateLayout is the civil date format used for event dates and filters.
const DateLayout = "2006-01-02"

// Event is a named promotion or holiday observed on a fixed set of dates.
// Multi-day events list every date; there are no ranges.
type Event struct {
	Name  string
	Dates []string
}

// EventCalendar tags dates with the first event, in declaration order, that
// lists them.
type EventCalendar struct {
	events []Event
	byDate map[string]string
}

// NewEventCalendar indexes events. Where two events share a date the earlier
// one wins.
func NewEventCalendar(events []Event) *EventCalendar {
	c := &EventCalendar{
		events: events,
		byDate: make(map[string]string),
	}
	for _, e := range events {
		for _, d := range e.Dates {
			if _, taken := c.byDate[d]; !taken {
				c.byDate[d] = e.Name
			}
		}
	}
	return c
}

// Tag returns the event name for the civil date of t, or NormalDay.
func (c *EventCalendar) Tag(t time.Time) string {
	if name, ok := c.byDate[t.Format(DateLayout)]; ok {
		return name
	}
	return NormalDay
}

// Names returns event names in declaration order
func (c *EventCalendar) Names() []string {
	names := make([]string, len(c.events))
	for i, e := range c.events {
		names[i] = e.Name
	}
	return names
}

// DefaultEvents is the 2019 US retail calendar.
// "Año Nuevo 2020" never matches because "Año Nuevo" already claims 2020-01-01.
var DefaultEvents = []Event{
	{"Año Nuevo", []string{"2019-01-01", "2020-01-01"}},
	{"San Valentín", []string{"2019-02-14"}},
	{"Día de San Patricio", []string{"2019-03-17"}},
	{"Pascua", []string{"2019-04-21"}},
	{"Día de la Madre", []string{"2019-05-12"}},
	{"Día del Padre", []string{"2019-06-16"}},
	{"Independencia de EE.UU.", []string{"2019-07-04"}},
	{"Back to School", []string{"2019-08-15", "2019-08-16", "2019-08-17", "2019-08-18", "2019-08-19"}},
	{"Labor Day", []string{"2019-09-02"}},
	{"Halloween", []string{"2019-10-31"}},
	{"Veterans Day", []string{"2019-11-11"}},
	{"Black Friday", []string{"2019-11-29"}},
	{"Cyber Monday", []string{"2019-12-02"}},
	{"Navidad", []string{"2019-12-24", "2019-12-25"}},
	{"Año Nuevo 2020", []string{"2020-01-01"}},
}
