package ingest

import (
	"time"

	"salespulse/internal/files"
	"salespulse/internal/sales"
)

// Stats counts what happened to the input rows during Load
type Stats struct {
	Files      int            `json:"files"`
	Bytes      int64          `json:"bytes"`
	RawRows    int            `json:"raw_rows"`
	HeaderRows int            `json:"header_rows"`
	BlankRows  int            `json:"blank_rows"`
	Rejected   int            `json:"rejected"`
	Retained   int            `json:"retained"`
	Reasons    map[string]int `json:"reasons,omitempty"`
}

func (s *Stats) add(o Stats) {
	s.Files += o.Files
	s.Bytes += o.Bytes
	s.RawRows += o.RawRows
	s.HeaderRows += o.HeaderRows
	s.BlankRows += o.BlankRows
	s.Rejected += o.Rejected
	s.Retained += o.Retained
	for k, v := range o.Reasons {
		if s.Reasons == nil {
			s.Reasons = make(map[string]int)
		}
		s.Reasons[k] += v
	}
}

// Dataset is the enriched record set. It is built once and never modified,
// so it can be shared by concurrent readers without locking.
type Dataset struct {
	records  []sales.Record
	sources  []files.Source
	stats    Stats
	minDate  time.Time
	maxDate  time.Time
	loadedAt time.Time
}

// NewDataset wraps already derived records, e.g. for tests or snapshots.
func NewDataset(records []sales.Record) *Dataset {
	d := &Dataset{
		records:  records,
		stats:    Stats{Retained: len(records), RawRows: len(records)},
		loadedAt: time.Now().UTC(),
	}
	d.computeSpan()
	return d
}

func (d *Dataset) computeSpan() {
	for i, r := range d.records {
		if i == 0 || r.Date.Before(d.minDate) {
			d.minDate = r.Date
		}
		if i == 0 || r.Date.After(d.maxDate) {
			d.maxDate = r.Date
		}
	}
}

// Records returns the records in load order. The slice is shared; callers
// must treat it as read-only.
func (d *Dataset) Records() []sales.Record {
	return d.records
}

// Len returns the number of records
func (d *Dataset) Len() int {
	return len(d.records)
}

// Span returns the first and last order dates. Both are zero for an empty set.
func (d *Dataset) Span() (time.Time, time.Time) {
	return d.minDate, d.maxDate
}

// Stats returns the load statistics
func (d *Dataset) Stats() Stats {
	return d.stats
}

// Sources returns the files the dataset was read from, in discovery order
func (d *Dataset) Sources() []files.Source {
	return d.sources
}

// LoadedAt returns when the dataset was built
func (d *Dataset) LoadedAt() time.Time {
	return d.loadedAt
}
