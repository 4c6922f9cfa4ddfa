package main

import (
	"sort"
	"time"
)

// ServiceTime identifies which service a report column belongs to.
type ServiceTime string

const (
	Service830   ServiceTime = "8:30"
	Service930   ServiceTime = "9:30" // combined service, split pro rata later
	Service1030  ServiceTime = "10:30"
	Service630   ServiceTime = "6:30"
	ServiceOther ServiceTime = "other"
)

// serviceOrder gives services a stable emission order.
var serviceOrder = map[ServiceTime]int{
	Service830:   0,
	Service930:   1,
	Service1030:  2,
	Service630:   3,
	ServiceOther: 4,
}

// ColumnDescriptor is the parsed form of one report column header.
type ColumnDescriptor struct {
	RawHeader    string
	Service      ServiceTime
	Date         time.Time
	YearExplicit bool // true when the header carried a 4-digit year
}

// RowRecord is one data row of a report table. Marks holds the raw mark
// token per column index ('Y', 'N' or empty); only an exact 'Y' counts as
// attended, but the presence of any token marks an opportunity.
type RowRecord struct {
	RawName string
	Marks   map[int]string
}

// SectionRecord is a named sub-table (one group or program) of a report.
type SectionRecord struct {
	Title string
	Kind  string // program family, empty when the title is unrecognized
	Rows  []RowRecord
}

// Person is one canonical roster record.
type Person struct {
	ID        string
	FirstName string
	LastName  string
	Category  string
}

// AttendanceFact is the atomic unit all aggregates are built from.
// At most one fact exists per (person, date, service).
type AttendanceFact struct {
	PersonKey string // roster ID, or normalized display name without a roster
	Date      time.Time
	Service   ServiceTime
	Attended  bool
}

// SeriesPoint is one dated value of an aggregate series.
type SeriesPoint struct {
	Date  time.Time
	Value float64
}

// AggregateSeries is an ordered (strictly date-ascending, no duplicate
// dates) sequence of values for one cohort.
type AggregateSeries struct {
	Cohort string
	Year   int
	Points []SeriesPoint
}

// Metric is a ratio with its inputs, keyed by cohort and year.
type Metric struct {
	Cohort      string
	Year        int
	Numerator   float64
	Denominator float64
	Percentage  float64
}

// DisplayName joins the roster name fields for output.
func (p Person) DisplayName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// dateKey collapses a timestamp to its calendar day in UTC, so the same
// report date always compares equal regardless of source formatting.
func dateKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// sortFacts orders facts chronologically, then by service, then by person,
// so repeated passes over the same input emit identical output.
func sortFacts(facts []AttendanceFact) {
	sort.SliceStable(facts, func(i, j int) bool {
		if !facts[i].Date.Equal(facts[j].Date) {
			return facts[i].Date.Before(facts[j].Date)
		}
		if facts[i].Service != facts[j].Service {
			return serviceOrder[facts[i].Service] < serviceOrder[facts[j].Service]
		}
		return facts[i].PersonKey < facts[j].PersonKey
	})
}

// sortedDates returns the keys of a per-date count map in chronological
// order.
func sortedDates(m map[time.Time]int) []time.Time {
	dates := make([]time.Time, 0, len(m))
	for d := range m {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
