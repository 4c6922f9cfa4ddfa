package main

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	timeTokenPattern = regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\s*(?:AM|PM)\b`)
	fullDatePattern  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	shortDatePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})\b`)
)

// ParseHeader turns one raw column header into a ColumnDescriptor.
//
// A header must carry an H:MM AM/PM time token to be a service column and a
// date in either DD/MM/YYYY (year explicit) or DD/MM form; short-form dates
// take their year from reportYear. When weekday is non-nil, columns whose
// resolved date falls on a different weekday are rejected. Returns nil for
// anything that is not a usable service column.
func ParseHeader(raw string, reportYear int, weekday *time.Weekday) *ColumnDescriptor {
	if !timeTokenPattern.MatchString(raw) {
		return nil
	}

	date, explicit, ok := parseHeaderDate(raw, reportYear)
	if !ok {
		return nil
	}
	if weekday != nil && date.Weekday() != *weekday {
		return nil
	}

	return &ColumnDescriptor{
		RawHeader:    raw,
		Service:      normalizeServiceTime(raw),
		Date:         date,
		YearExplicit: explicit,
	}
}

// parseHeaderDate tries the full-form grammar first, then short-form.
func parseHeaderDate(raw string, reportYear int) (time.Time, bool, bool) {
	if m := fullDatePattern.FindStringSubmatch(raw); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		date, ok := calendarDate(year, month, day)
		return date, true, ok
	}
	if m := shortDatePattern.FindStringSubmatch(raw); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		date, ok := calendarDate(reportYear, month, day)
		return date, false, ok
	}
	return time.Time{}, false, false
}

// calendarDate builds a UTC date and rejects values that normalize to a
// different day (e.g. 30 February rolling into March).
func calendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}

// normalizeServiceTime maps a header onto a known service by substring,
// in priority order. 6:00 is a historical spelling of the 6:30 service.
func normalizeServiceTime(raw string) ServiceTime {
	switch {
	case strings.Contains(raw, "8:30"):
		return Service830
	case strings.Contains(raw, "9:30"):
		return Service930
	case strings.Contains(raw, "10:30"):
		return Service1030
	case strings.Contains(raw, "6:30"), strings.Contains(raw, "6:00"):
		return Service630
	default:
		return ServiceOther
	}
}
