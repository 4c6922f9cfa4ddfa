package main

import (
	"sort"
	"strings"
	"time"
)

// attendedMark is the only token that counts as attendance; anything else
// in a mark cell ('N', blank, stray text) is non-attendance.
const attendedMark = "Y"

func markAttended(mark string) bool {
	return mark == attendedMark
}

// markPresent reports whether a cell recorded an opportunity at all, i.e.
// the section actually met that week and the person was on its roll.
func markPresent(mark string) bool {
	return strings.TrimSpace(mark) != ""
}

// SectionAttendees returns the ordered names of people included in a
// section's attendee set: those with at least minCount attended marks
// across the section's valid date columns. The threshold filters one-off
// visitors and transcription noise.
func SectionAttendees(section SectionRecord, layout tableLayout, minCount int) []string {
	var names []string
	for _, row := range section.Rows {
		count := 0
		for col := range layout.columns {
			if markAttended(row.Marks[col]) {
				count++
			}
		}
		if count >= minCount {
			names = append(names, row.RawName)
		}
	}
	sort.Strings(names)
	return names
}

// ServiceDailyCounts tallies distinct attendees per service per date.
func ServiceDailyCounts(facts []AttendanceFact) map[ServiceTime]map[time.Time]int {
	type key struct {
		person  string
		date    time.Time
		service ServiceTime
	}
	seen := make(map[key]bool)
	counts := make(map[ServiceTime]map[time.Time]int)
	for _, f := range facts {
		if !f.Attended {
			continue
		}
		k := key{f.PersonKey, dateKey(f.Date), f.Service}
		if seen[k] {
			continue
		}
		seen[k] = true
		if counts[f.Service] == nil {
			counts[f.Service] = make(map[time.Time]int)
		}
		counts[f.Service][k.date]++
	}
	return counts
}

// CombinedDailyCounts counts, per date, the union of attendee sets across
// all of that date's services. A person attending two services on the same
// day contributes one, not two.
func CombinedDailyCounts(facts []AttendanceFact) map[time.Time]int {
	type key struct {
		person string
		date   time.Time
	}
	seen := make(map[key]bool)
	counts := make(map[time.Time]int)
	for _, f := range facts {
		if !f.Attended {
			continue
		}
		k := key{f.PersonKey, dateKey(f.Date)}
		if seen[k] {
			continue
		}
		seen[k] = true
		counts[k.date]++
	}
	return counts
}

// SplitCombinedService allocates each 9:30 combined-service total between
// the 8:30 and 10:30 services and adds the shares into their counts. The
// ratio r is the historical mean of 8:30/10:30 on dates where both were
// reported separately; defaultRatio applies when no such date exists.
// Shares are truncated to integers with the remainder going to 10:30, so
// the split always sums to the combined total.
func SplitCombinedService(counts map[ServiceTime]map[time.Time]int, defaultRatio float64) {
	combined := counts[Service930]
	if len(combined) == 0 {
		return
	}

	r := defaultRatio
	if ratios := pairedRatios(counts[Service830], counts[Service1030]); len(ratios) > 0 {
		sum := 0.0
		for _, v := range ratios {
			sum += v
		}
		r = sum / float64(len(ratios))
	}

	if counts[Service830] == nil {
		counts[Service830] = make(map[time.Time]int)
	}
	if counts[Service1030] == nil {
		counts[Service1030] = make(map[time.Time]int)
	}
	for _, date := range sortedDates(combined) {
		total := combined[date]
		early := int(float64(total) * r / (1 + r))
		counts[Service830][date] += early
		counts[Service1030][date] += total - early
	}
	delete(counts, Service930)
}

// pairedRatios computes 8:30/10:30 for every date present in both series
// with a non-zero 10:30 count.
func pairedRatios(early, late map[time.Time]int) []float64 {
	var ratios []float64
	for _, date := range sortedDates(early) {
		lateCount, ok := late[date]
		if !ok || lateCount == 0 {
			continue
		}
		ratios = append(ratios, float64(early[date])/float64(lateCount))
	}
	return ratios
}

// RollingAverage smooths an ordered weekly series: an expanding mean for
// the first window-1 points, then a full sliding window.
func RollingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// CumulativeYTD converts an ordered series into running totals that reset
// to zero at each calendar-year boundary.
func CumulativeYTD(points []SeriesPoint) []SeriesPoint {
	out := make([]SeriesPoint, len(points))
	sum := 0.0
	year := 0
	for i, p := range points {
		if p.Date.Year() != year {
			year = p.Date.Year()
			sum = 0
		}
		sum += p.Value
		out[i] = SeriesPoint{Date: p.Date, Value: sum}
	}
	return out
}

// TrimTrailingZeros drops the trailing run of all-zero values after the
// last non-zero point, so weeks that have not happened yet do not drag
// means down. A zero inside the series (a meeting with no attendance) is
// kept.
func TrimTrailingZeros(points []SeriesPoint) []SeriesPoint {
	end := len(points)
	for end > 0 && points[end-1].Value == 0 {
		end--
	}
	return points[:end]
}

// YearlyMean averages a weekly series after applying the trim rule and the
// January outlier rule: when more than one point falls in January, only
// the most recent January point stays in the mean. Early-January combined
// holiday services would otherwise skew the year's average; the series
// itself keeps every point for charting.
func YearlyMean(points []SeriesPoint) float64 {
	points = TrimTrailingZeros(points)
	if len(points) == 0 {
		return 0
	}

	lastJanuary := -1
	for i, p := range points {
		if p.Date.Month() == time.January {
			lastJanuary = i
		}
	}

	sum := 0.0
	n := 0
	for i, p := range points {
		if p.Date.Month() == time.January && i != lastJanuary {
			continue
		}
		sum += p.Value
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// MissedRecentMeetings flags section members who had at least one recorded
// opportunity across the section's last n meeting dates but attended none
// of them. Meeting dates are the date columns where anyone in the section
// has a recorded mark, which can be a strict subset of the report's date
// columns.
func MissedRecentMeetings(section SectionRecord, layout tableLayout, n int) []string {
	recent := recentMeetingColumns(section, layout, n)
	if len(recent) == 0 {
		return nil
	}

	var flagged []string
	for _, row := range section.Rows {
		opportunities := 0
		attended := 0
		for _, col := range recent {
			mark, ok := row.Marks[col]
			if !ok || !markPresent(mark) {
				continue
			}
			opportunities++
			if markAttended(mark) {
				attended++
			}
		}
		if opportunities > 0 && attended == 0 {
			flagged = append(flagged, row.RawName)
		}
	}
	sort.Strings(flagged)
	return flagged
}

// recentMeetingColumns returns the column indexes of the n most recent
// dates on which the section recorded any mark, in chronological order.
func recentMeetingColumns(section SectionRecord, layout tableLayout, n int) []int {
	var meeting []int
	for col := range layout.columns {
		for _, row := range section.Rows {
			if markPresent(row.Marks[col]) {
				meeting = append(meeting, col)
				break
			}
		}
	}
	sort.Slice(meeting, func(i, j int) bool {
		return layout.columns[meeting[i]].Date.Before(layout.columns[meeting[j]].Date)
	})
	if n > 0 && len(meeting) > n {
		meeting = meeting[len(meeting)-n:]
	}
	return meeting
}

// CountSeries converts a per-date count map into an ordered series.
func CountSeries(cohort string, year int, counts map[time.Time]int) AggregateSeries {
	series := AggregateSeries{Cohort: cohort, Year: year}
	for _, date := range sortedDates(counts) {
		series.Points = append(series.Points, SeriesPoint{Date: date, Value: float64(counts[date])})
	}
	return series
}

// SmoothedSeries applies the rolling average to a series' values.
func SmoothedSeries(series AggregateSeries, window int) AggregateSeries {
	values := make([]float64, len(series.Points))
	for i, p := range series.Points {
		values[i] = p.Value
	}
	smoothed := RollingAverage(values, window)
	out := AggregateSeries{Cohort: series.Cohort, Year: series.Year}
	out.Points = make([]SeriesPoint, len(series.Points))
	for i, p := range series.Points {
		out.Points[i] = SeriesPoint{Date: p.Date, Value: smoothed[i]}
	}
	return out
}
