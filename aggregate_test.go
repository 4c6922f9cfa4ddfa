package main

import (
	"reflect"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRollingAverage(t *testing.T) {
	got := RollingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RollingAverage([2 4 6 8], 2) = %v, want %v", got, want)
	}
}

func TestRollingAverageExpandingHead(t *testing.T) {
	got := RollingAverage([]float64{10, 20, 30, 40, 50}, 4)
	want := []float64{10, 15, 20, 25, 35}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RollingAverage(window 4) = %v, want %v", got, want)
	}
}

func TestSectionAttendeesMinimumCount(t *testing.T) {
	layout := testLayout(map[int]*ColumnDescriptor{
		1: {Service: Service1030, Date: day(2025, 1, 5)},
		2: {Service: Service1030, Date: day(2025, 1, 12)},
	})
	section := SectionRecord{Title: "Youth Group", Rows: []RowRecord{
		{RawName: "One Mark", Marks: map[int]string{1: "Y"}},
		{RawName: "Two Marks", Marks: map[int]string{1: "Y", 2: "Y"}},
		{RawName: "No Show", Marks: map[int]string{1: "N", 2: "N"}},
	}}

	got := SectionAttendees(section, layout, 2)
	if !reflect.DeepEqual(got, []string{"Two Marks"}) {
		t.Errorf("attendees = %v, want only the person with 2 marks", got)
	}
}

func TestCombinedDailyCountsUnion(t *testing.T) {
	date := day(2025, 1, 5)
	facts := []AttendanceFact{
		{PersonKey: "p1", Date: date, Service: Service830, Attended: true},
		{PersonKey: "p1", Date: date, Service: Service1030, Attended: true},
		{PersonKey: "p2", Date: date, Service: Service1030, Attended: true},
		{PersonKey: "p3", Date: date, Service: Service1030, Attended: false},
	}
	counts := CombinedDailyCounts(facts)
	if counts[date] != 2 {
		t.Errorf("combined count = %d, want 2 (p1 counted once, p3 absent)", counts[date])
	}
}

func TestSplitCombinedServiceWithHistory(t *testing.T) {
	// Historical ratio r = 10/20 = 0.5 on the one paired date.
	counts := map[ServiceTime]map[time.Time]int{
		Service830:  {day(2025, 2, 2): 10},
		Service1030: {day(2025, 2, 2): 20},
		Service930:  {day(2025, 1, 5): 30},
	}
	SplitCombinedService(counts, 0.4)

	if got := counts[Service830][day(2025, 1, 5)]; got != 10 {
		t.Errorf("8:30 share = %d, want 10", got)
	}
	if got := counts[Service1030][day(2025, 1, 5)]; got != 20 {
		t.Errorf("10:30 share = %d, want 20", got)
	}
	if _, ok := counts[Service930]; ok {
		t.Error("combined series should be consumed by the split")
	}
}

func TestSplitCombinedServiceDefaultRatioAndExactSum(t *testing.T) {
	counts := map[ServiceTime]map[time.Time]int{
		Service930: {day(2025, 1, 5): 31},
	}
	SplitCombinedService(counts, 0.4)

	early := counts[Service830][day(2025, 1, 5)]
	late := counts[Service1030][day(2025, 1, 5)]
	// 31 * 0.4/1.4 = 8.857 truncated to 8; remainder goes to 10:30.
	if early != 8 {
		t.Errorf("8:30 share = %d, want 8", early)
	}
	if early+late != 31 {
		t.Errorf("split sums to %d, want exactly 31", early+late)
	}
}

func TestSplitCombinedServiceAddsIntoExistingCounts(t *testing.T) {
	date := day(2025, 1, 5)
	counts := map[ServiceTime]map[time.Time]int{
		Service830: {date: 3},
		Service930: {date: 10},
	}
	SplitCombinedService(counts, 1.0) // r=1: split 5/5
	if counts[Service830][date] != 8 {
		t.Errorf("8:30 = %d, want 3 existing + 5 allocated", counts[Service830][date])
	}
	if counts[Service1030][date] != 5 {
		t.Errorf("10:30 = %d, want 5", counts[Service1030][date])
	}
}

func TestCumulativeYTDResetsAtYearBoundary(t *testing.T) {
	points := []SeriesPoint{
		{Date: day(2024, 12, 22), Value: 5},
		{Date: day(2024, 12, 29), Value: 7},
		{Date: day(2025, 1, 5), Value: 4},
		{Date: day(2025, 1, 12), Value: 6},
	}
	got := CumulativeYTD(points)
	want := []float64{5, 12, 4, 10}
	for i, p := range got {
		if p.Value != want[i] {
			t.Errorf("ytd[%d] = %.0f, want %.0f", i, p.Value, want[i])
		}
	}
}

func TestTrimTrailingZeros(t *testing.T) {
	points := []SeriesPoint{
		{Date: day(2025, 1, 5), Value: 3},
		{Date: day(2025, 1, 12), Value: 0},
		{Date: day(2025, 1, 19), Value: 4},
		{Date: day(2025, 1, 26), Value: 0},
		{Date: day(2025, 2, 2), Value: 0},
	}
	got := TrimTrailingZeros(points)
	if len(got) != 3 {
		t.Fatalf("trimmed length = %d, want 3 (interior zero kept)", len(got))
	}
	if got[1].Value != 0 {
		t.Error("the interior zero must survive the trim")
	}
}

func TestYearlyMeanJanuaryRule(t *testing.T) {
	// Two January points: only the later one (8) counts toward the mean.
	points := []SeriesPoint{
		{Date: day(2025, 1, 5), Value: 100}, // holiday combined service outlier
		{Date: day(2025, 1, 12), Value: 8},
		{Date: day(2025, 2, 2), Value: 10},
		{Date: day(2025, 2, 9), Value: 12},
	}
	got := YearlyMean(points)
	want := (8.0 + 10.0 + 12.0) / 3.0
	if got != want {
		t.Errorf("YearlyMean = %v, want %v", got, want)
	}
}

func TestYearlyMeanSingleJanuaryPointKept(t *testing.T) {
	points := []SeriesPoint{
		{Date: day(2025, 1, 5), Value: 4},
		{Date: day(2025, 2, 2), Value: 6},
	}
	if got := YearlyMean(points); got != 5 {
		t.Errorf("YearlyMean = %v, want 5", got)
	}
}

func TestMissedRecentMeetings(t *testing.T) {
	layout := testLayout(map[int]*ColumnDescriptor{
		1: {Service: Service1030, Date: day(2025, 1, 5)},
		2: {Service: Service1030, Date: day(2025, 1, 12)},
		3: {Service: Service1030, Date: day(2025, 1, 19)},
		4: {Service: Service1030, Date: day(2025, 1, 26)}, // nobody marked: not a meeting date
	})
	section := SectionRecord{Title: "Bible Study", Rows: []RowRecord{
		{RawName: "Always There", Marks: map[int]string{1: "Y", 2: "Y", 3: "Y"}},
		{RawName: "All Absent", Marks: map[int]string{1: "N", 2: "N", 3: "N"}},
		{RawName: "Came Once", Marks: map[int]string{1: "N", 2: "Y", 3: "N"}},
		{RawName: "Never Marked", Marks: map[int]string{}},
	}}

	got := MissedRecentMeetings(section, layout, 3)
	if !reflect.DeepEqual(got, []string{"All Absent"}) {
		t.Errorf("flagged = %v, want only All Absent", got)
	}
}

func TestMissedRecentMeetingsUsesMeetingDatesOnly(t *testing.T) {
	// The last parsed column has no marks at all, so the window slides back
	// to the section's own meeting dates.
	layout := testLayout(map[int]*ColumnDescriptor{
		1: {Service: Service1030, Date: day(2025, 1, 5)},
		2: {Service: Service1030, Date: day(2025, 1, 12)},
		3: {Service: Service1030, Date: day(2025, 1, 19)},
	})
	section := SectionRecord{Title: "Kids Club", Rows: []RowRecord{
		{RawName: "Faded Away", Marks: map[int]string{1: "Y", 2: "N"}},
		{RawName: "Still Coming", Marks: map[int]string{1: "Y", 2: "Y"}},
	}}

	got := MissedRecentMeetings(section, layout, 1)
	if !reflect.DeepEqual(got, []string{"Faded Away"}) {
		t.Errorf("flagged = %v, want Faded Away (window over meeting dates, not all columns)", got)
	}
}

func TestCountSeriesOrdering(t *testing.T) {
	counts := map[time.Time]int{
		day(2025, 1, 19): 3,
		day(2025, 1, 5):  1,
		day(2025, 1, 12): 2,
	}
	series := CountSeries("10:30", 2025, counts)
	for i := 1; i < len(series.Points); i++ {
		if !series.Points[i-1].Date.Before(series.Points[i].Date) {
			t.Fatalf("series dates must be strictly increasing: %v", series.Points)
		}
	}
	if series.Points[0].Value != 1 || series.Points[2].Value != 3 {
		t.Errorf("series values out of order: %v", series.Points)
	}
}
