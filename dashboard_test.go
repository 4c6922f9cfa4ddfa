package main

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuildReportData(t *testing.T) {
	cfg := Config{
		ProRataDefaultRatio: 0.4,
		RollingWindow:       4,
		MinAttendance:       2,
		RecentAbsenceWindow: 2,
		CongregationSize:    400,
	}
	source := ReportSource{Name: "Sunday Services", Kind: "congregation", Year: 2025}

	cols := map[int]*ColumnDescriptor{
		1: {Service: Service1030, Date: day(2025, 2, 2)},
		2: {Service: Service1030, Date: day(2025, 2, 9)},
		3: {Service: Service1030, Date: day(2025, 2, 16)},
	}
	extracted := ExtractResult{
		Layout: testLayout(cols),
		Sections: []SectionRecord{{
			Title: "Youth Group",
			Kind:  "youth",
			Rows: []RowRecord{
				{RawName: "John Smith", Marks: map[int]string{1: "Y", 2: "Y", 3: "Y"}},
				{RawName: "Jane Doe", Marks: map[int]string{1: "Y", 2: "N", 3: "N"}},
			},
		}},
		Facts: []AttendanceFact{
			{PersonKey: "p1", Date: day(2025, 2, 2), Service: Service830, Attended: true},
			{PersonKey: "p1", Date: day(2025, 2, 2), Service: Service1030, Attended: true},
			{PersonKey: "p2", Date: day(2025, 2, 2), Service: Service1030, Attended: true},
			{PersonKey: "p1", Date: day(2025, 2, 9), Service: Service830, Attended: true},
			{PersonKey: "p3", Date: day(2025, 2, 16), Service: Service930, Attended: true},
		},
	}

	report := buildReportData(cfg, source, extracted)

	// 8:30 and 10:30 both reported on 02/02, so the split ratio is 1/2 and
	// the combined service of 16/02 lands entirely on 10:30. The 8:30
	// series then ends in a zero and trims back to two points.
	if len(report.Services) != 2 {
		t.Fatalf("Services = %d series, want 2", len(report.Services))
	}
	if report.Services[0].Cohort != "8:30" || report.Services[1].Cohort != "10:30" {
		t.Errorf("service order = %s, %s", report.Services[0].Cohort, report.Services[1].Cohort)
	}
	if got := seriesValues(report.Services[0]); !reflect.DeepEqual(got, []float64{1, 1}) {
		t.Errorf("8:30 values = %v, want [1 1]", got)
	}
	if got := seriesValues(report.Services[1]); !reflect.DeepEqual(got, []float64{2, 1}) {
		t.Errorf("10:30 values = %v, want [2 1]", got)
	}

	if len(report.Means) != 2 {
		t.Fatalf("Means = %d, want 2", len(report.Means))
	}
	if report.Means[1].Numerator != 1.5 || report.Means[1].Denominator != 400 {
		t.Errorf("10:30 mean = %+v", report.Means[1])
	}

	if got := seriesValues(report.Combined); !reflect.DeepEqual(got, []float64{2, 1, 1}) {
		t.Errorf("combined values = %v, want [2 1 1]", got)
	}
	ytd := make([]float64, len(report.YearToDate.Points))
	for i, p := range report.YearToDate.Points {
		ytd[i] = p.Value
	}
	if !reflect.DeepEqual(ytd, []float64{2, 3, 4}) {
		t.Errorf("ytd values = %v, want [2 3 4]", ytd)
	}

	if len(report.Sections) != 1 {
		t.Fatalf("Sections = %d, want 1", len(report.Sections))
	}
	section := report.Sections[0]
	if !reflect.DeepEqual(section.Attendees, []string{"John Smith"}) {
		t.Errorf("Attendees = %v", section.Attendees)
	}
	if !reflect.DeepEqual(section.MissedRecent, []string{"Jane Doe"}) {
		t.Errorf("MissedRecent = %v", section.MissedRecent)
	}
}

func seriesValues(series AggregateSeries) []float64 {
	values := make([]float64, len(series.Points))
	for i, p := range series.Points {
		values[i] = p.Value
	}
	return values
}

func TestBuildReportDataNoFacts(t *testing.T) {
	report := buildReportData(Config{}, ReportSource{Year: 2025}, ExtractResult{})
	if len(report.Services) != 0 || len(report.Combined.Points) != 0 {
		t.Errorf("empty extraction should yield empty series: %+v", report)
	}
}

func TestFormatRunSummary(t *testing.T) {
	t.Run("failure", func(t *testing.T) {
		got := FormatRunSummary(RunResult{Errors: []string{"roster: timeout"}})
		if !strings.HasPrefix(got, "Dashboard run failed:") || !strings.Contains(got, "roster: timeout") {
			t.Errorf("summary = %q", got)
		}
	})

	t.Run("success", func(t *testing.T) {
		got := FormatRunSummary(RunResult{
			Reports: 2, Sections: 3, Facts: 40,
			ReportPath: "/tmp/reports/out.md",
		})
		if !strings.Contains(got, "2 reports, 3 sections, 40 facts") {
			t.Errorf("summary = %q", got)
		}
		if !strings.Contains(got, "Report: /tmp/reports/out.md") {
			t.Errorf("summary missing path: %q", got)
		}
		if strings.Contains(got, "Warnings") {
			t.Errorf("clean run should carry no warnings: %q", got)
		}
	})

	t.Run("warnings", func(t *testing.T) {
		got := FormatRunSummary(RunResult{
			Reports: 1, SkippedColumns: 2,
			UnresolvedNames: []string{"Total Stranger"},
			Errors:          []string{"Prayer Meetings: fetch failed"},
		})
		for _, want := range []string{"2 columns skipped", "1 unresolved names", "Warnings:", "Prayer Meetings: fetch failed"} {
			if !strings.Contains(got, want) {
				t.Errorf("summary missing %q: %q", want, got)
			}
		}
	})
}

func TestJoinErrors(t *testing.T) {
	if got := joinErrors([]string{"a", "b"}); got != "a; b" {
		t.Errorf("joinErrors = %q", got)
	}
}
