package main

import "testing"

func TestRatio(t *testing.T) {
	tests := []struct {
		num, den, want float64
	}{
		{50, 200, 25},
		{0, 200, 0},
		{10, 0, 0}, // zero denominator is not an error
		{200, 200, 100},
	}
	for _, tt := range tests {
		if got := Ratio(tt.num, tt.den); got != tt.want {
			t.Errorf("Ratio(%v, %v) = %v, want %v", tt.num, tt.den, got, tt.want)
		}
	}
}

func TestNewMetric(t *testing.T) {
	m := NewMetric("10:30", 2025, 80, 320)
	if m.Percentage != 25 {
		t.Errorf("Percentage = %v, want 25", m.Percentage)
	}
	if m.Cohort != "10:30" || m.Year != 2025 {
		t.Errorf("metric keys = %s/%d, want 10:30/2025", m.Cohort, m.Year)
	}
}

func TestYearOverYear(t *testing.T) {
	current := NewMetric("10:30", 2025, 90, 300)  // 30%
	previous := NewMetric("10:30", 2024, 75, 300) // 25%

	if got := YearOverYearDelta(current.Numerator, previous.Numerator); got != 15 {
		t.Errorf("absolute delta = %v, want 15", got)
	}
	if got := YearOverYearPoints(current, previous); got != 5 {
		t.Errorf("points delta = %v, want 5", got)
	}
}

func TestProjectTargetIsAdditive(t *testing.T) {
	if got := ProjectTarget(25, 3); got != 28 {
		t.Errorf("ProjectTarget(25, 3) = %v, want 28", got)
	}
	if got := ProjectTarget(25, -3); got != 22 {
		t.Errorf("negative increments apply too, got %v", got)
	}
}
