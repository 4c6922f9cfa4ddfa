package main

import (
	"testing"
)

func testLayout(cols map[int]*ColumnDescriptor) tableLayout {
	return tableLayout{firstNameCol: 0, lastNameCol: -1, columns: cols}
}

func TestSectionPredicates(t *testing.T) {
	vocab := DefaultVocabulary()

	t.Run("keyword", func(t *testing.T) {
		row := tableRow{cells: []string{"Tuesday Bible Study 2"}, styles: []string{""}}
		if !isKeywordHeaderRow(row, vocab) {
			t.Error("keyword predicate should fire on a known program name")
		}
		if isKeywordHeaderRow(tableRow{cells: []string{"Jane Doe"}, styles: []string{""}}, vocab) {
			t.Error("keyword predicate should not fire on a person's name")
		}
	})

	t.Run("single cell", func(t *testing.T) {
		if !isSingleCellHeaderRow(tableRow{cells: []string{"Morning Congregation"}, styles: []string{""}}, vocab) {
			t.Error("single digit-free cell should fire")
		}
		if isSingleCellHeaderRow(tableRow{cells: []string{"Group 2"}, styles: []string{""}}, vocab) {
			t.Error("a cell with digits should not fire")
		}
		if isSingleCellHeaderRow(tableRow{cells: []string{"Jane", "Y"}, styles: []string{"", ""}}, vocab) {
			t.Error("a multi-cell row should not fire")
		}
	})

	t.Run("styling", func(t *testing.T) {
		dark := tableRow{cells: []string{"Leaders"}, styles: []string{"background-color: #000000"}}
		if !isStyledHeaderRow(dark, vocab) {
			t.Error("black background should fire")
		}
		light := tableRow{cells: []string{"Leaders"}, styles: []string{"background-color: #ffffff"}}
		if isStyledHeaderRow(light, vocab) {
			t.Error("white background should not fire")
		}
	})
}

func TestHasDarkBackground(t *testing.T) {
	tests := []struct {
		style string
		want  bool
	}{
		{"background-color: #000000", true},
		{"background: black", true},
		{"background-color: #333", true},
		{"background-color: #fff", false},
		{"background-color: #e0e0e0", false},
		{"", false},
		{"color: #000000", true}, // any dark color token counts as a band signal
	}
	for _, tt := range tests {
		if got := hasDarkBackground(tt.style); got != tt.want {
			t.Errorf("hasDarkBackground(%q) = %v, want %v", tt.style, got, tt.want)
		}
	}
}

func TestSegmentPartitionsRows(t *testing.T) {
	cols := map[int]*ColumnDescriptor{1: {Service: Service1030}}
	rows := []tableRow{
		{cells: []string{"Stray Row", "Y"}, styles: []string{"", ""}},  // before any section: discarded
		{cells: []string{"Youth Group"}, styles: []string{""}},         // keyword header
		{cells: []string{"Jane Doe", "Y"}, styles: []string{"", ""}},
		{cells: []string{"Morning Congregation"}, styles: []string{""}}, // single-cell header
		{cells: []string{"John Smith", "N"}, styles: []string{"", ""}},
	}

	sections := Segment(rows, testLayout(cols), DefaultVocabulary())
	if len(sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(sections))
	}
	if sections[0].Title != "Youth Group" || sections[0].Kind != "youth" {
		t.Errorf("section 0 = %q/%q, want Youth Group/youth", sections[0].Title, sections[0].Kind)
	}
	if len(sections[0].Rows) != 1 || sections[0].Rows[0].RawName != "Jane Doe" {
		t.Fatalf("section 0 rows = %+v, want one row for Jane Doe", sections[0].Rows)
	}
	if sections[0].Rows[0].Marks[1] != "Y" {
		t.Errorf("Jane's mark = %q, want Y", sections[0].Rows[0].Marks[1])
	}
	if sections[1].Kind != "" {
		t.Errorf("unrecognized title should get empty kind, got %q", sections[1].Kind)
	}
	if len(sections[1].Rows) != 1 || sections[1].Rows[0].Marks[1] != "N" {
		t.Fatalf("section 1 rows = %+v, want one row with an N mark", sections[1].Rows)
	}
}

func TestSegmentKeywordBeatsDataRowShape(t *testing.T) {
	// A keyword row that also carries marks must still open a section.
	cols := map[int]*ColumnDescriptor{1: {Service: Service1030}}
	rows := []tableRow{
		{cells: []string{"Kids Club", "Y"}, styles: []string{"", ""}},
		{cells: []string{"Jane Doe", "Y"}, styles: []string{"", ""}},
	}
	sections := Segment(rows, testLayout(cols), DefaultVocabulary())
	if len(sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(sections))
	}
	if sections[0].Title != "Kids Club" || len(sections[0].Rows) != 1 {
		t.Errorf("keyword row should open the section, not join it as data")
	}
}

func TestSegmentCombinesNameColumns(t *testing.T) {
	cols := map[int]*ColumnDescriptor{2: {Service: Service1030}}
	layout := tableLayout{firstNameCol: 0, lastNameCol: 1, columns: cols}
	rows := []tableRow{
		{cells: []string{"Playgroup"}, styles: []string{""}},
		{cells: []string{"Jane", "Doe", "Y"}, styles: []string{"", "", ""}},
	}
	sections := Segment(rows, layout, DefaultVocabulary())
	if len(sections) != 1 || len(sections[0].Rows) != 1 {
		t.Fatalf("unexpected segmentation: %+v", sections)
	}
	if sections[0].Rows[0].RawName != "Jane Doe" {
		t.Errorf("RawName = %q, want %q", sections[0].Rows[0].RawName, "Jane Doe")
	}
}
