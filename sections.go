package main

import (
	"strconv"
	"strings"
)

// tableLayout records where the name and service columns sit in a located
// table, so the segmenter can turn raw rows into RowRecords.
type tableLayout struct {
	firstNameCol int
	lastNameCol  int // -1 when the table has a single name column
	columns      map[int]*ColumnDescriptor
}

// sectionPredicate decides whether a row opens a new section. Predicates
// are evaluated in order and short-circuit; the keyword predicate comes
// first so an explicit program name always wins, even when the row also
// looks like a data row.
type sectionPredicate func(row tableRow, vocab *Vocabulary) bool

var sectionPredicates = []sectionPredicate{
	isKeywordHeaderRow,
	isSingleCellHeaderRow,
	isStyledHeaderRow,
}

// isKeywordHeaderRow fires when any cell contains a known program keyword.
func isKeywordHeaderRow(row tableRow, vocab *Vocabulary) bool {
	for _, cell := range row.cells {
		if vocab.MatchesKeyword(cell) {
			return true
		}
	}
	return false
}

// isSingleCellHeaderRow fires for a one-cell row with no digits, the shape
// a colspan group banner renders as.
func isSingleCellHeaderRow(row tableRow, _ *Vocabulary) bool {
	if len(row.cells) != 1 {
		return false
	}
	text := row.cells[0]
	if text == "" {
		return false
	}
	return !strings.ContainsAny(text, "0123456789")
}

// isStyledHeaderRow fires when the first non-empty cell carries a dark
// background, the contrasting band the source renders group headers with.
func isStyledHeaderRow(row tableRow, _ *Vocabulary) bool {
	for i, cell := range row.cells {
		if cell == "" {
			continue
		}
		return i < len(row.styles) && hasDarkBackground(row.styles[i])
	}
	return false
}

// hasDarkBackground inspects a style/bgcolor attribute string for a dark
// fill color.
func hasDarkBackground(style string) bool {
	if style == "" {
		return false
	}
	if strings.Contains(style, "black") {
		return true
	}
	idx := strings.IndexByte(style, '#')
	for idx >= 0 {
		hex := style[idx+1:]
		end := 0
		for end < len(hex) && isHexDigit(hex[end]) {
			end++
		}
		if end == 3 || end == 6 {
			if r, g, b, ok := parseHexColor(hex[:end]); ok && (r+g+b)/3 < 0x60 {
				return true
			}
		}
		next := strings.IndexByte(style[idx+1:], '#')
		if next < 0 {
			break
		}
		idx += 1 + next
	}
	return false
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func parseHexColor(hex string) (int, int, int, bool) {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	val, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(val >> 16 & 0xff), int(val >> 8 & 0xff), int(val & 0xff), true
}

// isSectionHeaderRow runs the ordered predicate list.
func isSectionHeaderRow(row tableRow, vocab *Vocabulary) bool {
	for _, pred := range sectionPredicates {
		if pred(row, vocab) {
			return true
		}
	}
	return false
}

// sectionTitle picks the first non-empty cell as the section's title.
func sectionTitle(row tableRow) string {
	for _, cell := range row.cells {
		if cell != "" {
			return cell
		}
	}
	return ""
}

// Segment partitions data rows into named sections. Rows before the first
// section header are discarded; each data row attaches to the most recently
// opened section.
func Segment(rows []tableRow, layout tableLayout, vocab *Vocabulary) []SectionRecord {
	var sections []SectionRecord
	var current *SectionRecord

	for _, row := range rows {
		if isSectionHeaderRow(row, vocab) {
			title := sectionTitle(row)
			sections = append(sections, SectionRecord{
				Title: title,
				Kind:  vocab.Classify(title),
			})
			current = &sections[len(sections)-1]
			continue
		}
		if current == nil {
			continue
		}
		rec, ok := rowRecord(row, layout)
		if !ok {
			continue
		}
		current.Rows = append(current.Rows, rec)
	}
	return sections
}

// rowRecord builds a RowRecord from a data row using the table layout.
// Rows with no name text are skipped.
func rowRecord(row tableRow, layout tableLayout) (RowRecord, bool) {
	name := cellAt(row, layout.firstNameCol)
	if layout.lastNameCol >= 0 {
		if last := cellAt(row, layout.lastNameCol); last != "" {
			name = strings.TrimSpace(name + " " + last)
		}
	}
	if name == "" {
		return RowRecord{}, false
	}

	marks := make(map[int]string)
	for col := range layout.columns {
		if mark := cellAt(row, col); mark != "" {
			marks[col] = mark
		}
	}
	return RowRecord{RawName: name, Marks: marks}, true
}

func cellAt(row tableRow, col int) string {
	if col < 0 || col >= len(row.cells) {
		return ""
	}
	return row.cells[col]
}
