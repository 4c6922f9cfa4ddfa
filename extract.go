package main

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ExtractOptions configures one extraction pass over a fetched document.
type ExtractOptions struct {
	Signature  TableSignature
	ReportYear int
	Weekday    *time.Weekday // expected service weekday, nil for no constraint
	Roster     *RosterIndex  // nil runs the pass on raw display names
	Vocabulary *Vocabulary
}

// ExtractResult holds everything one pass derived from a document, plus
// per-reason skip counters. Skips are local: a bad column or name never
// aborts the rest of the pass.
type ExtractResult struct {
	Sections []SectionRecord
	Layout   tableLayout
	Facts    []AttendanceFact

	SkippedColumns    int // headers with no parseable time/date
	OffWeekdayColumns int // valid dates on the wrong weekday
	UnresolvedNames   []string
	AmbiguousNames    []string
}

// Empty reports whether the pass produced no usable data at all.
func (r ExtractResult) Empty() bool {
	return len(r.Sections) == 0 || len(r.Layout.columns) == 0
}

// ExtractAttendance runs the full pipeline over one document: locate the
// table, parse its headers, segment rows into sections, resolve names and
// build de-duplicated attendance facts. A document with no qualifying
// table returns an empty result, not an error.
func ExtractAttendance(markup []byte, opts ExtractOptions) (ExtractResult, error) {
	var result ExtractResult

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return result, fmt.Errorf("parsing document: %w", err)
	}
	if opts.Vocabulary == nil {
		opts.Vocabulary = DefaultVocabulary()
	}

	table := LocateTable(doc, opts.Signature)
	if table == nil {
		log.Printf("extract: no qualifying table (signature=%v)", opts.Signature.Required)
		return result, nil
	}

	rows := TableRows(table)
	if len(rows) == 0 {
		return result, nil
	}

	result.Layout = parseLayout(rows[0], opts, &result)
	if len(result.Layout.columns) == 0 {
		log.Printf("extract: table has no usable service columns (skipped=%d off_weekday=%d)",
			result.SkippedColumns, result.OffWeekdayColumns)
		return result, nil
	}

	result.Sections = Segment(rows[1:], result.Layout, opts.Vocabulary)
	buildFacts(&result, opts)

	log.Printf("extract: sections=%d columns=%d facts=%d skipped_cols=%d off_weekday=%d unresolved=%d ambiguous=%d",
		len(result.Sections), len(result.Layout.columns), len(result.Facts),
		result.SkippedColumns, result.OffWeekdayColumns,
		len(result.UnresolvedNames), len(result.AmbiguousNames))
	return result, nil
}

// parseLayout reads the header row: the name column positions plus one
// ColumnDescriptor per valid service column.
func parseLayout(header tableRow, opts ExtractOptions, result *ExtractResult) tableLayout {
	layout := tableLayout{
		firstNameCol: -1,
		lastNameCol:  -1,
		columns:      make(map[int]*ColumnDescriptor),
	}
	for i, cell := range header.cells {
		lower := strings.ToLower(cell)
		switch {
		case strings.Contains(lower, "first name"):
			if layout.firstNameCol < 0 {
				layout.firstNameCol = i
			}
			continue
		case strings.Contains(lower, "last name"), strings.Contains(lower, "surname"):
			if layout.lastNameCol < 0 {
				layout.lastNameCol = i
			}
			continue
		case strings.Contains(lower, "name") && layout.firstNameCol < 0:
			layout.firstNameCol = i
			continue
		}

		desc := ParseHeader(cell, opts.ReportYear, nil)
		if desc == nil {
			if cell != "" {
				result.SkippedColumns++
			}
			continue
		}
		if opts.Weekday != nil && desc.Date.Weekday() != *opts.Weekday {
			result.OffWeekdayColumns++
			continue
		}
		layout.columns[i] = desc
	}
	return layout
}

// buildFacts resolves each row's display name and emits at most one fact
// per (person, date, service). Unresolvable names are reported and
// skipped; an attended mark anywhere wins over a duplicate blank.
func buildFacts(result *ExtractResult, opts ExtractOptions) {
	type factKey struct {
		person  string
		date    time.Time
		service ServiceTime
	}
	index := make(map[factKey]int)

	for _, section := range result.Sections {
		for _, row := range section.Rows {
			personKey, ok := resolveRowPerson(row.RawName, opts.Roster, result)
			if !ok {
				continue
			}
			for col, desc := range result.Layout.columns {
				mark, present := row.Marks[col]
				if !present || !markPresent(mark) {
					continue
				}
				k := factKey{personKey, dateKey(desc.Date), desc.Service}
				if i, exists := index[k]; exists {
					if markAttended(mark) {
						result.Facts[i].Attended = true
					}
					continue
				}
				index[k] = len(result.Facts)
				result.Facts = append(result.Facts, AttendanceFact{
					PersonKey: personKey,
					Date:      k.date,
					Service:   desc.Service,
					Attended:  markAttended(mark),
				})
			}
		}
	}

	sortFacts(result.Facts)
	result.UnresolvedNames = uniqueStrings(result.UnresolvedNames)
	result.AmbiguousNames = uniqueStrings(result.AmbiguousNames)
}

func resolveRowPerson(rawName string, roster *RosterIndex, result *ExtractResult) (string, bool) {
	if roster == nil {
		key := nameKey(rawName)
		return key, key != ""
	}
	person, outcome := roster.Resolve(rawName)
	switch outcome {
	case ResolveMatched:
		return person.ID, true
	case ResolveAmbiguous:
		result.AmbiguousNames = append(result.AmbiguousNames, rawName)
	default:
		result.UnresolvedNames = append(result.UnresolvedNames, rawName)
	}
	return "", false
}
