package main

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TableSignature describes the header row a qualifying table must have.
// Every token in Required must appear (case-insensitively) in some header
// cell; when DateColumn is set the table must additionally have either an
// "attended" header or at least one header carrying a DD/MM date pattern.
type TableSignature struct {
	Required   []string
	DateColumn bool
}

var dateHeaderPattern = regexp.MustCompile(`\b\d{1,2}/\d{1,2}\b`)

// tableRow is one <tr> with trimmed cell texts and the per-cell styling
// attributes the segmenter's dark-band predicate inspects.
type tableRow struct {
	cells  []string
	styles []string
}

// LocateTable finds the first table in document order whose header row
// matches the signature. Returns nil when no table qualifies.
func LocateTable(doc *goquery.Document, sig TableSignature) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		if matchesSignature(headerTexts(tbl), sig) {
			found = tbl
			return false
		}
		return true
	})
	return found
}

// headerTexts returns the lower-cased cell texts of a table's first row.
func headerTexts(tbl *goquery.Selection) []string {
	var headers []string
	tbl.Find("tr").First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, strings.ToLower(cleanCellText(cell.Text())))
	})
	return headers
}

func matchesSignature(headers []string, sig TableSignature) bool {
	if len(headers) == 0 {
		return false
	}
	for _, token := range sig.Required {
		token = strings.ToLower(token)
		if !anyHeaderContains(headers, token) {
			return false
		}
	}
	if sig.DateColumn {
		if !anyHeaderContains(headers, "attended") && !anyHeaderMatchesDate(headers) {
			return false
		}
	}
	return true
}

func anyHeaderContains(headers []string, token string) bool {
	for _, h := range headers {
		if strings.Contains(h, token) {
			return true
		}
	}
	return false
}

func anyHeaderMatchesDate(headers []string) bool {
	for _, h := range headers {
		if dateHeaderPattern.MatchString(h) {
			return true
		}
	}
	return false
}

// TableRows extracts every row of the table, including the header row, in
// document order.
func TableRows(tbl *goquery.Selection) []tableRow {
	var rows []tableRow
	tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var row tableRow
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			row.cells = append(row.cells, cleanCellText(cell.Text()))
			row.styles = append(row.styles, cellStyle(cell))
		})
		rows = append(rows, row)
	})
	return rows
}

// cellStyle joins the attributes that can signal a styled header band.
func cellStyle(cell *goquery.Selection) string {
	style, _ := cell.Attr("style")
	bgcolor, _ := cell.Attr("bgcolor")
	return strings.ToLower(strings.TrimSpace(style + " " + bgcolor))
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// cleanCellText collapses internal whitespace (scraped markup is full of
// newlines and non-breaking spaces) and trims the result.
func cleanCellText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
