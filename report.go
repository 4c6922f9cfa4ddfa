package main

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RenderDashboard renders the full dashboard as markdown. All ordering is
// stable: reports in configured order, services by service order, dates
// chronologically, people alphabetically.
func RenderDashboard(cfg Config, data DashboardData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s Dashboard %d (generated %s)\n",
		cfg.ChurchName, data.Year, data.GeneratedAt.Format("2006-01-02"))

	for _, report := range data.Reports {
		fmt.Fprintf(&b, "\n#### %s\n\n", report.Source.Name)

		if report.Result.Empty() {
			b.WriteString("No usable attendance data found.\n")
			continue
		}

		for i, series := range report.Services {
			mean := report.Means[i]
			line := fmt.Sprintf("- **%s**: average %.1f", series.Cohort, mean.Numerator)
			if mean.Denominator > 0 {
				line += fmt.Sprintf(" (%.1f%% of congregation", mean.Percentage)
				if cfg.TargetIncrementPoints != 0 {
					line += fmt.Sprintf(", target %.1f%%", ProjectTarget(mean.Percentage, cfg.TargetIncrementPoints))
				}
				line += ")"
			} else if cfg.TargetIncrementCount != 0 {
				line += fmt.Sprintf(" (target %.1f)", ProjectTarget(mean.Numerator, cfg.TargetIncrementCount))
			}
			b.WriteString(line + "\n")
		}

		if n := len(report.Combined.Points); n > 0 {
			last := report.Combined.Points[n-1]
			fmt.Fprintf(&b, "- **combined**: %.0f on %s, year to date %.0f\n",
				last.Value, last.Date.Format("02/01/2006"),
				report.YearToDate.Points[n-1].Value)
		}

		renderSections(&b, report.Sections)
		renderSkips(&b, report.Result)
	}
	return b.String()
}

func renderSections(b *strings.Builder, sections []SectionSummary) {
	if len(sections) == 0 {
		return
	}
	b.WriteString("\n**Groups**\n\n")
	for _, s := range sections {
		label := s.Title
		if s.Kind != "" {
			label += fmt.Sprintf(" (%s)", s.Kind)
		}
		fmt.Fprintf(b, "- %s: %d regulars\n", label, len(s.Attendees))
		if len(s.MissedRecent) > 0 {
			fmt.Fprintf(b, "  - missed recent meetings: %s\n", strings.Join(s.MissedRecent, ", "))
		}
	}
}

func renderSkips(b *strings.Builder, result ExtractResult) {
	var notes []string
	if result.SkippedColumns > 0 {
		notes = append(notes, fmt.Sprintf("%d unparseable columns", result.SkippedColumns))
	}
	if result.OffWeekdayColumns > 0 {
		notes = append(notes, fmt.Sprintf("%d off-weekday columns", result.OffWeekdayColumns))
	}
	if len(result.UnresolvedNames) > 0 {
		notes = append(notes, fmt.Sprintf("unresolved: %s", strings.Join(result.UnresolvedNames, ", ")))
	}
	if len(result.AmbiguousNames) > 0 {
		notes = append(notes, fmt.Sprintf("ambiguous: %s", strings.Join(result.AmbiguousNames, ", ")))
	}
	if len(notes) > 0 {
		fmt.Fprintf(b, "\n_Skipped: %s_\n", strings.Join(notes, "; "))
	}
}

func WriteReportFile(content, outputDir string, reportDate time.Time, reportName string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s_%s.md", sanitizeFilename(reportName), reportDate.Format("20060102"))
	path := filepath.Join(outputDir, filename)
	return path, os.WriteFile(path, []byte(content), 0644)
}

// WriteEmailDraftFile writes the dashboard as a multipart .eml draft for
// the leadership mailing.
func WriteEmailDraftFile(body, outputDir string, reportDate time.Time, subjectPrefix string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s_%s.eml", sanitizeFilename(subjectPrefix), reportDate.Format("20060102"))
	path := filepath.Join(outputDir, filename)
	subject := fmt.Sprintf("%s %s", subjectPrefix, reportDate.Format("20060102"))
	content := buildEML(subject, body)
	return path, os.WriteFile(path, []byte(content), 0644)
}

func buildEML(subject, body string) string {
	const boundary = "attendancebot-alt"
	headers := []string{
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q", boundary),
		fmt.Sprintf("Subject: %s", subject),
	}
	plain := normalizeCRLF(markdownToPlain(body))
	htmlBody := markdownToHTML(body)

	var out strings.Builder
	out.WriteString(strings.Join(headers, "\r\n"))
	out.WriteString("\r\n\r\n")
	out.WriteString("--" + boundary + "\r\n")
	out.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	out.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	out.WriteString(plain)
	if !strings.HasSuffix(plain, "\r\n") {
		out.WriteString("\r\n")
	}
	out.WriteString("\r\n--" + boundary + "\r\n")
	out.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	out.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	out.WriteString(htmlBody)
	out.WriteString("\r\n--" + boundary + "--\r\n")
	return out.String()
}

func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_", " ", "_")
	return replacer.Replace(s)
}

func normalizeCRLF(s string) string {
	normalized := strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(normalized, "\n", "\r\n")
}

// markdownToPlain strips heading markers and bold tokens for the text/plain
// alternative.
func markdownToPlain(body string) string {
	var out []string
	prevBlank := false
	for _, line := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "### ") || strings.HasPrefix(trimmed, "#### ") {
			line = strings.TrimSpace(strings.TrimLeft(trimmed, "# "))
		}
		line = strings.ReplaceAll(line, "**", "")
		if strings.TrimSpace(line) == "" {
			if prevBlank {
				continue
			}
			prevBlank = true
			out = append(out, "")
			continue
		}
		prevBlank = false
		out = append(out, line)
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n") + "\n"
}

// markdownToHTML renders the limited markdown the dashboard emits:
// headings, flat and one-level-indented list items, bold, plain lines.
func markdownToHTML(body string) string {
	var b strings.Builder
	b.WriteString(`<html><body style="font-family: Calibri, Arial, sans-serif; font-size: 11pt; color: #1f1f1f; line-height: 1.35;">`)
	inList := false
	closeList := func() {
		if inList {
			b.WriteString(`</ul>`)
			inList = false
		}
	}

	for _, raw := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		line := strings.TrimRight(raw, " \t")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			closeList()
			b.WriteString(`<div style="height: 10px;"></div>`)
		case strings.HasPrefix(trimmed, "### ") || strings.HasPrefix(trimmed, "#### "):
			closeList()
			text := renderInlineBold(strings.TrimSpace(strings.TrimLeft(trimmed, "# ")))
			b.WriteString(`<div style="font-weight: 700; margin: 12px 0 6px 0;">` + text + `</div>`)
		case strings.HasPrefix(trimmed, "- "):
			if !inList {
				b.WriteString(`<ul style="margin: 0 0 0 18px; padding-left: 18px; list-style-type: disc;">`)
				inList = true
			}
			text := renderInlineBold(strings.TrimSpace(strings.TrimPrefix(trimmed, "- ")))
			indent := ""
			if strings.HasPrefix(line, "  ") {
				indent = ` style="margin-left: 18px;"`
			}
			b.WriteString(`<li` + indent + `>` + text + `</li>`)
		default:
			closeList()
			b.WriteString(`<div style="margin: 2px 0;">` + renderInlineBold(trimmed) + `</div>`)
		}
	}
	closeList()
	b.WriteString(`</body></html>`)
	return b.String()
}

func renderInlineBold(s string) string {
	var out strings.Builder
	for {
		start := strings.Index(s, "**")
		if start < 0 {
			break
		}
		end := strings.Index(s[start+2:], "**")
		if end < 0 {
			break
		}
		out.WriteString(html.EscapeString(s[:start]))
		out.WriteString("<strong>")
		out.WriteString(html.EscapeString(s[start+2 : start+2+end]))
		out.WriteString("</strong>")
		s = s[start+4+end:]
	}
	out.WriteString(html.EscapeString(s))
	return out.String()
}
