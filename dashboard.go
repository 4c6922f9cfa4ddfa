package main

import (
	"database/sql"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// RunResult tracks separate counters for each outcome of a dashboard pass.
type RunResult struct {
	Reports           int
	Sections          int
	Facts             int
	SkippedColumns    int
	OffWeekdayColumns int
	UnresolvedNames   []string
	AmbiguousNames    []string
	Errors            []string
	ReportPath        string
}

// DashboardData is everything the renderer and notifiers consume: ordered
// series and metrics per report source.
type DashboardData struct {
	GeneratedAt time.Time
	Year        int
	Reports     []ReportData
}

// ReportData holds one source's derived aggregates.
type ReportData struct {
	Source   ReportSource
	Result   ExtractResult
	Services []AggregateSeries // raw weekly counts per service, post split
	Smoothed []AggregateSeries // rolling-average view of Services
	Combined AggregateSeries   // union count across same-day services
	YearToDate AggregateSeries // cumulative combined count
	Means    []Metric          // yearly mean per service vs congregation size
	Sections []SectionSummary
}

// SectionSummary is the per-group view of one report.
type SectionSummary struct {
	Title        string
	Kind         string
	Attendees    []string
	MissedRecent []string
}

// RunDashboard executes one full pass: fetch roster and report documents,
// extract facts, aggregate, render and write the dashboard. Each pass
// builds its own roster index and fact set from scratch; failures inside a
// single report are recorded and skipped, and only total absence of usable
// data leaves the dashboard empty.
func RunDashboard(cfg Config, db *sql.DB) (RunResult, error) {
	var result RunResult

	roster, vocab, rosterErrs := loadRosterContext(cfg)
	result.Errors = append(result.Errors, rosterErrs...)

	data := DashboardData{
		GeneratedAt: time.Now().In(cfg.Location),
		Year:        cfg.ReportingYear,
	}

	for _, source := range cfg.Reports {
		report, err := processReport(cfg, db, source, roster, vocab)
		if err != nil {
			log.Printf("dashboard: report %s failed: %v", source.Name, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", source.Name, err))
			continue
		}
		result.Reports++
		result.Sections += len(report.Result.Sections)
		result.Facts += len(report.Result.Facts)
		result.SkippedColumns += report.Result.SkippedColumns
		result.OffWeekdayColumns += report.Result.OffWeekdayColumns
		result.UnresolvedNames = append(result.UnresolvedNames, report.Result.UnresolvedNames...)
		result.AmbiguousNames = append(result.AmbiguousNames, report.Result.AmbiguousNames...)
		data.Reports = append(data.Reports, report)
	}
	result.UnresolvedNames = uniqueStrings(result.UnresolvedNames)
	result.AmbiguousNames = uniqueStrings(result.AmbiguousNames)

	content := RenderDashboard(cfg, data)
	if commentary := maybeCommentary(cfg, data); commentary != "" {
		content += "\n### Commentary\n\n" + commentary + "\n"
	}

	path, err := WriteReportFile(content, cfg.ReportOutputDir, data.GeneratedAt, cfg.ChurchName)
	if err != nil {
		return result, fmt.Errorf("writing dashboard: %w", err)
	}
	result.ReportPath = path

	if cfg.EmailDrafts {
		if _, err := WriteEmailDraftFile(content, cfg.ReportOutputDir, data.GeneratedAt, cfg.ChurchName+" attendance"); err != nil {
			log.Printf("dashboard: email draft error: %v", err)
			result.Errors = append(result.Errors, fmt.Sprintf("email draft: %v", err))
		}
	}

	if db != nil {
		if err := InsertRunLog(db, result); err != nil {
			log.Printf("dashboard: run log error: %v", err)
		}
	}

	log.Printf("dashboard run done reports=%d sections=%d facts=%d unresolved=%d path=%s",
		result.Reports, result.Sections, result.Facts, len(result.UnresolvedNames), result.ReportPath)
	return result, nil
}

// loadRosterContext fetches the roster and its group list. A failed roster
// fetch degrades to raw display names; a failed group fetch keeps the
// configured vocabulary as is.
func loadRosterContext(cfg Config) (*RosterIndex, *Vocabulary, []string) {
	var errs []string

	var roster *RosterIndex
	people, err := FetchRoster(cfg)
	if err != nil {
		log.Printf("dashboard: roster fetch failed, using raw names: %v", err)
		errs = append(errs, fmt.Sprintf("roster: %v", err))
	} else {
		roster = NewRosterIndex(people)
	}

	vocab := cfg.Vocabulary
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	groups, err := FetchGroups(cfg)
	if err != nil {
		log.Printf("dashboard: group fetch failed, vocabulary unchanged: %v", err)
	} else if len(groups) > 0 {
		vocab = vocab.WithGroupNames(groups)
	}
	return roster, vocab, errs
}

// processReport fetches (or falls back to cached markup for) one source
// and derives its aggregates.
func processReport(cfg Config, db *sql.DB, source ReportSource, roster *RosterIndex, vocab *Vocabulary) (ReportData, error) {
	reportDate := dateKey(time.Date(source.Year, time.December, 31, 0, 0, 0, 0, time.UTC))

	markup, err := FetchDocument(source.URL)
	if err != nil {
		if db == nil {
			return ReportData{}, err
		}
		cached, fetchedAt, cacheErr := CachedDocument(db, source.URL, reportDate)
		if cacheErr != nil {
			return ReportData{}, err
		}
		log.Printf("dashboard: fetch failed for %s, using cache from %s: %v",
			source.Name, fetchedAt.Format("2006-01-02"), err)
		markup = cached
	} else if db != nil {
		if err := CacheDocument(db, source.URL, reportDate, markup); err != nil {
			log.Printf("dashboard: cache write error for %s: %v", source.Name, err)
		}
	}

	extracted, err := ExtractAttendance(markup, ExtractOptions{
		Signature:  TableSignature{Required: []string{"first name"}, DateColumn: true},
		ReportYear: source.Year,
		Weekday:    source.ExpectedWeekday(),
		Roster:     roster,
		Vocabulary: vocab,
	})
	if err != nil {
		return ReportData{}, err
	}

	return buildReportData(cfg, source, extracted), nil
}

// buildReportData turns one extraction result into ordered series and
// metrics.
func buildReportData(cfg Config, source ReportSource, extracted ExtractResult) ReportData {
	report := ReportData{Source: source, Result: extracted}

	counts := ServiceDailyCounts(extracted.Facts)
	SplitCombinedService(counts, cfg.ProRataDefaultRatio)

	services := make([]ServiceTime, 0, len(counts))
	for svc := range counts {
		services = append(services, svc)
	}
	sort.Slice(services, func(i, j int) bool { return serviceOrder[services[i]] < serviceOrder[services[j]] })

	for _, svc := range services {
		series := CountSeries(string(svc), source.Year, counts[svc])
		series.Points = TrimTrailingZeros(series.Points)
		if len(series.Points) == 0 {
			continue
		}
		report.Services = append(report.Services, series)
		report.Smoothed = append(report.Smoothed, SmoothedSeries(series, cfg.RollingWindow))
		report.Means = append(report.Means, NewMetric(
			string(svc), source.Year, YearlyMean(series.Points), float64(cfg.CongregationSize)))
	}

	report.Combined = CountSeries("combined", source.Year, CombinedDailyCounts(extracted.Facts))
	report.Combined.Points = TrimTrailingZeros(report.Combined.Points)
	report.YearToDate = AggregateSeries{Cohort: "ytd", Year: source.Year,
		Points: CumulativeYTD(report.Combined.Points)}

	for _, section := range extracted.Sections {
		report.Sections = append(report.Sections, SectionSummary{
			Title:        section.Title,
			Kind:         section.Kind,
			Attendees:    SectionAttendees(section, extracted.Layout, cfg.MinAttendance),
			MissedRecent: MissedRecentMeetings(section, extracted.Layout, cfg.RecentAbsenceWindow),
		})
	}
	return report
}

// FormatRunSummary returns a one-message summary of a pass, for logs and
// channel notifications.
func FormatRunSummary(result RunResult) string {
	if result.Reports == 0 && len(result.Errors) > 0 {
		return fmt.Sprintf("Dashboard run failed:\n%s", strings.Join(result.Errors, "\n"))
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d reports", result.Reports))
	parts = append(parts, fmt.Sprintf("%d sections", result.Sections))
	parts = append(parts, fmt.Sprintf("%d facts", result.Facts))
	if result.SkippedColumns > 0 {
		parts = append(parts, fmt.Sprintf("%d columns skipped", result.SkippedColumns))
	}
	if result.OffWeekdayColumns > 0 {
		parts = append(parts, fmt.Sprintf("%d off-weekday columns", result.OffWeekdayColumns))
	}
	if n := len(result.UnresolvedNames); n > 0 {
		parts = append(parts, fmt.Sprintf("%d unresolved names", n))
	}
	if n := len(result.AmbiguousNames); n > 0 {
		parts = append(parts, fmt.Sprintf("%d ambiguous names", n))
	}
	msg := fmt.Sprintf("Dashboard updated (%s)", strings.Join(parts, ", "))
	if result.ReportPath != "" {
		msg += fmt.Sprintf("\nReport: %s", result.ReportPath)
	}
	if len(result.Errors) > 0 {
		msg += fmt.Sprintf("\nWarnings:\n%s", strings.Join(result.Errors, "\n"))
	}
	return msg
}

func joinErrors(errs []string) string {
	return strings.Join(errs, "; ")
}
