package main

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// InitDB opens the local cache database. It holds fetched report markup
// (so reruns are reproducible and work offline) and an audit log of
// dashboard passes. Attendance facts are never persisted; every pass
// re-derives them from the cached markup.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS document_cache (
		url         TEXT NOT NULL,
		report_date TEXT NOT NULL,
		fetched_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		body        BLOB NOT NULL,
		PRIMARY KEY (url, report_date)
	);
	CREATE INDEX IF NOT EXISTS idx_document_cache_fetched ON document_cache(fetched_at);

	CREATE TABLE IF NOT EXISTS dashboard_runs (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		run_at           DATETIME DEFAULT CURRENT_TIMESTAMP,
		reports          INTEGER NOT NULL DEFAULT 0,
		sections         INTEGER NOT NULL DEFAULT 0,
		facts            INTEGER NOT NULL DEFAULT 0,
		skipped_columns  INTEGER NOT NULL DEFAULT 0,
		unresolved_names INTEGER NOT NULL DEFAULT 0,
		errors           TEXT DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_dashboard_runs_run_at ON dashboard_runs(run_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	// Migration: add ambiguous_names column if missing.
	var colCount int
	_ = db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('dashboard_runs') WHERE name = 'ambiguous_names'`).Scan(&colCount)
	if colCount == 0 {
		_, _ = db.Exec(`ALTER TABLE dashboard_runs ADD COLUMN ambiguous_names INTEGER NOT NULL DEFAULT 0`)
	}

	return db, nil
}

// CacheDocument stores (or refreshes) the fetched markup for one report
// source and reporting period.
func CacheDocument(db *sql.DB, url string, reportDate time.Time, body []byte) error {
	_, err := db.Exec(
		`INSERT INTO document_cache (url, report_date, fetched_at, body) VALUES (?, ?, CURRENT_TIMESTAMP, ?)
		 ON CONFLICT(url, report_date) DO UPDATE SET fetched_at = CURRENT_TIMESTAMP, body = excluded.body`,
		url, reportDate.Format("2006-01-02"), body,
	)
	return err
}

// CachedDocument returns the stored markup for a report source, or
// sql.ErrNoRows when nothing is cached.
func CachedDocument(db *sql.DB, url string, reportDate time.Time) ([]byte, time.Time, error) {
	var body []byte
	var fetchedAt time.Time
	err := db.QueryRow(
		`SELECT body, fetched_at FROM document_cache WHERE url = ? AND report_date = ?`,
		url, reportDate.Format("2006-01-02"),
	).Scan(&body, &fetchedAt)
	if err != nil {
		return nil, time.Time{}, err
	}
	return body, fetchedAt, nil
}

// InsertRunLog records one dashboard pass's counters.
func InsertRunLog(db *sql.DB, run RunResult) error {
	_, err := db.Exec(
		`INSERT INTO dashboard_runs (reports, sections, facts, skipped_columns, unresolved_names, ambiguous_names, errors)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.Reports, run.Sections, run.Facts, run.SkippedColumns,
		len(run.UnresolvedNames), len(run.AmbiguousNames), joinErrors(run.Errors),
	)
	return err
}

// LastRunAt returns the time of the most recent logged pass, or the zero
// time when none exists.
func LastRunAt(db *sql.DB) (time.Time, error) {
	var runAt time.Time
	err := db.QueryRow(`SELECT run_at FROM dashboard_runs ORDER BY run_at DESC, id DESC LIMIT 1`).Scan(&runAt)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return runAt, nil
}
