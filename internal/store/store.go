// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists completed vetting runs in a SQLite database and
// offers list, lookup, and full-text search over past reports.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/vetting-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "vetting.db"
)

// Store manages the run-history SQLite database.
type Store struct {
	db *sql.DB
}

// New opens or creates the run history database at dataDir/index/vetting.db,
// creating the schema if needed.
func New(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			company TEXT NOT NULL,
			canonical TEXT,
			recommendation TEXT NOT NULL,
			severity TEXT,
			sources INTEGER,
			abort_reason TEXT,
			summary TEXT,
			report_json TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_company ON runs(company)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='runs_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE runs_fts USING fts5(company, summary, content=runs, content_rowid=rowid)`,
			`CREATE TRIGGER runs_ai AFTER INSERT ON runs BEGIN
				INSERT INTO runs_fts(rowid, company, summary) VALUES (new.rowid, new.company, new.summary);
			END`,
			`CREATE TRIGGER runs_ad AFTER DELETE ON runs BEGIN
				INSERT INTO runs_fts(runs_fts, rowid, company, summary) VALUES('delete', old.rowid, old.company, old.summary);
			END`,
			`CREATE TRIGGER runs_au AFTER UPDATE ON runs BEGIN
				INSERT INTO runs_fts(runs_fts, rowid, company, summary) VALUES('delete', old.rowid, old.company, old.summary);
				INSERT INTO runs_fts(rowid, company, summary) VALUES (new.rowid, new.company, new.summary);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// SaveRun upserts a finished run keyed by its run ID. Only runs that produced
// a report are stored.
func (s *Store) SaveRun(state *types.VettingState) error {
	r := state.Report
	if r == nil {
		return fmt.Errorf("run %s has no report", state.RunID)
	}

	reportJSON, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	severity := ""
	if r.Risk != nil {
		severity = string(r.Risk.Severity)
	}
	summary := r.ExecutiveSummary
	if len(r.KeyFindings) > 0 {
		summary += "\n" + strings.Join(r.KeyFindings, "\n")
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (id, company, canonical, recommendation, severity, sources, abort_reason, summary, report_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			company=excluded.company, canonical=excluded.canonical,
			recommendation=excluded.recommendation, severity=excluded.severity,
			sources=excluded.sources, abort_reason=excluded.abort_reason,
			summary=excluded.summary, report_json=excluded.report_json,
			created_at=excluded.created_at`,
		state.RunID, r.CompanyName, r.CanonicalName, string(r.Recommendation),
		severity, r.SourcesChecked, string(r.AbortReason), summary,
		string(reportJSON), r.GeneratedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", state.RunID, err)
	}
	return nil
}

// RunSummary is one row of the run history listing.
type RunSummary struct {
	ID             string               `json:"id" yaml:"id"`
	Company        string               `json:"company" yaml:"company"`
	Canonical      string               `json:"canonical,omitempty" yaml:"canonical,omitempty"`
	Recommendation types.Recommendation `json:"recommendation" yaml:"recommendation"`
	Severity       string               `json:"severity,omitempty" yaml:"severity,omitempty"`
	Sources        int                  `json:"sources" yaml:"sources"`
	AbortReason    string               `json:"abort_reason,omitempty" yaml:"abort_reason,omitempty"`
	CreatedAt      time.Time            `json:"created_at" yaml:"created_at"`
}

const summaryColumns = `id, company, canonical, recommendation, severity, sources, abort_reason, created_at`

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+summaryColumns+` FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows)
}

// SearchRuns runs a full-text query over company names and report summaries,
// ranked by relevance.
func (s *Store) SearchRuns(ctx context.Context, query string, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.company, r.canonical, r.recommendation, r.severity, r.sources, r.abort_reason, r.created_at
		 FROM runs_fts
		 JOIN runs r ON r.rowid = runs_fts.rowid
		 WHERE runs_fts MATCH ?
		 ORDER BY runs_fts.rank
		 LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching runs: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows)
}

// GetReport loads a stored report by run ID. A unique ID prefix is accepted.
func (s *Store) GetReport(ctx context.Context, id string) (*types.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, report_json FROM runs WHERE id = ? OR id LIKE ? || '%' LIMIT 2`, id, id)
	if err != nil {
		return nil, fmt.Errorf("looking up run: %w", err)
	}
	defer rows.Close()

	var matches []string
	var reportJSON string
	for rows.Next() {
		var matchID, rj string
		if err := rows.Scan(&matchID, &rj); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		matches = append(matches, matchID)
		reportJSON = rj
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("run %s not found", id)
	case 1:
	default:
		return nil, fmt.Errorf("run ID %s is ambiguous", id)
	}

	var report types.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("decoding stored report: %w", err)
	}
	return &report, nil
}

func scanSummaries(rows *sql.Rows) ([]RunSummary, error) {
	var out []RunSummary
	for rows.Next() {
		var (
			rs                              RunSummary
			canonical, severity, abort, rec sql.NullString
			created                         string
		)
		if err := rows.Scan(&rs.ID, &rs.Company, &canonical, &rec, &severity, &rs.Sources, &abort, &created); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		rs.Canonical = canonical.String
		rs.Recommendation = types.Recommendation(rec.String)
		rs.Severity = severity.String
		rs.AbortReason = abort.String
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			rs.CreatedAt = t
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}
