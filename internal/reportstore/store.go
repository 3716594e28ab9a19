// Package reportstore keeps audit reports in SQLite or PostgreSQL: one row per run and
// one row per hand.
package reportstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const sqlitePrefix = "sqlite:"

// Run is one invocation of the auditor.
type Run struct {
	ID              string
	StartedAt       time.Time
	Input           string
	Fix             bool
	Seed            int64
	TotalHands      int
	HandsWithIssues int
}

// HandReport is the outcome for one hand of a run.
type HandReport struct {
	HandIndex int
	HandID    string
	Issues    []string
}

// Store writes runs to a database.
type Store struct {
	db       *sql.DB
	postgres bool
	logger   zerolog.Logger
}

// Open connects to dsn, which is either sqlite:<path> or a postgres:// URL, and creates
// the tables when missing.
func Open(ctx context.Context, dsn string, logger zerolog.Logger) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	var (
		s   = &Store{logger: logger.With().Str("component", "reportstore").Logger()}
		err error
	)
	switch {
	case strings.HasPrefix(dsn, sqlitePrefix):
		s.db, err = openSQLite(ctx, strings.TrimPrefix(dsn, sqlitePrefix))
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		s.postgres = true
		s.db, err = openPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported report database %q", dsn)
	}
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.ensureSchema(ctx); err != nil {
		_ = s.db.Close()
		return nil, fmt.Errorf("create report schema: %w", err)
	}
	return s, nil
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if path != ":memory:" {
		parent := filepath.Dir(path)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	for _, stmt := range []string{`
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    started_at_ms BIGINT NOT NULL,
    input TEXT NOT NULL,
    fix INTEGER NOT NULL DEFAULT 0,
    seed BIGINT NOT NULL,
    total_hands INTEGER NOT NULL,
    hands_with_issues INTEGER NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS hand_reports (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    hand_index INTEGER NOT NULL,
    hand_id TEXT NOT NULL DEFAULT '',
    issue_count INTEGER NOT NULL,
    issues TEXT NOT NULL DEFAULT '[]',
    PRIMARY KEY (run_id, hand_index)
)`} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun stores a run with its hands in one transaction. A run without an ID gets a
// random one; the ID used is returned.
func (s *Store) SaveRun(ctx context.Context, run Run, hands []HandReport) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.rebind(`
INSERT INTO runs (id, started_at_ms, input, fix, seed, total_hands, hands_with_issues)
VALUES (?, ?, ?, ?, ?, ?, ?)`),
		run.ID, run.StartedAt.UnixMilli(), run.Input, boolInt(run.Fix), run.Seed, run.TotalHands, run.HandsWithIssues,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	insert := s.rebind(`
INSERT INTO hand_reports (run_id, hand_index, hand_id, issue_count, issues)
VALUES (?, ?, ?, ?, ?)`)
	for _, h := range hands {
		issues := h.Issues
		if issues == nil {
			issues = []string{}
		}
		encoded, err := json.Marshal(issues)
		if err != nil {
			return "", err
		}
		if _, err := tx.ExecContext(ctx, insert, run.ID, h.HandIndex, h.HandID, len(issues), string(encoded)); err != nil {
			return "", fmt.Errorf("insert hand %d: %w", h.HandIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	s.logger.Debug().
		Str("run_id", run.ID).
		Int("hands", len(hands)).
		Int("hands_with_issues", run.HandsWithIssues).
		Msg("Saved run report")
	return run.ID, nil
}

// LoadRun reads a stored run and its hands in index order.
func (s *Store) LoadRun(ctx context.Context, id string) (Run, []HandReport, error) {
	var (
		run     = Run{ID: id}
		started int64
		fix     int
	)
	err := s.db.QueryRowContext(ctx, s.rebind(`
SELECT started_at_ms, input, fix, seed, total_hands, hands_with_issues FROM runs WHERE id = ?`), id).
		Scan(&started, &run.Input, &fix, &run.Seed, &run.TotalHands, &run.HandsWithIssues)
	if err != nil {
		return Run{}, nil, fmt.Errorf("load run %s: %w", id, err)
	}
	run.StartedAt = time.UnixMilli(started)
	run.Fix = fix != 0

	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT hand_index, hand_id, issues FROM hand_reports WHERE run_id = ? ORDER BY hand_index`), id)
	if err != nil {
		return Run{}, nil, err
	}
	defer rows.Close()

	var hands []HandReport
	for rows.Next() {
		var (
			h   HandReport
			raw string
		)
		if err := rows.Scan(&h.HandIndex, &h.HandID, &raw); err != nil {
			return Run{}, nil, err
		}
		if err := json.Unmarshal([]byte(raw), &h.Issues); err != nil {
			return Run{}, nil, fmt.Errorf("decode issues of hand %d: %w", h.HandIndex, err)
		}
		hands = append(hands, h)
	}
	return run, hands, rows.Err()
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
