// Package history stores run outcomes in SQLite so runs can be listed and compared.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/giraftest/packages/core/runner"
	"github.com/google/uuid"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

// DefaultPath is used when --history is given without a value
const DefaultPath = ".giraftest/history.db"

var ErrNotFound = errors.New("run not found")

// fixed width so start times sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	base_url    TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	total       INTEGER NOT NULL,
	passed      INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	skipped     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS outcomes (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	suite       TEXT NOT NULL,
	name        TEXT NOT NULL,
	status      TEXT NOT NULL,
	skip_reason TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL,
	PRIMARY KEY (run_id, suite, name)
);
`

// Run is one recorded invocation of the suites
type Run struct {
	ID        string
	StartedAt time.Time
	BaseURL   string
	Duration  time.Duration
	Total     int
	Passed    int
	Failed    int
	Skipped   int
}

// Outcome is the recorded status of one case in a run
type Outcome struct {
	Suite      string
	Name       string
	Status     runner.Status
	SkipReason string
	Error      string
	Duration   time.Duration
}

// Key identifies a case across runs
func (o Outcome) Key() string {
	return o.Suite + "/" + o.Name
}

// Change is a case whose status differs between two runs. An empty status
// means the case was not part of that run.
type Change struct {
	Suite  string
	Name   string
	Before runner.Status
	After  runner.Status
}

type Store struct {
	db *sql.DB
}

// Open opens or creates the history database. Both plain paths and
// sqlite:// / sqlite: prefixed paths are accepted.
func Open(path string) (*Store, error) {
	dsn := parsePath(path)
	if dsn == "" {
		return nil, fmt.Errorf("history: empty database path")
	}
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// one connection keeps :memory: databases and write ordering consistent
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func parsePath(path string) string {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "sqlite://") {
		return strings.TrimPrefix(path, "sqlite://")
	}
	return strings.TrimPrefix(path, "sqlite:")
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores the results of one run and returns it with a fresh id
func (s *Store) Record(ctx context.Context, baseURL string, results []*runner.RunResult) (*Run, error) {
	sum := runner.Summarize(results)
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		BaseURL:   baseURL,
		Duration:  sum.Duration,
		Total:     sum.Total,
		Passed:    sum.Passed,
		Failed:    sum.Failed,
		Skipped:   sum.Skipped,
	}
	if len(results) > 0 && !results[0].StartedAt.IsZero() {
		run.StartedAt = results[0].StartedAt.UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("history: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, base_url, duration_ms, total, passed, failed, skipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.Format(timeLayout), run.BaseURL, run.Duration.Milliseconds(),
		run.Total, run.Passed, run.Failed, run.Skipped)
	if err != nil {
		return nil, fmt.Errorf("history: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO outcomes (run_id, position, suite, name, status, skip_reason, error, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("history: prepare: %w", err)
	}
	defer stmt.Close()

	position := 0
	for _, result := range results {
		for _, cr := range result.Results {
			errText := ""
			if cr.Error != nil {
				errText = cr.Error.Error()
			}
			if _, err := stmt.ExecContext(ctx, run.ID, position, result.Suite, cr.Name,
				string(cr.Status), cr.SkipReason, errText, cr.Duration.Milliseconds()); err != nil {
				return nil, fmt.Errorf("history: insert outcome %s/%s: %w", result.Suite, cr.Name, err)
			}
			position++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("history: commit: %w", err)
	}
	return run, nil
}

// Runs lists recorded runs newest first. A limit of zero or less returns all runs.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, base_url, duration_ms, total, passed, failed, skipped
		FROM runs ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: row iteration error: %w", err)
	}
	return runs, nil
}

// Run looks up a run by id or by a unique id prefix
func (s *Store) Run(ctx context.Context, ref string) (*Run, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, base_url, duration_ms, total, passed, failed, skipped
		 FROM runs WHERE id = ? OR id LIKE ? ORDER BY id = ? DESC LIMIT 2`,
		ref, ref+"%", ref)
	if err != nil {
		return nil, fmt.Errorf("history: find run: %w", err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: row iteration error: %w", err)
	}

	switch {
	case len(found) == 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case found[0].ID == ref || len(found) == 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("history: run prefix %q is ambiguous", ref)
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run        Run
		startedAt  string
		durationMs int64
	)
	if err := row.Scan(&run.ID, &startedAt, &run.BaseURL, &durationMs,
		&run.Total, &run.Passed, &run.Failed, &run.Skipped); err != nil {
		return nil, fmt.Errorf("history: failed to scan run: %w", err)
	}
	t, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("history: run %s has invalid start time: %w", run.ID, err)
	}
	run.StartedAt = t
	run.Duration = time.Duration(durationMs) * time.Millisecond
	return &run, nil
}

// Outcomes returns the case outcomes of a run in execution order
func (s *Store) Outcomes(ctx context.Context, runID string) ([]Outcome, error) {
	run, err := s.Run(ctx, runID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT suite, name, status, skip_reason, error, duration_ms
		 FROM outcomes WHERE run_id = ? ORDER BY position`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("history: list outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []Outcome
	for rows.Next() {
		var (
			o          Outcome
			status     string
			durationMs int64
		)
		if err := rows.Scan(&o.Suite, &o.Name, &status, &o.SkipReason, &o.Error, &durationMs); err != nil {
			return nil, fmt.Errorf("history: failed to scan outcome: %w", err)
		}
		o.Status = runner.Status(status)
		o.Duration = time.Duration(durationMs) * time.Millisecond
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: row iteration error: %w", err)
	}
	return outcomes, nil
}

// Compare returns the cases whose status differs between run a and run b,
// in b's execution order followed by cases only present in a
func (s *Store) Compare(ctx context.Context, a, b string) ([]Change, error) {
	before, err := s.Outcomes(ctx, a)
	if err != nil {
		return nil, err
	}
	after, err := s.Outcomes(ctx, b)
	if err != nil {
		return nil, err
	}
	return Diff(before, after), nil
}

// Diff compares two outcome lists by suite and case name
func Diff(before, after []Outcome) []Change {
	prev := make(map[string]runner.Status, len(before))
	for _, o := range before {
		prev[o.Key()] = o.Status
	}

	var changes []Change
	seen := make(map[string]bool, len(after))
	for _, o := range after {
		seen[o.Key()] = true
		if status := prev[o.Key()]; status != o.Status {
			changes = append(changes, Change{Suite: o.Suite, Name: o.Name, Before: status, After: o.Status})
		}
	}
	for _, o := range before {
		if !seen[o.Key()] {
			changes = append(changes, Change{Suite: o.Suite, Name: o.Name, Before: o.Status})
		}
	}
	return changes
}
