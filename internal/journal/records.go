package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// BeginRun inserts a run row and returns its identifier.
func (j *Journal) BeginRun(ctx context.Context, run Run) (string, error) {
	id := run.ID
	if id == "" {
		id = NewRunID()
	}
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now().UTC()
	}
	err := j.execWithRetry(ctx,
		`INSERT INTO runs (id, started_at, source_dir, output_dir, mode, policy)
         VALUES (?, ?, ?, ?, ?, ?)`,
		id,
		started.Format(time.RFC3339Nano),
		run.SourceDir,
		run.OutputDir,
		run.Mode,
		run.Policy,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// FinishRun stamps the run's end time and final counters.
func (j *Journal) FinishRun(ctx context.Context, id string, counters Counters) error {
	err := j.execWithRetry(ctx,
		`UPDATE runs SET finished_at = ?, scanned = ?, groups = ?, duplicates = ?,
            organized = ?, skipped = ?, deleted = ?, quarantined = ?, warnings = ?
         WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		counters.Scanned,
		counters.Groups,
		counters.Duplicates,
		counters.Organized,
		counters.Skipped,
		counters.Deleted,
		counters.Quarantined,
		counters.Warnings,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordAction appends one file operation to the run's trail.
func (j *Journal) RecordAction(ctx context.Context, runID string, action Action) error {
	err := j.execWithRetry(ctx,
		`INSERT INTO actions (run_id, verb, source_path, dest_path, fingerprint, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		runID,
		action.Verb,
		action.SourcePath,
		nullableString(action.DestPath),
		nullableString(action.Fingerprint),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert action: %w", err)
	}
	return nil
}

const runColumns = `id, started_at, finished_at, source_dir, output_dir, mode, policy,
    scanned, groups, duplicates, organized, skipped, deleted, quarantined, warnings`

// GetRun fetches a single run by identifier. Returns nil when absent.
func (j *Journal) GetRun(ctx context.Context, id string) (*Run, error) {
	row := j.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &run, nil
}

// RecentRuns returns up to limit runs, newest first.
func (j *Journal) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ensureContext(ctx),
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunActions returns the action trail for a run in insertion order.
func (j *Journal) RunActions(ctx context.Context, runID string) ([]Action, error) {
	rows, err := j.db.QueryContext(ensureContext(ctx),
		`SELECT id, run_id, verb, source_path, dest_path, fingerprint, created_at
         FROM actions WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var (
			action    Action
			dest      sql.NullString
			fp        sql.NullString
			createdAt string
		)
		if err := rows.Scan(&action.ID, &action.RunID, &action.Verb, &action.SourcePath, &dest, &fp, &createdAt); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		action.DestPath = dest.String
		action.Fingerprint = fp.String
		action.CreatedAt = parseTimestamp(createdAt)
		actions = append(actions, action)
	}
	return actions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run        Run
		startedAt  string
		finishedAt sql.NullString
	)
	err := row.Scan(
		&run.ID,
		&startedAt,
		&finishedAt,
		&run.SourceDir,
		&run.OutputDir,
		&run.Mode,
		&run.Policy,
		&run.Counters.Scanned,
		&run.Counters.Groups,
		&run.Counters.Duplicates,
		&run.Counters.Organized,
		&run.Counters.Skipped,
		&run.Counters.Deleted,
		&run.Counters.Quarantined,
		&run.Counters.Warnings,
	)
	if err != nil {
		return Run{}, err
	}
	run.StartedAt = parseTimestamp(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTimestamp(finishedAt.String)
	}
	return run, nil
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
