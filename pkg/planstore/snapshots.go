package planstore

import (
	"context"
	"fmt"
	"time"
)

// Assignment is one job outcome inside a run snapshot. Machine is zero when
// the job was skipped.
type Assignment struct {
	JobID    string
	GroupKey string
	Category string
	Machine  int
	Skipped  bool
}

// RunInfo summarizes a stored run.
type RunInfo struct {
	RunID     string
	CreatedAt time.Time
	Assigned  int
	Skipped   int
}

// SaveSnapshot stores the outcome of a planning run under its run id.
// Saving the same run id twice replaces the earlier snapshot.
func (s *Store) SaveSnapshot(ctx context.Context, runID string, assignments []Assignment) error {
	if runID == "" {
		return fmt.Errorf("run id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snapshots WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	ts := now()
	for _, a := range assignments {
		skipped := 0
		if a.Skipped {
			skipped = 1
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snapshots (run_id, job_id, group_key, category, machine, skipped, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, a.JobID, a.GroupKey, a.Category, a.Machine, skipped, ts); err != nil {
			return fmt.Errorf("insert snapshot row: %w", err)
		}
	}
	return tx.Commit()
}

// LoadSnapshot returns the assignments of a stored run, in group then job
// order. ErrNotFound is returned for an unknown run id.
func (s *Store) LoadSnapshot(ctx context.Context, runID string) ([]Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT job_id, group_key, category, machine, skipped
			FROM snapshots WHERE run_id = ?
			ORDER BY group_key, job_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		var a Assignment
		var skipped int
		if err := rows.Scan(&a.JobID, &a.GroupKey, &a.Category, &a.Machine, &skipped); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		a.Skipped = skipped != 0
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: run %s", ErrNotFound, runID)
	}
	return out, nil
}

// ListRuns returns stored runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, MIN(created_at),
				SUM(CASE WHEN skipped = 0 THEN 1 ELSE 0 END),
				SUM(skipped)
			FROM snapshots GROUP BY run_id
			ORDER BY MIN(created_at) DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		var info RunInfo
		var created string
		if err := rows.Scan(&info.RunID, &created, &info.Assigned, &info.Skipped); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		info.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, info)
	}
	return out, rows.Err()
}
