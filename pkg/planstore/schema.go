package planstore

import (
	"context"
	"fmt"
)

const schemaVersion = 1

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS schema_meta (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			schema_version INTEGER NOT NULL
		);`,
		`INSERT INTO schema_meta (id, schema_version)
			VALUES (1, 0)
			ON CONFLICT(id) DO NOTHING;`,

		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS blocked_machines (
			machine INTEGER PRIMARY KEY,
			added_at TEXT NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS hidden_machines (
			machine INTEGER PRIMARY KEY,
			added_at TEXT NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS snapshots (
			run_id TEXT NOT NULL,
			job_id TEXT NOT NULL,
			group_key TEXT NOT NULL,
			category TEXT NOT NULL,
			machine INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY(run_id, job_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at);`,

		fmt.Sprintf(`UPDATE schema_meta SET schema_version = %d WHERE schema_version < %d;`,
			schemaVersion, schemaVersion),
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate plan store: %w", err)
		}
	}
	return tx.Commit()
}
