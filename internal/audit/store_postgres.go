package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists the trail in a single append-only table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the events table. Idempotent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS onboarding_audit_events (
			id         UUID PRIMARY KEY,
			ts         TIMESTAMPTZ NOT NULL,
			run_id     TEXT NOT NULL,
			action     TEXT NOT NULL,
			stage      TEXT NOT NULL,
			reason     TEXT NOT NULL DEFAULT '',
			device     TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS onboarding_audit_events_run_idx
			ON onboarding_audit_events (run_id, ts);
	`)
	if err != nil {
		return fmt.Errorf("migrate audit store: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO onboarding_audit_events (id, ts, run_id, action, stage, reason, device)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, event.ID, event.Timestamp, event.RunID, string(event.Action), event.Stage, event.Reason, event.Device)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByRun(ctx context.Context, runID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, run_id, action, stage, reason, device
		FROM onboarding_audit_events
		WHERE run_id = $1
		ORDER BY ts
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var action string
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.RunID, &action, &e.Stage, &e.Reason, &e.Device); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		events = append(events, e)
	}
	return events, rows.Err()
}
