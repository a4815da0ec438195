package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IngestResult reports the outcome of one ingestion batch.
type IngestResult struct {
	BatchID  string `json:"batch_id"`
	Inserted int    `json:"inserted"`
	Replaced int    `json:"replaced"`
}

// Ingest upserts a set of normalized records into the user's partition.
// The upsert key is (kind, date): a record for an already-stored date
// replaces the prior row entirely, so re-uploading the same export is
// idempotent.
func (s *Store) Ingest(ctx context.Context, userID string, records *RecordSet) (*IngestResult, error) {
	db, err := s.partition(userID)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin ingest transaction: %w", err)
	}
	defer tx.Rollback()

	result := &IngestResult{BatchID: uuid.NewString()}
	now := time.Now().Unix()

	for i := range records.Predictions {
		p := &records.Predictions[i]
		if err := upsert(ctx, tx, result, "race_predictions", p.Date, `
			INSERT INTO race_predictions (date, time_5k, time_10k, time_half, time_marathon, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(date) DO UPDATE SET
				time_5k = excluded.time_5k,
				time_10k = excluded.time_10k,
				time_half = excluded.time_half,
				time_marathon = excluded.time_marathon,
				updated_at = excluded.updated_at
		`, p.Date.Format(dateLayout), p.Time5K, p.Time10K, p.TimeHalf, p.TimeMarathon, now, now); err != nil {
			return nil, err
		}
	}

	for i := range records.Statuses {
		r := &records.Statuses[i]
		if err := upsert(ctx, tx, result, "training_statuses", r.Date, `
			INSERT INTO training_statuses (date, status, created_at, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(date) DO UPDATE SET
				status = excluded.status,
				updated_at = excluded.updated_at
		`, r.Date.Format(dateLayout), string(r.Status), now, now); err != nil {
			return nil, err
		}
	}

	for i := range records.Acclimation {
		r := &records.Acclimation[i]
		if err := upsert(ctx, tx, result, "acclimation", r.Date, `
			INSERT INTO acclimation (date, heat_pct, altitude_pct, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(date) DO UPDATE SET
				heat_pct = excluded.heat_pct,
				altitude_pct = excluded.altitude_pct,
				updated_at = excluded.updated_at
		`, r.Date.Format(dateLayout), r.HeatPct, r.AltitudePct, now, now); err != nil {
			return nil, err
		}
	}

	for i := range records.Activities {
		a := &records.Activities[i]
		if err := upsert(ctx, tx, result, "activities", a.Date, `
			INSERT INTO activities (date, activity_type, distance_meters, duration_seconds, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(date) DO UPDATE SET
				activity_type = excluded.activity_type,
				distance_meters = excluded.distance_meters,
				duration_seconds = excluded.duration_seconds,
				updated_at = excluded.updated_at
		`, a.Date.Format(dateLayout), a.ActivityType, a.DistanceMeters, a.DurationSeconds, now, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ingest transaction: %w", err)
	}
	return result, nil
}

// upsert runs one keyed insert-or-replace and tallies whether the date
// already existed.
func upsert(ctx context.Context, tx *sql.Tx, result *IngestResult, table string, date time.Time, query string, args ...any) error {
	var exists bool
	err := tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE date = ?)", table),
		date.Format(dateLayout),
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check existing %s row: %w", table, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", table, err)
	}

	if exists {
		result.Replaced++
	} else {
		result.Inserted++
	}
	return nil
}

// ClearUser removes every record in the user's partition. Other users'
// partitions are untouched.
func (s *Store) ClearUser(ctx context.Context, userID string) error {
	db, err := s.partition(userID)
	if err != nil {
		return err
	}

	for _, table := range []string{"race_predictions", "training_statuses", "acclimation", "activities"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
