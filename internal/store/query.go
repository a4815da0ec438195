package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// KindAvailability reports whether any data of a kind exists and the
// covered date range.
type KindAvailability struct {
	Available bool   `json:"available"`
	Count     int    `json:"count,omitempty"`
	FirstDate string `json:"first_date,omitempty"`
	LastDate  string `json:"last_date,omitempty"`
}

// Availability is the per-kind data summary for one user.
type Availability map[Kind]KindAvailability

var kindTables = map[Kind]string{
	KindRacePredictions: "race_predictions",
	KindTrainingHistory: "training_statuses",
	KindAcclimation:     "acclimation",
	KindActivities:      "activities",
}

// ListAvailable reports, per record kind, whether any data exists for
// the user and the covered date range. Callers use it to short-circuit
// analysis when prerequisites are absent.
func (s *Store) ListAvailable(ctx context.Context, userID string) (Availability, error) {
	db, err := s.partition(userID)
	if err != nil {
		return nil, err
	}

	avail := make(Availability, len(Kinds))
	for _, kind := range Kinds {
		table := kindTables[kind]
		var count int
		var first, last sql.NullString
		err := db.QueryRowContext(ctx,
			fmt.Sprintf("SELECT COUNT(*), MIN(date), MAX(date) FROM %s", table),
		).Scan(&count, &first, &last)
		if err != nil {
			return nil, fmt.Errorf("failed to summarize %s: %w", table, err)
		}

		avail[kind] = KindAvailability{
			Available: count > 0,
			Count:     count,
			FirstDate: first.String,
			LastDate:  last.String,
		}
	}
	return avail, nil
}

// QueryPredictions returns race prediction snapshots in the window,
// ordered by date ascending.
func (s *Store) QueryPredictions(ctx context.Context, userID string, window Window) ([]RacePrediction, error) {
	db, err := s.partition(userID)
	if err != nil {
		return nil, err
	}
	start, end := window.Bounds(time.Now())

	rows, err := db.QueryContext(ctx, `
		SELECT date, time_5k, time_10k, time_half, time_marathon
		FROM race_predictions
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query race predictions: %w", err)
	}
	defer rows.Close()

	var predictions []RacePrediction
	for rows.Next() {
		var p RacePrediction
		var date string
		if err := rows.Scan(&date, &p.Time5K, &p.Time10K, &p.TimeHalf, &p.TimeMarathon); err != nil {
			return nil, fmt.Errorf("failed to scan race prediction: %w", err)
		}
		if p.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("failed to parse stored date %q: %w", date, err)
		}
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating race predictions: %w", err)
	}
	return predictions, nil
}

// QueryStatuses returns training status records in the window, ordered
// by date ascending.
func (s *Store) QueryStatuses(ctx context.Context, userID string, window Window) ([]StatusRecord, error) {
	db, err := s.partition(userID)
	if err != nil {
		return nil, err
	}
	start, end := window.Bounds(time.Now())

	rows, err := db.QueryContext(ctx, `
		SELECT date, status
		FROM training_statuses
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query training statuses: %w", err)
	}
	defer rows.Close()

	var records []StatusRecord
	for rows.Next() {
		var r StatusRecord
		var date, status string
		if err := rows.Scan(&date, &status); err != nil {
			return nil, fmt.Errorf("failed to scan training status: %w", err)
		}
		if r.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("failed to parse stored date %q: %w", date, err)
		}
		r.Status = Status(status)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating training statuses: %w", err)
	}
	return records, nil
}

// QueryAcclimation returns heat/altitude acclimation records in the
// window, ordered by date ascending.
func (s *Store) QueryAcclimation(ctx context.Context, userID string, window Window) ([]Acclimation, error) {
	db, err := s.partition(userID)
	if err != nil {
		return nil, err
	}
	start, end := window.Bounds(time.Now())

	rows, err := db.QueryContext(ctx, `
		SELECT date, heat_pct, altitude_pct
		FROM acclimation
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query acclimation: %w", err)
	}
	defer rows.Close()

	var records []Acclimation
	for rows.Next() {
		var r Acclimation
		var date string
		if err := rows.Scan(&date, &r.HeatPct, &r.AltitudePct); err != nil {
			return nil, fmt.Errorf("failed to scan acclimation: %w", err)
		}
		if r.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("failed to parse stored date %q: %w", date, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating acclimation: %w", err)
	}
	return records, nil
}

// QueryActivities returns summarized activities in the window, ordered
// by date ascending.
func (s *Store) QueryActivities(ctx context.Context, userID string, window Window) ([]Activity, error) {
	db, err := s.partition(userID)
	if err != nil {
		return nil, err
	}
	start, end := window.Bounds(time.Now())

	rows, err := db.QueryContext(ctx, `
		SELECT date, activity_type, distance_meters, duration_seconds
		FROM activities
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var a Activity
		var date string
		if err := rows.Scan(&date, &a.ActivityType, &a.DistanceMeters, &a.DurationSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		if a.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("failed to parse stored date %q: %w", date, err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}
	return activities, nil
}
