package store

import (
	"context"
	"fmt"
	"time"

	"rosterid/internal/athlete"
)

// RefreshFlags recomputes the per-subsystem aggregate flags for one athlete
// from the registered fact tables. It is a pure recomputation with no
// incremental state, so calling it redundantly is always safe.
func (s *Store) RefreshFlags(ctx context.Context, athleteID string) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		return s.refreshFlags(ctx, s.db, athleteID)
	})
}

// refreshFlags runs the recomputation against q so AddSessionBatch can include
// it in the same transaction as the fact inserts.
func (s *Store) refreshFlags(ctx context.Context, q queryExecer, athleteID string) error {
	now := timestamp(time.Now())

	for _, dt := range s.dependentTables {
		query := fmt.Sprintf(
			"SELECT COUNT(DISTINCT %s) FROM %s WHERE %s = ?",
			dt.SessionColumn, dt.Table, dt.FKColumn)

		var sessions int
		if err := q.QueryRowContext(ctx, query, athleteID).Scan(&sessions); err != nil {
			return fmt.Errorf("count %s sessions for %s: %w", dt.Subsystem, athleteID, err)
		}

		if _, err := q.ExecContext(ctx,
			`INSERT INTO athlete_flags (athlete_id, subsystem, has_data, session_count, updated_at)
             VALUES (?, ?, ?, ?, ?)
             ON CONFLICT (athlete_id, subsystem) DO UPDATE SET
                 has_data = excluded.has_data,
                 session_count = excluded.session_count,
                 updated_at = excluded.updated_at`,
			athleteID, dt.Subsystem, boolToInt(sessions > 0), sessions, now,
		); err != nil {
			return fmt.Errorf("upsert %s flags for %s: %w", dt.Subsystem, athleteID, err)
		}
	}
	return nil
}

// RefreshAllFlags recomputes flags for every identity, merged losers
// included; residual alias rows can still reference them.
func (s *Store) RefreshAllFlags(ctx context.Context) (int, error) {
	athletes, err := s.ListAthletes(ctx, true)
	if err != nil {
		return 0, err
	}
	for _, a := range athletes {
		if err := s.RefreshFlags(ctx, a.ID); err != nil {
			return 0, err
		}
	}
	return len(athletes), nil
}

// FlagsForAthlete returns the stored aggregate flags for one identity, keyed
// by subsystem.
func (s *Store) FlagsForAthlete(ctx context.Context, athleteID string) (map[string]athlete.SubsystemFlags, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT athlete_id, subsystem, has_data, session_count, updated_at
         FROM athlete_flags WHERE athlete_id = ?`, athleteID)
	if err != nil {
		return nil, fmt.Errorf("flags for athlete %s: %w", athleteID, err)
	}
	defer rows.Close()

	flags := make(map[string]athlete.SubsystemFlags)
	for rows.Next() {
		var (
			entry      athlete.SubsystemFlags
			hasData    int
			updatedRaw string
		)
		if err := rows.Scan(&entry.AthleteID, &entry.Subsystem, &hasData, &entry.SessionCount, &updatedRaw); err != nil {
			return nil, fmt.Errorf("scan flags: %w", err)
		}
		entry.HasData = hasData != 0
		entry.UpdatedAt = parseTimestamp(updatedRaw)
		flags[entry.Subsystem] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flags: %w", err)
	}
	return flags, nil
}
