package store

import (
	"context"
	"fmt"
	"time"
)

// SessionFact is one session row bound for a subsystem's fact table.
type SessionFact struct {
	Subsystem   string
	SessionDate string
	Label       string
}

// AddSession writes one fact row into the table registered for the given
// subsystem. The identity engine itself never bulk-loads measurements; this
// is the narrow surface the warehouse loader and tests use to attach resolved
// athlete ids to session data.
func (s *Store) AddSession(ctx context.Context, subsystem, athleteID, sessionDate, label string) error {
	ctx = ensureContext(ctx)
	fact := SessionFact{Subsystem: subsystem, SessionDate: sessionDate, Label: label}
	return retryOnBusy(ctx, func() error {
		return s.insertSession(ctx, s.db, athleteID, fact)
	})
}

// AddSessionBatch writes one record's session facts and the owner's refreshed
// flags in a single transaction. Either every fact lands and the flags reflect
// them, or the record leaves no trace.
func (s *Store) AddSessionBatch(ctx context.Context, athleteID string, facts []SessionFact) error {
	if len(facts) == 0 {
		return nil
	}
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin session tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		for _, fact := range facts {
			if err := s.insertSession(ctx, tx, athleteID, fact); err != nil {
				return err
			}
		}
		if err := s.refreshFlags(ctx, tx, athleteID); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit sessions: %w", err)
		}
		return nil
	})
}

func (s *Store) insertSession(ctx context.Context, q queryExecer, athleteID string, fact SessionFact) error {
	if athleteID == "" {
		return fmt.Errorf("add %s session: athlete id required", fact.Subsystem)
	}
	if fact.SessionDate == "" {
		return fmt.Errorf("add %s session: session date required", fact.Subsystem)
	}

	for _, dt := range s.dependentTables {
		if dt.Subsystem != fact.Subsystem {
			continue
		}
		query := fmt.Sprintf(
			"INSERT INTO %s (%s, %s, label, created_at) VALUES (?, ?, ?, ?)",
			dt.Table, dt.FKColumn, dt.SessionColumn)
		if _, err := q.ExecContext(ctx, query,
			athleteID, fact.SessionDate, nullableString(fact.Label), timestamp(time.Now())); err != nil {
			return fmt.Errorf("insert %s session: %w", fact.Subsystem, err)
		}
		return nil
	}
	return fmt.Errorf("unknown subsystem %q", fact.Subsystem)
}

// SessionOwners lists the athlete ids present in a subsystem's fact table,
// with row counts. Used by merge verification and diagnostics.
func (s *Store) SessionOwners(ctx context.Context, subsystem string) (map[string]int, error) {
	for _, dt := range s.dependentTables {
		if dt.Subsystem != subsystem {
			continue
		}
		query := fmt.Sprintf("SELECT %s, COUNT(1) FROM %s GROUP BY %s", dt.FKColumn, dt.Table, dt.FKColumn)
		rows, err := s.db.QueryContext(ensureContext(ctx), query)
		if err != nil {
			return nil, fmt.Errorf("session owners for %s: %w", subsystem, err)
		}
		defer rows.Close()

		owners := make(map[string]int)
		for rows.Next() {
			var (
				id    string
				count int
			)
			if err := rows.Scan(&id, &count); err != nil {
				return nil, fmt.Errorf("scan session owner: %w", err)
			}
			owners[id] = count
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate session owners: %w", err)
		}
		return owners, nil
	}
	return nil, fmt.Errorf("unknown subsystem %q", subsystem)
}
