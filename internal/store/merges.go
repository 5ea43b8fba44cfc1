package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rosterid/internal/athlete"
)

// DependentTable registers one fact table carrying an athlete foreign key.
// The merge rewrite and the aggregate flag recomputation are both driven off
// this registry, so a new tracked subsystem is a single registration.
type DependentTable struct {
	Subsystem     string
	Table         string
	FKColumn      string
	SessionColumn string
}

func defaultDependentTables() []DependentTable {
	return []DependentTable{
		{Subsystem: "mocap", Table: "motion_trials", FKColumn: "athlete_id", SessionColumn: "session_date"},
		{Subsystem: "strength", Table: "strength_screens", FKColumn: "athlete_id", SessionColumn: "session_date"},
		{Subsystem: "mobility", Table: "mobility_screens", FKColumn: "athlete_id", SessionColumn: "session_date"},
	}
}

// RegisterDependentTable adds a fact table to the merge/flag registry.
func (s *Store) RegisterDependentTable(dt DependentTable) {
	s.dependentTables = append(s.dependentTables, dt)
}

// DependentTables returns the registered fact tables.
func (s *Store) DependentTables() []DependentTable {
	tables := make([]DependentTable, len(s.dependentTables))
	copy(tables, s.dependentTables)
	return tables
}

// ExecuteMerge repoints every reference from the loser identity to the winner
// in a single transaction: all registered fact tables, then the loser's source
// mappings (skipping ones that would collide with an existing winner mapping
// for the same source system; those stay on the loser as benign aliases), then
// the loser row itself is marked merged and an audit record appended. Any
// fact-table rewrite failure rolls the whole merge back.
func (s *Store) ExecuteMerge(ctx context.Context, winnerID, loserID string, similarity float64) (*athlete.MergeRecord, error) {
	ctx = ensureContext(ctx)
	if winnerID == "" || loserID == "" {
		return nil, errors.New("merge requires winner and loser ids")
	}
	if winnerID == loserID {
		return nil, errors.New("cannot merge an identity into itself")
	}

	winner, err := s.GetAthlete(ctx, winnerID)
	if err != nil {
		return nil, err
	}
	loser, err := s.GetAthlete(ctx, loserID)
	if err != nil {
		return nil, err
	}
	if winner == nil || loser == nil {
		return nil, fmt.Errorf("merge %s <- %s: identity missing", winnerID, loserID)
	}
	if winner.Merged() {
		return nil, fmt.Errorf("winner %s is already merged into %s", winnerID, winner.MergedInto)
	}
	if loser.Merged() {
		return nil, fmt.Errorf("loser %s is already merged into %s", loserID, loser.MergedInto)
	}

	var record *athlete.MergeRecord
	err = retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin merge tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		for _, dt := range s.dependentTables {
			query := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?", dt.Table, dt.FKColumn, dt.FKColumn)
			if _, err := tx.ExecContext(ctx, query, winnerID, loserID); err != nil {
				return fmt.Errorf("rewrite %s: %w", dt.Table, err)
			}
		}

		residuals, err := repointMappings(ctx, tx, winnerID, loserID)
		if err != nil {
			return err
		}

		// Loser flags are derived rows; drop them and let the caller refresh
		// the winner after commit.
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM athlete_flags WHERE athlete_id = ?", loserID); err != nil {
			return fmt.Errorf("clear loser flags: %w", err)
		}

		now := time.Now()
		if _, err := tx.ExecContext(ctx,
			"UPDATE athletes SET merged_into = ?, updated_at = ? WHERE id = ?",
			winnerID, timestamp(now), loserID); err != nil {
			return fmt.Errorf("mark loser merged: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO merge_records (winner_id, loser_id, similarity, decision, residual_mappings, created_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			winnerID, loserID, similarity, string(athlete.DecisionMerged), residuals, timestamp(now))
		if err != nil {
			return fmt.Errorf("append merge record: %w", err)
		}
		recordID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("merge record id: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit merge: %w", err)
		}

		record = &athlete.MergeRecord{
			ID:               recordID,
			WinnerID:         winnerID,
			LoserID:          loserID,
			Similarity:       similarity,
			Decision:         athlete.DecisionMerged,
			ResidualMappings: residuals,
			CreatedAt:        now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

type queryExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// repointMappings moves the loser's source mappings to the winner inside the
// merge transaction, counting the ones left behind because the winner already
// carries a mapping for that source system.
func repointMappings(ctx context.Context, tx queryExecer, winnerID, loserID string) (int, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT source_system, source_local_id FROM source_mappings WHERE athlete_id = ?", loserID)
	if err != nil {
		return 0, fmt.Errorf("load loser mappings: %w", err)
	}
	type mappingKey struct {
		system  string
		localID string
	}
	var keys []mappingKey
	for rows.Next() {
		var key mappingKey
		if err := rows.Scan(&key.system, &key.localID); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan loser mapping: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("iterate loser mappings: %w", err)
	}
	rows.Close()

	residuals := 0
	for _, key := range keys {
		var conflict int
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM source_mappings WHERE source_system = ? AND athlete_id = ?",
			key.system, winnerID).Scan(&conflict)
		if err != nil {
			return 0, fmt.Errorf("check mapping conflict: %w", err)
		}
		if conflict > 0 {
			residuals++
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE source_mappings SET athlete_id = ? WHERE source_system = ? AND source_local_id = ?",
			winnerID, key.system, key.localID); err != nil {
			return 0, fmt.Errorf("repoint mapping %s/%s: %w", key.system, key.localID, err)
		}
	}
	return residuals, nil
}

// RecordSkippedMerge appends an audit line for a proposal that was reviewed
// and declined, so repeated scans can show what was already looked at.
func (s *Store) RecordSkippedMerge(ctx context.Context, winnerID, loserID string, similarity float64) error {
	_, err := s.execWithRetry(ctx,
		`INSERT INTO merge_records (winner_id, loser_id, similarity, decision, residual_mappings, created_at)
         VALUES (?, ?, ?, ?, 0, ?)`,
		winnerID, loserID, similarity, string(athlete.DecisionSkipped), timestamp(time.Now()))
	if err != nil {
		return fmt.Errorf("record skipped merge: %w", err)
	}
	return nil
}

// ListMergeRecords returns the audit trail, newest first.
func (s *Store) ListMergeRecords(ctx context.Context) ([]athlete.MergeRecord, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT id, winner_id, loser_id, similarity, decision, residual_mappings, created_at
         FROM merge_records ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list merge records: %w", err)
	}
	defer rows.Close()

	var records []athlete.MergeRecord
	for rows.Next() {
		var (
			record     athlete.MergeRecord
			decision   string
			createdRaw string
		)
		if err := rows.Scan(&record.ID, &record.WinnerID, &record.LoserID,
			&record.Similarity, &decision, &record.ResidualMappings, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan merge record: %w", err)
		}
		record.Decision = athlete.MergeDecision(decision)
		record.CreatedAt = parseTimestamp(createdRaw)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate merge records: %w", err)
	}
	return records, nil
}
