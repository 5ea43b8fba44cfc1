package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rosterid/internal/athlete"
)

// GetMapping fetches the mapping for a (source system, source-local id) key.
// Returns nil when no mapping exists.
func (s *Store) GetMapping(ctx context.Context, sourceSystem, sourceLocalID string) (*athlete.SourceMapping, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT source_system, source_local_id, athlete_id, created_at
         FROM source_mappings WHERE source_system = ? AND source_local_id = ?`,
		sourceSystem, sourceLocalID)

	var (
		mapping    athlete.SourceMapping
		createdRaw string
	)
	err := row.Scan(&mapping.SourceSystem, &mapping.SourceLocalID, &mapping.AthleteID, &createdRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mapping %s/%s: %w", sourceSystem, sourceLocalID, err)
	}
	mapping.CreatedAt = parseTimestamp(createdRaw)
	return &mapping, nil
}

// InsertMapping creates a new source mapping. A key collision returns
// ErrMappingExists so concurrent resolvers can retry as a lookup.
func (s *Store) InsertMapping(ctx context.Context, mapping athlete.SourceMapping) error {
	if mapping.SourceSystem == "" || mapping.SourceLocalID == "" || mapping.AthleteID == "" {
		return errors.New("source mapping requires source system, local id, and athlete id")
	}
	created := mapping.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO source_mappings (source_system, source_local_id, athlete_id, created_at)
         VALUES (?, ?, ?, ?)`,
		mapping.SourceSystem,
		mapping.SourceLocalID,
		mapping.AthleteID,
		timestamp(created),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrMappingExists
		}
		return fmt.Errorf("insert mapping %s/%s: %w", mapping.SourceSystem, mapping.SourceLocalID, err)
	}
	return nil
}

// CreateIdentity inserts a new athlete and its first source mapping in one
// transaction. When the mapping key was claimed concurrently, nothing is
// written and ErrMappingExists is returned.
func (s *Store) CreateIdentity(ctx context.Context, a *athlete.Athlete, mapping athlete.SourceMapping) error {
	ctx = ensureContext(ctx)
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	if mapping.CreatedAt.IsZero() {
		mapping.CreatedAt = now
	}

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin create identity tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO athletes (`+athleteColumns+`)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID,
			a.DisplayName,
			a.NormalizedName,
			nullableString(a.BirthDate),
			nullableString(a.Gender),
			nullableFloat(a.HeightCM),
			nullableFloat(a.WeightKG),
			a.SourceSystem,
			nullableString(a.RegistryID),
			boolToInt(a.LowConfidence),
			nullableString(a.MergedInto),
			timestamp(a.CreatedAt),
			timestamp(a.UpdatedAt),
		); err != nil {
			return fmt.Errorf("insert athlete: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO source_mappings (source_system, source_local_id, athlete_id, created_at)
             VALUES (?, ?, ?, ?)`,
			mapping.SourceSystem,
			mapping.SourceLocalID,
			mapping.AthleteID,
			timestamp(mapping.CreatedAt),
		); err != nil {
			if isUniqueViolation(err) {
				return ErrMappingExists
			}
			return fmt.Errorf("insert mapping: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit create identity: %w", err)
		}
		return nil
	})
}

// MappingsForAthlete returns every mapping currently pointing at an identity.
func (s *Store) MappingsForAthlete(ctx context.Context, athleteID string) ([]athlete.SourceMapping, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT source_system, source_local_id, athlete_id, created_at
         FROM source_mappings WHERE athlete_id = ?
         ORDER BY source_system ASC, source_local_id ASC`, athleteID)
	if err != nil {
		return nil, fmt.Errorf("mappings for athlete %s: %w", athleteID, err)
	}
	defer rows.Close()

	var mappings []athlete.SourceMapping
	for rows.Next() {
		var (
			mapping    athlete.SourceMapping
			createdRaw string
		)
		if err := rows.Scan(&mapping.SourceSystem, &mapping.SourceLocalID, &mapping.AthleteID, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		mapping.CreatedAt = parseTimestamp(createdRaw)
		mappings = append(mappings, mapping)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mappings: %w", err)
	}
	return mappings, nil
}

// CountMappings reports the total number of source mappings, used by run
// summaries and tests.
func (s *Store) CountMappings(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT COUNT(1) FROM source_mappings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count mappings: %w", err)
	}
	return count, nil
}
