package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rosterid/internal/athlete"
)

const athleteColumns = "id, display_name, normalized_name, birth_date, gender, height_cm, weight_kg, source_system, registry_id, low_confidence, merged_into, created_at, updated_at"

func scanAthlete(scanner interface{ Scan(dest ...any) error }) (*athlete.Athlete, error) {
	var (
		id            string
		displayName   string
		normalized    string
		birthDate     sql.NullString
		gender        sql.NullString
		heightCM      sql.NullFloat64
		weightKG      sql.NullFloat64
		sourceSystem  string
		registryID    sql.NullString
		lowConfidence sql.NullInt64
		mergedInto    sql.NullString
		createdRaw    string
		updatedRaw    string
	)

	if err := scanner.Scan(
		&id,
		&displayName,
		&normalized,
		&birthDate,
		&gender,
		&heightCM,
		&weightKG,
		&sourceSystem,
		&registryID,
		&lowConfidence,
		&mergedInto,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	return &athlete.Athlete{
		ID:             id,
		DisplayName:    displayName,
		NormalizedName: normalized,
		BirthDate:      birthDate.String,
		Gender:         gender.String,
		HeightCM:       heightCM.Float64,
		WeightKG:       weightKG.Float64,
		SourceSystem:   sourceSystem,
		RegistryID:     registryID.String,
		LowConfidence:  lowConfidence.Int64 != 0,
		MergedInto:     mergedInto.String,
		CreatedAt:      parseTimestamp(createdRaw),
		UpdatedAt:      parseTimestamp(updatedRaw),
	}, nil
}

// InsertAthlete persists a new canonical identity.
func (s *Store) InsertAthlete(ctx context.Context, a *athlete.Athlete) error {
	if a == nil || a.ID == "" {
		return errors.New("athlete id is required")
	}
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	_, err := s.execWithRetry(
		ctx,
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
	)
	if err != nil {
		return fmt.Errorf("insert athlete: %w", err)
	}
	return nil
}

// GetAthlete fetches one identity by id. Returns nil when absent.
func (s *Store) GetAthlete(ctx context.Context, id string) (*athlete.Athlete, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT "+athleteColumns+" FROM athletes WHERE id = ?", id)
	a, err := scanAthlete(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get athlete %s: %w", id, err)
	}
	return a, nil
}

// FindByNormalizedName returns the oldest unmerged identity carrying the given
// matching key, or nil when none exists. Oldest-first keeps repeat lookups
// stable when duplicates have crept in but not yet been merged.
func (s *Store) FindByNormalizedName(ctx context.Context, normalized string) (*athlete.Athlete, error) {
	if normalized == athlete.NoKey {
		return nil, nil
	}
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+athleteColumns+` FROM athletes
         WHERE normalized_name = ? AND merged_into IS NULL
         ORDER BY created_at ASC, id ASC LIMIT 1`, normalized)
	a, err := scanAthlete(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find athlete by normalized name: %w", err)
	}
	return a, nil
}

// FillDemographics writes the supplied demographic fields into an identity,
// only filling columns that are currently null (first write wins).
func (s *Store) FillDemographics(ctx context.Context, id string, demo athlete.Demographics) error {
	if demo.Empty() {
		return nil
	}
	_, err := s.execWithRetry(
		ctx,
		`UPDATE athletes SET
            birth_date = COALESCE(birth_date, ?),
            gender     = COALESCE(gender, ?),
            height_cm  = COALESCE(height_cm, ?),
            weight_kg  = COALESCE(weight_kg, ?),
            updated_at = ?
         WHERE id = ?`,
		nullableString(demo.BirthDate),
		nullableString(demo.Gender),
		nullableFloat(demo.HeightCM),
		nullableFloat(demo.WeightKG),
		timestamp(time.Now()),
		id,
	)
	if err != nil {
		return fmt.Errorf("fill demographics for %s: %w", id, err)
	}
	return nil
}

// ListAthletes returns identities ordered by creation time. Merged losers are
// excluded unless includeMerged is set.
func (s *Store) ListAthletes(ctx context.Context, includeMerged bool) ([]*athlete.Athlete, error) {
	query := "SELECT " + athleteColumns + " FROM athletes"
	if !includeMerged {
		query += " WHERE merged_into IS NULL"
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := s.db.QueryContext(ensureContext(ctx), query)
	if err != nil {
		return nil, fmt.Errorf("list athletes: %w", err)
	}
	defer rows.Close()

	var athletes []*athlete.Athlete
	for rows.Next() {
		a, err := scanAthlete(rows)
		if err != nil {
			return nil, fmt.Errorf("scan athlete: %w", err)
		}
		athletes = append(athletes, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate athletes: %w", err)
	}
	return athletes, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
