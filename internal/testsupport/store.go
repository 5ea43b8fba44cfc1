package testsupport

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"rosterid/internal/athlete"
	"rosterid/internal/config"
	"rosterid/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

// NewAthlete inserts a canonical identity for tests and returns it.
func NewAthlete(t testing.TB, st *store.Store, displayName, sourceSystem string) *athlete.Athlete {
	t.Helper()

	a := &athlete.Athlete{
		ID:             uuid.NewString(),
		DisplayName:    displayName,
		NormalizedName: athlete.NormalizeName(displayName),
		SourceSystem:   sourceSystem,
	}
	if err := st.InsertAthlete(context.Background(), a); err != nil {
		t.Fatalf("InsertAthlete: %v", err)
	}
	return a
}
