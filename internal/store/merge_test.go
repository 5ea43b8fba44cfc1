package store_test

import (
	"context"
	"testing"

	"rosterid/internal/athlete"
	"rosterid/internal/store"
	"rosterid/internal/testsupport"
)

func seedMergePair(t *testing.T, st *store.Store) (winner, loser *athlete.Athlete) {
	t.Helper()
	ctx := context.Background()

	winner = testsupport.NewAthlete(t, st, "Smith, John", "sysA")
	loser = testsupport.NewAthlete(t, st, "Smith, John", "sysB")

	mustInsertMapping := func(system, localID, athleteID string) {
		t.Helper()
		if err := st.InsertMapping(ctx, athlete.SourceMapping{
			SourceSystem: system, SourceLocalID: localID, AthleteID: athleteID,
		}); err != nil {
			t.Fatalf("InsertMapping %s/%s: %v", system, localID, err)
		}
	}
	mustInsertMapping("sysA", "001", winner.ID)
	mustInsertMapping("sysB", "x9", loser.ID)
	// Collides by source system with the winner's sysA mapping.
	mustInsertMapping("sysA", "dup-7", loser.ID)

	if err := st.AddSession(ctx, "mocap", winner.ID, "2024-05-01", "t1"); err != nil {
		t.Fatalf("AddSession winner: %v", err)
	}
	if err := st.AddSession(ctx, "mocap", loser.ID, "2024-05-02", "t2"); err != nil {
		t.Fatalf("AddSession loser: %v", err)
	}
	if err := st.AddSession(ctx, "strength", loser.ID, "2024-05-03", "s1"); err != nil {
		t.Fatalf("AddSession loser strength: %v", err)
	}
	return winner, loser
}

func TestExecuteMergeRepointsEverything(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	winner, loser := seedMergePair(t, st)

	record, err := st.ExecuteMerge(ctx, winner.ID, loser.ID, 0.97)
	if err != nil {
		t.Fatalf("ExecuteMerge: %v", err)
	}
	if record.Decision != athlete.DecisionMerged {
		t.Fatalf("unexpected decision: %s", record.Decision)
	}
	if record.ResidualMappings != 1 {
		t.Fatalf("expected 1 residual mapping, got %d", record.ResidualMappings)
	}

	// Fact rows now all belong to the winner.
	for _, subsystem := range []string{"mocap", "strength"} {
		owners, err := st.SessionOwners(ctx, subsystem)
		if err != nil {
			t.Fatalf("SessionOwners %s: %v", subsystem, err)
		}
		if owners[loser.ID] != 0 {
			t.Fatalf("%s still references loser: %v", subsystem, owners)
		}
	}

	// Loser survives, marked merged.
	gone, err := st.GetAthlete(ctx, loser.ID)
	if err != nil {
		t.Fatalf("GetAthlete loser: %v", err)
	}
	if gone == nil || gone.MergedInto != winner.ID {
		t.Fatalf("loser should be marked merged into winner: %#v", gone)
	}

	// Non-colliding mapping moved, colliding mapping stayed as an alias.
	moved, err := st.GetMapping(ctx, "sysB", "x9")
	if err != nil || moved == nil || moved.AthleteID != winner.ID {
		t.Fatalf("sysB mapping should point at winner: %v %#v", err, moved)
	}
	residual, err := st.GetMapping(ctx, "sysA", "dup-7")
	if err != nil || residual == nil || residual.AthleteID != loser.ID {
		t.Fatalf("colliding mapping should stay on loser: %v %#v", err, residual)
	}

	records, err := st.ListMergeRecords(ctx)
	if err != nil || len(records) != 1 {
		t.Fatalf("expected one merge record: %v %#v", err, records)
	}
}

func TestExecuteMergeRollsBackOnFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	winner, loser := seedMergePair(t, st)

	// A registered table that doesn't exist makes the rewrite fail partway
	// through; nothing from the merge may survive.
	st.RegisterDependentTable(store.DependentTable{
		Subsystem: "broken", Table: "missing_table", FKColumn: "athlete_id", SessionColumn: "session_date",
	})

	if _, err := st.ExecuteMerge(ctx, winner.ID, loser.ID, 0.97); err == nil {
		t.Fatal("expected merge failure")
	}

	owners, err := st.SessionOwners(ctx, "mocap")
	if err != nil {
		t.Fatalf("SessionOwners: %v", err)
	}
	if owners[loser.ID] != 1 || owners[winner.ID] != 1 {
		t.Fatalf("fact rows must be untouched after rollback: %v", owners)
	}

	still, err := st.GetAthlete(ctx, loser.ID)
	if err != nil || still == nil || still.Merged() {
		t.Fatalf("loser must not be marked merged after rollback: %v %#v", err, still)
	}

	mapping, err := st.GetMapping(ctx, "sysB", "x9")
	if err != nil || mapping == nil || mapping.AthleteID != loser.ID {
		t.Fatalf("mappings must be untouched after rollback: %v %#v", err, mapping)
	}

	records, err := st.ListMergeRecords(ctx)
	if err != nil || len(records) != 0 {
		t.Fatalf("no merge record may exist after rollback: %v %#v", err, records)
	}
}

func TestExecuteMergeRefusesDoubleMerge(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	winner, loser := seedMergePair(t, st)
	if _, err := st.ExecuteMerge(ctx, winner.ID, loser.ID, 1.0); err != nil {
		t.Fatalf("ExecuteMerge: %v", err)
	}
	if _, err := st.ExecuteMerge(ctx, winner.ID, loser.ID, 1.0); err == nil {
		t.Fatal("merging an already-merged loser must fail")
	}
	if _, err := st.ExecuteMerge(ctx, winner.ID, winner.ID, 1.0); err == nil {
		t.Fatal("self-merge must fail")
	}
}
