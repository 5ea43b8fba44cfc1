package store_test

import (
	"context"
	"testing"

	"rosterid/internal/store"
	"rosterid/internal/testsupport"
)

func TestAddSessionBatchWritesFactsAndFlagsTogether(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	a := testsupport.NewAthlete(t, st, "Weiss, Ryan", "pitching")

	err := st.AddSessionBatch(ctx, a.ID, []store.SessionFact{
		{Subsystem: "mocap", SessionDate: "2024-05-01", Label: "fastball-1"},
		{Subsystem: "mocap", SessionDate: "2024-05-08", Label: "curveball-1"},
		{Subsystem: "strength", SessionDate: "2024-05-08", Label: "screen"},
	})
	if err != nil {
		t.Fatalf("AddSessionBatch: %v", err)
	}

	// Flags are part of the batch; no separate refresh has run.
	flags, err := st.FlagsForAthlete(ctx, a.ID)
	if err != nil {
		t.Fatalf("FlagsForAthlete: %v", err)
	}
	if got := flags["mocap"]; !got.HasData || got.SessionCount != 2 {
		t.Fatalf("unexpected mocap flags: %#v", got)
	}
	if got := flags["strength"]; !got.HasData || got.SessionCount != 1 {
		t.Fatalf("unexpected strength flags: %#v", got)
	}
}

func TestAddSessionBatchRollsBackOnBadFact(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	a := testsupport.NewAthlete(t, st, "Weiss, Ryan", "pitching")

	err := st.AddSessionBatch(ctx, a.ID, []store.SessionFact{
		{Subsystem: "mocap", SessionDate: "2024-05-01", Label: "fastball-1"},
		{Subsystem: "no-such-subsystem", SessionDate: "2024-05-01", Label: "bogus"},
	})
	if err == nil {
		t.Fatal("expected an unknown-subsystem error")
	}

	// The valid fact must not survive its failed sibling.
	owners, err := st.SessionOwners(ctx, "mocap")
	if err != nil {
		t.Fatalf("SessionOwners: %v", err)
	}
	if len(owners) != 0 {
		t.Fatalf("rolled-back batch left fact rows behind: %#v", owners)
	}
	flags, err := st.FlagsForAthlete(ctx, a.ID)
	if err != nil {
		t.Fatalf("FlagsForAthlete: %v", err)
	}
	if len(flags) != 0 {
		t.Fatalf("rolled-back batch left flag rows behind: %#v", flags)
	}
}
