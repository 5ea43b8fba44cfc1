package resolve_test

import (
	"context"
	"errors"
	"testing"

	"rosterid/internal/athlete"
	"rosterid/internal/logging"
	"rosterid/internal/resolve"
	"rosterid/internal/services"
	"rosterid/internal/services/registry"
	"rosterid/internal/testsupport"
)

type stubRegistry struct {
	identities map[string]string
	err        error
	calls      int
}

func (s *stubRegistry) Lookup(_ context.Context, normalizedName string) (*registry.Identity, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	id, ok := s.identities[normalizedName]
	if !ok {
		return nil, nil
	}
	return &registry.Identity{ID: id, Name: normalizedName}, nil
}

func TestResolveIsIdempotentPerSourceKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	resolver := resolve.New(st, nil, logging.NewNop())
	ctx := context.Background()

	req := resolve.Request{SourceSystem: "pitching", SourceLocalID: "RW-001", DisplayName: "Weiss, Ryan"}

	first, err := resolver.Resolve(ctx, req)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := resolver.Resolve(ctx, req)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first != second {
		t.Fatalf("resolution not idempotent: %s vs %s", first, second)
	}

	count, err := st.CountMappings(ctx)
	if err != nil {
		t.Fatalf("CountMappings: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one mapping, got %d", count)
	}
}

func TestResolveReusesLocalIdentityBeforeCreating(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	existing := testsupport.NewAthlete(t, st, "Weiss, Ryan", "hitting")

	// Registry has no match; the local identity must be reused, not shadowed.
	stub := &stubRegistry{identities: map[string]string{}}
	resolver := resolve.New(st, stub, logging.NewNop())

	id, err := resolver.Resolve(ctx, resolve.Request{
		SourceSystem:  "pitching",
		SourceLocalID: "RW-001",
		DisplayName:   "Ryan Weiss 11-25",
		Demographics:  athlete.Demographics{BirthDate: "1998-03-14"},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id != existing.ID {
		t.Fatalf("expected reuse of %s, got %s", existing.ID, id)
	}
	if stub.calls != 0 {
		t.Fatalf("registry must not be consulted when a local match exists, got %d calls", stub.calls)
	}

	// Demographics backfill on attach.
	got, err := st.GetAthlete(ctx, existing.ID)
	if err != nil || got.BirthDate != "1998-03-14" {
		t.Fatalf("demographics not backfilled: %v %#v", err, got)
	}
}

func TestResolveUsesRegistryIdentity(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	stub := &stubRegistry{identities: map[string]string{"RYAN WEISS": "ext-42"}}
	resolver := resolve.New(st, stub, logging.NewNop())

	id, err := resolver.Resolve(ctx, resolve.Request{
		SourceSystem: "pitching", SourceLocalID: "RW-001", DisplayName: "Weiss, Ryan",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	created, err := st.GetAthlete(ctx, id)
	if err != nil {
		t.Fatalf("GetAthlete: %v", err)
	}
	if created.RegistryID != "ext-42" {
		t.Fatalf("registry id not recorded: %#v", created)
	}
}

func TestResolveDegradesWhenRegistryDown(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	stub := &stubRegistry{err: services.Wrap(services.ErrExternalService, "registry", "lookup", "down", nil)}
	resolver := resolve.New(st, stub, logging.NewNop())

	id, err := resolver.Resolve(ctx, resolve.Request{
		SourceSystem: "pitching", SourceLocalID: "RW-001", DisplayName: "Weiss, Ryan",
	})
	if err != nil {
		t.Fatalf("resolution must survive a registry outage: %v", err)
	}
	created, err := st.GetAthlete(ctx, id)
	if err != nil || created == nil {
		t.Fatalf("local identity should exist: %v %#v", err, created)
	}
	if created.RegistryID != "" {
		t.Fatalf("no registry id should be recorded on outage: %#v", created)
	}
}

func TestResolveEmptyNameCreatesLowConfidence(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	resolver := resolve.New(st, nil, logging.NewNop())

	id, err := resolver.Resolve(ctx, resolve.Request{
		SourceSystem: "pitching", SourceLocalID: "anon_17",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	created, err := st.GetAthlete(ctx, id)
	if err != nil {
		t.Fatalf("GetAthlete: %v", err)
	}
	if !created.LowConfidence {
		t.Fatalf("identity without a matching key must be low confidence: %#v", created)
	}
	if created.DisplayName == "" {
		t.Fatalf("display name should fall back to the source-local id: %#v", created)
	}
}

func TestResolveFollowsResidualAliasToMergeWinner(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	winner := testsupport.NewAthlete(t, st, "Smith, John", "sysA")
	loser := testsupport.NewAthlete(t, st, "John Smith", "sysB")
	for _, m := range []athlete.SourceMapping{
		{SourceSystem: "sysA", SourceLocalID: "001", AthleteID: winner.ID},
		// Collides by source system with the winner's mapping, so the merge
		// leaves it on the loser as a residual alias.
		{SourceSystem: "sysA", SourceLocalID: "dup-7", AthleteID: loser.ID},
	} {
		if err := st.InsertMapping(ctx, m); err != nil {
			t.Fatalf("InsertMapping %s/%s: %v", m.SourceSystem, m.SourceLocalID, err)
		}
	}

	record, err := st.ExecuteMerge(ctx, winner.ID, loser.ID, 1.0)
	if err != nil {
		t.Fatalf("ExecuteMerge: %v", err)
	}
	if record.ResidualMappings != 1 {
		t.Fatalf("expected a residual alias, got %d", record.ResidualMappings)
	}

	resolver := resolve.New(st, nil, logging.NewNop())
	id, err := resolver.Resolve(ctx, resolve.Request{
		SourceSystem: "sysA", SourceLocalID: "dup-7", DisplayName: "Smith, John",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id != winner.ID {
		t.Fatalf("residual alias must dereference to the winner %s, got %s", winner.ID, id)
	}
	got, err := st.GetAthlete(ctx, id)
	if err != nil || got == nil || got.Merged() {
		t.Fatalf("resolved identity must be live, not a tombstone: %v %#v", err, got)
	}
}

func TestResolveRejectsMissingSourceKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	resolver := resolve.New(st, nil, logging.NewNop())
	_, err := resolver.Resolve(context.Background(), resolve.Request{DisplayName: "Weiss, Ryan"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
