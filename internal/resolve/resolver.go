package resolve

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"rosterid/internal/athlete"
	"rosterid/internal/logging"
	"rosterid/internal/services"
	"rosterid/internal/services/registry"
	"rosterid/internal/store"
)

// Request carries everything a source record knows about an athlete.
type Request struct {
	SourceSystem  string
	SourceLocalID string
	DisplayName   string
	Demographics  athlete.Demographics
}

// Resolver resolves source-local identifiers to canonical athlete ids,
// creating identities when no match exists anywhere.
type Resolver struct {
	store    *store.Store
	registry registry.Lookuper
	logger   *slog.Logger

	registryWarned atomic.Bool
}

// New constructs a Resolver. The registry lookuper may be nil when the
// external identity store is disabled.
func New(st *store.Store, lookuper registry.Lookuper, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:    st,
		registry: lookuper,
		logger:   logging.WithComponent(logger, "resolver"),
	}
}

// Resolve returns the canonical athlete id for the request, creating at most
// one identity and one mapping. Calling it twice with the same source key
// returns the same id both times: the mapping fast path is checked first.
func (r *Resolver) Resolve(ctx context.Context, req Request) (string, error) {
	sourceSystem := strings.TrimSpace(req.SourceSystem)
	sourceLocalID := strings.TrimSpace(req.SourceLocalID)
	if sourceSystem == "" || sourceLocalID == "" {
		return "", services.Wrap(services.ErrValidation, "resolver", "resolve",
			"source system and source-local id are required", nil)
	}

	// Fast path: the durable mapping decides, no further lookups.
	mapping, err := r.store.GetMapping(ctx, sourceSystem, sourceLocalID)
	if err != nil {
		return "", err
	}
	if mapping != nil {
		return r.canonicalID(ctx, mapping.AthleteID)
	}

	normalized := athlete.NormalizeName(req.DisplayName)

	if normalized != athlete.NoKey {
		existing, err := r.store.FindByNormalizedName(ctx, normalized)
		if err != nil {
			return "", err
		}
		if existing != nil {
			return r.attach(ctx, existing, sourceSystem, sourceLocalID, req.Demographics)
		}
	}

	registryID := r.lookupRegistry(ctx, normalized)

	return r.create(ctx, req, sourceSystem, sourceLocalID, normalized, registryID)
}

// attach links a new source mapping to an existing identity and backfills any
// demographics the identity is still missing.
func (r *Resolver) attach(ctx context.Context, existing *athlete.Athlete, sourceSystem, sourceLocalID string, demo athlete.Demographics) (string, error) {
	err := r.store.InsertMapping(ctx, athlete.SourceMapping{
		SourceSystem:  sourceSystem,
		SourceLocalID: sourceLocalID,
		AthleteID:     existing.ID,
	})
	if errors.Is(err, store.ErrMappingExists) {
		// Concurrent resolver got there first; its mapping is the truth.
		mapping, lookupErr := r.store.GetMapping(ctx, sourceSystem, sourceLocalID)
		if lookupErr != nil {
			return "", lookupErr
		}
		if mapping != nil {
			return r.canonicalID(ctx, mapping.AthleteID)
		}
		return "", err
	}
	if err != nil {
		return "", err
	}

	if err := r.store.FillDemographics(ctx, existing.ID, demo); err != nil {
		return "", err
	}

	r.logger.Debug("attached mapping to existing identity",
		logging.String(logging.FieldAthleteID, existing.ID),
		logging.String(logging.FieldSourceSystem, sourceSystem),
		logging.String("source_local_id", sourceLocalID))
	return existing.ID, nil
}

// canonicalID dereferences merged tombstones: a residual alias mapping left on
// a merge loser must resolve to the live winner, never to the tombstone. The
// visited set guards against a corrupted merged_into cycle.
func (r *Resolver) canonicalID(ctx context.Context, id string) (string, error) {
	visited := make(map[string]struct{})
	for {
		a, err := r.store.GetAthlete(ctx, id)
		if err != nil {
			return "", err
		}
		if a == nil || !a.Merged() {
			return id, nil
		}
		if _, seen := visited[a.MergedInto]; seen {
			return id, nil
		}
		visited[id] = struct{}{}
		id = a.MergedInto
	}
}

// lookupRegistry consults the external identity store, failing open to "not
// found". An outage is logged once per resolver lifetime, not per record.
func (r *Resolver) lookupRegistry(ctx context.Context, normalized string) string {
	if r.registry == nil || normalized == athlete.NoKey {
		return ""
	}
	identity, err := r.registry.Lookup(ctx, normalized)
	if err != nil {
		if r.registryWarned.CompareAndSwap(false, true) {
			r.logger.Warn("identity store unavailable, resolving locally for the rest of the run",
				logging.Error(err))
		}
		return ""
	}
	if identity == nil {
		return ""
	}
	return identity.ID
}

func (r *Resolver) create(ctx context.Context, req Request, sourceSystem, sourceLocalID, normalized, registryID string) (string, error) {
	displayName := strings.TrimSpace(req.DisplayName)
	lowConfidence := normalized == athlete.NoKey
	if displayName == "" {
		// Unresolvable input still gets an identity so the run can continue;
		// the flag routes it to review instead of silently trusting it.
		displayName = athlete.DisplayTitle(sourceLocalID)
	}

	created := &athlete.Athlete{
		ID:             uuid.NewString(),
		DisplayName:    displayName,
		NormalizedName: normalized,
		BirthDate:      req.Demographics.BirthDate,
		Gender:         req.Demographics.Gender,
		HeightCM:       req.Demographics.HeightCM,
		WeightKG:       req.Demographics.WeightKG,
		SourceSystem:   sourceSystem,
		RegistryID:     registryID,
		LowConfidence:  lowConfidence,
	}

	err := r.store.CreateIdentity(ctx, created, athlete.SourceMapping{
		SourceSystem:  sourceSystem,
		SourceLocalID: sourceLocalID,
		AthleteID:     created.ID,
	})
	if errors.Is(err, store.ErrMappingExists) {
		mapping, lookupErr := r.store.GetMapping(ctx, sourceSystem, sourceLocalID)
		if lookupErr != nil {
			return "", lookupErr
		}
		if mapping != nil {
			return r.canonicalID(ctx, mapping.AthleteID)
		}
		return "", err
	}
	if err != nil {
		return "", err
	}

	r.logger.Info("created canonical identity",
		logging.String(logging.FieldAthleteID, created.ID),
		logging.String(logging.FieldSourceSystem, sourceSystem),
		logging.String("normalized_name", normalized),
		logging.Bool("low_confidence", lowConfidence),
		logging.Bool("registry_match", registryID != ""))
	return created.ID, nil
}
