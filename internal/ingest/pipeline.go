package ingest

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"rosterid/internal/athlete"
	"rosterid/internal/logging"
	"rosterid/internal/match"
	"rosterid/internal/resolve"
	"rosterid/internal/store"
)

// Summary reports what one run did. Unmatched and skipped trials are counted
// rather than failed; a run only aborts on storage errors.
type Summary struct {
	RunID           string `json:"run_id"`
	Resolved        int    `json:"resolved"`
	TrialsMatched   int    `json:"trials_matched"`
	TrialsUnmatched int    `json:"trials_unmatched"`
	TrialsSkipped   int    `json:"trials_skipped"`
	SessionsWritten int    `json:"sessions_written"`
}

// Pipeline wires the resolver, matcher, and store into one ingestion run.
type Pipeline struct {
	store    *store.Store
	resolver *resolve.Resolver
	matcher  *match.Matcher
	logger   *slog.Logger
}

// New constructs a Pipeline.
func New(st *store.Store, resolver *resolve.Resolver, matcher *match.Matcher, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		store:    st,
		resolver: resolver,
		matcher:  matcher,
		logger:   logging.WithComponent(logger, "ingest"),
	}
}

// Run processes one batch of records sequentially. Identity-bearing records
// are resolved first and seed the run's matching cache; trial-only records
// are then matched against it. Each record's sessions are written under the
// resolved owner and that athlete's flags refreshed.
func (p *Pipeline) Run(ctx context.Context, records []Record) (*Summary, error) {
	runID := uuid.NewString()
	logger := logging.WithRun(p.logger, runID, "")
	summary := &Summary{RunID: runID}
	rc := match.NewRunContext()

	for _, record := range records {
		var ownerID string

		switch {
		case record.IdentityBearing():
			id, err := p.resolver.Resolve(ctx, resolve.Request{
				SourceSystem:  record.SourceSystem,
				SourceLocalID: record.SourceLocalID,
				DisplayName:   record.DisplayName,
				Demographics:  record.Demographics,
			})
			if err != nil {
				return summary, err
			}
			summary.Resolved++
			p.seedRunContext(rc, record, id)
			ownerID = id

		default:
			result := p.matcher.MatchOwner(record.OwnerLabel, record.TrialDir, rc)
			switch {
			case result.Ineligible:
				summary.TrialsSkipped++
				continue
			case !result.Matched:
				summary.TrialsUnmatched++
				logger.Warn("trial unmatched, skipping record",
					logging.String("owner_label", record.OwnerLabel),
					logging.String("trial_dir", record.TrialDir),
					logging.String("reason", result.Reason))
				continue
			}
			summary.TrialsMatched++
			ownerID = result.AthleteID
		}

		written, err := p.writeSessions(ctx, ownerID, record.Sessions)
		if err != nil {
			return summary, err
		}
		summary.SessionsWritten += written
	}

	logger.Info("ingestion run complete",
		logging.Int("records", len(records)),
		logging.Int("resolved", summary.Resolved),
		logging.Int("trials_matched", summary.TrialsMatched),
		logging.Int("trials_unmatched", summary.TrialsUnmatched),
		logging.Int("trials_skipped", summary.TrialsSkipped),
		logging.Int("sessions_written", summary.SessionsWritten))
	return summary, nil
}

// seedRunContext registers everything a resolved record teaches the matcher:
// its directory, its owner-label stem, its identity file, and the athlete's
// source directory for similarity scoring.
func (p *Pipeline) seedRunContext(rc *match.RunContext, record Record, athleteID string) {
	if record.TrialDir != "" {
		rc.RegisterDirectory(record.TrialDir, athleteID)
		rc.RegisterSourceDir(athleteID, record.TrialDir)
	}
	if record.OwnerLabel != "" {
		label := p.matcher.ParseOwnerLabel(record.OwnerLabel)
		rc.RegisterLabel(label.Stem, athleteID)
	}
	if record.DisplayName != "" {
		rc.RegisterLabel(athlete.NormalizeName(record.DisplayName), athleteID)
	}
	if record.IdentityFilePath != "" {
		rc.RegisterIdentityFile(record.IdentityFilePath, athleteID)
	}
}

// writeSessions lands one record's facts and the owner's flag refresh in a
// single transaction, so a failed record never leaves partial sessions behind.
func (p *Pipeline) writeSessions(ctx context.Context, athleteID string, sessions []Session) (int, error) {
	if len(sessions) == 0 {
		return 0, nil
	}
	facts := make([]store.SessionFact, 0, len(sessions))
	for _, session := range sessions {
		facts = append(facts, store.SessionFact{
			Subsystem:   session.Subsystem,
			SessionDate: session.SessionDate,
			Label:       session.Label,
		})
	}
	if err := p.store.AddSessionBatch(ctx, athleteID, facts); err != nil {
		return 0, err
	}
	return len(sessions), nil
}
