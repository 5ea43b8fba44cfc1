package dedup

import (
	"context"
	"log/slog"

	"rosterid/internal/athlete"
	"rosterid/internal/config"
	"rosterid/internal/logging"
	"rosterid/internal/store"
)

// Proposal is one candidate duplicate pair. The winner is always the older
// identity; merging into it keeps the most-referenced id stable.
type Proposal struct {
	WinnerID   string  `json:"winner_id"`
	LoserID    string  `json:"loser_id"`
	WinnerName string  `json:"winner_name"`
	LoserName  string  `json:"loser_name"`
	Similarity float64 `json:"similarity"`
	// ExactName marks pairs whose normalized names are identical; these are
	// eligible for automatic merging.
	ExactName bool `json:"exact_name"`
}

// Report is the outcome of one duplicate scan. It is purely informational;
// nothing has been merged yet when a report is returned.
type Report struct {
	Scanned   int        `json:"scanned"`
	Proposals []Proposal `json:"proposals"`
}

// Summary is the outcome of applying a report.
type Summary struct {
	Merged  int `json:"merged"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Approver decides whether a non-automatic proposal may be merged.
type Approver func(Proposal) bool

// Detector finds and merges duplicate identities.
type Detector struct {
	store          *store.Store
	logger         *slog.Logger
	minSimilarity  float64
	autoMergeExact bool
}

// New constructs a Detector using the dedup thresholds from cfg.
func New(st *store.Store, cfg *config.Config, logger *slog.Logger) *Detector {
	return &Detector{
		store:          st,
		logger:         logging.WithComponent(logger, "dedup"),
		minSimilarity:  cfg.Dedup.MinSimilarity,
		autoMergeExact: cfg.Dedup.AutoMergeExact,
	}
}

// Scan scores every pair of unmerged identities and reports the pairs at or
// above the minimum similarity. When candidateIDs is non-empty, only pairs
// with at least one candidate member are considered, which keeps periodic
// scans over recently-touched identities cheap.
func (d *Detector) Scan(ctx context.Context, candidateIDs []string) (*Report, error) {
	athletes, err := d.store.ListAthletes(ctx, false)
	if err != nil {
		return nil, err
	}

	candidates := make(map[string]struct{}, len(candidateIDs))
	for _, id := range candidateIDs {
		candidates[id] = struct{}{}
	}

	report := &Report{Scanned: len(athletes)}
	for i := 0; i < len(athletes); i++ {
		for j := i + 1; j < len(athletes); j++ {
			a, b := athletes[i], athletes[j]
			if len(candidates) > 0 {
				_, aIn := candidates[a.ID]
				_, bIn := candidates[b.ID]
				if !aIn && !bIn {
					continue
				}
			}
			score := athlete.Similarity(a, b)
			if score < d.minSimilarity {
				continue
			}
			winner, loser := orderPair(a, b)
			report.Proposals = append(report.Proposals, Proposal{
				WinnerID:   winner.ID,
				LoserID:    loser.ID,
				WinnerName: winner.DisplayName,
				LoserName:  loser.DisplayName,
				Similarity: score,
				ExactName:  a.NormalizedName == b.NormalizedName,
			})
		}
	}

	d.logger.Info("duplicate scan complete",
		logging.Int("scanned", report.Scanned),
		logging.Int("proposals", len(report.Proposals)))
	return report, nil
}

// Apply executes a report's proposals. Exact-name pairs merge automatically
// when configured; every other pair is put to the approver, and a nil
// approver declines everything. Declined proposals are recorded as skipped so
// later scans can show they were reviewed. A proposal whose member was merged
// away by an earlier proposal in the same report is skipped without review.
// A failed merge is logged and counted without aborting the remaining
// proposals.
func (d *Detector) Apply(ctx context.Context, report *Report, approve Approver) (*Summary, error) {
	if report == nil {
		return &Summary{}, nil
	}

	summary := &Summary{}
	for _, proposal := range report.Proposals {
		stale, err := d.superseded(ctx, proposal)
		if err != nil {
			return summary, err
		}
		if stale {
			summary.Skipped++
			d.logger.Debug("proposal superseded by an earlier merge",
				logging.String("winner_id", proposal.WinnerID),
				logging.String("loser_id", proposal.LoserID))
			continue
		}

		if !d.approved(proposal, approve) {
			if err := d.store.RecordSkippedMerge(ctx, proposal.WinnerID, proposal.LoserID, proposal.Similarity); err != nil {
				return summary, err
			}
			summary.Skipped++
			continue
		}

		record, err := d.store.ExecuteMerge(ctx, proposal.WinnerID, proposal.LoserID, proposal.Similarity)
		if err != nil {
			// The merge transaction rolled back; the pair is untouched and a
			// later scan will propose it again.
			d.logger.Error("merge failed",
				logging.String("winner_id", proposal.WinnerID),
				logging.String("loser_id", proposal.LoserID),
				logging.Error(err))
			summary.Failed++
			continue
		}
		if err := d.store.RefreshFlags(ctx, proposal.WinnerID); err != nil {
			return summary, err
		}

		summary.Merged++
		d.logger.Info("merged duplicate identity",
			logging.String("winner_id", record.WinnerID),
			logging.String("loser_id", record.LoserID),
			logging.Float64("similarity", record.Similarity),
			logging.Int("residual_mappings", record.ResidualMappings))
	}
	return summary, nil
}

// superseded reports whether either member of a proposal is no longer a live
// identity. Transitive groups produce one proposal per pair, so after the
// first merges the remaining pair references a tombstone.
func (d *Detector) superseded(ctx context.Context, proposal Proposal) (bool, error) {
	for _, id := range []string{proposal.WinnerID, proposal.LoserID} {
		a, err := d.store.GetAthlete(ctx, id)
		if err != nil {
			return false, err
		}
		if a == nil || a.Merged() {
			return true, nil
		}
	}
	return false, nil
}

func (d *Detector) approved(proposal Proposal, approve Approver) bool {
	if proposal.ExactName && d.autoMergeExact {
		return true
	}
	if approve == nil {
		return false
	}
	return approve(proposal)
}

// orderPair picks the merge winner: the older identity, falling back to the
// lexicographically smaller id when creation times tie.
func orderPair(a, b *athlete.Athlete) (winner, loser *athlete.Athlete) {
	if a.CreatedAt.Before(b.CreatedAt) {
		return a, b
	}
	if b.CreatedAt.Before(a.CreatedAt) {
		return b, a
	}
	if a.ID < b.ID {
		return a, b
	}
	return b, a
}
