package athlete

import (
	"strings"
	"time"
)

// MergeDecision records how a proposed duplicate pair was handled.
type MergeDecision string

const (
	// DecisionMerged means the loser's references were repointed to the winner.
	DecisionMerged MergeDecision = "merged"
	// DecisionSkipped means the proposal was reviewed and declined.
	DecisionSkipped MergeDecision = "skipped"
)

// Demographics carries the optional descriptive fields supplied by source
// systems. Zero values mean "unknown"; the store only fills fields that are
// currently unset (first write wins).
type Demographics struct {
	BirthDate string  `json:"birth_date,omitempty"` // YYYY-MM-DD
	Gender    string  `json:"gender,omitempty"`
	HeightCM  float64 `json:"height_cm,omitempty"`
	WeightKG  float64 `json:"weight_kg,omitempty"`
}

// Empty reports whether no demographic field is populated.
func (d Demographics) Empty() bool {
	return strings.TrimSpace(d.BirthDate) == "" &&
		strings.TrimSpace(d.Gender) == "" &&
		d.HeightCM == 0 &&
		d.WeightKG == 0
}

// Athlete is the single durable record representing one real athlete across
// all source systems. The ID is opaque and immutable once assigned.
type Athlete struct {
	ID             string
	DisplayName    string
	NormalizedName string
	BirthDate      string
	Gender         string
	HeightCM       float64
	WeightKG       float64
	SourceSystem   string
	RegistryID     string
	LowConfidence  bool
	MergedInto     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Merged reports whether this identity has been folded into another one.
func (a *Athlete) Merged() bool {
	return a != nil && a.MergedInto != ""
}

// Demographics returns the athlete's demographic fields in the shape source
// records use.
func (a *Athlete) Demographics() Demographics {
	if a == nil {
		return Demographics{}
	}
	return Demographics{
		BirthDate: a.BirthDate,
		Gender:    a.Gender,
		HeightCM:  a.HeightCM,
		WeightKG:  a.WeightKG,
	}
}

// SourceMapping associates a source-system-local identifier with a canonical
// athlete. Mappings are created on first resolution and only ever repointed
// during a merge, never deleted.
type SourceMapping struct {
	SourceSystem  string
	SourceLocalID string
	AthleteID     string
	CreatedAt     time.Time
}

// MergeRecord is one line of the immutable merge audit trail.
type MergeRecord struct {
	ID               int64
	WinnerID         string
	LoserID          string
	Similarity       float64
	Decision         MergeDecision
	ResidualMappings int
	CreatedAt        time.Time
}

// SubsystemFlags is the denormalized per-athlete, per-subsystem aggregate:
// whether any data exists and how many distinct sessions were recorded.
// Always derived from the fact tables, never hand-edited.
type SubsystemFlags struct {
	AthleteID    string
	Subsystem    string
	HasData      bool
	SessionCount int
	UpdatedAt    time.Time
}
