package models

import "encoding/json"

// Availability kinds
const (
	AvailabilityFull    = "full"
	AvailabilityPartial = "partial"
)

// Lock modes
const (
	LockModeHard     = "hard"
	LockModeOverride = "override"
)

// AllowAvailability is the only permission a lock may carry. Hour caps and
// qualification requirements are never bypassable, regardless of mode.
const AllowAvailability = "availability"

// Rejection reason codes
const (
	ReasonNotQualified         = "not_qualified"
	ReasonNotAvailable         = "not_available"
	ReasonWouldExceedCap       = "would_exceed_cap"
	ReasonMissingScoringConfig = "missing_scoring_config"
	ReasonLockedNotEligible    = "locked_member_not_eligible"
	ReasonLockedDoubleBooked   = "locked_member_double_booked_same_shift"
	ReasonAllCandidatesUsed    = "all_candidates_already_assigned_this_shift"
	ReasonNoEligibleCandidates = "no_eligible_candidates"
)

// Warning codes
const (
	WarnPartialShift         = "partial_shift"
	WarnInvalidLock          = "invalid_lock"
	WarnDoubleBookedLock     = "double_booked_lock"
	WarnOverrideLockUsed     = "override_lock_used"
	WarnMissingScoringConfig = "missing_scoring_config"
)

// Member represents a person who can fill seats. Immutable during a
// resolution run; hours and caps change only between runs.
type Member struct {
	ID             string   `json:"id"`
	Qualifications []string `json:"qualifications,omitempty"`
	Hours          float64  `json:"hours"`
	MaxHours       *float64 `json:"max_hours,omitempty"` // nil means uncapped
	HourlyRate     float64  `json:"hourly_rate,omitempty"`
}

// Seat is a single staffing slot within a shift. Seats sharing a shift ID
// are mutually exclusive: one member may not fill two of them.
type Seat struct {
	ShiftID       string   `json:"shift_id"`
	SeatID        string   `json:"seat_id"`
	RequiredQuals []string `json:"required_quals,omitempty"`
	DurationHours float64  `json:"duration_hours,omitempty"` // 0 means the 12h default
}

// DefaultSeatHours applies when a seat carries no explicit duration.
const DefaultSeatHours = 12

// Duration returns the seat's duration in hours, defaulted.
func (s Seat) Duration() float64 {
	if s.DurationHours <= 0 {
		return DefaultSeatHours
	}
	return s.DurationHours
}

// Key returns the seat's composite key, "{shift_id}|{seat_id}".
func (s Seat) Key() string {
	return SeatKey(s.ShiftID, s.SeatID)
}

// SeatKey builds the composite seat key used by the lock map and lock store.
func SeatKey(shiftID, seatID string) string {
	return shiftID + "|" + seatID
}

// Availability records that a member can work a shift. Absence of a record
// means not available. A record never spans multiple shifts.
type Availability struct {
	MemberID string `json:"member_id"`
	ShiftID  string `json:"shift_id"`
	Kind     string `json:"kind"` // full | partial
}

// Lock is a supervisor directive pinning a member to a seat.
type Lock struct {
	MemberID string   `json:"member_id"`
	Mode     string   `json:"mode,omitempty"`
	Allow    []string `json:"allow,omitempty"`
	Note     string   `json:"note,omitempty"`
}

// UnmarshalJSON accepts either a full lock object or a bare member ID
// string, which is shorthand for a hard lock with no allowances.
func (l *Lock) UnmarshalJSON(data []byte) error {
	var memberID string
	if err := json.Unmarshal(data, &memberID); err == nil {
		*l = Lock{MemberID: memberID, Mode: LockModeHard}
		return nil
	}
	type plain Lock
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = Lock(p)
	return nil
}

// Normalized returns the lock with defaults filled in.
func (l Lock) Normalized() Lock {
	if l.Mode == "" {
		l.Mode = LockModeHard
	}
	return l
}

// AllowsAvailability reports whether the lock may bypass the availability
// check. Only override-mode locks carrying the "availability" allowance do.
func (l Lock) AllowsAvailability() bool {
	if l.Mode != LockModeOverride {
		return false
	}
	for _, a := range l.Allow {
		if a == AllowAvailability {
			return true
		}
	}
	return false
}

// ScoringConfig holds the weight constants for candidate scoring. The
// values are deliberate carry-overs from the production rosters; treat them
// as tunable configuration, not derived quantities.
type ScoringConfig struct {
	QualifiedWeight float64 `json:"qualified_weight"`
	FullWeight      float64 `json:"full_weight"`
	PartialWeight   float64 `json:"partial_weight"`
	FairnessWeight  float64 `json:"fairness_weight"`
	NearCapWeight   float64 `json:"near_cap_weight"`
}

// Snapshot is the complete, immutable input bundle for one resolution run.
// The lock map is keyed by SeatKey. Scoring may be nil, which is a fatal
// precondition the resolver reports rather than working around.
type Snapshot struct {
	Members      []Member        `json:"members"`
	Seats        []Seat          `json:"seats"`
	Availability []Availability  `json:"availability,omitempty"`
	Locks        map[string]Lock `json:"locks,omitempty"`
	Scoring      *ScoringConfig  `json:"scoring,omitempty"`
}

// ScoreComponent is one additive piece of a candidate's score, kept
// individually for audit.
type ScoreComponent struct {
	Key   string  `json:"key"`
	Delta float64 `json:"delta"`
}

// Candidate is the computed eligibility record for one (member, seat) pair.
// Recomputed fresh for every seat on every run, never cached.
type Candidate struct {
	MemberID   string           `json:"member_id"`
	Eligible   bool             `json:"eligible"`
	Reasons    []string         `json:"reasons,omitempty"`
	Score      *float64         `json:"score"`
	Components []ScoreComponent `json:"components,omitempty"`
	Overridden bool             `json:"overridden,omitempty"`
}

// Decision is the outcome for one filled seat, with the full candidate list
// retained for explainability.
type Decision struct {
	ShiftID    string      `json:"shift_id"`
	SeatID     string      `json:"seat_id"`
	MemberID   string      `json:"member_id"`
	Score      *float64    `json:"score"`
	Candidates []Candidate `json:"candidates"`
	Locked     bool        `json:"locked,omitempty"`
	LockMode   string      `json:"lock_mode,omitempty"`
}

// Unfilled records a seat no one was assigned to and why.
type Unfilled struct {
	ShiftID string `json:"shift_id"`
	SeatID  string `json:"seat_id"`
	Reason  string `json:"reason"`
}

// Warning is a non-fatal finding attached to a run.
type Warning struct {
	Code     string `json:"code"`
	ShiftID  string `json:"shift_id,omitempty"`
	SeatID   string `json:"seat_id,omitempty"`
	MemberID string `json:"member_id,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// RunSummary rolls up a run's counts and metrics.
type RunSummary struct {
	FilledRequired   int     `json:"filled_required"`
	UnfilledRequired int     `json:"unfilled_required"`
	FairnessScore    float64 `json:"fairness_score"`
	EstimatedCost    float64 `json:"estimated_cost"`
}

// RunReport is the full output of one resolution run. Entirely derived from
// the snapshot; two runs over the same snapshot produce identical reports.
type RunReport struct {
	Assignments []Decision `json:"assignments"`
	Unfilled    []Unfilled `json:"unfilled"`
	Warnings    []Warning  `json:"warnings"`
	Summary     RunSummary `json:"summary"`
}
