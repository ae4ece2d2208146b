package resolver

import (
	"math"
	"sort"

	"github.com/arnavshah/roster-resolver-go/pkg/models"
)

// NearCapThreshold is the post-assignment utilization ratio above which the
// near-cap penalty starts. Carried over from the production rosters.
const NearCapThreshold = 0.70

// SeatEvaluation is the result of evaluating every member against one seat.
type SeatEvaluation struct {
	ShiftID    string             `json:"shift_id"`
	SeatID     string             `json:"seat_id"`
	Candidates []models.Candidate `json:"candidates"`
	Warnings   []models.Warning   `json:"warnings,omitempty"`
}

// EligibleCount returns how many candidates are eligible.
func (e SeatEvaluation) EligibleCount() int {
	n := 0
	for _, c := range e.Candidates {
		if c.Eligible {
			n++
		}
	}
	return n
}

// round2 keeps score arithmetic stable across runs with floating-point
// inputs. Every component and the total go through it.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// hoursBounds returns the min and max accrued hours across all members.
func hoursBounds(members []models.Member) (min, max float64) {
	for i, m := range members {
		if i == 0 || m.Hours < min {
			min = m.Hours
		}
		if i == 0 || m.Hours > max {
			max = m.Hours
		}
	}
	return min, max
}

// EvaluateSeat evaluates every member in the snapshot against one seat and
// returns the ranked candidate list with full explain data. The snapshot's
// scoring config must be present; callers guard the missing-config case.
//
// Members are walked in ascending ID order and every applicable rejection
// reason is accumulated rather than short-circuiting on the first.
func EvaluateSeat(snap *models.Snapshot, seat models.Seat) SeatEvaluation {
	eval := SeatEvaluation{ShiftID: seat.ShiftID, SeatID: seat.SeatID}
	cfg := snap.Scoring
	duration := seat.Duration()

	members := append([]models.Member(nil), snap.Members...)
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })

	avail := make(map[string]string, len(snap.Availability))
	for _, a := range snap.Availability {
		avail[a.MemberID+"|"+a.ShiftID] = a.Kind
	}

	minHours, maxHours := hoursBounds(members)
	denom := maxHours - minHours
	if denom < 1 {
		denom = 1
	}

	for _, m := range members {
		c := models.Candidate{MemberID: m.ID}

		quals := make(map[string]bool, len(m.Qualifications))
		for _, q := range m.Qualifications {
			quals[q] = true
		}
		for _, rq := range seat.RequiredQuals {
			if !quals[rq] {
				c.Reasons = append(c.Reasons, models.ReasonNotQualified)
				break
			}
		}

		kind, available := avail[m.ID+"|"+seat.ShiftID]
		if !available {
			c.Reasons = append(c.Reasons, models.ReasonNotAvailable)
		}

		if m.MaxHours != nil && m.Hours+duration > *m.MaxHours {
			c.Reasons = append(c.Reasons, models.ReasonWouldExceedCap)
		}

		if len(c.Reasons) > 0 {
			eval.Candidates = append(eval.Candidates, c)
			continue
		}

		c.Eligible = true
		c.Components = append(c.Components, models.ScoreComponent{
			Key: "qualified", Delta: round2(cfg.QualifiedWeight),
		})

		if kind == models.AvailabilityPartial {
			c.Components = append(c.Components, models.ScoreComponent{
				Key: "availability_partial", Delta: round2(cfg.PartialWeight),
			})
			eval.Warnings = append(eval.Warnings, models.Warning{
				Code:     models.WarnPartialShift,
				ShiftID:  seat.ShiftID,
				SeatID:   seat.SeatID,
				MemberID: m.ID,
			})
		} else {
			c.Components = append(c.Components, models.ScoreComponent{
				Key: "availability_full", Delta: round2(cfg.FullWeight),
			})
		}

		if m.MaxHours != nil {
			ratio := (m.Hours + duration) / *m.MaxHours
			if ratio > NearCapThreshold {
				c.Components = append(c.Components, models.ScoreComponent{
					Key: "near_cap_penalty", Delta: round2(-cfg.NearCapWeight * (ratio - NearCapThreshold)),
				})
			}
		}

		norm := (m.Hours - minHours) / denom
		c.Components = append(c.Components, models.ScoreComponent{
			Key: "fairness", Delta: round2(cfg.FairnessWeight * (1 - 2*norm)),
		})

		total := 0.0
		for _, comp := range c.Components {
			total += comp.Delta
		}
		total = round2(total)
		c.Score = &total

		eval.Candidates = append(eval.Candidates, c)
	}

	sortCandidates(eval.Candidates)
	return eval
}

// sortCandidates orders eligible before ineligible, eligible by descending
// score, all ties by ascending member ID. The ID tiebreak is the sole source
// of determinism when scores tie exactly.
func sortCandidates(cands []models.Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Eligible != b.Eligible {
			return a.Eligible
		}
		if a.Eligible && b.Eligible && a.Score != nil && b.Score != nil && *a.Score != *b.Score {
			return *a.Score > *b.Score
		}
		return a.MemberID < b.MemberID
	})
}
