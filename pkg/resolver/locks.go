package resolver

import (
	"fmt"

	"github.com/arnavshah/roster-resolver-go/pkg/models"
)

// LockResult is the outcome of resolving every locked seat.
type LockResult struct {
	Decisions   []models.Decision
	Unfilled    []models.Unfilled
	Warnings    []models.Warning
	UsedByShift map[string]map[string]bool
}

// ReconcileLocks resolves every seat carrying a lock, in snapshot seat
// order. Locks are settled before any scarcity ordering applies to free
// seats, so a locked seat always gets first claim on its member.
func ReconcileLocks(snap *models.Snapshot) LockResult {
	res := LockResult{UsedByShift: make(map[string]map[string]bool)}

	for _, seat := range snap.Seats {
		lock, ok := snap.Locks[seat.Key()]
		if !ok {
			continue
		}
		lock = lock.Normalized()

		eval := EvaluateSeat(snap, seat)
		res.Warnings = append(res.Warnings, eval.Warnings...)

		if lock.AllowsAvailability() {
			applyAvailabilityOverride(eval.Candidates)
		}

		var locked *models.Candidate
		for i := range eval.Candidates {
			if eval.Candidates[i].MemberID == lock.MemberID {
				locked = &eval.Candidates[i]
				break
			}
		}

		if locked == nil || !locked.Eligible {
			res.Unfilled = append(res.Unfilled, models.Unfilled{
				ShiftID: seat.ShiftID,
				SeatID:  seat.SeatID,
				Reason:  models.ReasonLockedNotEligible,
			})
			res.Warnings = append(res.Warnings, models.Warning{
				Code:     models.WarnInvalidLock,
				ShiftID:  seat.ShiftID,
				SeatID:   seat.SeatID,
				MemberID: lock.MemberID,
				Detail:   "locked member is not eligible for this seat",
			})
			continue
		}

		if res.UsedByShift[seat.ShiftID][lock.MemberID] {
			res.Unfilled = append(res.Unfilled, models.Unfilled{
				ShiftID: seat.ShiftID,
				SeatID:  seat.SeatID,
				Reason:  models.ReasonLockedDoubleBooked,
			})
			res.Warnings = append(res.Warnings, models.Warning{
				Code:     models.WarnDoubleBookedLock,
				ShiftID:  seat.ShiftID,
				SeatID:   seat.SeatID,
				MemberID: lock.MemberID,
				Detail:   "locked member already holds a seat in this shift",
			})
			continue
		}

		if res.UsedByShift[seat.ShiftID] == nil {
			res.UsedByShift[seat.ShiftID] = make(map[string]bool)
		}
		res.UsedByShift[seat.ShiftID][lock.MemberID] = true

		res.Decisions = append(res.Decisions, models.Decision{
			ShiftID:    seat.ShiftID,
			SeatID:     seat.SeatID,
			MemberID:   lock.MemberID,
			Score:      locked.Score,
			Candidates: eval.Candidates,
			Locked:     true,
			LockMode:   lock.Mode,
		})

		if lock.Mode == models.LockModeOverride {
			res.Warnings = append(res.Warnings, models.Warning{
				Code:     models.WarnOverrideLockUsed,
				ShiftID:  seat.ShiftID,
				SeatID:   seat.SeatID,
				MemberID: lock.MemberID,
				Detail:   fmt.Sprintf("allow=%v note=%q", lock.Allow, lock.Note),
			})
		}
	}

	return res
}

// applyAvailabilityOverride rescues candidates whose only rejection was
// not_available. Qualification and cap rejections stay rejected no matter
// what the lock says. Rescued candidates carry a zero-delta synthetic
// component and a nil score, since they bypassed normal evaluation.
func applyAvailabilityOverride(cands []models.Candidate) {
	for i := range cands {
		c := &cands[i]
		if c.Eligible {
			continue
		}
		if len(c.Reasons) != 1 || c.Reasons[0] != models.ReasonNotAvailable {
			continue
		}
		c.Eligible = true
		c.Reasons = nil
		c.Score = nil
		c.Components = []models.ScoreComponent{{Key: "override_availability", Delta: 0}}
		c.Overridden = true
	}
}
