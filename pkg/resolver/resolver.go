// Package resolver implements the seat resolution core: a pure,
// deterministic function from an input snapshot to a per-seat decision set
// with full explainability. It performs no I/O and holds no state across
// calls; the surrounding service owns storage and concurrency control.
package resolver

import (
	"sort"

	"github.com/arnavshah/roster-resolver-go/pkg/models"
)

// Resolve runs the full resolution pass over a snapshot.
func Resolve(snap *models.Snapshot) models.RunReport {
	return ResolveTraced(snap, nil)
}

// ResolveTraced is Resolve with an optional decision-log sink. Locked seats
// settle first, then unlocked seats greedily in scarcity order. A member
// placed once is never reconsidered, even if a later seat goes unfilled:
// the trade-off is simplicity and explainability over global optimality.
func ResolveTraced(snap *models.Snapshot, sink TraceSink) models.RunReport {
	var report models.RunReport
	tr := &tracer{sink: sink}

	if snap.Scoring == nil {
		for _, seat := range snap.Seats {
			report.Unfilled = append(report.Unfilled, models.Unfilled{
				ShiftID: seat.ShiftID,
				SeatID:  seat.SeatID,
				Reason:  models.ReasonMissingScoringConfig,
			})
		}
		report.Warnings = append(report.Warnings, models.Warning{
			Code:   models.WarnMissingScoringConfig,
			Detail: "no scoring configuration; no assignment attempted",
		})
		report.Summary = summarize(snap, report)
		tr.emit(PhaseSummary, "aborted", TraceEvent{Reason: models.ReasonMissingScoringConfig})
		return report
	}

	tr.emit(PhaseLocks, "phase_started", TraceEvent{})
	lockRes := ReconcileLocks(snap)
	report.Assignments = append(report.Assignments, lockRes.Decisions...)
	report.Unfilled = append(report.Unfilled, lockRes.Unfilled...)
	report.Warnings = append(report.Warnings, lockRes.Warnings...)
	used := lockRes.UsedByShift
	for _, d := range lockRes.Decisions {
		tr.emit(PhaseLocks, "seat_locked", TraceEvent{ShiftID: d.ShiftID, SeatID: d.SeatID, MemberID: d.MemberID})
	}
	for _, u := range lockRes.Unfilled {
		tr.emit(PhaseLocks, "seat_unfilled", TraceEvent{ShiftID: u.ShiftID, SeatID: u.SeatID, Reason: u.Reason})
	}

	tr.emit(PhaseSchedule, "phase_started", TraceEvent{})

	type openSeat struct {
		seat models.Seat
		eval SeatEvaluation
	}
	var open []openSeat
	for _, seat := range snap.Seats {
		if _, locked := snap.Locks[seat.Key()]; locked {
			continue
		}
		eval := EvaluateSeat(snap, seat)
		report.Warnings = append(report.Warnings, eval.Warnings...)
		open = append(open, openSeat{seat: seat, eval: eval})
	}

	// Scarcest seats claim candidates first; shift then seat ID keeps the
	// order deterministic across equal eligible counts.
	sort.SliceStable(open, func(i, j int) bool {
		ci, cj := open[i].eval.EligibleCount(), open[j].eval.EligibleCount()
		if ci != cj {
			return ci < cj
		}
		if open[i].seat.ShiftID != open[j].seat.ShiftID {
			return open[i].seat.ShiftID < open[j].seat.ShiftID
		}
		return open[i].seat.SeatID < open[j].seat.SeatID
	})

	for _, os := range open {
		seat := os.seat
		var chosen *models.Candidate
		eligibleExists := false
		for i := range os.eval.Candidates {
			c := &os.eval.Candidates[i]
			if !c.Eligible {
				continue
			}
			eligibleExists = true
			if !used[seat.ShiftID][c.MemberID] {
				chosen = c
				break
			}
		}

		if chosen == nil {
			reason := models.ReasonNoEligibleCandidates
			if eligibleExists {
				reason = models.ReasonAllCandidatesUsed
			}
			report.Unfilled = append(report.Unfilled, models.Unfilled{
				ShiftID: seat.ShiftID,
				SeatID:  seat.SeatID,
				Reason:  reason,
			})
			tr.emit(PhaseSchedule, "seat_unfilled", TraceEvent{ShiftID: seat.ShiftID, SeatID: seat.SeatID, Reason: reason})
			continue
		}

		if used[seat.ShiftID] == nil {
			used[seat.ShiftID] = make(map[string]bool)
		}
		used[seat.ShiftID][chosen.MemberID] = true

		report.Assignments = append(report.Assignments, models.Decision{
			ShiftID:    seat.ShiftID,
			SeatID:     seat.SeatID,
			MemberID:   chosen.MemberID,
			Score:      chosen.Score,
			Candidates: os.eval.Candidates,
		})
		tr.emit(PhaseSchedule, "seat_assigned", TraceEvent{ShiftID: seat.ShiftID, SeatID: seat.SeatID, MemberID: chosen.MemberID})
	}

	report.Summary = summarize(snap, report)
	tr.emit(PhaseSummary, "run_completed", TraceEvent{})
	return report
}
