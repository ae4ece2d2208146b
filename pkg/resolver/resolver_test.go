package resolver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/roster-resolver-go/pkg/models"
)

func TestResolve_OneMemberTwoSeatsSameShift(t *testing.T) {
	snap := &models.Snapshot{
		Members: []models.Member{
			{ID: "B", Qualifications: []string{"BLS"}, Hours: 0},
		},
		Seats: []models.Seat{
			{ShiftID: "S1", SeatID: "attendant", RequiredQuals: []string{"BLS"}},
			{ShiftID: "S1", SeatID: "driver", RequiredQuals: []string{"BLS"}},
		},
		Availability: []models.Availability{
			{MemberID: "B", ShiftID: "S1", Kind: models.AvailabilityFull},
		},
		Scoring: testScoring(),
	}

	report := Resolve(snap)
	require.Len(t, report.Assignments, 1)
	assert.Equal(t, "B", report.Assignments[0].MemberID)

	require.Len(t, report.Unfilled, 1)
	assert.Equal(t, models.ReasonAllCandidatesUsed, report.Unfilled[0].Reason)
	assert.Equal(t, 1, report.Summary.FilledRequired)
	assert.Equal(t, 1, report.Summary.UnfilledRequired)
}

func TestResolve_NoEligibleCandidates(t *testing.T) {
	snap := &models.Snapshot{
		Members: []models.Member{{ID: "B", Hours: 0}},
		Seats: []models.Seat{
			{ShiftID: "S1", SeatID: "attendant", RequiredQuals: []string{"ALS"}},
		},
		Scoring: testScoring(),
	}

	report := Resolve(snap)
	require.Len(t, report.Unfilled, 1)
	assert.Equal(t, models.ReasonNoEligibleCandidates, report.Unfilled[0].Reason)
}

func TestResolve_MissingScoringConfig(t *testing.T) {
	snap := &models.Snapshot{
		Members: []models.Member{{ID: "A"}},
		Seats: []models.Seat{
			{ShiftID: "S1", SeatID: "a"},
			{ShiftID: "S1", SeatID: "b"},
			{ShiftID: "S2", SeatID: "a"},
			{ShiftID: "S2", SeatID: "b"},
			{ShiftID: "S3", SeatID: "a"},
		},
		Availability: []models.Availability{
			{MemberID: "A", ShiftID: "S1", Kind: models.AvailabilityFull},
		},
	}

	report := Resolve(snap)
	assert.Empty(t, report.Assignments)
	require.Len(t, report.Unfilled, 5)
	for _, u := range report.Unfilled {
		assert.Equal(t, models.ReasonMissingScoringConfig, u.Reason)
	}
	assert.Equal(t, 5, report.Summary.UnfilledRequired)

	require.Len(t, report.Warnings, 1)
	assert.Equal(t, models.WarnMissingScoringConfig, report.Warnings[0].Code)
}

func TestResolve_ScarcestSeatClaimsFirst(t *testing.T) {
	// Only X can fill the attendant seat; X is also the top candidate for
	// the driver seat. Scarcity ordering must hand X to the attendant seat
	// even though the driver seat comes first in the snapshot.
	snap := &models.Snapshot{
		Members: []models.Member{
			{ID: "X", Qualifications: []string{"ALS"}, Hours: 0},
			{ID: "Y", Hours: 10},
		},
		Seats: []models.Seat{
			{ShiftID: "S1", SeatID: "driver"},
			{ShiftID: "S1", SeatID: "attendant", RequiredQuals: []string{"ALS"}},
		},
		Availability: []models.Availability{
			{MemberID: "X", ShiftID: "S1", Kind: models.AvailabilityFull},
			{MemberID: "Y", ShiftID: "S1", Kind: models.AvailabilityFull},
		},
		Scoring: testScoring(),
	}

	report := Resolve(snap)
	require.Len(t, report.Assignments, 2)

	byseat := map[string]string{}
	for _, d := range report.Assignments {
		byseat[d.SeatID] = d.MemberID
	}
	assert.Equal(t, "X", byseat["attendant"])
	assert.Equal(t, "Y", byseat["driver"])
	assert.Empty(t, report.Unfilled)
}

func TestResolve_LocksSettleBeforeFreeSeats(t *testing.T) {
	snap := &models.Snapshot{
		Members: []models.Member{
			{ID: "P", Hours: 0},
			{ID: "Q", Hours: 0},
		},
		Seats: []models.Seat{
			{ShiftID: "S1", SeatID: "driver"},
			{ShiftID: "S1", SeatID: "attendant"},
		},
		Availability: []models.Availability{
			{MemberID: "P", ShiftID: "S1", Kind: models.AvailabilityFull},
			{MemberID: "Q", ShiftID: "S1", Kind: models.AvailabilityFull},
		},
		Locks: map[string]models.Lock{
			"S1|attendant": {MemberID: "P"},
		},
		Scoring: testScoring(),
	}

	report := Resolve(snap)
	require.Len(t, report.Assignments, 2)

	byseat := map[string]models.Decision{}
	for _, d := range report.Assignments {
		byseat[d.SeatID] = d
	}
	assert.True(t, byseat["attendant"].Locked)
	assert.Equal(t, "P", byseat["attendant"].MemberID)
	assert.False(t, byseat["driver"].Locked)
	assert.Equal(t, "Q", byseat["driver"].MemberID)
}

func TestResolve_NoDoubleBookingWithinShift(t *testing.T) {
	snap := &models.Snapshot{
		Members: []models.Member{
			{ID: "A", Hours: 0},
			{ID: "B", Hours: 0},
		},
		Seats: []models.Seat{
			{ShiftID: "S1", SeatID: "a"},
			{ShiftID: "S1", SeatID: "b"},
			{ShiftID: "S2", SeatID: "a"},
		},
		Availability: []models.Availability{
			{MemberID: "A", ShiftID: "S1", Kind: models.AvailabilityFull},
			{MemberID: "B", ShiftID: "S1", Kind: models.AvailabilityFull},
			{MemberID: "A", ShiftID: "S2", Kind: models.AvailabilityFull},
		},
		Scoring: testScoring(),
	}

	report := Resolve(snap)
	seen := map[string]map[string]bool{}
	for _, d := range report.Assignments {
		if seen[d.ShiftID] == nil {
			seen[d.ShiftID] = map[string]bool{}
		}
		require.False(t, seen[d.ShiftID][d.MemberID],
			"member %s assigned twice in shift %s", d.MemberID, d.ShiftID)
		seen[d.ShiftID][d.MemberID] = true
	}
	// S2 reuses A: exclusivity is per shift, not global.
	assert.Len(t, report.Assignments, 3)
}

func TestResolve_Deterministic(t *testing.T) {
	snap := &models.Snapshot{
		Members: []models.Member{
			{ID: "m3", Qualifications: []string{"ALS"}, Hours: 12, MaxHours: capOf(48), HourlyRate: 21},
			{ID: "m1", Qualifications: []string{"BLS"}, Hours: 0, HourlyRate: 17},
			{ID: "m2", Qualifications: []string{"ALS", "BLS"}, Hours: 36, MaxHours: capOf(60)},
		},
		Seats: []models.Seat{
			{ShiftID: "S1", SeatID: "attendant", RequiredQuals: []string{"ALS"}},
			{ShiftID: "S1", SeatID: "driver"},
			{ShiftID: "S2", SeatID: "attendant", RequiredQuals: []string{"BLS"}},
		},
		Availability: []models.Availability{
			{MemberID: "m1", ShiftID: "S1", Kind: models.AvailabilityFull},
			{MemberID: "m2", ShiftID: "S1", Kind: models.AvailabilityPartial},
			{MemberID: "m3", ShiftID: "S1", Kind: models.AvailabilityFull},
			{MemberID: "m1", ShiftID: "S2", Kind: models.AvailabilityFull},
			{MemberID: "m2", ShiftID: "S2", Kind: models.AvailabilityFull},
		},
		Locks: map[string]models.Lock{
			"S2|attendant": {MemberID: "m2"},
		},
		Scoring: testScoring(),
	}

	first, err := json.Marshal(Resolve(snap))
	require.NoError(t, err)
	second, err := json.Marshal(Resolve(snap))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolve_SummaryMetrics(t *testing.T) {
	snap := &models.Snapshot{
		Members: []models.Member{
			{ID: "A", Hours: 0, HourlyRate: 20},
			{ID: "B", Hours: 0, HourlyRate: 10},
		},
		Seats: []models.Seat{
			{ShiftID: "S1", SeatID: "a", DurationHours: 12},
			{ShiftID: "S1", SeatID: "b", DurationHours: 12},
		},
		Availability: []models.Availability{
			{MemberID: "A", ShiftID: "S1", Kind: models.AvailabilityFull},
			{MemberID: "B", ShiftID: "S1", Kind: models.AvailabilityFull},
		},
		Scoring: testScoring(),
	}

	report := Resolve(snap)
	require.Len(t, report.Assignments, 2)
	assert.InDelta(t, 12*20+12*10, report.Summary.EstimatedCost, 1e-9)
	// both members end on 12h: perfectly even
	assert.InDelta(t, 100.0, report.Summary.FairnessScore, 1e-9)
}

func TestResolveTraced_SequentialEvents(t *testing.T) {
	snap := &models.Snapshot{
		Members: []models.Member{{ID: "A", Hours: 0}},
		Seats: []models.Seat{
			{ShiftID: "S1", SeatID: "a"},
			{ShiftID: "S1", SeatID: "b"},
		},
		Availability: []models.Availability{
			{MemberID: "A", ShiftID: "S1", Kind: models.AvailabilityFull},
		},
		Scoring: testScoring(),
	}

	trace := &MemoryTrace{}
	ResolveTraced(snap, trace)
	require.NotEmpty(t, trace.Events)

	for i, ev := range trace.Events {
		assert.Equal(t, i+1, ev.Seq)
	}
	assert.Equal(t, PhaseSummary, trace.Events[len(trace.Events)-1].Phase)

	kinds := map[string]int{}
	for _, ev := range trace.Events {
		kinds[ev.Kind]++
	}
	assert.Equal(t, 1, kinds["seat_assigned"])
	assert.Equal(t, 1, kinds["seat_unfilled"])
}

func TestEvaluateSeatByKey(t *testing.T) {
	snap := &models.Snapshot{
		Members: []models.Member{{ID: "A", Hours: 0}},
		Seats:   []models.Seat{{ShiftID: "S1", SeatID: "driver"}},
		Availability: []models.Availability{
			{MemberID: "A", ShiftID: "S1", Kind: models.AvailabilityFull},
		},
		Scoring: testScoring(),
	}

	eval, err := EvaluateSeatByKey(snap, "S1", "driver")
	require.NoError(t, err)
	assert.Len(t, eval.Candidates, 1)

	_, err = EvaluateSeatByKey(snap, "S1", "nope")
	assert.ErrorIs(t, err, ErrSeatNotFound)

	snap.Scoring = nil
	_, err = EvaluateSeatByKey(snap, "S1", "driver")
	assert.ErrorIs(t, err, ErrMissingScoringConfig)
}

func TestFragility(t *testing.T) {
	snap := &models.Snapshot{
		Members: []models.Member{
			{ID: "A", Qualifications: []string{"ALS"}, Hours: 0},
			{ID: "B", Hours: 0},
		},
		Seats: []models.Seat{
			{ShiftID: "S1", SeatID: "attendant", RequiredQuals: []string{"ALS"}},
			{ShiftID: "S1", SeatID: "driver"},
			{ShiftID: "S2", SeatID: "attendant", RequiredQuals: []string{"ALS"}},
		},
		Availability: []models.Availability{
			{MemberID: "A", ShiftID: "S1", Kind: models.AvailabilityFull},
			{MemberID: "B", ShiftID: "S1", Kind: models.AvailabilityFull},
		},
		Scoring: testScoring(),
	}

	rows, err := Fragility(snap)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	status := map[string]string{}
	for _, r := range rows {
		status[models.SeatKey(r.ShiftID, r.SeatID)] = r.Status
	}
	assert.Equal(t, StatusYellow, status["S1|attendant"]) // pool of one
	assert.Equal(t, StatusGreen, status["S1|driver"])
	assert.Equal(t, StatusRed, status["S2|attendant"]) // no availability at all
}
