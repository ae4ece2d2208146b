package resolver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/roster-resolver-go/pkg/models"
)

func lockSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Members: []models.Member{
			{ID: "C", Qualifications: []string{"BLS"}, Hours: 0},
			{ID: "D", Qualifications: []string{"ALS"}, Hours: 0},
		},
		Seats: []models.Seat{
			{ShiftID: "S2", SeatID: "attendant", RequiredQuals: []string{"ALS"}, DurationHours: 12},
		},
		Availability: []models.Availability{
			{MemberID: "C", ShiftID: "S2", Kind: models.AvailabilityFull},
			{MemberID: "D", ShiftID: "S2", Kind: models.AvailabilityFull},
		},
		Scoring: testScoring(),
	}
}

func TestLock_BareMemberIDShorthand(t *testing.T) {
	var locks map[string]models.Lock
	err := json.Unmarshal([]byte(`{"S2|attendant": "D"}`), &locks)
	require.NoError(t, err)

	lock := locks["S2|attendant"].Normalized()
	assert.Equal(t, "D", lock.MemberID)
	assert.Equal(t, models.LockModeHard, lock.Mode)
	assert.Empty(t, lock.Allow)
}

func TestReconcileLocks_HardLockCommits(t *testing.T) {
	snap := lockSnapshot()
	snap.Locks = map[string]models.Lock{
		"S2|attendant": {MemberID: "D", Mode: models.LockModeHard},
	}

	res := ReconcileLocks(snap)
	require.Len(t, res.Decisions, 1)
	d := res.Decisions[0]
	assert.Equal(t, "D", d.MemberID)
	assert.True(t, d.Locked)
	assert.Equal(t, models.LockModeHard, d.LockMode)
	assert.NotNil(t, d.Score)
	assert.True(t, res.UsedByShift["S2"]["D"])
	assert.Empty(t, res.Unfilled)
}

func TestReconcileLocks_UnqualifiedMemberRejected(t *testing.T) {
	snap := lockSnapshot()
	snap.Locks = map[string]models.Lock{
		"S2|attendant": {MemberID: "C", Mode: models.LockModeHard},
	}

	res := ReconcileLocks(snap)
	assert.Empty(t, res.Decisions)
	require.Len(t, res.Unfilled, 1)
	assert.Equal(t, models.ReasonLockedNotEligible, res.Unfilled[0].Reason)

	var invalid bool
	for _, w := range res.Warnings {
		if w.Code == models.WarnInvalidLock && w.MemberID == "C" {
			invalid = true
		}
	}
	assert.True(t, invalid)
}

func TestReconcileLocks_UnknownMemberRejected(t *testing.T) {
	snap := lockSnapshot()
	snap.Locks = map[string]models.Lock{
		"S2|attendant": {MemberID: "ghost"},
	}

	res := ReconcileLocks(snap)
	require.Len(t, res.Unfilled, 1)
	assert.Equal(t, models.ReasonLockedNotEligible, res.Unfilled[0].Reason)
}

func TestReconcileLocks_OverrideRescuesAvailabilityOnly(t *testing.T) {
	snap := lockSnapshot()
	// D is qualified and under cap but has no availability record.
	snap.Availability = []models.Availability{
		{MemberID: "C", ShiftID: "S2", Kind: models.AvailabilityFull},
	}
	snap.Locks = map[string]models.Lock{
		"S2|attendant": {
			MemberID: "D",
			Mode:     models.LockModeOverride,
			Allow:    []string{models.AllowAvailability},
			Note:     "covering the vacancy",
		},
	}

	res := ReconcileLocks(snap)
	require.Len(t, res.Decisions, 1)
	d := res.Decisions[0]
	assert.Equal(t, "D", d.MemberID)
	assert.Equal(t, models.LockModeOverride, d.LockMode)
	assert.Nil(t, d.Score)

	var rescued *models.Candidate
	for i := range d.Candidates {
		if d.Candidates[i].MemberID == "D" {
			rescued = &d.Candidates[i]
		}
	}
	require.NotNil(t, rescued)
	assert.True(t, rescued.Overridden)
	assert.Nil(t, rescued.Score)
	require.Len(t, rescued.Components, 1)
	assert.Equal(t, "override_availability", rescued.Components[0].Key)
	assert.Zero(t, rescued.Components[0].Delta)

	var audited bool
	for _, w := range res.Warnings {
		if w.Code == models.WarnOverrideLockUsed {
			audited = true
			assert.Contains(t, w.Detail, "covering the vacancy")
		}
	}
	assert.True(t, audited)
}

func TestReconcileLocks_OverrideNeverRescuesQualOrCap(t *testing.T) {
	snap := lockSnapshot()
	// C lacks ALS and has no availability: two reasons, never rescued.
	snap.Availability = nil
	snap.Locks = map[string]models.Lock{
		"S2|attendant": {
			MemberID: "C",
			Mode:     models.LockModeOverride,
			Allow:    []string{models.AllowAvailability},
		},
	}

	res := ReconcileLocks(snap)
	assert.Empty(t, res.Decisions)
	require.Len(t, res.Unfilled, 1)
	assert.Equal(t, models.ReasonLockedNotEligible, res.Unfilled[0].Reason)
}

func TestReconcileLocks_HardModeIgnoresAllowList(t *testing.T) {
	snap := lockSnapshot()
	snap.Availability = nil
	// A hard lock must not use the availability allowance even if present.
	snap.Locks = map[string]models.Lock{
		"S2|attendant": {
			MemberID: "D",
			Mode:     models.LockModeHard,
			Allow:    []string{models.AllowAvailability},
		},
	}

	res := ReconcileLocks(snap)
	assert.Empty(t, res.Decisions)
	require.Len(t, res.Unfilled, 1)
}

func TestReconcileLocks_DoubleBookedSameShift(t *testing.T) {
	snap := lockSnapshot()
	snap.Seats = append(snap.Seats, models.Seat{
		ShiftID: "S2", SeatID: "driver", DurationHours: 12,
	})
	snap.Locks = map[string]models.Lock{
		"S2|attendant": {MemberID: "D"},
		"S2|driver":    {MemberID: "D"},
	}

	res := ReconcileLocks(snap)
	require.Len(t, res.Decisions, 1)
	assert.Equal(t, "attendant", res.Decisions[0].SeatID)

	require.Len(t, res.Unfilled, 1)
	assert.Equal(t, "driver", res.Unfilled[0].SeatID)
	assert.Equal(t, models.ReasonLockedDoubleBooked, res.Unfilled[0].Reason)

	var warned bool
	for _, w := range res.Warnings {
		if w.Code == models.WarnDoubleBookedLock {
			warned = true
		}
	}
	assert.True(t, warned)
}
