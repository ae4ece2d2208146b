package handlers

import (
	"errors"
	"net/http"

	"github.com/arnavshah/roster-resolver-go/pkg/models"
	"github.com/arnavshah/roster-resolver-go/pkg/resolver"
	"github.com/arnavshah/roster-resolver-go/pkg/store"
	"github.com/gin-gonic/gin"
)

// PublishSnapshot stores a period's snapshot and returns the new version
// token. Runs committed against an older token are rejected from then on.
func (h *Handler) PublishSnapshot(c *gin.Context) {
	period := c.Param("period")

	var snap models.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	version, err := h.Store.PublishSnapshot(period, snap)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not publish snapshot"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"period_id": period,
		"version":   version,
	})
}

// ResolvePeriod loads the published snapshot, resolves it with a decision
// log, and commits the run. A concurrent republish between load and commit
// surfaces as 409 rather than silently overwriting the newer result.
func (h *Handler) ResolvePeriod(c *gin.Context) {
	period := c.Param("period")

	snap, version, err := h.Store.LoadSnapshot(period)
	if err != nil {
		if errors.Is(err, store.ErrSnapshotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No snapshot published for period"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load snapshot"})
		return
	}
	h.attachScoring(&snap)

	trace := &resolver.MemoryTrace{}
	report := resolver.ResolveTraced(&snap, trace)

	if err := h.Store.CommitRun(period, version, report); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "Snapshot changed since this run started; re-resolve"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not commit run"})
		return
	}

	h.RecordUsage(c, len(snap.Seats), len(snap.Members))
	c.JSON(http.StatusOK, gin.H{
		"snapshot_version": version,
		"report":           report,
		"trace":            trace.Events,
	})
}

// GetRun returns the last committed run for a period.
func (h *Handler) GetRun(c *gin.Context) {
	period := c.Param("period")

	report, version, err := h.Store.LatestRun(period)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No committed run for period"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"snapshot_version": version,
		"report":           report,
	})
}

// SeatCandidates is the read-only preview of who could fill one seat,
// independent of committing a run.
func (h *Handler) SeatCandidates(c *gin.Context) {
	period := c.Param("period")
	shiftID := c.Param("shift")
	seatID := c.Param("seat")

	snap, _, err := h.Store.LoadSnapshot(period)
	if err != nil {
		if errors.Is(err, store.ErrSnapshotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No snapshot published for period"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load snapshot"})
		return
	}
	h.attachScoring(&snap)

	eval, err := resolver.EvaluateSeatByKey(&snap, shiftID, seatID)
	if err != nil {
		switch {
		case errors.Is(err, resolver.ErrSeatNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Seat not found", "shift_id": shiftID, "seat_id": seatID})
		case errors.Is(err, resolver.ErrMissingScoringConfig):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Scoring configuration unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not evaluate seat"})
		}
		return
	}

	c.JSON(http.StatusOK, eval)
}

// Fragility grades every seat in the period by eligible-pool depth.
func (h *Handler) Fragility(c *gin.Context) {
	period := c.Param("period")

	snap, _, err := h.Store.LoadSnapshot(period)
	if err != nil {
		if errors.Is(err, store.ErrSnapshotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No snapshot published for period"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load snapshot"})
		return
	}
	h.attachScoring(&snap)

	rows, err := resolver.Fragility(&snap)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Scoring configuration unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"period_id": period, "seats": rows})
}

// PutLock creates or replaces the lock on one seat. The body is either a
// lock object or a bare member ID string (hard lock shorthand).
func (h *Handler) PutLock(c *gin.Context) {
	period := c.Param("period")
	shiftID := c.Param("shift")
	seatID := c.Param("seat")

	var lock models.Lock
	if err := c.ShouldBindJSON(&lock); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lock = lock.Normalized()

	if lock.MemberID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "member_id is required"})
		return
	}
	if lock.Mode != models.LockModeHard && lock.Mode != models.LockModeOverride {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be hard or override"})
		return
	}
	for _, a := range lock.Allow {
		if a != models.AllowAvailability {
			c.JSON(http.StatusBadRequest, gin.H{"error": "allow may only contain \"availability\""})
			return
		}
	}

	if err := h.Store.PutLock(period, shiftID, seatID, lock); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not store lock"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"period_id": period,
		"seat_key":  models.SeatKey(shiftID, seatID),
		"lock":      lock,
	})
}

// DeleteLock removes the lock on one seat.
func (h *Handler) DeleteLock(c *gin.Context) {
	period := c.Param("period")
	shiftID := c.Param("shift")
	seatID := c.Param("seat")

	if err := h.Store.DeleteLock(period, shiftID, seatID); err != nil {
		if errors.Is(err, store.ErrLockNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No lock on this seat"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete lock"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lock removed"})
}
