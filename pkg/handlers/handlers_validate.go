package handlers

import (
	"net/http"

	"github.com/arnavshah/roster-resolver-go/pkg/models"
	"github.com/gin-gonic/gin"
)

// ValidateInput checks a snapshot's structure without resolving it
func (h *Handler) ValidateInput(c *gin.Context) {
	var snap models.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	// Basic validation of data structures
	if len(snap.Members) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one member is required",
		})
		return
	}

	if len(snap.Seats) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one seat is required",
		})
		return
	}

	// Check for duplicate IDs
	memberIDs := make(map[string]bool)
	for _, m := range snap.Members {
		if memberIDs[m.ID] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Duplicate member ID: " + m.ID})
			return
		}
		memberIDs[m.ID] = true
	}

	seatKeys := make(map[string]bool)
	for _, s := range snap.Seats {
		if seatKeys[s.Key()] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Duplicate seat key: " + s.Key()})
			return
		}
		seatKeys[s.Key()] = true
	}

	// Availability must reference known members and kinds
	for _, a := range snap.Availability {
		if !memberIDs[a.MemberID] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Availability references unknown member: " + a.MemberID})
			return
		}
		if a.Kind != models.AvailabilityFull && a.Kind != models.AvailabilityPartial {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Availability kind must be full or partial"})
			return
		}
	}

	// Locks must target known seats and may only allow availability
	for key, lock := range snap.Locks {
		if !seatKeys[key] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Lock references unknown seat: " + key})
			return
		}
		for _, a := range lock.Allow {
			if a != models.AllowAvailability {
				c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Lock allow list may only contain \"availability\""})
				return
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"member_count": len(snap.Members),
			"seat_count":   len(snap.Seats),
			"lock_count":   len(snap.Locks),
		},
	})
}
