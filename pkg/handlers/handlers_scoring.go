package handlers

import (
	"net/http"

	"github.com/arnavshah/roster-resolver-go/pkg/models"
	"github.com/gin-gonic/gin"
)

// GetScoring returns the current scoring weights.
func (h *Handler) GetScoring(c *gin.Context) {
	cfg, err := h.Scoring.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load scoring settings"})
		return
	}
	if cfg == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No scoring settings configured"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UpdateScoring replaces the scoring weights and drops the cache so the
// next resolution sees the new values immediately.
func (h *Handler) UpdateScoring(c *gin.Context) {
	var cfg models.ScoringConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Store.SaveScoring(cfg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save scoring settings"})
		return
	}
	h.Scoring.Invalidate()

	c.JSON(http.StatusOK, gin.H{"message": "Scoring settings updated"})
}
