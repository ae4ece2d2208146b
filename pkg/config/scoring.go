// Package config supplies the resolver's scoring weights: defaults, a
// pluggable source, and a TTL cache with an injected clock so collaborators
// don't reach for ambient process-wide state.
package config

import (
	"sync"
	"time"

	"github.com/arnavshah/roster-resolver-go/pkg/models"
)

// DefaultScoring returns the weight set carried over from the production
// rosters. The values are historical constants, not derived quantities.
func DefaultScoring() models.ScoringConfig {
	return models.ScoringConfig{
		QualifiedWeight: 1.0,
		FullWeight:      0.5,
		PartialWeight:   0.2,
		FairnessWeight:  0.1,
		NearCapWeight:   1.0,
	}
}

// ScoringSource loads the current weights from wherever they live.
type ScoringSource interface {
	LoadScoring() (*models.ScoringConfig, error)
}

// ScoringSourceFunc adapts a function to a ScoringSource.
type ScoringSourceFunc func() (*models.ScoringConfig, error)

// LoadScoring calls the function.
func (f ScoringSourceFunc) LoadScoring() (*models.ScoringConfig, error) {
	return f()
}

// CachedScoring wraps a ScoringSource with a TTL cache. The clock is
// injected so tests (and anything else) control expiry explicitly; there is
// no ambient package-level cache.
type CachedScoring struct {
	src ScoringSource
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	cached  *models.ScoringConfig
	fetched time.Time
}

// NewCachedScoring builds a cache around src. A nil now falls back to
// time.Now; a zero ttl disables caching.
func NewCachedScoring(src ScoringSource, ttl time.Duration, now func() time.Time) *CachedScoring {
	if now == nil {
		now = time.Now
	}
	return &CachedScoring{src: src, ttl: ttl, now: now}
}

// Get returns the cached weights, refreshing from the source when the TTL
// has lapsed. A source error surfaces to the caller; the stale value is not
// silently reused.
func (c *CachedScoring) Get() (*models.ScoringConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && c.ttl > 0 && c.now().Sub(c.fetched) < c.ttl {
		return c.cached, nil
	}

	cfg, err := c.src.LoadScoring()
	if err != nil {
		return nil, err
	}
	c.cached = cfg
	c.fetched = c.now()
	return cfg, nil
}

// Invalidate drops the cached value so the next Get hits the source.
func (c *CachedScoring) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = nil
}
