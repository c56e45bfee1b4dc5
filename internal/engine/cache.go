package engine

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/Veraticus/fleet-ledger/internal/model"
)

// RuleLoader fetches the current rule definitions from their source of truth.
type RuleLoader func(ctx context.Context) ([]model.NormalizationRule, error)

// SnapshotCache holds the published rule snapshot. Readers never see a
// partially built set: a reload builds a new RuleSet off to the side and swaps
// it in with a single atomic store. Concurrent reloads share one load.
type SnapshotCache struct {
	load    RuleLoader
	current atomic.Pointer[RuleSet]
	group   singleflight.Group
}

// NewSnapshotCache creates a cache that starts with an empty rule set.
func NewSnapshotCache(load RuleLoader) *SnapshotCache {
	c := &SnapshotCache{load: load}
	c.current.Store(NewRuleSet(nil))
	return c
}

// Current returns the published snapshot.
func (c *SnapshotCache) Current() *RuleSet {
	return c.current.Load()
}

// Publish replaces the snapshot with one built from rules.
func (c *SnapshotCache) Publish(rules []model.NormalizationRule) *RuleSet {
	set := NewRuleSet(rules)
	c.current.Store(set)
	return set
}

// Reload fetches rules through the loader and publishes them. On failure the
// previous snapshot stays in place.
func (c *SnapshotCache) Reload(ctx context.Context) (*RuleSet, error) {
	if c.load == nil {
		return c.Current(), nil
	}

	v, err, _ := c.group.Do("rules", func() (any, error) {
		rules, err := c.load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load normalization rules: %w", err)
		}
		return c.Publish(rules), nil
	})
	if err != nil {
		return c.Current(), err
	}

	return v.(*RuleSet), nil
}
