// Package cache memoizes pipeline stages on content keys.
//
// A Cache holds a bounded number of results per stage. Concurrent requests
// for the same key share one computation; failed computations are not
// stored. Results live only as long as the process.
package cache

import (
	"context"
	"fmt"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

// DefaultSize is the number of entries kept per stage.
const DefaultSize = 64

// Metrics counts cache traffic per stage.
type Metrics struct {
	lookups  *prometheus.CounterVec
	computes *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewMetrics creates the cache counters and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tagkey",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by stage and result (hit or miss).",
		}, []string{"stage", "result"}),
		computes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tagkey",
			Subsystem: "cache",
			Name:      "computes_total",
			Help:      "Computations run after a miss, by stage.",
		}, []string{"stage"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tagkey",
			Subsystem: "cache",
			Name:      "failures_total",
			Help:      "Computations that returned an error, by stage.",
		}, []string{"stage"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.lookups, m.computes, m.failures} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register cache metrics: %w", err)
		}
	}
	return m, nil
}

// Cache is a bounded memo for one pipeline stage.
type Cache[V any] struct {
	stage   string
	entries *lru.Cache[uint64, V]
	flight  singleflight.Group
	metrics *Metrics
}

// New creates a cache for stage holding at most size entries.
// metrics may be nil.
func New[V any](stage string, size int, metrics *Metrics) (*Cache[V], error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[uint64, V](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s cache: %w", stage, err)
	}
	return &Cache[V]{stage: stage, entries: entries, metrics: metrics}, nil
}

// Stage returns the stage name the cache was created for.
func (c *Cache[V]) Stage() string {
	return c.stage
}

// Get returns the stored value for key.
func (c *Cache[V]) Get(key uint64) (V, bool) {
	v, ok := c.entries.Get(key)
	if c.metrics != nil {
		result := "miss"
		if ok {
			result = "hit"
		}
		c.metrics.lookups.WithLabelValues(c.stage, result).Inc()
	}
	return v, ok
}

// GetOrCompute returns the value stored for key, computing and storing it
// on a miss. At most one compute runs per key at a time; concurrent callers
// wait for it. A caller whose ctx ends stops waiting, but the compute runs
// to completion and its result is still stored.
func (c *Cache[V]) GetOrCompute(ctx context.Context, key uint64, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	ch := c.flight.DoChan(strconv.FormatUint(key, 16), func() (any, error) {
		// Populated while this caller waited for the flight.
		if v, ok := c.entries.Get(key); ok {
			return v, nil
		}
		if c.metrics != nil {
			c.metrics.computes.WithLabelValues(c.stage).Inc()
		}
		v, err := compute()
		if err != nil {
			if c.metrics != nil {
				c.metrics.failures.WithLabelValues(c.stage).Inc()
			}
			return nil, err
		}
		c.entries.Add(key, v)
		return v, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// Len returns the number of stored entries.
func (c *Cache[V]) Len() int {
	return c.entries.Len()
}

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	c.entries.Purge()
}
