package service

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"smartsearch/internal/registry/store"
	"smartsearch/internal/stats/metrics"
	"smartsearch/pkg/statistics"
)

// topNames is how many entries each frequency table keeps; everything below
// the cut falls back to the _default entry.
const topNames = 100

// StatsSource is the slice of the registry store the aggregator reads from.
type StatsSource interface {
	CountAll(ctx context.Context) (int, error)
	CountByRegion(ctx context.Context) (map[string]int, error)
	NameFrequencies(ctx context.Context, field store.NameField, topN int) (map[string]int, error)
	AvgGroupSize(ctx context.Context) (int, error)
}

// SnapshotStore persists the last good snapshot across restarts.
type SnapshotStore interface {
	Load(ctx context.Context) (*statistics.Statistics, error)
	Save(ctx context.Context, s *statistics.Statistics) error
}

// Aggregator computes and caches a population statistics snapshot. It is the
// only shared mutable state in the service: an RWMutex guards the snapshot
// pointer and singleflight collapses concurrent refreshes into one
// computation, so readers always see either the old snapshot or a fully built
// new one.
type Aggregator struct {
	source    StatsSource
	snapshots SnapshotStore
	ttl       time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	group singleflight.Group

	mu          sync.RWMutex
	current     *statistics.Statistics
	generatedAt time.Time
}

type Option func(a *Aggregator)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithSnapshotStore enables snapshot persistence, typically Redis.
func WithSnapshotStore(s SnapshotStore) Option {
	return func(a *Aggregator) {
		a.snapshots = s
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

// WithClock overrides the time source in tests.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// New constructs an Aggregator with the given TTL.
func New(source StatsSource, ttl time.Duration, opts ...Option) *Aggregator {
	a := &Aggregator{
		source: source,
		ttl:    ttl,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Restore loads the persisted snapshot, if any. Called once at startup; a
// missing or unreadable snapshot is not an error.
func (a *Aggregator) Restore(ctx context.Context) {
	if a.snapshots == nil {
		return
	}
	snap, err := a.snapshots.Load(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "failed to restore statistics snapshot", "error", err)
		return
	}
	if snap == nil {
		return
	}
	a.mu.Lock()
	a.current = snap
	a.generatedAt = snap.GeneratedAt
	a.mu.Unlock()
	a.logger.InfoContext(ctx, "restored statistics snapshot", "generated_at", snap.GeneratedAt)
}

// Current returns the cached snapshot, refreshing first when none exists or
// the TTL has expired. Never returns an error: on failure the last good
// snapshot is served, then fixed defaults.
func (a *Aggregator) Current(ctx context.Context) *statistics.Statistics {
	a.mu.RLock()
	snap, age := a.current, a.now().Sub(a.generatedAt)
	a.mu.RUnlock()
	if snap != nil && age < a.ttl {
		return snap
	}
	return a.Refresh(ctx)
}

// Refresh recomputes the snapshot now. Concurrent callers share a single
// computation; nobody ever observes a half-built snapshot because the swap
// happens only after every step succeeded.
func (a *Aggregator) Refresh(ctx context.Context) *statistics.Statistics {
	v, _, _ := a.group.Do("refresh", func() (any, error) {
		start := time.Now()
		snap, err := a.compute(ctx)
		if a.metrics != nil {
			a.metrics.ObserveRefresh(start)
		}
		if err != nil {
			a.logger.ErrorContext(ctx, "statistics computation failed", "error", err)
			if a.metrics != nil {
				a.metrics.IncrementFailure()
			}
			return a.fallback(), nil
		}
		if a.metrics != nil {
			a.metrics.IncrementRefresh()
		}

		a.mu.Lock()
		a.current = snap
		a.generatedAt = snap.GeneratedAt
		a.mu.Unlock()

		if a.snapshots != nil {
			if err := a.snapshots.Save(ctx, snap); err != nil {
				a.logger.WarnContext(ctx, "failed to persist statistics snapshot", "error", err)
			}
		}
		return snap, nil
	})
	return v.(*statistics.Statistics)
}

// CacheAge reports how old the cached snapshot is. Zero when none exists.
func (a *Aggregator) CacheAge() time.Duration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.current == nil {
		return 0
	}
	return a.now().Sub(a.generatedAt)
}

// IsStale reports whether the cached snapshot has outlived the TTL.
func (a *Aggregator) IsStale() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current == nil || a.now().Sub(a.generatedAt) >= a.ttl
}

// compute accumulates into a fresh Statistics object; the caller swaps it in
// only on full success, so a failure in step N cannot corrupt steps 1..N-1.
func (a *Aggregator) compute(ctx context.Context) (*statistics.Statistics, error) {
	total, err := a.source.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		defaults := statistics.Defaults()
		defaults.GeneratedAt = a.now().UTC()
		return defaults, nil
	}

	regionCounts, err := a.source.CountByRegion(ctx)
	if err != nil {
		return nil, err
	}
	surnames, err := a.source.NameFrequencies(ctx, store.NameFieldLast, topNames)
	if err != nil {
		return nil, err
	}
	firstnames, err := a.source.NameFrequencies(ctx, store.NameFieldFirst, topNames)
	if err != nil {
		return nil, err
	}
	avgGroup, err := a.source.AvgGroupSize(ctx)
	if err != nil {
		return nil, err
	}

	factors := statistics.DefaultFactors()
	if len(regionCounts) > 0 {
		sum := 0
		for _, c := range regionCounts {
			sum += c
		}
		avgRegion := float64(sum) / float64(len(regionCounts))
		factors[statistics.FactorRegion] = round2(1 - avgRegion/float64(total))
	}

	return &statistics.Statistics{
		Version:            "1.0",
		GeneratedAt:        a.now().UTC(),
		TotalRecords:       total,
		RegionCounts:       regionCounts,
		SurnameFrequency:   frequencyTable(surnames, total, statistics.DefaultSurnameFrequency),
		FirstnameFrequency: frequencyTable(firstnames, total, statistics.DefaultFirstnameFrequency),
		AvgGroupSize:       avgGroup,
		EffectivenessF:     factors,
	}, nil
}

func (a *Aggregator) fallback() *statistics.Statistics {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.current != nil {
		return a.current
	}
	return statistics.Defaults()
}

func frequencyTable(counts map[string]int, total int, fallback float64) map[string]float64 {
	table := make(map[string]float64, len(counts)+1)
	for name, count := range counts {
		table[name] = round4(float64(count) / float64(total))
	}
	table[statistics.DefaultKey] = fallback
	return table
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
