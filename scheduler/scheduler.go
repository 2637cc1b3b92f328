// Package scheduler refreshes the learned mapping analytics snapshot on a
// fixed interval. Each run reads the store statistics, publishes them to the
// stats container and the learned_mappings gauges, and warns about mappings
// that have not been used for a long time.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/giygas/medication-identifier/interfaces"
	"github.com/giygas/medication-identifier/logging"
	"github.com/giygas/medication-identifier/mappings"
	"github.com/giygas/medication-identifier/metrics"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

const snapshotTimeout = 30 * time.Second

// Scheduler refreshes the stats snapshot using injected dependencies
type Scheduler struct {
	store      interfaces.MappingStore
	stats      interfaces.StatsStore
	interval   time.Duration
	staleAfter time.Duration
	scheduler  *gocron.Scheduler

	stopOnce sync.Once
	stop     chan struct{}
}

// NewScheduler creates a scheduler that snapshots the store every interval.
// Mappings unused for longer than staleAfter are reported as stale.
func NewScheduler(store interfaces.MappingStore, stats interfaces.StatsStore, interval, staleAfter time.Duration) *Scheduler {
	return &Scheduler{
		store:      store,
		stats:      stats,
		interval:   interval,
		staleAfter: staleAfter,
		scheduler:  gocron.NewScheduler(time.UTC),
		stop:       make(chan struct{}),
	}
}

// Start takes an initial snapshot, then schedules the periodic refresh and
// snapshot age monitoring. A failed initial snapshot is logged but does not
// prevent startup; the store may come back before the next run.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return fmt.Errorf("snapshot interval must be positive, got %s", s.interval)
	}

	if err := s.refresh(context.Background()); err != nil {
		logging.Error("Failed to take initial stats snapshot", "error", err)
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().WaitForSchedule().Do(func() {
		if err := s.refresh(context.Background()); err != nil {
			logging.Error("Failed to refresh stats snapshot", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule stats snapshots", "error", err)
		return fmt.Errorf("failed to schedule stats snapshots: %w", err)
	}

	s.scheduler.StartAsync()

	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler and the monitoring goroutine
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.scheduler.Stop()
		close(s.stop)
	})
}

// NextRun returns the next scheduled snapshot, or the zero time when nothing
// is scheduled yet.
func (s *Scheduler) NextRun() time.Time {
	_, next := s.scheduler.NextRun()
	return next
}

// refresh takes one snapshot. Concurrent refreshes are skipped.
func (s *Scheduler) refresh(ctx context.Context) error {
	log := logging.Component("scheduler")

	if !s.stats.BeginUpdate() {
		log.Info("Stats snapshot already in progress, skipping...")
		return nil
	}
	defer s.stats.EndUpdate()

	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	start := time.Now()
	stats, err := s.store.Stats(ctx, s.staleAfter)
	if err != nil {
		return fmt.Errorf("failed to read mapping stats: %w", err)
	}

	s.stats.UpdateStats(stats)
	publishGauges(stats)

	if stats.StaleActive > 0 {
		log.Warn("Active learned mappings not used recently",
			"count", stats.StaleActive,
			"stale_after", s.staleAfter.String(),
		)
	}

	log.Info("Stats snapshot completed",
		"duration", time.Since(start).String(),
		"total", stats.Total,
		"active", stats.Active,
		"total_usage", stats.TotalUsage,
	)
	return nil
}

func publishGauges(stats mappings.Stats) {
	metrics.LearnedMappings.WithLabelValues("total").Set(float64(stats.Total))
	metrics.LearnedMappings.WithLabelValues("active").Set(float64(stats.Active))
	metrics.LearnedMappings.WithLabelValues("inactive").Set(float64(stats.Inactive))
	metrics.LearnedMappings.WithLabelValues("never_used").Set(float64(stats.NeverUsed))
	metrics.LearnedMappings.WithLabelValues("stale").Set(float64(stats.StaleActive))
	metrics.LearnedMappings.WithLabelValues("multiple").Set(float64(stats.MultipleActive))
}

// startHealthMonitoring warns when the snapshot falls more than three
// intervals behind.
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				if lag := time.Since(s.stats.GetLastUpdated()); lag > 3*s.interval {
					logging.Warn("Stats snapshot is lagging", "since_last", lag.Round(time.Second).String())
				}
			}
		}
	}()
}
