// Package data holds the learned mapping analytics snapshot served by the
// health and stats endpoints. The snapshot is swapped atomically so readers
// never block on the scheduler.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/medication-identifier/interfaces"
	"github.com/giygas/medication-identifier/mappings"
)

var _ interfaces.StatsStore = (*DataContainer)(nil)

// snapshot pairs the stats with the moment they were taken so readers
// always see both from the same refresh.
type snapshot struct {
	stats   mappings.Stats
	takenAt time.Time
}

// DataContainer is safe for concurrent use. Its zero value reports an
// empty snapshot.
type DataContainer struct {
	current   atomic.Pointer[snapshot]
	startedAt atomic.Pointer[time.Time]
	updating  atomic.Bool
	now       func() time.Time
}

func NewDataContainer() *DataContainer {
	return &DataContainer{now: time.Now}
}

// GetStats returns the latest snapshot by value
func (dc *DataContainer) GetStats() mappings.Stats {
	if s := dc.current.Load(); s != nil {
		return s.stats
	}
	return mappings.Stats{}
}

// GetLastUpdated is zero until the first snapshot is stored.
func (dc *DataContainer) GetLastUpdated() time.Time {
	if s := dc.current.Load(); s != nil {
		return s.takenAt
	}
	return time.Time{}
}

// UpdateStats replaces the snapshot and stamps it with the current time
func (dc *DataContainer) UpdateStats(stats mappings.Stats) {
	now := dc.now
	if now == nil {
		now = time.Now
	}
	dc.current.Store(&snapshot{stats: stats, takenAt: now()})
}

func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// BeginUpdate reports false when another refresh already holds the flag.
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}

func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.startedAt.Store(&startTime)
}

func (dc *DataContainer) GetServerStartTime() time.Time {
	if t := dc.startedAt.Load(); t != nil {
		return *t
	}
	return time.Time{}
}
