// Package health provides health checking functionality for the medication identifier.
package health

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/giygas/medication-identifier/interfaces"
	"github.com/giygas/medication-identifier/logging"
)

const pingTimeout = 2 * time.Second

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	store    interfaces.MappingStore
	catalog  interfaces.Catalog
	stats    interfaces.StatsStore
	interval time.Duration
	now      func() time.Time
}

// NewHealthChecker creates a new health checker with injected dependencies.
// interval is the stats snapshot period.
func NewHealthChecker(store interfaces.MappingStore, cat interfaces.Catalog, stats interfaces.StatsStore, interval time.Duration) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		store:    store,
		catalog:  cat,
		stats:    stats,
		interval: interval,
		now:      time.Now,
	}
}

// HealthCheck returns health data and the HTTP code for the /health endpoint.
// The service is unhealthy when the mapping store is unreachable or the
// catalog is empty, and degraded when the stats snapshot falls more than
// three intervals behind.
func (h *HealthCheckerImpl) HealthCheck(ctx context.Context) (status string, data map[string]any, httpStatus int) {
	now := h.now()

	storeStatus := "ok"
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := h.store.Ping(pingCtx); err != nil {
		logging.Warn("Mapping store ping failed", "error", err)
		storeStatus = "unreachable"
	}

	catalogEntries := h.catalog.Len()
	stats := h.stats.GetStats()
	lastSnapshot := h.stats.GetLastUpdated()
	isUpdating := h.stats.IsUpdating()

	// Before the first snapshot lands, measure lag from server start
	reference := lastSnapshot
	if reference.IsZero() {
		reference = h.stats.GetServerStartTime()
	}
	var snapshotAge time.Duration
	if !reference.IsZero() {
		snapshotAge = now.Sub(reference)
	}

	switch {
	case storeStatus != "ok" || catalogEntries == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case h.interval > 0 && snapshotAge > 3*h.interval:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	lastSnapshotValue := ""
	if !lastSnapshot.IsZero() {
		lastSnapshotValue = lastSnapshot.Format(time.RFC3339)
	}

	data = map[string]any{
		"store":                storeStatus,
		"catalog_entries":      catalogEntries,
		"learned_mappings":     stats.Active,
		"total_usage":          stats.TotalUsage,
		"last_snapshot":        lastSnapshotValue,
		"snapshot_age_minutes": math.Round(snapshotAge.Minutes()*10) / 10,
		"next_snapshot":        h.CalculateNextSnapshot().Format(time.RFC3339),
		"is_updating":          isUpdating,
	}

	return status, data, httpStatus
}

// CalculateNextSnapshot returns when the next stats snapshot is due
func (h *HealthCheckerImpl) CalculateNextSnapshot() time.Time {
	now := h.now()
	last := h.stats.GetLastUpdated()
	if last.IsZero() || h.interval <= 0 {
		return now.Add(h.interval)
	}

	next := last.Add(h.interval)
	for !next.After(now) {
		next = next.Add(h.interval)
	}
	return next
}
