package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/giygas/medication-identifier/catalog"
)

// catalogMaxAge is the client cache lifetime of the catalog. The catalog only
// changes with a deploy.
const catalogMaxAge = time.Hour

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	Uptime        string         `json:"uptime"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// CatalogResponse lists the static reference catalog
type CatalogResponse struct {
	Count   int             `json:"count"`
	Entries []catalog.Entry `json:"entries"`
}

// HealthCheck returns server health information
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, details, httpStatus := h.health.HealthCheck(r.Context())

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var uptime time.Duration
	if start := h.stats.GetServerStartTime(); !start.IsZero() {
		uptime = time.Since(start)
	}

	response := HealthResponse{
		Status:        status,
		Uptime:        formatUptimeHuman(uptime),
		UptimeSeconds: uptime.Seconds(),
		Data:          details,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	}

	h.RespondWithJSON(w, httpStatus, response)
}

// ServeCatalogV1 returns the static reference catalog.
// GET /v1/catalog
func (h *Handler) ServeCatalogV1(w http.ResponseWriter, r *http.Request) {
	entries := h.catalog.Entries()

	lastModified := h.stats.GetServerStartTime()
	if lastModified.IsZero() {
		lastModified = time.Now()
	}

	h.RespondWithCachedJSON(w, r, CatalogResponse{
		Count:   len(entries),
		Entries: entries,
	}, lastModified, catalogMaxAge)
}
