// Package handlers provides the HTTP request handlers for the medication
// identifier: single-name resolution, batch aggregation, learned mapping
// management, the static catalog and the health report.
package handlers

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/giygas/medication-identifier/interfaces"
	"github.com/giygas/medication-identifier/logging"
	"github.com/giygas/medication-identifier/mappings"
)

// Compile-time check to ensure Handler implements HTTPHandler
var _ interfaces.HTTPHandler = (*Handler)(nil)

// Dependencies groups the collaborators a Handler needs
type Dependencies struct {
	Resolver   interfaces.Resolver
	Aggregator interfaces.Aggregator
	Store      interfaces.MappingStore
	Catalog    interfaces.Catalog
	Validator  interfaces.InputValidator
	Health     interfaces.HealthChecker
	Stats      interfaces.StatsStore
}

// Handler implements the interfaces.HTTPHandler interface
type Handler struct {
	resolver   interfaces.Resolver
	aggregator interfaces.Aggregator
	store      interfaces.MappingStore
	catalog    interfaces.Catalog
	validator  interfaces.InputValidator
	health     interfaces.HealthChecker
	stats      interfaces.StatsStore
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(deps Dependencies) interfaces.HTTPHandler {
	return &Handler{
		resolver:   deps.Resolver,
		aggregator: deps.Aggregator,
		store:      deps.Store,
		catalog:    deps.Catalog,
		validator:  deps.Validator,
		health:     deps.Health,
		stats:      deps.Stats,
	}
}

// ErrorResponse is the JSON body of every error reply
type ErrorResponse struct {
	Error   string                `json:"error"`
	Message string                `json:"message"`
	Code    int                   `json:"code"`
	Fields  []mappings.FieldError `json:"fields,omitempty"`
}

// RespondWithJSON writes a JSON response
func (h *Handler) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write response", "error", err)
	}
}

// RespondWithError writes a JSON error response
func (h *Handler) RespondWithError(w http.ResponseWriter, code int, message string) {
	h.RespondWithJSON(w, code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
	})
}

// respondWithStoreError maps a mapping store error to its HTTP reply.
// Validation errors carry their field detail; internal errors are logged and
// hidden from the caller.
func (h *Handler) respondWithStoreError(w http.ResponseWriter, r *http.Request, err error) {
	code := mappings.MapHTTPStatus(err)

	resp := ErrorResponse{
		Error:   http.StatusText(code),
		Message: err.Error(),
		Code:    code,
	}

	var verr *mappings.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}

	if code == http.StatusInternalServerError {
		logging.Error("Mapping store operation failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
		resp.Message = "internal error"
	}

	h.RespondWithJSON(w, code, resp)
}

// RespondWithCachedJSON writes a JSON response with an ETag and cache
// headers, answering 304 when the client already holds the same body
func (h *Handler) RespondWithCachedJSON(w http.ResponseWriter, r *http.Request, payload any, lastModified time.Time, maxAge time.Duration) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "internal error")
		return
	}

	etag := generateETag(data)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())))
	w.Header().Set("Last-Modified", lastModified.UTC().Format(http.TimeFormat))

	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write response", "error", err)
	}
}

func generateETag(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf(`"%x"`, sum[:16])
}

func etagMatches(header, etag string) bool {
	for candidate := range strings.SplitSeq(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}
