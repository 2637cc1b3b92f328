// Package interfaces defines core abstractions for the medication identifier
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/giygas/medication-identifier/catalog"
	"github.com/giygas/medication-identifier/entities"
	"github.com/giygas/medication-identifier/mappings"
)

// MappingStore defines the contract for learned mapping persistence.
// Create must be atomic with respect to concurrent creates for the same
// normalized name: exactly one succeeds, the others get mappings.ErrConflict.
type MappingStore interface {
	FindActiveByNormalizedName(ctx context.Context, normalized string) (*mappings.LearnedMapping, error)
	Find(ctx context.Context, id uuid.UUID) (*mappings.LearnedMapping, error)
	Create(ctx context.Context, cmd mappings.CreateCommand) (*mappings.LearnedMapping, error)
	Update(ctx context.Context, id uuid.UUID, cmd mappings.UpdateCommand) (*mappings.LearnedMapping, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	RecordUsage(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter mappings.Filter) ([]mappings.LearnedMapping, error)
	Stats(ctx context.Context, staleAfter time.Duration) (mappings.Stats, error)
	Ping(ctx context.Context) error
}

// Catalog defines read-only access to the static reference catalog.
type Catalog interface {
	FindByExactKey(normalized string) (catalog.Entry, bool)
	FindByVariation(normalized string) (catalog.Entry, bool)
	Entries() []catalog.Entry
	Len() int
}

// Resolver identifies a single raw medication name. It never fails:
// an unknown name is a not_found result.
type Resolver interface {
	Resolve(ctx context.Context, raw string) entities.MatchResult
}

// Aggregator groups a batch of names by active ingredient and class.
type Aggregator interface {
	GroupByActiveIngredient(ctx context.Context, names []string) (*entities.Report, error)
}

// StatsStore holds the latest learned mapping analytics snapshot.
type StatsStore interface {
	GetStats() mappings.Stats
	GetLastUpdated() time.Time
	GetServerStartTime() time.Time
	IsUpdating() bool
	UpdateStats(stats mappings.Stats)
	BeginUpdate() bool
	EndUpdate()
}

// Scheduler defines the contract for background job scheduling.
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
// It provides a consistent interface for all API endpoints.
type HTTPHandler interface {
	// Resolution
	ResolveV1(w http.ResponseWriter, r *http.Request)
	AggregateV1(w http.ResponseWriter, r *http.Request)

	// Learned mapping management. RequireOperator guards every mapping route.
	RequireOperator(next http.Handler) http.Handler
	ListMappingsV1(w http.ResponseWriter, r *http.Request)
	GetMappingV1(w http.ResponseWriter, r *http.Request)
	CreateMappingV1(w http.ResponseWriter, r *http.Request)
	UpdateMappingV1(w http.ResponseWriter, r *http.Request)
	DeactivateMappingV1(w http.ResponseWriter, r *http.Request)

	ServeCatalogV1(w http.ResponseWriter, r *http.Request)
	// This will stay in all versions
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns current system health status and the HTTP code to serve it with
	HealthCheck(ctx context.Context) (status string, details map[string]any, httpStatus int)

	// CalculateNextSnapshot returns the next scheduled stats snapshot time
	CalculateNextSnapshot() time.Time
}

// InputValidator defines the contract for request-level input checks.
// The engine itself accepts any string; these run at the HTTP boundary.
type InputValidator interface {
	// ValidateName checks a single medication name
	ValidateName(input string) error

	// ValidateBatch checks a list of names for aggregation
	ValidateBatch(names []string) error

	// ValidateOperatorID checks the operator identity header
	ValidateOperatorID(input string) error

	// ValidateMappingID parses a mapping id path parameter
	ValidateMappingID(input string) (uuid.UUID, error)
}
