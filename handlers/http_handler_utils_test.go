package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/giygas/medication-identifier/aggregator"
	"github.com/giygas/medication-identifier/catalog"
	"github.com/giygas/medication-identifier/data"
	"github.com/giygas/medication-identifier/logging"
	"github.com/giygas/medication-identifier/mappings"
	"github.com/giygas/medication-identifier/resolver"
	"github.com/giygas/medication-identifier/validation"
)

// ============================================================================
// TEST ENVIRONMENT
// ============================================================================

const testOperator = "operator-1"

// testEnv wires a Handler to real engine components over an in-memory store
type testEnv struct {
	handler  *Handler
	store    *mockMappingStore
	resolver *resolver.Resolver
	stats    *data.DataContainer
	health   *MockHealthChecker
	router   chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := &mockMappingStore{MemoryStore: mappings.NewMemoryStore()}
	res := resolver.New(store, catalog.Default(), resolver.DefaultOptions())
	t.Cleanup(res.Wait)

	stats := data.NewDataContainer()
	stats.SetServerStartTime(time.Now().Add(-90 * time.Minute))

	health := NewMockHealthCheckerBuilder().Build()

	h := NewHTTPHandler(Dependencies{
		Resolver:   res,
		Aggregator: aggregator.New(res, 4),
		Store:      store,
		Catalog:    catalog.Default(),
		Validator:  validation.NewInputValidator(200, 100),
		Health:     health,
		Stats:      stats,
	}).(*Handler)

	return &testEnv{
		handler:  h,
		store:    store,
		resolver: res,
		stats:    stats,
		health:   health,
		router:   newTestRouter(h),
	}
}

// newTestRouter mounts the handlers on the same paths the server uses
func newTestRouter(h *Handler) chi.Router {
	router := chi.NewRouter()
	router.Get("/health", h.HealthCheck)
	router.Get("/v1/catalog", h.ServeCatalogV1)
	router.Get("/v1/resolve", h.ResolveV1)
	router.Post("/v1/resolve", h.ResolveV1)
	router.Post("/v1/aggregate", h.AggregateV1)
	router.Route("/v1/mappings", func(r chi.Router) {
		r.Use(h.RequireOperator)
		r.Get("/", h.ListMappingsV1)
		r.Post("/", h.CreateMappingV1)
		r.Get("/{id}", h.GetMappingV1)
		r.Patch("/{id}", h.UpdateMappingV1)
		r.Delete("/{id}", h.DeactivateMappingV1)
	})
	return router
}

// seedMapping creates an active mapping directly in the store
func (e *testEnv) seedMapping(t *testing.T, name, ingredient, class string) *mappings.LearnedMapping {
	t.Helper()
	m, err := e.store.Create(context.Background(), mappings.CreateCommand{
		MedicationName:   name,
		ActiveIngredient: ingredient,
		Class:            class,
		CreatedBy:        testOperator,
	})
	if err != nil {
		t.Fatalf("seed %q: %v", name, err)
	}
	return m
}

// ============================================================================
// HTTP TEST HELPER
// ============================================================================

// HTTPTestHelper provides utilities for HTTP handler testing
type HTTPTestHelper struct {
	t      *testing.T
	router http.Handler
}

func NewHTTPTestHelper(t *testing.T, router http.Handler) *HTTPTestHelper {
	return &HTTPTestHelper{t: t, router: router}
}

// Do sends a request through the router. A non-empty operator sets the
// operator header.
func (h *HTTPTestHelper) Do(method, path, contentType, body, operator string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if operator != "" {
		req.Header.Set(logging.OperatorHeader, operator)
	}

	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	return rr
}

// DoJSON sends a JSON body
func (h *HTTPTestHelper) DoJSON(method, path, body, operator string) *httptest.ResponseRecorder {
	return h.Do(method, path, "application/json", body, operator)
}

// AssertJSONResponse asserts that response contains valid JSON with expected status
func (h *HTTPTestHelper) AssertJSONResponse(resp *httptest.ResponseRecorder, expectedStatus int, target any) {
	h.t.Helper()
	if resp.Code != expectedStatus {
		h.t.Errorf("Expected status %d, got %d (body: %s)", expectedStatus, resp.Code, resp.Body.String())
	}

	bodyStr := resp.Body.String()
	if bodyStr == "" {
		h.t.Fatal("Response body should not be empty")
	}

	if err := json.Unmarshal([]byte(bodyStr), target); err != nil {
		h.t.Fatalf("Response should be valid JSON, got error: %v", err)
	}
}

// AssertErrorResponse asserts that response contains an error with expected status
func (h *HTTPTestHelper) AssertErrorResponse(resp *httptest.ResponseRecorder, expectedStatus int) ErrorResponse {
	h.t.Helper()
	if resp.Code != expectedStatus {
		h.t.Errorf("Expected status %d, got %d (body: %s)", expectedStatus, resp.Code, resp.Body.String())
	}

	var errorResp ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &errorResp); err != nil {
		h.t.Fatalf("Error response should be valid JSON, got error: %v", err)
	}

	if errorResp.Message == "" {
		h.t.Error("Error response should have message field")
	}
	if errorResp.Code != expectedStatus {
		h.t.Errorf("Error body code %d does not match status %d", errorResp.Code, expectedStatus)
	}
	if errorResp.Error != http.StatusText(expectedStatus) {
		h.t.Errorf("Expected error %q, got %q", http.StatusText(expectedStatus), errorResp.Error)
	}
	return errorResp
}

// ============================================================================
// MOCK IMPLEMENTATIONS
// ============================================================================

// mockMappingStore wraps the memory store and can inject failures
type mockMappingStore struct {
	*mappings.MemoryStore
	err error
}

func (m *mockMappingStore) Find(ctx context.Context, id uuid.UUID) (*mappings.LearnedMapping, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.MemoryStore.Find(ctx, id)
}

func (m *mockMappingStore) List(ctx context.Context, filter mappings.Filter) ([]mappings.LearnedMapping, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.MemoryStore.List(ctx, filter)
}

func (m *mockMappingStore) Create(ctx context.Context, cmd mappings.CreateCommand) (*mappings.LearnedMapping, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.MemoryStore.Create(ctx, cmd)
}

var errDatabaseDown = errors.New("dial tcp 10.0.0.5:5432: connection refused")

// MockHealthChecker implements interfaces.HealthChecker
type MockHealthChecker struct {
	status     string
	details    map[string]any
	httpStatus int
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) (string, map[string]any, int) {
	return m.status, m.details, m.httpStatus
}

func (m *MockHealthChecker) CalculateNextSnapshot() time.Time {
	return time.Now().Add(15 * time.Minute)
}

// MockHealthCheckerBuilder builds MockHealthChecker values
type MockHealthCheckerBuilder struct {
	checker *MockHealthChecker
}

func NewMockHealthCheckerBuilder() *MockHealthCheckerBuilder {
	return &MockHealthCheckerBuilder{
		checker: &MockHealthChecker{
			status:     "healthy",
			details:    map[string]any{"store": "ok", "catalog_entries": 60},
			httpStatus: http.StatusOK,
		},
	}
}

func (b *MockHealthCheckerBuilder) WithStatus(status string, httpStatus int) *MockHealthCheckerBuilder {
	b.checker.status = status
	b.checker.httpStatus = httpStatus
	return b
}

func (b *MockHealthCheckerBuilder) Build() *MockHealthChecker {
	return b.checker
}
