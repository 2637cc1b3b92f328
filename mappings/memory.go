package mappings

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps learned mappings in process memory. It backs development
// setups and tests; a single mutex makes the active-name check and the write
// one atomic step.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*LearnedMapping
	active map[string]uuid.UUID // normalized name -> active mapping id
	now    func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[uuid.UUID]*LearnedMapping),
		active: make(map[string]uuid.UUID),
		now:    time.Now,
	}
}

// FindActiveByNormalizedName returns the active mapping for a normalized name.
func (s *MemoryStore) FindActiveByNormalizedName(ctx context.Context, normalized string) (*LearnedMapping, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.active[normalized]
	if !ok {
		return nil, ErrNotFound
	}

	m := s.byID[id].Clone()
	return &m, nil
}

// Find returns a mapping by id, active or not.
func (s *MemoryStore) Find(ctx context.Context, id uuid.UUID) (*LearnedMapping, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}

	clone := m.Clone()
	return &clone, nil
}

// Create stores a new active mapping or fails with ErrConflict.
func (s *MemoryStore) Create(ctx context.Context, cmd CreateCommand) (*LearnedMapping, error) {
	if err := ValidateCreate(cmd); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := newMapping(cmd, s.now())
	if _, exists := s.active[m.NormalizedName]; exists {
		return nil, ErrConflict
	}

	s.byID[m.ID] = &m
	s.active[m.NormalizedName] = m.ID

	clone := m.Clone()
	return &clone, nil
}

// Update applies a partial update. Renaming or reactivating onto a name that
// already has another active mapping fails with ErrConflict.
func (s *MemoryStore) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*LearnedMapping, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}

	if err := ValidateUpdate(*current, cmd); err != nil {
		return nil, err
	}

	next := current.Clone()
	next.apply(cmd, s.now())

	if next.IsActive {
		if owner, exists := s.active[next.NormalizedName]; exists && owner != id {
			return nil, ErrConflict
		}
	}

	if current.IsActive {
		delete(s.active, current.NormalizedName)
	}
	if next.IsActive {
		s.active[next.NormalizedName] = id
	}
	*current = next

	clone := next.Clone()
	return &clone, nil
}

// Deactivate soft-deletes a mapping. Deactivating an inactive mapping is a no-op.
func (s *MemoryStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	if !m.IsActive {
		return nil
	}

	m.IsActive = false
	m.UpdatedAt = s.now()
	delete(s.active, m.NormalizedName)
	return nil
}

// RecordUsage bumps the usage counter and the last-used timestamp.
func (s *MemoryStore) RecordUsage(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}

	now := s.now()
	m.UsageCount++
	m.LastUsed = &now
	return nil
}

// List returns mappings matching filter, most used first, then newest first.
func (s *MemoryStore) List(ctx context.Context, filter Filter) ([]LearnedMapping, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]LearnedMapping, 0, len(s.byID))
	for _, m := range s.byID {
		if filter.matches(*m) {
			out = append(out, m.Clone())
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, compareForList)
	return out, nil
}

// Stats computes counters over all mappings. An active mapping is stale when
// it was not used within staleAfter (or never used and older than that).
func (s *MemoryStore) Stats(ctx context.Context, staleAfter time.Duration) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().Add(-staleAfter)
	var st Stats
	for _, m := range s.byID {
		st.Total++
		st.TotalUsage += m.UsageCount
		if !m.IsActive {
			st.Inactive++
			continue
		}

		st.Active++
		if m.IsMultiple {
			st.MultipleActive++
		}
		if m.LastUsed == nil {
			st.NeverUsed++
		}

		lastSeen := m.CreatedAt
		if m.LastUsed != nil {
			lastSeen = *m.LastUsed
		}
		if lastSeen.Before(cutoff) {
			st.StaleActive++
		}
	}

	return st, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
