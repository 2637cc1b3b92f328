// Package resolver identifies free-text medication names. It tries the
// learned mappings first, then the static catalog by exact key and by
// variation, and finally splits compound names and resolves every part.
package resolver

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/giygas/medication-identifier/entities"
	"github.com/giygas/medication-identifier/interfaces"
	"github.com/giygas/medication-identifier/logging"
	"github.com/giygas/medication-identifier/mappings"
	"github.com/giygas/medication-identifier/metrics"
	"github.com/giygas/medication-identifier/normalizer"
	"github.com/giygas/medication-identifier/splitter"
)

// Compile-time check
var _ interfaces.Resolver = (*Resolver)(nil)

// Options tunes the resolver.
type Options struct {
	// MaxSplitDepth bounds compound splitting. 0 disables it, 1 splits the
	// input once and resolves each part without splitting it again.
	MaxSplitDepth int
	// UsageTimeout bounds each background usage write.
	UsageTimeout time.Duration
	// Display labels for an unmatched result.
	UnidentifiedLabel string
	UnclassifiedLabel string
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		MaxSplitDepth:     1,
		UsageTimeout:      2 * time.Second,
		UnidentifiedLabel: "Não identificado",
		UnclassifiedLabel: "Não classificado",
	}
}

// strategy tries to identify a name. The bool is false when it does not match.
type strategy func(ctx context.Context, raw, normalized string) (entities.MatchResult, bool)

// Resolver is safe for concurrent use. The only state it mutates is the
// usage counter of learned mappings, written in the background.
type Resolver struct {
	store      interfaces.MappingStore
	catalog    interfaces.Catalog
	opts       Options
	strategies []strategy
	pending    sync.WaitGroup
}

// New creates a resolver. A nil store disables learned mappings.
func New(store interfaces.MappingStore, cat interfaces.Catalog, opts Options) *Resolver {
	if opts.MaxSplitDepth < 0 {
		opts.MaxSplitDepth = 0
	}
	if opts.UsageTimeout <= 0 {
		opts.UsageTimeout = DefaultOptions().UsageTimeout
	}

	r := &Resolver{store: store, catalog: cat, opts: opts}
	r.strategies = []strategy{r.matchLearned, r.matchExactKey, r.matchVariation}
	return r
}

// Resolve identifies raw. It never fails: anything that cannot be matched,
// including empty input, yields a not_found result.
func (r *Resolver) Resolve(ctx context.Context, raw string) entities.MatchResult {
	result, hits := r.resolve(ctx, raw, r.opts.MaxSplitDepth)

	if result.Identified() && len(hits) > 0 {
		r.recordUsage(ctx, hits)
	}

	metrics.ResolveTotal.WithLabelValues(string(result.MatchType)).Inc()
	return result
}

// Wait blocks until every pending usage write has finished.
func (r *Resolver) Wait() {
	r.pending.Wait()
}

// resolve runs the strategies in priority order and falls back to compound
// splitting while depth allows it. hits lists the learned mappings the
// result was built from; usage is only recorded once the whole name resolved.
func (r *Resolver) resolve(ctx context.Context, raw string, depth int) (entities.MatchResult, []uuid.UUID) {
	normalized := normalizer.Normalize(raw)
	if normalized == "" {
		return r.notFound(raw, normalized), nil
	}

	for _, try := range r.strategies {
		if result, ok := try(ctx, raw, normalized); ok {
			if result.MappingID != nil {
				return result, []uuid.UUID{*result.MappingID}
			}
			return result, nil
		}
	}

	if depth > 0 {
		if result, hits, ok := r.matchCompound(ctx, raw, normalized, depth); ok {
			return result, hits
		}
	}

	return r.notFound(raw, normalized), nil
}

func (r *Resolver) matchLearned(ctx context.Context, raw, normalized string) (entities.MatchResult, bool) {
	if r.store == nil {
		return entities.MatchResult{}, false
	}

	m, err := r.store.FindActiveByNormalizedName(ctx, normalized)
	if err != nil {
		if !errors.Is(err, mappings.ErrNotFound) {
			logging.Warn("Learned mapping lookup failed, falling back to catalog",
				"normalized", normalized, "error", err)
		}
		return entities.MatchResult{}, false
	}

	id := m.ID
	return entities.MatchResult{
		Input:            raw,
		Normalized:       normalized,
		ActiveIngredient: m.ActiveIngredient,
		Class:            m.Class,
		MatchType:        entities.MatchCustom,
		IsMultiple:       m.IsMultiple,
		SubMedications:   slices.Clone(m.SubMedications),
		MappingID:        &id,
	}, true
}

func (r *Resolver) matchExactKey(_ context.Context, raw, normalized string) (entities.MatchResult, bool) {
	entry, ok := r.catalog.FindByExactKey(normalized)
	if !ok {
		return entities.MatchResult{}, false
	}
	return entities.MatchResult{
		Input:            raw,
		Normalized:       normalized,
		ActiveIngredient: entry.ActiveIngredient,
		Class:            entry.Class,
		MatchType:        entities.MatchActiveIngredient,
	}, true
}

func (r *Resolver) matchVariation(_ context.Context, raw, normalized string) (entities.MatchResult, bool) {
	entry, ok := r.catalog.FindByVariation(normalized)
	if !ok {
		return entities.MatchResult{}, false
	}
	return entities.MatchResult{
		Input:            raw,
		Normalized:       normalized,
		ActiveIngredient: entry.ActiveIngredient,
		Class:            entry.Class,
		MatchType:        entities.MatchVariation,
	}, true
}

// matchCompound splits the original input and resolves every part one level
// down. A single unresolved part fails the whole match.
func (r *Resolver) matchCompound(ctx context.Context, raw, normalized string, depth int) (entities.MatchResult, []uuid.UUID, bool) {
	candidates := splitter.Split(raw)
	if len(candidates) < 2 {
		return entities.MatchResult{}, nil, false
	}

	var (
		subs []mappings.SubMedication
		hits []uuid.UUID
	)
	for _, candidate := range candidates {
		sub, subHits := r.resolve(ctx, candidate, depth-1)
		if !sub.Identified() {
			return entities.MatchResult{}, nil, false
		}

		if sub.IsMultiple {
			subs = append(subs, sub.SubMedications...)
		} else {
			subs = append(subs, mappings.SubMedication{
				Name:             candidate,
				ActiveIngredient: sub.ActiveIngredient,
				Class:            sub.Class,
			})
		}
		hits = append(hits, subHits...)
	}

	return entities.MatchResult{
		Input:            raw,
		Normalized:       normalized,
		ActiveIngredient: joinDistinct(subs, func(s mappings.SubMedication) string { return s.ActiveIngredient }),
		Class:            joinDistinct(subs, func(s mappings.SubMedication) string { return s.Class }),
		MatchType:        entities.MatchAutoSplit,
		IsMultiple:       true,
		SubMedications:   subs,
	}, hits, true
}

func (r *Resolver) notFound(raw, normalized string) entities.MatchResult {
	return entities.MatchResult{
		Input:            raw,
		Normalized:       normalized,
		ActiveIngredient: r.opts.UnidentifiedLabel,
		Class:            r.opts.UnclassifiedLabel,
		MatchType:        entities.MatchNotFound,
	}
}

// recordUsage bumps usage counters without blocking the caller. Failures
// are logged and counted, never returned.
func (r *Resolver) recordUsage(ctx context.Context, ids []uuid.UUID) {
	parent := context.WithoutCancel(ctx)

	r.pending.Add(1)
	go func() {
		defer r.pending.Done()

		for _, id := range ids {
			writeCtx, cancel := context.WithTimeout(parent, r.opts.UsageTimeout)
			err := r.store.RecordUsage(writeCtx, id)
			cancel()

			if err != nil {
				metrics.UsageRecordFailures.Inc()
				logging.Warn("Failed to record learned mapping usage", "mapping_id", id, "error", err)
			}
		}
	}()
}

// joinDistinct joins the distinct values of field in order of appearance.
func joinDistinct(subs []mappings.SubMedication, field func(mappings.SubMedication) string) string {
	seen := make(map[string]bool, len(subs))
	parts := make([]string, 0, len(subs))
	for _, s := range subs {
		v := field(s)
		if seen[v] {
			continue
		}
		seen[v] = true
		parts = append(parts, v)
	}
	return strings.Join(parts, " + ")
}
