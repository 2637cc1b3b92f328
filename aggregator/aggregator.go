// Package aggregator groups batches of prescribed medication names by
// active ingredient and therapeutic class for reporting.
package aggregator

import (
	"cmp"
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/giygas/medication-identifier/entities"
	"github.com/giygas/medication-identifier/interfaces"
	"github.com/giygas/medication-identifier/logging"
	"github.com/giygas/medication-identifier/metrics"
)

// DefaultWorkers is the resolver fan-out when none is configured.
const DefaultWorkers = 8

// Compile-time check
var _ interfaces.Aggregator = (*Aggregator)(nil)

// Aggregator resolves every name of a batch and counts the results.
type Aggregator struct {
	resolver interfaces.Resolver
	workers  int
}

// New creates an aggregator resolving up to workers names at a time.
func New(resolver interfaces.Resolver, workers int) *Aggregator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Aggregator{resolver: resolver, workers: workers}
}

// GroupByActiveIngredient resolves names concurrently and builds the report.
// The report does not depend on scheduling: results are slotted by input
// index before counting. Cancelling ctx aborts the batch with ctx.Err().
func (a *Aggregator) GroupByActiveIngredient(ctx context.Context, names []string) (*entities.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]entities.MatchResult, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workerCount(len(names)))

	for i := range names {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			results[i] = a.resolver.Resolve(gctx, names[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logging.Warn("Aggregation aborted", "names", len(names), "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metrics.AggregateBatchSize.Observe(float64(len(names)))

	report := BuildReport(names, results)
	logging.Debug("Aggregation completed",
		"names", report.Total,
		"identified", report.Identified,
		"ingredients", len(report.ByActiveIngredient),
	)
	return report, nil
}

func (a *Aggregator) workerCount(n int) int {
	return max(1, min(a.workers, n))
}

// BuildReport counts resolved results. results[i] must be the resolution of
// names[i]. A multiple match adds one to each of its sub-medications'
// ingredients; an unmatched name is listed in Unidentified, duplicates kept.
func BuildReport(names []string, results []entities.MatchResult) *entities.Report {
	report := &entities.Report{
		Total:        len(names),
		Unidentified: make([]string, 0),
	}

	buckets := make(map[string]*bucket)
	var order []*bucket

	add := func(ingredient, class, input string) {
		b, ok := buckets[ingredient]
		if !ok {
			b = &bucket{
				IngredientBucket: entities.IngredientBucket{ActiveIngredient: ingredient, Class: class},
				seen:             make(map[string]bool),
			}
			buckets[ingredient] = b
			order = append(order, b)
		}
		b.Count++
		if !b.seen[input] {
			b.seen[input] = true
			b.Variations = append(b.Variations, input)
		}
	}

	for i, result := range results {
		if !result.Identified() {
			report.Unidentified = append(report.Unidentified, names[i])
			continue
		}

		report.Identified++
		if result.IsMultiple && len(result.SubMedications) > 0 {
			for _, sub := range result.SubMedications {
				add(sub.ActiveIngredient, sub.Class, names[i])
			}
			continue
		}
		add(result.ActiveIngredient, result.Class, names[i])
	}

	report.ByActiveIngredient = make([]entities.IngredientBucket, len(order))
	for i, b := range order {
		report.ByActiveIngredient[i] = b.IngredientBucket
	}
	slices.SortFunc(report.ByActiveIngredient, func(x, y entities.IngredientBucket) int {
		return cmp.Or(cmp.Compare(y.Count, x.Count), cmp.Compare(x.ActiveIngredient, y.ActiveIngredient))
	})

	report.ByClass = groupByClass(report.ByActiveIngredient)
	return report
}

type bucket struct {
	entities.IngredientBucket
	seen map[string]bool
}

// groupByClass rolls sorted ingredient buckets up into class buckets.
func groupByClass(ingredients []entities.IngredientBucket) []entities.ClassBucket {
	index := make(map[string]int)
	classes := make([]entities.ClassBucket, 0)

	for _, ing := range ingredients {
		i, ok := index[ing.Class]
		if !ok {
			i = len(classes)
			index[ing.Class] = i
			classes = append(classes, entities.ClassBucket{Class: ing.Class})
		}
		classes[i].Count += ing.Count
		classes[i].ActiveIngredients = append(classes[i].ActiveIngredients, ing.ActiveIngredient)
	}

	slices.SortFunc(classes, func(x, y entities.ClassBucket) int {
		return cmp.Or(cmp.Compare(y.Count, x.Count), cmp.Compare(x.Class, y.Class))
	})
	return classes
}
