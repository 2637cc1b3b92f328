// Package catalog holds the code-shipped reference table of known active
// ingredients, their therapeutic class and the brand names and spellings that
// resolve to them.
//
// The catalog is built once and never modified at runtime. Adding an entry is
// a code change; operator-curated additions live in the learned mapping store.
package catalog

import (
	"fmt"
	"slices"
	"sync"

	"github.com/giygas/medication-identifier/normalizer"
)

// Entry is a canonical active ingredient with its known aliases.
type Entry struct {
	Key              string   `json:"key"`
	ActiveIngredient string   `json:"activeIngredient"`
	Class            string   `json:"class"`
	Variations       []string `json:"variations"`
}

// Catalog indexes entries by normalized key and by normalized variation.
// All methods are safe for concurrent use.
type Catalog struct {
	entries     []Entry
	byKey       map[string]int
	byVariation map[string]int
}

// New validates entries and builds the lookup indexes.
//
// It rejects entries whose key or variations normalize to the empty string,
// duplicate keys, a variation shared by two entries and a variation that
// equals another entry's key. A variation that normalizes to its own key is
// accepted as an alias and not indexed twice.
func New(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries:     make([]Entry, len(entries)),
		byKey:       make(map[string]int, len(entries)),
		byVariation: make(map[string]int, len(entries)*3),
	}

	for i, e := range entries {
		key := normalizer.Normalize(e.Key)
		if key == "" {
			return nil, fmt.Errorf("entry %d (%s): key normalizes to empty string", i, e.ActiveIngredient)
		}
		if e.ActiveIngredient == "" || e.Class == "" {
			return nil, fmt.Errorf("entry %q: active ingredient and class are required", e.Key)
		}
		if other, exists := c.byKey[key]; exists {
			return nil, fmt.Errorf("entry %q: duplicate key, already used by %q", e.Key, entries[other].Key)
		}
		c.byKey[key] = i

		c.entries[i] = e
		c.entries[i].Variations = slices.Clone(e.Variations)
	}

	for i, e := range entries {
		key := normalizer.Normalize(e.Key)
		for _, v := range e.Variations {
			nv := normalizer.Normalize(v)
			switch {
			case nv == "":
				return nil, fmt.Errorf("entry %q: variation %q normalizes to empty string", e.Key, v)
			case nv == key:
				continue
			}

			if owner, exists := c.byKey[nv]; exists {
				return nil, fmt.Errorf("entry %q: variation %q collides with key of %q", e.Key, v, entries[owner].Key)
			}
			if owner, exists := c.byVariation[nv]; exists && owner != i {
				return nil, fmt.Errorf("entry %q: variation %q already belongs to %q", e.Key, v, entries[owner].Key)
			}
			c.byVariation[nv] = i
		}
	}

	return c, nil
}

// Default returns the shipped catalog, built on first use.
var Default = sync.OnceValue(func() *Catalog {
	c, err := New(defaultEntries)
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid shipped table: %v", err))
	}
	return c
})

// FindByExactKey returns the entry whose normalized key equals normalized.
func (c *Catalog) FindByExactKey(normalized string) (Entry, bool) {
	i, ok := c.byKey[normalized]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// FindByVariation returns the entry owning the normalized variation.
func (c *Catalog) FindByVariation(normalized string) (Entry, bool) {
	i, ok := c.byVariation[normalized]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Entries returns a copy of all entries in table order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e
		out[i].Variations = slices.Clone(e.Variations)
	}
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// VariationCount returns the number of indexed variations.
func (c *Catalog) VariationCount() int {
	return len(c.byVariation)
}
