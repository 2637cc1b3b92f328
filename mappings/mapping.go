// Package mappings implements the learned mapping store: operator-curated
// medication names that extend or override the static catalog, with usage
// analytics and soft deactivation.
package mappings

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/giygas/medication-identifier/normalizer"
)

// SubMedication is one drug inside a compound mapping.
type SubMedication struct {
	Name             string `json:"name"`
	ActiveIngredient string `json:"activeIngredient"`
	Class            string `json:"class"`
}

// LearnedMapping maps a medication name to its active ingredient and class.
type LearnedMapping struct {
	ID               uuid.UUID       `json:"id"`
	MedicationName   string          `json:"medicationName"`
	NormalizedName   string          `json:"normalizedName"`
	ActiveIngredient string          `json:"activeIngredient"`
	Class            string          `json:"class"`
	IsMultiple       bool            `json:"isMultiple"`
	SubMedications   []SubMedication `json:"subMedications"`
	CreatedBy        string          `json:"createdBy"`
	UsageCount       int64           `json:"usageCount"`
	LastUsed         *time.Time      `json:"lastUsed,omitempty"`
	IsActive         bool            `json:"isActive"`
	Notes            string          `json:"notes"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// CreateCommand holds the operator input for a new mapping.
type CreateCommand struct {
	MedicationName   string          `json:"medicationName"`
	ActiveIngredient string          `json:"activeIngredient"`
	Class            string          `json:"class"`
	IsMultiple       bool            `json:"isMultiple"`
	SubMedications   []SubMedication `json:"subMedications"`
	Notes            string          `json:"notes"`
	CreatedBy        string          `json:"-"`
}

// UpdateCommand holds a partial update. Nil fields are left unchanged.
// Usage statistics are not part of it: only lookups move them.
type UpdateCommand struct {
	MedicationName   *string          `json:"medicationName,omitempty"`
	ActiveIngredient *string          `json:"activeIngredient,omitempty"`
	Class            *string          `json:"class,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
	IsActive         *bool            `json:"isActive,omitempty"`
	IsMultiple       *bool            `json:"isMultiple,omitempty"`
	SubMedications   *[]SubMedication `json:"subMedications,omitempty"`
}

// Filter narrows List results. A nil IsActive lists both states.
type Filter struct {
	IsActive *bool
	Search   string
}

// Stats summarizes the store for the analytics snapshot.
type Stats struct {
	Total          int   `json:"total"`
	Active         int   `json:"active"`
	Inactive       int   `json:"inactive"`
	TotalUsage     int64 `json:"totalUsage"`
	NeverUsed      int   `json:"neverUsed"`
	StaleActive    int   `json:"staleActive"`
	MultipleActive int   `json:"multipleActive"`
}

// newMapping builds a mapping from a validated command.
func newMapping(cmd CreateCommand, now time.Time) LearnedMapping {
	return LearnedMapping{
		ID:               uuid.New(),
		MedicationName:   strings.TrimSpace(cmd.MedicationName),
		NormalizedName:   normalizer.Normalize(cmd.MedicationName),
		ActiveIngredient: strings.TrimSpace(cmd.ActiveIngredient),
		Class:            strings.TrimSpace(cmd.Class),
		IsMultiple:       cmd.IsMultiple,
		SubMedications:   cleanSubMedications(cmd.SubMedications),
		CreatedBy:        strings.TrimSpace(cmd.CreatedBy),
		IsActive:         true,
		Notes:            cmd.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// apply merges cmd into m, recomputing the normalized name when the display name changes.
func (m *LearnedMapping) apply(cmd UpdateCommand, now time.Time) {
	if cmd.MedicationName != nil {
		m.MedicationName = strings.TrimSpace(*cmd.MedicationName)
		m.NormalizedName = normalizer.Normalize(m.MedicationName)
	}
	if cmd.ActiveIngredient != nil {
		m.ActiveIngredient = strings.TrimSpace(*cmd.ActiveIngredient)
	}
	if cmd.Class != nil {
		m.Class = strings.TrimSpace(*cmd.Class)
	}
	if cmd.Notes != nil {
		m.Notes = *cmd.Notes
	}
	if cmd.IsActive != nil {
		m.IsActive = *cmd.IsActive
	}
	if cmd.IsMultiple != nil {
		m.IsMultiple = *cmd.IsMultiple
		if !m.IsMultiple {
			m.SubMedications = nil
		}
	}
	if cmd.SubMedications != nil {
		m.SubMedications = cleanSubMedications(*cmd.SubMedications)
	}
	m.UpdatedAt = now
}

// Clone returns a deep copy so callers never share slices with the store.
func (m LearnedMapping) Clone() LearnedMapping {
	m.SubMedications = slices.Clone(m.SubMedications)
	if m.LastUsed != nil {
		lu := *m.LastUsed
		m.LastUsed = &lu
	}
	return m
}

// matches reports whether m passes the filter.
func (f Filter) matches(m LearnedMapping) bool {
	if f.IsActive != nil && m.IsActive != *f.IsActive {
		return false
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	if search == "" {
		return true
	}

	return strings.Contains(strings.ToLower(m.MedicationName), search) ||
		strings.Contains(strings.ToLower(m.ActiveIngredient), search) ||
		strings.Contains(strings.ToLower(m.Class), search)
}

// compareForList orders by usage count, then newest first.
func compareForList(a, b LearnedMapping) int {
	if a.UsageCount != b.UsageCount {
		if a.UsageCount > b.UsageCount {
			return -1
		}
		return 1
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}

func cleanSubMedications(subs []SubMedication) []SubMedication {
	if len(subs) == 0 {
		return nil
	}

	out := make([]SubMedication, len(subs))
	for i, s := range subs {
		out[i] = SubMedication{
			Name:             strings.TrimSpace(s.Name),
			ActiveIngredient: strings.TrimSpace(s.ActiveIngredient),
			Class:            strings.TrimSpace(s.Class),
		}
	}
	return out
}
