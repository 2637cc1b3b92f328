// Package entities holds the value types shared by the resolver, the
// aggregator and the HTTP layer.
package entities

import (
	"github.com/google/uuid"

	"github.com/giygas/medication-identifier/mappings"
)

// MatchType tells which strategy identified a medication name.
type MatchType string

const (
	MatchCustom           MatchType = "custom"
	MatchActiveIngredient MatchType = "active_ingredient"
	MatchVariation        MatchType = "variation"
	MatchAutoSplit        MatchType = "auto_split"
	MatchNotFound         MatchType = "not_found"
)

// MatchResult is the outcome of resolving one raw medication name.
// It is never persisted.
type MatchResult struct {
	Input            string                   `json:"input"`
	Normalized       string                   `json:"normalized"`
	ActiveIngredient string                   `json:"activeIngredient"`
	Class            string                   `json:"class"`
	MatchType        MatchType                `json:"matchType"`
	IsMultiple       bool                     `json:"isMultiple"`
	SubMedications   []mappings.SubMedication `json:"subMedications,omitempty"`
	MappingID        *uuid.UUID               `json:"mappingId,omitempty"`
}

// Identified reports whether any strategy matched. Display labels on an
// unmatched result are presentation text and must not be compared instead.
func (r MatchResult) Identified() bool {
	return r.MatchType != MatchNotFound && r.MatchType != ""
}
