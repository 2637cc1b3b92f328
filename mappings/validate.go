package mappings

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/giygas/medication-identifier/normalizer"
)

// Field limits for operator input
const (
	MaxNameLength       = 200
	MaxIngredientLength = 200
	MaxClassLength      = 120
	MaxNotesLength      = 2000
	MaxSubMedications   = 10
)

// ValidateCreate checks a create command. It never fills in missing values.
func ValidateCreate(cmd CreateCommand) error {
	verr := &ValidationError{}

	if strings.TrimSpace(cmd.CreatedBy) == "" {
		verr.add("createdBy", "operator identity is required")
	}

	m := LearnedMapping{
		MedicationName:   strings.TrimSpace(cmd.MedicationName),
		NormalizedName:   normalizer.Normalize(cmd.MedicationName),
		ActiveIngredient: strings.TrimSpace(cmd.ActiveIngredient),
		Class:            strings.TrimSpace(cmd.Class),
		IsMultiple:       cmd.IsMultiple,
		SubMedications:   cleanSubMedications(cmd.SubMedications),
		Notes:            cmd.Notes,
	}
	validateFields(m, verr)

	return verr.orNil()
}

// ValidateUpdate checks the fields present in cmd and the mapping that results
// from applying it to current.
func ValidateUpdate(current LearnedMapping, cmd UpdateCommand) error {
	verr := &ValidationError{}

	if cmd.MedicationName == nil && cmd.ActiveIngredient == nil && cmd.Class == nil &&
		cmd.Notes == nil && cmd.IsActive == nil && cmd.IsMultiple == nil && cmd.SubMedications == nil {
		verr.add("body", "at least one field must be provided")
		return verr
	}

	next := current.Clone()
	next.apply(cmd, current.UpdatedAt)
	validateFields(next, verr)

	return verr.orNil()
}

func validateFields(m LearnedMapping, verr *ValidationError) {
	switch {
	case m.MedicationName == "":
		verr.add("medicationName", "is required")
	case utf8.RuneCountInString(m.MedicationName) > MaxNameLength:
		verr.add("medicationName", fmt.Sprintf("must be at most %d characters", MaxNameLength))
	case m.NormalizedName == "":
		verr.add("medicationName", "must contain letters or digits besides dosage")
	}

	checkRequired(verr, "activeIngredient", m.ActiveIngredient, MaxIngredientLength)
	checkRequired(verr, "class", m.Class, MaxClassLength)

	if utf8.RuneCountInString(m.Notes) > MaxNotesLength {
		verr.add("notes", fmt.Sprintf("must be at most %d characters", MaxNotesLength))
	}

	if !m.IsMultiple {
		if len(m.SubMedications) > 0 {
			verr.add("subMedications", "only allowed when isMultiple is true")
		}
		return
	}

	switch {
	case len(m.SubMedications) < 2:
		verr.add("subMedications", "a multiple mapping needs at least 2 sub-medications")
	case len(m.SubMedications) > MaxSubMedications:
		verr.add("subMedications", fmt.Sprintf("must have at most %d items", MaxSubMedications))
	}

	for i, s := range m.SubMedications {
		prefix := fmt.Sprintf("subMedications[%d].", i)
		checkRequired(verr, prefix+"name", s.Name, MaxNameLength)
		checkRequired(verr, prefix+"activeIngredient", s.ActiveIngredient, MaxIngredientLength)
		checkRequired(verr, prefix+"class", s.Class, MaxClassLength)
	}
}

func checkRequired(verr *ValidationError, field, value string, maxLen int) {
	if value == "" {
		verr.add(field, "is required")
		return
	}
	if utf8.RuneCountInString(value) > maxLen {
		verr.add(field, fmt.Sprintf("must be at most %d characters", maxLen))
	}
}
