// Package validation checks request input at the HTTP boundary. The engine
// accepts any string; these checks only protect the service from abuse.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/giygas/medication-identifier/interfaces"
)

// Pre-compiled patterns, reused for all validations
var (
	// Operator ids come from the identity provider: user names, emails or subject ids
	operatorIDRegex = regexp.MustCompile(`^[A-Za-z0-9._@:+\-]+$`)

	// Dangerous patterns as strings (faster than regex for simple substring matching)
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "onfocus=", "onblur=", "onchange=", "onsubmit=",
		"eval(", "expression(", "@import", "binding(", "behavior(",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		// Command and path injection patterns
		"$(", "${", "../", "..\\", "%2e%2e", "file://",
	}
)

// Limits applied when the caller passes zero
const (
	DefaultMaxNameLength     = 200
	DefaultMaxBatchSize      = 50000
	MaxOperatorIDLength      = 128
	maxConsecutiveRepetition = 10
)

// InputValidator implements interfaces.InputValidator
type InputValidator struct {
	maxNameLength int
	maxBatchSize  int
}

// Compile-time check
var _ interfaces.InputValidator = (*InputValidator)(nil)

// NewInputValidator creates a validator with the given limits
func NewInputValidator(maxNameLength, maxBatchSize int) *InputValidator {
	if maxNameLength <= 0 {
		maxNameLength = DefaultMaxNameLength
	}
	if maxBatchSize <= 0 {
		maxBatchSize = DefaultMaxBatchSize
	}
	return &InputValidator{maxNameLength: maxNameLength, maxBatchSize: maxBatchSize}
}

// ValidateName checks a single medication name
func (v *InputValidator) ValidateName(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	return v.checkName(input)
}

// ValidateBatch checks an aggregation batch size and each entry's encoding,
// length and control characters. Names that only look unusual are accepted
// and come back unidentified, so one odd line never costs the whole report.
func (v *InputValidator) ValidateBatch(names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("names cannot be empty")
	}
	if len(names) > v.maxBatchSize {
		return fmt.Errorf("too many names: maximum %d per request, got %d", v.maxBatchSize, len(names))
	}

	for i, name := range names {
		if err := v.checkText(name); err != nil {
			return fmt.Errorf("names[%d]: %w", i, err)
		}
	}
	return nil
}

// ValidateOperatorID checks the operator identity header
func (v *InputValidator) ValidateOperatorID(input string) error {
	if input == "" {
		return fmt.Errorf("operator id cannot be empty")
	}
	if len(input) > MaxOperatorIDLength {
		return fmt.Errorf("operator id too long: maximum %d characters", MaxOperatorIDLength)
	}
	if !operatorIDRegex.MatchString(input) {
		return fmt.Errorf("operator id contains invalid characters")
	}
	return nil
}

// ValidateMappingID parses a mapping id path parameter
func (v *InputValidator) ValidateMappingID(input string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return uuid.Nil, fmt.Errorf("id cannot be empty")
	}

	id, err := uuid.Parse(trimmed)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("id must be a valid UUID")
	}
	return id, nil
}

func (v *InputValidator) checkName(input string) error {
	if err := v.checkText(input); err != nil {
		return err
	}

	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	if hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// checkText applies the limits every name must meet, single or batched
func (v *InputValidator) checkText(input string) error {
	if !utf8.ValidString(input) {
		return fmt.Errorf("name must be valid UTF-8")
	}

	if n := utf8.RuneCountInString(input); n > v.maxNameLength {
		return fmt.Errorf("name too long: maximum %d characters, got %d", v.maxNameLength, n)
	}

	for _, r := range input {
		if unicode.IsControl(r) && r != '\t' {
			return fmt.Errorf("name contains control characters")
		}
	}
	return nil
}

// hasExcessiveRepetition reports a rune repeated more than 10 times in a row
func hasExcessiveRepetition(input string) bool {
	var (
		last  rune = -1
		count int
	)
	for _, r := range input {
		if r == last {
			count++
			if count > maxConsecutiveRepetition {
				return true
			}
			continue
		}
		last = r
		count = 1
	}
	return false
}
