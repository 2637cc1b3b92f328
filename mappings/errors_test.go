package mappings

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestMapHTTPStatus(t *testing.T) {
	verr := &ValidationError{}
	verr.add("class", "is required")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", verr, http.StatusBadRequest},
		{"sentinel validation", ErrValidation, http.StatusBadRequest},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", ErrNotFound), http.StatusNotFound},
		{"conflict", ErrConflict, http.StatusConflict},
		{"other", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	verr := &ValidationError{}
	verr.add("createdBy", "operator identity is required")
	verr.add("class", "is required")

	msg := verr.Error()
	if !strings.HasPrefix(msg, ErrValidation.Error()) {
		t.Errorf("Expected message to start with sentinel text, got %q", msg)
	}
	if !strings.Contains(msg, "createdBy: operator identity is required; class: is required") {
		t.Errorf("Expected both fields in message, got %q", msg)
	}

	if (&ValidationError{}).orNil() != nil {
		t.Error("Empty ValidationError should collapse to nil")
	}
}
