package qerrors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/provalon/quality-engine/internal/domain/transition"
)

func TestValidationError_CarriesAllMessages(t *testing.T) {
	err := NewValidationError(transition.Result{
		Errors: []string{
			transition.MsgReasonRequired,
			transition.MsgInspectionRequired,
		},
		RequiredActions: transition.RequiredActions{
			ReasonRequired:     true,
			InspectionRequired: true,
		},
	})

	if !strings.Contains(err.Error(), transition.MsgReasonRequired) {
		t.Errorf("Error() = %q, missing reason message", err.Error())
	}
	if !strings.Contains(err.Error(), transition.MsgInspectionRequired) {
		t.Errorf("Error() = %q, missing inspection message", err.Error())
	}
	if !err.RequiredActions.ReasonRequired || !err.RequiredActions.InspectionRequired {
		t.Errorf("RequiredActions = %+v, want both set", err.RequiredActions)
	}
}

func TestTaxonomyPredicates(t *testing.T) {
	wrapped := func(err error) error { return fmt.Errorf("handler: %w", err) }

	tests := []struct {
		name string
		err  error
		pred func(error) bool
	}{
		{"validation", wrapped(&ValidationError{Errors: []string{"x"}}), IsValidation},
		{"not found", wrapped(&NotFoundError{Resource: "lp", ID: "1"}), IsNotFound},
		{"permission", wrapped(&PermissionError{Message: "denied"}), IsPermission},
		{"concurrency", wrapped(&ConcurrencyError{EntityType: "lp", EntityID: "1"}), IsConcurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.pred(tt.err) {
				t.Errorf("predicate failed for wrapped %T", tt.err)
			}
		})
	}

	if IsValidation(&NotFoundError{Resource: "lp", ID: "1"}) {
		t.Error("IsValidation matched a NotFoundError")
	}
}

func TestConcurrencyError_Retryable(t *testing.T) {
	err := &ConcurrencyError{EntityType: "lp", EntityID: "1", Expected: "PENDING", Actual: "HOLD"}
	if !err.Retryable() {
		t.Error("ConcurrencyError must be retryable")
	}
	if !strings.Contains(err.Error(), "PENDING") || !strings.Contains(err.Error(), "HOLD") {
		t.Errorf("Error() = %q, want both statuses mentioned", err.Error())
	}
}
