package transition

import (
	"context"
	"fmt"
	"strings"

	"github.com/provalon/quality-engine/internal/domain/status"
)

// Validation error messages. These surface verbatim in API responses and in
// the audit UI, so the wording is part of the contract.
const (
	MsgSameStatus         = "Cannot transition to the same status"
	MsgReasonRequired     = "Reason is required for this status transition"
	MsgInspectionRequired = "Inspection required before this status transition"
	MsgApprovalRequired   = "QA Manager approval required for this transition"
)

// InspectionChecker reports whether inspection evidence exists for an entity.
// Owned by the inspection subsystem; the validator only consults it.
type InspectionChecker interface {
	InspectionExists(ctx context.Context, orgID string, entityType status.EntityType, entityID string) (bool, error)
}

// ApprovalChecker reports whether a user holds an approval-capable role.
type ApprovalChecker interface {
	HasApprovalRole(ctx context.Context, userID string) (bool, error)
}

// Request describes a proposed status transition to validate.
type Request struct {
	OrgID      string
	EntityType status.EntityType
	EntityID   string
	From       State
	To         State
	Reason     string
	ActorID    string
}

// RequiredActions tells the caller which requirements are unmet, so a form
// can highlight all of them in one round trip.
type RequiredActions struct {
	ReasonRequired     bool `json:"reason_required,omitempty"`
	InspectionRequired bool `json:"inspection_required,omitempty"`
	ApprovalRequired   bool `json:"approval_required,omitempty"`
}

// Any returns true if at least one action is required.
func (a RequiredActions) Any() bool {
	return a.ReasonRequired || a.InspectionRequired || a.ApprovalRequired
}

// Result is the outcome of validating a proposed transition. Errors holds
// every accumulated failure, not just the first.
type Result struct {
	IsValid         bool            `json:"is_valid"`
	Errors          []string        `json:"errors,omitempty"`
	RequiredActions RequiredActions `json:"required_actions,omitempty"`
}

// Validator evaluates proposed transitions against a rule set and the
// collaborator predicates. It never mutates anything; callers decide whether
// to persist.
type Validator struct {
	rules       *RuleSet
	inspections InspectionChecker
	approvals   ApprovalChecker
}

// NewValidator creates a validator over the given rule set and checkers.
func NewValidator(rules *RuleSet, inspections InspectionChecker, approvals ApprovalChecker) *Validator {
	return &Validator{
		rules:       rules,
		inspections: inspections,
		approvals:   approvals,
	}
}

// Validate checks the proposed transition. A returned error means a checker
// failed (infrastructure problem), not that the transition is invalid.
func (v *Validator) Validate(ctx context.Context, req Request) (Result, error) {
	// Self-transitions are rejected regardless of table contents.
	if req.From == req.To {
		return Result{
			IsValid: false,
			Errors:  []string{fmt.Sprintf("%s: %s", MsgSameStatus, req.From)},
		}, nil
	}

	rule, ok := v.rules.RuleFor(req.From, req.To)
	if !ok {
		// Without a rule the requirement checks are meaningless.
		return Result{
			IsValid: false,
			Errors:  []string{fmt.Sprintf("Invalid status transition: %s -> %s", req.From, req.To)},
		}, nil
	}

	var result Result
	if rule.RequiresReason && strings.TrimSpace(req.Reason) == "" {
		result.Errors = append(result.Errors, MsgReasonRequired)
		result.RequiredActions.ReasonRequired = true
	}

	if rule.RequiresInspection {
		exists, err := v.inspections.InspectionExists(ctx, req.OrgID, req.EntityType, req.EntityID)
		if err != nil {
			return Result{}, fmt.Errorf("check inspection: %w", err)
		}
		if !exists {
			result.Errors = append(result.Errors, MsgInspectionRequired)
			result.RequiredActions.InspectionRequired = true
		}
	}

	if rule.RequiresApproval {
		capable, err := v.approvals.HasApprovalRole(ctx, req.ActorID)
		if err != nil {
			return Result{}, fmt.Errorf("check approval role: %w", err)
		}
		if !capable {
			result.Errors = append(result.Errors, MsgApprovalRequired)
			result.RequiredActions.ApprovalRequired = true
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result, nil
}
