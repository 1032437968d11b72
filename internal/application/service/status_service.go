package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/provalon/quality-engine/internal/application/port"
	"github.com/provalon/quality-engine/internal/domain/entity"
	"github.com/provalon/quality-engine/internal/domain/qerrors"
	"github.com/provalon/quality-engine/internal/domain/status"
	"github.com/provalon/quality-engine/internal/domain/transition"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ValidateRequest describes a proposed quality transition to check without
// persisting anything.
type ValidateRequest struct {
	OrgID      string
	EntityType status.EntityType
	EntityID   string
	FromStatus status.QualityStatus
	ToStatus   status.QualityStatus
	Reason     string
	ActorID    string
}

// ChangeStatusRequest describes a transition to execute. The from-status is
// not part of the request; the executor works from the entity's current value.
type ChangeStatusRequest struct {
	OrgID        string
	EntityType   status.EntityType
	EntityID     string
	ToStatus     status.QualityStatus
	Reason       string
	InspectionID *string
	ActorID      string
}

// ChangeStatusResult reports a committed transition.
type ChangeStatusResult struct {
	Success   bool   `json:"success"`
	NewStatus string `json:"new_status"`
	HistoryID string `json:"history_id"`
}

// StatusService is the quality engine's entry point: catalog reads, transition
// validation, the mutating executor, and history retrieval.
type StatusService interface {
	ListStatusTypes() []status.Metadata
	ValidTransitionsFrom(from status.QualityStatus) []transition.Rule
	Validate(ctx context.Context, req ValidateRequest) (transition.Result, error)
	ChangeStatus(ctx context.Context, req ChangeStatusRequest) (*ChangeStatusResult, error)
	RegisterEntity(ctx context.Context, orgID string, entityType status.EntityType, entityID, actorID string) (*ChangeStatusResult, error)
	History(ctx context.Context, orgID string, entityType status.EntityType, entityID string, limit, offset int) ([]*entity.StatusHistoryEntry, error)
}

type statusServiceImpl struct {
	rules       *transition.RuleSet
	validator   *transition.Validator
	statusRepo  port.EntityStatusRepository
	historyRepo port.HistoryRepository
	txManager   port.TransactionManager
	logger      Logger
}

// NewStatusService creates a StatusService over the 7-state quality graph.
func NewStatusService(
	statusRepo port.EntityStatusRepository,
	historyRepo port.HistoryRepository,
	inspections port.InspectionRepository,
	users port.UserRepository,
	txManager port.TransactionManager,
	logger Logger,
) StatusService {
	rules := transition.QualityRules()
	return &statusServiceImpl{
		rules:       rules,
		validator:   transition.NewValidator(rules, &inspectionChecker{inspections: inspections}, &approvalChecker{users: users}),
		statusRepo:  statusRepo,
		historyRepo: historyRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// ListStatusTypes returns the fixed 7-entry status catalog.
func (s *statusServiceImpl) ListStatusTypes() []status.Metadata {
	return status.ListStatusTypes()
}

// ValidTransitionsFrom returns the permitted outgoing transitions for a
// status. A status with no outgoing edges, including one outside the catalog,
// yields an empty slice rather than an error.
func (s *statusServiceImpl) ValidTransitionsFrom(from status.QualityStatus) []transition.Rule {
	return s.rules.ValidTransitionsFrom(transition.State(from))
}

// Validate checks a proposed transition without side effects.
func (s *statusServiceImpl) Validate(ctx context.Context, req ValidateRequest) (transition.Result, error) {
	if errs := validateQualityRequest(req.EntityType, req.FromStatus, req.ToStatus); len(errs) > 0 {
		return transition.Result{IsValid: false, Errors: errs}, nil
	}

	return s.validator.Validate(ctx, transition.Request{
		OrgID:      req.OrgID,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		From:       transition.State(req.FromStatus),
		To:         transition.State(req.ToStatus),
		Reason:     req.Reason,
		ActorID:    req.ActorID,
	})
}

// ChangeStatus executes a transition: validate against the current status,
// then update the pointer and append the audit entry in one transaction. The
// current status is re-read inside the transaction; a mismatch against the
// value validation observed aborts with a retryable ConcurrencyError.
func (s *statusServiceImpl) ChangeStatus(ctx context.Context, req ChangeStatusRequest) (*ChangeStatusResult, error) {
	if errs := validateQualityRequest(req.EntityType, "", req.ToStatus); len(errs) > 0 {
		return nil, &qerrors.ValidationError{Errors: errs}
	}

	observed, found, err := s.statusRepo.GetCurrent(ctx, req.OrgID, req.EntityType, req.EntityID)
	if err != nil {
		return nil, fmt.Errorf("read current status: %w", err)
	}
	if !found {
		return nil, &qerrors.NotFoundError{Resource: req.EntityType.String(), ID: req.EntityID}
	}

	result, err := s.validator.Validate(ctx, transition.Request{
		OrgID:      req.OrgID,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		From:       transition.State(observed),
		To:         transition.State(req.ToStatus),
		Reason:     req.Reason,
		ActorID:    req.ActorID,
	})
	if err != nil {
		return nil, err
	}
	if !result.IsValid {
		return nil, qerrors.NewValidationError(result)
	}

	var historyID string
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		fresh, found, err := s.statusRepo.GetCurrent(txCtx, req.OrgID, req.EntityType, req.EntityID)
		if err != nil {
			return fmt.Errorf("re-read current status: %w", err)
		}
		if !found {
			return &qerrors.NotFoundError{Resource: req.EntityType.String(), ID: req.EntityID}
		}
		if fresh != observed {
			return &qerrors.ConcurrencyError{
				EntityType: req.EntityType.String(),
				EntityID:   req.EntityID,
				Expected:   observed,
				Actual:     fresh,
			}
		}

		if err := s.statusRepo.SetCurrent(txCtx, req.OrgID, req.EntityType, req.EntityID, req.ToStatus.String()); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		from := observed
		reason := strings.TrimSpace(req.Reason)
		historyID, err = s.historyRepo.Append(txCtx, &entity.StatusHistoryEntry{
			OrgID:        req.OrgID,
			EntityType:   req.EntityType,
			EntityID:     req.EntityID,
			FromStatus:   &from,
			ToStatus:     req.ToStatus.String(),
			Reason:       &reason,
			InspectionID: req.InspectionID,
			ChangedBy:    req.ActorID,
			ChangedAt:    time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Status changed",
		"entity_type", req.EntityType.String(),
		"entity_id", req.EntityID,
		"from", observed,
		"to", req.ToStatus.String(),
		"changed_by", req.ActorID)

	return &ChangeStatusResult{
		Success:   true,
		NewStatus: req.ToStatus.String(),
		HistoryID: historyID,
	}, nil
}

// RegisterEntity creates the status row for a newly created entity with the
// lifecycle's initial state and writes the first audit entry, whose
// from-status is null.
func (s *statusServiceImpl) RegisterEntity(ctx context.Context, orgID string, entityType status.EntityType, entityID, actorID string) (*ChangeStatusResult, error) {
	if !entityType.IsValid() || !entityType.UsesQualityGraph() {
		return nil, &qerrors.ValidationError{Errors: []string{fmt.Sprintf("Invalid entity type: %s", entityType)}}
	}

	initial := status.StatusPending.String()
	var historyID string
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.statusRepo.Register(txCtx, orgID, entityType, entityID, initial); err != nil {
			return fmt.Errorf("register entity: %w", err)
		}
		var err error
		historyID, err = s.historyRepo.Append(txCtx, &entity.StatusHistoryEntry{
			OrgID:      orgID,
			EntityType: entityType,
			EntityID:   entityID,
			FromStatus: nil,
			ToStatus:   initial,
			ChangedBy:  actorID,
			ChangedAt:  time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Entity registered",
		"entity_type", entityType.String(),
		"entity_id", entityID,
		"initial_status", initial)

	return &ChangeStatusResult{Success: true, NewStatus: initial, HistoryID: historyID}, nil
}

// History returns the entity's audit trail, newest first.
func (s *statusServiceImpl) History(ctx context.Context, orgID string, entityType status.EntityType, entityID string, limit, offset int) ([]*entity.StatusHistoryEntry, error) {
	if !entityType.IsValid() {
		return nil, &qerrors.ValidationError{Errors: []string{fmt.Sprintf("Invalid entity type: %s", entityType)}}
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.historyRepo.ListByEntity(ctx, orgID, entityType, entityID, limit, offset)
}

// validateQualityRequest checks the closed enums. An empty from-status is
// allowed for callers that resolve it from the entity record.
func validateQualityRequest(entityType status.EntityType, from, to status.QualityStatus) []string {
	var errs []string
	if !entityType.IsValid() || !entityType.UsesQualityGraph() {
		errs = append(errs, fmt.Sprintf("Invalid entity type: %s", entityType))
	}
	if (from != "" && !from.IsValid()) || !to.IsValid() {
		errs = append(errs, "Invalid status value")
	}
	return errs
}
