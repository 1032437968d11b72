package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/provalon/quality-engine/internal/application/port"
	"github.com/provalon/quality-engine/internal/domain/entity"
	"github.com/provalon/quality-engine/internal/domain/qerrors"
	"github.com/provalon/quality-engine/internal/domain/status"
	"github.com/provalon/quality-engine/internal/domain/transition"
)

const ncrPrefix = "NCR"

// CreateNCRRequest describes a new non-conformance report.
type CreateNCRRequest struct {
	OrgID       string
	Title       string
	Description string
	Severity    string
	AssignedTo  *string
	ActorID     string
}

// NCRService manages the non-conformance report lifecycle: draft -> open ->
// closed, a 3-state instance of the same rule-table machinery as the quality
// graph, with numbers assigned once at creation.
type NCRService interface {
	Create(ctx context.Context, req CreateNCRRequest) (*entity.NCR, error)
	Get(ctx context.Context, orgID, id string) (*entity.NCR, error)
	List(ctx context.Context, orgID string, limit, offset int) ([]*entity.NCR, error)
	ChangeStatus(ctx context.Context, orgID, id string, to transition.State, reason, actorID string) (*ChangeStatusResult, error)
}

type ncrServiceImpl struct {
	rules       *transition.RuleSet
	validator   *transition.Validator
	ncrRepo     port.NCRRepository
	historyRepo port.HistoryRepository
	numbering   NumberingService
	txManager   port.TransactionManager
	logger      Logger
}

// NewNCRService creates an NCRService.
func NewNCRService(
	ncrRepo port.NCRRepository,
	historyRepo port.HistoryRepository,
	inspections port.InspectionRepository,
	users port.UserRepository,
	numbering NumberingService,
	txManager port.TransactionManager,
	logger Logger,
) NCRService {
	rules := transition.NCRLifecycleRules()
	return &ncrServiceImpl{
		rules:       rules,
		validator:   transition.NewValidator(rules, &inspectionChecker{inspections: inspections}, &approvalChecker{users: users}),
		ncrRepo:     ncrRepo,
		historyRepo: historyRepo,
		numbering:   numbering,
		txManager:   txManager,
		logger:      logger,
	}
}

// Create persists a draft NCR with a freshly issued number and writes the
// initial history entry (null from-status).
func (s *ncrServiceImpl) Create(ctx context.Context, req CreateNCRRequest) (*entity.NCR, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, &qerrors.ValidationError{Errors: []string{"Title is required"}}
	}

	now := time.Now().UTC()
	number, err := s.numbering.Next(ctx, req.OrgID, ncrPrefix, now.Year())
	if err != nil {
		return nil, err
	}

	ncr := &entity.NCR{
		ID:          uuid.NewString(),
		OrgID:       req.OrgID,
		Number:      number,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Severity:    req.Severity,
		Status:      string(transition.NCRDraft),
		CreatedBy:   req.ActorID,
		AssignedTo:  req.AssignedTo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ncrRepo.Create(txCtx, ncr); err != nil {
			return fmt.Errorf("create ncr: %w", err)
		}
		_, err := s.historyRepo.Append(txCtx, &entity.StatusHistoryEntry{
			OrgID:      req.OrgID,
			EntityType: status.EntityNCR,
			EntityID:   ncr.ID,
			FromStatus: nil,
			ToStatus:   ncr.Status,
			ChangedBy:  req.ActorID,
			ChangedAt:  now,
		})
		if err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("NCR created", "ncr_id", ncr.ID, "ncr_number", ncr.Number, "created_by", req.ActorID)
	return ncr, nil
}

// Get retrieves one NCR.
func (s *ncrServiceImpl) Get(ctx context.Context, orgID, id string) (*entity.NCR, error) {
	return s.ncrRepo.GetByID(ctx, orgID, id)
}

// List returns NCRs for an org, newest first.
func (s *ncrServiceImpl) List(ctx context.Context, orgID string, limit, offset int) ([]*entity.NCR, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.ncrRepo.List(ctx, orgID, limit, offset)
}

// ChangeStatus moves an NCR through its lifecycle with the same
// validate-mutate-audit contract as the quality executor. Closing without an
// approval-capable role is a PermissionError rather than a plain validation
// failure, since closure is a role-gated action.
func (s *ncrServiceImpl) ChangeStatus(ctx context.Context, orgID, id string, to transition.State, reason, actorID string) (*ChangeStatusResult, error) {
	ncr, err := s.ncrRepo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	observed := ncr.Status

	result, err := s.validator.Validate(ctx, transition.Request{
		OrgID:      orgID,
		EntityType: status.EntityNCR,
		EntityID:   id,
		From:       transition.State(observed),
		To:         to,
		Reason:     reason,
		ActorID:    actorID,
	})
	if err != nil {
		return nil, err
	}
	if !result.IsValid {
		if to == transition.NCRClosed && result.RequiredActions.ApprovalRequired && len(result.Errors) == 1 {
			return nil, &qerrors.PermissionError{Message: transition.MsgApprovalRequired}
		}
		return nil, qerrors.NewValidationError(result)
	}

	now := time.Now().UTC()
	var closedBy *string
	var closedAt *time.Time
	if to == transition.NCRClosed {
		closedBy = &actorID
		closedAt = &now
	}

	var historyID string
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		fresh, err := s.ncrRepo.GetByID(txCtx, orgID, id)
		if err != nil {
			return err
		}
		if fresh.Status != observed {
			return &qerrors.ConcurrencyError{
				EntityType: status.EntityNCR.String(),
				EntityID:   id,
				Expected:   observed,
				Actual:     fresh.Status,
			}
		}

		if err := s.ncrRepo.UpdateStatus(txCtx, orgID, id, string(to), closedBy, closedAt); err != nil {
			return fmt.Errorf("update ncr status: %w", err)
		}

		from := observed
		entryReason := strings.TrimSpace(reason)
		var reasonPtr *string
		if entryReason != "" {
			reasonPtr = &entryReason
		}
		historyID, err = s.historyRepo.Append(txCtx, &entity.StatusHistoryEntry{
			OrgID:      orgID,
			EntityType: status.EntityNCR,
			EntityID:   id,
			FromStatus: &from,
			ToStatus:   string(to),
			Reason:     reasonPtr,
			ChangedBy:  actorID,
			ChangedAt:  now,
		})
		if err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("NCR status changed", "ncr_id", id, "from", observed, "to", string(to), "changed_by", actorID)
	return &ChangeStatusResult{Success: true, NewStatus: string(to), HistoryID: historyID}, nil
}
