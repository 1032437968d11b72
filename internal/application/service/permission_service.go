package service

import (
	"context"
	"fmt"

	"github.com/provalon/quality-engine/internal/application/port"
	"github.com/provalon/quality-engine/internal/domain/qerrors"
	"github.com/provalon/quality-engine/internal/domain/status"
	"github.com/provalon/quality-engine/internal/domain/transition"
)

// Permissions are the UI affordances derived from an entity's current status
// and the actor's role. Read-only; nothing is persisted.
type Permissions struct {
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
	CanClose  bool `json:"can_close"`
	CanAssign bool `json:"can_assign"`
}

// PermissionService derives per-entity permissions for an actor.
type PermissionService interface {
	Permissions(ctx context.Context, orgID string, entityType status.EntityType, entityID, actorID string) (*Permissions, error)
}

type permissionServiceImpl struct {
	statusRepo port.EntityStatusRepository
	ncrRepo    port.NCRRepository
	users      port.UserRepository
	logger     Logger
}

// NewPermissionService creates a PermissionService.
func NewPermissionService(
	statusRepo port.EntityStatusRepository,
	ncrRepo port.NCRRepository,
	users port.UserRepository,
	logger Logger,
) PermissionService {
	return &permissionServiceImpl{
		statusRepo: statusRepo,
		ncrRepo:    ncrRepo,
		users:      users,
		logger:     logger,
	}
}

// Permissions computes the actor's allowed actions on the entity.
// Draft-like states (PENDING, NCR draft) permit edit and delete for any
// non-viewer role; closing and assigning are reserved for approval-capable
// roles, and nothing can be done to a closed document.
func (s *permissionServiceImpl) Permissions(ctx context.Context, orgID string, entityType status.EntityType, entityID, actorID string) (*Permissions, error) {
	if !entityType.IsValid() {
		return nil, &qerrors.ValidationError{Errors: []string{fmt.Sprintf("Invalid entity type: %s", entityType)}}
	}

	user, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	current, err := s.currentStatus(ctx, orgID, entityType, entityID)
	if err != nil {
		return nil, err
	}

	draftLike := current == status.StatusPending.String() || current == string(transition.NCRDraft)
	terminal := current == string(transition.NCRClosed)
	openDoc := entityType == status.EntityNCR && current == string(transition.NCROpen)
	approver := user.Role.CanApprove()

	return &Permissions{
		CanEdit:   draftLike && user.Role != status.RoleViewer,
		CanDelete: draftLike && user.Role != status.RoleViewer,
		CanClose:  openDoc && approver,
		CanAssign: approver && !terminal,
	}, nil
}

func (s *permissionServiceImpl) currentStatus(ctx context.Context, orgID string, entityType status.EntityType, entityID string) (string, error) {
	if entityType == status.EntityNCR {
		ncr, err := s.ncrRepo.GetByID(ctx, orgID, entityID)
		if err != nil {
			return "", err
		}
		return ncr.Status, nil
	}

	current, found, err := s.statusRepo.GetCurrent(ctx, orgID, entityType, entityID)
	if err != nil {
		return "", fmt.Errorf("read current status: %w", err)
	}
	if !found {
		return "", &qerrors.NotFoundError{Resource: entityType.String(), ID: entityID}
	}
	return current, nil
}
