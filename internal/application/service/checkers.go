package service

import (
	"context"

	"github.com/provalon/quality-engine/internal/application/port"
	"github.com/provalon/quality-engine/internal/domain/qerrors"
	"github.com/provalon/quality-engine/internal/domain/status"
	"github.com/provalon/quality-engine/internal/domain/transition"
)

// inspectionChecker adapts the inspection repository to the validator's
// predicate contract.
type inspectionChecker struct {
	inspections port.InspectionRepository
}

func (c *inspectionChecker) InspectionExists(ctx context.Context, orgID string, entityType status.EntityType, entityID string) (bool, error) {
	return c.inspections.ExistsForEntity(ctx, orgID, entityType, entityID)
}

// approvalChecker adapts the user directory to the validator's predicate
// contract. An unknown actor simply lacks the role; it is not an error.
type approvalChecker struct {
	users port.UserRepository
}

func (c *approvalChecker) HasApprovalRole(ctx context.Context, userID string) (bool, error) {
	user, err := c.users.GetByID(ctx, userID)
	if err != nil {
		if qerrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return user.Role.CanApprove(), nil
}

var (
	_ transition.InspectionChecker = (*inspectionChecker)(nil)
	_ transition.ApprovalChecker   = (*approvalChecker)(nil)
)
