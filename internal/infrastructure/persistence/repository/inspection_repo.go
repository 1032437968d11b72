package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/provalon/quality-engine/internal/application/port"
	"github.com/provalon/quality-engine/internal/domain/status"
	"github.com/provalon/quality-engine/internal/infrastructure/persistence/sqlite"
)

// InspectionRepository implements port.InspectionRepository over the
// inspections table.
type InspectionRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewInspectionRepository creates a new inspection repository
func NewInspectionRepository(db *sqlite.DB, logger *zap.Logger) port.InspectionRepository {
	return &InspectionRepository{
		db:     db,
		logger: logger,
	}
}

// ExistsForEntity reports whether any inspection record exists for the entity.
func (r *InspectionRepository) ExistsForEntity(ctx context.Context, orgID string, entityType status.EntityType, entityID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM inspections
			WHERE org_id = ? AND entity_type = ? AND entity_id = ?
		)
	`

	var exists bool
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, orgID, string(entityType), entityID).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check inspection existence",
			zap.String("entity_type", string(entityType)),
			zap.String("entity_id", entityID),
			zap.Error(err))
		return false, fmt.Errorf("failed to check inspection: %w", err)
	}
	return exists, nil
}

// Verify interface compliance
var _ port.InspectionRepository = (*InspectionRepository)(nil)
