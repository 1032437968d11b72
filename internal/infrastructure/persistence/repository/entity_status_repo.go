package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/provalon/quality-engine/internal/application/port"
	"github.com/provalon/quality-engine/internal/domain/status"
	"github.com/provalon/quality-engine/internal/infrastructure/persistence/sqlite"
)

// EntityStatusRepository implements port.EntityStatusRepository over the
// entity_status table, one row per tracked entity.
type EntityStatusRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewEntityStatusRepository creates a new entity status repository
func NewEntityStatusRepository(db *sqlite.DB, logger *zap.Logger) port.EntityStatusRepository {
	return &EntityStatusRepository{
		db:     db,
		logger: logger,
	}
}

// GetCurrent returns the entity's current status pointer.
func (r *EntityStatusRepository) GetCurrent(ctx context.Context, orgID string, entityType status.EntityType, entityID string) (string, bool, error) {
	query := `
		SELECT current_status FROM entity_status
		WHERE org_id = ? AND entity_type = ? AND entity_id = ?
	`

	var current string
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, orgID, string(entityType), entityID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		r.logger.Error("Failed to read current status",
			zap.String("entity_type", string(entityType)),
			zap.String("entity_id", entityID),
			zap.Error(err))
		return "", false, fmt.Errorf("failed to read current status: %w", err)
	}
	return current, true, nil
}

// SetCurrent updates the status pointer.
func (r *EntityStatusRepository) SetCurrent(ctx context.Context, orgID string, entityType status.EntityType, entityID string, newStatus string) error {
	query := `
		UPDATE entity_status SET current_status = ?, updated_at = ?
		WHERE org_id = ? AND entity_type = ? AND entity_id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		newStatus, time.Now().UTC(), orgID, string(entityType), entityID)
	if err != nil {
		r.logger.Error("Failed to update status",
			zap.String("entity_type", string(entityType)),
			zap.String("entity_id", entityID),
			zap.Error(err))
		return fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no status row for %s/%s", entityType, entityID)
	}
	return nil
}

// Register creates the status row for a newly tracked entity.
func (r *EntityStatusRepository) Register(ctx context.Context, orgID string, entityType status.EntityType, entityID string, initial string) error {
	query := `
		INSERT INTO entity_status (org_id, entity_type, entity_id, current_status, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		orgID, string(entityType), entityID, initial, time.Now().UTC())
	if err != nil {
		r.logger.Error("Failed to register entity",
			zap.String("entity_type", string(entityType)),
			zap.String("entity_id", entityID),
			zap.Error(err))
		return fmt.Errorf("failed to register entity: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.EntityStatusRepository = (*EntityStatusRepository)(nil)
