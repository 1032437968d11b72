package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/provalon/quality-engine/internal/application/port"
	"github.com/provalon/quality-engine/internal/domain/entity"
	"github.com/provalon/quality-engine/internal/domain/status"
	"github.com/provalon/quality-engine/internal/infrastructure/persistence/sqlite"
)

// HistoryRepository implements port.HistoryRepository over the append-only
// quality_status_history table. No update or delete statements exist here.
type HistoryRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sqlite.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Append inserts one history entry and returns its id.
func (r *HistoryRepository) Append(ctx context.Context, e *entity.StatusHistoryEntry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	query := `
		INSERT INTO quality_status_history (
			id, org_id, entity_type, entity_id, from_status, to_status,
			reason, inspection_id, changed_by, changed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		e.ID,
		e.OrgID,
		string(e.EntityType),
		e.EntityID,
		e.FromStatus,
		e.ToStatus,
		e.Reason,
		e.InspectionID,
		e.ChangedBy,
		e.ChangedAt,
	)
	if err != nil {
		r.logger.Error("Failed to append history entry",
			zap.String("entity_type", string(e.EntityType)),
			zap.String("entity_id", e.EntityID),
			zap.Error(err))
		return "", fmt.Errorf("failed to append history: %w", err)
	}
	return e.ID, nil
}

// ListByEntity returns entries newest first, enriched with the actor's
// display name from the user directory.
func (r *HistoryRepository) ListByEntity(ctx context.Context, orgID string, entityType status.EntityType, entityID string, limit, offset int) ([]*entity.StatusHistoryEntry, error) {
	query := `
		SELECT h.id, h.org_id, h.entity_type, h.entity_id, h.from_status,
			h.to_status, h.reason, h.inspection_id, h.changed_by,
			COALESCE(u.full_name, h.changed_by), h.changed_at
		FROM quality_status_history h
		LEFT JOIN users u ON u.id = h.changed_by
		WHERE h.org_id = ? AND h.entity_type = ? AND h.entity_id = ?
		ORDER BY h.changed_at DESC, h.rowid DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query,
		orgID, string(entityType), entityID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list history",
			zap.String("entity_type", string(entityType)),
			zap.String("entity_id", entityID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	entries := []*entity.StatusHistoryEntry{}
	for rows.Next() {
		var e entity.StatusHistoryEntry
		var entityTypeRaw string
		err := rows.Scan(
			&e.ID,
			&e.OrgID,
			&entityTypeRaw,
			&e.EntityID,
			&e.FromStatus,
			&e.ToStatus,
			&e.Reason,
			&e.InspectionID,
			&e.ChangedBy,
			&e.ChangedByName,
			&e.ChangedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.EntityType = status.EntityType(entityTypeRaw)
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
