package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/provalon/quality-engine/internal/application/port"
	"github.com/provalon/quality-engine/internal/domain/entity"
	"github.com/provalon/quality-engine/internal/domain/qerrors"
	"github.com/provalon/quality-engine/internal/infrastructure/persistence/sqlite"
)

// NCRRepository implements port.NCRRepository over the ncrs table.
type NCRRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewNCRRepository creates a new NCR repository
func NewNCRRepository(db *sqlite.DB, logger *zap.Logger) port.NCRRepository {
	return &NCRRepository{
		db:     db,
		logger: logger,
	}
}

const ncrColumns = `id, org_id, number, title, description, severity, status,
	created_by, assigned_to, closed_by, closed_at, created_at, updated_at`

// Create persists a new NCR.
func (r *NCRRepository) Create(ctx context.Context, ncr *entity.NCR) error {
	query := `
		INSERT INTO ncrs (` + ncrColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		ncr.ID,
		ncr.OrgID,
		ncr.Number,
		ncr.Title,
		ncr.Description,
		ncr.Severity,
		ncr.Status,
		ncr.CreatedBy,
		ncr.AssignedTo,
		ncr.ClosedBy,
		ncr.ClosedAt,
		ncr.CreatedAt,
		ncr.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create NCR",
			zap.String("ncr_id", ncr.ID),
			zap.String("ncr_number", ncr.Number),
			zap.Error(err))
		return fmt.Errorf("failed to create ncr: %w", err)
	}
	return nil
}

// GetByID retrieves one NCR scoped to the org.
func (r *NCRRepository) GetByID(ctx context.Context, orgID, id string) (*entity.NCR, error) {
	query := `SELECT ` + ncrColumns + ` FROM ncrs WHERE org_id = ? AND id = ?`

	ncr, err := r.scanNCR(r.db.Executor(ctx).QueryRowContext(ctx, query, orgID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &qerrors.NotFoundError{Resource: "ncr", ID: id}
	}
	if err != nil {
		r.logger.Error("Failed to get NCR", zap.String("ncr_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get ncr: %w", err)
	}
	return ncr, nil
}

// UpdateStatus moves the NCR to a new status, recording closure fields when
// the document is closed.
func (r *NCRRepository) UpdateStatus(ctx context.Context, orgID, id, newStatus string, closedBy *string, closedAt *time.Time) error {
	query := `
		UPDATE ncrs SET status = ?, closed_by = ?, closed_at = ?, updated_at = ?
		WHERE org_id = ? AND id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		newStatus, closedBy, closedAt, time.Now().UTC(), orgID, id)
	if err != nil {
		r.logger.Error("Failed to update NCR status", zap.String("ncr_id", id), zap.Error(err))
		return fmt.Errorf("failed to update ncr status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return &qerrors.NotFoundError{Resource: "ncr", ID: id}
	}
	return nil
}

// List returns the org's NCRs newest first.
func (r *NCRRepository) List(ctx context.Context, orgID string, limit, offset int) ([]*entity.NCR, error) {
	query := `
		SELECT ` + ncrColumns + ` FROM ncrs
		WHERE org_id = ?
		ORDER BY created_at DESC, number DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, orgID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list NCRs", zap.String("org_id", orgID), zap.Error(err))
		return nil, fmt.Errorf("failed to list ncrs: %w", err)
	}
	defer rows.Close()

	ncrs := []*entity.NCR{}
	for rows.Next() {
		ncr, err := r.scanNCR(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ncr: %w", err)
		}
		ncrs = append(ncrs, ncr)
	}

	return ncrs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *NCRRepository) scanNCR(row rowScanner) (*entity.NCR, error) {
	var ncr entity.NCR
	err := row.Scan(
		&ncr.ID,
		&ncr.OrgID,
		&ncr.Number,
		&ncr.Title,
		&ncr.Description,
		&ncr.Severity,
		&ncr.Status,
		&ncr.CreatedBy,
		&ncr.AssignedTo,
		&ncr.ClosedBy,
		&ncr.ClosedAt,
		&ncr.CreatedAt,
		&ncr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ncr, nil
}

// Verify interface compliance
var _ port.NCRRepository = (*NCRRepository)(nil)
