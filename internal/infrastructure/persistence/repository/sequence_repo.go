package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/provalon/quality-engine/internal/application/port"
	"github.com/provalon/quality-engine/internal/infrastructure/persistence/sqlite"
)

// SequenceRepository implements port.SequenceRepository over the
// sequence_counters table. The increment is a single upsert so concurrent
// callers can never read the same value; there is no read-then-write window.
type SequenceRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *sqlite.DB, logger *zap.Logger) port.SequenceRepository {
	return &SequenceRepository{
		db:     db,
		logger: logger,
	}
}

// Increment bumps the counter for (org, prefix, year) and returns the new
// value. The first call for a key creates the counter at 1.
func (r *SequenceRepository) Increment(ctx context.Context, orgID, prefix string, year int) (int64, error) {
	query := `
		INSERT INTO sequence_counters (org_id, prefix, year, value)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(org_id, prefix, year) DO UPDATE SET value = value + 1
		RETURNING value
	`

	var value int64
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, orgID, prefix, year).Scan(&value)
	if err != nil {
		r.logger.Error("Failed to increment sequence counter",
			zap.String("org_id", orgID),
			zap.String("prefix", prefix),
			zap.Int("year", year),
			zap.Error(err))
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}
	return value, nil
}

// Verify interface compliance
var _ port.SequenceRepository = (*SequenceRepository)(nil)
