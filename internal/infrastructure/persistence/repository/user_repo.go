package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/provalon/quality-engine/internal/application/port"
	"github.com/provalon/quality-engine/internal/domain/entity"
	"github.com/provalon/quality-engine/internal/domain/qerrors"
	"github.com/provalon/quality-engine/internal/domain/status"
	"github.com/provalon/quality-engine/internal/infrastructure/persistence/sqlite"
)

// UserRepository implements port.UserRepository over the users table.
type UserRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlite.DB, logger *zap.Logger) port.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*entity.User, error) {
	query := `SELECT id, org_id, full_name, role FROM users WHERE id = ?`

	var user entity.User
	var role string
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, userID).Scan(
		&user.ID, &user.OrgID, &user.FullName, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &qerrors.NotFoundError{Resource: "user", ID: userID}
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Role = status.Role(role)
	return &user, nil
}

// Verify interface compliance
var _ port.UserRepository = (*UserRepository)(nil)
