package port

import (
	"context"
	"time"

	"github.com/provalon/quality-engine/internal/domain/entity"
	"github.com/provalon/quality-engine/internal/domain/status"
)

// EntityStatusRepository owns the single mutable status pointer per entity.
// SetCurrent is only ever invoked inside the executor's transaction.
type EntityStatusRepository interface {
	// GetCurrent returns the entity's current status. found=false means the
	// entity is unknown to the engine.
	GetCurrent(ctx context.Context, orgID string, entityType status.EntityType, entityID string) (current string, found bool, err error)

	// SetCurrent updates the status pointer.
	SetCurrent(ctx context.Context, orgID string, entityType status.EntityType, entityID string, newStatus string) error

	// Register creates the status row for a newly created entity.
	Register(ctx context.Context, orgID string, entityType status.EntityType, entityID string, initial string) error
}

// HistoryRepository is the append-only audit ledger. Append is transactional
// with EntityStatusRepository.SetCurrent.
type HistoryRepository interface {
	// Append inserts one history entry and returns its id.
	Append(ctx context.Context, e *entity.StatusHistoryEntry) (string, error)

	// ListByEntity returns entries newest first, enriched with the actor's
	// display name. An entity with no history yields an empty slice.
	ListByEntity(ctx context.Context, orgID string, entityType status.EntityType, entityID string, limit, offset int) ([]*entity.StatusHistoryEntry, error)
}

// InspectionRepository answers the inspection-evidence predicate consulted by
// the validator. The inspection subsystem owns the data.
type InspectionRepository interface {
	ExistsForEntity(ctx context.Context, orgID string, entityType status.EntityType, entityID string) (bool, error)
}

// UserRepository is the user-directory collaborator: display names for audit
// enrichment and roles for permission gating.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*entity.User, error)
}

// SequenceRepository issues monotonically increasing document numbers.
// Increment must be atomic at the store level; the first call for a new
// (org, prefix, year) key creates the counter and returns 1.
type SequenceRepository interface {
	Increment(ctx context.Context, orgID, prefix string, year int) (int64, error)
}

// NCRRepository persists non-conformance reports.
type NCRRepository interface {
	Create(ctx context.Context, ncr *entity.NCR) error
	GetByID(ctx context.Context, orgID, id string) (*entity.NCR, error)
	UpdateStatus(ctx context.Context, orgID, id, newStatus string, closedBy *string, closedAt *time.Time) error
	List(ctx context.Context, orgID string, limit, offset int) ([]*entity.NCR, error)
}

// TransactionManager scopes a function to one database transaction.
// Nested calls reuse the outer transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
