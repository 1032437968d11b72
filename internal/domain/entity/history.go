package entity

import (
	"time"

	"github.com/provalon/quality-engine/internal/domain/status"
)

// StatusHistoryEntry is one link in an entity's append-only audit chain.
// Entries are never mutated or deleted after insert. FromStatus is nil only
// for the entity's first-ever status assignment.
type StatusHistoryEntry struct {
	ID            string            `json:"id"`
	OrgID         string            `json:"org_id"`
	EntityType    status.EntityType `json:"entity_type"`
	EntityID      string            `json:"entity_id"`
	FromStatus    *string           `json:"from_status"`
	ToStatus      string            `json:"to_status"`
	Reason        *string           `json:"reason"`
	InspectionID  *string           `json:"inspection_id,omitempty"`
	ChangedBy     string            `json:"changed_by"`
	ChangedByName string            `json:"changed_by_name"`
	ChangedAt     time.Time         `json:"changed_at"`
}
