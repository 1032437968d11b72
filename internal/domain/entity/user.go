package entity

import "github.com/provalon/quality-engine/internal/domain/status"

// User is the slice of the user directory the engine needs: a display name
// for audit enrichment and a role for permission gating.
type User struct {
	ID       string      `json:"id"`
	OrgID    string      `json:"org_id"`
	FullName string      `json:"full_name"`
	Role     status.Role `json:"role"`
}
