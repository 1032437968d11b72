package entity

import "time"

// NCR is a non-conformance report. Number is issued once at creation from the
// org's sequence counter and never changes; Status moves through the
// draft -> open -> closed lifecycle.
type NCR struct {
	ID          string     `json:"id"`
	OrgID       string     `json:"org_id"`
	Number      string     `json:"number"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Severity    string     `json:"severity"`
	Status      string     `json:"status"`
	CreatedBy   string     `json:"created_by"`
	AssignedTo  *string    `json:"assigned_to,omitempty"`
	ClosedBy    *string    `json:"closed_by,omitempty"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
