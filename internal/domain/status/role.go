package status

// Role is a closed set of user roles recognized by the quality engine.
// Gating on an enum rather than raw role strings keeps a typo from silently
// disabling an approval check.
type Role string

const (
	RoleViewer          Role = "VIEWER"
	RoleOperator        Role = "OPERATOR"
	RoleQAInspector     Role = "QA_INSPECTOR"
	RoleQAManager       Role = "QA_MANAGER"
	RoleQualityDirector Role = "QUALITY_DIRECTOR"
	RoleAdmin           Role = "ADMIN"
)

var validRoles = map[Role]bool{
	RoleViewer:          true,
	RoleOperator:        true,
	RoleQAInspector:     true,
	RoleQAManager:       true,
	RoleQualityDirector: true,
	RoleAdmin:           true,
}

var approvalRoles = map[Role]bool{
	RoleQAManager:       true,
	RoleQualityDirector: true,
	RoleAdmin:           true,
}

// IsValid returns true if the role is recognized
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanApprove reports whether the role may satisfy approval-gated transitions.
func (r Role) CanApprove() bool {
	return approvalRoles[r]
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}
