package signoff

// Type identifies a step in the workpaper sign-off chain
type Type string

const (
	TypePreparer Type = "preparer"
	TypeReviewer Type = "reviewer"
	TypeManager  Type = "manager"
	TypePartner  Type = "partner"
)

// Hierarchy is the fixed chain order. Every workpaper is signed in exactly
// this sequence; there is no skip primitive.
var Hierarchy = []Type{TypePreparer, TypeReviewer, TypeManager, TypePartner}

var validTypes = map[Type]bool{
	TypePreparer: true,
	TypeReviewer: true,
	TypeManager:  true,
	TypePartner:  true,
}

// IsValid returns true if the type is one of the four chain steps
func (t Type) IsValid() bool {
	return validTypes[t]
}

// String returns the string representation of the sign-off type
func (t Type) String() string {
	return string(t)
}

// Role is the firm-level role of an acting user
type Role string

const (
	RoleStaff    Role = "staff"
	RoleSenior   Role = "senior"
	RoleReviewer Role = "reviewer"
	RoleManager  Role = "manager"
	RolePartner  Role = "partner"
)

// allowedTypes maps each role to the sign-off types it may record. A role
// may sign at or below its authority, so a partner can act as preparer on a
// small engagement. Unknown roles have no entry and are denied everything:
// the lookup fails closed.
var allowedTypes = map[Role]map[Type]bool{
	RoleStaff:    {TypePreparer: true},
	RoleSenior:   {TypePreparer: true, TypeReviewer: true},
	RoleReviewer: {TypeReviewer: true},
	RoleManager:  {TypePreparer: true, TypeReviewer: true, TypeManager: true},
	RolePartner:  {TypePreparer: true, TypeReviewer: true, TypeManager: true, TypePartner: true},
}

// CanRecord returns true if the role is authorized to record the given
// sign-off type
func (r Role) CanRecord(t Type) bool {
	return allowedTypes[r][t]
}

// CanRevoke returns true if the role may revoke an existing sign-off
func (r Role) CanRevoke() bool {
	return r == RoleManager || r == RolePartner
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}
