package event

// Type identifies the type of domain event
type Type string

const (
	TypeEngagementCreated Type = "engagement.created"
	TypeStateChanged      Type = "engagement.state_changed"
	TypeWorkpaperSigned   Type = "workpaper.signed"
	TypeWorkpaperLocked   Type = "workpaper.locked"
	TypeSignoffRevoked    Type = "workpaper.signoff_revoked"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeEngagementCreated,
		TypeStateChanged,
		TypeWorkpaperSigned,
		TypeWorkpaperLocked,
		TypeSignoffRevoked:
		return true
	default:
		return false
	}
}
