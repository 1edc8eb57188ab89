package models

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleOrganizer UserRole = "organizer"
	RolePlayer    UserRole = "player"
	// RoleSystem is used by internal callers such as the approval workflow.
	RoleSystem UserRole = "system"
)

// Actor is whoever triggered an engine operation. It is passed explicitly
// into services and copied into audit logs and events.
type Actor struct {
	UserID int      `json:"user_id"`
	Role   UserRole `json:"role"`
}

func SystemActor() Actor {
	return Actor{Role: RoleSystem}
}

func (a Actor) CanManageBrackets() bool {
	switch a.Role {
	case RoleAdmin, RoleOrganizer, RoleSystem:
		return true
	}
	return false
}
