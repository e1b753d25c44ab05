package booking

import "github.com/google/uuid"

// Role is an actor's relationship to a specific booking.
type Role string

const (
	RoleClient       Role = "client"
	RoleProfessional Role = "professional"
	RoleAdmin        Role = "admin"
	RoleUnknown      Role = "unknown"
)

// Actor identifies the authenticated caller of a mutating operation. Admin
// is an externally asserted capability of the caller's session; it is never
// derived from participant-id matching.
type Actor struct {
	ID    uuid.UUID
	Admin bool
}

// ResolveRole maps an actor to their role on this booking. Admin wins over
// participant membership; otherwise the actor's id is matched against the
// client and professional ids.
func (b *Booking) ResolveRole(actor Actor) Role {
	if actor.Admin {
		return RoleAdmin
	}
	switch actor.ID {
	case b.clientID:
		return RoleClient
	case b.professionalID:
		return RoleProfessional
	}
	return RoleUnknown
}

// IsParticipant returns true if the user is the booking's client or professional.
func (b *Booking) IsParticipant(userID uuid.UUID) bool {
	return userID == b.clientID || userID == b.professionalID
}
