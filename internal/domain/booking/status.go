package booking

import "fmt"

// Status represents the current state of a booking in its lifecycle.
type Status string

const (
	StatusRequest   Status = "request"
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusActive    Status = "active"
	StatusDelivered Status = "delivered"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// InitialStatus is the status every booking is created in.
func InitialStatus() Status { return StatusRequest }

// transitionRules defines the state machine: for each (from, to) edge, the
// actor roles allowed to request it. Rejected, completed and cancelled are
// terminal and have no outgoing edges.
var transitionRules = map[Status]map[Status][]Role{
	StatusRequest: {
		StatusPending:   {RoleProfessional, RoleAdmin},
		StatusAccepted:  {RoleProfessional, RoleAdmin},
		StatusRejected:  {RoleProfessional, RoleAdmin},
		StatusCancelled: {RoleClient, RoleAdmin},
	},
	StatusPending: {
		StatusAccepted:  {RoleProfessional, RoleAdmin},
		StatusRejected:  {RoleProfessional, RoleAdmin},
		StatusCancelled: {RoleClient, RoleAdmin},
	},
	StatusAccepted: {
		StatusActive:    {RoleClient, RoleProfessional, RoleAdmin},
		StatusCancelled: {RoleClient, RoleProfessional, RoleAdmin},
	},
	StatusActive: {
		StatusDelivered: {RoleProfessional, RoleAdmin},
		StatusCancelled: {RoleClient, RoleProfessional, RoleAdmin},
	},
	StatusDelivered: {
		StatusCompleted: {RoleClient, RoleAdmin},
	},
	StatusRejected:  {},
	StatusCompleted: {},
	StatusCancelled: {},
}

// IsValid returns true if the status is a recognized booking status.
func (s Status) IsValid() bool {
	_, exists := transitionRules[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the
// target is in the table, ignoring role permissions.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, exists := transitionRules[s]
	if !exists {
		return false
	}
	_, ok := allowed[target]
	return ok
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s Status) IsTerminal() bool {
	allowed, exists := transitionRules[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// AllowedTargets returns the statuses reachable from this status for the
// given role.
func (s Status) AllowedTargets(role Role) []Status {
	targets := make([]Status, 0, len(transitionRules[s]))
	for to, roles := range transitionRules[s] {
		for _, r := range roles {
			if r == role {
				targets = append(targets, to)
				break
			}
		}
	}
	return targets
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
