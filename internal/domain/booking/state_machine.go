package booking

// TransitionContext carries the contextual data a transition may need for
// its side effects. Absent fields are simply not applied.
type TransitionContext struct {
	AgreedRate         *float64
	AgreedRateType     string
	RejectionReason    string
	CancellationReason string
}

// ValidateTransition is the pure decision function of the state machine.
// The checks run in a fixed order: unknown actors are rejected before the
// table is consulted, a no-op transition is rejected next, then table
// membership, then the role permission on the edge. It performs no mutation.
func ValidateTransition(from, to Status, role Role) error {
	if role == RoleUnknown {
		return NewUnauthorizedError("actor has no relationship to this booking")
	}
	if from == to {
		return NewNoStateChangeError(from)
	}
	allowed, exists := transitionRules[from]
	if !exists {
		return NewInvalidTransitionError(from, to)
	}
	roles, ok := allowed[to]
	if !ok {
		return NewInvalidTransitionError(from, to)
	}
	for _, r := range roles {
		if r == role {
			return nil
		}
	}
	return NewUnauthorizedError("role " + string(role) + " may not transition booking from " + string(from) + " to " + string(to))
}
