package booking

// EngagementType is the commercial shape of a booking.
type EngagementType string

const (
	EngagementFreelance  EngagementType = "freelance"
	EngagementConsulting EngagementType = "consulting"
	EngagementProject    EngagementType = "project"
	EngagementKeynote    EngagementType = "keynote"
	EngagementMentoring  EngagementType = "mentoring"
)

// IsValid returns true if the engagement type is recognized.
func (e EngagementType) IsValid() bool {
	switch e {
	case EngagementFreelance, EngagementConsulting, EngagementProject, EngagementKeynote, EngagementMentoring:
		return true
	}
	return false
}

// UrgencyLevel expresses how quickly the client needs the engagement started.
type UrgencyLevel string

const (
	UrgencyLow    UrgencyLevel = "low"
	UrgencyNormal UrgencyLevel = "normal"
	UrgencyHigh   UrgencyLevel = "high"
	UrgencyUrgent UrgencyLevel = "urgent"
)

// IsValid returns true if the urgency level is recognized.
func (u UrgencyLevel) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyUrgent:
		return true
	}
	return false
}

// ParseUrgencyLevel coerces arbitrary input to a valid urgency level,
// falling back to normal rather than failing.
func ParseUrgencyLevel(s string) UrgencyLevel {
	u := UrgencyLevel(s)
	if !u.IsValid() {
		return UrgencyNormal
	}
	return u
}
