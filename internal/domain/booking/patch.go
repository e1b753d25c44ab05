package booking

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"
)

// PatchInput is the untrusted wire form of a non-status field update. All
// fields are optional; nil means "not touched". Numeric-like fields arrive
// as strings where the surrounding product sends them that way.
type PatchInput struct {
	Title                *string
	Description          *string
	ClientMessage        *string
	ProposedRate         *float64
	ProposedRateType     *string
	StartDate            *string
	EndDate              *string
	EstimatedHours       *string
	UrgencyLevel         *string
	ProfessionalResponse *string
	AgreedRate           *float64
	AgreedRateType       *string
	Location             *string
	RemoteWork           *bool
	FlexibleTiming       *bool
}

// ClientPatch holds the fields only the client may update.
type ClientPatch struct {
	Title            *string
	Description      *string
	ClientMessage    *string
	ProposedRate     *float64
	ProposedRateType *string
	StartDate        *time.Time
	EndDate          *time.Time
	EstimatedHours   *int
	UrgencyLevel     *UrgencyLevel
}

// ProfessionalPatch holds the fields only the professional may update.
type ProfessionalPatch struct {
	ProfessionalResponse *string
	AgreedRate           *float64
	AgreedRateType       *string
}

// SharedPatch holds the fields either participant may update.
type SharedPatch struct {
	Location       *string
	RemoteWork     *bool
	FlexibleTiming *bool
}

// Patch is a validated, role-filtered field update. Sections outside the
// resolved role's allow-list are left zero, eliminating runtime field-name
// matching.
type Patch struct {
	Client       ClientPatch
	Professional ProfessionalPatch
	Shared       SharedPatch
}

// IsEmpty returns true if no field survived role filtering.
func (p *Patch) IsEmpty() bool {
	c, pr, sh := p.Client, p.Professional, p.Shared
	return c.Title == nil && c.Description == nil && c.ClientMessage == nil &&
		c.ProposedRate == nil && c.ProposedRateType == nil &&
		c.StartDate == nil && c.EndDate == nil &&
		c.EstimatedHours == nil && c.UrgencyLevel == nil &&
		pr.ProfessionalResponse == nil && pr.AgreedRate == nil && pr.AgreedRateType == nil &&
		sh.Location == nil && sh.RemoteWork == nil && sh.FlexibleTiming == nil
}

// BuildPatch projects the raw input onto the fields the resolved role may
// touch, dropping everything else, then validates and sanitizes the
// survivors. Admin gets the union of all three sections. Every check runs
// before the patch is returned, so a returned patch applies cleanly.
func BuildPatch(role Role, in PatchInput) (*Patch, error) {
	if role == RoleUnknown {
		return nil, NewUnauthorizedError("actor has no relationship to this booking")
	}

	var p Patch

	if role == RoleClient || role == RoleAdmin {
		if in.Title != nil {
			t := sanitizeText(*in.Title)
			if len(t) < titleMinLen || len(t) > titleMaxLen {
				return nil, NewValidationError(CodeInvalidTitleLength,
					fmt.Sprintf("title must be between %d and %d characters", titleMinLen, titleMaxLen))
			}
			p.Client.Title = &t
		}
		if in.Description != nil {
			d := sanitizeText(*in.Description)
			if len(d) < descMinLen || len(d) > descMaxLen {
				return nil, NewValidationError(CodeInvalidDescLength,
					fmt.Sprintf("description must be between %d and %d characters", descMinLen, descMaxLen))
			}
			p.Client.Description = &d
		}
		if in.ClientMessage != nil {
			m := sanitizeText(*in.ClientMessage)
			p.Client.ClientMessage = &m
		}
		if in.ProposedRate != nil {
			if *in.ProposedRate < 0 {
				return nil, NewValidationError(CodeInvalidRate, "proposed rate must not be negative")
			}
			p.Client.ProposedRate = in.ProposedRate
		}
		if in.ProposedRateType != nil {
			t := strings.TrimSpace(*in.ProposedRateType)
			p.Client.ProposedRateType = &t
		}
		if in.StartDate != nil {
			d, err := ParseDate(*in.StartDate)
			if err != nil {
				return nil, err
			}
			p.Client.StartDate = d
		}
		if in.EndDate != nil {
			d, err := ParseDate(*in.EndDate)
			if err != nil {
				return nil, err
			}
			p.Client.EndDate = d
		}
		if in.EstimatedHours != nil {
			p.Client.EstimatedHours = parseIntOrNil(*in.EstimatedHours)
		}
		if in.UrgencyLevel != nil {
			u := ParseUrgencyLevel(*in.UrgencyLevel)
			p.Client.UrgencyLevel = &u
		}
	}

	if role == RoleProfessional || role == RoleAdmin {
		if in.ProfessionalResponse != nil {
			r := sanitizeText(*in.ProfessionalResponse)
			p.Professional.ProfessionalResponse = &r
		}
		if in.AgreedRate != nil {
			if *in.AgreedRate < 0 {
				return nil, NewValidationError(CodeInvalidRate, "agreed rate must not be negative")
			}
			p.Professional.AgreedRate = in.AgreedRate
		}
		if in.AgreedRateType != nil {
			t := strings.TrimSpace(*in.AgreedRateType)
			p.Professional.AgreedRateType = &t
		}
	}

	// Shared fields: any resolved participant role.
	if in.Location != nil {
		l := sanitizeText(*in.Location)
		p.Shared.Location = &l
	}
	if in.RemoteWork != nil {
		p.Shared.RemoteWork = in.RemoteWork
	}
	if in.FlexibleTiming != nil {
		p.Shared.FlexibleTiming = in.FlexibleTiming
	}

	if p.IsEmpty() {
		return nil, NewNoValidUpdatesError()
	}
	return &p, nil
}

// FieldChange records one changed field for the audit trail.
type FieldChange struct {
	Field string
	Value interface{}
}

// significantFields are the patch fields whose change always generates a
// booking_update history entry.
var significantFields = map[string]bool{
	"proposed_rate": true,
	"agreed_rate":   true,
	"start_date":    true,
	"end_date":      true,
}

// ApplyPatch applies a validated patch to the booking and returns the list
// of changed fields. Date ordering is re-checked against the merged result
// before anything is assigned.
func (b *Booking) ApplyPatch(p *Patch) ([]FieldChange, error) {
	start, end := b.startDate, b.endDate
	if p.Client.StartDate != nil {
		start = p.Client.StartDate
	}
	if p.Client.EndDate != nil {
		end = p.Client.EndDate
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, NewValidationError(CodeInvalidDate, "start date must not be after end date")
	}

	var changes []FieldChange
	record := func(field string, value interface{}) {
		changes = append(changes, FieldChange{Field: field, Value: value})
	}

	if v := p.Client.Title; v != nil {
		b.title = *v
		record("title", *v)
	}
	if v := p.Client.Description; v != nil {
		b.description = *v
		record("description", *v)
	}
	if v := p.Client.ClientMessage; v != nil {
		b.clientMessage = *v
		record("client_message", *v)
	}
	if v := p.Client.ProposedRate; v != nil {
		b.proposedRate = v
		record("proposed_rate", *v)
	}
	if v := p.Client.ProposedRateType; v != nil {
		b.proposedRateType = *v
		record("proposed_rate_type", *v)
	}
	if v := p.Client.StartDate; v != nil {
		b.startDate = v
		record("start_date", v.Format("2006-01-02"))
	}
	if v := p.Client.EndDate; v != nil {
		b.endDate = v
		record("end_date", v.Format("2006-01-02"))
	}
	if v := p.Client.EstimatedHours; v != nil {
		b.estimatedHours = v
		record("estimated_hours", *v)
	}
	if v := p.Client.UrgencyLevel; v != nil {
		b.urgencyLevel = *v
		record("urgency_level", string(*v))
	}
	if v := p.Professional.ProfessionalResponse; v != nil {
		b.professionalResponse = *v
		record("professional_response", *v)
	}
	if v := p.Professional.AgreedRate; v != nil {
		b.agreedRate = v
		record("agreed_rate", *v)
	}
	if v := p.Professional.AgreedRateType; v != nil {
		b.agreedRateType = *v
		record("agreed_rate_type", *v)
	}
	if v := p.Shared.Location; v != nil {
		b.location = *v
		record("location", *v)
	}
	if v := p.Shared.RemoteWork; v != nil {
		b.remoteWork = *v
		record("remote_work", *v)
	}
	if v := p.Shared.FlexibleTiming; v != nil {
		b.flexibleTiming = *v
		record("flexible_timing", *v)
	}

	b.updatedAt = time.Now().UTC()
	return changes, nil
}

// SignificantChanges filters a change list down to the fields that must be
// audited.
func SignificantChanges(changes []FieldChange) []FieldChange {
	var out []FieldChange
	for _, c := range changes {
		if significantFields[c.Field] {
			out = append(out, c)
		}
	}
	return out
}

// --- Validation helpers ---

// sanitizeText trims whitespace and HTML-escapes the result so stored text
// is inert when rendered.
func sanitizeText(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

// ParseDate accepts a calendar date ("2006-01-02") or an RFC 3339
// timestamp, normalizing either to a UTC calendar date.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		d := dateOnly(t)
		return &d, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		d := dateOnly(t.UTC())
		return &d, nil
	}
	return nil, NewValidationError(CodeInvalidDate, fmt.Sprintf("unparsable date: %q", s))
}

// parseIntOrNil parses a non-negative integer, returning nil on anything
// unparsable rather than failing the whole patch.
func parseIntOrNil(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return nil
	}
	return &n
}
