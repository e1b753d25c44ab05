package booking

import (
	"time"

	"github.com/google/uuid"
)

// Requirement describes one thing the client expects delivered. Requirements
// belong to a booking but are deliberately not gated on its status:
// participants gather them progressively at any lifecycle stage.
type Requirement struct {
	id                  uuid.UUID
	bookingID           uuid.UUID
	requirementType     string
	title               string
	description         string
	isMandatory         bool
	priority            int
	skillID             *uuid.UUID
	requiredProficiency string
	minYearsExperience  *int
	deliverableFormat   string
	expectedQuantity    *int
	createdAt           time.Time
	updatedAt           time.Time
	deletedAt           *time.Time
}

// RequirementParams holds the caller-supplied data for a new requirement.
type RequirementParams struct {
	RequirementType     string
	Title               string
	Description         string
	IsMandatory         bool
	Priority            int
	SkillID             *uuid.UUID
	RequiredProficiency string
	MinYearsExperience  *int
	DeliverableFormat   string
	ExpectedQuantity    *int
}

// NewRequirement creates a requirement for the given booking.
func NewRequirement(bookingID uuid.UUID, p RequirementParams) (*Requirement, error) {
	title := sanitizeText(p.Title)
	if title == "" {
		return nil, NewValidationError(CodeMissingTitle, "requirement title is required")
	}
	now := time.Now().UTC()
	return &Requirement{
		id:                  uuid.New(),
		bookingID:           bookingID,
		requirementType:     sanitizeText(p.RequirementType),
		title:               title,
		description:         sanitizeText(p.Description),
		isMandatory:         p.IsMandatory,
		priority:            p.Priority,
		skillID:             p.SkillID,
		requiredProficiency: sanitizeText(p.RequiredProficiency),
		minYearsExperience:  p.MinYearsExperience,
		deliverableFormat:   sanitizeText(p.DeliverableFormat),
		expectedQuantity:    p.ExpectedQuantity,
		createdAt:           now,
		updatedAt:           now,
	}, nil
}

// ReconstructRequirement rebuilds a Requirement from persistence data.
func ReconstructRequirement(
	id, bookingID uuid.UUID,
	requirementType, title, description string,
	isMandatory bool,
	priority int,
	skillID *uuid.UUID,
	requiredProficiency string,
	minYearsExperience *int,
	deliverableFormat string,
	expectedQuantity *int,
	createdAt, updatedAt time.Time,
	deletedAt *time.Time,
) *Requirement {
	return &Requirement{
		id:                  id,
		bookingID:           bookingID,
		requirementType:     requirementType,
		title:               title,
		description:         description,
		isMandatory:         isMandatory,
		priority:            priority,
		skillID:             skillID,
		requiredProficiency: requiredProficiency,
		minYearsExperience:  minYearsExperience,
		deliverableFormat:   deliverableFormat,
		expectedQuantity:    expectedQuantity,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
		deletedAt:           deletedAt,
	}
}

// ID returns the requirement's unique identifier.
func (r *Requirement) ID() uuid.UUID { return r.id }

// BookingID returns the owning booking's identifier.
func (r *Requirement) BookingID() uuid.UUID { return r.bookingID }

// RequirementType returns the requirement type label.
func (r *Requirement) RequirementType() string { return r.requirementType }

// Title returns the requirement title.
func (r *Requirement) Title() string { return r.title }

// Description returns the requirement description.
func (r *Requirement) Description() string { return r.description }

// IsMandatory returns whether the requirement is mandatory.
func (r *Requirement) IsMandatory() bool { return r.isMandatory }

// Priority returns the ascending sort key.
func (r *Requirement) Priority() int { return r.priority }

// SkillID returns the referenced skill, or nil.
func (r *Requirement) SkillID() *uuid.UUID { return r.skillID }

// RequiredProficiency returns the required proficiency label.
func (r *Requirement) RequiredProficiency() string { return r.requiredProficiency }

// MinYearsExperience returns the minimum years of experience, or nil.
func (r *Requirement) MinYearsExperience() *int { return r.minYearsExperience }

// DeliverableFormat returns the expected deliverable format.
func (r *Requirement) DeliverableFormat() string { return r.deliverableFormat }

// ExpectedQuantity returns the expected deliverable quantity, or nil.
func (r *Requirement) ExpectedQuantity() *int { return r.expectedQuantity }

// CreatedAt returns the creation timestamp.
func (r *Requirement) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (r *Requirement) UpdatedAt() time.Time { return r.updatedAt }

// DeletedAt returns the soft-delete timestamp, or nil if live.
func (r *Requirement) DeletedAt() *time.Time { return r.deletedAt }
