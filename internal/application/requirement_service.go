package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/proconnect/service-engagement/internal/domain/booking"
)

// CreateRequirementRequest is the request DTO for adding a requirement.
type CreateRequirementRequest struct {
	RequirementType     string     `json:"requirement_type"`
	Title               string     `json:"title" binding:"required"`
	Description         string     `json:"description"`
	IsMandatory         bool       `json:"is_mandatory"`
	Priority            int        `json:"priority"`
	SkillID             *uuid.UUID `json:"skill_id"`
	RequiredProficiency string     `json:"required_proficiency"`
	MinYearsExperience  *int       `json:"min_years_experience"`
	DeliverableFormat   string     `json:"deliverable_format"`
	ExpectedQuantity    *int       `json:"expected_quantity"`
}

// RequirementDTO is the API response representation of a requirement.
type RequirementDTO struct {
	ID                  uuid.UUID  `json:"id"`
	BookingID           uuid.UUID  `json:"booking_id"`
	RequirementType     string     `json:"requirement_type,omitempty"`
	Title               string     `json:"title"`
	Description         string     `json:"description,omitempty"`
	IsMandatory         bool       `json:"is_mandatory"`
	Priority            int        `json:"priority"`
	SkillID             *uuid.UUID `json:"skill_id,omitempty"`
	RequiredProficiency string     `json:"required_proficiency,omitempty"`
	MinYearsExperience  *int       `json:"min_years_experience,omitempty"`
	DeliverableFormat   string     `json:"deliverable_format,omitempty"`
	ExpectedQuantity    *int       `json:"expected_quantity,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// RequirementService implements the requirement tracker use cases.
// Requirements are deliberately not gated on booking status.
type RequirementService struct {
	bookings     bookingDomain.Repository
	requirements bookingDomain.RequirementRepository
	logger       *zap.Logger
}

// NewRequirementService creates a new RequirementService.
func NewRequirementService(
	bookings bookingDomain.Repository,
	requirements bookingDomain.RequirementRepository,
	logger *zap.Logger,
) *RequirementService {
	return &RequirementService{bookings: bookings, requirements: requirements, logger: logger}
}

// AddRequirement adds a requirement to a booking the actor may write to.
func (s *RequirementService) AddRequirement(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor, req CreateRequirementRequest) (*RequirementDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.ResolveRole(actor) == bookingDomain.RoleUnknown {
		return nil, bookingDomain.NewUnauthorizedError("actor has no relationship to this booking")
	}

	requirement, err := bookingDomain.NewRequirement(bookingID, bookingDomain.RequirementParams{
		RequirementType:     req.RequirementType,
		Title:               req.Title,
		Description:         req.Description,
		IsMandatory:         req.IsMandatory,
		Priority:            req.Priority,
		SkillID:             req.SkillID,
		RequiredProficiency: req.RequiredProficiency,
		MinYearsExperience:  req.MinYearsExperience,
		DeliverableFormat:   req.DeliverableFormat,
		ExpectedQuantity:    req.ExpectedQuantity,
	})
	if err != nil {
		return nil, err
	}

	if err := s.requirements.Save(ctx, requirement); err != nil {
		s.logger.Error("failed to save requirement",
			zap.String("booking_id", bookingID.String()),
			zap.Error(err),
		)
		return nil, bookingDomain.NewInfrastructureError(
			bookingDomain.CodeCreateFailed, "failed to add requirement", err)
	}

	result := toRequirementDTO(requirement)
	return &result, nil
}

// ListRequirements returns a booking's live requirements, priority ascending.
func (s *RequirementService) ListRequirements(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor) ([]RequirementDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.ResolveRole(actor) == bookingDomain.RoleUnknown {
		return nil, bookingDomain.NewUnauthorizedError("actor has no relationship to this booking")
	}

	requirements, err := s.requirements.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	dtos := make([]RequirementDTO, len(requirements))
	for i, r := range requirements {
		dtos[i] = toRequirementDTO(r)
	}
	return dtos, nil
}

// RemoveRequirement soft-deletes one requirement of a booking the actor may
// write to.
func (s *RequirementService) RemoveRequirement(ctx context.Context, bookingID, requirementID uuid.UUID, actor bookingDomain.Actor) error {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if bk.ResolveRole(actor) == bookingDomain.RoleUnknown {
		return bookingDomain.NewUnauthorizedError("actor has no relationship to this booking")
	}

	requirement, err := s.requirements.FindByID(ctx, requirementID)
	if err != nil {
		return err
	}
	if requirement.BookingID() != bookingID {
		return bookingDomain.NewError(bookingDomain.CodeRequirementNotFound,
			"requirement does not belong to this booking")
	}

	if err := s.requirements.SoftDelete(ctx, requirementID); err != nil {
		return bookingDomain.NewInfrastructureError(
			bookingDomain.CodeDeleteFailed, "failed to remove requirement", err)
	}
	return nil
}

func toRequirementDTO(r *bookingDomain.Requirement) RequirementDTO {
	return RequirementDTO{
		ID:                  r.ID(),
		BookingID:           r.BookingID(),
		RequirementType:     r.RequirementType(),
		Title:               r.Title(),
		Description:         r.Description(),
		IsMandatory:         r.IsMandatory(),
		Priority:            r.Priority(),
		SkillID:             r.SkillID(),
		RequiredProficiency: r.RequiredProficiency(),
		MinYearsExperience:  r.MinYearsExperience(),
		DeliverableFormat:   r.DeliverableFormat(),
		ExpectedQuantity:    r.ExpectedQuantity(),
		CreatedAt:           r.CreatedAt(),
		UpdatedAt:           r.UpdatedAt(),
	}
}
