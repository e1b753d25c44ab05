package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/proconnect/service-engagement/internal/domain/booking"
)

// RequirementModel is the GORM model for the booking_requirements table.
type RequirementModel struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingID           uuid.UUID  `gorm:"type:uuid;index;not null"`
	RequirementType     string     `gorm:"size:50"`
	Title               string     `gorm:"not null;size:255"`
	Description         string     `gorm:"type:text"`
	IsMandatory         bool       `gorm:"not null;default:false"`
	Priority            int        `gorm:"not null;default:0"`
	SkillID             *uuid.UUID `gorm:"type:uuid"`
	RequiredProficiency string     `gorm:"size:50"`
	MinYearsExperience  *int       `gorm:""`
	DeliverableFormat   string     `gorm:"size:100"`
	ExpectedQuantity    *int       `gorm:""`

	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for the GORM model.
func (RequirementModel) TableName() string {
	return "booking_requirements"
}

// GormRequirementRepository is the GORM-based implementation of the
// RequirementRepository contract.
type GormRequirementRepository struct {
	db *gorm.DB
}

// NewGormRequirementRepository creates a new GormRequirementRepository.
func NewGormRequirementRepository(db *gorm.DB) *GormRequirementRepository {
	return &GormRequirementRepository{db: db}
}

// Save persists a new requirement.
func (r *GormRequirementRepository) Save(ctx context.Context, req *bookingDomain.Requirement) error {
	model := toRequirementModel(req)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save requirement: %w", err)
	}
	return nil
}

// FindByID retrieves a live requirement.
func (r *GormRequirementRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Requirement, error) {
	var model RequirementModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bookingDomain.NewError(bookingDomain.CodeRequirementNotFound, "requirement not found")
		}
		return nil, fmt.Errorf("failed to find requirement by ID: %w", err)
	}
	return toDomainRequirement(&model), nil
}

// FindByBookingID retrieves live requirements for a booking ordered by
// priority ascending.
func (r *GormRequirementRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*bookingDomain.Requirement, error) {
	var models []RequirementModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("priority ASC, created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list requirements: %w", err)
	}

	requirements := make([]*bookingDomain.Requirement, len(models))
	for i, m := range models {
		requirements[i] = toDomainRequirement(&m)
	}
	return requirements, nil
}

// SoftDelete marks a requirement deleted.
func (r *GormRequirementRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&RequirementModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to soft-delete requirement: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return bookingDomain.NewError(bookingDomain.CodeRequirementNotFound, "requirement not found")
	}
	return nil
}

func toRequirementModel(req *bookingDomain.Requirement) *RequirementModel {
	model := &RequirementModel{
		ID:                  req.ID(),
		BookingID:           req.BookingID(),
		RequirementType:     req.RequirementType(),
		Title:               req.Title(),
		Description:         req.Description(),
		IsMandatory:         req.IsMandatory(),
		Priority:            req.Priority(),
		SkillID:             req.SkillID(),
		RequiredProficiency: req.RequiredProficiency(),
		MinYearsExperience:  req.MinYearsExperience(),
		DeliverableFormat:   req.DeliverableFormat(),
		ExpectedQuantity:    req.ExpectedQuantity(),
		CreatedAt:           req.CreatedAt(),
		UpdatedAt:           req.UpdatedAt(),
	}
	if req.DeletedAt() != nil {
		model.DeletedAt = gorm.DeletedAt{Time: *req.DeletedAt(), Valid: true}
	}
	return model
}

func toDomainRequirement(m *RequirementModel) *bookingDomain.Requirement {
	var deletedAt *time.Time
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		deletedAt = &t
	}
	return bookingDomain.ReconstructRequirement(
		m.ID, m.BookingID,
		m.RequirementType, m.Title, m.Description,
		m.IsMandatory,
		m.Priority,
		m.SkillID,
		m.RequiredProficiency,
		m.MinYearsExperience,
		m.DeliverableFormat,
		m.ExpectedQuantity,
		m.CreatedAt, m.UpdatedAt,
		deletedAt,
	)
}
