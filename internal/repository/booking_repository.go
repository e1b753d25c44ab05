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

// BookingModel is the GORM model for the bookings table. Column names are
// the snake_case mirror of the domain field names; that mapping is the only
// schema contract the engine depends on.
type BookingModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ClientID       uuid.UUID `gorm:"type:uuid;index;not null"`
	ProfessionalID uuid.UUID `gorm:"type:uuid;index;not null"`

	Title           string `gorm:"not null;size:200"`
	Description     string `gorm:"not null;type:text"`
	ServiceCategory string `gorm:"size:100"`
	EngagementType  string `gorm:"not null;size:20;index"`

	Status          string     `gorm:"not null;size:20;index"`
	StatusChangedAt *time.Time `gorm:""`
	StatusChangedBy *uuid.UUID `gorm:"type:uuid"`

	ProposedRate     *float64 `gorm:""`
	ProposedRateType string   `gorm:"size:20"`
	AgreedRate       *float64 `gorm:""`
	AgreedRateType   string   `gorm:"size:20"`
	Currency         string   `gorm:"not null;size:3;default:'USD'"`

	StartDate      *time.Time `gorm:""`
	EndDate        *time.Time `gorm:""`
	EstimatedHours *int       `gorm:""`
	FlexibleTiming bool       `gorm:"not null;default:false"`
	Timezone       string     `gorm:"size:64"`

	ClientMessage        string `gorm:"type:text"`
	ProfessionalResponse string `gorm:"type:text"`
	RejectionReason      string `gorm:"size:1000"`
	CancellationReason   string `gorm:"size:1000"`

	DeliveryDate   *time.Time `gorm:""`
	CompletionDate *time.Time `gorm:""`

	UrgencyLevel string `gorm:"not null;size:10;default:'normal'"`
	RemoteWork   bool   `gorm:"not null;default:false"`
	Location     string `gorm:"size:255"`

	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of the booking
// Repository contract.
type GormBookingRepository struct {
	db      *gorm.DB
	history *GormHistoryRepository
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db, history: NewGormHistoryRepository(db)}
}

// FindByID retrieves a live booking. GORM's soft-delete scope keeps
// deleted rows out of every query here.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bookingDomain.NewNotFoundError(id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByClientID retrieves bookings where the user is the client, newest first.
func (r *GormBookingRepository) FindByClientID(ctx context.Context, clientID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaged(ctx, "client_id = ?", clientID, page, limit)
}

// FindByProfessionalID retrieves bookings where the user is the professional, newest first.
func (r *GormBookingRepository) FindByProfessionalID(ctx context.Context, professionalID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaged(ctx, "professional_id = ?", professionalID, page, limit)
}

// ListAll retrieves all live bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaged(ctx, "", nil, page, limit)
}

func (r *GormBookingRepository) findPaged(ctx context.Context, cond string, arg interface{}, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{})
	if cond != "" {
		query = query.Where(cond, arg)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// UpdateStatus persists a status transition with a compare-and-swap on the
// expected prior status. The status write and its history entry commit in
// one transaction, so the audit trail can never desynchronize from the
// live status. A concurrent transition leaves the row in a different
// status, making RowsAffected zero.
func (r *GormBookingRepository) UpdateStatus(ctx context.Context, bk *bookingDomain.Booking, expected bookingDomain.Status, entry bookingDomain.HistoryEntry) error {
	model := toBookingModel(bk)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&BookingModel{}).
			Where("id = ? AND status = ?", model.ID, string(expected)).
			Updates(map[string]interface{}{
				"status":              model.Status,
				"status_changed_at":   model.StatusChangedAt,
				"status_changed_by":   model.StatusChangedBy,
				"agreed_rate":         model.AgreedRate,
				"agreed_rate_type":    model.AgreedRateType,
				"rejection_reason":    model.RejectionReason,
				"cancellation_reason": model.CancellationReason,
				"start_date":          model.StartDate,
				"delivery_date":       model.DeliveryDate,
				"completion_date":     model.CompletionDate,
				"updated_at":          model.UpdatedAt,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update booking status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return bookingDomain.ErrStatusConflict
		}
		return r.history.appendTx(tx, entry)
	})
}

// UpdateFields persists a non-status field update; the history entry, when
// present, commits in the same transaction.
func (r *GormBookingRepository) UpdateFields(ctx context.Context, bk *bookingDomain.Booking, entry *bookingDomain.HistoryEntry) error {
	model := toBookingModel(bk)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&BookingModel{}).
			Where("id = ?", model.ID).
			Updates(map[string]interface{}{
				"title":                 model.Title,
				"description":           model.Description,
				"client_message":        model.ClientMessage,
				"professional_response": model.ProfessionalResponse,
				"proposed_rate":         model.ProposedRate,
				"proposed_rate_type":    model.ProposedRateType,
				"agreed_rate":           model.AgreedRate,
				"agreed_rate_type":      model.AgreedRateType,
				"start_date":            model.StartDate,
				"end_date":              model.EndDate,
				"estimated_hours":       model.EstimatedHours,
				"urgency_level":         model.UrgencyLevel,
				"location":              model.Location,
				"remote_work":           model.RemoteWork,
				"flexible_timing":       model.FlexibleTiming,
				"updated_at":            model.UpdatedAt,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update booking fields: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return bookingDomain.NewNotFoundError(model.ID.String())
		}
		if entry != nil {
			return r.history.appendTx(tx, *entry)
		}
		return nil
	})
}

// SoftDelete marks the booking deleted and appends the audit entry in the
// same transaction. The row is never physically removed.
func (r *GormBookingRepository) SoftDelete(ctx context.Context, bk *bookingDomain.Booking, entry bookingDomain.HistoryEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", bk.ID()).Delete(&BookingModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to soft-delete booking: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return bookingDomain.NewNotFoundError(bk.ID().String())
		}
		return r.history.appendTx(tx, entry)
	})
}

// Stats returns aggregate statistics over live bookings (admin).
func (r *GormBookingRepository) Stats(ctx context.Context) (*bookingDomain.Stats, error) {
	stats := &bookingDomain.Stats{
		ByStatus:         make(map[string]int64),
		ByEngagementType: make(map[string]int64),
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var byStatus []bucket
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status as key, count(*) as count").
		Group("status").
		Find(&byStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}
	for _, b := range byStatus {
		stats.ByStatus[b.Key] = b.Count
		stats.Total += b.Count
	}

	var byType []bucket
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("engagement_type as key, count(*) as count").
		Group("engagement_type").
		Find(&byType).Error; err != nil {
		return nil, fmt.Errorf("failed to count by engagement type: %w", err)
	}
	for _, b := range byType {
		stats.ByEngagementType[b.Key] = b.Count
	}

	var money struct {
		TotalValue  float64
		AverageRate float64
	}
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("coalesce(sum(agreed_rate), 0) as total_value, coalesce(avg(agreed_rate), 0) as average_rate").
		Where("agreed_rate IS NOT NULL").
		Scan(&money).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate rates: %w", err)
	}
	stats.TotalValue = money.TotalValue
	stats.AverageRate = money.AverageRate

	return stats, nil
}

// --- Conversion helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	s := bk.Snapshot()
	model := &BookingModel{
		ID:                   s.ID,
		ClientID:             s.ClientID,
		ProfessionalID:       s.ProfessionalID,
		Title:                s.Title,
		Description:          s.Description,
		ServiceCategory:      s.ServiceCategory,
		EngagementType:       string(s.EngagementType),
		Status:               string(s.Status),
		StatusChangedAt:      s.StatusChangedAt,
		StatusChangedBy:      s.StatusChangedBy,
		ProposedRate:         s.ProposedRate,
		ProposedRateType:     s.ProposedRateType,
		AgreedRate:           s.AgreedRate,
		AgreedRateType:       s.AgreedRateType,
		Currency:             s.Currency,
		StartDate:            s.StartDate,
		EndDate:              s.EndDate,
		EstimatedHours:       s.EstimatedHours,
		FlexibleTiming:       s.FlexibleTiming,
		Timezone:             s.Timezone,
		ClientMessage:        s.ClientMessage,
		ProfessionalResponse: s.ProfessionalResponse,
		RejectionReason:      s.RejectionReason,
		CancellationReason:   s.CancellationReason,
		DeliveryDate:         s.DeliveryDate,
		CompletionDate:       s.CompletionDate,
		UrgencyLevel:         string(s.UrgencyLevel),
		RemoteWork:           s.RemoteWork,
		Location:             s.Location,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
	if s.DeletedAt != nil {
		model.DeletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	}
	return model
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	var deletedAt *time.Time
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		deletedAt = &t
	}

	return bookingDomain.Reconstruct(bookingDomain.State{
		ID:                   m.ID,
		ClientID:             m.ClientID,
		ProfessionalID:       m.ProfessionalID,
		Title:                m.Title,
		Description:          m.Description,
		ServiceCategory:      m.ServiceCategory,
		EngagementType:       bookingDomain.EngagementType(m.EngagementType),
		Status:               status,
		StatusChangedAt:      m.StatusChangedAt,
		StatusChangedBy:      m.StatusChangedBy,
		ProposedRate:         m.ProposedRate,
		ProposedRateType:     m.ProposedRateType,
		AgreedRate:           m.AgreedRate,
		AgreedRateType:       m.AgreedRateType,
		Currency:             m.Currency,
		StartDate:            m.StartDate,
		EndDate:              m.EndDate,
		EstimatedHours:       m.EstimatedHours,
		FlexibleTiming:       m.FlexibleTiming,
		Timezone:             m.Timezone,
		ClientMessage:        m.ClientMessage,
		ProfessionalResponse: m.ProfessionalResponse,
		RejectionReason:      m.RejectionReason,
		CancellationReason:   m.CancellationReason,
		DeliveryDate:         m.DeliveryDate,
		CompletionDate:       m.CompletionDate,
		UrgencyLevel:         bookingDomain.UrgencyLevel(m.UrgencyLevel),
		RemoteWork:           m.RemoteWork,
		Location:             m.Location,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
		DeletedAt:            deletedAt,
	}), nil
}
