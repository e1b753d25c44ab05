package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	bookingDomain "github.com/proconnect/service-engagement/internal/domain/booking"
)

// HistoryModel is the GORM model for the booking_history table. The table is
// append-only and carries no delete column: entries outlive the soft
// deletion of their booking.
type HistoryModel struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey"`
	BookingID        uuid.UUID      `gorm:"type:uuid;index;not null"`
	EventType        string         `gorm:"not null;size:30"`
	FromStatus       *string        `gorm:"size:20"`
	ToStatus         *string        `gorm:"size:20"`
	EventTitle       string         `gorm:"not null;size:255"`
	EventDescription string         `gorm:"type:text"`
	ActorID          uuid.UUID      `gorm:"type:uuid;not null"`
	ActorRole        string         `gorm:"not null;size:20"`
	Metadata         datatypes.JSON `gorm:""`
	CreatedAt        time.Time      `gorm:"not null;index"`
}

// TableName returns the table name for the GORM model.
func (HistoryModel) TableName() string {
	return "booking_history"
}

// GormHistoryRepository is the GORM-based implementation of the
// HistoryRepository contract.
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository.
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Append writes one history entry.
func (r *GormHistoryRepository) Append(ctx context.Context, entry bookingDomain.HistoryEntry) error {
	return r.appendTx(r.db.WithContext(ctx), entry)
}

// appendTx writes one history entry on the given handle, letting booking
// mutations commit their audit record in the same transaction.
func (r *GormHistoryRepository) appendTx(tx *gorm.DB, entry bookingDomain.HistoryEntry) error {
	model, err := toHistoryModel(entry)
	if err != nil {
		return err
	}
	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

// FindByBookingID retrieves history entries ordered by creation time.
func (r *GormHistoryRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID, opts bookingDomain.HistoryListOptions) ([]bookingDomain.HistoryEntry, error) {
	order := "created_at DESC"
	if opts.Ascending {
		order = "created_at ASC"
	}

	query := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order(order)
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	var models []HistoryModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	entries := make([]bookingDomain.HistoryEntry, len(models))
	for i, m := range models {
		entry, err := toDomainHistoryEntry(&m)
		if err != nil {
			return nil, err
		}
		entries[i] = entry
	}
	return entries, nil
}

func toHistoryModel(entry bookingDomain.HistoryEntry) (*HistoryModel, error) {
	model := &HistoryModel{
		ID:               entry.ID,
		BookingID:        entry.BookingID,
		EventType:        string(entry.EventType),
		EventTitle:       entry.EventTitle,
		EventDescription: entry.EventDescription,
		ActorID:          entry.ActorID,
		ActorRole:        string(entry.ActorRole),
		CreatedAt:        entry.CreatedAt,
	}
	if entry.FromStatus != nil {
		s := string(*entry.FromStatus)
		model.FromStatus = &s
	}
	if entry.ToStatus != nil {
		s := string(*entry.ToStatus)
		model.ToStatus = &s
	}
	if entry.Metadata != nil {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to encode history metadata: %w", err)
		}
		model.Metadata = datatypes.JSON(raw)
	}
	return model, nil
}

func toDomainHistoryEntry(m *HistoryModel) (bookingDomain.HistoryEntry, error) {
	entry := bookingDomain.HistoryEntry{
		ID:               m.ID,
		BookingID:        m.BookingID,
		EventType:        bookingDomain.EventType(m.EventType),
		EventTitle:       m.EventTitle,
		EventDescription: m.EventDescription,
		ActorID:          m.ActorID,
		ActorRole:        bookingDomain.Role(m.ActorRole),
		CreatedAt:        m.CreatedAt,
	}
	if m.FromStatus != nil {
		s := bookingDomain.Status(*m.FromStatus)
		entry.FromStatus = &s
	}
	if m.ToStatus != nil {
		s := bookingDomain.Status(*m.ToStatus)
		entry.ToStatus = &s
	}
	if len(m.Metadata) > 0 {
		meta := make(map[string]interface{})
		if err := json.Unmarshal(m.Metadata, &meta); err != nil {
			return bookingDomain.HistoryEntry{}, fmt.Errorf("failed to decode history metadata: %w", err)
		}
		entry.Metadata = meta
	}
	return entry, nil
}
