package booking

import (
	"context"

	"github.com/google/uuid"
)

// Stats holds aggregate booking statistics.
type Stats struct {
	Total            int64              `json:"total"`
	ByStatus         map[string]int64   `json:"by_status"`
	ByEngagementType map[string]int64   `json:"by_engagement_type"`
	TotalValue       float64            `json:"total_value"`
	AverageRate      float64            `json:"average_rate"`
}

// Repository defines the persistence contract for booking aggregates. All
// read paths exclude soft-deleted bookings.
type Repository interface {
	// FindByID retrieves a live booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByClientID retrieves bookings where the user is the client, newest first.
	FindByClientID(ctx context.Context, clientID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByProfessionalID retrieves bookings where the user is the professional, newest first.
	FindByProfessionalID(ctx context.Context, professionalID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all live bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// Stats returns aggregate statistics over live bookings (admin).
	Stats(ctx context.Context) (*Stats, error)

	// Save persists a new booking.
	Save(ctx context.Context, b *Booking) error

	// UpdateStatus persists a status transition with a compare-and-swap on
	// the expected prior status, writing the history entry in the same
	// transaction. Returns ErrStatusConflict if the row is no longer in the
	// expected status.
	UpdateStatus(ctx context.Context, b *Booking, expected Status, entry HistoryEntry) error

	// UpdateFields persists a non-status field update; entry, when non-nil,
	// is appended in the same transaction.
	UpdateFields(ctx context.Context, b *Booking, entry *HistoryEntry) error

	// SoftDelete marks the booking deleted and appends the audit entry in
	// the same transaction.
	SoftDelete(ctx context.Context, b *Booking, entry HistoryEntry) error
}

// RequirementRepository defines persistence for booking requirements.
type RequirementRepository interface {
	// Save persists a new requirement.
	Save(ctx context.Context, r *Requirement) error

	// FindByID retrieves a live requirement.
	FindByID(ctx context.Context, id uuid.UUID) (*Requirement, error)

	// FindByBookingID retrieves live requirements for a booking ordered by
	// priority ascending.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*Requirement, error)

	// SoftDelete marks a requirement deleted.
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// HistoryRepository defines persistence for the append-only audit trail.
// There is no update or delete: entries are immutable once written.
type HistoryRepository interface {
	// Append writes one history entry.
	Append(ctx context.Context, entry HistoryEntry) error

	// FindByBookingID retrieves history entries ordered by creation time.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID, opts HistoryListOptions) ([]HistoryEntry, error)
}
