package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType classifies a history entry.
type EventType string

const (
	EventStatusChange   EventType = "status_change"
	EventBookingUpdate  EventType = "booking_update"
	EventBookingDeleted EventType = "booking_deleted"
)

// HistoryEntry is one immutable audit record for a booking. Entries are
// append-only; nothing edits or deletes them, and they survive the soft
// deletion of their booking.
type HistoryEntry struct {
	ID               uuid.UUID
	BookingID        uuid.UUID
	EventType        EventType
	FromStatus       *Status
	ToStatus         *Status
	EventTitle       string
	EventDescription string
	ActorID          uuid.UUID
	ActorRole        Role
	Metadata         map[string]interface{}
	CreatedAt        time.Time
}

// NewStatusChangeEntry builds the audit record for one status transition.
func NewStatusChangeEntry(b *Booking, from Status, actorID uuid.UUID, role Role) HistoryEntry {
	to := b.Status()
	return HistoryEntry{
		ID:               uuid.New(),
		BookingID:        b.ID(),
		EventType:        EventStatusChange,
		FromStatus:       &from,
		ToStatus:         &to,
		EventTitle:       fmt.Sprintf("Status changed from %s to %s", from, to),
		EventDescription: fmt.Sprintf("%s moved the booking to %s", role, to),
		ActorID:          actorID,
		ActorRole:        role,
		CreatedAt:        time.Now().UTC(),
	}
}

// NewUpdateEntry builds the audit record for a significant field update.
func NewUpdateEntry(b *Booking, changes []FieldChange, actorID uuid.UUID, role Role) HistoryEntry {
	meta := make(map[string]interface{}, len(changes))
	fields := make([]interface{}, 0, len(changes))
	for _, c := range changes {
		meta[c.Field] = c.Value
		fields = append(fields, c.Field)
	}
	meta["changed_fields"] = fields
	return HistoryEntry{
		ID:               uuid.New(),
		BookingID:        b.ID(),
		EventType:        EventBookingUpdate,
		EventTitle:       "Booking details updated",
		EventDescription: fmt.Sprintf("%s updated %d field(s)", role, len(changes)),
		ActorID:          actorID,
		ActorRole:        role,
		Metadata:         meta,
		CreatedAt:        time.Now().UTC(),
	}
}

// NewDeletedEntry builds the audit record for a soft deletion.
func NewDeletedEntry(b *Booking, actorID uuid.UUID, role Role) HistoryEntry {
	return HistoryEntry{
		ID:               uuid.New(),
		BookingID:        b.ID(),
		EventType:        EventBookingDeleted,
		EventTitle:       "Booking deleted",
		EventDescription: fmt.Sprintf("%s soft-deleted the booking in status %s", role, b.Status()),
		ActorID:          actorID,
		ActorRole:        role,
		Metadata:         map[string]interface{}{"status_at_deletion": string(b.Status())},
		CreatedAt:        time.Now().UTC(),
	}
}

// HistoryListOptions controls history reads.
type HistoryListOptions struct {
	// Ascending orders entries oldest-first; default is newest-first.
	Ascending bool
	// Limit caps the number of entries returned; 0 means no cap.
	Limit int
}
