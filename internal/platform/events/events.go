package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics this service touches.
const (
	TopicEngagementEvents = "engagement.events"
	TopicPaymentEvents    = "payment.events"
)

// Event types published by this service.
const (
	BookingRequested     = "booking.requested"
	BookingStatusChanged = "booking.status_changed"
	BookingUpdated       = "booking.updated"
	BookingDeleted       = "booking.deleted"
)

// Event types consumed from other services.
const (
	PaymentEscrowReleased = "payment.escrow_released"
)

// BookingRequestedEvent is published when a client creates a booking.
type BookingRequestedEvent struct {
	BookingID      uuid.UUID `json:"booking_id"`
	ClientID       uuid.UUID `json:"client_id"`
	ProfessionalID uuid.UUID `json:"professional_id"`
	Title          string    `json:"title"`
	EngagementType string    `json:"engagement_type"`
	UrgencyLevel   string    `json:"urgency_level"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent is published after every successful transition.
type BookingStatusChangedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorID    uuid.UUID `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingUpdatedEvent is published after a non-status field update.
type BookingUpdatedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	ActorID       uuid.UUID `json:"actor_id"`
	ActorRole     string    `json:"actor_role"`
	ChangedFields []string  `json:"changed_fields"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingDeletedEvent is published after a soft deletion.
type BookingDeletedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ActorID    uuid.UUID `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EscrowReleasedEvent is consumed from the payment service when the client
// releases the escrowed payment for a delivered booking.
type EscrowReleasedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	PaymentID  uuid.UUID `json:"payment_id"`
	ReleasedBy uuid.UUID `json:"released_by"`
	OccurredAt time.Time `json:"occurred_at"`
}
