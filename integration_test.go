//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	protoEvents "github.com/proconnect/service-engagement/internal/platform/events"
)

// TestEscrowReleased_CompletesBooking verifies that when an
// EscrowReleasedEvent is published to payment.events, the engagement service
// picks it up, transitions the booking to "completed" through the validated
// path, writes the audit entry, and emits booking.status_changed.
func TestEscrowReleased_CompletesBooking(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupEngagementStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	// Seed a booking in "delivered" status.
	bookingID := uuid.New()
	clientID := uuid.New()
	professionalID := uuid.New()
	seedBookingInDeliveredState(t, infra.DB, bookingID, clientID, professionalID)

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	// Publish EscrowReleasedEvent released by the booking's client.
	evt := protoEvents.EscrowReleasedEvent{
		BookingID:  bookingID,
		PaymentID:  uuid.New(),
		ReleasedBy: clientID,
		OccurredAt: time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, protoEvents.TopicPaymentEvents,
		"service-payment", protoEvents.PaymentEscrowReleased, bookingID.String(), evt)

	// Assert: booking transitions to "completed" with a completion date.
	model := waitForBookingStatus(t, infra.DB, bookingID, "completed", 15*time.Second)
	assert.NotNil(t, model.CompletionDate, "completion_date should be set")
	require.NotNil(t, model.StatusChangedBy)
	assert.Equal(t, clientID, *model.StatusChangedBy)

	// Assert: the transition was committed together with its audit entry.
	assert.EqualValues(t, 1, historyCount(t, infra.DB, bookingID))

	// Assert: booking.status_changed on engagement.events.
	ce := consumeOneEvent(t, infra.KafkaBrokers, protoEvents.TopicEngagementEvents,
		protoEvents.BookingStatusChanged, 15*time.Second)

	var changed protoEvents.BookingStatusChangedEvent
	require.NoError(t, ce.ParseData(&changed))
	assert.Equal(t, bookingID, changed.BookingID)
	assert.Equal(t, "delivered", changed.FromStatus)
	assert.Equal(t, "completed", changed.ToStatus)
	assert.Equal(t, "client", changed.ActorRole)
}

// TestEscrowReleased_ByStranger_LeavesBookingUntouched checks the consumer
// does not bypass authorization: a release attributed to a user with no
// relationship to the booking changes nothing.
func TestEscrowReleased_ByStranger_LeavesBookingUntouched(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupEngagementStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	bookingID := uuid.New()
	seedBookingInDeliveredState(t, infra.DB, bookingID, uuid.New(), uuid.New())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second)

	evt := protoEvents.EscrowReleasedEvent{
		BookingID:  bookingID,
		PaymentID:  uuid.New(),
		ReleasedBy: uuid.New(),
		OccurredAt: time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, protoEvents.TopicPaymentEvents,
		"service-payment", protoEvents.PaymentEscrowReleased, bookingID.String(), evt)

	// Give the consumer time to process, then assert nothing moved.
	time.Sleep(5 * time.Second)
	model := waitForBookingStatus(t, infra.DB, bookingID, "delivered", 5*time.Second)
	assert.Nil(t, model.CompletionDate)
	assert.EqualValues(t, 0, historyCount(t, infra.DB, bookingID))
}
