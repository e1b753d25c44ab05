package events

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/proconnect/service-engagement/internal/application"
	bookingDomain "github.com/proconnect/service-engagement/internal/domain/booking"
	protoEvents "github.com/proconnect/service-engagement/internal/platform/events"
	"github.com/proconnect/service-engagement/internal/platform/kafka"
)

// PaymentEventConsumer completes delivered bookings when the payment
// service releases escrow. It drives the same validated transition path as
// any caller; the releasing client's identity is resolved against the
// booking, so a release by anyone else fails authorization.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  *application.BookingService
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service *application.BookingService,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, protoEvents.TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. Blocks until ctx is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case protoEvents.PaymentEscrowReleased:
		return c.handleEscrowReleased(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handleEscrowReleased(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt protoEvents.EscrowReleasedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse EscrowReleasedEvent data", zap.Error(err))
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing escrow released event",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("payment_id", evt.PaymentID.String()),
	)

	actor := bookingDomain.Actor{ID: evt.ReleasedBy}
	_, err := c.service.UpdateStatus(ctx, evt.BookingID, actor, application.UpdateStatusRequest{
		Status: string(bookingDomain.StatusCompleted),
	})
	if err != nil {
		// Domain rejections (wrong status, wrong releaser) are final; only
		// infrastructure failures are worth a redelivery.
		if bookingDomain.CodeOf(err) != "" &&
			bookingDomain.CodeOf(err) != bookingDomain.CodeStatusUpdateFailed {
			c.logger.Warn("escrow release did not complete booking",
				zap.String("booking_id", evt.BookingID.String()),
				zap.String("code", bookingDomain.CodeOf(err)),
			)
			return nil
		}
		c.logger.Error("failed to complete booking after escrow release",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("booking completed after escrow release",
		zap.String("booking_id", evt.BookingID.String()),
	)
	return nil
}
