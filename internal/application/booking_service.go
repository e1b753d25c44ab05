package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/proconnect/service-engagement/internal/domain/booking"
	"github.com/proconnect/service-engagement/internal/platform/events"
	"github.com/proconnect/service-engagement/internal/platform/kafka"
)

// EventPublisher is the outbound event contract; satisfied by the Kafka
// producer and by a fake in tests.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// CreateBookingRequest holds the data needed to create a new booking. The
// client identity comes from the session, never from the body.
type CreateBookingRequest struct {
	ProfessionalID   uuid.UUID `json:"professional_id" binding:"required"`
	Title            string    `json:"title" binding:"required"`
	Description      string    `json:"description" binding:"required"`
	ServiceCategory  string    `json:"service_category"`
	EngagementType   string    `json:"engagement_type"`
	ProposedRate     *float64  `json:"proposed_rate"`
	ProposedRateType string    `json:"proposed_rate_type"`
	Currency         string    `json:"currency"`
	StartDate        *string   `json:"start_date"`
	EndDate          *string   `json:"end_date"`
	EstimatedHours   *int      `json:"estimated_hours"`
	FlexibleTiming   bool      `json:"flexible_timing"`
	Timezone         string    `json:"timezone"`
	ClientMessage    string    `json:"client_message"`
	UrgencyLevel     string    `json:"urgency_level"`
	RemoteWork       bool      `json:"remote_work"`
	Location         string    `json:"location"`
}

// UpdateStatusRequest asks for one status transition with its context.
type UpdateStatusRequest struct {
	Status             string   `json:"status" binding:"required"`
	AgreedRate         *float64 `json:"agreed_rate"`
	AgreedRateType     string   `json:"agreed_rate_type"`
	RejectionReason    string   `json:"rejection_reason"`
	CancellationReason string   `json:"cancellation_reason"`
}

// UpdateBookingRequest is the non-status patch; nil fields are untouched.
type UpdateBookingRequest struct {
	Title                *string  `json:"title"`
	Description          *string  `json:"description"`
	ClientMessage        *string  `json:"client_message"`
	ProposedRate         *float64 `json:"proposed_rate"`
	ProposedRateType     *string  `json:"proposed_rate_type"`
	StartDate            *string  `json:"start_date"`
	EndDate              *string  `json:"end_date"`
	EstimatedHours       *string  `json:"estimated_hours"`
	UrgencyLevel         *string  `json:"urgency_level"`
	ProfessionalResponse *string  `json:"professional_response"`
	AgreedRate           *float64 `json:"agreed_rate"`
	AgreedRateType       *string  `json:"agreed_rate_type"`
	Location             *string  `json:"location"`
	RemoteWork           *bool    `json:"remote_work"`
	FlexibleTiming       *bool    `json:"flexible_timing"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                   uuid.UUID  `json:"id"`
	ClientID             uuid.UUID  `json:"client_id"`
	ProfessionalID       uuid.UUID  `json:"professional_id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	ServiceCategory      string     `json:"service_category,omitempty"`
	EngagementType       string     `json:"engagement_type"`
	Status               string     `json:"status"`
	StatusChangedAt      *time.Time `json:"status_changed_at,omitempty"`
	StatusChangedBy      *uuid.UUID `json:"status_changed_by,omitempty"`
	ProposedRate         *float64   `json:"proposed_rate,omitempty"`
	ProposedRateType     string     `json:"proposed_rate_type,omitempty"`
	AgreedRate           *float64   `json:"agreed_rate,omitempty"`
	AgreedRateType       string     `json:"agreed_rate_type,omitempty"`
	Currency             string     `json:"currency"`
	StartDate            *time.Time `json:"start_date,omitempty"`
	EndDate              *time.Time `json:"end_date,omitempty"`
	EstimatedHours       *int       `json:"estimated_hours,omitempty"`
	FlexibleTiming       bool       `json:"flexible_timing"`
	Timezone             string     `json:"timezone,omitempty"`
	ClientMessage        string     `json:"client_message,omitempty"`
	ProfessionalResponse string     `json:"professional_response,omitempty"`
	RejectionReason      string     `json:"rejection_reason,omitempty"`
	CancellationReason   string     `json:"cancellation_reason,omitempty"`
	DeliveryDate         *time.Time `json:"delivery_date,omitempty"`
	CompletionDate       *time.Time `json:"completion_date,omitempty"`
	UrgencyLevel         string     `json:"urgency_level"`
	RemoteWork           bool       `json:"remote_work"`
	Location             string     `json:"location,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// PaginatedBookings is a page of bookings with its total count.
type PaginatedBookings struct {
	Items []BookingDTO `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// BookingService orchestrates the booking lifecycle use cases.
type BookingService struct {
	repo      bookingDomain.Repository
	history   bookingDomain.HistoryRepository
	publisher EventPublisher
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.Repository,
	history bookingDomain.HistoryRepository,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		history:   history,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateBooking creates a booking with the acting client as clientID.
func (s *BookingService) CreateBooking(ctx context.Context, clientID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(bookingDomain.CreateParams{
		ClientID:         clientID,
		ProfessionalID:   req.ProfessionalID,
		Title:            req.Title,
		Description:      req.Description,
		ServiceCategory:  req.ServiceCategory,
		EngagementType:   req.EngagementType,
		ProposedRate:     req.ProposedRate,
		ProposedRateType: req.ProposedRateType,
		Currency:         req.Currency,
		StartDate:        startDate,
		EndDate:          endDate,
		EstimatedHours:   req.EstimatedHours,
		FlexibleTiming:   req.FlexibleTiming,
		Timezone:         req.Timezone,
		ClientMessage:    req.ClientMessage,
		UrgencyLevel:     req.UrgencyLevel,
		RemoteWork:       req.RemoteWork,
		Location:         req.Location,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		s.logger.Error("failed to save booking", zap.Error(err))
		return nil, bookingDomain.NewInfrastructureError(
			bookingDomain.CodeCreateFailed, "failed to create booking", err)
	}

	s.publish(ctx, events.BookingRequested, bk.ID().String(), events.BookingRequestedEvent{
		BookingID:      bk.ID(),
		ClientID:       bk.ClientID(),
		ProfessionalID: bk.ProfessionalID(),
		Title:          bk.Title(),
		EngagementType: string(bk.EngagementType()),
		UrgencyLevel:   string(bk.UrgencyLevel()),
		OccurredAt:     time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// UpdateStatus runs one validated transition. The status write and its
// history entry commit atomically; a concurrent transition surfaces as an
// INVALID_TRANSITION against the fresh status, never a lost update.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor, req UpdateStatusRequest) (*BookingDTO, error) {
	to, err := bookingDomain.ParseStatus(req.Status)
	if err != nil {
		return nil, bookingDomain.NewError(bookingDomain.CodeInvalidTransition,
			fmt.Sprintf("unknown target status: %s", req.Status))
	}

	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	role := bk.ResolveRole(actor)
	from := bk.Status()

	tctx := bookingDomain.TransitionContext{
		AgreedRate:         req.AgreedRate,
		AgreedRateType:     req.AgreedRateType,
		RejectionReason:    req.RejectionReason,
		CancellationReason: req.CancellationReason,
	}
	if err := bk.TransitionTo(to, role, actor.ID, tctx); err != nil {
		return nil, err
	}

	entry := bookingDomain.NewStatusChangeEntry(bk, from, actor.ID, role)
	if err := s.repo.UpdateStatus(ctx, bk, from, entry); err != nil {
		if errors.Is(err, bookingDomain.ErrStatusConflict) {
			fresh, ferr := s.repo.FindByID(ctx, bookingID)
			if ferr != nil {
				return nil, ferr
			}
			return nil, bookingDomain.NewInvalidTransitionError(fresh.Status(), to)
		}
		s.logger.Error("failed to persist status transition",
			zap.String("booking_id", bookingID.String()),
			zap.Error(err),
		)
		return nil, bookingDomain.NewInfrastructureError(
			bookingDomain.CodeStatusUpdateFailed, "failed to update booking status", err)
	}

	s.logger.Info("booking status changed",
		zap.String("booking_id", bk.ID().String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor_role", string(role)),
	)
	s.publish(ctx, events.BookingStatusChanged, bk.ID().String(), events.BookingStatusChangedEvent{
		BookingID:  bk.ID(),
		FromStatus: string(from),
		ToStatus:   string(to),
		ActorID:    actor.ID,
		ActorRole:  string(role),
		OccurredAt: time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// UpdateBooking applies a role-filtered field patch. Changes to rate or
// scheduling fields are audited; other changes are persisted silently.
func (s *BookingService) UpdateBooking(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor, req UpdateBookingRequest) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	role := bk.ResolveRole(actor)
	patch, err := bookingDomain.BuildPatch(role, toPatchInput(req))
	if err != nil {
		return nil, err
	}

	changes, err := bk.ApplyPatch(patch)
	if err != nil {
		return nil, err
	}

	var entry *bookingDomain.HistoryEntry
	if significant := bookingDomain.SignificantChanges(changes); len(significant) > 0 {
		e := bookingDomain.NewUpdateEntry(bk, significant, actor.ID, role)
		entry = &e
	}

	if err := s.repo.UpdateFields(ctx, bk, entry); err != nil {
		s.logger.Error("failed to persist booking update",
			zap.String("booking_id", bookingID.String()),
			zap.Error(err),
		)
		return nil, bookingDomain.NewInfrastructureError(
			bookingDomain.CodeUpdateFailed, "failed to update booking", err)
	}

	fields := make([]string, len(changes))
	for i, c := range changes {
		fields[i] = c.Field
	}
	s.publish(ctx, events.BookingUpdated, bk.ID().String(), events.BookingUpdatedEvent{
		BookingID:     bk.ID(),
		ActorID:       actor.ID,
		ActorRole:     string(role),
		ChangedFields: fields,
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// DeleteBooking soft-deletes a booking under the deletion policy and
// appends the audit entry in the same transaction.
func (s *BookingService) DeleteBooking(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor) error {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}

	role := bk.ResolveRole(actor)
	if err := bk.AuthorizeDelete(role); err != nil {
		return err
	}

	bk.MarkDeleted()
	entry := bookingDomain.NewDeletedEntry(bk, actor.ID, role)
	if err := s.repo.SoftDelete(ctx, bk, entry); err != nil {
		s.logger.Error("failed to soft-delete booking",
			zap.String("booking_id", bookingID.String()),
			zap.Error(err),
		)
		return bookingDomain.NewInfrastructureError(
			bookingDomain.CodeDeleteFailed, "failed to delete booking", err)
	}

	s.publish(ctx, events.BookingDeleted, bk.ID().String(), events.BookingDeletedEvent{
		BookingID:  bk.ID(),
		ActorID:    actor.ID,
		ActorRole:  string(role),
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// GetBooking retrieves one booking, visible to its participants and admins.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.ResolveRole(actor) == bookingDomain.RoleUnknown {
		return nil, bookingDomain.NewUnauthorizedError("actor has no relationship to this booking")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetClientBookings retrieves paginated bookings where the user is the client.
func (s *BookingService) GetClientBookings(ctx context.Context, clientID uuid.UUID, page, limit int) (*PaginatedBookings, error) {
	bookings, total, err := s.repo.FindByClientID(ctx, clientID, page, limit)
	if err != nil {
		return nil, err
	}
	return toPage(bookings, total, page, limit), nil
}

// GetProfessionalBookings retrieves paginated bookings where the user is the professional.
func (s *BookingService) GetProfessionalBookings(ctx context.Context, professionalID uuid.UUID, page, limit int) (*PaginatedBookings, error) {
	bookings, total, err := s.repo.FindByProfessionalID(ctx, professionalID, page, limit)
	if err != nil {
		return nil, err
	}
	return toPage(bookings, total, page, limit), nil
}

// ListAllBookings returns a paginated list of all live bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) (*PaginatedBookings, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return toPage(bookings, total, page, limit), nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*bookingDomain.Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}
	return stats, nil
}

// --- Helpers ---

func (s *BookingService) publish(ctx context.Context, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent("service-engagement", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	if err := s.publisher.PublishEvent(ctx, events.TopicEngagementEvents, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	return bookingDomain.ParseDate(*s)
}

func toPatchInput(req UpdateBookingRequest) bookingDomain.PatchInput {
	return bookingDomain.PatchInput{
		Title:                req.Title,
		Description:          req.Description,
		ClientMessage:        req.ClientMessage,
		ProposedRate:         req.ProposedRate,
		ProposedRateType:     req.ProposedRateType,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		EstimatedHours:       req.EstimatedHours,
		UrgencyLevel:         req.UrgencyLevel,
		ProfessionalResponse: req.ProfessionalResponse,
		AgreedRate:           req.AgreedRate,
		AgreedRateType:       req.AgreedRateType,
		Location:             req.Location,
		RemoteWork:           req.RemoteWork,
		FlexibleTiming:       req.FlexibleTiming,
	}
}

func toPage(bookings []*bookingDomain.Booking, total int64, page, limit int) *PaginatedBookings {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return &PaginatedBookings{Items: dtos, Total: total, Page: page, Limit: limit}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:                   bk.ID(),
		ClientID:             bk.ClientID(),
		ProfessionalID:       bk.ProfessionalID(),
		Title:                bk.Title(),
		Description:          bk.Description(),
		ServiceCategory:      bk.ServiceCategory(),
		EngagementType:       string(bk.EngagementType()),
		Status:               string(bk.Status()),
		StatusChangedAt:      bk.StatusChangedAt(),
		StatusChangedBy:      bk.StatusChangedBy(),
		ProposedRate:         bk.ProposedRate(),
		ProposedRateType:     bk.ProposedRateType(),
		AgreedRate:           bk.AgreedRate(),
		AgreedRateType:       bk.AgreedRateType(),
		Currency:             bk.Currency(),
		StartDate:            bk.StartDate(),
		EndDate:              bk.EndDate(),
		EstimatedHours:       bk.EstimatedHours(),
		FlexibleTiming:       bk.FlexibleTiming(),
		Timezone:             bk.Timezone(),
		ClientMessage:        bk.ClientMessage(),
		ProfessionalResponse: bk.ProfessionalResponse(),
		RejectionReason:      bk.RejectionReason(),
		CancellationReason:   bk.CancellationReason(),
		DeliveryDate:         bk.DeliveryDate(),
		CompletionDate:       bk.CompletionDate(),
		UrgencyLevel:         string(bk.UrgencyLevel()),
		RemoteWork:           bk.RemoteWork(),
		Location:             bk.Location(),
		CreatedAt:            bk.CreatedAt(),
		UpdatedAt:            bk.UpdatedAt(),
	}
}
