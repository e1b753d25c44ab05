package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	titleMinLen = 5
	titleMaxLen = 200
	descMinLen  = 10
	descMaxLen  = 5000
)

// Booking is the aggregate root for a client-professional engagement.
type Booking struct {
	id             uuid.UUID
	clientID       uuid.UUID
	professionalID uuid.UUID

	title           string
	description     string
	serviceCategory string
	engagementType  EngagementType

	status          Status
	statusChangedAt *time.Time
	statusChangedBy *uuid.UUID

	proposedRate     *float64
	proposedRateType string
	agreedRate       *float64
	agreedRateType   string
	currency         string

	startDate      *time.Time
	endDate        *time.Time
	estimatedHours *int
	flexibleTiming bool
	timezone       string

	clientMessage        string
	professionalResponse string
	rejectionReason      string
	cancellationReason   string

	deliveryDate   *time.Time
	completionDate *time.Time

	urgencyLevel UrgencyLevel
	remoteWork   bool
	location     string

	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// CreateParams holds the caller-supplied data for a new booking.
type CreateParams struct {
	ClientID         uuid.UUID
	ProfessionalID   uuid.UUID
	Title            string
	Description      string
	ServiceCategory  string
	EngagementType   string
	ProposedRate     *float64
	ProposedRateType string
	Currency         string
	StartDate        *time.Time
	EndDate          *time.Time
	EstimatedHours   *int
	FlexibleTiming   bool
	Timezone         string
	ClientMessage    string
	UrgencyLevel     string
	RemoteWork       bool
	Location         string
}

// NewBooking creates a booking in the initial status. All validation runs
// before any field is assigned, so a returned error implies no mutation.
func NewBooking(p CreateParams) (*Booking, error) {
	if p.ClientID == uuid.Nil {
		return nil, NewValidationError(CodeMissingClient, "client ID is required")
	}
	if p.ProfessionalID == uuid.Nil {
		return nil, NewValidationError(CodeMissingProfessional, "professional ID is required")
	}
	if p.ClientID == p.ProfessionalID {
		return nil, NewValidationError(CodeInvalidUserAssignment, "client and professional must be different users")
	}

	title := sanitizeText(p.Title)
	if title == "" {
		return nil, NewValidationError(CodeMissingTitle, "title is required")
	}
	if len(title) < titleMinLen || len(title) > titleMaxLen {
		return nil, NewValidationError(CodeInvalidTitleLength,
			fmt.Sprintf("title must be between %d and %d characters", titleMinLen, titleMaxLen))
	}

	description := sanitizeText(p.Description)
	if description == "" {
		return nil, NewValidationError(CodeMissingDescription, "description is required")
	}
	if len(description) < descMinLen || len(description) > descMaxLen {
		return nil, NewValidationError(CodeInvalidDescLength,
			fmt.Sprintf("description must be between %d and %d characters", descMinLen, descMaxLen))
	}

	engagementType := EngagementFreelance
	if p.EngagementType != "" {
		engagementType = EngagementType(p.EngagementType)
		if !engagementType.IsValid() {
			return nil, NewValidationError(CodeInvalidEngagementType,
				fmt.Sprintf("invalid engagement type: %s", p.EngagementType))
		}
	}

	if p.ProposedRate != nil && *p.ProposedRate < 0 {
		return nil, NewValidationError(CodeInvalidRate, "proposed rate must not be negative")
	}
	if p.StartDate != nil && p.EndDate != nil && p.StartDate.After(*p.EndDate) {
		return nil, NewValidationError(CodeInvalidDate, "start date must not be after end date")
	}

	currency := strings.ToUpper(strings.TrimSpace(p.Currency))
	if currency == "" {
		currency = "USD"
	}

	now := time.Now().UTC()
	return &Booking{
		id:               uuid.New(),
		clientID:         p.ClientID,
		professionalID:   p.ProfessionalID,
		title:            title,
		description:      description,
		serviceCategory:  sanitizeText(p.ServiceCategory),
		engagementType:   engagementType,
		status:           InitialStatus(),
		proposedRate:     p.ProposedRate,
		proposedRateType: strings.TrimSpace(p.ProposedRateType),
		currency:         currency,
		startDate:        p.StartDate,
		endDate:          p.EndDate,
		estimatedHours:   p.EstimatedHours,
		flexibleTiming:   p.FlexibleTiming,
		timezone:         strings.TrimSpace(p.Timezone),
		clientMessage:    sanitizeText(p.ClientMessage),
		urgencyLevel:     ParseUrgencyLevel(p.UrgencyLevel),
		remoteWork:       p.RemoteWork,
		location:         sanitizeText(p.Location),
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// State is the flat persistence form of a booking, used to rebuild the
// aggregate from storage without re-running creation validation.
type State struct {
	ID                   uuid.UUID
	ClientID             uuid.UUID
	ProfessionalID       uuid.UUID
	Title                string
	Description          string
	ServiceCategory      string
	EngagementType       EngagementType
	Status               Status
	StatusChangedAt      *time.Time
	StatusChangedBy      *uuid.UUID
	ProposedRate         *float64
	ProposedRateType     string
	AgreedRate           *float64
	AgreedRateType       string
	Currency             string
	StartDate            *time.Time
	EndDate              *time.Time
	EstimatedHours       *int
	FlexibleTiming       bool
	Timezone             string
	ClientMessage        string
	ProfessionalResponse string
	RejectionReason      string
	CancellationReason   string
	DeliveryDate         *time.Time
	CompletionDate       *time.Time
	UrgencyLevel         UrgencyLevel
	RemoteWork           bool
	Location             string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	DeletedAt            *time.Time
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(s State) *Booking {
	return &Booking{
		id:                   s.ID,
		clientID:             s.ClientID,
		professionalID:       s.ProfessionalID,
		title:                s.Title,
		description:          s.Description,
		serviceCategory:      s.ServiceCategory,
		engagementType:       s.EngagementType,
		status:               s.Status,
		statusChangedAt:      s.StatusChangedAt,
		statusChangedBy:      s.StatusChangedBy,
		proposedRate:         s.ProposedRate,
		proposedRateType:     s.ProposedRateType,
		agreedRate:           s.AgreedRate,
		agreedRateType:       s.AgreedRateType,
		currency:             s.Currency,
		startDate:            s.StartDate,
		endDate:              s.EndDate,
		estimatedHours:       s.EstimatedHours,
		flexibleTiming:       s.FlexibleTiming,
		timezone:             s.Timezone,
		clientMessage:        s.ClientMessage,
		professionalResponse: s.ProfessionalResponse,
		rejectionReason:      s.RejectionReason,
		cancellationReason:   s.CancellationReason,
		deliveryDate:         s.DeliveryDate,
		completionDate:       s.CompletionDate,
		urgencyLevel:         s.UrgencyLevel,
		remoteWork:           s.RemoteWork,
		location:             s.Location,
		createdAt:            s.CreatedAt,
		updatedAt:            s.UpdatedAt,
		deletedAt:            s.DeletedAt,
	}
}

// Snapshot returns the flat persistence form of the booking.
func (b *Booking) Snapshot() State {
	return State{
		ID:                   b.id,
		ClientID:             b.clientID,
		ProfessionalID:       b.professionalID,
		Title:                b.title,
		Description:          b.description,
		ServiceCategory:      b.serviceCategory,
		EngagementType:       b.engagementType,
		Status:               b.status,
		StatusChangedAt:      b.statusChangedAt,
		StatusChangedBy:      b.statusChangedBy,
		ProposedRate:         b.proposedRate,
		ProposedRateType:     b.proposedRateType,
		AgreedRate:           b.agreedRate,
		AgreedRateType:       b.agreedRateType,
		Currency:             b.currency,
		StartDate:            b.startDate,
		EndDate:              b.endDate,
		EstimatedHours:       b.estimatedHours,
		FlexibleTiming:       b.flexibleTiming,
		Timezone:             b.timezone,
		ClientMessage:        b.clientMessage,
		ProfessionalResponse: b.professionalResponse,
		RejectionReason:      b.rejectionReason,
		CancellationReason:   b.cancellationReason,
		DeliveryDate:         b.deliveryDate,
		CompletionDate:       b.completionDate,
		UrgencyLevel:         b.urgencyLevel,
		RemoteWork:           b.remoteWork,
		Location:             b.location,
		CreatedAt:            b.createdAt,
		UpdatedAt:            b.updatedAt,
		DeletedAt:            b.deletedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// ClientID returns the booking client's user ID.
func (b *Booking) ClientID() uuid.UUID { return b.clientID }

// ProfessionalID returns the booked professional's user ID.
func (b *Booking) ProfessionalID() uuid.UUID { return b.professionalID }

// Title returns the engagement title.
func (b *Booking) Title() string { return b.title }

// Description returns the engagement description.
func (b *Booking) Description() string { return b.description }

// ServiceCategory returns the service category label.
func (b *Booking) ServiceCategory() string { return b.serviceCategory }

// EngagementType returns the commercial shape of the engagement.
func (b *Booking) EngagementType() EngagementType { return b.engagementType }

// Status returns the current lifecycle status.
func (b *Booking) Status() Status { return b.status }

// StatusChangedAt returns when the status last changed, or nil if never.
func (b *Booking) StatusChangedAt() *time.Time { return b.statusChangedAt }

// StatusChangedBy returns who last changed the status, or nil if never.
func (b *Booking) StatusChangedBy() *uuid.UUID { return b.statusChangedBy }

// ProposedRate returns the client's proposed rate, or nil.
func (b *Booking) ProposedRate() *float64 { return b.proposedRate }

// ProposedRateType returns the unit of the proposed rate.
func (b *Booking) ProposedRateType() string { return b.proposedRateType }

// AgreedRate returns the negotiated rate, or nil until agreed.
func (b *Booking) AgreedRate() *float64 { return b.agreedRate }

// AgreedRateType returns the unit of the agreed rate.
func (b *Booking) AgreedRateType() string { return b.agreedRateType }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// StartDate returns the engagement start date, or nil if unset.
func (b *Booking) StartDate() *time.Time { return b.startDate }

// EndDate returns the engagement end date, or nil if unset.
func (b *Booking) EndDate() *time.Time { return b.endDate }

// EstimatedHours returns the client's effort estimate, or nil.
func (b *Booking) EstimatedHours() *int { return b.estimatedHours }

// FlexibleTiming returns whether scheduling is flexible.
func (b *Booking) FlexibleTiming() bool { return b.flexibleTiming }

// Timezone returns the engagement timezone label.
func (b *Booking) Timezone() string { return b.timezone }

// ClientMessage returns the client's free-form message.
func (b *Booking) ClientMessage() string { return b.clientMessage }

// ProfessionalResponse returns the professional's free-form response.
func (b *Booking) ProfessionalResponse() string { return b.professionalResponse }

// RejectionReason returns the reason given on rejection.
func (b *Booking) RejectionReason() string { return b.rejectionReason }

// CancellationReason returns the reason given on cancellation.
func (b *Booking) CancellationReason() string { return b.cancellationReason }

// DeliveryDate returns the date the work was delivered, or nil.
func (b *Booking) DeliveryDate() *time.Time { return b.deliveryDate }

// CompletionDate returns the date the booking completed, or nil.
func (b *Booking) CompletionDate() *time.Time { return b.completionDate }

// UrgencyLevel returns the urgency level.
func (b *Booking) UrgencyLevel() UrgencyLevel { return b.urgencyLevel }

// RemoteWork returns whether the engagement is remote.
func (b *Booking) RemoteWork() bool { return b.remoteWork }

// Location returns the engagement location.
func (b *Booking) Location() string { return b.location }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// DeletedAt returns the soft-delete timestamp, or nil if live.
func (b *Booking) DeletedAt() *time.Time { return b.deletedAt }

// --- Behavior ---

// TransitionTo validates the requested transition for the given role and,
// if permitted, applies the target-state side effects and status stamps.
// On error the booking is unchanged.
func (b *Booking) TransitionTo(to Status, role Role, actorID uuid.UUID, tctx TransitionContext) error {
	if err := ValidateTransition(b.status, to, role); err != nil {
		return err
	}
	if to == StatusAccepted && tctx.AgreedRate != nil && *tctx.AgreedRate < 0 {
		return NewValidationError(CodeInvalidRate, "agreed rate must not be negative")
	}

	now := time.Now().UTC()
	switch to {
	case StatusAccepted:
		if tctx.AgreedRate != nil {
			b.agreedRate = tctx.AgreedRate
			if tctx.AgreedRateType != "" {
				b.agreedRateType = strings.TrimSpace(tctx.AgreedRateType)
			}
		}
	case StatusRejected:
		if tctx.RejectionReason != "" {
			b.rejectionReason = sanitizeText(tctx.RejectionReason)
		}
	case StatusActive:
		if b.startDate == nil {
			d := dateOnly(now)
			b.startDate = &d
		}
	case StatusDelivered:
		d := dateOnly(now)
		b.deliveryDate = &d
	case StatusCompleted:
		d := dateOnly(now)
		b.completionDate = &d
	case StatusCancelled:
		if tctx.CancellationReason != "" {
			b.cancellationReason = sanitizeText(tctx.CancellationReason)
		}
	}

	b.status = to
	b.statusChangedAt = &now
	b.statusChangedBy = &actorID
	b.updatedAt = now
	return nil
}

// AuthorizeDelete enforces the deletion policy: admin always, client only
// before the professional has committed, professional never.
func (b *Booking) AuthorizeDelete(role Role) error {
	switch role {
	case RoleAdmin:
		return nil
	case RoleClient:
		if b.status == StatusRequest || b.status == StatusPending {
			return nil
		}
		return NewDeleteNotAllowedError(
			fmt.Sprintf("client may not delete a booking in status %s", b.status))
	case RoleProfessional:
		return NewDeleteNotAllowedError("professional may not delete bookings")
	}
	return NewUnauthorizedError("actor has no relationship to this booking")
}

// MarkDeleted sets the soft-delete marker. Status is left untouched so the
// booking remains fully auditable.
func (b *Booking) MarkDeleted() {
	now := time.Now().UTC()
	b.deletedAt = &now
	b.updatedAt = now
}

// dateOnly truncates a timestamp to the calendar date in UTC.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
