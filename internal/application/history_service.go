package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/proconnect/service-engagement/internal/domain/booking"
)

// HistoryEntryDTO is the API representation of one audit entry.
type HistoryEntryDTO struct {
	ID               uuid.UUID              `json:"id"`
	BookingID        uuid.UUID              `json:"booking_id"`
	EventType        string                 `json:"event_type"`
	FromStatus       *string                `json:"from_status,omitempty"`
	ToStatus         *string                `json:"to_status,omitempty"`
	EventTitle       string                 `json:"event_title"`
	EventDescription string                 `json:"event_description,omitempty"`
	ActorID          uuid.UUID              `json:"actor_id"`
	ActorRole        string                 `json:"actor_role"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
}

// HistoryService exposes the read side of the audit trail. Writes happen
// only inside booking mutations; there is no public append.
type HistoryService struct {
	bookings bookingDomain.Repository
	history  bookingDomain.HistoryRepository
	logger   *zap.Logger
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(
	bookings bookingDomain.Repository,
	history bookingDomain.HistoryRepository,
	logger *zap.Logger,
) *HistoryService {
	return &HistoryService{bookings: bookings, history: history, logger: logger}
}

// ListHistory returns a booking's audit entries for its participants or an
// admin, newest first unless ascending is requested.
func (s *HistoryService) ListHistory(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor, opts bookingDomain.HistoryListOptions) ([]HistoryEntryDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.ResolveRole(actor) == bookingDomain.RoleUnknown {
		return nil, bookingDomain.NewUnauthorizedError("actor has no relationship to this booking")
	}

	entries, err := s.history.FindByBookingID(ctx, bookingID, opts)
	if err != nil {
		return nil, err
	}
	dtos := make([]HistoryEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toHistoryDTO(e)
	}
	return dtos, nil
}

func toHistoryDTO(e bookingDomain.HistoryEntry) HistoryEntryDTO {
	dto := HistoryEntryDTO{
		ID:               e.ID,
		BookingID:        e.BookingID,
		EventType:        string(e.EventType),
		EventTitle:       e.EventTitle,
		EventDescription: e.EventDescription,
		ActorID:          e.ActorID,
		ActorRole:        string(e.ActorRole),
		Metadata:         e.Metadata,
		CreatedAt:        e.CreatedAt,
	}
	if e.FromStatus != nil {
		s := string(*e.FromStatus)
		dto.FromStatus = &s
	}
	if e.ToStatus != nil {
		s := string(*e.ToStatus)
		dto.ToStatus = &s
	}
	return dto
}
