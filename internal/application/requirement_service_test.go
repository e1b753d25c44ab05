package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/proconnect/service-engagement/internal/domain/booking"
)

// fakeRequirementStore is an in-memory RequirementRepository double.
type fakeRequirementStore struct {
	requirements map[uuid.UUID]*bookingDomain.Requirement
	deleted      map[uuid.UUID]bool
}

func newFakeRequirementStore() *fakeRequirementStore {
	return &fakeRequirementStore{
		requirements: make(map[uuid.UUID]*bookingDomain.Requirement),
		deleted:      make(map[uuid.UUID]bool),
	}
}

func (f *fakeRequirementStore) Save(_ context.Context, r *bookingDomain.Requirement) error {
	f.requirements[r.ID()] = r
	return nil
}

func (f *fakeRequirementStore) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Requirement, error) {
	r, ok := f.requirements[id]
	if !ok || f.deleted[id] {
		return nil, bookingDomain.NewError(bookingDomain.CodeRequirementNotFound, "requirement not found")
	}
	return r, nil
}

func (f *fakeRequirementStore) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*bookingDomain.Requirement, error) {
	var out []*bookingDomain.Requirement
	for id, r := range f.requirements {
		if r.BookingID() == bookingID && !f.deleted[id] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequirementStore) SoftDelete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.requirements[id]; !ok {
		return bookingDomain.NewError(bookingDomain.CodeRequirementNotFound, "requirement not found")
	}
	f.deleted[id] = true
	return nil
}

func newTestRequirementService(t *testing.T) (*RequirementService, *BookingService, *fakeRequirementStore) {
	t.Helper()
	store := newFakeStore()
	reqStore := newFakeRequirementStore()
	bookingSvc := NewBookingService(store, store, &fakePublisher{}, zap.NewNop())
	reqSvc := NewRequirementService(store, reqStore, zap.NewNop())
	return reqSvc, bookingSvc, reqStore
}

func TestAddRequirement_ParticipantsOnly(t *testing.T) {
	reqSvc, bookingSvc, _ := newTestRequirementService(t)
	ctx := context.Background()
	clientID := uuid.New()
	professionalID := uuid.New()
	dto := createTestBooking(t, bookingSvc, clientID, professionalID)

	req := CreateRequirementRequest{Title: "Final report as PDF", Priority: 1}

	added, err := reqSvc.AddRequirement(ctx, dto.ID, bookingDomain.Actor{ID: professionalID}, req)
	require.NoError(t, err)
	assert.Equal(t, dto.ID, added.BookingID)

	_, err = reqSvc.AddRequirement(ctx, dto.ID, bookingDomain.Actor{ID: uuid.New()}, req)
	assert.Equal(t, bookingDomain.CodeUnauthorized, bookingDomain.CodeOf(err))

	_, err = reqSvc.AddRequirement(ctx, dto.ID, bookingDomain.Actor{ID: clientID}, CreateRequirementRequest{Title: "  "})
	assert.Equal(t, bookingDomain.CodeMissingTitle, bookingDomain.CodeOf(err))
}

// Requirements are collected at any lifecycle stage; a completed booking
// still accepts them.
func TestAddRequirement_NotGatedOnStatus(t *testing.T) {
	reqSvc, bookingSvc, _ := newTestRequirementService(t)
	ctx := context.Background()
	clientID := uuid.New()
	professionalID := uuid.New()
	client := bookingDomain.Actor{ID: clientID}
	professional := bookingDomain.Actor{ID: professionalID}
	dto := createTestBooking(t, bookingSvc, clientID, professionalID)

	for _, status := range []string{"accepted", "active", "delivered", "completed"} {
		_, err := bookingSvc.UpdateStatus(ctx, dto.ID, professional, UpdateStatusRequest{Status: status})
		if err != nil {
			_, err = bookingSvc.UpdateStatus(ctx, dto.ID, client, UpdateStatusRequest{Status: status})
			require.NoError(t, err)
		}
	}

	_, err := reqSvc.AddRequirement(ctx, dto.ID, client, CreateRequirementRequest{Title: "Source files handover"})
	assert.NoError(t, err)
}

func TestRemoveRequirement_ChecksOwnership(t *testing.T) {
	reqSvc, bookingSvc, _ := newTestRequirementService(t)
	ctx := context.Background()
	clientID := uuid.New()
	client := bookingDomain.Actor{ID: clientID}
	dtoA := createTestBooking(t, bookingSvc, clientID, uuid.New())
	dtoB := createTestBooking(t, bookingSvc, clientID, uuid.New())

	added, err := reqSvc.AddRequirement(ctx, dtoA.ID, client, CreateRequirementRequest{Title: "Weekly sync notes"})
	require.NoError(t, err)

	// Removing through the wrong booking is a not-found, not a cross-booking delete.
	err = reqSvc.RemoveRequirement(ctx, dtoB.ID, added.ID, client)
	assert.Equal(t, bookingDomain.CodeRequirementNotFound, bookingDomain.CodeOf(err))

	require.NoError(t, reqSvc.RemoveRequirement(ctx, dtoA.ID, added.ID, client))

	list, err := reqSvc.ListRequirements(ctx, dtoA.ID, client)
	require.NoError(t, err)
	assert.Empty(t, list)
}
