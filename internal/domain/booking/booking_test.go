package booking

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateParams() CreateParams {
	return CreateParams{
		ClientID:       uuid.New(),
		ProfessionalID: uuid.New(),
		Title:          "Logo redesign",
		Description:    "Full redesign of the company logo and brand palette.",
	}
}

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	b, err := NewBooking(validCreateParams())
	require.NoError(t, err)
	return b
}

func TestNewBooking_Defaults(t *testing.T) {
	b := newTestBooking(t)

	assert.Equal(t, StatusRequest, b.Status())
	assert.Equal(t, EngagementFreelance, b.EngagementType())
	assert.Equal(t, "USD", b.Currency())
	assert.Equal(t, UrgencyNormal, b.UrgencyLevel())
	assert.Nil(t, b.StatusChangedAt())
	assert.Nil(t, b.DeletedAt())
}

func TestNewBooking_Validation(t *testing.T) {
	sameID := uuid.New()

	tests := []struct {
		name     string
		mutate   func(*CreateParams)
		wantCode string
	}{
		{"missing client", func(p *CreateParams) { p.ClientID = uuid.Nil }, CodeMissingClient},
		{"missing professional", func(p *CreateParams) { p.ProfessionalID = uuid.Nil }, CodeMissingProfessional},
		{"same user both sides", func(p *CreateParams) { p.ClientID, p.ProfessionalID = sameID, sameID }, CodeInvalidUserAssignment},
		{"blank title", func(p *CreateParams) { p.Title = "   " }, CodeMissingTitle},
		{"short title", func(p *CreateParams) { p.Title = "abc" }, CodeInvalidTitleLength},
		{"long title", func(p *CreateParams) { p.Title = strings.Repeat("x", 201) }, CodeInvalidTitleLength},
		{"blank description", func(p *CreateParams) { p.Description = "" }, CodeMissingDescription},
		{"short description", func(p *CreateParams) { p.Description = "too short" }, CodeInvalidDescLength},
		{"bad engagement type", func(p *CreateParams) { p.EngagementType = "gig" }, CodeInvalidEngagementType},
		{"negative rate", func(p *CreateParams) { r := -5.0; p.ProposedRate = &r }, CodeInvalidRate},
		{"start after end", func(p *CreateParams) {
			start := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
			end := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
			p.StartDate, p.EndDate = &start, &end
		}, CodeInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validCreateParams()
			tt.mutate(&p)
			_, err := NewBooking(p)
			assert.Equal(t, tt.wantCode, CodeOf(err))
		})
	}
}

func TestNewBooking_SanitizesText(t *testing.T) {
	p := validCreateParams()
	p.Title = "  <b>Logo</b> redesign  "
	b, err := NewBooking(p)
	require.NoError(t, err)
	assert.Equal(t, "&lt;b&gt;Logo&lt;/b&gt; redesign", b.Title())
}

func TestResolveRole(t *testing.T) {
	b := newTestBooking(t)

	assert.Equal(t, RoleClient, b.ResolveRole(Actor{ID: b.ClientID()}))
	assert.Equal(t, RoleProfessional, b.ResolveRole(Actor{ID: b.ProfessionalID()}))
	assert.Equal(t, RoleUnknown, b.ResolveRole(Actor{ID: uuid.New()}))

	// Admin is a session capability and wins even for participants.
	assert.Equal(t, RoleAdmin, b.ResolveRole(Actor{ID: uuid.New(), Admin: true}))
	assert.Equal(t, RoleAdmin, b.ResolveRole(Actor{ID: b.ClientID(), Admin: true}))
}

func TestTransitionTo_AcceptedCopiesAgreedRate(t *testing.T) {
	b := newTestBooking(t)
	rate := 150.0

	err := b.TransitionTo(StatusAccepted, RoleProfessional, b.ProfessionalID(), TransitionContext{
		AgreedRate:     &rate,
		AgreedRateType: "hourly",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusAccepted, b.Status())
	require.NotNil(t, b.AgreedRate())
	assert.Equal(t, 150.0, *b.AgreedRate())
	assert.Equal(t, "hourly", b.AgreedRateType())
	require.NotNil(t, b.StatusChangedBy())
	assert.Equal(t, b.ProfessionalID(), *b.StatusChangedBy())
	assert.NotNil(t, b.StatusChangedAt())
}

func TestTransitionTo_NegativeAgreedRateRejected(t *testing.T) {
	b := newTestBooking(t)
	rate := -1.0

	err := b.TransitionTo(StatusAccepted, RoleProfessional, b.ProfessionalID(), TransitionContext{AgreedRate: &rate})
	assert.Equal(t, CodeInvalidRate, CodeOf(err))
	assert.Equal(t, StatusRequest, b.Status(), "failed transition must not mutate")
}

func TestTransitionTo_ActiveStampsStartDateWhenUnset(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.TransitionTo(StatusAccepted, RoleProfessional, b.ProfessionalID(), TransitionContext{}))
	require.Nil(t, b.StartDate())

	require.NoError(t, b.TransitionTo(StatusActive, RoleClient, b.ClientID(), TransitionContext{}))

	require.NotNil(t, b.StartDate())
	today := dateOnly(time.Now().UTC())
	assert.True(t, b.StartDate().Equal(today))
}

func TestTransitionTo_ActivePreservesExistingStartDate(t *testing.T) {
	p := validCreateParams()
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	p.StartDate = &start
	b, err := NewBooking(p)
	require.NoError(t, err)

	require.NoError(t, b.TransitionTo(StatusAccepted, RoleProfessional, b.ProfessionalID(), TransitionContext{}))
	require.NoError(t, b.TransitionTo(StatusActive, RoleClient, b.ClientID(), TransitionContext{}))

	require.NotNil(t, b.StartDate())
	assert.True(t, b.StartDate().Equal(start))
}

func TestTransitionTo_RejectionAndCancellationReasons(t *testing.T) {
	b := newTestBooking(t)
	err := b.TransitionTo(StatusRejected, RoleProfessional, b.ProfessionalID(), TransitionContext{
		RejectionReason: "fully booked this quarter",
	})
	require.NoError(t, err)
	assert.Equal(t, "fully booked this quarter", b.RejectionReason())
	assert.True(t, b.Status().IsTerminal())

	b2 := newTestBooking(t)
	err = b2.TransitionTo(StatusCancelled, RoleClient, b2.ClientID(), TransitionContext{
		CancellationReason: "project postponed",
	})
	require.NoError(t, err)
	assert.Equal(t, "project postponed", b2.CancellationReason())
}

func TestTransitionTo_DeliveredAndCompletedStampDates(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.TransitionTo(StatusAccepted, RoleProfessional, b.ProfessionalID(), TransitionContext{}))
	require.NoError(t, b.TransitionTo(StatusActive, RoleProfessional, b.ProfessionalID(), TransitionContext{}))
	require.NoError(t, b.TransitionTo(StatusDelivered, RoleProfessional, b.ProfessionalID(), TransitionContext{}))
	require.NotNil(t, b.DeliveryDate())

	require.NoError(t, b.TransitionTo(StatusCompleted, RoleClient, b.ClientID(), TransitionContext{}))
	require.NotNil(t, b.CompletionDate())
	assert.True(t, b.Status().IsTerminal())
}

func TestAuthorizeDelete(t *testing.T) {
	b := newTestBooking(t)

	// Client may delete while the professional has not committed.
	assert.NoError(t, b.AuthorizeDelete(RoleClient))
	require.NoError(t, b.TransitionTo(StatusPending, RoleProfessional, b.ProfessionalID(), TransitionContext{}))
	assert.NoError(t, b.AuthorizeDelete(RoleClient))

	// After acceptance the client loses the right.
	require.NoError(t, b.TransitionTo(StatusAccepted, RoleProfessional, b.ProfessionalID(), TransitionContext{}))
	assert.Equal(t, CodeDeleteNotAllowed, CodeOf(b.AuthorizeDelete(RoleClient)))

	// Professional never deletes; admin always may.
	assert.Equal(t, CodeDeleteNotAllowed, CodeOf(b.AuthorizeDelete(RoleProfessional)))
	assert.NoError(t, b.AuthorizeDelete(RoleAdmin))
	assert.Equal(t, CodeUnauthorized, CodeOf(b.AuthorizeDelete(RoleUnknown)))
}

func TestMarkDeleted_LeavesStatusUntouched(t *testing.T) {
	b := newTestBooking(t)
	b.MarkDeleted()

	require.NotNil(t, b.DeletedAt())
	assert.Equal(t, StatusRequest, b.Status())
}

func TestSnapshotReconstructRoundTrip(t *testing.T) {
	b := newTestBooking(t)
	rate := 95.5
	require.NoError(t, b.TransitionTo(StatusAccepted, RoleProfessional, b.ProfessionalID(), TransitionContext{
		AgreedRate: &rate,
	}))

	rebuilt := Reconstruct(b.Snapshot())

	assert.Equal(t, b.ID(), rebuilt.ID())
	assert.Equal(t, b.Status(), rebuilt.Status())
	assert.Equal(t, b.Title(), rebuilt.Title())
	require.NotNil(t, rebuilt.AgreedRate())
	assert.Equal(t, rate, *rebuilt.AgreedRate())
	assert.Equal(t, b.UpdatedAt(), rebuilt.UpdatedAt())
}
