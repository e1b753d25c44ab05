package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool      { return &b }

func TestBuildPatch_RoleFiltering(t *testing.T) {
	in := PatchInput{
		Title:                strPtr("Updated engagement title"),
		ProposedRate:         f64Ptr(80),
		ProfessionalResponse: strPtr("Happy to take this on"),
		AgreedRate:           f64Ptr(120),
		Location:             strPtr("Berlin"),
	}

	// The client keeps only client-side and shared fields.
	p, err := BuildPatch(RoleClient, in)
	require.NoError(t, err)
	assert.NotNil(t, p.Client.Title)
	assert.NotNil(t, p.Client.ProposedRate)
	assert.Nil(t, p.Professional.ProfessionalResponse)
	assert.Nil(t, p.Professional.AgreedRate)
	assert.NotNil(t, p.Shared.Location)

	// The professional keeps only the mirror image.
	p, err = BuildPatch(RoleProfessional, in)
	require.NoError(t, err)
	assert.Nil(t, p.Client.Title)
	assert.Nil(t, p.Client.ProposedRate)
	assert.NotNil(t, p.Professional.ProfessionalResponse)
	assert.NotNil(t, p.Professional.AgreedRate)
	assert.NotNil(t, p.Shared.Location)

	// Admin keeps the union.
	p, err = BuildPatch(RoleAdmin, in)
	require.NoError(t, err)
	assert.NotNil(t, p.Client.Title)
	assert.NotNil(t, p.Professional.AgreedRate)
	assert.NotNil(t, p.Shared.Location)
}

func TestBuildPatch_UnknownRoleIsUnauthorized(t *testing.T) {
	_, err := BuildPatch(RoleUnknown, PatchInput{Title: strPtr("Whatever title")})
	assert.Equal(t, CodeUnauthorized, CodeOf(err))
}

// A request whose fields all fall outside the role's allow-list is reported
// as having no valid updates, not silently accepted.
func TestBuildPatch_NoSurvivingFields(t *testing.T) {
	_, err := BuildPatch(RoleClient, PatchInput{
		ProfessionalResponse: strPtr("client may not write this"),
	})
	assert.Equal(t, CodeNoValidUpdates, CodeOf(err))

	_, err = BuildPatch(RoleProfessional, PatchInput{
		Title: strPtr("professional may not write this"),
	})
	assert.Equal(t, CodeNoValidUpdates, CodeOf(err))

	_, err = BuildPatch(RoleAdmin, PatchInput{})
	assert.Equal(t, CodeNoValidUpdates, CodeOf(err))
}

func TestBuildPatch_Validation(t *testing.T) {
	_, err := BuildPatch(RoleClient, PatchInput{Title: strPtr("abc")})
	assert.Equal(t, CodeInvalidTitleLength, CodeOf(err))

	_, err = BuildPatch(RoleClient, PatchInput{ProposedRate: f64Ptr(-1)})
	assert.Equal(t, CodeInvalidRate, CodeOf(err))

	_, err = BuildPatch(RoleProfessional, PatchInput{AgreedRate: f64Ptr(-1)})
	assert.Equal(t, CodeInvalidRate, CodeOf(err))

	_, err = BuildPatch(RoleClient, PatchInput{StartDate: strPtr("next tuesday")})
	assert.Equal(t, CodeInvalidDate, CodeOf(err))
}

func TestBuildPatch_SanitizesAndCoerces(t *testing.T) {
	p, err := BuildPatch(RoleClient, PatchInput{
		Title:          strPtr("  <script>Title</script> here  "),
		EstimatedHours: strPtr("forty"),
		UrgencyLevel:   strPtr("apocalyptic"),
	})
	require.NoError(t, err)

	assert.Equal(t, "&lt;script&gt;Title&lt;/script&gt; here", *p.Client.Title)
	assert.Nil(t, p.Client.EstimatedHours, "unparsable hours degrade to nil")
	assert.Equal(t, UrgencyNormal, *p.Client.UrgencyLevel, "invalid urgency coerces to normal")
}

func TestParseDate_Formats(t *testing.T) {
	d, err := ParseDate("2026-09-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), *d)

	d, err = ParseDate("2026-09-15T18:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), *d)

	d, err = ParseDate("   ")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = ParseDate("15/09/2026")
	assert.Equal(t, CodeInvalidDate, CodeOf(err))
}

func TestApplyPatch_RecordsChangesAndFiltersSignificant(t *testing.T) {
	b := newTestBooking(t)

	p, err := BuildPatch(RoleClient, PatchInput{
		Title:        strPtr("Refreshed logo and brand guide"),
		ProposedRate: f64Ptr(95),
		StartDate:    strPtr("2026-10-01"),
	})
	require.NoError(t, err)

	changes, err := b.ApplyPatch(p)
	require.NoError(t, err)
	assert.Len(t, changes, 3)
	assert.Equal(t, "Refreshed logo and brand guide", b.Title())

	significant := SignificantChanges(changes)
	fields := make([]string, 0, len(significant))
	for _, c := range significant {
		fields = append(fields, c.Field)
	}
	assert.ElementsMatch(t, []string{"proposed_rate", "start_date"}, fields)
}

// The merged result of patch dates and existing dates must stay ordered,
// even when only one side changes.
func TestApplyPatch_MergedDateOrdering(t *testing.T) {
	p := validCreateParams()
	end := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	p.EndDate = &end
	b, err := NewBooking(p)
	require.NoError(t, err)

	patch, err := BuildPatch(RoleClient, PatchInput{StartDate: strPtr("2026-10-15")})
	require.NoError(t, err)

	_, err = b.ApplyPatch(patch)
	assert.Equal(t, CodeInvalidDate, CodeOf(err))
	assert.Nil(t, b.StartDate(), "failed patch must not mutate")
}

func TestApplyPatch_SharedFields(t *testing.T) {
	b := newTestBooking(t)

	p, err := BuildPatch(RoleProfessional, PatchInput{
		Location:   strPtr("Lisbon"),
		RemoteWork: boolPtr(true),
	})
	require.NoError(t, err)

	changes, err := b.ApplyPatch(p)
	require.NoError(t, err)
	assert.Len(t, changes, 2)
	assert.Equal(t, "Lisbon", b.Location())
	assert.True(t, b.RemoteWork())
	assert.Empty(t, SignificantChanges(changes))
}
