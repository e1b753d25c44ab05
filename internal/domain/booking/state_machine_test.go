package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allStatuses() []Status {
	return []Status{
		StatusRequest, StatusPending, StatusAccepted, StatusRejected,
		StatusActive, StatusDelivered, StatusCompleted, StatusCancelled,
	}
}

// TestValidateTransition_Table walks the full transition matrix and checks
// that exactly the (from, to, role) triples in the rules succeed.
func TestValidateTransition_Table(t *testing.T) {
	allowed := map[Status]map[Status][]Role{
		StatusRequest: {
			StatusPending:   {RoleProfessional, RoleAdmin},
			StatusAccepted:  {RoleProfessional, RoleAdmin},
			StatusRejected:  {RoleProfessional, RoleAdmin},
			StatusCancelled: {RoleClient, RoleAdmin},
		},
		StatusPending: {
			StatusAccepted:  {RoleProfessional, RoleAdmin},
			StatusRejected:  {RoleProfessional, RoleAdmin},
			StatusCancelled: {RoleClient, RoleAdmin},
		},
		StatusAccepted: {
			StatusActive:    {RoleClient, RoleProfessional, RoleAdmin},
			StatusCancelled: {RoleClient, RoleProfessional, RoleAdmin},
		},
		StatusActive: {
			StatusDelivered: {RoleProfessional, RoleAdmin},
			StatusCancelled: {RoleClient, RoleProfessional, RoleAdmin},
		},
		StatusDelivered: {
			StatusCompleted: {RoleClient, RoleAdmin},
		},
	}

	roles := []Role{RoleClient, RoleProfessional, RoleAdmin}
	for _, from := range allStatuses() {
		for _, to := range allStatuses() {
			for _, role := range roles {
				err := ValidateTransition(from, to, role)

				if from == to {
					assert.Equal(t, CodeNoStateChange, CodeOf(err), "%s -> %s as %s", from, to, role)
					continue
				}

				edgeRoles, edgeExists := allowed[from][to]
				if !edgeExists {
					assert.Equal(t, CodeInvalidTransition, CodeOf(err), "%s -> %s as %s", from, to, role)
					continue
				}

				permitted := false
				for _, r := range edgeRoles {
					if r == role {
						permitted = true
					}
				}
				if permitted {
					assert.NoError(t, err, "%s -> %s as %s", from, to, role)
				} else {
					assert.Equal(t, CodeUnauthorized, CodeOf(err), "%s -> %s as %s", from, to, role)
				}
			}
		}
	}
}

// TestValidateTransition_UnknownRoleWinsOverEverything checks that an
// unrelated actor gets UNAUTHORIZED even for edges that would otherwise be
// no-ops or invalid, keeping the error from leaking lifecycle information.
func TestValidateTransition_UnknownRoleWinsOverEverything(t *testing.T) {
	for _, from := range allStatuses() {
		for _, to := range allStatuses() {
			err := ValidateTransition(from, to, RoleUnknown)
			assert.Equal(t, CodeUnauthorized, CodeOf(err), "%s -> %s", from, to)
		}
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())

	assert.False(t, StatusRequest.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusAccepted.IsTerminal())
	assert.False(t, StatusActive.IsTerminal())
	assert.False(t, StatusDelivered.IsTerminal())
}

func TestStatus_AllowedTargets(t *testing.T) {
	targets := StatusRequest.AllowedTargets(RoleClient)
	assert.ElementsMatch(t, []Status{StatusCancelled}, targets)

	targets = StatusRequest.AllowedTargets(RoleProfessional)
	assert.ElementsMatch(t, []Status{StatusPending, StatusAccepted, StatusRejected}, targets)

	assert.Empty(t, StatusCompleted.AllowedTargets(RoleAdmin))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("delivered")
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, s)

	_, err = ParseStatus("DELIVERED")
	assert.Error(t, err)

	_, err = ParseStatus("shipped")
	assert.Error(t, err)
}
