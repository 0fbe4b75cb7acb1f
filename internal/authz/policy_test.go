package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eventide-agency/eventide/internal/shared"
)

func TestAdminHasFullAccess(t *testing.T) {
	p := NewPolicy()
	for _, res := range []Resource{
		ResourceProspects, ResourceClients, ResourceEvents, ResourceDevis,
		ResourceTasks, ResourceReviews, ResourceContact, ResourceAudit,
	} {
		for _, act := range []Action{
			ActionView, ActionViewOwn, ActionCreate, ActionEdit, ActionDelete,
			ActionSend, ActionRespond, ActionModerate,
		} {
			require.True(t, p.Allow(shared.RoleAdmin, res, act), "%s %s", res, act)
		}
	}
}

func TestEmployeeQuoteAccessIsReadOnly(t *testing.T) {
	p := NewPolicy()
	require.True(t, p.Allow(shared.RoleEmployee, ResourceDevis, ActionView))
	require.False(t, p.Allow(shared.RoleEmployee, ResourceDevis, ActionCreate))
	require.False(t, p.Allow(shared.RoleEmployee, ResourceDevis, ActionEdit))
	require.False(t, p.Allow(shared.RoleEmployee, ResourceDevis, ActionDelete))
	require.False(t, p.Allow(shared.RoleEmployee, ResourceDevis, ActionSend))
	require.False(t, p.Allow(shared.RoleEmployee, ResourceDevis, ActionRespond))
}

func TestClientGrants(t *testing.T) {
	p := NewPolicy()
	require.True(t, p.Allow(shared.RoleClient, ResourceDevis, ActionViewOwn))
	require.True(t, p.Allow(shared.RoleClient, ResourceDevis, ActionRespond))
	require.True(t, p.Allow(shared.RoleClient, ResourceEvents, ActionViewOwn))
	require.True(t, p.Allow(shared.RoleClient, ResourceReviews, ActionCreate))

	require.False(t, p.Allow(shared.RoleClient, ResourceDevis, ActionView))
	require.False(t, p.Allow(shared.RoleClient, ResourceProspects, ActionView))
	require.False(t, p.Allow(shared.RoleClient, ResourceTasks, ActionView))
	require.False(t, p.Allow(shared.RoleClient, ResourceAudit, ActionView))
}

func TestUnknownRoleDeniedEverywhere(t *testing.T) {
	p := NewPolicy()
	require.False(t, p.Allow(shared.Role("visitor"), ResourceDevis, ActionView))
}
