// Package authz centralizes the (role, resource, action) rules consulted by
// both the route middleware and the domain services, so the two layers
// cannot drift apart.
package authz

import (
	"github.com/eventide-agency/eventide/internal/shared"
)

// Resource names a protected surface of the API.
type Resource string

const (
	ResourceProspects Resource = "prospects"
	ResourceClients   Resource = "clients"
	ResourceEvents    Resource = "events"
	ResourceDevis     Resource = "devis"
	ResourceTasks     Resource = "tasks"
	ResourceReviews   Resource = "reviews"
	ResourceContact   Resource = "contact"
	ResourceAudit     Resource = "audit"
)

// Action names what the caller wants to do with a resource.
type Action string

const (
	ActionView     Action = "view"
	ActionViewOwn  Action = "view_own"
	ActionCreate   Action = "create"
	ActionEdit     Action = "edit"
	ActionDelete   Action = "delete"
	ActionSend     Action = "send"
	ActionRespond  Action = "respond"
	ActionModerate Action = "moderate"
)

// Policy answers whether a role may perform an action on a resource.
// Ownership of individual records is checked by the owning service; the
// policy only decides role-level access.
type Policy struct {
	rules map[shared.Role]map[Resource]map[Action]bool
}

// NewPolicy builds the default back-office policy.
func NewPolicy() *Policy {
	p := &Policy{rules: make(map[shared.Role]map[Resource]map[Action]bool)}

	// Admin: full access on every surface.
	for _, res := range []Resource{
		ResourceProspects, ResourceClients, ResourceEvents, ResourceDevis,
		ResourceTasks, ResourceReviews, ResourceContact, ResourceAudit,
	} {
		for _, act := range []Action{
			ActionView, ActionViewOwn, ActionCreate, ActionEdit, ActionDelete,
			ActionSend, ActionRespond, ActionModerate,
		} {
			p.grant(shared.RoleAdmin, res, act)
		}
	}

	// Employees work prospects, events, tasks and the contact inbox, and may
	// read quotes. Quote mutation is admin only.
	p.grant(shared.RoleEmployee, ResourceProspects, ActionView, ActionCreate, ActionEdit, ActionDelete)
	p.grant(shared.RoleEmployee, ResourceClients, ActionView, ActionEdit)
	p.grant(shared.RoleEmployee, ResourceEvents, ActionView, ActionCreate, ActionEdit)
	p.grant(shared.RoleEmployee, ResourceDevis, ActionView)
	p.grant(shared.RoleEmployee, ResourceTasks, ActionView, ActionCreate, ActionEdit, ActionDelete)
	p.grant(shared.RoleEmployee, ResourceReviews, ActionView, ActionModerate)
	p.grant(shared.RoleEmployee, ResourceContact, ActionView, ActionEdit)

	// Clients see their own quotes and respond to them, and may leave
	// reviews on their own events.
	p.grant(shared.RoleClient, ResourceDevis, ActionViewOwn, ActionRespond)
	p.grant(shared.RoleClient, ResourceEvents, ActionViewOwn)
	p.grant(shared.RoleClient, ResourceReviews, ActionCreate, ActionViewOwn)

	return p
}

func (p *Policy) grant(role shared.Role, res Resource, actions ...Action) {
	byRes, ok := p.rules[role]
	if !ok {
		byRes = make(map[Resource]map[Action]bool)
		p.rules[role] = byRes
	}
	byAct, ok := byRes[res]
	if !ok {
		byAct = make(map[Action]bool)
		byRes[res] = byAct
	}
	for _, a := range actions {
		byAct[a] = true
	}
}

// Allow reports whether role may perform action on resource.
func (p *Policy) Allow(role shared.Role, res Resource, action Action) bool {
	return p.rules[role][res][action]
}
