package authz

import (
	"net/http"

	"github.com/eventide-agency/eventide/internal/platform/httpx"
	"github.com/eventide-agency/eventide/internal/shared"
)

// Require builds a chi middleware refusing callers whose role is not granted
// the action on the resource. Anonymous requests get 401, known callers
// without the grant get 403.
func (p *Policy) Require(res Resource, action Action) func(http.Handler) http.Handler {
	return p.RequireAny(res, action)
}

// RequireAny admits callers holding at least one of the listed actions on
// the resource.
func (p *Policy) RequireAny(res Resource, actions ...Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := shared.IdentityFromContext(r.Context())
			if id == nil {
				httpx.Fail(w, http.StatusUnauthorized, "authentication required")
				return
			}
			for _, action := range actions {
				if p.Allow(id.Role, res, action) {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.Fail(w, http.StatusForbidden, "not authorized")
		})
	}
}
