package server

import (
	"context"
	"net/http"
)

// identityHeader carries the authenticated principal, set by the fronting
// proxy after login. The application trusts it and only enforces the
// allow-list.
const identityHeader = "X-Auth-User"

// Authorizer decides whether an authenticated identity may use the
// dashboard. Authorization lives entirely in this layer; the aggregation
// engine never sees it.
type Authorizer func(identity string) bool

// AllowList returns an Authorizer permitting exactly the given users
func AllowList(users []string) Authorizer {
	allowed := make(map[string]struct{}, len(users))
	for _, u := range users {
		allowed[u] = struct{}{}
	}

	return func(identity string) bool {
		_, ok := allowed[identity]
		return ok
	}
}

type contextKey int

const identityKey contextKey = iota

// RequireUser rejects requests without an authorized identity and stores
// the identity in the request context for handlers
func (h *Handler) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := r.Header.Get(identityHeader)
		if identity == "" || !h.authorize(identity) {
			h.logger.Warn("Rejected unauthorized request")
			h.writeError(w, http.StatusForbidden,
				"you don't have permission to this site, please ask the administrator")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// identityFrom returns the authenticated identity stored by RequireUser
func identityFrom(ctx context.Context) string {
	identity, _ := ctx.Value(identityKey).(string)
	return identity
}
