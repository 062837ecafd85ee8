package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/atvirokodosprendimai/newsroom/internal/core/usecase"
)

// authenticate resolves an optional bearer token. Requests without one stay
// anonymous; a token that does not verify is rejected outright.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := strings.TrimSpace(r.Header.Get("Authorization"))
		if auth == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			h.fail(w, r, usecase.ErrUnauthorized)
			return
		}

		principal, err := h.auth.Authenticate(r.Context(), strings.TrimSpace(auth[7:]))
		if err != nil {
			h.fail(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), principalCtxKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := principalFromContext(r.Context())
			if !ok {
				h.fail(w, r, usecase.ErrUnauthorized)
				return
			}
			if !principal.HasRole(roles...) {
				h.fail(w, r, usecase.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
