package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/Xhuk/Habitat-prime/internal/model"
)

type contextKey string

const userContextKey contextKey = "user"

func userFrom(ctx context.Context) (model.User, bool) {
	u, ok := ctx.Value(userContextKey).(model.User)
	return u, ok
}

// withAuth resolves the bearer token into the session user before the
// handler runs. Requests without a valid session get a 401.
func (h *Handler) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			h.respondError(w, http.StatusUnauthorized, "missing token")
			return
		}
		user, err := h.auth.Resolve(r.Context(), token)
		if err != nil {
			h.respondError(w, http.StatusUnauthorized, "invalid session")
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// withRole restricts a route to the given roles. It implies withAuth.
func (h *Handler) withRole(next http.HandlerFunc, roles ...model.Role) http.HandlerFunc {
	return h.withAuth(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userFrom(r.Context())
		for _, role := range roles {
			if user.Role == role {
				next(w, r)
				return
			}
		}
		h.respondError(w, http.StatusForbidden, "forbidden")
	})
}

// withLicense blocks admin routes while the installation is unlicensed or
// expired. Resident and guard flows keep working without a license, and the
// license routes themselves are never gated so the admin can activate one.
func (h *Handler) withLicense(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := h.license.Status(r.Context())
		if err == nil && (info.Status == model.LicenseUnlicensed || info.Status == model.LicenseExpired) {
			h.respondError(w, http.StatusForbidden, "license required")
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return after
	}
	return ""
}
