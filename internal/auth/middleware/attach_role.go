package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/mind-engage/learnpath/internal/learning"
	"github.com/mind-engage/learnpath/internal/rbac"
)

// UserGetter loads the account behind a token subject.
type UserGetter interface {
	GetUser(ctx context.Context, id int64) (learning.User, error)
}

// AttachUser loads the token subject from the database, rejects unknown and
// inactive accounts, and replaces the role claim with the role stored on the
// user record. Must run after JWTMiddleware.
func AttachUser(users UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			id, err := strconv.ParseInt(SubjectFromContext(ctx), 10, 64)
			if err != nil {
				unauthorized(w, "could not validate credentials")
				return
			}
			u, err := users.GetUser(ctx, id)
			switch {
			case errors.Is(err, learning.ErrNotFound):
				unauthorized(w, "could not validate credentials")
				return
			case err != nil:
				log.Printf("[%s] auth: load user %d: %v", middleware.GetReqID(ctx), id, err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			case !u.IsActive:
				http.Error(w, "inactive user", http.StatusBadRequest)
				return
			}
			ctx = rbac.WithRole(WithUser(ctx, u), rbac.RoleFor(u.IsEducator))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	http.Error(w, msg, http.StatusUnauthorized)
}
