package rbac

import (
	"net/http"
)

var defaultChecker = NewChecker(nil)

// Require enforces perm under DefaultPolicy.
func Require(perm string) func(http.Handler) http.Handler {
	return defaultChecker.Require(perm)
}

// Require rejects requests whose context role lacks perm with 403.
func (c *Checker) Require(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !c.Has(RoleFromContext(r.Context()), perm) {
				http.Error(w, "not enough permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
