package rbac

import (
	"context"
	"strings"
)

// Policy maps a role to the permissions it grants. A granted permission
// ending in "*" covers every permission with that prefix.
type Policy map[string][]string

type Checker struct {
	policy Policy
}

// NewChecker returns a checker for p, or for DefaultPolicy when p is nil.
func NewChecker(p Policy) *Checker {
	if p == nil {
		p = DefaultPolicy
	}
	return &Checker{policy: p}
}

// Has reports whether role is granted perm. Unknown roles have nothing.
func (c *Checker) Has(role, perm string) bool {
	for _, g := range c.policy[role] {
		if grants(g, perm) {
			return true
		}
	}
	return false
}

func grants(granted, perm string) bool {
	if prefix, ok := strings.CutSuffix(granted, "*"); ok {
		return strings.HasPrefix(perm, prefix)
	}
	return granted == perm
}

// RoleFor derives the role of an account from its educator flag. The flag
// on the stored user record is the only source of roles.
func RoleFor(isEducator bool) string {
	if isEducator {
		return RoleEducator
	}
	return RoleStudent
}

type roleKey struct{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// RoleFromContext returns "" when no role was attached.
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey{}).(string)
	return role
}
