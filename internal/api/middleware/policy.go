package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tesloshop/catalog-api/internal/core/domain"
)

// Policy is the typed access rule attached to a route at registration time.
// It is immutable once registered and consulted directly by Guard — no
// runtime introspection.
//
// Precedence: a missing principal is always reported as unauthenticated
// (401) before any role comparison; forbidden (403) is reserved for a
// resolved principal whose roles do not intersect the required set.
type Policy struct {
	requireAuth bool
	roles       []string
}

// NoPolicy marks a public route: no authentication, no role check.
var NoPolicy = Policy{}

// AuthOnly requires a resolved principal but no particular role.
func AuthOnly() Policy {
	return Policy{requireAuth: true}
}

// RoleChecked requires a resolved principal holding at least one of the
// given roles (logical OR). With no roles it degrades to AuthOnly.
func RoleChecked(roles ...string) Policy {
	return Policy{requireAuth: true, roles: roles}
}

// RequiresAuth reports whether the route needs the Authenticate middleware.
func (p Policy) RequiresAuth() bool {
	return p.requireAuth
}

// Allow decides the policy for a (possibly nil) principal.
func (p Policy) Allow(principal *domain.User) error {
	if !p.requireAuth {
		return nil
	}
	if principal == nil {
		return domain.ErrUnauthenticated
	}
	if len(p.roles) == 0 {
		return nil
	}
	if principal.HasAnyRole(p.roles...) {
		return nil
	}
	return fmt.Errorf("user %s needs one of roles [%s]: %w",
		strings.ToUpper(principal.FullName), strings.Join(p.roles, ", "), domain.ErrForbidden)
}

// Guard enforces a route policy against the principal attached by
// Authenticate. Terminal in one step per request.
func Guard(policy Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := policy.Allow(Principal(c)); err != nil {
				return err
			}
			return next(c)
		}
	}
}
