package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tesloshop/catalog-api/internal/core/domain"
	"github.com/tesloshop/catalog-api/internal/core/service"
)

// principalKey is the echo context key the resolved principal is stored
// under for the duration of the request.
const principalKey = "principal"

// PrincipalResolver turns a verified token subject into the current
// principal state. Re-fetched on every request, never cached.
type PrincipalResolver interface {
	Resolve(ctx context.Context, principalID string) (*domain.User, error)
}

// Authenticate verifies the bearer token and attaches the resolved principal
// to the request context. Any failure — missing header, bad token, unknown or
// deactivated principal — surfaces as ErrUnauthenticated.
func Authenticate(tokens *service.TokenService, resolver PrincipalResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return domain.ErrUnauthenticated
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return domain.ErrUnauthenticated
			}

			principalID, err := tokens.Verify(parts[1])
			if err != nil {
				return domain.ErrInvalidToken
			}

			principal, err := resolver.Resolve(c.Request().Context(), principalID)
			if err != nil {
				// unknown or deactivated principal: token points nowhere
				return domain.ErrUnauthenticated
			}

			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// Principal returns the principal attached by Authenticate, or nil when the
// request is unauthenticated.
func Principal(c echo.Context) *domain.User {
	principal, _ := c.Get(principalKey).(*domain.User)
	return principal
}
