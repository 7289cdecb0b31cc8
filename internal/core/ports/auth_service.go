package ports

import (
	"context"

	"github.com/tesloshop/catalog-api/internal/core/domain"
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

// AuthResult pairs a principal with a freshly minted token. Exactly one token
// is issued per successful registration or login.
type AuthResult struct {
	User  *domain.User
	Token string
}

// AuthService implements registration, login and principal resolution.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Resolve returns the current state of the principal identified by a
	// verified token subject. Never cached across requests.
	Resolve(ctx context.Context, principalID string) (*domain.User, error)
	// Check re-issues a token for an already resolved principal.
	Check(ctx context.Context, principalID string) (*AuthResult, error)
}
